package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/service"
	"github.com/Dan9191/finance-service/internal/utils/email"
)

const lockTTL = 10 * time.Minute

type digestSender interface {
	SendDigest(d models.PeriodDigest, label string, f email.Formatter) error
}

// digestJob builds and mails the digests of one period.
type digestJob struct {
	svc    *service.Service
	sender digestSender
	locker *redislock.Client // nil runs without a lock
	log    *logrus.Logger
}

func label(period service.DigestPeriod) string {
	if period == service.DigestWeekly {
		return "Weekly"
	}
	return "Daily"
}

// run sends every digest of the period. A failed email does not stop the
// others; the first failure is returned once all were attempted.
func (j *digestJob) run(ctx context.Context, period service.DigestPeriod) error {
	if j.locker != nil {
		lock, err := j.locker.Obtain(ctx, fmt.Sprintf("digest:%s", period), lockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			j.log.WithField("period", period).Info("Digest already running elsewhere, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to obtain digest lock: %w", err)
		}
		defer lock.Release(context.Background())
	}

	digests, err := j.svc.BuildDigests(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to build %s digests: %w", period, err)
	}

	var firstErr error
	sent := 0
	for _, d := range digests {
		if err := j.sender.SendDigest(d, label(period), j.svc.Formatter()); err != nil {
			j.log.WithFields(logrus.Fields{
				"period":  period,
				"user_id": d.Subscriber.UserID,
				"error":   err,
			}).Error("Failed to send digest")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	j.log.WithFields(logrus.Fields{"period": period, "sent": sent, "total": len(digests)}).Info("Digest run finished")
	return firstErr
}
