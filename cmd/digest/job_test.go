package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/finance-service/internal/cache"
	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/Dan9191/finance-service/internal/service"
	"github.com/Dan9191/finance-service/internal/utils/email"
)

type recordingSender struct {
	labels []string
	emails []string
	fail   map[string]bool
}

func (s *recordingSender) SendDigest(d models.PeriodDigest, label string, f email.Formatter) error {
	if s.fail[d.Subscriber.Email] {
		return errors.New("smtp: connection refused")
	}
	s.labels = append(s.labels, label)
	s.emails = append(s.emails, d.Subscriber.Email)
	return nil
}

func newJob(t *testing.T, sender *recordingSender) *digestJob {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		HMACSecret:         "test-hmac",
		EncryptionKey:      "00112233445566778899aabbccddeeff",
		Locale:             "pt-BR",
		CurrencySymbol:     "R$",
		DefaultPhoneRegion: "BR",
	}
	svc := service.NewService(repository.NewMemoryStore(), cache.NewNoop(), logger, cfg, service.WithHashCost(bcrypt.MinCost))

	ctx := context.Background()
	daily, weekly := true, true
	for _, addr := range []string{"ana@example.com", "bob@example.com"} {
		u, err := svc.Register(ctx, service.RegisterInput{Email: addr, Password: "secret123", Name: "Test User"})
		require.NoError(t, err)
		in := service.UpdateWhatsAppInput{DailySummary: &daily}
		if addr == "bob@example.com" {
			in.WeeklySummary = &weekly
		}
		_, err = svc.UpdateWhatsAppSettings(ctx, u.ID, in)
		require.NoError(t, err)
	}
	return &digestJob{svc: svc, sender: sender, log: logger}
}

func TestDigestJobSendsToSubscribers(t *testing.T) {
	sender := &recordingSender{}
	job := newJob(t, sender)

	require.NoError(t, job.run(context.Background(), service.DigestDaily))
	assert.Equal(t, []string{"ana@example.com", "bob@example.com"}, sender.emails)
	assert.Equal(t, []string{"Daily", "Daily"}, sender.labels)

	sender.emails, sender.labels = nil, nil
	require.NoError(t, job.run(context.Background(), service.DigestWeekly))
	assert.Equal(t, []string{"bob@example.com"}, sender.emails)
	assert.Equal(t, []string{"Weekly"}, sender.labels)
}

func TestDigestJobContinuesAfterFailure(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"ana@example.com": true}}
	job := newJob(t, sender)

	err := job.run(context.Background(), service.DigestDaily)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, []string{"bob@example.com"}, sender.emails)
}
