// Package service implements the business rules of the finance API on top of
// a repository.Store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/finance-service/internal/cache"
	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/repository"
)

// Service handles business logic
type Service struct {
	store    repository.Store
	reports  cache.ReportCache
	log      *logrus.Logger
	config   *config.Config
	validate *validator.Validate
	format   *Formatter
	now      func() time.Time
	hashCost int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for timestamps, tokens and reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService initializes a new service
func NewService(store repository.Store, reports cache.ReportCache, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	if reports == nil {
		reports = cache.NewNoop()
	}
	s := &Service{
		store:    store,
		reports:  reports,
		log:      log,
		config:   cfg,
		validate: newValidator(cfg.DefaultPhoneRegion),
		format:   NewFormatter(cfg.LanguageTag(), cfg.CurrencySymbol),
		now:      time.Now,
		hashCost: defaultHashCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Formatter returns the locale formatter used for indicator values.
func (s *Service) Formatter() *Formatter {
	return s.format
}

func (s *Service) today() time.Time {
	return s.now().UTC()
}

func (s *Service) logError(funcName, step string, data any, err error) {
	config.LogError(s.log, "service", funcName, step, data, err)
}

// reportKey identifies a cached report of a user at the current generation.
func (s *Service) reportKey(ctx context.Context, userID uuid.UUID, name string, parts ...any) string {
	gen, err := s.reports.Generation(ctx, userID.String())
	if err != nil {
		s.log.WithError(err).Warn("Report cache generation unavailable")
	}
	key := fmt.Sprintf("report:%s:%d:%s", userID, gen, name)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// cached serves a report from the cache, computing and storing it on a miss.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	var value T
	if ok, err := s.reports.Get(ctx, key, &value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Report cache read failed")
	} else if ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if err := s.reports.Set(ctx, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Report cache write failed")
	}
	return value, nil
}

// invalidateReports drops every cached report of the user.
func (s *Service) invalidateReports(ctx context.Context, userID uuid.UUID) {
	if err := s.reports.Bump(ctx, userID.String()); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("Report cache invalidation failed")
	}
}
