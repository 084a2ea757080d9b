package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/bsm/redislock"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/Dan9191/finance-service/internal/cache"
	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/Dan9191/finance-service/internal/service"
	"github.com/Dan9191/finance-service/internal/utils/email"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		config.NewLogger("info").Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)
	if cfg.DBBackend != config.BackendPostgres {
		logger.Fatalf("The digest command needs the postgres backend, got %q", cfg.DBBackend)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	job := &digestJob{
		svc:    service.NewService(repository.NewRepository(db), cache.NewNoop(), logger, cfg),
		sender: email.NewSender(cfg, logger),
		log:    logger,
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		job.locker = redislock.New(client)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	schedules := []struct {
		spec   string
		period service.DigestPeriod
	}{
		{cfg.DigestDailySchedule, service.DigestDaily},
		{cfg.DigestWeeklySchedule, service.DigestWeekly},
	}
	for _, s := range schedules {
		spec, period := s.spec, s.period
		if _, err := c.AddFunc(spec, func() {
			if err := job.run(ctx, period); err != nil {
				logger.Errorf("Digest %s failed: %v", period, err)
			}
		}); err != nil {
			logger.Fatalf("Failed to schedule %s digest: %v", period, err)
		}
		logger.Infof("Scheduled %s digest at %q", period, spec)
	}
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down digest scheduler")
	cancel()
	<-c.Stop().Done()
}
