package app

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/paper"
	"github.com/fikalearn/paperweek/internal/scheduler"
	"github.com/fikalearn/paperweek/internal/store"
)

type Service struct {
	Config    *Config
	Store     store.Store
	Auth      *Auth
	Generator *paper.Generator
	Scheduler *scheduler.Scheduler

	schedulerInit atomic.Bool
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	gen := paper.NewGenerator(st, paper.Config{
		ScarcityThreshold: config.Generator.ScarcityThreshold,
		PromoteBatch:      config.Generator.PromoteBatch,
		PromoteScanLimit:  config.Generator.PromoteScanLimit,
		OversampleFactor:  config.Generator.OversampleFactor,
	})

	sched, err := scheduler.New(gen, st, scheduler.Config{
		Cron:         config.Schedule.Cron,
		Timezone:     config.Schedule.Timezone,
		CycleTimeout: time.Duration(config.Schedule.CycleTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init scheduler: %w", err)
	}

	return &Service{
		Config:    config,
		Store:     st,
		Auth:      auth,
		Generator: gen,
		Scheduler: sched,
	}, nil
}

// EnsureSchedulerStarted starts the scheduler at most once per process,
// and only when auto_start is configured. Safe to call from concurrent
// initialization paths.
func (s *Service) EnsureSchedulerStarted() {
	if !s.Config.Schedule.AutoStart {
		logger.Debug.Println("Scheduler auto-start disabled, waiting for explicit start")
		return
	}
	if !s.schedulerInit.CompareAndSwap(false, true) {
		return
	}
	if err := s.Scheduler.Start(); err != nil {
		logger.Error.Printf("Failed to auto-start scheduler: %v", err)
	}
}

// Authorize checks the admin bearer token on control-surface requests.
func (s *Service) Authorize(r *http.Request) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Auth.ValidateToken(r.Context(), token)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
