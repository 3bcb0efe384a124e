package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/metrics"
	"github.com/fikalearn/paperweek/internal/models"
	"github.com/fikalearn/paperweek/internal/paper"
	"github.com/fikalearn/paperweek/internal/store"
)

// PaperGenerator is what the scheduler needs from the assembler.
type PaperGenerator interface {
	Generate(ctx context.Context, weekStart time.Time, filters []models.ChapterFilter) (*models.GeneratedPaper, error)
}

type Config struct {
	Cron         string
	Timezone     string
	CycleTimeout time.Duration
}

type Status struct {
	IsRunning     bool      `json:"isRunning"`
	Schedule      string    `json:"schedule"`
	Timezone      string    `json:"timezone"`
	NextWeekStart time.Time `json:"nextWeekStart"`
}

// Scheduler owns the recurring weekly generation trigger. All mutable
// state (the gocron handle doubles as the running flag) lives behind mu;
// generation cycles serialize on runMu so a manual trigger cannot race a
// scheduled one.
type Scheduler struct {
	mu    sync.Mutex
	runMu sync.Mutex
	logWG sync.WaitGroup

	cron      *gocron.Scheduler
	generator PaperGenerator
	store     store.Store
	spec      string
	loc       *time.Location
	timeout   time.Duration
}

func New(gen PaperGenerator, st store.Store, cfg Config) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		generator: gen,
		store:     st,
		spec:      cfg.Cron,
		loc:       loc,
		timeout:   cfg.CycleTimeout,
	}, nil
}

// Start registers the recurring trigger. Calling it while running is a
// no-op with a warning.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.logJob(models.LevelWarn, "Scheduler already running", nil)
		return nil
	}

	cron := gocron.NewScheduler(s.loc)
	if _, err := cron.Cron(s.spec).Do(s.scheduledCycle); err != nil {
		return fmt.Errorf("failed to schedule weekly generation: %w", err)
	}
	cron.StartAsync()
	s.cron = cron

	s.logJob(models.LevelInfo, "Scheduler started", map[string]interface{}{
		"schedule": s.spec,
		"timezone": s.loc.String(),
	})

	go s.ensureUpcomingWeek()
	return nil
}

// Stop cancels future firings. An in-flight cycle is left to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.logJob(models.LevelInfo, "Scheduler stopped", nil)
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		IsRunning:     s.cron != nil,
		Schedule:      s.spec,
		Timezone:      s.loc.String(),
		NextWeekStart: paper.NextWeekStart(time.Now().In(s.loc)),
	}
}

// Trigger runs one generation cycle synchronously, running or not, and
// hands any failure back to the caller.
func (s *Scheduler) Trigger(ctx context.Context) error {
	s.logJob(models.LevelInfo, "Manual trigger for weekly paper generation", nil)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.runCycle(ctx, "manual")
}

func (s *Scheduler) RecentLogs(ctx context.Context, limit int) ([]models.JobLog, error) {
	return s.store.ListJobLogs(ctx, limit)
}

func (s *Scheduler) RecentSchedules(ctx context.Context, limit int) ([]models.WeeklySchedule, error) {
	return s.store.ListWeeklySchedules(ctx, limit)
}

// scheduledCycle is the cron-fired entrypoint; failures are recorded but
// swallowed here, the trigger runner has nobody to re-raise to.
func (s *Scheduler) scheduledCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.runCycle(ctx, "cron"); err != nil {
		logger.Error.Printf("Scheduled generation cycle failed: %v", err)
	}
}

func (s *Scheduler) runCycle(ctx context.Context, trigger string) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	weekStart := paper.NextWeekStart(time.Now().In(s.loc))

	s.logJob(models.LevelInfo, "Starting weekly paper generation", map[string]interface{}{
		"week_start": weekStart.Format(time.RFC3339),
		"trigger":    trigger,
	})

	generated, err := s.generator.Generate(ctx, weekStart, nil)
	if err != nil {
		return s.failCycle(ctx, trigger, weekStart, err)
	}

	paperID, err := s.store.SavePaper(ctx, generated)
	if err != nil {
		return s.failCycle(ctx, trigger, weekStart, err)
	}

	s.markWeek(ctx, weekStart, models.StatusCompleted, &paperID, nil)

	metrics.PapersGeneratedTotal.WithLabelValues(trigger, "success").Inc()
	metrics.PaperGenerationDuration.Observe(time.Since(start).Seconds())

	s.logJob(models.LevelInfo, "Weekly paper generated successfully", map[string]interface{}{
		"paper_id":    paperID,
		"week_start":  weekStart.Format(time.RFC3339),
		"questions":   generated.QuestionCount(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (s *Scheduler) failCycle(ctx context.Context, trigger string, weekStart time.Time, err error) error {
	metrics.PapersGeneratedTotal.WithLabelValues(trigger, "failure").Inc()

	msg := err.Error()
	s.markWeek(ctx, weekStart, models.StatusFailed, nil, &msg)
	s.logJob(models.LevelError, "Failed to generate weekly paper", map[string]interface{}{
		"week_start": weekStart.Format(time.RFC3339),
		"error":      msg,
	})
	return err
}

// markWeek upserts the target week's schedule record. Upsert failures are
// logged and swallowed so they never mask the cycle's own outcome.
func (s *Scheduler) markWeek(ctx context.Context, weekStart time.Time, status string, paperID, errorMessage *string) {
	now := time.Now().UTC()
	ws := &models.WeeklySchedule{
		WeekStart:    weekStart,
		Status:       status,
		PaperID:      paperID,
		ErrorMessage: errorMessage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.UpsertWeeklySchedule(ctx, ws); err != nil {
		logger.Error.Printf("Failed to update weekly schedule for %s: %v", weekStart.Format(time.RFC3339), err)
	}
}

// ensureUpcomingWeek pre-creates a SCHEDULED record for the next target
// week so the admin view shows what is coming.
func (s *Scheduler) ensureUpcomingWeek() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	weekStart := paper.NextWeekStart(time.Now().In(s.loc))
	existing, err := s.store.GetWeeklySchedule(ctx, weekStart)
	if err != nil {
		logger.Error.Printf("Failed to check upcoming week schedule: %v", err)
		return
	}
	if existing != nil {
		return
	}

	s.markWeek(ctx, weekStart, models.StatusScheduled, nil, nil)
	s.logJob(models.LevelInfo, "Scheduled upcoming week", map[string]interface{}{
		"week_start": weekStart.Format(time.RFC3339),
	})
}

// logJob writes the audit entry to the console synchronously and persists
// it in the background; persistence is best-effort and never fails the
// action being logged.
func (s *Scheduler) logJob(level, message string, data map[string]interface{}) {
	line := fmt.Sprintf("[SCHED %s] %s", level, message)
	if level == models.LevelError {
		logger.Error.Println(line)
	} else {
		logger.Info.Println(line)
	}
	if data != nil {
		logger.Debug.Printf("[SCHED %s] payload: %v", level, data)
	}

	entry := &models.JobLog{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			payload := string(raw)
			entry.Data = &payload
		}
	}

	s.logWG.Add(1)
	go func() {
		defer s.logWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.CreateJobLog(ctx, entry); err != nil {
			logger.Error.Printf("Failed to store job log: %v", err)
		}
	}()
}
