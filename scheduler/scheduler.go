// Package scheduler runs the daily distribution summary on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"rationdist/config"
	"rationdist/pkg/notify"
	"rationdist/process/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	publisher notify.Publisher
	schedule  string
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// New builds a scheduler using the standard five field cron syntax in the
// configured timezone.
func New(cfg config.ReportConfig, db *gorm.DB, publisher notify.Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := time.Local
	if cfg.Timezone != "" && cfg.Timezone != "Local" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		db:        db,
		publisher: publisher,
		schedule:  cfg.CronSchedule,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Start registers the daily summary job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendDailySummary); err != nil {
		return fmt.Errorf("schedule daily summary %q: %w", s.schedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := s.RunDaily(ctx); err != nil {
		s.logger.Error("daily summary failed", zap.Error(err))
	}
}

// RunDaily builds today's summary and publishes it.
func (s *Scheduler) RunDaily(ctx context.Context) (*report.DailySummary, error) {
	now := s.now().In(s.loc)
	day, _ := report.ParseDay("", now)
	summary, err := report.Daily(ctx, s.db, day)
	if err != nil {
		return nil, err
	}
	s.logger.Info("daily summary generated",
		zap.String("date", summary.Date),
		zap.Int("records", summary.Records),
		zap.Int("beneficiaries", summary.Beneficiaries))
	notify.Emit(ctx, s.publisher, notify.NewEvent(notify.EventDailyReport, summary), s.logger)
	return summary, nil
}
