package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/config"
	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/reporting"
	"github.com/mamadbah2/lirio/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// Reporter is the reporting surface the scheduled jobs use.
type Reporter interface {
	DailySummary(ctx context.Context, day string) (string, error)
	ArchiveDailyReport(ctx context.Context, day string) (models.DailyReport, error)
	FeedAlertSummary(ctx context.Context) (string, bool, error)
}

// Backuper uploads a snapshot of the store.
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc Reporter
	messagingSvc whatsapp.MessagingService
	backupSvc    Backuper
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler running in the configured timezone.
// messagingSvc and backupSvc may be nil; their jobs then do less or are not
// scheduled.
func NewScheduler(cfg config.Config, reportingSvc Reporter, messagingSvc whatsapp.MessagingService, backupSvc Backuper, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		messagingSvc: messagingSvc,
		backupSvc:    backupSvc,
		cfg:          cfg,
		logger:       logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.cfg.Reporting.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.job("daily report", s.RunDailyReport)); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Reporting.FeedAlertSchedule, s.job("feed alert", s.RunFeedAlert)); err != nil {
		return fmt.Errorf("schedule feed alert: %w", err)
	}
	if s.backupSvc != nil && s.cfg.Reporting.BackupSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.BackupSchedule, s.job("backup", s.RunBackup)); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) job(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job done", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	}
}

// RunDailyReport archives today's report and sends the summary to the owner.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	if _, err := s.reportingSvc.ArchiveDailyReport(ctx, ""); err != nil && !errors.Is(err, reporting.ErrArchiveDisabled) {
		s.logger.Error("failed to archive daily report", zap.Error(err))
	}

	summary, err := s.reportingSvc.DailySummary(ctx, "")
	if err != nil {
		return fmt.Errorf("build daily summary: %w", err)
	}
	return s.notifyOwner(ctx, summary)
}

// RunFeedAlert warns the owner about feed types running low.
func (s *Scheduler) RunFeedAlert(ctx context.Context) error {
	alert, ok, err := s.reportingSvc.FeedAlertSummary(ctx)
	if err != nil {
		return fmt.Errorf("build feed alert: %w", err)
	}
	if !ok {
		s.logger.Debug("feed stock healthy, no alert sent")
		return nil
	}
	return s.notifyOwner(ctx, alert)
}

// RunBackup uploads a store snapshot.
func (s *Scheduler) RunBackup(ctx context.Context) error {
	if s.backupSvc == nil {
		return nil
	}
	_, err := s.backupSvc.Backup(ctx)
	return err
}

func (s *Scheduler) notifyOwner(ctx context.Context, text string) error {
	if s.messagingSvc == nil || s.cfg.WhatsApp.OwnerID == "" {
		s.logger.Info("no owner chat configured, message not sent", zap.Int("length", len(text)))
		return nil
	}
	return s.messagingSvc.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.OwnerID,
		Message: text,
	})
}
