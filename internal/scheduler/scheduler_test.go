package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/lirio/internal/config"
	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/reporting"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubReporter struct {
	archived  int
	archiveFn func() error
	alert     string
}

func (r *stubReporter) DailySummary(context.Context, string) (string, error) {
	return "Daily summary 2025-03-02", nil
}

func (r *stubReporter) ArchiveDailyReport(context.Context, string) (models.DailyReport, error) {
	r.archived++
	if r.archiveFn != nil {
		return models.DailyReport{}, r.archiveFn()
	}
	return models.DailyReport{Date: "2025-03-02"}, nil
}

func (r *stubReporter) FeedAlertSummary(context.Context) (string, bool, error) {
	return r.alert, r.alert != "", nil
}

type recordingMessenger struct {
	sent []models.OutboundMessageRequest
}

func (m *recordingMessenger) VerifyWebhookToken(string, string, string) (string, error) {
	return "", nil
}

func (m *recordingMessenger) HandleWebhook(context.Context, models.WebhookPayload) error {
	return nil
}

func (m *recordingMessenger) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	m.sent = append(m.sent, req)
	return nil
}

type countingBackup struct{ runs int }

func (b *countingBackup) Backup(context.Context) (string, error) {
	b.runs++
	return "snapshots/x.json", nil
}

func testConfig() config.Config {
	return config.Config{
		WhatsApp: config.WhatsAppConfig{OwnerID: "258840000009"},
		Reporting: config.ReportingConfig{
			CronSchedule:      "0 20 * * *",
			FeedAlertSchedule: "0 7 * * *",
			BackupSchedule:    "30 2 * * *",
			Timezone:          "Africa/Maputo",
		},
	}
}

func TestStartRegistersJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), &stubReporter{}, &recordingMessenger{}, &countingBackup{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 3, s.Jobs())
}

func TestStartWithoutBackup(t *testing.T) {
	s, err := NewScheduler(testConfig(), &stubReporter{}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 2, s.Jobs())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.FeedAlertSchedule = "every morning"
	s, err := NewScheduler(cfg, &stubReporter{}, nil, nil, nil)
	require.NoError(t, err)

	require.Error(t, s.Start())
}

func TestNewSchedulerRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Timezone = "Mars/Olympus"
	_, err := NewScheduler(cfg, &stubReporter{}, nil, nil, nil)
	require.Error(t, err)
}

func TestRunDailyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("archives and notifies owner", func(t *testing.T) {
		rep := &stubReporter{}
		msg := &recordingMessenger{}
		s, err := NewScheduler(testConfig(), rep, msg, nil, nil)
		require.NoError(t, err)

		require.NoError(t, s.RunDailyReport(ctx))
		assert.Equal(t, 1, rep.archived)
		require.Len(t, msg.sent, 1)
		assert.Equal(t, "258840000009", msg.sent[0].To)
		assert.Equal(t, "Daily summary 2025-03-02", msg.sent[0].Message)
	})

	t.Run("archive failures do not block the summary", func(t *testing.T) {
		for _, archiveErr := range []error{reporting.ErrArchiveDisabled, errors.New("mongo down")} {
			rep := &stubReporter{archiveFn: func() error { return archiveErr }}
			msg := &recordingMessenger{}
			s, err := NewScheduler(testConfig(), rep, msg, nil, nil)
			require.NoError(t, err)

			require.NoError(t, s.RunDailyReport(ctx))
			assert.Len(t, msg.sent, 1)
		}
	})

	t.Run("no owner configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.WhatsApp.OwnerID = ""
		msg := &recordingMessenger{}
		s, err := NewScheduler(cfg, &stubReporter{}, msg, nil, nil)
		require.NoError(t, err)

		require.NoError(t, s.RunDailyReport(ctx))
		assert.Empty(t, msg.sent)
	})
}

func TestRunFeedAlert(t *testing.T) {
	ctx := context.Background()

	msg := &recordingMessenger{}
	s, err := NewScheduler(testConfig(), &stubReporter{}, msg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.RunFeedAlert(ctx))
	assert.Empty(t, msg.sent, "healthy stock sends nothing")

	s, err = NewScheduler(testConfig(), &stubReporter{alert: "Feed alert:\n- Patos"}, msg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.RunFeedAlert(ctx))
	require.Len(t, msg.sent, 1)
	assert.Contains(t, msg.sent[0].Message, "Patos")
}

func TestRunBackup(t *testing.T) {
	b := &countingBackup{}
	s, err := NewScheduler(testConfig(), &stubReporter{}, nil, b, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunBackup(context.Background()))
	assert.Equal(t, 1, b.runs)
}
