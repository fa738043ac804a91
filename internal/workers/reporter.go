package workers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/timecop-bot/timecop/internal/database"
	"github.com/timecop-bot/timecop/internal/queue"
	"github.com/timecop-bot/timecop/internal/report"
)

// ReportBuilder processes monthly-report jobs: it aggregates a user's
// month and writes the CSV artifact to the output directory.
type ReportBuilder struct {
	entries   database.EntryStore
	outputDir string
	logger    *zap.Logger
	jobQueue  queue.JobQueue
}

// NewReportBuilder creates a new report builder
func NewReportBuilder(entries database.EntryStore, outputDir string, logger *zap.Logger) *ReportBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportBuilder{
		entries:   entries,
		outputDir: outputDir,
		logger:    logger,
	}
}

// SetJobQueue enables delayed re-enqueue on retryable failures. Without a
// queue, failed jobs go straight to the dead letter queue.
func (b *ReportBuilder) SetJobQueue(q queue.JobQueue) {
	b.jobQueue = q
}

// ProcessMessage processes one delivery and settles it: ack on success,
// delayed re-enqueue while retries remain, dead letter when exhausted.
func (b *ReportBuilder) ProcessMessage(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if err := b.ProcessReportJob(ctx, job); err != nil {
		return b.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (b *ReportBuilder) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() && b.jobQueue != nil {
		retryDelay := retryBackoff(job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		retryJob := *job
		retryJob.NotBefore = &notBefore
		retryJob.IncrementRetry()

		if ackErr := msg.Ack(); ackErr != nil {
			b.logger.Warn("failed_to_ack_before_retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(ackErr),
			)
		}

		if enqueueErr := b.jobQueue.Enqueue(ctx, &retryJob); enqueueErr != nil {
			return fmt.Errorf("report failed and re-enqueue failed: %w", errors.Join(err, enqueueErr))
		}

		b.logger.Warn("report_job_retry_scheduled",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", retryJob.RetryCount),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		return nil
	}

	// Retries exhausted, dead letter the message
	if nackErr := msg.Nack(false); nackErr != nil {
		b.logger.Warn("failed_to_nack_exhausted_job",
			zap.String("job_id", job.ID.String()),
			zap.Error(nackErr),
		)
	}
	return fmt.Errorf("report job %s failed after %d attempts: %w", job.ID, job.RetryCount+1, err)
}

func retryBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount > 6 {
		retryCount = 6
	}
	return 30 * time.Second * time.Duration(1<<uint(retryCount))
}

// ProcessReportJob builds the report for one job. An empty month still
// produces an artifact with zero rows and zero subtotals.
func (b *ReportBuilder) ProcessReportJob(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeMonthlyReport {
		return fmt.Errorf("unexpected job type: %s", job.Type)
	}

	entries, err := b.entries.GetByUserAndMonth(ctx, job.UserID, job.Year, job.Month)
	if err != nil {
		return fmt.Errorf("failed to load entries for report: %w", err)
	}

	summary := report.SummarizeMonth(job.Year, job.Month, entries)

	path, err := b.writeArtifact(job, summary)
	if err != nil {
		return err
	}

	b.logger.Info("report_generated",
		zap.Int64("user_id", job.UserID),
		zap.Int("year", job.Year),
		zap.Int("month", int(job.Month)),
		zap.Int("row_count", len(summary.Rows)),
		zap.Float64("total_hours", summary.Total),
		zap.String("path", path),
	)
	return nil
}

func (b *ReportBuilder) writeArtifact(job *queue.Job, summary *report.MonthlySummary) (string, error) {
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("report_%d_%04d-%02d.csv", job.UserID, job.Year, int(job.Month))
	path := filepath.Join(b.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := report.RenderCSV(f, summary); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}
