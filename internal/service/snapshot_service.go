package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	"github.com/noah-isme/literacy-tracker-api/pkg/jobs"
)

// SnapshotRun identifies one batch: recompute every student's standing for
// the subject/year and persist it under the period key.
type SnapshotRun struct {
	Subject    models.Subject `json:"subject_area"`
	SchoolYear string         `json:"school_year"`
	Period     models.Period  `json:"assessment_period"`
}

// SnapshotServiceParams bundles SnapshotService dependencies.
type SnapshotServiceParams struct {
	Evaluator cohortEvaluator
	Snapshots snapshotWriter
	Metrics   *MetricsService
	Config    config.SnapshotConfig
	Logger    *zap.Logger
	Now       func() time.Time
}

// SnapshotService runs the tier-history batch. Runs are keyed upserts, so
// a retried or overlapping run converges on the same rows instead of
// duplicating them.
type SnapshotService struct {
	evaluator cohortEvaluator
	snapshots snapshotWriter
	metrics   *MetricsService
	queue     *jobs.Queue
	logger    *zap.Logger
	now       func() time.Time
}

// NewSnapshotService constructs the service and its worker queue.
func NewSnapshotService(p SnapshotServiceParams) *SnapshotService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	s := &SnapshotService{
		evaluator: p.Evaluator,
		snapshots: p.Snapshots,
		metrics:   p.Metrics,
		logger:    p.Logger,
		now:       p.Now,
	}
	s.queue = jobs.NewQueue("snapshots", s.handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: p.Config.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     p.Logger,
	})
	return s
}

// Start launches the background workers.
func (s *SnapshotService) Start() {
	s.queue.Start()
}

// Stop drains in-flight runs.
func (s *SnapshotService) Stop() {
	s.queue.Stop()
}

// Schedule enqueues a batch run for asynchronous execution.
func (s *SnapshotService) Schedule(run SnapshotRun) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("snapshot:%s:%s:%s", run.Subject, run.SchoolYear, run.Period),
		Type:    "snapshot_run",
		Payload: run,
	})
}

func (s *SnapshotService) handle(ctx context.Context, job jobs.Job) error {
	run, ok := job.Payload.(SnapshotRun)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	_, err := s.Run(ctx, run)
	return err
}

// Run executes one batch synchronously and returns the number of rows
// written. Every enrollment in the subject/year gets a row, including
// unscored ones; their Unknown standing is part of the history.
func (s *SnapshotService) Run(ctx context.Context, run SnapshotRun) (int, error) {
	if run.Subject == "" || run.SchoolYear == "" || run.Period == "" {
		return 0, fmt.Errorf("snapshot run requires subject, school year, and period")
	}

	computedAt := s.now()
	evaluations, err := s.evaluator.evaluateCohort(ctx, models.CohortFilter{
		Subject:    run.Subject,
		SchoolYear: run.SchoolYear,
	}, computedAt)
	if err != nil {
		return 0, fmt.Errorf("evaluate cohort for snapshot: %w", err)
	}

	written := 0
	for _, evaluation := range evaluations {
		snapshot := models.SupportSnapshot{
			EnrollmentID: evaluation.Enrollment.ID,
			Subject:      run.Subject,
			SchoolYear:   run.SchoolYear,
			Period:       run.Period,
			LatestScore:  evaluation.Support.LatestScore,
			Status:       string(evaluation.Support.Status),
			Tier:         evaluation.Support.Tier,
			Trend:        evaluation.Growth.Trend,
			ComputedAt:   computedAt,
		}
		if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
			return written, err
		}
		written++
	}

	s.metrics.RecordSnapshotRun(written)
	s.logger.Info("snapshot run completed",
		zap.String("subject", string(run.Subject)),
		zap.String("school_year", run.SchoolYear),
		zap.String("period", string(run.Period)),
		zap.Int("rows", written))
	return written, nil
}

// CurrentAcademicTerm derives the school year label and assessment period
// for a point in time. The school year rolls over in August; June and July
// count as EOY of the year just ended.
func CurrentAcademicTerm(now time.Time) (string, models.Period) {
	startYear := now.Year()
	if now.Month() < time.August {
		startYear--
	}
	label := fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)

	var period models.Period
	switch {
	case now.Month() >= time.August && now.Month() <= time.November:
		period = models.PeriodFall
	case now.Month() == time.December || now.Month() <= time.February:
		period = models.PeriodWinter
	case now.Month() >= time.March && now.Month() <= time.May:
		period = models.PeriodSpring
	default:
		period = models.PeriodEOY
	}
	return label, period
}
