package service

import (
	"context"
	"time"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
)

type enrollmentReader interface {
	ListByCohort(ctx context.Context, filter models.CohortFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type assessmentReader interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error)
	ListForEnrollments(ctx context.Context, enrollmentIDs []string, subject models.Subject, schoolYear string) ([]models.Assessment, error)
}

type thresholdReader interface {
	Find(ctx context.Context, key models.ThresholdKey) (*models.BenchmarkThreshold, error)
	ListForYear(ctx context.Context, subject models.Subject, schoolYear string) ([]models.BenchmarkThreshold, error)
}

type interventionReader interface {
	MapByEnrollment(ctx context.Context, enrollmentIDs []string, subject models.Subject) (map[string][]models.Intervention, error)
}

type snapshotReader interface {
	ListForPeriod(ctx context.Context, subject models.Subject, schoolYear string, period models.Period) ([]models.SupportSnapshot, error)
}

type snapshotWriter interface {
	Upsert(ctx context.Context, snapshot models.SupportSnapshot) error
}

// cohortEvaluation is the full derived view for one enrollment within a
// cohort pass: selected current assessment, tier, growth, and priority.
type cohortEvaluation struct {
	Enrollment models.EnrollmentDetail
	Current    *models.Assessment
	Support    models.SupportStatus
	Growth     models.GrowthRecord
	Priority   models.PriorityRecord
}

// cohortEvaluator is the seam between the per-student pipeline and its
// aggregate consumers (dashboard, snapshots, exports).
type cohortEvaluator interface {
	evaluateCohort(ctx context.Context, filter models.CohortFilter, asOf time.Time) ([]cohortEvaluation, error)
}

func growthConfigFrom(cfg config.ScoringConfig) scoring.GrowthConfig {
	if cfg.TrendImprovingDelta == 0 && cfg.TrendDecliningDelta == 0 {
		return scoring.DefaultGrowthConfig()
	}
	return scoring.GrowthConfig{
		ImprovingDelta: cfg.TrendImprovingDelta,
		DecliningDelta: cfg.TrendDecliningDelta,
	}
}

func priorityConfigFrom(cfg config.ScoringConfig) scoring.PriorityConfig {
	weights := scoring.PriorityWeights{
		TierIntensive:  cfg.WeightTierIntensive,
		TierStrategic:  cfg.WeightTierStrategic,
		TrendDeclining: cfg.WeightTrendDeclining,
		TrendStable:    cfg.WeightTrendStable,
		Overdue:        cfg.WeightOverdue,
		Aging:          cfg.WeightAging,
		NoIntervention: cfg.WeightNoIntervention,
	}
	if weights == (scoring.PriorityWeights{}) {
		return scoring.DefaultPriorityConfig()
	}
	out := scoring.PriorityConfig{
		Weights:     weights,
		OverdueDays: cfg.OverdueDays,
		AgingDays:   cfg.AgingDays,
	}
	if out.OverdueDays <= 0 {
		out.OverdueDays = scoring.DefaultPriorityConfig().OverdueDays
	}
	if out.AgingDays <= 0 {
		out.AgingDays = scoring.DefaultPriorityConfig().AgingDays
	}
	return out
}

// daysSince measures whole days from the assessment's recency date to the
// supplied as-of instant, floored at zero for future-dated rows.
func daysSince(current *models.Assessment, asOf time.Time) *int {
	if current == nil {
		return nil
	}
	days := int(asOf.Sub(current.SortDate()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

func hasActiveIntervention(interventions []models.Intervention) bool {
	for _, intervention := range interventions {
		if intervention.IsActive() {
			return true
		}
	}
	return false
}
