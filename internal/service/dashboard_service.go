package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

// statusBucketOrder fixes the display order of the dashboard slices.
var statusBucketOrder = []models.SupportStatusLabel{
	models.StatusOnTrack,
	models.StatusMonitor,
	models.StatusNeedsSupport,
	models.StatusUnknown,
}

// DashboardOverview is the composed dashboard payload for one cohort.
type DashboardOverview struct {
	Subject       models.Subject    `json:"subject_area"`
	SchoolYear    string            `json:"school_year"`
	Period        models.Period     `json:"assessment_period,omitempty"`
	KPI           models.CohortKPI  `json:"kpi"`
	Growth        models.GrowthSummary `json:"growth"`
	TopPriorities []PriorityStudent `json:"top_priorities"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// DashboardServiceParams bundles DashboardService dependencies.
type DashboardServiceParams struct {
	Evaluator cohortEvaluator
	Snapshots snapshotReader
	Cache     *CacheService
	Config    config.DashboardConfig
	Scoring   config.ScoringConfig
	Logger    *zap.Logger
	Now       func() time.Time
}

// DashboardService aggregates cohort KPIs over the evaluation pipeline.
// Responses are cached; any write through the assessment service
// invalidates them.
type DashboardService struct {
	evaluator   cohortEvaluator
	snapshots   snapshotReader
	cache       *CacheService
	cfg         config.DashboardConfig
	overdueDays int
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(p DashboardServiceParams) *DashboardService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Config.TopPriorityLimit <= 0 {
		p.Config.TopPriorityLimit = 15
	}
	return &DashboardService{
		evaluator:   p.Evaluator,
		snapshots:   p.Snapshots,
		cache:       p.Cache,
		cfg:         p.Config,
		overdueDays: priorityConfigFrom(p.Scoring).OverdueDays,
		logger:      p.Logger,
		now:         p.Now,
	}
}

// DashboardCachePrefix namespaces dashboard cache keys for invalidation.
const DashboardCachePrefix = "dashboard"

func dashboardCacheKey(filter models.CohortFilter, period models.Period) string {
	grade := "-"
	if filter.GradeLevel != nil {
		grade = fmt.Sprintf("%d", *filter.GradeLevel)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s",
		DashboardCachePrefix, filter.Subject, filter.SchoolYear, period,
		filter.TeacherName, filter.ClassName, grade)
}

// Overview computes (or serves from cache) the dashboard for one cohort.
// period scopes the tier-movement comparison; it does not filter the
// assessments considered.
func (s *DashboardService) Overview(ctx context.Context, filter models.CohortFilter, period models.Period) (*DashboardOverview, error) {
	if filter.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_area is required")
	}
	if filter.SchoolYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school_year is required")
	}

	key := dashboardCacheKey(filter, period)
	var cached DashboardOverview
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	overview, err := s.compute(ctx, filter, period)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, overview, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return overview, nil
}

func (s *DashboardService) compute(ctx context.Context, filter models.CohortFilter, period models.Period) (*DashboardOverview, error) {
	asOf := s.now()
	evaluations, err := s.evaluator.evaluateCohort(ctx, filter, asOf)
	if err != nil {
		return nil, err
	}

	priorSnapshots, err := s.loadPriorSnapshots(ctx, filter, period)
	if err != nil {
		return nil, err
	}

	kpi := computeKPI(evaluations, priorSnapshots, s.overdueDays)

	growthRecords := make([]models.GrowthRecord, len(evaluations))
	for i, evaluation := range evaluations {
		growthRecords[i] = evaluation.Growth
	}

	return &DashboardOverview{
		Subject:       filter.Subject,
		SchoolYear:    filter.SchoolYear,
		Period:        period,
		KPI:           kpi,
		Growth:        scoring.SummarizeGrowth(growthRecords),
		TopPriorities: topPriorities(evaluations, s.cfg.TopPriorityLimit),
		GeneratedAt:   asOf,
	}, nil
}

// loadPriorSnapshots fetches the snapshot rows for the period before the
// requested one. Fall has no prior period, and an unset period skips the
// comparison entirely.
func (s *DashboardService) loadPriorSnapshots(ctx context.Context, filter models.CohortFilter, period models.Period) ([]models.SupportSnapshot, error) {
	prior := period.Previous()
	if prior == "" || s.snapshots == nil {
		return nil, nil
	}
	snapshots, err := s.snapshots.ListForPeriod(ctx, filter.Subject, filter.SchoolYear, prior)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// computeKPI aggregates the cohort. Enrollments missing data stay in the
// denominators as "total" but are excluded from numerators requiring the
// missing datum, so percentages never conflate "no score" with zero.
func computeKPI(evaluations []cohortEvaluation, priorSnapshots []models.SupportSnapshot, overdueDays int) models.CohortKPI {
	kpi := models.CohortKPI{Total: len(evaluations)}

	statusCounts := make(map[models.SupportStatusLabel]int)
	var daysValues []float64
	var needsSupport, covered int

	for _, evaluation := range evaluations {
		if evaluation.Current != nil {
			kpi.Assessed++
		}
		statusCounts[evaluation.Support.Status]++

		if days := evaluation.Priority.DaysSinceAssessment; days != nil {
			daysValues = append(daysValues, float64(*days))
			if *days > overdueDays {
				kpi.Overdue++
			}
		}
		if evaluation.Support.Tier.NeedsSupport() {
			needsSupport++
			if evaluation.Priority.HasActiveIntervention {
				covered++
			}
		}
	}

	kpi.AssessedPercent = percentOf(kpi.Assessed, kpi.Total)
	kpi.OverduePercent = percentOf(kpi.Overdue, kpi.Total)

	for _, status := range statusBucketOrder {
		kpi.StatusBuckets = append(kpi.StatusBuckets, models.StatusBucket{
			Status:  status,
			Count:   statusCounts[status],
			Percent: percentOf(statusCounts[status], kpi.Total),
		})
	}

	if len(daysValues) > 0 {
		median := floatMedian(daysValues)
		kpi.MedianDaysSince = &median
	}
	if needsSupport > 0 {
		coverage := percentOf(covered, needsSupport)
		kpi.InterventionCoverage = &coverage
	}

	kpi.TierMovement = computeTierMovement(evaluations, priorSnapshots)
	return kpi
}

// computeTierMovement compares each student's current tier against the
// prior-period snapshot. Unknown tiers on either side are excluded; with no
// snapshot rows the movement is all zeros and flagged unavailable.
func computeTierMovement(evaluations []cohortEvaluation, priorSnapshots []models.SupportSnapshot) models.TierMovement {
	if len(priorSnapshots) == 0 {
		return models.TierMovement{}
	}
	priorTiers := make(map[string]models.Tier, len(priorSnapshots))
	for _, snapshot := range priorSnapshots {
		priorTiers[snapshot.EnrollmentID] = snapshot.Tier
	}

	movement := models.TierMovement{SnapshotAvailable: true}
	for _, evaluation := range evaluations {
		prior, ok := priorTiers[evaluation.Enrollment.ID]
		if !ok || prior == models.TierUnknown || evaluation.Support.Tier == models.TierUnknown {
			continue
		}
		switch {
		case evaluation.Support.Tier.Rank() > prior.Rank():
			movement.Improved++
		case evaluation.Support.Tier.Rank() < prior.Rank():
			movement.Declined++
		default:
			movement.Unchanged++
		}
	}
	return movement
}

func topPriorities(evaluations []cohortEvaluation, limit int) []PriorityStudent {
	students := make([]PriorityStudent, 0, len(evaluations))
	for _, evaluation := range evaluations {
		if evaluation.Priority.Score <= 0 {
			continue
		}
		students = append(students, PriorityStudent{
			Enrollment:  evaluation.Enrollment,
			LatestScore: evaluation.Support.LatestScore,
			Record:      evaluation.Priority,
			ReasonsText: scoring.ReasonsText(evaluation.Priority.Reasons),
		})
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Record.Score != students[j].Record.Score {
			return students[i].Record.Score > students[j].Record.Score
		}
		return students[i].Enrollment.StudentName < students[j].Enrollment.StudentName
	})
	if len(students) > limit {
		students = students[:limit]
	}
	return students
}

func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func floatMedian(values []float64) float64 {
	ordered := make([]float64, len(values))
	copy(ordered, values)
	sort.Float64s(ordered)
	mid := len(ordered) / 2
	if len(ordered)%2 == 0 {
		return (ordered[mid-1] + ordered[mid]) / 2
	}
	return ordered[mid]
}
