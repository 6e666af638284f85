package service

import (
	"context"

	"go.uber.org/zap"
)

type legacyBridgeRepository interface {
	LegacyIDByEnrollment(ctx context.Context, enrollmentID string) (*int64, error)
	EnrollmentIDsByLegacy(ctx context.Context, legacyIDs []int64, schoolYear string) (map[int64]string, error)
}

// IdentityService bridges the stable enrollment identity to the legacy
// numeric student ids still used by parts of the store. It is an explicit
// injected capability, not an ad-hoc table scan.
type IdentityService struct {
	repo   legacyBridgeRepository
	logger *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(repo legacyBridgeRepository, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, logger: logger}
}

// ResolveLegacy returns the legacy student id for an enrollment, or nil
// when the enrollment has no bridge.
func (s *IdentityService) ResolveLegacy(ctx context.Context, enrollmentID string) (*int64, error) {
	return s.repo.LegacyIDByEnrollment(ctx, enrollmentID)
}

// BridgeToEnrollments maps legacy ids to enrollment ids for one school
// year. Unresolvable legacy ids are dropped from the result; callers
// exclude their rows rather than failing the request.
func (s *IdentityService) BridgeToEnrollments(ctx context.Context, legacyIDs []int64, schoolYear string) (map[int64]string, error) {
	bridge, err := s.repo.EnrollmentIDsByLegacy(ctx, legacyIDs, schoolYear)
	if err != nil {
		return nil, err
	}
	if dropped := len(legacyIDs) - len(bridge); dropped > 0 {
		s.logger.Debug("legacy ids without enrollments excluded", zap.Int("dropped", dropped))
	}
	return bridge, nil
}
