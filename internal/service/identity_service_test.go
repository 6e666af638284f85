package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

type stubBridgeRepo struct {
	legacyByEnrollment map[string]*int64
	enrollmentByLegacy map[int64]string
}

func (s *stubBridgeRepo) LegacyIDByEnrollment(_ context.Context, enrollmentID string) (*int64, error) {
	legacy, ok := s.legacyByEnrollment[enrollmentID]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return legacy, nil
}

func (s *stubBridgeRepo) EnrollmentIDsByLegacy(_ context.Context, legacyIDs []int64, _ string) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range legacyIDs {
		if enrollment, ok := s.enrollmentByLegacy[id]; ok {
			out[id] = enrollment
		}
	}
	return out, nil
}

func TestBridgeToEnrollmentsDropsUnresolvable(t *testing.T) {
	legacy := int64(1042)
	svc := NewIdentityService(&stubBridgeRepo{
		legacyByEnrollment: map[string]*int64{"enr-1": &legacy},
		enrollmentByLegacy: map[int64]string{1042: "enr-1"},
	}, nil)

	bridge, err := svc.BridgeToEnrollments(context.Background(), []int64{1042, 9999}, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1042: "enr-1"}, bridge)

	resolved, err := svc.ResolveLegacy(context.Background(), "enr-1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, int64(1042), *resolved)
}

func TestResolveLegacyNoBridge(t *testing.T) {
	svc := NewIdentityService(&stubBridgeRepo{
		legacyByEnrollment: map[string]*int64{"enr-1": nil},
	}, nil)

	resolved, err := svc.ResolveLegacy(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
