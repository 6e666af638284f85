package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user != nil && strings.EqualFold(s.user.Email, email) {
		u := *s.user
		return &u, nil
	}
	return nil, appErrors.ErrInvalidCredentials
}

func testUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "usr-1",
		Email:        "teacher@school.edu",
		PasswordHash: string(hash),
		FullName:     "Ms. Rivera",
		Role:         models.RoleTeacher,
		IsActive:     active,
	}
}

func newTestAuthService(user *models.User) *AuthService {
	return NewAuthService(AuthServiceParams{
		Users: &stubUsers{user: user},
		JWT:   config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
	})
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestAuthService(testUser(t, "s3cret", true))

	result, err := svc.Login(context.Background(), "Teacher@School.edu", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)
	assert.Equal(t, models.RoleTeacher, result.User.Role)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "teacher@school.edu", claims.Email)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestAuthService(testUser(t, "s3cret", true))
	_, err := svc.Login(context.Background(), "teacher@school.edu", "nope")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestAuthService(testUser(t, "s3cret", true))
	_, err := svc.Login(context.Background(), "other@school.edu", "s3cret")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc := newTestAuthService(testUser(t, "s3cret", false))
	_, err := svc.Login(context.Background(), "teacher@school.edu", "s3cret")
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(testUser(t, "s3cret", true))
	result, err := svc.Login(context.Background(), "teacher@school.edu", "s3cret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewAuthService(AuthServiceParams{
		Users: &stubUsers{},
		JWT:   config.JWTConfig{Secret: "different-secret", Expiration: time.Hour},
	})
	_, err = other.ValidateToken(result.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
