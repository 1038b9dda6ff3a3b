package jobs_test

import (
	"context"
	"testing"
	"time"

	"gadgetstore/internal/jobs"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func userWithToken(t *testing.T, repo repositories.UserRepository, email, token string, expires time.Time) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", ResetPasswordToken: &token, ResetPasswordExpires: &expires}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestPurgeExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()
	expired := userWithToken(t, repo, "old@example.com", "old-token", time.Now().Add(-time.Hour))
	live := userWithToken(t, repo, "new@example.com", "new-token", time.Now().Add(time.Hour))

	s, err := jobs.New(repo, "@every 1h", zap.NewNop())
	require.NoError(t, err)

	n, err := s.PurgeExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpires)

	got, err = repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResetPasswordToken)
	assert.Equal(t, "new-token", *got.ResetPasswordToken)

	n, err = s.PurgeExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := jobs.New(repositories.NewMemoryUserRepository(), "every tuesday", zap.NewNop())
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := jobs.New(repositories.NewMemoryUserRepository(), "*/5 * * * *", zap.NewNop())
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
