package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sheetpos/internal/apperr"
	"sheetpos/internal/session"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	svc := NewService("hunter2", "test-secret", session.NewStore(), zap.NewNop()).(*service)
	require.True(t, svc.Enabled())
	return svc
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	token, err := svc.Login(ctx, "sess-1", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NoError(t, svc.Verify(token))
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Login(ctx, "sess-1", "wrong")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestLoginLockoutAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		_, err := svc.Login(ctx, "sess-1", "wrong")
		assert.Equal(t, apperr.Validation, apperr.KindOf(err), "attempt %d", i+1)
	}
	_, err := svc.Login(ctx, "sess-1", "wrong")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err), "fifth failure locks")

	// Even the right password is refused while locked.
	_, err = svc.Login(ctx, "sess-1", "hunter2")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// Other sessions are unaffected.
	_, err = svc.Login(ctx, "sess-2", "hunter2")
	assert.NoError(t, err)

	// The lock expires.
	now = now.Add(301 * time.Second)
	_, err = svc.Login(ctx, "sess-1", "hunter2")
	assert.NoError(t, err)
}

func TestSuccessfulLoginResetsAttempts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(ctx, "sess-1", "wrong")
	}
	_, err := svc.Login(ctx, "sess-1", "hunter2")
	require.NoError(t, err)

	// The counter starts over: four more failures do not lock.
	for i := 0; i < 4; i++ {
		_, err = svc.Login(ctx, "sess-1", "wrong")
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	}
}

func TestVerifyRejectsGarbageAndForeignTokens(t *testing.T) {
	svc := newTestService(t)
	assert.Error(t, svc.Verify("not-a-token"))

	other := NewService("hunter2", "other-secret", session.NewStore(), zap.NewNop())
	token, err := other.Login(context.Background(), "s", "hunter2")
	require.NoError(t, err)
	assert.Error(t, svc.Verify(token))
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	svc := NewService("", "secret", session.NewStore(), zap.NewNop())
	assert.False(t, svc.Enabled())

	_, err := svc.Login(context.Background(), "s", "anything")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestPrehashedPasswordAccepted(t *testing.T) {
	// A bcrypt hash in the env is used as-is rather than re-hashed.
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewService(string(hash), "secret", session.NewStore(), zap.NewNop())
	require.True(t, svc.Enabled())

	_, err = svc.Login(context.Background(), "s", "password")
	assert.NoError(t, err)

	_, err = svc.Login(context.Background(), "s", "not-the-password")
	assert.Error(t, err)
}
