package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

func TestNewManager_ModeValidation(t *testing.T) {
	_, err := NewManager(ModeInternal, "", time.Hour)
	assert.ErrorIs(t, err, shared.ErrConfiguration)

	_, err = NewManager(Mode("saml"), "secret", time.Hour)
	assert.ErrorIs(t, err, shared.ErrConfiguration)

	_, err = NewManager(ModeMock, "", time.Hour)
	assert.NoError(t, err)
}

func TestMockMode_IssueRoundTrip(t *testing.T) {
	m, err := NewManager(ModeMock, "", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	token, err := m.Issue(userID, "ana@example.com")
	require.NoError(t, err)

	user, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestMockMode_ArbitraryTokenIsStable(t *testing.T) {
	m, err := NewManager(ModeMock, "", time.Hour)
	require.NoError(t, err)

	first, err := m.Verify("any-opaque-token")
	require.NoError(t, err)
	second, err := m.Verify("any-opaque-token")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Contains(t, first.Email, "@mock.unitrack")

	other, err := m.Verify("different-token")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestStaticMode_AcceptsOnlyConfiguredToken(t *testing.T) {
	m, err := NewManager(ModeStatic, "ops-token-123", time.Hour)
	require.NoError(t, err)

	user, err := m.Verify("ops-token-123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)

	again, err := m.Verify("ops-token-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, err = m.Verify("something-else")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = NewManager(ModeStatic, "", time.Hour)
	assert.ErrorIs(t, err, shared.ErrConfiguration)
}

func TestVerify_EmptyToken(t *testing.T) {
	m, err := NewManager(ModeMock, "", time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("  ")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestInternalMode_IssueVerifyRoundTrip(t *testing.T) {
	m, err := NewManager(ModeInternal, "test-secret", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	token, err := m.Issue(userID, "ana@example.com")
	require.NoError(t, err)

	user, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestInternalMode_WrongSecretRejected(t *testing.T) {
	issuer, err := NewManager(ModeInternal, "secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager(ModeInternal, "secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestInternalMode_ExpiredTokenRejected(t *testing.T) {
	m, err := NewManager(ModeInternal, "test-secret", time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestInternalMode_GarbageTokenRejected(t *testing.T) {
	m, err := NewManager(ModeInternal, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("not.a.jwt")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestIssueFor_InvalidUserID(t *testing.T) {
	m, err := NewManager(ModeMock, "", time.Hour)
	require.NoError(t, err)

	_, err = m.IssueFor("not-a-uuid", "ana@example.com")
	assert.Error(t, err)
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(0)

	hash, err := h.Hash("hunter2!")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", hash)

	assert.NoError(t, h.Verify(hash, "hunter2!"))
	assert.ErrorIs(t, h.Verify(hash, "wrong"), shared.ErrBadCredentials)
}
