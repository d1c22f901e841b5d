package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", "sgad-test", time.Hour)
	userID := uuid.New()

	token, err := m.GenerateToken(userID, "ana@sgad.local", "Ana", "avaliador", "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "avaliador", claims.Role)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-1", "sgad", time.Hour).GenerateToken(uuid.New(), "a@b.c", "A", "admin", "v")
	require.NoError(t, err)

	_, err = NewManager("secret-2", "sgad", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_WrongIssuer(t *testing.T) {
	token, err := NewManager("secret", "other", time.Hour).GenerateToken(uuid.New(), "a@b.c", "A", "admin", "v")
	require.NoError(t, err)

	_, err = NewManager("secret", "sgad", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", "sgad", -time.Minute)
	token, err := m.GenerateToken(uuid.New(), "a@b.c", "A", "admin", "v")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	_, err := NewManager("secret", "sgad", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
