package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken("0b6f0c6e-7f3c-4a53-9d0e-3b1c2f1a4d5e", "alice", "USER")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "0b6f0c6e-7f3c-4a53-9d0e-3b1c2f1a4d5e", claims.AccountID)

	// Refresh Token不能当作Access Token使用
	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := m.GenerateToken("id", "bob", "MODERATOR")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(pair.AccessToken)
	assert.Same(t, apperrors.ErrTokenExpired, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	pair, err := NewManager("secret-a", time.Hour, time.Hour).GenerateToken("id", "carol", "USER")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.Same(t, apperrors.ErrInvalidToken, err)
}

func TestRefreshAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken("id-1", "dave", "USER")
	require.NoError(t, err)

	token, err := m.RefreshAccessToken(pair.RefreshToken, "MODERATOR")
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "MODERATOR", claims.Role)
	assert.Equal(t, "dave", claims.Username())

	_, err = m.RefreshAccessToken(pair.AccessToken, "USER")
	assert.Error(t, err, "Access Token不能用于续期")
}
