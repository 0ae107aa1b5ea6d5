package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.GeneratePlayerToken("D9E1F2A3", "p_12ab34cd", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidatePlayerToken(token)
	require.NoError(t, err)
	assert.Equal(t, "D9E1F2A3", claims.RoomCode)
	assert.Equal(t, "p_12ab34cd", claims.PlayerID)
	assert.True(t, claims.IsHost)
}

func TestValidatePlayerToken_Rejections(t *testing.T) {
	svc := NewAuthService("test-secret")

	_, err := svc.ValidatePlayerToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Signed under a different secret.
	other := NewAuthService("other-secret")
	token, err := other.GeneratePlayerToken("D9E1F2A3", "p_12ab34cd", false)
	require.NoError(t, err)

	_, err = svc.ValidatePlayerToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
