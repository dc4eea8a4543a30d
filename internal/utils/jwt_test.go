package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/yemak/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken("secret", userID, models.RoleCourier, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, gotRole, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, models.RoleCourier, gotRole)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), models.RoleUser, time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), models.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, _, err := ParseToken("secret", "not.a.token")
	assert.Error(t, err)
}
