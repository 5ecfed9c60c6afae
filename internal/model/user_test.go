package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshTokenVerify(t *testing.T) {
	now := time.Now().UTC()
	fingerprint := "7aa54d5a-d3ef-4cbc-a472-6f3343cd3b48"

	token := &RefreshToken{
		ID:          "bb59e901-4b2e-41d3-9067-7a604e542a60",
		UserID:      "64ba0438-a3b0-48d1-ad92-8d65d1f50cbc",
		Fingerprint: fingerprint,
		ExpiresIn:   3600,
		CreatedAt:   now,
	}

	t.Log("valid fingerprint before expiration")
	{
		require.NoError(t, token.Verify(fingerprint, now.Add(time.Minute)))
	}

	t.Log("wrong fingerprint")
	{
		err := token.Verify("00000000-0000-0000-0000-000000000000", now.Add(time.Minute))
		require.ErrorIs(t, err, ErrInvalidFingerprint)
	}

	t.Log("expired token")
	{
		err := token.Verify(fingerprint, now.Add(2*time.Hour))
		require.ErrorIs(t, err, ErrRefreshTokenExpired)
	}
}
