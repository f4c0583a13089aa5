package util

import (
	"seclink_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseJWT(t *testing.T) {
	account := &model.Account{Username: "mwalimu", Role: model.RoleTeacher}
	account.ID = 5

	token, claims, err := GenerateJWT(account, "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(5), parsed.AccountID)
	assert.Equal(t, model.RoleTeacher, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseJWTErrors(t *testing.T) {
	account := &model.Account{Username: "mzazi", Role: model.RoleParent}
	account.ID = 1

	expired, _, err := GenerateJWT(account, "secret", -time.Minute)
	require.NoError(t, err)
	valid, _, err := GenerateJWT(account, "secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "expired", token: expired, secret: "secret", wantErr: ErrTokenExpired},
		{name: "wrong secret", token: valid, secret: "other", wantErr: ErrTokenInvalid},
		{name: "malformed", token: "not.a.jwt", secret: "secret", wantErr: ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}
