package service

import (
	"context"
	"seclink_backend/internal/config"
	"seclink_backend/internal/util"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newResetService(w *world) *PasswordResetService {
	cfg := &config.Config{
		Mail:          config.MailConfig{FrontendBaseURL: "https://seclink.example/"},
		PasswordReset: config.PasswordResetConfig{TTL: time.Hour},
	}
	s := NewPasswordResetService(w.accounts, w.tokens, w.mailer, cfg)
	s.Now = w.clock
	return s
}

// issuedToken 从最近一封邮件中取出令牌
func issuedToken(t *testing.T, w *world) string {
	t.Helper()
	require.NotEmpty(t, w.mailer.Sent)
	body := w.mailer.Sent[len(w.mailer.Sent)-1].TextBody
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0)
	return strings.Fields(body[i+len("token="):])[0]
}

func TestResetRequestUnknownEmail(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)

	require.NoError(t, svc.Request(context.Background(), "ghost@example.com"))
	assert.Empty(t, w.mailer.Sent)
	assert.Zero(t, w.tokens.Len())
}

func TestResetRequestIssuesToken(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)

	require.NoError(t, svc.Request(context.Background(), " Parent@Example.com "))
	require.Len(t, w.mailer.Sent, 1)
	msg := w.mailer.Sent[0]
	assert.Equal(t, "parent@example.com", msg.To[0].Address)
	assert.Contains(t, msg.TextBody, "https://seclink.example/reset-password?token=")

	token := issuedToken(t, w)
	assert.Len(t, token, 43, "32 random bytes, unpadded base64url")
	stored, ok := w.tokens.Lookup(token)
	require.True(t, ok)
	assert.Equal(t, w.parent.ID, stored.AccountID)
	assert.Equal(t, w.now.Add(time.Hour), stored.ExpiryDate)
}

func TestResetRequestReplacesPreviousToken(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "parent@example.com"))
	first := issuedToken(t, w)
	require.NoError(t, svc.Request(ctx, "parent@example.com"))
	second := issuedToken(t, w)

	assert.NotEqual(t, first, second)
	assert.ErrorIs(t, svc.Confirm(ctx, first, "new-password"), util.ErrTokenInvalid)
	assert.NoError(t, svc.Confirm(ctx, second, "new-password"))
}

func TestResetConfirmIsSingleUse(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "parent@example.com"))
	token := issuedToken(t, w)

	require.NoError(t, svc.Confirm(ctx, token, "brand-new-password"))
	account, err := w.accounts.FindByID(ctx, w.parent.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("brand-new-password")))

	err = svc.Confirm(ctx, token, "another-password")
	assert.ErrorIs(t, err, util.ErrTokenInvalid)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}

func TestResetConfirmRejectsExpiredToken(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "parent@example.com"))
	token := issuedToken(t, w)

	w.advance(time.Hour)
	assert.ErrorIs(t, svc.Confirm(ctx, token, "too-late-password"), util.ErrTokenExpired)
	assert.Zero(t, w.tokens.Len(), "expired token is removed")

	account, err := w.accounts.FindByID(ctx, w.parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", account.Password)
}

func TestResetConfirmRejectsOverlongPasswordWithoutConsumingToken(t *testing.T) {
	w := newWorld(t)
	svc := newResetService(w)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "parent@example.com"))
	token := issuedToken(t, w)

	err := svc.Confirm(ctx, token, strings.Repeat("x", 80))
	assert.ErrorIs(t, err, util.ErrPasswordTooLong)
	assert.ErrorIs(t, err, util.ErrValidation)
	assert.Equal(t, 1, w.tokens.Len())

	require.NoError(t, svc.Confirm(ctx, token, "brand-new-password"))
}
