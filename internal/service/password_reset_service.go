package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"seclink_backend/internal/config"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"seclink_backend/pkg/mailer"
	"strings"
	"time"

	"go.uber.org/zap"
)

const resetTokenBytes = 32

type PasswordResetService struct {
	Accounts AccountStore
	Tokens   ResetTokenStore
	Mailer   mailer.Mailer
	TTL      time.Duration
	MailCfg  *config.MailConfig
	Now      func() time.Time
}

func NewPasswordResetService(accounts AccountStore, tokens ResetTokenStore, m mailer.Mailer, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{
		Accounts: accounts,
		Tokens:   tokens,
		Mailer:   m,
		TTL:      cfg.PasswordReset.TTL,
		MailCfg:  &cfg.Mail,
		Now:      time.Now,
	}
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Request 账户不存在时静默返回，调用方始终得到相同的响应
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	account, err := s.Accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, util.ErrNotFound) {
		logger.Log.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	// 同一账户只保留最新的令牌
	if err := s.Tokens.DeleteByAccount(ctx, account.ID); err != nil {
		return err
	}
	record := &model.PasswordResetToken{
		AccountID:  account.ID,
		Token:      token,
		ExpiryDate: s.Now().Add(s.TTL),
	}
	if err := s.Tokens.Create(ctx, record); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.MailCfg.FrontendBaseURL, "/"), token)
	msg := &mailer.Message{
		To:      []mail.Address{{Name: account.Name, Address: account.Email}},
		Subject: "Password reset",
		TextBody: fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. It expires in %s.\n\n%s\n\nIf you did not request a reset you can ignore this email.\n",
			account.Name, s.TTL, link),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		// 邮件发送失败不影响响应，避免泄露账户是否存在
		logger.Log.Error("failed to send password reset email", zap.Uint("account_id", account.ID), zap.Error(err))
		return nil
	}

	logger.Log.Info("password reset requested", zap.Uint("account_id", account.ID))
	return nil
}

// Confirm 令牌一经取出即被删除；过期令牌同样被删除并拒绝
// 新密码先完成哈希，不合法的密码不会消耗令牌
func (s *PasswordResetService) Confirm(ctx context.Context, token, newPassword string) error {
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	record, err := s.Tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if record.Expired(s.Now()) {
		return util.ErrTokenExpired
	}
	if err := s.Accounts.UpdatePassword(ctx, record.AccountID, hashed); err != nil {
		return err
	}

	logger.Log.Info("password reset completed", zap.Uint("account_id", record.AccountID))
	return nil
}
