package service

import (
	"context"
	"errors"
	"seclink_backend/internal/access"
	"seclink_backend/internal/config"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput 注册参数，Subject 仅教师使用，Phone 仅家长使用
type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     model.Role
	Subject  string
	Phone    string
}

type AuthService struct {
	Accounts AccountStore
	Denylist TokenDenylist
	Cfg      *config.JWTConfig
}

func NewAuthService(accounts AccountStore, denylist TokenDenylist, cfg *config.JWTConfig) *AuthService {
	return &AuthService{
		Accounts: accounts,
		Denylist: denylist,
		Cfg:      cfg,
	}
}

// Signup 只开放教师与家长注册，学生账户由教师建档时关联
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.Account, error) {
	if in.Role != model.RoleTeacher && in.Role != model.RoleParent {
		return nil, util.ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.Accounts.FindByEmail(ctx, email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Accounts.FindByUsername(ctx, in.Username); err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:     in.Name,
		Username: in.Username,
		Email:    email,
		Password: hashedPassword,
		Role:     in.Role,
	}
	switch in.Role {
	case model.RoleTeacher:
		account.TeacherProfile = &model.TeacherProfile{Subject: in.Subject}
	case model.RoleParent:
		account.ParentProfile = &model.ParentProfile{Phone: in.Phone}
	}

	if err := s.Accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	logger.Log.Info("account created",
		zap.Uint("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", util.ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Login 支持用户名或邮箱登录，两种失败原因返回同一错误
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *model.Account, error) {
	account, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, _, err := util.GenerateJWT(account, s.Cfg.Secret, s.Cfg.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*model.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return s.Accounts.FindByEmail(ctx, strings.ToLower(identifier))
	}
	account, err := s.Accounts.FindByUsername(ctx, identifier)
	if errors.Is(err, util.ErrNotFound) {
		return s.Accounts.FindByEmail(ctx, strings.ToLower(identifier))
	}
	return account, err
}

// Authenticate 校验签名、有效期与登出状态
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	if token == "" {
		return nil, util.ErrTokenMissing
	}
	claims, err := util.ParseJWT(token, s.Cfg.Secret)
	if err != nil {
		return nil, err
	}
	if s.Denylist != nil && claims.ID != "" {
		revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, util.ErrTokenRevoked
		}
	}
	return claims, nil
}

func (s *AuthService) CurrentAccount(ctx context.Context, ac access.AuthContext) (*model.Account, error) {
	account, err := s.Accounts.FindByID(ctx, ac.SubjectID)
	if errors.Is(err, util.ErrNotFound) {
		// 账户已被删除，令牌随之失效
		return nil, util.ErrTokenInvalid
	}
	return account, err
}

// Logout 将令牌加入黑名单直至其自然过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.Denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	logger.Log.Info("session revoked", zap.Uint("account_id", claims.AccountID))
	return nil
}
