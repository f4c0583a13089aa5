package controller

import (
	"seclink_backend/internal/model"
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService  *service.AuthService
	ResetService *service.PasswordResetService
}

func NewAuthController(authService *service.AuthService, resetService *service.PasswordResetService) *AuthController {
	return &AuthController{
		AuthService:  authService,
		ResetService: resetService,
	}
}

// SignupRequest defines model for registration
// swagger:model SignupRequest
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=teacher parent"`
	Subject  string `json:"subject" binding:"max=50"`
	Phone    string `json:"phone" binding:"max=30"`
}

// Signup godoc
// @Summary 注册教师或家长账户
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body SignupRequest true "注册信息"
// @Success 201 {object} util.Response{data=model.Account} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 422 {object} util.Response "邮箱或用户名已被占用"
// @Router /api/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	account, err := c.AuthService.Signup(ctx.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
		Subject:  req.Subject,
		Phone:    req.Phone,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, account)
}

// swagger:model LoginRequest
type LoginRequest struct {
	// 用户名或邮箱
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录成功返回的令牌与账户
// swagger:model LoginResponse
type LoginResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"user"`
}

// Login godoc
// @Summary 登录
// @Description 使用用户名或邮箱登录，返回 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=LoginResponse}
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, account, err := c.AuthService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, LoginResponse{Token: token, Account: account})
}

// CheckSession godoc
// @Summary 当前会话
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Account}
// @Failure 401 {object} util.Response
// @Router /api/check-session [get]
func (c *AuthController) CheckSession(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	account, err := c.AuthService.CurrentAccount(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, account)
}

// Logout godoc
// @Summary 登出
// @Description 当前令牌在过期前不再可用
// @Tags 认证
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/logout [delete]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.AuthService.Logout(ctx.Request.Context(), claims); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Logged out successfully"})
}

// swagger:model PasswordResetRequest
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset godoc
// @Summary 申请重置密码
// @Description 无论邮箱是否存在都返回相同结果
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body PasswordResetRequest true "邮箱"
// @Success 200 {object} util.Response
// @Router /api/password-reset-request [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ResetService.Request(ctx.Request.Context(), req.Email); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "If the email is registered, a password reset link has been sent."})
}

// swagger:model PasswordResetConfirm
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ConfirmPasswordReset godoc
// @Summary 使用令牌设置新密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body PasswordResetConfirm true "令牌与新密码"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response "令牌无效或已过期"
// @Router /api/password-reset-confirm [post]
func (c *AuthController) ConfirmPasswordReset(ctx *gin.Context) {
	var req PasswordResetConfirm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ResetService.Confirm(ctx.Request.Context(), req.Token, req.NewPassword); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Password has been reset successfully."})
}
