package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AccountController struct {
	AccountService *service.AccountService
}

func NewAccountController(accountService *service.AccountService) *AccountController {
	return &AccountController{AccountService: accountService}
}

// UpdateAccountRequest 只更新提供的字段
// swagger:model UpdateAccountRequest
type UpdateAccountRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Username *string `json:"username" binding:"omitempty,min=3,max=80"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Subject  *string `json:"subject" binding:"omitempty,max=50"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
}

func (r UpdateAccountRequest) input() service.UpdateAccountInput {
	return service.UpdateAccountInput{
		Name:     r.Name,
		Username: r.Username,
		Email:    r.Email,
		Subject:  r.Subject,
		Phone:    r.Phone,
	}
}

// ListTeachers godoc
// @Summary 教师列表
// @Tags 账户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Account}
// @Router /api/teachers [get]
func (c *AccountController) ListTeachers(ctx *gin.Context) {
	teachers, err := c.AccountService.ListTeachers(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, teachers)
}

// GetTeacher godoc
// @Summary 教师详情
// @Tags 账户
// @Produce  json
// @Security BearerAuth
// @Param id path int true "教师ID"
// @Success 200 {object} util.Response{data=model.Account}
// @Failure 404 {object} util.Response
// @Router /api/teachers/{id} [get]
func (c *AccountController) GetTeacher(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	teacher, err := c.AccountService.GetTeacher(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, teacher)
}

// UpdateTeacher godoc
// @Summary 更新教师资料
// @Description 只能修改自己的资料
// @Tags 账户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "教师ID"
// @Param body body UpdateAccountRequest true "资料"
// @Success 200 {object} util.Response{data=model.Account}
// @Failure 403 {object} util.Response
// @Router /api/teachers/{id} [put]
func (c *AccountController) UpdateTeacher(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	teacher, err := c.AccountService.UpdateTeacher(ctx.Request.Context(), ac, id, req.input())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, teacher)
}

// DeleteTeacher godoc
// @Summary 注销教师账户
// @Description 仍有班级或科目时拒绝
// @Tags 账户
// @Security BearerAuth
// @Param id path int true "教师ID"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/teachers/{id} [delete]
func (c *AccountController) DeleteTeacher(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.AccountService.DeleteTeacher(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Teacher deleted"})
}

// ListParents godoc
// @Summary 家长列表
// @Description 教师看到所教学生的家长，家长只看到自己
// @Tags 账户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Account}
// @Router /api/parents [get]
func (c *AccountController) ListParents(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	parents, err := c.AccountService.ListParents(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, parents)
}

// GetParent godoc
// @Summary 家长详情
// @Description 家长本人或其孩子的任课教师可查看
// @Tags 账户
// @Produce  json
// @Security BearerAuth
// @Param id path int true "家长ID"
// @Success 200 {object} util.Response{data=model.Account}
// @Router /api/parents/{id} [get]
func (c *AccountController) GetParent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	parent, err := c.AccountService.GetParent(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, parent)
}

// UpdateParent godoc
// @Summary 更新家长资料
// @Tags 账户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "家长ID"
// @Param body body UpdateAccountRequest true "资料"
// @Success 200 {object} util.Response{data=model.Account}
// @Router /api/parents/{id} [put]
func (c *AccountController) UpdateParent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	parent, err := c.AccountService.UpdateParent(ctx.Request.Context(), ac, id, req.input())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, parent)
}

// DeleteParent godoc
// @Summary 注销家长账户
// @Tags 账户
// @Security BearerAuth
// @Param id path int true "家长ID"
// @Success 200 {object} util.Response
// @Router /api/parents/{id} [delete]
func (c *AccountController) DeleteParent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.AccountService.DeleteParent(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Parent deleted"})
}
