package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// swagger:model ClassRequest
type ClassRequest struct {
	ClassName string `json:"class_name" binding:"required,max=50"`
}

// ListClasses godoc
// @Summary 班级列表
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	classes, err := c.ClassService.List(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// GetClass godoc
// @Summary 班级详情
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response{data=model.Class}
// @Router /api/classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	class, err := c.ClassService.Get(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// CreateClass godoc
// @Summary 创建班级
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body ClassRequest true "班级"
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	class, err := c.ClassService.Create(ctx.Request.Context(), ac, req.ClassName)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// UpdateClass godoc
// @Summary 修改班级名称
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "班级ID"
// @Param body body ClassRequest true "班级"
// @Success 200 {object} util.Response{data=model.Class}
// @Router /api/classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	class, err := c.ClassService.Update(ctx.Request.Context(), ac, id, req.ClassName)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// DeleteClass godoc
// @Summary 删除班级
// @Tags 班级
// @Security BearerAuth
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.ClassService.Delete(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Class deleted"})
}
