package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	SubjectService *service.SubjectService
}

func NewSubjectController(subjectService *service.SubjectService) *SubjectController {
	return &SubjectController{SubjectService: subjectService}
}

// swagger:model SubjectRequest
type SubjectRequest struct {
	SubjectName *string `json:"subject_name" binding:"omitempty,max=50"`
	SubjectCode *string `json:"subject_code" binding:"omitempty,max=10"`
	ClassID     *uint   `json:"class_id" binding:"omitempty,gt=0"`
}

func (r SubjectRequest) input() service.SubjectInput {
	return service.SubjectInput{
		SubjectName: r.SubjectName,
		SubjectCode: r.SubjectCode,
		ClassID:     r.ClassID,
	}
}

// ListSubjects godoc
// @Summary 科目列表
// @Tags 科目
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	subjects, err := c.SubjectService.List(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// GetSubject godoc
// @Summary 科目详情
// @Tags 科目
// @Produce  json
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	subject, err := c.SubjectService.Get(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// CreateSubject godoc
// @Summary 创建科目
// @Description 班级必须属于当前教师
// @Tags 科目
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body SubjectRequest true "科目"
// @Success 201 {object} util.Response{data=model.Subject}
// @Router /api/subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	var req SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	subject, err := c.SubjectService.Create(ctx.Request.Context(), ac, req.input())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// UpdateSubject godoc
// @Summary 修改科目
// @Tags 科目
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Param body body SubjectRequest true "科目"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	subject, err := c.SubjectService.Update(ctx.Request.Context(), ac, id, req.input())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// DeleteSubject godoc
// @Summary 删除科目
// @Tags 科目
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.SubjectService.Delete(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Subject deleted"})
}
