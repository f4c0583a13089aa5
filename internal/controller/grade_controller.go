package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	GradeService *service.GradeService
}

func NewGradeController(gradeService *service.GradeService) *GradeController {
	return &GradeController{GradeService: gradeService}
}

// GradeRequest 成绩字母 A-E，不区分大小写
// swagger:model GradeRequest
type GradeRequest struct {
	SubjectID uint   `json:"subject_id" binding:"required,gt=0"`
	Grade     string `json:"grade" binding:"required,grade"`
}

// ListGrades godoc
// @Summary 学生成绩
// @Description 家长看孩子全部成绩；科任教师只看自己科目的成绩
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=[]model.Grade}
// @Failure 403 {object} util.Response
// @Router /api/students/{id}/grades [get]
func (c *GradeController) ListGrades(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	grades, err := c.GradeService.GradesFor(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}

// AddGrade godoc
// @Summary 录入成绩
// @Description 仅科目任课教师可录入
// @Tags 成绩
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param body body GradeRequest true "成绩"
// @Success 201 {object} util.Response{data=model.Grade}
// @Failure 400 {object} util.Response "成绩字母无效"
// @Router /api/students/{id}/grades [post]
func (c *GradeController) AddGrade(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	grade, err := c.GradeService.AddGrade(ctx.Request.Context(), ac, id, req.SubjectID, req.Grade)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, grade)
}

// RecomputeOverall godoc
// @Summary 重新计算总评
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=service.OverallGrade}
// @Failure 400 {object} util.Response "没有任何成绩"
// @Router /api/students/{id}/overall-grade [post]
func (c *GradeController) RecomputeOverall(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	overall, err := c.GradeService.RecomputeOverall(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overall)
}

// GetOverall godoc
// @Summary 查看总评
// @Description stale 为 true 表示之后有新成绩，需要重新计算
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=service.OverallGrade}
// @Router /api/students/{id}/overall-grade [get]
func (c *GradeController) GetOverall(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	overall, err := c.GradeService.OverallGrade(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overall)
}
