package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService  *service.StudentService
	MaterialService *service.MaterialService
}

func NewStudentController(studentService *service.StudentService, materialService *service.MaterialService) *StudentController {
	return &StudentController{
		StudentService:  studentService,
		MaterialService: materialService,
	}
}

// StudentRequest 出生日期格式 YYYY-MM-DD
// swagger:model StudentRequest
type StudentRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	DOB      *string `json:"dob" binding:"omitempty,datetime=2006-01-02"`
	ClassID  *uint   `json:"class_id" binding:"omitempty,gt=0"`
	ParentID *uint   `json:"parent_id" binding:"omitempty,gt=0"`
}

func (r StudentRequest) input() (service.StudentInput, error) {
	in := service.StudentInput{Name: r.Name, ClassID: r.ClassID, ParentID: r.ParentID}
	if r.DOB != nil {
		dob, err := time.Parse(util.DateFormat, *r.DOB)
		if err != nil {
			return in, util.Validationf("invalid dob %q", *r.DOB)
		}
		in.DOB = &dob
	}
	return in, nil
}

// swagger:model EnrollRequest
type EnrollRequest struct {
	SubjectID uint `json:"subject_id" binding:"required,gt=0"`
}

// swagger:model StudentAccountRequest
type StudentAccountRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ListStudents godoc
// @Summary 学生列表
// @Description 教师看自己的学生，家长看自己的孩子
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Student}
// @Router /api/students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	students, err := c.StudentService.List(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// GetStudent godoc
// @Summary 学生详情
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=model.Student}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	student, err := c.StudentService.Get(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// CreateStudent godoc
// @Summary 新建学生
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body StudentRequest true "学生信息"
// @Success 201 {object} util.Response{data=model.Student}
// @Router /api/students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	var req StudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	student, err := c.StudentService.Create(ctx.Request.Context(), ac, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// UpdateStudent godoc
// @Summary 修改学生信息
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param body body StudentRequest true "学生信息"
// @Success 200 {object} util.Response{data=model.Student}
// @Router /api/students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req StudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	student, err := c.StudentService.Update(ctx.Request.Context(), ac, id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// DeleteStudent godoc
// @Summary 删除学生
// @Tags 学生
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.StudentService.Delete(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Student deleted"})
}

// EnrollSubject godoc
// @Summary 学生选修科目
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param body body EnrollRequest true "科目"
// @Success 200 {object} util.Response{data=model.Student}
// @Router /api/students/{id}/subjects [post]
func (c *StudentController) EnrollSubject(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	student, err := c.StudentService.Enroll(ctx.Request.Context(), ac, id, req.SubjectID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// CreateStudentAccount godoc
// @Summary 为学生开通账户
// @Description 仅班主任可操作，每个学生最多一个账户
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param body body StudentAccountRequest true "账户信息"
// @Success 201 {object} util.Response{data=model.Account}
// @Failure 422 {object} util.Response
// @Router /api/students/{id}/account [post]
func (c *StudentController) CreateStudentAccount(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	var req StudentAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	account, err := c.StudentService.CreateAccount(ctx.Request.Context(), ac, id, service.StudentAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, account)
}

// ListStudentMaterials godoc
// @Summary 学生所选科目的学习资料
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=[]model.LearningMaterial}
// @Router /api/students/{id}/learning-materials [get]
func (c *StudentController) ListStudentMaterials(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	materials, err := c.MaterialService.ListForStudent(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}
