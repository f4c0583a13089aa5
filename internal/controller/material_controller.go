package controller

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 表单字段与 multipart 边界的额外开销
const multipartSlack = 64 << 10

type MaterialController struct {
	MaterialService *service.MaterialService
}

func NewMaterialController(materialService *service.MaterialService) *MaterialController {
	return &MaterialController{MaterialService: materialService}
}

// ListMaterials godoc
// @Summary 学习资料列表
// @Tags 学习资料
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LearningMaterial}
// @Router /api/learning-materials [get]
func (c *MaterialController) ListMaterials(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	materials, err := c.MaterialService.List(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// GetMaterial godoc
// @Summary 学习资料详情
// @Tags 学习资料
// @Produce  json
// @Security BearerAuth
// @Param id path int true "资料ID"
// @Success 200 {object} util.Response{data=model.LearningMaterial}
// @Router /api/learning-materials/{id} [get]
func (c *MaterialController) GetMaterial(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	m, err := c.MaterialService.Get(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, m)
}

// UploadMaterial godoc
// @Summary 上传学习资料
// @Description 仅支持 pdf/docx/txt，科目必须由当前教师任教
// @Tags 学习资料
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param title formData string true "标题"
// @Param subject_id formData int true "科目ID"
// @Param file formData file true "文件"
// @Success 201 {object} util.Response{data=model.LearningMaterial}
// @Failure 400 {object} util.Response
// @Router /api/learning-materials/upload [post]
func (c *MaterialController) UploadMaterial(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}

	if limit := c.MaterialService.MaxUploadBytes(); limit > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit+multipartSlack)
	}
	if _, err := ctx.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.HandleError(ctx, util.ErrFileTooLarge)
			return
		}
		util.BadRequest(ctx, "invalid multipart form")
		return
	}

	subjectID, err := strconv.ParseUint(ctx.PostForm("subject_id"), 10, 32)
	if err != nil || subjectID == 0 {
		util.BadRequest(ctx, "subject_id is required")
		return
	}

	in := service.MaterialUpload{
		Title:     ctx.PostForm("title"),
		SubjectID: uint(subjectID),
	}

	fileHeader, err := ctx.FormFile("file")
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			util.BadRequest(ctx, "cannot read uploaded file")
			return
		}
		defer file.Close()
		in.FileName = fileHeader.Filename
		in.Size = fileHeader.Size
		in.File = file
	}

	m, err := c.MaterialService.Upload(ctx.Request.Context(), ac, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// DownloadMaterial godoc
// @Summary 下载学习资料
// @Tags 学习资料
// @Produce  octet-stream
// @Security BearerAuth
// @Param id path int true "资料ID"
// @Success 200 {file} file
// @Router /api/learning-materials/{id}/download [get]
func (c *MaterialController) DownloadMaterial(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	m, body, err := c.MaterialService.Download(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	defer body.Close()

	name := m.FileName
	if name == "" {
		name = path.Base(m.FilePath)
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	ctx.Header("Content-Type", contentType)
	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if m.Size > 0 {
		ctx.Header("Content-Length", fmt.Sprint(m.Size))
	}
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, body); err != nil {
		// 响应头已写出，只能记录日志
		logger.Log.Warn("download interrupted", zap.Uint("materialId", m.ID), zap.Error(err))
	}
}

// DeleteMaterial godoc
// @Summary 删除学习资料
// @Description 记录与文件一起删除
// @Tags 学习资料
// @Security BearerAuth
// @Param id path int true "资料ID"
// @Success 200 {object} util.Response
// @Router /api/learning-materials/{id} [delete]
func (c *MaterialController) DeleteMaterial(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.MaterialService.Delete(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Learning material deleted"})
}
