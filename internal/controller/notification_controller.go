package controller

import (
	"seclink_backend/internal/service"
	"seclink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// NotificationRequest 至少指定一个接收人
// swagger:model NotificationRequest
type NotificationRequest struct {
	Message    string `json:"message" binding:"required"`
	ParentIDs  []uint `json:"parent_ids"`
	StudentIDs []uint `json:"student_ids"`
}

// ListNotifications godoc
// @Summary 通知列表
// @Tags 通知
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	list, err := c.NotificationService.List(ctx.Request.Context(), ac)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetNotification godoc
// @Summary 通知详情
// @Tags 通知
// @Produce  json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response{data=model.Notification}
// @Router /api/notifications/{id} [get]
func (c *NotificationController) GetNotification(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	n, err := c.NotificationService.Get(ctx.Request.Context(), ac, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, n)
}

// SendNotification godoc
// @Summary 发送通知
// @Description 接收人必须是本人学生或其家长
// @Tags 通知
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body NotificationRequest true "通知"
// @Success 201 {object} util.Response{data=model.Notification}
// @Router /api/notifications [post]
func (c *NotificationController) SendNotification(ctx *gin.Context) {
	ac, ok := caller(ctx)
	if !ok {
		return
	}
	var req NotificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	n, err := c.NotificationService.Send(ctx.Request.Context(), ac, service.NotificationInput{
		Message:    req.Message,
		ParentIDs:  req.ParentIDs,
		StudentIDs: req.StudentIDs,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, n)
}

// DeleteNotification godoc
// @Summary 删除通知
// @Tags 通知
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id} [delete]
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	ac, id, ok := callerAndID(ctx)
	if !ok {
		return
	}
	if err := c.NotificationService.Delete(ctx.Request.Context(), ac, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Notification deleted"})
}
