package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	notificationLogic *logic.NotificationLogic
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(notificationLogic *logic.NotificationLogic) *NotificationHandler {
	return &NotificationHandler{notificationLogic: notificationLogic}
}

// GetNotifications 获取当前用户通知列表
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	notifications, total, err := h.notificationLogic.GetUserNotifications(user.Id, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取通知列表成功", gin.H{
		"notifications": notifications,
		"pagination":    NewPagination(page, pageSize, total),
	})
}

// GetUnreadCount 获取未读通知数
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	count, err := h.notificationLogic.GetUnreadCount(user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取未读数成功", gin.H{"count": count})
}

// MarkRead 标记通知已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的通知ID")
		return
	}
	user := middleware.CurrentUser(c)

	if err := h.notificationLogic.MarkRead(id, user.Id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "通知已标记为已读", nil)
}

// MarkAllRead 标记全部通知已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.notificationLogic.MarkAllRead(user.Id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "全部通知已标记为已读", nil)
}

// DeleteNotification 删除通知
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的通知ID")
		return
	}
	user := middleware.CurrentUser(c)

	if err := h.notificationLogic.Delete(id, user.Id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "通知删除成功", nil)
}
