package logic

import (
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

// NotificationLogic 通知业务逻辑
// 全部操作限定在通知所属用户范围内
type NotificationLogic struct {
	db *gorm.DB
}

// NewNotificationLogic 创建通知业务逻辑
func NewNotificationLogic(db *gorm.DB) *NotificationLogic {
	return &NotificationLogic{db: db}
}

// GetUserNotifications 获取用户通知列表
func (n *NotificationLogic) GetUserNotifications(userId int64, page, pageSize int) ([]model.NotificationModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := n.db.Model(&model.NotificationModel{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return nil, 0, errs.Internal("统计通知失败", err)
	}

	var notifications []model.NotificationModel
	offset := (page - 1) * pageSize
	if err := n.db.Where("user_id = ?", userId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, errs.Internal("查询通知失败", err)
	}

	return notifications, total, nil
}

// GetUnreadCount 获取未读通知数
func (n *NotificationLogic) GetUnreadCount(userId int64) (int64, error) {
	var count int64
	err := n.db.Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&count).Error
	if err != nil {
		return 0, errs.Internal("统计未读通知失败", err)
	}
	return count, nil
}

// MarkRead 标记单条通知已读
func (n *NotificationLogic) MarkRead(id, userId int64) error {
	now := time.Now()
	result := n.db.Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return errs.Internal("更新通知状态失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("通知不存在")
	}
	return nil
}

// MarkAllRead 标记用户全部通知已读
func (n *NotificationLogic) MarkAllRead(userId int64) error {
	now := time.Now()
	err := n.db.Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return errs.Internal("更新通知状态失败", err)
	}
	return nil
}

// Delete 删除通知
func (n *NotificationLogic) Delete(id, userId int64) error {
	result := n.db.Where("id = ? AND user_id = ?", id, userId).Delete(&model.NotificationModel{})
	if result.Error != nil {
		return errs.Internal("删除通知失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("通知不存在")
	}
	return nil
}
