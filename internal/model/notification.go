package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationModel 用户通知
// 由审核等工作流副作用产生，只有已读状态会被修改
type NotificationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId  int64            `json:"user_id" gorm:"not null;index"`
	Type    NotificationType `json:"type" gorm:"not null"`
	Title   string           `json:"title" gorm:"not null"`
	Message string           `json:"message" gorm:"type:text"`

	// 关联实体（活动审核通知关联活动ID）
	RelatedId *int64         `json:"related_id"`
	Data      datatypes.JSON `json:"data" gorm:"type:jsonb"`

	IsRead bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt *time.Time `json:"read_at"`
}

// NotificationType 通知类型
type NotificationType string

const (
	NotificationTypeCampaignApproval  NotificationType = "campaign_approval"  // 活动审核通过
	NotificationTypeCampaignRejection NotificationType = "campaign_rejection" // 活动审核驳回
	NotificationTypeFounderApproval   NotificationType = "founder_approval"   // 发起人认证通过
	NotificationTypeFounderRejection  NotificationType = "founder_rejection"  // 发起人认证驳回
	NotificationTypePaymentReceived   NotificationType = "payment_received"   // 收到投资
)

// TableName 自定义表名
func (NotificationModel) TableName() string {
	return "notification"
}
