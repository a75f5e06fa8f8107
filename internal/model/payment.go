package model

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentModel 支付记录
// 初始化时创建，结算时状态只允许 pending -> completed/failed 变更一次，从不删除
type PaymentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId     int64   `json:"user_id" gorm:"not null;index"`
	CampaignId int64   `json:"campaign_id" gorm:"not null;index"`
	Amount     float64 `json:"amount" gorm:"type:decimal(15,2);not null"`
	Email      string  `json:"email"`

	// 对外展示的唯一支付参考号
	Reference string `json:"reference" gorm:"not null;uniqueIndex"`

	Status   PaymentStatus  `json:"status" gorm:"default:'pending';index"`
	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // 待结算
	PaymentStatusCompleted PaymentStatus = "completed" // 已完成
	PaymentStatusFailed    PaymentStatus = "failed"    // 已失败
)

// TableName 自定义表名
func (PaymentModel) TableName() string {
	return "payment"
}

// MilestoneAllocationModel 里程碑资金分配
// 同一笔支付的分配总额不得超过支付金额，由 payment_logic 在事务内校验
type MilestoneAllocationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PaymentId   int64   `json:"payment_id" gorm:"not null;index"`
	MilestoneId int64   `json:"milestone_id" gorm:"not null;index"`
	Amount      float64 `json:"amount" gorm:"type:decimal(15,2);not null"`
}

// TableName 自定义表名
func (MilestoneAllocationModel) TableName() string {
	return "milestone_allocation"
}
