package model

import (
	"time"

	"gorm.io/datatypes"
)

// CampaignModel 众筹活动模型
// 由草稿发布或直接创建产生；发布后核心字段不再由创建者修改，
// current_amount 只允许由支付结算累加，view_count 只允许由浏览跟踪累加
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Stage       string `json:"stage"`

	// 众筹信息
	TargetAmount  float64 `json:"target_amount" gorm:"type:decimal(15,2);not null"`
	CurrentAmount float64 `json:"current_amount" gorm:"type:decimal(15,2);default:0"`
	MinInvestment float64 `json:"min_investment" gorm:"type:decimal(15,2);default:0"`

	// 时间信息
	EndDate time.Time `json:"end_date" gorm:"not null"`

	// 状态
	Status          CampaignStatus `json:"status" gorm:"default:'draft';index"`
	RejectionReason string         `json:"rejection_reason"`

	// 浏览计数
	ViewCount int64 `json:"view_count" gorm:"default:0"`

	// 创建者
	CreatorId int64 `json:"creator_id" gorm:"not null;index"`

	// 附加字段（项目周期、财务数据）
	Extra datatypes.JSON `json:"extra" gorm:"type:jsonb"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusDraft           CampaignStatus = "draft"            // 草稿
	CampaignStatusPendingApproval CampaignStatus = "pending_approval" // 待审核
	CampaignStatusActive          CampaignStatus = "active"           // 进行中
	CampaignStatusRejected        CampaignStatus = "rejected"         // 已驳回
	CampaignStatusClosed          CampaignStatus = "closed"           // 已结束
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// CampaignSectionModel 活动内容段落
type CampaignSectionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64       `json:"campaign_id" gorm:"not null;index"`
	SectionType SectionType `json:"section_type" gorm:"not null"`
	Content     string      `json:"content" gorm:"type:text"`
}

// TableName 自定义表名
func (CampaignSectionModel) TableName() string {
	return "campaign_section"
}

// CampaignImageModel 活动图片
type CampaignImageModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CampaignId  int64       `json:"campaign_id" gorm:"not null;index"`
	SectionType SectionType `json:"section_type" gorm:"not null"`
	RelatedId   *int64      `json:"related_id"`
	URL         string      `json:"url" gorm:"not null"`
	Caption     string      `json:"caption"`
	SortOrder   int         `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (CampaignImageModel) TableName() string {
	return "campaign_image"
}

// CampaignAssetModel 活动附件
type CampaignAssetModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CampaignId int64     `json:"campaign_id" gorm:"not null;index"`
	AssetType  AssetType `json:"asset_type" gorm:"not null"`
	URL        string    `json:"url" gorm:"not null"`
	FileName   string    `json:"file_name"`
}

// TableName 自定义表名
func (CampaignAssetModel) TableName() string {
	return "campaign_asset"
}

// MilestoneModel 活动里程碑，可独立接受分配资金
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId   int64      `json:"campaign_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	TargetAmount float64    `json:"target_amount" gorm:"type:decimal(15,2);default:0"`
	TargetDate   *time.Time `json:"target_date"`
	Deliverables string     `json:"deliverables" gorm:"type:text"`
	SortOrder    int        `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}

// TeamMemberModel 活动团队成员
type TeamMemberModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	Bio        string `json:"bio" gorm:"type:text"`
	AvatarURL  string `json:"avatar_url"`
	SortOrder  int    `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (TeamMemberModel) TableName() string {
	return "team_member"
}

// RiskModel 活动风险披露
type RiskModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Category   string `json:"category"`
	Descriptor string `json:"descriptor" gorm:"not null"`
	Mitigation string `json:"mitigation" gorm:"type:text"`
}

// TableName 自定义表名
func (RiskModel) TableName() string {
	return "risk"
}
