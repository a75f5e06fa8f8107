package model

import (
	"time"

	"gorm.io/datatypes"
)

// DraftCampaignModel 草稿活动模型
// 发布前可自由编辑，仅创建者可见；发布成功后整体删除
type DraftCampaignModel struct {
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
	TargetAmount  float64 `json:"target_amount" gorm:"type:decimal(15,2);default:0"`
	MinInvestment float64 `json:"min_investment" gorm:"type:decimal(15,2);default:0"`

	// 时间信息
	EndDate *time.Time `json:"end_date"`

	// 创建者
	CreatorId int64 `json:"creator_id" gorm:"not null;index"`

	// 附加字段（项目周期、财务数据），详见 draft_logic 的合并逻辑
	Extra datatypes.JSON `json:"extra" gorm:"type:jsonb"`
}

// TableName 自定义表名
func (DraftCampaignModel) TableName() string {
	return "draft_campaign"
}

// DraftSectionModel 草稿活动内容段落（问题陈述、解决方案等）
type DraftSectionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DraftId     int64       `json:"draft_id" gorm:"not null;index"`
	SectionType SectionType `json:"section_type" gorm:"not null"`
	Content     string      `json:"content" gorm:"type:text"`
}

// TableName 自定义表名
func (DraftSectionModel) TableName() string {
	return "draft_section"
}

// DraftImageModel 草稿活动图片，按段落类型归组
// RelatedId 用于关联里程碑、团队成员等子实体的配图
type DraftImageModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	DraftId     int64       `json:"draft_id" gorm:"not null;index"`
	SectionType SectionType `json:"section_type" gorm:"not null"`
	RelatedId   *int64      `json:"related_id"`
	URL         string      `json:"url" gorm:"not null"`
	Caption     string      `json:"caption"`
	SortOrder   int         `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (DraftImageModel) TableName() string {
	return "draft_image"
}

// DraftAssetModel 草稿活动附件（路演材料、商业计划书）
type DraftAssetModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	DraftId   int64     `json:"draft_id" gorm:"not null;index"`
	AssetType AssetType `json:"asset_type" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	FileName  string    `json:"file_name"`
}

// TableName 自定义表名
func (DraftAssetModel) TableName() string {
	return "draft_asset"
}

// DraftMilestoneModel 草稿活动里程碑
type DraftMilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DraftId      int64      `json:"draft_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	TargetAmount float64    `json:"target_amount" gorm:"type:decimal(15,2);default:0"`
	TargetDate   *time.Time `json:"target_date"`
	Deliverables string     `json:"deliverables" gorm:"type:text"`
	SortOrder    int        `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (DraftMilestoneModel) TableName() string {
	return "draft_milestone"
}

// DraftTeamMemberModel 草稿活动团队成员
type DraftTeamMemberModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DraftId   int64  `json:"draft_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Bio       string `json:"bio" gorm:"type:text"`
	AvatarURL string `json:"avatar_url"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
}

// TableName 自定义表名
func (DraftTeamMemberModel) TableName() string {
	return "draft_team_member"
}

// DraftRiskModel 草稿活动风险披露
type DraftRiskModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DraftId    int64  `json:"draft_id" gorm:"not null;index"`
	Category   string `json:"category"`
	Descriptor string `json:"descriptor" gorm:"not null"`
	Mitigation string `json:"mitigation" gorm:"type:text"`
}

// TableName 自定义表名
func (DraftRiskModel) TableName() string {
	return "draft_risk"
}

// SectionType 内容段落类型
type SectionType string

const (
	SectionTypeProblem    SectionType = "problem"    // 问题陈述
	SectionTypeSolution   SectionType = "solution"   // 解决方案
	SectionTypeCover      SectionType = "cover"      // 封面
	SectionTypeMilestone  SectionType = "milestone"  // 里程碑配图
	SectionTypeTeamMember SectionType = "team"       // 团队成员配图
	SectionTypeGallery    SectionType = "gallery"    // 图集
)

// AssetType 附件类型
type AssetType string

const (
	AssetTypePitchDeck    AssetType = "pitch_deck"    // 路演材料
	AssetTypeBusinessPlan AssetType = "business_plan" // 商业计划书
)
