package logic

import (
	"errors"
	"strings"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

// CampaignLogic 活动业务逻辑
type CampaignLogic struct {
	db *gorm.DB
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db}
}

// CampaignFilters 活动列表过滤条件
// Status 为空时默认只返回进行中的活动
type CampaignFilters struct {
	Category  string
	Stage     string
	CreatorId int64
	Status    string
	Search    string
	SortBy    string // newest, most_funded, end_date
}

// CampaignDetail 活动完整响应
type CampaignDetail struct {
	model.CampaignModel
	Sections    []model.CampaignSectionModel `json:"sections"`
	Images      []model.CampaignImageModel   `json:"images"`
	Assets      []model.CampaignAssetModel   `json:"assets"`
	Milestones  []model.MilestoneModel       `json:"milestones"`
	TeamMembers []model.TeamMemberModel      `json:"team_members"`
	Risks       []model.RiskModel            `json:"risks"`
}

// CampaignInput 直接创建/更新活动的请求体
type CampaignInput struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Location      string     `json:"location"`
	Stage         string     `json:"stage"`
	TargetAmount  float64    `json:"target_amount" binding:"required,gt=0"`
	MinInvestment float64    `json:"min_investment"`
	EndDate       *time.Time `json:"end_date"`
}

// Create 直接创建活动（不经草稿），初始资金为0
// 未指定结束时间时默认90天
func (l *CampaignLogic) Create(input CampaignInput, creatorId int64) (*CampaignDetail, error) {
	if err := requireVerifiedFounder(l.db, creatorId); err != nil {
		return nil, err
	}

	endDate := time.Now().AddDate(0, 0, 90)
	if input.EndDate != nil {
		endDate = *input.EndDate
	}

	campaign := model.CampaignModel{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Location:      input.Location,
		Stage:         input.Stage,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: 0,
		MinInvestment: input.MinInvestment,
		EndDate:       endDate,
		Status:        model.CampaignStatusPendingApproval,
		CreatorId:     creatorId,
	}
	if err := l.db.Create(&campaign).Error; err != nil {
		return nil, errs.Internal("创建活动失败", err)
	}

	return l.GetById(campaign.Id)
}

// GetById 获取活动完整结构
func (l *CampaignLogic) GetById(id int64) (*CampaignDetail, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("活动不存在")
		}
		return nil, errs.Internal("查询活动失败", err)
	}

	detail := CampaignDetail{
		CampaignModel: campaign,
		Sections:      []model.CampaignSectionModel{},
		Images:        []model.CampaignImageModel{},
		Assets:        []model.CampaignAssetModel{},
		Milestones:    []model.MilestoneModel{},
		TeamMembers:   []model.TeamMemberModel{},
		Risks:         []model.RiskModel{},
	}

	if err := l.db.Where("campaign_id = ?", id).Find(&detail.Sections).Error; err != nil {
		return nil, errs.Internal("查询活动段落失败", err)
	}
	if err := l.db.Where("campaign_id = ?", id).Order("sort_order, id").Find(&detail.Images).Error; err != nil {
		return nil, errs.Internal("查询活动图片失败", err)
	}
	if err := l.db.Where("campaign_id = ?", id).Find(&detail.Assets).Error; err != nil {
		return nil, errs.Internal("查询活动附件失败", err)
	}
	if err := l.db.Where("campaign_id = ?", id).Order("sort_order, id").Find(&detail.Milestones).Error; err != nil {
		return nil, errs.Internal("查询活动里程碑失败", err)
	}
	if err := l.db.Where("campaign_id = ?", id).Order("sort_order, id").Find(&detail.TeamMembers).Error; err != nil {
		return nil, errs.Internal("查询活动团队成员失败", err)
	}
	if err := l.db.Where("campaign_id = ?", id).Find(&detail.Risks).Error; err != nil {
		return nil, errs.Internal("查询活动风险披露失败", err)
	}

	return &detail, nil
}

// buildFilterQuery 列表与计数共用同一过滤器，保证总数与分页一致
func (l *CampaignLogic) buildFilterQuery(filters CampaignFilters) *gorm.DB {
	query := l.db.Model(&model.CampaignModel{})

	status := filters.Status
	if status == "" {
		status = string(model.CampaignStatusActive)
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Stage != "" {
		query = query.Where("stage = ?", filters.Stage)
	}
	if filters.CreatorId != 0 {
		query = query.Where("creator_id = ?", filters.CreatorId)
	}
	if filters.Search != "" {
		pattern := "%" + strings.TrimSpace(filters.Search) + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR category LIKE ?", pattern, pattern, pattern)
	}

	return query
}

// GetCampaigns 获取活动分页列表与总数
func (l *CampaignLogic) GetCampaigns(filters CampaignFilters, page, limit int) ([]model.CampaignModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := l.buildFilterQuery(filters).Count(&total).Error; err != nil {
		return nil, 0, errs.Internal("统计活动总数失败", err)
	}

	query := l.buildFilterQuery(filters)
	switch filters.SortBy {
	case "most_funded":
		query = query.Order("current_amount DESC")
	case "end_date":
		query = query.Order("end_date ASC")
	default: // newest
		query = query.Order("created_at DESC")
	}

	var campaigns []model.CampaignModel
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Find(&campaigns).Error; err != nil {
		return nil, 0, errs.Internal("查询活动列表失败", err)
	}

	return campaigns, total, nil
}

// GetByCreator 获取创建者的全部活动（不限状态）
func (l *CampaignLogic) GetByCreator(creatorId int64) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	if err := l.db.Where("creator_id = ?", creatorId).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, errs.Internal("查询活动列表失败", err)
	}
	return campaigns, nil
}

// Update 更新活动基本信息
// 资金、浏览数与状态不在此处修改：current_amount 只能由支付结算累加，
// view_count 只能由浏览跟踪累加，status 只能由审核与到期任务流转
func (l *CampaignLogic) Update(id, userId int64, input CampaignInput) (*CampaignDetail, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("活动不存在")
		}
		return nil, errs.Internal("查询活动失败", err)
	}
	if campaign.CreatorId != userId {
		return nil, errs.NotFound("活动不存在")
	}

	updates := map[string]interface{}{
		"title":          input.Title,
		"description":    input.Description,
		"category":       input.Category,
		"location":       input.Location,
		"stage":          input.Stage,
		"target_amount":  input.TargetAmount,
		"min_investment": input.MinInvestment,
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}

	if err := l.db.Model(&model.CampaignModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, errs.Internal("更新活动失败", err)
	}

	return l.GetById(id)
}

// Delete 删除活动及全部子表数据，单事务执行
func (l *CampaignLogic) Delete(id, userId int64) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("活动不存在")
			}
			return errs.Internal("查询活动失败", err)
		}
		if campaign.CreatorId != userId {
			return errs.NotFound("活动不存在")
		}

		children := []interface{}{
			&model.CampaignSectionModel{},
			&model.CampaignImageModel{},
			&model.CampaignAssetModel{},
			&model.MilestoneModel{},
			&model.TeamMemberModel{},
			&model.RiskModel{},
			&model.CampaignViewModel{},
			&model.FavoriteModel{},
		}
		for _, child := range children {
			if err := tx.Where("campaign_id = ?", id).Delete(child).Error; err != nil {
				return errs.Internal("删除活动子数据失败", err)
			}
		}
		if err := tx.Delete(&model.CampaignModel{}, id).Error; err != nil {
			return errs.Internal("删除活动失败", err)
		}
		return nil
	})
}

// IncrementViewCount 浏览数自增，浏览跟踪之外不得直接修改 view_count
func (l *CampaignLogic) IncrementViewCount(tx *gorm.DB, id int64) error {
	return tx.Model(&model.CampaignModel{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}
