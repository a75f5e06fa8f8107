package logic

import (
	"errors"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

// PublishLogic 草稿发布工作流
// 草稿到活动的转换与草稿删除在同一事务内完成：任何一步失败整体回滚，
// 草稿保持原样可重试；提交后草稿即不可见，并发的第二次发布会因
// 行锁加载不到草稿而得到不存在错误，不会产生重复活动
type PublishLogic struct {
	db *gorm.DB
}

// NewPublishLogic 创建发布工作流
func NewPublishLogic(db *gorm.DB) *PublishLogic {
	return &PublishLogic{db: db}
}

// CampaignSummary 发布结果摘要
type CampaignSummary struct {
	Id          int64                `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Status      model.CampaignStatus `json:"status"`
	CreatorId   int64                `json:"creator_id"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Publish 将草稿发布为待审核活动
func (p *PublishLogic) Publish(draftId, userId int64) (*CampaignSummary, error) {
	if err := requireVerifiedFounder(p.db, userId); err != nil {
		return nil, err
	}

	var summary *CampaignSummary

	err := p.db.Transaction(func(tx *gorm.DB) error {
		// 行锁防止并发发布同一草稿
		var draft model.DraftCampaignModel
		err := lockForUpdate(tx).First(&draft, draftId).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("草稿不存在")
			}
			return errs.Internal("查询草稿失败", err)
		}
		if draft.CreatorId != userId {
			return errs.NotFound("草稿不存在")
		}

		campaign, err := p.insertCampaign(tx, &draft)
		if err != nil {
			return err
		}

		if err := deleteDraftTx(tx, draftId); err != nil {
			return errs.Internal("清理草稿失败", err)
		}

		summary = &CampaignSummary{
			Id:          campaign.Id,
			Title:       campaign.Title,
			Description: campaign.Description,
			Category:    campaign.Category,
			Status:      campaign.Status,
			CreatorId:   campaign.CreatorId,
			CreatedAt:   campaign.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Published draft %d as campaign %d", draftId, summary.Id)
	return summary, nil
}

// insertCampaign 复制草稿的全部标量字段与子集合，生成待审核活动
func (p *PublishLogic) insertCampaign(tx *gorm.DB, draft *model.DraftCampaignModel) (*model.CampaignModel, error) {
	endDate := time.Now().AddDate(0, 0, 90)
	if draft.EndDate != nil {
		endDate = *draft.EndDate
	}

	campaign := model.CampaignModel{
		Title:         draft.Title,
		Description:   draft.Description,
		Category:      draft.Category,
		Location:      draft.Location,
		Stage:         draft.Stage,
		TargetAmount:  draft.TargetAmount,
		CurrentAmount: 0,
		MinInvestment: draft.MinInvestment,
		EndDate:       endDate,
		Status:        model.CampaignStatusPendingApproval,
		CreatorId:     draft.CreatorId,
		Extra:         draft.Extra,
	}
	if err := tx.Create(&campaign).Error; err != nil {
		return nil, errs.Internal("创建活动失败", err)
	}

	var sections []model.DraftSectionModel
	if err := tx.Where("draft_id = ?", draft.Id).Find(&sections).Error; err != nil {
		return nil, errs.Internal("读取草稿段落失败", err)
	}
	for _, s := range sections {
		row := model.CampaignSectionModel{
			CampaignId:  campaign.Id,
			SectionType: s.SectionType,
			Content:     s.Content,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制段落失败", err)
		}
	}

	var assets []model.DraftAssetModel
	if err := tx.Where("draft_id = ?", draft.Id).Find(&assets).Error; err != nil {
		return nil, errs.Internal("读取草稿附件失败", err)
	}
	for _, a := range assets {
		row := model.CampaignAssetModel{
			CampaignId: campaign.Id,
			AssetType:  a.AssetType,
			URL:        a.URL,
			FileName:   a.FileName,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制附件失败", err)
		}
	}

	// 里程碑与团队成员需要建立草稿ID到新ID的映射，配图照此重新关联
	var milestones []model.DraftMilestoneModel
	if err := tx.Where("draft_id = ?", draft.Id).Order("sort_order, id").Find(&milestones).Error; err != nil {
		return nil, errs.Internal("读取草稿里程碑失败", err)
	}
	milestoneIds := make(map[int64]int64, len(milestones))
	for _, m := range milestones {
		row := model.MilestoneModel{
			CampaignId:   campaign.Id,
			Title:        m.Title,
			Description:  m.Description,
			TargetAmount: m.TargetAmount,
			TargetDate:   m.TargetDate,
			Deliverables: m.Deliverables,
			SortOrder:    m.SortOrder,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制里程碑失败", err)
		}
		milestoneIds[m.Id] = row.Id
	}

	var members []model.DraftTeamMemberModel
	if err := tx.Where("draft_id = ?", draft.Id).Order("sort_order, id").Find(&members).Error; err != nil {
		return nil, errs.Internal("读取草稿团队成员失败", err)
	}
	memberIds := make(map[int64]int64, len(members))
	for _, m := range members {
		row := model.TeamMemberModel{
			CampaignId: campaign.Id,
			Name:       m.Name,
			Role:       m.Role,
			Email:      m.Email,
			Bio:        m.Bio,
			AvatarURL:  m.AvatarURL,
			SortOrder:  m.SortOrder,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制团队成员失败", err)
		}
		memberIds[m.Id] = row.Id
	}

	var risks []model.DraftRiskModel
	if err := tx.Where("draft_id = ?", draft.Id).Find(&risks).Error; err != nil {
		return nil, errs.Internal("读取草稿风险披露失败", err)
	}
	for _, r := range risks {
		row := model.RiskModel{
			CampaignId: campaign.Id,
			Category:   r.Category,
			Descriptor: r.Descriptor,
			Mitigation: r.Mitigation,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制风险披露失败", err)
		}
	}

	var images []model.DraftImageModel
	if err := tx.Where("draft_id = ?", draft.Id).Order("sort_order, id").Find(&images).Error; err != nil {
		return nil, errs.Internal("读取草稿图片失败", err)
	}
	for _, img := range images {
		row := model.CampaignImageModel{
			CampaignId:  campaign.Id,
			SectionType: img.SectionType,
			URL:         img.URL,
			Caption:     img.Caption,
			SortOrder:   img.SortOrder,
		}
		if img.RelatedId != nil {
			var newId int64
			var ok bool
			switch img.SectionType {
			case model.SectionTypeMilestone:
				newId, ok = milestoneIds[*img.RelatedId]
			case model.SectionTypeTeamMember:
				newId, ok = memberIds[*img.RelatedId]
			}
			if !ok {
				// 配图指向已不存在的子实体，跳过而不是中断发布
				logger.Warn("Skipping orphaned draft image %d (related %d)", img.Id, *img.RelatedId)
				continue
			}
			row.RelatedId = &newId
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, errs.Internal("复制图片失败", err)
		}
	}

	return &campaign, nil
}
