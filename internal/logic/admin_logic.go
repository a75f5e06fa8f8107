package logic

import (
	"errors"
	"fmt"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

// AdminLogic 管理员审核业务逻辑
type AdminLogic struct {
	db *gorm.DB
}

// NewAdminLogic 创建管理员审核业务逻辑
func NewAdminLogic(db *gorm.DB) *AdminLogic {
	return &AdminLogic{db: db}
}

// ListPendingFounders 获取待认证的发起人
func (a *AdminLogic) ListPendingFounders() ([]model.UserModel, error) {
	var founders []model.UserModel
	err := a.db.Where("role = ? AND is_verified = ?", model.UserRoleFounder, false).
		Order("created_at ASC").
		Find(&founders).Error
	if err != nil {
		return nil, errs.Internal("查询待认证发起人失败", err)
	}
	return founders, nil
}

// ApproveFounder 发起人认证通过
func (a *AdminLogic) ApproveFounder(founderId int64) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserModel{}).
			Where("id = ? AND role = ? AND is_verified = ?", founderId, model.UserRoleFounder, false).
			Update("is_verified", true)
		if result.Error != nil {
			return errs.Internal("更新发起人状态失败", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("发起人不存在或已处理")
		}

		notification := model.NotificationModel{
			UserId:  founderId,
			Type:    model.NotificationTypeFounderApproval,
			Title:   "发起人认证通过",
			Message: "你的发起人认证已通过，现在可以发布众筹活动了",
		}
		if err := tx.Create(&notification).Error; err != nil {
			return errs.Internal("创建通知失败", err)
		}
		return nil
	})
}

// RejectFounder 发起人认证驳回
func (a *AdminLogic) RejectFounder(founderId int64, reason string) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var founder model.UserModel
		err := tx.Where("id = ? AND role = ?", founderId, model.UserRoleFounder).First(&founder).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("发起人不存在")
			}
			return errs.Internal("查询发起人失败", err)
		}

		if err := tx.Model(&model.UserModel{}).
			Where("id = ?", founderId).
			Update("is_verified", false).Error; err != nil {
			return errs.Internal("更新发起人状态失败", err)
		}

		message := "你的发起人认证未通过"
		if reason != "" {
			message = fmt.Sprintf("你的发起人认证未通过：%s", reason)
		}
		notification := model.NotificationModel{
			UserId:  founderId,
			Type:    model.NotificationTypeFounderRejection,
			Title:   "发起人认证未通过",
			Message: message,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return errs.Internal("创建通知失败", err)
		}
		return nil
	})
}

// ListCampaigns 按状态获取活动，默认为待审核
func (a *AdminLogic) ListCampaigns(status string) ([]model.CampaignModel, error) {
	if status == "" {
		status = string(model.CampaignStatusPendingApproval)
	}

	query := a.db.Model(&model.CampaignModel{})
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var campaigns []model.CampaignModel
	if err := query.Order("created_at ASC").Find(&campaigns).Error; err != nil {
		return nil, errs.Internal("查询活动列表失败", err)
	}
	return campaigns, nil
}

// ApproveCampaign 活动审核通过
// 条件更新限定待审核状态，零行生效说明已被处理，不会重复审核；
// 状态更新与通知创建在同一事务内
func (a *AdminLogic) ApproveCampaign(campaignId int64) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("活动不存在")
			}
			return errs.Internal("查询活动失败", err)
		}

		result := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status = ?", campaignId, model.CampaignStatusPendingApproval).
			Update("status", model.CampaignStatusActive)
		if result.Error != nil {
			return errs.Internal("更新活动状态失败", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("活动不在待审核状态")
		}

		notification := model.NotificationModel{
			UserId:    campaign.CreatorId,
			Type:      model.NotificationTypeCampaignApproval,
			Title:     "活动审核通过",
			Message:   fmt.Sprintf("你的活动《%s》已通过审核，现已上线", campaign.Title),
			RelatedId: &campaign.Id,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return errs.Internal("创建通知失败", err)
		}

		logger.Info("Campaign %d approved", campaignId)
		return nil
	})
}

// RejectCampaign 活动审核驳回
func (a *AdminLogic) RejectCampaign(campaignId int64, reason string) error {
	if reason == "" {
		return errs.Validation("驳回原因不能为空")
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("活动不存在")
			}
			return errs.Internal("查询活动失败", err)
		}

		result := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status = ?", campaignId, model.CampaignStatusPendingApproval).
			Updates(map[string]interface{}{
				"status":           model.CampaignStatusRejected,
				"rejection_reason": reason,
			})
		if result.Error != nil {
			return errs.Internal("更新活动状态失败", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("活动不在待审核状态")
		}

		notification := model.NotificationModel{
			UserId:    campaign.CreatorId,
			Type:      model.NotificationTypeCampaignRejection,
			Title:     "活动审核未通过",
			Message:   fmt.Sprintf("你的活动《%s》未通过审核：%s", campaign.Title, reason),
			RelatedId: &campaign.Id,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return errs.Internal("创建通知失败", err)
		}

		logger.Info("Campaign %d rejected: %s", campaignId, reason)
		return nil
	})
}
