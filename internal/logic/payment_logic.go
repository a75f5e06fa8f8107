package logic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 参考号生成冲突时的最大重试次数
const maxReferenceAttempts = 3

// PaymentLogic 支付与资金账本业务逻辑
type PaymentLogic struct {
	db *gorm.DB
}

// NewPaymentLogic 创建支付业务逻辑
func NewPaymentLogic(db *gorm.DB) *PaymentLogic {
	return &PaymentLogic{db: db}
}

// InitializePaymentInput 支付初始化请求
type InitializePaymentInput struct {
	CampaignId int64   `json:"campaign_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Email      string  `json:"email" binding:"required,email"`
}

// InitializePayment 初始化一笔待结算支付
// 参考号带唯一索引，时间戳加随机后缀仍视为可能冲突，冲突时重试生成
func (p *PaymentLogic) InitializePayment(input InitializePaymentInput, userId int64) (*model.PaymentModel, error) {
	var campaign model.CampaignModel
	if err := p.db.First(&campaign, input.CampaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("活动不存在")
		}
		return nil, errs.Internal("查询活动失败", err)
	}
	if campaign.Status != model.CampaignStatusActive {
		return nil, errs.Validation("活动不在进行中，无法接受投资")
	}
	if campaign.MinInvestment > 0 && input.Amount < campaign.MinInvestment {
		return nil, errs.Validation("投资金额低于最低限制")
	}

	var payment model.PaymentModel
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		payment = model.PaymentModel{
			UserId:     userId,
			CampaignId: input.CampaignId,
			Amount:     input.Amount,
			Email:      input.Email,
			Reference:  generateReference(),
			Status:     model.PaymentStatusPending,
		}
		err := p.db.Create(&payment).Error
		if err == nil {
			return &payment, nil
		}
		if !isUniqueViolation(err) {
			return nil, errs.Internal("创建支付记录失败", err)
		}
		logger.Warn("Payment reference collision on attempt %d: %s", attempt+1, payment.Reference)
	}

	return nil, errs.Internal("生成支付参考号失败", fmt.Errorf("reference collisions exhausted %d attempts", maxReferenceAttempts))
}

// generateReference 生成对外展示的支付参考号
func generateReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("DARB-%d-%s", time.Now().UnixMilli(), suffix)
}

// AllocateToMilestone 将支付金额的一部分分配到里程碑
// 在事务内锁定支付行后校验：分配总额不得超过支付金额
func (p *PaymentLogic) AllocateToMilestone(paymentId, milestoneId int64, amount float64, userId int64) (*model.MilestoneAllocationModel, error) {
	if amount <= 0 {
		return nil, errs.Validation("分配金额必须大于0")
	}

	var allocation model.MilestoneAllocationModel

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var payment model.PaymentModel
		err := lockForUpdate(tx).First(&payment, paymentId).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("支付记录不存在")
			}
			return errs.Internal("查询支付记录失败", err)
		}
		if payment.UserId != userId {
			return errs.NotFound("支付记录不存在")
		}

		var milestone model.MilestoneModel
		if err := tx.First(&milestone, milestoneId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("里程碑不存在")
			}
			return errs.Internal("查询里程碑失败", err)
		}
		if milestone.CampaignId != payment.CampaignId {
			return errs.Validation("里程碑不属于该支付对应的活动")
		}

		var allocated float64
		if err := tx.Model(&model.MilestoneAllocationModel{}).
			Where("payment_id = ?", paymentId).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&allocated).Error; err != nil {
			return errs.Internal("统计已分配金额失败", err)
		}
		if allocated+amount > payment.Amount {
			return errs.Validation("分配总额不能超过支付金额")
		}

		allocation = model.MilestoneAllocationModel{
			PaymentId:   paymentId,
			MilestoneId: milestoneId,
			Amount:      amount,
		}
		if err := tx.Create(&allocation).Error; err != nil {
			return errs.Internal("创建分配记录失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &allocation, nil
}

// VerifyByReference 按参考号结算支付
// 模拟网关：待结算支付按成功处理；已结算支付原样返回，保证重复校验幂等
func (p *PaymentLogic) VerifyByReference(reference string) (*model.PaymentModel, error) {
	var payment model.PaymentModel
	if err := p.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("支付记录不存在")
		}
		return nil, errs.Internal("查询支付记录失败", err)
	}

	if payment.Status != model.PaymentStatusPending {
		return &payment, nil
	}

	metadata := map[string]interface{}{
		"verified_at": time.Now().Format(time.RFC3339),
		"channel":     "mock",
	}
	return p.UpdateStatus(payment.Id, model.PaymentStatusCompleted, metadata)
}

// UpdateStatus 支付结算
// 状态流转 pending -> completed/failed 只允许发生一次；
// 转为 completed 时活动资金累加与状态更新在同一事务内完成
func (p *PaymentLogic) UpdateStatus(id int64, status model.PaymentStatus, metadata map[string]interface{}) (*model.PaymentModel, error) {
	if status != model.PaymentStatusCompleted && status != model.PaymentStatusFailed {
		return nil, errs.Validation("无效的支付状态")
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var payment model.PaymentModel
		err := lockForUpdate(tx).First(&payment, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("支付记录不存在")
			}
			return errs.Internal("查询支付记录失败", err)
		}

		updates := map[string]interface{}{"status": status}
		if metadata != nil {
			encoded, err := json.Marshal(metadata)
			if err != nil {
				return errs.Internal("序列化支付元数据失败", err)
			}
			updates["metadata"] = datatypes.JSON(encoded)
		}

		// 条件更新保证状态只流转一次
		result := tx.Model(&model.PaymentModel{}).
			Where("id = ? AND status = ?", id, model.PaymentStatusPending).
			Updates(updates)
		if result.Error != nil {
			return errs.Internal("更新支付状态失败", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("支付已结算，不能重复处理")
		}

		if status == model.PaymentStatusCompleted {
			if err := tx.Model(&model.CampaignModel{}).
				Where("id = ?", payment.CampaignId).
				Update("current_amount", gorm.Expr("current_amount + ?", payment.Amount)).Error; err != nil {
				return errs.Internal("累加活动资金失败", err)
			}

			var campaign model.CampaignModel
			if err := tx.First(&campaign, payment.CampaignId).Error; err == nil {
				notification := model.NotificationModel{
					UserId:    campaign.CreatorId,
					Type:      model.NotificationTypePaymentReceived,
					Title:     "收到新的投资",
					Message:   fmt.Sprintf("活动《%s》收到一笔 %.2f 的投资", campaign.Title, payment.Amount),
					RelatedId: &payment.CampaignId,
				}
				if err := tx.Create(&notification).Error; err != nil {
					return errs.Internal("创建通知失败", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var payment model.PaymentModel
	if err := p.db.First(&payment, id).Error; err != nil {
		return nil, errs.Internal("查询支付记录失败", err)
	}
	return &payment, nil
}

// GetById 获取支付详情，仅支付人可见
func (p *PaymentLogic) GetById(id, userId int64) (*model.PaymentModel, error) {
	var payment model.PaymentModel
	if err := p.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("支付记录不存在")
		}
		return nil, errs.Internal("查询支付记录失败", err)
	}
	if payment.UserId != userId {
		return nil, errs.NotFound("支付记录不存在")
	}
	return &payment, nil
}

// GetUserPayments 获取用户的支付历史
func (p *PaymentLogic) GetUserPayments(userId int64, page, pageSize int) ([]model.PaymentModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int64
	if err := p.db.Model(&model.PaymentModel{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return nil, 0, errs.Internal("统计支付记录失败", err)
	}

	var payments []model.PaymentModel
	offset := (page - 1) * pageSize
	if err := p.db.Where("user_id = ?", userId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, errs.Internal("查询支付记录失败", err)
	}

	return payments, total, nil
}

// GetCampaignPayments 获取活动收到的支付，仅活动创建者可见
func (p *PaymentLogic) GetCampaignPayments(campaignId, requesterId int64, page, pageSize int) ([]model.PaymentModel, int64, error) {
	var campaign model.CampaignModel
	if err := p.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errs.NotFound("活动不存在")
		}
		return nil, 0, errs.Internal("查询活动失败", err)
	}
	if campaign.CreatorId != requesterId {
		return nil, 0, errs.NotFound("活动不存在")
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int64
	if err := p.db.Model(&model.PaymentModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, errs.Internal("统计支付记录失败", err)
	}

	var payments []model.PaymentModel
	offset := (page - 1) * pageSize
	if err := p.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, errs.Internal("查询支付记录失败", err)
	}

	return payments, total, nil
}

// GetCampaignTotalInvestments 已完成支付的总额，作为权威资金口径
// campaign.current_amount 是该口径的反范式缓存，由对账任务保持一致
func (p *PaymentLogic) GetCampaignTotalInvestments(campaignId int64) (float64, error) {
	var total float64
	err := p.db.Model(&model.PaymentModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errs.Internal("统计投资总额失败", err)
	}
	return total, nil
}

// GetCampaignPaymentStats 获取活动投资统计
func (p *PaymentLogic) GetCampaignPaymentStats(campaignId int64) (map[string]interface{}, error) {
	var campaign model.CampaignModel
	if err := p.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("活动不存在")
		}
		return nil, errs.Internal("查询活动失败", err)
	}

	total, err := p.GetCampaignTotalInvestments(campaignId)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := p.db.Model(&model.PaymentModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.PaymentStatusCompleted).
		Count(&count).Error; err != nil {
		return nil, errs.Internal("统计投资笔数失败", err)
	}

	var investors int64
	if err := p.db.Model(&model.PaymentModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.PaymentStatusCompleted).
		Distinct("user_id").
		Count(&investors).Error; err != nil {
		return nil, errs.Internal("统计投资人数失败", err)
	}

	average := float64(0)
	if count > 0 {
		average = total / float64(count)
	}

	percentage := float64(0)
	if campaign.TargetAmount > 0 {
		percentage = total / campaign.TargetAmount * 100
	}

	return map[string]interface{}{
		"campaign_id":           campaignId,
		"total_amount":          total,
		"payment_count":         count,
		"unique_investors":      investors,
		"average_amount":        average,
		"target_amount":         campaign.TargetAmount,
		"completion_percentage": percentage,
	}, nil
}
