package task

import (
	"sync"
	"time"

	"github.com/blues/cfp/internal/config"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// FundingReconcileJob 资金对账任务
// 已完成支付的总和是活动资金的权威口径，current_amount 是其反范式缓存；
// 本任务定期重算并修复两者之间的偏差
type FundingReconcileJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewFundingReconcileJob 创建资金对账任务
func NewFundingReconcileJob(db *gorm.DB, cfg *config.Config) *FundingReconcileJob {
	return &FundingReconcileJob{db: db, config: cfg}
}

// GetName 获取任务名称
func (j *FundingReconcileJob) GetName() string {
	return "funding_reconcile_updater"
}

// GetSchedule 获取调度配置
func (j *FundingReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.ReconcileInterval) * time.Second)
}

// Execute 执行任务
func (j *FundingReconcileJob) Execute() {
	logger.Info("Starting funding reconcile task")

	var campaigns []model.CampaignModel
	err := j.db.Where("status IN ?", []model.CampaignStatus{
		model.CampaignStatusActive,
		model.CampaignStatusClosed,
	}).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns for reconcile: %v", err)
		return
	}
	if len(campaigns) == 0 {
		return
	}

	poolSize := j.config.Scheduler.ReconcilePoolSize
	if poolSize <= 0 {
		poolSize = 8
	}

	// 协程池并发对账，每个活动一个任务
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		logger.Error("Failed to create reconcile pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var repaired int64
	var mu sync.Mutex

	for _, campaign := range campaigns {
		campaign := campaign
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if j.reconcileCampaign(campaign) {
				mu.Lock()
				repaired++
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit reconcile task for campaign %d: %v", campaign.Id, err)
		}
	}
	wg.Wait()

	logger.Info("Funding reconcile task completed. Checked %d campaigns, repaired %d", len(campaigns), repaired)
}

// reconcileCampaign 重算单个活动的资金，有偏差时修复并返回 true
func (j *FundingReconcileJob) reconcileCampaign(campaign model.CampaignModel) bool {
	var total float64
	err := j.db.Model(&model.PaymentModel{}).
		Where("campaign_id = ? AND status = ?", campaign.Id, model.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		logger.Error("Failed to sum payments for campaign %d: %v", campaign.Id, err)
		return false
	}

	if total == campaign.CurrentAmount {
		return false
	}

	logger.Warn("Funding drift on campaign %d: current_amount=%.2f, completed payments=%.2f",
		campaign.Id, campaign.CurrentAmount, total)

	err = j.db.Model(&model.CampaignModel{}).
		Where("id = ?", campaign.Id).
		Update("current_amount", total).Error
	if err != nil {
		logger.Error("Failed to repair current_amount for campaign %d: %v", campaign.Id, err)
		return false
	}
	return true
}
