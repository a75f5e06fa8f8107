package task

import (
	"time"

	"github.com/blues/cfp/internal/config"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CampaignCloseJob 活动到期关闭任务
// 将结束时间已过的进行中活动流转为已结束
type CampaignCloseJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewCampaignCloseJob 创建活动到期关闭任务
func NewCampaignCloseJob(db *gorm.DB, cfg *config.Config) *CampaignCloseJob {
	return &CampaignCloseJob{db: db, config: cfg}
}

// GetName 获取任务名称
func (j *CampaignCloseJob) GetName() string {
	return "campaign_close_updater"
}

// GetSchedule 获取调度配置
func (j *CampaignCloseJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.CloseInterval) * time.Second)
}

// Execute 执行任务
func (j *CampaignCloseJob) Execute() {
	logger.Info("Starting campaign close task")

	result := j.db.Model(&model.CampaignModel{}).
		Where("status = ? AND end_date <= ?", model.CampaignStatusActive, time.Now()).
		Update("status", model.CampaignStatusClosed)
	if result.Error != nil {
		logger.Error("Failed to close expired campaigns: %v", result.Error)
		return
	}

	logger.Info("Campaign close task completed. Closed %d campaigns", result.RowsAffected)
}
