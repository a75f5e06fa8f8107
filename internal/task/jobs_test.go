package task

import (
	"testing"
	"time"

	"github.com/blues/cfp/internal/config"
	"github.com/blues/cfp/internal/database"
	"github.com/blues/cfp/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			CloseInterval:     300,
			ReconcileInterval: 600,
			ReconcilePoolSize: 4,
		},
	}
}

func seedCampaign(t *testing.T, db *gorm.DB, status model.CampaignStatus, endDate time.Time, currentAmount float64) *model.CampaignModel {
	t.Helper()
	campaign := model.CampaignModel{
		Title:         "Job Test Campaign",
		TargetAmount:  10000,
		CurrentAmount: currentAmount,
		EndDate:       endDate,
		Status:        status,
		CreatorId:     1,
	}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("Failed to seed campaign: %v", err)
	}
	return &campaign
}

func TestCampaignCloseJob(t *testing.T) {
	db := newTestDB(t)
	expired := seedCampaign(t, db, model.CampaignStatusActive, time.Now().Add(-time.Hour), 0)
	running := seedCampaign(t, db, model.CampaignStatusActive, time.Now().Add(time.Hour), 0)
	pending := seedCampaign(t, db, model.CampaignStatusPendingApproval, time.Now().Add(-time.Hour), 0)

	NewCampaignCloseJob(db, testConfig()).Execute()

	var reloaded model.CampaignModel
	db.First(&reloaded, expired.Id)
	if reloaded.Status != model.CampaignStatusClosed {
		t.Errorf("Expired campaign status = %q, want closed", reloaded.Status)
	}

	db.First(&reloaded, running.Id)
	if reloaded.Status != model.CampaignStatusActive {
		t.Errorf("Running campaign status = %q, want active", reloaded.Status)
	}

	// 待审核活动即使过期也不由本任务处理
	db.First(&reloaded, pending.Id)
	if reloaded.Status != model.CampaignStatusPendingApproval {
		t.Errorf("Pending campaign status = %q, want pending_approval", reloaded.Status)
	}
}

func TestFundingReconcileJobRepairsDrift(t *testing.T) {
	db := newTestDB(t)
	end := time.Now().Add(time.Hour)

	// current_amount 与已完成支付总和不一致
	drifted := seedCampaign(t, db, model.CampaignStatusActive, end, 999)
	consistent := seedCampaign(t, db, model.CampaignStatusActive, end, 500)

	payments := []model.PaymentModel{
		{UserId: 1, CampaignId: drifted.Id, Amount: 300, Reference: "DARB-1-AAAAAAAA", Status: model.PaymentStatusCompleted},
		{UserId: 2, CampaignId: drifted.Id, Amount: 200, Reference: "DARB-2-BBBBBBBB", Status: model.PaymentStatusCompleted},
		// 未完成支付不计入权威口径
		{UserId: 3, CampaignId: drifted.Id, Amount: 10000, Reference: "DARB-3-CCCCCCCC", Status: model.PaymentStatusPending},
		{UserId: 4, CampaignId: drifted.Id, Amount: 10000, Reference: "DARB-4-DDDDDDDD", Status: model.PaymentStatusFailed},
		{UserId: 5, CampaignId: consistent.Id, Amount: 500, Reference: "DARB-5-EEEEEEEE", Status: model.PaymentStatusCompleted},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("Failed to seed payment: %v", err)
		}
	}

	NewFundingReconcileJob(db, testConfig()).Execute()

	var reloaded model.CampaignModel
	db.First(&reloaded, drifted.Id)
	if reloaded.CurrentAmount != 500 {
		t.Errorf("Drifted campaign repaired to %v, want 500", reloaded.CurrentAmount)
	}

	db.First(&reloaded, consistent.Id)
	if reloaded.CurrentAmount != 500 {
		t.Errorf("Consistent campaign = %v, want untouched 500", reloaded.CurrentAmount)
	}
}

func TestFundingReconcileJobZeroesOrphanedFunds(t *testing.T) {
	db := newTestDB(t)

	// 有余额但没有任何已完成支付的活动回落到0
	orphan := seedCampaign(t, db, model.CampaignStatusClosed, time.Now().Add(-time.Hour), 750)

	NewFundingReconcileJob(db, testConfig()).Execute()

	var reloaded model.CampaignModel
	db.First(&reloaded, orphan.Id)
	if reloaded.CurrentAmount != 0 {
		t.Errorf("Orphaned funds = %v, want 0", reloaded.CurrentAmount)
	}
}
