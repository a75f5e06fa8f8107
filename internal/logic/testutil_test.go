package logic

import (
	"testing"
	"time"

	"github.com/blues/cfp/internal/auth"
	"github.com/blues/cfp/internal/database"
	"github.com/blues/cfp/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 创建内存数据库并迁移全部表
// 连接池限制为单连接，避免多个 :memory: 连接各自为独立数据库
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

// createTestUser 插入测试用户
func createTestUser(t *testing.T, db *gorm.DB, email string, role model.UserRole, verified bool) *model.UserModel {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := model.UserModel{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   verified,
		FullName:     "Test " + email,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// createTestCampaign 插入指定状态的测试活动
func createTestCampaign(t *testing.T, db *gorm.DB, creatorId int64, status model.CampaignStatus) *model.CampaignModel {
	t.Helper()

	campaign := model.CampaignModel{
		Title:         "Test Campaign",
		Description:   "A campaign used in tests",
		Category:      "technology",
		Stage:         "seed",
		TargetAmount:  100000,
		MinInvestment: 100,
		EndDate:       time.Now().AddDate(0, 0, 30),
		Status:        status,
		CreatorId:     creatorId,
	}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("Failed to create test campaign: %v", err)
	}
	return &campaign
}

// createTestPayment 插入待结算测试支付
func createTestPayment(t *testing.T, db *gorm.DB, userId, campaignId int64, amount float64) *model.PaymentModel {
	t.Helper()

	payment := model.PaymentModel{
		UserId:     userId,
		CampaignId: campaignId,
		Amount:     amount,
		Email:      "investor@test.com",
		Reference:  generateReference(),
		Status:     model.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return &payment
}

// countWhere 统计满足条件的行数
func countWhere(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(m).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

// fullDraftPayload 覆盖全部子集合的草稿请求体
func fullDraftPayload() DraftPayload {
	targetDate := time.Now().AddDate(0, 2, 0)
	return DraftPayload{
		Title:         "Solar Microgrid",
		Description:   "Community-owned solar power",
		Category:      "energy",
		Location:      "Nairobi",
		Stage:         "seed",
		TargetAmount:  50000,
		MinInvestment: 250,
		ProjectDuration: map[string]interface{}{
			"months": float64(18),
		},
		Financials: map[string]interface{}{
			"revenue_model": "subscription",
		},
		ProblemStatement: &SectionPayload{
			Content: "Unreliable grid power",
			Images: []ImagePayload{
				{URL: "https://cdn.test/problem.jpg", Caption: "outage map"},
			},
		},
		Solution: &SectionPayload{
			Content: "Distributed solar microgrids",
		},
		CoverImage: &ImagePayload{URL: "https://cdn.test/cover.jpg"},
		Gallery: []ImagePayload{
			{URL: "https://cdn.test/g1.jpg", SortOrder: 0},
			{URL: "https://cdn.test/g2.jpg", SortOrder: 1},
		},
		PitchAsset:   &AssetPayload{URL: "https://cdn.test/pitch.pdf", FileName: "pitch.pdf"},
		BusinessPlan: &AssetPayload{URL: "https://cdn.test/plan.pdf", FileName: "plan.pdf"},
		Milestones: []MilestonePayload{
			{
				Title:        "Pilot site",
				Description:  "First installation",
				TargetAmount: 20000,
				TargetDate:   &targetDate,
				SortOrder:    0,
				Image:        &ImagePayload{URL: "https://cdn.test/m1.jpg"},
			},
			{
				Title:        "Scale to 5 sites",
				TargetAmount: 30000,
				SortOrder:    1,
			},
		},
		TeamMembers: []TeamMemberPayload{
			{Name: "Amina", Role: "CEO", Image: &ImagePayload{URL: "https://cdn.test/amina.jpg"}},
			{Name: "Kofi", Role: "CTO"},
		},
		Risks: []RiskPayload{
			{Category: "regulatory", Descriptor: "Licensing delays", Mitigation: "Early filings"},
		},
	}
}
