package logic

import (
	"testing"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

func seedCampaign(t *testing.T, db *gorm.DB, c model.CampaignModel) *model.CampaignModel {
	t.Helper()
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("Failed to seed campaign: %v", err)
	}
	return &c
}

func TestCampaignCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	logic := NewCampaignLogic(db)

	detail, err := logic.Create(CampaignInput{
		Title:         "Direct Campaign",
		Description:   "Created without a draft",
		Category:      "health",
		TargetAmount:  80000,
		MinInvestment: 200,
	}, founder.Id)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if detail.Status != model.CampaignStatusPendingApproval {
		t.Errorf("Status = %q, want pending_approval", detail.Status)
	}
	if detail.CurrentAmount != 0 {
		t.Errorf("CurrentAmount = %v, want 0", detail.CurrentAmount)
	}
	// 未指定结束时间时默认约90天
	if until := time.Until(detail.EndDate); until < 89*24*time.Hour || until > 91*24*time.Hour {
		t.Errorf("EndDate defaulted to %v, want roughly 90 days out", detail.EndDate)
	}

	got, err := logic.GetById(detail.Id)
	if err != nil {
		t.Fatalf("GetById failed: %v", err)
	}
	if got.Title != "Direct Campaign" {
		t.Errorf("Title = %q", got.Title)
	}

	if _, err := logic.GetById(99999); !errs.IsNotFound(err) {
		t.Errorf("GetById missing = %v, want NotFound", err)
	}
}

func TestGetCampaignsFilters(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	logic := NewCampaignLogic(db)

	end := time.Now().AddDate(0, 1, 0)
	seedCampaign(t, db, model.CampaignModel{
		Title: "Solar Grid", Category: "energy", Stage: "seed",
		TargetAmount: 100, CurrentAmount: 90, EndDate: end,
		Status: model.CampaignStatusActive, CreatorId: founder.Id,
	})
	seedCampaign(t, db, model.CampaignModel{
		Title: "Water Filter", Category: "health", Stage: "growth",
		TargetAmount: 100, CurrentAmount: 10, EndDate: end,
		Status: model.CampaignStatusActive, CreatorId: founder.Id,
	})
	seedCampaign(t, db, model.CampaignModel{
		Title: "Hidden", Category: "energy", Stage: "seed",
		TargetAmount: 100, EndDate: end,
		Status: model.CampaignStatusPendingApproval, CreatorId: founder.Id,
	})

	// 默认只返回进行中的活动，总数与列表同一口径
	campaigns, total, err := logic.GetCampaigns(CampaignFilters{}, 1, 10)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(campaigns) != 2 || total != 2 {
		t.Errorf("Default list = %d items, total %d, want 2/2", len(campaigns), total)
	}

	campaigns, total, err = logic.GetCampaigns(CampaignFilters{Category: "energy"}, 1, 10)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0].Title != "Solar Grid" {
		t.Errorf("Category filter returned %+v", campaigns)
	}

	campaigns, _, err = logic.GetCampaigns(CampaignFilters{Search: "water"}, 1, 10)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0].Title != "Water Filter" {
		t.Errorf("Search filter returned %+v", campaigns)
	}

	campaigns, total, err = logic.GetCampaigns(CampaignFilters{Status: "all"}, 1, 10)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(campaigns) != 3 || total != 3 {
		t.Errorf("Status=all = %d items, total %d, want 3/3", len(campaigns), total)
	}

	campaigns, _, err = logic.GetCampaigns(CampaignFilters{SortBy: "most_funded"}, 1, 10)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if campaigns[0].Title != "Solar Grid" {
		t.Errorf("most_funded first = %q, want Solar Grid", campaigns[0].Title)
	}
}

func TestGetCampaignsPagination(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	logic := NewCampaignLogic(db)

	for i := 0; i < 5; i++ {
		createTestCampaign(t, db, founder.Id, model.CampaignStatusActive)
	}

	page1, total, err := logic.GetCampaigns(CampaignFilters{}, 1, 2)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Errorf("Page 1 = %d items, total %d, want 2/5", len(page1), total)
	}

	page3, _, err := logic.GetCampaigns(CampaignFilters{}, 3, 2)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("Page 3 = %d items, want 1", len(page3))
	}

	// 非法分页参数回退默认值
	fallback, _, err := logic.GetCampaigns(CampaignFilters{}, 0, -5)
	if err != nil {
		t.Fatalf("GetCampaigns failed: %v", err)
	}
	if len(fallback) != 5 {
		t.Errorf("Fallback page = %d items, want all 5", len(fallback))
	}
}

func TestCampaignUpdateOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@test.com", model.UserRoleFounder, true)
	other := createTestUser(t, db, "other@test.com", model.UserRoleFounder, true)
	campaign := createTestCampaign(t, db, owner.Id, model.CampaignStatusActive)
	db.Model(&model.CampaignModel{}).Where("id = ?", campaign.Id).
		Update("current_amount", 12345)
	logic := NewCampaignLogic(db)

	input := CampaignInput{Title: "Renamed", TargetAmount: 200000}
	if _, err := logic.Update(campaign.Id, other.Id, input); !errs.IsNotFound(err) {
		t.Errorf("Update by non-owner = %v, want NotFound", err)
	}

	updated, err := logic.Update(campaign.Id, owner.Id, input)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", updated.Title)
	}
	// 资金、浏览数与状态不可经由更新接口改动
	if updated.CurrentAmount != 12345 {
		t.Errorf("CurrentAmount = %v, want untouched 12345", updated.CurrentAmount)
	}
	if updated.Status != model.CampaignStatusActive {
		t.Errorf("Status = %q, want untouched active", updated.Status)
	}
}

func TestCampaignDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@test.com", model.UserRoleFounder, true)
	viewer := createTestUser(t, db, "viewer@test.com", model.UserRoleInvestor, true)
	campaign := createTestCampaign(t, db, owner.Id, model.CampaignStatusActive)
	logic := NewCampaignLogic(db)
	tracking := NewTrackingLogic(db)

	if err := tracking.TrackView(campaign.Id, userIdentity(viewer.Id)); err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}
	if _, err := tracking.ToggleFavorite(viewer.Id, campaign.Id); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	if err := logic.Delete(campaign.Id, owner.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if n := countWhere(t, db, &model.CampaignViewModel{}, "campaign_id = ?", campaign.Id); n != 0 {
		t.Errorf("Delete left %d view rows", n)
	}
	if n := countWhere(t, db, &model.FavoriteModel{}, "campaign_id = ?", campaign.Id); n != 0 {
		t.Errorf("Delete left %d favorite rows", n)
	}
}

func TestCampaignCreateRequiresVerifiedFounder(t *testing.T) {
	db := newTestDB(t)
	pending := createTestUser(t, db, "pending@test.com", model.UserRoleFounder, false)
	logic := NewCampaignLogic(db)

	input := CampaignInput{Title: "Early Bird", TargetAmount: 20000}
	if _, err := logic.Create(input, pending.Id); !errs.IsForbidden(err) {
		t.Fatalf("Create by unverified founder = %v, want forbidden", err)
	}
	if got := countWhere(t, db, &model.CampaignModel{}, "creator_id = ?", pending.Id); got != 0 {
		t.Errorf("Campaign count = %d, want 0", got)
	}
}
