package logic

import (
	"testing"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
)

func TestApproveCampaign(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	campaign := createTestCampaign(t, db, founder.Id, model.CampaignStatusPendingApproval)
	logic := NewAdminLogic(db)

	if err := logic.ApproveCampaign(campaign.Id); err != nil {
		t.Fatalf("ApproveCampaign failed: %v", err)
	}

	var reloaded model.CampaignModel
	db.First(&reloaded, campaign.Id)
	if reloaded.Status != model.CampaignStatusActive {
		t.Errorf("Status = %q, want active", reloaded.Status)
	}

	var notification model.NotificationModel
	err := db.Where("user_id = ? AND type = ?", founder.Id, model.NotificationTypeCampaignApproval).
		First(&notification).Error
	if err != nil {
		t.Fatalf("Approval notification missing: %v", err)
	}
	if notification.IsRead {
		t.Error("New notification should be unread")
	}
	if notification.RelatedId == nil || *notification.RelatedId != campaign.Id {
		t.Errorf("Notification RelatedId = %v, want %d", notification.RelatedId, campaign.Id)
	}

	// 已处理的活动不能再次审核
	if err := logic.ApproveCampaign(campaign.Id); !errs.IsNotFound(err) {
		t.Errorf("Second approve = %v, want NotFound", err)
	}
	if err := logic.RejectCampaign(campaign.Id, "too late"); !errs.IsNotFound(err) {
		t.Errorf("Reject after approve = %v, want NotFound", err)
	}
}

func TestRejectCampaign(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	campaign := createTestCampaign(t, db, founder.Id, model.CampaignStatusPendingApproval)
	logic := NewAdminLogic(db)

	if err := logic.RejectCampaign(campaign.Id, ""); !errs.IsValidation(err) {
		t.Errorf("Reject without reason = %v, want Validation", err)
	}

	if err := logic.RejectCampaign(campaign.Id, "目标金额不合理"); err != nil {
		t.Fatalf("RejectCampaign failed: %v", err)
	}

	var reloaded model.CampaignModel
	db.First(&reloaded, campaign.Id)
	if reloaded.Status != model.CampaignStatusRejected {
		t.Errorf("Status = %q, want rejected", reloaded.Status)
	}
	if reloaded.RejectionReason != "目标金额不合理" {
		t.Errorf("RejectionReason = %q, want stored reason", reloaded.RejectionReason)
	}

	if n := countWhere(t, db, &model.NotificationModel{},
		"user_id = ? AND type = ?", founder.Id, model.NotificationTypeCampaignRejection); n != 1 {
		t.Errorf("Rejection notifications = %d, want 1", n)
	}
}

func TestApproveCampaignStateGuard(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	active := createTestCampaign(t, db, founder.Id, model.CampaignStatusActive)
	logic := NewAdminLogic(db)

	if err := logic.ApproveCampaign(active.Id); !errs.IsNotFound(err) {
		t.Errorf("Approve active campaign = %v, want NotFound", err)
	}
	if err := logic.ApproveCampaign(99999); !errs.IsNotFound(err) {
		t.Errorf("Approve missing campaign = %v, want NotFound", err)
	}

	// 状态守卫失败不产生通知
	if n := countWhere(t, db, &model.NotificationModel{}, "user_id = ?", founder.Id); n != 0 {
		t.Errorf("Notifications after guarded approve = %d, want 0", n)
	}
}

func TestFounderApprovalFlow(t *testing.T) {
	db := newTestDB(t)
	pending := createTestUser(t, db, "pending@test.com", model.UserRoleFounder, false)
	verified := createTestUser(t, db, "verified@test.com", model.UserRoleFounder, true)
	createTestUser(t, db, "investor@test.com", model.UserRoleInvestor, true)
	logic := NewAdminLogic(db)

	founders, err := logic.ListPendingFounders()
	if err != nil {
		t.Fatalf("ListPendingFounders failed: %v", err)
	}
	if len(founders) != 1 || founders[0].Id != pending.Id {
		t.Fatalf("Pending founders = %+v, want only the unverified founder", founders)
	}

	if err := logic.ApproveFounder(pending.Id); err != nil {
		t.Fatalf("ApproveFounder failed: %v", err)
	}
	var reloaded model.UserModel
	db.First(&reloaded, pending.Id)
	if !reloaded.IsVerified {
		t.Error("Founder should be verified after approval")
	}
	if n := countWhere(t, db, &model.NotificationModel{},
		"user_id = ? AND type = ?", pending.Id, model.NotificationTypeFounderApproval); n != 1 {
		t.Errorf("Founder approval notifications = %d, want 1", n)
	}

	// 已认证的发起人不能重复审批
	if err := logic.ApproveFounder(verified.Id); !errs.IsNotFound(err) {
		t.Errorf("Approve verified founder = %v, want NotFound", err)
	}
}

func TestRejectFounder(t *testing.T) {
	db := newTestDB(t)
	pending := createTestUser(t, db, "pending@test.com", model.UserRoleFounder, false)
	investor := createTestUser(t, db, "investor@test.com", model.UserRoleInvestor, true)
	logic := NewAdminLogic(db)

	if err := logic.RejectFounder(pending.Id, "资料不全"); err != nil {
		t.Fatalf("RejectFounder failed: %v", err)
	}
	var reloaded model.UserModel
	db.First(&reloaded, pending.Id)
	if reloaded.IsVerified {
		t.Error("Rejected founder should stay unverified")
	}
	if n := countWhere(t, db, &model.NotificationModel{},
		"user_id = ? AND type = ?", pending.Id, model.NotificationTypeFounderRejection); n != 1 {
		t.Errorf("Founder rejection notifications = %d, want 1", n)
	}

	// 投资人不在发起人审核范围内
	if err := logic.RejectFounder(investor.Id, "n/a"); !errs.IsNotFound(err) {
		t.Errorf("Reject investor = %v, want NotFound", err)
	}
}

func TestAdminListCampaigns(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	createTestCampaign(t, db, founder.Id, model.CampaignStatusPendingApproval)
	createTestCampaign(t, db, founder.Id, model.CampaignStatusActive)
	createTestCampaign(t, db, founder.Id, model.CampaignStatusRejected)
	logic := NewAdminLogic(db)

	pending, err := logic.ListCampaigns("")
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("Default list = %d campaigns, want 1 pending", len(pending))
	}

	all, err := logic.ListCampaigns("all")
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("All list = %d campaigns, want 3", len(all))
	}
}
