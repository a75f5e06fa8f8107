package logic

import (
	"testing"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
)

func TestPublishCreatesPendingCampaign(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	drafts := NewDraftLogic(db)
	publish := NewPublishLogic(db)

	detail, err := drafts.Create(fullDraftPayload(), founder.Id)
	if err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	summary, err := publish.Publish(detail.Id, founder.Id)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if summary.Status != model.CampaignStatusPendingApproval {
		t.Errorf("Status = %q, want pending_approval", summary.Status)
	}
	if summary.Title != "Solar Microgrid" {
		t.Errorf("Title = %q, want draft title", summary.Title)
	}

	var campaign model.CampaignModel
	if err := db.First(&campaign, summary.Id).Error; err != nil {
		t.Fatalf("Campaign row missing: %v", err)
	}
	if campaign.CurrentAmount != 0 {
		t.Errorf("CurrentAmount = %v, want 0", campaign.CurrentAmount)
	}
	if campaign.TargetAmount != 50000 {
		t.Errorf("TargetAmount = %v, want 50000", campaign.TargetAmount)
	}
	if campaign.CreatorId != founder.Id {
		t.Errorf("CreatorId = %d, want %d", campaign.CreatorId, founder.Id)
	}
}

func TestPublishCopiesChildren(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	drafts := NewDraftLogic(db)
	publish := NewPublishLogic(db)

	detail, err := drafts.Create(fullDraftPayload(), founder.Id)
	if err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	summary, err := publish.Publish(detail.Id, founder.Id)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	wantCounts := map[string]struct {
		model interface{}
		want  int64
	}{
		"sections":     {&model.CampaignSectionModel{}, 2},
		"assets":       {&model.CampaignAssetModel{}, 2},
		"milestones":   {&model.MilestoneModel{}, 2},
		"team_members": {&model.TeamMemberModel{}, 2},
		"risks":        {&model.RiskModel{}, 1},
		// 问题陈述1 + 封面1 + 图集2 + 里程碑配图1 + 成员头像1
		"images": {&model.CampaignImageModel{}, 6},
	}
	for name, w := range wantCounts {
		got := countWhere(t, db, w.model, "campaign_id = ?", summary.Id)
		if got != w.want {
			t.Errorf("Copied %s = %d, want %d", name, got, w.want)
		}
	}

	// 里程碑配图关联的是新活动里程碑的ID
	var milestoneImages []model.CampaignImageModel
	db.Where("campaign_id = ? AND section_type = ?", summary.Id, model.SectionTypeMilestone).
		Find(&milestoneImages)
	for _, img := range milestoneImages {
		if img.RelatedId == nil {
			t.Fatal("Milestone image lost its related id")
		}
		if n := countWhere(t, db, &model.MilestoneModel{}, "id = ? AND campaign_id = ?", *img.RelatedId, summary.Id); n != 1 {
			t.Errorf("Milestone image points at %d, which is not a campaign milestone", *img.RelatedId)
		}
	}
}

func TestPublishConsumesDraft(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "founder@test.com", model.UserRoleFounder, true)
	drafts := NewDraftLogic(db)
	publish := NewPublishLogic(db)

	detail, err := drafts.Create(fullDraftPayload(), founder.Id)
	if err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	if _, err := publish.Publish(detail.Id, founder.Id); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if _, err := drafts.GetById(detail.Id, founder.Id); !errs.IsNotFound(err) {
		t.Errorf("Draft still readable after publish: %v", err)
	}
	if n := countWhere(t, db, &model.DraftMilestoneModel{}, "draft_id = ?", detail.Id); n != 0 {
		t.Errorf("Publish left %d draft milestone rows", n)
	}

	// 重复发布同一草稿不会产生第二个活动
	if _, err := publish.Publish(detail.Id, founder.Id); !errs.IsNotFound(err) {
		t.Errorf("Second publish = %v, want NotFound", err)
	}
	if n := countWhere(t, db, &model.CampaignModel{}, "creator_id = ?", founder.Id); n != 1 {
		t.Errorf("Campaigns after double publish = %d, want 1", n)
	}
}

func TestPublishOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@test.com", model.UserRoleFounder, true)
	other := createTestUser(t, db, "other@test.com", model.UserRoleFounder, true)
	drafts := NewDraftLogic(db)
	publish := NewPublishLogic(db)

	detail, err := drafts.Create(fullDraftPayload(), owner.Id)
	if err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	if _, err := publish.Publish(detail.Id, other.Id); !errs.IsNotFound(err) {
		t.Errorf("Publish by non-owner = %v, want NotFound", err)
	}
	// 失败的发布不消耗草稿
	if _, err := drafts.GetById(detail.Id, owner.Id); err != nil {
		t.Errorf("Draft should survive failed publish: %v", err)
	}
}

func TestPublishRequiresVerifiedFounder(t *testing.T) {
	db := newTestDB(t)
	founder := createTestUser(t, db, "pending@test.com", model.UserRoleFounder, false)
	drafts := NewDraftLogic(db)
	publish := NewPublishLogic(db)

	detail, err := drafts.Create(fullDraftPayload(), founder.Id)
	if err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	if _, err := publish.Publish(detail.Id, founder.Id); !errs.IsForbidden(err) {
		t.Fatalf("Publish by unverified founder = %v, want forbidden", err)
	}

	// 草稿保留，未产生活动
	if _, err := drafts.GetById(detail.Id, founder.Id); err != nil {
		t.Errorf("Draft should survive rejected publish: %v", err)
	}
	if got := countWhere(t, db, &model.CampaignModel{}, "creator_id = ?", founder.Id); got != 0 {
		t.Errorf("Campaign count = %d, want 0", got)
	}

	// 审核通过后即可发布
	if err := db.Model(&model.UserModel{}).Where("id = ?", founder.Id).
		Update("is_verified", true).Error; err != nil {
		t.Fatalf("verify founder: %v", err)
	}
	if _, err := publish.Publish(detail.Id, founder.Id); err != nil {
		t.Fatalf("Publish after verification failed: %v", err)
	}
}
