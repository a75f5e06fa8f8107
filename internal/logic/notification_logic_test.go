package logic

import (
	"testing"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userId int64) *model.NotificationModel {
	t.Helper()
	notification := model.NotificationModel{
		UserId:  userId,
		Type:    model.NotificationTypeCampaignApproval,
		Title:   "测试通知",
		Message: "测试内容",
	}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("Failed to seed notification: %v", err)
	}
	return &notification
}

func TestNotificationReadFlow(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@test.com", model.UserRoleInvestor, true)
	other := createTestUser(t, db, "other@test.com", model.UserRoleInvestor, true)
	logic := NewNotificationLogic(db)

	first := seedNotification(t, db, user.Id)
	seedNotification(t, db, user.Id)
	seedNotification(t, db, other.Id)

	count, err := logic.GetUnreadCount(user.Id)
	if err != nil {
		t.Fatalf("GetUnreadCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Unread = %d, want 2", count)
	}

	// 他人不能标记不属于自己的通知
	if err := logic.MarkRead(first.Id, other.Id); !errs.IsNotFound(err) {
		t.Errorf("MarkRead by other user = %v, want NotFound", err)
	}

	if err := logic.MarkRead(first.Id, user.Id); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	var reloaded model.NotificationModel
	db.First(&reloaded, first.Id)
	if !reloaded.IsRead || reloaded.ReadAt == nil {
		t.Errorf("MarkRead left is_read=%v read_at=%v", reloaded.IsRead, reloaded.ReadAt)
	}

	if err := logic.MarkAllRead(user.Id); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	count, _ = logic.GetUnreadCount(user.Id)
	if count != 0 {
		t.Errorf("Unread after MarkAllRead = %d, want 0", count)
	}

	// 其他用户的通知不受影响
	count, _ = logic.GetUnreadCount(other.Id)
	if count != 1 {
		t.Errorf("Other user unread = %d, want 1", count)
	}
}

func TestNotificationListAndDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@test.com", model.UserRoleInvestor, true)
	other := createTestUser(t, db, "other@test.com", model.UserRoleInvestor, true)
	logic := NewNotificationLogic(db)

	first := seedNotification(t, db, user.Id)
	seedNotification(t, db, user.Id)

	notifications, total, err := logic.GetUserNotifications(user.Id, 1, 10)
	if err != nil {
		t.Fatalf("GetUserNotifications failed: %v", err)
	}
	if total != 2 || len(notifications) != 2 {
		t.Errorf("List = %d items, total %d, want 2/2", len(notifications), total)
	}

	if err := logic.Delete(first.Id, other.Id); !errs.IsNotFound(err) {
		t.Errorf("Delete by other user = %v, want NotFound", err)
	}
	if err := logic.Delete(first.Id, user.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, total, _ = logic.GetUserNotifications(user.Id, 1, 10)
	if total != 1 {
		t.Errorf("Total after delete = %d, want 1", total)
	}
}
