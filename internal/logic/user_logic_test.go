package logic

import (
	"testing"

	"github.com/blues/cfp/internal/auth"
	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	issuer := auth.NewTokenIssuer("test-secret", 1)
	logic := NewUserLogic(db, issuer)

	investor, err := logic.Register(RegisterInput{
		Email:    "Investor@Test.com",
		Password: "password123",
		FullName: "Ada",
		Role:     model.UserRoleInvestor,
	})
	if err != nil {
		t.Fatalf("Register investor failed: %v", err)
	}
	if investor.Email != "investor@test.com" {
		t.Errorf("Email = %q, want normalized lowercase", investor.Email)
	}
	if !investor.IsVerified {
		t.Error("Investor should be auto-verified")
	}

	founder, err := logic.Register(RegisterInput{
		Email:    "founder@test.com",
		Password: "password123",
		FullName: "Grace",
		Role:     model.UserRoleFounder,
	})
	if err != nil {
		t.Fatalf("Register founder failed: %v", err)
	}
	if founder.IsVerified {
		t.Error("Founder should require admin verification")
	}

	// 邮箱去重不区分大小写
	_, err = logic.Register(RegisterInput{
		Email:    "INVESTOR@test.com",
		Password: "password123",
		FullName: "Ada 2",
		Role:     model.UserRoleInvestor,
	})
	if !errs.IsConflict(err) {
		t.Errorf("Duplicate email = %v, want Conflict", err)
	}

	// 不能自行注册管理员
	_, err = logic.Register(RegisterInput{
		Email:    "admin@test.com",
		Password: "password123",
		FullName: "Eve",
		Role:     model.UserRoleAdmin,
	})
	if !errs.IsValidation(err) {
		t.Errorf("Admin registration = %v, want Validation", err)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	issuer := auth.NewTokenIssuer("test-secret", 1)
	logic := NewUserLogic(db, issuer)

	if _, err := logic.Register(RegisterInput{
		Email:    "user@test.com",
		Password: "password123",
		FullName: "Ada",
		Role:     model.UserRoleInvestor,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, token, err := logic.Login("user@test.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}
	userId, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Issued token failed verification: %v", err)
	}
	if userId != user.Id {
		t.Errorf("Token subject = %d, want %d", userId, user.Id)
	}

	if _, _, err := logic.Login("user@test.com", "wrong-password"); errs.KindOf(err) != errs.KindUnauthorized {
		t.Errorf("Wrong password = %v, want Unauthorized", err)
	}
	if _, _, err := logic.Login("nobody@test.com", "password123"); errs.KindOf(err) != errs.KindUnauthorized {
		t.Errorf("Unknown email = %v, want Unauthorized", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	issuer := auth.NewTokenIssuer("test-secret", 1)
	logic := NewUserLogic(db, issuer)
	user := createTestUser(t, db, "user@test.com", model.UserRoleInvestor, true)

	bio := "Angel investor"
	phone := "+2547000000"
	updated, err := logic.UpdateProfile(user.Id, UpdateProfileInput{Bio: &bio, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Bio != bio || updated.Phone != phone {
		t.Errorf("Profile not updated: bio=%q phone=%q", updated.Bio, updated.Phone)
	}
	// 未提供的字段保持不变
	if updated.FullName != user.FullName {
		t.Errorf("FullName changed unexpectedly: %q", updated.FullName)
	}

	if _, err := logic.UpdateProfile(user.Id, UpdateProfileInput{}); !errs.IsValidation(err) {
		t.Errorf("Empty update = %v, want Validation", err)
	}
	if _, err := logic.UpdateProfile(99999, UpdateProfileInput{Bio: &bio}); !errs.IsNotFound(err) {
		t.Errorf("Update missing user = %v, want NotFound", err)
	}
}
