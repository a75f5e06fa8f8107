package logic

import (
	"errors"
	"strings"

	"github.com/blues/cfp/internal/auth"
	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
)

// UserLogic 用户业务逻辑
type UserLogic struct {
	db     *gorm.DB
	issuer *auth.TokenIssuer
}

// NewUserLogic 创建用户业务逻辑
func NewUserLogic(db *gorm.DB, issuer *auth.TokenIssuer) *UserLogic {
	return &UserLogic{db: db, issuer: issuer}
}

// RegisterInput 注册请求
type RegisterInput struct {
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	FullName string         `json:"full_name" binding:"required"`
	Role     model.UserRole `json:"role" binding:"required"`
	Phone    string         `json:"phone"`
	Company  string         `json:"company"`
}

// Register 注册用户
// 发起人注册后处于未认证状态，需管理员审核通过后才能发布活动
func (u *UserLogic) Register(input RegisterInput) (*model.UserModel, error) {
	if !input.Role.IsValid() || input.Role == model.UserRoleAdmin {
		return nil, errs.Validation("无效的用户角色")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, errs.Internal("密码处理失败", err)
	}

	user := model.UserModel{
		Email:        email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
		Phone:        input.Phone,
		Company:      input.Company,
		// 投资人无需审核
		IsVerified: input.Role == model.UserRoleInvestor,
	}
	// 查重交给邮箱唯一索引，并发注册同一邮箱也只会有一个成功
	if err := u.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("该邮箱已被注册")
		}
		return nil, errs.Internal("创建用户失败", err)
	}

	return &user, nil
}

// Login 用户登录，成功返回用户与令牌
func (u *UserLogic) Login(email, password string) (*model.UserModel, string, error) {
	var user model.UserModel
	err := u.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errs.Unauthorized("邮箱或密码错误")
		}
		return nil, "", errs.Internal("查询用户失败", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", errs.Unauthorized("邮箱或密码错误")
	}

	token, err := u.issuer.Issue(user.Id)
	if err != nil {
		return nil, "", errs.Internal("签发令牌失败", err)
	}

	return &user, token, nil
}

// GetById 获取用户
func (u *UserLogic) GetById(id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := u.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("用户不存在")
		}
		return nil, errs.Internal("查询用户失败", err)
	}
	return &user, nil
}

// UpdateProfileInput 资料更新请求
type UpdateProfileInput struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile 更新用户资料，角色与认证状态不允许自行修改
func (u *UserLogic) UpdateProfile(userId int64, input UpdateProfileInput) (*model.UserModel, error) {
	updates := make(map[string]interface{})
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}
	if len(updates) == 0 {
		return nil, errs.Validation("没有要更新的字段")
	}

	result := u.db.Model(&model.UserModel{}).Where("id = ?", userId).Updates(updates)
	if result.Error != nil {
		return nil, errs.Internal("更新用户资料失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NotFound("用户不存在")
	}

	return u.GetById(userId)
}

// requireVerifiedFounder 校验发布者已通过管理员认证
// 投资人注册即认证，此检查只拦截未审核的发起人
func requireVerifiedFounder(db *gorm.DB, userId int64) error {
	var user model.UserModel
	if err := db.First(&user, userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("用户不存在")
		}
		return errs.Internal("查询用户失败", err)
	}
	if !user.IsVerified {
		return errs.Forbidden("发起人尚未通过认证，无法发布活动")
	}
	return nil
}
