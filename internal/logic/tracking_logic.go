package logic

import (
	"errors"
	"strings"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 浏览去重冷却窗口
const (
	authenticatedViewWindow = 24 * time.Hour // 已登录用户
	anonymousViewWindow     = 6 * time.Hour  // 匿名访客
)

// ViewIdentity 浏览身份
// 已登录用户 Key 为 user:<id>，匿名访客按会话或IP归并为 anon:<key>
type ViewIdentity struct {
	UserId *int64
	Key    string
}

// TrackingLogic 浏览与收藏跟踪业务逻辑
type TrackingLogic struct {
	db *gorm.DB
}

// NewTrackingLogic 创建浏览与收藏跟踪业务逻辑
func NewTrackingLogic(db *gorm.DB) *TrackingLogic {
	return &TrackingLogic{db: db}
}

// TrackView 记录一次活动浏览
// 同一身份在冷却窗口内的重复浏览只刷新时间戳不计数；
// 窗口外的浏览刷新时间戳并使活动浏览数加一。
// (活动, 身份) 上的唯一索引保证并发首次浏览不会产生重复行
func (t *TrackingLogic) TrackView(campaignId int64, identity ViewIdentity) error {
	if identity.Key == "" {
		return errs.Validation("缺少浏览身份")
	}

	return t.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("活动不存在")
			}
			return errs.Internal("查询活动失败", err)
		}

		now := time.Now()

		var view model.CampaignViewModel
		err := tx.Where("campaign_id = ? AND identity_key = ?", campaignId, identity.Key).
			First(&view).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			view = model.CampaignViewModel{
				CampaignId:  campaignId,
				IdentityKey: identity.Key,
				UserId:      identity.UserId,
				ViewedAt:    now,
			}
			created, err := insertView(tx, &view)
			if err != nil {
				return errs.Internal("写入浏览记录失败", err)
			}
			if !created {
				// 并发首次浏览被另一请求抢先，按窗口内重复浏览处理
				return tx.Model(&model.CampaignViewModel{}).
					Where("campaign_id = ? AND identity_key = ?", campaignId, identity.Key).
					Update("viewed_at", now).Error
			}
			return t.incrementViewCount(tx, campaignId)
		}
		if err != nil {
			return errs.Internal("查询浏览记录失败", err)
		}

		window := anonymousViewWindow
		if identity.UserId != nil {
			window = authenticatedViewWindow
		}

		if err := tx.Model(&model.CampaignViewModel{}).
			Where("id = ?", view.Id).
			Update("viewed_at", now).Error; err != nil {
			return errs.Internal("更新浏览记录失败", err)
		}

		if now.Sub(view.ViewedAt) >= window {
			return t.incrementViewCount(tx, campaignId)
		}
		return nil
	})
}

func (t *TrackingLogic) incrementViewCount(tx *gorm.DB, campaignId int64) error {
	return tx.Model(&model.CampaignModel{}).
		Where("id = ?", campaignId).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// insertView 插入浏览记录，返回是否真正新增
// 用 ON CONFLICT DO NOTHING 而非捕获唯一冲突：Postgres 上语句报错会使
// 整个事务进入中止状态，之后的补救语句无法执行
func insertView(tx *gorm.DB, view *model.CampaignViewModel) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "identity_key"}},
		DoNothing: true,
	}).Create(view)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// insertFavorite 插入收藏记录，已存在时不报错也不中止事务
func insertFavorite(tx *gorm.DB, favorite *model.FavoriteModel) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "campaign_id"}},
		DoNothing: true,
	}).Create(favorite).Error
}

// ToggleFavorite 切换收藏状态，返回切换后的状态
// (用户, 活动) 上的唯一索引保证并发切换不会产生重复行
func (t *TrackingLogic) ToggleFavorite(userId, campaignId int64) (bool, error) {
	var favorited bool

	err := t.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("活动不存在")
			}
			return errs.Internal("查询活动失败", err)
		}

		result := tx.Where("user_id = ? AND campaign_id = ?", userId, campaignId).
			Delete(&model.FavoriteModel{})
		if result.Error != nil {
			return errs.Internal("取消收藏失败", result.Error)
		}
		if result.RowsAffected > 0 {
			favorited = false
			return nil
		}

		// 并发收藏被另一请求抢先时插入零行，最终状态一致
		favorite := model.FavoriteModel{UserId: userId, CampaignId: campaignId}
		if err := insertFavorite(tx, &favorite); err != nil {
			return errs.Internal("收藏失败", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return favorited, nil
}

// GetUserFavorites 获取用户收藏的活动
func (t *TrackingLogic) GetUserFavorites(userId int64) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	err := t.db.
		Joins("JOIN favorite ON favorite.campaign_id = campaign.id").
		Where("favorite.user_id = ?", userId).
		Order("favorite.created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, errs.Internal("查询收藏列表失败", err)
	}
	return campaigns, nil
}

// IsFavorited 查询用户是否收藏了活动
func (t *TrackingLogic) IsFavorited(userId, campaignId int64) (bool, error) {
	var count int64
	err := t.db.Model(&model.FavoriteModel{}).
		Where("user_id = ? AND campaign_id = ?", userId, campaignId).
		Count(&count).Error
	if err != nil {
		return false, errs.Internal("查询收藏状态失败", err)
	}
	return count > 0, nil
}

// GetMostViewed 按浏览数排序获取进行中的活动
func (t *TrackingLogic) GetMostViewed(limit int) ([]model.CampaignModel, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var campaigns []model.CampaignModel
	err := t.db.Where("status = ?", model.CampaignStatusActive).
		Order("view_count DESC").
		Limit(limit).
		Find(&campaigns).Error
	if err != nil {
		return nil, errs.Internal("查询热门活动失败", err)
	}
	return campaigns, nil
}

// GetRecentlyViewed 获取用户最近浏览的活动
func (t *TrackingLogic) GetRecentlyViewed(userId int64, limit int) ([]model.CampaignModel, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var campaigns []model.CampaignModel
	err := t.db.
		Joins("JOIN campaign_view ON campaign_view.campaign_id = campaign.id").
		Where("campaign_view.user_id = ?", userId).
		Order("campaign_view.viewed_at DESC").
		Limit(limit).
		Find(&campaigns).Error
	if err != nil {
		return nil, errs.Internal("查询最近浏览失败", err)
	}
	return campaigns, nil
}

// lockForUpdate 行级悲观锁
// SQLite 不支持 FOR UPDATE，其写入本身串行，直接跳过
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isUniqueViolation 判断是否唯一约束冲突（Postgres 与 SQLite）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
