package model

import (
	"time"
)

// CampaignViewModel 活动浏览记录
// 每个 (活动, 身份) 只保留一行，IdentityKey 为 "user:<id>" 或 "anon:<session/ip>"，
// 唯一索引保证并发浏览不会产生重复行
type CampaignViewModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CampaignId  int64     `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_identity"`
	IdentityKey string    `json:"identity_key" gorm:"not null;uniqueIndex:idx_campaign_identity"`
	UserId      *int64    `json:"user_id" gorm:"index"`
	ViewedAt    time.Time `json:"viewed_at" gorm:"not null;index"`
}

// TableName 自定义表名
func (CampaignViewModel) TableName() string {
	return "campaign_view"
}

// FavoriteModel 活动收藏
// 存在即收藏，唯一索引保证同一用户对同一活动至多一行
type FavoriteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	UserId     int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_user_campaign"`
	CampaignId int64 `json:"campaign_id" gorm:"not null;uniqueIndex:idx_user_campaign"`
}

// TableName 自定义表名
func (FavoriteModel) TableName() string {
	return "favorite"
}
