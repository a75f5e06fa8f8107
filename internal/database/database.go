package database

import (
	"fmt"

	"github.com/blues/cfp/internal/config"
	"github.com/blues/cfp/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 禁用 GORM 的默认日志输出
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 自动迁移全部表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.DraftCampaignModel{},
		&model.DraftSectionModel{},
		&model.DraftImageModel{},
		&model.DraftAssetModel{},
		&model.DraftMilestoneModel{},
		&model.DraftTeamMemberModel{},
		&model.DraftRiskModel{},
		&model.CampaignModel{},
		&model.CampaignSectionModel{},
		&model.CampaignImageModel{},
		&model.CampaignAssetModel{},
		&model.MilestoneModel{},
		&model.TeamMemberModel{},
		&model.RiskModel{},
		&model.CampaignViewModel{},
		&model.FavoriteModel{},
		&model.PaymentModel{},
		&model.MilestoneAllocationModel{},
		&model.NotificationModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
