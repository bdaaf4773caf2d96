package database

import (
	"msp/internal/models"
	"msp/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		// 主站
		&models.StartupUser{},
		&models.SubscriptionPlan{},
		// 租户及其附属表
		&models.Tenant{},
		&models.MarketplaceSettings{},
		&models.UserProfile{},
		&models.Subscription{},
		// 商城运行时
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		// 审计
		&models.ActivityLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	// 种子数据初始化将在 main.go 中单独调用，避免循环依赖

	return nil
}
