package main

import (
	"fmt"
	"os"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建订阅套餐
	if err := createDefaultPlans(db); err != nil {
		return fmt.Errorf("创建订阅套餐失败: %v", err)
	}

	// 2. 创建平台管理员
	if err := createPlatformAdmin(db); err != nil {
		return fmt.Errorf("创建平台管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultPlans 创建默认订阅套餐
func createDefaultPlans(db *gorm.DB) error {
	plans := []models.SubscriptionPlan{
		{
			Code:         "starter",
			Name:         "入门版",
			Description:  "适合刚起步的小商城",
			PriceMonthly: 29,
			PriceYearly:  290,
			MaxProducts:  100,
			MaxUsers:     5,
			MaxStorageMB: 1024,
			Features:     datatypes.JSON([]byte(`{"custom_domain": false, "order_export": false, "realtime_orders": false}`)),
			Status:       models.PlanStatusActive,
		},
		{
			Code:         "professional",
			Name:         "专业版",
			Description:  "面向成长中的商城，支持自定义域名",
			PriceMonthly: 99,
			PriceYearly:  990,
			MaxProducts:  1000,
			MaxUsers:     20,
			MaxStorageMB: 10240,
			Features:     datatypes.JSON([]byte(`{"custom_domain": true, "order_export": true, "realtime_orders": false}`)),
			Status:       models.PlanStatusActive,
		},
		{
			Code:         "enterprise",
			Name:         "企业版",
			Description:  "不限规模，含实时订单推送",
			PriceMonthly: 299,
			PriceYearly:  2990,
			MaxProducts:  100000,
			MaxUsers:     500,
			MaxStorageMB: 102400,
			Features:     datatypes.JSON([]byte(`{"custom_domain": true, "order_export": true, "realtime_orders": true}`)),
			Status:       models.PlanStatusActive,
		},
	}

	for _, plan := range plans {
		var count int64
		db.Model(&models.SubscriptionPlan{}).Where("code = ?", plan.Code).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&plan).Error; err != nil {
			return err
		}
		logger.GetLogger().Infof("订阅套餐 %s 创建成功", plan.Code)
	}
	return nil
}

// createPlatformAdmin 创建默认平台管理员
func createPlatformAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@marketable.shop"
	}

	var count int64
	db.Model(&models.StartupUser{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("平台管理员已存在，跳过创建")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@123"
	}

	admin := &models.StartupUser{
		Email:           email,
		FirstName:       "Platform",
		LastName:        "Admin",
		Status:          models.StartupUserStatusActive,
		IsPlatformAdmin: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Warnf("平台管理员 %s 创建成功，请尽快修改默认密码", email)
	return nil
}
