package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/config"
	apperrors "msp/pkg/errors"
	"msp/pkg/identity"
	"msp/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB 连接MSP_TEST_DSN指定的数据库并重建全部表，未设置时跳过。
// TranslateError与生产配置保持一致，唯一约束冲突的翻译路径依赖它
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("MSP_TEST_DSN")
	if dsn == "" {
		t.Skip("MSP_TEST_DSN 未设置，跳过数据库集成测试")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(
		&models.OrderItem{}, &models.Order{}, &models.Product{}, &models.Category{},
		&models.Subscription{}, &models.UserProfile{}, &models.MarketplaceSettings{},
		&models.ActivityLog{}, &models.Tenant{}, &models.SubscriptionPlan{}, &models.StartupUser{},
	))
	require.NoError(t, db.AutoMigrate(
		&models.StartupUser{}, &models.SubscriptionPlan{},
		&models.Tenant{}, &models.MarketplaceSettings{}, &models.UserProfile{}, &models.Subscription{},
		&models.Category{}, &models.Product{}, &models.Order{}, &models.OrderItem{},
		&models.ActivityLog{},
	))

	database.SetDB(db)
	return db
}

// stubIdentityClient 指向本地HTTP桩的身份服务客户端，所有请求都成功
func stubIdentityClient(t *testing.T) *identity.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success": true, "data": {"subject_id": "sub-%d"}}`, time.Now().UnixNano())
	}))
	t.Cleanup(srv.Close)

	return identity.NewClient(&config.IdentityConfig{BaseURL: srv.URL, Timeout: 5})
}

func testProvisioner(t *testing.T, db *gorm.DB) *ProvisioningService {
	t.Helper()
	log := logger.GetLogger()
	return &ProvisioningService{
		db:           db,
		log:          log,
		availability: &AvailabilityService{db: db},
		identity:     stubIdentityClient(t),
		activity:     &ActivityService{db: db, log: log},
	}
}

func seedPlan(t *testing.T, db *gorm.DB) *models.SubscriptionPlan {
	t.Helper()
	plan := &models.SubscriptionPlan{
		Code:         "starter",
		Name:         "入门版",
		PriceMonthly: 29,
		PriceYearly:  290,
		Features:     datatypes.JSON([]byte(`{}`)),
		Status:       models.PlanStatusActive,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func provisionRequestFor(company, email, subdomain string, planID uint) *ProvisionRequest {
	return &ProvisionRequest{
		CompanyName:  company,
		FirstName:    "Ada",
		LastName:     "Wong",
		Email:        email,
		Password:     "secret-pass",
		Subdomain:    subdomain,
		PlanID:       planID,
		BillingCycle: "monthly",
	}
}

func TestProvisionCreatesAllRows(t *testing.T) {
	db := setupTestDB(t)
	plan := seedPlan(t, db)
	svc := testProvisioner(t, db)

	result, err := svc.Provision(provisionRequestFor("Acme Corp", "ada@acme.com", "acme", plan.ID))
	require.NoError(t, err)
	assert.NotZero(t, result.TenantID)
	assert.Contains(t, result.MarketplaceURL, "acme.")

	for _, m := range []interface{}{
		&models.Tenant{}, &models.MarketplaceSettings{}, &models.UserProfile{}, &models.Subscription{},
	} {
		var count int64
		db.Model(m).Count(&count)
		assert.EqualValues(t, 1, count, "%T", m)
	}

	var profile models.UserProfile
	require.NoError(t, db.Where("tenant_id = ?", result.TenantID).First(&profile).Error)
	assert.Equal(t, models.ProfileRoleAdmin, profile.Role)
	assert.True(t, profile.IsActive)
}

func TestProvisionConcurrentSameSubdomain(t *testing.T) {
	// 两个并发请求抢同一个子域名：恰好一个成功，失败方不留下任何行
	db := setupTestDB(t)
	plan := seedPlan(t, db)
	svc := testProvisioner(t, db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := provisionRequestFor(
				fmt.Sprintf("Acme %d", i),
				fmt.Sprintf("admin%d@acme.com", i),
				"acme", plan.ID,
			)
			_, errs[i] = svc.Provision(req)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	}
	assert.Equal(t, 1, successes)

	// 事务整体回滚，四张表各自只有赢家的一行
	for _, m := range []interface{}{
		&models.Tenant{}, &models.MarketplaceSettings{}, &models.UserProfile{}, &models.Subscription{},
	} {
		var count int64
		db.Model(m).Count(&count)
		assert.EqualValues(t, 1, count, "%T", m)
	}
}

func TestProvisionCustomDomainOnlyTwice(t *testing.T) {
	// 子域名留空存NULL，不参与唯一约束，第二个只填自定义域名的商城照常开通
	db := setupTestDB(t)
	plan := seedPlan(t, db)
	svc := testProvisioner(t, db)

	for i, domain := range []string{"a.example.com", "b.example.com"} {
		req := provisionRequestFor(
			fmt.Sprintf("Shop %d", i),
			fmt.Sprintf("owner%d@example.com", i),
			"", plan.ID,
		)
		req.CustomDomain = domain
		_, err := svc.Provision(req)
		require.NoError(t, err, domain)
	}

	var count int64
	db.Model(&models.Tenant{}).Where("subdomain IS NULL").Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestTranslateDuplicateIdentifiesField(t *testing.T) {
	db := setupTestDB(t)
	svc := testProvisioner(t, db)

	sub := "taken"
	require.NoError(t, db.Create(&models.Tenant{
		Name: "Taken Inc", Subdomain: &sub, Status: models.TenantStatusActive,
	}).Error)

	t.Run("子域名被抢占", func(t *testing.T) {
		req := provisionRequestFor("New Corp", "new@corp.com", "taken", 1)
		req.normalize()
		err := svc.translateDuplicate(gorm.ErrDuplicatedKey, req)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindConflict, appErr.Kind)
		assert.Contains(t, appErr.Message, "taken")
	})

	t.Run("自定义域名被抢占", func(t *testing.T) {
		domain := "shop.example.com"
		require.NoError(t, db.Create(&models.Tenant{
			Name: "Domain Inc", CustomDomain: &domain, Status: models.TenantStatusActive,
		}).Error)

		req := provisionRequestFor("Other Corp", "other@corp.com", "", 1)
		req.CustomDomain = domain
		req.normalize()
		err := svc.translateDuplicate(gorm.ErrDuplicatedKey, req)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message, domain)
	})

	t.Run("非唯一约束错误原样返回", func(t *testing.T) {
		boom := errors.New("boom")
		req := provisionRequestFor("X", "x@x.com", "x", 1)
		assert.Equal(t, boom, svc.translateDuplicate(boom, req))
	})
}

func TestRemoveTenantDataIdempotent(t *testing.T) {
	db := setupTestDB(t)
	plan := seedPlan(t, db)
	svc := testProvisioner(t, db)

	result, err := svc.Provision(provisionRequestFor("Acme Corp", "ada@acme.com", "acme", plan.ID))
	require.NoError(t, err)

	require.NoError(t, RemoveTenantData(db, result.TenantID))
	// 再删一次是空操作
	require.NoError(t, RemoveTenantData(db, result.TenantID))

	for _, m := range []interface{}{
		&models.Tenant{}, &models.MarketplaceSettings{}, &models.UserProfile{}, &models.Subscription{},
	} {
		var count int64
		db.Model(m).Count(&count)
		assert.EqualValues(t, 0, count, "%T", m)
	}
}

// seedStorefront 直接造一个可下单的租户环境：租户、客户档案、一件商品
func seedStorefront(t *testing.T, db *gorm.DB, stock int) (*models.Tenant, *models.UserProfile, *models.Product) {
	t.Helper()

	sub := "acme"
	tenant := &models.Tenant{Name: "Acme", Subdomain: &sub, Status: models.TenantStatusActive}
	require.NoError(t, db.Create(tenant).Error)

	profile := &models.UserProfile{
		TenantID: tenant.ID, Email: "buyer@acme.com",
		Role: models.ProfileRoleClient, IsActive: true,
	}
	require.NoError(t, db.Create(profile).Error)

	product := &models.Product{
		TenantID: tenant.ID, Name: "茶杯", SKU: "CUP-1",
		Price: 25, Stock: stock, IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	return tenant, profile, product
}

func testOrderService(db *gorm.DB) *OrderService {
	log := logger.GetLogger()
	return &OrderService{db: db, log: log, activity: &ActivityService{db: db, log: log}}
}

func TestCreateOrderConcurrentStock(t *testing.T) {
	// 库存1件时两个并发订单只能成交一单，库存不会被扣成负数
	db := setupTestDB(t)
	tenant, profile, product := seedStorefront(t, db, 1)
	svc := testOrderService(db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := &CreateOrderRequest{Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}}}
			_, errs[i] = svc.Create(tenant.ID, profile.ID, req)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 0, fresh.Stock)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 1, orderCount)
}

func TestUpdateStatusConcurrentTerminal(t *testing.T) {
	// 并发的取消和送达只有一个生效，订单停在先提交的终态
	db := setupTestDB(t)
	tenant, profile, product := seedStorefront(t, db, 5)
	svc := testOrderService(db)

	order, err := svc.Create(tenant.ID, profile.ID,
		&CreateOrderRequest{Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}}})
	require.NoError(t, err)

	targets := []string{models.OrderStatusCancelled, models.OrderStatusDelivered}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(tenant.ID, order.ID, target, nil)
		}(i, target)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	var fresh models.Order
	require.NoError(t, db.First(&fresh, order.ID).Error)
	assert.True(t, fresh.IsTerminal())
}
