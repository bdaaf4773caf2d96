package services

import (
	"fmt"

	"msp/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SubscriptionScheduler 订阅到期巡检调度器：每天凌晨把过期订阅标记为
// expired并暂停对应租户
type SubscriptionScheduler struct {
	cron     *cron.Cron
	service  *SubscriptionService
	schedule string
	running  bool
}

// NewSubscriptionScheduler 创建订阅到期调度器
func NewSubscriptionScheduler(service *SubscriptionService) *SubscriptionScheduler {
	return &SubscriptionScheduler{
		cron:     cron.New(),
		service:  service,
		schedule: "0 2 * * *",
	}
}

// Start 启动调度器
func (s *SubscriptionScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	logger.GetLogger().Info("启动订阅到期巡检调度器")

	_, err := s.cron.AddFunc(s.schedule, func() {
		swept, err := s.service.SweepExpired()
		if err != nil {
			logger.GetLogger().Errorf("订阅到期巡检失败: %v", err)
			return
		}
		if swept > 0 {
			logger.GetLogger().Infof("订阅到期巡检完成，标记过期 %d 条", swept)
		}
	})
	if err != nil {
		return fmt.Errorf("注册巡检任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true
	return nil
}

// Stop 停止调度器
func (s *SubscriptionScheduler) Stop() {
	if !s.running {
		return
	}
	logger.GetLogger().Info("停止订阅到期巡检调度器")
	s.cron.Stop()
	s.running = false
}
