package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	cartReapBatchSize = 200
	watchResumeMaxAge = time.Minute
	watchResumeLimit  = 500
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.CartService != nil {
		go s.runCartReapLoop(ctx)
	}
	if s.consumer != nil && s.consumer.PaymentService != nil {
		go s.resumePaymentWatches()
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runCartReapLoop 周期性兜底清理过期购物车会话
// 延迟任务丢失时由这里回收库存
func (s *Service) runCartReapLoop(ctx context.Context) {
	interval := time.Duration(s.consumer.Config.Cart.ReapIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	runOnce := func() {
		expired, err := s.consumer.CartService.ExpireCarts(time.Now(), cartReapBatchSize)
		if err != nil {
			logger.Warnw("worker_cart_reap_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_cart_reap_done", "expired", expired)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// resumePaymentWatches 重启后为仍在进行中的支付重新排队轮询任务
func (s *Service) resumePaymentWatches() {
	payments, err := s.consumer.PaymentService.ListNonTerminal(time.Now().Add(-watchResumeMaxAge), watchResumeLimit)
	if err != nil {
		logger.Warnw("worker_payment_watch_resume_list_failed", "error", err)
		return
	}
	for _, payment := range payments {
		if err := s.consumer.QueueClient.EnqueuePaymentWatch(queue.PaymentWatchPayload{
			PaymentID: payment.ID,
			SessionID: payment.SessionID,
		}); err != nil {
			logger.Warnw("worker_payment_watch_resume_enqueue_failed", "payment_id", payment.ID, "error", err)
		}
	}
	if len(payments) > 0 {
		logger.Infow("worker_payment_watch_resumed", "count", len(payments))
	}
}
