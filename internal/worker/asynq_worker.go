package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/provider"
	"github.com/bookvault-next/internal/queue"
	"github.com/bookvault-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderSummaryEmail, c.handleOrderSummaryEmail)
	mux.HandleFunc(queue.TaskCartExpire, c.handleCartExpire)
	mux.HandleFunc(queue.TaskPaymentWatch, c.handlePaymentWatch)
}

func (c *Consumer) handleOrderSummaryEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_summary_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderSummaryEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_summary_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" {
		logger.Debugw("worker_order_summary_email_skip_invalid_payload")
		return nil
	}
	input, err := c.OrderService.BuildOrderSummaryEmailInput(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_summary_email_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrNotFound):
			// 游客订单没有收件人，邮件静默跳过
			logger.Debugw("worker_order_summary_email_skip_no_recipient", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_summary_email_build_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if err := c.EmailService.SendOrderSummaryEmail(input.Recipient, *input); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_order_summary_email_skip_disabled", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_summary_email_send_failed",
			"order_id", payload.OrderID,
			"recipient", input.Recipient,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleCartExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == "" {
		logger.Debugw("worker_cart_expire_skip_invalid_payload")
		return nil
	}
	if err := c.CartService.ExpireSession(payload.SessionID); err != nil {
		logger.Warnw("worker_cart_expire_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePaymentWatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_watch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentWatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_watch_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == "" {
		logger.Debugw("worker_payment_watch_skip_invalid_payload")
		return nil
	}
	if err := c.PaymentService.WatchPayment(ctx, payload.PaymentID, payload.SessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			logger.Debugw("worker_payment_watch_skip_payment_not_found", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, context.Canceled):
			return err
		default:
			logger.Warnw("worker_payment_watch_failed", "payment_id", payload.PaymentID, "error", err)
			return err
		}
	}
	return nil
}
