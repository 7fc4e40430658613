package queue

import (
	"encoding/json"

	"github.com/bookvault-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderSummaryEmail 订单摘要邮件通知任务
	TaskOrderSummaryEmail = constants.TaskOrderSummaryEmail
	// TaskCartExpire 购物车会话过期任务
	TaskCartExpire = constants.TaskCartExpire
	// TaskPaymentWatch 支付轮询恢复任务
	TaskPaymentWatch = constants.TaskPaymentWatch
)

// OrderSummaryEmailPayload 订单摘要邮件任务载荷
type OrderSummaryEmailPayload struct {
	OrderID string `json:"order_id"`
}

// CartExpirePayload 购物车过期任务载荷
type CartExpirePayload struct {
	SessionID string `json:"session_id"`
}

// PaymentWatchPayload 支付轮询恢复任务载荷
type PaymentWatchPayload struct {
	PaymentID string `json:"payment_id"`
	SessionID string `json:"session_id"`
}

// NewOrderSummaryEmailTask 创建订单摘要邮件任务
func NewOrderSummaryEmailTask(payload OrderSummaryEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderSummaryEmail, body), nil
}

// NewCartExpireTask 创建购物车过期任务
func NewCartExpireTask(payload CartExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartExpire, body), nil
}

// NewPaymentWatchTask 创建支付轮询恢复任务
func NewPaymentWatchTask(payload PaymentWatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentWatch, body), nil
}
