package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Settle 结算一笔支付，对同一笔支付只生效一次
//
// status 为 failed 时仅关闭支付记录，购物车原样保留，
// 用户可以重新发起支付；status 为 success 时在单个事务里
// 将支付置为成功并由购物车生成订单，订单主键在事务外预分配，
// 订单项全部落库后订单才置为成功。
func (s *PaymentService) Settle(ctx context.Context, paymentID, sessionID, status string) (*models.Order, error) {
	payment, err := s.GetPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.SettledAt != nil {
		return nil, ErrPaymentAlreadySettled
	}
	log := paymentLogger(
		"payment_id", payment.ID,
		"session_id", sessionID,
		"settle_status", status,
	)

	now := time.Now()
	if status != constants.SettleStatusSuccess {
		updates := map[string]interface{}{
			"settled_at": now,
			"updated_at": now,
		}
		if !isPaymentStatusTerminal(payment.Status) {
			updates["status"] = constants.PaymentStatusFailed
		}
		affected, err := s.paymentRepo.MarkSettled(payment.ID, updates)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if affected == 0 {
			return nil, ErrPaymentAlreadySettled
		}
		log.Infow("payment_settle_closed")
		return nil, nil
	}

	orderID := uuid.NewString()
	var order *models.Order
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentTx := s.paymentRepo.WithTx(tx)
		cartTx := s.cartRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		updates := map[string]interface{}{
			"status":     constants.PaymentStatusSuccess,
			"settled_at": now,
			"updated_at": now,
		}
		if payment.PaidAt == nil {
			updates["paid_at"] = now
		}
		// settled_at 条件更新是同一笔支付的并发结算闸门
		affected, err := paymentTx.MarkSettled(payment.ID, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrPaymentAlreadySettled
		}

		items, err := cartTx.ListItems(sessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: 购物车会话 %s 没有商品", ErrPaymentSettlementFailed, sessionID)
		}

		order = &models.Order{
			ID:        orderID,
			UserID:    payment.UserID,
			PaymentID: payment.ID,
			Status:    constants.OrderStatusCreated,
			TotalSum:  payment.Amount,
			Currency:  payment.Currency,
			OrderDate: now,
		}
		if err := orderTx.Create(order); err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			name := ""
			if item.Book != nil {
				name = item.Book.Name
			}
			orderItems = append(orderItems, models.OrderItem{
				OrderID:    orderID,
				BookID:     item.BookID,
				BookName:   name,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
				TotalPrice: item.LineTotal(),
			})
		}
		if err := orderTx.CreateItems(orderItems); err != nil {
			return err
		}
		if err := orderTx.UpdateStatus(orderID, constants.OrderStatusSuccess); err != nil {
			return err
		}
		order.Status = constants.OrderStatusSuccess
		order.Items = orderItems
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrPaymentAlreadySettled) {
			return nil, ErrPaymentAlreadySettled
		}
		log.Errorw("payment_settle_failed", "order_id", orderID, "error", txErr)
		s.compensateFailedSettlement(ctx, payment, orderID, now)
		return nil, fmt.Errorf("%w: %v", ErrPaymentSettlementFailed, txErr)
	}

	// 购物车删除失败不影响结算结果，只记录日志
	if err := s.cartSvc.DeleteSession(sessionID); err != nil {
		log.Warnw("cart_session_delete_failed", "error", err)
	}

	if err := s.queueClient.EnqueueOrderSummaryEmail(queue.OrderSummaryEmailPayload{
		OrderID: orderID,
	}); err != nil {
		log.Warnw("order_summary_email_enqueue_failed", "order_id", orderID, "error", err)
	}

	log.Infow("payment_settle_success",
		"order_id", orderID,
		"total_sum", order.TotalSum.String(),
	)
	return order, nil
}

// compensateFailedSettlement 订单生成失败后的补偿：
// 落一条失败订单、关闭支付并尽力退款
func (s *PaymentService) compensateFailedSettlement(ctx context.Context, payment *models.Payment, orderID string, now time.Time) {
	log := paymentLogger(
		"payment_id", payment.ID,
		"order_id", orderID,
	)

	failedOrder := &models.Order{
		ID:        orderID,
		UserID:    payment.UserID,
		PaymentID: payment.ID,
		Status:    constants.OrderStatusFailed,
		TotalSum:  payment.Amount,
		Currency:  payment.Currency,
		OrderDate: now,
	}
	if err := s.orderRepo.Create(failedOrder); err != nil {
		log.Errorw("failed_order_record_failed", "error", err)
	}

	// 条件更新保证不会覆盖已由其他结算方关闭的支付
	if _, err := s.paymentRepo.MarkSettled(payment.ID, map[string]interface{}{
		"status":     constants.PaymentStatusFailed,
		"settled_at": now,
		"updated_at": now,
	}); err != nil {
		log.Errorw("payment_close_failed", "error", err)
	}

	if err := s.Refund(ctx, payment, "订单生成失败，自动退款"); err != nil {
		log.Errorw("settlement_refund_failed", "error", err)
	}
}
