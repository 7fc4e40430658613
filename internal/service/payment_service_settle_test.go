package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/queue"
	"github.com/bookvault-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPaymentSettleTest(t *testing.T) (*PaymentService, *CartService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_settle_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Author{},
		&models.Category{},
		&models.Book{},
		&models.ShoppingSession{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	cartRepo := repository.NewCartRepository(db)
	bookRepo := repository.NewBookRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cartSvc := NewCartService(defaultCartTestConfig(), cartRepo, bookRepo, queueClient)
	paymentSvc := NewPaymentService(&config.PaymentConfig{
		Provider: constants.PaymentProviderYooKassa,
	}, paymentRepo, orderRepo, cartRepo, cartSvc, queueClient)
	return paymentSvc, cartSvc, db
}

func createSettleTestPayment(t *testing.T, db *gorm.DB, sessionID string, amount int64) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Provider:  constants.PaymentProviderYooKassa,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Currency:  constants.SiteCurrencyDefault,
		Status:    constants.PaymentStatusPending,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return payment
}

func TestSettleSuccessCreatesOrderFromCart(t *testing.T) {
	paymentSvc, cartSvc, db := setupPaymentSettleTest(t)
	book := createCartTestBook(t, db, "settle-ok", 520, 10)

	session, err := cartSvc.EnsureSession("", nil)
	if err != nil {
		t.Fatalf("ensure session failed: %v", err)
	}
	if _, err := cartSvc.AddLine(session.ID, book.ID, 2); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	payment := createSettleTestPayment(t, db, session.ID, 1040)

	order, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusSuccess)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if order == nil || order.Status != constants.OrderStatusSuccess {
		t.Fatalf("order must be success, got %+v", order)
	}
	// 订单金额以支付金额为准
	if !order.TotalSum.Decimal.Equal(payment.Amount.Decimal) {
		t.Fatalf("order total want %s got %s", payment.Amount.String(), order.TotalSum.String())
	}
	if len(order.Items) != 1 {
		t.Fatalf("order items want 1 got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.BookID != book.ID || item.Quantity != 2 || item.BookName == "" {
		t.Fatalf("order item copy mismatch: %+v", item)
	}
	if !item.TotalPrice.Decimal.Equal(decimal.NewFromInt(1040)) {
		t.Fatalf("order item total want 1040 got %s", item.TotalPrice.String())
	}

	fresh, err := paymentSvc.GetPayment(payment.ID)
	if err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if fresh.Status != constants.PaymentStatusSuccess || fresh.SettledAt == nil || fresh.PaidAt == nil {
		t.Fatalf("payment must be success and settled: %+v", fresh)
	}

	// 结算成功后购物车被清理，库存不回补
	var sessionCount int64
	db.Model(&models.ShoppingSession{}).Where("id = ?", session.ID).Count(&sessionCount)
	if sessionCount != 0 {
		t.Fatalf("cart session must be deleted after settle")
	}
	if got := bookStock(t, db, book.ID); got != 8 {
		t.Fatalf("stock must stay reserved after settle, want 8 got %d", got)
	}
}

func TestSettleFailureKeepsCartIntact(t *testing.T) {
	paymentSvc, cartSvc, db := setupPaymentSettleTest(t)
	book := createCartTestBook(t, db, "settle-fail", 300, 10)

	session, err := cartSvc.EnsureSession("", nil)
	if err != nil {
		t.Fatalf("ensure session failed: %v", err)
	}
	if _, err := cartSvc.AddLine(session.ID, book.ID, 1); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	payment := createSettleTestPayment(t, db, session.ID, 300)

	order, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusFailed)
	if err != nil {
		t.Fatalf("settle failed-path returned error: %v", err)
	}
	if order != nil {
		t.Fatalf("failed settle must not create an order, got %+v", order)
	}

	fresh, err := paymentSvc.GetPayment(payment.ID)
	if err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if fresh.Status != constants.PaymentStatusFailed || fresh.SettledAt == nil {
		t.Fatalf("payment must be closed as failed: %+v", fresh)
	}

	// 购物车保留，用户可重新发起支付
	view, err := cartSvc.GetCart(session.ID)
	if err != nil {
		t.Fatalf("cart must survive failed settle: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("cart lines want 1 got %d", len(view.Lines))
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("no order rows expected, got %d", orderCount)
	}
}

func TestSettleIsAtMostOnce(t *testing.T) {
	paymentSvc, cartSvc, db := setupPaymentSettleTest(t)
	book := createCartTestBook(t, db, "settle-once", 100, 10)

	session, err := cartSvc.EnsureSession("", nil)
	if err != nil {
		t.Fatalf("ensure session failed: %v", err)
	}
	if _, err := cartSvc.AddLine(session.ID, book.ID, 1); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	payment := createSettleTestPayment(t, db, session.ID, 100)

	if _, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusSuccess); err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	if _, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusSuccess); !errors.Is(err, ErrPaymentAlreadySettled) {
		t.Fatalf("second settle want ErrPaymentAlreadySettled got %v", err)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Fatalf("orders want 1 got %d", orderCount)
	}
}

func TestSettleFailureCannotOverrideSettledSuccess(t *testing.T) {
	paymentSvc, cartSvc, db := setupPaymentSettleTest(t)
	book := createCartTestBook(t, db, "settle-override", 100, 10)

	session, err := cartSvc.EnsureSession("", nil)
	if err != nil {
		t.Fatalf("ensure session failed: %v", err)
	}
	if _, err := cartSvc.AddLine(session.ID, book.ID, 1); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	payment := createSettleTestPayment(t, db, session.ID, 100)

	if _, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusSuccess); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if _, err := paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusFailed); !errors.Is(err, ErrPaymentAlreadySettled) {
		t.Fatalf("failed settle after success want ErrPaymentAlreadySettled got %v", err)
	}

	var got models.Payment
	if err := db.First(&got, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if got.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status must stay success, got %s", got.Status)
	}
}

func TestMarkSettledRefusesSecondClose(t *testing.T) {
	_, _, db := setupPaymentSettleTest(t)
	paymentRepo := repository.NewPaymentRepository(db)
	payment := createSettleTestPayment(t, db, uuid.NewString(), 100)

	now := time.Now()
	affected, err := paymentRepo.MarkSettled(payment.ID, map[string]interface{}{
		"status":     constants.PaymentStatusSuccess,
		"settled_at": now,
		"updated_at": now,
	})
	if err != nil {
		t.Fatalf("mark settled failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("first close affected want 1 got %d", affected)
	}

	// 后到的结算方必须被 settled_at 条件拦下，不得改写终态
	affected, err = paymentRepo.MarkSettled(payment.ID, map[string]interface{}{
		"status":     constants.PaymentStatusFailed,
		"settled_at": time.Now(),
		"updated_at": time.Now(),
	})
	if err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second close affected want 0 got %d", affected)
	}

	var got models.Payment
	if err := db.First(&got, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if got.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status must stay success, got %s", got.Status)
	}
}

func TestSettleSuccessWithEmptyCartCompensates(t *testing.T) {
	paymentSvc, cartSvc, db := setupPaymentSettleTest(t)

	session, err := cartSvc.EnsureSession("", nil)
	if err != nil {
		t.Fatalf("ensure session failed: %v", err)
	}
	payment := createSettleTestPayment(t, db, session.ID, 500)

	_, err = paymentSvc.Settle(context.Background(), payment.ID, session.ID, constants.SettleStatusSuccess)
	if !errors.Is(err, ErrPaymentSettlementFailed) {
		t.Fatalf("settle want ErrPaymentSettlementFailed got %v", err)
	}

	// 补偿：落失败订单、关闭支付
	var order models.Order
	if err := db.Where("payment_id = ?", payment.ID).First(&order).Error; err != nil {
		t.Fatalf("failed order row must exist: %v", err)
	}
	if order.Status != constants.OrderStatusFailed {
		t.Fatalf("order status want failed got %s", order.Status)
	}
	if !order.TotalSum.Decimal.Equal(payment.Amount.Decimal) {
		t.Fatalf("failed order total want %s got %s", payment.Amount.String(), order.TotalSum.String())
	}

	fresh, err := paymentSvc.GetPayment(payment.ID)
	if err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if fresh.Status != constants.PaymentStatusFailed || fresh.SettledAt == nil {
		t.Fatalf("payment must be closed as failed after compensation: %+v", fresh)
	}
}

func TestSettleUnknownPayment(t *testing.T) {
	paymentSvc, _, _ := setupPaymentSettleTest(t)

	if _, err := paymentSvc.Settle(context.Background(), uuid.NewString(), uuid.NewString(), constants.SettleStatusSuccess); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("settle unknown payment want ErrPaymentNotFound got %v", err)
	}
}
