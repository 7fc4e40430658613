package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	return NewOrderService(orderRepo, userRepo), db
}

func createOrderTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FirstName:    "Anna",
		LastName:     "Karenina",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return &user
}

func createOrderTestOrder(t *testing.T, db *gorm.DB, userID *uint) *models.Order {
	t.Helper()

	order := models.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		PaymentID: uuid.NewString(),
		Status:    constants.OrderStatusSuccess,
		TotalSum:  models.NewMoneyFromDecimal(decimal.NewFromInt(1040)),
		Currency:  constants.SiteCurrencyDefault,
		OrderDate: time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	items := []models.OrderItem{
		{
			OrderID:    order.ID,
			BookID:     1,
			BookName:   "Crime and Punishment",
			UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(520)),
			Quantity:   2,
			TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1040)),
		},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("create order items failed: %v", err)
	}
	return &order
}

func TestOrderGetByIDOwnerAccess(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	owner := createOrderTestUser(t, db, "owner@example.com")
	stranger := createOrderTestUser(t, db, "stranger@example.com")
	order := createOrderTestOrder(t, db, &owner.ID)

	got, err := svc.GetByID(order.ID, &owner.ID, false)
	if err != nil {
		t.Fatalf("owner get order failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, got.ID)
	}
	if len(got.Items) != 1 || got.Items[0].BookName != "Crime and Punishment" {
		t.Fatalf("expected preloaded order items, got %+v", got.Items)
	}

	if _, err := svc.GetByID(order.ID, &stranger.ID, false); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected ErrOrderAccessDenied for stranger, got %v", err)
	}
	if _, err := svc.GetByID(order.ID, nil, false); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected ErrOrderAccessDenied for anonymous requester, got %v", err)
	}
}

func TestOrderGetByIDAdminBypass(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	owner := createOrderTestUser(t, db, "owner@example.com")
	order := createOrderTestOrder(t, db, &owner.ID)

	got, err := svc.GetByID(order.ID, nil, true)
	if err != nil {
		t.Fatalf("admin get order failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, got.ID)
	}
}

func TestOrderGetByIDNotFound(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	if _, err := svc.GetByID(uuid.NewString(), nil, true); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderListByUserReturnsOwnOrdersOnly(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	owner := createOrderTestUser(t, db, "owner@example.com")
	other := createOrderTestUser(t, db, "other@example.com")
	createOrderTestOrder(t, db, &owner.ID)
	createOrderTestOrder(t, db, &other.ID)

	orders, err := svc.ListByUser(owner.ID)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order for owner, got %d", len(orders))
	}
	if orders[0].UserID == nil || *orders[0].UserID != owner.ID {
		t.Fatalf("expected order owned by %d, got %+v", owner.ID, orders[0].UserID)
	}
}

func TestBuildOrderSummaryEmailInput(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	owner := createOrderTestUser(t, db, "reader@example.com")
	order := createOrderTestOrder(t, db, &owner.ID)

	input, err := svc.BuildOrderSummaryEmailInput(order.ID)
	if err != nil {
		t.Fatalf("build email input failed: %v", err)
	}
	if input.OrderID != order.ID {
		t.Fatalf("expected order id %s, got %s", order.ID, input.OrderID)
	}
	if input.Recipient != "reader@example.com" {
		t.Fatalf("expected recipient reader@example.com, got %s", input.Recipient)
	}
	if input.OrderDate != "2026-03-14 15:09" {
		t.Fatalf("unexpected order date %q", input.OrderDate)
	}
	if !input.TotalSum.Decimal.Equal(decimal.NewFromInt(1040)) {
		t.Fatalf("expected total 1040, got %s", input.TotalSum.String())
	}
	if input.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("unexpected currency %s", input.Currency)
	}
	if len(input.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(input.Lines))
	}
	line := input.Lines[0]
	if line.BookName != "Crime and Punishment" || line.Quantity != 2 {
		t.Fatalf("unexpected line %+v", line)
	}
	if !line.LineTotal.Decimal.Equal(decimal.NewFromInt(1040)) {
		t.Fatalf("expected line total 1040, got %s", line.LineTotal.String())
	}
}

func TestBuildOrderSummaryEmailInputGuestOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := createOrderTestOrder(t, db, nil)

	if _, err := svc.BuildOrderSummaryEmailInput(order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for guest order, got %v", err)
	}
}
