//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Payment{},
		&models.CartItem{},
		&models.ShoppingSession{},
		&models.Book{},
		&models.Category{},
		&models.Author{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

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
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func seedPostgresBook(t *testing.T, db *gorm.DB, slug string, stock int) *models.Book {
	t.Helper()

	author := &models.Author{FirstName: "Carl", LastName: "Sagan"}
	if err := db.Create(author).Error; err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	category := &models.Category{Slug: slug + "-cat", Name: "Science"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	book := &models.Book{
		Slug:          slug,
		Name:          "Cosmos",
		Description:   "A personal voyage through the universe",
		AuthorID:      author.ID,
		CategoryID:    category.ID,
		PricePerUnit:  models.NewMoneyFromDecimal(decimal.NewFromInt(780)),
		NumberInStock: stock,
		IsActive:      true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}

func TestPostgresBookSearchAndStock(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewBookRepository(db)
	book := seedPostgresBook(t, db, "pg-cosmos", 5)

	rows, total, err := repo.List(BookListFilter{Page: 1, Search: "voyage", OnlyActive: true, WithAuthor: true})
	if err != nil {
		t.Fatalf("book list search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("book list search want 1 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Author == nil || rows[0].Author.LastName != "Sagan" {
		t.Fatalf("book author preload missing: %+v", rows[0].Author)
	}

	affected, err := repo.ReserveStock(book.ID, 5)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("reserve stock affected want 1 got %d", affected)
	}

	// 库存为 0 后继续预占应不命中任何行
	affected, err = repo.ReserveStock(book.ID, 1)
	if err != nil {
		t.Fatalf("reserve stock on empty failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("reserve stock on empty affected want 0 got %d", affected)
	}

	affected, err = repo.ReleaseStock(book.ID, 2)
	if err != nil {
		t.Fatalf("release stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("release stock affected want 1 got %d", affected)
	}

	fresh, err := repo.GetByID(book.ID)
	if err != nil {
		t.Fatalf("get book failed: %v", err)
	}
	if fresh.NumberInStock != 2 {
		t.Fatalf("stock want 2 got %d", fresh.NumberInStock)
	}
}

func TestPostgresCartSessionLifecycle(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCartRepository(db)
	book := seedPostgresBook(t, db, "pg-cart-book", 10)

	session := &models.ShoppingSession{
		ID:        uuid.NewString(),
		Total:     models.NewMoneyFromDecimal(decimal.Zero),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := repo.CreateSession(session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	item := &models.CartItem{
		SessionID: session.ID,
		BookID:    book.ID,
		Quantity:  2,
		UnitPrice: book.PricePerUnit,
	}
	if err := repo.CreateItem(item); err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if err := repo.AddSessionTotal(session.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(1560))); err != nil {
		t.Fatalf("add session total failed: %v", err)
	}

	fresh, err := repo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !fresh.Total.Decimal.Equal(decimal.NewFromInt(1560)) {
		t.Fatalf("session total want 1560 got %s", fresh.Total.String())
	}

	expired, err := repo.ListExpiredSessions(time.Now(), 10)
	if err != nil {
		t.Fatalf("list expired sessions failed: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != session.ID {
		t.Fatalf("expired sessions want [%s] got %+v", session.ID, expired)
	}

	if err := repo.DeleteSession(session.ID); err != nil {
		t.Fatalf("delete session failed: %v", err)
	}
	if items, err := repo.ListItems(session.ID); err != nil || len(items) != 0 {
		t.Fatalf("items after delete want 0 got %d err=%v", len(items), err)
	}
}

func TestPostgresPaymentNonTerminalSweep(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPaymentRepository(db)
	old := time.Now().Add(-10 * time.Minute)

	pending := &models.Payment{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		Provider:  constants.PaymentProviderYooKassa,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Currency:  constants.SiteCurrencyDefault,
		Status:    constants.PaymentStatusPending,
	}
	if err := repo.Create(pending); err != nil {
		t.Fatalf("create pending payment failed: %v", err)
	}
	settled := &models.Payment{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		Provider:  constants.PaymentProviderYooKassa,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		Currency:  constants.SiteCurrencyDefault,
		Status:    constants.PaymentStatusSuccess,
	}
	if err := repo.Create(settled); err != nil {
		t.Fatalf("create settled payment failed: %v", err)
	}
	if err := db.Model(&models.Payment{}).Where("id IN ?", []string{pending.ID, settled.ID}).
		Update("created_at", old).Error; err != nil {
		t.Fatalf("backdate payments failed: %v", err)
	}

	rows, err := repo.ListNonTerminal(time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("list non terminal failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != pending.ID {
		t.Fatalf("non terminal payments want [%s] got %+v", pending.ID, rows)
	}
}
