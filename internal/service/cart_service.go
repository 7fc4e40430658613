package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookvault-next/internal/cache"
	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/queue"
	"github.com/bookvault-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLineView 购物车行视图
type CartLineView struct {
	BookID    uint         `json:"book_id"`
	BookName  string       `json:"book_name"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	LineTotal models.Money `json:"line_total"`
}

// CartView 购物车视图（用于响应与缓存）
type CartView struct {
	SessionID string         `json:"session_id"`
	UserID    *uint          `json:"user_id,omitempty"`
	Total     models.Money   `json:"total"`
	ExpiresAt time.Time      `json:"expires_at"`
	Lines     []CartLineView `json:"lines"`
}

// CartService 购物车服务
// 加购即预占库存，会话合计为冗余字段，随行增删同步更新
type CartService struct {
	cfg         config.CartConfig
	cartRepo    repository.CartRepository
	bookRepo    repository.BookRepository
	queueClient *queue.Client
}

// NewCartService 创建购物车服务
func NewCartService(cfg config.CartConfig, cartRepo repository.CartRepository, bookRepo repository.BookRepository, queueClient *queue.Client) *CartService {
	return &CartService{
		cfg:         cfg,
		cartRepo:    cartRepo,
		bookRepo:    bookRepo,
		queueClient: queueClient,
	}
}

// SessionTTL 会话有效期
func (s *CartService) SessionTTL() time.Duration {
	minutes := s.cfg.SessionExpireMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func (s *CartService) cacheTTL() time.Duration {
	seconds := s.cfg.CacheTTLSeconds
	if seconds <= 0 {
		seconds = 350
	}
	return time.Duration(seconds) * time.Second
}

func cartCacheKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// EnsureSession 解析或创建购物车会话
// 优先复用 cookie 中的会话；登录用户同时最多持有一个会话
func (s *CartService) EnsureSession(sessionID string, userID *uint) (*models.ShoppingSession, error) {
	now := time.Now()

	if sessionID != "" {
		session, err := s.cartRepo.GetSessionByID(sessionID)
		if err != nil {
			return nil, err
		}
		if session != nil && !session.Expired(now) {
			if userID != nil && session.UserID == nil {
				owned, err := s.cartRepo.GetSessionByUser(*userID)
				if err != nil {
					return nil, err
				}
				if owned != nil && !owned.Expired(now) {
					// 用户已持有会话，不收编游客会话
					return owned, nil
				}
				if owned != nil {
					if err := s.ExpireSession(owned.ID); err != nil {
						return nil, err
					}
				}
				session.UserID = userID
				session.UpdatedAt = now
				if err := s.cartRepo.UpdateSession(session); err != nil {
					return nil, err
				}
			}
			return session, nil
		}
	}

	if userID != nil {
		session, err := s.cartRepo.GetSessionByUser(*userID)
		if err != nil {
			return nil, err
		}
		if session != nil {
			if !session.Expired(now) {
				return session, nil
			}
			if err := s.ExpireSession(session.ID); err != nil {
				return nil, err
			}
		}
	}

	session := &models.ShoppingSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Total:     models.Money{},
		ExpiresAt: now.Add(s.SessionTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.CreateSession(session); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueCartExpire(queue.CartExpirePayload{SessionID: session.ID}, s.SessionTTL()); err != nil {
		logger.Warnw("cart_expire_enqueue_failed",
			"session_id", session.ID,
			"error", err,
		)
	}
	logger.Infow("cart_session_created",
		"session_id", session.ID,
		"expires_at", session.ExpiresAt,
	)
	return session, nil
}

// AddLine 加购：预占库存并累加合计（同一事务内完成）
func (s *CartService) AddLine(sessionID string, bookID uint, quantity int) (*CartView, error) {
	if sessionID == "" || bookID == 0 || quantity <= 0 {
		return nil, ErrInvalidCartItem
	}

	session, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}

	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)

		book, err := bookRepo.GetByID(bookID)
		if err != nil {
			return err
		}
		if book == nil || !book.IsActive {
			return ErrBookNotAvailable
		}

		affected, err := bookRepo.ReserveStock(bookID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrBookOutOfStock
		}

		unitPrice := book.PriceWithDiscount()
		item, err := cartRepo.GetItem(session.ID, bookID)
		if err != nil {
			return err
		}
		now := time.Now()
		if item == nil {
			item = &models.CartItem{
				SessionID: session.ID,
				BookID:    bookID,
				Quantity:  quantity,
				UnitPrice: unitPrice,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := cartRepo.CreateItem(item); err != nil {
				return err
			}
		} else {
			item.Quantity += quantity
			item.UpdatedAt = now
			if err := cartRepo.UpdateItem(item); err != nil {
				return err
			}
			// 行价以首次加购时的快照为准，合计与行保持同一价格来源
			unitPrice = item.UnitPrice
		}

		delta := unitPrice.MulQuantity(quantity)
		return cartRepo.AddSessionTotal(session.ID, delta)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(session.ID)
	logger.Infow("cart_line_added",
		"session_id", session.ID,
		"book_id", bookID,
		"quantity", quantity,
	)
	return s.GetCart(session.ID)
}

// RemoveLine 移除购物车行：释放对应数量的库存并扣减合计
// quantity 为 0 表示移除整行，不允许超过行内现有数量
func (s *CartService) RemoveLine(sessionID string, bookID uint, quantity int) (*CartView, error) {
	if sessionID == "" || bookID == 0 || quantity < 0 {
		return nil, ErrInvalidCartItem
	}

	session, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}

	removed := 0
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)

		item, err := cartRepo.GetItem(session.ID, bookID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrInvalidCartItem
		}

		removed = quantity
		if removed == 0 {
			removed = item.Quantity
		}
		if removed > item.Quantity {
			return ErrExcessiveRemoval
		}

		if _, err := bookRepo.ReleaseStock(bookID, removed); err != nil {
			return err
		}
		if removed == item.Quantity {
			if err := cartRepo.DeleteItem(session.ID, bookID); err != nil {
				return err
			}
		} else {
			item.Quantity -= removed
			item.UpdatedAt = time.Now()
			if err := cartRepo.UpdateItem(item); err != nil {
				return err
			}
		}

		delta := models.NewMoneyFromDecimal(item.UnitPrice.MulQuantity(removed).Decimal.Neg())
		return cartRepo.AddSessionTotal(session.ID, delta)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(session.ID)
	logger.Infow("cart_line_removed",
		"session_id", session.ID,
		"book_id", bookID,
		"quantity", removed,
	)
	return s.GetCart(session.ID)
}

// GetCart 获取购物车（优先读缓存）
func (s *CartService) GetCart(sessionID string) (*CartView, error) {
	if sessionID == "" {
		return nil, ErrCartSessionNotFound
	}

	var cached CartView
	hit, err := cache.GetJSON(context.Background(), cartCacheKey(sessionID), &cached)
	if err == nil && hit && !time.Now().After(cached.ExpiresAt) {
		return &cached, nil
	}

	session, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	view, err := s.buildView(session)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(context.Background(), cartCacheKey(sessionID), view, s.cacheTTL()); err != nil {
		logger.Warnw("cart_cache_set_failed", "session_id", sessionID, "error", err)
	}
	return view, nil
}

// ExpireSession 过期单个会话：释放所有预占库存并删除会话（可重复调用）
func (s *CartService) ExpireSession(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	session, err := s.cartRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if !session.Expired(time.Now()) {
		return nil
	}

	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)

		items, err := cartRepo.ListItems(session.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := bookRepo.ReleaseStock(item.BookID, item.Quantity); err != nil {
				return err
			}
		}
		return cartRepo.DeleteSession(session.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateCache(session.ID)
	logger.Infow("cart_session_expired", "session_id", session.ID)
	return nil
}

// ExpireCarts 扫描并过期所有到期会话（可重复调用，兜底延迟任务丢失的情况）
func (s *CartService) ExpireCarts(now time.Time, limit int) (int, error) {
	sessions, err := s.cartRepo.ListExpiredSessions(now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, session := range sessions {
		if err := s.ExpireSession(session.ID); err != nil {
			logger.Errorw("cart_session_expire_failed",
				"session_id", session.ID,
				"error", err,
			)
			continue
		}
		expired++
	}
	return expired, nil
}

// DeleteSession 结算成功后清空购物车（不释放库存）
func (s *CartService) DeleteSession(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.cartRepo.DeleteSession(sessionID); err != nil {
		return err
	}
	s.invalidateCache(sessionID)
	return nil
}

func (s *CartService) requireSession(sessionID string) (*models.ShoppingSession, error) {
	session, err := s.cartRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCartSessionNotFound
	}
	if session.Expired(time.Now()) {
		return nil, ErrCartSessionExpired
	}
	return session, nil
}

func (s *CartService) buildView(session *models.ShoppingSession) (*CartView, error) {
	items, err := s.cartRepo.ListItems(session.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]CartLineView, 0, len(items))
	for _, item := range items {
		bookName := ""
		if item.Book != nil {
			bookName = item.Book.Name
		}
		lines = append(lines, CartLineView{
			BookID:    item.BookID,
			BookName:  bookName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}
	return &CartView{
		SessionID: session.ID,
		UserID:    session.UserID,
		Total:     session.Total,
		ExpiresAt: session.ExpiresAt,
		Lines:     lines,
	}, nil
}

func (s *CartService) invalidateCache(sessionID string) {
	if err := cache.Del(context.Background(), cartCacheKey(sessionID)); err != nil {
		logger.Warnw("cart_cache_del_failed", "session_id", sessionID, "error", err)
	}
}
