package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/payment/wechatpay"
	"github.com/bookvault-next/internal/payment/yookassa"
	"github.com/bookvault-next/internal/queue"
	"github.com/bookvault-next/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService 支付服务
// 创建支付单、轮询提供方状态并触发结算
type PaymentService struct {
	cfg         *config.PaymentConfig
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	cartSvc     *CartService
	queueClient *queue.Client

	mu           sync.Mutex
	wechatClient *wechatpay.Client
}

// NewPaymentService 创建支付服务
func NewPaymentService(cfg *config.PaymentConfig, paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, cartRepo repository.CartRepository, cartSvc *CartService, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		cartSvc:     cartSvc,
		queueClient: queueClient,
	}
}

// CreatePaymentResult 创建支付结果
type CreatePaymentResult struct {
	Payment         *models.Payment
	ConfirmationURL string
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// PollInterval 提供方状态轮询间隔
func (s *PaymentService) PollInterval() time.Duration {
	seconds := s.cfg.PollIntervalSeconds
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}

// WatchTimeout 单笔支付的最长轮询时长
func (s *PaymentService) WatchTimeout() time.Duration {
	minutes := s.cfg.WatchTimeoutMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// CreatePayment 为购物车会话创建支付单并返回收银台跳转地址
func (s *PaymentService) CreatePayment(ctx context.Context, sessionID, clientIP string) (*CreatePaymentResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrPaymentInvalid
	}
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
	items, err := s.cartRepo.ListItems(session.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	description := buildCartDescription(items)
	provider := strings.ToLower(strings.TrimSpace(s.cfg.Provider))
	log := paymentLogger(
		"session_id", session.ID,
		"provider", provider,
		"amount", session.Total.String(),
	)

	var payment *models.Payment
	switch provider {
	case constants.PaymentProviderYooKassa:
		payment, err = s.createYooKassaPayment(ctx, session, description)
	case constants.PaymentProviderWechat:
		payment, err = s.createWechatPayment(ctx, session, description, clientIP)
	default:
		return nil, ErrPaymentProviderNotSupported
	}
	if err != nil {
		log.Errorw("payment_create_failed", "error", err)
		return nil, err
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		log.Errorw("payment_record_create_failed", "payment_id", payment.ID, "error", err)
		return nil, ErrPaymentCreateFailed
	}

	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueuePaymentWatch(queue.PaymentWatchPayload{
			PaymentID: payment.ID,
			SessionID: session.ID,
		}); err != nil {
			log.Warnw("payment_watch_enqueue_failed", "payment_id", payment.ID, "error", err)
		}
	} else {
		// 队列未启用时退化为进程内轮询
		go func(paymentID, sessionID string) {
			if err := s.WatchPayment(context.Background(), paymentID, sessionID); err != nil {
				logger.Warnw("payment_watch_inline_failed", "payment_id", paymentID, "error", err)
			}
		}(payment.ID, session.ID)
	}

	log.Infow("payment_create_success",
		"payment_id", payment.ID,
		"status", payment.Status,
	)
	return &CreatePaymentResult{
		Payment:         payment,
		ConfirmationURL: payment.ConfirmationURL,
	}, nil
}

// GetPayment 获取支付记录
func (s *PaymentService) GetPayment(paymentID string) (*models.Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, ErrPaymentInvalid
	}
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// GetStatus 查询支付状态：非终态时向提供方查询并持久化前移的状态
func (s *PaymentService) GetStatus(ctx context.Context, paymentID string) (string, error) {
	payment, err := s.GetPayment(paymentID)
	if err != nil {
		return "", err
	}
	if isPaymentStatusTerminal(payment.Status) {
		return payment.Status, nil
	}

	providerStatus, err := s.queryProviderStatus(ctx, payment)
	if err != nil {
		return "", err
	}
	if providerStatus == payment.Status || !isPaymentTransitionAllowed(payment.Status, providerStatus) {
		return payment.Status, nil
	}

	updates := map[string]interface{}{
		"status":     providerStatus,
		"updated_at": time.Now(),
	}
	if providerStatus == constants.PaymentStatusSuccess {
		updates["paid_at"] = time.Now()
	}
	if err := s.paymentRepo.Updates(payment.ID, updates); err != nil {
		return "", ErrPaymentUpdateFailed
	}
	logger.Infow("payment_status_advanced",
		"payment_id", payment.ID,
		"from", payment.Status,
		"to", providerStatus,
	)
	return providerStatus, nil
}

// Refund 尽力而为的退款，失败只记录日志
func (s *PaymentService) Refund(ctx context.Context, payment *models.Payment, reason string) error {
	if payment == nil {
		return ErrPaymentInvalid
	}
	log := paymentLogger(
		"payment_id", payment.ID,
		"provider", payment.Provider,
		"amount", payment.Amount.String(),
	)

	var err error
	switch strings.ToLower(strings.TrimSpace(payment.Provider)) {
	case constants.PaymentProviderYooKassa:
		cfg := s.yooKassaConfig()
		err = yookassa.CreateRefund(ctx, cfg, payment.ID, payment.Amount.String(), payment.Currency, uuid.NewString(), reason)
	case constants.PaymentProviderWechat:
		var client *wechatpay.Client
		client, err = s.ensureWechatClient(ctx)
		if err == nil {
			err = client.CreateRefund(ctx, payment.ID, uuid.NewString(), payment.Amount, reason)
		}
	default:
		err = ErrPaymentProviderNotSupported
	}
	if err != nil {
		log.Errorw("payment_refund_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrPaymentRefundFailed, err)
	}
	log.Infow("payment_refund_success")
	return nil
}

// WatchPayment 每隔固定间隔轮询一笔支付，直到终态后触发结算
func (s *PaymentService) WatchPayment(ctx context.Context, paymentID, sessionID string) error {
	log := paymentLogger(
		"payment_id", paymentID,
		"session_id", sessionID,
	)

	deadline := time.Now().Add(s.WatchTimeout())
	ticker := time.NewTicker(s.PollInterval())
	defer ticker.Stop()

	for {
		status, err := s.GetStatus(ctx, paymentID)
		if err != nil {
			if errors.Is(err, ErrPaymentNotFound) {
				return err
			}
			log.Warnw("payment_watch_poll_failed", "error", err)
		} else if isPaymentStatusTerminal(status) {
			settleStatus := constants.SettleStatusFailed
			if status == constants.PaymentStatusSuccess {
				settleStatus = constants.SettleStatusSuccess
			}
			_, err := s.Settle(ctx, paymentID, sessionID, settleStatus)
			if err != nil && !errors.Is(err, ErrPaymentAlreadySettled) {
				log.Errorw("payment_watch_settle_failed", "status", status, "error", err)
				return err
			}
			return nil
		}

		if time.Now().After(deadline) {
			log.Warnw("payment_watch_timeout")
			if err := s.paymentRepo.Updates(paymentID, map[string]interface{}{
				"status":     constants.PaymentStatusExpired,
				"updated_at": time.Now(),
			}); err != nil {
				log.Errorw("payment_expire_update_failed", "error", err)
			}
			_, err := s.Settle(ctx, paymentID, sessionID, constants.SettleStatusFailed)
			if err != nil && !errors.Is(err, ErrPaymentAlreadySettled) {
				return err
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListNonTerminal 列出进行中的支付（重启后恢复轮询）
func (s *PaymentService) ListNonTerminal(olderThan time.Time, limit int) ([]models.Payment, error) {
	return s.paymentRepo.ListNonTerminal(olderThan, limit)
}

func (s *PaymentService) createYooKassaPayment(ctx context.Context, session *models.ShoppingSession, description string) (*models.Payment, error) {
	cfg := s.yooKassaConfig()
	result, err := yookassa.CreatePayment(ctx, cfg, yookassa.CreateInput{
		IdempotenceKey: uuid.NewString(),
		Amount:         session.Total.String(),
		Currency:       constants.SiteCurrencyDefault,
		Description:    description,
		ReturnURL:      s.cfg.ReturnURL,
		Metadata:       map[string]string{"session_id": session.ID},
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	now := time.Now()
	return &models.Payment{
		ID:              result.PaymentID,
		SessionID:       session.ID,
		UserID:          session.UserID,
		Provider:        constants.PaymentProviderYooKassa,
		Amount:          session.Total,
		Currency:        constants.SiteCurrencyDefault,
		Status:          yookassa.ToPaymentStatus(result.Status),
		ConfirmationURL: result.ConfirmationURL,
		Description:     description,
		ProviderPayload: models.JSON(result.Raw),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *PaymentService) createWechatPayment(ctx context.Context, session *models.ShoppingSession, description, clientIP string) (*models.Payment, error) {
	client, err := s.ensureWechatClient(ctx)
	if err != nil {
		return nil, err
	}
	outTradeNo := wechatpay.NewOutTradeNo(session.ID)
	result, err := client.CreatePayment(ctx, wechatpay.CreateInput{
		OutTradeNo:  outTradeNo,
		Amount:      session.Total,
		Description: description,
		ClientIP:    clientIP,
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	now := time.Now()
	return &models.Payment{
		ID:              result.OutTradeNo,
		SessionID:       session.ID,
		UserID:          session.UserID,
		Provider:        constants.PaymentProviderWechat,
		Amount:          session.Total,
		Currency:        "CNY",
		Status:          result.Status,
		ConfirmationURL: result.ConfirmationURL,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *PaymentService) queryProviderStatus(ctx context.Context, payment *models.Payment) (string, error) {
	switch strings.ToLower(strings.TrimSpace(payment.Provider)) {
	case constants.PaymentProviderYooKassa:
		status, err := yookassa.QueryStatus(ctx, s.yooKassaConfig(), payment.ID)
		if err != nil {
			return "", mapGatewayError(err)
		}
		return yookassa.ToPaymentStatus(status), nil
	case constants.PaymentProviderWechat:
		client, err := s.ensureWechatClient(ctx)
		if err != nil {
			return "", err
		}
		status, err := client.QueryStatus(ctx, payment.ID)
		if err != nil {
			return "", mapGatewayError(err)
		}
		return status, nil
	default:
		return "", ErrPaymentProviderNotSupported
	}
}

func (s *PaymentService) yooKassaConfig() *yookassa.Config {
	cfg := &yookassa.Config{
		AccountID: s.cfg.YooKassa.AccountID,
		SecretKey: s.cfg.YooKassa.SecretKey,
		APIBase:   s.cfg.YooKassa.APIBase,
		TimeoutMS: s.cfg.YooKassa.TimeoutMS,
		ReturnURL: s.cfg.ReturnURL,
	}
	cfg.Normalize()
	return cfg
}

func (s *PaymentService) ensureWechatClient(ctx context.Context) (*wechatpay.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wechatClient != nil {
		return s.wechatClient, nil
	}
	client, err := wechatpay.NewClient(ctx, wechatpay.Config{
		AppID:               s.cfg.Wechat.AppID,
		MchID:               s.cfg.Wechat.MchID,
		MchCertSerialNumber: s.cfg.Wechat.MchCertSerialNumber,
		MchAPIv3Key:         s.cfg.Wechat.MchAPIv3Key,
		PrivateKeyPath:      s.cfg.Wechat.PrivateKeyPath,
		NotifyURL:           s.cfg.Wechat.NotifyURL,
		Mode:                s.cfg.Wechat.Mode,
		TimeoutMS:           s.cfg.Wechat.TimeoutMS,
	})
	if err != nil {
		return nil, err
	}
	s.wechatClient = client
	return client, nil
}

func mapGatewayError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, yookassa.ErrConfigInvalid), errors.Is(err, wechatpay.ErrConfigInvalid):
		return fmt.Errorf("%w: %v", ErrPaymentInvalid, err)
	case errors.Is(err, yookassa.ErrResponseInvalid), errors.Is(err, wechatpay.ErrResponseInvalid):
		return ErrPaymentGatewayResponseInvalid
	case errors.Is(err, yookassa.ErrRequestFailed), errors.Is(err, wechatpay.ErrRequestFailed):
		return ErrPaymentGatewayRequestFailed
	default:
		return ErrPaymentGatewayRequestFailed
	}
}

// buildCartDescription 生成支付描述（列出购物车中的书名）
func buildCartDescription(items []models.CartItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Book != nil && strings.TrimSpace(item.Book.Name) != "" {
			names = append(names, strings.TrimSpace(item.Book.Name))
		}
	}
	if len(names) == 0 {
		return "You're ordering from BookVault"
	}
	return "You're ordering: " + strings.Join(names, ", ")
}

// isPaymentStatusTerminal 判断支付状态是否为终态
func isPaymentStatusTerminal(status string) bool {
	switch status {
	case constants.PaymentStatusSuccess, constants.PaymentStatusFailed, constants.PaymentStatusExpired:
		return true
	default:
		return false
	}
}

// isPaymentTransitionAllowed 支付状态只能单向前移
func isPaymentTransitionAllowed(current, target string) bool {
	if current == target {
		return false
	}
	switch current {
	case constants.PaymentStatusInitiated:
		return target == constants.PaymentStatusPending ||
			target == constants.PaymentStatusSuccess ||
			target == constants.PaymentStatusFailed ||
			target == constants.PaymentStatusExpired
	case constants.PaymentStatusPending:
		return target == constants.PaymentStatusSuccess ||
			target == constants.PaymentStatusFailed ||
			target == constants.PaymentStatusExpired
	default:
		return false
	}
}
