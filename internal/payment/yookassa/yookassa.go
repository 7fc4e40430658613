package yookassa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("yookassa config invalid")
	ErrRequestFailed   = errors.New("yookassa request failed")
	ErrResponseInvalid = errors.New("yookassa response invalid")
	ErrRefundFailed    = errors.New("yookassa refund failed")
)

// YooKassa 支付状态常量
const (
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusSucceeded         = "succeeded"
	StatusCanceled          = "canceled"
)

// Config YooKassa 配置
type Config struct {
	AccountID string `json:"account_id"` // 商户 ID
	SecretKey string `json:"secret_key"` // API 密钥
	APIBase   string `json:"api_base"`   // API 地址，默认 https://api.yookassa.ru/v3
	TimeoutMS int    `json:"timeout_ms"` // 请求超时（毫秒）
	ReturnURL string `json:"return_url"` // 支付完成后的跳转地址
}

// CreateInput 创建支付输入
type CreateInput struct {
	IdempotenceKey string
	Amount         string
	Currency       string
	Description    string
	ReturnURL      string
	Metadata       map[string]string
}

// CreateResult 创建支付结果
type CreateResult struct {
	PaymentID       string                 // YooKassa 支付 ID
	Status          string                 // 初始状态
	ConfirmationURL string                 // 收银台跳转地址
	Raw             map[string]interface{} // 原始响应
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.Normalize()
	return &cfg, nil
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccountID) == "" {
		return fmt.Errorf("%w: account_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	return nil
}

// Normalize 规整配置默认值
func (c *Config) Normalize() {
	c.AccountID = strings.TrimSpace(c.AccountID)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	c.ReturnURL = strings.TrimSpace(c.ReturnURL)
	if c.APIBase == "" {
		c.APIBase = "https://api.yookassa.ru/v3"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 15000
	}
}

// CreatePayment 创建支付
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.Amount == "" || input.IdempotenceKey == "" {
		return nil, fmt.Errorf("%w: amount and idempotence key are required", ErrConfigInvalid)
	}
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = "RUB"
	}
	returnURL := strings.TrimSpace(input.ReturnURL)
	if returnURL == "" {
		returnURL = cfg.ReturnURL
	}

	params := map[string]interface{}{
		"amount": map[string]string{
			"value":    input.Amount,
			"currency": currency,
		},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": returnURL,
		},
		"capture":     true,
		"description": input.Description,
	}
	if len(input.Metadata) > 0 {
		params["metadata"] = input.Metadata
	}

	respBytes, err := request(ctx, cfg, http.MethodPost, cfg.APIBase+"/payments", input.IdempotenceKey, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		Confirmation struct {
			ConfirmationURL string `json:"confirmation_url"`
		} `json:"confirmation"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrResponseInvalid)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	return &CreateResult{
		PaymentID:       resp.ID,
		Status:          resp.Status,
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
		Raw:             raw,
	}, nil
}

// QueryStatus 查询支付状态
func QueryStatus(ctx context.Context, cfg *Config, paymentID string) (string, error) {
	if err := ValidateConfig(cfg); err != nil {
		return "", err
	}
	if strings.TrimSpace(paymentID) == "" {
		return "", fmt.Errorf("%w: payment id is required", ErrConfigInvalid)
	}

	respBytes, err := request(ctx, cfg, http.MethodGet, cfg.APIBase+"/payments/"+paymentID, "", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.Status == "" {
		return "", fmt.Errorf("%w: missing status", ErrResponseInvalid)
	}
	return resp.Status, nil
}

// CreateRefund 创建退款
func CreateRefund(ctx context.Context, cfg *Config, paymentID, amount, currency, idempotenceKey, description string) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(paymentID) == "" || amount == "" {
		return fmt.Errorf("%w: payment id and amount are required", ErrConfigInvalid)
	}
	if strings.TrimSpace(currency) == "" {
		currency = "RUB"
	}

	params := map[string]interface{}{
		"payment_id": paymentID,
		"amount": map[string]string{
			"value":    amount,
			"currency": currency,
		},
	}
	if description != "" {
		params["description"] = description
	}

	respBytes, err := request(ctx, cfg, http.MethodPost, cfg.APIBase+"/refunds", idempotenceKey, params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("%w: missing refund id", ErrResponseInvalid)
	}
	return nil
}

func request(ctx context.Context, cfg *Config, method, endpoint, idempotenceKey string, params map[string]interface{}) ([]byte, error) {
	var reader io.Reader
	if params != nil {
		body, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.AccountID, cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}
	return respBytes, nil
}

// ToPaymentStatus 将 YooKassa 状态转换为内部支付状态
func ToPaymentStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusSucceeded:
		return "success"
	case StatusCanceled:
		return "failed"
	case StatusPending, StatusWaitingForCapture:
		return "pending"
	default:
		return "pending"
	}
}

// IsTerminal 判断 YooKassa 状态是否为终态
func IsTerminal(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusSucceeded, StatusCanceled:
		return true
	}
	return false
}
