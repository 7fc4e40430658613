package wechatpay

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/h5"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/services/refunddomestic"

	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
)

// 微信支付 APIv3 适配器。商户侧生成 out_trade_no 作为支付单号。
var (
	ErrConfigInvalid   = errors.New("微信支付配置无效")
	ErrRequestFailed   = errors.New("微信支付请求失败")
	ErrResponseInvalid = errors.New("微信支付响应无效")
	ErrRefundFailed    = errors.New("微信支付退款失败")
)

const (
	TradeStateSuccess    = "SUCCESS"
	TradeStateRefund     = "REFUND"
	TradeStateNotPay     = "NOTPAY"
	TradeStateClosed     = "CLOSED"
	TradeStateUserPaying = "USERPAYING"
	TradeStatePayError   = "PAYERROR"
)

// Mode 决定下单渠道:h5 返回跳转链接,native 返回二维码链接。
const (
	ModeH5     = "h5"
	ModeNative = "native"
)

type Config struct {
	AppID               string
	MchID               string
	MchCertSerialNumber string
	MchAPIv3Key         string
	PrivateKeyPath      string
	NotifyURL           string
	Mode                string
	TimeoutMS           int
}

func (c *Config) Normalize() {
	c.AppID = strings.TrimSpace(c.AppID)
	c.MchID = strings.TrimSpace(c.MchID)
	c.MchCertSerialNumber = strings.TrimSpace(c.MchCertSerialNumber)
	c.MchAPIv3Key = strings.TrimSpace(c.MchAPIv3Key)
	c.PrivateKeyPath = strings.TrimSpace(c.PrivateKeyPath)
	c.NotifyURL = strings.TrimSpace(c.NotifyURL)
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeH5
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 15000
	}
}

func ValidateConfig(cfg Config) error {
	cfg.Normalize()
	if cfg.AppID == "" || cfg.MchID == "" || cfg.MchCertSerialNumber == "" || cfg.MchAPIv3Key == "" {
		return fmt.Errorf("%w: 商户参数缺失", ErrConfigInvalid)
	}
	if cfg.PrivateKeyPath == "" {
		return fmt.Errorf("%w: 缺少商户私钥路径", ErrConfigInvalid)
	}
	if cfg.Mode != ModeH5 && cfg.Mode != ModeNative {
		return fmt.Errorf("%w: 不支持的下单渠道 %s", ErrConfigInvalid, cfg.Mode)
	}
	return nil
}

type Client struct {
	cfg  Config
	core *core.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.Normalize()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	key, err := loadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	opts := []core.ClientOption{
		option.WithMerchantCredential(cfg.MchID, cfg.MchCertSerialNumber, key),
		option.WithoutValidator(),
	}
	c, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return &Client{cfg: cfg, core: c}, nil
}

type CreateInput struct {
	OutTradeNo  string
	Amount      models.Money
	Description string
	ClientIP    string
}

type CreateResult struct {
	OutTradeNo      string
	Status          string
	ConfirmationURL string
}

// CreatePayment 按配置渠道下单,返回给用户的支付跳转/二维码链接。
func (c *Client) CreatePayment(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if strings.TrimSpace(in.OutTradeNo) == "" {
		return nil, fmt.Errorf("%w: 缺少商户订单号", ErrRequestFailed)
	}
	fen, err := amountToFen(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	desc := in.Description
	if desc == "" {
		desc = "订单支付"
	}

	switch c.cfg.Mode {
	case ModeNative:
		svc := native.NativeApiService{Client: c.core}
		resp, _, err := svc.Prepay(ctx, native.PrepayRequest{
			Appid:       core.String(c.cfg.AppID),
			Mchid:       core.String(c.cfg.MchID),
			Description: core.String(desc),
			OutTradeNo:  core.String(in.OutTradeNo),
			NotifyUrl:   core.String(c.cfg.NotifyURL),
			Amount:      &native.Amount{Total: core.Int64(fen)},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		if resp == nil || resp.CodeUrl == nil || *resp.CodeUrl == "" {
			return nil, fmt.Errorf("%w: 缺少 code_url", ErrResponseInvalid)
		}
		return &CreateResult{
			OutTradeNo:      in.OutTradeNo,
			Status:          constants.PaymentStatusPending,
			ConfirmationURL: *resp.CodeUrl,
		}, nil
	default:
		svc := h5.H5ApiService{Client: c.core}
		resp, _, err := svc.Prepay(ctx, h5.PrepayRequest{
			Appid:       core.String(c.cfg.AppID),
			Mchid:       core.String(c.cfg.MchID),
			Description: core.String(desc),
			OutTradeNo:  core.String(in.OutTradeNo),
			NotifyUrl:   core.String(c.cfg.NotifyURL),
			Amount:      &h5.Amount{Total: core.Int64(fen)},
			SceneInfo: &h5.SceneInfo{
				PayerClientIp: core.String(defaultClientIP(in.ClientIP)),
				H5Info:        &h5.H5Info{Type: core.String("Wap")},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		if resp == nil || resp.H5Url == nil || *resp.H5Url == "" {
			return nil, fmt.Errorf("%w: 缺少 h5_url", ErrResponseInvalid)
		}
		return &CreateResult{
			OutTradeNo:      in.OutTradeNo,
			Status:          constants.PaymentStatusPending,
			ConfirmationURL: *resp.H5Url,
		}, nil
	}
}

// QueryStatus 按商户订单号查询交易状态。
func (c *Client) QueryStatus(ctx context.Context, outTradeNo string) (string, error) {
	svc := h5.H5ApiService{Client: c.core}
	resp, _, err := svc.QueryOrderByOutTradeNo(ctx, h5.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(outTradeNo),
		Mchid:      core.String(c.cfg.MchID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp == nil || resp.TradeState == nil {
		return "", fmt.Errorf("%w: 缺少 trade_state", ErrResponseInvalid)
	}
	status, ok := ToPaymentStatus(*resp.TradeState)
	if !ok {
		return "", fmt.Errorf("%w: 未知交易状态 %s", ErrResponseInvalid, *resp.TradeState)
	}
	return status, nil
}

// CreateRefund 全额退款。out_refund_no 由调用方生成,保证幂等。
func (c *Client) CreateRefund(ctx context.Context, outTradeNo, outRefundNo string, amount models.Money, reason string) error {
	fen, err := amountToFen(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}
	svc := refunddomestic.RefundsApiService{Client: c.core}
	resp, _, err := svc.Create(ctx, refunddomestic.CreateRequest{
		OutTradeNo:  core.String(outTradeNo),
		OutRefundNo: core.String(outRefundNo),
		Reason:      core.String(reason),
		Amount: &refunddomestic.AmountReq{
			Refund:   core.Int64(fen),
			Total:    core.Int64(fen),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}
	if resp == nil || resp.Status == nil {
		return fmt.Errorf("%w: 响应缺少退款状态", ErrRefundFailed)
	}
	return nil
}

// ToPaymentStatus 将微信交易状态映射为内部支付状态。
func ToPaymentStatus(tradeState string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(tradeState)) {
	case TradeStateSuccess:
		return constants.PaymentStatusSuccess, true
	case TradeStateNotPay, TradeStateUserPaying:
		return constants.PaymentStatusPending, true
	case TradeStateClosed:
		return constants.PaymentStatusExpired, true
	case TradeStatePayError, TradeStateRefund:
		return constants.PaymentStatusFailed, true
	default:
		return "", false
	}
}

// IsTerminal 报告交易状态是否不会再变化。
func IsTerminal(status string) bool {
	switch status {
	case constants.PaymentStatusSuccess, constants.PaymentStatusFailed, constants.PaymentStatusExpired:
		return true
	}
	return false
}

// amountToFen 将金额元转换为分,要求精确到分。
func amountToFen(amount models.Money) (int64, error) {
	fen := amount.Decimal.Mul(decimal.NewFromInt(100))
	if !fen.Equal(fen.Truncate(0)) {
		return 0, fmt.Errorf("金额超出分精度: %s", amount.String())
	}
	if fen.Sign() <= 0 {
		return 0, fmt.Errorf("金额必须大于零: %s", amount.String())
	}
	return fen.IntPart(), nil
}

// FenToAmount 将分转换为元金额。
func FenToAmount(fen int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(fen).Div(decimal.NewFromInt(100)))
}

func defaultClientIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "127.0.0.1"
	}
	return ip
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取商户私钥失败: %v", err)
	}
	return parsePrivateKey(raw)
}

func parsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("商户私钥不是有效的 PEM")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("商户私钥不是 RSA 私钥")
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("解析商户私钥失败: %v", err)
	}
	return key, nil
}

// NewOutTradeNo 生成带时间戳前缀的商户订单号。
func NewOutTradeNo(suffix string) string {
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)
	suffix = strings.ReplaceAll(suffix, "-", "")
	if len(suffix) > 12 {
		suffix = suffix[:12]
	}
	return "BV" + ts + suffix
}
