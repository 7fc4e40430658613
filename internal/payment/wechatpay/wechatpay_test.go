package wechatpay

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
)

func TestValidateConfig(t *testing.T) {
	cfg := Config{
		AppID:               "wx123",
		MchID:               "190000",
		MchCertSerialNumber: "serial",
		MchAPIv3Key:         "key",
		PrivateKeyPath:      "/tmp/key.pem",
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("合法配置校验失败: %v", err)
	}

	bad := cfg
	bad.MchID = ""
	if err := ValidateConfig(bad); err == nil {
		t.Fatalf("缺少商户号应当报错")
	}

	bad = cfg
	bad.Mode = "jsapi"
	if err := ValidateConfig(bad); err == nil {
		t.Fatalf("不支持的渠道应当报错")
	}
}

func TestToPaymentStatus(t *testing.T) {
	cases := []struct {
		trade  string
		status string
		ok     bool
	}{
		{"SUCCESS", constants.PaymentStatusSuccess, true},
		{"NOTPAY", constants.PaymentStatusPending, true},
		{"USERPAYING", constants.PaymentStatusPending, true},
		{"CLOSED", constants.PaymentStatusExpired, true},
		{"PAYERROR", constants.PaymentStatusFailed, true},
		{"REFUND", constants.PaymentStatusFailed, true},
		{"success", constants.PaymentStatusSuccess, true},
		{"UNKNOWN", "", false},
	}
	for _, c := range cases {
		status, ok := ToPaymentStatus(c.trade)
		if ok != c.ok || status != c.status {
			t.Fatalf("交易状态 %s 映射结果 (%s,%v),期望 (%s,%v)", c.trade, status, ok, c.status, c.ok)
		}
	}
}

func TestAmountToFen(t *testing.T) {
	fen, err := amountToFen(models.NewMoneyFromDecimal(decimal.NewFromFloat(12.34)))
	if err != nil {
		t.Fatalf("金额转换失败: %v", err)
	}
	if fen != 1234 {
		t.Fatalf("期望 1234 分,实际 %d", fen)
	}

	if _, err := amountToFen(models.Money{Decimal: decimal.NewFromFloat(0.001)}); err == nil {
		t.Fatalf("超出分精度应当报错")
	}
	if _, err := amountToFen(models.NewMoneyFromDecimal(decimal.Zero)); err == nil {
		t.Fatalf("零金额应当报错")
	}
}

func TestFenToAmount(t *testing.T) {
	got := FenToAmount(1234)
	if !got.Decimal.Equal(decimal.NewFromFloat(12.34)) {
		t.Fatalf("期望 12.34,实际 %s", got.String())
	}
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	if _, err := parsePrivateKey([]byte("not a pem")); err == nil {
		t.Fatalf("非 PEM 内容应当报错")
	}
}

func TestNewOutTradeNo(t *testing.T) {
	no := NewOutTradeNo("3f2b8c1e-aaaa-bbbb-cccc-000000000000")
	if !strings.HasPrefix(no, "BV") {
		t.Fatalf("订单号缺少前缀: %s", no)
	}
	if strings.Contains(no, "-") {
		t.Fatalf("订单号不应包含连字符: %s", no)
	}
}
