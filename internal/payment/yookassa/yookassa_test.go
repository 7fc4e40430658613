package yookassa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(apiBase string) *Config {
	cfg := &Config{
		AccountID: "100500",
		SecretKey: "test_secret",
		APIBase:   apiBase,
		ReturnURL: "https://shop.example.com/checkout/result",
	}
	cfg.Normalize()
	return cfg
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"account_id": " 100500 ",
		"secret_key": "test_secret",
	})
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	if cfg.AccountID != "100500" {
		t.Fatalf("account_id 未规整: %q", cfg.AccountID)
	}
	if cfg.APIBase != "https://api.yookassa.ru/v3" {
		t.Fatalf("默认 API 地址错误: %q", cfg.APIBase)
	}
	if cfg.TimeoutMS != 15000 {
		t.Fatalf("默认超时错误: %d", cfg.TimeoutMS)
	}

	if _, err := ParseConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("空配置应当报错, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(testConfig("")); err != nil {
		t.Fatalf("合法配置校验失败: %v", err)
	}
	bad := testConfig("")
	bad.SecretKey = ""
	if err := ValidateConfig(bad); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("缺少密钥应当报错, got %v", err)
	}
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil 配置应当报错, got %v", err)
	}
}

func TestCreatePayment(t *testing.T) {
	var gotIdemKey, gotAuthUser string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Fatalf("意外的请求 %s %s", r.Method, r.URL.Path)
		}
		gotIdemKey = r.Header.Get("Idempotence-Key")
		gotAuthUser, _, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "2d1f3a44-000f-5000-8000-1b6881a1c0f1",
			"status": "pending",
			"confirmation": {"type": "redirect", "confirmation_url": "https://yoomoney.ru/checkout/payments/v2?orderId=abc"}
		}`))
	}))
	defer server.Close()

	result, err := CreatePayment(context.Background(), testConfig(server.URL), CreateInput{
		IdempotenceKey: "payment-1",
		Amount:         "1040.00",
		Currency:       "RUB",
		Description:    "You're ordering: Cosmos",
	})
	if err != nil {
		t.Fatalf("创建支付失败: %v", err)
	}
	if result.PaymentID != "2d1f3a44-000f-5000-8000-1b6881a1c0f1" {
		t.Fatalf("支付ID错误: %s", result.PaymentID)
	}
	if result.Status != StatusPending {
		t.Fatalf("初始状态错误: %s", result.Status)
	}
	if result.ConfirmationURL != "https://yoomoney.ru/checkout/payments/v2?orderId=abc" {
		t.Fatalf("收银台地址错误: %s", result.ConfirmationURL)
	}
	if gotIdemKey != "payment-1" {
		t.Fatalf("幂等键未传递: %q", gotIdemKey)
	}
	if gotAuthUser != "100500" {
		t.Fatalf("BasicAuth 账号错误: %q", gotAuthUser)
	}
	amount, _ := gotBody["amount"].(map[string]interface{})
	if amount["value"] != "1040.00" || amount["currency"] != "RUB" {
		t.Fatalf("金额参数错误: %+v", amount)
	}
	confirmation, _ := gotBody["confirmation"].(map[string]interface{})
	if confirmation["return_url"] != "https://shop.example.com/checkout/result" {
		t.Fatalf("回跳地址未使用配置默认值: %+v", confirmation)
	}
	if gotBody["capture"] != true {
		t.Fatalf("应当开启自动扣款")
	}
}

func TestCreatePaymentRejectsMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "pending"}`))
	}))
	defer server.Close()

	_, err := CreatePayment(context.Background(), testConfig(server.URL), CreateInput{
		IdempotenceKey: "payment-1",
		Amount:         "10.00",
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("缺少支付ID应当报响应无效, got %v", err)
	}
}

func TestQueryStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/payments/p-42" {
			t.Fatalf("意外的请求 %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": "p-42", "status": "succeeded"}`))
	}))
	defer server.Close()

	status, err := QueryStatus(context.Background(), testConfig(server.URL), "p-42")
	if err != nil {
		t.Fatalf("查询状态失败: %v", err)
	}
	if status != StatusSucceeded {
		t.Fatalf("状态错误: %s", status)
	}
}

func TestQueryStatusHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type": "error", "code": "not_found"}`))
	}))
	defer server.Close()

	_, err := QueryStatus(context.Background(), testConfig(server.URL), "p-missing")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("HTTP 错误应当报请求失败, got %v", err)
	}
}

func TestCreateRefund(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/refunds" {
			t.Fatalf("意外的请求 %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id": "r-1", "status": "succeeded"}`))
	}))
	defer server.Close()

	err := CreateRefund(context.Background(), testConfig(server.URL), "p-42", "1040.00", "", "refund-1", "settlement failed")
	if err != nil {
		t.Fatalf("创建退款失败: %v", err)
	}
	if gotBody["payment_id"] != "p-42" {
		t.Fatalf("退款目标支付ID错误: %+v", gotBody)
	}
	amount, _ := gotBody["amount"].(map[string]interface{})
	if amount["currency"] != "RUB" {
		t.Fatalf("空币种应当回退到 RUB: %+v", amount)
	}
}

func TestToPaymentStatus(t *testing.T) {
	cases := []struct {
		gateway string
		status  string
	}{
		{"succeeded", "success"},
		{"canceled", "failed"},
		{"pending", "pending"},
		{"waiting_for_capture", "pending"},
		{"  Succeeded ", "success"},
		{"unknown", "pending"},
	}
	for _, c := range cases {
		if got := ToPaymentStatus(c.gateway); got != c.status {
			t.Fatalf("状态 %q 映射为 %q,期望 %q", c.gateway, got, c.status)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal("succeeded") || !IsTerminal("canceled") {
		t.Fatalf("成功与取消应当为终态")
	}
	if IsTerminal("pending") || IsTerminal("waiting_for_capture") {
		t.Fatalf("进行中的状态不应当为终态")
	}
}
