package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildOrderSummaryContent(t *testing.T) {
	input := OrderSummaryEmailInput{
		OrderID:   "3f9b0fd4-4a3e-47a8-9f6d-2c61f6fba111",
		OrderDate: "2026-03-01 14:30",
		TotalSum:  models.NewMoneyFromDecimal(decimal.NewFromInt(1040)),
		Currency:  "RUB",
		Recipient: "Ivan",
		Lines: []OrderSummaryEmailLine{
			{
				BookName:  "Crime and Punishment",
				Quantity:  2,
				UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(520)),
				LineTotal: models.NewMoneyFromDecimal(decimal.NewFromInt(1040)),
			},
		},
	}

	subject, body := buildOrderSummaryContent(input)

	if !strings.Contains(subject, input.OrderID) {
		t.Fatalf("subject missing order id: %s", subject)
	}
	for _, expected := range []string{
		"Hello, Ivan!",
		"2026-03-01 14:30",
		"Crime and Punishment x2 = 1040.00 RUB",
		"Total: 1040.00 RUB",
		input.OrderID,
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("body missing %q: %s", expected, body)
		}
	}
}

func TestBuildOrderSummaryContentWithoutRecipient(t *testing.T) {
	input := OrderSummaryEmailInput{
		OrderID:   "order-1",
		OrderDate: "2026-03-01 14:30",
		TotalSum:  models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
		Currency:  "RUB",
	}

	_, body := buildOrderSummaryContent(input)
	if strings.Contains(body, "Hello") {
		t.Fatalf("body should not greet when recipient is empty: %s", body)
	}
}

func TestSendTextEmailGuards(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.EmailConfig
		toEmail string
		wantErr error
	}{
		{
			name:    "disabled",
			cfg:     &config.EmailConfig{Enabled: false},
			toEmail: "reader@example.com",
			wantErr: ErrEmailServiceDisabled,
		},
		{
			name:    "not_configured",
			cfg:     &config.EmailConfig{Enabled: true},
			toEmail: "reader@example.com",
			wantErr: ErrEmailServiceNotConfigured,
		},
		{
			name: "invalid_recipient",
			cfg: &config.EmailConfig{
				Enabled: true,
				Host:    "smtp.example.com",
				Port:    465,
				From:    "noreply@example.com",
			},
			toEmail: "not-an-address",
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailService(tt.cfg)
			err := svc.sendTextEmail(tt.toEmail, "subject", "body")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("sendTextEmail() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildFromAddress(t *testing.T) {
	if got := buildFromAddress("noreply@example.com", ""); got != "noreply@example.com" {
		t.Fatalf("buildFromAddress() without name = %q", got)
	}
	got := buildFromAddress("noreply@example.com", "BookVault")
	if !strings.Contains(got, "noreply@example.com") || !strings.Contains(got, "BookVault") {
		t.Fatalf("buildFromAddress() with name = %q", got)
	}
}
