package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/payment/yookassa"
)

func TestIsPaymentTransitionAllowed(t *testing.T) {
	tests := []struct {
		current string
		target  string
		want    bool
	}{
		{constants.PaymentStatusInitiated, constants.PaymentStatusPending, true},
		{constants.PaymentStatusInitiated, constants.PaymentStatusSuccess, true},
		{constants.PaymentStatusInitiated, constants.PaymentStatusFailed, true},
		{constants.PaymentStatusPending, constants.PaymentStatusSuccess, true},
		{constants.PaymentStatusPending, constants.PaymentStatusFailed, true},
		{constants.PaymentStatusPending, constants.PaymentStatusExpired, true},
		// 状态不回退
		{constants.PaymentStatusPending, constants.PaymentStatusInitiated, false},
		{constants.PaymentStatusSuccess, constants.PaymentStatusFailed, false},
		{constants.PaymentStatusFailed, constants.PaymentStatusSuccess, false},
		{constants.PaymentStatusExpired, constants.PaymentStatusPending, false},
		{constants.PaymentStatusPending, constants.PaymentStatusPending, false},
	}

	for _, tt := range tests {
		if got := isPaymentTransitionAllowed(tt.current, tt.target); got != tt.want {
			t.Fatalf("isPaymentTransitionAllowed(%s, %s) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestIsPaymentStatusTerminal(t *testing.T) {
	terminal := []string{
		constants.PaymentStatusSuccess,
		constants.PaymentStatusFailed,
		constants.PaymentStatusExpired,
	}
	for _, status := range terminal {
		if !isPaymentStatusTerminal(status) {
			t.Fatalf("%s must be terminal", status)
		}
	}
	for _, status := range []string{constants.PaymentStatusInitiated, constants.PaymentStatusPending, ""} {
		if isPaymentStatusTerminal(status) {
			t.Fatalf("%s must not be terminal", status)
		}
	}
}

func TestBuildCartDescription(t *testing.T) {
	items := []models.CartItem{
		{Book: &models.Book{Name: "Cosmos"}},
		{Book: &models.Book{Name: "Sapiens"}},
		{Book: nil},
	}
	if got := buildCartDescription(items); got != "You're ordering: Cosmos, Sapiens" {
		t.Fatalf("buildCartDescription() = %q", got)
	}
	if got := buildCartDescription(nil); got != "You're ordering from BookVault" {
		t.Fatalf("buildCartDescription(nil) = %q", got)
	}
}

func TestPaymentServiceIntervals(t *testing.T) {
	svc := NewPaymentService(&config.PaymentConfig{}, nil, nil, nil, nil, nil)
	if got := svc.PollInterval(); got != 5*time.Second {
		t.Fatalf("default poll interval want 5s got %s", got)
	}
	if got := svc.WatchTimeout(); got != 30*time.Minute {
		t.Fatalf("default watch timeout want 30m got %s", got)
	}

	svc = NewPaymentService(&config.PaymentConfig{PollIntervalSeconds: 2, WatchTimeoutMinutes: 5}, nil, nil, nil, nil, nil)
	if got := svc.PollInterval(); got != 2*time.Second {
		t.Fatalf("poll interval want 2s got %s", got)
	}
	if got := svc.WatchTimeout(); got != 5*time.Minute {
		t.Fatalf("watch timeout want 5m got %s", got)
	}
}

func TestMapGatewayError(t *testing.T) {
	if got := mapGatewayError(nil); got != nil {
		t.Fatalf("mapGatewayError(nil) = %v", got)
	}
	if got := mapGatewayError(yookassa.ErrConfigInvalid); !errors.Is(got, ErrPaymentInvalid) {
		t.Fatalf("config error mapping = %v", got)
	}
	if got := mapGatewayError(yookassa.ErrResponseInvalid); !errors.Is(got, ErrPaymentGatewayResponseInvalid) {
		t.Fatalf("response error mapping = %v", got)
	}
	if got := mapGatewayError(yookassa.ErrRequestFailed); !errors.Is(got, ErrPaymentGatewayRequestFailed) {
		t.Fatalf("request error mapping = %v", got)
	}
	if got := mapGatewayError(errors.New("boom")); !errors.Is(got, ErrPaymentGatewayRequestFailed) {
		t.Fatalf("unknown error mapping = %v", got)
	}
}
