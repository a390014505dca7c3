package messages_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/messages"
	"github.com/jinjernot/wg-sub000/internal/payment"
)

var (
	day   = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	night = time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
)

func setupTestComposer() *messages.Composer {
	return messages.NewComposer(messages.Templates{
		Welcome: map[string]map[string]string{
			"davidvs": {
				"oxxo":    "Hola {buyer}, pago OXXO de {amount} {currency}",
				"default": "Hola {buyer}",
			},
		},
		WelcomeNight: map[string]map[string]string{
			"davidvs": {"oxxo": "Buenas noches {buyer}, OXXO"},
		},
		DefaultWelcome: "Welcome to {trade_hash}",
		PaymentDetails: "Banco: {bank}\nTitular: {holder}\nCuenta: {account}\nMonto: {amount} {currency}",
		Texts: map[messages.Key]string{
			messages.KeyReminder: "{buyer}, still there?",
		},
	}, time.UTC, 0, 8)
}

func snapshot(owner, method string) domain.TradeSnapshot {
	return domain.TradeSnapshot{
		TradeHash:           "abc123",
		OwnerUsername:       owner,
		ResponderUsername:   "buyer1",
		PaymentMethodSlug:   method,
		FiatAmountRequested: decimal.RequireFromString("1500"),
		FiatCurrencyCode:    "MXN",
	}
}

func TestComposer_Welcome(t *testing.T) {
	c := setupTestComposer()

	tests := []struct {
		name     string
		s        domain.TradeSnapshot
		now      time.Time
		expected string
	}{
		{"owner and method by day", snapshot("davidvs", "oxxo"), day, "Hola buyer1, pago OXXO de 1500.00 MXN"},
		{"owner and method by night", snapshot("davidvs", "oxxo"), night, "Buenas noches buyer1, OXXO"},
		{"night falls back to day owner default", snapshot("davidvs", "bank-transfer"), night, "Hola buyer1"},
		{"owner default", snapshot("davidvs", "bank-transfer"), day, "Hola buyer1"},
		{"owner lookup ignores case", snapshot("DavidVS", "oxxo"), day, "Hola buyer1, pago OXXO de 1500.00 MXN"},
		{"global default", snapshot("JoeWillgang", "oxxo"), day, "Welcome to abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Welcome(tt.s, tt.now))
		})
	}
}

func TestComposer_IsNight(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	c := messages.NewComposer(messages.Templates{}, loc, 22, 6)

	assert.True(t, c.IsNight(time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)))  // 23:00 local
	assert.True(t, c.IsNight(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))) // 04:00 local
	assert.False(t, c.IsNight(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)))

	disabled := messages.NewComposer(messages.Templates{}, loc, 0, 0)
	assert.False(t, disabled.IsNight(night))
}

func TestComposer_PaymentDetails(t *testing.T) {
	c := setupTestComposer()
	account := payment.Account{Bank: "Scotiabank", Holder: "David V", CLABE: "044180000000000002", CardNumber: "4217"}

	assert.Equal(t,
		"Banco: Scotiabank\nTitular: David V\nCuenta: 044180000000000002\nMonto: 1500.00 MXN",
		c.PaymentDetails(snapshot("davidvs", "bank-transfer"), account))
	assert.Equal(t,
		"Banco: Scotiabank\nTitular: David V\nCuenta: 4217\nMonto: 1500.00 MXN",
		c.PaymentDetails(snapshot("davidvs", "oxxo"), account))
}

func TestComposer_Text(t *testing.T) {
	c := setupTestComposer()

	assert.Equal(t, "buyer1, still there?", c.Text(messages.KeyReminder, snapshot("davidvs", "oxxo")))
	assert.Empty(t, c.Text(messages.KeyAfk, snapshot("davidvs", "oxxo")))
}
