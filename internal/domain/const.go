package domain

import "time"

const (
	// DEFAULT_TOKEN_TTL is shorter than the marketplace token lifetime (1h)
	DEFAULT_TOKEN_TTL = 55 * time.Minute

	// DEFAULT_TRADE_PAGE_SIZE bounds the trade list request
	DEFAULT_TRADE_PAGE_SIZE = 10

	// RECENTLY_COMPLETED_WINDOW is how far back completed trades are re-fetched
	RECENTLY_COMPLETED_WINDOW = 5 * time.Minute
)

// Payment method slugs that require upfront bank or cash details and email proof
const (
	MethodOXXO             = "oxxo"
	MethodBankTransfer     = "bank-transfer"
	MethodSPEI             = "spei-sistema-de-pagos-electronicos-interbancarios"
	MethodDomesticTransfer = "domestic-wire-transfer"
)

// RequiresPaymentProof reports whether a payment method is verified by bank or cash notification
func RequiresPaymentProof(slug string) bool {
	switch slug {
	case MethodOXXO, MethodBankTransfer, MethodSPEI, MethodDomesticTransfer:
		return true
	}
	return false
}
