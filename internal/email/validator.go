package email

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// ErrNoMailbox is returned when no mailbox is configured for a credential identifier
var ErrNoMailbox = errors.New("no mailbox configured")

var (
	emailAmountRe = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*\.\d{2})`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
)

// Rule describes the bank notification expected for a set of payment methods
type Rule struct {
	Methods []string
	From    string
	Subject string
}

// Result is the outcome of one payment email search
type Result struct {
	Matched     bool
	MessageID   string
	Subject     string
	FoundAmount decimal.Decimal
	Details     string
}

// Validator looks for a bank notification confirming a trade's payment
//
//go:generate mockgen -source=validator.go -destination=../mocks/email_validator.go -package=mocks -mock_names=Validator=MockEmailValidator
type Validator interface {
	// CheckForPayment searches the credential's mailbox for a notification
	// received after since whose amount equals the trade's amount
	CheckForPayment(ctx context.Context, credentialID string, state domain.TradeState, since time.Time) (Result, error)
}

type validator struct {
	mailboxes map[string]Mailbox
	rules     []Rule
	fs        adapter.FileSystem
	logDir    string
}

// NewValidator creates a Validator over mailboxes keyed by credential identifier.
// Matching email bodies are saved under logDir when it is set.
func NewValidator(mailboxes map[string]Mailbox, rules []Rule, fs adapter.FileSystem, logDir string) Validator {
	normalized := make(map[string]Mailbox, len(mailboxes))
	for id, mb := range mailboxes {
		normalized[strings.ToLower(id)] = mb
	}
	return &validator{
		mailboxes: normalized,
		rules:     rules,
		fs:        fs,
		logDir:    logDir,
	}
}

func (v *validator) CheckForPayment(ctx context.Context, credentialID string, state domain.TradeState, since time.Time) (Result, error) {
	rule, ok := v.ruleFor(state.PaymentMethodSlug)
	if !ok {
		return Result{Details: "no email rule for payment method " + state.PaymentMethodSlug}, nil
	}
	mailbox, ok := v.mailboxes[strings.ToLower(credentialID)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrNoMailbox, credentialID)
	}

	messages, err := mailbox.Search(ctx, Criteria{From: rule.From, Subject: rule.Subject, Since: since})
	if err != nil {
		return Result{}, fmt.Errorf("failed to search mailbox %q: %w", credentialID, err)
	}

	expected := state.FiatAmountRequested
	var seen []string
	for _, msg := range messages {
		if !msg.Date.IsZero() && msg.Date.Before(since) {
			continue
		}
		if msg.Body == "" {
			logger.WarnCtx(ctx, "Payment email has no body", zap.String("message_id", msg.ID))
			continue
		}
		v.saveBody(ctx, state, msg)

		for _, amount := range FindAmounts(msg.Body) {
			seen = append(seen, amount.StringFixed(2))
			if amount.Equal(expected) {
				logger.InfoCtx(ctx, "Payment email matches trade amount",
					zap.String("trade_hash", state.TradeHash),
					zap.String("message_id", msg.ID),
					zap.String("amount", amount.String()))
				return Result{
					Matched:     true,
					MessageID:   msg.ID,
					Subject:     msg.Subject,
					FoundAmount: amount,
					Details:     fmt.Sprintf("found %s in %q", amount.StringFixed(2), msg.Subject),
				}, nil
			}
		}
	}

	return Result{
		Details: fmt.Sprintf("%d email(s) checked, amounts found: [%s]", len(messages), strings.Join(seen, ", ")),
	}, nil
}

func (v *validator) ruleFor(method string) (Rule, bool) {
	for _, r := range v.rules {
		for _, m := range r.Methods {
			if strings.EqualFold(m, method) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// saveBody keeps one copy of every inspected email for later review.
// An email already saved for the trade is not written again.
func (v *validator) saveBody(ctx context.Context, state domain.TradeState, msg Message) {
	if v.logDir == "" {
		return
	}
	dir := filepath.Join(v.logDir, state.PaymentMethodSlug)
	if err := v.fs.MkdirAll(dir, 0o755); err != nil {
		logger.WarnCtx(ctx, "Failed to create email log dir", zap.Error(err))
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", alnum(state.TradeHash), alnum(msg.ID)))
	if _, err := v.fs.ReadFile(path); err == nil {
		return
	}
	if err := v.fs.WriteFile(path, []byte(msg.Body), 0o600); err != nil {
		logger.WarnCtx(ctx, "Failed to save email body", zap.Error(err))
	}
}

// FindAmounts returns every "$1,234.56" style amount in an email body
func FindAmounts(body string) []decimal.Decimal {
	text := htmlTagRe.ReplaceAllString(body, " ")
	var amounts []decimal.Decimal
	for _, m := range emailAmountRe.FindAllStringSubmatch(text, -1) {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			amounts = append(amounts, d)
		}
	}
	return amounts
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
