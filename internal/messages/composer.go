package messages

import (
	"strings"
	"time"

	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/payment"
	"github.com/jinjernot/wg-sub000/internal/poller"
)

const defaultKey = "default"

// Key names a one-shot chat message
type Key string

const (
	KeyCompletion      Key = "completion"
	KeyPaymentReceived Key = "payment_received"
	KeyReminder        Key = "reminder"
	KeyAttachment      Key = "attachment"
	KeyAfk             Key = "afk"
	KeyExtendedAfk     Key = "extended_afk"
	KeyNoAttachment    Key = "no_attachment"
	KeyOnlineReply     Key = "online_reply"
	KeyThirdPartyReply Key = "third_party_reply"
	KeyReleaseReply    Key = "release_reply"
	KeyOxxoRedirect    Key = "oxxo_redirect"
)

// Templates holds the chat message texts.
// Welcome and WelcomeNight map owner -> payment method slug (or "default") -> text.
type Templates struct {
	Welcome        map[string]map[string]string
	WelcomeNight   map[string]map[string]string
	DefaultWelcome string
	PaymentDetails string
	Texts          map[Key]string
}

// Composer renders chat messages for a trade
type Composer struct {
	templates  Templates
	location   *time.Location
	nightStart int
	nightEnd   int
}

// NewComposer creates a Composer. Night mode applies while the local hour is in [nightStart, nightEnd).
func NewComposer(templates Templates, location *time.Location, nightStart, nightEnd int) *Composer {
	if location == nil {
		location = time.UTC
	}
	return &Composer{
		templates:  templates,
		location:   location,
		nightStart: nightStart,
		nightEnd:   nightEnd,
	}
}

// IsNight reports whether now falls in the night window
func (c *Composer) IsNight(now time.Time) bool {
	if c.nightStart == c.nightEnd {
		return false
	}
	return poller.InWindow(now.In(c.location).Hour(), c.nightStart, c.nightEnd)
}

// Welcome picks the welcome text by owner, payment method and time of day
func (c *Composer) Welcome(s domain.TradeSnapshot, now time.Time) string {
	var candidates []map[string]map[string]string
	if c.IsNight(now) {
		candidates = append(candidates, c.templates.WelcomeNight)
	}
	candidates = append(candidates, c.templates.Welcome)

	for _, byOwner := range candidates {
		methods := lookupOwner(byOwner, s.OwnerUsername)
		if methods == nil {
			continue
		}
		if text, ok := methods[s.PaymentMethodSlug]; ok && text != "" {
			return render(text, s, nil)
		}
		if text, ok := methods[defaultKey]; ok && text != "" {
			return render(text, s, nil)
		}
	}
	return render(c.templates.DefaultWelcome, s, nil)
}

// PaymentDetails renders the payment instructions for the selected account
func (c *Composer) PaymentDetails(s domain.TradeSnapshot, account payment.Account) string {
	number := account.CLABE
	if s.PaymentMethodSlug == domain.MethodOXXO || number == "" {
		number = account.CardNumber
	}
	return render(c.templates.PaymentDetails, s, map[string]string{
		"{bank}":        account.Bank,
		"{holder}":      account.Holder,
		"{name}":        account.Holder,
		"{clabe}":       account.CLABE,
		"{card_number}": account.CardNumber,
		"{account}":     number,
	})
}

// Text renders a one-shot message. It returns "" when no template is configured.
func (c *Composer) Text(key Key, s domain.TradeSnapshot) string {
	text := c.templates.Texts[key]
	if text == "" {
		return ""
	}
	return render(text, s, nil)
}

func render(text string, s domain.TradeSnapshot, extra map[string]string) string {
	pairs := []string{
		"{buyer}", s.ResponderUsername,
		"{owner}", s.OwnerUsername,
		"{amount}", s.FiatAmountRequested.StringFixed(2),
		"{currency}", s.FiatCurrencyCode,
		"{trade_hash}", s.TradeHash,
		"{method}", s.PaymentMethodSlug,
	}
	for k, v := range extra {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func lookupOwner(byOwner map[string]map[string]string, owner string) map[string]string {
	if m, ok := byOwner[owner]; ok {
		return m
	}
	for k, m := range byOwner {
		if strings.EqualFold(k, owner) {
			return m
		}
	}
	return nil
}
