package marketplace

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

const (
	statusSuccess = "success"

	// attachUploadedType is the chat message type carrying uploaded files
	attachUploadedType = "trade_attach_uploaded"
)

var attachmentHashRe = regexp.MustCompile(`attachment/([^?]+)`)

// envelope is the common response shape of every marketplace endpoint
type envelope struct {
	Status           string          `json:"status"`
	Data             json.RawMessage `json:"data"`
	Error            string          `json:"error,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
}

func (e envelope) err() error {
	msg := e.ErrorDescription
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = "status " + strconv.Quote(e.Status)
	}
	return fmt.Errorf("%w: %s", domain.ErrUnexpectedResponse, msg)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tradeListData struct {
	Trades []tradeDTO `json:"trades"`
}

type tradeDTO struct {
	TradeHash           string          `json:"trade_hash"`
	OwnerUsername       string          `json:"owner_username"`
	ResponderUsername   string          `json:"responder_username"`
	TradeStatus         string          `json:"trade_status"`
	PaymentMethodSlug   string          `json:"payment_method_slug"`
	PaymentMethodName   string          `json:"payment_method_name"`
	FiatAmountRequested decimal.Decimal `json:"fiat_amount_requested"`
	FiatCurrencyCode    string          `json:"fiat_currency_code"`
	CryptoCurrencyCode  string          `json:"crypto_currency_code"`
	StartDate           string          `json:"start_date"`
	StartedAt           string          `json:"started_at"`
	CompletedAt         string          `json:"completed_at"`
}

func (t tradeDTO) toSnapshot(platform domain.Platform) domain.TradeSnapshot {
	s := domain.TradeSnapshot{
		TradeHash:           t.TradeHash,
		OwnerUsername:       t.OwnerUsername,
		ResponderUsername:   t.ResponderUsername,
		Platform:            platform,
		TradeStatus:         t.TradeStatus,
		PaymentMethodSlug:   t.PaymentMethodSlug,
		PaymentMethodName:   t.PaymentMethodName,
		FiatAmountRequested: t.FiatAmountRequested,
		FiatCurrencyCode:    t.FiatCurrencyCode,
		CryptoCurrencyCode:  t.CryptoCurrencyCode,
	}

	start := t.StartDate
	if start == "" {
		start = t.StartedAt
	}
	if ts, err := parseTime(start); err == nil {
		s.StartDate = ts
	}
	if ts, err := parseTime(t.CompletedAt); err == nil {
		s.CompletedAt = &ts
	}
	return s
}

type chatData struct {
	Messages []chatMessageDTO `json:"messages"`
}

type chatMessageDTO struct {
	ID        json.RawMessage `json:"id"`
	Author    *string         `json:"author"`
	Type      string          `json:"type"`
	Text      json.RawMessage `json:"text"`
	Timestamp int64           `json:"timestamp"`
}

// chatFiles is the text payload of an attachment upload message
type chatFiles struct {
	Files []struct {
		URL string `json:"url"`
	} `json:"files"`
}

func (m chatMessageDTO) toDomain() domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:   rawString(m.ID),
		Type: domain.MessageType(m.Type),
	}
	if m.Author != nil {
		msg.Author = *m.Author
	}
	if m.Timestamp > 0 {
		msg.Timestamp = time.Unix(m.Timestamp, 0).UTC()
	}

	// text is a plain string for chat messages and an object for uploads
	var text string
	if err := json.Unmarshal(m.Text, &text); err == nil {
		msg.Text = text
		return msg
	}
	var files chatFiles
	if err := json.Unmarshal(m.Text, &files); err == nil {
		for _, f := range files.Files {
			if f.URL != "" {
				msg.FileURLs = append(msg.FileURLs, f.URL)
			}
		}
	}
	return msg
}

type noonesWalletData struct {
	CryptoCurrencies []struct {
		Code    string          `json:"code"`
		Balance decimal.Decimal `json:"balance"`
	} `json:"cryptoCurrencies"`
	PreferredFiatCurrency *struct {
		Code    string          `json:"code"`
		Balance decimal.Decimal `json:"balance"`
	} `json:"preferredFiatCurrency"`
}

type paxfulWalletData struct {
	CryptoCurrencyCode string          `json:"crypto_currency_code"`
	Balance            decimal.Decimal `json:"balance"`
}

// rawString renders a JSON scalar (string or number) as a plain string
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime parses marketplace timestamps; values without a zone are UTC
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// AttachmentHash extracts the image hash from an attachment URL
func AttachmentHash(fileURL string) (string, bool) {
	m := attachmentHashRe.FindStringSubmatch(fileURL)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
