package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Platform represents the marketplace a trade lives on
type Platform string

const (
	PlatformNoones Platform = "noones"
	PlatformPaxful Platform = "paxful"
)

// IsValidPlatform checks if a platform is supported
func IsValidPlatform(p Platform) bool {
	return p == PlatformNoones || p == PlatformPaxful
}

// Trade status values reported by the marketplace
const (
	StatusNew           = "New"
	StatusActiveFunded  = "Active funded"
	StatusPaid          = "Paid"
	StatusReleased      = "Released"
	StatusSuccessful    = "Successful"
	StatusCancelled     = "Cancelled"
	StatusDisputeOpen   = "Dispute open"
	StatusDisputeClosed = "Dispute closed"
)

// IsActiveStatus reports whether the trade is waiting on the buyer
func IsActiveStatus(status string) bool {
	return strings.HasPrefix(status, "Active")
}

// IsCompletedStatus reports whether the trade has been released to the buyer
func IsCompletedStatus(status string) bool {
	return status == StatusSuccessful || status == StatusReleased
}

// Account is one marketplace account polled by a worker
type Account struct {
	Name         string
	Username     string
	Platform     Platform
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
}

// TradeSnapshot is the marketplace's current view of a trade
type TradeSnapshot struct {
	TradeHash           string          `json:"trade_hash"`
	OwnerUsername       string          `json:"owner_username"`
	ResponderUsername   string          `json:"responder_username"`
	Platform            Platform        `json:"platform"`
	TradeStatus         string          `json:"trade_status"`
	PaymentMethodSlug   string          `json:"payment_method_slug"`
	PaymentMethodName   string          `json:"payment_method_name,omitempty"`
	FiatAmountRequested decimal.Decimal `json:"fiat_amount_requested"`
	FiatCurrencyCode    string          `json:"fiat_currency_code"`
	CryptoCurrencyCode  string          `json:"crypto_currency_code,omitempty"`
	StartDate           time.Time       `json:"start_date"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
}

// AttachmentProgress tracks what was already done for one uploaded file
type AttachmentProgress struct {
	Downloaded bool   `json:"downloaded"`
	AlertsSent bool   `json:"alerts_sent"`
	ImageHash  string `json:"image_hash,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	IsImage    bool   `json:"is_image,omitempty"`
	Path       string `json:"path,omitempty"`
}

// TradeState is the persisted record of one trade. Every *Sent / *Verified
// flag is a commit marker: once true it is never reset.
type TradeState struct {
	TradeSnapshot

	FirstSeenUTC  *time.Time `json:"first_seen_utc,omitempty"`
	StatusHistory []string   `json:"status_history"`
	PaidTimestamp *time.Time `json:"paid_timestamp,omitempty"`
	LastBuyerTS   *time.Time `json:"last_buyer_ts,omitempty"`

	WelcomeMessageSent         bool `json:"welcome_message_sent,omitempty"`
	PaymentDetailsSent         bool `json:"payment_details_sent,omitempty"`
	CompletionMessageSent      bool `json:"completion_message_sent,omitempty"`
	PaymentReceivedMessageSent bool `json:"payment_received_message_sent,omitempty"`
	EmailVerified              bool `json:"email_verified,omitempty"`
	EmailCheckTimedOut         bool `json:"email_check_timed_out,omitempty"`
	EmailValidationAlertSent   bool `json:"email_validation_alert_sent,omitempty"`
	AttachmentMessageSent      bool `json:"attachment_message_sent,omitempty"`
	AmountValidationAlertSent  bool `json:"amount_validation_alert_sent,omitempty"`
	NameValidationAlertSent    bool `json:"name_validation_alert_sent,omitempty"`
	ReminderSent               bool `json:"reminder_sent,omitempty"`
	AfkMessageSent             bool `json:"afk_message_sent,omitempty"`
	ExtendedAfkMessageSent     bool `json:"extended_afk_message_sent,omitempty"`
	NoAttachmentReminderSent   bool `json:"no_attachment_reminder_sent,omitempty"`
	OnlineReplySent            bool `json:"online_reply_sent,omitempty"`
	ThirdPartyReplySent        bool `json:"third_party_reply_sent,omitempty"`
	ReleaseReplySent           bool `json:"release_reply_sent,omitempty"`
	OxxoRedirectSent           bool `json:"oxxo_redirect_sent,omitempty"`

	OCRIdentifiedBank      string                        `json:"ocr_identified_bank,omitempty"`
	ThreadID               string                        `json:"thread_id,omitempty"`
	LastProcessedMessageID string                        `json:"last_processed_message_id,omitempty"`
	ProcessedAttachments   map[string]AttachmentProgress `json:"processed_attachments,omitempty"`
	AlertedImageHashes     []string                      `json:"alerted_image_hashes,omitempty"`
}

// NewTradeState creates an empty state seeded from a snapshot
func NewTradeState(snapshot TradeSnapshot) TradeState {
	return TradeState{TradeSnapshot: snapshot}
}

// Clone returns a deep copy so callers can mutate without aliasing the prior state
func (s TradeState) Clone() TradeState {
	out := s
	out.StatusHistory = append([]string(nil), s.StatusHistory...)
	out.AlertedImageHashes = append([]string(nil), s.AlertedImageHashes...)
	if s.ProcessedAttachments != nil {
		out.ProcessedAttachments = make(map[string]AttachmentProgress, len(s.ProcessedAttachments))
		for k, v := range s.ProcessedAttachments {
			out.ProcessedAttachments[k] = v
		}
	}
	out.FirstSeenUTC = cloneTime(s.FirstSeenUTC)
	out.PaidTimestamp = cloneTime(s.PaidTimestamp)
	out.LastBuyerTS = cloneTime(s.LastBuyerTS)
	out.CompletedAt = cloneTime(s.CompletedAt)
	return out
}

// HasStatus reports whether a status was ever observed
func (s TradeState) HasStatus(status string) bool {
	for _, st := range s.StatusHistory {
		if st == status {
			return true
		}
	}
	return false
}

// RecordStatus appends a status once. It returns true if the status is new.
func (s *TradeState) RecordStatus(status string) bool {
	if status == "" || s.HasStatus(status) {
		return false
	}
	s.StatusHistory = append(s.StatusHistory, status)
	return true
}

// HasAlertedImageHash reports whether a duplicate-receipt alert already fired for a hash
func (s TradeState) HasAlertedImageHash(hash string) bool {
	for _, h := range s.AlertedImageHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// MergeSnapshot overwrites the last-seen snapshot fields
func (s *TradeState) MergeSnapshot(snapshot TradeSnapshot) {
	s.TradeSnapshot = snapshot
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// MessageType is the kind of a trade chat message
type MessageType string

const (
	MessageTypeMessage MessageType = "msg"
	MessageTypeTrade   MessageType = "trade_info"
	MessageTypeBank    MessageType = "bank-account-instruction"
)

// ChatMessage is one entry of a trade chat
type ChatMessage struct {
	ID        string
	Author    string
	Type      MessageType
	Text      string
	FileURLs  []string
	Timestamp time.Time
}

// HasAttachment reports whether the message carries uploaded files
func (m ChatMessage) HasAttachment() bool {
	return len(m.FileURLs) > 0
}

// IsSystem reports whether the message was generated by the marketplace
func (m ChatMessage) IsSystem() bool {
	return m.Author == ""
}

// WalletBalance is the balance of one currency in an account wallet
type WalletBalance struct {
	Currency string
	Balance  decimal.Decimal
}
