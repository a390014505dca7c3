package alert

import (
	"context"
	"time"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

// Kind identifies what an alert is about
type Kind string

const (
	KindNewTrade         Kind = "new_trade"
	KindStatusChange     Kind = "status_change"
	KindChatMessage      Kind = "chat_message"
	KindAttachment       Kind = "attachment"
	KindAmountValidation Kind = "amount_validation"
	KindNameValidation   Kind = "name_validation"
	KindEmailValidation  Kind = "email_validation"
	KindDuplicateReceipt Kind = "duplicate_receipt"
	KindReminder         Kind = "reminder"
	KindLowBalance       Kind = "low_balance"
)

// Level is the severity of an alert
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Field is one labelled value shown with an alert
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Alert is a notification for operator channels
type Alert struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Level     Level           `json:"level"`
	Title     string          `json:"title"`
	Message   string          `json:"message,omitempty"`
	Owner     string          `json:"owner,omitempty"`
	Platform  domain.Platform `json:"platform,omitempty"`
	TradeHash string          `json:"trade_hash,omitempty"`
	ThreadID  string          `json:"thread_id,omitempty"`
	ImagePath string          `json:"image_path,omitempty"`
	Fields    []Field         `json:"fields,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ForTrade returns an alert of kind scoped to a trade
func ForTrade(kind Kind, level Level, s domain.TradeSnapshot) Alert {
	return Alert{
		Kind:      kind,
		Level:     level,
		Owner:     s.OwnerUsername,
		Platform:  s.Platform,
		TradeHash: s.TradeHash,
	}
}

// WithField appends a labelled value and returns the alert
func (a Alert) WithField(name, value string) Alert {
	a.Fields = append(append([]Field(nil), a.Fields...), Field{Name: name, Value: value})
	return a
}

// Dispatcher delivers alerts to every configured operator channel
//
//go:generate mockgen -source=alert.go -destination=../mocks/alert.go -package=mocks -mock_names=Dispatcher=MockAlertDispatcher,Sink=MockAlertSink
type Dispatcher interface {
	// Dispatch delivers an alert. It fails only when no channel accepted it.
	Dispatch(ctx context.Context, a Alert) error

	// OpenThread creates a discussion thread for a trade and returns its id.
	// An empty id with a nil error means no channel supports threads.
	OpenThread(ctx context.Context, a Alert) (string, error)
}

// Sink is one operator channel
type Sink interface {
	Name() string
	Send(ctx context.Context, a Alert) error
}

// ThreadOpener is implemented by sinks that support per-trade threads
type ThreadOpener interface {
	OpenThread(ctx context.Context, a Alert) (string, error)
}
