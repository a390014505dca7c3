package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/email"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/marketplace"
	"github.com/jinjernot/wg-sub000/internal/messages"
	"github.com/jinjernot/wg-sub000/internal/ocr"
	"github.com/jinjernot/wg-sub000/internal/payment"
)

// EffectKind is the kind of a side effect performed while processing a trade
type EffectKind string

const (
	EffectMessage EffectKind = "message"
	EffectAlert   EffectKind = "alert"
	EffectThread  EffectKind = "thread"
)

// SideEffect is one acknowledged external call
type SideEffect struct {
	Kind EffectKind
	Name string
}

// Result is the outcome of processing one snapshot
type Result struct {
	State   domain.TradeState
	Effects []SideEffect
}

// Count returns the number of effects of kind named name
func (r Result) Count(kind EffectKind, name string) int {
	n := 0
	for _, e := range r.Effects {
		if e.Kind == kind && e.Name == name {
			n++
		}
	}
	return n
}

// Config holds the state machine timings and keyword lists
type Config struct {
	PaymentReminderDelay time.Duration
	EmailCheckWindow     time.Duration
	AfkMessageThreshold  int
	AfkTimeThreshold     time.Duration
	ExtendedAfkDelay     time.Duration
	NoAttachmentDelay    time.Duration
	OnlineKeywords       []string
	ThirdPartyKeywords   []string
	ReleaseKeywords      []string
	OxxoKeywords         []string
	// Banks maps bank name -> keywords found on its receipts
	Banks map[string][]string
	// OwnerUsernames are the usernames of every configured account
	OwnerUsernames []string
}

// DefaultConfig returns the production timings
func DefaultConfig() Config {
	return Config{
		PaymentReminderDelay: 15 * time.Minute,
		EmailCheckWindow:     3 * time.Hour,
		AfkMessageThreshold:  3,
		AfkTimeThreshold:     5 * time.Minute,
		ExtendedAfkDelay:     15 * time.Minute,
		NoAttachmentDelay:    120 * time.Second,
	}
}

// Dependencies are the collaborators invoked by the processor.
// OCR, Archive and Email may be nil to disable the corresponding steps.
type Dependencies struct {
	Marketplace marketplace.Client
	Alerts      alert.Dispatcher
	OCR         ocr.Engine
	Archive     ocr.Archive
	Email       email.Validator
	Payments    payment.Directory
	Composer    *messages.Composer
	Clock       adapter.Clock
}

// Processor advances one trade's persisted state from a fresh snapshot
//
//go:generate mockgen -source=processor.go -destination=../mocks/trade_processor.go -package=mocks -mock_names=Processor=MockTradeProcessor
type Processor interface {
	// Process applies snapshot to prior (nil for an unseen trade) and returns the
	// new state along with the side effects that were acknowledged
	Process(ctx context.Context, account domain.Account, snapshot domain.TradeSnapshot, prior *domain.TradeState) (Result, error)
}

type processor struct {
	deps   Dependencies
	config Config
}

// NewProcessor creates a trade processor
func NewProcessor(deps Dependencies, config Config) Processor {
	return &processor{deps: deps, config: config}
}

// run carries the per-call state. Nothing outlives a single Process call.
type run struct {
	*processor
	ctx     context.Context
	account domain.Account
	state   *domain.TradeState
	now     time.Time
	effects []SideEffect

	chat        []domain.ChatMessage
	chatErr     error
	chatFetched bool
}

// Process implements Processor
func (p *processor) Process(ctx context.Context, account domain.Account, snapshot domain.TradeSnapshot, prior *domain.TradeState) (Result, error) {
	var state domain.TradeState
	if prior != nil {
		state = prior.Clone()
		state.MergeSnapshot(snapshot)
	} else {
		state = domain.NewTradeState(snapshot)
	}

	if snapshot.TradeStatus == domain.StatusDisputeOpen || state.HasStatus(domain.StatusDisputeOpen) {
		now := p.deps.Clock.Now()
		if state.FirstSeenUTC == nil {
			state.FirstSeenUTC = &now
		}
		state.RecordStatus(snapshot.TradeStatus)
		logger.DebugCtx(ctx, "Trade is or was in dispute, skipping automation",
			logger.TradeFields(snapshot.TradeHash, snapshot.OwnerUsername, string(snapshot.Platform))...)
		return Result{State: state}, nil
	}

	if snapshot.TradeHash == "" || snapshot.OwnerUsername == "" || snapshot.TradeStatus == "" {
		return Result{}, fmt.Errorf("%w: trade_hash=%q owner_username=%q trade_status=%q",
			domain.ErrInvalidSnapshot, snapshot.TradeHash, snapshot.OwnerUsername, snapshot.TradeStatus)
	}

	r := &run{
		processor: p,
		ctx:       logger.WithFields(ctx, logger.TradeFields(snapshot.TradeHash, snapshot.OwnerUsername, string(snapshot.Platform))...),
		account:   account,
		state:     &state,
		now:       p.deps.Clock.Now(),
	}

	r.handleNewTrade()
	r.handleStatusChange()
	r.checkEmail()
	r.handleChat()
	r.checkAfk()
	r.checkInactivity()
	r.checkMissingAttachment()

	return Result{State: state, Effects: r.effects}, nil
}

func (r *run) handleNewTrade() {
	s := r.state
	if s.FirstSeenUTC == nil {
		logger.InfoCtx(r.ctx, "New trade detected", zap.String("status", s.TradeStatus))

		a := alert.ForTrade(alert.KindNewTrade, alert.LevelInfo, s.TradeSnapshot)
		a.Title = "New trade"
		a = a.WithField("Buyer", s.ResponderUsername).
			WithField("Amount", formatAmount(s.TradeSnapshot)).
			WithField("Method", s.PaymentMethodSlug)
		r.dispatch(a)

		if s.ThreadID == "" {
			thread := alert.ForTrade(alert.KindNewTrade, alert.LevelInfo, s.TradeSnapshot)
			thread.Title = "Trade Log: " + s.TradeHash
			id, err := r.deps.Alerts.OpenThread(r.ctx, thread)
			if err != nil {
				logger.WarnCtx(r.ctx, "Failed to open trade thread", zap.Error(err))
			} else if id != "" {
				s.ThreadID = id
				r.effects = append(r.effects, SideEffect{Kind: EffectThread, Name: id})
			}
		}

		now := r.now
		s.FirstSeenUTC = &now
		s.RecordStatus(s.TradeStatus)
	}

	if !isOpen(s.TradeStatus) {
		return
	}

	if !s.WelcomeMessageSent {
		if r.send("welcome", r.deps.Composer.Welcome(s.TradeSnapshot, r.now)) {
			s.WelcomeMessageSent = true
		}
	}

	if !s.PaymentDetailsSent && domain.RequiresPaymentProof(s.PaymentMethodSlug) {
		acct, err := r.deps.Payments.Selected(s.OwnerUsername, s.PaymentMethodSlug)
		if err != nil {
			logger.WarnCtx(r.ctx, "No payment account to send details for", zap.Error(err))
			return
		}
		if r.send("payment_details", r.deps.Composer.PaymentDetails(s.TradeSnapshot, acct)) {
			s.PaymentDetailsSent = true
		}
	}
}

func (r *run) handleStatusChange() {
	s := r.state
	if !s.HasStatus(s.TradeStatus) {
		previous := ""
		if n := len(s.StatusHistory); n > 0 {
			previous = s.StatusHistory[n-1]
		}
		logger.InfoCtx(r.ctx, "Trade status changed",
			zap.String("from", previous),
			zap.String("to", s.TradeStatus))

		a := alert.ForTrade(alert.KindStatusChange, levelForStatus(s.TradeStatus), s.TradeSnapshot)
		a.Title = "Status changed: " + s.TradeStatus
		a.ThreadID = s.ThreadID
		if previous != "" {
			a = a.WithField("Previous", previous)
		}
		r.dispatch(a)

		s.RecordStatus(s.TradeStatus)
	}

	if s.TradeStatus == domain.StatusPaid && s.PaidTimestamp == nil {
		now := r.now
		s.PaidTimestamp = &now
	}

	if domain.IsCompletedStatus(s.TradeStatus) && !s.CompletionMessageSent {
		if r.sendKey(messages.KeyCompletion) {
			s.CompletionMessageSent = true
		}
	}

	if s.TradeStatus == domain.StatusPaid && !s.PaymentReceivedMessageSent {
		chat, err := r.chatMessages()
		if err != nil {
			return
		}
		if hasBuyerAttachment(chat, r.isOwner) {
			logger.DebugCtx(r.ctx, "Attachment already in chat, skipping payment received message")
			s.PaymentReceivedMessageSent = true
			return
		}
		if r.sendKey(messages.KeyPaymentReceived) {
			s.PaymentReceivedMessageSent = true
		}
	}
}

func (r *run) checkEmail() {
	s := r.state
	if r.deps.Email == nil {
		return
	}

	if s.TradeStatus == domain.StatusPaid &&
		domain.RequiresPaymentProof(s.PaymentMethodSlug) &&
		!s.EmailVerified && !s.EmailCheckTimedOut &&
		s.PaidTimestamp != nil {

		credentialID := ""
		if acct, err := r.deps.Payments.Selected(s.OwnerUsername, s.PaymentMethodSlug); err != nil {
			logger.WarnCtx(r.ctx, "No payment account for email validation", zap.Error(err))
		} else {
			credentialID = acct.Name
		}

		result, err := r.deps.Email.CheckForPayment(r.ctx, credentialID, *s, *s.PaidTimestamp)
		if err != nil {
			logger.WarnCtx(r.ctx, "Email validation failed", zap.Error(err), zap.String("credential", credentialID))
		}

		switch {
		case err == nil && result.Matched:
			logger.InfoCtx(r.ctx, "Payment confirmed by email", zap.String("subject", result.Subject))
			s.EmailVerified = true
		case r.now.Sub(*s.PaidTimestamp) > r.config.EmailCheckWindow:
			logger.WarnCtx(r.ctx, "No payment email within window", zap.Duration("window", r.config.EmailCheckWindow))
			s.EmailCheckTimedOut = true
		}
	}

	if (s.EmailVerified || s.EmailCheckTimedOut) && !s.EmailValidationAlertSent {
		var a alert.Alert
		if s.EmailVerified {
			a = alert.ForTrade(alert.KindEmailValidation, alert.LevelSuccess, s.TradeSnapshot)
			a.Title = "Payment email found"
		} else {
			a = alert.ForTrade(alert.KindEmailValidation, alert.LevelError, s.TradeSnapshot)
			a.Title = "Payment email not found"
			a.Message = fmt.Sprintf("No bank notification within %s of payment", r.config.EmailCheckWindow)
		}
		a.ThreadID = s.ThreadID
		a = a.WithField("Amount", formatAmount(s.TradeSnapshot))
		if r.dispatch(a) {
			s.EmailValidationAlertSent = true
		}
	}
}

func (r *run) checkInactivity() {
	s := r.state
	if !domain.IsActiveStatus(s.TradeStatus) || s.ReminderSent {
		return
	}

	ref := s.StartDate
	if s.LastBuyerTS != nil && s.LastBuyerTS.After(ref) {
		ref = *s.LastBuyerTS
	}
	if ref.IsZero() || r.now.Sub(ref) <= r.config.PaymentReminderDelay {
		return
	}

	if !r.sendKey(messages.KeyReminder) {
		return
	}
	s.ReminderSent = true

	a := alert.ForTrade(alert.KindReminder, alert.LevelWarning, s.TradeSnapshot)
	a.Title = "Payment reminder sent"
	a.ThreadID = s.ThreadID
	a = a.WithField("Inactive for", r.now.Sub(ref).Truncate(time.Second).String())
	r.dispatch(a)
}

func (r *run) checkMissingAttachment() {
	s := r.state
	if s.TradeStatus != domain.StatusPaid || s.NoAttachmentReminderSent || s.PaidTimestamp == nil {
		return
	}
	if r.now.Sub(*s.PaidTimestamp) <= r.config.NoAttachmentDelay {
		return
	}

	chat, err := r.chatMessages()
	if err != nil || hasBuyerAttachment(chat, r.isOwner) {
		return
	}

	if r.sendKey(messages.KeyNoAttachment) {
		s.NoAttachmentReminderSent = true
	}
}

// chatMessages fetches the chat at most once per run
func (r *run) chatMessages() ([]domain.ChatMessage, error) {
	if !r.chatFetched {
		r.chatFetched = true
		r.chat, r.chatErr = r.deps.Marketplace.GetChatMessages(r.ctx, r.account, r.state.TradeHash)
		if r.chatErr != nil {
			logger.WarnCtx(r.ctx, "Failed to fetch chat messages", zap.Error(r.chatErr))
		}
	}
	return r.chat, r.chatErr
}

// send posts a chat message and reports whether it was acknowledged
func (r *run) send(name, text string) bool {
	if text == "" {
		logger.DebugCtx(r.ctx, "No template for message", zap.String("message", name))
		return false
	}
	if err := r.deps.Marketplace.SendChatMessage(r.ctx, r.account, r.state.TradeHash, text); err != nil {
		logger.WarnCtx(r.ctx, "Failed to send chat message", zap.String("message", name), zap.Error(err))
		return false
	}
	logger.InfoCtx(r.ctx, "Sent chat message", zap.String("message", name))
	r.effects = append(r.effects, SideEffect{Kind: EffectMessage, Name: name})
	return true
}

func (r *run) sendKey(key messages.Key) bool {
	return r.send(string(key), r.deps.Composer.Text(key, r.state.TradeSnapshot))
}

// dispatch delivers an alert and reports whether any channel accepted it
func (r *run) dispatch(a alert.Alert) bool {
	if err := r.deps.Alerts.Dispatch(r.ctx, a); err != nil {
		logger.WarnCtx(r.ctx, "Failed to dispatch alert", zap.String("kind", string(a.Kind)), zap.Error(err))
		return false
	}
	r.effects = append(r.effects, SideEffect{Kind: EffectAlert, Name: string(a.Kind)})
	return true
}

// isOwner reports whether author is the trade owner or any configured account
func (r *run) isOwner(author string) bool {
	if author == "" {
		return false
	}
	if strings.EqualFold(author, r.state.OwnerUsername) || strings.EqualFold(author, r.account.Username) {
		return true
	}
	for _, u := range r.config.OwnerUsernames {
		if strings.EqualFold(author, u) {
			return true
		}
	}
	return false
}

func isOpen(status string) bool {
	return !domain.IsCompletedStatus(status) && status != domain.StatusCancelled
}

func hasBuyerAttachment(chat []domain.ChatMessage, isOwner func(string) bool) bool {
	for _, m := range chat {
		if m.HasAttachment() && !isOwner(m.Author) {
			return true
		}
	}
	return false
}

func levelForStatus(status string) alert.Level {
	switch {
	case domain.IsCompletedStatus(status):
		return alert.LevelSuccess
	case status == domain.StatusCancelled:
		return alert.LevelError
	case status == domain.StatusPaid:
		return alert.LevelWarning
	}
	return alert.LevelInfo
}

func formatAmount(s domain.TradeSnapshot) string {
	return s.FiatAmountRequested.StringFixed(2) + " " + s.FiatCurrencyCode
}
