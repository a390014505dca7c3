package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/messages"
)

type keywordReply struct {
	key      messages.Key
	keywords []string
	sent     *bool
	applies  bool
}

func (r *run) handleChat() {
	s := r.state
	chat, err := r.chatMessages()
	if err != nil || len(chat) == 0 {
		return
	}

	fresh := newMessages(chat, s.LastProcessedMessageID)

	for _, m := range fresh {
		if m.IsSystem() || r.isOwner(m.Author) {
			continue
		}
		if !m.HasAttachment() && m.Text != "" {
			a := alert.ForTrade(alert.KindChatMessage, alert.LevelInfo, s.TradeSnapshot)
			a.Title = "Message from " + m.Author
			a.Message = m.Text
			a.ThreadID = s.ThreadID
			r.dispatch(a)
		}
		ts := m.Timestamp
		if s.LastBuyerTS == nil || ts.After(*s.LastBuyerTS) {
			s.LastBuyerTS = &ts
		}
	}

	complete := r.replyToKeywords(fresh)
	r.processAttachments(chat)

	// a failed auto-reply keeps the cursor so the messages are looked at again
	if complete {
		s.LastProcessedMessageID = chat[len(chat)-1].ID
	}
}

// newMessages returns the messages after lastID. An unknown lastID means the
// chat was rewritten and nothing is treated as new.
func newMessages(chat []domain.ChatMessage, lastID string) []domain.ChatMessage {
	if lastID == "" {
		return chat
	}
	for i, m := range chat {
		if m.ID == lastID {
			return chat[i+1:]
		}
	}
	return nil
}

// replyToKeywords sends each keyword reply at most once. It returns false if
// a triggered reply could not be sent.
func (r *run) replyToKeywords(fresh []domain.ChatMessage) bool {
	s := r.state
	method := strings.ToLower(s.PaymentMethodSlug)
	bankTransfer := method == domain.MethodBankTransfer || method == domain.MethodSPEI || method == domain.MethodDomesticTransfer

	replies := []keywordReply{
		{key: messages.KeyOnlineReply, keywords: r.config.OnlineKeywords, sent: &s.OnlineReplySent, applies: true},
		{key: messages.KeyThirdPartyReply, keywords: r.config.ThirdPartyKeywords, sent: &s.ThirdPartyReplySent, applies: true},
		{key: messages.KeyReleaseReply, keywords: r.config.ReleaseKeywords, sent: &s.ReleaseReplySent, applies: true},
		{key: messages.KeyOxxoRedirect, keywords: r.config.OxxoKeywords, sent: &s.OxxoRedirectSent, applies: bankTransfer},
	}

	complete := true
	for _, reply := range replies {
		if *reply.sent || !reply.applies || len(reply.keywords) == 0 {
			continue
		}
		if !r.mentions(fresh, reply.keywords) {
			continue
		}
		if r.deps.Composer.Text(reply.key, s.TradeSnapshot) == "" {
			continue
		}
		logger.InfoCtx(r.ctx, "Keyword detected in buyer message", zap.String("reply", string(reply.key)))
		if r.sendKey(reply.key) {
			*reply.sent = true
		} else {
			complete = false
		}
	}
	return complete
}

func (r *run) mentions(msgs []domain.ChatMessage, keywords []string) bool {
	for _, m := range msgs {
		if m.IsSystem() || r.isOwner(m.Author) || m.Text == "" {
			continue
		}
		text := strings.ToLower(m.Text)
		for _, k := range keywords {
			if k != "" && strings.Contains(text, strings.ToLower(k)) {
				return true
			}
		}
	}
	return false
}

func (r *run) checkAfk() {
	s := r.state
	if !isOpen(s.TradeStatus) {
		return
	}
	chat, err := r.chatMessages()
	if err != nil {
		return
	}

	var conversation []domain.ChatMessage
	for _, m := range chat {
		if !m.IsSystem() {
			conversation = append(conversation, m)
		}
	}

	// trailing buyer messages with no owner reply after them
	waiting := 0
	for i := len(conversation) - 1; i >= 0 && !r.isOwner(conversation[i].Author); i-- {
		waiting++
	}

	if !s.AfkMessageSent && r.config.AfkMessageThreshold > 0 && waiting >= r.config.AfkMessageThreshold {
		first := conversation[len(conversation)-waiting]
		if r.now.Sub(first.Timestamp) > r.config.AfkTimeThreshold {
			logger.InfoCtx(r.ctx, "Buyer waiting without response", zap.Int("messages", waiting))
			if r.sendKey(messages.KeyAfk) {
				s.AfkMessageSent = true
			}
		}
	}

	if !s.AfkMessageSent || s.ExtendedAfkMessageSent {
		return
	}
	for i := len(conversation) - 1; i >= 0; i-- {
		if r.isOwner(conversation[i].Author) {
			continue
		}
		if r.now.Sub(conversation[i].Timestamp) > r.config.ExtendedAfkDelay {
			if r.sendKey(messages.KeyExtendedAfk) {
				s.ExtendedAfkMessageSent = true
			}
		}
		return
	}
}
