package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/ocr"
	"github.com/jinjernot/wg-sub000/internal/payment"
)

const receiptURL = "https://noones.test/trade/attachment/Rk9PQkFS?size=2"

func buyerMessage(id, text string, age time.Duration) domain.ChatMessage {
	return domain.ChatMessage{ID: id, Author: "buyer1", Type: domain.MessageTypeMessage, Text: text, Timestamp: testNow.Add(-age)}
}

func TestProcess_ChatRelayAndKeywordReply(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-chat", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)

	chat := []domain.ChatMessage{
		{ID: "1", Type: domain.MessageTypeTrade, Text: "Trade started", Timestamp: testNow.Add(-3 * time.Minute)},
		{ID: "2", Author: "seller1", Type: domain.MessageTypeMessage, Text: "Hola", Timestamp: testNow.Add(-2 * time.Minute)},
		buyerMessage("3", "Are you ONLINE?", time.Minute),
	}

	sent := m.recordSends("hash-chat")
	alerts := m.recordAlerts()
	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-chat").Return(chat, nil).Times(2)

	p := m.processor()
	first, err := p.Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	relayed := alertsOfKind(*alerts, alert.KindChatMessage)
	require.Len(t, relayed, 1)
	assert.Equal(t, "Are you ONLINE?", relayed[0].Message)
	assert.Equal(t, "thread-1", relayed[0].ThreadID)

	assert.Equal(t, []string{"online reply"}, *sent)
	assert.True(t, first.State.OnlineReplySent)
	assert.Equal(t, "3", first.State.LastProcessedMessageID)
	require.NotNil(t, first.State.LastBuyerTS)
	assert.Equal(t, testNow.Add(-time.Minute), *first.State.LastBuyerTS)

	second, err := p.Process(context.Background(), testAccount, snap, &first.State)
	require.NoError(t, err)
	assert.Len(t, alertsOfKind(*alerts, alert.KindChatMessage), 1)
	assert.Len(t, *sent, 1)
	assert.Empty(t, second.Effects)
}

func TestProcess_KeywordReplyFailureKeepsCursor(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-chat", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)
	prior.LastProcessedMessageID = "1"

	chat := []domain.ChatMessage{
		buyerMessage("1", "hola", 3*time.Minute),
		buyerMessage("2", "online?", time.Minute),
	}

	m.recordAlerts()
	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-chat").Return(chat, nil)
	m.market.EXPECT().SendChatMessage(gomock.Any(), testAccount, "hash-chat", "online reply").
		Return(errors.New("timeout"))

	result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	assert.False(t, result.State.OnlineReplySent)
	assert.Equal(t, "1", result.State.LastProcessedMessageID)
}

func TestProcess_OxxoRedirectOnlyForBankTransfers(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   []string
	}{
		{name: "bank transfer", method: domain.MethodBankTransfer, want: []string{"oxxo redirect"}},
		{name: "oxxo", method: domain.MethodOXXO, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestProcessor(t)
			snap := snapshot("hash-oxxo", domain.StatusActiveFunded, tt.method)
			prior := seenState(snap, domain.StatusActiveFunded)

			sent := m.recordSends("hash-oxxo")
			m.recordAlerts()
			m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-oxxo").
				Return([]domain.ChatMessage{buyerMessage("1", "puedo pagar en OXXO?", time.Minute)}, nil)

			result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
			require.NoError(t, err)

			assert.Equal(t, tt.want, *sent)
			assert.Equal(t, tt.want != nil, result.State.OxxoRedirectSent)
		})
	}
}

func TestProcess_UnknownCursorSkipsHistory(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-chat", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)
	prior.LastProcessedMessageID = "gone"

	chat := []domain.ChatMessage{
		buyerMessage("7", "online?", 2*time.Minute),
		buyerMessage("8", "hola", time.Minute),
	}

	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-chat").Return(chat, nil)

	result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	assert.Equal(t, "8", result.State.LastProcessedMessageID)
	assert.False(t, result.State.OnlineReplySent)
	assert.Empty(t, result.Effects)
}

func TestProcess_AfkMessages(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-afk", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)
	prior.LastProcessedMessageID = "4"
	prior.ReminderSent = true

	chat := []domain.ChatMessage{
		{ID: "1", Author: "seller1", Type: domain.MessageTypeMessage, Text: "Hola", Timestamp: testNow.Add(-30 * time.Minute)},
		buyerMessage("2", "hola", 20*time.Minute),
		buyerMessage("3", "hay alguien", 18*time.Minute),
		buyerMessage("4", "???", 16*time.Minute),
	}

	sent := m.recordSends("hash-afk")
	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-afk").Return(chat, nil).Times(2)

	p := m.processor()
	first, err := p.Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	assert.True(t, first.State.AfkMessageSent)
	assert.True(t, first.State.ExtendedAfkMessageSent)
	assert.Equal(t, []string{"afk", "extended afk"}, *sent)

	_, err = p.Process(context.Background(), testAccount, snap, &first.State)
	require.NoError(t, err)
	assert.Len(t, *sent, 2)
}

func TestProcess_AfkNotBeforeThreshold(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-afk", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)
	prior.LastProcessedMessageID = "3"

	chat := []domain.ChatMessage{
		buyerMessage("1", "hola", 4*time.Minute),
		buyerMessage("2", "hay alguien", 3*time.Minute),
		buyerMessage("3", "???", time.Minute),
	}

	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-afk").Return(chat, nil)

	result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	assert.False(t, result.State.AfkMessageSent)
	assert.Empty(t, result.Effects)
}

func TestProcess_AttachmentPipeline(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-att", domain.StatusPaid, "paypal")
	prior := seenState(snap, domain.StatusNew, domain.StatusPaid)
	paidAt := testNow.Add(-time.Minute)
	prior.PaidTimestamp = &paidAt
	prior.PaymentReceivedMessageSent = true

	chat := []domain.ChatMessage{
		{ID: "1", Author: "buyer1", Type: domain.MessageTypeMessage, FileURLs: []string{receiptURL}, Timestamp: testNow.Add(-30 * time.Second)},
	}
	stored := ocr.StoredAttachment{Path: "/data/attachments/seller1/hash-att_1.jpg", Hash: "sha-1", MimeType: "image/jpeg", IsImage: true}

	sent := m.recordSends("hash-att")
	alerts := m.recordAlerts()
	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-att").Return(chat, nil).Times(2)
	m.market.EXPECT().DownloadAttachment(gomock.Any(), testAccount, receiptURL).Return([]byte("jpeg"), nil).Times(1)
	m.archive.EXPECT().SaveAttachment(gomock.Any(), "seller1", "hash-att", []byte("jpeg")).Return(stored, nil).Times(1)
	m.archive.EXPECT().CheckDuplicate(gomock.Any(), "sha-1", "hash-att", "seller1").Return(nil, nil).Times(1)
	m.ocr.EXPECT().ExtractText(gomock.Any(), stored.Path).
		Return("BBVA\nTransferencia exitosa\nMonto $1,500.00\nBeneficiario JUAN PEREZ", nil).Times(1)
	m.archive.EXPECT().RecordOCR(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r ocr.Record) error {
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, "BBVA", r.Bank)
			assert.Equal(t, "sha-1", r.ImageHash)
			return nil
		}).Times(1)
	m.payments.EXPECT().Selected("seller1", "paypal").
		Return(payment.Account{Name: "main", NameKeywords: []string{"juan perez"}}, nil).Times(1)

	p := m.processor()
	first, err := p.Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	state := first.State
	assert.Equal(t, []string{"checking receipt"}, *sent)
	assert.True(t, state.AttachmentMessageSent)
	assert.Equal(t, "BBVA", state.OCRIdentifiedBank)
	assert.True(t, state.AmountValidationAlertSent)
	assert.True(t, state.NameValidationAlertSent)
	assert.Equal(t, domain.AttachmentProgress{
		Downloaded: true,
		AlertsSent: true,
		ImageHash:  "sha-1",
		MimeType:   "image/jpeg",
		IsImage:    true,
		Path:       stored.Path,
	}, state.ProcessedAttachments[receiptURL])

	attachments := alertsOfKind(*alerts, alert.KindAttachment)
	require.Len(t, attachments, 1)
	assert.Equal(t, stored.Path, attachments[0].ImagePath)

	amounts := alertsOfKind(*alerts, alert.KindAmountValidation)
	require.Len(t, amounts, 1)
	assert.Equal(t, alert.LevelSuccess, amounts[0].Level)

	names := alertsOfKind(*alerts, alert.KindNameValidation)
	require.Len(t, names, 1)
	assert.Equal(t, alert.LevelSuccess, names[0].Level)

	// nothing is downloaded, read or alerted twice
	second, err := p.Process(context.Background(), testAccount, snap, &state)
	require.NoError(t, err)
	assert.Empty(t, second.Effects)
}

func TestProcess_AttachmentAlertRetriedWithoutDownload(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-att", domain.StatusPaid, "paypal")
	prior := seenState(snap, domain.StatusNew, domain.StatusPaid)
	paidAt := testNow.Add(-time.Minute)
	prior.PaidTimestamp = &paidAt
	prior.PaymentReceivedMessageSent = true
	prior.AttachmentMessageSent = true

	chat := []domain.ChatMessage{
		{ID: "1", Author: "buyer1", Type: domain.MessageTypeMessage, FileURLs: []string{receiptURL}, Timestamp: testNow.Add(-30 * time.Second)},
	}
	stored := ocr.StoredAttachment{Path: "/data/attachments/seller1/hash-att_1.pdf", Hash: "sha-pdf", MimeType: "application/pdf"}

	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-att").Return(chat, nil).Times(2)
	m.market.EXPECT().DownloadAttachment(gomock.Any(), testAccount, receiptURL).Return([]byte("%PDF"), nil).Times(1)
	m.archive.EXPECT().SaveAttachment(gomock.Any(), "seller1", "hash-att", []byte("%PDF")).Return(stored, nil).Times(1)
	m.archive.EXPECT().CheckDuplicate(gomock.Any(), "sha-pdf", "hash-att", "seller1").Return(nil, nil).Times(2)
	m.alerts.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("discord down"))

	p := m.processor()
	first, err := p.Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	progress := first.State.ProcessedAttachments[receiptURL]
	assert.True(t, progress.Downloaded)
	assert.False(t, progress.AlertsSent)
	assert.Empty(t, first.Effects)

	alerts := m.recordAlerts()
	second, err := p.Process(context.Background(), testAccount, snap, &first.State)
	require.NoError(t, err)

	assert.True(t, second.State.ProcessedAttachments[receiptURL].AlertsSent)
	require.Len(t, *alerts, 1)
	assert.Equal(t, alert.KindAttachment, (*alerts)[0].Kind)
	assert.Empty(t, (*alerts)[0].ImagePath)
	assert.False(t, second.State.AmountValidationAlertSent)
}

func TestProcess_DuplicateReceipt(t *testing.T) {
	m := setupTestProcessor(t)
	m.deps.OCR = nil
	snap := snapshot("hash-dup", domain.StatusPaid, "paypal")
	prior := seenState(snap, domain.StatusNew, domain.StatusPaid)
	paidAt := testNow.Add(-time.Minute)
	prior.PaidTimestamp = &paidAt
	prior.PaymentReceivedMessageSent = true
	prior.AttachmentMessageSent = true

	secondURL := "https://noones.test/trade/attachment/QkFa?size=2"
	chat := []domain.ChatMessage{
		{ID: "1", Author: "buyer1", FileURLs: []string{receiptURL}, Timestamp: testNow.Add(-40 * time.Second)},
		{ID: "2", Author: "buyer1", FileURLs: []string{secondURL}, Timestamp: testNow.Add(-30 * time.Second)},
	}
	stored := ocr.StoredAttachment{Path: "/data/a.png", Hash: "sha-same", MimeType: "image/png", IsImage: true}
	other := &ocr.Receipt{ImageHash: "sha-same", TradeHash: "hash-other", Owner: "seller2"}

	alerts := m.recordAlerts()
	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-dup").Return(chat, nil)
	m.market.EXPECT().DownloadAttachment(gomock.Any(), testAccount, gomock.Any()).Return([]byte("png"), nil).Times(2)
	m.archive.EXPECT().SaveAttachment(gomock.Any(), "seller1", "hash-dup", []byte("png")).Return(stored, nil).Times(2)
	m.archive.EXPECT().CheckDuplicate(gomock.Any(), "sha-same", "hash-dup", "seller1").Return(other, nil).Times(2)
	m.archive.EXPECT().RecordOCR(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.payments.EXPECT().Selected("seller1", "paypal").Return(payment.Account{}, nil).AnyTimes()

	result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	duplicates := alertsOfKind(*alerts, alert.KindDuplicateReceipt)
	require.Len(t, duplicates, 1)
	assert.Equal(t, alert.LevelError, duplicates[0].Level)
	assert.Equal(t, []string{"sha-same"}, result.State.AlertedImageHashes)
	assert.Len(t, alertsOfKind(*alerts, alert.KindAttachment), 2)
	assert.Len(t, alertsOfKind(*alerts, alert.KindAmountValidation), 1)
}

func TestProcess_OwnerAttachmentIgnored(t *testing.T) {
	m := setupTestProcessor(t)
	snap := snapshot("hash-own", domain.StatusActiveFunded, "paypal")
	prior := seenState(snap, domain.StatusActiveFunded)

	chat := []domain.ChatMessage{
		{ID: "1", Author: "Seller2", FileURLs: []string{receiptURL}, Timestamp: testNow.Add(-time.Minute)},
	}

	m.market.EXPECT().GetChatMessages(gomock.Any(), testAccount, "hash-own").Return(chat, nil)

	result, err := m.processor().Process(context.Background(), testAccount, snap, prior)
	require.NoError(t, err)

	assert.Empty(t, result.Effects)
	assert.False(t, result.State.AttachmentMessageSent)
	assert.True(t, result.State.ProcessedAttachments[receiptURL].AlertsSent)
	assert.False(t, result.State.ProcessedAttachments[receiptURL].Downloaded)
}
