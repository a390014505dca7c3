package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/messages"
	"github.com/jinjernot/wg-sub000/internal/ocr"
)

// processAttachments handles every uploaded file in the chat whose alerts were
// not acknowledged yet. Progress is kept per file URL so a download is not
// repeated when only the alert failed.
func (r *run) processAttachments(chat []domain.ChatMessage) {
	s := r.state
	for _, m := range chat {
		for _, url := range m.FileURLs {
			progress, seen := s.ProcessedAttachments[url]
			if seen && progress.AlertsSent {
				continue
			}
			if s.ProcessedAttachments == nil {
				s.ProcessedAttachments = make(map[string]domain.AttachmentProgress)
			}

			if r.isOwner(m.Author) {
				s.ProcessedAttachments[url] = domain.AttachmentProgress{AlertsSent: true}
				continue
			}

			if !s.AttachmentMessageSent {
				if r.sendKey(messages.KeyAttachment) {
					s.AttachmentMessageSent = true
				}
			}

			progress, ok := r.storeAttachment(url, progress)
			s.ProcessedAttachments[url] = progress
			if !ok {
				continue
			}

			if r.analyzeAttachment(m, progress) {
				progress.AlertsSent = true
				s.ProcessedAttachments[url] = progress
			}
		}
	}
}

func (r *run) storeAttachment(url string, progress domain.AttachmentProgress) (domain.AttachmentProgress, bool) {
	if progress.Downloaded && progress.Path != "" {
		return progress, true
	}
	if r.deps.Archive == nil {
		return progress, true
	}

	data, err := r.deps.Marketplace.DownloadAttachment(r.ctx, r.account, url)
	if err != nil {
		logger.WarnCtx(r.ctx, "Failed to download attachment", zap.String("url", url), zap.Error(err))
		return progress, false
	}

	stored, err := r.deps.Archive.SaveAttachment(r.ctx, r.state.OwnerUsername, r.state.TradeHash, data)
	if err != nil {
		logger.ErrorCtx(r.ctx, err, zap.String("url", url))
		return progress, false
	}

	logger.InfoCtx(r.ctx, "Attachment stored",
		zap.String("path", stored.Path),
		zap.String("mime_type", stored.MimeType))

	return domain.AttachmentProgress{
		Downloaded: true,
		ImageHash:  stored.Hash,
		MimeType:   stored.MimeType,
		IsImage:    stored.IsImage,
		Path:       stored.Path,
	}, true
}

// analyzeAttachment runs the duplicate check, OCR and validations and reports
// whether the attachment alert was acknowledged
func (r *run) analyzeAttachment(m domain.ChatMessage, progress domain.AttachmentProgress) bool {
	s := r.state

	if r.deps.Archive != nil && progress.ImageHash != "" {
		r.checkDuplicate(progress)
	}

	text := ""
	if progress.IsImage && r.deps.OCR != nil {
		var err error
		text, err = r.deps.OCR.ExtractText(r.ctx, progress.Path)
		if err != nil {
			logger.WarnCtx(r.ctx, "OCR failed", zap.String("path", progress.Path), zap.Error(err))
			text = ""
		}
	}

	bank := ocr.IdentifyBank(text, r.config.Banks)
	if progress.IsImage && r.deps.Archive != nil {
		record := ocr.Record{
			ID:        uuid.New().String(),
			TradeHash: s.TradeHash,
			Owner:     s.OwnerUsername,
			ImagePath: progress.Path,
			ImageHash: progress.ImageHash,
			MimeType:  progress.MimeType,
			Bank:      bank,
			Text:      text,
			CreatedAt: r.now,
		}
		if err := r.deps.Archive.RecordOCR(r.ctx, record); err != nil {
			logger.WarnCtx(r.ctx, "Failed to record OCR audit entry", zap.Error(err))
		}
	}

	a := alert.ForTrade(alert.KindAttachment, alert.LevelInfo, s.TradeSnapshot)
	a.Title = "Attachment from " + m.Author
	a.ThreadID = s.ThreadID
	if progress.IsImage {
		a.ImagePath = progress.Path
	}
	a = a.WithField("Expected", formatAmount(s.TradeSnapshot))
	if bank != "" {
		a = a.WithField("Bank", bank)
	}
	if !r.dispatch(a) {
		return false
	}
	if bank != "" {
		s.OCRIdentifiedBank = bank
	}

	if !progress.IsImage {
		return true
	}

	if !s.AmountValidationAlertSent {
		found, ok := ocr.FindAmount(text, s.FiatAmountRequested)
		if r.dispatch(amountAlert(s, found, ok)) {
			s.AmountValidationAlertSent = true
		}
	}

	if !s.NameValidationAlertSent {
		keywords := r.nameKeywords()
		if len(keywords) > 0 {
			va := alert.ForTrade(alert.KindNameValidation, alert.LevelSuccess, s.TradeSnapshot)
			va.Title = "Payee name found on receipt"
			if !ocr.FindName(text, keywords) {
				va.Level = alert.LevelError
				va.Title = "Payee name not found on receipt"
			}
			va.ThreadID = s.ThreadID
			if r.dispatch(va) {
				s.NameValidationAlertSent = true
			}
		}
	}

	return true
}

func (r *run) checkDuplicate(progress domain.AttachmentProgress) {
	s := r.state
	prior, err := r.deps.Archive.CheckDuplicate(r.ctx, progress.ImageHash, s.TradeHash, s.OwnerUsername)
	if err != nil {
		logger.WarnCtx(r.ctx, "Failed to check receipt index", zap.Error(err))
		return
	}
	if prior == nil || s.HasAlertedImageHash(progress.ImageHash) {
		return
	}

	logger.WarnCtx(r.ctx, "Receipt already used on another trade", zap.String("other_trade", prior.TradeHash))
	a := alert.ForTrade(alert.KindDuplicateReceipt, alert.LevelError, s.TradeSnapshot)
	a.Title = "Duplicate receipt"
	a.Message = "This receipt was already submitted on trade " + prior.TradeHash
	a.ThreadID = s.ThreadID
	a.ImagePath = progress.Path
	a = a.WithField("Other trade", prior.TradeHash).
		WithField("Other owner", prior.Owner)
	if r.dispatch(a) {
		s.AlertedImageHashes = append(s.AlertedImageHashes, progress.ImageHash)
	}
}

func (r *run) nameKeywords() []string {
	acct, err := r.deps.Payments.Selected(r.state.OwnerUsername, r.state.PaymentMethodSlug)
	if err != nil {
		return nil
	}
	return acct.NameKeywords
}

func amountAlert(s *domain.TradeState, found decimal.Decimal, ok bool) alert.Alert {
	a := alert.ForTrade(alert.KindAmountValidation, alert.LevelSuccess, s.TradeSnapshot)
	a.ThreadID = s.ThreadID
	a = a.WithField("Expected", formatAmount(s.TradeSnapshot))
	switch {
	case ok && found.Equal(s.FiatAmountRequested):
		a.Title = "Receipt amount matches"
		a = a.WithField("Found", found.StringFixed(2))
	case ok:
		a.Level = alert.LevelError
		a.Title = "Receipt amount does not match"
		a = a.WithField("Found", found.StringFixed(2))
	default:
		a.Level = alert.LevelWarning
		a.Title = "No amount found on receipt"
	}
	return a
}
