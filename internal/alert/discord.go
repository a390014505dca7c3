package alert

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

const (
	discordFooter            = "Trade Monitor"
	discordThreadArchiveMins = 1440

	colorInfo    = 0x3498db
	colorSuccess = 0x2ecc71
	colorWarning = 0xf1c40f
	colorError   = 0xe74c3c
	colorNoones  = 0x1abc9c
	colorPaxful  = 0x27ae60
)

// DiscordConfig holds Discord webhook and bot configuration
type DiscordConfig struct {
	APIURL             string
	TradesWebhook      string
	ChatWebhook        string
	AttachmentsWebhook string
	AlertsWebhook      string
	BotToken           string
	ThreadChannelID    string
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Image       *discordEmbedImage  `json:"image,omitempty"`
	Footer      discordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbedImage struct {
	URL string `json:"url"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordThreadRequest struct {
	Name                string `json:"name"`
	AutoArchiveDuration int    `json:"auto_archive_duration"`
}

type discordIDResponse struct {
	ID string `json:"id"`
}

type discordSink struct {
	httpClient adapter.HTTPClient
	fs         adapter.FileSystem
	json       adapter.JSON
	config     DiscordConfig
}

// NewDiscordSink creates a sink posting embeds to Discord webhooks.
// Threads are created through the bot API when a bot token and channel are set.
func NewDiscordSink(httpClient adapter.HTTPClient, fs adapter.FileSystem, json adapter.JSON, config DiscordConfig) Sink {
	return &discordSink{
		httpClient: httpClient,
		fs:         fs,
		json:       json,
		config:     config,
	}
}

func (d *discordSink) Name() string {
	return "discord"
}

func (d *discordSink) Send(ctx context.Context, a Alert) error {
	webhook := d.webhookFor(a.Kind)
	if webhook == "" {
		logger.DebugCtx(ctx, "No discord webhook for alert kind", zap.String("kind", string(a.Kind)))
		return nil
	}
	if a.ThreadID != "" && (a.Kind == KindChatMessage || a.Kind == KindAttachment) {
		webhook = withQuery(webhook, "thread_id", a.ThreadID)
	}

	embed := d.embed(a)
	if a.ImagePath == "" {
		if _, err := d.httpClient.PostJSON(ctx, webhook, nil, discordPayload{Embeds: []discordEmbed{embed}}); err != nil {
			return fmt.Errorf("failed to post discord embed: %w", err)
		}
		return nil
	}
	return d.sendWithImage(ctx, webhook, embed, a.ImagePath)
}

func (d *discordSink) OpenThread(ctx context.Context, a Alert) (string, error) {
	if d.config.BotToken == "" || d.config.ThreadChannelID == "" {
		return "", nil
	}
	headers := map[string]string{"Authorization": "Bot " + d.config.BotToken}
	channelURL := fmt.Sprintf("%s/channels/%s/messages", d.config.APIURL, d.config.ThreadChannelID)

	body, err := d.httpClient.PostJSON(ctx, channelURL, headers, discordPayload{Embeds: []discordEmbed{d.embed(a)}})
	if err != nil {
		return "", fmt.Errorf("failed to post thread starter message: %w", err)
	}
	var msg discordIDResponse
	if err := d.json.Unmarshal(body, &msg); err != nil || msg.ID == "" {
		return "", fmt.Errorf("failed to decode thread starter message: %v", err)
	}

	body, err = d.httpClient.PostJSON(ctx, fmt.Sprintf("%s/%s/threads", channelURL, msg.ID), headers, discordThreadRequest{
		Name:                "Trade Log: " + a.TradeHash,
		AutoArchiveDuration: discordThreadArchiveMins,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	var thread discordIDResponse
	if err := d.json.Unmarshal(body, &thread); err != nil || thread.ID == "" {
		return "", fmt.Errorf("failed to decode thread: %v", err)
	}

	logger.InfoCtx(ctx, "Created discord thread", zap.String("trade_hash", a.TradeHash), zap.String("thread_id", thread.ID))
	return thread.ID, nil
}

// sendWithImage uploads the image as a multipart attachment referenced by the embed
func (d *discordSink) sendWithImage(ctx context.Context, webhook string, embed discordEmbed, imagePath string) error {
	data, err := d.fs.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read alert image: %w", err)
	}
	name := filepath.Base(imagePath)
	embed.Image = &discordEmbedImage{URL: "attachment://" + name}

	payload, err := d.json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("failed to encode discord payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("failed to write payload field: %w", err)
	}
	part, err := w.CreateFormFile("files[0]", name)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	if _, err := d.httpClient.Post(ctx, webhook, nil, w.FormDataContentType(), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to post discord image: %w", err)
	}
	return nil
}

func (d *discordSink) webhookFor(kind Kind) string {
	var webhook string
	switch kind {
	case KindNewTrade, KindStatusChange:
		webhook = d.config.TradesWebhook
	case KindChatMessage:
		webhook = d.config.ChatWebhook
	case KindAttachment, KindDuplicateReceipt:
		webhook = d.config.AttachmentsWebhook
	}
	if webhook == "" {
		webhook = d.config.AlertsWebhook
	}
	return webhook
}

func (d *discordSink) embed(a Alert) discordEmbed {
	e := discordEmbed{
		Title:       a.Title,
		Description: a.Message,
		Color:       color(a),
		Footer:      discordEmbedFooter{Text: discordFooter + " · " + a.ID},
	}
	if !a.Timestamp.IsZero() {
		e.Timestamp = a.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
	}
	if a.TradeHash != "" {
		e.Fields = append(e.Fields, discordEmbedField{Name: "Trade Hash", Value: "`" + a.TradeHash + "`", Inline: true})
	}
	if a.Owner != "" {
		e.Fields = append(e.Fields, discordEmbedField{Name: "Account", Value: a.Owner, Inline: true})
	}
	for _, f := range a.Fields {
		e.Fields = append(e.Fields, discordEmbedField{Name: f.Name, Value: f.Value})
	}
	return e
}

func color(a Alert) int {
	switch a.Level {
	case LevelSuccess:
		return colorSuccess
	case LevelWarning:
		return colorWarning
	case LevelError:
		return colorError
	}
	switch a.Platform {
	case domain.PlatformNoones:
		return colorNoones
	case domain.PlatformPaxful:
		return colorPaxful
	}
	return colorInfo
}

func withQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
