package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/jinjernot/wg-sub000/internal/retry"
)

const maxMessagesPerSearch = 5

// Criteria selects bank notification emails
type Criteria struct {
	From    string
	Subject string
	Since   time.Time
}

// Message is one email returned by a mailbox search
type Message struct {
	ID      string
	From    string
	Subject string
	Date    time.Time
	Body    string
}

// Mailbox searches one email account
//
//go:generate mockgen -source=mailbox.go -destination=../mocks/mailbox.go -package=mocks -mock_names=Mailbox=MockMailbox
type Mailbox interface {
	Search(ctx context.Context, criteria Criteria) ([]Message, error)
}

// MailboxConfig holds IMAP credentials
type MailboxConfig struct {
	Address  string
	Username string
	Password string
	Folder   string
	Timeout  time.Duration
	// Retry bounds reconnect attempts when the server cannot be reached
	Retry retry.Policy
}

type imapMailbox struct {
	config MailboxConfig
}

// NewIMAPMailbox creates a Mailbox backed by an IMAP over TLS server.
// A connection is opened per search.
func NewIMAPMailbox(config MailboxConfig) Mailbox {
	if config.Folder == "" {
		config.Folder = "INBOX"
	}
	return &imapMailbox{config: config}
}

func (m *imapMailbox) Search(ctx context.Context, criteria Criteria) ([]Message, error) {
	timeout := m.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	var c *client.Client
	err := retry.Do(ctx, "imap dial", m.config.Retry, func(context.Context) error {
		var err error
		c, err = client.DialWithDialerTLS(&net.Dialer{Timeout: timeout}, m.config.Address, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", m.config.Address, err)
	}
	c.Timeout = timeout
	defer func() { _ = c.Logout() }()

	if err := c.Login(m.config.Username, m.config.Password); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if _, err := c.Select(m.config.Folder, true); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", m.config.Folder, err)
	}

	search := imap.NewSearchCriteria()
	search.Since = criteria.Since
	if criteria.From != "" {
		search.Header.Add("From", criteria.From)
	}
	if criteria.Subject != "" {
		search.Header.Add("Subject", criteria.Subject)
	}
	uids, err := c.UidSearch(search)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > maxMessagesPerSearch {
		uids = uids[len(uids)-maxMessagesPerSearch:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	fetched := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, fetched)
	}()

	var messages []Message
	for msg := range fetched {
		out := Message{ID: fmt.Sprintf("%d", msg.Uid)}
		if msg.Envelope != nil {
			out.Subject = msg.Envelope.Subject
			out.Date = msg.Envelope.Date
			if len(msg.Envelope.From) > 0 {
				out.From = msg.Envelope.From[0].Address()
			}
		}
		if r := msg.GetBody(section); r != nil {
			body, err := readBody(r)
			if err != nil {
				return nil, fmt.Errorf("failed to read message %s: %w", out.ID, err)
			}
			out.Body = body
		}
		messages = append(messages, out)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// readBody returns the HTML part of a message, or the plain text part when there is none
func readBody(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", err
	}
	defer func() { _ = mr.Close() }()

	var html, plain string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		data, err := io.ReadAll(part.Body)
		if err != nil {
			return "", err
		}
		switch {
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(data)
		case strings.HasPrefix(contentType, "text/plain") && plain == "":
			plain = string(data)
		}
	}
	if html != "" {
		return html, nil
	}
	return plain, nil
}
