package imapmail

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Dial connects and authenticates an IMAP client over TLS.
func Dial(creds *integrationdomain.DirectCredentials) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", creds.Server, creds.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := c.Login(creds.Email, creds.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	return c, nil
}

// TestConnection verifies the credentials with a real login and logout.
func TestConnection(creds *integrationdomain.DirectCredentials) error {
	c, err := Dial(creds)
	if err != nil {
		return err
	}
	return c.Logout()
}

// Transport reads messages with attachments from an IMAP inbox. It holds
// one connection for the lifetime of a scan; Close must be called after
// the caller is done fetching bodies.
type Transport struct {
	creds  *integrationdomain.DirectCredentials
	client *client.Client
}

func NewTransport(creds *integrationdomain.DirectCredentials) *Transport {
	return &Transport{
		creds: creds,
	}
}

func (t *Transport) Connect(ctx context.Context) error {
	c, err := Dial(t.creds)
	if err != nil {
		return err
	}

	if _, err := c.Select("INBOX", true); err != nil {
		c.Logout()
		return fmt.Errorf("failed to select INBOX: %w", err)
	}

	t.client = c
	return nil
}

func (t *Transport) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Logout()
	t.client = nil
	return err
}

// Messages lists inbox messages received since the given time. IMAP SEARCH
// SINCE is day-granular, so callers must re-check exact timestamps against
// their watermark. Bodies are not fetched here; each item pulls its own on
// demand.
func (t *Transport) Messages(ctx context.Context, since time.Time) ([]*ingestiondomain.ExternalItem, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	seqNums, err := t.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search failed: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	if err := t.client.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate}, messages); err != nil {
		return nil, fmt.Errorf("imap envelope fetch failed: %w", err)
	}

	var items []*ingestiondomain.ExternalItem
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}

		externalID := msg.Envelope.MessageId
		if externalID == "" {
			externalID = fmt.Sprintf("imap-%d-%d", msg.InternalDate.Unix(), msg.SeqNum)
		}

		sender := ""
		if len(msg.Envelope.From) > 0 {
			sender = strings.ToLower(msg.Envelope.From[0].Address())
		}

		seqNum := msg.SeqNum
		item := &ingestiondomain.ExternalItem{
			ExternalID: externalID,
			ReceivedAt: msg.InternalDate,
			Subject:    msg.Envelope.Subject,
			Owner: func(ctx context.Context) (string, error) {
				return sender, nil
			},
			Files: func(ctx context.Context) ([]ingestiondomain.Attachment, error) {
				return t.fetchAttachments(seqNum)
			},
			Provenance: map[string]interface{}{
				"sender":  sender,
				"subject": msg.Envelope.Subject,
			},
		}
		items = append(items, item)
	}

	return items, nil
}

// fetchAttachments downloads one message body and walks its MIME parts.
// Attachment bytes are buffered here; the per-attachment Fetch just hands
// them back.
func (t *Transport) fetchAttachments(seqNum uint32) ([]ingestiondomain.Attachment, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 1)
	if err := t.client.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages); err != nil {
		return nil, fmt.Errorf("imap body fetch failed: %w", err)
	}

	msg := <-messages
	if msg == nil {
		return nil, fmt.Errorf("message %d disappeared during fetch", seqNum)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body section", seqNum)
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message %d: %w", seqNum, err)
	}

	var attachments []ingestiondomain.Attachment
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[IMAP] Skipping unreadable part in message %d: %v", seqNum, err)
			continue
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, err := header.Filename()
		if err != nil || filename == "" {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			log.Printf("[IMAP] Failed to read attachment %s in message %d: %v", filename, seqNum, err)
			continue
		}

		content := data
		attachments = append(attachments, ingestiondomain.Attachment{
			Filename: filename,
			Fetch: func(ctx context.Context) ([]byte, error) {
				return content, nil
			},
		})
	}

	return attachments, nil
}
