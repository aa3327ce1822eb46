package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	nmail "net/mail"
	"strings"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc func(token *oauth2.Token) error

type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// GetGmailService creates a Gmail API client from stored OAuth tokens.
func (s *Service) GetGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// TestConnection verifies the stored tokens can reach the mailbox.
func (s *Service) TestConnection(ctx context.Context, creds *integrationdomain.TokenCredentials) error {
	srv, err := s.GetGmailService(ctx, creds.AccessToken, creds.RefreshToken, nil)
	if err != nil {
		return err
	}
	_, err = srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail profile check failed: %w", err)
	}
	return nil
}

// Watch registers inbox push notifications onto a Pub/Sub topic.
func (s *Service) Watch(ctx context.Context, creds *integrationdomain.TokenCredentials, topic string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, creds.AccessToken, creds.RefreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	_, err = srv.Users.Watch("me", &gmail.WatchRequest{
		TopicName: topic,
		LabelIds:  []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail watch failed: %w", err)
	}
	return nil
}

// Transport reads inbox messages with attachments through the Gmail API.
// It satisfies the same shape as the IMAP transport so the email engine
// does not care which credential variant is configured.
type Transport struct {
	service        *Service
	creds          *integrationdomain.TokenCredentials
	onTokenRefresh TokenUpdateFunc
	client         *gmail.Service
}

func NewTransport(service *Service, creds *integrationdomain.TokenCredentials, onTokenRefresh TokenUpdateFunc) *Transport {
	return &Transport{
		service:        service,
		creds:          creds,
		onTokenRefresh: onTokenRefresh,
	}
}

func (t *Transport) Connect(ctx context.Context) error {
	srv, err := t.service.GetGmailService(ctx, t.creds.AccessToken, t.creds.RefreshToken, t.onTokenRefresh)
	if err != nil {
		return err
	}
	t.client = srv
	return nil
}

func (t *Transport) Close() error {
	t.client = nil
	return nil
}

// Messages lists inbox messages with attachments received since the given
// time. The Gmail "after:" operator is day-granular, same caveat as IMAP
// SEARCH SINCE: callers re-check exact timestamps.
func (t *Transport) Messages(ctx context.Context, since time.Time) ([]*ingestiondomain.ExternalItem, error) {
	query := fmt.Sprintf("in:inbox has:attachment after:%s", since.Format("2006/01/02"))

	var ids []string
	pageToken := ""
	for {
		call := t.client.Users.Messages.List("me").Q(query).MaxResults(100).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("gmail message list failed: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	var items []*ingestiondomain.ExternalItem
	for _, id := range ids {
		msg, err := t.client.Users.Messages.Get("me", id).
			Format("metadata").
			MetadataHeaders("From", "Subject").
			Context(ctx).Do()
		if err != nil {
			log.Printf("[Gmail] Skipping message %s, metadata fetch failed: %v", id, err)
			continue
		}

		sender := ""
		subject := ""
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				if addr, err := nmail.ParseAddress(h.Value); err == nil {
					sender = strings.ToLower(addr.Address)
				}
			case "Subject":
				subject = h.Value
			}
		}

		messageID := id
		senderAddr := sender
		item := &ingestiondomain.ExternalItem{
			ExternalID: messageID,
			ReceivedAt: time.UnixMilli(msg.InternalDate),
			Subject:    subject,
			Owner: func(ctx context.Context) (string, error) {
				return senderAddr, nil
			},
			Files: func(ctx context.Context) ([]ingestiondomain.Attachment, error) {
				return t.fetchAttachments(ctx, messageID)
			},
			Provenance: map[string]interface{}{
				"sender":  sender,
				"subject": subject,
			},
		}
		items = append(items, item)
	}

	return items, nil
}

// fetchAttachments resolves attachment parts for one message. The part walk
// happens here but bytes are only pulled when an attachment's Fetch runs,
// so filtered files never hit the attachments endpoint.
func (t *Transport) fetchAttachments(ctx context.Context, messageID string) ([]ingestiondomain.Attachment, error) {
	msg, err := t.client.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail message fetch failed: %w", err)
	}

	var attachments []ingestiondomain.Attachment
	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if len(part.Parts) > 0 {
				walk(part.Parts)
				continue
			}
			if part.Filename == "" || part.Body == nil {
				continue
			}

			filename := part.Filename
			if part.Body.Data != "" {
				data := part.Body.Data
				attachments = append(attachments, ingestiondomain.Attachment{
					Filename: filename,
					Fetch: func(ctx context.Context) ([]byte, error) {
						return base64.URLEncoding.DecodeString(data)
					},
				})
				continue
			}

			attachmentID := part.Body.AttachmentId
			if attachmentID == "" {
				continue
			}
			attachments = append(attachments, ingestiondomain.Attachment{
				Filename: filename,
				Fetch: func(ctx context.Context) ([]byte, error) {
					body, err := t.client.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
					if err != nil {
						return nil, fmt.Errorf("gmail attachment fetch failed: %w", err)
					}
					return base64.URLEncoding.DecodeString(body.Data)
				},
			})
		}
	}
	if msg.Payload != nil {
		walk(msg.Payload.Parts)
	}

	return attachments, nil
}
