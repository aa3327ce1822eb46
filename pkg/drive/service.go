package drive

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc func(token *oauth2.Token) error

type Service struct {
	clientID     string
	clientSecret string
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
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
			log.Printf("[Drive] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

// GetDriveService creates a Drive API client from stored OAuth tokens.
func (s *Service) GetDriveService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*drive.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %v", err)
	}
	return srv, nil
}

// TestConnection verifies the stored tokens can reach the Drive account.
func (s *Service) TestConnection(ctx context.Context, creds *integrationdomain.TokenCredentials) error {
	srv, err := s.GetDriveService(ctx, creds.AccessToken, creds.RefreshToken, nil)
	if err != nil {
		return err
	}
	if _, err := srv.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive account check failed: %w", err)
	}
	return nil
}

// Watch registers a push channel on the watched folder. Drive calls the
// address with sync and change notifications until the channel expires or
// is stopped.
func (s *Service) Watch(ctx context.Context, creds *integrationdomain.TokenCredentials, folderID, address string, onTokenRefresh TokenUpdateFunc) (*integrationdomain.WebhookChannel, error) {
	srv, err := s.GetDriveService(ctx, creds.AccessToken, creds.RefreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	channel, err := srv.Files.Watch(folderID, &drive.Channel{
		Id:      uuid.New().String(),
		Type:    "web_hook",
		Address: address,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive watch failed: %w", err)
	}

	return &integrationdomain.WebhookChannel{
		ChannelID:    channel.Id,
		ResourceID:   channel.ResourceId,
		Address:      address,
		Expiration:   channel.Expiration,
		RegisteredAt: time.Now(),
	}, nil
}

// StopChannel tears down a previously registered push channel.
func (s *Service) StopChannel(ctx context.Context, creds *integrationdomain.TokenCredentials, channelID, resourceID string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetDriveService(ctx, creds.AccessToken, creds.RefreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	err = srv.Channels.Stop(&drive.Channel{
		Id:         channelID,
		ResourceId: resourceID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("drive channel stop failed: %w", err)
	}
	return nil
}

// Transport lists and downloads files from a watched Drive folder.
type Transport struct {
	service        *Service
	creds          *integrationdomain.TokenCredentials
	onTokenRefresh TokenUpdateFunc
	client         *drive.Service
}

func NewTransport(service *Service, creds *integrationdomain.TokenCredentials, onTokenRefresh TokenUpdateFunc) *Transport {
	return &Transport{
		service:        service,
		creds:          creds,
		onTokenRefresh: onTokenRefresh,
	}
}

func (t *Transport) Connect(ctx context.Context) error {
	srv, err := t.service.GetDriveService(ctx, t.creds.AccessToken, t.creds.RefreshToken, t.onTokenRefresh)
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

// ListFolder returns every non-trashed file in the folder as a candidate
// item. The owner of the file is the employee match key; downloads stay
// lazy behind each attachment's Fetch.
func (t *Transport) ListFolder(ctx context.Context, folderID string) ([]*ingestiondomain.ExternalItem, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	var items []*ingestiondomain.ExternalItem
	pageToken := ""
	for {
		call := t.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, owners(emailAddress))").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("drive file list failed: %w", err)
		}

		for _, file := range resp.Files {
			owner := ""
			if len(file.Owners) > 0 {
				owner = strings.ToLower(file.Owners[0].EmailAddress)
			}

			modified, _ := time.Parse(time.RFC3339, file.ModifiedTime)

			fileID := file.Id
			fileName := file.Name
			ownerAddr := owner
			items = append(items, &ingestiondomain.ExternalItem{
				ExternalID: fileID,
				ReceivedAt: modified,
				Subject:    fileName,
				Owner: func(ctx context.Context) (string, error) {
					return ownerAddr, nil
				},
				Files: func(ctx context.Context) ([]ingestiondomain.Attachment, error) {
					return []ingestiondomain.Attachment{{
						Filename: fileName,
						Fetch: func(ctx context.Context) ([]byte, error) {
							return t.download(fileID)
						},
					}}, nil
				},
				Provenance: map[string]interface{}{
					"drive_file_name": fileName,
					"owner":           owner,
					"mime_type":       file.MimeType,
					"modified_time":   file.ModifiedTime,
				},
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return items, nil
}

func (t *Transport) download(fileID string) ([]byte, error) {
	resp, err := t.client.Files.Get(fileID).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive download read failed: %w", err)
	}
	return data, nil
}
