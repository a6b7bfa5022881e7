package box

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"carsensor/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// BoxClient talks to the Box content API as a server app using the Client Credentials
// Grant, with the enterprise service account as subject.
type BoxClient struct {
	logger *zap.Logger
	ApiUrl string

	tokens oauth2.TokenSource
	http   *http.Client
}

func NewBoxClient(ctx context.Context, logger *zap.Logger, cfg config.Box, timeout time.Duration) *BoxClient {
	ccg := clientcredentials.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.Urls.TokenUrl,
		AuthStyle:    oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"box_subject_type": {"enterprise"},
			"box_subject_id":   {cfg.EnterpriseId},
		},
	}

	// token requests share the timeout of content requests
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	tokens := ccg.TokenSource(ctx)

	client := oauth2.NewClient(ctx, tokens)
	client.Timeout = timeout

	return &BoxClient{
		logger: logger,
		ApiUrl: cfg.Urls.ApiUrl,
		tokens: tokens,
		http:   client,
	}
}

// Authenticate fetches an access token and resolves the app user it belongs to.
func (b *BoxClient) Authenticate(ctx context.Context) (User, error) {
	if _, err := b.tokens.Token(); err != nil {
		return User{}, fmt.Errorf("failed to authenticate to Box: %w", err)
	}

	var user User
	if err := b.getJSON(ctx, "/users/me", &user); err != nil {
		return User{}, fmt.Errorf("failed to authenticate to Box: %w", err)
	}

	b.logger.Info("Authenticated to Box as app user", zap.String("id", user.Id), zap.String("login", user.Login))
	return user, nil
}

// Download returns the full content of the current version of a file.
func (b *BoxClient) Download(ctx context.Context, fileId string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s/content", b.ApiUrl, url.PathEscape(fileId))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download file %s: %w", fileId, err)
	}
	defer resp.Body.Close()

	// 202 means the file is not ready for download yet
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download file %s: %w", fileId, decodeError(resp))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read file %s: %w", fileId, err)
	}

	b.logger.Debug("file downloaded", zap.String("fileId", fileId), zap.Int("bytes", len(content)))
	return content, nil
}

func (b *BoxClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.ApiUrl+path, nil)
	if err != nil {
		return err
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}

	if resp.StatusCode == http.StatusAccepted && apiErr.Message == "" {
		apiErr.Code = "not_ready"
		apiErr.Message = "file not ready, retry after " + resp.Header.Get("Retry-After") + "s"
	}

	return apiErr
}
