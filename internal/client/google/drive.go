package google

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Authenticate checks the service account can reach Drive and returns its email address.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	about, err := c.Service.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to authenticate to Google Drive: %w", err)
	}

	email := ""
	if about.User != nil {
		email = about.User.EmailAddress
	}

	c.logger.Info("Authenticated to Google Drive", zap.String("user", email))
	return email, nil
}

// Download returns the content of a binary (non Google Docs) file.
func (c *Client) Download(ctx context.Context, fileId string) ([]byte, error) {
	resp, err := c.Service.Files.Get(fileId).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download file %s: %w", fileId, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read file %s: %w", fileId, err)
	}

	c.logger.Debug("file downloaded", zap.String("fileId", fileId), zap.Int("bytes", len(content)))
	return content, nil
}
