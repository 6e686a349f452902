package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const filePollInterval = 2 * time.Second

var ErrFileProcessing = errors.New("uploaded file failed processing")

// Uploader stores large media with the Files API so requests can reference it by URI.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string) (*genai.File, error)
	Delete(ctx context.Context, name string) error
}

// Upload sends data to the Files API and waits until the file is ACTIVE.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType string) (*genai.File, error) {
	_, client := c.active()

	file, err := client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	ticker := time.NewTicker(filePollInterval)
	defer ticker.Stop()

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		file, err = client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("get file: %w", err)
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("%w: %s", ErrFileProcessing, file.Name)
	}

	c.logger.Debug("file uploaded", "name", file.Name, "mime_type", mimeType, "bytes", len(data))
	return file, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	_, client := c.active()
	if _, err := client.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}
