package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	webhookUsername = "tftbot"
	// upper bound on an honoured Retry-After
	maxRetryAfter   = 5 * time.Second
)

type webhookClient struct {
	url    string
	client *http.Client
}

func newWebhookClient(url string) *webhookClient {
	return &webhookClient{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a message, attaching the screenshot when one is given. A rate limited post is retried once.
func (w *webhookClient) Send(ctx context.Context, content, fileName string, fileData []byte) error {
	params := discordgo.WebhookParams{Content: content, Username: webhookUsername}

	resp, err := w.post(ctx, params, fileName, fileData)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp.Header.Get("Retry-After"))
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if resp, err = w.post(ctx, params, fileName, fileData); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

func (w *webhookClient) post(ctx context.Context, params discordgo.WebhookParams, fileName string, fileData []byte) (*http.Response, error) {
	body, contentType, err := encodeWebhook(params, fileName, fileData)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, body)
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to discord webhook: %w", err)
	}

	return resp, nil
}

func encodeWebhook(params discordgo.WebhookParams, fileName string, fileData []byte) (io.Reader, string, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, "", fmt.Errorf("encoding webhook payload: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err = mw.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", err
	}
	if fileName != "" && len(fileData) > 0 {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(fileData); err != nil {
			return nil, "", err
		}
	}
	if err = mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

// retryAfter reads the header in seconds, fractions included.
func retryAfter(header string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs <= 0 {
		return time.Second
	}

	return min(time.Duration(secs*float64(time.Second)), maxRetryAfter)
}
