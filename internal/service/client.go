package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/report"
)

const (
	webhookContentType = "application/json"
	webhookTimeout     = 30 * time.Second
)

// Webhook posts the JSON rendition of finished reports to a remote sink.
type Webhook struct {
	requestURL *url.URL
	authHeader string
	client     *http.Client
}

func NewWebhook(cfg model.Webhook) (*Webhook, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.New("please define the webhook url with a scheme and a host, e.g. `https://some-url.com/hook`")
	}

	w := &Webhook{
		requestURL: parsedURL,
		client:     &http.Client{Timeout: webhookTimeout},
	}
	if cfg.Auth.Type == model.AuthTypeStaticToken {
		if cfg.Auth.Token == "" {
			return nil, errors.New("static_token auth needs a token")
		}
		w.authHeader = "Bearer " + cfg.Auth.Token
	}
	return w, nil
}

func (w *Webhook) Export(ctx context.Context, rep model.Report) error {
	raw, err := report.Render(rep, model.FormatJSON)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.requestURL.String(), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", webhookContentType)
	if w.authHeader != "" {
		req.Header.Set("Authorization", w.authHeader)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return w.decodeResponse(ctx, resp, rep.SessionID)
}

func (w *Webhook) decodeResponse(ctx context.Context, resp *http.Response, sessionID string) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		slog.DebugContext(ctx, "report delivered",
			slog.String("session_id", sessionID),
			slog.Int("status", resp.StatusCode))
		return nil
	}

	contentType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err == nil && (contentType == "application/json" || contentType == "application/problem+json") {
		var problem struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Detail != "" {
			return fmt.Errorf("status code: %d, detail: %s", resp.StatusCode, problem.Detail)
		}
		return fmt.Errorf("status code: %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return err
	}
	return fmt.Errorf("unknown error, status: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
}
