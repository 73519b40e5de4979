package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/models"

	"github.com/cockroachdb/errors"
)

const (
	// ParseMode must match the escaping done by the render package
	ParseMode = "HTML"

	defaultTimeout = 20 * time.Second
	maxErrorBody   = 4 << 10
)

// DeliveryError carries the Bot API response of a rejected sendMessage call
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("telegram responded %d: %s", e.StatusCode, e.Body)
}

// Client posts messages to one chat through the Bot API
type Client struct {
	httpClient *http.Client
	endpoint   string
	chatID     string
}

// NewClient creates a Client for the given bot token and chat. apiURL is the Bot API base, e.g. https://api.telegram.org.
func NewClient(apiURL, botToken, chatID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   strings.TrimRight(apiURL, "/") + "/bot" + botToken + "/sendMessage",
		chatID:     chatID,
	}
}

// Deliver sends text to the chat. Any non-200 answer or transport error is returned marked ErrDeliveryFailed.
func (c *Client) Deliver(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	form.Set("parse_mode", ParseMode)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Mark(errors.Wrap(err, "build sendMessage request"), models.ErrDeliveryFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL holds the bot token, keep it out of the logs
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return errors.Mark(errors.Wrap(err, "sendMessage request"), models.ErrDeliveryFailed)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Mark(&DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}, models.ErrDeliveryFailed)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	logging.Log.Debug("Telegram message sent")
	return nil
}
