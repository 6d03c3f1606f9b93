package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// maxMessageRunes is the sendMessage text limit.
	maxMessageRunes = 4096
	truncatedMark   = "\n…(truncated)"
)

// Notifier posts recommendation digests to a Telegram chat via the bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// Option tweaks a Notifier.
type Option func(*Notifier)

// WithAPIBase points the notifier at another bot API host.
func WithAPIBase(base string) Option {
	return func(n *Notifier) {
		n.apiBase = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PublishDigest sends a recommendation digest to the chat. Digests longer
// than a single Telegram message are cut at a line boundary and marked as
// truncated.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("%w: telegram bot token and chat id are required", domain.ErrConfiguration)
	}
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", fitMessage(digest))
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if desc := gjson.GetBytes(body, "description").String(); desc != "" {
			return fmt.Errorf("send digest: %s: %s", resp.Status, desc)
		}
		return fmt.Errorf("send digest: %s", resp.Status)
	}
	return nil
}

// fitMessage keeps text within maxMessageRunes, preferring to cut after a
// complete line of the digest.
func fitMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	cut := string(runes[:maxMessageRunes-len([]rune(truncatedMark))])
	if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
		cut = cut[:nl]
	}
	return strings.TrimRight(cut, " \n") + truncatedMark
}
