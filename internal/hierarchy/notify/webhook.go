package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier posts run summaries to a webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a run summary to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, msg RunMessage) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatRunMessage(msg)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatRunMessage(msg RunMessage) string {
	var b strings.Builder
	b.WriteString("[Device Hierarchy Run]\n")
	if msg.Table != "" {
		fmt.Fprintf(&b, "Table: %s\n", msg.Table)
	}
	fmt.Fprintf(&b, "Status: %s\n", msg.Status)
	fmt.Fprintf(&b, "Devices: %d\n", msg.Devices)
	fmt.Fprintf(&b, "Rows updated: %d (%d batches)\n", msg.RowsUpdated, msg.Batches)
	if msg.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", msg.Error)
	}
	if len(msg.Diagnostics) > 0 {
		if raw, err := json.Marshal(msg.Diagnostics); err == nil {
			fmt.Fprintf(&b, "Diagnostics: %s\n", string(raw))
		}
	}
	return strings.TrimSpace(b.String())
}
