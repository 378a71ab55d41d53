package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// Client talks to the spreadsheet host's record API. It implements the
// engine's record source and record sink over one document.
type Client struct {
	baseURL string
	docID   string
	token   string
	client  *http.Client
}

// NewClient constructs a host client for one document.
func NewClient(baseURL, docID, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("hostapi: empty base url")
	}
	if docID == "" {
		return nil, errors.New("hostapi: empty doc id")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		docID:   docID,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchTable returns the columnar snapshot of one table.
//
// The host serves records column-oriented already, so the payload maps
// straight onto the engine's snapshot shape.
func (c *Client) FetchTable(ctx context.Context, table string) (hierarchy.Columnar, error) {
	if table == "" {
		return nil, hierarchy.ErrEmptyTable
	}
	path := fmt.Sprintf("/api/docs/%s/tables/%s/data", url.PathEscape(c.docID), url.PathEscape(table))
	var snapshot hierarchy.Columnar
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &snapshot); err != nil {
		return nil, err
	}
	if _, ok := snapshot[hierarchy.IDColumn]; !ok {
		return nil, hierarchy.ErrMissingIDColumn
	}
	return snapshot, nil
}

// ApplyUpdates posts one batch of UpdateRecord actions. The host applies
// the actions of one call atomically.
func (c *Client) ApplyUpdates(ctx context.Context, table string, updates []hierarchy.RowUpdate) error {
	if table == "" {
		return hierarchy.ErrEmptyTable
	}
	if len(updates) == 0 {
		return nil
	}
	actions := make([][]any, 0, len(updates))
	for _, update := range updates {
		actions = append(actions, []any{"UpdateRecord", table, update.RowID, update.Fields})
	}
	path := fmt.Sprintf("/api/docs/%s/apply", url.PathEscape(c.docID))
	return c.doJSON(ctx, http.MethodPost, path, actions, nil)
}

var errNotFound = errors.New("hostapi: not found")

// IsNotFound reports whether err is the host's 404 answer.
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("hostapi: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
