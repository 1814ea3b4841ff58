// Package apiclient talks to the module gate HTTP API on behalf of the
// admission core.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modulegate_backend/internal/model"
)

const maxResponseBytes = 1 << 20

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// envelope mirrors util.Response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type consentStatus struct {
	Recorded bool                 `json:"recorded"`
	Record   *model.ConsentRecord `json:"record"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token supplies the optional bearer credential; empty means anonymous.
	Token func() string
}

func New(baseURL string, timeout time.Duration, token func() string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Token:   token,
	}
}

// StaticToken returns a Token func for a fixed credential.
func StaticToken(token string) func() string {
	return func() string { return token }
}

func (c *Client) JoinModule(ctx context.Context, code string) (*model.ModuleView, error) {
	var module model.ModuleView
	path := "/api/student/join-module?access_code=" + url.QueryEscape(code)
	if err := c.do(ctx, http.MethodPost, path, nil, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *Client) GetModule(ctx context.Context, moduleID string) (*model.ModuleView, error) {
	var module model.ModuleView
	if err := c.do(ctx, http.MethodGet, "/api/student/modules/"+url.PathEscape(moduleID), nil, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

// GetConsent returns nil, nil when the student has no record for the module.
func (c *Client) GetConsent(ctx context.Context, moduleID, studentID string) (*model.ConsentRecord, error) {
	var status consentStatus
	path := fmt.Sprintf("/api/student/modules/%s/consent?student_id=%s", url.PathEscape(moduleID), url.QueryEscape(studentID))
	if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	if !status.Recorded {
		return nil, nil
	}
	return status.Record, nil
}

func (c *Client) PutConsent(ctx context.Context, moduleID, studentID string, waiver model.WaiverStatus) (*model.ConsentRecord, error) {
	var record model.ConsentRecord
	path := fmt.Sprintf("/api/modules/%s/consent/%s", url.PathEscape(moduleID), url.PathEscape(studentID))
	body := map[string]int{"waiver_status": int(waiver)}
	if err := c.do(ctx, http.MethodPut, path, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
