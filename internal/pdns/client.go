package pdns

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin wrapper around http.Client configured for one
// PowerDNS authoritative server instance.
type Client struct {
	http     *http.Client
	baseURL  string // e.g. "http://127.0.0.1:8081/api/v1"
	apiKey   string
	serverID string // usually "localhost"
}

// New constructs a Client for a specific PDNS server instance.
func New(baseURL, apiKey, serverID string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		serverID: serverID,
	}
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/servers/%s/%s", c.baseURL, c.serverID, strings.TrimPrefix(path, "/"))
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("pdns: %s marshal body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("pdns: %s build request: %w", op, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ErrUnreachable{Op: op, Err: err}
	}
	return resp, nil
}

// GetZone fetches the authoritative view of a zone, including rrsets.
func (c *Client) GetZone(ctx context.Context, name string) (Zone, error) {
	resp, err := c.do(ctx, "get_zone", http.MethodGet, "zones/"+name, nil)
	if err != nil {
		return Zone{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Zone{}, &ErrNotFound{Zone: name}
	}
	if resp.StatusCode != http.StatusOK {
		return Zone{}, statusError("get_zone", resp)
	}

	var zone Zone
	if err := json.NewDecoder(resp.Body).Decode(&zone); err != nil {
		return Zone{}, fmt.Errorf("pdns: get_zone decode: %w", err)
	}
	return zone, nil
}

// CreateZone creates a brand new zone managed by this PDNS instance.
func (c *Client) CreateZone(ctx context.Context, z ZoneCreate) error {
	resp, err := c.do(ctx, "create_zone", http.MethodPost, "zones", z)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return &ErrConflict{Zone: z.Name}
	default:
		return statusError("create_zone", resp)
	}
}

// PatchRRsets atomically applies rrset changes (REPLACE/DELETE) to an
// existing zone.
func (c *Client) PatchRRsets(ctx context.Context, zoneName string, rrsets []RRset) error {
	resp, err := c.do(ctx, "patch_rrsets", http.MethodPatch, "zones/"+zoneName, ZonePatch{RRsets: rrsets})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &ErrNotFound{Zone: zoneName}
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError("patch_rrsets", resp)
	}
	return nil
}

// DeleteZone deletes a zone and all of its data.
func (c *Client) DeleteZone(ctx context.Context, name string) error {
	resp, err := c.do(ctx, "delete_zone", http.MethodDelete, "zones/"+name, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &ErrNotFound{Zone: name}
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError("delete_zone", resp)
	}
	return nil
}

// ListRRsets is a convenience wrapper over GetZone for callers that
// only need the rrset list.
func (c *Client) ListRRsets(ctx context.Context, zoneName string) ([]RRset, error) {
	zone, err := c.GetZone(ctx, zoneName)
	if err != nil {
		return nil, err
	}
	return zone.RRsets, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr apiError
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	return &UpstreamStatusError{Op: op, Status: resp.StatusCode, Message: msg}
}

// IsNotFound reports whether err (or any error it wraps) is a pdns
// not-found condition.
func IsNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

// IsConflict reports whether err (or any error it wraps) is a pdns
// conflict condition.
func IsConflict(err error) bool {
	var e *ErrConflict
	return errors.As(err, &e)
}
