package recordsRepo

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

	"github.com/google/uuid"
)

// RESTStore talks to a json-server style persistence service:
// GET/POST /{collection}, GET/PATCH/DELETE /{collection}/{id}.
type RESTStore struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewRESTStore returns a Store backed by the persistence service at baseURL.
func NewRESTStore(baseURL string, timeout time.Duration) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (s *RESTStore) List(ctx context.Context, collection string, filter Filter, out any) error {
	q := url.Values{}
	for field, values := range filter {
		for _, v := range values {
			q.Add(field, v)
		}
	}
	endpoint := s.baseURL + "/" + collection
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return s.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (s *RESTStore) Get(ctx context.Context, collection, id string, out any) error {
	return s.do(ctx, http.MethodGet, s.recordURL(collection, id), nil, out)
}

func (s *RESTStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	m, err := toDocument(doc)
	if err != nil {
		return "", err
	}
	if id, _ := m["id"].(string); id == "" {
		m["id"] = uuid.New().String()
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodPost, s.baseURL+"/"+collection, m, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *RESTStore) Patch(ctx context.Context, collection, id string, patch Patch) error {
	return s.do(ctx, http.MethodPatch, s.recordURL(collection, id), patch, nil)
}

// PatchIf reads the record and patches it when field still holds expected.
// The service offers no compare-and-set, so a writer landing between the
// read and the patch is not detected.
func (s *RESTStore) PatchIf(ctx context.Context, collection, id, field, expected string, patch Patch) error {
	current := make(map[string]any)
	if err := s.Get(ctx, collection, id, &current); err != nil {
		return err
	}
	if v, _ := current[field].(string); v != expected {
		return fmt.Errorf("%s/%s %s!=%q: %w", collection, id, field, expected, ErrPreconditionFailed)
	}
	return s.Patch(ctx, collection, id, patch)
}

func (s *RESTStore) Delete(ctx context.Context, collection, id string) error {
	return s.do(ctx, http.MethodDelete, s.recordURL(collection, id), nil, nil)
}

func (s *RESTStore) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	return ErrUniqueUnsupported
}

func (s *RESTStore) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, s.baseURL+"/"+Bookings+"?_limit=1", nil, nil)
}

func (s *RESTStore) recordURL(collection, id string) string {
	return s.baseURL + "/" + collection + "/" + url.PathEscape(id)
}

func (s *RESTStore) do(ctx context.Context, method, endpoint string, body any, out any) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, endpoint, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, endpoint, ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, endpoint, ErrDuplicate)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: status %d: %w", method, endpoint, resp.StatusCode, ErrUnavailable)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}
