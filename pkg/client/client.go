// Package client — Go-клиент HTTP API с прозрачным мемо-кешем поверх
// списков. Повторные чтения в пределах TTL не ходят в сеть, параллельные
// промахи склеиваются в один запрос, локальные мутации патчат кеш без
// повторной загрузки.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/infra/cache/memo"
)

type Config struct {
	BaseURL string // например http://localhost:8080
	Token   string // Bearer-токен сессии

	HTTPClient *http.Client  // nil → дефолтный с таймаутом
	TTL        time.Duration // 0 → memo.DefaultTTL
}

type Client struct {
	base  string
	token string
	http  *http.Client
	store *memo.Store
	ttl   time.Duration
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = memo.DefaultTTL
	}
	return &Client{
		base:  cfg.BaseURL,
		token: cfg.Token,
		http:  hc,
		store: memo.NewStore(),
		ttl:   ttl,
	}
}

// ключи неймспейсим базой и токеном: смена сессии — другой кеш
func (c *Client) key(resource string) string {
	return c.base + "::" + resource + "::" + c.token
}

// Reset сбрасывает весь локальный кеш (например, после re-login).
func (c *Client) Reset() { c.store.Clear() }

// doJSON выполняет запрос и разбирает конверт ответа в out (может быть nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Error    *domain.APIError `json:"error"`
		Response json.RawMessage  `json:"response"`
		Data     json.RawMessage  `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return statusToErr(resp.StatusCode)
		}
		return fmt.Errorf("client: decode envelope: %w", err)
	}
	if env.Error != nil {
		return codeToErr(env.Error.Code, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return statusToErr(resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	raw := env.Response
	if raw == nil {
		raw = env.Data
	}
	if raw == nil {
		return fmt.Errorf("client: empty envelope")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode payload: %w", err)
	}
	return nil
}

func codeToErr(code, status int) error {
	switch code {
	case domain.ErrCodeBadParams:
		return domain.ErrBadParams
	case domain.ErrCodeUnauth:
		return domain.ErrUnauth
	case domain.ErrCodeForbidden:
		return domain.ErrForbidden
	case domain.ErrCodeNotFound:
		return domain.ErrNotFound
	case domain.ErrCodeMethodNotAllowed:
		return domain.ErrMethodNotAllowed
	case domain.ErrCodeNotImplemented:
		return domain.ErrNotImplemented
	default:
		return statusToErr(status)
	}
}

func statusToErr(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrBadParams
	case http.StatusUnauthorized:
		return domain.ErrUnauth
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrUnexpected
	}
}
