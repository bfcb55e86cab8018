package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
)

// DefaultTimeout таймаут исходящих запросов к backend
const DefaultTimeout = 120 * time.Second

// maxErrorBody ограничение на чтение тела ответа с ошибкой
const maxErrorBody = 64 << 10

// ClientConfig параметры клиента backend
type ClientConfig struct {
	APIURL  string        // базовый URL REST API ресурсов
	BaseURL string        // базовый URL backend-as-a-service (auth, functions)
	APIKey  string        // анонимный ключ
	Timeout time.Duration // таймаут запроса
}

// Client обертка над REST API backend: bearer токен, маппинг статусов, logout на 401
type Client struct {
	apiURL         string
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	logger         *zap.Logger
	onUnauthorized func(ctx context.Context)
}

// NewClient создает новый Client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// OnUnauthorized регистрирует обработчик ответа 401 (принудительный logout)
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

// Get выполняет GET запрос к ресурсу
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.apiURL+path, query, nil, out)
}

// Post выполняет POST запрос к ресурсу
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.apiURL+path, nil, body, out)
}

// Put выполняет PUT запрос к ресурсу (полная замена)
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, c.apiURL+path, nil, body, out)
}

// Delete выполняет DELETE запрос к ресурсу
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, c.apiURL+path, nil, nil, nil)
}

// PostAuth выполняет POST к auth API backend (без пользовательского токена)
func (c *Client) PostAuth(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/auth/v1"+path, query, body, out)
}

func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, rawURL, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend client: failed to execute %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(ctx, resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("backend client: failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, query url.Values, body any) (*http.Request, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend client: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("backend client: failed to create request: %w", err)
	}

	c.authorize(ctx, req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// authorize добавляет apikey и bearer токен пользователя (или анонимный ключ)
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token, ok := AccessToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// checkResponse переводит HTTP статус в ошибку таксономии
func (c *Client) checkResponse(ctx context.Context, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := extractMessage(body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if message == "" {
			message = "Dados inválidos"
		}
		return &ValidationError{Message: message}

	case http.StatusUnauthorized:
		c.logger.Warn("backend rejected credentials, signing out",
			zap.String("path", resp.Request.URL.Path),
		)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return ErrUnauthorized

	case http.StatusForbidden:
		// Обрабатывается вызывающим кодом
		return ErrForbidden

	case http.StatusInternalServerError:
		c.logger.Error("backend internal error",
			zap.String("path", resp.Request.URL.Path),
			zap.String("message", message),
		)
		return ErrServer

	default:
		return &StatusError{Code: resp.StatusCode, Message: message}
	}
}

// extractMessage достает текст ошибки из JSON тела: message | error | msg | details
func extractMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, key := range []string{"message", "error", "msg", "details", "error_description"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}

		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}

		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}

	return ""
}
