package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Имена serverless функций backend
const (
	FnStatement         = "buscar-extrato"
	FnManualPayment     = "processar-pagamento-manual"
	FnCreateBoleto      = "banco-inter-create-boleto"
	FnCancelBoleto      = "banco-inter-cancel-boleto"
	FnConfigureWebhook  = "banco-inter-configure-webhook"
	FnClosing           = "realizar-fechamento"
	FnAddManualCredit   = "adicionar-saldo-manual"
	FnCreatePixRecharge = "criar-recarga-pix"
)

const (
	defaultRetryDelay    = 2 * time.Second
	defaultRetryAttempts = 1
)

// Признаки ошибок учетных данных банка: такие ошибки не повторяются
var credentialMarkers = []string{
	"credencia", "certificad", "unauthorized", "invalid_client", "autentica", "forbidden",
}

// Functions вызывает serverless функции backend
type Functions struct {
	client *Client
	retry  *retryablehttp.Client
}

// NewFunctions создает новый Functions поверх Client
func NewFunctions(client *Client) *Functions {
	f := &Functions{client: client}
	f.retry = newRetryClient(client, defaultRetryDelay)
	return f
}

// SetRetryDelay меняет паузу перед повтором (используется в тестах)
func (f *Functions) SetRetryDelay(delay time.Duration) {
	f.retry = newRetryClient(f.client, delay)
}

func newRetryClient(client *Client, delay time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = client.httpClient
	rc.Logger = nil
	rc.RetryMax = defaultRetryAttempts
	rc.RetryWaitMin = delay
	rc.RetryWaitMax = delay
	rc.Backoff = func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return delay
	}
	rc.CheckRetry = retryOnGenericFailure
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			client.logger.Warn("retrying backend function",
				zap.String("path", req.URL.Path),
				zap.Int("attempt", attempt),
			)
		}
	}
	return rc
}

// Invoke вызывает функцию без повторов.
// success:false в теле и HTTP ошибки - разные формы отказа, обе возвращаются как error.
func (f *Functions) Invoke(ctx context.Context, name string, body, out any) error {
	req, err := f.client.newRequest(ctx, http.MethodPost, f.url(name), nil, body)
	if err != nil {
		return err
	}

	resp, err := f.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend functions: failed to invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	return f.handle(ctx, name, resp, out)
}

// InvokeWithRetry вызывает функцию с одним повтором через паузу при общей ошибке.
// Ошибки учетных данных и авторизации не повторяются.
func (f *Functions) InvokeWithRetry(ctx context.Context, name string, body, out any) error {
	req, err := f.client.newRequest(ctx, http.MethodPost, f.url(name), nil, body)
	if err != nil {
		return err
	}

	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return fmt.Errorf("backend functions: failed to prepare %s: %w", name, err)
	}

	resp, err := f.retry.Do(retryReq)
	if err != nil {
		return fmt.Errorf("backend functions: failed to invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	return f.handle(ctx, name, resp, out)
}

func (f *Functions) url(name string) string {
	return f.client.baseURL + "/functions/v1/" + name
}

func (f *Functions) handle(ctx context.Context, name string, resp *http.Response, out any) error {
	if err := f.client.checkResponse(ctx, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend functions: failed to read %s response: %w", name, err)
	}

	if failure := softFailure(name, data); failure != nil {
		return failure
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend functions: failed to decode %s response: %w", name, err)
	}

	return nil
}

// softFailure распознает ответ {success:false, message}
func softFailure(name string, data []byte) *SoftFailure {
	var envelope struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Success == nil || *envelope.Success {
		return nil
	}

	message := extractMessage(data)
	if message == "" {
		message = "Operação não concluída"
	}
	return &SoftFailure{Function: name, Message: message}
}

// retryOnGenericFailure решает, нужен ли повтор вызова функции
func retryOnGenericFailure(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return false, nil
	case resp.StatusCode >= 500:
		return !isCredentialFailure(string(peekBody(resp))), nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		data := peekBody(resp)
		failure := softFailure("", data)
		return failure != nil && !isCredentialFailure(failure.Message), nil
	}

	return false, nil
}

// peekBody читает тело ответа и возвращает его обратно в resp
func peekBody(resp *http.Response) []byte {
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

func isCredentialFailure(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range credentialMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
