package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/avc/frete-console/internal/backend"
)

// RESTClient REST API ресурсов backend
type RESTClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// FunctionInvoker serverless функции backend
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, body, out any) error
	InvokeWithRetry(ctx context.Context, name string, body, out any) error
}

// resourcePath собирает путь ресурса с экранированным id
func resourcePath(collection, id string, sub ...string) string {
	p := collection + "/" + url.PathEscape(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

// notFound переводит 404 backend в ErrNotFound
func notFound(err error) error {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}
