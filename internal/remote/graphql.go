package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/machinebox/graphql"
	"golang.org/x/oauth2"
)

const (
	listTodosQuery = `query ListTodos {
  listTodos {
    items { id name description createdAt updatedAt }
  }
}`

	createTodoMutation = `mutation CreateTodo($input: CreateTodoInput!) {
  createTodo(input: $input) { id name description createdAt updatedAt }
}`

	deleteTodoMutation = `mutation DeleteTodo($input: DeleteTodoInput!) {
  deleteTodo(input: $input) { id }
}`
)

// GraphQL is a Store backed by an AppSync-style GraphQL endpoint.
type GraphQL struct {
	client *graphql.Client
	apiKey string
}

// StatusError is returned for any non-2xx reply from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// statusTransport turns non-2xx replies into a *StatusError. The GraphQL
// client decodes any JSON body as a result otherwise.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return res, nil
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return nil, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(b))}
}

// NewGraphQL builds a client for endpoint. With a token source every request
// carries its bearer token; with an API key the x-api-key header is set instead.
func NewGraphQL(ctx context.Context, opts Options) (*GraphQL, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if opts.TokenSource != nil && opts.APIKey == "" {
		transport = &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, opts.TokenSource),
			Base:   transport,
		}
	}

	httpClient := &http.Client{
		Transport:     &statusTransport{base: transport},
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}

	client := graphql.NewClient(opts.Endpoint, graphql.WithHTTPClient(httpClient))
	if opts.Logger != nil {
		logger := opts.Logger
		client.Log = func(s string) { logger.Debug(s, "component", "graphql") }
	}

	return &GraphQL{client: client, apiKey: opts.APIKey}, nil
}

func (g *GraphQL) newRequest(q string) *graphql.Request {
	req := graphql.NewRequest(q)
	if g.apiKey != "" {
		req.Header.Set("x-api-key", g.apiKey)
	}
	return req
}

func (g *GraphQL) List(ctx context.Context) ([]model.Item, error) {
	var resp struct {
		ListTodos *struct {
			Items []model.Item `json:"items"`
		} `json:"listTodos"`
	}

	if err := g.client.Run(ctx, g.newRequest(listTodosQuery), &resp); err != nil {
		return nil, fmt.Errorf("listTodos: %w", err)
	}
	if resp.ListTodos == nil {
		return nil, fmt.Errorf("listTodos: %w", ErrEmptyResponse)
	}

	items := resp.ListTodos.Items
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (g *GraphQL) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	req := g.newRequest(createTodoMutation)
	req.Var("input", in)

	var resp struct {
		CreateTodo *model.Item `json:"createTodo"`
	}
	if err := g.client.Run(ctx, req, &resp); err != nil {
		return model.Item{}, fmt.Errorf("createTodo: %w", err)
	}
	if resp.CreateTodo == nil || resp.CreateTodo.ID == "" {
		return model.Item{}, fmt.Errorf("createTodo: %w", ErrEmptyResponse)
	}
	return *resp.CreateTodo, nil
}

func (g *GraphQL) Delete(ctx context.Context, id string) error {
	req := g.newRequest(deleteTodoMutation)
	req.Var("input", map[string]string{"id": id})

	var resp struct {
		DeleteTodo *struct {
			ID string `json:"id"`
		} `json:"deleteTodo"`
	}
	if err := g.client.Run(ctx, req, &resp); err != nil {
		return fmt.Errorf("deleteTodo: %w", err)
	}
	if resp.DeleteTodo == nil {
		return fmt.Errorf("deleteTodo %s: %w", id, ErrNotFound)
	}
	return nil
}

// Options configure the connection to the backend.
type Options struct {
	Endpoint    string
	APIKey      string
	TokenSource oauth2.TokenSource
	HTTPClient  *http.Client
	Logger      *slog.Logger
}
