package tempoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxErrorBodyLen bounds how much of an unparseable error body is copied
// into an error message. Tunable, not a contract.
const maxErrorBodyLen = 200

// Client is a low-level Tempo API client.
type Client struct {
	baseURL string
	client  *http.Client
	apiKey  string
	tracer  trace.Tracer
}

// ClientOptions is a Client creation options.
type ClientOptions struct {
	// Client to use. Defaults to an otelhttp-instrumented client.
	Client *http.Client

	// APIKey to send as a bearer token. If empty, requests are unauthenticated.
	APIKey string

	// TracerProvider is a tracer provider. Defaults to otel.GetTracerProvider.
	TracerProvider trace.TracerProvider
}

func (opts *ClientOptions) setDefaults() {
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(opts.TracerProvider),
			),
		}
	}
}

// NewClient creates new Client.
func NewClient(baseURL string, opts ClientOptions) (*Client, error) {
	opts.setDefaults()

	if baseURL == "" {
		return nil, errors.New("base URL must be set")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  opts.Client,
		apiKey:  opts.APIKey,
		tracer:  opts.TracerProvider.Tracer("tempoquery.tempoapi"),
	}, nil
}

// BaseURL returns the base URL the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Search executes a trace query.
//
// POST {baseURL}/api/search
func (c *Client) Search(ctx context.Context, req SearchRequest) (result *Traces, rerr error) {
	ctx, span := c.tracer.Start(ctx, "Search",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tempo.query", req.Query)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
		}
		span.End()
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	r.Header.Set("Content-Type", "application/json")
	c.auth(r)

	resp, err := c.client.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	result = new(Traces)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return result, nil
}

// TraceByID fetches a raw trace by its identifier.
//
// GET {baseURL}/api/traces/{traceID}
func (c *Client) TraceByID(ctx context.Context, traceID string) (result *TraceByID, rerr error) {
	ctx, span := c.tracer.Start(ctx, "TraceByID",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tempo.trace_id", traceID)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
		}
		span.End()
	}()

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/traces/"+url.PathEscape(traceID), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	r.Header.Set("Accept", "application/json")
	c.auth(r)

	resp, err := c.client.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	result = new(TraceByID)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return result, nil
}

// SearchTags returns all discovered tag names.
//
// GET {baseURL}/api/search/tags
func (c *Client) SearchTags(ctx context.Context) (*TagNames, error) {
	result := new(TagNames)
	if err := c.getJSON(ctx, "/api/search/tags", result); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchTagValues returns all discovered values of the given tag.
//
// GET {baseURL}/api/search/tag/{tag}/values
func (c *Client) SearchTagValues(ctx context.Context, tag string) (*TagValues, error) {
	result := new(TagValues)
	if err := c.getJSON(ctx, "/api/search/tag/"+url.PathEscape(tag)+"/values", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	r.Header.Set("Accept", "application/json")
	c.auth(r)

	resp, err := c.client.Do(r)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) auth(r *http.Request) {
	if c.apiKey != "" {
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return &ErrorStatusCode{
		StatusCode: resp.StatusCode,
		Message:    parseErrorBody(body),
	}
}

// parseErrorBody extracts a message from an error body. Backends answer
// either with a JSON object carrying an "error" or "message" field, or with
// plain text.
func parseErrorBody(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "error", "message":
			s, err := d.Str()
			if err != nil {
				return err
			}
			if msg == "" {
				msg = s
			}
			return nil
		default:
			return d.Skip()
		}
	}); err == nil && msg != "" {
		return msg
	}

	raw := strings.TrimSpace(string(body))
	if len(raw) > maxErrorBodyLen {
		return raw[:maxErrorBodyLen]
	}
	return raw
}
