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
	"strconv"
	"strings"
	"time"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/gatewaylog"
	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.Gateway = (*Client)(nil)

const maxResponseBytes = 32 << 20

// Config configures the HTTP gateway.
type Config struct {
	// BaseURL is read once at startup, e.g. http://localhost:8000.
	BaseURL string
	Timeout time.Duration
	// ListLimit is sent as ?limit= when positive.
	ListLimit int
}

// Client talks to the X-Ray backend over HTTP. It keeps no state between
// calls apart from the call log.
type Client struct {
	baseURL   string
	listLimit int
	http      *http.Client
	logger    ports.Logger
	clock     ports.Clock
	calls     *gatewaylog.Log
}

// New creates a gateway client. calls may be nil.
func New(cfg Config, logger ports.Logger, clock ports.Clock, calls *gatewaylog.Log) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		listLimit: cfg.ListLimit,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		clock:     clock,
		calls:     calls,
	}
}

// BaseURL returns the backend base URL in use.
func (c *Client) BaseURL() string { return c.baseURL }

// ListExecutions fetches all executions in the backend's order. Entries that
// fail validation are dropped and logged; the rest keep their positions.
func (c *Client) ListExecutions(ctx context.Context) ([]*trace.Execution, error) {
	path := "/api/executions"
	if c.listLimit > 0 {
		path += "?limit=" + strconv.Itoa(c.listLimit)
	}
	call := c.begin("list_executions", http.MethodGet, path)
	defer c.finish(call)

	body, err := c.do(ctx, call, nil)
	if err != nil {
		return nil, err
	}
	list, dropped, err := trace.ParseExecutionList(body)
	if err != nil {
		return nil, c.decodeError(call, err)
	}
	for _, d := range dropped {
		c.logger.Warn("dropping invalid execution", "error", d)
	}
	call.Executions = len(list)
	c.logger.Debug("listed executions", "count", len(list), "dropped", len(dropped))
	return list, nil
}

// GetExecution fetches one execution by id.
func (c *Client) GetExecution(ctx context.Context, id string) (*trace.Execution, error) {
	call := c.begin("get_execution", http.MethodGet, "/api/executions/"+url.PathEscape(id))
	defer c.finish(call)

	body, err := c.do(ctx, call, nil)
	if err != nil {
		return nil, err
	}
	exec, err := trace.ParseExecution(body)
	if err != nil {
		return nil, c.decodeError(call, err)
	}
	call.Executions = 1
	return exec, nil
}

// RunDemo posts a reference product and returns the backend's verdict.
func (c *Client) RunDemo(ctx context.Context, req demo.Request) (*demo.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding demo request: %w", err)
	}
	call := c.begin("run_demo", http.MethodPost, "/api/demo/run-competitor-selection")
	defer c.finish(call)

	body, err := c.do(ctx, call, payload)
	if err != nil {
		return nil, err
	}
	var resp demo.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.decodeError(call, err)
	}
	return &resp, nil
}

// Health checks that the backend answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	call := c.begin("health", http.MethodGet, "/api/health")
	defer c.finish(call)

	_, err := c.do(ctx, call, nil)
	return err
}

func (c *Client) begin(op, method, path string) *gatewaylog.Call {
	return &gatewaylog.Call{Time: c.clock.Now(), Operation: op, Method: method, URL: c.baseURL + path}
}

func (c *Client) finish(call *gatewaylog.Call) {
	call.Duration = c.clock.Now().Sub(call.Time)
	if c.calls != nil {
		c.calls.Record(*call)
	}
}

func (c *Client) do(ctx context.Context, call *gatewaylog.Call, payload []byte) ([]byte, error) {
	op, target := call.Operation, call.URL

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, target, reader)
	if err != nil {
		call.Error = err.Error()
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		call.Error = err.Error()
		c.logger.Warn("backend unreachable", "op", op, "url", target, "error", err)
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Message: networkMessage(err), Err: err}
	}
	defer resp.Body.Close()
	call.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		call.Error = err.Error()
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &GatewayError{
			Kind:    KindHTTP,
			Op:      op,
			Status:  resp.StatusCode,
			Message: httpMessage(resp.StatusCode, body),
		}
		call.Error = gerr.Message
		c.logger.Warn("backend returned error", "op", op, "url", target, "status", resp.StatusCode)
		return nil, gerr
	}

	c.logger.Debug("backend call", "op", op, "url", target, "status", resp.StatusCode)
	return body, nil
}

func (c *Client) decodeError(call *gatewaylog.Call, err error) error {
	call.Error = err.Error()
	c.logger.Warn("malformed backend response", "op", call.Operation, "error", err)
	return &GatewayError{Kind: KindDecode, Op: call.Operation, Message: "malformed response: " + err.Error(), Err: err}
}

// FastAPI reports failures as {"detail": "..."}; validation failures use a
// list of objects with a "msg" field.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func httpMessage(status int, body []byte) string {
	prefix := fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return prefix
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil && detail != "" {
		return prefix + ": " + detail
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return prefix + ": " + strings.Join(msgs, "; ")
		}
	}
	return prefix
}

func networkMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return "backend did not respond in time"
		}
		return "failed to reach backend: " + uerr.Err.Error()
	}
	return "failed to reach backend: " + err.Error()
}
