package gateway

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

	"github.com/viant/scy/cred"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/tracing"
	"go.uber.org/zap"
)

// RegistrationKeyHeader carries the capability registration token.
const RegistrationKeyHeader = "x-vines-service-registration-key"

const (
	defaultTimeout = 30 * time.Second
	errorBodyLimit = 4096
)

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL           string
	registrationURL   string
	registrationToken string
	basic             *cred.Basic
	http              *http.Client
	logger            *zap.Logger
}

var _ Service = (*Client)(nil)

type registrationRequest struct {
	Blocks []task.Block `json:"blocks"`
}

type registrationResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Success bool `json:"success"`
	} `json:"data"`
}

// Poll fetches a batch of tasks of the given type.
func (c *Client) Poll(ctx context.Context, taskType, workerID string, count int, domain string) ([]*task.Task, error) {
	if count <= 0 {
		count = 1
	}
	query := url.Values{}
	query.Set("workerid", workerID)
	query.Set("count", strconv.Itoa(count))
	if domain != "" {
		query.Set("domain", domain)
	}
	target := c.baseURL + "/tasks/poll/batch/" + url.PathEscape(taskType) + "?" + query.Encode()
	var tasks []*task.Task
	if _, err := c.do(ctx, "gateway.Poll "+taskType, http.MethodGet, target, nil, nil, true, &tasks); err != nil {
		return nil, fmt.Errorf("poll %s: %w", taskType, err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

// Report sends an outcome. Invalid outcomes are rejected before any request.
func (c *Client) Report(ctx context.Context, outcome *task.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}
	if _, err := c.do(ctx, "gateway.Report", http.MethodPost, c.baseURL+"/tasks", nil, outcome, true, nil); err != nil {
		return fmt.Errorf("report task %s: %w", outcome.TaskID, err)
	}
	return nil
}

// RegisterTaskDefinitions posts definitions as a JSON array.
func (c *Client) RegisterTaskDefinitions(ctx context.Context, definitions ...*task.Definition) error {
	if len(definitions) == 0 {
		return nil
	}
	if _, err := c.do(ctx, "gateway.RegisterTaskDefinitions", http.MethodPost, c.baseURL+"/metadata/taskdefs", nil, definitions, true, nil); err != nil {
		return fmt.Errorf("register task definitions: %w", err)
	}
	return nil
}

// RegisterCapability posts the block to the registration endpoint.
func (c *Client) RegisterCapability(ctx context.Context, block task.Block) error {
	if c.registrationURL == "" {
		return fmt.Errorf("registration URL was empty: %w", ErrRegistration)
	}
	target := strings.TrimRight(c.registrationURL, "/") + "/api/blocks/register"
	headers := map[string]string{RegistrationKeyHeader: c.registrationToken}
	response := &registrationResponse{}
	status, err := c.do(ctx, "gateway.RegisterCapability", http.MethodPost, target, headers, &registrationRequest{Blocks: []task.Block{block}}, false, response)
	if err != nil {
		regErr := &RegistrationError{Block: block.Name(), StatusCode: status, Message: err.Error()}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			regErr.Message = statusErr.Body
		}
		return regErr
	}
	if response.Code != http.StatusOK || !response.Data.Success {
		return &RegistrationError{Block: block.Name(), StatusCode: status, Code: response.Code, Message: response.Message}
	}
	return nil
}

func (c *Client) do(ctx context.Context, spanName, method, target string, headers map[string]string, body interface{}, withAuth bool, out interface{}) (status int, err error) {
	ctx, span := tracing.StartSpan(ctx, spanName, tracing.KindClient)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"http.method": method, "http.url": target})

	var reqBody io.Reader
	if body != nil {
		data, mErr := json.Marshal(body)
		if mErr != nil {
			return 0, fmt.Errorf("marshal body: %w", mErr)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if withAuth && c.basic != nil && c.basic.Username != "" {
		req.SetBasicAuth(c.basic.Username, c.basic.Password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", target),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		c.logger.Warn("http_client_request", append(fields, zap.Error(err))...)
		return 0, err
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetStatusFromHTTPCode(status)
	c.logger.Debug("http_client_request", append(fields, zap.Int("status", status))...)

	if status >= 400 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return status, &StatusError{Method: method, URL: target, StatusCode: status, Body: strings.TrimSpace(string(slurp))}
	}
	if out == nil || status == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return status, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return status, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}

// New creates a Client for the orchestrator at baseURL.
func New(baseURL string, opts ...Option) *Client {
	ret := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
