// Package client talks to the mailflow REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"mailflow/editor"
	"mailflow/models"
	"mailflow/utils"
)

const defaultTimeout = 15 * time.Second

// APIError is a failed call: a non-2xx status or success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Client implements editor.API, editor.FlowAPI and editor.OptionsAPI over
// HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *logrus.Entry
}

type Option func(*Client)

// WithTimeout bounds calls whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "flowctl"},
		timeout: defaultTimeout,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("component", "api_client")
	return c
}

var (
	_ editor.API        = (*Client)(nil)
	_ editor.FlowAPI    = (*Client)(nil)
	_ editor.OptionsAPI = (*Client)(nil)
)

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, in, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	args := req.URI().QueryArgs()
	for k, v := range query {
		args.Add(k, v)
	}
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(raw)
	}

	start := time.Now()
	err := c.http.DoTimeout(req, resp, timeout)
	log := c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"latency": time.Since(start),
	})
	if err != nil {
		log.WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	status := resp.StatusCode()
	log.WithField("status", status).Debug("request done")

	body := resp.Body()
	var env utils.Envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if status < 200 || status >= 300 {
				return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
			}
			return fmt.Errorf("decode response of %s %s: %w", method, path, err)
		}
	}
	if status < 200 || status >= 300 || !env.Success {
		return &APIError{Status: status, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) GetFlow(ctx context.Context, automationID string) (editor.FlowShell, error) {
	var shell editor.FlowShell
	err := c.do(ctx, fasthttp.MethodGet, "/api/work-flow/flow",
		map[string]string{"automationId": automationID}, nil, &shell)
	return shell, err
}

func (c *Client) UpdateFlow(ctx context.Context, automationID, status string, data models.FlowUpdateData) error {
	return c.do(ctx, fasthttp.MethodPut, "/api/work-flow/flow", nil, map[string]interface{}{
		"automationId": automationID,
		"status":       status,
		"updateData":   data,
	}, nil)
}

// CreateFlow creates an inactive automation on the given list.
func (c *Client) CreateFlow(ctx context.Context, name, listID, websiteID string) (models.Automation, error) {
	var out struct {
		Automation models.Automation `json:"automation"`
	}
	err := c.do(ctx, fasthttp.MethodPost, "/api/work-flow/flow", nil, map[string]string{
		"name":      name,
		"listId":    listID,
		"websiteId": websiteID,
	}, &out)
	return out.Automation, err
}

func (c *Client) DeleteFlow(ctx context.Context, automationID string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/work-flow/flow",
		map[string]string{"automationId": automationID}, nil, nil)
}

func (c *Client) ListSteps(ctx context.Context, flowID string) ([]models.StepRecord, error) {
	var out struct {
		Steps []models.StepRecord `json:"steps"`
	}
	err := c.do(ctx, fasthttp.MethodGet, "/api/work-flow/steps",
		map[string]string{"flowId": flowID}, nil, &out)
	return out.Steps, err
}

func (c *Client) CreateStep(ctx context.Context, flowID string, step models.StepRecord) (models.StepRecord, error) {
	var out struct {
		Step models.StepRecord `json:"step"`
	}
	err := c.do(ctx, fasthttp.MethodPost, "/api/work-flow/steps", nil, map[string]interface{}{
		"flowId": flowID,
		"step":   step,
	}, &out)
	return out.Step, err
}

func (c *Client) UpdateStep(ctx context.Context, flowID, stepID string, data models.StepUpdate) error {
	return c.do(ctx, fasthttp.MethodPut, "/api/work-flow/steps", nil, map[string]interface{}{
		"flowId":   flowID,
		"stepId":   stepID,
		"stepData": data,
	}, nil)
}

func (c *Client) DeleteStep(ctx context.Context, flowID, stepID string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/work-flow/steps",
		map[string]string{"flowId": flowID, "stepId": stepID}, nil, nil)
}

func (c *Client) ListLists(ctx context.Context, websiteID string) ([]models.SubscriberList, error) {
	var out struct {
		Lists []models.SubscriberList `json:"lists"`
	}
	var query map[string]string
	if websiteID != "" {
		query = map[string]string{"websiteId": websiteID}
	}
	err := c.do(ctx, fasthttp.MethodGet, "/api/list", query, nil, &out)
	return out.Lists, err
}

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var out struct {
		Templates []models.Template `json:"templates"`
	}
	err := c.do(ctx, fasthttp.MethodGet, "/api/templates", nil, nil, &out)
	return out.Templates, err
}

func (c *Client) ListServers(ctx context.Context) ([]models.MailServer, error) {
	var out struct {
		Servers []models.MailServer `json:"servers"`
	}
	err := c.do(ctx, fasthttp.MethodGet, "/api/servers", nil, nil, &out)
	return out.Servers, err
}

func (c *Client) ListWebsites(ctx context.Context) ([]models.Website, error) {
	var out struct {
		Websites []models.Website `json:"websites"`
	}
	err := c.do(ctx, fasthttp.MethodGet, "/api/websites", nil, nil, &out)
	return out.Websites, err
}
