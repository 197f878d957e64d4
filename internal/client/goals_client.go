package client

import (
	"context"
	"fmt"
	"time"

	"massa_gateway/internal/entity"
	"massa_gateway/internal/infrastructure/httpclient"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// goalsClientImpl is the fasthttp implementation of httpclient.GoalsClient.
type goalsClientImpl struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewGoalsClient creates a goals webhook client. Replies larger than
// maxResponseBytes are rejected.
func NewGoalsClient(timeout time.Duration, maxResponseBytes int, logger *zap.Logger) httpclient.GoalsClient {
	return &goalsClientImpl{
		client: &fasthttp.Client{
			MaxResponseBodySize: maxResponseBytes,
		},
		timeout: timeout,
		logger:  logger.Named("GoalsClient"),
	}
}

// PostMessage implements the GoalsClient interface.
func (c *goalsClientImpl) PostMessage(ctx context.Context, goalsURL, authorization string, payload any) (*entity.GoalsReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode goals payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(goalsURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if authorization != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+authorization)
	}
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Posting message to goals endpoint", zap.String("url", goalsURL))

	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > c.timeout {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Error("Failed to execute request to goals endpoint", zap.String("url", goalsURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", goalsURL, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("Goals endpoint replied", zap.String("url", goalsURL), zap.Int("statusCode", status))

	return &entity.GoalsReply{
		StatusCode: status,
		Status:     fasthttp.StatusMessage(status),
		Body:       append([]byte(nil), resp.Body()...),
	}, nil
}
