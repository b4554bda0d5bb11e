package commentsclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type listResponse struct {
	Comments []entity.Comment `json:"comments"`
}

type createResponse struct {
	Comment entity.Comment `json:"comment"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the comments API of a running marketd.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

var _ port.CommentService = (*Client)(nil)

// New creates a new instance of Client.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("CommentsClient"),
	}
}

// List fetches a market's comments, newest first.
func (c *Client) List(ctx context.Context, marketID int64) ([]entity.Comment, error) {
	requestURL := c.baseURL + "/api/comments?" + url.Values{"marketId": {strconv.FormatInt(marketID, 10)}}.Encode()

	var out listResponse
	if err := c.do(ctx, fasthttp.MethodGet, requestURL, nil, fasthttp.StatusOK, &out); err != nil {
		return nil, err
	}
	if out.Comments == nil {
		out.Comments = []entity.Comment{}
	}
	return out.Comments, nil
}

// Create posts a comment. Rejected input is returned as an
// entity.InvalidInputError carrying the server's message.
func (c *Client) Create(ctx context.Context, in entity.CommentInput) (entity.Comment, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return entity.Comment{}, fmt.Errorf("failed to marshal comment: %w", err)
	}

	var out createResponse
	if err := c.do(ctx, fasthttp.MethodPost, c.baseURL+"/api/comments", body, fasthttp.StatusCreated, &out); err != nil {
		return entity.Comment{}, err
	}
	return out.Comment, nil
}

func (c *Client) do(ctx context.Context, method, requestURL string, body []byte, wantStatus int, out any) error {
	c.logger.Debug("Requesting comments API", zap.String("method", method), zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if body != nil {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to comments API", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.Error("Failed to execute request to comments API (with default timeout)", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
	}

	rawBody := resp.Body()
	status := resp.StatusCode()

	if status != wantStatus {
		var apiErr errorResponse
		_ = json.Unmarshal(rawBody, &apiErr)
		if status == fasthttp.StatusBadRequest && apiErr.Error != "" {
			return entity.ValidationError(apiErr.Error)
		}
		c.logger.Error("Comments API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody),
		)
		if apiErr.Error != "" {
			return fmt.Errorf("comments API request to %s failed with status %d: %s", requestURL, status, apiErr.Error)
		}
		return fmt.Errorf("comments API request to %s failed with status %d", requestURL, status)
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal comments API response from %s: %w", requestURL, err)
	}
	return nil
}
