package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
)

// maxResponseSize bounds response bodies; gallery listings carry every image
// inline as base64.
const maxResponseSize = 256 << 20

var _ model.Backend = (*Client)(nil)

// Client talks to the image service HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient creates a new API client for the service at baseURL.
func NewClient(baseURL string, httpClient *http.Client, logger *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.doJSON(ctx, "register", http.MethodPost, "/register", nil, creds, &out); err != nil {
		return model.AuthResult{}, err
	}
	return out, nil
}

// Login authenticates an existing account.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", nil, creds, &out); err != nil {
		return model.AuthResult{}, err
	}
	return out, nil
}

// Generate asks the service to render an image for the prompt. The backend
// stores the result in the user's gallery when UserID is set.
func (c *Client) Generate(ctx context.Context, params model.GenerateParams) (model.GenerateResult, error) {
	query := url.Values{"prompt": {params.Prompt}}
	if params.UserID != "" {
		query.Set("user_id", params.UserID)
	}

	var out model.GenerateResult
	if err := c.doJSON(ctx, "generate", http.MethodGet, "/generate", query, nil, &out); err != nil {
		return model.GenerateResult{}, err
	}
	return out, nil
}

// Describe uploads an image and returns the service's caption.
func (c *Client) Describe(ctx context.Context, params model.DescribeParams) (model.DescribeResult, error) {
	body, contentType, err := encodeUpload(params)
	if err != nil {
		return model.DescribeResult{}, fmt.Errorf("describe: failed to encode upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/load", nil, body)
	if err != nil {
		return model.DescribeResult{}, fmt.Errorf("describe: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var out model.DescribeResult
	if err := c.do(req, "describe", &out); err != nil {
		return model.DescribeResult{}, err
	}
	return out, nil
}

// ListImages returns every gallery record of the user.
func (c *Client) ListImages(ctx context.Context, userID string) ([]model.ImageRecord, error) {
	query := url.Values{"user_id": {userID}}

	var out []model.ImageRecord
	if err := c.doJSON(ctx, "list images", http.MethodGet, "/images", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteImage removes an image. The service checks that userID owns it.
func (c *Client) DeleteImage(ctx context.Context, imageID, userID string) error {
	payload := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}

	return c.doJSON(ctx, "delete image", http.MethodDelete, "/images/"+url.PathEscape(imageID), nil, payload, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &model.ConnectivityError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &model.ConnectivityError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(op, resp.StatusCode, raw)
		c.logger.Debug("API client: request rejected",
			"op", op,
			"status", resp.StatusCode,
			"error", apiErr.Error())
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, model.ErrMalformedResponse, err)
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeUpload(params model.DescribeParams) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := params.Upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(params.Upload.Filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(params.Upload.Data); err != nil {
		return nil, "", err
	}

	if params.UserID != "" {
		if err := w.WriteField("user_id", params.UserID); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
