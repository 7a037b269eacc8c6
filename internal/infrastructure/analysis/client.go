package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"videonet/pkg/circuitbreaker"
)

// Client consumes the external video-analysis service through its HTTP
// contract: analyze an uploaded video, then chat against the analysis in a
// filename-keyed session. No vision logic lives on this side.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

type ChatRequest struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Analyze forwards the uploaded video to the analysis service and returns
// its response verbatim.
func (c *Client) Analyze(ctx context.Context, filename string, file io.Reader) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/video/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// Chat sends a message into the filename-keyed analysis session.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/video/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) ChatHistory(ctx context.Context, filename string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.historyURL(filename), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) ClearChatHistory(ctx context.Context, filename string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.historyURL(filename), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) historyURL(filename string) string {
	return c.baseURL + "/api/video/chat/history/" + url.PathEscape(filename)
}

// do runs the request through the circuit breaker so a dead analysis
// service fails fast instead of tying up handler goroutines.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	var data json.RawMessage
	err := c.breaker.Execute(req.Context(), func() error {
		var execErr error
		data, execErr = c.roundTrip(req)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) roundTrip(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warnw("analysis service returned error",
			"status", resp.StatusCode,
			"path", req.URL.Path,
		)
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	return data, nil
}
