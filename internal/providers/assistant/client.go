package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talkbox/internal/domain"
)

const (
	healthPath     = "/health"
	chatPath       = "/api/chat"
	transcribePath = "/api/transcribe"

	audioFieldName = "audio"
	audioFileName  = "audio.webm"
)

// Config controls the assistant service connection.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.AssistantClient against the remote HTTP
// contract: GET /health, POST /api/chat, POST /api/transcribe.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// Health checks service reachability. Anything but a 2xx is an error.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Chat sends user text and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, text string) (domain.Reply, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	body, err := c.do(req)
	if err != nil {
		return domain.Reply{}, err
	}

	var reply domain.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to parse chat response: %w", err)
	}

	c.logger.Debug("chat round trip complete",
		zap.String("requestId", requestID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Bool("hasAudio", reply.Audio != ""))
	return reply, nil
}

// Transcribe uploads a recording as multipart form data and returns the
// transcript plus the assistant reply.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (domain.Transcription, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile(audioFieldName, audioFileName)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fileWriter.Write(audio); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+transcribePath, &buf)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	body, err := c.do(req)
	if err != nil {
		return domain.Transcription{}, err
	}

	var result domain.Transcription
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to parse transcribe response: %w", err)
	}

	c.logger.Debug("transcribe round trip complete",
		zap.String("requestId", requestID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("uploadBytes", len(audio)))
	return result, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
