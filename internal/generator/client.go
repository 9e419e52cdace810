// Package generator holds the boundary to the external timetable generation
// engine. The engine receives the full constraint payload and entity lists and
// returns a flat assignment; everything combinatorial happens on its side.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	"github.com/rohitbihal/smart-classroom-api/pkg/config"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

// Client is the generation boundary. One call per generation attempt; there is
// no retry policy and no cancellation beyond the caller's context.
type Client interface {
	Generate(ctx context.Context, req dto.GenerationRequest) (*dto.GenerationResult, error)
}

// HTTPClient talks to the engine over HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient constructs a client from configuration.
func NewHTTPClient(cfg config.GeneratorConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Generate submits the constraint payload and decodes the assignment. Non-2xx
// responses and empty bodies surface verbatim as generation errors; they are
// never retried here.
func (c *HTTPClient) Generate(ctx context.Context, req dto.GenerationRequest) (*dto.GenerationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode generation payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build generation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "generation engine unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "failed to read generation response")
	}

	c.logger.Info("generation request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_bytes", len(raw)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = fmt.Sprintf("generation engine returned status %d", resp.StatusCode)
		}
		return nil, appErrors.Clone(appErrors.ErrGeneration, message)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, appErrors.Clone(appErrors.ErrGeneration, "generation engine returned an empty response")
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "generation engine returned an unreadable response")
	}
	normalize(result)
	return result, nil
}

// decodeResult accepts either a bare JSON array of entries or the richer
// {timetable, unscheduled} object, depending on engine deployment.
func decodeResult(raw []byte) (*dto.GenerationResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []models.TimetableEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode entry array: %w", err)
		}
		return &dto.GenerationResult{Timetable: entries}, nil
	}
	var result dto.GenerationResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("decode result object: %w", err)
	}
	if result.Timetable == nil {
		return nil, fmt.Errorf("response carries no timetable array")
	}
	return &result, nil
}

// normalize canonicalises session-type casing at the boundary so downstream
// analytics never see theory/lab variants.
func normalize(result *dto.GenerationResult) {
	for i := range result.Timetable {
		result.Timetable[i].Type = models.NormalizeSessionType(string(result.Timetable[i].Type))
		if result.Timetable[i].ClassType == "" {
			result.Timetable[i].ClassType = models.EntryRegular
		}
	}
}
