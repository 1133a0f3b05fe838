package blessing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"family-store/internal/metrics"
	"family-store/internal/model"

	"github.com/rs/zerolog"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-3-flash-preview"
)

const promptTemplate = "請根據這份訂單商品：%s，寫一句極簡、溫馨且具有質感的繁體中文祝福語（20-40字）。" +
	"這句話會放在收據的最下方送給家人。" +
	"風格要像 Apple 的文案那樣充滿溫度但又簡約。" +
	"直接輸出文字，不要標點符號之外的任何格式。"

// GeminiConfig configures the generative blessing selector.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiSelector asks the Gemini API for a blessing based on the ordered
// item names. Every failure is logged and answered by the fallback selector.
type GeminiSelector struct {
	cfg      GeminiConfig
	client   *http.Client
	fallback Selector
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewGeminiSelector creates a selector. With an empty API key every call goes
// straight to fallback.
func NewGeminiSelector(cfg GeminiConfig, fallback Selector, m *metrics.Metrics, logger zerolog.Logger) *GeminiSelector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if fallback == nil {
		fallback = NewRandomSelector(DefaultBlessings(), nil)
	}

	return &GeminiSelector{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		fallback: fallback,
		metrics:  m,
		logger:   logger.With().Str("component", "gemini-blessing").Logger(),
	}
}

// Select returns a generated blessing or the fallback's choice.
func (s *GeminiSelector) Select(ctx context.Context, order *model.Order) string {
	if s.cfg.APIKey == "" {
		s.metrics.IncBlessing("fallback")
		return s.fallback.Select(ctx, order)
	}

	text, err := s.generate(ctx, order)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("blessing generation failed, using fallback")
		s.metrics.IncBlessing("fallback")
		return s.fallback.Select(ctx, order)
	}

	s.metrics.IncBlessing("gemini")
	return text
}

// Prompt builds the generation prompt for an order.
func Prompt(order *model.Order) string {
	return fmt.Sprintf(promptTemplate, strings.Join(order.ItemNames(), "、"))
}

func (s *GeminiSelector) generate(ctx context.Context, order *model.Order) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: Prompt(order)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.cfg.BaseURL, s.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Kept out of the URL so transport errors never carry the key.
	req.Header.Set("x-goog-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text content in gemini response")
	}
	return text, nil
}
