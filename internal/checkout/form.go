package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"family-store/internal/model"

	"github.com/rs/zerolog"
)

// DefaultFormEndpoint is the order collection form.
const DefaultFormEndpoint = "https://docs.google.com/forms/d/e/1FAIpQLScC_1XAtjya1Lpq9KoxpQZh-Tpy-95emW1vWt98_0mS6p0H0g/formResponse"

// Form field identifiers.
const (
	FieldOrderer    = "entry.604511376"
	FieldItems      = "entry.963051135"
	FieldTotal      = "entry.1626695502"
	FieldPickupDate = "entry.1088144416"
)

// FormPayload is the order as sent to the collection form.
type FormPayload struct {
	Orderer    string
	Lines      []model.OrderLine
	Total      int
	PickupDate string
}

// Values encodes the payload as form fields. The item lines are sent as a
// JSON array.
func (p *FormPayload) Values() (url.Values, error) {
	lines := p.Lines
	if lines == nil {
		lines = []model.OrderLine{}
	}
	items, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order lines: %w", err)
	}

	values := url.Values{}
	values.Set(FieldOrderer, p.Orderer)
	values.Set(FieldItems, string(items))
	values.Set(FieldTotal, strconv.Itoa(p.Total))
	values.Set(FieldPickupDate, p.PickupDate)
	return values, nil
}

// FormSubmitter delivers an order to the remote form.
type FormSubmitter interface {
	Submit(ctx context.Context, payload *FormPayload) error
}

// HTTPFormSubmitter posts orders as URL-encoded forms.
type HTTPFormSubmitter struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewHTTPFormSubmitter creates a submitter. A nil client uses a zero
// http.Client, so only transport defaults bound the request.
func NewHTTPFormSubmitter(endpoint string, client *http.Client, logger zerolog.Logger) *HTTPFormSubmitter {
	if endpoint == "" {
		endpoint = DefaultFormEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFormSubmitter{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With().Str("component", "form-submitter").Logger(),
	}
}

// Submit posts the payload. Only transport failures are errors; the form
// answers opaquely, so any response status counts as delivered.
func (s *HTTPFormSubmitter) Submit(ctx context.Context, payload *FormPayload) error {
	values, err := payload.Values()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create form request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("endpoint", s.endpoint).Msg("failed to submit order form")
		return fmt.Errorf("failed to submit order form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Info().
		Int("status", resp.StatusCode).
		Int("total", payload.Total).
		Int("line_count", len(payload.Lines)).
		Msg("order form submitted")

	return nil
}
