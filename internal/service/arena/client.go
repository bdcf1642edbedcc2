package arena

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	xhttp "ArenaPull/pkg/http"
	"ArenaPull/pkg/util"
)

// ErrUnauthorized means the arena API rejected the configured API key.
var ErrUnauthorized = errors.New("arena: api key rejected")

// Client implements the ChallengeAPI backed by the arena HTTP backend.
// Authenticated calls carry the X-API-Key header.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// New creates a new arena API client.
func New(baseURL, apiKey string, timeout time.Duration) drepo.ChallengeAPI {
	return &Client{
		baseURL: baseURL,
		client: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithDefaultHeader("X-API-Key", apiKey),
		),
	}
}

// wire shapes; timestamps travel as strings and are parsed leniently.

type wireChallenge struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	RegistrationStart string   `json:"registration_start"`
	RegistrationEnd   string   `json:"registration_end"`
	Frequency         string   `json:"frequency"`
	Horizon           string   `json:"horizon"`
	Series            []string `json:"series,omitempty"`
}

type wireObservation struct {
	TS    string  `json:"ts"`
	Value float64 `json:"value"`
}

type wireContextSeries struct {
	SeriesName   string            `json:"series_name"`
	Observations []wireObservation `json:"observations"`
}

type wireForecastPoint struct {
	TS    string  `json:"ts"`
	Value float64 `json:"value"`
}

type wireForecastSeries struct {
	SeriesName string              `json:"series_name"`
	Forecasts  []wireForecastPoint `json:"forecasts"`
}

type wireUpload struct {
	ChallengeID int64                `json:"challenge_id"`
	ModelName   string               `json:"model_name"`
	Forecasts   []wireForecastSeries `json:"forecasts"`
}

// Health checks the arena API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if err := c.get(ctx, "/health", nil); err != nil {
		return fmt.Errorf("arena health: %w", err)
	}
	return nil
}

// ListChallenges fetches the current challenge listing.
func (c *Client) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var wire []wireChallenge
	if err := c.get(ctx, "/challenges", &wire); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	out := make([]models.Challenge, 0, len(wire))
	for _, w := range wire {
		ch, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("challenge %d: %w", w.ID, err)
		}
		out = append(out, ch.Challenge)
	}
	return out, nil
}

// GetChallenge fetches the full challenge record including series names.
func (c *Client) GetChallenge(ctx context.Context, id int64) (*models.ChallengeDetail, error) {
	var wire wireChallenge
	if err := c.get(ctx, fmt.Sprintf("/challenges/%d", id), &wire); err != nil {
		return nil, fmt.Errorf("get challenge %d: %w", id, err)
	}
	detail, err := wire.toDomain()
	if err != nil {
		return nil, fmt.Errorf("challenge %d: %w", id, err)
	}
	return detail, nil
}

// GetContextData fetches the history series for a challenge.
func (c *Client) GetContextData(ctx context.Context, id int64) ([]models.ContextSeries, error) {
	var wire []wireContextSeries
	if err := c.get(ctx, fmt.Sprintf("/challenges/%d/context-data", id), &wire); err != nil {
		return nil, fmt.Errorf("get context data %d: %w", id, err)
	}

	out := make([]models.ContextSeries, 0, len(wire))
	for _, ws := range wire {
		s := models.ContextSeries{
			Name:         ws.SeriesName,
			Observations: make([]models.Observation, 0, len(ws.Observations)),
		}
		for _, wo := range ws.Observations {
			ts, ok := util.ParseTime(wo.TS)
			if !ok {
				return nil, fmt.Errorf("context data %d: series %s: bad timestamp %q", id, ws.SeriesName, wo.TS)
			}
			s.Observations = append(s.Observations, models.Observation{Timestamp: ts, Value: wo.Value})
		}
		out = append(out, s)
	}
	return out, nil
}

// UploadForecast submits one payload for a (challenge, model) pair. A non-2xx
// response fails the whole payload.
func (c *Client) UploadForecast(ctx context.Context, payload *models.UploadPayload) error {
	wire := wireUpload{
		ChallengeID: payload.ChallengeID,
		ModelName:   payload.ModelName,
		Forecasts:   make([]wireForecastSeries, 0, len(payload.Series)),
	}
	for _, s := range payload.Series {
		ws := wireForecastSeries{
			SeriesName: s.Name,
			Forecasts:  make([]wireForecastPoint, 0, len(s.Points)),
		}
		for _, p := range s.Points {
			ws.Forecasts = append(ws.Forecasts, wireForecastPoint{
				TS:    util.FormatUTC(p.Timestamp),
				Value: p.Value,
			})
		}
		wire.Forecasts = append(wire.Forecasts, ws)
	}

	if err := c.post(ctx, "/forecasts/upload", wire, nil); err != nil {
		return fmt.Errorf("upload challenge %d model %s: %w", payload.ChallengeID, payload.ModelName, err)
	}
	return nil
}

// ListModels returns the models registered under the configured API key.
func (c *Client) ListModels(ctx context.Context) ([]models.RegisteredModel, error) {
	var out []models.RegisteredModel
	if err := c.get(ctx, "/api/v1/models/", &out); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return out, nil
}

// RegisterModel registers a model under the configured API key.
func (c *Client) RegisterModel(ctx context.Context, reg models.ModelRegistration) (*models.RegisteredModel, error) {
	var out models.RegisteredModel
	if err := c.post(ctx, "/api/v1/models/register", reg, &out); err != nil {
		return nil, fmt.Errorf("register model %s: %w", reg.Name, err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	return c.mapAuthError(c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + path,
	}, dest))
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	return c.mapAuthError(c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + path,
		Body:   body,
	}, dest))
}

func (c *Client) mapAuthError(err error) error {
	if err == nil {
		return nil
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}

func (w *wireChallenge) toDomain() (*models.ChallengeDetail, error) {
	start, ok := util.ParseTime(w.RegistrationStart)
	if !ok {
		return nil, fmt.Errorf("bad registration_start %q", w.RegistrationStart)
	}
	end, ok := util.ParseTime(w.RegistrationEnd)
	if !ok {
		return nil, fmt.Errorf("bad registration_end %q", w.RegistrationEnd)
	}
	return &models.ChallengeDetail{
		Challenge: models.Challenge{
			ID:                w.ID,
			Name:              w.Name,
			RegistrationStart: start,
			RegistrationEnd:   end,
			Frequency:         w.Frequency,
			Horizon:           w.Horizon,
		},
		Series: w.Series,
	}, nil
}
