package provider

import (
	"context"
	"fmt"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	xhttp "ArenaPull/pkg/http"
	"ArenaPull/pkg/util"
)

// Client implements a Forecaster backed by a local prediction HTTP service.
type Client struct {
	name      string
	modelName string
	baseURL   string
	client    *xhttp.Client
}

// New creates a new prediction provider client.
func New(name, modelName, baseURL string, timeout time.Duration) drepo.Forecaster {
	return &Client{
		name:      name,
		modelName: modelName,
		baseURL:   baseURL,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Name returns the local provider name from config.
func (c *Client) Name() string { return c.name }

// ModelName returns the registered arena model name used in uploads.
func (c *Client) ModelName() string { return c.modelName }

type wirePoint struct {
	TS    string  `json:"ts"`
	Value float64 `json:"value"`
}

type predictRequest struct {
	History        []wirePoint `json:"history"`
	Horizon        int         `json:"horizon"`
	Freq           string      `json:"freq"`
	QuantileLevels []float64   `json:"quantile_levels,omitempty"`
}

type predictResponse struct {
	Forecasts []float64            `json:"forecasts"`
	Quantiles map[string][]float64 `json:"quantiles,omitempty"`
}

// Predict asks the provider for a point forecast (and quantiles, when the
// provider supports them) over the full history of one series.
func (c *Client) Predict(ctx context.Context, history []models.Observation, horizon int, freq string, quantileLevels []float64) (*models.PredictionResult, error) {
	req := predictRequest{
		History:        make([]wirePoint, 0, len(history)),
		Horizon:        horizon,
		Freq:           freq,
		QuantileLevels: quantileLevels,
	}
	for _, o := range history {
		req.History = append(req.History, wirePoint{TS: util.FormatUTC(o.Timestamp), Value: o.Value})
	}

	var resp predictResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/predict",
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("provider %s predict: %w", c.name, err)
	}

	return &models.PredictionResult{
		Values:    resp.Forecasts,
		Quantiles: resp.Quantiles,
	}, nil
}

// Health checks the provider health endpoint.
func (c *Client) Health(ctx context.Context) error {
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/health",
	}, nil)
	if err != nil {
		return fmt.Errorf("provider %s health: %w", c.name, err)
	}
	return nil
}
