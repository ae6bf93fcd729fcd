package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/forecast"
)

// Forecaster runs a single forecast.
type Forecaster interface {
	Run(ctx context.Context, req forecast.Request) (*domain.ForecastResult, error)
}

// ForecastTransformer implements Transformer by decoding a JSON forecast
// request, running it and encoding the result.
type ForecastTransformer struct {
	forecaster Forecaster
	logger     *slog.Logger
}

// NewTransformer creates a ForecastTransformer backed by f.
func NewTransformer(f Forecaster, logger *slog.Logger) *ForecastTransformer {
	return &ForecastTransformer{
		forecaster: f,
		logger:     logger,
	}
}

func (t *ForecastTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	var req forecast.Request
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.OutputMessage{}, fmt.Errorf("decode forecast request: %w", err)
	}

	res, err := t.forecaster.Run(ctx, req)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	data, err := json.Marshal(res)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize forecast result: %w", err)
	}

	headers := map[string]string{
		"event":        string(res.Meta.Event),
		"run_id":       res.Meta.RunID,
		"generated_at": res.Meta.GeneratedAt.Format(time.RFC3339),
	}
	if len(raw.Key) > 0 {
		headers["request_key"] = string(raw.Key)
	}

	t.logger.Debug("forecast serialized", "run_id", res.Meta.RunID, "bytes", len(data))
	return domain.OutputMessage{
		Key:     []byte(res.Meta.RunID),
		Value:   data,
		Headers: headers,
	}, nil
}
