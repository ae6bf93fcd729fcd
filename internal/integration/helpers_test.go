//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("sunrise-forecast-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// --- in-memory providers ---

type stubSolar struct{}

func (stubSolar) EventTime(_ context.Context, _ domain.Geo, date time.Time, kind domain.EventKind, loc *time.Location) (time.Time, error) {
	y, m, d := date.Date()
	if kind == domain.Sunset {
		return time.Date(y, m, d, 17, 41, 0, 0, loc), nil
	}
	return time.Date(y, m, d, 5, 58, 0, 0, loc), nil
}

// stubGridded serves the same clear-sky day for every point and date.
type stubGridded struct{}

func (stubGridded) HourlyForecast(_ context.Context, _ domain.Geo, loc *time.Location, days int) (*domain.HourlySeries, error) {
	now := domain.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	series := &domain.HourlySeries{Location: loc, Values: map[string][]*float64{}}
	for h := 0; h < days*24; h++ {
		series.Times = append(series.Times, start.Add(time.Duration(h)*time.Hour).Format(domain.HourKeyLayout))
		add := func(field string, v float64) {
			series.Values[field] = append(series.Values[field], domain.Float(v))
		}
		add(domain.FieldLowCloud, 10)
		add(domain.FieldMidCloud, 40)
		add(domain.FieldHighCloud, 20)
		add(domain.FieldVisibility, 24000)
		add(domain.FieldTemperature, 21)
		add(domain.FieldDewpoint, 14)
		add(domain.FieldWindSpeed, 3)
		add(domain.FieldPrecipitation, 0)
	}
	return series, nil
}
