package monitoring

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/evstation/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{TracesSampleRate: 0.5}.Validate())
	assert.Error(t, Config{TracesSampleRate: 2}.Validate())
}

func TestSentryMonitorTagsEvents(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, e)
			return nil
		},
	})
	require.NoError(t, err)
	m := &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}

	m.CaptureException(errors.New("forecast unavailable"), map[string]string{"component": "planner"})
	m.CaptureException(nil, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "planner", events[0].Tags["component"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "forecast unavailable", events[0].Exception[0].Value)
}
