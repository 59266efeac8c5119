package app

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"

	"prithvipulse/adapters/backend"
	"prithvipulse/internal"
	"prithvipulse/internal/config"
	"prithvipulse/internal/testkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type harness struct {
	mock       *testkit.MockBackend
	server     *httptest.Server
	client     *backend.Client
	dispatcher *Dispatcher
}

func newHarness(t *testing.T, timeout time.Duration, opts ...DispatcherOption) *harness {
	t.Helper()

	mock := testkit.NewMockBackend(false)
	server := httptest.NewServer(mock.Handler())
	client := backend.NewClient(config.BackendConfig{BaseURL: server.URL, Timeout: timeout},
		backend.WithLogger(internal.NewNopLogger()))

	opts = append([]DispatcherOption{WithDispatchLogger(internal.NewNopLogger())}, opts...)
	h := &harness{
		mock:       mock,
		server:     server,
		client:     client,
		dispatcher: NewDispatcher(client, opts...),
	}
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return h
}

// unreachableDispatcher points at a closed port
func unreachableDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	server := httptest.NewServer(testkit.NewMockBackend(false).Handler())
	url := server.URL
	server.Close()

	client := backend.NewClient(config.BackendConfig{BaseURL: url, Timeout: time.Second},
		backend.WithLogger(internal.NewNopLogger()))
	t.Cleanup(client.Close)
	return NewDispatcher(client, WithDispatchLogger(internal.NewNopLogger()))
}
