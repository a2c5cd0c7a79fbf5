package sink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event name used when SocketIO.Event is empty.
const DefaultEvent = "snapshot"

// SocketIO emits every snapshot of a result as one event on a socket.io
// namespace. Values of a grouped result are nested by group, as in the
// YAML and JSON output. Each Write opens its own connection and closes it
// when done.
type SocketIO struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SnapshotEvent is the payload of one emitted event.
type SnapshotEvent struct {
	Source string         `json:"source"`
	Index  int            `json:"index"`
	Total  int            `json:"total"`
	Values map[string]any `json:"values"`
}

func (s *SocketIO) Write(ctx context.Context, r Result) error {
	event := s.Event
	if event == "" {
		event = DefaultEvent
	}
	namespace := s.Namespace
	if namespace == "" {
		namespace = "/"
	}
	ctx, logger := ctxlog.With(ctx, "sink", "socketio", "url", s.URL, "event", event)
	logger.Debug("Sink started.")
	defer logger.Debug("Sink finished.")

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q needs a scheme and a host", s.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetReconnection(false)
	opts.SetTimeout(timeout)
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	var isConnected atomic.Bool
	connected := make(chan error, 1)
	signal := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected.", "namespace", namespace, "sid", io.Id())
		signal(nil)
	})
	io.On(types.EventName("disconnect"), func(...any) {
		isConnected.Store(false)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		signal(err)
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		return fmt.Errorf("timed out while waiting for initial connection to %s", s.URL)
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", s.URL, err)
		}
	}

	total := r.Values.SnapshotCount()
	for i := range total {
		if err := opCtx.Err(); err != nil {
			return fmt.Errorf("emitting snapshot %d of %d: %w", i, total, err)
		}
		if !isConnected.Load() {
			return fmt.Errorf("connection lost before snapshot %d of %d", i, total)
		}
		payload := SnapshotEvent{Source: r.Source, Index: i, Total: total, Values: r.Row(i)}
		if err := io.Emit(event, payload); err != nil {
			return fmt.Errorf("emitting snapshot %d of %d: %w", i, total, err)
		}
	}
	logger.Info("Emitted snapshots.", "source", r.Source, "count", total)
	return nil
}
