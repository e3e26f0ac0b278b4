package socketio_compute

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// connectTimeout bounds the initial handshake with the farm.
const connectTimeout = 15 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

type socketTransport struct {
	io *socket.Socket
}

func (s *socketTransport) emit(event string, payload any) {
	s.io.Emit(event, payload)
}

func (s *socketTransport) close() {
	s.io.Disconnect()
}

// Dial connects to the render farm at opts.URL and returns a backend that
// sends jobs over the connection.
func Dial(ctx context.Context, opts registry.BackendOptions) (*Backend, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "socketio", "url", opts.URL)
	logger.Info("Connecting to render farm...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("render farm URL %q needs a scheme and a host", opts.URL)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	b := newBackend(ctx, &socketTransport{io: io}, opts.Timeout)
	io.On(types.EventName(EventResult), b.HandleResult)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to render farm", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return b, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Register registers the backend as "socketio".
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBackend("socketio", func(ctx context.Context, opts registry.BackendOptions) (render.Backend, error) {
		return Dial(ctx, opts)
	})
}
