// Package server runs the application's HTTP listener in the background and
// hands the boot sequence a Handle to wait on until it has shut down.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/GoCodeAlone/boot/logging"
)

// State of a Handle.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Handle is shared by the serving goroutine and whoever waits for shutdown.
// The serving side drains the server and then sets the shutdown flag; the
// waiting side blocks on a condition variable until it sees the flag.
type Handle struct {
	srv    *http.Server
	ln     net.Listener
	logger logging.Logger
	drain  time.Duration

	state atomic.Int32

	mu       sync.Mutex
	cond     *sync.Cond
	shutdown bool
	done     chan struct{}
	cause    string
	serveErr error

	stopReq  chan struct{}
	stopOnce sync.Once
}

// Start binds the listener and serves handler in the background. Bind
// errors are returned directly.
func Start(cfg Config, handler http.Handler, logger logging.Logger) (*Handle, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	if logger == nil {
		logger = logging.Nop()
	}

	h := &Handle{
		logger:  logger,
		drain:   DrainTimeout,
		done:    make(chan struct{}),
		stopReq: make(chan struct{}),
	}
	h.cond = sync.NewCond(&h.mu)
	h.state.Store(int32(StateStarting))

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		h.state.Store(int32(StateStopped))
		return nil, fmt.Errorf("%w: %s: %w", ErrBind, addr, err)
	}
	h.ln = ln
	h.srv = &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var sigCh chan os.Signal
	if cfg.HandleSignals {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}

	serveErr := make(chan error, 1)
	go func() {
		err := h.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	go h.supervise(sigCh, serveErr)

	h.state.Store(int32(StateRunning))
	logger.Info("HTTP server started", "address", ln.Addr().String())
	return h, nil
}

// supervise waits for a shutdown trigger, drains, then wakes waiters.
func (h *Handle) supervise(sigCh chan os.Signal, serveErr <-chan error) {
	var cause string
	var failure error
	select {
	case sig := <-sigCh:
		cause = "signal " + sig.String()
	case <-h.stopReq:
		cause = "stop requested"
	case err, ok := <-serveErr:
		cause = "serve exited"
		if ok {
			failure = err
		}
	}
	if sigCh != nil {
		signal.Stop(sigCh)
	}

	h.state.Store(int32(StateStopping))
	h.logger.Info("Shutting down HTTP server", "cause", cause, "drain", h.drain)

	ctx, cancel := context.WithTimeout(context.Background(), h.drain)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("Graceful shutdown incomplete, closing connections", "error", err)
		_ = h.srv.Close()
	}

	h.state.Store(int32(StateStopped))
	h.logger.Info("HTTP server stopped")
	h.markShutdown(cause, failure)
}

// markShutdown sets the flag and wakes every waiter. Later calls are no-ops.
func (h *Handle) markShutdown(cause string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return
	}
	h.shutdown = true
	h.cause = cause
	h.serveErr = err
	close(h.done)
	h.cond.Broadcast()
}

// Wait blocks until the server has shut down.
func (h *Handle) Wait() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for !h.shutdown {
		h.cond.Wait()
	}
}

// Stop requests a graceful shutdown. It does not wait; call Wait for that.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stopReq) })
}

// Done is closed once the server has shut down.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Stopped reports whether the shutdown flag is set.
func (h *Handle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shutdown
}

// Cause describes what triggered shutdown.
func (h *Handle) Cause() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cause
}

// Err returns the error that made the server exit on its own, if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serveErr
}

// State returns the current state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Addr returns the bound address.
func (h *Handle) Addr() net.Addr { return h.ln.Addr() }

// Port returns the bound TCP port.
func (h *Handle) Port() int {
	if tcp, ok := h.ln.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
