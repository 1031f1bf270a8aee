// Package signal reloads project state when the process receives SIGHUP.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// ReloadFunc re-reads whatever the running process caches from disk.
type ReloadFunc func(ctx context.Context) error

// ReloadHandler runs a ReloadFunc on every SIGHUP, so a long-running checker
// session picks up edited .gitignore files and newly added skills without a
// restart. Reload errors are logged and the previous state stays in use.
type ReloadHandler struct {
	mu      sync.Mutex
	reload  ReloadFunc
	logger  zerolog.Logger
	sigCh   chan os.Signal
	stopCh  chan struct{}
	cancel  context.CancelFunc
	running bool
}

// NewReloadHandler creates a handler. A nil reload makes every signal a no-op.
func NewReloadHandler(reload ReloadFunc, logger zerolog.Logger) *ReloadHandler {
	return &ReloadHandler{
		reload: reload,
		logger: logger,
	}
}

// Start begins listening for SIGHUP until Stop is called or ctx is done.
// Calling Start on a running handler does nothing.
func (h *ReloadHandler) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return
	}
	h.running = true

	ctx, h.cancel = context.WithCancel(ctx)
	h.sigCh = make(chan os.Signal, 1)
	h.stopCh = make(chan struct{})
	signal.Notify(h.sigCh, syscall.SIGHUP)

	// Captured so Stop can reset the fields without racing the listener.
	sigCh, stopCh := h.sigCh, h.stopCh
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-sigCh:
				_ = h.Trigger(ctx)
			}
		}
	}()
}

// Stop stops listening. It is safe to call more than once.
func (h *ReloadHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return
	}
	h.running = false

	signal.Stop(h.sigCh)
	close(h.stopCh)
	h.cancel()
	h.sigCh, h.stopCh, h.cancel = nil, nil, nil
}

// Running reports whether the handler is listening.
func (h *ReloadHandler) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Trigger runs the reload immediately, as if SIGHUP had been received.
func (h *ReloadHandler) Trigger(ctx context.Context) error {
	if h.reload == nil {
		return nil
	}

	h.logger.Info().Msg("reloading project state")
	if err := h.reload(ctx); err != nil {
		h.logger.Error().Err(err).Msg("reload failed, keeping previous state")
		return err
	}
	h.logger.Debug().Msg("reload complete")
	return nil
}
