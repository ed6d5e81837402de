package terminal

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// exitHook restores the console when a termination signal arrives, then
// lets the signal take its default effect
type exitHook struct {
	restore func()
	log     *slog.Logger
	sigCh   chan os.Signal
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// installExitHook starts watching termination signals
func installExitHook(restore func(), log *slog.Logger) *exitHook {
	h := &exitHook{
		restore: restore,
		log:     log,
		sigCh:   make(chan os.Signal, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	signal.Notify(h.sigCh, exitSignals...)
	go h.watchLoop()
	return h
}

// stop detaches the hook without restoring anything
func (h *exitHook) stop() {
	h.once.Do(func() {
		signal.Stop(h.sigCh)
		close(h.stopCh)
	})
	<-h.doneCh
}

// watchLoop waits for the first termination signal
func (h *exitHook) watchLoop() {
	defer close(h.doneCh)

	select {
	case <-h.stopCh:
		return
	case sig := <-h.sigCh:
		h.log.Info("restoring console before exit", "signal", sig.String())
		h.restore()
		signal.Stop(h.sigCh)
		reraise(sig)
	}
}
