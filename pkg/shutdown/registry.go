// Package shutdown holds the process-wide shutdown hook registry. Components
// that own durable state register a hook so that a terminating process
// flushes and closes cleanly; an explicit close deregisters again. Hook
// functions must tolerate running after an explicit close already ran, since
// signal delivery can race with teardown.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu     sync.Mutex
	hooks  = make(map[uint64]*Hook)
	nextID uint64

	listenOnce sync.Once
)

// Hook is a registered shutdown function.
type Hook struct {
	id   uint64
	name string
	fn   func()
}

// Register adds fn to the process-wide shutdown list and returns a handle
// for deregistration.
func Register(name string, fn func()) *Hook {
	mu.Lock()
	defer mu.Unlock()
	nextID++
	h := &Hook{id: nextID, name: name, fn: fn}
	hooks[h.id] = h
	return h
}

// Deregister removes the hook. Deregistering an already-deregistered hook is
// a no-op.
func (h *Hook) Deregister() {
	mu.Lock()
	defer mu.Unlock()
	delete(hooks, h.id)
}

// Trigger runs all currently registered hooks. Hooks run outside the
// registry lock so they may deregister themselves.
func Trigger() {
	mu.Lock()
	snapshot := make([]*Hook, 0, len(hooks))
	for _, h := range hooks {
		snapshot = append(snapshot, h)
	}
	mu.Unlock()
	for _, h := range snapshot {
		h.fn()
	}
}

// Listen installs a SIGINT/SIGTERM handler (once) that triggers the
// registered hooks and then exits. Libraries never call this; the binary
// entry point does.
func Listen() {
	listenOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			Trigger()
			os.Exit(0)
		}()
	})
}
