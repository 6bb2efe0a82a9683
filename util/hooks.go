package util

import "sync"

var (
	hooks   = make(map[string][]func() error)
	hooksMu sync.RWMutex
)

// Hook a function to execute on an event
func Hook(event string, fn func() error) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	hooks[event] = append(hooks[event], fn)
}

// Trigger all hooks for specified event. Stops on the first error.
func Trigger(event string) (err error) {
	hooksMu.RLock()
	fns := hooks[event]
	hooksMu.RUnlock()

	for _, f := range fns {
		err = f()
		if err != nil {
			return
		}
	}
	return
}

// ClearHooks removes all hooks of an event. Only used in tests.
func ClearHooks(event string) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	delete(hooks, event)
}
