package config

import (
	"sync"
	"sync/atomic"
)

// Live holds the current settings. Reads are lock free; writers replace the
// whole value and notify subscribers.
type Live struct {
	current atomic.Pointer[Settings]

	mu          sync.Mutex
	subscribers []func(Settings)
}

func NewLive(cfg Settings) *Live {
	l := &Live{}
	l.current.Store(&cfg)
	return l
}

func (l *Live) Get() Settings {
	if cfg := l.current.Load(); cfg != nil {
		return *cfg
	}
	return DefaultSettings()
}

func (l *Live) Set(cfg Settings) {
	l.current.Store(&cfg)
	l.mu.Lock()
	subscribers := append([]func(Settings){}, l.subscribers...)
	l.mu.Unlock()
	for _, fn := range subscribers {
		fn(cfg)
	}
}

// Subscribe registers fn to run after every Set.
func (l *Live) Subscribe(fn func(Settings)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mu.Unlock()
}
