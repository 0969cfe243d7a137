package config

import (
	"errors"
	"os"
	"sync"
)

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// Listener is notified with the new config after every successful update.
type Listener func(*Config)

// Service owns the live configuration: it hands out snapshots, applies
// validated updates, persists them and fans them out to listeners.
type Service struct {
	path string

	mu        sync.RWMutex
	cfg       *Config
	listeners []Listener
}

// NewService loads the config file, falling back to defaults if it does not
// exist yet.
func NewService(path string) (*Service, error) {
	cfg, err := Load(path)
	if err != nil {
		if !isNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}
	return &Service{path: path, cfg: cfg}, nil
}

// Get returns the current config. Callers must not mutate it; updates go
// through Update.
func (s *Service) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// OnChange registers a listener for config updates.
func (s *Service) OnChange(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Update applies mutate to a copy of the current config, validates it,
// persists it and notifies listeners. A failed validation or save leaves
// the current config in place.
func (s *Service) Update(mutate func(*Config)) error {
	s.mu.Lock()
	next := *s.cfg
	mutate(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.Save(s.path); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = &next
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(&next)
	}
	return nil
}

// UpdateStoreSizeKb persists a new ring capacity. The embedder resizes the
// store from its OnChange listener.
func (s *Service) UpdateStoreSizeKb(sizeKb int) error {
	return s.Update(func(cfg *Config) {
		cfg.Store.SizeKb = sizeKb
	})
}
