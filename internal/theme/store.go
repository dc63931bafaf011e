package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Preference is the on-disk form of the theme choice.
type Preference struct {
	Theme string `toml:"theme"`
}

// Store persists the theme preference in a TOML file. The file is read once
// by Load and rewritten on every change.
type Store struct {
	path string

	mu      sync.RWMutex
	current string
}

// NewStore returns a store backed by path, initialised to Light.
// Call Load to pick up a saved preference.
func NewStore(path string) *Store {
	return &Store{path: path, current: NameLight}
}

// Load reads the preference file, keeping the default if it doesn't exist.
// An unknown theme name also falls back to the default.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading theme preference: %w", err)
	}

	var p Preference
	if err := toml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing theme preference: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if Valid(p.Theme) {
		s.current = p.Theme
	}
	return nil
}

// Current returns the active theme.
func (s *Store) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ByName(s.current)
}

// Set switches to the named theme and saves it.
func (s *Store) Set(name string) (Theme, error) {
	if !Valid(name) {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(name); err != nil {
		return ByName(s.current), err
	}
	s.current = name
	return ByName(name), nil
}

// Toggle flips between light and dark and saves the result.
func (s *Store) Toggle() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Other(s.current)
	if err := s.save(next); err != nil {
		return ByName(s.current), err
	}
	s.current = next
	return ByName(next), nil
}

func (s *Store) save(name string) error {
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating theme dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating theme file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(Preference{Theme: name}); err != nil {
		return fmt.Errorf("writing theme preference: %w", err)
	}
	return nil
}
