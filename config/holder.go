// Package config provides configuration loading and hot reload.
package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Holder owns the live configuration of a running server. The file is
// re-read on change or SIGHUP; listeners only hear about reloads that
// actually changed something.
type Holder struct {
	path     string
	logger   zerolog.Logger
	debounce time.Duration

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)
	onError  []func(error)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads path and returns a holder serving it.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &Holder{
		path:     abs,
		logger:   logger.With().Str("config", abs).Logger(),
		debounce: DefaultDebounce,
		config:   cfg,
		stopCh:   make(chan struct{}),
	}, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// OnChange registers fn for successful reloads that changed the config.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	h.mu.Unlock()
}

// OnError registers fn for reloads that failed to load or validate.
func (h *Holder) OnError(fn func(error)) {
	h.mu.Lock()
	h.onError = append(h.onError, fn)
	h.mu.Unlock()
}

// Reload re-reads the file. On failure the previous config stays active.
func (h *Holder) Reload() error {
	next, err := Load(h.path)
	if err != nil {
		h.mu.RLock()
		listeners := h.onError
		h.mu.RUnlock()

		h.logger.Error().Err(err).Msg("config rejected, keeping previous")
		for _, fn := range listeners {
			fn(err)
		}
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.config
	if *prev == *next {
		h.mu.Unlock()
		h.logger.Debug().Msg("config unchanged")
		return nil
	}
	h.config = next
	listeners := h.onChange
	h.mu.Unlock()

	applied, pending := diffFields(prev, next)
	h.logger.Info().
		Strs("applied", applied).
		Strs("restart_required", pending).
		Msg("config reloaded")

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// WatchFile reloads whenever the config file is written or replaced. The
// parent directory is watched so atomic renames are seen.
func (h *Holder) WatchFile() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(h.path), err)
	}
	h.watcher = w
	go h.watch(w)
	return nil
}

// WatchSignals reloads on SIGHUP until Stop.
func (h *Holder) WatchSignals() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-hup:
				_ = h.Reload()
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. Safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watch(w *fsnotify.Watcher) {
	name := filepath.Base(h.path)
	timer := time.NewTimer(h.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			timer.Reset(h.debounce)

		case <-timer.C:
			_ = h.Reload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Warn().Err(err).Msg("config watcher")

		case <-h.stopCh:
			return
		}
	}
}

// diffFields splits the changed fields into those applied live and those
// that wait for a restart.
func diffFields(prev, next *Config) (applied, pending []string) {
	live := []struct {
		name    string
		changed bool
	}{
		{"export.else_policy", prev.Export.ElsePolicy != next.Export.ElsePolicy},
		{"export.fallback_color", prev.Export.FallbackColor != next.Export.FallbackColor},
		{"export.separator", prev.Export.Separator != next.Export.Separator},
		{"export.country_variable", prev.Export.CountryVariable != next.Export.CountryVariable},
		{"logging.level", prev.Logging.Level != next.Logging.Level},
	}
	static := []struct {
		name    string
		changed bool
	}{
		{"server.host", prev.Server.Host != next.Server.Host},
		{"server.port", prev.Server.Port != next.Server.Port},
		{"database.driver", prev.Database.Driver != next.Database.Driver},
		{"database.dsn", prev.Database.DSN != next.Database.DSN},
		{"ids.mode", prev.IDs.Mode != next.IDs.Mode},
		{"ids.prefix", prev.IDs.Prefix != next.IDs.Prefix},
		{"catalog.image_base_url", prev.Catalog.ImageBaseURL != next.Catalog.ImageBaseURL},
	}
	for _, f := range live {
		if f.changed {
			applied = append(applied, f.name)
		}
	}
	for _, f := range static {
		if f.changed {
			pending = append(pending, f.name)
		}
	}
	return applied, pending
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return []string{
		"export.else_policy",
		"export.fallback_color",
		"export.separator",
		"export.country_variable",
		"logging.level",
	}
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return []string{
		"server.host",
		"server.port",
		"database.driver",
		"database.dsn",
		"ids.mode",
		"ids.prefix",
		"catalog.image_base_url",
	}
}
