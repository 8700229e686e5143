package server

import (
	"fmt"
	"sync"
	"time"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
)

// SecretSource reads KVv2 secrets. *config.VaultClient satisfies it.
type SecretSource interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeyWatcher polls the Vault API keys secret and swaps the server's key
// set whenever the secret version advances.
type APIKeyWatcher struct {
	mu sync.RWMutex

	client       SecretSource
	secretPath   string
	pollInterval time.Duration
	apply        func(keys []string)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastReload  time.Time
	lastError   string
}

// NewAPIKeyWatcher creates a watcher that hands new keys to apply.
func NewAPIKeyWatcher(client SecretSource, secretPath string, pollInterval time.Duration, apply func([]string), logger *errors.Logger) *APIKeyWatcher {
	return &APIKeyWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		apply:        apply,
		logger:       logger,
	}
}

// Start begins polling Vault for secret changes
func (w *APIKeyWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("api key watcher is already running")
	}
	if w.pollInterval <= 0 {
		return fmt.Errorf("api key watcher needs a positive poll interval")
	}
	w.stopChan = make(chan struct{})
	w.running = true
	go w.pollLoop(w.stopChan)
	w.logger.Info("API key watcher started", "secret_path", w.secretPath, "poll_interval", w.pollInterval)
	return nil
}

// Stop stops the watcher. It is safe to call on a stopped watcher.
func (w *APIKeyWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	close(w.stopChan)
	w.running = false
	w.logger.Info("API key watcher stopped")
	return nil
}

func (w *APIKeyWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-stop:
			return
		}
	}
}

// poll applies the secret's keys when its version is newer than the last one
// seen. An empty key list is ignored so a bad write cannot disable auth.
func (w *APIKeyWatcher) poll() {
	secret, err := w.client.GetSecretV2(w.secretPath)
	if err == nil && secret == nil {
		err = fmt.Errorf("secret %s not found", w.secretPath)
	}
	if err != nil {
		w.recordError(err)
		w.logger.LogError(err, "Failed to check Vault for API key updates")
		return
	}

	w.mu.RLock()
	seen := w.lastVersion
	w.mu.RUnlock()
	if secret.Version <= seen {
		return
	}

	raw, _ := secret.Data["keys"].(string)
	keys := config.SplitKeys(raw)
	if len(keys) == 0 {
		w.recordError(fmt.Errorf("secret version %d has no keys", secret.Version))
		w.logger.Warn("Ignoring API key secret without keys", "path", w.secretPath, "version", secret.Version)
		return
	}

	w.apply(keys)

	w.mu.Lock()
	w.lastVersion = secret.Version
	w.lastReload = time.Now()
	w.lastError = ""
	w.mu.Unlock()
	w.logger.Info("API keys reloaded from Vault", "count", len(keys), "version", secret.Version)
}

func (w *APIKeyWatcher) recordError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastError = err.Error()
}

// Status returns the current status of the watcher for /stats
func (w *APIKeyWatcher) Status() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := map[string]any{
		"running":       w.running,
		"poll_interval": w.pollInterval.String(),
		"secret_path":   w.secretPath,
		"last_version":  w.lastVersion,
	}
	if !w.lastReload.IsZero() {
		status["last_reload"] = w.lastReload.UTC().Format(time.RFC3339)
	}
	if w.lastError != "" {
		status["last_error"] = w.lastError
	}
	return status
}
