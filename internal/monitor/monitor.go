// Package monitor reports whether a single HTTP resource changed since the last
// check by comparing its ETag against the one persisted in an etagstore.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/aleister1102/etagwatch/internal/config"
	"github.com/aleister1102/etagwatch/internal/etagstore"
	"github.com/aleister1102/etagwatch/internal/httpclient"
	"github.com/rs/zerolog"
)

// ChangeMonitor checks one URL against one store. Calls are safe for concurrent
// use; HasChanged serializes its read-compare-write per instance.
type ChangeMonitor struct {
	url        string
	storePath  string
	store      *etagstore.Store
	client     *httpclient.HTTPClient
	ownsClient bool
	logger     zerolog.Logger

	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New builds the HTTP client described by cfg and opens (or creates) the store.
func New(ctx context.Context, cfg config.MonitorConfig, logger zerolog.Logger) (*ChangeMonitor, error) {
	if err := validateMonitorConfig(cfg); err != nil {
		return nil, err
	}

	client, err := initializeHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	m, err := newChangeMonitor(ctx, cfg, client, logger)
	if err != nil {
		client.CloseIdleConnections()
		return nil, err
	}
	m.ownsClient = true
	return m, nil
}

// NewWithClient is New with a caller-supplied HTTP client. Close leaves the client alone.
func NewWithClient(ctx context.Context, cfg config.MonitorConfig, client *httpclient.HTTPClient, logger zerolog.Logger) (*ChangeMonitor, error) {
	if err := validateMonitorConfig(cfg); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &ConfigError{Field: "client", Reason: "http client is required"}
	}
	return newChangeMonitor(ctx, cfg, client, logger)
}

func newChangeMonitor(ctx context.Context, cfg config.MonitorConfig, client *httpclient.HTTPClient, logger zerolog.Logger) (*ChangeMonitor, error) {
	instanceLogger := logger.With().Str("component", "ChangeMonitor").Str("url", cfg.URL).Logger()

	store, err := etagstore.Open(ctx, cfg.StorePath, logger)
	if err != nil {
		instanceLogger.Error().Err(err).Str("store_path", cfg.StorePath).Msg("Failed to open etag store")
		if errors.Is(err, etagstore.ErrSchemaMismatch) {
			return nil, &StoreSchemaError{Path: cfg.StorePath, Err: err}
		}
		return nil, &StoreInitError{Path: cfg.StorePath, Err: err}
	}

	instanceLogger.Debug().Str("store_path", cfg.StorePath).Msg("Change monitor ready")
	return &ChangeMonitor{
		url:       cfg.URL,
		storePath: cfg.StorePath,
		store:     store,
		client:    client,
		logger:    instanceLogger,
	}, nil
}

func validateMonitorConfig(cfg config.MonitorConfig) error {
	if cfg.URL == "" {
		return &ConfigError{Field: "url", Reason: "must not be empty"}
	}
	if !config.IsHTTPURL(cfg.URL) {
		return &ConfigError{Field: "url", Value: cfg.URL, Reason: "must be an absolute http or https URL"}
	}
	if cfg.StorePath == "" {
		return &ConfigError{Field: "store_path", Reason: "must not be empty"}
	}
	return nil
}

func initializeHTTPClient(cfg config.MonitorConfig, logger zerolog.Logger) (*httpclient.HTTPClient, error) {
	builder := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(cfg.HTTPTimeout()).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithFollowRedirects(cfg.FollowRedirects).
		WithMaxRedirects(cfg.MaxRedirects).
		WithHTTP2(cfg.EnableHTTP2).
		WithProxy(cfg.Proxy)
	if cfg.UserAgent != "" {
		builder = builder.WithUserAgent(cfg.UserAgent)
	}

	client, err := builder.Build()
	if err != nil {
		return nil, &ConfigError{Field: "http_client", Reason: err.Error()}
	}
	return client, nil
}

// URL returns the monitored resource.
func (m *ChangeMonitor) URL() string {
	return m.url
}

// FetchLatestIdentifier issues a HEAD request and returns the normalized ETag.
func (m *ChangeMonitor) FetchLatestIdentifier(ctx context.Context) (string, error) {
	if m.closed.Load() {
		return "", ErrClosed
	}

	resp, err := m.client.Head(ctx, m.url)
	if err != nil {
		return "", &NetworkError{URL: m.url, Err: err}
	}

	if resp.IsError() {
		m.logger.Warn().Int("status_code", resp.StatusCode).Msg("Received error HTTP status")
		return "", &NetworkError{
			URL:        m.url,
			StatusCode: resp.StatusCode,
			Err:        httpclient.NewHTTPErrorWithURL(resp.StatusCode, m.url),
		}
	}

	raw, ok := resp.Header(etagHeader)
	tag := NormalizeETag(raw)
	if !ok || tag == "" {
		m.logger.Warn().Int("status_code", resp.StatusCode).Msg("Response has no ETag header")
		return "", &MissingHeaderError{URL: m.url, Header: etagHeader, StatusCode: resp.StatusCode}
	}

	m.logger.Debug().Str("etag", tag).Msg("Fetched latest ETag")
	return tag, nil
}

// FetchStoredIdentifier returns the last persisted ETag.
func (m *ChangeMonitor) FetchStoredIdentifier(ctx context.Context) (string, error) {
	if m.closed.Load() {
		return "", ErrClosed
	}

	tag, err := m.store.LastTag(ctx)
	if err != nil {
		return "", &StoreReadError{Path: m.storePath, Err: err}
	}
	return tag, nil
}

// PersistIdentifier overwrites the stored ETag.
func (m *ChangeMonitor) PersistIdentifier(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistIdentifier(ctx, identifier)
}

func (m *ChangeMonitor) persistIdentifier(ctx context.Context, identifier string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	if err := m.store.SetLastTag(ctx, identifier); err != nil {
		return &StoreWriteError{Path: m.storePath, Err: err}
	}
	return nil
}

// HasChanged fetches the current ETag and compares it with the stored one. When
// they differ the new ETag is persisted and true is returned. Nothing is written
// if either read fails.
func (m *ChangeMonitor) HasChanged(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest, err := m.FetchLatestIdentifier(ctx)
	if err != nil {
		return false, err
	}

	stored, err := m.FetchStoredIdentifier(ctx)
	if err != nil {
		return false, err
	}

	if stored == latest {
		m.logger.Debug().Str("etag", latest).Msg("Resource unchanged")
		return false, nil
	}

	if err := m.persistIdentifier(ctx, latest); err != nil {
		return false, err
	}

	m.logger.Info().Str("previous_etag", stored).Str("etag", latest).Msg("Resource changed")
	return true, nil
}

// Close releases the store handle and, when the monitor built it, the HTTP
// client's idle connections. Subsequent calls return the first result.
func (m *ChangeMonitor) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.closed.Store(true)
		if m.ownsClient {
			m.client.CloseIdleConnections()
		}
		m.closeErr = m.store.Close()
	})
	return m.closeErr
}
