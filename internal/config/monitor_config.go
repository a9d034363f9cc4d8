package config

import (
	"time"
)

// MonitorConfig defines the resource being watched, where its last-seen ETag is
// persisted, and how the HEAD request is issued.
type MonitorConfig struct {
	URL                string `json:"url,omitempty" yaml:"url,omitempty" validate:"required,httpurl"`
	StorePath          string `json:"store_path,omitempty" yaml:"store_path,omitempty" validate:"required"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool   `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0"`
	EnableHTTP2        bool   `json:"enable_http2" yaml:"enable_http2"`
	Proxy              string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
}

// NewDefaultMonitorConfig creates default monitor configuration. URL has no default.
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		StorePath:          DefaultMonitorStorePath,
		HTTPTimeoutSeconds: DefaultMonitorHTTPTimeoutSeconds,
		UserAgent:          DefaultMonitorUserAgent,
		FollowRedirects:    DefaultMonitorFollowRedirects,
		MaxRedirects:       DefaultMonitorMaxRedirects,
		EnableHTTP2:        DefaultMonitorEnableHTTP2,
	}
}

// HTTPTimeout returns the request timeout, falling back to the default when unset.
func (c MonitorConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return DefaultMonitorHTTPTimeoutSeconds * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
