// Package security provides the inbound request protections of the HTTP
// surface: security headers, per-IP rate limiting, request timeouts and
// input validation.
package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Config holds the tunables of the security middleware.
type Config struct {
	MaxInputLength    int           `json:"max_input_length"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxInputLength:    300,
		MaxRequestsPerMin: 60,
		RequestTimeout:    30 * time.Second,
	}
}

// Middleware bundles the security handlers. Per-IP limiters are created
// lazily and kept for the lifetime of the process.
type Middleware struct {
	config     Config
	mu         sync.Mutex
	ipLimiters map[string]*rate.Limiter
}

// New creates a Middleware with the given config.
func New(config Config) *Middleware {
	if config.MaxRequestsPerMin <= 0 {
		config.MaxRequestsPerMin = DefaultConfig().MaxRequestsPerMin
	}
	if config.MaxInputLength <= 0 {
		config.MaxInputLength = DefaultConfig().MaxInputLength
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Middleware{
		config:     config,
		ipLimiters: make(map[string]*rate.Limiter),
	}
}

// Headers sets the standard security response headers.
func (m *Middleware) Headers() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RateLimitByIP rejects clients exceeding the per-minute request budget.
func (m *Middleware) RateLimitByIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := m.limiterFor(c.ClientIP())
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

func (m *Middleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.ipLimiters[ip]
	if !ok {
		perSecond := rate.Limit(float64(m.config.MaxRequestsPerMin) / 60.0)
		limiter = rate.NewLimiter(perSecond, m.config.MaxRequestsPerMin/6+1)
		m.ipLimiters[ip] = limiter
	}
	return limiter
}

// RequestTimeout bounds how long a single request may run.
func (m *Middleware) RequestTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), m.config.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ValidateInput checks a user-supplied repository reference before it
// reaches the parser: length, encoding and obvious injection noise.
func (m *Middleware) ValidateInput(input string) error {
	if len(input) > m.config.MaxInputLength {
		return fmt.Errorf("input exceeds maximum length of %d characters", m.config.MaxInputLength)
	}
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("input contains invalid characters")
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("input contains invalid UTF-8 encoding")
	}

	suspicious := []string{
		"<script", "</script>", "javascript:",
		"union select", "drop table", ";--",
	}
	lower := strings.ToLower(input)
	for _, pattern := range suspicious {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains suspicious patterns")
		}
	}
	return nil
}
