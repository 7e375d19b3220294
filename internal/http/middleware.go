package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

const (
	ctxUser    = "mentor.user"
	ctxSession = "mentor.session"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		httpRequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
		})
		if u := currentUser(c); u != nil {
			entry = entry.WithField("user_id", u.ID)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		default:
			entry.Info("request")
		}
	}
}

// loadSession resolves the session cookie into the signed-in user. Requests
// without a valid session continue anonymously.
func (h *Handler) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.sessions.Load(c)
		if err != nil {
			h.internalError(c, fmt.Errorf("load session: %w", err))
			c.Abort()
			return
		}
		if s == nil {
			c.Next()
			return
		}

		user, err := h.accounts.GetUser(c.Request.Context(), s.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				h.internalError(c, fmt.Errorf("load session user: %w", err))
				c.Abort()
				return
			}
			_ = h.sessions.Destroy(c)
			c.Next()
			return
		}

		c.Set(ctxSession, s)
		c.Set(ctxUser, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets only users of role through. Others get an access-denied
// notice and land on the home page.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		if u.Role != role {
			addFlash(c, flashError, fmt.Sprintf("Access denied. You are not a %s.", role))
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

type ipRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	limiters  map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     refillTime(perSecond, burst),
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

// refillTime is how long a bucket takes to fill up again. An entry idle for
// that long behaves like a new one and can be dropped.
func refillTime(perSecond float64, burst int) time.Duration {
	const (
		floor   = time.Minute
		ceiling = 24 * time.Hour
	)
	if perSecond <= 0 {
		return floor
	}
	d := float64(burst) / perSecond * float64(time.Second)
	switch {
	case d < float64(floor):
		return floor
	case d > float64(ceiling):
		return ceiling
	}
	return time.Duration(d)
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for key, e := range l.limiters {
			if now.Sub(e.seen) >= l.idle {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = e
	}
	e.seen = now
	return e.limiter
}

func (l *ipRateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
			return
		}
		c.Next()
	}
}
