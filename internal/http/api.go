package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mentor-connect/internal/dashboard"
	"mentor-connect/internal/domain"
	"mentor-connect/internal/service"
	"mentor-connect/internal/session"
)

// Options tunes the transport layer.
type Options struct {
	MaxAvatarBytes int64
	CookieSecure   bool
	// RateLimit is the sustained number of login and reset attempts per
	// second allowed from one client address. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts  service.AccountService
	passwords service.PasswordService
	contact   service.ContactService
	dashboard dashboard.Source
	sessions  *session.Manager
	logger    logrus.FieldLogger
	opts      Options
	limiter   *ipRateLimiter
}

func NewHandler(
	accounts service.AccountService,
	passwords service.PasswordService,
	contact service.ContactService,
	source dashboard.Source,
	sessions *session.Manager,
	logger logrus.FieldLogger,
	opts Options,
) *Handler {
	if opts.MaxAvatarBytes <= 0 {
		opts.MaxAvatarBytes = 5 << 20
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts:  accounts,
		passwords: passwords,
		contact:   contact,
		dashboard: source,
		sessions:  sessions,
		logger:    logger,
		opts:      opts,
		limiter:   newIPRateLimiter(opts.RateLimit, opts.RateBurst),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger), prometheusMiddleware(), h.loadSession())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", h.home)
	router.GET("/about", h.staticPage("about"))
	router.GET("/features", h.staticPage("features"))
	router.GET("/contact", h.contactForm)
	router.POST("/contact", h.submitContact)

	auth := router.Group("/auth")
	{
		auth.GET("/signup", h.signupForm)
		auth.POST("/signup", h.signup)
		auth.GET("/login", h.loginForm)
		auth.POST("/login", h.limiter.middleware(), h.login)
		auth.GET("/logout", h.logout)
		auth.POST("/logout", h.logout)
		auth.GET("/password-reset", h.passwordResetForm)
		auth.POST("/password-reset", h.limiter.middleware(), h.requestPasswordReset)
		auth.GET("/password-reset/confirm", h.passwordResetConfirmForm)
		auth.POST("/password-reset/confirm", h.limiter.middleware(), h.confirmPasswordReset)
	}

	member := router.Group("/", RequireAuth())
	{
		member.GET("/auth/complete-profile", h.completeProfileForm)
		member.POST("/auth/complete-profile", h.completeProfile)
		member.GET("/profile", h.profile)
		member.GET("/dashboard", h.dashboardRedirect)
	}

	student := router.Group("/", RequireAuth(), RequireRole(domain.RoleStudent))
	{
		student.GET("/student/dashboard", h.studentDashboard)
		student.GET("/auth/student-profile", h.roleProfile("student_profile"))
	}

	volunteer := router.Group("/", RequireAuth(), RequireRole(domain.RoleVolunteer))
	{
		volunteer.GET("/volunteer/dashboard", h.volunteerDashboard)
		volunteer.GET("/auth/volunteer-profile", h.roleProfile("volunteer_profile"))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// dashboardPath is the landing page for role after login or profile update.
func dashboardPath(role domain.Role) string {
	if role == domain.RoleStudent {
		return "/student/dashboard"
	}
	return "/volunteer/dashboard"
}
