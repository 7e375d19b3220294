package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/service"
)

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

func (h *Handler) signupForm(c *gin.Context) {
	if currentUser(c) != nil {
		h.redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "signup", gin.H{"roles": domain.Roles})
}

func (h *Handler) signup(c *gin.Context) {
	if currentUser(c) != nil {
		h.redirect(c, "/")
		return
	}

	var in service.RegisterInput
	if err := bindForm(c, &in); err != nil {
		h.badForm(c, "signup")
		return
	}
	avatar, err := h.avatarUpload(c)
	if err != nil {
		h.badForm(c, "signup")
		return
	}
	in.Avatar = avatar

	account, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "signup", err)
		return
	}

	if _, err := h.sessions.Start(c, &account.User); err != nil {
		// the account exists; the user can still log in
		h.logger.WithError(err).WithField("user_id", account.User.ID).Warn("start session after registration")
		addFlash(c, flashSuccess, "Registration successful!")
		h.redirect(c, "/auth/login")
		return
	}
	addFlash(c, flashSuccess, "Registration successful!")
	h.redirect(c, "/auth/complete-profile")
}

func (h *Handler) loginForm(c *gin.Context) {
	if u := currentUser(c); u != nil {
		h.redirect(c, dashboardPath(u.Role))
		return
	}
	h.render(c, http.StatusOK, "login", gin.H{"next": safeNext(c.Query("next"))})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := bindForm(c, &req); err != nil {
		h.badForm(c, "login")
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	if _, err := h.sessions.Start(c, user); err != nil {
		h.internalError(c, err)
		return
	}

	addFlash(c, flashSuccess, "Successfully logged in!")
	if next := safeNext(req.Next); next != "" {
		h.redirect(c, next)
		return
	}
	h.redirect(c, dashboardPath(user.Role))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.logger.WithError(err).Warn("destroy session")
	}
	addFlash(c, flashSuccess, "Successfully logged out!")
	h.redirect(c, "/")
}
