package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-connect/internal/service"
)

type passwordResetRequest struct {
	Email string `form:"email" json:"email"`
}

type passwordResetConfirmRequest struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

func (h *Handler) passwordResetForm(c *gin.Context) {
	h.render(c, http.StatusOK, "password_reset", nil)
}

func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := bindForm(c, &req); err != nil {
		h.badForm(c, "password_reset")
		return
	}

	if err := h.passwords.RequestReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "password_reset", err)
		return
	}

	addFlash(c, flashSuccess, "Password reset email has been sent!")
	h.redirect(c, "/auth/login")
}

func (h *Handler) passwordResetConfirmForm(c *gin.Context) {
	token := c.Query("token")
	user, err := h.passwords.VerifyResetToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			h.render(c, http.StatusOK, "password_reset_confirm", gin.H{"valid": false})
			return
		}
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "password_reset_confirm", gin.H{
		"valid": true,
		"token": token,
		"email": user.Email,
	})
}

func (h *Handler) confirmPasswordReset(c *gin.Context) {
	var req passwordResetConfirmRequest
	if err := bindForm(c, &req); err != nil {
		h.badForm(c, "password_reset_confirm")
		return
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	err := h.passwords.ConfirmReset(c.Request.Context(), req.Token, req.Password, req.PasswordConfirm)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			h.render(c, http.StatusBadRequest, "password_reset_confirm", gin.H{"valid": false})
			return
		}
		h.fail(c, "password_reset_confirm", err)
		return
	}

	addFlash(c, flashSuccess, "Your password has been set. You may go ahead and log in now.")
	h.redirect(c, "/auth/login")
}
