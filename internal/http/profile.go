package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/service"
)

// accountPage loads the signed-in account and renders it under page.
func (h *Handler) accountPage(c *gin.Context, status int, page string, extra gin.H) {
	user := currentUser(c)
	account, err := h.accounts.GetAccount(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	data := gin.H{"profile": profileToResponse(account.Profile)}
	if url, err := h.accounts.AvatarURL(c.Request.Context(), &account.User); err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("resolve avatar url")
	} else if url != "" {
		data["avatar_url"] = url
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, page, data)
}

func (h *Handler) completeProfileForm(c *gin.Context) {
	h.accountPage(c, http.StatusOK, "complete_profile", nil)
}

func (h *Handler) completeProfile(c *gin.Context) {
	user := currentUser(c)

	var upd service.ProfileUpdate
	if err := bindForm(c, &upd.User); err != nil {
		h.badForm(c, "complete_profile")
		return
	}
	switch user.Role {
	case domain.RoleStudent:
		upd.Student = &service.StudentProfileInput{}
		if err := bindForm(c, upd.Student); err != nil {
			h.badForm(c, "complete_profile")
			return
		}
	case domain.RoleVolunteer:
		upd.Volunteer = &service.VolunteerProfileInput{}
		if err := bindForm(c, upd.Volunteer); err != nil {
			h.badForm(c, "complete_profile")
			return
		}
	}
	avatar, err := h.avatarUpload(c)
	if err != nil {
		h.badForm(c, "complete_profile")
		return
	}
	upd.User.Avatar = avatar

	account, err := h.accounts.UpdateProfile(c.Request.Context(), user.ID, upd)
	if err != nil {
		h.fail(c, "complete_profile", err)
		return
	}

	addFlash(c, flashSuccess, "Profile updated successfully!")
	h.redirect(c, dashboardPath(account.User.Role))
}

func (h *Handler) profile(c *gin.Context) {
	h.accountPage(c, http.StatusOK, "profile", nil)
}

func (h *Handler) roleProfile(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.accountPage(c, http.StatusOK, page, nil)
	}
}
