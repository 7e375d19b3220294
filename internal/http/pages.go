package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-connect/internal/service"
)

func (h *Handler) home(c *gin.Context) {
	h.render(c, http.StatusOK, "home", nil)
}

func (h *Handler) staticPage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, page, nil)
	}
}

func (h *Handler) contactForm(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", nil)
}

func (h *Handler) submitContact(c *gin.Context) {
	var in service.ContactInput
	if err := bindForm(c, &in); err != nil {
		h.badForm(c, "contact")
		return
	}
	if _, err := h.contact.Submit(c.Request.Context(), in); err != nil {
		h.fail(c, "contact", err)
		return
	}
	addFlash(c, flashSuccess, "Thank you for your message! We will get back to you soon.")
	h.redirect(c, "/contact")
}

func (h *Handler) dashboardRedirect(c *gin.Context) {
	h.redirect(c, dashboardPath(currentUser(c).Role))
}

func (h *Handler) studentDashboard(c *gin.Context) {
	data, err := h.dashboard.Student(c.Request.Context(), currentUser(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "student_dashboard", gin.H{"dashboard": data})
}

func (h *Handler) volunteerDashboard(c *gin.Context) {
	data, err := h.dashboard.Volunteer(c.Request.Context(), currentUser(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "volunteer_dashboard", gin.H{"dashboard": data})
}
