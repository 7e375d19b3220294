package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/service"
)

type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type StudentProfileResponse struct {
	Institution    string `json:"institution"`
	FieldOfStudy   string `json:"field_of_study"`
	GraduationYear int    `json:"graduation_year,omitempty"`
	Skills         string `json:"skills"`
	Interests      string `json:"interests"`
}

type VolunteerProfileResponse struct {
	Organization      string `json:"organization"`
	Position          string `json:"position"`
	Expertise         string `json:"expertise"`
	Availability      string `json:"availability"`
	YearsOfExperience int    `json:"years_of_experience"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Phone:     u.Phone,
		Bio:       u.Bio,
	}
}

func profileToResponse(p domain.Profile) any {
	switch v := p.(type) {
	case *domain.StudentProfile:
		return StudentProfileResponse{
			Institution:    v.Institution,
			FieldOfStudy:   v.FieldOfStudy,
			GraduationYear: v.GraduationYear,
			Skills:         v.Skills,
			Interests:      v.Interests,
		}
	case *domain.VolunteerProfile:
		return VolunteerProfileResponse{
			Organization:      v.Organization,
			Position:          v.Position,
			Expertise:         v.Expertise,
			Availability:      v.Availability,
			YearsOfExperience: v.YearsOfExperience,
		}
	default:
		return nil
	}
}

// render writes a page document: the page name, pending flash messages, the
// signed-in user and any page specific fields.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	msgs := popFlashes(c)
	if msgs == nil {
		msgs = []flashMessage{}
	}
	body := gin.H{"page": page, "messages": msgs}
	if u := currentUser(c); u != nil {
		body["user"] = userToResponse(u)
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *Handler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// fail maps a service error onto the page response.
func (h *Handler) fail(c *gin.Context, page string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.render(c, http.StatusUnprocessableEntity, page, gin.H{"errors": verr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.render(c, http.StatusUnauthorized, page, gin.H{"error": service.MsgInvalidCredentials})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	entry := h.logger.WithError(err).WithField("path", c.Request.URL.Path)
	if u := currentUser(c); u != nil {
		entry = entry.WithField("user_id", u.ID)
	}
	if errors.Is(err, service.ErrIntegrity) {
		entry.Error("account data integrity violation")
	} else {
		entry.Error("unexpected error")
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (h *Handler) badForm(c *gin.Context, page string) {
	h.render(c, http.StatusBadRequest, page, gin.H{"error": "invalid form data"})
}

// bindForm decodes urlencoded, multipart or JSON bodies. JSON bodies are
// cached so the same request can be bound into several structs.
func bindForm(c *gin.Context, obj any) error {
	if c.ContentType() == binding.MIMEJSON {
		return c.ShouldBindBodyWith(obj, binding.JSON)
	}
	return c.ShouldBindWith(obj, binding.Form)
}

func (h *Handler) avatarUpload(c *gin.Context) (*service.Upload, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// one byte past the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxAvatarBytes+1))
	if err != nil {
		return nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// safeNext accepts only local absolute paths as post-login targets.
func safeNext(next string) string {
	if !isLocalPath(next) || strings.IndexFunc(next, isControl) >= 0 {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || !isLocalPath(u.Path) {
		return ""
	}
	return next
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
