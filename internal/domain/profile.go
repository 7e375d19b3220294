package domain

import "fmt"

// Profile is the role-specific extension of a User. The only implementations
// are StudentProfile and VolunteerProfile.
type Profile interface {
	Role() Role
	Owner() int64
	isProfile()
}

// StudentProfile holds the academic details of a student account.
type StudentProfile struct {
	UserID         int64
	Institution    string
	FieldOfStudy   string
	GraduationYear int
	Skills         string
	Interests      string
}

func (StudentProfile) Role() Role     { return RoleStudent }
func (p StudentProfile) Owner() int64 { return p.UserID }
func (StudentProfile) isProfile()     {}

// VolunteerProfile holds the mentoring details of a volunteer account.
type VolunteerProfile struct {
	UserID            int64
	Organization      string
	Position          string
	Expertise         string
	Availability      string
	YearsOfExperience int
}

func (VolunteerProfile) Role() Role     { return RoleVolunteer }
func (p VolunteerProfile) Owner() int64 { return p.UserID }
func (VolunteerProfile) isProfile()     {}

// NewProfile returns the empty profile variant for role.
func NewProfile(role Role, userID int64) (Profile, error) {
	switch role {
	case RoleStudent:
		return &StudentProfile{UserID: userID}, nil
	case RoleVolunteer:
		return &VolunteerProfile{UserID: userID}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Account is a user together with its profile variant.
type Account struct {
	User    User
	Profile Profile
}

// CheckProfile reports whether the profile variant matches the user's role.
func (a Account) CheckProfile() error {
	if a.Profile == nil {
		return fmt.Errorf("account %d has no profile", a.User.ID)
	}
	if a.Profile.Role() != a.User.Role {
		return fmt.Errorf("account %d: %s profile on %s user", a.User.ID, a.Profile.Role(), a.User.Role)
	}
	return nil
}

// Student returns the student profile, or nil for other roles.
func (a Account) Student() *StudentProfile {
	p, _ := a.Profile.(*StudentProfile)
	return p
}

// Volunteer returns the volunteer profile, or nil for other roles.
func (a Account) Volunteer() *VolunteerProfile {
	p, _ := a.Profile.(*VolunteerProfile)
	return p
}
