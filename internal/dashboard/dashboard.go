// Package dashboard assembles the data shown on the role dashboards.
package dashboard

import (
	"context"

	"mentor-connect/internal/domain"
)

type Mentor struct {
	Name       string `json:"name"`
	Expertise  string `json:"expertise"`
	PictureURL string `json:"profile_pic_url"`
}

type MentorSession struct {
	Date       string `json:"date"`
	MentorName string `json:"mentor_name"`
}

type StudentSession struct {
	Date        string `json:"date"`
	StudentName string `json:"student_name"`
}

type ForumQuestion struct {
	Title       string `json:"title"`
	StudentName string `json:"student_name,omitempty"`
	TimeAgo     string `json:"time_ago,omitempty"`
	Preview     string `json:"preview,omitempty"`
	Upvotes     int    `json:"upvotes"`
	Downvotes   int    `json:"downvotes"`
}

type Notification struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type StudyMaterial struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	UploadedBy string `json:"uploaded_by"`
	Date       string `json:"date"`
}

type SessionRequest struct {
	StudentName string `json:"student_name"`
	Subject     string `json:"subject"`
	SessionType string `json:"session_type"`
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Student struct {
	RecommendedMentors []Mentor        `json:"recommended_mentors"`
	UpcomingSessions   []MentorSession `json:"upcoming_sessions"`
	ForumQuestions     []ForumQuestion `json:"forum_questions"`
	Notifications      []Notification  `json:"notifications"`
	StudyMaterials     []StudyMaterial `json:"study_materials"`
}

type Volunteer struct {
	TotalSessions    int                `json:"total_sessions"`
	StudentsHelped   int                `json:"students_helped"`
	Rating           float64            `json:"rating"`
	PendingRequests  []SessionRequest   `json:"pending_requests"`
	UpcomingSessions []StudentSession   `json:"upcoming_sessions"`
	ForumQuestions   []ForumQuestion    `json:"forum_questions"`
	TopMentors       []LeaderboardEntry `json:"top_mentors"`
	Notifications    []Notification     `json:"notifications"`
}

// Source provides dashboard content for a signed-in user.
type Source interface {
	Student(ctx context.Context, user *domain.User) (*Student, error)
	Volunteer(ctx context.Context, user *domain.User) (*Volunteer, error)
}
