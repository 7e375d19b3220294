package dashboard

import (
	"context"
	"net/url"

	"mentor-connect/internal/domain"
)

// SampleSource serves fixed demo content. Every call returns fresh slices.
type SampleSource struct{}

func NewSampleSource() SampleSource {
	return SampleSource{}
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
}

func (SampleSource) Student(_ context.Context, _ *domain.User) (*Student, error) {
	return &Student{
		RecommendedMentors: []Mentor{
			{Name: "John Doe", Expertise: "Mathematics", PictureURL: avatarURL("John Doe")},
			{Name: "Jane Smith", Expertise: "Physics", PictureURL: avatarURL("Jane Smith")},
			{Name: "Mike Johnson", Expertise: "Chemistry", PictureURL: avatarURL("Mike Johnson")},
		},
		UpcomingSessions: []MentorSession{
			{Date: "2025-02-10 14:00", MentorName: "John Doe"},
			{Date: "2025-02-11 15:30", MentorName: "Jane Smith"},
		},
		ForumQuestions: []ForumQuestion{
			{
				Title:       "How to solve quadratic equations?",
				StudentName: "Rahul Sharma",
				TimeAgo:     "1hr ago",
				Preview:     "I'm having trouble understanding the quadratic formula. Can someone explain step by step?",
				Upvotes:     12,
				Downvotes:   2,
			},
			{
				Title:       "Best books for JEE preparation?",
				StudentName: "Aditi Verma",
				TimeAgo:     "3hr ago",
				Preview:     "Looking for recommendations on the best books for JEE Physics and Chemistry.",
				Upvotes:     8,
			},
			{
				Title:       "Help with Integration Problems",
				StudentName: "Priya Singh",
				TimeAgo:     "5hr ago",
				Preview:     "Need help with solving integration by parts problems.",
				Upvotes:     5,
				Downvotes:   1,
			},
		},
		Notifications: []Notification{
			{Type: "session", Message: "Your mentor session with Dr. Ramesh starts in 30 min!", Time: "5 min ago"},
			{Type: "forum", Message: "Someone answered your question on Quadratic Equations", Time: "20 min ago"},
			{Type: "material", Message: "Volunteer Priya uploaded a PDF on Algebra Basics", Time: "1 hr ago"},
			{Type: "session", Message: "New session scheduled with Jane Smith for tomorrow", Time: "2 hr ago"},
		},
		StudyMaterials: []StudyMaterial{
			{Title: "Algebra Basics", Type: "PDF", UploadedBy: "Dr. Ramesh", Date: "2025-02-09"},
			{Title: "Physics Formulas", Type: "DOC", UploadedBy: "Jane Smith", Date: "2025-02-08"},
			{Title: "Chemistry Notes", Type: "PDF", UploadedBy: "Mike Johnson", Date: "2025-02-07"},
		},
	}, nil
}

func (SampleSource) Volunteer(_ context.Context, _ *domain.User) (*Volunteer, error) {
	return &Volunteer{
		TotalSessions:  25,
		StudentsHelped: 42,
		Rating:         4.8,
		PendingRequests: []SessionRequest{
			{StudentName: "Alice Cooper", Subject: "Mathematics", SessionType: "1-on-1"},
			{StudentName: "Bob Wilson", Subject: "Physics", SessionType: "Group"},
		},
		UpcomingSessions: []StudentSession{
			{Date: "2025-02-10 14:00", StudentName: "Charlie Brown"},
			{Date: "2025-02-11 15:30", StudentName: "Diana Prince"},
		},
		ForumQuestions: []ForumQuestion{
			{Title: "Need help with Integration"},
			{Title: "Question about Newton's Laws"},
		},
		TopMentors: []LeaderboardEntry{
			{Name: "You", Points: 1250},
			{Name: "Sarah Connor", Points: 1100},
			{Name: "Tony Stark", Points: 1000},
		},
		Notifications: []Notification{
			{Message: "New session request", Time: "30 minutes ago"},
			{Message: "Student feedback received", Time: "2 hours ago"},
		},
	}, nil
}

var _ Source = SampleSource{}
