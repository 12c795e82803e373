// Package schedule resolves authenticated identity into role-scoped daily
// class schedules.
package schedule

import (
	"context"
	"time"

	"campusattend/internal/auth"
)

// Item is one class session in a user's day.
type Item struct {
	ScheduleID  string `json:"schedule_id"`
	CourseName  string `json:"course_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TeacherName string `json:"teacher_name"`
}

// Sentinel shown when a joined relation is absent. A missing course or
// teacher name is a display gap, not an error.
const nameFallback = "N/A"

// Store is the query surface the façade composes over.
type Store interface {
	SessionsForTeacher(ctx context.Context, teacherID string, dayOfWeek int) ([]Item, error)
	EnrolledCourseIDs(ctx context.Context, studentID string) ([]string, error)
	SessionsForCourses(ctx context.Context, courseIDs []string, dayOfWeek int) ([]Item, error)
	IsTeacherOf(ctx context.Context, teacherID, scheduleID string) (bool, error)
}

// Service composes role-scoped schedule queries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a schedule façade.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// DailySchedule returns today's sessions for the user. Teachers see sessions
// they instruct; students see sessions for courses they are enrolled in. An
// empty enrollment set yields an empty schedule, never an error.
func (s *Service) DailySchedule(ctx context.Context, userID, role string) ([]Item, error) {
	day := isoWeekday(s.now().UTC())

	var items []Item
	var err error
	if role == auth.RoleTeacher {
		items, err = s.store.SessionsForTeacher(ctx, userID, day)
	} else {
		var courseIDs []string
		courseIDs, err = s.store.EnrolledCourseIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(courseIDs) == 0 {
			return []Item{}, nil
		}
		items, err = s.store.SessionsForCourses(ctx, courseIDs, day)
	}
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].CourseName == "" {
			items[i].CourseName = nameFallback
		}
		if items[i].TeacherName == "" {
			items[i].TeacherName = nameFallback
		}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// IsTeacherOf reports whether the teacher instructs the given session. Used
// as a capability check before QR issuance.
func (s *Service) IsTeacherOf(ctx context.Context, teacherID, scheduleID string) (bool, error) {
	return s.store.IsTeacherOf(ctx, teacherID, scheduleID)
}

// isoWeekday maps to 1=Monday … 7=Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}
