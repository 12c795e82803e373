package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusattend/internal/auth"
)

type fakeStore struct {
	sessions    map[int][]Item      // day-of-week -> sessions, in store order
	courseOf    map[string]string   // schedule id -> course id
	teacherOf   map[string]string   // schedule id -> teacher id
	enrollments map[string][]string // student id -> course ids
	courseIDsIn [][]string          // captured IN-filter args
}

func (f *fakeStore) SessionsForTeacher(_ context.Context, teacherID string, day int) ([]Item, error) {
	var out []Item
	for _, it := range f.sessions[day] {
		if f.teacherOf[it.ScheduleID] == teacherID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) EnrolledCourseIDs(_ context.Context, studentID string) ([]string, error) {
	return f.enrollments[studentID], nil
}

func (f *fakeStore) SessionsForCourses(_ context.Context, courseIDs []string, day int) ([]Item, error) {
	f.courseIDsIn = append(f.courseIDsIn, courseIDs)
	member := map[string]bool{}
	for _, id := range courseIDs {
		member[id] = true
	}
	var out []Item
	for _, it := range f.sessions[day] {
		if member[f.courseOf[it.ScheduleID]] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) IsTeacherOf(_ context.Context, teacherID, scheduleID string) (bool, error) {
	return f.teacherOf[scheduleID] == teacherID, nil
}

// monday is a fixed Monday so day-of-week resolution is deterministic.
var monday = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func newTestService(store Store) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return monday }
	return svc
}

func TestIsoWeekday(t *testing.T) {
	assert.Equal(t, 1, isoWeekday(monday))
	assert.Equal(t, 6, isoWeekday(monday.AddDate(0, 0, 5)))
	assert.Equal(t, 7, isoWeekday(monday.AddDate(0, 0, 6)))
}

func TestStudentDailyScheduleFiltersEnrolledCourses(t *testing.T) {
	store := &fakeStore{
		sessions: map[int][]Item{
			1: {
				{ScheduleID: "s-a", CourseName: "Algebra", TeacherName: "Dr. Rao"},
				{ScheduleID: "s-b", CourseName: "Biology", TeacherName: "Dr. Pillai"},
				{ScheduleID: "s-c", CourseName: "Chemistry", TeacherName: "Dr. Nair"},
			},
		},
		courseOf:    map[string]string{"s-a": "A", "s-b": "B", "s-c": "C"},
		enrollments: map[string][]string{"stu-1": {"A", "C"}},
	}
	svc := newTestService(store)

	items, err := svc.DailySchedule(context.Background(), "stu-1", auth.RoleStudent)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "s-a", items[0].ScheduleID)
	assert.Equal(t, "s-c", items[1].ScheduleID)
	require.Len(t, store.courseIDsIn, 1)
	assert.Equal(t, []string{"A", "C"}, store.courseIDsIn[0])
}

func TestStudentWithoutEnrollmentsGetsEmptySchedule(t *testing.T) {
	store := &fakeStore{enrollments: map[string][]string{}}
	svc := newTestService(store)

	items, err := svc.DailySchedule(context.Background(), "stu-9", auth.RoleStudent)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	// the store must not even be queried for sessions
	assert.Empty(t, store.courseIDsIn)
}

func TestTeacherDailySchedule(t *testing.T) {
	store := &fakeStore{
		sessions: map[int][]Item{
			1: {
				{ScheduleID: "s-1", CourseName: "Algebra", TeacherName: "Dr. Rao"},
				{ScheduleID: "s-2", CourseName: "Physics", TeacherName: "Dr. Iyer"},
			},
		},
		teacherOf: map[string]string{"s-1": "t-1", "s-2": "t-2"},
	}
	svc := newTestService(store)

	items, err := svc.DailySchedule(context.Background(), "t-1", auth.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s-1", items[0].ScheduleID)
}

func TestMissingJoinedNamesFallBackToNA(t *testing.T) {
	store := &fakeStore{
		sessions: map[int][]Item{
			1: {{ScheduleID: "s-1", CourseName: "", TeacherName: ""}},
		},
		teacherOf: map[string]string{"s-1": "t-1"},
	}
	svc := newTestService(store)

	items, err := svc.DailySchedule(context.Background(), "t-1", auth.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "N/A", items[0].CourseName)
	assert.Equal(t, "N/A", items[0].TeacherName)
}

func TestIsTeacherOf(t *testing.T) {
	store := &fakeStore{teacherOf: map[string]string{"s-1": "t-1"}}
	svc := newTestService(store)

	owns, err := svc.IsTeacherOf(context.Background(), "t-1", "s-1")
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = svc.IsTeacherOf(context.Background(), "t-2", "s-1")
	require.NoError(t, err)
	assert.False(t, owns)
}
