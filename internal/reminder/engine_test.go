package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktrack/caseload-api/internal/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	engine := NewEngine()
	engine.now = func() time.Time { return testNow }
	return engine
}

func activeStudent(id, name string) models.Student {
	return models.Student{
		ID:        id,
		FullName:  name,
		Status:    models.StudentStatusActive,
		DateAdded: testNow.AddDate(0, -6, 0),
	}
}

func inProgressGoal(id, studentID string) models.Goal {
	return models.Goal{
		ID:          id,
		StudentID:   studentID,
		Status:      models.GoalStatusInProgress,
		Target:      "with 80% accuracy",
		DateCreated: testNow.AddDate(0, -3, 0),
	}
}

func sessionTargeting(studentID, goalID string, date time.Time) models.Session {
	return models.Session{
		ID:               "sess-" + goalID + date.Format("20060102"),
		StudentID:        studentID,
		Date:             date,
		IsDirectServices: true,
		GoalsTargeted:    `["` + goalID + `"]`,
	}
}

func remindersOfType(reminders []models.Reminder, t models.ReminderType) []models.Reminder {
	var out []models.Reminder
	for _, r := range reminders {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

func TestGoalReviewStagnantGoal(t *testing.T) {
	engine := newTestEngine()
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{inProgressGoal("g1", "s1")},
		Sessions: []models.Session{sessionTargeting("s1", "g1", testNow.AddDate(0, 0, -45))},
	}

	got := remindersOfType(engine.All(snap), models.ReminderGoalReview)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].DaysUntilDue)
	assert.Equal(t, -45, *got[0].DaysUntilDue)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
}

func TestGoalReviewEscalatesAtSixtyDays(t *testing.T) {
	engine := newTestEngine()
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{inProgressGoal("g1", "s1")},
		Sessions: []models.Session{sessionTargeting("s1", "g1", testNow.AddDate(0, 0, -60))},
	}

	got := remindersOfType(engine.All(snap), models.ReminderGoalReview)
	require.Len(t, got, 1)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
}

func TestGoalReviewRecentSessionSuppresses(t *testing.T) {
	engine := newTestEngine()
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{inProgressGoal("g1", "s1")},
		Sessions: []models.Session{sessionTargeting("s1", "g1", testNow.AddDate(0, 0, -10))},
	}

	assert.Empty(t, remindersOfType(engine.All(snap), models.ReminderGoalReview))
}

func TestGoalReviewFallsBackToCreationDate(t *testing.T) {
	engine := newTestEngine()
	goal := inProgressGoal("g1", "s1")
	goal.DateCreated = testNow.AddDate(0, 0, -40)
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{goal},
	}

	got := remindersOfType(engine.All(snap), models.ReminderGoalReview)
	require.Len(t, got, 1)
	assert.Equal(t, -40, *got[0].DaysUntilDue)
}

func TestGoalReviewSkipsUnparsableGoalsTargeted(t *testing.T) {
	engine := newTestEngine()
	goal := inProgressGoal("g1", "s1")
	goal.DateCreated = testNow.AddDate(0, 0, -40)
	broken := models.Session{
		ID:            "sess-broken",
		StudentID:     "s1",
		Date:          testNow.AddDate(0, 0, -1),
		GoalsTargeted: `{not json`,
	}
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{goal},
		Sessions: []models.Session{broken},
	}

	// The broken record is ignored, so the creation-date fallback applies.
	got := remindersOfType(engine.All(snap), models.ReminderGoalReview)
	require.Len(t, got, 1)
	assert.Equal(t, -40, *got[0].DaysUntilDue)
}

func TestGoalReviewExcludesChildOfAchievedGoal(t *testing.T) {
	engine := newTestEngine()
	parent := inProgressGoal("g-parent", "s1")
	parent.Status = models.GoalStatusAchieved
	child := inProgressGoal("g-child", "s1")
	child.DateCreated = testNow.AddDate(0, 0, -90)
	parentID := "g-parent"
	child.ParentGoalID = &parentID
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{parent, child},
	}

	assert.Empty(t, remindersOfType(engine.All(snap), models.ReminderGoalReview))
}

func TestEvaluationDueBoundary(t *testing.T) {
	engine := newTestEngine()
	within := testNow.AddDate(0, 0, 14)
	beyond := testNow.AddDate(0, 0, 15)
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook"), activeStudent("s2", "Caleb Dunn")},
		Evaluations: []models.Evaluation{
			{ID: "e1", StudentID: "s1", DueDate: &within},
			{ID: "e2", StudentID: "s2", DueDate: &beyond},
		},
	}

	got := remindersOfType(engine.All(snap), models.ReminderEvaluationDue)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].StudentID)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
}

func TestEvaluationOverdueIsHighPriority(t *testing.T) {
	engine := newTestEngine()
	overdue := testNow.AddDate(0, 0, -3)
	snap := Snapshot{
		Students:    []models.Student{activeStudent("s1", "Avery Brook")},
		Evaluations: []models.Evaluation{{ID: "e1", StudentID: "s1", DueDate: &overdue}},
	}

	got := remindersOfType(engine.All(snap), models.ReminderEvaluationDue)
	require.Len(t, got, 1)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Equal(t, -3, *got[0].DaysUntilDue)
}

func TestEvaluationCompletedReportSuppresses(t *testing.T) {
	engine := newTestEngine()
	due := testNow.AddDate(0, 0, 2)
	snap := Snapshot{
		Students:    []models.Student{activeStudent("s1", "Avery Brook")},
		Evaluations: []models.Evaluation{{ID: "e1", StudentID: "s1", DueDate: &due, ReportCompleted: true}},
	}

	assert.Empty(t, remindersOfType(engine.All(snap), models.ReminderEvaluationDue))
}

func TestReportDeadlineAlwaysHigh(t *testing.T) {
	engine := newTestEngine()
	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		ProgressReports: []models.ProgressReport{
			{ID: "r1", StudentID: "s1", DueDate: testNow.AddDate(0, 0, 5), Status: models.ProgressReportPending},
			{ID: "r2", StudentID: "s1", DueDate: testNow.AddDate(0, 0, 5), Status: models.ProgressReportCompleted},
			{ID: "r3", StudentID: "s1", DueDate: testNow.AddDate(0, 0, 20), Status: models.ProgressReportPending},
		},
	}

	got := remindersOfType(engine.All(snap), models.ReminderReportDeadline)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", *got[0].RelatedID)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
}

func TestAnnualReviewWindow(t *testing.T) {
	engine := newTestEngine()
	past := testNow.AddDate(0, 0, -1)
	soon := testNow.AddDate(0, 0, 10)
	later := testNow.AddDate(0, 0, 25)
	far := testNow.AddDate(0, 0, 40)

	s1 := activeStudent("s1", "Past Review")
	s1.AnnualReviewDate = &past
	s2 := activeStudent("s2", "Soon Review")
	s2.AnnualReviewDate = &soon
	s3 := activeStudent("s3", "Later Review")
	s3.AnnualReviewDate = &later
	s4 := activeStudent("s4", "Far Review")
	s4.AnnualReviewDate = &far

	got := remindersOfType(engine.All(Snapshot{Students: []models.Student{s1, s2, s3, s4}}), models.ReminderAnnualReview)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].StudentID)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Equal(t, "s3", got[1].StudentID)
	assert.Equal(t, models.PriorityMedium, got[1].Priority)
}

func TestFrequencyBehindPerWeek(t *testing.T) {
	engine := newTestEngine()
	freq := 3
	freqType := models.FrequencyPerWeek
	student := activeStudent("s1", "Avery Brook")
	student.FrequencyPerWeek = &freq
	student.FrequencyType = &freqType

	buildSessions := func(n int) []models.Session {
		sessions := make([]models.Session, 0, n)
		for i := 0; i < n; i++ {
			sessions = append(sessions, models.Session{
				ID:               string(rune('a' + i)),
				StudentID:        "s1",
				Date:             testNow.AddDate(0, 0, -(i%27 + 1)),
				IsDirectServices: true,
			})
		}
		return sessions
	}

	// 12 delivered sessions meet 3x4 expected: no alert.
	got := remindersOfType(engine.All(Snapshot{Students: []models.Student{student}, Sessions: buildSessions(12)}), models.ReminderFrequencyBehind)
	assert.Empty(t, got)

	// 11 sessions: one behind, low priority.
	got = remindersOfType(engine.All(Snapshot{Students: []models.Student{student}, Sessions: buildSessions(11)}), models.ReminderFrequencyBehind)
	require.Len(t, got, 1)
	assert.Equal(t, -1, *got[0].DaysUntilDue)
	assert.Equal(t, models.PriorityLow, got[0].Priority)
}

func TestFrequencyBehindIgnoresMissedAndIndirect(t *testing.T) {
	engine := newTestEngine()
	freq := 1
	freqType := models.FrequencyPerMonth
	student := activeStudent("s1", "Avery Brook")
	student.FrequencyPerWeek = &freq
	student.FrequencyType = &freqType

	sessions := []models.Session{
		{ID: "a", StudentID: "s1", Date: testNow.AddDate(0, 0, -2), IsDirectServices: true, MissedSession: true},
		{ID: "b", StudentID: "s1", Date: testNow.AddDate(0, 0, -3), IsDirectServices: false},
	}

	got := remindersOfType(engine.All(Snapshot{Students: []models.Student{student}, Sessions: sessions}), models.ReminderFrequencyBehind)
	require.Len(t, got, 1)
	assert.Equal(t, -1, *got[0].DaysUntilDue)
	assert.Equal(t, models.PriorityLow, got[0].Priority)
}

func TestFrequencyBehindEscalation(t *testing.T) {
	engine := newTestEngine()
	freq := 3
	freqType := models.FrequencyPerMonth
	student := activeStudent("s1", "Avery Brook")
	student.FrequencyPerWeek = &freq
	student.FrequencyType = &freqType

	got := remindersOfType(engine.All(Snapshot{Students: []models.Student{student}}), models.ReminderFrequencyBehind)
	require.Len(t, got, 1)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Equal(t, -3, *got[0].DaysUntilDue)
}

func TestMissingGoalsPriorityByAge(t *testing.T) {
	engine := newTestEngine()
	seasoned := activeStudent("s1", "Old Hand")
	fresh := activeStudent("s2", "New Face")
	fresh.DateAdded = testNow.AddDate(0, 0, -2)

	got := remindersOfType(engine.All(Snapshot{Students: []models.Student{seasoned, fresh}}), models.ReminderNoGoals)
	require.Len(t, got, 2)
	byStudent := map[string]models.ReminderPriority{}
	for _, r := range got {
		byStudent[r.StudentID] = r.Priority
	}
	assert.Equal(t, models.PriorityHigh, byStudent["s1"])
	assert.Equal(t, models.PriorityMedium, byStudent["s2"])
}

func TestMissingTargetDetection(t *testing.T) {
	engine := newTestEngine()
	withPercent := inProgressGoal("g1", "s1")
	withBareNumber := inProgressGoal("g2", "s1")
	withBareNumber.Target = "8 of 10 trials"
	without := inProgressGoal("g3", "s1")
	without.Target = "improved accuracy"

	snap := Snapshot{
		Students: []models.Student{activeStudent("s1", "Avery Brook")},
		Goals:    []models.Goal{withPercent, withBareNumber, without},
	}

	got := remindersOfType(engine.All(snap), models.ReminderNoTarget)
	require.Len(t, got, 1)
	assert.Equal(t, "g3", *got[0].RelatedID)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
}

func TestIneligibleStudentsExcluded(t *testing.T) {
	engine := newTestEngine()
	archived := activeStudent("s1", "Archived")
	archived.Archived = true
	discharged := activeStudent("s2", "Discharged")
	discharged.Status = models.StudentStatusDischarged

	got := engine.All(Snapshot{Students: []models.Student{archived, discharged}})
	assert.Empty(t, got)
}

func TestSchoolFilterTrimsAndMatchesExactly(t *testing.T) {
	engine := newTestEngine()
	east := activeStudent("s1", "East Side")
	east.School = " Eastview "
	west := activeStudent("s2", "West Side")
	west.School = "Westview"

	got := engine.All(Snapshot{Students: []models.Student{east, west}, School: "Eastview"})
	require.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, "s1", r.StudentID)
	}
}

func TestFeedSortedByPriorityThenDue(t *testing.T) {
	engine := newTestEngine()
	freq := 2
	freqType := models.FrequencyPerWeek

	s1 := activeStudent("s1", "Avery Brook")
	s1.FrequencyPerWeek = &freq
	s1.FrequencyType = &freqType
	reviewDate := testNow.AddDate(0, 0, 20)
	s2 := activeStudent("s2", "Caleb Dunn")
	s2.AnnualReviewDate = &reviewDate

	goal := inProgressGoal("g1", "s2")
	goal.DateCreated = testNow.AddDate(0, 0, -70)

	got := engine.All(Snapshot{Students: []models.Student{s1, s2}, Goals: []models.Goal{goal}})
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		prev, curr := got[i-1], got[i]
		require.LessOrEqual(t, prev.Priority.Rank(), curr.Priority.Rank())
		if prev.Priority.Rank() == curr.Priority.Rank() {
			assert.LessOrEqual(t, dueOrInfinity(prev), dueOrInfinity(curr))
		}
	}
}
