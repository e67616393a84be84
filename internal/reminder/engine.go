package reminder

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/talktrack/caseload-api/internal/models"
)

// Thresholds for the stagnation and deadline detectors, in days.
const (
	goalStaleAfter      = 30
	goalStaleEscalation = 60
	evaluationHorizon   = 14
	evaluationUrgent    = 7
	reportHorizon       = 7
	annualReviewHorizon = 30
	annualReviewUrgent  = 14
	newStudentGrace     = 7
	perWeekLookback     = 28
	perMonthLookback    = 30
)

// Snapshot bundles the already-materialized records a reminder scan runs
// over. The engine never touches storage itself.
type Snapshot struct {
	Students        []models.Student
	Goals           []models.Goal
	Evaluations     []models.Evaluation
	ProgressReports []models.ProgressReport
	Sessions        []models.Session
	// School optionally restricts the scan to a single school,
	// matched exactly after trimming whitespace.
	School string
}

// Engine derives the reminder feed from a caseload snapshot. All seven
// detectors share the single timestamp captured at the start of a scan, so a
// feed is internally consistent and reproducible under an injected clock.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// All runs every detector over the snapshot and returns the merged feed,
// sorted by priority rank then days-until-due (missing values sort last).
// Ties preserve detector emission order.
func (e *Engine) All(snap Snapshot) []models.Reminder {
	now := e.now()
	students := eligibleStudents(snap.Students, snap.School)

	var out []models.Reminder
	out = append(out, e.goalReviews(now, students, snap.Goals, snap.Sessions)...)
	out = append(out, e.evaluationsDue(now, students, snap.Evaluations)...)
	out = append(out, e.reportDeadlines(now, students, snap.ProgressReports)...)
	out = append(out, e.annualReviews(now, students)...)
	out = append(out, e.frequencyBehind(now, students, snap.Sessions)...)
	out = append(out, e.missingGoals(now, students, snap.Goals)...)
	out = append(out, e.missingTargets(now, students, snap.Goals)...)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return dueOrInfinity(out[i]) < dueOrInfinity(out[j])
	})
	return out
}

// goalReviews flags in-progress goals not targeted in any session for 30+
// days, falling back to the goal's creation date when it was never targeted.
func (e *Engine) goalReviews(now time.Time, students map[string]models.Student, goals []models.Goal, sessions []models.Session) []models.Reminder {
	achieved := achievedGoalIDs(goals)
	var out []models.Reminder
	for _, goal := range goals {
		student, ok := students[goal.StudentID]
		if !ok || !activeGoal(goal, achieved) {
			continue
		}
		last := lastTargeted(goal, sessions)
		if last == nil {
			created := goal.DateCreated
			last = &created
		}
		elapsed := daysBetween(now, *last)
		if elapsed < goalStaleAfter {
			continue
		}
		priority := models.PriorityMedium
		if elapsed >= goalStaleEscalation {
			priority = models.PriorityHigh
		}
		days := -elapsed
		goalID := goal.ID
		out = append(out, models.Reminder{
			ID:           fmt.Sprintf("%s-%s", models.ReminderGoalReview, goal.ID),
			Type:         models.ReminderGoalReview,
			Title:        "Goal needs review",
			Description:  fmt.Sprintf("%s has a goal that has not been targeted in %d days", student.FullName, elapsed),
			StudentID:    student.ID,
			StudentName:  student.FullName,
			RelatedID:    &goalID,
			Priority:     priority,
			DaysUntilDue: &days,
		})
	}
	return out
}

// evaluationsDue flags evaluations whose report is outstanding and whose due
// date is within 14 days (or already past).
func (e *Engine) evaluationsDue(now time.Time, students map[string]models.Student, evaluations []models.Evaluation) []models.Reminder {
	var out []models.Reminder
	for _, eval := range evaluations {
		student, ok := students[eval.StudentID]
		if !ok || eval.DueDate == nil || eval.ReportCompleted {
			continue
		}
		days := signedDaysUntil(now, *eval.DueDate)
		if days > evaluationHorizon {
			continue
		}
		priority := models.PriorityMedium
		if days <= evaluationUrgent {
			priority = models.PriorityHigh
		}
		desc := fmt.Sprintf("%s's re-evaluation is due in %d days", student.FullName, days)
		if days < 0 {
			desc = fmt.Sprintf("%s's re-evaluation is %d days overdue", student.FullName, -days)
		}
		evalID := eval.ID
		due := *eval.DueDate
		daysCopy := days
		out = append(out, models.Reminder{
			ID:           fmt.Sprintf("%s-%s", models.ReminderEvaluationDue, eval.ID),
			Type:         models.ReminderEvaluationDue,
			Title:        "Re-evaluation due",
			Description:  desc,
			StudentID:    student.ID,
			StudentName:  student.FullName,
			RelatedID:    &evalID,
			DueDate:      &due,
			Priority:     priority,
			DaysUntilDue: &daysCopy,
		})
	}
	return out
}

// reportDeadlines flags incomplete progress reports due within 7 days.
func (e *Engine) reportDeadlines(now time.Time, students map[string]models.Student, reports []models.ProgressReport) []models.Reminder {
	var out []models.Reminder
	for _, report := range reports {
		student, ok := students[report.StudentID]
		if !ok || report.Status == models.ProgressReportCompleted {
			continue
		}
		days := signedDaysUntil(now, report.DueDate)
		if days > reportHorizon {
			continue
		}
		reportID := report.ID
		due := report.DueDate
		daysCopy := days
		out = append(out, models.Reminder{
			ID:           fmt.Sprintf("%s-%s", models.ReminderReportDeadline, report.ID),
			Type:         models.ReminderReportDeadline,
			Title:        "Progress report due",
			Description:  fmt.Sprintf("%s's progress report deadline is approaching", student.FullName),
			StudentID:    student.ID,
			StudentName:  student.FullName,
			RelatedID:    &reportID,
			DueDate:      &due,
			Priority:     models.PriorityHigh,
			DaysUntilDue: &daysCopy,
		})
	}
	return out
}

// annualReviews flags annual review dates falling in the next 30 days.
// Reviews already past are not re-announced here.
func (e *Engine) annualReviews(now time.Time, students map[string]models.Student) []models.Reminder {
	var out []models.Reminder
	for _, student := range sortedStudents(students) {
		if student.AnnualReviewDate == nil {
			continue
		}
		days := signedDaysUntil(now, *student.AnnualReviewDate)
		if days < 0 || days > annualReviewHorizon {
			continue
		}
		priority := models.PriorityMedium
		if days <= annualReviewUrgent {
			priority = models.PriorityHigh
		}
		due := *student.AnnualReviewDate
		daysCopy := days
		out = append(out, models.Reminder{
			ID:           fmt.Sprintf("%s-%s", models.ReminderAnnualReview, student.ID),
			Type:         models.ReminderAnnualReview,
			Title:        "Annual review approaching",
			Description:  fmt.Sprintf("%s's annual review is in %d days", student.FullName, days),
			StudentID:    student.ID,
			StudentName:  student.FullName,
			DueDate:      &due,
			Priority:     priority,
			DaysUntilDue: &daysCopy,
		})
	}
	return out
}

// frequencyBehind compares delivered direct sessions against the student's
// mandated service frequency over a trailing window.
func (e *Engine) frequencyBehind(now time.Time, students map[string]models.Student, sessions []models.Session) []models.Reminder {
	var out []models.Reminder
	for _, student := range sortedStudents(students) {
		if student.FrequencyPerWeek == nil || student.FrequencyType == nil {
			continue
		}
		lookback := perWeekLookback
		expected := *student.FrequencyPerWeek * 4
		if *student.FrequencyType == models.FrequencyPerMonth {
			lookback = perMonthLookback
			expected = *student.FrequencyPerWeek
		}
		cutoff := now.AddDate(0, 0, -lookback)
		actual := 0
		for _, session := range sessions {
			if session.StudentID != student.ID || !session.IsDirectServices || session.MissedSession {
				continue
			}
			if session.Date.Before(cutoff) || session.Date.After(now) {
				continue
			}
			actual++
		}
		behind := expected - actual
		if behind < 1 {
			continue
		}
		priority := models.PriorityLow
		switch {
		case behind >= 3:
			priority = models.PriorityHigh
		case behind >= 2:
			priority = models.PriorityMedium
		}
		days := -behind
		out = append(out, models.Reminder{
			ID:           fmt.Sprintf("%s-%s", models.ReminderFrequencyBehind, student.ID),
			Type:         models.ReminderFrequencyBehind,
			Title:        "Behind on service frequency",
			Description:  fmt.Sprintf("%s is %d session(s) behind over the last %d days", student.FullName, behind, lookback),
			StudentID:    student.ID,
			StudentName:  student.FullName,
			Priority:     priority,
			DaysUntilDue: &days,
		})
	}
	return out
}

// missingGoals flags active students with no goals on file at all.
func (e *Engine) missingGoals(now time.Time, students map[string]models.Student, goals []models.Goal) []models.Reminder {
	hasGoal := make(map[string]struct{}, len(goals))
	for _, goal := range goals {
		hasGoal[goal.StudentID] = struct{}{}
	}
	var out []models.Reminder
	for _, student := range sortedStudents(students) {
		if _, ok := hasGoal[student.ID]; ok {
			continue
		}
		priority := models.PriorityMedium
		if student.DateAdded.Before(now) && daysBetween(now, student.DateAdded) >= newStudentGrace {
			priority = models.PriorityHigh
		}
		out = append(out, models.Reminder{
			ID:          fmt.Sprintf("%s-%s", models.ReminderNoGoals, student.ID),
			Type:        models.ReminderNoGoals,
			Title:       "No goals on file",
			Description: fmt.Sprintf("%s has no goals set up yet", student.FullName),
			StudentID:   student.ID,
			StudentName: student.FullName,
			Priority:    priority,
		})
	}
	return out
}

// missingTargets flags in-progress goals whose target text carries no
// parseable percentage.
func (e *Engine) missingTargets(now time.Time, students map[string]models.Student, goals []models.Goal) []models.Reminder {
	achieved := achievedGoalIDs(goals)
	var out []models.Reminder
	for _, goal := range goals {
		student, ok := students[goal.StudentID]
		if !ok || !activeGoal(goal, achieved) {
			continue
		}
		if _, found := targetPercentage(goal.Target); found {
			continue
		}
		priority := models.PriorityMedium
		if goal.DateCreated.Before(now) && daysBetween(now, goal.DateCreated) >= newStudentGrace {
			priority = models.PriorityHigh
		}
		goalID := goal.ID
		out = append(out, models.Reminder{
			ID:          fmt.Sprintf("%s-%s", models.ReminderNoTarget, goal.ID),
			Type:        models.ReminderNoTarget,
			Title:       "Goal missing target percentage",
			Description: fmt.Sprintf("%s has a goal without a measurable target", student.FullName),
			StudentID:   student.ID,
			StudentName: student.FullName,
			RelatedID:   &goalID,
			Priority:    priority,
		})
	}
	return out
}

func eligibleStudents(students []models.Student, school string) map[string]models.Student {
	school = strings.TrimSpace(school)
	out := make(map[string]models.Student, len(students))
	for _, student := range students {
		if !student.Eligible() {
			continue
		}
		if school != "" && strings.TrimSpace(student.School) != school {
			continue
		}
		out[student.ID] = student
	}
	return out
}

// sortedStudents returns eligible students in a stable id order so detector
// output is deterministic regardless of map iteration.
func sortedStudents(students map[string]models.Student) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, student := range students {
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// lastTargeted returns the most recent session date targeting the goal, or
// nil when no session matches. Sessions with undecodable goals_targeted are
// skipped, never fatal.
func lastTargeted(goal models.Goal, sessions []models.Session) *time.Time {
	var latest *time.Time
	for i := range sessions {
		session := sessions[i]
		if session.StudentID != goal.StudentID {
			continue
		}
		ids, err := session.TargetedGoalIDs()
		if err != nil {
			continue
		}
		for _, id := range ids {
			if id != goal.ID {
				continue
			}
			if latest == nil || session.Date.After(*latest) {
				date := session.Date
				latest = &date
			}
			break
		}
	}
	return latest
}

func achievedGoalIDs(goals []models.Goal) map[string]struct{} {
	out := make(map[string]struct{})
	for _, goal := range goals {
		if goal.Status == models.GoalStatusAchieved {
			out[goal.ID] = struct{}{}
		}
	}
	return out
}

// activeGoal reports whether the goal participates in active-goal
// aggregations: in progress, and not a child of an achieved goal.
func activeGoal(goal models.Goal, achieved map[string]struct{}) bool {
	if goal.Status != models.GoalStatusInProgress {
		return false
	}
	if goal.ParentGoalID != nil {
		if _, ok := achieved[*goal.ParentGoalID]; ok {
			return false
		}
	}
	return true
}

// daysBetween returns the absolute difference between two instants rounded
// up to whole days.
func daysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// signedDaysUntil is negative when due is in the past.
func signedDaysUntil(now, due time.Time) int {
	days := daysBetween(now, due)
	if due.Before(now) {
		return -days
	}
	return days
}

func dueOrInfinity(r models.Reminder) int {
	if r.DaysUntilDue == nil {
		return math.MaxInt32
	}
	return *r.DaysUntilDue
}

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// targetPercentage extracts the measurable target from free text, preferring
// an explicit percentage over a bare number.
func targetPercentage(target string) (string, bool) {
	if match := percentPattern.FindStringSubmatch(target); match != nil {
		return match[1], true
	}
	if match := numberPattern.FindString(target); match != "" {
		return match, true
	}
	return "", false
}
