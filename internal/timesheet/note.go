package timesheet

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/talktrack/caseload-api/internal/models"
	"github.com/talktrack/caseload-api/internal/schedule"
)

// TimeFormatter renders session times. The output format is fixed by the
// downstream timesheet system, so callers may inject their own.
type TimeFormatter interface {
	FormatTimeRange(start, end time.Time) string
	FormatTime12Hour(t time.Time) string
}

type clockFormatter struct{}

func (clockFormatter) FormatTime12Hour(t time.Time) string {
	return strings.ToLower(t.Format("3:04PM"))
}

func (f clockFormatter) FormatTimeRange(start, end time.Time) string {
	return f.FormatTime12Hour(start) + "-" + f.FormatTime12Hour(end)
}

// DefaultFormatter renders times like "8:10am-8:30am".
var DefaultFormatter TimeFormatter = clockFormatter{}

// Input bundles one day's realized activity records plus lookups. All
// collections are assumed to be pre-filtered to the target period.
type Input struct {
	Sessions       []models.Session
	Meetings       []models.Meeting
	Screeners      []models.ArticulationScreener
	Communications []models.Communication
	// Students resolves student ids for initials and grades. Missing
	// entries degrade to "Unknown", never an error.
	Students map[string]models.Student
	// Groups resolves a group session id to all member sessions of the
	// shared encounter.
	Groups      map[string][]models.Session
	Teletherapy bool
	// SpecificTimes appends time ranges to timed entries. Forced on
	// whenever Teletherapy is set.
	SpecificTimes bool
	Format        TimeFormatter
}

// ProspectiveInput drives a schedule-projected note for a future date.
// Email correspondence is omitted: it cannot be predicted.
type ProspectiveInput struct {
	Schedules     []models.ScheduledSession
	Meetings      []models.Meeting
	Screeners     []models.ArticulationScreener
	Date          time.Time
	Students      map[string]models.Student
	Teletherapy   bool
	SpecificTimes bool
	Format        TimeFormatter
}

type entry struct {
	studentID string
	label     string
	start     time.Time
	end       *time.Time
	timed     bool
}

// bucket accumulates entries deduplicated by student id, first seen wins.
// occurrences counts student-less records that still force the line to
// render.
type bucket struct {
	label       string
	entries     []entry
	seen        map[string]struct{}
	occurrences int
}

func newBucket(label string) *bucket {
	return &bucket{label: label, seen: map[string]struct{}{}}
}

func (b *bucket) add(e entry) {
	if _, dup := b.seen[e.studentID]; dup {
		return
	}
	b.seen[e.studentID] = struct{}{}
	b.entries = append(b.entries, e)
}

func (b *bucket) empty() bool {
	return len(b.entries) == 0 && b.occurrences == 0
}

func (b *bucket) render(withTimes bool, f TimeFormatter) string {
	if len(b.entries) == 0 {
		return b.label
	}
	sorted := make([]entry, len(b.entries))
	copy(sorted, b.entries)
	if withTimes && allTimed(sorted) {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].label < sorted[j].label })
	}
	parts := make([]string, 0, len(sorted))
	for _, e := range sorted {
		text := e.label
		if withTimes && e.timed {
			if e.end != nil {
				text += " " + f.FormatTimeRange(e.start, *e.end)
			} else {
				text += " " + f.FormatTime12Hour(e.start)
			}
		}
		parts = append(parts, text)
	}
	return b.label + ": " + strings.Join(parts, ", ")
}

func allTimed(entries []entry) bool {
	for _, e := range entries {
		if !e.timed {
			return false
		}
	}
	return true
}

// Generate renders the timesheet note for one day of realized activity.
// Given identical inputs the output is byte-identical.
func Generate(in Input) string {
	f := in.Format
	if f == nil {
		f = DefaultFormatter
	}
	withTimes := in.SpecificTimes || in.Teletherapy

	direct := newBucket("Direct Therapy")
	missed := newBucket("missed")
	indirect := newBucket("indirect")
	partitionSessions(in, direct, missed, indirect)

	initial := newBucket("Initial Assessment")
	reassessment := newBucket("3 Year Reassessment")
	screening := newBucket("Speech screening")
	writeup := newBucket("Speech Screening Write-Up and Staff Collaboration")
	lines := map[IndirectLine]*bucket{}

	for _, m := range in.Meetings {
		class := ClassifyMeeting(m)
		switch class.Kind {
		case KindInitialAssessment:
			addMeeting(initial, m, in.Students)
		case KindReassessment:
			addMeeting(reassessment, m, in.Students)
		case KindScreening:
			addMeeting(screening, m, in.Students)
			addMeeting(writeup, m, in.Students)
		case KindIndirect:
			line, ok := lines[class.Line]
			if !ok {
				line = newBucket(class.Line.Label())
				lines[class.Line] = line
			}
			if m.StudentID == nil {
				line.occurrences++
			} else {
				addMeeting(line, m, in.Students)
			}
		}
	}

	var screenerEntries []entry
	for _, s := range in.Screeners {
		e := entry{studentID: s.StudentID, label: studentLabel(in.Students, s.StudentID), start: s.Date}
		screenerEntries = append(screenerEntries, e)
		screening.add(e)
		writeup.add(e)
	}

	// Missed direct sessions are never billed: their students surface only
	// through the documentation and planning buckets below.
	sessionDoc := newBucket("Session Documentation")
	for _, e := range direct.entries {
		sessionDoc.add(untimed(e))
	}
	for _, e := range missed.entries {
		sessionDoc.add(untimed(e))
	}
	for _, e := range screenerEntries {
		sessionDoc.add(untimed(e))
	}

	email := newBucket("Email Correspondence")
	for _, c := range in.Communications {
		if c.RelatedTo != nil && mentionsEvaluation(*c.RelatedTo) {
			continue
		}
		if c.StudentID == nil {
			continue
		}
		email.add(entry{studentID: *c.StudentID, label: studentLabel(in.Students, *c.StudentID)})
	}

	lesson := newBucket("Lesson Planning")
	for _, src := range []*bucket{direct, missed, indirect} {
		for _, e := range src.entries {
			lesson.add(untimed(e))
		}
	}

	var blocks []string
	directBuckets := []*bucket{direct, initial, reassessment, screening}
	if anyPopulated(directBuckets) {
		blocks = append(blocks, directLabel(in.Teletherapy))
		for _, b := range directBuckets {
			if !b.empty() {
				blocks = append(blocks, b.render(withTimes, f))
			}
		}
	}

	indirectBuckets := []*bucket{sessionDoc, email, lesson, writeup}
	for _, line := range IndirectLines() {
		if b, ok := lines[line]; ok {
			indirectBuckets = append(indirectBuckets, b)
		}
	}
	if anyPopulated(indirectBuckets) {
		blocks = append(blocks, indirectLabel(in.Teletherapy))
		for _, b := range indirectBuckets {
			if !b.empty() {
				blocks = append(blocks, b.render(withTimes, f))
			}
		}
	}

	return strings.Join(blocks, "\n\n")
}

// GenerateProspective expands recurring schedules onto the target date and
// renders them under the same classification rules as realized sessions.
func GenerateProspective(in ProspectiveInput) string {
	occurrences := schedule.ExpandForDate(in.Schedules, in.Date)
	sessions := make([]models.Session, 0, len(occurrences))
	for _, o := range occurrences {
		end := o.End
		sessions = append(sessions, models.Session{
			ID:               o.ScheduleID + ":" + o.StudentID,
			StudentID:        o.StudentID,
			Date:             o.Start,
			EndTime:          &end,
			IsDirectServices: o.IsDirectServices,
		})
	}
	return Generate(Input{
		Sessions:      sessions,
		Meetings:      in.Meetings,
		Screeners:     in.Screeners,
		Students:      in.Students,
		Teletherapy:   in.Teletherapy,
		SpecificTimes: in.SpecificTimes,
		Format:        in.Format,
	})
}

// partitionSessions splits sessions into direct, missed-direct and indirect
// buckets, expanding group encounters exactly once and folding every member
// of a group into the bucket of its first-seen session.
func partitionSessions(in Input, direct, missed, indirect *bucket) {
	processedGroups := map[string]struct{}{}
	for _, s := range in.Sessions {
		members := []models.Session{s}
		if s.GroupSessionID != nil {
			if _, done := processedGroups[*s.GroupSessionID]; done {
				continue
			}
			processedGroups[*s.GroupSessionID] = struct{}{}
			if group, ok := in.Groups[*s.GroupSessionID]; ok && len(group) > 0 {
				members = group
			}
		}
		target := indirect
		if s.IsDirectServices {
			if s.MissedSession {
				target = missed
			} else {
				target = direct
			}
		}
		for _, member := range members {
			target.add(entry{
				studentID: member.StudentID,
				label:     studentLabel(in.Students, member.StudentID),
				start:     member.Date,
				end:       member.EndTime,
				timed:     true,
			})
		}
	}
}

func addMeeting(b *bucket, m models.Meeting, students map[string]models.Student) {
	if m.StudentID == nil {
		return
	}
	b.add(entry{
		studentID: *m.StudentID,
		label:     studentLabel(students, *m.StudentID),
		start:     m.Date,
		end:       m.EndTime,
		timed:     true,
	})
}

func untimed(e entry) entry {
	e.timed = false
	e.end = nil
	return e
}

func anyPopulated(buckets []*bucket) bool {
	for _, b := range buckets {
		if !b.empty() {
			return true
		}
	}
	return false
}

func directLabel(teletherapy bool) string {
	if teletherapy {
		return "Offsite Direct Services:"
	}
	return "Direct services:"
}

func indirectLabel(teletherapy bool) string {
	if teletherapy {
		return "Offsite Indirect Services Including:"
	}
	return "Indirect services including:"
}

func mentionsEvaluation(relatedTo string) bool {
	lowered := strings.ToLower(relatedTo)
	return strings.Contains(lowered, "iep") || strings.Contains(lowered, "eval")
}

func studentLabel(students map[string]models.Student, id string) string {
	student, ok := students[id]
	if !ok {
		return "Unknown"
	}
	label := initials(student.FullName)
	if label == "" {
		return "Unknown"
	}
	if student.Grade != "" {
		label += " (" + student.Grade + ")"
	}
	return label
}

func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
	}
	return b.String()
}
