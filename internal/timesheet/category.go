// Package timesheet classifies a day's clinical activity into billing
// buckets and renders the plain-text note therapists paste into their
// timesheet system.
package timesheet

import (
	"github.com/talktrack/caseload-api/internal/models"
)

// Kind partitions meeting categories into billing treatment.
type Kind int

const (
	// KindUnknown meetings are ignored by the renderer.
	KindUnknown Kind = iota
	// KindInitialAssessment is direct contact under Initial Assessment.
	KindInitialAssessment
	// KindReassessment is direct contact under 3 Year Reassessment.
	KindReassessment
	// KindScreening is a screening contact; it feeds both the direct
	// screening bucket and the indirect write-up bucket.
	KindScreening
	// KindIndirect renders as a category x subtype line in the indirect
	// section.
	KindIndirect
)

// IndirectLine identifies one category x subtype line of the indirect
// section. Subtype is empty for categories that take none.
type IndirectLine struct {
	Category models.MeetingCategory
	Subtype  models.ActivitySubtype
}

// Label renders the line heading, e.g. "3 year reassessment planning meeting".
func (l IndirectLine) Label() string {
	if l.Subtype == "" {
		return string(l.Category)
	}
	return string(l.Category) + " " + string(l.Subtype)
}

// Class is the classification outcome for a meeting record.
type Class struct {
	Kind Kind
	Line IndirectLine
}

// ClassifyMeeting maps a meeting's category and activity subtype onto its
// billing treatment. The legacy "Assessment" category counts as direct
// contact only when the subtype says an assessment actually happened;
// otherwise it is reassessment planning.
func ClassifyMeeting(m models.Meeting) Class {
	switch m.Category {
	case models.CategoryInitialAssessment:
		return Class{Kind: KindInitialAssessment}
	case models.CategoryThreeYearReassessment:
		return Class{Kind: KindReassessment}
	case models.CategorySpeechScreening:
		return Class{Kind: KindScreening}
	case models.CategoryAssessmentLegacy:
		if m.ActivitySubtype != nil && *m.ActivitySubtype == models.SubtypeAssessment {
			return Class{Kind: KindReassessment}
		}
		return Class{Kind: KindIndirect, Line: IndirectLine{
			Category: models.CategoryReassessmentPlanning,
			Subtype:  subtypeOrMeeting(m),
		}}
	case models.CategoryIEP, models.CategoryIEPPlanning, models.CategoryAssessmentPlanning, models.CategoryReassessmentPlanning:
		return Class{Kind: KindIndirect, Line: IndirectLine{
			Category: m.Category,
			Subtype:  subtypeOrMeeting(m),
		}}
	case models.CategoryAssessmentDocumentation:
		// Documentation takes no meeting/updates split. Deliberate business
		// rule, do not generalize.
		return Class{Kind: KindIndirect, Line: IndirectLine{
			Category: models.CategoryAssessmentDocumentation,
		}}
	default:
		return Class{Kind: KindUnknown}
	}
}

func subtypeOrMeeting(m models.Meeting) models.ActivitySubtype {
	if m.ActivitySubtype == nil {
		return models.SubtypeMeeting
	}
	return *m.ActivitySubtype
}

// IndirectLines returns every renderable indirect line in its fixed output
// order.
func IndirectLines() []IndirectLine {
	subtyped := []models.MeetingCategory{
		models.CategoryIEP,
		models.CategoryIEPPlanning,
		models.CategoryAssessmentPlanning,
		models.CategoryReassessmentPlanning,
	}
	subtypes := []models.ActivitySubtype{
		models.SubtypeMeeting,
		models.SubtypeUpdates,
		models.SubtypeAssessment,
	}
	var out []IndirectLine
	for _, category := range subtyped {
		for _, subtype := range subtypes {
			out = append(out, IndirectLine{Category: category, Subtype: subtype})
		}
	}
	out = append(out, IndirectLine{Category: models.CategoryAssessmentDocumentation})
	return out
}
