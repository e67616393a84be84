package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talktrack/caseload-api/internal/models"
)

func subtypePtr(s models.ActivitySubtype) *models.ActivitySubtype {
	return &s
}

func TestClassifyLegacyAssessment(t *testing.T) {
	assessed := models.Meeting{Category: models.CategoryAssessmentLegacy, ActivitySubtype: subtypePtr(models.SubtypeAssessment)}
	assert.Equal(t, KindReassessment, ClassifyMeeting(assessed).Kind)

	planned := models.Meeting{Category: models.CategoryAssessmentLegacy, ActivitySubtype: subtypePtr(models.SubtypeMeeting)}
	got := ClassifyMeeting(planned)
	assert.Equal(t, KindIndirect, got.Kind)
	assert.Equal(t, "3 year reassessment planning meeting", got.Line.Label())

	// Missing subtype defaults to a planning meeting.
	bare := models.Meeting{Category: models.CategoryAssessmentLegacy}
	got = ClassifyMeeting(bare)
	assert.Equal(t, KindIndirect, got.Kind)
	assert.Equal(t, models.SubtypeMeeting, got.Line.Subtype)
}

func TestClassifyDirectContactCategories(t *testing.T) {
	assert.Equal(t, KindInitialAssessment, ClassifyMeeting(models.Meeting{Category: models.CategoryInitialAssessment}).Kind)
	assert.Equal(t, KindReassessment, ClassifyMeeting(models.Meeting{Category: models.CategoryThreeYearReassessment}).Kind)
	assert.Equal(t, KindScreening, ClassifyMeeting(models.Meeting{Category: models.CategorySpeechScreening}).Kind)
}

func TestClassifyIndirectSubtypeSplit(t *testing.T) {
	updates := models.Meeting{Category: models.CategoryIEPPlanning, ActivitySubtype: subtypePtr(models.SubtypeUpdates)}
	got := ClassifyMeeting(updates)
	assert.Equal(t, KindIndirect, got.Kind)
	assert.Equal(t, "IEP planning updates", got.Line.Label())

	// Assessment documentation never splits by subtype.
	doc := models.Meeting{Category: models.CategoryAssessmentDocumentation, ActivitySubtype: subtypePtr(models.SubtypeUpdates)}
	got = ClassifyMeeting(doc)
	assert.Equal(t, KindIndirect, got.Kind)
	assert.Equal(t, "Assessment documentation", got.Line.Label())
}

func TestClassifyUnknownCategoryIgnored(t *testing.T) {
	assert.Equal(t, KindUnknown, ClassifyMeeting(models.Meeting{Category: "Lunch duty"}).Kind)
}

func TestIndirectLinesOrder(t *testing.T) {
	lines := IndirectLines()
	assert.Equal(t, "IEP meeting", lines[0].Label())
	assert.Equal(t, "IEP updates", lines[1].Label())
	assert.Equal(t, "Assessment documentation", lines[len(lines)-1].Label())
}
