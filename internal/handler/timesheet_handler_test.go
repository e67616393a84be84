package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktrack/caseload-api/internal/service"
)

type timesheetServiceMock struct {
	note     string
	pdf      []byte
	lastDate time.Time
	lastOpts service.NoteOptions
}

func (m *timesheetServiceMock) Note(ctx context.Context, date time.Time, opts service.NoteOptions) (string, bool, error) {
	m.lastDate = date
	m.lastOpts = opts
	return m.note, false, nil
}

func (m *timesheetServiceMock) ProspectiveNote(ctx context.Context, date time.Time, opts service.NoteOptions) (string, error) {
	m.lastDate = date
	m.lastOpts = opts
	return m.note, nil
}

func (m *timesheetServiceMock) NotePDF(ctx context.Context, date time.Time, opts service.NoteOptions) ([]byte, error) {
	m.lastDate = date
	m.lastOpts = opts
	return m.pdf, nil
}

func TestTimesheetHandlerNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timesheetServiceMock{note: "Direct services:\n\nDirect Therapy: AB (3)"}
	h := NewTimesheetHandler(mockSvc, service.NoteOptions{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/note?date=2025-03-10", nil)
	c.Request = req

	h.Note(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-10", mockSvc.lastDate.Format("2006-01-02"))
	assert.Contains(t, w.Body.String(), "Direct Therapy: AB (3)")
}

func TestTimesheetHandlerNoteRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimesheetHandler(&timesheetServiceMock{}, service.NoteOptions{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/note", nil)
	c.Request = req

	h.Note(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimesheetHandlerNoteRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimesheetHandler(&timesheetServiceMock{}, service.NoteOptions{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/note?date=03/10/2025", nil)
	c.Request = req

	h.Note(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimesheetHandlerQueryOverridesDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timesheetServiceMock{}
	h := NewTimesheetHandler(mockSvc, service.NoteOptions{Teletherapy: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/note?date=2025-03-10&teletherapy=false&specific_times=true", nil)
	c.Request = req

	h.Note(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, mockSvc.lastOpts.Teletherapy)
	assert.True(t, mockSvc.lastOpts.SpecificTimes)
}

func TestTimesheetHandlerDefaultsApplyWhenUnset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timesheetServiceMock{}
	h := NewTimesheetHandler(mockSvc, service.NoteOptions{Teletherapy: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/prospective?date=2025-03-11", nil)
	c.Request = req

	h.Prospective(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.lastOpts.Teletherapy)
}

func TestTimesheetHandlerNotePDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timesheetServiceMock{pdf: []byte("%PDF-1.3")}
	h := NewTimesheetHandler(mockSvc, service.NoteOptions{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timesheet/note/pdf?date=2025-03-10", nil)
	c.Request = req

	h.NotePDF(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timesheet-2025-03-10.pdf")
}
