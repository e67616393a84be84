package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talktrack/caseload-api/internal/middleware"
	"github.com/talktrack/caseload-api/internal/service"
	appErrors "github.com/talktrack/caseload-api/pkg/errors"
	"github.com/talktrack/caseload-api/pkg/response"
)

type timesheetService interface {
	Note(ctx context.Context, date time.Time, opts service.NoteOptions) (string, bool, error)
	ProspectiveNote(ctx context.Context, date time.Time, opts service.NoteOptions) (string, error)
	NotePDF(ctx context.Context, date time.Time, opts service.NoteOptions) ([]byte, error)
}

// TimesheetHandler exposes the day-note endpoints.
type TimesheetHandler struct {
	timesheets timesheetService
	defaults   service.NoteOptions
}

// NewTimesheetHandler constructs TimesheetHandler. The defaults apply when a
// request does not override the rendering flags.
func NewTimesheetHandler(timesheets timesheetService, defaults service.NoteOptions) *TimesheetHandler {
	return &TimesheetHandler{timesheets: timesheets, defaults: defaults}
}

// Note godoc
// @Summary Render the timesheet note for one day
// @Tags Timesheet
// @Produce plain
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param teletherapy query bool false "Teletherapy wording and forced times"
// @Param specific_times query bool false "Append time ranges to entries"
// @Success 200 {string} string "Rendered note"
// @Security BearerAuth
// @Router /timesheet/note [get]
func (h *TimesheetHandler) Note(c *gin.Context) {
	date, opts, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, cached, err := h.timesheets.Note(c.Request.Context(), date, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.Text(c, http.StatusOK, note)
}

// Prospective godoc
// @Summary Project a note for a future day from the recurring schedule
// @Tags Timesheet
// @Produce plain
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param teletherapy query bool false "Teletherapy wording and forced times"
// @Param specific_times query bool false "Append time ranges to entries"
// @Success 200 {string} string "Rendered note"
// @Security BearerAuth
// @Router /timesheet/prospective [get]
func (h *TimesheetHandler) Prospective(c *gin.Context) {
	date, opts, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.timesheets.ProspectiveNote(c.Request.Context(), date, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, note)
}

// NotePDF godoc
// @Summary Render the timesheet note for one day as PDF
// @Tags Timesheet
// @Produce application/pdf
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param teletherapy query bool false "Teletherapy wording and forced times"
// @Param specific_times query bool false "Append time ranges to entries"
// @Success 200 {string} string "PDF payload"
// @Security BearerAuth
// @Router /timesheet/note/pdf [get]
func (h *TimesheetHandler) NotePDF(c *gin.Context) {
	date, opts, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.timesheets.NotePDF(c.Request.Context(), date, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timesheet-%s.pdf", date.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func (h *TimesheetHandler) parseQuery(c *gin.Context) (time.Time, service.NoteOptions, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, service.NoteOptions{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, service.NoteOptions{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	opts := h.defaults
	if v := c.Query("teletherapy"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			opts.Teletherapy = parsed
		}
	}
	if v := c.Query("specific_times"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			opts.SpecificTimes = parsed
		}
	}
	return date, opts, nil
}
