package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talktrack/caseload-api/internal/middleware"
	"github.com/talktrack/caseload-api/internal/service"
	"github.com/talktrack/caseload-api/pkg/response"
)

type reminderService interface {
	Feed(ctx context.Context, school string) (*service.ReminderFeed, bool, error)
	ExportCSV(ctx context.Context, school string) ([]byte, error)
}

// ReminderHandler exposes the reminder feed endpoints.
type ReminderHandler struct {
	reminders reminderService
}

// NewReminderHandler constructs ReminderHandler.
func NewReminderHandler(reminders reminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// Feed godoc
// @Summary Aggregated reminder feed
// @Description Derives all reminders for the caseload, sorted by priority then urgency.
// @Tags Reminders
// @Produce json
// @Param school query string false "Restrict to one school"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reminders [get]
func (h *ReminderHandler) Feed(c *gin.Context) {
	school := strings.TrimSpace(c.Query("school"))

	feed, cached, err := h.reminders.Feed(c.Request.Context(), school)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, feed, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the reminder feed as CSV
// @Tags Reminders
// @Produce text/csv
// @Param school query string false "Restrict to one school"
// @Success 200 {string} string "CSV payload"
// @Security BearerAuth
// @Router /reminders/export [get]
func (h *ReminderHandler) Export(c *gin.Context) {
	school := strings.TrimSpace(c.Query("school"))

	payload, err := h.reminders.ExportCSV(c.Request.Context(), school)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("reminders-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
