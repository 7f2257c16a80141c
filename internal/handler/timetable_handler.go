package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtu-portal/timetable-api/internal/dto"
	"github.com/dtu-portal/timetable-api/internal/models"
	"github.com/dtu-portal/timetable-api/internal/service"
	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
	"github.com/dtu-portal/timetable-api/pkg/response"
)

type timetableManager interface {
	Settings(ctx context.Context) (*models.TimetableSettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*models.TimetableSettings, []string, error)
	Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, []string, error)
	Reset(ctx context.Context) error
	Grid(ctx context.Context, query dto.GridQuery) (*dto.GridResponse, error)
	Entries(ctx context.Context, query dto.GridQuery) ([]models.TimetableEntry, error)
}

type timetableExporter interface {
	Render(ctx context.Context, query dto.GridQuery, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes the timetable settings, generation, and query
// endpoints.
type TimetableHandler struct {
	service  timetableManager
	exporter timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableManager, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// GetSettings godoc
// @Summary Get timetable settings
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/settings [get]
func (h *TimetableHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update timetable settings
// @Description Validates the full configuration and reports every violated rule at once.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Timetable settings payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/settings [put]
func (h *TimetableHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	settings, details, err := h.service.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		response.ErrorWithDetails(c, err, details)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// Generate godoc
// @Summary Generate the weekly timetable
// @Description Runs the scheduler over all assigned classes. Mode "replace" clears previous entries, "append" keeps them.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest false "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}
	result, details, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.ErrorWithDetails(c, err, details)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Reset godoc
// @Summary Clear all generated timetable entries
// @Tags Timetable
// @Success 204
// @Router /timetable/reset [post]
func (h *TimetableHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Grid godoc
// @Summary Get the day-by-period timetable grid
// @Tags Timetable
// @Produce json
// @Param branch query string false "Branch code"
// @Param semester query int false "Semester number (defaults to the active parity group)"
// @Param teacherId query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), parseGridQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// Entries godoc
// @Summary List timetable entries
// @Tags Timetable
// @Produce json
// @Param branch query string false "Branch code"
// @Param semester query int false "Semester number"
// @Param teacherId query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/entries [get]
func (h *TimetableHandler) Entries(c *gin.Context) {
	entries, err := h.service.Entries(c.Request.Context(), parseGridQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Export godoc
// @Summary Download the timetable as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param branch query string false "Branch code"
// @Param semester query int false "Semester number"
// @Success 200 {file} file
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}
	file, err := h.exporter.Render(c.Request.Context(), parseGridQuery(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseGridQuery(c *gin.Context) dto.GridQuery {
	semester, _ := strconv.Atoi(c.Query("semester"))
	return dto.GridQuery{
		Branch:    c.Query("branch"),
		Semester:  semester,
		TeacherID: c.Query("teacherId"),
	}
}
