package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// RunHeader carries the generation run id on file downloads.
const RunHeader = "X-Timetable-Run"

type timetablePreviewResponse struct {
	Mode      string                         `json:"mode"`
	Timetable *dto.GenerateTimetableResponse `json:"timetable"`
}

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateFromCatalog(ctx context.Context, req dto.CatalogTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Export(ctx context.Context, req dto.ExportTimetableRequest) (*dto.ExportedFile, error)
}

// TimetableHandler exposes timetable generation endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableGenerator) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a weekly timetable
// @Description Greedy first-fit placement of every class subject into the Monday to Friday grid. Nothing is stored.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation input"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetablePreviewResponse{Mode: "preview", Timetable: result}, requestMeta(c))
}

// GenerateFromCatalog godoc
// @Summary Generate a weekly timetable from the catalog database
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CatalogTimetableRequest false "Class filter and periods per day"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/generate/catalog [post]
func (h *TimetableHandler) GenerateFromCatalog(c *gin.Context) {
	var req dto.CatalogTimetableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid catalog payload"))
			return
		}
	}
	result, err := h.service.GenerateFromCatalog(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetablePreviewResponse{Mode: "preview", Timetable: result}, requestMeta(c))
}

// Export godoc
// @Summary Generate a timetable and download it
// @Tags Timetables
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Param payload body dto.GenerateTimetableRequest true "Generation input"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetables/export [post]
func (h *TimetableHandler) Export(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), dto.ExportTimetableRequest{
		Format:  c.DefaultQuery("format", "csv"),
		Request: req,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header(RunHeader, file.RunID)
	response.File(c, file.FileName, file.ContentType, file.Data)
}
