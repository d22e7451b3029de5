package records

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumind/internal/shared/server/middleware"
	"resumind/internal/shared/server/respond"
)

// maxUploadBytes bounds the multipart resume upload.
const maxUploadBytes = 20 << 20

// Handler wires HTTP handlers to the records service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches record routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/records", h.createRecord)
	rg.GET("/records", h.listRecords)
	rg.GET("/records/:id", h.getRecord)
}

func (h *Handler) createRecord(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume file is required", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF resumes are supported", nil)
		return
	}
	jobTitle := c.PostForm("jobTitle")
	jobDescription := c.PostForm("jobDescription")
	if jobTitle == "" || jobDescription == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobTitle and jobDescription are required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}

	rec, err := h.Svc.Analyze(c.Request.Context(), AnalyzeInput{
		UserID:         userID,
		FileName:       fileHeader.Filename,
		File:           data,
		CompanyName:    c.PostForm("companyName"),
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
	})
	if err != nil {
		var stage *StageError
		if errors.As(err, &stage) {
			respond.Error(c, http.StatusBadGateway, "pipeline_error", stage.Stage, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze resume", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, rec)
}

func (h *Handler) getRecord(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "record id is required", nil)
		return
	}

	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "record not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch record", nil)
		}
		return
	}

	respond.OK(c, rec)
}

func (h *Handler) listRecords(c *gin.Context) {
	recs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list records", nil)
		return
	}
	respond.OK(c, gin.H{"records": recs})
}
