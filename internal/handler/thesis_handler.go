package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/middleware"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
	"github.com/noah-isme/thesis-registry-api/pkg/response"
)

const multipartMemory = 32 << 20

type thesisService interface {
	List(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery) ([]models.ThesisSnapshot, *models.Pagination, error)
	Get(ctx context.Context, roles *models.RoleContext, id string) (*models.ThesisSnapshot, error)
	Events(ctx context.Context, roles *models.RoleContext, id string, limit int) ([]models.EventLogEntry, error)
	Create(ctx context.Context, roles *models.RoleContext, mutation dto.ThesisMutation) (*models.ThesisSnapshot, error)
	Update(ctx context.Context, roles *models.RoleContext, id string, mutation dto.ThesisMutation) (*models.ThesisSnapshot, error)
	Delete(ctx context.Context, roles *models.RoleContext, id string) error
	CompleteFromAttainment(ctx context.Context, ids []string) (int, error)
}

// ThesisHandler exposes thesis listing and mutation endpoints.
type ThesisHandler struct {
	theses    thesisService
	validator *validator.Validate
}

// NewThesisHandler constructs the handler.
func NewThesisHandler(theses thesisService, validate *validator.Validate) *ThesisHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ThesisHandler{theses: theses, validator: validate}
}

// List godoc
// @Summary List visible theses
// @Tags Theses
// @Produce json
// @Param programId query string false "Program ID"
// @Param departmentId query string false "Department of a supervisor"
// @Param status query string false "Comma separated statuses"
// @Param topic query string false "Topic fragment"
// @Param author query string false "Author name, username, email or student number"
// @Param programName query string false "Program name fragment"
// @Param language query string false "Language of program names (fi, en, sv)"
// @Param onlyMine query bool false "Only theses supervised by the caller"
// @Param sort query string false "Sort fields, prefix with - for descending"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /theses [get]
func (h *ThesisHandler) List(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list(c, query)
}

// ListByDepartment godoc
// @Summary List theses supervised within a department
// @Tags Theses
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/theses [get]
func (h *ThesisHandler) ListByDepartment(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query.DepartmentID = c.Param("id")
	h.list(c, query)
}

func (h *ThesisHandler) list(c *gin.Context, query dto.ThesisListQuery) {
	items, pagination, err := h.theses.List(c.Request.Context(), rolesFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a thesis
// @Tags Theses
// @Produce json
// @Param id path string true "Thesis ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/{id} [get]
func (h *ThesisHandler) Get(c *gin.Context) {
	thesis, err := h.theses.Get(c.Request.Context(), rolesFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thesis, nil, middleware.ExtractMeta(c))
}

// Events godoc
// @Summary Audit trail of a thesis
// @Tags Theses
// @Produce json
// @Param id path string true "Thesis ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/{id}/events [get]
func (h *ThesisHandler) Events(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.theses.Events(c.Request.Context(), rolesFromContext(c), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create a thesis
// @Description Accepts a JSON body, or multipart form data with the payload in field "json" and files in "researchPlan" and "waysOfWorking"
// @Tags Theses
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.ThesisPayload true "Thesis payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /theses [post]
func (h *ThesisHandler) Create(c *gin.Context) {
	mutation, cleanup, err := readMutation(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()
	thesis, err := h.theses.Create(c.Request.Context(), rolesFromContext(c), mutation)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, thesis)
}

// Update godoc
// @Summary Replace a thesis
// @Tags Theses
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Thesis ID"
// @Param payload body dto.ThesisPayload true "Thesis payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/{id} [put]
func (h *ThesisHandler) Update(c *gin.Context) {
	mutation, cleanup, err := readMutation(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()
	thesis, err := h.theses.Update(c.Request.Context(), rolesFromContext(c), c.Param("id"), mutation)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thesis, nil)
}

// Delete godoc
// @Summary Delete a thesis
// @Tags Theses
// @Param id path string true "Thesis ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/{id} [delete]
func (h *ThesisHandler) Delete(c *gin.Context) {
	if err := h.theses.Delete(c.Request.Context(), rolesFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Mark theses completed after study attainment
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.CompleteThesesRequest true "Thesis IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/theses/complete [post]
func (h *ThesisHandler) Complete(c *gin.Context) {
	var req dto.CompleteThesesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	completed, err := h.theses.CompleteFromAttainment(c.Request.Context(), req.ThesisIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CompleteThesesResponse{Completed: completed}, nil)
}

func parseListQuery(c *gin.Context) (dto.ThesisListQuery, error) {
	query := dto.ThesisListQuery{
		ProgramID:    c.Query("programId"),
		DepartmentID: c.Query("departmentId"),
		Topic:        c.Query("topic"),
		Author:       c.Query("author"),
		ProgramName:  c.Query("programName"),
		Language:     c.Query("language"),
		Sort:         c.Query("sort"),
	}
	for _, value := range c.QueryArray("status") {
		for _, status := range strings.Split(value, ",") {
			if status = strings.TrimSpace(status); status != "" {
				query.Statuses = append(query.Statuses, models.ThesisStatus(strings.ToUpper(status)))
			}
		}
	}
	if raw := c.Query("onlyMine"); raw != "" {
		onlyMine, err := strconv.ParseBool(raw)
		if err != nil {
			return query, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"onlyMine": "must be a boolean"})
		}
		query.OnlyMine = onlyMine
	}
	var err error
	if query.Page, err = queryInt(c, "page", 1); err != nil {
		return query, err
	}
	if query.PageSize, err = queryInt(c, "pageSize", 20); err != nil {
		return query, err
	}
	return query, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{key: "must be a non-negative integer"})
	}
	return value, nil
}

// readMutation decodes either a JSON body or a multipart form carrying the
// payload in the "json" field and files under their slot labels. The
// returned cleanup closes opened files.
func readMutation(c *gin.Context) (dto.ThesisMutation, func(), error) {
	noop := func() {}
	var mutation dto.ThesisMutation
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := json.NewDecoder(c.Request.Body).Decode(&mutation.Payload); err != nil {
			return mutation, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid thesis payload")
		}
		return mutation, noop, nil
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return mutation, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form")
	}
	raw := c.Request.FormValue("json")
	if raw == "" {
		return mutation, noop, appErrors.WithFields(appErrors.ErrValidation, map[string]string{"json": "payload field is required"})
	}
	if err := json.Unmarshal([]byte(raw), &mutation.Payload); err != nil {
		return mutation, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid thesis payload")
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	mutation.Files = make(map[models.AttachmentLabel]*dto.AttachmentUpload)
	for _, label := range models.AttachmentLabels {
		header, err := c.FormFile(string(label))
		if err != nil {
			if err == http.ErrMissingFile {
				continue
			}
			cleanup()
			return mutation, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attachment "+string(label))
		}
		file, err := header.Open()
		if err != nil {
			cleanup()
			return mutation, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment "+string(label))
		}
		opened = append(opened, file)
		mutation.Files[label] = &dto.AttachmentUpload{
			OriginalName: header.Filename,
			MimeType:     header.Header.Get("Content-Type"),
			Size:         header.Size,
			Content:      file,
		}
	}
	return mutation, cleanup, nil
}
