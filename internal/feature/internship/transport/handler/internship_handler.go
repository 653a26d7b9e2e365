// Package handler serves the internship and application endpoints.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/feature/internship/domain/entity"
	"internship_backend/internal/feature/internship/transport/http/dto"
	"internship_backend/internal/feature/internship/usecase"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/validation"
)

type InternshipUsecase interface {
	Create(ctx context.Context, userID uint, in usecase.InternshipInput) (*entity.Internship, error)
	List(ctx context.Context, f usecase.ListFilter) ([]entity.Internship, int64, error)
	Get(ctx context.Context, id uint) (*entity.Internship, error)
	Update(ctx context.Context, userID, id uint, in usecase.InternshipInput) (*entity.Internship, error)
	Delete(ctx context.Context, userID, id uint) error
	Apply(ctx context.Context, userID, internshipID uint, coverLetter string) (*entity.Application, error)
	ListForStudent(ctx context.Context, userID uint) ([]entity.Application, error)
	ListForInternship(ctx context.Context, userID, internshipID uint) ([]entity.Application, error)
	UpdateApplicationStatus(ctx context.Context, userID, applicationID uint, to entity.ApplicationStatus) (*entity.Application, error)
}

type InternshipHandler struct {
	internships InternshipUsecase
}

func NewInternshipHandler(internships InternshipUsecase) *InternshipHandler {
	return &InternshipHandler{internships: internships}
}

var errorCases = []api.ErrorCase{
	{Err: usecase.ErrInternshipNotFound, Status: http.StatusNotFound, Message: "internship not found"},
	{Err: usecase.ErrApplicationNotFound, Status: http.StatusNotFound, Message: "application not found"},
	{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "forbidden"},
	{Err: usecase.ErrInternshipClosed, Status: http.StatusConflict, Message: "internship is not accepting applications"},
	{Err: usecase.ErrAlreadyApplied, Status: http.StatusConflict, Message: "already applied to this internship"},
	{Err: usecase.ErrInvalidTransition, Status: http.StatusConflict, Message: "application status cannot be changed"},
	{Err: usecase.ErrCompanyProfileNeeded, Status: http.StatusConflict, Message: "create your company profile first"},
	{Err: usecase.ErrStudentProfileNeeded, Status: http.StatusConflict, Message: "create your student profile first"},
	{Err: usecase.ErrDeadlinePassed, Status: http.StatusBadRequest, Message: "deadline is in the past"},
}

// pathID parses :id and answers 400 when it is not a positive integer.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func callerID(c *gin.Context) uint {
	id, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		return 0
	}
	return id.ID
}

func input(req *dto.InternshipReq) usecase.InternshipInput {
	return usecase.InternshipInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Stipend:       req.Stipend,
		DurationWeeks: req.DurationWeeks,
		Openings:      req.Openings,
		Deadline:      req.Deadline,
		Status:        entity.Status(req.Status),
	}
}

func (h *InternshipHandler) Create(c *gin.Context) {
	req, ok := validation.Payload[dto.InternshipReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	it, err := h.internships.Create(c.Request.Context(), callerID(c), input(req))
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusCreated, dto.NewInternshipRes(it))
}

func (h *InternshipHandler) List(c *gin.Context) {
	q, ok := validation.Payload[dto.ListInternshipsQuery](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	items, total, err := h.internships.List(c.Request.Context(), usecase.ListFilter{
		Status:    entity.Status(q.Status),
		CompanyID: q.CompanyID,
		Location:  q.Location,
		Query:     q.Q,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	out := make([]dto.InternshipRes, 0, len(items))
	for i := range items {
		out = append(out, dto.NewInternshipRes(&items[i]))
	}
	c.JSON(http.StatusOK, api.ListResponse[dto.InternshipRes]{Items: out, Total: int(total)})
}

func (h *InternshipHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.internships.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, dto.NewInternshipRes(it))
}

// Update は掲載企業のみ。他社は403
func (h *InternshipHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := validation.Payload[dto.InternshipReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	it, err := h.internships.Update(c.Request.Context(), callerID(c), id, input(req))
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, dto.NewInternshipRes(it))
}

func (h *InternshipHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.internships.Delete(c.Request.Context(), callerID(c), id); err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InternshipHandler) Apply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := validation.Payload[dto.ApplyReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	a, err := h.internships.Apply(c.Request.Context(), callerID(c), id, req.CoverLetter)
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusCreated, dto.NewApplicationRes(a))
}

// ListMyApplications serves GET /student/applications.
func (h *InternshipHandler) ListMyApplications(c *gin.Context) {
	apps, err := h.internships.ListForStudent(c.Request.Context(), callerID(c))
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	items := dto.NewApplicationList(apps)
	c.JSON(http.StatusOK, api.ListResponse[dto.ApplicationRes]{Items: items, Total: len(items)})
}

// ListApplications serves GET /internships/:id/applications for the owner.
func (h *InternshipHandler) ListApplications(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	apps, err := h.internships.ListForInternship(c.Request.Context(), callerID(c), id)
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	items := dto.NewApplicationList(apps)
	c.JSON(http.StatusOK, api.ListResponse[dto.ApplicationRes]{Items: items, Total: len(items)})
}

func (h *InternshipHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := validation.Payload[dto.UpdateApplicationStatusReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	a, err := h.internships.UpdateApplicationStatus(c.Request.Context(), callerID(c), id, entity.ApplicationStatus(req.Status))
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, dto.NewApplicationRes(a))
}
