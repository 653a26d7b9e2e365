// Package handler serves the college administrator endpoints.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/feature/college/domain/entity"
	"internship_backend/internal/feature/college/transport/http/dto"
	"internship_backend/internal/feature/college/usecase"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/upload"
	"internship_backend/internal/platform/validation"
)

// Upload field names of PUT /college/profile.
const (
	FieldIDProof    = "idProof"
	FieldAuthLetter = "authLetter"
)

type CollegeUsecase interface {
	GetProfile(ctx context.Context, adminUserID uint) (*entity.College, error)
	UpdateProfile(ctx context.Context, adminUserID uint, in usecase.ProfileInput) (*entity.College, error)
	ListColleges(ctx context.Context) ([]entity.College, error)
	ListStudents(ctx context.Context, adminUserID uint) ([]entity.LinkedStudent, error)
}

type CollegeHandler struct {
	colleges CollegeUsecase
}

func NewCollegeHandler(colleges CollegeUsecase) *CollegeHandler {
	return &CollegeHandler{colleges: colleges}
}

var notFound = []api.ErrorCase{
	{Err: usecase.ErrCollegeNotFound, Status: http.StatusNotFound, Message: "college profile not found"},
}

func (h *CollegeHandler) GetProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	college, err := h.colleges.GetProfile(c.Request.Context(), id.ID)
	if err != nil {
		api.RespondWithMappedError(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollegeRes(college))
}

// UpdateProfile は idProof / authLetter を含むマルチパートでプロフィールを更新します。
func (h *CollegeHandler) UpdateProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	form, ok := validation.Payload[dto.CollegeProfileForm](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	in := usecase.ProfileInput{
		Name:         form.Name,
		Address:      form.Address,
		Website:      form.Website,
		ContactEmail: form.ContactEmail,
	}
	if f, ok := upload.First(c, FieldIDProof); ok {
		in.IDProofFile = f.Name
	}
	if f, ok := upload.First(c, FieldAuthLetter); ok {
		in.AuthLetterFile = f.Name
	}

	college, err := h.colleges.UpdateProfile(c.Request.Context(), id.ID, in)
	if err != nil {
		api.RespondWithMappedError(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollegeRes(college))
}

// ListColleges is open to every role so students can pick a college to link.
func (h *CollegeHandler) ListColleges(c *gin.Context) {
	colleges, err := h.colleges.ListColleges(c.Request.Context())
	if err != nil {
		api.RespondWithMappedError(c, err, nil)
		return
	}
	items := dto.NewCollegeSummaries(colleges)
	c.JSON(http.StatusOK, api.ListResponse[dto.CollegeSummaryRes]{Items: items, Total: len(items)})
}

func (h *CollegeHandler) ListStudents(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	students, err := h.colleges.ListStudents(c.Request.Context(), id.ID)
	if err != nil {
		api.RespondWithMappedError(c, err, notFound)
		return
	}
	if students == nil {
		students = []entity.LinkedStudent{}
	}
	c.JSON(http.StatusOK, api.ListResponse[entity.LinkedStudent]{Items: students, Total: len(students)})
}
