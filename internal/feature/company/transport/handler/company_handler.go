// Package handler serves the company profile endpoints.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/feature/company/domain/entity"
	"internship_backend/internal/feature/company/transport/http/dto"
	"internship_backend/internal/feature/company/usecase"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/upload"
	"internship_backend/internal/platform/validation"
)

// Upload field names of POST /company/profile.
const (
	FieldLogo       = "companyLogo"
	FieldAuthLetter = "authLetter"
)

type CompanyUsecase interface {
	GetProfile(ctx context.Context, userID uint) (*entity.Company, error)
	SaveProfile(ctx context.Context, userID uint, in usecase.ProfileInput) (*entity.Company, error)
}

type CompanyHandler struct {
	companies CompanyUsecase
}

func NewCompanyHandler(companies CompanyUsecase) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

var notFound = []api.ErrorCase{
	{Err: usecase.ErrCompanyNotFound, Status: http.StatusNotFound, Message: "company profile not found"},
}

// GetProfile returns the caller's company.
func (h *CompanyHandler) GetProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	company, err := h.companies.GetProfile(c.Request.Context(), id.ID)
	if err != nil {
		api.RespondWithMappedError(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompanyRes(company))
}

// SaveProfile creates or updates the caller's company from a multipart form.
func (h *CompanyHandler) SaveProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	form, ok := validation.Payload[dto.CompanyProfileForm](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	in := usecase.ProfileInput{
		CompanyName: form.CompanyName,
		Industry:    form.Industry,
		Website:     form.Website,
		Description: form.Description,
	}
	if f, ok := upload.First(c, FieldLogo); ok {
		in.LogoFile = f.Name
	}
	if f, ok := upload.First(c, FieldAuthLetter); ok {
		in.AuthLetterFile = f.Name
	}

	company, err := h.companies.SaveProfile(c.Request.Context(), id.ID, in)
	if err != nil {
		api.RespondWithMappedError(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompanyRes(company))
}
