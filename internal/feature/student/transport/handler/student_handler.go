// Package handler serves the student profile endpoints.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/feature/student/domain/entity"
	"internship_backend/internal/feature/student/transport/http/dto"
	"internship_backend/internal/feature/student/usecase"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/upload"
	"internship_backend/internal/platform/validation"
)

// Upload field names of POST /student/profile.
const (
	FieldPhoto     = "photo"
	FieldSignature = "signature"
	FieldResume    = "resume"
)

type StudentUsecase interface {
	GetProfile(ctx context.Context, userID uint) (*entity.Student, error)
	SaveProfile(ctx context.Context, userID uint, in usecase.ProfileInput) (*entity.Student, error)
	LinkCollege(ctx context.Context, userID, collegeID uint) error
}

type StudentHandler struct {
	students StudentUsecase
}

func NewStudentHandler(students StudentUsecase) *StudentHandler {
	return &StudentHandler{students: students}
}

var errorCases = []api.ErrorCase{
	{Err: usecase.ErrStudentNotFound, Status: http.StatusNotFound, Message: "student profile not found"},
	{Err: usecase.ErrCollegeNotFound, Status: http.StatusNotFound, Message: "college not found"},
}

func (h *StudentHandler) GetProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	s, err := h.students.GetProfile(c.Request.Context(), id.ID)
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, dto.NewStudentRes(s))
}

func (h *StudentHandler) SaveProfile(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	form, ok := validation.Payload[dto.StudentProfileForm](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	in := usecase.ProfileInput{
		FullName:       form.FullName,
		Phone:          form.Phone,
		Course:         form.Course,
		GraduationYear: form.GraduationYear,
		CGPA:           form.CGPA,
	}
	for field, dst := range map[string]*string{
		FieldPhoto:     &in.PhotoFile,
		FieldSignature: &in.SignatureFile,
		FieldResume:    &in.ResumeFile,
	} {
		if f, ok := upload.First(c, field); ok {
			*dst = f.Name
		}
	}

	s, err := h.students.SaveProfile(c.Request.Context(), id.ID, in)
	if err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, dto.NewStudentRes(s))
}

// LinkCollege は学生を既存のカレッジに紐付けます。
// プロフィール未作成は404
func (h *StudentHandler) LinkCollege(c *gin.Context) {
	id, _ := jwtmw.CurrentIdentity(c)
	req, ok := validation.Payload[dto.LinkCollegeReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	if err := h.students.LinkCollege(c.Request.Context(), id.ID, req.CollegeID); err != nil {
		api.RespondWithMappedError(c, err, errorCases)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "college linked"})
}
