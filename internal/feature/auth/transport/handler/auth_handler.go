// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/feature/auth/domain"
	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/feature/auth/transport/http/dto"
	"internship_backend/internal/feature/auth/usecase"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/logging"
	"internship_backend/internal/platform/validation"
	"internship_backend/internal/shared/role"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	VerifyEmail(ctx context.Context, rawToken string) error
	ResendVerification(ctx context.Context, email string) error
	Refresh(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// Request bodies are validated by validation.JSON / validation.Query before
// the handler runs.
type AuthHandler struct {
	auth AuthUsecase
	now  func() time.Time
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, now: time.Now}
}

// RegisterRes is the body of a successful registration.
type RegisterRes struct {
	Message string      `json:"message"`
	User    dto.UserRes `json:"user"`
}

func client(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func tokenResponse(p *usecase.TokenPair) api.TokenResponse {
	return api.TokenResponse{
		Token:        p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 重複メールアドレスは409
// - 成功時は201。確認メールを送信
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := validation.Payload[dto.RegisterReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	r := role.Student
	if req.RoleID != 0 {
		r = role.Role(req.RoleID)
	}
	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     r,
		Organization: entity.Organization{
			CompanyName: req.CompanyName,
			CollegeName: req.CollegeName,
		},
	})
	if err != nil {
		slog.Warn("registration failed", "error", err, "email", logging.MaskEmail(req.Email), "remote_addr", logging.MaskIP(c.ClientIP()))
		api.RespondWithMappedError(c, err, []api.ErrorCase{
			{Err: usecase.ErrEmailAlreadyExists, Status: http.StatusConflict, Message: "email already exists"},
		})
		return
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role.String())
	c.JSON(http.StatusCreated, RegisterRes{
		Message: "registration successful; check your email to verify your account",
		User:    dto.NewUserRes(user),
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗は401 (メールアドレスの存在は明かさない)
// - メール未確認は403
// - ロック中は423 と Retry-After
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := validation.Payload[dto.LoginReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, client(c))
	if err != nil {
		slog.Warn("login failed", "error", err, "email", logging.MaskEmail(req.Email), "remote_addr", logging.MaskIP(c.ClientIP()))
		h.respondAuthError(c, err, "invalid email or password")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(pair))
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error, unauthorized string) {
	var locked *domain.LockedError
	if errors.As(err, &locked) {
		c.Header("Retry-After", strconv.Itoa(locked.RetryAfter(h.now())))
		c.JSON(http.StatusLocked, api.ErrorResponse{Error: "account is temporarily locked; try again later"})
		return
	}
	api.RespondWithMappedError(c, err, []api.ErrorCase{
		{Err: domain.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: unauthorized},
		{Err: domain.ErrEmailNotVerified, Status: http.StatusForbidden, Message: "email address is not verified"},
		{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Message: unauthorized},
		{Err: usecase.ErrSessionRevoked, Status: http.StatusUnauthorized, Message: unauthorized},
		{Err: usecase.ErrSessionExpired, Status: http.StatusUnauthorized, Message: unauthorized},
	})
}

// VerifyEmail consumes the token from the verification link.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	q, ok := validation.Payload[dto.VerifyEmailQuery](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), q.Token); err != nil {
		api.RespondWithMappedError(c, err, []api.ErrorCase{
			{Err: usecase.ErrInvalidVerificationToken, Status: http.StatusBadRequest, Message: "invalid or expired verification token"},
			{Err: usecase.ErrVerificationTokenExpired, Status: http.StatusBadRequest, Message: "invalid or expired verification token"},
		})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "email verified"})
}

// ResendVerification always answers 202 so callers cannot probe accounts.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	req, ok := validation.Payload[dto.ResendVerificationReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	if err := h.auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		slog.Error("failed to resend verification", "error", err, "email", logging.MaskEmail(req.Email))
	}
	c.JSON(http.StatusAccepted, api.MessageResponse{Message: "if the account exists and is not verified, a new link has been sent"})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, ok := validation.Payload[dto.RefreshReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, client(c))
	if err != nil {
		h.respondAuthError(c, err, "invalid refresh token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout revokes the refresh token. Unknown tokens are not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	req, ok := validation.Payload[dto.RefreshReq](c)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		api.RespondWithMappedError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	user, err := h.auth.Me(c.Request.Context(), id.ID)
	if err != nil {
		api.RespondWithMappedError(c, err, []api.ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		})
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}
