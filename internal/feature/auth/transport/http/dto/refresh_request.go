package dto

// RefreshReq is the body of POST /auth/refresh and POST /auth/logout.
type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
