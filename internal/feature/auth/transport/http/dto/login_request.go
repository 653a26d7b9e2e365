package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResendVerificationReq is the body of POST /auth/resend-verification.
type ResendVerificationReq struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyEmailQuery is the query of GET /auth/verify-email.
type VerifyEmailQuery struct {
	Token string `form:"token" binding:"required,hexadecimal,len=64"`
}
