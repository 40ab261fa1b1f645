package dto

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email,max=120"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token          string `json:"token"`
	TokenExpiresAt string `json:"tokenExpiresAt"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordForm struct {
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required,eqfield=Password"`
}
