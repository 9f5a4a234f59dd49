package api

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone" binding:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ProfileRequest lists the self-editable fields. Omitted fields stay unchanged.
type ProfileRequest struct {
	FirstName   *string             `json:"firstName"`
	LastName    *string             `json:"lastName"`
	Email       *string             `json:"email"`
	Phone       *string             `json:"phone"`
	Preferences *domain.Preferences `json:"preferences"`
}

func mapAuthResult(res *service.AuthResult) LoginResponse {
	return LoginResponse{Token: res.Token, User: MapUserToResponse(res.User)}
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a staff account
// @Description The first account becomes the admin, later ones are staff.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid input or email in use"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, mapAuthResult(res))
}

// Login godoc
// @Summary Log in a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mapAuthResult(res))
}

// Me godoc
// @Summary Current account
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// Logout godoc
// @Summary Record a sign-out. Tokens are stateless; the client discards its copy.
// @Tags Auth
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Logged out successfully", nil)
}

// ForgotPassword godoc
// @Summary Mail a password reset code
// @Description Responds the same way whether or not the email is registered.
// @Tags Auth
// @Param body body ForgotPasswordRequest true "Account email"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "If the email is registered, a reset code has been sent", nil)
}

// VerifyOTP godoc
// @Summary Check a password reset code
// @Tags Auth
// @Param body body VerifyOTPRequest true "Email and code"
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Code verified", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset code
// @Tags Auth
// @Param body body ResetPasswordRequest true "Email, code and new password"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password has been reset", nil)
}

// UpdatePassword godoc
// @Summary Change the password of the current account
// @Tags Auth
// @Security BearerAuth
// @Param body body UpdatePasswordRequest true "Current and new password"
// @Router /auth/update-password [put]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.authService.UpdatePassword(c.Request.Context(), actorID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password updated", nil)
}

// UpdateProfile godoc
// @Summary Edit the current account
// @Tags Auth
// @Security BearerAuth
// @Param body body ProfileRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), actorID(c), service.ProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Preferences: req.Preferences,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// UploadAvatar godoc
// @Summary Replace the avatar of the current account
// @Tags Auth
// @Security BearerAuth
// @Accept multipart/form-data
// @Param avatar formData file true "JPEG, PNG, GIF or WebP image"
// @Router /auth/avatar [post]
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	file, err := avatarFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	user, err := h.authService.UpdateAvatar(c.Request.Context(), actorID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// avatarFile opens the "avatar" part of a multipart upload.
func avatarFile(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("avatar")
	if err != nil {
		return nil, apperr.Validation("", apperr.FieldError{Field: "avatar", Message: "is required"})
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperr.Internal("Failed to read upload", err)
	}
	return file, nil
}
