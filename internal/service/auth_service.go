package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/email"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = apperr.Unauthorized("Invalid email or password")
	ErrAccountDisabled      = apperr.Unauthorized("Account is deactivated")
	ErrInvalidToken         = apperr.Unauthorized("Invalid or expired token")
	ErrInvalidOTP           = apperr.Validation("Invalid or expired code", apperr.FieldError{Field: "otp", Message: "is invalid or expired"})
	ErrTooManyOTPAttempts   = apperr.Validation("Too many attempts, request a new code", apperr.FieldError{Field: "otp", Message: "too many attempts"})
	ErrOTPNotVerified       = apperr.Validation("Verify the code before resetting the password", apperr.FieldError{Field: "otp", Message: "has not been verified"})
)

const minPasswordLength = 6

// RegisterInput is a new staff account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// ProfileInput holds the self-editable account fields. Nil fields are left unchanged.
type ProfileInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Preferences *domain.Preferences
}

// AuthResult is a signed token and the account it was issued for.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Claims is the JWT payload.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID primitive.ObjectID, r io.Reader) (*domain.User, error)
	ParseToken(token string) (*Claims, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthOptions configures token lifetime and reset codes.
type AuthOptions struct {
	JWTSecret      string
	JWTExpiration  time.Duration
	OTPTTL         time.Duration
	OTPLength      int
	OTPMaxAttempts int
	AppName        string
}

// authService implements the AuthService interface.
type authService struct {
	users    repository.UserRepository
	stats    repository.StatsRepository
	mailer   email.Mailer
	avatars  *AvatarUploader
	recorder *Recorder
	opts     AuthOptions
	now      func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(users repository.UserRepository, stats repository.StatsRepository, mailer email.Mailer, avatars *AvatarUploader, recorder *Recorder, opts AuthOptions) AuthService {
	if opts.JWTSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if opts.JWTExpiration <= 0 {
		opts.JWTExpiration = 24 * time.Hour
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	if opts.OTPLength <= 0 {
		opts.OTPLength = 6
	}
	if opts.OTPMaxAttempts <= 0 {
		opts.OTPMaxAttempts = 5
	}
	if opts.AppName == "" {
		opts.AppName = "Gym Manager"
	}
	return &authService{
		users:    users,
		stats:    stats,
		mailer:   mailer,
		avatars:  avatars,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func passwordField(field, password string) *apperr.FieldError {
	if len(password) < minPasswordLength {
		return &apperr.FieldError{Field: field, Message: "must be at least 6 characters"}
	}
	return nil
}

// Register creates a staff account. The very first account becomes admin.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	existing, err := s.stats.Count(ctx, domain.KindUser, nil)
	if err != nil {
		return nil, repoErr(err, "User")
	}
	role := domain.RoleStaff
	if existing == 0 {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       normalizeEmail(in.Email),
		Phone:       in.Phone,
		Role:        role,
		IsActive:    true,
		Preferences: domain.DefaultPreferences(),
	}
	if err := s.validateNewUser(user, in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, repoErr(err, "User")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "User")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, err
	}

	afterCommit(ctx,
		s.recorder.Activity(user.ID, domain.ActionCreate, "Registered account "+user.Email, domain.UserRef(user.ID), nil),
		s.welcomeEmail(user),
	)
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) validateNewUser(user *domain.User, password string) error {
	err := domain.Validate(user)
	pf := passwordField("password", password)
	if pf == nil {
		return err
	}
	var fields []apperr.FieldError
	var ae *apperr.Error
	if errors.As(err, &ae) {
		fields = ae.Fields
	}
	return apperr.Validation("", append(fields, *pf)...)
}

func (s *authService) welcomeEmail(user *domain.User) effect {
	return effect{name: "email:welcome", run: func(ctx context.Context) error {
		msg, err := email.WelcomeMessage(user.Email, email.WelcomeData{Name: user.FirstName, Role: string(user.Role), AppName: s.opts.AppName})
		if err != nil {
			return err
		}
		return s.mailer.Send(ctx, msg)
	}}
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	if emailAddr == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, repoErr(err, "User")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, at); err != nil {
		logger.FromContext(ctx).Warn("failed to record last login", "error", err)
	} else {
		user.LastLogin = &at
	}
	afterCommit(ctx, s.recorder.Activity(user.ID, domain.ActionLogin, user.FullName()+" signed in", domain.UserRef(user.ID), nil))
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, "User")
	}
	return user, nil
}

// Logout only leaves an audit record; tokens are stateless and expire on their own.
func (s *authService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	afterCommit(ctx, s.recorder.Activity(userID, domain.ActionLogout, "Signed out", domain.UserRef(userID), nil))
	return nil
}

// ForgotPassword mails a one-time code. Unknown addresses get the same
// response as known ones. When the mail cannot be sent the stored code is
// removed again and the failure is returned.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if errors.Is(err, repository.ErrNotFound) {
		logger.FromContext(ctx).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return repoErr(err, "User")
	}

	code, err := generateOTP(s.opts.OTPLength)
	if err != nil {
		return apperr.Internal("Failed to generate code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("Failed to hash code", err)
	}
	otp := &domain.OTP{CodeHash: string(hash), ExpiresAt: s.now().UTC().Add(s.opts.OTPTTL)}
	if err := s.users.SetOTP(ctx, user.ID, otp); err != nil {
		return repoErr(err, "User")
	}

	msg, err := email.OTPMessage(user.Email, email.OTPData{Name: user.FirstName, Code: code, ValidFor: s.opts.OTPTTL, AppName: s.opts.AppName})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		if clearErr := s.users.SetOTP(ctx, user.ID, nil); clearErr != nil {
			logger.FromContext(ctx).Error("failed to clear reset code", "error", clearErr)
		}
		return apperr.Internal("Email could not be sent", err)
	}
	return nil
}

func generateOTP(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// checkOTP loads the user and verifies code against the pending OTP,
// counting failed attempts.
func (s *authService) checkOTP(ctx context.Context, emailAddr, code string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, repoErr(err, "User")
	}
	if user.OTP.Expired(s.now()) {
		return nil, ErrInvalidOTP
	}
	if user.OTP.Attempts >= s.opts.OTPMaxAttempts {
		if err := s.users.SetOTP(ctx, user.ID, nil); err != nil {
			logger.FromContext(ctx).Warn("failed to clear reset code", "error", err)
		}
		return nil, ErrTooManyOTPAttempts
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.OTP.CodeHash), []byte(code)); err != nil {
		if err := s.users.IncrementOTPAttempts(ctx, user.ID); err != nil {
			logger.FromContext(ctx).Warn("failed to count reset attempt", "error", err)
		}
		return nil, ErrInvalidOTP
	}
	return user, nil
}

func (s *authService) VerifyOTP(ctx context.Context, emailAddr, code string) error {
	user, err := s.checkOTP(ctx, emailAddr, code)
	if err != nil {
		return err
	}
	verified := *user.OTP
	verified.Verified = true
	return repoErr(s.users.SetOTP(ctx, user.ID, &verified), "User")
}

// ResetPassword sets a new password for a user whose reset code has passed
// VerifyOTP. The code is consumed.
func (s *authService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	if pf := passwordField("password", newPassword); pf != nil {
		return apperr.Validation("", *pf)
	}
	user, err := s.checkOTP(ctx, emailAddr, code)
	if err != nil {
		return err
	}
	if !user.OTP.Verified {
		return ErrOTPNotVerified
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return repoErr(err, "User")
	}
	afterCommit(ctx, s.recorder.Activity(user.ID, domain.ActionPassword, "Reset password", domain.UserRef(user.ID), nil))
	return nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	if pf := passwordField("newPassword", next); pf != nil {
		return apperr.Validation("", *pf)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return repoErr(err, "User")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.Validation("Current password is incorrect", apperr.FieldError{Field: "currentPassword", Message: "is incorrect"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	if err := s.users.SetPassword(ctx, userID, string(hash)); err != nil {
		return repoErr(err, "User")
	}
	afterCommit(ctx, s.recorder.Activity(userID, domain.ActionPassword, "Changed password", domain.UserRef(userID), nil))
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, "User")
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Preferences != nil {
		user.Preferences = *in.Preferences
	}
	emailChanged := false
	if in.Email != nil && normalizeEmail(*in.Email) != user.Email {
		user.Email = normalizeEmail(*in.Email)
		emailChanged = true
	}
	if err := domain.Validate(user); err != nil {
		return nil, err
	}
	if emailChanged {
		if other, err := s.users.GetByEmail(ctx, user.Email); err == nil && other.ID != user.ID {
			return nil, duplicateEmail()
		}
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "User")
	}
	afterCommit(ctx, s.recorder.Activity(userID, domain.ActionUpdate, "Updated profile", domain.UserRef(userID), nil))
	return user, nil
}

func (s *authService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, r io.Reader) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, "User")
	}
	url, err := s.avatars.Upload(ctx, "users", userID.Hex(), r)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAvatar(ctx, userID, url); err != nil {
		return nil, repoErr(err, "User")
	}
	old := user.Avatar
	user.Avatar = url
	afterCommit(ctx, s.avatars.Discard(old))
	return user, nil
}

// --- JWT Helper ---

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.JWTExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-manager",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return "", apperr.Internal("Failed to generate authentication token", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user as currently stored, so a
// deactivation or role change applies to tokens already issued.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, repoErr(err, "User")
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
