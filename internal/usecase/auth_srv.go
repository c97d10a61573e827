package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgInvalidCredentials = "Invalid email or password"

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, req *request.RefreshTokenRequest, client request.ClientInfo) (*response.TokenResponse, error)

	// OTP flows
	RequestOTPLogin(ctx context.Context, req *request.RequestOTPLoginRequest) (*response.OTPSentResponse, error)
	VerifyOTPLogin(ctx context.Context, req *request.VerifyOTPLoginRequest, client request.ClientInfo) (*response.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, req *request.RequestPasswordResetRequest) (*response.OTPSentResponse, error)
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.UserResponse, error)
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) (*response.OTPSentResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	otp      OTPService
	tokens   *token.Manager
	now      func() time.Time
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPService,
	tokens *token.Manager,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:    repo.User,
		sessions: repo.Session,
		otp:      otp,
		tokens:   tokens,
		now:      time.Now,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	// 1. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Cek email, username dan nomor HP
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "Email already registered")
	}

	existing, err = s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "Username already taken")
	}

	taken, err := s.phoneTaken(ctx, req.CountryCode, req.PhoneNumber, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Phone number already registered")
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Create user entity
	now := s.now()
	user := &entity.User{
		Base:         entity.NewBase(now),
		Username:     req.Username,
		Email:        req.Email,
		CountryCode:  req.CountryCode,
		PhoneNumber:  req.PhoneNumber,
		Gender:       req.Gender,
		PasswordHash: hashedPassword,
		AccountType:  entity.AccountCustomer,
		IsActive:     true,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, validationError(map[string]string{"date_of_birth": "Must be a date in format 2006-01-02"})
		}
		user.DateOfBirth = &dob
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 5. OTP verifikasi email, gagal kirim tidak membatalkan registrasi
	otpSent := false
	issued, err := s.otp.Issue(ctx, user.ID, user.Email, entity.OTPEmailVerification)
	if err != nil {
		s.log.Warn("Failed to issue verification OTP", zap.Error(err), zap.String("user_id", user.ID.String()))
	} else {
		otpSent = issued.Success
	}

	// 6. Auto login setelah register
	resp, err := s.authenticate(ctx, user, client)
	if err != nil {
		return nil, err
	}
	resp.OTPSent = &otpSent

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.Bool("otp_sent", otpSent),
	)

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Warn("Login for unknown email", zap.String("email", req.Email))
		return nil, newError(ErrUnauthorized, msgInvalidCredentials)
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, newError(ErrUnauthorized, "Account is deactivated")
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, lockedError(user.LockedUntil.Sub(now))
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		locked := user.RegisterFailedLogin(now)
		user.Touch(now)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}

		if locked {
			s.log.Warn("Account locked after failed logins", zap.String("user_id", user.ID.String()))
			return nil, lockedError(entity.LockDuration)
		}

		s.log.Warn("Invalid password",
			zap.String("user_id", user.ID.String()),
			zap.Int("attempts", user.FailLoginAttempts),
		)
		return nil, newError(ErrUnauthorized, msgInvalidCredentials)
	}

	user.ResetFailedLogins()
	user.LastLoginAt = &now
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	resp, err := s.authenticate(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	id, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	if err := s.sessions.RevokeAllUserSessions(ctx, id); err != nil {
		s.log.Error("Failed to revoke sessions", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("User logged out", zap.String("user_id", userID))
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, req *request.RefreshTokenRequest, client request.ClientInfo) (*response.TokenResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	claims, err := s.tokens.Verify(req.RefreshToken, token.TypeRefresh)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, newError(ErrUnauthorized, "Refresh token has expired")
		}
		return nil, newError(ErrUnauthorized, "Invalid refresh token")
	}

	session, err := s.sessions.FindByTokenID(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID || !session.Usable(s.now()) {
		s.log.Warn("Refresh with unknown or revoked session", zap.String("token_id", claims.ID))
		return nil, newError(ErrUnauthorized, "Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, newError(ErrUnauthorized, "Invalid refresh token")
	}

	// rotasi: token lama tidak bisa dipakai lagi
	if err := s.sessions.Revoke(ctx, session.RefreshTokenID); err != nil {
		return nil, newError(ErrUnauthorized, "Invalid refresh token")
	}

	pair, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}

	return &response.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *authService) RequestOTPLogin(ctx context.Context, req *request.RequestOTPLoginRequest) (*response.OTPSentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := s.activeUserByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, user, entity.OTPPhoneLogin)
}

func (s *authService) VerifyOTPLogin(ctx context.Context, req *request.VerifyOTPLoginRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := s.activeUserByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	res, err := s.otp.Verify(ctx, user.ID, user.Phone(), req.OTP, entity.OTPPhoneLogin)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, otpFailure(res)
	}

	now := s.now()
	user.PhoneVerified = true
	user.IsVerified = user.EmailVerified
	user.ResetFailedLogins()
	user.LastLoginAt = &now
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user after otp login: %w", err)
	}

	s.log.Info("User logged in with OTP", zap.String("user_id", user.ID.String()))
	return s.authenticate(ctx, user, client)
}

func (s *authService) RequestPasswordReset(ctx context.Context, req *request.RequestPasswordResetRequest) (*response.OTPSentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("User")
	}

	return s.issue(ctx, user, entity.OTPPasswordReset)
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return notFound("User")
	}

	res, err := s.otp.Verify(ctx, user.ID, user.Email, req.OTP, entity.OTPPasswordReset)
	if err != nil {
		return err
	}
	if !res.Success {
		return otpFailure(res)
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hashed
	user.ResetFailedLogins()
	user.Touch(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// password baru, semua sesi lama dicabut
	if err := s.sessions.RevokeAllUserSessions(ctx, user.ID); err != nil {
		s.log.Warn("Failed to revoke sessions after password reset", zap.Error(err))
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	purpose := entity.OTPPurpose(req.Type)
	user, contact, err := s.resolveContact(ctx, purpose, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	res, err := s.otp.Verify(ctx, user.ID, contact, req.OTP, purpose)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, otpFailure(res)
	}

	switch purpose {
	case entity.OTPEmailVerification:
		user.EmailVerified = true
	case entity.OTPPhoneVerification:
		user.PhoneVerified = true
	}
	user.IsVerified = user.EmailVerified && user.PhoneVerified
	user.Touch(s.now())

	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("Failed to update verification", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("update verification: %w", err)
	}

	s.log.Info("Contact verified",
		zap.String("user_id", user.ID.String()),
		zap.String("purpose", string(purpose)),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) (*response.OTPSentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	purpose := entity.OTPPurpose(req.Type)
	user, _, err := s.resolveContact(ctx, purpose, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	switch {
	case purpose == entity.OTPEmailVerification && user.EmailVerified:
		return nil, newError(ErrConflict, "Email already verified")
	case purpose == entity.OTPPhoneVerification && user.PhoneVerified:
		return nil, newError(ErrConflict, "Phone number already verified")
	}

	return s.issue(ctx, user, purpose)
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*response.UserResponse, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && !strings.EqualFold(*req.Username, user.Username) {
		other, err := s.users.FindByUsername(ctx, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if other != nil && other.ID != user.ID {
			return nil, newError(ErrConflict, "Username already taken")
		}
		user.Username = *req.Username
	}

	if req.CountryCode != nil || req.PhoneNumber != nil {
		countryCode, phone := user.CountryCode, user.PhoneNumber
		if req.CountryCode != nil {
			countryCode = *req.CountryCode
		}
		if req.PhoneNumber != nil {
			phone = *req.PhoneNumber
		}

		if countryCode != user.CountryCode || phone != user.PhoneNumber {
			taken, err := s.phoneTaken(ctx, countryCode, phone, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, newError(ErrConflict, "Phone number already registered")
			}
			// nomor baru harus diverifikasi ulang
			user.CountryCode, user.PhoneNumber = countryCode, phone
			user.PhoneVerified = false
			user.IsVerified = false
		}
	}

	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}

	user.Touch(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("update profile: %w", err)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) currentUser(ctx context.Context, userID string) (*entity.User, error) {
	id, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("User")
	}
	return user, nil
}

// findByPhone resolves a local or full number to one user. A local number shared
// across country codes is rejected rather than guessed.
func (s *authService) findByPhone(ctx context.Context, phone string) (*entity.User, error) {
	user, err := s.users.FindByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, repository.ErrAmbiguousPhone) {
		return nil, newError(ErrInvalidInput, "Phone number matches more than one account, include the country code")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	return user, nil
}

// phoneTaken reports whether someone other than self holds the local number,
// under any country code, or the full number.
func (s *authService) phoneTaken(ctx context.Context, countryCode, phone string, self uuid.UUID) (bool, error) {
	for _, candidate := range []string{phone, countryCode + phone} {
		other, err := s.users.FindByPhone(ctx, candidate)
		if errors.Is(err, repository.ErrAmbiguousPhone) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("check phone: %w", err)
		}
		if other != nil && other.ID != self {
			return true, nil
		}
	}
	return false, nil
}

func (s *authService) activeUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	user, err := s.findByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User")
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthorized, "Account is deactivated")
	}
	if user.IsLocked(s.now()) {
		return nil, lockedError(user.LockedUntil.Sub(s.now()))
	}
	return user, nil
}

// resolveContact finds the user addressed by an OTP request and the contact
// the code for purpose goes to.
func (s *authService) resolveContact(ctx context.Context, purpose entity.OTPPurpose, email, phone *string) (*entity.User, string, error) {
	var (
		user *entity.User
		err  error
	)

	if purpose.Channel() == entity.ChannelPhone {
		if phone == nil || *phone == "" {
			return nil, "", validationError(map[string]string{"phone_number": "This field is required"})
		}
		user, err = s.findByPhone(ctx, *phone)
		if err != nil {
			return nil, "", err
		}
	} else {
		if email == nil || *email == "" {
			return nil, "", validationError(map[string]string{"email": "This field is required"})
		}
		user, err = s.users.FindByEmail(ctx, strings.TrimSpace(*email))
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, "", notFound("User")
	}

	if purpose.Channel() == entity.ChannelPhone {
		return user, user.Phone(), nil
	}
	return user, user.Email, nil
}

func (s *authService) issue(ctx context.Context, user *entity.User, purpose entity.OTPPurpose) (*response.OTPSentResponse, error) {
	contact := user.Email
	if purpose.Channel() == entity.ChannelPhone {
		contact = user.Phone()
	}

	res, err := s.otp.Issue(ctx, user.ID, contact, purpose)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, newError(ErrUnavailable, "Failed to send OTP")
	}

	return &response.OTPSentResponse{ExpiresAt: res.ExpiresAt}, nil
}

func (s *authService) authenticate(ctx context.Context, user *entity.User, client request.ClientInfo) (*response.AuthResponse, error) {
	pair, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}

	return &response.AuthResponse{
		User:         response.UserToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// issueTokens signs a token pair and records the refresh token as a session.
func (s *authService) issueTokens(ctx context.Context, user *entity.User, client request.ClientInfo) (*token.Pair, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		s.log.Error("Failed to sign tokens", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	session := &entity.Session{
		BaseSimple:     entity.NewBaseSimple(s.now()),
		UserID:         user.ID,
		RefreshTokenID: pair.RefreshTokenID,
		UserAgent:      optional(client.UserAgent),
		IPAddress:      optional(client.IPAddress),
		ExpiresAt:      pair.RefreshExpiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("create session: %w", err)
	}

	return pair, nil
}

func lockedError(remaining time.Duration) *Error {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return newError(ErrLocked, "Account is locked. Try again in %d minute(s)", minutes)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
