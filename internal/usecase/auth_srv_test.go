package usecase

import (
	"context"
	"testing"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret-pass"

type authFixture struct {
	srv      AuthService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	otp      *stubOTP
	clock    *clock
	user     *entity.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := &entity.User{
		Base:         entity.Base{ID: uuid.New()},
		Username:     "budi",
		Email:        "budi@example.com",
		CountryCode:  "+62",
		PhoneNumber:  "8123456789",
		PasswordHash: hash,
		AccountType:  entity.AccountCustomer,
		IsActive:     true,
	}

	f := &authFixture{
		users:    newFakeUserRepo(user),
		sessions: newFakeSessionRepo(),
		otp:      &stubOTP{},
		clock:    newClock(),
		user:     user,
	}
	tokens := token.NewManager("test-secret", "jwalahapp", "jwalahapp-users", 15*time.Minute, 7*24*time.Hour).
		WithClock(f.clock.Now)
	repo := &repository.Repository{User: f.users, Session: f.sessions}

	srv := NewAuthService(repo, f.otp, tokens, testLog)
	srv.(*authService).now = f.clock.Now
	f.srv = srv
	return f
}

func (f *authFixture) login(t *testing.T, password string) error {
	t.Helper()
	_, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: f.user.Email, Password: password}, request.ClientInfo{})
	return err
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.srv.Login(context.Background(),
		&request.LoginRequest{Email: "budi@example.com", Password: testPassword},
		request.ClientInfo{UserAgent: "test-agent", IPAddress: "10.0.0.1"},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "budi", resp.User.Username)

	stored := f.users.get(f.user.ID)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, f.clock.Now(), *stored.LastLoginAt)
	assert.Len(t, f.sessions.sessions, 1)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: "nobody@example.com", Password: testPassword}, request.ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualError(t, err, msgInvalidCredentials)
}

func TestLogin_LocksOnFifthFailure(t *testing.T) {
	f := newAuthFixture(t)

	for i := 1; i < entity.MaxFailedLogins; i++ {
		err := f.login(t, "wrong-pass")
		assert.ErrorIs(t, err, ErrUnauthorized, "attempt %d", i)
	}
	assert.Equal(t, entity.MaxFailedLogins-1, f.users.get(f.user.ID).FailLoginAttempts)

	err := f.login(t, "wrong-pass")
	assert.ErrorIs(t, err, ErrLocked)
	assert.EqualError(t, err, "Account is locked. Try again in 30 minute(s)")

	// even the right password is refused while locked
	f.clock.Advance(10 * time.Minute)
	err = f.login(t, testPassword)
	assert.ErrorIs(t, err, ErrLocked)
	assert.EqualError(t, err, "Account is locked. Try again in 20 minute(s)")

	f.clock.Advance(21 * time.Minute)
	require.NoError(t, f.login(t, testPassword))

	stored := f.users.get(f.user.ID)
	assert.Zero(t, stored.FailLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLogin_Inactive(t *testing.T) {
	f := newAuthFixture(t)
	f.users.users[f.user.ID].IsActive = false

	err := f.login(t, testPassword)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister_Conflicts(t *testing.T) {
	f := newAuthFixture(t)

	base := request.RegisterRequest{
		Username:    "siti",
		Email:       "siti@example.com",
		Password:    "another-pass",
		CountryCode: "+62",
		PhoneNumber: "8111111111",
	}

	tests := []struct {
		name    string
		mutate  func(r *request.RegisterRequest)
		message string
	}{
		{"email", func(r *request.RegisterRequest) { r.Email = "BUDI@example.com" }, "Email already registered"},
		{"username", func(r *request.RegisterRequest) { r.Username = "budi" }, "Username already taken"},
		{"phone", func(r *request.RegisterRequest) { r.PhoneNumber = "8123456789" }, "Phone number already registered"},
		{"phone under another country code", func(r *request.RegisterRequest) {
			r.CountryCode = "+60"
			r.PhoneNumber = "8123456789"
		}, "Phone number already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := f.srv.Register(context.Background(), &req, request.ClientInfo{})
			assert.ErrorIs(t, err, ErrConflict)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestRegister_IssuesVerificationOTP(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.srv.Register(context.Background(), &request.RegisterRequest{
		Username:    "siti",
		Email:       "Siti@Example.com",
		Password:    "another-pass",
		CountryCode: "+62",
		PhoneNumber: "8111111111",
	}, request.ClientInfo{})
	require.NoError(t, err)

	assert.Equal(t, "siti@example.com", resp.User.Email)
	require.NotNil(t, resp.OTPSent)
	assert.True(t, *resp.OTPSent)
	assert.Equal(t, []entity.OTPPurpose{entity.OTPEmailVerification}, f.otp.issued)
	assert.Equal(t, []string{"siti@example.com"}, f.otp.contacts)
}

func TestRegister_OTPFailureTolerated(t *testing.T) {
	f := newAuthFixture(t)
	f.otp.issue = &IssueResult{Success: false, Message: "Failed to send OTP"}

	resp, err := f.srv.Register(context.Background(), &request.RegisterRequest{
		Username:    "siti",
		Email:       "siti@example.com",
		Password:    "another-pass",
		CountryCode: "+62",
		PhoneNumber: "8111111111",
	}, request.ClientInfo{})
	require.NoError(t, err)
	require.NotNil(t, resp.OTPSent)
	assert.False(t, *resp.OTPSent)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: f.user.Email, Password: testPassword}, request.ClientInfo{})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	rotated, err := f.srv.RefreshToken(context.Background(), &request.RefreshTokenRequest{RefreshToken: login.RefreshToken}, request.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// the old refresh token was revoked by the rotation
	_, err = f.srv.RefreshToken(context.Background(), &request.RefreshTokenRequest{RefreshToken: login.RefreshToken}, request.ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.srv.RefreshToken(context.Background(), &request.RefreshTokenRequest{RefreshToken: rotated.RefreshToken}, request.ClientInfo{})
	assert.NoError(t, err)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: f.user.Email, Password: testPassword}, request.ClientInfo{})
	require.NoError(t, err)

	_, err = f.srv.RefreshToken(context.Background(), &request.RefreshTokenRequest{RefreshToken: login.AccessToken}, request.ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualError(t, err, "Invalid refresh token")
}

func TestLogout_RevokesSessions(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: f.user.Email, Password: testPassword}, request.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, f.srv.Logout(context.Background(), f.user.ID.String()))

	_, err = f.srv.RefreshToken(context.Background(), &request.RefreshTokenRequest{RefreshToken: login.RefreshToken}, request.ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequestOTPLogin_UsesFullPhone(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.srv.RequestOTPLogin(context.Background(), &request.RequestOTPLoginRequest{PhoneNumber: "+628123456789"})
	require.NoError(t, err)
	assert.Equal(t, []entity.OTPPurpose{entity.OTPPhoneLogin}, f.otp.issued)
	assert.Equal(t, []string{"+628123456789"}, f.otp.contacts)
}

func TestPhoneLogin_SharedLocalNumber(t *testing.T) {
	f := newAuthFixture(t)
	// row written before local numbers were unique across country codes
	other := &entity.User{
		Base:        entity.Base{ID: uuid.New()},
		Username:    "ahmad",
		Email:       "ahmad@example.com",
		CountryCode: "+60",
		PhoneNumber: f.user.PhoneNumber,
		IsActive:    true,
	}
	require.NoError(t, f.users.Create(context.Background(), other))
	ctx := context.Background()

	_, err := f.srv.RequestOTPLogin(ctx, &request.RequestOTPLoginRequest{PhoneNumber: "8123456789"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.otp.issued)

	_, err = f.srv.VerifyOTPLogin(ctx, &request.VerifyOTPLoginRequest{PhoneNumber: "8123456789", OTP: "123456"}, request.ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.srv.RequestOTPLogin(ctx, &request.RequestOTPLoginRequest{PhoneNumber: "+608123456789"})
	require.NoError(t, err)
	assert.Equal(t, []string{"+608123456789"}, f.otp.contacts)

	resp, err := f.srv.VerifyOTPLogin(ctx, &request.VerifyOTPLoginRequest{PhoneNumber: "+628123456789", OTP: "123456"}, request.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID.String(), resp.User.ID)
	assert.True(t, f.users.get(f.user.ID).PhoneVerified)
	assert.False(t, f.users.get(other.ID).PhoneVerified)
}

func TestRequestOTPLogin_SendFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.otp.issue = &IssueResult{Success: false}

	_, err := f.srv.RequestOTPLogin(context.Background(), &request.RequestOTPLoginRequest{PhoneNumber: "8123456789"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerifyOTPLogin_MarksPhoneVerified(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.srv.VerifyOTPLogin(context.Background(),
		&request.VerifyOTPLoginRequest{PhoneNumber: "8123456789", OTP: "123456"},
		request.ClientInfo{},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, f.users.get(f.user.ID).PhoneVerified)
}

func TestVerifyOTPLogin_WrongCode(t *testing.T) {
	f := newAuthFixture(t)
	left := 2
	f.otp.verify = &VerifyResult{Success: false, Message: MsgOTPInvalid, AttemptsLeft: &left}

	_, err := f.srv.VerifyOTPLogin(context.Background(),
		&request.VerifyOTPLoginRequest{PhoneNumber: "8123456789", OTP: "000000"},
		request.ClientInfo{},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, MsgOTPInvalid)
	assert.False(t, f.users.get(f.user.ID).PhoneVerified)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)

	err := f.srv.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email:       f.user.Email,
		OTP:         "123456",
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	assert.Error(t, f.login(t, testPassword))
	assert.NoError(t, f.login(t, "brand-new-pass"))
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	f := newAuthFixture(t)
	f.users.users[f.user.ID].EmailVerified = true

	_, err := f.srv.ResendOTP(context.Background(), &request.ResendOTPRequest{
		Email: ptr(f.user.Email),
		Type:  string(entity.OTPEmailVerification),
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.otp.issued)
}

func TestVerifyOTP_BothChannelsVerify(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.srv.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email: ptr(f.user.Email),
		OTP:   "123456",
		Type:  string(entity.OTPEmailVerification),
	})
	require.NoError(t, err)
	assert.True(t, resp.EmailVerified)
	assert.False(t, resp.IsVerified)

	resp, err = f.srv.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		PhoneNumber: ptr("8123456789"),
		OTP:         "123456",
		Type:        string(entity.OTPPhoneVerification),
	})
	require.NoError(t, err)
	assert.True(t, resp.PhoneVerified)
	assert.True(t, resp.IsVerified)
}

func TestUpdateProfile_PhoneChangeResetsVerification(t *testing.T) {
	f := newAuthFixture(t)
	f.users.users[f.user.ID].PhoneVerified = true

	resp, err := f.srv.UpdateProfile(context.Background(), f.user.ID.String(), &request.UpdateProfileRequest{
		PhoneNumber: ptr("8999999999"),
	})
	require.NoError(t, err)
	assert.False(t, resp.PhoneVerified)
	assert.Equal(t, "8999999999", f.users.get(f.user.ID).PhoneNumber)
}
