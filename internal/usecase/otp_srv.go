package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgOTPInvalid  = "Invalid OTP"
	MsgOTPExpired  = "OTP has expired"
	MsgOTPExceeded = "OTP attempts exceeded"
	MsgOTPVerified = "OTP verified successfully"
)

type IssueResult struct {
	Success   bool
	Message   string
	ExpiresAt time.Time
}

type VerifyResult struct {
	Success bool
	Message string
	// AttemptsLeft is set only after a wrong code that did not exhaust the OTP.
	AttemptsLeft *int
}

// OTPService issues and checks one-time codes. At most one unused code exists
// per (user, purpose); issuing a new one removes the others.
type OTPService interface {
	Issue(ctx context.Context, userID uuid.UUID, contact string, purpose entity.OTPPurpose) (*IssueResult, error)
	Verify(ctx context.Context, userID uuid.UUID, contact, code string, purpose entity.OTPPurpose) (*VerifyResult, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type otpService struct {
	repo        repository.OTPRepository
	email       mailer.Sender
	sms         mailer.SMSSender
	metrics     *metrics.OTPMetrics
	expiry      time.Duration
	maxAttempts int
	generate    func() (string, error)
	now         func() time.Time
	log         *zap.Logger
}

type OTPOption func(*otpService)

// WithOTPClock replaces time.Now.
func WithOTPClock(now func() time.Time) OTPOption {
	return func(s *otpService) { s.now = now }
}

// WithOTPGenerator replaces the random code source.
func WithOTPGenerator(gen func() (string, error)) OTPOption {
	return func(s *otpService) { s.generate = gen }
}

func NewOTPService(
	repo repository.OTPRepository,
	email mailer.Sender,
	sms mailer.SMSSender,
	m *metrics.OTPMetrics,
	cfg utils.OTPConfig,
	log *zap.Logger,
	opts ...OTPOption,
) OTPService {
	expiry := time.Duration(cfg.ExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	s := &otpService{
		repo:        repo,
		email:       email,
		sms:         sms,
		metrics:     m,
		expiry:      expiry,
		maxAttempts: maxAttempts,
		generate:    utils.GenerateOTP,
		now:         time.Now,
		log:         log.With(zap.String("service", "otp")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *otpService) Issue(ctx context.Context, userID uuid.UUID, contact string, purpose entity.OTPPurpose) (*IssueResult, error) {
	if !purpose.Valid() {
		return nil, newError(ErrInvalidInput, "Invalid OTP type")
	}
	if contact == "" {
		return nil, newError(ErrInvalidInput, "Contact is required")
	}

	code, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	otp := &entity.OTP{
		BaseSimple: entity.NewBaseSimple(now),
		UserID:     userID,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  now.Add(s.expiry),
	}
	if purpose.Channel() == entity.ChannelPhone {
		otp.Phone = &contact
	} else {
		otp.Email = &contact
	}

	// Hapus OTP lama yang belum dipakai, lalu simpan yang baru
	if err := s.repo.Replace(ctx, otp); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	if err := s.deliver(ctx, otp); err != nil {
		s.log.Warn("OTP delivery failed, discarding code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("purpose", string(purpose)),
		)
		if delErr := s.repo.Delete(ctx, otp.ID); delErr != nil {
			return nil, fmt.Errorf("discard undelivered otp: %w", delErr)
		}
		s.metrics.IncIssued(string(purpose), "delivery_failed")
		return &IssueResult{Success: false, Message: "Failed to send OTP"}, nil
	}

	s.metrics.IncIssued(string(purpose), "sent")
	s.log.Info("OTP issued",
		zap.String("user_id", userID.String()),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", otp.ExpiresAt),
	)

	return &IssueResult{Success: true, Message: "OTP sent successfully", ExpiresAt: otp.ExpiresAt}, nil
}

func (s *otpService) deliver(ctx context.Context, otp *entity.OTP) error {
	minutes := int(s.expiry / time.Minute)

	var (
		res *mailer.SendResult
		err error
	)
	if otp.Purpose.Channel() == entity.ChannelPhone {
		text := fmt.Sprintf("Your %s code is %s. It expires in %d minutes.", otp.Purpose.Label(), otp.Code, minutes)
		res, err = s.sms.SendSMS(ctx, *otp.Phone, text)
	} else {
		res, err = s.email.Send(ctx, mailer.OTPMessage(*otp.Email, otp.Code, otp.Purpose.Label(), minutes))
	}

	if err != nil {
		return err
	}
	if res == nil || !res.Success {
		return fmt.Errorf("provider rejected message")
	}
	return nil
}

func (s *otpService) Verify(ctx context.Context, userID uuid.UUID, contact, code string, purpose entity.OTPPurpose) (*VerifyResult, error) {
	otp, err := s.repo.FindUnused(ctx, userID, purpose, contact)
	if err != nil {
		return nil, fmt.Errorf("find otp: %w", err)
	}
	if otp == nil {
		s.metrics.IncVerified(string(purpose), "invalid")
		return &VerifyResult{Message: MsgOTPInvalid}, nil
	}

	if otp.IsExpired(s.now()) {
		if err := s.repo.MarkAsUsed(ctx, otp.ID); err != nil {
			return nil, fmt.Errorf("expire otp: %w", err)
		}
		s.metrics.IncVerified(string(purpose), "expired")
		return &VerifyResult{Message: MsgOTPExpired}, nil
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(otp.Code)) != 1 {
		attempts := otp.Attempts + 1
		exhausted := attempts >= s.maxAttempts

		if err := s.repo.RecordFailedAttempt(ctx, otp.ID, exhausted); err != nil {
			return nil, fmt.Errorf("record otp attempt: %w", err)
		}

		if exhausted {
			s.log.Warn("OTP attempts exceeded",
				zap.String("user_id", userID.String()),
				zap.String("purpose", string(purpose)),
			)
			s.metrics.IncVerified(string(purpose), "exceeded")
			return &VerifyResult{Message: MsgOTPExceeded}, nil
		}

		left := s.maxAttempts - attempts
		s.metrics.IncVerified(string(purpose), "invalid")
		return &VerifyResult{Message: MsgOTPInvalid, AttemptsLeft: &left}, nil
	}

	if err := s.repo.MarkAsUsed(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}

	s.metrics.IncVerified(string(purpose), "success")
	return &VerifyResult{Success: true, Message: MsgOTPVerified}, nil
}

func (s *otpService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired otps: %w", err)
	}

	s.metrics.AddSwept(n)
	if n > 0 {
		s.log.Info("Expired OTPs removed", zap.Int64("count", n))
	}
	return n, nil
}

// otpFailure turns a failed verification into a client error.
func otpFailure(res *VerifyResult) *Error {
	e := newError(ErrInvalidInput, "%s", res.Message)
	if res.AttemptsLeft != nil {
		e.Data = map[string]int{"attempts_left": *res.AttemptsLeft}
	}
	return e
}
