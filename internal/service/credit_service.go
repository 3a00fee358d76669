package service

import (
	"errors"
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreditService struct {
	creditRepo *repository.CreditRepository
	logger     *zap.Logger
}

func NewCreditService(creditRepo *repository.CreditRepository, logger *zap.Logger) *CreditService {
	return &CreditService{
		creditRepo: creditRepo,
		logger:     logger,
	}
}

// ClaimCredit takes exactly one unused, unexpired credit of the requested
// type (falling back to universal) and marks it used. Concurrent claims
// race on the conditional update: the loser re-scans for the next
// candidate, so N available credits satisfy exactly N claims and no credit
// is ever handed to two callers. The loop terminates because every failed
// attempt means another claimer consumed that candidate.
func (s *CreditService) ClaimCredit(userID uint, creditType models.CreditType) (*models.Credit, error) {
	for {
		now := time.Now().UTC()
		candidate, err := s.creditRepo.FindClaimCandidate(userID, creditType, now)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInsufficientCredits
		}
		if err != nil {
			return nil, err
		}

		claimed, err := s.creditRepo.MarkUsed(candidate.ID, now)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}

		candidate.IsUsed = true
		candidate.UsedAt = &now
		s.logger.Info("credit claimed",
			zap.Uint("user_id", userID),
			zap.String("credit_id", candidate.ID),
			zap.String("requested_type", string(creditType)),
			zap.String("claimed_type", string(candidate.Type)),
		)
		return candidate, nil
	}
}

// BindToJob records the job a claimed credit paid for. It requires a used,
// not-yet-bound credit; anything else indicates a caller bug or tampering
// and is logged for audit before being rejected.
func (s *CreditService) BindToJob(creditID string, jobID uint) error {
	bound, err := s.creditRepo.BindToJob(creditID, jobID)
	if err != nil {
		return err
	}
	if bound {
		return nil
	}

	credit, err := s.creditRepo.GetByID(creditID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("bind to unknown credit",
			zap.String("credit_id", creditID),
			zap.Uint("job_id", jobID),
		)
		return ErrCreditNotFound
	}
	if err != nil {
		return err
	}
	if !credit.IsUsed {
		s.logger.Error("bind to unclaimed credit",
			zap.String("credit_id", creditID),
			zap.Uint("user_id", credit.UserID),
			zap.Uint("job_id", jobID),
		)
		return ErrCreditNotClaimed
	}
	s.logger.Error("credit rebind rejected",
		zap.String("credit_id", creditID),
		zap.Uint("user_id", credit.UserID),
		zap.Uintp("bound_job_id", credit.UsedForJobID),
		zap.Uint("job_id", jobID),
	)
	return ErrCreditAlreadyBound
}

// ClaimForJob is the call the job-posting workflow makes: claim a credit,
// then bind it to the job it funds. The credit is spent at claim time, not
// at job creation; callers claim only once committed to posting.
func (s *CreditService) ClaimForJob(userID uint, creditType models.CreditType, jobID uint) (*models.Credit, error) {
	credit, err := s.ClaimCredit(userID, creditType)
	if err != nil {
		return nil, err
	}
	if err := s.BindToJob(credit.ID, jobID); err != nil {
		return nil, err
	}
	credit.UsedForJobID = &jobID
	return credit, nil
}

// NormalizeCreditTypes converts unused typed credits to universal, for the
// whole ledger or one user. One-way and idempotent; used credits keep the
// type they were spent as.
func (s *CreditService) NormalizeCreditTypes(userID *uint) (int64, error) {
	converted, err := s.creditRepo.NormalizeTypes(userID)
	if err != nil {
		return 0, err
	}
	fields := []zap.Field{zap.Int64("converted", converted)}
	if userID != nil {
		fields = append(fields, zap.Uint("user_id", *userID))
	}
	s.logger.Info("credit types normalized", fields...)
	return converted, nil
}

// SweepExpired reports how many unused credits are past expiry. Purely
// informational: claiming and stats evaluate expiry against the clock on
// every call, so correctness never depends on the sweep running.
func (s *CreditService) SweepExpired() (*models.SweepReport, error) {
	now := time.Now().UTC()
	expired, err := s.creditRepo.CountExpiredUnusedAll(now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("expiration sweep",
		zap.Int64("expired_unused", expired),
	)
	return &models.SweepReport{
		ExpiredUnused: expired,
		RanAt:         now,
	}, nil
}
