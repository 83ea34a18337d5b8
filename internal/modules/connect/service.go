package connect

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
)

// Service manages seller onboarding onto the payment provider's hosted
// Connect flow. Account ids are persisted on the user row so repeated
// onboarding attempts reuse the same account.
type Service struct {
	db     *gorm.DB
	gw     payments.Gateway
	users  *users.Service
	logger *slog.Logger
}

func NewService(db *gorm.DB, gw payments.Gateway, us *users.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, gw: gw, users: us, logger: logger}
}

// Status is the onboarding view returned to the seller dashboard.
type Status struct {
	HasAccount         bool   `json:"hasAccount"`
	AccountID          string `json:"accountId,omitempty"`
	DetailsSubmitted   bool   `json:"detailsSubmitted"`
	ChargesEnabled     bool   `json:"chargesEnabled"`
	PayoutsEnabled     bool   `json:"payoutsEnabled"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}

// EnsureAccount returns the user's connected account id, creating one at
// the provider on first call.
func (s *Service) EnsureAccount(ctx context.Context, externalID string) (string, error) {
	u, err := s.users.ByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if u.StripeAccountID != nil && *u.StripeAccountID != "" {
		return *u.StripeAccountID, nil
	}

	acct, err := s.gw.CreateAccount(ctx, u.Email)
	if err != nil {
		return "", apperr.GatewayErr("Failed to create payment account.", err)
	}

	if err := s.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", u.ID).
		Update("stripe_account_id", acct.ID).Error; err != nil {
		// The provider account exists but we lost the reference; surface
		// it loudly instead of silently creating another next time.
		s.logger.Error("connect account created but not persisted",
			"userId", u.ID, "accountId", acct.ID, "err", err)
		return "", apperr.PersistenceErr(err)
	}

	s.logger.Info("connect account created", "userId", u.ID, "accountId", acct.ID)
	return acct.ID, nil
}

// OnboardingLink creates a single-use hosted onboarding URL. The refresh
// and return targets land back on the seller's stores page.
func (s *Service) OnboardingLink(ctx context.Context, externalID, origin string) (string, error) {
	accountID, err := s.EnsureAccount(ctx, externalID)
	if err != nil {
		return "", err
	}

	refreshURL := origin + "/stores?stripe=refresh"
	returnURL := origin + "/stores?stripe=success"
	url, err := s.gw.CreateAccountLink(ctx, accountID, refreshURL, returnURL)
	if err != nil {
		return "", apperr.GatewayErr("Failed to create onboarding link.", err)
	}
	return url, nil
}

// AccountStatus reads the live account state from the provider. The
// local onboarding-complete flag is a one-way latch: once the provider
// reports details submitted it is persisted and never unset here.
func (s *Service) AccountStatus(ctx context.Context, externalID string) (Status, error) {
	u, err := s.users.ByExternalID(ctx, externalID)
	if err != nil {
		return Status{}, err
	}
	if u.StripeAccountID == nil || *u.StripeAccountID == "" {
		return Status{}, nil
	}

	acct, err := s.gw.GetAccount(ctx, *u.StripeAccountID)
	if err != nil {
		return Status{}, apperr.GatewayErr("Failed to retrieve account status.", err)
	}

	if acct.DetailsSubmitted && !u.StripeOnboardingComplete {
		if err := s.db.WithContext(ctx).Model(&users.User{}).
			Where("id = ?", u.ID).
			Update("stripe_onboarding_complete", true).Error; err != nil {
			s.logger.Error("onboarding flag not persisted", "userId", u.ID, "err", err)
		} else {
			u.StripeOnboardingComplete = true
		}
	}

	return Status{
		HasAccount:         true,
		AccountID:          acct.ID,
		DetailsSubmitted:   acct.DetailsSubmitted,
		ChargesEnabled:     acct.ChargesEnabled,
		PayoutsEnabled:     acct.PayoutsEnabled,
		OnboardingComplete: u.StripeOnboardingComplete,
	}, nil
}

// DashboardLink creates a login link into the provider's express
// dashboard for an onboarded seller.
func (s *Service) DashboardLink(ctx context.Context, externalID string) (string, error) {
	u, err := s.users.ByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if u.StripeAccountID == nil || *u.StripeAccountID == "" {
		return "", apperr.InvalidErr("No payment account to open a dashboard for.", nil)
	}

	url, err := s.gw.CreateLoginLink(ctx, *u.StripeAccountID)
	if err != nil {
		return "", apperr.GatewayErr("Failed to create dashboard link.", err)
	}
	return url, nil
}
