package intake

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

const (
	cacheKeyDisclaimer = "active_disclaimer"
	cacheTTL           = 5 * time.Minute
)

// Clock supplies "now" so expiry tests can pin it.
type Clock func() time.Time

// Service manages intake profiles and disclaimer versions. The active
// disclaimer text is read on every public intake page load, so it is
// cached and invalidated when a new version is published.
type Service struct {
	repo  repository.IntakeRepository
	cache *gocache.Cache
	now   Clock
}

func NewService(repo repository.IntakeRepository, now Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, 10*time.Minute),
		now:   now,
	}
}

// CreateProfile records a completed intake form. Booking and privacy
// consent are mandatory; marketing consent is not. The profile is
// stamped completed immediately and expires after the validity period.
// An expired or incomplete profile for the same email is renewed in
// place; only a still-valid one rejects the submission.
func (s *Service) CreateProfile(ctx context.Context, req *model.CreateIntakeProfileRequest) (*model.IntakeProfile, error) {
	if !req.ConsentBooking || !req.ConsentPrivacy {
		return nil, apperrors.NewValidation("booking and privacy consent are required", nil)
	}

	existing, err := s.repo.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsValidForBooking(s.now()) {
		return nil, apperrors.NewValidation("a valid intake profile already exists for this email", nil)
	}

	now := s.now()
	expiresAt := now.Add(model.IntakeValidityPeriod)
	profile := &model.IntakeProfile{
		ID:                    uuid.New(),
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		ExperienceLevel:       req.ExperienceLevel,
		Goals:                 req.Goals,
		Preferences:           req.Preferences,
		ConsentBooking:        req.ConsentBooking,
		ConsentMarketing:      req.ConsentMarketing,
		ConsentPrivacy:        req.ConsentPrivacy,
		Completed:             true,
		CompletedAt:           &now,
		ExpiresAt:             &expiresAt,
	}

	if disclaimer, err := s.ActiveDisclaimer(ctx); err == nil && disclaimer != nil {
		profile.DisclaimerVersion = disclaimer.Version
	}

	// Re-submitting after expiry renews the existing row rather than
	// inserting a second one for the same email.
	if existing != nil {
		profile.ID = existing.ID
		if err := s.repo.UpdateProfile(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Status answers the public "can this email book yet" check without
// exposing the profile contents.
func (s *Service) Status(ctx context.Context, email string) (*model.IntakeStatus, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &model.IntakeStatus{}, nil
	}
	return &model.IntakeStatus{
		Exists:            true,
		Completed:         profile.Completed,
		ProfileID:         &profile.ID,
		IsValidForBooking: profile.IsValidForBooking(s.now()),
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*model.IntakeProfile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("intake profile", err)
	}
	return profile, err
}

func (s *Service) ListProfiles(ctx context.Context) ([]*model.IntakeProfile, error) {
	return s.repo.ListProfiles(ctx)
}

// ExpireAll force-expires every profile, typically after the disclaimer
// changes materially enough that everyone must re-consent. Returns the
// number of profiles affected.
func (s *Service) ExpireAll(ctx context.Context) (int64, error) {
	return s.repo.ExpireAll(ctx)
}

func (s *Service) ExpireProfile(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProfile(ctx, id); err != nil {
		return err
	}
	return s.repo.ExpireOne(ctx, id)
}

// ActiveDisclaimer returns the single active disclaimer version, or nil
// when none has been published yet.
func (s *Service) ActiveDisclaimer(ctx context.Context) (*model.Disclaimer, error) {
	if cached, ok := s.cache.Get(cacheKeyDisclaimer); ok {
		return cached.(*model.Disclaimer), nil
	}
	disclaimer, err := s.repo.GetActiveDisclaimer(ctx)
	if err != nil {
		return nil, err
	}
	if disclaimer != nil {
		s.cache.Set(cacheKeyDisclaimer, disclaimer, gocache.DefaultExpiration)
	}
	return disclaimer, nil
}

// PublishDisclaimer creates a new active version and deactivates all
// previous versions in the same transaction. Existing profiles keep the
// version they acknowledged; publishing does not expire them.
func (s *Service) PublishDisclaimer(ctx context.Context, req *model.CreateDisclaimerRequest) (*model.Disclaimer, error) {
	disclaimer := &model.Disclaimer{
		ID:      uuid.New(),
		Version: req.Version,
		Content: req.Content,
		Active:  true,
	}
	if err := s.repo.CreateDisclaimer(ctx, disclaimer); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyDisclaimer)
	return disclaimer, nil
}
