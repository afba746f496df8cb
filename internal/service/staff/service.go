package staff

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

// Service manages staff members and their offered-service sets.
type Service struct {
	repo     repository.StaffRepository
	services repository.ServiceRepository
}

func NewService(repo repository.StaffRepository, services repository.ServiceRepository) *Service {
	return &Service{repo: repo, services: services}
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	if err := s.validateServiceIDs(ctx, req.ServiceIDs); err != nil {
		return nil, err
	}
	member := &model.Staff{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Active:     true,
		ServiceIDs: req.ServiceIDs,
	}
	if req.Active != nil {
		member.Active = *req.Active
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	member, err := s.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	}
	return member, err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Active != nil {
		member.Active = *req.Active
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	if req.ServiceIDs != nil {
		if err := s.validateServiceIDs(ctx, *req.ServiceIDs); err != nil {
			return nil, err
		}
		if err := s.repo.SetServices(ctx, member.ID, *req.ServiceIDs); err != nil {
			return nil, err
		}
		member.ServiceIDs = *req.ServiceIDs
	}
	return member, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Staff, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) validateServiceIDs(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.services.Get(ctx, id); errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewValidation("unknown service id "+id.String(), err)
		} else if err != nil {
			return err
		}
	}
	return nil
}
