package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

const (
	cacheKeyBusinessHours = "business_hours"
	cacheTTL              = 5 * time.Minute
)

// Service is the Calendar Rules Store: business hours, closures, staff
// schedules and leave. Writes are admin-only and low-frequency; reads of
// the weekday rows are cached and invalidated on write. Slot output is
// never cached here or anywhere else.
type Service struct {
	repo  repository.CalendarRepository
	staff repository.StaffRepository
	cache *gocache.Cache
}

func NewService(repo repository.CalendarRepository, staff repository.StaffRepository) *Service {
	return &Service{
		repo:  repo,
		staff: staff,
		cache: gocache.New(cacheTTL, 10*time.Minute),
	}
}

func (s *Service) ListBusinessHours(ctx context.Context) ([]*model.BusinessHours, error) {
	if cached, ok := s.cache.Get(cacheKeyBusinessHours); ok {
		return cached.([]*model.BusinessHours), nil
	}
	entries, err := s.repo.ListBusinessHours(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyBusinessHours, entries, gocache.DefaultExpiration)
	return entries, nil
}

// UpsertBusinessHours saves one weekday row, keyed by weekday rather
// than row id.
func (s *Service) UpsertBusinessHours(ctx context.Context, req *model.UpsertBusinessHoursRequest) (*model.BusinessHours, error) {
	entry, err := businessHoursFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertBusinessHours(ctx, entry); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyBusinessHours)
	return entry, nil
}

// SaveBusinessHours applies a batch of weekday rows. Each row is saved
// independently; the returned failures identify exactly which weekdays
// were not applied so the caller sees any mismatch.
func (s *Service) SaveBusinessHours(ctx context.Context, req *model.BatchBusinessHoursRequest) ([]*model.BusinessHours, []model.BusinessHoursFailure) {
	var saved []*model.BusinessHours
	var failures []model.BusinessHoursFailure

	for _, entry := range req.Entries {
		weekday := -1
		if entry.DayOfWeek != nil {
			weekday = *entry.DayOfWeek
		}
		row, err := s.UpsertBusinessHours(ctx, &entry)
		if err != nil {
			failures = append(failures, model.BusinessHoursFailure{DayOfWeek: weekday, Message: err.Error()})
			continue
		}
		saved = append(saved, row)
	}
	return saved, failures
}

func (s *Service) ListClosures(ctx context.Context, from, to time.Time) ([]*model.Closure, error) {
	return s.repo.ListClosures(ctx, from, to)
}

func (s *Service) AddClosure(ctx context.Context, req *model.CreateClosureRequest) (*model.Closure, error) {
	date, err := time.ParseInLocation(model.DateFormat, req.Date, time.Local)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date", err)
	}

	closure := &model.Closure{
		Date:   date,
		Reason: req.Reason,
		AllDay: req.AllDay,
	}
	if !req.AllDay {
		start, err := model.ParseTimeOfDay(req.StartTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid start_time", err)
		}
		end, err := model.ParseTimeOfDay(req.EndTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid end_time", err)
		}
		if !start.Before(end) {
			return nil, apperrors.NewValidation("start_time must be before end_time", nil)
		}
		closure.StartTime = &start
		closure.EndTime = &end
	}

	if err := s.repo.CreateClosure(ctx, closure); err != nil {
		return nil, err
	}
	return closure, nil
}

func (s *Service) RemoveClosure(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteClosure(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("closure", err)
	}
	return err
}

func (s *Service) ListStaffSchedules(ctx context.Context, staffID uuid.UUID) ([]*model.StaffSchedule, error) {
	if _, err := s.staff.Get(ctx, staffID); errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	} else if err != nil {
		return nil, err
	}
	return s.repo.ListStaffSchedules(ctx, staffID)
}

// SaveStaffSchedules applies a batch of weekday rows for one staff
// member, keyed by (staff_id, weekday). Same independent-row contract
// as SaveBusinessHours.
func (s *Service) SaveStaffSchedules(ctx context.Context, staffID uuid.UUID, req *model.BatchStaffScheduleRequest) ([]*model.StaffSchedule, []model.BusinessHoursFailure) {
	var saved []*model.StaffSchedule
	var failures []model.BusinessHoursFailure

	for _, entry := range req.Entries {
		weekday := -1
		if entry.DayOfWeek != nil {
			weekday = *entry.DayOfWeek
		}
		row, err := s.upsertStaffSchedule(ctx, staffID, &entry)
		if err != nil {
			failures = append(failures, model.BusinessHoursFailure{DayOfWeek: weekday, Message: err.Error()})
			continue
		}
		saved = append(saved, row)
	}
	return saved, failures
}

func (s *Service) upsertStaffSchedule(ctx context.Context, staffID uuid.UUID, req *model.UpsertStaffScheduleRequest) (*model.StaffSchedule, error) {
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, apperrors.NewValidation("day_of_week must be between 0 and 6", nil)
	}

	entry := &model.StaffSchedule{
		StaffID:   staffID,
		DayOfWeek: *req.DayOfWeek,
		IsWorking: req.IsWorking,
	}
	if req.IsWorking {
		start, err := model.ParseTimeOfDay(req.StartTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid start_time", err)
		}
		end, err := model.ParseTimeOfDay(req.EndTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid end_time", err)
		}
		if !start.Before(end) {
			return nil, apperrors.NewValidation("start_time must be before end_time", nil)
		}
		entry.StartTime = start
		entry.EndTime = end
	}
	if err := s.repo.UpsertStaffSchedule(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) ListStaffLeaves(ctx context.Context, staffID uuid.UUID) ([]*model.StaffLeave, error) {
	return s.repo.ListStaffLeaves(ctx, staffID)
}

func (s *Service) AddStaffLeave(ctx context.Context, req *model.CreateStaffLeaveRequest) (*model.StaffLeave, error) {
	start, err := time.ParseInLocation(model.DateFormat, req.StartDate, time.Local)
	if err != nil {
		return nil, apperrors.NewValidation("invalid start_date", err)
	}
	end, err := time.ParseInLocation(model.DateFormat, req.EndDate, time.Local)
	if err != nil {
		return nil, apperrors.NewValidation("invalid end_date", err)
	}
	if end.Before(start) {
		return nil, apperrors.NewValidation("end_date must not be before start_date", nil)
	}
	if _, err := s.staff.Get(ctx, req.StaffID); errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	} else if err != nil {
		return nil, err
	}

	leave := &model.StaffLeave{
		StaffID:   req.StaffID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	}
	if err := s.repo.CreateStaffLeave(ctx, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

func (s *Service) RemoveStaffLeave(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteStaffLeave(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("staff leave", err)
	}
	return err
}

func businessHoursFromRequest(req *model.UpsertBusinessHoursRequest) (*model.BusinessHours, error) {
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, apperrors.NewValidation("day_of_week must be between 0 and 6", nil)
	}

	entry := &model.BusinessHours{
		DayOfWeek: *req.DayOfWeek,
		IsOpen:    req.IsOpen,
	}
	if req.IsOpen {
		open, err := model.ParseTimeOfDay(req.OpenTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid open_time", err)
		}
		closeAt, err := model.ParseTimeOfDay(req.CloseTime)
		if err != nil {
			return nil, apperrors.NewValidation("invalid close_time", err)
		}
		if !open.Before(closeAt) {
			return nil, apperrors.NewValidation(fmt.Sprintf("open_time %s must be before close_time %s", open, closeAt), nil)
		}
		entry.OpenTime = open
		entry.CloseTime = closeAt
	}
	return entry, nil
}
