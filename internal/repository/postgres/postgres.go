package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/theminddepartment/booking-api/internal/repository"
)

type calendarRepository struct {
	BaseRepository
}

type serviceRepository struct {
	BaseRepository
}

type staffRepository struct {
	BaseRepository
}

type clientRepository struct {
	BaseRepository
}

type bookingRepository struct {
	BaseRepository
}

type intakeRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

func NewCalendarRepository(db *sqlx.DB) repository.CalendarRepository {
	return &calendarRepository{NewBaseRepository(db)}
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{NewBaseRepository(db)}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{NewBaseRepository(db)}
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{NewBaseRepository(db)}
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{NewBaseRepository(db)}
}

func NewIntakeRepository(db *sqlx.DB) repository.IntakeRepository {
	return &intakeRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}
