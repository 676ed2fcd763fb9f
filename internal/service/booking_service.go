package service

import (
	"context"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/domain"
	"goodfork/internal/events"
	"goodfork/internal/metrics"
	"goodfork/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrPastTime      = domain.Validation("booking time is in the past")
	ErrTimeTooFar    = domain.Validation("booking time is too far in the future")
	ErrPartyTooSmall = domain.Validation("party size is too small")
	ErrEmptyUpdate   = domain.Validation("update carries no changes")

	ErrNotSeated        = domain.Conflict("client must be seated before payment is enabled")
	ErrCapacityExceeded = domain.Conflict("party exceeds the table capacity")
)

type BookingService struct {
	repo           domain.Repository
	users          domain.UserDirectory
	eventBus       domain.EventPublisher
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, users domain.UserDirectory, eventBus domain.EventPublisher, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = 365
	}
	return &BookingService{
		repo:           repo,
		users:          users,
		eventBus:       eventBus,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

func (s *BookingService) ValidateBookingTime(at time.Time) error {
	if at.Before(time.Now()) {
		return ErrPastTime
	}

	maxTime := time.Now().AddDate(0, 0, s.maxBookingDays)
	if at.After(maxTime) {
		return ErrTimeTooFar
	}

	return nil
}

// CreateBooking reserves the smallest free table that fits the party and
// records the booking against it.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, at time.Time, seats int64) (*models.Booking, error) {
	if err := s.ValidateBookingTime(at); err != nil {
		return nil, err
	}
	if seats < models.MinPartySize {
		return nil, ErrPartyTooSmall
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID: userID,
		Time:   at,
		Seats:  seats,
	}

	table, err := s.repo.CreateBookingWithTable(ctx, booking)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	metrics.IncTableAllocated()
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("table_id", table.ID).
		Int64("seats", seats).
		Msg("booking created")

	s.publishEvent(events.EventBookingCreated, *booking, 0)

	return booking, nil
}

// UpdateBooking applies a partial update. Enabling payment requires the
// client to already be on place (or seated by the same update).
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, update models.BookingUpdate) (*models.Booking, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsFinished {
		return nil, database.ErrBookingFinished
	}

	if update.Time != nil {
		if err := s.ValidateBookingTime(*update.Time); err != nil {
			return nil, err
		}
	}
	if update.Seats != nil {
		if *update.Seats < models.MinPartySize {
			return nil, ErrPartyTooSmall
		}
		table, err := s.repo.GetTable(ctx, booking.TableID)
		if err != nil {
			return nil, err
		}
		if *update.Seats > table.Capacity {
			return nil, ErrCapacityExceeded
		}
	}
	if update.CanClientPay != nil && *update.CanClientPay {
		seated := booking.IsClientOnPlace
		if update.IsClientOnPlace != nil {
			seated = *update.IsClientOnPlace
		}
		if !seated {
			return nil, ErrNotSeated
		}
	}

	if err := s.repo.UpdateBooking(ctx, id, update); err != nil {
		return nil, err
	}

	return s.repo.GetBooking(ctx, id)
}

// CancelBooking removes the booking and returns its table to the pool.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.IsFinished {
		return database.ErrBookingFinished
	}

	if err := s.repo.DeleteBookingAndRelease(ctx, id); err != nil {
		return err
	}

	metrics.IncTableReleased()
	s.logger.Info().Int64("booking_id", id).Int64("table_id", booking.TableID).Msg("booking cancelled")

	s.publishEvent(events.EventBookingCancelled, *booking, 0)

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, total float64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		TableID:   booking.TableID,
		Seats:     booking.Seats,
		Time:      booking.Time,
		Total:     total,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
