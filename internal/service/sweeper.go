package service

import (
	"context"
	"time"

	"goodfork/internal/domain"

	"github.com/rs/zerolog"
)

// NoShowSweeper periodically cancels open bookings whose party never
// arrived, returning their tables to the pool.
type NoShowSweeper struct {
	repo     domain.Repository
	bookings domain.BookingService
	grace    time.Duration
	interval time.Duration
	logger   *zerolog.Logger
}

func NewNoShowSweeper(repo domain.Repository, bookings domain.BookingService, grace time.Duration, logger *zerolog.Logger) *NoShowSweeper {
	if grace <= 0 {
		grace = 30 * time.Minute
	}
	return &NoShowSweeper{
		repo:     repo,
		bookings: bookings,
		grace:    grace,
		interval: 5 * time.Minute,
		logger:   logger,
	}
}

// Start runs the sweep loop until ctx is done.
func (s *NoShowSweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("grace", s.grace).Msg("no-show sweeper started")
	defer s.logger.Info().Msg("no-show sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep cancels every booking overdue past the grace period and reports
// how many were cleared.
func (s *NoShowSweeper) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.grace)
	overdue, err := s.repo.GetOverdueBookings(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep: list overdue bookings")
		return 0
	}

	cleared := 0
	for _, booking := range overdue {
		if err := s.bookings.CancelBooking(ctx, booking.ID); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sweep: cancel booking")
			continue
		}
		s.logger.Info().Int64("booking_id", booking.ID).Time("time", booking.Time).Msg("no-show booking cancelled")
		cleared++
	}
	return cleared
}
