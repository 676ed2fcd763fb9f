package service

import (
	"context"
	"time"

	"goodfork/internal/domain"
	"goodfork/internal/events"
	"goodfork/internal/metrics"
	"goodfork/internal/models"

	"github.com/rs/zerolog"
)

var ErrPaymentNotEnabled = domain.Conflict("payment is not enabled for this booking")

type PaymentService struct {
	repo     domain.Repository
	orders   domain.OrderService
	eventBus domain.EventPublisher
	exports  domain.ExportWorker
	logger   *zerolog.Logger
}

func NewPaymentService(repo domain.Repository, orders domain.OrderService, eventBus domain.EventPublisher, exports domain.ExportWorker, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		orders:   orders,
		eventBus: eventBus,
		exports:  exports,
		logger:   logger,
	}
}

// PayTakeAway places the order and settles it immediately: the total goes
// into today's sales statistic and the day is queued for export.
func (s *PaymentService) PayTakeAway(ctx context.Context, userID int64, notes string, menuIDs []int64) (*models.Order, error) {
	order, err := s.orders.PlaceOrder(ctx, nil, userID, notes, menuIDs, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.AddDailySales(ctx, now, order.TotalPrice); err != nil {
		return nil, err
	}
	metrics.IncSalesRecorded()

	s.logger.Info().
		Int64("order_id", order.ID).
		Float64("total", order.TotalPrice).
		Msg("take-away order paid")

	s.publishSales(now, order.TotalPrice)
	s.enqueueExport(ctx, now)

	return order, nil
}

// PayBooking closes out a seated booking: marks it finished and paid,
// releases the table and folds the order total into today's sales.
func (s *PaymentService) PayBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanClientPay {
		return ErrPaymentNotEnabled
	}

	total, err := s.repo.FinishBookingAndRecordSales(ctx, bookingID)
	if err != nil {
		return err
	}

	now := time.Now()
	metrics.IncTableReleased()
	s.logger.Info().
		Int64("booking_id", bookingID).
		Float64("total", total).
		Msg("booking paid")

	if s.eventBus != nil {
		payload := events.BookingEventPayload{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			TableID:   booking.TableID,
			Seats:     booking.Seats,
			Time:      booking.Time,
			Total:     total,
		}
		if err := s.eventBus.PublishJSON(events.EventBookingPaid, payload); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("publish event error")
		}
	}

	if total != 0 {
		metrics.IncSalesRecorded()
		s.publishSales(now, total)
		s.enqueueExport(ctx, now)
	}

	return nil
}

func (s *PaymentService) publishSales(day time.Time, amount float64) {
	if s.eventBus == nil {
		return
	}
	payload := events.SalesEventPayload{Day: models.DayKey(day), Benefits: amount}
	if err := s.eventBus.PublishJSON(events.EventSalesRecorded, payload); err != nil {
		s.logger.Error().Err(err).Msg("publish event error")
	}
}

func (s *PaymentService) enqueueExport(ctx context.Context, day time.Time) {
	if s.exports == nil {
		return
	}
	if err := s.exports.EnqueueDay(ctx, day); err != nil {
		s.logger.Error().Err(err).Str("day", models.DayKey(day)).Msg("enqueue export error")
	}
}
