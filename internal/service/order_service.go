package service

import (
	"context"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/domain"
	"goodfork/internal/events"
	"goodfork/internal/metrics"
	"goodfork/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyOrder   = domain.Validation("order must contain at least one menu")
	ErrNotesTooLong = domain.Validation("notes exceed the allowed length")
	ErrRateLimited  = domain.Conflict("too many orders, slow down")
)

// consumption is one resolved stock decrement, in the stock item's own unit.
type consumption struct {
	stockID   int64
	stockName string
	unit      string
	qty       float64
}

type OrderService struct {
	repo       domain.Repository
	users      domain.UserDirectory
	catalog    domain.MenuCatalog
	converter  domain.Converter
	limiter    domain.RateLimiter
	eventBus   domain.EventPublisher
	rateLimit  int
	rateWindow time.Duration
	logger     *zerolog.Logger
}

func NewOrderService(
	repo domain.Repository,
	users domain.UserDirectory,
	catalog domain.MenuCatalog,
	converter domain.Converter,
	limiter domain.RateLimiter,
	eventBus domain.EventPublisher,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *OrderService {
	if rateLimit <= 0 {
		rateLimit = models.RateLimitOrders
	}
	if rateWindow <= 0 {
		rateWindow = models.RateLimitWindow * time.Second
	}
	return &OrderService{
		repo:       repo,
		users:      users,
		catalog:    catalog,
		converter:  converter,
		limiter:    limiter,
		eventBus:   eventBus,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		logger:     logger,
	}
}

// PlaceOrder prices the menu list, creates the order and consumes the
// ingredients from stock. Stock resolution happens before the order is
// written, so a unit mismatch never leaves a priced order behind.
func (s *OrderService) PlaceOrder(ctx context.Context, bookingID *int64, userID int64, notes string, menuIDs []int64, takeAway bool) (*models.Order, error) {
	if len(menuIDs) == 0 {
		return nil, ErrEmptyOrder
	}
	if len(notes) > models.NotesMaxLen {
		return nil, ErrNotesTooLong
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if bookingID != nil {
		booking, err := s.repo.GetBooking(ctx, *bookingID)
		if err != nil {
			return nil, err
		}
		if booking.IsFinished {
			return nil, database.ErrBookingFinished
		}
	}

	if s.limiter != nil {
		allowed, err := s.limiter.CheckRateLimit(ctx, userID, s.rateLimit, s.rateWindow)
		if err != nil {
			// Limiter trouble must not block orders.
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	var total float64
	for _, menuID := range menuIDs {
		menu, err := s.catalog.GetMenu(ctx, menuID)
		if err != nil {
			return nil, err
		}
		total += menu.Price
	}

	consumptions, err := s.resolveConsumptions(ctx, menuIDs)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Reference:  uuid.NewString(),
		BookingID:  bookingID,
		UserID:     userID,
		Notes:      notes,
		TotalPrice: total,
		IsTakeAway: takeAway,
	}

	if err := s.repo.CreateOrder(ctx, order, menuIDs); err != nil {
		return nil, err
	}

	s.applyConsumptions(ctx, consumptions)

	channel := "dine_in"
	if takeAway {
		channel = "take_away"
	}
	metrics.IncOrderPlaced(channel)
	s.logger.Info().
		Int64("order_id", order.ID).
		Str("reference", order.Reference).
		Float64("total", total).
		Bool("take_away", takeAway).
		Msg("order placed")

	if s.eventBus != nil {
		payload := events.OrderEventPayload{
			OrderID:    order.ID,
			Reference:  order.Reference,
			UserID:     order.UserID,
			BookingID:  order.BookingID,
			TotalPrice: order.TotalPrice,
			IsTakeAway: order.IsTakeAway,
		}
		if err := s.eventBus.PublishJSON(events.EventOrderPlaced, payload); err != nil {
			s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("publish event error")
		}
	}

	return order, nil
}

// resolveConsumptions walks the ingredient lists, lazily creating stock rows
// and converting each quantity into the stock item's unit.
func (s *OrderService) resolveConsumptions(ctx context.Context, menuIDs []int64) ([]consumption, error) {
	var out []consumption
	for _, menuID := range menuIDs {
		ingredients, err := s.catalog.GetMenuIngredients(ctx, menuID)
		if err != nil {
			return nil, err
		}
		for _, ing := range ingredients {
			stock, err := s.repo.GetOrCreateStockByName(ctx, ing.Stock, ing.Unit)
			if err != nil {
				return nil, err
			}

			qty := ing.Quantity
			if stock.Unit != ing.Unit {
				qty, err = s.converter.Convert(ing.Quantity, ing.Unit, stock.Unit)
				if err != nil {
					return nil, err
				}
			}

			out = append(out, consumption{
				stockID:   stock.ID,
				stockName: stock.Name,
				unit:      stock.Unit,
				qty:       qty,
			})
		}
	}
	return out, nil
}

func (s *OrderService) applyConsumptions(ctx context.Context, consumptions []consumption) {
	for _, c := range consumptions {
		result, err := s.repo.ConsumeStock(ctx, c.stockID, c.qty)
		if err != nil {
			s.logger.Error().Err(err).Str("stock", c.stockName).Msg("consume stock failed")
			continue
		}
		if !result.Depleted {
			continue
		}

		metrics.IncStockDepleted()
		s.logger.Warn().Str("stock", c.stockName).Float64("taken", result.Taken).Msg("stock depleted")

		if s.eventBus != nil {
			payload := events.StockEventPayload{
				StockID:   c.stockID,
				StockName: c.stockName,
				Taken:     result.Taken,
				Unit:      c.unit,
			}
			if err := s.eventBus.PublishJSON(events.EventStockDepleted, payload); err != nil {
				s.logger.Error().Err(err).Str("stock", c.stockName).Msg("publish event error")
			}
		}
	}
}
