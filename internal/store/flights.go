package store

import (
	"context" // Request scoped queries
	"time"    // Departure day filter

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/utils"  // Pagination

	"gorm.io/gorm" // GORM ORM library
)

// FlightFilter narrows the flight listing
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time // Departure day, UTC
}

// CreateFlight inserts f
func (s *Store) CreateFlight(ctx context.Context, f *domain.Flight) error {
	return translate(s.db.WithContext(ctx).Create(f).Error)
}

// GetFlight loads a flight by ID
func (s *Store) GetFlight(ctx context.Context, id uint) (*domain.Flight, error) {
	var f domain.Flight
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// UpdateFlight applies fields to a flight. A non-zero seatDelta shifts
// available_seats by the change in total_seats and fails with ErrNoSeats
// when that would drop below zero.
func (s *Store) UpdateFlight(ctx context.Context, id uint, fields map[string]any, seatDelta int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Shift available seats with the new total, never below zero
		if seatDelta != 0 {
			res := tx.Model(&domain.Flight{}).
				Where("id = ? AND available_seats + ? >= 0", id, seatDelta).
				Update("available_seats", gorm.Expr("available_seats + ?", seatDelta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNoSeats // More seats booked than the new total
			}
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&domain.Flight{}).Where("id = ?", id).Updates(fields).Error
	})
	return translate(err)
}

// DeleteFlight removes a flight that has never been booked
func (s *Store) DeleteFlight(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64 // Bookings of any status
		if err := tx.Model(&domain.FlightBooking{}).Where("flight_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse // Keep booking history intact
		}
		res := tx.Delete(&domain.Flight{}, id) // Delete the flight
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate(err)
}

// ListFlights returns flights matching f ordered by departure, past ones included
func (s *Store) ListFlights(ctx context.Context, f FlightFilter, p utils.Page) ([]domain.Flight, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Flight{})
	if f.Origin != "" {
		q = q.Where("origin = ?", f.Origin)
	}
	if f.Destination != "" {
		q = q.Where("destination = ?", f.Destination)
	}
	// Whole departure day in UTC
	if f.Date != nil {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		q = q.Where("departure_at >= ? AND departure_at < ?", day, day.Add(24*time.Hour))
	}
	return paginate[domain.Flight](q, p, "departure_at asc")
}

// BookFlight reserves b.Seats on b.FlightID and charges the user in USDT.
// Seats, balance and the booking row change together or not at all.
func (s *Store) BookFlight(ctx context.Context, b *domain.FlightBooking) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f domain.Flight // Flight for its price
		if err := tx.First(&f, b.FlightID).Error; err != nil {
			return err
		}
		// Take the seats only if enough are left
		res := tx.Model(&domain.Flight{}).
			Where("id = ? AND available_seats >= ?", f.ID, b.Seats).
			Update("available_seats", gorm.Expr("available_seats - ?", b.Seats))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSeats // Sold out
		}
		b.TotalPrice = f.Price * float64(b.Seats) // Charge per seat
		// Charge the user
		if err := debit(tx, b.UserID, domain.USDT, b.TotalPrice); err != nil {
			return err // Return error to rollback, seats included
		}
		b.Status = domain.BookingConfirmed
		// Record the booking
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		f.AvailableSeats -= b.Seats
		b.Flight = &f
		return nil
	})
	return translate(err)
}

// GetBooking loads a booking with its flight
func (s *Store) GetBooking(ctx context.Context, id uint) (*domain.FlightBooking, error) {
	var b domain.FlightBooking
	if err := s.db.WithContext(ctx).Preload("Flight").First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// CancelBooking releases the seats of a confirmed booking and refunds its price
func (s *Store) CancelBooking(ctx context.Context, id uint) (*domain.FlightBooking, error) {
	var b domain.FlightBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the booking for seats and price
		if err := tx.First(&b, id).Error; err != nil {
			return err
		}
		// Only a confirmed booking can be cancelled
		res := tx.Model(&domain.FlightBooking{}).
			Where("id = ? AND status = ?", id, domain.BookingConfirmed).
			Update("status", domain.BookingCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending // Already cancelled
		}
		// Release the seats
		if err := tx.Model(&domain.Flight{}).
			Where("id = ?", b.FlightID).
			Update("available_seats", gorm.Expr("available_seats + ?", b.Seats)).Error; err != nil {
			return err
		}
		// Refund the user
		if err := credit(tx, b.UserID, domain.USDT, b.TotalPrice); err != nil {
			return err // Return error to rollback
		}
		b.Status = domain.BookingCancelled
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// ListBookings returns bookings with their flights, all users when userID is 0
func (s *Store) ListBookings(ctx context.Context, userID uint, p utils.Page) ([]domain.FlightBooking, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.FlightBooking{}).Preload("Flight")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	return paginate[domain.FlightBooking](q, p, "created_at desc")
}
