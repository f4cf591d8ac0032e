package service

import (
	"context" // Request context
	"errors"  // Error inspection
	"fmt"     // Email bodies
	"regexp"  // Flight number and airport formats
	"strings" // Input normalisation
	"time"    // Schedules

	"wallet_booking/internal/domain"  // Importing domain models
	"wallet_booking/internal/mailer"  // Booking emails
	"wallet_booking/internal/metrics" // Booking counters
	"wallet_booking/internal/store"   // Store errors and filters
	"wallet_booking/internal/utils"   // Cache and pagination

	"github.com/google/uuid"     // Booking references
	"github.com/sirupsen/logrus" // Logging
)

// FlightStore is the persistence the flight use cases need
type FlightStore interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	CreateFlight(ctx context.Context, f *domain.Flight) error
	GetFlight(ctx context.Context, id uint) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, id uint, fields map[string]any, seatDelta int) error
	DeleteFlight(ctx context.Context, id uint) error
	ListFlights(ctx context.Context, f store.FlightFilter, p utils.Page) ([]domain.Flight, int64, error)
	BookFlight(ctx context.Context, b *domain.FlightBooking) error
	GetBooking(ctx context.Context, id uint) (*domain.FlightBooking, error)
	CancelBooking(ctx context.Context, id uint) (*domain.FlightBooking, error)
	ListBookings(ctx context.Context, userID uint, p utils.Page) ([]domain.FlightBooking, int64, error)
}

// Flights handles the flight catalogue and bookings
type Flights struct {
	store FlightStore
	mail  Mailer
	cache *utils.Cache
	now   func() time.Time // Replaced in tests
}

// NewFlights wires the flight use cases
func NewFlights(s FlightStore, m Mailer, c *utils.Cache) *Flights {
	return &Flights{store: s, mail: m, cache: c, now: time.Now}
}

// MaxSeatsPerBooking caps a single booking
const MaxSeatsPerBooking = 9

var (
	iataPattern         = regexp.MustCompile(`^[A-Z]{3}$`)
	flightNumberPattern = regexp.MustCompile(`^[A-Z0-9]{2}[0-9]{1,5}[A-Z]?$`)
)

// FlightInput creates a flight
type FlightInput struct {
	FlightNumber string
	Airline      string
	Origin       string
	Destination  string
	DepartureAt  time.Time
	ArrivalAt    time.Time
	Price        float64
	TotalSeats   int
}

// FlightUpdate edits a flight, nil fields are left alone
type FlightUpdate struct {
	Airline     *string
	DepartureAt *time.Time
	ArrivalAt   *time.Time
	Price       *float64
	TotalSeats  *int
}

// FlightQuery holds raw listing filters
type FlightQuery struct {
	Origin      string
	Destination string
	Date        string // YYYY-MM-DD
}

// BookingInput books seats on a flight
type BookingInput struct {
	FlightID       uint
	Seats          int
	PassengerName  string
	PassengerEmail string
}

func (s *Flights) checkSchedule(dep, arr time.Time) error {
	if dep.IsZero() || arr.IsZero() {
		return invalid("Departure and arrival times are required")
	}
	if !arr.After(dep) {
		return invalid("Arrival must be after departure")
	}
	return nil
}

// CreateFlight adds a flight to the catalogue. Admin only.
func (s *Flights) CreateFlight(ctx context.Context, adminID uint, in FlightInput) (*domain.Flight, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	f := &domain.Flight{
		FlightNumber:   strings.ToUpper(strings.TrimSpace(in.FlightNumber)),
		Airline:        strings.TrimSpace(in.Airline),
		Origin:         strings.ToUpper(strings.TrimSpace(in.Origin)),
		Destination:    strings.ToUpper(strings.TrimSpace(in.Destination)),
		DepartureAt:    in.DepartureAt.UTC(),
		ArrivalAt:      in.ArrivalAt.UTC(),
		Price:          in.Price,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
	}
	// Validate the normalised flight
	switch {
	case !flightNumberPattern.MatchString(f.FlightNumber):
		return nil, invalid("Invalid flight number")
	case f.Airline == "":
		return nil, invalid("Airline is required")
	case !iataPattern.MatchString(f.Origin) || !iataPattern.MatchString(f.Destination):
		return nil, invalid("Airports must be 3-letter IATA codes")
	case f.Origin == f.Destination:
		return nil, invalid("Origin and destination must differ")
	case !validAmount(f.Price):
		return nil, invalid("Price must be greater than zero")
	case f.TotalSeats <= 0:
		return nil, invalid("Seats must be greater than zero")
	}
	if err := s.checkSchedule(f.DepartureAt, f.ArrivalAt); err != nil {
		return nil, err
	}

	// Save flight to database
	if err := s.store.CreateFlight(ctx, f); err != nil {
		return nil, fromStore(err, "Flight")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "flight_id": f.ID, "flight_number": f.FlightNumber}).Info("Flight created")
	s.cache.Invalidate(ctx, keyFlights)
	return f, nil
}

// UpdateFlight edits a flight. Shrinking total seats below what is already
// booked fails with ErrNoSeats.
func (s *Flights) UpdateFlight(ctx context.Context, adminID, id uint, in FlightUpdate) (*domain.Flight, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	cur, err := s.store.GetFlight(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Flight")
	}

	// Collect only the fields that were sent
	fields := map[string]any{}
	dep, arr := cur.DepartureAt, cur.ArrivalAt
	if in.Airline != nil {
		a := strings.TrimSpace(*in.Airline)
		if a == "" {
			return nil, invalid("Airline is required")
		}
		fields["airline"] = a
	}
	if in.DepartureAt != nil {
		dep = in.DepartureAt.UTC()
		fields["departure_at"] = dep
	}
	if in.ArrivalAt != nil {
		arr = in.ArrivalAt.UTC()
		fields["arrival_at"] = arr
	}
	if err := s.checkSchedule(dep, arr); err != nil { // Check against the stored times
		return nil, err
	}
	if in.Price != nil {
		if !validAmount(*in.Price) {
			return nil, invalid("Price must be greater than zero")
		}
		fields["price"] = *in.Price
	}
	delta := 0
	if in.TotalSeats != nil {
		if *in.TotalSeats <= 0 {
			return nil, invalid("Seats must be greater than zero")
		}
		delta = *in.TotalSeats - cur.TotalSeats // Applied to available seats too
		fields["total_seats"] = *in.TotalSeats
	}
	if len(fields) == 0 {
		return nil, invalid("Nothing to update")
	}

	// Update flight in database
	if err := s.store.UpdateFlight(ctx, id, fields, delta); err != nil {
		if errors.Is(err, store.ErrNoSeats) {
			return nil, invalid("Total seats cannot be lower than seats already booked")
		}
		return nil, fromStore(err, "Flight")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "flight_id": id, "fields": fields}).Info("Flight updated")
	s.cache.Invalidate(ctx, keyFlights)

	f, err := s.store.GetFlight(ctx, id) // Return the stored row
	return f, fromStore(err, "Flight")
}

// DeleteFlight removes a flight nobody has booked. Admin only.
func (s *Flights) DeleteFlight(ctx context.Context, adminID, id uint) error {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return err
	}
	if err := s.store.DeleteFlight(ctx, id); err != nil {
		if errors.Is(err, store.ErrInUse) {
			return conflict("Flight has bookings and cannot be deleted")
		}
		return fromStore(err, "Flight")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "flight_id": id}).Info("Flight deleted")
	s.cache.Invalidate(ctx, keyFlights)
	return nil
}

// ListFlights returns flights matching q
func (s *Flights) ListFlights(ctx context.Context, q FlightQuery, p utils.Page) (PageResult[domain.Flight], error) {
	var res PageResult[domain.Flight]
	f := store.FlightFilter{
		Origin:      strings.ToUpper(strings.TrimSpace(q.Origin)),
		Destination: strings.ToUpper(strings.TrimSpace(q.Destination)),
	}
	if f.Origin != "" && !iataPattern.MatchString(f.Origin) {
		return res, invalid("Invalid origin")
	}
	if f.Destination != "" && !iataPattern.MatchString(f.Destination) {
		return res, invalid("Invalid destination")
	}
	// Optional departure day
	if q.Date != "" {
		d, err := time.Parse(time.DateOnly, q.Date)
		if err != nil {
			return res, invalid("Date must be YYYY-MM-DD")
		}
		f.Date = &d
	}

	// Serve from cache when possible
	key := pageKey(keyFlights, p, "o="+f.Origin, "d="+f.Destination, "t="+q.Date)
	if found, err := s.cache.Get(ctx, key, &res); err == nil && found {
		res.Cached = true
		return res, nil
	}
	items, total, err := s.store.ListFlights(ctx, f, p)
	if err != nil {
		return res, err
	}
	res = newPage(items, p, total)
	_ = s.cache.Set(ctx, key, res) // Cache the page
	return res, nil
}

// GetFlight returns a flight by ID
func (s *Flights) GetFlight(ctx context.Context, id uint) (*domain.Flight, error) {
	f, err := s.store.GetFlight(ctx, id)
	return f, fromStore(err, "Flight")
}

// BookFlight reserves seats and charges the caller's USDT balance
func (s *Flights) BookFlight(ctx context.Context, userID uint, in BookingInput) (*domain.FlightBooking, error) {
	// Validate input
	if in.Seats < 1 || in.Seats > MaxSeatsPerBooking {
		return nil, invalid("Seats must be between 1 and %d", MaxSeatsPerBooking)
	}
	name := strings.TrimSpace(in.PassengerName)
	if name == "" || len(name) > 128 {
		return nil, invalid("Passenger name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.PassengerEmail))
	if !validEmail(email) {
		return nil, invalid("Invalid passenger email")
	}
	f, err := s.store.GetFlight(ctx, in.FlightID)
	if err != nil {
		return nil, fromStore(err, "Flight")
	}
	if !f.DepartureAt.After(s.now()) {
		return nil, invalid("Flight has already departed")
	}

	// Seats and charge are taken in one transaction
	b := &domain.FlightBooking{
		Reference:      uuid.NewString(),
		UserID:         userID,
		FlightID:       f.ID,
		Seats:          in.Seats,
		PassengerName:  name,
		PassengerEmail: email,
	}
	err = s.store.BookFlight(ctx, b)
	metrics.Bookings.WithLabelValues("book", metrics.Result(err)).Inc()
	audit("flight_booking", domain.USDT, err, logrus.Fields{
		"user_id":   userID,
		"flight_id": f.ID,
		"seats":     in.Seats,
		"reference": b.Reference,
	})
	if err != nil {
		return nil, fromStore(err, "Flight")
	}
	s.cache.Invalidate(ctx, append(balanceKeys(userID), keyFlights)...)

	if b.Flight == nil {
		b.Flight = f // Fall back to the flight loaded above
	}
	notify(ctx, s.mail, mailer.Compose(email, "Booking confirmed "+b.Reference,
		fmt.Sprintf("Flight %s %s to %s departs %s.", b.Flight.FlightNumber, b.Flight.Origin, b.Flight.Destination,
			b.Flight.DepartureAt.Format("2006-01-02 15:04 MST")),
		fmt.Sprintf("Seats: %d. Total charged: %s.", b.Seats, formatAmount(b.TotalPrice, domain.USDT))))
	return b, nil
}

// CancelBooking cancels a confirmed booking, restoring seats and refunding.
// Allowed for the booking owner and admins.
func (s *Flights) CancelBooking(ctx context.Context, callerID, bookingID uint) (*domain.FlightBooking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fromStore(err, "Booking")
	}
	// Owner or admin
	if b.UserID != callerID {
		caller, err := s.store.GetUser(ctx, callerID)
		if err != nil {
			return nil, fromStore(err, "User")
		}
		if !caller.IsAdmin() {
			// Do not reveal other users' bookings
			return nil, notFound("Booking")
		}
	}

	cancelled, err := s.store.CancelBooking(ctx, bookingID) // Restores seats and refunds
	metrics.Bookings.WithLabelValues("cancel", metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, store.ErrNotPending) {
			return nil, conflict("Booking is already cancelled")
		}
		return nil, fromStore(err, "Booking")
	}
	audit("flight_refund", domain.USDT, nil, logrus.Fields{
		"caller_id":  callerID,
		"user_id":    b.UserID,
		"booking_id": bookingID,
		"amount":     b.TotalPrice,
	})
	s.cache.Invalidate(ctx, append(balanceKeys(b.UserID), keyFlights)...)

	cancelled.Flight = b.Flight
	notify(ctx, s.mail, mailer.Compose(b.PassengerEmail, "Booking cancelled "+b.Reference,
		"Your booking has been cancelled and "+formatAmount(b.TotalPrice, domain.USDT)+" refunded."))
	return cancelled, nil
}

// ListBookings returns the caller's bookings
func (s *Flights) ListBookings(ctx context.Context, userID uint, p utils.Page) (PageResult[domain.FlightBooking], error) {
	items, total, err := s.store.ListBookings(ctx, userID, p)
	return newPage(items, p, total), err
}

// ListAllBookings returns every booking. Admin only.
func (s *Flights) ListAllBookings(ctx context.Context, adminID uint, p utils.Page) (PageResult[domain.FlightBooking], error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return PageResult[domain.FlightBooking]{}, err
	}
	items, total, err := s.store.ListBookings(ctx, 0, p) // Zero lists every user
	return newPage(items, p, total), err
}
