package api

import (
	"context"
	"net/http"
	"time"

	"wallet_booking/internal/domain"
	"wallet_booking/internal/middleware"
	"wallet_booking/internal/service"
	"wallet_booking/internal/utils"

	"github.com/gin-gonic/gin"
)

// FlightService is what the flight handlers need
type FlightService interface {
	CreateFlight(ctx context.Context, adminID uint, in service.FlightInput) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, adminID, id uint, in service.FlightUpdate) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, adminID, id uint) error
	ListFlights(ctx context.Context, q service.FlightQuery, p utils.Page) (service.PageResult[domain.Flight], error)
	GetFlight(ctx context.Context, id uint) (*domain.Flight, error)
	BookFlight(ctx context.Context, userID uint, in service.BookingInput) (*domain.FlightBooking, error)
	CancelBooking(ctx context.Context, callerID, bookingID uint) (*domain.FlightBooking, error)
	ListBookings(ctx context.Context, userID uint, p utils.Page) (service.PageResult[domain.FlightBooking], error)
	ListAllBookings(ctx context.Context, adminID uint, p utils.Page) (service.PageResult[domain.FlightBooking], error)
}

// FlightRequest creates a flight. Times are RFC 3339.
type FlightRequest struct {
	FlightNumber string    `json:"flight_number" binding:"required"`
	Airline      string    `json:"airline" binding:"required"`
	Origin       string    `json:"origin" binding:"required,len=3"`
	Destination  string    `json:"destination" binding:"required,len=3"`
	DepartureAt  time.Time `json:"departure_at" binding:"required"`
	ArrivalAt    time.Time `json:"arrival_at" binding:"required"`
	Price        float64   `json:"price" binding:"required,gt=0"`
	TotalSeats   int       `json:"total_seats" binding:"required,gt=0"`
}

// FlightUpdateRequest edits a flight, omitted fields stay as they are
type FlightUpdateRequest struct {
	Airline     *string    `json:"airline"`
	DepartureAt *time.Time `json:"departure_at"`
	ArrivalAt   *time.Time `json:"arrival_at"`
	Price       *float64   `json:"price"`
	TotalSeats  *int       `json:"total_seats"`
}

// BookingRequest books seats on the flight in the path
type BookingRequest struct {
	Seats          int    `json:"seats" binding:"required,gt=0"`
	PassengerName  string `json:"passenger_name" binding:"required"`
	PassengerEmail string `json:"passenger_email" binding:"required"`
}

// ListFlightsHandler searches flights by origin, destination and date
func ListFlightsHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := flights.ListFlights(c.Request.Context(), service.FlightQuery{
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
			Date:        c.Query("date"),
		}, pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("flights", res))
	}
}

// GetFlightHandler returns a single flight
func GetFlightHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		f, err := flights.GetFlight(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"flight": f})
	}
}

// CreateFlightHandler adds a flight
func CreateFlightHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FlightRequest
		if !bindJSON(c, &req) {
			return
		}
		f, err := flights.CreateFlight(c.Request.Context(), middleware.UserID(c), service.FlightInput(req))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Flight created", gin.H{"flight": f})
	}
}

// UpdateFlightHandler edits a flight
func UpdateFlightHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req FlightUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		f, err := flights.UpdateFlight(c.Request.Context(), middleware.UserID(c), id, service.FlightUpdate(req))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Flight updated", gin.H{"flight": f})
	}
}

// DeleteFlightHandler removes a flight without bookings
func DeleteFlightHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := flights.DeleteFlight(c.Request.Context(), middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Flight deleted", nil)
	}
}

// BookFlightHandler books seats and charges the caller in USDT
func BookFlightHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req BookingRequest
		if !bindJSON(c, &req) {
			return
		}
		b, err := flights.BookFlight(c.Request.Context(), middleware.UserID(c), service.BookingInput{
			FlightID:       id,
			Seats:          req.Seats,
			PassengerName:  req.PassengerName,
			PassengerEmail: req.PassengerEmail,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Booking confirmed", gin.H{"booking": b})
	}
}

// CancelBookingHandler cancels a booking and refunds it
func CancelBookingHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		b, err := flights.CancelBooking(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Booking cancelled", gin.H{"booking": b})
	}
}

// ListBookingsHandler lists the caller's bookings
func ListBookingsHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := flights.ListBookings(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("bookings", res))
	}
}
