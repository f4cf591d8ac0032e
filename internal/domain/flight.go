package domain

import "time"

// Booking statuses
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Flight Model, priced in USDT
type Flight struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FlightNumber   string    `gorm:"size:16;uniqueIndex;not null" json:"flight_number"`
	Airline        string    `gorm:"size:64;not null" json:"airline"`
	Origin         string    `gorm:"size:3;index;not null" json:"origin"`      // IATA code
	Destination    string    `gorm:"size:3;index;not null" json:"destination"` // IATA code
	DepartureAt    time.Time `gorm:"index;not null" json:"departure_at"`
	ArrivalAt      time.Time `gorm:"not null" json:"arrival_at"`
	Price          float64   `gorm:"not null" json:"price"` // Per seat, USDT
	TotalSeats     int       `gorm:"not null" json:"total_seats"`
	AvailableSeats int       `gorm:"not null" json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FlightBooking Model
type FlightBooking struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Reference      string    `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	FlightID       uint      `gorm:"index;not null" json:"flight_id"`
	Flight         *Flight   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"flight,omitempty"`
	Seats          int       `gorm:"not null" json:"seats"`
	TotalPrice     float64   `gorm:"not null" json:"total_price"`
	PassengerName  string    `gorm:"size:128;not null" json:"passenger_name"`
	PassengerEmail string    `gorm:"size:191;not null" json:"passenger_email"`
	Status         string    `gorm:"size:16;not null;default:confirmed" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
