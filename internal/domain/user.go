package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                               // Primary key
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`       // Unique, lower-cased
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`         // Unique, lower-cased
	Password     string    `gorm:"not null" json:"-"`                                  // Hashed password
	Role         string    `gorm:"size:16;default:user" json:"role"`                   // Role: user or admin
	BTC          float64   `gorm:"column:btc;not null;default:0" json:"btc"`           // BTC balance
	USDT         float64   `gorm:"column:usdt;not null;default:0" json:"usdt"`         // USDT balance
	ETH          float64   `gorm:"column:eth;not null;default:0" json:"eth"`           // ETH balance
	ReferralCode string    `gorm:"size:16;uniqueIndex;not null" json:"referral_code"`  // Code other users sign up with
	ReferredByID *uint     `gorm:"index" json:"referred_by_id,omitempty"`              // Referrer, if any
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Balances returns the user's balances as a value
func (u User) Balances() Balances {
	return Balances{BTC: u.BTC, USDT: u.USDT, ETH: u.ETH}
}

// IsAdmin reports whether the user has the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
