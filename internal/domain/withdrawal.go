package domain

// Withdrawal statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFulfilled = "fulfilled"
	StatusRejected  = "rejected"
)

// GiftCardWithdrawal Model, balance paid out as a gift card
type GiftCardWithdrawal struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	UserID         uint    `gorm:"index;not null" json:"user_id"`
	Brand          string  `gorm:"size:64;not null" json:"brand"` // e.g. amazon, apple
	Coin           Coin    `gorm:"size:8;not null" json:"coin"`
	Amount         float64 `gorm:"not null" json:"amount"`
	RecipientEmail string  `gorm:"size:191;not null" json:"recipient_email"`
	Code           string  `gorm:"size:128" json:"code,omitempty"` // Filled in when fulfilled
	Status         string  `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt      int64   `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt      int64   `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

// CryptoSellTransaction Model, coins sold for a fiat payout to the user's bank account
type CryptoSellTransaction struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	UserID        uint    `gorm:"index;not null" json:"user_id"`
	Coin          Coin    `gorm:"size:8;not null" json:"coin"`
	Amount        float64 `gorm:"not null" json:"amount"`
	RateUSD       float64 `gorm:"column:rate_usd;not null" json:"rate_usd"` // Quote used at sale time
	USDValue      float64 `gorm:"column:usd_value;not null" json:"usd_value"`
	BankAccountID uint    `gorm:"not null" json:"bank_account_id"`
	Status        string  `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt     int64   `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt     int64   `gorm:"autoUpdateTime:milli" json:"updated_at"`
}
