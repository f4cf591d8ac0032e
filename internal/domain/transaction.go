package domain

// Transaction types
const (
	TxTransfer = "transfer"
)

// Transaction Model, a user to user transfer
type Transaction struct {
	ID          uint    `gorm:"primaryKey" json:"id"`              // Primary key
	SenderID    uint    `gorm:"index;not null" json:"sender_id"`    // User debited
	RecipientID uint    `gorm:"index;not null" json:"recipient_id"` // User credited
	Coin        Coin    `gorm:"size:8;not null" json:"coin"`        // Coin moved
	Amount      float64 `gorm:"not null" json:"amount"`             // Amount of the transaction
	Type        string  `gorm:"size:16;not null" json:"type"`       // Transaction type: transfer
	CreatedAt   int64   `gorm:"autoCreateTime:milli" json:"created_at"`
}

// ReceivedTransaction Model, an admin-confirmed incoming payment
type ReceivedTransaction struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"index;not null" json:"user_id"`  // User credited
	Coin      Coin    `gorm:"size:8;not null" json:"coin"`    // Coin received
	Amount    float64 `gorm:"not null" json:"amount"`         // Amount credited
	TxHash    string  `gorm:"size:128" json:"tx_hash"`        // On-chain reference, optional
	Note      string  `gorm:"size:255" json:"note"`           // Free text from the admin
	CreatedBy uint    `gorm:"not null" json:"created_by"`     // Admin who recorded it
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"created_at"`
}
