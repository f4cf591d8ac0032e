package domain

// PaymentMethod Model, deposit instructions shown to users
type PaymentMethod struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Coin    Coin   `gorm:"size:8;not null" json:"coin"`
	Network string `gorm:"size:32" json:"network"` // e.g. ERC20, TRC20
	Address string `gorm:"size:128;not null" json:"address"`
	Active  bool   `gorm:"not null" json:"active"` // Hidden from non-admins when false
}

// UserBankAccount Model, one per user
type UserBankAccount struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	BankName      string `gorm:"size:128;not null" json:"bank_name"`
	AccountName   string `gorm:"size:128;not null" json:"account_name"`
	AccountNumber string `gorm:"size:34;not null" json:"account_number"`
	RoutingNumber string `gorm:"size:34" json:"routing_number"`
	SwiftCode     string `gorm:"size:11" json:"swift_code"`
}

// AccountDetails Model, the user's profile
type AccountDetails struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName    string `gorm:"size:128" json:"full_name"`
	Phone       string `gorm:"size:32" json:"phone"`
	Country     string `gorm:"size:64" json:"country"`
	City        string `gorm:"size:64" json:"city"`
	Address     string `gorm:"size:255" json:"address"`
	DateOfBirth string `gorm:"size:10" json:"date_of_birth"` // YYYY-MM-DD
}

// CardData Model. The full card number is never stored.
type CardData struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	CardholderName string `gorm:"size:128;not null" json:"cardholder_name"`
	Brand          string `gorm:"size:16" json:"brand"`
	Last4          string `gorm:"size:4;not null" json:"last4"`
	ExpiryMonth    int    `gorm:"not null" json:"expiry_month"`
	ExpiryYear     int    `gorm:"not null" json:"expiry_year"`
}

// DashboardData Model, figures an admin maintains for a user's dashboard
type DashboardData struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	UserID          uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalProfit     float64 `gorm:"not null;default:0" json:"total_profit"`
	TotalDeposit    float64 `gorm:"not null;default:0" json:"total_deposit"`
	TotalWithdrawal float64 `gorm:"not null;default:0" json:"total_withdrawal"`
	Bonus           float64 `gorm:"not null;default:0" json:"bonus"`
}

// Models lists every table for migrations
func Models() []any {
	return []any{
		&User{},
		&Transaction{},
		&ReceivedTransaction{},
		&GiftCardWithdrawal{},
		&CryptoSellTransaction{},
		&Flight{},
		&FlightBooking{},
		&PaymentMethod{},
		&UserBankAccount{},
		&AccountDetails{},
		&CardData{},
		&DashboardData{},
	}
}
