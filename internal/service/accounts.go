package service

import (
	"context" // Request context
	"errors"  // Error inspection
	"regexp"  // Field formats
	"strings" // Input normalisation
	"time"    // Expiry and birth dates

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/store"  // Store errors
	"wallet_booking/internal/utils"  // Cache

	"github.com/ShiraazMoollatjie/goluhn" // Card number checksum
	"github.com/sirupsen/logrus"          // Logging
)

// AccountStore is the persistence the account use cases need
type AccountStore interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)

	CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error
	GetPaymentMethod(ctx context.Context, id uint) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id uint) error
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error)

	GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error)
	UpsertBankAccount(ctx context.Context, a *domain.UserBankAccount) error
	DeleteBankAccount(ctx context.Context, userID uint) error

	GetAccountDetails(ctx context.Context, userID uint) (*domain.AccountDetails, error)
	UpsertAccountDetails(ctx context.Context, d *domain.AccountDetails) error
	GetCardData(ctx context.Context, userID uint) (*domain.CardData, error)
	UpsertCardData(ctx context.Context, c *domain.CardData) error
	GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error)
	UpsertDashboard(ctx context.Context, d *domain.DashboardData) error
}

// Accounts handles payment methods and the per-user profile records
type Accounts struct {
	store AccountStore
	cache *utils.Cache
	now   func() time.Time
}

// NewAccounts wires the account use cases
func NewAccounts(s AccountStore, c *utils.Cache) *Accounts {
	return &Accounts{store: s, cache: c, now: time.Now}
}

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	swiftPattern  = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

// PaymentMethodInput creates or replaces a payment method
type PaymentMethodInput struct {
	Name    string
	Coin    string
	Network string
	Address string
	Active  *bool
}

func (in PaymentMethodInput) apply(m *domain.PaymentMethod) error {
	coin, err := parseCoin(in.Coin)
	if err != nil {
		return err
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Coin = coin
	m.Network = strings.ToUpper(strings.TrimSpace(in.Network))
	m.Address = strings.TrimSpace(in.Address)
	if in.Active != nil {
		m.Active = *in.Active // Left unchanged when omitted
	}
	switch {
	case m.Name == "" || len(m.Name) > 64:
		return invalid("Name is required")
	case m.Address == "" || len(m.Address) > 128:
		return invalid("Address is required")
	}
	return nil
}

// ListPaymentMethods returns active methods, or all of them for admins
func (s *Accounts) ListPaymentMethods(ctx context.Context, callerID uint) ([]domain.PaymentMethod, error) {
	u, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, fromStore(err, "User")
	}
	activeOnly := !u.IsAdmin() // Inactive methods are admin only
	key := keyPaymentMethods + "all"
	if activeOnly {
		key = keyPaymentMethods + "active"
	}
	var methods []domain.PaymentMethod
	// Serve from cache when possible
	if found, err := s.cache.Get(ctx, key, &methods); err == nil && found {
		return methods, nil
	}
	methods, err = s.store.ListPaymentMethods(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if methods == nil {
		methods = []domain.PaymentMethod{} // Encode as [] not null
	}
	_ = s.cache.Set(ctx, key, methods)
	return methods, nil
}

// CreatePaymentMethod adds a deposit method. Admin only.
func (s *Accounts) CreatePaymentMethod(ctx context.Context, adminID uint, in PaymentMethodInput) (*domain.PaymentMethod, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	m := &domain.PaymentMethod{Active: true} // New methods start active
	if err := in.apply(m); err != nil {
		return nil, err
	}
	// Save method to database
	if err := s.store.CreatePaymentMethod(ctx, m); err != nil {
		return nil, fromStore(err, "Payment method")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "payment_method_id": m.ID}).Info("Payment method created")
	s.cache.Invalidate(ctx, keyPaymentMethods)
	return m, nil
}

// UpdatePaymentMethod replaces a deposit method. Admin only.
func (s *Accounts) UpdatePaymentMethod(ctx context.Context, adminID, id uint, in PaymentMethodInput) (*domain.PaymentMethod, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	// Load the stored method and overwrite it
	m, err := s.store.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Payment method")
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePaymentMethod(ctx, m); err != nil {
		return nil, fromStore(err, "Payment method")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "payment_method_id": id}).Info("Payment method updated")
	s.cache.Invalidate(ctx, keyPaymentMethods)
	return m, nil
}

// DeletePaymentMethod removes a deposit method. Admin only.
func (s *Accounts) DeletePaymentMethod(ctx context.Context, adminID, id uint) error {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return err
	}
	if err := s.store.DeletePaymentMethod(ctx, id); err != nil {
		return fromStore(err, "Payment method")
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "payment_method_id": id}).Info("Payment method deleted")
	s.cache.Invalidate(ctx, keyPaymentMethods)
	return nil
}

// BankAccountInput is the caller's payout account
type BankAccountInput struct {
	BankName      string
	AccountName   string
	AccountNumber string
	RoutingNumber string
	SwiftCode     string
}

// GetBankAccount returns the caller's bank account
func (s *Accounts) GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error) {
	a, err := s.store.GetBankAccount(ctx, userID)
	return a, fromStore(err, "Bank account")
}

// UpsertBankAccount creates or replaces the caller's bank account
func (s *Accounts) UpsertBankAccount(ctx context.Context, userID uint, in BankAccountInput) (*domain.UserBankAccount, error) {
	a := &domain.UserBankAccount{
		UserID:        userID,
		BankName:      strings.TrimSpace(in.BankName),
		AccountName:   strings.TrimSpace(in.AccountName),
		AccountNumber: strings.ReplaceAll(strings.TrimSpace(in.AccountNumber), " ", ""), // Drop grouping spaces
		RoutingNumber: strings.TrimSpace(in.RoutingNumber),
		SwiftCode:     strings.ToUpper(strings.TrimSpace(in.SwiftCode)),
	}
	// Validate input
	switch {
	case a.BankName == "" || len(a.BankName) > 128:
		return nil, invalid("Bank name is required")
	case a.AccountName == "" || len(a.AccountName) > 128:
		return nil, invalid("Account name is required")
	case !digitsPattern.MatchString(a.AccountNumber) || len(a.AccountNumber) > 34:
		return nil, invalid("Account number must contain digits only")
	case a.RoutingNumber != "" && !digitsPattern.MatchString(a.RoutingNumber):
		return nil, invalid("Routing number must contain digits only")
	case a.SwiftCode != "" && !swiftPattern.MatchString(a.SwiftCode):
		return nil, invalid("SWIFT code must be 8 or 11 characters")
	}
	if err := s.store.UpsertBankAccount(ctx, a); err != nil {
		return nil, err
	}
	logrus.WithField("user_id", userID).Info("Bank account saved")
	return s.GetBankAccount(ctx, userID) // Reload for ID and timestamps
}

// DeleteBankAccount removes the caller's bank account
func (s *Accounts) DeleteBankAccount(ctx context.Context, userID uint) error {
	return fromStore(s.store.DeleteBankAccount(ctx, userID), "Bank account")
}

// AccountDetailsInput is the caller's profile
type AccountDetailsInput struct {
	FullName    string
	Phone       string
	Country     string
	City        string
	Address     string
	DateOfBirth string // YYYY-MM-DD
}

// GetAccountDetails returns the caller's profile, empty when never saved
func (s *Accounts) GetAccountDetails(ctx context.Context, userID uint) (*domain.AccountDetails, error) {
	d, err := s.store.GetAccountDetails(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.AccountDetails{UserID: userID}, nil // Never saved
	}
	return d, err
}

// UpsertAccountDetails creates or replaces the caller's profile
func (s *Accounts) UpsertAccountDetails(ctx context.Context, userID uint, in AccountDetailsInput) (*domain.AccountDetails, error) {
	d := &domain.AccountDetails{
		UserID:      userID,
		FullName:    strings.TrimSpace(in.FullName),
		Phone:       strings.TrimSpace(in.Phone),
		Country:     strings.TrimSpace(in.Country),
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
		DateOfBirth: strings.TrimSpace(in.DateOfBirth),
	}
	if len(d.FullName) > 128 || len(d.Country) > 64 || len(d.City) > 64 || len(d.Address) > 255 {
		return nil, invalid("Field too long")
	}
	if d.Phone != "" && !phonePattern.MatchString(d.Phone) {
		return nil, invalid("Invalid phone number")
	}
	// Optional birth date
	if d.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, d.DateOfBirth)
		if err != nil {
			return nil, invalid("Date of birth must be YYYY-MM-DD")
		}
		if !dob.Before(s.now()) {
			return nil, invalid("Date of birth must be in the past")
		}
	}
	if err := s.store.UpsertAccountDetails(ctx, d); err != nil {
		return nil, err
	}
	return s.GetAccountDetails(ctx, userID)
}

// CardInput carries a full card number. Only brand and last four digits are kept.
type CardInput struct {
	CardholderName string
	Number         string
	ExpiryMonth    int
	ExpiryYear     int
}

// cardBrand guesses the network from the number prefix
func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5',
		len(number) >= 4 && number[:4] >= "2221" && number[:4] <= "2720":
		return "mastercard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "6011"), strings.HasPrefix(number, "65"):
		return "discover"
	}
	return "other"
}

// GetCardData returns the caller's saved card
func (s *Accounts) GetCardData(ctx context.Context, userID uint) (*domain.CardData, error) {
	c, err := s.store.GetCardData(ctx, userID)
	return c, fromStore(err, "Card")
}

// UpsertCardData validates and saves the caller's card
func (s *Accounts) UpsertCardData(ctx context.Context, userID uint, in CardInput) (*domain.CardData, error) {
	number := strings.NewReplacer(" ", "", "-", "").Replace(in.Number) // Accept grouped input
	// Length, digits and checksum
	if len(number) < 12 || len(number) > 19 || !digitsPattern.MatchString(number) || goluhn.Validate(number) != nil {
		return nil, invalid("Invalid card number")
	}
	name := strings.TrimSpace(in.CardholderName)
	if name == "" || len(name) > 128 {
		return nil, invalid("Cardholder name is required")
	}
	if in.ExpiryMonth < 1 || in.ExpiryMonth > 12 {
		return nil, invalid("Expiry month must be 1-12")
	}
	// Valid through the end of the expiry month
	now := s.now()
	if in.ExpiryYear < now.Year() || (in.ExpiryYear == now.Year() && in.ExpiryMonth < int(now.Month())) {
		return nil, invalid("Card has expired")
	}

	// The full number is never stored
	c := &domain.CardData{
		UserID:         userID,
		CardholderName: name,
		Brand:          cardBrand(number),
		Last4:          number[len(number)-4:],
		ExpiryMonth:    in.ExpiryMonth,
		ExpiryYear:     in.ExpiryYear,
	}
	if err := s.store.UpsertCardData(ctx, c); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "brand": c.Brand}).Info("Card saved")
	return s.GetCardData(ctx, userID)
}

// DashboardInput holds admin-maintained figures
type DashboardInput struct {
	TotalProfit     float64
	TotalDeposit    float64
	TotalWithdrawal float64
	Bonus           float64
}

// GetDashboard returns the caller's dashboard figures, zeroes when unset
func (s *Accounts) GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error) {
	var d domain.DashboardData
	key := dashboardKey(userID)
	// Serve from cache when possible
	if found, err := s.cache.Get(ctx, key, &d); err == nil && found {
		return &d, nil
	}
	got, err := s.store.GetDashboard(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		d = domain.DashboardData{UserID: userID} // Zeroes until an admin sets them
	case err != nil:
		return nil, err
	default:
		d = *got
	}
	_ = s.cache.Set(ctx, key, d)
	return &d, nil
}

// UpsertDashboard sets a user's dashboard figures. Admin only.
func (s *Accounts) UpsertDashboard(ctx context.Context, adminID, userID uint, in DashboardInput) (*domain.DashboardData, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	for _, v := range []float64{in.TotalProfit, in.TotalDeposit, in.TotalWithdrawal, in.Bonus} {
		if v < 0 || !(v == 0 || validAmount(v)) {
			return nil, invalid("Dashboard figures must be non-negative numbers")
		}
	}
	// Target user must exist
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fromStore(err, "User")
	}
	d := &domain.DashboardData{
		UserID:          userID,
		TotalProfit:     in.TotalProfit,
		TotalDeposit:    in.TotalDeposit,
		TotalWithdrawal: in.TotalWithdrawal,
		Bonus:           in.Bonus,
	}
	if err := s.store.UpsertDashboard(ctx, d); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "user_id": userID}).Info("Dashboard updated")
	s.cache.Invalidate(ctx, dashboardKey(userID))
	return d, nil
}
