package store

import (
	"context" // Request scoped queries

	"wallet_booking/internal/domain" // Importing domain models
)

// CreatePaymentMethod inserts m
func (s *Store) CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error {
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

// GetPaymentMethod loads a payment method by ID
func (s *Store) GetPaymentMethod(ctx context.Context, id uint) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// UpdatePaymentMethod overwrites every column of m
func (s *Store) UpdatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error {
	return translate(s.db.WithContext(ctx).Save(m).Error)
}

// DeletePaymentMethod removes a payment method
func (s *Store) DeletePaymentMethod(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.PaymentMethod{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPaymentMethods returns payment methods ordered by name
func (s *Store) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error) {
	q := s.db.WithContext(ctx).Order("name asc")
	// Hide disabled methods from regular users
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var methods []domain.PaymentMethod
	if err := q.Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// GetBankAccount loads the user's bank account
func (s *Store) GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error) {
	return firstByUser[domain.UserBankAccount](ctx, s.db, userID)
}

// UpsertBankAccount creates or replaces the user's bank account
func (s *Store) UpsertBankAccount(ctx context.Context, a *domain.UserBankAccount) error {
	return upsertByUser(ctx, s.db, a, "bank_name", "account_name", "account_number", "routing_number", "swift_code")
}

// DeleteBankAccount removes the user's bank account
func (s *Store) DeleteBankAccount(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.UserBankAccount{}) // Delete by owner
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccountDetails loads the user's profile
func (s *Store) GetAccountDetails(ctx context.Context, userID uint) (*domain.AccountDetails, error) {
	return firstByUser[domain.AccountDetails](ctx, s.db, userID)
}

// UpsertAccountDetails creates or replaces the user's profile
func (s *Store) UpsertAccountDetails(ctx context.Context, d *domain.AccountDetails) error {
	return upsertByUser(ctx, s.db, d, "full_name", "phone", "country", "city", "address", "date_of_birth")
}

// GetCardData loads the user's card
func (s *Store) GetCardData(ctx context.Context, userID uint) (*domain.CardData, error) {
	return firstByUser[domain.CardData](ctx, s.db, userID)
}

// UpsertCardData creates or replaces the user's card
func (s *Store) UpsertCardData(ctx context.Context, c *domain.CardData) error {
	return upsertByUser(ctx, s.db, c, "cardholder_name", "brand", "last4", "expiry_month", "expiry_year")
}

// GetDashboard loads the user's dashboard figures
func (s *Store) GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error) {
	return firstByUser[domain.DashboardData](ctx, s.db, userID)
}

// UpsertDashboard creates or replaces the user's dashboard figures
func (s *Store) UpsertDashboard(ctx context.Context, d *domain.DashboardData) error {
	return upsertByUser(ctx, s.db, d, "total_profit", "total_deposit", "total_withdrawal", "bonus")
}
