package store

import (
	"context" // Request scoped queries
	"strings" // Login normalisation

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/utils"  // Pagination

	"gorm.io/gorm" // GORM ORM library
)

// CreateUser inserts u. When u was referred and bonus is positive the
// referrer is credited bonus USDT in the same transaction.
func (s *Store) CreateUser(ctx context.Context, u *domain.User, bonus float64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Insert the new user
		if err := tx.Create(u).Error; err != nil {
			return err // Duplicate username or email rolls back
		}
		// Pay the referrer, if any
		if u.ReferredByID != nil && bonus > 0 {
			return credit(tx, *u.ReferredByID, domain.USDT, bonus)
		}
		return nil
	})
	return translate(err)
}

// GetUser loads a user by ID
func (s *Store) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserByLogin loads a user by username or email
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	login = strings.ToLower(strings.TrimSpace(login)) // Usernames and emails are stored lower-cased
	var u domain.User
	// Query user by username or email
	if err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserByReferralCode loads the owner of a referral code
func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserRole returns the current role of a user
func (s *Store) UserRole(ctx context.Context, id uint) (string, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// ListUsers returns one page of users ordered by ID
func (s *Store) ListUsers(ctx context.Context, p utils.Page) ([]domain.User, int64, error) {
	return paginate[domain.User](s.db.WithContext(ctx).Model(&domain.User{}), p, "id asc")
}

// ListReferrals returns the users referred by id
func (s *Store) ListReferrals(ctx context.Context, id uint) ([]domain.User, error) {
	var users []domain.User
	// Query users who signed up with id's code
	if err := s.db.WithContext(ctx).Where("referred_by_id = ?", id).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies column updates to a user
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// Tell an unchanged row apart from a missing one
		if _, err := s.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUser removes a user and their per-user singleton rows
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Remove the per-user rows first
		for _, m := range []any{&domain.UserBankAccount{}, &domain.AccountDetails{}, &domain.CardData{}, &domain.DashboardData{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err // Return error to rollback
			}
		}
		res := tx.Delete(&domain.User{}, id) // Delete the user itself
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
