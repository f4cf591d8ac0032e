package store

import (
	"context" // Request scoped queries
	"time"    // Date range filters

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/utils"  // Pagination

	"gorm.io/gorm" // GORM ORM library
)

// TransferFilter narrows the admin transaction listing
type TransferFilter struct {
	UserID uint        // Sender or recipient, 0 for everyone
	Coin   domain.Coin // Empty for every coin
	From   *time.Time  // Inclusive
	To     *time.Time  // Inclusive
}

// Transfer moves amount of coin from sender to recipient and records it
func (s *Store) Transfer(ctx context.Context, senderID, recipientID uint, coin domain.Coin, amount float64) (*domain.Transaction, error) {
	t := &domain.Transaction{
		SenderID:    senderID,
		RecipientID: recipientID,
		Coin:        coin,
		Amount:      amount,
		Type:        domain.TxTransfer,
	}
	// Atomic transfer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Deduct from sender
		if err := debit(tx, senderID, coin, amount); err != nil {
			return err // Return error to rollback
		}
		// Add to recipient
		if err := credit(tx, recipientID, coin, amount); err != nil {
			return err // Return error to rollback
		}
		return tx.Create(t).Error // Record transaction
	})
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// CreditReceivedPayment increments the user's balance and records the payment
func (s *Store) CreditReceivedPayment(ctx context.Context, r *domain.ReceivedTransaction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Add to the user's balance
		if err := credit(tx, r.UserID, r.Coin, r.Amount); err != nil {
			return err // Return error to rollback
		}
		return tx.Create(r).Error // Record the payment
	})
	return translate(err)
}

// CreateGiftCardWithdrawal debits the user and stores a pending withdrawal
func (s *Store) CreateGiftCardWithdrawal(ctx context.Context, w *domain.GiftCardWithdrawal) error {
	w.Status = domain.StatusPending // Waits for an admin to settle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Hold the funds up front
		if err := debit(tx, w.UserID, w.Coin, w.Amount); err != nil {
			return err // Return error to rollback
		}
		return tx.Create(w).Error // Record the withdrawal
	})
	return translate(err)
}

// SettleGiftCardWithdrawal moves a pending withdrawal to status. Rejecting
// refunds the amount; fulfilling stores the card code.
func (s *Store) SettleGiftCardWithdrawal(ctx context.Context, id uint, status, code string) (*domain.GiftCardWithdrawal, error) {
	var w domain.GiftCardWithdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the withdrawal for its owner and amount
		if err := tx.First(&w, id).Error; err != nil {
			return err
		}
		fields := map[string]any{"status": status}
		if status == domain.StatusFulfilled {
			fields["code"] = code
		}
		// Only a pending row can move on
		res := tx.Model(&domain.GiftCardWithdrawal{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending // Already settled
		}
		// Refund the held funds on rejection
		if status == domain.StatusRejected {
			if err := credit(tx, w.UserID, w.Coin, w.Amount); err != nil {
				return err // Return error to rollback
			}
		}
		w.Status = status
		if status == domain.StatusFulfilled {
			w.Code = code
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// CreateCryptoSell debits the user and stores a pending sale
func (s *Store) CreateCryptoSell(ctx context.Context, c *domain.CryptoSellTransaction) error {
	c.Status = domain.StatusPending // Waits for the fiat payout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Hold the coins up front
		if err := debit(tx, c.UserID, c.Coin, c.Amount); err != nil {
			return err // Return error to rollback
		}
		return tx.Create(c).Error // Record the sale
	})
	return translate(err)
}

// SettleCryptoSell completes or rejects a pending sale, refunding on rejection
func (s *Store) SettleCryptoSell(ctx context.Context, id uint, status string) (*domain.CryptoSellTransaction, error) {
	var c domain.CryptoSellTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the sale for its owner and amount
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		// Only a pending row can move on
		res := tx.Model(&domain.CryptoSellTransaction{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending // Already settled
		}
		// Give the coins back on rejection
		if status == domain.StatusRejected {
			if err := credit(tx, c.UserID, c.Coin, c.Amount); err != nil {
				return err // Return error to rollback
			}
		}
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListTransfers returns transfers the user sent or received
func (s *Store) ListTransfers(ctx context.Context, userID uint, p utils.Page) ([]domain.Transaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("sender_id = ? OR recipient_id = ?", userID, userID)
	return paginate[domain.Transaction](q, p, "created_at desc")
}

// ListAllTransfers returns transfers across users for admins
func (s *Store) ListAllTransfers(ctx context.Context, f TransferFilter, p utils.Page) ([]domain.Transaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{})
	if f.UserID != 0 {
		q = q.Where("sender_id = ? OR recipient_id = ?", f.UserID, f.UserID)
	}
	if f.Coin != "" {
		q = q.Where("coin = ?", f.Coin)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UnixMilli())
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", f.To.UnixMilli())
	}
	return paginate[domain.Transaction](q, p, "created_at desc")
}

// ListReceived returns payments credited to the user
func (s *Store) ListReceived(ctx context.Context, userID uint, p utils.Page) ([]domain.ReceivedTransaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.ReceivedTransaction{}).Where("user_id = ?", userID)
	return paginate[domain.ReceivedTransaction](q, p, "created_at desc")
}

// ListGiftCardWithdrawals returns withdrawals, all users when userID is 0
func (s *Store) ListGiftCardWithdrawals(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.GiftCardWithdrawal, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.GiftCardWithdrawal{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return paginate[domain.GiftCardWithdrawal](q, p, "created_at desc")
}

// ListCryptoSells returns sales, all users when userID is 0
func (s *Store) ListCryptoSells(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.CryptoSellTransaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.CryptoSellTransaction{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return paginate[domain.CryptoSellTransaction](q, p, "created_at desc")
}
