package store

import (
	"context"
	"errors"
	"testing"

	"wallet_booking/internal/domain"
	"wallet_booking/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDb,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(db), mock
}

func TestStore_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("debits, credits and records", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `users` SET `btc`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `btc`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectCommit()

		tx, err := s.Transfer(ctx, 1, 2, domain.BTC, 0.5)
		require.NoError(t, err)
		assert.Equal(t, uint(7), tx.ID)
		assert.Equal(t, domain.TxTransfer, tx.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when balance is short", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.Transfer(ctx, 1, 2, domain.USDT, 100)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when recipient is gone", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `users` SET `eth`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `eth`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.Transfer(ctx, 1, 99, domain.ETH, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown coins before touching sql", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.Transfer(ctx, 1, 2, domain.Coin("doge"), 1)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_CreditReceivedPayment(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET `btc`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `received_transactions`").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	r := &domain.ReceivedTransaction{UserID: 5, Coin: domain.BTC, Amount: 0.1, CreatedBy: 1}
	require.NoError(t, s.CreditReceivedPayment(ctx, r))
	assert.Equal(t, uint(3), r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GiftCardWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("create debits first", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		w := &domain.GiftCardWithdrawal{UserID: 1, Brand: "amazon", Coin: domain.USDT, Amount: 50, RecipientEmail: "a@b.co"}
		err := s.CreateGiftCardWithdrawal(ctx, w)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reject refunds", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"id", "user_id", "brand", "coin", "amount", "status"}).
			AddRow(4, 9, "amazon", "usdt", 50.0, "pending")
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `gift_card_withdrawals`").WillReturnRows(rows)
		mock.ExpectExec("UPDATE `gift_card_withdrawals` SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w, err := s.SettleGiftCardWithdrawal(ctx, 4, domain.StatusRejected, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, w.Status)
		assert.Equal(t, uint(9), w.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("settling twice fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"id", "user_id", "coin", "amount", "status"}).
			AddRow(4, 9, "usdt", 50.0, "fulfilled")
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `gift_card_withdrawals`").WillReturnRows(rows)
		mock.ExpectExec("UPDATE `gift_card_withdrawals` SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.SettleGiftCardWithdrawal(ctx, 4, domain.StatusFulfilled, "CODE")
		assert.ErrorIs(t, err, ErrNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_BookFlight(t *testing.T) {
	ctx := context.Background()
	flightRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "flight_number", "price", "total_seats", "available_seats"}).
			AddRow(11, "LH123", 120.0, 100, 2)
	}

	t.Run("reserves seats and charges usdt", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flights`").WillReturnRows(flightRows())
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO `flight_bookings`").WillReturnResult(sqlmock.NewResult(21, 1))
		mock.ExpectCommit()

		b := &domain.FlightBooking{Reference: "ref", UserID: 3, FlightID: 11, Seats: 2, PassengerName: "Ada", PassengerEmail: "ada@example.com"}
		require.NoError(t, s.BookFlight(ctx, b))
		assert.Equal(t, 240.0, b.TotalPrice)
		assert.Equal(t, domain.BookingConfirmed, b.Status)
		assert.Equal(t, 0, b.Flight.AvailableSeats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when sold out", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flights`").WillReturnRows(flightRows())
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.BookFlight(ctx, &domain.FlightBooking{UserID: 3, FlightID: 11, Seats: 3})
		assert.ErrorIs(t, err, ErrNoSeats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when balance is short", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flights`").WillReturnRows(flightRows())
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.BookFlight(ctx, &domain.FlightBooking{UserID: 3, FlightID: 11, Seats: 1})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown flight", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flights`").WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		err := s.BookFlight(ctx, &domain.FlightBooking{UserID: 3, FlightID: 404, Seats: 1})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteBankAccount(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `user_bank_accounts`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.DeleteBankAccount(ctx, 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestStore_CreatePaymentMethodKeepsInactive(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `payment_methods`").
		WithArgs("Tether", sqlmock.AnyArg(), "TRC20", "T9y", false).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	m := &domain.PaymentMethod{Name: "Tether", Coin: domain.USDT, Network: "TRC20", Address: "T9y", Active: false}
	require.NoError(t, s.CreatePaymentMethod(ctx, m))
	assert.Equal(t, uint(5), m.ID)
	assert.False(t, m.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CancelBooking(t *testing.T) {
	ctx := context.Background()
	bookingRows := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "flight_id", "seats", "total_price", "status"}).
			AddRow(21, 3, 11, 2, 240.0, status)
	}

	t.Run("restores seats and refunds", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flight_bookings`").WillReturnRows(bookingRows(domain.BookingConfirmed))
		mock.ExpectExec("UPDATE `flight_bookings` SET `status`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").
			WithArgs(2, sqlmock.AnyArg(), 11).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `usdt`").
			WithArgs(240.0, sqlmock.AnyArg(), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		b, err := s.CancelBooking(ctx, 21)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flight_bookings`").WillReturnRows(bookingRows(domain.BookingCancelled))
		mock.ExpectExec("UPDATE `flight_bookings` SET `status`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.CancelBooking(ctx, 21)
		assert.ErrorIs(t, err, ErrNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refund failure rolls back the seats", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `flight_bookings`").WillReturnRows(bookingRows(domain.BookingConfirmed))
		mock.ExpectExec("UPDATE `flight_bookings` SET `status`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `usdt`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.CancelBooking(ctx, 21)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_SettleCryptoSell(t *testing.T) {
	ctx := context.Background()
	saleRows := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "coin", "amount", "status"}).
			AddRow(6, 9, "eth", 1.5, status)
	}

	t.Run("reject refunds", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `crypto_sell_transactions`").WillReturnRows(saleRows(domain.StatusPending))
		mock.ExpectExec("UPDATE `crypto_sell_transactions` SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `users` SET `eth`").
			WithArgs(1.5, sqlmock.AnyArg(), 9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, err := s.SettleCryptoSell(ctx, 6, domain.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, c.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("complete keeps the debit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `crypto_sell_transactions`").WillReturnRows(saleRows(domain.StatusPending))
		mock.ExpectExec("UPDATE `crypto_sell_transactions` SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, err := s.SettleCryptoSell(ctx, 6, domain.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, c.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("settling twice fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM `crypto_sell_transactions`").WillReturnRows(saleRows(domain.StatusRejected))
		mock.ExpectExec("UPDATE `crypto_sell_transactions` SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.SettleCryptoSell(ctx, 6, domain.StatusRejected)
		assert.ErrorIs(t, err, ErrNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_UpdateFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("shrinking below booked seats fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").
			WithArgs(-50, sqlmock.AnyArg(), 4, -50).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.UpdateFlight(ctx, 4, map[string]any{"total_seats": 50}, -50)
		assert.ErrorIs(t, err, ErrNoSeats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("growing shifts available seats then applies fields", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `flights` SET `available_seats`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `flights` SET `total_seats`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.UpdateFlight(ctx, 4, map[string]any{"total_seats": 120}, 20))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no seat change skips the guard", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `flights` SET `price`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.UpdateFlight(ctx, 4, map[string]any{"price": 99.5}, 0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteFlight(t *testing.T) {
	ctx := context.Background()
	countRows := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }

	t.Run("blocked by bookings", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `flight_bookings`").WithArgs(4).WillReturnRows(countRows(2))
		mock.ExpectRollback()

		err := s.DeleteFlight(ctx, 4)
		assert.ErrorIs(t, err, ErrInUse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes an unbooked flight", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `flight_bookings`").WithArgs(4).WillReturnRows(countRows(0))
		mock.ExpectExec("DELETE FROM `flights`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteFlight(ctx, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing flight", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `flight_bookings`").WithArgs(404).WillReturnRows(countRows(0))
		mock.ExpectExec("DELETE FROM `flights`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.DeleteFlight(ctx, 404), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_UpsertBankAccount(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `user_bank_accounts` (.+) ON DUPLICATE KEY UPDATE `bank_name`=VALUES\\(`bank_name`\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	a := &domain.UserBankAccount{UserID: 3, BankName: "Barclays", AccountName: "Ann", AccountNumber: "12345678"}
	require.NoError(t, s.UpsertBankAccount(ctx, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListFlightsIncludesDeparted(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	// Only the origin filter, no cut-off on departure time
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `flights` WHERE origin = \\?$").
		WithArgs("LHR").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `flights` WHERE origin = \\? ORDER BY departure_at asc LIMIT \\?").
		WithArgs("LHR", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "flight_number", "origin"}).AddRow(1, "BA117", "LHR"))

	flights, total, err := s.ListFlights(ctx, FlightFilter{Origin: "LHR"}, utils.Page{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, flights, 1)
	assert.Equal(t, "BA117", flights[0].FlightNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
