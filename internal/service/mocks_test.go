package service

import (
	"context"

	"wallet_booking/internal/domain"
	"wallet_booking/internal/mailer"
	"wallet_booking/internal/store"
	"wallet_booking/internal/utils"

	"github.com/stretchr/testify/mock"
)

// MockStore implements every store interface the services depend on
type MockStore struct {
	mock.Mock
}

var (
	_ UserStore    = (*MockStore)(nil)
	_ WalletStore  = (*MockStore)(nil)
	_ FlightStore  = (*MockStore)(nil)
	_ AccountStore = (*MockStore)(nil)
)

// users

func (m *MockStore) CreateUser(ctx context.Context, u *domain.User, bonus float64) error {
	return m.Called(ctx, u, bonus).Error(0)
}

func (m *MockStore) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStore) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStore) GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	args := m.Called(ctx, code)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context, p utils.Page) ([]domain.User, int64, error) {
	args := m.Called(ctx, p)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ListReferrals(ctx context.Context, id uint) ([]domain.User, error) {
	args := m.Called(ctx, id)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *MockStore) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockStore) DeleteUser(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// balances

func (m *MockStore) Transfer(ctx context.Context, senderID, recipientID uint, coin domain.Coin, amount float64) (*domain.Transaction, error) {
	args := m.Called(ctx, senderID, recipientID, coin, amount)
	t, _ := args.Get(0).(*domain.Transaction)
	return t, args.Error(1)
}

func (m *MockStore) CreditReceivedPayment(ctx context.Context, r *domain.ReceivedTransaction) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) CreateGiftCardWithdrawal(ctx context.Context, w *domain.GiftCardWithdrawal) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockStore) SettleGiftCardWithdrawal(ctx context.Context, id uint, status, code string) (*domain.GiftCardWithdrawal, error) {
	args := m.Called(ctx, id, status, code)
	w, _ := args.Get(0).(*domain.GiftCardWithdrawal)
	return w, args.Error(1)
}

func (m *MockStore) CreateCryptoSell(ctx context.Context, c *domain.CryptoSellTransaction) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStore) SettleCryptoSell(ctx context.Context, id uint, status string) (*domain.CryptoSellTransaction, error) {
	args := m.Called(ctx, id, status)
	c, _ := args.Get(0).(*domain.CryptoSellTransaction)
	return c, args.Error(1)
}

func (m *MockStore) ListTransfers(ctx context.Context, userID uint, p utils.Page) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, userID, p)
	items, _ := args.Get(0).([]domain.Transaction)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ListAllTransfers(ctx context.Context, f store.TransferFilter, p utils.Page) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, f, p)
	items, _ := args.Get(0).([]domain.Transaction)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ListReceived(ctx context.Context, userID uint, p utils.Page) ([]domain.ReceivedTransaction, int64, error) {
	args := m.Called(ctx, userID, p)
	items, _ := args.Get(0).([]domain.ReceivedTransaction)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ListGiftCardWithdrawals(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.GiftCardWithdrawal, int64, error) {
	args := m.Called(ctx, userID, status, p)
	items, _ := args.Get(0).([]domain.GiftCardWithdrawal)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ListCryptoSells(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.CryptoSellTransaction, int64, error) {
	args := m.Called(ctx, userID, status, p)
	items, _ := args.Get(0).([]domain.CryptoSellTransaction)
	return items, args.Get(1).(int64), args.Error(2)
}

// flights

func (m *MockStore) CreateFlight(ctx context.Context, f *domain.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockStore) GetFlight(ctx context.Context, id uint) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*domain.Flight)
	return f, args.Error(1)
}

func (m *MockStore) UpdateFlight(ctx context.Context, id uint, fields map[string]any, seatDelta int) error {
	return m.Called(ctx, id, fields, seatDelta).Error(0)
}

func (m *MockStore) DeleteFlight(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) ListFlights(ctx context.Context, f store.FlightFilter, p utils.Page) ([]domain.Flight, int64, error) {
	args := m.Called(ctx, f, p)
	items, _ := args.Get(0).([]domain.Flight)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) BookFlight(ctx context.Context, b *domain.FlightBooking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockStore) GetBooking(ctx context.Context, id uint) (*domain.FlightBooking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.FlightBooking)
	return b, args.Error(1)
}

func (m *MockStore) CancelBooking(ctx context.Context, id uint) (*domain.FlightBooking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.FlightBooking)
	return b, args.Error(1)
}

func (m *MockStore) ListBookings(ctx context.Context, userID uint, p utils.Page) ([]domain.FlightBooking, int64, error) {
	args := m.Called(ctx, userID, p)
	items, _ := args.Get(0).([]domain.FlightBooking)
	return items, args.Get(1).(int64), args.Error(2)
}

// accounts

func (m *MockStore) CreatePaymentMethod(ctx context.Context, pm *domain.PaymentMethod) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *MockStore) GetPaymentMethod(ctx context.Context, id uint) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(*domain.PaymentMethod)
	return pm, args.Error(1)
}

func (m *MockStore) UpdatePaymentMethod(ctx context.Context, pm *domain.PaymentMethod) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *MockStore) DeletePaymentMethod(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error) {
	args := m.Called(ctx, activeOnly)
	items, _ := args.Get(0).([]domain.PaymentMethod)
	return items, args.Error(1)
}

func (m *MockStore) GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*domain.UserBankAccount)
	return a, args.Error(1)
}

func (m *MockStore) UpsertBankAccount(ctx context.Context, a *domain.UserBankAccount) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockStore) DeleteBankAccount(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockStore) GetAccountDetails(ctx context.Context, userID uint) (*domain.AccountDetails, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).(*domain.AccountDetails)
	return d, args.Error(1)
}

func (m *MockStore) UpsertAccountDetails(ctx context.Context, d *domain.AccountDetails) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockStore) GetCardData(ctx context.Context, userID uint) (*domain.CardData, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*domain.CardData)
	return c, args.Error(1)
}

func (m *MockStore) UpsertCardData(ctx context.Context, c *domain.CardData) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStore) GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).(*domain.DashboardData)
	return d, args.Error(1)
}

func (m *MockStore) UpsertDashboard(ctx context.Context, d *domain.DashboardData) error {
	return m.Called(ctx, d).Error(0)
}

// MockMailer records sent messages
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// MockPrices returns canned quotes
type MockPrices struct {
	mock.Mock
}

func (m *MockPrices) Prices(ctx context.Context) (map[domain.Coin]float64, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(map[domain.Coin]float64)
	return p, args.Error(1)
}

func admin(id uint) *domain.User {
	return &domain.User{ID: id, Username: "root", Email: "root@example.com", Role: domain.RoleAdmin}
}

func member(id uint, usdt float64) *domain.User {
	return &domain.User{ID: id, Username: "user" + uid(id), Email: "user" + uid(id) + "@example.com", Role: domain.RoleUser, USDT: usdt}
}
