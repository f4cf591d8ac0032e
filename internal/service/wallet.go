package service

import (
	"context" // Request context
	"errors"  // Error inspection
	"fmt"     // Amount formatting
	"strings" // Input normalisation
	"time"    // Date filters

	"wallet_booking/internal/domain"  // Importing domain models
	"wallet_booking/internal/mailer"  // Notifications
	"wallet_booking/internal/metrics" // Balance operation counters
	"wallet_booking/internal/store"   // Store errors and filters
	"wallet_booking/internal/utils"   // Cache and pagination

	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/sync/errgroup" // Concurrent reads
)

// WalletStore is the persistence the balance use cases need
type WalletStore interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error)
	GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error)

	Transfer(ctx context.Context, senderID, recipientID uint, coin domain.Coin, amount float64) (*domain.Transaction, error)
	CreditReceivedPayment(ctx context.Context, r *domain.ReceivedTransaction) error
	CreateGiftCardWithdrawal(ctx context.Context, w *domain.GiftCardWithdrawal) error
	SettleGiftCardWithdrawal(ctx context.Context, id uint, status, code string) (*domain.GiftCardWithdrawal, error)
	CreateCryptoSell(ctx context.Context, c *domain.CryptoSellTransaction) error
	SettleCryptoSell(ctx context.Context, id uint, status string) (*domain.CryptoSellTransaction, error)

	ListTransfers(ctx context.Context, userID uint, p utils.Page) ([]domain.Transaction, int64, error)
	ListAllTransfers(ctx context.Context, f store.TransferFilter, p utils.Page) ([]domain.Transaction, int64, error)
	ListReceived(ctx context.Context, userID uint, p utils.Page) ([]domain.ReceivedTransaction, int64, error)
	ListGiftCardWithdrawals(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.GiftCardWithdrawal, int64, error)
	ListCryptoSells(ctx context.Context, userID uint, status string, p utils.Page) ([]domain.CryptoSellTransaction, int64, error)
}

// Wallet handles balances, transfers and payouts
type Wallet struct {
	store  WalletStore
	prices PriceSource
	mail   Mailer
	cache  *utils.Cache
}

// NewWallet wires the balance use cases
func NewWallet(s WalletStore, p PriceSource, m Mailer, c *utils.Cache) *Wallet {
	return &Wallet{store: s, prices: p, mail: m, cache: c}
}

// TransferInput moves funds to another user identified by username or email
type TransferInput struct {
	Recipient string
	Coin      string
	Amount    float64
}

// ReceivedPaymentInput is an admin-confirmed deposit
type ReceivedPaymentInput struct {
	UserID uint
	Coin   string
	Amount float64
	TxHash string
	Note   string
}

// GiftCardInput requests a payout as a gift card
type GiftCardInput struct {
	Brand          string
	Coin           string
	Amount         float64
	RecipientEmail string
}

// SellInput requests a fiat payout for coins
type SellInput struct {
	Coin   string
	Amount float64
}

// Overview is the dashboard view of a wallet
type Overview struct {
	Balances  domain.Balances         `json:"balances"`
	Prices    map[domain.Coin]float64 `json:"prices,omitempty"`
	USDValues map[domain.Coin]float64 `json:"usd_values,omitempty"`
	TotalUSD  float64                 `json:"total_usd"`
	Dashboard domain.DashboardData    `json:"dashboard"`
	Quoted    bool                    `json:"quoted"` // False when the price service was unavailable
}

// History is one page of the caller's transfers and received payments
type History struct {
	Transfers PageResult[domain.Transaction]         `json:"transfers"`
	Received  PageResult[domain.ReceivedTransaction] `json:"received"`
	Cached    bool                                   `json:"cached"`
}

// audit logs a balance mutation and counts it
func audit(op string, coin domain.Coin, err error, fields logrus.Fields) {
	metrics.BalanceOps.WithLabelValues(op, string(coin), metrics.Result(err)).Inc()
	entry := logrus.WithFields(fields).WithField("operation", op).WithField("coin", coin)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("Balance operation failed")
		return
	}
	entry.Info("Balance operation")
}

// invalidateUser drops every cached view showing the users' balances
func (s *Wallet) invalidateUser(ctx context.Context, ids ...uint) {
	s.cache.Invalidate(ctx, balanceKeys(ids...)...)
}

// Balances returns the caller's balances
func (s *Wallet) Balances(ctx context.Context, userID uint) (domain.Balances, error) {
	var b domain.Balances
	key := walletKey(userID)
	// Serve from cache when possible
	if found, err := s.cache.Get(ctx, key, &b); err == nil && found {
		return b, nil
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return b, fromStore(err, "User")
	}
	b = u.Balances()
	_ = s.cache.Set(ctx, key, b) // Cache miss is not an error
	return b, nil
}

// Quotes returns current USD prices
func (s *Wallet) Quotes(ctx context.Context) (map[domain.Coin]float64, error) {
	prices, err := s.prices.Prices(ctx)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Price lookup failed")
		return nil, errQuotes
	}
	return prices, nil
}

// Overview loads balances, prices and dashboard figures concurrently.
// A price service failure leaves the overview unquoted instead of failing it.
func (s *Wallet) Overview(ctx context.Context, userID uint) (*Overview, error) {
	var (
		out    = &Overview{}
		prices map[domain.Coin]float64
	)
	// Balances, dashboard and prices are independent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.Balances(gctx, userID)
		out.Balances = b
		return err
	})
	g.Go(func() error {
		d, err := s.store.GetDashboard(gctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			// No figures yet, show zeros
			out.Dashboard = domain.DashboardData{UserID: userID}
			return nil
		}
		if err != nil {
			return err
		}
		out.Dashboard = *d
		return nil
	})
	g.Go(func() error {
		p, err := s.prices.Prices(gctx)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Overview without prices")
			return nil
		}
		prices = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Value each balance in USD
	if prices != nil {
		out.Quoted = true
		out.Prices = prices
		out.USDValues = make(map[domain.Coin]float64, len(domain.Coins))
		for _, c := range domain.Coins {
			v := out.Balances.Of(c) * prices[c]
			out.USDValues[c] = v
			out.TotalUSD += v
		}
	}
	return out, nil
}

// Transfer moves funds from the caller to another user
func (s *Wallet) Transfer(ctx context.Context, senderID uint, in TransferInput) (*domain.Transaction, error) {
	// Validate input
	coin, err := parseCoin(in.Coin)
	if err != nil {
		return nil, err
	}
	if !validAmount(in.Amount) {
		return nil, invalid("Amount must be greater than zero")
	}
	if strings.TrimSpace(in.Recipient) == "" {
		return nil, invalid("Recipient is required")
	}
	sender, err := s.store.GetUser(ctx, senderID)
	if err != nil {
		return nil, fromStore(err, "User")
	}
	recipient, err := s.store.GetUserByLogin(ctx, in.Recipient) // Username or email
	if err != nil {
		return nil, fromStore(err, "Recipient")
	}
	if recipient.ID == sender.ID {
		return nil, invalid("Cannot transfer to yourself")
	}
	// Fast path only, the store re-checks atomically
	if sender.Balances().Of(coin) < in.Amount {
		return nil, errInsufficient
	}

	// Atomic debit and credit
	t, err := s.store.Transfer(ctx, sender.ID, recipient.ID, coin, in.Amount)
	audit("transfer", coin, err, logrus.Fields{
		"sender_id":    sender.ID,
		"recipient_id": recipient.ID,
		"amount":       in.Amount,
	})
	if err != nil {
		return nil, fromStore(err, "User")
	}
	s.invalidateUser(ctx, sender.ID, recipient.ID)

	// Notify both sides
	amount := formatAmount(in.Amount, coin)
	notify(ctx, s.mail, mailer.Compose(sender.Email, "Transfer sent",
		"You sent "+amount+" to "+recipient.Username+"."))
	notify(ctx, s.mail, mailer.Compose(recipient.Email, "Transfer received",
		"You received "+amount+" from "+sender.Username+"."))
	return t, nil
}

// CreditReceivedPayment records an incoming payment for a user. Admin only.
func (s *Wallet) CreditReceivedPayment(ctx context.Context, adminID uint, in ReceivedPaymentInput) (*domain.ReceivedTransaction, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	coin, err := parseCoin(in.Coin)
	if err != nil {
		return nil, err
	}
	if !validAmount(in.Amount) {
		return nil, invalid("Amount must be greater than zero")
	}
	u, err := s.store.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, fromStore(err, "User")
	}

	// Record the deposit and credit the user in one transaction
	r := &domain.ReceivedTransaction{
		UserID:    u.ID,
		Coin:      coin,
		Amount:    in.Amount,
		TxHash:    strings.TrimSpace(in.TxHash),
		Note:      strings.TrimSpace(in.Note),
		CreatedBy: adminID,
	}
	err = s.store.CreditReceivedPayment(ctx, r)
	audit("received_payment", coin, err, logrus.Fields{
		"admin_id": adminID,
		"user_id":  u.ID,
		"amount":   in.Amount,
	})
	if err != nil {
		return nil, fromStore(err, "User")
	}
	s.invalidateUser(ctx, u.ID)
	notify(ctx, s.mail, mailer.Compose(u.Email, "Payment received",
		"Your deposit of "+formatAmount(in.Amount, coin)+" has been credited."))
	return r, nil
}

// WithdrawGiftCard debits the caller and queues a gift card payout
func (s *Wallet) WithdrawGiftCard(ctx context.Context, userID uint, in GiftCardInput) (*domain.GiftCardWithdrawal, error) {
	coin, err := parseCoin(in.Coin)
	if err != nil {
		return nil, err
	}
	if !validAmount(in.Amount) {
		return nil, invalid("Amount must be greater than zero")
	}
	brand := strings.ToLower(strings.TrimSpace(in.Brand)) // Brands are stored lower case
	if brand == "" || len(brand) > 64 {
		return nil, invalid("Gift card brand is required")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "User")
	}
	// Default to the account email
	email := strings.ToLower(strings.TrimSpace(in.RecipientEmail))
	if email == "" {
		email = u.Email
	}
	if !validEmail(email) {
		return nil, invalid("Invalid recipient email")
	}

	w := &domain.GiftCardWithdrawal{
		UserID:         u.ID,
		Brand:          brand,
		Coin:           coin,
		Amount:         in.Amount,
		RecipientEmail: email,
	}
	err = s.store.CreateGiftCardWithdrawal(ctx, w) // Debits the balance
	audit("gift_card_withdrawal", coin, err, logrus.Fields{"user_id": u.ID, "amount": in.Amount, "brand": brand})
	if err != nil {
		return nil, fromStore(err, "Withdrawal")
	}
	s.invalidateUser(ctx, u.ID)
	notify(ctx, s.mail, mailer.Compose(u.Email, "Gift card requested",
		"Your "+brand+" gift card for "+formatAmount(in.Amount, coin)+" is being processed."))
	return w, nil
}

// SettleGiftCard fulfils or rejects a pending withdrawal. Admin only.
func (s *Wallet) SettleGiftCard(ctx context.Context, adminID, id uint, status, code string) (*domain.GiftCardWithdrawal, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	switch status {
	case domain.StatusFulfilled:
		if code == "" {
			return nil, invalid("Gift card code is required to fulfil")
		}
	case domain.StatusRejected:
		code = "" // Rejected payouts carry no code
	default:
		return nil, invalid("Status must be fulfilled or rejected")
	}

	w, err := s.store.SettleGiftCardWithdrawal(ctx, id, status, code) // Refunds on reject
	coin := domain.Coin("")
	if w != nil {
		coin = w.Coin
	}
	audit("gift_card_"+status, coin, err, logrus.Fields{"admin_id": adminID, "withdrawal_id": id})
	if err != nil {
		return nil, fromStore(err, "Withdrawal")
	}
	s.invalidateUser(ctx, w.UserID)

	if status == domain.StatusFulfilled {
		notify(ctx, s.mail, mailer.Compose(w.RecipientEmail, "Your gift card",
			"Your "+w.Brand+" gift card code is "+code+"."))
	} else if u, err := s.store.GetUser(ctx, w.UserID); err == nil {
		notify(ctx, s.mail, mailer.Compose(u.Email, "Gift card request rejected",
			formatAmount(w.Amount, w.Coin)+" has been returned to your balance."))
	}
	return w, nil
}

// SellCrypto debits coins at the current rate for a payout to the caller's bank account
func (s *Wallet) SellCrypto(ctx context.Context, userID uint, in SellInput) (*domain.CryptoSellTransaction, error) {
	coin, err := parseCoin(in.Coin)
	if err != nil {
		return nil, err
	}
	if !validAmount(in.Amount) {
		return nil, invalid("Amount must be greater than zero")
	}
	// Payouts go to the bank account on file
	acct, err := s.store.GetBankAccount(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("Add a bank account before selling")
	}
	if err != nil {
		return nil, err
	}
	prices, err := s.prices.Prices(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Price lookup failed")
		return nil, errQuotes
	}
	// Lock in the current rate
	rate := prices[coin]
	if rate <= 0 {
		return nil, errQuotes
	}

	c := &domain.CryptoSellTransaction{
		UserID:        userID,
		Coin:          coin,
		Amount:        in.Amount,
		RateUSD:       rate,
		USDValue:      in.Amount * rate,
		BankAccountID: acct.ID,
	}
	err = s.store.CreateCryptoSell(ctx, c)
	audit("crypto_sell", coin, err, logrus.Fields{"user_id": userID, "amount": in.Amount, "rate_usd": rate})
	if err != nil {
		return nil, fromStore(err, "Sale")
	}
	s.invalidateUser(ctx, userID)
	if u, err := s.store.GetUser(ctx, userID); err == nil {
		notify(ctx, s.mail, mailer.Compose(u.Email, "Sale received",
			fmt.Sprintf("You sold %s for $%.2f. The payout to %s is pending.", formatAmount(in.Amount, coin), c.USDValue, acct.BankName)))
	}
	return c, nil
}

// SettleCryptoSell completes or rejects a pending sale. Admin only.
func (s *Wallet) SettleCryptoSell(ctx context.Context, adminID, id uint, status string) (*domain.CryptoSellTransaction, error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return nil, err
	}
	if status != domain.StatusCompleted && status != domain.StatusRejected {
		return nil, invalid("Status must be completed or rejected")
	}
	c, err := s.store.SettleCryptoSell(ctx, id, status) // Refunds on reject
	coin := domain.Coin("")
	if c != nil {
		coin = c.Coin
	}
	audit("crypto_sell_"+status, coin, err, logrus.Fields{"admin_id": adminID, "sale_id": id})
	if err != nil {
		return nil, fromStore(err, "Sale")
	}
	s.invalidateUser(ctx, c.UserID)
	if u, err := s.store.GetUser(ctx, c.UserID); err == nil {
		notify(ctx, s.mail, mailer.Compose(u.Email, "Sale "+status,
			"Your sale of "+formatAmount(c.Amount, c.Coin)+" was "+status+"."))
	}
	return c, nil
}

// History returns one page of the caller's transfers and received payments
func (s *Wallet) History(ctx context.Context, userID uint, p utils.Page) (*History, error) {
	key := pageKey(historyKey(userID), p)
	var h History
	// Serve from cache when possible
	if found, err := s.cache.Get(ctx, key, &h); err == nil && found {
		h.Cached = true
		return &h, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, total, err := s.store.ListTransfers(gctx, userID, p)
		h.Transfers = newPage(items, p, total)
		return err
	})
	g.Go(func() error {
		items, total, err := s.store.ListReceived(gctx, userID, p)
		h.Received = newPage(items, p, total)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, h) // Cache the page
	return &h, nil
}

// GiftCardWithdrawals lists the caller's gift card withdrawals
func (s *Wallet) GiftCardWithdrawals(ctx context.Context, userID uint, p utils.Page) (PageResult[domain.GiftCardWithdrawal], error) {
	items, total, err := s.store.ListGiftCardWithdrawals(ctx, userID, "", p)
	return newPage(items, p, total), err
}

// CryptoSells lists the caller's sales
func (s *Wallet) CryptoSells(ctx context.Context, userID uint, p utils.Page) (PageResult[domain.CryptoSellTransaction], error) {
	items, total, err := s.store.ListCryptoSells(ctx, userID, "", p)
	return newPage(items, p, total), err
}

// TransferFilterInput holds raw admin listing filters
type TransferFilterInput struct {
	UserID uint
	Coin   string
	From   string // RFC 3339 or YYYY-MM-DD
	To     string
}

// AllTransfers lists transfers across users. Admin only.
func (s *Wallet) AllTransfers(ctx context.Context, adminID uint, in TransferFilterInput, p utils.Page) (PageResult[domain.Transaction], error) {
	var empty PageResult[domain.Transaction]
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return empty, err
	}
	// Build the filter from query values
	f := store.TransferFilter{UserID: in.UserID}
	if in.Coin != "" {
		coin, err := parseCoin(in.Coin)
		if err != nil {
			return empty, err
		}
		f.Coin = coin
	}
	var err error
	if f.From, err = parseTimeParam(in.From, "from", false); err != nil {
		return empty, err
	}
	if f.To, err = parseTimeParam(in.To, "to", true); err != nil {
		return empty, err
	}
	items, total, err := s.store.ListAllTransfers(ctx, f, p)
	return newPage(items, p, total), err
}

// AllGiftCardWithdrawals lists withdrawals across users, optionally by status. Admin only.
func (s *Wallet) AllGiftCardWithdrawals(ctx context.Context, adminID uint, status string, p utils.Page) (PageResult[domain.GiftCardWithdrawal], error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return PageResult[domain.GiftCardWithdrawal]{}, err
	}
	items, total, err := s.store.ListGiftCardWithdrawals(ctx, 0, status, p)
	return newPage(items, p, total), err
}

// AllCryptoSells lists sales across users, optionally by status. Admin only.
func (s *Wallet) AllCryptoSells(ctx context.Context, adminID uint, status string, p utils.Page) (PageResult[domain.CryptoSellTransaction], error) {
	if _, err := requireAdmin(ctx, s.store, adminID); err != nil {
		return PageResult[domain.CryptoSellTransaction]{}, err
	}
	items, total, err := s.store.ListCryptoSells(ctx, 0, status, p)
	return newPage(items, p, total), err
}

// parseTimeParam accepts RFC 3339 or a bare date. A bare date used as an
// upper bound covers the whole day.
func parseTimeParam(v, name string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	// Full timestamp first, then a bare date
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, invalid("Invalid %s date", name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

func formatAmount(v float64, c domain.Coin) string {
	return fmt.Sprintf("%g %s", v, strings.ToUpper(string(c)))
}
