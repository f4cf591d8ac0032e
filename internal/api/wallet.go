package api

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"wallet_booking/internal/domain"     // Domain models
	"wallet_booking/internal/middleware" // Authenticated caller
	"wallet_booking/internal/service"    // Use cases
	"wallet_booking/internal/utils"      // Pagination

	"github.com/gin-gonic/gin" // Gin web framework
)

// WalletService is what the balance handlers need
type WalletService interface {
	Balances(ctx context.Context, userID uint) (domain.Balances, error)
	Quotes(ctx context.Context) (map[domain.Coin]float64, error)
	Overview(ctx context.Context, userID uint) (*service.Overview, error)
	Transfer(ctx context.Context, senderID uint, in service.TransferInput) (*domain.Transaction, error)
	CreditReceivedPayment(ctx context.Context, adminID uint, in service.ReceivedPaymentInput) (*domain.ReceivedTransaction, error)
	WithdrawGiftCard(ctx context.Context, userID uint, in service.GiftCardInput) (*domain.GiftCardWithdrawal, error)
	SettleGiftCard(ctx context.Context, adminID, id uint, status, code string) (*domain.GiftCardWithdrawal, error)
	SellCrypto(ctx context.Context, userID uint, in service.SellInput) (*domain.CryptoSellTransaction, error)
	SettleCryptoSell(ctx context.Context, adminID, id uint, status string) (*domain.CryptoSellTransaction, error)
	History(ctx context.Context, userID uint, p utils.Page) (*service.History, error)
	GiftCardWithdrawals(ctx context.Context, userID uint, p utils.Page) (service.PageResult[domain.GiftCardWithdrawal], error)
	CryptoSells(ctx context.Context, userID uint, p utils.Page) (service.PageResult[domain.CryptoSellTransaction], error)
	AllTransfers(ctx context.Context, adminID uint, in service.TransferFilterInput, p utils.Page) (service.PageResult[domain.Transaction], error)
	AllGiftCardWithdrawals(ctx context.Context, adminID uint, status string, p utils.Page) (service.PageResult[domain.GiftCardWithdrawal], error)
	AllCryptoSells(ctx context.Context, adminID uint, status string, p utils.Page) (service.PageResult[domain.CryptoSellTransaction], error)
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	Recipient string  `json:"recipient" binding:"required"`   // Target username or email
	Coin      string  `json:"coin" binding:"required,coin"`   // btc, usdt or eth
	Amount    float64 `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// GiftCardRequest asks for a balance payout as a gift card
type GiftCardRequest struct {
	Brand          string  `json:"brand" binding:"required,max=64"`
	Coin           string  `json:"coin" binding:"required,coin"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	RecipientEmail string  `json:"recipient_email"` // Defaults to the caller's email
}

// SellRequest sells coins for a bank payout
type SellRequest struct {
	Coin   string  `json:"coin" binding:"required,coin"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// BalancesHandler returns the caller's balances
func BalancesHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := wallet.Balances(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"balances": b})
	}
}

// OverviewHandler returns balances valued in USD plus dashboard figures
func OverviewHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := wallet.Overview(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"overview": o})
	}
}

// QuotesHandler returns current USD prices
func QuotesHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		prices, err := wallet.Quotes(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"prices": prices})
	}
}

// TransferHandler allows a user to transfer funds to another user
func TransferHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest
		if !bindJSON(c, &req) {
			return
		}
		tx, err := wallet.Transfer(c.Request.Context(), middleware.UserID(c), service.TransferInput{
			Recipient: req.Recipient,
			Coin:      req.Coin,
			Amount:    req.Amount,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Transfer successful", gin.H{"transaction": tx})
	}
}

// HistoryHandler returns one page of the caller's transfers and received payments
func HistoryHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := wallet.History(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{
			"transfers": h.Transfers,
			"received":  h.Received,
			"cached":    h.Cached,
		})
	}
}

// GiftCardHandler debits the caller and queues a gift card payout
func GiftCardHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GiftCardRequest
		if !bindJSON(c, &req) {
			return
		}
		w, err := wallet.WithdrawGiftCard(c.Request.Context(), middleware.UserID(c), service.GiftCardInput{
			Brand:          req.Brand,
			Coin:           req.Coin,
			Amount:         req.Amount,
			RecipientEmail: req.RecipientEmail,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Gift card withdrawal requested", gin.H{"withdrawal": w})
	}
}

// ListGiftCardsHandler lists the caller's gift card withdrawals
func ListGiftCardsHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := wallet.GiftCardWithdrawals(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("withdrawals", res))
	}
}

// SellCryptoHandler sells coins at the current rate
func SellCryptoHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SellRequest
		if !bindJSON(c, &req) {
			return
		}
		s, err := wallet.SellCrypto(c.Request.Context(), middleware.UserID(c), service.SellInput{Coin: req.Coin, Amount: req.Amount})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Sale submitted", gin.H{"sale": s})
	}
}

// ListCryptoSellsHandler lists the caller's sales
func ListCryptoSellsHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := wallet.CryptoSells(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("sales", res))
	}
}
