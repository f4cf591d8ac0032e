package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"wallet_booking/internal/middleware" // Authenticated caller
	"wallet_booking/internal/service"    // Use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// UpdateUserRequest holds the fields an admin may change, omitted ones stay as they are
type UpdateUserRequest struct {
	Role  *string  `json:"role" binding:"omitempty,oneof=user admin"`
	Email *string  `json:"email"`
	BTC   *float64 `json:"btc"`
	USDT  *float64 `json:"usdt"`
	ETH   *float64 `json:"eth"`
}

// ReceivedPaymentRequest credits a confirmed deposit to a user
type ReceivedPaymentRequest struct {
	UserID uint    `json:"user_id" binding:"required"`
	Coin   string  `json:"coin" binding:"required,coin"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	TxHash string  `json:"tx_hash" binding:"max=128"`
	Note   string  `json:"note" binding:"max=255"`
}

// SettleRequest moves a pending payout to a final status
type SettleRequest struct {
	Status string `json:"status" binding:"required"`
	Code   string `json:"code"` // Gift card code, required when fulfilling
}

// DashboardRequest sets a user's dashboard figures
type DashboardRequest struct {
	TotalProfit     float64 `json:"total_profit"`
	TotalDeposit    float64 `json:"total_deposit"`
	TotalWithdrawal float64 `json:"total_withdrawal"`
	Bonus           float64 `json:"bonus"`
}

// ListUsersHandler returns one page of users with their balances
func ListUsersHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := users.ListUsers(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("users", res))
	}
}

// GetUserHandler returns a single user
func GetUserHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		user, err := users.GetUser(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"user": user})
	}
}

// UpdateUserHandler changes a user's role, email or balances
func UpdateUserHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req UpdateUserRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.UpdateUser(c.Request.Context(), middleware.UserID(c), id, service.UpdateUserInput{
			Role:  req.Role,
			Email: req.Email,
			BTC:   req.BTC,
			USDT:  req.USDT,
			ETH:   req.ETH,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "User updated", gin.H{"user": user})
	}
}

// DeleteUserHandler removes a user
func DeleteUserHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := users.DeleteUser(c.Request.Context(), middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "User deleted", nil)
	}
}

// ListTransactionsHandler returns transfers across users, filtered by user_id, coin, from and to
func ListTransactionsHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := service.TransferFilterInput{
			Coin: c.Query("coin"),
			From: c.Query("from"),
			To:   c.Query("to"),
		}
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			in.UserID = uint(id)
		}
		res, err := wallet.AllTransfers(c.Request.Context(), middleware.UserID(c), in, pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("transactions", res))
	}
}

// ReceivedPaymentHandler credits a user's balance for a confirmed deposit
func ReceivedPaymentHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReceivedPaymentRequest
		if !bindJSON(c, &req) {
			return
		}
		r, err := wallet.CreditReceivedPayment(c.Request.Context(), middleware.UserID(c), service.ReceivedPaymentInput{
			UserID: req.UserID,
			Coin:   req.Coin,
			Amount: req.Amount,
			TxHash: req.TxHash,
			Note:   req.Note,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Payment credited", gin.H{"payment": r})
	}
}

// AdminGiftCardsHandler lists gift card withdrawals, optionally by status
func AdminGiftCardsHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := wallet.AllGiftCardWithdrawals(c.Request.Context(), middleware.UserID(c), c.Query("status"), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("withdrawals", res))
	}
}

// SettleGiftCardHandler fulfils or rejects a pending gift card withdrawal
func SettleGiftCardHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req SettleRequest
		if !bindJSON(c, &req) {
			return
		}
		w, err := wallet.SettleGiftCard(c.Request.Context(), middleware.UserID(c), id, req.Status, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Withdrawal "+w.Status, gin.H{"withdrawal": w})
	}
}

// AdminCryptoSellsHandler lists crypto sales, optionally by status
func AdminCryptoSellsHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := wallet.AllCryptoSells(c.Request.Context(), middleware.UserID(c), c.Query("status"), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("sales", res))
	}
}

// SettleCryptoSellHandler completes or rejects a pending sale
func SettleCryptoSellHandler(wallet WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req SettleRequest
		if !bindJSON(c, &req) {
			return
		}
		s, err := wallet.SettleCryptoSell(c.Request.Context(), middleware.UserID(c), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Sale "+s.Status, gin.H{"sale": s})
	}
}

// UpsertDashboardHandler sets the dashboard figures shown to a user
func UpsertDashboardHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req DashboardRequest
		if !bindJSON(c, &req) {
			return
		}
		d, err := accounts.UpsertDashboard(c.Request.Context(), middleware.UserID(c), id, service.DashboardInput{
			TotalProfit:     req.TotalProfit,
			TotalDeposit:    req.TotalDeposit,
			TotalWithdrawal: req.TotalWithdrawal,
			Bonus:           req.Bonus,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Dashboard updated", gin.H{"dashboard": d})
	}
}

// AdminBookingsHandler lists every flight booking
func AdminBookingsHandler(flights FlightService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := flights.ListAllBookings(c.Request.Context(), middleware.UserID(c), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", pageBody("bookings", res))
	}
}
