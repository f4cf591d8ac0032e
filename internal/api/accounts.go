package api

import (
	"context"
	"net/http"

	"wallet_booking/internal/domain"
	"wallet_booking/internal/middleware"
	"wallet_booking/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountService is what the payment method and profile handlers need
type AccountService interface {
	ListPaymentMethods(ctx context.Context, callerID uint) ([]domain.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, adminID uint, in service.PaymentMethodInput) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, adminID, id uint, in service.PaymentMethodInput) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, adminID, id uint) error
	GetBankAccount(ctx context.Context, userID uint) (*domain.UserBankAccount, error)
	UpsertBankAccount(ctx context.Context, userID uint, in service.BankAccountInput) (*domain.UserBankAccount, error)
	DeleteBankAccount(ctx context.Context, userID uint) error
	GetAccountDetails(ctx context.Context, userID uint) (*domain.AccountDetails, error)
	UpsertAccountDetails(ctx context.Context, userID uint, in service.AccountDetailsInput) (*domain.AccountDetails, error)
	GetCardData(ctx context.Context, userID uint) (*domain.CardData, error)
	UpsertCardData(ctx context.Context, userID uint, in service.CardInput) (*domain.CardData, error)
	GetDashboard(ctx context.Context, userID uint) (*domain.DashboardData, error)
	UpsertDashboard(ctx context.Context, adminID, userID uint, in service.DashboardInput) (*domain.DashboardData, error)
}

// PaymentMethodRequest creates or replaces a payment method
type PaymentMethodRequest struct {
	Name    string `json:"name" binding:"required,max=64"`
	Coin    string `json:"coin" binding:"required,coin"`
	Network string `json:"network" binding:"max=32"`
	Address string `json:"address" binding:"required,max=128"`
	Active  *bool  `json:"active"` // Defaults to true on create
}

// BankAccountRequest is the caller's payout account
type BankAccountRequest struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	RoutingNumber string `json:"routing_number"`
	SwiftCode     string `json:"swift_code"`
}

// AccountDetailsRequest is the caller's profile
type AccountDetailsRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

// CardRequest carries the full number, which is never stored
type CardRequest struct {
	CardholderName string `json:"cardholder_name" binding:"required"`
	Number         string `json:"number" binding:"required"`
	ExpiryMonth    int    `json:"expiry_month" binding:"required"`
	ExpiryYear     int    `json:"expiry_year" binding:"required"`
}

func (r PaymentMethodRequest) input() service.PaymentMethodInput {
	return service.PaymentMethodInput{Name: r.Name, Coin: r.Coin, Network: r.Network, Address: r.Address, Active: r.Active}
}

// ListPaymentMethodsHandler lists deposit methods
func ListPaymentMethodsHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		methods, err := accounts.ListPaymentMethods(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"payment_methods": methods})
	}
}

// CreatePaymentMethodHandler adds a deposit method
func CreatePaymentMethodHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentMethodRequest
		if !bindJSON(c, &req) {
			return
		}
		m, err := accounts.CreatePaymentMethod(c.Request.Context(), middleware.UserID(c), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "Payment method created", gin.H{"payment_method": m})
	}
}

// UpdatePaymentMethodHandler replaces a deposit method
func UpdatePaymentMethodHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req PaymentMethodRequest
		if !bindJSON(c, &req) {
			return
		}
		m, err := accounts.UpdatePaymentMethod(c.Request.Context(), middleware.UserID(c), id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Payment method updated", gin.H{"payment_method": m})
	}
}

// DeletePaymentMethodHandler removes a deposit method
func DeletePaymentMethodHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := accounts.DeletePaymentMethod(c.Request.Context(), middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Payment method deleted", nil)
	}
}

// GetBankAccountHandler returns the caller's bank account
func GetBankAccountHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := accounts.GetBankAccount(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"bank_account": a})
	}
}

// UpsertBankAccountHandler saves the caller's bank account
func UpsertBankAccountHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BankAccountRequest
		if !bindJSON(c, &req) {
			return
		}
		a, err := accounts.UpsertBankAccount(c.Request.Context(), middleware.UserID(c), service.BankAccountInput(req))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Bank account saved", gin.H{"bank_account": a})
	}
}

// DeleteBankAccountHandler removes the caller's bank account
func DeleteBankAccountHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := accounts.DeleteBankAccount(c.Request.Context(), middleware.UserID(c)); err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Bank account deleted", nil)
	}
}

// GetAccountDetailsHandler returns the caller's profile
func GetAccountDetailsHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := accounts.GetAccountDetails(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"account_details": d})
	}
}

// UpsertAccountDetailsHandler saves the caller's profile
func UpsertAccountDetailsHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AccountDetailsRequest
		if !bindJSON(c, &req) {
			return
		}
		d, err := accounts.UpsertAccountDetails(c.Request.Context(), middleware.UserID(c), service.AccountDetailsInput(req))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Account details saved", gin.H{"account_details": d})
	}
}

// GetCardHandler returns the caller's saved card
func GetCardHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		card, err := accounts.GetCardData(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"card": card})
	}
}

// UpsertCardHandler validates and saves the caller's card
func UpsertCardHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CardRequest
		if !bindJSON(c, &req) {
			return
		}
		card, err := accounts.UpsertCardData(c.Request.Context(), middleware.UserID(c), service.CardInput(req))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "Card saved", gin.H{"card": card})
	}
}

// DashboardHandler returns the caller's dashboard figures
func DashboardHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := accounts.GetDashboard(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"dashboard": d})
	}
}
