package api

import (
	"context"  // Health check context
	"net/http" // HTTP status codes
	"time"     // Health check timeout

	"wallet_booking/internal/metrics"    // Prometheus handler
	"wallet_booking/internal/middleware" // Auth, logging and metrics middleware

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps holds everything the router needs
type Deps struct {
	Users     UserService
	Wallet    WalletService
	Flights   FlightService
	Accounts  AccountService
	Roles     middleware.RoleLookup
	JWTSecret string
	Checks    map[string]Pinger // Named dependencies checked by /healthz
}

// NewRouter builds the engine with the standard middleware and every route
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	RegisterRoutes(r, d)
	return r
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	RegisterValidators()

	r.GET("/healthz", HealthHandler(d.Checks))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Users)) // Registration endpoint
	auth.POST("/login", LoginHandler(d.Users))       // Login endpoint

	// Everything below requires a valid token
	authed := r.Group("/api", middleware.JWTAuthMiddleware(d.JWTSecret))
	authed.GET("/me", MeHandler(d.Users))
	authed.GET("/referrals", ReferralsHandler(d.Users))
	authed.GET("/payment-methods", ListPaymentMethodsHandler(d.Accounts))

	walletGroup := authed.Group("/wallet")
	walletGroup.GET("", BalancesHandler(d.Wallet))
	walletGroup.GET("/overview", OverviewHandler(d.Wallet))
	walletGroup.GET("/quotes", QuotesHandler(d.Wallet))
	walletGroup.POST("/transfer", TransferHandler(d.Wallet))
	walletGroup.GET("/transactions", HistoryHandler(d.Wallet))
	walletGroup.POST("/gift-cards", GiftCardHandler(d.Wallet))
	walletGroup.GET("/gift-cards", ListGiftCardsHandler(d.Wallet))
	walletGroup.POST("/sell", SellCryptoHandler(d.Wallet))
	walletGroup.GET("/sales", ListCryptoSellsHandler(d.Wallet))

	flightGroup := authed.Group("/flights")
	flightGroup.GET("", ListFlightsHandler(d.Flights))
	flightGroup.GET("/:id", GetFlightHandler(d.Flights))
	flightGroup.POST("/:id/book", BookFlightHandler(d.Flights))

	bookingGroup := authed.Group("/bookings")
	bookingGroup.GET("", ListBookingsHandler(d.Flights))
	bookingGroup.POST("/:id/cancel", CancelBookingHandler(d.Flights))

	accountGroup := authed.Group("/account")
	accountGroup.GET("/bank", GetBankAccountHandler(d.Accounts))
	accountGroup.PUT("/bank", UpsertBankAccountHandler(d.Accounts))
	accountGroup.DELETE("/bank", DeleteBankAccountHandler(d.Accounts))
	accountGroup.GET("/details", GetAccountDetailsHandler(d.Accounts))
	accountGroup.PUT("/details", UpsertAccountDetailsHandler(d.Accounts))
	accountGroup.GET("/card", GetCardHandler(d.Accounts))
	accountGroup.PUT("/card", UpsertCardHandler(d.Accounts))
	accountGroup.GET("/dashboard", DashboardHandler(d.Accounts))

	// Admin routes, role re-checked against the database on every request
	adminGroup := authed.Group("/admin", middleware.AdminOnlyMiddleware(d.Roles))
	adminGroup.GET("/users", ListUsersHandler(d.Users))
	adminGroup.GET("/users/:id", GetUserHandler(d.Users))
	adminGroup.PATCH("/users/:id", UpdateUserHandler(d.Users))
	adminGroup.DELETE("/users/:id", DeleteUserHandler(d.Users))
	adminGroup.PUT("/users/:id/dashboard", UpsertDashboardHandler(d.Accounts))
	adminGroup.GET("/transactions", ListTransactionsHandler(d.Wallet))
	adminGroup.POST("/payments", ReceivedPaymentHandler(d.Wallet))
	adminGroup.GET("/gift-cards", AdminGiftCardsHandler(d.Wallet))
	adminGroup.POST("/gift-cards/:id/settle", SettleGiftCardHandler(d.Wallet))
	adminGroup.GET("/sales", AdminCryptoSellsHandler(d.Wallet))
	adminGroup.POST("/sales/:id/settle", SettleCryptoSellHandler(d.Wallet))
	adminGroup.POST("/flights", CreateFlightHandler(d.Flights))
	adminGroup.PATCH("/flights/:id", UpdateFlightHandler(d.Flights))
	adminGroup.DELETE("/flights/:id", DeleteFlightHandler(d.Flights))
	adminGroup.GET("/bookings", AdminBookingsHandler(d.Flights))
	adminGroup.POST("/payment-methods", CreatePaymentMethodHandler(d.Accounts))
	adminGroup.PUT("/payment-methods/:id", UpdatePaymentMethodHandler(d.Accounts))
	adminGroup.DELETE("/payment-methods/:id", DeletePaymentMethodHandler(d.Accounts))
}

// HealthHandler pings each dependency and answers 503 if any is down
func HealthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status, code := gin.H{}, http.StatusOK
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		c.JSON(code, gin.H{"success": code == http.StatusOK, "checks": status})
	}
}
