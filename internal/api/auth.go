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

// UserService is what the auth and user admin handlers need
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
	Me(ctx context.Context, id uint) (*domain.User, error)
	ListUsers(ctx context.Context, callerID uint, p utils.Page) (service.PageResult[domain.User], error)
	GetUser(ctx context.Context, callerID, id uint) (*domain.User, error)
	UpdateUser(ctx context.Context, callerID, id uint, in service.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, callerID, id uint) error
	ListReferrals(ctx context.Context, id uint) (*service.Referrals, error)
}

// RegisterRequest is the signup body
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"` // Alphabetic, 3-32 characters
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"` // 8-64 characters
	ReferralCode string `json:"referral_code"`                // Optional
}

// LoginRequest accepts a username or an email as login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by login
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"` // JWT token
	User    *domain.User `json:"user"`
}

// RegisterHandler creates an account
func RegisterHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Register(c.Request.Context(), service.RegisterInput{
			Username:     req.Username,
			Email:        req.Email,
			Password:     req.Password,
			ReferralCode: req.ReferralCode,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, "User registered successfully", gin.H{"user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		token, user, err := users.Login(c.Request.Context(), req.Login, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Success: true, Token: token, User: user})
	}
}

// MeHandler returns the caller's profile and balances
func MeHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Me(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"user": user})
	}
}

// ReferralsHandler returns the caller's referral code and referred users
func ReferralsHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		refs, err := users.ListReferrals(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusOK, "", gin.H{"referral_code": refs.Code, "referrals": refs.Users})
	}
}
