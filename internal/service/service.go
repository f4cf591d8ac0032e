// Package service holds the application's use cases: validation,
// authorization and orchestration of the store, cache, quotes and mail.
package service

import (
	"context" // Request context
	"math"    // Finite amount checks
	"strconv" // Cache key parts
	"strings" // Cache key joining

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/mailer" // Message type
	"wallet_booking/internal/utils"  // Pagination

	"github.com/go-playground/validator/v10" // Email validation
	"github.com/sirupsen/logrus"             // Logging
)

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// PriceSource returns USD prices per coin
type PriceSource interface {
	Prices(ctx context.Context) (map[domain.Coin]float64, error)
}

type userGetter interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)
}

// PageResult is one page of a listing
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Cached     bool  `json:"cached"` // Served from Redis
}

func newPage[T any](items []T, p utils.Page, total int64) PageResult[T] {
	if items == nil {
		items = []T{} // Encode as [] not null
	}
	return PageResult[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}

var validate = validator.New()

func validEmail(s string) bool {
	return validate.Var(s, "required,email,max=191") == nil
}

// validAmount rejects zero, negative and non-finite amounts
func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func parseCoin(s string) (domain.Coin, error) {
	c, ok := domain.ParseCoin(s)
	if !ok {
		return "", invalid("Unsupported coin %q", s)
	}
	return c, nil
}

// requireAdmin loads the caller and fails unless they are an admin
func requireAdmin(ctx context.Context, users userGetter, callerID uint) (*domain.User, error) {
	u, err := users.GetUser(ctx, callerID)
	if err != nil {
		return nil, fromStore(err, "User")
	}
	if !u.IsAdmin() {
		return nil, errAdminOnly
	}
	return u, nil
}

// notify sends msg and only logs failures
func notify(ctx context.Context, m Mailer, msg mailer.Message) {
	if m == nil || msg.To == "" {
		return // Mail disabled
	}
	if err := m.Send(ctx, msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
			"error":   err.Error(),
		}).Warn("Email notification failed")
	}
}

func uid(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// Cache key prefixes. Each ends in ":" so one user's prefix never matches another's.
const (
	keyUsers          = "admin:users:"
	keyFlights        = "flights:"
	keyPaymentMethods = "payment-methods:"
)

func walletKey(userID uint) string    { return "wallet:user:" + uid(userID) + ":" }
func historyKey(userID uint) string   { return "txhistory:user:" + uid(userID) + ":" }
func dashboardKey(userID uint) string { return "dashboard:user:" + uid(userID) + ":" }

// balanceKeys lists the cache prefixes holding the users' balances,
// the admin user list included
func balanceKeys(ids ...uint) []string {
	keys := []string{keyUsers}
	for _, id := range ids {
		keys = append(keys, walletKey(id), historyKey(id))
	}
	return keys
}

func pageKey(prefix string, p utils.Page, parts ...string) string {
	return prefix + strings.Join(append(parts, "page="+strconv.Itoa(p.Page), "size="+strconv.Itoa(p.PageSize)), ":")
}
