package service

import (
	"context" // Request context
	"errors"  // Error inspection
	"regexp"  // Username format
	"strings" // String normalisation
	"time"    // Token lifetime

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/mailer" // Welcome email
	"wallet_booking/internal/store"  // Store errors
	"wallet_booking/internal/utils"  // JWT, cache and pagination

	"github.com/google/uuid"     // Referral code source
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// UserStore is the persistence the user use cases need
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User, referralBonus float64) error
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error)
	ListUsers(ctx context.Context, p utils.Page) ([]domain.User, int64, error)
	ListReferrals(ctx context.Context, id uint) ([]domain.User, error)
	UpdateUser(ctx context.Context, id uint, fields map[string]any) error
	DeleteUser(ctx context.Context, id uint) error
}

// Users handles registration, login and user administration
type Users struct {
	store         UserStore
	mail          Mailer
	cache         *utils.Cache
	jwtSecret     string        // HMAC key for session tokens
	jwtTTL        time.Duration // Session lifetime
	referralBonus float64       // USDT paid to a referrer per signup
}

// UsersConfig carries the settings Users needs
type UsersConfig struct {
	JWTSecret     string
	JWTTTL        time.Duration
	ReferralBonus float64
}

// NewUsers wires the user use cases
func NewUsers(s UserStore, m Mailer, c *utils.Cache, cfg UsersConfig) *Users {
	return &Users{
		store:         s,
		mail:          m,
		cache:         c,
		jwtSecret:     cfg.JWTSecret,
		jwtTTL:        cfg.JWTTTL,
		referralBonus: cfg.ReferralBonus,
	}
}

// RegisterInput is a signup request
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	ReferralCode string
}

// UpdateUserInput holds admin edits, nil fields are left alone
type UpdateUserInput struct {
	Role  *string
	Email *string
	BTC   *float64
	USDT  *float64
	ETH   *float64
}

// Referrals is the caller's referral code and who signed up with it
type Referrals struct {
	Code  string         `json:"referral_code"`
	Users []ReferralView `json:"users"`
}

// ReferralView is the public part of a referred user
type ReferralView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z]{3,32}$`)

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}

// Register creates a user, crediting the referrer when a valid code is given
func (s *Users) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	// Validate username
	if !usernamePattern.MatchString(in.Username) {
		return nil, invalid("Username must be 3-32 alphabetic characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email)) // Emails are stored lower-cased
	// Validate email
	if !validEmail(email) {
		return nil, invalid("Invalid email address")
	}
	// Validate password
	if !isValidPassword(in.Password) {
		return nil, invalid("Password must be 8-64 characters")
	}

	var referrer *domain.User // Set when a referral code was given
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		ref, err := s.store.GetUserByReferralCode(ctx, code) // Find the code's owner
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid("Unknown referral code")
		}
		if err != nil {
			return nil, err
		}
		referrer = ref
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost) // Hash password
	if err != nil {
		return nil, err
	}
	// Create user
	u := &domain.User{
		Username:     strings.ToLower(in.Username),
		Email:        email,
		Password:     string(hash),
		Role:         domain.RoleUser,
		ReferralCode: newReferralCode(),
	}
	if referrer != nil {
		u.ReferredByID = &referrer.ID
	}
	// Save user, crediting the referrer in the same transaction
	if err := s.store.CreateUser(ctx, u, s.referralBonus); err != nil {
		// Username or email taken
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("Username or email already exists")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     u.ID,
		"referred_by": u.ReferredByID,
	}).Info("User registered")
	if referrer != nil && s.referralBonus > 0 {
		s.cache.Invalidate(ctx, balanceKeys(referrer.ID)...) // Referrer's balance changed
	} else {
		s.cache.Invalidate(ctx, keyUsers) // New row in the admin list
	}
	notify(ctx, s.mail, mailer.Compose(u.Email, "Welcome aboard",
		"Hi "+u.Username+", your account is ready.",
		"Your referral code is "+u.ReferralCode+"."))
	return u, nil
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Login checks credentials and returns a session token
func (s *Users) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	errCreds := newError(ErrUnauthorized, "Invalid credentials") // Same answer for unknown user and bad password
	u, err := s.store.GetUserByLogin(ctx, login)                 // Find user by username or email
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, errCreds
	}
	if err != nil {
		return "", nil, err
	}
	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errCreds
	}
	token, err := utils.GenerateJWT(u.ID, u.Role, s.jwtSecret, s.jwtTTL) // Generate JWT
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Me returns the caller's own record
func (s *Users) Me(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, id)
	return u, fromStore(err, "User")
}

// ListUsers returns one page of users for an admin
func (s *Users) ListUsers(ctx context.Context, callerID uint, p utils.Page) (PageResult[domain.User], error) {
	if _, err := requireAdmin(ctx, s.store, callerID); err != nil {
		return PageResult[domain.User]{}, err
	}
	key := pageKey(keyUsers, p) // Cache key per page
	var res PageResult[domain.User]
	// Try to get from cache
	if found, err := s.cache.Get(ctx, key, &res); err == nil && found {
		res.Cached = true
		return res, nil
	}
	// Fetch from DB
	users, total, err := s.store.ListUsers(ctx, p)
	if err != nil {
		return res, err
	}
	res = newPage(users, p, total)
	_ = s.cache.Set(ctx, key, res) // Cache the page
	return res, nil
}

// GetUser returns any user for an admin
func (s *Users) GetUser(ctx context.Context, callerID, id uint) (*domain.User, error) {
	if _, err := requireAdmin(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, id)
	return u, fromStore(err, "User")
}

// UpdateUser lets an admin change a user's role, email or balances
func (s *Users) UpdateUser(ctx context.Context, callerID, id uint, in UpdateUserInput) (*domain.User, error) {
	if _, err := requireAdmin(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	fields := map[string]any{} // Columns to update
	// Validate role
	if in.Role != nil {
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return nil, invalid("Role must be user or admin")
		}
		if id == callerID && *in.Role != domain.RoleAdmin {
			return nil, invalid("Admins cannot demote themselves")
		}
		fields["role"] = *in.Role
	}
	// Validate email
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !validEmail(email) {
			return nil, invalid("Invalid email address")
		}
		fields["email"] = email
	}
	// Validate balances
	for coin, v := range map[domain.Coin]*float64{domain.BTC: in.BTC, domain.USDT: in.USDT, domain.ETH: in.ETH} {
		if v == nil {
			continue // Not being changed
		}
		if *v < 0 || !(validAmount(*v) || *v == 0) {
			return nil, invalid("%s balance must be a non-negative number", strings.ToUpper(string(coin)))
		}
		fields[coin.Column()] = *v
	}
	if len(fields) == 0 {
		return nil, invalid("Nothing to update")
	}

	if err := s.store.UpdateUser(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("Email already in use")
		}
		return nil, fromStore(err, "User")
	}
	logrus.WithFields(logrus.Fields{
		"admin_id": callerID,
		"user_id":  id,
		"fields":   fields,
	}).Info("User updated by admin")
	s.cache.Invalidate(ctx, balanceKeys(id)...) // Invalidate cache

	u, err := s.store.GetUser(ctx, id) // Reload with the new values
	return u, fromStore(err, "User")
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (s *Users) DeleteUser(ctx context.Context, callerID, id uint) error {
	if _, err := requireAdmin(ctx, s.store, callerID); err != nil {
		return err
	}
	// Prevent deleting self
	if id == callerID {
		return invalid("Admins cannot delete themselves")
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fromStore(err, "User")
	}
	logrus.WithFields(logrus.Fields{"admin_id": callerID, "user_id": id}).Info("User deleted")
	s.cache.Invalidate(ctx, append(balanceKeys(id), dashboardKey(id))...) // Invalidate cache
	return nil
}

// ListReferrals returns the caller's referral code and referred users
func (s *Users) ListReferrals(ctx context.Context, id uint) (*Referrals, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fromStore(err, "User")
	}
	users, err := s.store.ListReferrals(ctx, id) // Users who signed up with the code
	if err != nil {
		return nil, err
	}
	// Expose only public fields
	out := &Referrals{Code: u.ReferralCode, Users: make([]ReferralView, 0, len(users))}
	for _, r := range users {
		out.Users = append(out.Users, ReferralView{ID: r.ID, Username: r.Username, CreatedAt: r.CreatedAt})
	}
	return out, nil
}
