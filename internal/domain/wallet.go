package domain

import "strings" // String normalisation

// Coin identifies one of the balances held on a user row
type Coin string

// Supported coins
const (
	BTC  Coin = "btc"
	USDT Coin = "usdt"
	ETH  Coin = "eth"
)

// Coins lists every supported coin in display order
var Coins = []Coin{BTC, USDT, ETH}

// ParseCoin normalises s and reports whether it names a supported coin
func ParseCoin(s string) (Coin, bool) {
	c := Coin(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Valid reports whether c is a supported coin
func (c Coin) Valid() bool {
	switch c {
	case BTC, USDT, ETH:
		return true
	}
	return false
}

// Column returns the users table column holding the balance for c.
// Only valid coins reach SQL, callers must check Valid first.
func (c Coin) Column() string {
	return string(c)
}

// Balances is the per-coin view of a user's wallet
type Balances struct {
	BTC  float64 `json:"btc"`
	USDT float64 `json:"usdt"`
	ETH  float64 `json:"eth"`
}

// Of returns the balance held in coin c
func (b Balances) Of(c Coin) float64 {
	switch c {
	case BTC:
		return b.BTC
	case USDT:
		return b.USDT
	case ETH:
		return b.ETH
	}
	return 0
}
