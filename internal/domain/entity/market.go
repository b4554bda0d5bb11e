package entity

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Outcome is one of the four market options. On the wire the contract takes
// four booleans with exactly one set; as a resolved result it reports 1..4.
type Outcome uint8

const (
	OutcomeA Outcome = iota
	OutcomeB
	OutcomeC
	OutcomeD
)

// ParseOutcome accepts "A".."D" in any case.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return OutcomeA, nil
	case "B":
		return OutcomeB, nil
	case "C":
		return OutcomeC, nil
	case "D":
		return OutcomeD, nil
	}
	return 0, ValidationError(fmt.Sprintf("unknown option %q, expected A, B, C or D", s))
}

// Flags returns the boolean selector the contract expects.
func (o Outcome) Flags() (a, b, c, d bool) {
	return o == OutcomeA, o == OutcomeB, o == OutcomeC, o == OutcomeD
}

func (o Outcome) String() string {
	if o > OutcomeD {
		return "?"
	}
	return string(rune('A' + o))
}

// Market mirrors getMarketInfo. Outcome is 0 until resolved, then 1..4.
type Market struct {
	ID       uint64      `json:"id"`
	Question string      `json:"question"`
	Options  [4]string   `json:"options"`
	EndTime  time.Time   `json:"endTime"`
	Outcome  uint8       `json:"outcome"`
	Shares   [4]*big.Int `json:"totalShares"`
	Resolved bool        `json:"resolved"`
}

// Expired reports whether trading on the market has ended.
func (m Market) Expired(now time.Time) bool {
	return now.After(m.EndTime)
}

// Status is the label shown next to a market.
func (m Market) Status(now time.Time) string {
	switch {
	case m.Resolved:
		return "resolved"
	case m.Expired(now):
		return "expired"
	default:
		return "active"
	}
}

// WinningOutcome returns the winning option of a resolved market.
func (m Market) WinningOutcome() (Outcome, bool) {
	if !m.Resolved || m.Outcome < 1 || m.Outcome > 4 {
		return 0, false
	}
	return Outcome(m.Outcome - 1), true
}

// SharesBalance holds per-option share balances of one account.
type SharesBalance [4]*big.Int

// Any reports whether at least one option has a positive balance.
func (s SharesBalance) Any() bool {
	for _, v := range s {
		if v != nil && v.Sign() > 0 {
			return true
		}
	}
	return false
}

// MarketDetail is a market together with the caller's shares in it.
type MarketDetail struct {
	Market
	UserShares SharesBalance `json:"userShares,omitempty"`
}

// Position is a market in which the account holds shares.
type Position struct {
	Market    Market        `json:"market"`
	Shares    SharesBalance `json:"shares"`
	Claimable bool          `json:"claimable"`
}

// CreateMarketRequest describes a new market. Duration is rounded down to seconds.
type CreateMarketRequest struct {
	Question string        `json:"question"`
	Options  [4]string     `json:"options"`
	Duration time.Duration `json:"-"`
}

// TokenStatus is the caller's stablecoin position relative to the market contract.
type TokenStatus struct {
	Balance            *big.Int `json:"balance"`
	Allowance          *big.Int `json:"allowance"`
	FormattedBalance   string   `json:"formattedBalance"`
	FormattedAllowance string   `json:"formattedAllowance"`
	Decimals           uint8    `json:"decimals"`
}
