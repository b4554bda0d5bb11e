package entity

import "github.com/ethereum/go-ethereum/common"

// Session is a read-only snapshot of the wallet session.
type Session struct {
	Account        string `json:"account,omitempty"`
	Connected      bool   `json:"connected"`
	NetworkMatches bool   `json:"networkMatches"`
	IsOwner        bool   `json:"isOwner"`
	HasContract    bool   `json:"hasContract"`
	ChainID        uint64 `json:"chainId,omitempty"`
}

// WalletEventKind identifies a wallet-originated notification.
type WalletEventKind int

const (
	AccountsChanged WalletEventKind = iota
	ChainChanged
)

func (k WalletEventKind) String() string {
	switch k {
	case AccountsChanged:
		return "accountsChanged"
	case ChainChanged:
		return "chainChanged"
	default:
		return "unknown"
	}
}

// WalletEvent is an account or chain change reported by the wallet.
type WalletEvent struct {
	Kind     WalletEventKind
	Accounts []common.Address
	ChainID  uint64
}
