package entity

import "time"

// Comment is a wallet-signed-in remark attached to a market.
type Comment struct {
	ID            string    `json:"id"`
	MarketID      int64     `json:"market_id"`
	WalletAddress string    `json:"wallet_address"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CommentInput is the body of a create-comment request. MarketID is a pointer
// so a missing field can be told apart from market 0.
type CommentInput struct {
	MarketID      *int64 `json:"marketId"`
	WalletAddress string `json:"walletAddress"`
	Content       string `json:"content"`
}
