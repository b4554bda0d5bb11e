package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

// maxMarketCount bounds the marketCount() value the service will page through.
const maxMarketCount = 10_000

// MarketServiceConfig holds the token amounts and read concurrency.
type MarketServiceConfig struct {
	TokenSymbol        string
	TokenDecimals      uint8
	ApproveAmount      string // whole tokens
	MintAmount         string // whole tokens
	MaxConcurrentReads int
}

// MarketServiceImpl implements port.MarketService.
type MarketServiceImpl struct {
	session       port.SessionReader
	executor      port.TxExecutor
	logger        port.Logger
	symbol        string
	decimals      uint8
	approveAmount *big.Int
	mintAmount    *big.Int
	mintDisplay   string
	maxRoutines   int
	now           func() time.Time
}

// NewMarketService creates a new instance of MarketServiceImpl.
func NewMarketService(
	session port.SessionReader,
	executor port.TxExecutor,
	l port.Logger,
	cfg MarketServiceConfig,
) (*MarketServiceImpl, error) {
	if cfg.MaxConcurrentReads <= 0 {
		cfg.MaxConcurrentReads = 1
	}
	if cfg.TokenSymbol == "" {
		cfg.TokenSymbol = "USDC"
	}
	approve, err := utils.ParseUnits(cfg.ApproveAmount, cfg.TokenDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid approve amount: %w", err)
	}
	mint, err := utils.ParseUnits(cfg.MintAmount, cfg.TokenDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid mint amount: %w", err)
	}
	return &MarketServiceImpl{
		session:       session,
		executor:      executor,
		logger:        l,
		symbol:        cfg.TokenSymbol,
		decimals:      cfg.TokenDecimals,
		approveAmount: approve,
		mintAmount:    mint,
		mintDisplay:   cfg.MintAmount,
		maxRoutines:   cfg.MaxConcurrentReads,
		now:           time.Now,
	}, nil
}

var _ port.MarketService = (*MarketServiceImpl)(nil)

// ListMarkets reads every market the contract knows about, ids 0..count-1.
func (s *MarketServiceImpl) ListMarkets(ctx context.Context) ([]entity.Market, error) {
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	count, err := s.marketCount(ctx, contract)
	if err != nil {
		s.logger.Error("Failed to read market count", "error", err)
		return nil, err
	}

	markets := make([]entity.Market, count)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxRoutines)
	for i := uint64(0); i < count; i++ {
		g.Go(func() error {
			m, err := contract.GetMarketInfo(gCtx, i)
			if err != nil {
				return fmt.Errorf("read market %d: %w", i, err)
			}
			markets[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Error loading markets", "error", err)
		return nil, err
	}

	s.logger.Debug("Markets loaded", "count", count)
	return markets, nil
}

func (s *MarketServiceImpl) marketCount(ctx context.Context, contract port.MarketContract) (uint64, error) {
	count, err := contract.MarketCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("read market count: %w", err)
	}
	if count > maxMarketCount {
		return 0, fmt.Errorf("market count %d exceeds limit %d", count, maxMarketCount)
	}
	return count, nil
}

// GetMarket reads one market and, when a wallet is connected, the caller's
// shares in each option.
func (s *MarketServiceImpl) GetMarket(ctx context.Context, id uint64) (entity.MarketDetail, error) {
	contract, err := s.session.Contract()
	if err != nil {
		return entity.MarketDetail{}, err
	}
	market, err := contract.GetMarketInfo(ctx, id)
	if err != nil {
		return entity.MarketDetail{}, fmt.Errorf("read market %d: %w", id, err)
	}
	detail := entity.MarketDetail{Market: market}

	account, ok := s.session.Account()
	if !ok {
		return detail, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for o := entity.OutcomeA; o <= entity.OutcomeD; o++ {
		g.Go(func() error {
			shares, err := contract.GetUserShares(gCtx, id, account, o)
			if err != nil {
				return fmt.Errorf("read shares of option %s: %w", o, err)
			}
			detail.UserShares[o] = shares
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Error loading user shares", "market", id, "error", err)
		return entity.MarketDetail{}, err
	}
	return detail, nil
}

// Positions returns the markets in which the connected account holds shares.
func (s *MarketServiceImpl) Positions(ctx context.Context) ([]entity.Position, error) {
	account, ok := s.session.Account()
	if !ok {
		return nil, entity.ErrWalletNotConnected
	}
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	count, err := s.marketCount(ctx, contract)
	if err != nil {
		return nil, err
	}

	all := make([]*entity.Position, count)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxRoutines)
	for i := uint64(0); i < count; i++ {
		g.Go(func() error {
			market, err := contract.GetMarketInfo(gCtx, i)
			if err != nil {
				return fmt.Errorf("read market %d: %w", i, err)
			}
			shares, err := contract.GetSharesBalance(gCtx, i, account)
			if err != nil {
				return fmt.Errorf("read shares for market %d: %w", i, err)
			}
			if !shares.Any() {
				return nil
			}
			pos := &entity.Position{Market: market, Shares: shares}
			if winner, ok := market.WinningOutcome(); ok {
				pos.Claimable = shares[winner] != nil && shares[winner].Sign() > 0
			}
			all[i] = pos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Error loading positions", "error", err)
		return nil, err
	}

	positions := make([]entity.Position, 0)
	for _, p := range all {
		if p != nil {
			positions = append(positions, *p)
		}
	}
	return positions, nil
}

// BuyShares spends amount tokens on outcome after the allowance check and
// the user's confirmation.
func (s *MarketServiceImpl) BuyShares(ctx context.Context, id uint64, outcome entity.Outcome, amount string) (*types.Receipt, error) {
	if outcome > entity.OutcomeD {
		return nil, entity.ValidationError("unknown option")
	}
	value, err := utils.ParseUnits(amount, s.decimals)
	if err != nil {
		return nil, entity.ValidationError(err.Error())
	}
	if value.Sign() <= 0 {
		return nil, entity.ValidationError("amount must be greater than zero")
	}

	account, ok := s.session.Account()
	if !ok {
		return nil, entity.ErrWalletNotConnected
	}
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}

	market, err := contract.GetMarketInfo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read market %d: %w", id, err)
	}
	if market.Resolved {
		return nil, entity.ValidationError("this market has been resolved")
	}
	if market.Expired(s.now()) {
		return nil, entity.ValidationError("this market has expired")
	}

	allowance, err := token.Allowance(ctx, account, contract.Address())
	if err != nil {
		return nil, fmt.Errorf("read allowance: %w", err)
	}
	if allowance.Cmp(value) < 0 {
		return nil, entity.ValidationError(fmt.Sprintf("insufficient allowance. Please approve %s first", s.symbol))
	}

	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: fmt.Sprintf("Are you sure you want to bet %s %s on %q?", strings.TrimSpace(amount), s.symbol, market.Options[outcome]),
		SuccessMessage:     "Bet placed successfully!",
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return contract.BuyShares(ctx, id, outcome, value)
		},
	})
}

// ResolveMarket asks the contract to settle an expired market. Owner only.
func (s *MarketServiceImpl) ResolveMarket(ctx context.Context, id uint64) (*types.Receipt, error) {
	contract, err := s.ownerContract()
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: "Are you sure you want to resolve this market? This action cannot be undone.",
		SuccessMessage:     "Market resolved successfully!",
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return contract.ResolveMarket(ctx, id)
		},
	})
}

// ClaimWinnings pays out the caller's winning shares.
func (s *MarketServiceImpl) ClaimWinnings(ctx context.Context, id uint64) (*types.Receipt, error) {
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: "Are you sure you want to claim your winnings for this market?",
		SuccessMessage:     "Winnings claimed successfully!",
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return contract.ClaimWinning(ctx, id)
		},
	})
}

// CreateMarket opens a new market. Owner only.
func (s *MarketServiceImpl) CreateMarket(ctx context.Context, req entity.CreateMarketRequest) (*types.Receipt, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return nil, entity.ValidationError("question is required")
	}
	for i := range req.Options {
		req.Options[i] = strings.TrimSpace(req.Options[i])
		if req.Options[i] == "" {
			return nil, entity.ValidationError(fmt.Sprintf("option %s is required", entity.Outcome(i)))
		}
	}
	if req.Duration < time.Minute {
		return nil, entity.ValidationError("duration must be at least one minute")
	}

	contract, err := s.ownerContract()
	if err != nil {
		return nil, err
	}
	minutes := int64(req.Duration / time.Minute)
	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: fmt.Sprintf("Create market %q with duration %d minutes?", req.Question, minutes),
		SuccessMessage:     "Market created successfully!",
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return contract.CreateMarket(ctx, req)
		},
	})
}

func (s *MarketServiceImpl) ownerContract() (port.MarketContract, error) {
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	if !s.session.Snapshot().IsOwner {
		return nil, entity.ErrNotOwner
	}
	return contract, nil
}

// TokenStatus reads the caller's token balance and the allowance granted to
// the market contract.
func (s *MarketServiceImpl) TokenStatus(ctx context.Context) (entity.TokenStatus, error) {
	account, ok := s.session.Account()
	if !ok {
		return entity.TokenStatus{}, entity.ErrWalletNotConnected
	}
	contract, err := s.session.Contract()
	if err != nil {
		return entity.TokenStatus{}, err
	}
	token, err := s.session.Token()
	if err != nil {
		return entity.TokenStatus{}, err
	}

	status := entity.TokenStatus{Decimals: s.decimals}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status.Balance, err = token.BalanceOf(gCtx, account)
		return err
	})
	g.Go(func() error {
		var err error
		status.Allowance, err = token.Allowance(gCtx, account, contract.Address())
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.TokenStatus{}, fmt.Errorf("read token status: %w", err)
	}
	status.FormattedBalance = utils.FormatBigInt(status.Balance, s.decimals)
	status.FormattedAllowance = utils.FormatBigInt(status.Allowance, s.decimals)
	return status, nil
}

// ApproveToken lets the market contract spend the configured approve amount.
func (s *MarketServiceImpl) ApproveToken(ctx context.Context) (*types.Receipt, error) {
	contract, err := s.session.Contract()
	if err != nil {
		return nil, err
	}
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}
	spender, amount := contract.Address(), s.approveAmount
	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: fmt.Sprintf("Are you sure you want to approve %s spending?", s.symbol),
		SuccessMessage:     fmt.Sprintf("%s approval successful!", s.symbol),
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return token.Approve(ctx, spender, amount)
		},
	})
}

// MintToken mints test tokens to the connected account.
func (s *MarketServiceImpl) MintToken(ctx context.Context) (*types.Receipt, error) {
	account, ok := s.session.Account()
	if !ok {
		return nil, entity.ErrWalletNotConnected
	}
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}
	amount := s.mintAmount
	return s.executor.Execute(ctx, &entity.PendingTransaction{
		ConfirmationPrompt: fmt.Sprintf("Are you sure you want to mint %s %s?", s.mintDisplay, s.symbol),
		SuccessMessage:     fmt.Sprintf("%s %s minted successfully!", s.mintDisplay, s.symbol),
		Action: func(ctx context.Context) (*types.Receipt, error) {
			return token.Mint(ctx, account, amount)
		},
	})
}

// IsUserFacing reports whether err is a failure that has already been shown
// to the user and needs no further logging.
func IsUserFacing(err error) bool {
	return errors.Is(err, entity.ErrUserCancelled) || errors.Is(err, entity.ErrUserRejected)
}
