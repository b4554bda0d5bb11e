package service

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

var (
	marketAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
)

type buyCall struct {
	id      uint64
	outcome entity.Outcome
	amount  *big.Int
}

type fakeMarket struct {
	mu      sync.Mutex
	markets []entity.Market
	shares  map[uint64]entity.SharesBalance
	readErr error
	buys    []buyCall
	claims  []uint64
	resolve []uint64
	created []entity.CreateMarketRequest
	// count overrides len(markets) when set.
	count uint64
	reads int
}

func (m *fakeMarket) Address() common.Address { return marketAddr }

func (m *fakeMarket) Owner(context.Context) (common.Address, error) { return alice, nil }

func (m *fakeMarket) MarketCount(context.Context) (uint64, error) {
	if m.count > 0 {
		return m.count, nil
	}
	return uint64(len(m.markets)), nil
}

func (m *fakeMarket) GetMarketInfo(_ context.Context, id uint64) (entity.Market, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if m.readErr != nil {
		return entity.Market{}, m.readErr
	}
	if id >= uint64(len(m.markets)) {
		return entity.Market{}, fmt.Errorf("market %d does not exist", id)
	}
	return m.markets[id], nil
}

func (m *fakeMarket) GetSharesBalance(_ context.Context, id uint64, _ common.Address) (entity.SharesBalance, error) {
	if s, ok := m.shares[id]; ok {
		return s, nil
	}
	return entity.SharesBalance{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)}, nil
}

func (m *fakeMarket) GetUserShares(ctx context.Context, id uint64, holder common.Address, o entity.Outcome) (*big.Int, error) {
	s, _ := m.GetSharesBalance(ctx, id, holder)
	return s[o], nil
}

func (m *fakeMarket) BuyShares(_ context.Context, id uint64, o entity.Outcome, amount *big.Int) (*types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buys = append(m.buys, buyCall{id: id, outcome: o, amount: amount})
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (m *fakeMarket) ResolveMarket(_ context.Context, id uint64) (*types.Receipt, error) {
	m.resolve = append(m.resolve, id)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (m *fakeMarket) ClaimWinning(_ context.Context, id uint64) (*types.Receipt, error) {
	m.claims = append(m.claims, id)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (m *fakeMarket) CreateMarket(_ context.Context, req entity.CreateMarketRequest) (*types.Receipt, error) {
	m.created = append(m.created, req)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type fakeToken struct {
	balance   *big.Int
	allowance *big.Int
	approved  []*big.Int
	minted    []*big.Int
}

func (t *fakeToken) Address() common.Address { return common.HexToAddress("0x2000000000000000000000000000000000000002") }

func (t *fakeToken) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return t.balance, nil
}

func (t *fakeToken) Allowance(_ context.Context, _, spender common.Address) (*big.Int, error) {
	if spender != marketAddr {
		return big.NewInt(0), nil
	}
	return t.allowance, nil
}

func (t *fakeToken) Approve(_ context.Context, _ common.Address, amount *big.Int) (*types.Receipt, error) {
	t.approved = append(t.approved, amount)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (t *fakeToken) Mint(_ context.Context, _ common.Address, amount *big.Int) (*types.Receipt, error) {
	t.minted = append(t.minted, amount)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type fakeSession struct {
	connected bool
	owner     bool
	market    *fakeMarket
	token     *fakeToken
	err       error
}

func (s *fakeSession) Snapshot() entity.Session {
	return entity.Session{Connected: s.connected, IsOwner: s.owner, NetworkMatches: s.err == nil, HasContract: s.connected && s.err == nil}
}

func (s *fakeSession) Account() (common.Address, bool) {
	if !s.connected {
		return common.Address{}, false
	}
	return alice, true
}

func (s *fakeSession) Contract() (port.MarketContract, error) {
	if !s.connected {
		return nil, entity.ErrWalletNotConnected
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.market, nil
}

func (s *fakeSession) Token() (port.TokenContract, error) {
	if _, err := s.Contract(); err != nil {
		return nil, err
	}
	return s.token, nil
}

// autoExecutor confirms every prompt and runs the action once.
type autoExecutor struct {
	confirm bool
	txs     []*entity.PendingTransaction
}

func (e *autoExecutor) Execute(ctx context.Context, tx *entity.PendingTransaction) (*types.Receipt, error) {
	e.txs = append(e.txs, tx)
	if !e.confirm {
		return nil, &entity.TxError{Kind: entity.ErrUserCancelled}
	}
	return tx.Action(ctx)
}

type memoryRepo struct {
	mu       sync.Mutex
	comments []entity.Comment
	err      error
}

func (r *memoryRepo) Create(_ context.Context, c entity.Comment) (entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return entity.Comment{}, r.err
	}
	r.comments = append(r.comments, c)
	return c, nil
}

func (r *memoryRepo) ListByMarket(_ context.Context, marketID int64) ([]entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Comment, 0)
	for _, c := range r.comments {
		if c.MarketID == marketID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func shares(a, b, c, d int64) entity.SharesBalance {
	return entity.SharesBalance{big.NewInt(a), big.NewInt(b), big.NewInt(c), big.NewInt(d)}
}

func openMarket(question string) entity.Market {
	return entity.Market{
		Question: question,
		Options:  [4]string{"Yes", "No", "Maybe", "Never"},
		EndTime:  time.Now().Add(time.Hour),
		Shares:   shares(0, 0, 0, 0),
	}
}
