package session

import (
	"context"
	"errors"
	"sync"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

type codedError struct {
	code int
}

func (e *codedError) Error() string  { return "wallet error" }
func (e *codedError) ErrorCode() int { return e.code }

type fakeWallet struct {
	mu          sync.Mutex
	accounts    []common.Address
	requestErr  error
	chainID     uint64
	known       map[uint64]bool
	switchErr   error
	addErr      error
	chainErr    error
	switchCalls int
	addCalls    int
	acctCalls   int
	events      chan entity.WalletEvent
	// subscribeFailures is how many Subscribe calls fail before one succeeds.
	subscribeFailures int
	subCalls          int
}

func newFakeWallet(chainID uint64, accounts ...common.Address) *fakeWallet {
	return &fakeWallet{
		accounts: accounts,
		chainID:  chainID,
		known:    map[uint64]bool{chainID: true},
		events:   make(chan entity.WalletEvent),
	}
}

func (f *fakeWallet) Accounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acctCalls++
	return append([]common.Address{}, f.accounts...), nil
}

func (f *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return append([]common.Address{}, f.accounts...), nil
}

func (f *fakeWallet) ChainID(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chainErr != nil {
		return 0, f.chainErr
	}
	return f.chainID, nil
}

func (f *fakeWallet) SwitchChain(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switchCalls++
	if f.switchErr != nil {
		return f.switchErr
	}
	if !f.known[id] {
		return &codedError{code: utils.CodeChainUnsupported}
	}
	f.chainID = id
	return nil
}

func (f *fakeWallet) AddChain(_ context.Context, def entity.NetworkDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	f.known[def.ChainID] = true
	f.chainID = def.ChainID
	return nil
}

func (f *fakeWallet) Subscribe(context.Context) (<-chan entity.WalletEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subCalls++
	if f.subscribeFailures > 0 {
		f.subscribeFailures--
		return nil, errors.New("dial wallet: connection refused")
	}
	return f.events, nil
}

func (f *fakeWallet) subscribeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subCalls
}

func (f *fakeWallet) set(fn func(f *fakeWallet)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeWallet) accountCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acctCalls
}

// fakeMarket implements only the calls the session makes.
type fakeMarket struct {
	port.MarketContract
	from    common.Address
	factory *fakeFactory
}

func (m *fakeMarket) Owner(context.Context) (common.Address, error) {
	m.factory.mu.Lock()
	defer m.factory.mu.Unlock()
	m.factory.ownerCalls++
	return m.factory.owner, m.factory.ownerErr
}

type fakeToken struct {
	port.TokenContract
	from common.Address
}

type fakeFactory struct {
	mu         sync.Mutex
	owner      common.Address
	ownerErr   error
	ownerCalls int
	// marketErr fails every bind; marketFailures fails only the next n.
	marketErr      error
	marketFailures int
	marketCalls    int
}

var errBind = errors.New("no contract code at address")

func (f *fakeFactory) Market(from common.Address) (port.MarketContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marketCalls++
	if f.marketFailures > 0 {
		f.marketFailures--
		return nil, errBind
	}
	if f.marketErr != nil {
		return nil, f.marketErr
	}
	return &fakeMarket{from: from, factory: f}, nil
}

func (f *fakeFactory) set(fn func(f *fakeFactory)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeFactory) Token(from common.Address) (port.TokenContract, error) {
	return &fakeToken{from: from}, nil
}

func (f *fakeFactory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ownerCalls
}

type toast struct {
	level entity.NotificationLevel
	msg   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *recordingNotifier) add(level entity.NotificationLevel, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{level: level, msg: msg})
}

func (n *recordingNotifier) Info(msg string)    { n.add(entity.NotifyInfo, msg) }
func (n *recordingNotifier) Success(msg string) { n.add(entity.NotifySuccess, msg) }
func (n *recordingNotifier) Error(msg string)   { n.add(entity.NotifyError, msg) }
func (n *recordingNotifier) Loading(msg string) { n.add(entity.NotifyLoading, msg) }

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.toasts))
	for _, t := range n.toasts {
		out = append(out, t.msg)
	}
	return out
}
