package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var _ port.WalletProvider = (*RPCWallet)(nil)

// Options configures an RPCWallet.
type Options struct {
	RequestTimeout    time.Duration
	PollInterval      time.Duration
	RequestsPerSecond float64
	Burst             int
}

func (o *Options) setDefaults() {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 2 * time.Minute
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 20
	}
	if o.Burst <= 0 {
		o.Burst = 5
	}
}

// RPCWallet talks to an EIP-1193 compatible wallet exposed over JSON-RPC,
// such as a Frame or a local signer endpoint.
type RPCWallet struct {
	client  *rpc.Client
	limiter *rate.Limiter
	opts    Options
	logger  *zap.Logger
}

// Dial connects to the wallet at rawURL. An empty URL means no wallet is
// installed and yields entity.ErrWalletUnavailable.
func Dial(ctx context.Context, rawURL string, opts Options, logger *zap.Logger) (*RPCWallet, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: no wallet endpoint configured", entity.ErrWalletUnavailable)
	}
	opts.setDefaults()

	httpClient := &http.Client{Timeout: opts.RequestTimeout}
	client, err := rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", entity.ErrWalletUnavailable, rawURL, err)
	}
	return NewRPCWallet(client, opts, logger), nil
}

// NewRPCWallet wraps an already connected client.
func NewRPCWallet(client *rpc.Client, opts Options, logger *zap.Logger) *RPCWallet {
	opts.setDefaults()
	return &RPCWallet{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		opts:    opts,
		logger:  logger.Named("RPCWallet"),
	}
}

// Client returns the underlying connection, shared with the contract client
// so transactions are signed by the same wallet.
func (w *RPCWallet) Client() *rpc.Client {
	return w.client
}

// Close releases the underlying connection.
func (w *RPCWallet) Close() {
	w.client.Close()
}

// call performs one throttled request. Errors the wallet answered with keep
// their JSON-RPC code; anything else means the wallet could not be reached.
func (w *RPCWallet) call(ctx context.Context, result any, method string, args ...any) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()

	err := w.client.CallContext(callCtx, result, method, args...)
	if err == nil {
		return nil
	}
	if _, ok := utils.RPCErrorCode(err); ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrWalletUnavailable, method, err)
}

func (w *RPCWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := w.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (w *RPCWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := w.call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (w *RPCWallet) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := w.call(ctx, &id, "eth_chainId"); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

func (w *RPCWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	return w.call(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: hexutil.EncodeUint64(chainID)})
}

type addChainParams struct {
	ChainID           string                `json:"chainId"`
	ChainName         string                `json:"chainName"`
	NativeCurrency    entity.NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string              `json:"rpcUrls"`
	BlockExplorerURLs []string              `json:"blockExplorerUrls,omitempty"`
}

func (w *RPCWallet) AddChain(ctx context.Context, def entity.NetworkDefinition) error {
	params := addChainParams{
		ChainID:           def.HexChainID(),
		ChainName:         def.Name,
		NativeCurrency:    def.NativeCurrency,
		RPCURLs:           def.RPCURLs,
		BlockExplorerURLs: def.ExplorerURLs,
	}
	return w.call(ctx, nil, "wallet_addEthereumChain", params)
}

// Subscribe polls the wallet and reports account and chain changes relative
// to the state observed when the subscription started. The channel is closed
// once ctx is done.
func (w *RPCWallet) Subscribe(ctx context.Context) (<-chan entity.WalletEvent, error) {
	accounts, err := w.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	chainID, err := w.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	events := make(chan entity.WalletEvent)
	go w.poll(ctx, events, accounts, chainID)
	return events, nil
}

func (w *RPCWallet) poll(ctx context.Context, events chan<- entity.WalletEvent, accounts []common.Address, chainID uint64) {
	defer close(events)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	emit := func(ev entity.WalletEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := w.Accounts(ctx)
		if err != nil {
			w.logger.Debug("Polling accounts failed", zap.Error(err))
			continue
		}
		if !slices.Equal(current, accounts) {
			accounts = current
			if !emit(entity.WalletEvent{Kind: entity.AccountsChanged, Accounts: current}) {
				return
			}
		}

		id, err := w.ChainID(ctx)
		if err != nil {
			w.logger.Debug("Polling chain id failed", zap.Error(err))
			continue
		}
		if id != chainID {
			chainID = id
			if !emit(entity.WalletEvent{Kind: entity.ChainChanged, ChainID: id}) {
				return
			}
		}
	}
}
