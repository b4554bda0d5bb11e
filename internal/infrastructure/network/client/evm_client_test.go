package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	marketAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	ownerAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	userAddr   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

func (a callArgs) payload() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

type sentTx struct {
	from   common.Address
	to     common.Address
	method string
	args   []any
}

// fakeChain answers eth_call and eth_sendTransaction by decoding calldata
// with the same ABIs the contracts use.
type fakeChain struct {
	mu           sync.Mutex
	market       entity.Market
	shares       entity.SharesBalance
	balance      *big.Int
	sent         []sentTx
	receipts     map[common.Hash]*types.Receipt
	pendingPolls int
	revert       bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		market: entity.Market{
			Question: "Will it rain?",
			Options:  [4]string{"Yes", "No", "Maybe", "Snow"},
			EndTime:  time.Unix(1_900_000_000, 0).UTC(),
			Outcome:  2,
			Shares:   [4]*big.Int{big.NewInt(10), big.NewInt(20), big.NewInt(0), big.NewInt(5)},
			Resolved: true,
		},
		shares:   entity.SharesBalance{big.NewInt(0), big.NewInt(3_000_000), big.NewInt(0), big.NewInt(0)},
		balance:  big.NewInt(42_500_000),
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

func lookupMethod(data []byte) (*abi.Method, error) {
	if len(data) < 4 {
		return nil, errors.New("short calldata")
	}
	for _, parsed := range []abi.ABI{MarketABI(), ERC20ABI(), parsedMintToABI, parsedMintABI} {
		if m, err := parsed.MethodById(data[:4]); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown selector %x", data[:4])
}

func (f *fakeChain) Call(args callArgs, _ string) (hexutil.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := args.payload()
	method, err := lookupMethod(data)
	if err != nil {
		return nil, err
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	var out []any
	switch method.Name {
	case "owner":
		out = []any{ownerAddr}
	case "marketCount":
		out = []any{big.NewInt(3)}
	case "getMarketInfo":
		m := f.market
		out = []any{m.Question, m.Options[0], m.Options[1], m.Options[2], m.Options[3],
			big.NewInt(m.EndTime.Unix()), m.Outcome, m.Shares[0], m.Shares[1], m.Shares[2], m.Shares[3], m.Resolved}
	case "getSharesBalance":
		out = []any{f.shares[0], f.shares[1], f.shares[2], f.shares[3]}
	case "getUserShares":
		for i := 0; i < 4; i++ {
			if in[2+i].(bool) {
				out = []any{f.shares[i]}
			}
		}
	case "balanceOf", "allowance":
		out = []any{f.balance}
	default:
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}
	return method.Outputs.Pack(out...)
}

func (f *fakeChain) SendTransaction(args callArgs) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := args.payload()
	method, err := lookupMethod(data)
	if err != nil {
		return common.Hash{}, err
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, sentTx{from: *args.From, to: *args.To, method: method.Sig, args: in})

	hash := common.BigToHash(big.NewInt(int64(len(f.sent))))
	status := types.ReceiptStatusSuccessful
	if f.revert {
		status = types.ReceiptStatusFailed
	}
	f.receipts[hash] = &types.Receipt{
		Status:            status,
		CumulativeGasUsed: 21000,
		GasUsed:           21000,
		TxHash:            hash,
		Logs:              []*types.Log{},
		BlockNumber:       big.NewInt(1),
	}
	return hash, nil
}

func (f *fakeChain) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingPolls > 0 {
		f.pendingPolls--
		return nil, nil
	}
	return f.receipts[hash], nil
}

func newTestClient(t *testing.T, chain *fakeChain) *EVMClient {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", chain))
	rpcClient := rpc.DialInProc(srv)
	t.Cleanup(func() {
		rpcClient.Close()
		srv.Stop()
	})
	return NewEVMClient(rpcClient, time.Second, 5*time.Millisecond, 2*time.Second, zap.NewNop())
}

func TestMarketReads(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	market := NewMarketContract(newTestClient(t, chain), marketAddr, userAddr)
	ctx := context.Background()

	owner, err := market.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	count, err := market.MarketCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	info, err := market.GetMarketInfo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.ID)
	assert.Equal(t, "Will it rain?", info.Question)
	assert.Equal(t, [4]string{"Yes", "No", "Maybe", "Snow"}, info.Options)
	assert.Equal(t, chain.market.EndTime, info.EndTime)
	assert.Equal(t, uint8(2), info.Outcome)
	assert.Equal(t, int64(20), info.Shares[1].Int64())
	assert.True(t, info.Resolved)

	winner, ok := info.WinningOutcome()
	require.True(t, ok)
	assert.Equal(t, entity.OutcomeB, winner)

	balance, err := market.GetSharesBalance(ctx, 1, userAddr)
	require.NoError(t, err)
	assert.True(t, balance.Any())
	assert.Equal(t, int64(3_000_000), balance[1].Int64())

	shares, err := market.GetUserShares(ctx, 1, userAddr, entity.OutcomeB)
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), shares.Int64())
}

func TestBuySharesWaitsForReceipt(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	chain.pendingPolls = 2
	market := NewMarketContract(newTestClient(t, chain), marketAddr, userAddr)

	receipt, err := market.BuyShares(context.Background(), 4, entity.OutcomeC, big.NewInt(1_500_000))
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	require.Len(t, chain.sent, 1)
	tx := chain.sent[0]
	assert.Equal(t, userAddr, tx.from)
	assert.Equal(t, marketAddr, tx.to)
	assert.Equal(t, "buyShares(uint256,bool,bool,bool,bool,uint256)", tx.method)
	assert.Equal(t, []any{big.NewInt(4), false, false, true, false, big.NewInt(1_500_000)}, tx.args)
}

func TestCreateMarketSendsDurationInSeconds(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	market := NewMarketContract(newTestClient(t, chain), marketAddr, ownerAddr)

	_, err := market.CreateMarket(context.Background(), entity.CreateMarketRequest{
		Question: "Q?",
		Options:  [4]string{"a", "b", "c", "d"},
		Duration: 90 * time.Minute,
	})
	require.NoError(t, err)
	require.Len(t, chain.sent, 1)
	assert.Equal(t, big.NewInt(5400), chain.sent[0].args[5])
}

func TestRevertedTransactionFails(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	chain.revert = true
	market := NewMarketContract(newTestClient(t, chain), marketAddr, userAddr)

	_, err := market.ClaimWinning(context.Background(), 0)
	require.ErrorIs(t, err, entity.ErrTransactionFailed)
}

func TestTokenReadsAndMintVariants(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	client := newTestClient(t, chain)
	ctx := context.Background()

	token := NewTokenContract(client, tokenAddr, userAddr, MintToAmount)
	balance, err := token.BalanceOf(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(42_500_000), balance.Int64())

	_, err = token.Approve(ctx, marketAddr, big.NewInt(7))
	require.NoError(t, err)
	_, err = token.Mint(ctx, userAddr, big.NewInt(1000))
	require.NoError(t, err)

	amountOnly := NewTokenContract(client, tokenAddr, userAddr, MintAmount)
	_, err = amountOnly.Mint(ctx, userAddr, big.NewInt(1000))
	require.NoError(t, err)

	require.Len(t, chain.sent, 3)
	assert.Equal(t, "approve(address,uint256)", chain.sent[0].method)
	assert.Equal(t, "mint(address,uint256)", chain.sent[1].method)
	assert.Equal(t, []any{userAddr, big.NewInt(1000)}, chain.sent[1].args)
	assert.Equal(t, "mint(uint256)", chain.sent[2].method)
}

func TestContractProviderCachesPerAccount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newFakeChain())
	factory, err := NewContractProvider(client, marketAddr.Hex(), "", MintToAmount, zap.NewNop())
	require.NoError(t, err)

	first, err := factory.Market(userAddr)
	require.NoError(t, err)
	second, err := factory.Market(userAddr)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := factory.Market(ownerAddr)
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, err = factory.Token(userAddr)
	require.Error(t, err)

	_, err = NewContractProvider(client, "not-an-address", "", MintToAmount, zap.NewNop())
	require.Error(t, err)
	_, err = NewContractProvider(client, "", tokenAddr.Hex(), MintToAmount, zap.NewNop())
	require.Error(t, err)
}
