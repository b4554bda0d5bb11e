package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// EVMClient performs contract reads and wallet-signed writes through the
// wallet's JSON-RPC endpoint. The wallet holds the keys and signs every
// eth_sendTransaction itself.
type EVMClient struct {
	rpcClient       *rpc.Client
	ethClient       *ethclient.Client
	rpcCallTimeout  time.Duration
	receiptInterval time.Duration
	receiptTimeout  time.Duration
	logger          *zap.Logger
}

// NewEVMClient wraps client. Zero durations fall back to sensible defaults.
func NewEVMClient(client *rpc.Client, rpcCallTimeout, receiptInterval, receiptTimeout time.Duration, logger *zap.Logger) *EVMClient {
	initParsedABIs()
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = 30 * time.Second
	}
	if receiptInterval <= 0 {
		receiptInterval = 2 * time.Second
	}
	if receiptTimeout <= 0 {
		receiptTimeout = 3 * time.Minute
	}
	return &EVMClient{
		rpcClient:       client,
		ethClient:       ethclient.NewClient(client),
		rpcCallTimeout:  rpcCallTimeout,
		receiptInterval: receiptInterval,
		receiptTimeout:  receiptTimeout,
		logger:          logger.Named("EVMClient"),
	}
}

// Call executes a read-only contract call against the latest block.
func (c *EVMClient) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.ethClient.CallContract(callCtx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

type sendTxArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Transact asks the wallet to sign and send a transaction, then waits for it
// to be mined. A reverted transaction is reported as entity.ErrTransactionFailed.
func (c *EVMClient) Transact(ctx context.Context, from, to common.Address, data []byte) (*types.Receipt, error) {
	var hash common.Hash
	// no call timeout here, the wallet waits for the user to sign
	if err := c.rpcClient.CallContext(ctx, &hash, "eth_sendTransaction", sendTxArgs{From: from, To: to, Data: data}); err != nil {
		return nil, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	c.logger.Debug("Transaction submitted", zap.String("hash", hash.Hex()), zap.String("to", to.Hex()))

	receipt, err := c.WaitMined(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, fmt.Errorf("%w: transaction %s reverted", entity.ErrTransactionFailed, hash.Hex())
	}
	return receipt, nil
}

// WaitMined polls for the receipt of hash until it is available, the receipt
// timeout passes or ctx is done.
func (c *EVMClient) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(c.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("Receipt lookup failed, will retry", zap.String("hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
