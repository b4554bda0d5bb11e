package utils

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected     = 4001
	CodeUnauthorized     = 4100
	CodeUnsupported      = 4200
	CodeDisconnected     = 4900
	CodeChainUnsupported = 4902
	CodeLimitExceeded    = -32005
)

// RPCErrorCode extracts the JSON-RPC error code carried by err, if any.
func RPCErrorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// HTTPStatus extracts the HTTP status of a failed JSON-RPC-over-HTTP call.
func HTTPStatus(err error) (int, bool) {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
