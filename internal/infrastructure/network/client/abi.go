package client

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const marketABIJSON = `[
{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"marketCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getMarketInfo","stateMutability":"view","inputs":[{"name":"_marketId","type":"uint256"}],"outputs":[
 {"name":"question","type":"string"},{"name":"optionA","type":"string"},{"name":"optionB","type":"string"},{"name":"optionC","type":"string"},{"name":"optionD","type":"string"},
 {"name":"endTime","type":"uint256"},{"name":"outcome","type":"uint8"},
 {"name":"totalOptionAShares","type":"uint256"},{"name":"totalOptionBShares","type":"uint256"},{"name":"totalOptionCShares","type":"uint256"},{"name":"totalOptionDShares","type":"uint256"},
 {"name":"resolved","type":"bool"}]},
{"type":"function","name":"getSharesBalance","stateMutability":"view","inputs":[{"name":"_marketId","type":"uint256"},{"name":"_user","type":"address"}],"outputs":[
 {"name":"optionAShares","type":"uint256"},{"name":"optionBShares","type":"uint256"},{"name":"optionCShares","type":"uint256"},{"name":"optionDShares","type":"uint256"}]},
{"type":"function","name":"getUserShares","stateMutability":"view","inputs":[{"name":"_marketId","type":"uint256"},{"name":"_user","type":"address"},
 {"name":"_isOptionA","type":"bool"},{"name":"_isOptionB","type":"bool"},{"name":"_isOptionC","type":"bool"},{"name":"_isOptionD","type":"bool"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"buyShares","stateMutability":"nonpayable","inputs":[{"name":"_marketId","type":"uint256"},
 {"name":"_isOptionA","type":"bool"},{"name":"_isOptionB","type":"bool"},{"name":"_isOptionC","type":"bool"},{"name":"_isOptionD","type":"bool"},{"name":"_amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"resolveMarket","stateMutability":"nonpayable","inputs":[{"name":"_marketId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"claimWinning","stateMutability":"nonpayable","inputs":[{"name":"_marketId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"createMarket","stateMutability":"nonpayable","inputs":[{"name":"_question","type":"string"},
 {"name":"_optionA","type":"string"},{"name":"_optionB","type":"string"},{"name":"_optionC","type":"string"},{"name":"_optionD","type":"string"},
 {"name":"_duration","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const erc20ABIJSON = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// Test tokens expose one of two mint signatures.
const (
	mintToAmountABIJSON = `[{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`
	mintAmountABIJSON   = `[{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}]`
)

var (
	parsedMarketABI abi.ABI
	parsedERC20ABI  abi.ABI
	parsedMintToABI abi.ABI
	parsedMintABI   abi.ABI
	parsedABIOnce   sync.Once
)

func mustParse(name, def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		// This is a critical error during initialization, panic is appropriate
		panic(fmt.Sprintf("failed to parse %s ABI: %v", name, err))
	}
	return parsed
}

func initParsedABIs() {
	parsedABIOnce.Do(func() {
		parsedMarketABI = mustParse("market", marketABIJSON)
		parsedERC20ABI = mustParse("ERC20", erc20ABIJSON)
		parsedMintToABI = mustParse("mint(address,uint256)", mintToAmountABIJSON)
		parsedMintABI = mustParse("mint(uint256)", mintAmountABIJSON)
	})
}

// MarketABI returns the parsed prediction market ABI.
func MarketABI() abi.ABI {
	initParsedABIs()
	return parsedMarketABI
}

// ERC20ABI returns the parsed ERC20 subset used for the stablecoin.
func ERC20ABI() abi.ABI {
	initParsedABIs()
	return parsedERC20ABI
}
