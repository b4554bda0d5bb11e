package restapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
)

// MarketHandler serves markets and the stablecoin helpers. Every state
// changing endpoint blocks until its confirmation prompt is answered.
type MarketHandler struct {
	markets port.MarketService
}

func NewMarketHandler(ms port.MarketService) *MarketHandler {
	return &MarketHandler{markets: ms}
}

// TxResponse summarizes a mined transaction.
type TxResponse struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Status      uint64 `json:"status"`
}

func txResponse(r *types.Receipt) TxResponse {
	if r == nil {
		return TxResponse{}
	}
	out := TxResponse{TxHash: r.TxHash.Hex(), Status: r.Status}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

func marketID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return 0, false
	}
	return id, true
}

func (h *MarketHandler) ListMarkets(c *gin.Context) {
	markets, err := h.markets.ListMarkets(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markets": markets})
}

func (h *MarketHandler) GetMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	detail, err := h.markets.GetMarket(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"market": detail})
}

func (h *MarketHandler) Positions(c *gin.Context) {
	positions, err := h.markets.Positions(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

type buyRequest struct {
	Option string `json:"option"`
	Amount string `json:"amount"`
}

func (h *MarketHandler) BuyShares(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	outcome, err := entity.ParseOutcome(req.Option)
	if err != nil {
		errorResponse(c, err)
		return
	}

	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.BuyShares(c.Request.Context(), id, outcome, req.Amount)
	})
}

func (h *MarketHandler) ResolveMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.ResolveMarket(c.Request.Context(), id)
	})
}

func (h *MarketHandler) ClaimWinnings(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.ClaimWinnings(c.Request.Context(), id)
	})
}

// maxDurationMinutes keeps the duration representable as a time.Duration.
const maxDurationMinutes = math.MaxInt64 / int64(time.Minute)

type createMarketRequest struct {
	Question        string    `json:"question"`
	Options         [4]string `json:"options"`
	DurationMinutes int64     `json:"durationMinutes"`
}

func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.DurationMinutes > maxDurationMinutes {
		errorResponse(c, entity.ValidationError("Duration is too long"))
		return
	}
	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.CreateMarket(c.Request.Context(), entity.CreateMarketRequest{
			Question: req.Question,
			Options:  req.Options,
			Duration: time.Duration(req.DurationMinutes) * time.Minute,
		})
	})
}

func (h *MarketHandler) TokenStatus(c *gin.Context) {
	status, err := h.markets.TokenStatus(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *MarketHandler) ApproveToken(c *gin.Context) {
	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.ApproveToken(c.Request.Context())
	})
}

func (h *MarketHandler) MintToken(c *gin.Context) {
	h.respondTx(c, func() (*types.Receipt, error) {
		return h.markets.MintToken(c.Request.Context())
	})
}

func (h *MarketHandler) respondTx(c *gin.Context, submit func() (*types.Receipt, error)) {
	receipt, err := submit()
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, txResponse(receipt))
}
