package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommentHandler serves /api/comments.
type CommentHandler struct {
	comments port.CommentService
	logger   *zap.Logger
}

// NewCommentHandler creates a new instance of CommentHandler.
func NewCommentHandler(cs port.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: cs, logger: logger.Named("CommentHandler")}
}

// ListComments handles GET /api/comments?marketId=N.
func (h *CommentHandler) ListComments(c *gin.Context) {
	raw := c.Query("marketId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Market ID is required"})
		return
	}
	marketID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	comments, err := h.comments.List(c.Request.Context(), marketID)
	if err != nil {
		h.logger.Error("Error fetching comments", zap.Int64("marketId", marketID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment handles POST /api/comments.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var in entity.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), in)
	if err != nil {
		var invalid *entity.InvalidInputError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Msg})
			return
		}
		h.logger.Error("Error creating comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
