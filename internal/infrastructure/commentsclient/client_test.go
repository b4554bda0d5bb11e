package commentsclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comments", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("marketId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"comments":[{"id":"c1","market_id":4,"wallet_address":"0xaa","content":"first","created_at":"2025-06-01T12:00:00Z","updated_at":"2025-06-01T12:00:00Z"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, zap.NewNop())
	got, err := c.List(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, int64(4), got[0].MarketID)
}

func TestClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"marketId":0,"walletAddress":"0xAA","content":"hi"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"comment":{"id":"c2","market_id":0,"wallet_address":"0xaa","content":"hi"}}`)
	}))
	defer srv.Close()

	zero := int64(0)
	c := New(srv.URL, time.Second, zap.NewNop())
	got, err := c.Create(context.Background(), entity.CommentInput{MarketID: &zero, WalletAddress: "0xAA", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "c2", got.ID)
	assert.Equal(t, "0xaa", got.WalletAddress)
}

func TestClientValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid wallet address format"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.Create(context.Background(), entity.CommentInput{})
	require.ErrorIs(t, err, entity.ErrValidation)
	assert.EqualError(t, err, "Invalid wallet address format")
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Failed to fetch comments"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.List(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrValidation)
	assert.Contains(t, err.Error(), "Failed to fetch comments")
}
