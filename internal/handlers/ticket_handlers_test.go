package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chainpass/chainpass-api/internal/client/chain"
	"github.com/chainpass/chainpass-api/internal/db"
	"github.com/chainpass/chainpass-api/internal/handlers"
	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/chainpass/chainpass-api/internal/mocks"
	"github.com/chainpass/chainpass-api/internal/services"
	"github.com/chainpass/chainpass-api/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

// Throwaway key for tests only.
const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

const defaultReceiver = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

type handlerMocks struct {
	contract *mocks.MockTicketContract
	store    *mocks.MockTicketStore
	notifier *mocks.MockNotifier
}

func setupRouter(t *testing.T, walletSession wallet.Session) (*gin.Engine, handlerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := handlerMocks{
		contract: mocks.NewMockTicketContract(ctrl),
		store:    mocks.NewMockTicketStore(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}

	// Handler tests exercise HTTP mapping, not notification content.
	m.notifier.EXPECT().Success(gomock.Any(), gomock.Any()).AnyTimes()
	m.notifier.EXPECT().Warning(gomock.Any(), gomock.Any()).AnyTimes()
	m.notifier.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()

	broadcaster := mocks.NewMockBroadcaster(ctrl)
	broadcaster.EXPECT().BroadcastTicketsChanged(gomock.Any()).Return(nil).AnyTimes()

	sessionParams := services.PurchaseSessionParams{
		Contract:        m.contract,
		Wallet:          walletSession,
		Notifier:        m.notifier,
		Broadcaster:     broadcaster,
		Store:           m.store,
		DefaultReceiver: defaultReceiver,
	}

	handler := handlers.NewTicketHandler(m.contract, sessionParams, m.store, logger.Log)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.GET("/events/:event_id/price", handler.GetEventPrice)
		v1.POST("/tickets/purchase", handler.PurchaseTicket)
		v1.GET("/tickets", handler.ListTickets)
		v1.GET("/tickets/:tx_hash", handler.GetTicket)
	}
	router.GET("/health", handlers.HealthCheck)

	return router, m
}

func connectedWallet(t *testing.T) wallet.Session {
	t.Helper()
	session, err := wallet.NewLocalSession(testKeyHex)
	require.NoError(t, err)
	return session
}

func TestGetEventPrice(t *testing.T) {
	t.Run("returns quoted price", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(42)).Return(big.NewInt(2_500_000), nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/42/price", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp handlers.PriceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uint64(42), resp.EventID)
		assert.Equal(t, "2500000", resp.PriceMicro)
		assert.Equal(t, 2.5, resp.Price)
	})

	t.Run("rejects malformed event ID", func(t *testing.T) {
		router, _ := setupRouter(t, connectedWallet(t))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/abc/price", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps chain failure to bad gateway", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(42)).Return(nil, errors.New("rpc timeout"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/42/price", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func postPurchase(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/purchase", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestPurchaseTicket(t *testing.T) {
	t.Run("books a ticket", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		price := big.NewInt(5_000_000)
		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(42)).Return(price, nil)
		m.contract.EXPECT().BookTicket(gomock.Any(), uint64(42), gomock.Any()).
			Return(&chain.BookingResult{
				EventID:     42,
				TxHash:      "0xabc123",
				BlockNumber: 1024,
				GasUsed:     90_000,
				AmountPaid:  price,
			}, nil)
		m.store.EXPECT().CreateTicket(gomock.Any(), gomock.Any()).Return(&db.Ticket{}, nil)

		w := postPurchase(t, router, handlers.PurchaseRequest{EventID: "42"})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp handlers.PurchaseResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uint64(42), resp.EventID)
		assert.Equal(t, "0xabc123", resp.TxHash)
		assert.Equal(t, "5000000", resp.AmountMicro)
		assert.Equal(t, 5.0, resp.Amount)
	})

	t.Run("rejects payload without event ID", func(t *testing.T) {
		router, _ := setupRouter(t, connectedWallet(t))

		w := postPurchase(t, router, map[string]string{"receiver_address": defaultReceiver})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed event ID", func(t *testing.T) {
		router, _ := setupRouter(t, connectedWallet(t))

		w := postPurchase(t, router, handlers.PurchaseRequest{EventID: "abc"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects purchase without wallet", func(t *testing.T) {
		router, _ := setupRouter(t, wallet.Disconnected())

		w := postPurchase(t, router, handlers.PurchaseRequest{EventID: "42"})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "wallet")
	})

	t.Run("concurrent purchases do not share dialog state", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		slowStarted := make(chan struct{})
		slowRelease := make(chan struct{})

		// The purchase for event 1 stalls in its price fetch while the
		// purchase for event 2 runs start to finish.
		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(1)).DoAndReturn(
			func(context.Context, uint64) (*big.Int, error) {
				close(slowStarted)
				<-slowRelease
				return big.NewInt(1_000_000), nil
			})
		m.contract.EXPECT().BookTicket(gomock.Any(), uint64(1), gomock.Any()).
			Return(&chain.BookingResult{EventID: 1, TxHash: "0xaaa", BlockNumber: 10, AmountPaid: big.NewInt(1_000_000)}, nil)
		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(2)).
			Return(big.NewInt(2_000_000), nil)
		m.contract.EXPECT().BookTicket(gomock.Any(), uint64(2), gomock.Any()).
			Return(&chain.BookingResult{EventID: 2, TxHash: "0xbbb", BlockNumber: 11, AmountPaid: big.NewInt(2_000_000)}, nil)
		m.store.EXPECT().CreateTicket(gomock.Any(), gomock.Any()).Return(&db.Ticket{}, nil).Times(2)

		var wg sync.WaitGroup
		wg.Add(1)
		var slowResp *httptest.ResponseRecorder
		go func() {
			defer wg.Done()
			slowResp = postPurchase(t, router, handlers.PurchaseRequest{EventID: "1"})
		}()

		<-slowStarted
		fastResp := postPurchase(t, router, handlers.PurchaseRequest{EventID: "2"})

		require.Equal(t, http.StatusCreated, fastResp.Code)
		var fast handlers.PurchaseResponse
		require.NoError(t, json.Unmarshal(fastResp.Body.Bytes(), &fast))
		assert.Equal(t, uint64(2), fast.EventID)
		assert.Equal(t, "0xbbb", fast.TxHash)

		close(slowRelease)
		wg.Wait()

		require.Equal(t, http.StatusCreated, slowResp.Code)
		var slow handlers.PurchaseResponse
		require.NoError(t, json.Unmarshal(slowResp.Body.Bytes(), &slow))
		assert.Equal(t, uint64(1), slow.EventID)
		assert.Equal(t, "0xaaa", slow.TxHash)
	})

	t.Run("maps booking failure to bad gateway", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		m.contract.EXPECT().GetTicketPrice(gomock.Any(), uint64(42)).Return(big.NewInt(1_000_000), nil)
		m.contract.EXPECT().BookTicket(gomock.Any(), uint64(42), gomock.Any()).
			Return(nil, errors.New("insufficient funds"))

		w := postPurchase(t, router, handlers.PurchaseRequest{EventID: "42"})

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var resp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "insufficient funds")
	})
}

func TestListTickets(t *testing.T) {
	t.Run("lists tickets for an owner", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		owner := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
		m.store.EXPECT().
			ListTicketsByOwner(gomock.Any(), owner, int32(20), int32(0)).
			Return([]db.Ticket{
				{
					ID:              uuid.New(),
					EventID:         42,
					OwnerAddress:    owner,
					ReceiverAddress: defaultReceiver,
					AmountMicro:     big.NewInt(5_000_000),
					TxHash:          "0xabc123",
					BlockNumber:     1024,
					CreatedAt:       time.Now().UTC(),
				},
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?owner="+owner, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Object string                    `json:"object"`
			Data   []handlers.TicketResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "list", resp.Object)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, uint64(42), resp.Data[0].EventID)
		assert.Equal(t, 5.0, resp.Data[0].Amount)
	})

	t.Run("requires owner parameter", func(t *testing.T) {
		router, _ := setupRouter(t, connectedWallet(t))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed owner address", func(t *testing.T) {
		router, _ := setupRouter(t, connectedWallet(t))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?owner=nope", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTicketEndpointsWithoutStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	contract := mocks.NewMockTicketContract(ctrl)

	handler := handlers.NewTicketHandler(contract, services.PurchaseSessionParams{
		Contract:        contract,
		Wallet:          wallet.Disconnected(),
		DefaultReceiver: defaultReceiver,
	}, nil, logger.Log)

	router := gin.New()
	router.GET("/api/v1/tickets", handler.ListTickets)
	router.GET("/api/v1/tickets/:tx_hash", handler.GetTicket)

	t.Run("list responds service unavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?owner=0x71C7656EC7ab88b098defB751B7401B5f6d8976F", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "not configured")
	})

	t.Run("lookup responds service unavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/0xabc123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetTicket(t *testing.T) {
	t.Run("maps missing ticket to not found", func(t *testing.T) {
		router, m := setupRouter(t, connectedWallet(t))

		m.store.EXPECT().GetTicketByTxHash(gomock.Any(), "0xmissing").Return(nil, pgx.ErrNoRows)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/0xmissing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t, connectedWallet(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "chainpass-api", resp.Service)
}
