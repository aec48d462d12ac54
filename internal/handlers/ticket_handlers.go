package handlers

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/chainpass/chainpass-api/internal/client/chain"
	"github.com/chainpass/chainpass-api/internal/db"
	"github.com/chainpass/chainpass-api/internal/services"
	"github.com/chainpass/chainpass-api/internal/ticketing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TicketHandler handles ticket price lookups, purchases, and listings.
// Each purchase request runs in its own session so concurrent requests
// never share dialog state.
type TicketHandler struct {
	contract      chain.TicketContract
	sessionParams services.PurchaseSessionParams
	store         db.TicketStore
	logger        *zap.Logger
}

// NewTicketHandler creates a new ticket handler instance
func NewTicketHandler(contract chain.TicketContract, sessionParams services.PurchaseSessionParams, store db.TicketStore, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		contract:      contract,
		sessionParams: sessionParams,
		store:         store,
		logger:        logger,
	}
}

// PriceResponse is the quoted price for an event.
type PriceResponse struct {
	EventID    uint64  `json:"event_id"`
	PriceMicro string  `json:"price_micro"`
	Price      float64 `json:"price"`
}

// PurchaseRequest is the payload for a ticket purchase. The receiver
// address is optional; the configured default is used when absent.
type PurchaseRequest struct {
	EventID         string `json:"event_id" binding:"required"`
	ReceiverAddress string `json:"receiver_address"`
}

// PurchaseResponse describes a completed purchase.
type PurchaseResponse struct {
	EventID     uint64  `json:"event_id"`
	TxHash      string  `json:"tx_hash"`
	BlockNumber uint64  `json:"block_number"`
	GasUsed     uint64  `json:"gas_used"`
	AmountMicro string  `json:"amount_micro"`
	Amount      float64 `json:"amount"`
}

// TicketResponse is a purchased ticket in API responses.
type TicketResponse struct {
	ID              string    `json:"id"`
	EventID         uint64    `json:"event_id"`
	OwnerAddress    string    `json:"owner_address"`
	ReceiverAddress string    `json:"receiver_address"`
	AmountMicro     string    `json:"amount_micro"`
	Amount          float64   `json:"amount"`
	TxHash          string    `json:"tx_hash"`
	BlockNumber     uint64    `json:"block_number"`
	CreatedAt       time.Time `json:"created_at"`
}

// GetEventPrice handles GET /api/v1/events/:event_id/price
// @Summary Get ticket price
// @Description Reads the current ticket price for an event from the chain
// @Tags tickets
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} PriceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /events/{event_id}/price [get]
func (h *TicketHandler) GetEventPrice(c *gin.Context) {
	eventID, err := ticketing.ParseEventID(c.Param("event_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	price, err := h.contract.GetTicketPrice(c.Request.Context(), eventID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to fetch ticket price", err)
		return
	}

	sendSuccess(c, http.StatusOK, PriceResponse{
		EventID:    eventID,
		PriceMicro: price.String(),
		Price:      ticketing.DisplayPrice(price),
	})
}

// PurchaseTicket handles POST /api/v1/tickets/purchase
// @Summary Purchase a ticket
// @Description Quotes the ticket price and submits the combined payment and booking call
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body PurchaseRequest true "Purchase parameters"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /tickets/purchase [post]
func (h *TicketHandler) PurchaseTicket(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if _, err := ticketing.ParseEventID(req.EventID); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	ctx := c.Request.Context()

	// One session per request: requests never see each other's event ID,
	// receiver, or quoted price.
	session := services.NewPurchaseSession(h.sessionParams)
	if req.ReceiverAddress != "" {
		session.SetReceiver(req.ReceiverAddress)
	}
	session.SetEventID(ctx, req.EventID)

	result, err := session.Submit(ctx)
	if err != nil {
		status := purchaseErrorStatus(err)
		sendError(c, status, "Ticket purchase failed: "+err.Error(), err)
		return
	}

	sendSuccess(c, http.StatusCreated, PurchaseResponse{
		EventID:     result.EventID,
		TxHash:      result.TxHash,
		BlockNumber: result.BlockNumber,
		GasUsed:     result.GasUsed,
		AmountMicro: result.AmountPaid.String(),
		Amount:      ticketing.DisplayPrice(result.AmountPaid),
	})
}

// purchaseErrorStatus maps purchase failures to HTTP status codes.
func purchaseErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, ticketing.ErrWalletNotConnected),
		errors.Is(err, ticketing.ErrMissingEventID),
		errors.Is(err, ticketing.ErrMissingReceiver),
		errors.Is(err, ticketing.ErrInvalidReceiver),
		errors.Is(err, ticketing.ErrPriceUnavailable),
		errors.Is(err, ticketing.ErrInvalidPrice):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// ListTickets handles GET /api/v1/tickets
// @Summary List purchased tickets
// @Description Lists recorded tickets for an owner address, newest first
// @Tags tickets
// @Produce json
// @Param owner query string true "Owner address"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	if h.store == nil {
		sendError(c, http.StatusServiceUnavailable, "Ticket listing is not configured", nil)
		return
	}

	owner := c.Query("owner")
	if owner == "" {
		sendError(c, http.StatusBadRequest, "owner query parameter is required", nil)
		return
	}
	if !ticketing.IsAddressValid(owner) {
		sendError(c, http.StatusBadRequest, "owner is not a valid address", nil)
		return
	}

	limit := parseInt32(c.DefaultQuery("limit", "20"), 20)
	offset := parseInt32(c.DefaultQuery("offset", "0"), 0)

	tickets, err := h.store.ListTicketsByOwner(c.Request.Context(), owner, limit, offset)
	if err != nil {
		handleDBError(c, err, "No tickets found")
		return
	}

	items := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, toTicketResponse(ticket))
	}
	sendList(c, items)
}

// GetTicket handles GET /api/v1/tickets/:tx_hash
// @Summary Get a ticket by transaction hash
// @Tags tickets
// @Produce json
// @Param tx_hash path string true "Booking transaction hash"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /tickets/{tx_hash} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	if h.store == nil {
		sendError(c, http.StatusServiceUnavailable, "Ticket listing is not configured", nil)
		return
	}

	ticket, err := h.store.GetTicketByTxHash(c.Request.Context(), c.Param("tx_hash"))
	if err != nil {
		handleDBError(c, err, "Ticket not found")
		return
	}
	sendSuccess(c, http.StatusOK, toTicketResponse(*ticket))
}

func toTicketResponse(ticket db.Ticket) TicketResponse {
	amount := ticket.AmountMicro
	if amount == nil {
		amount = big.NewInt(0)
	}
	return TicketResponse{
		ID:              ticket.ID.String(),
		EventID:         ticket.EventID,
		OwnerAddress:    ticket.OwnerAddress,
		ReceiverAddress: ticket.ReceiverAddress,
		AmountMicro:     amount.String(),
		Amount:          ticketing.DisplayPrice(amount),
		TxHash:          ticket.TxHash,
		BlockNumber:     ticket.BlockNumber,
		CreatedAt:       ticket.CreatedAt,
	}
}

func parseInt32(raw string, fallback int32) int32 {
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || value < 0 {
		return fallback
	}
	return int32(value)
}
