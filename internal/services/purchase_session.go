package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/chainpass/chainpass-api/internal/client/chain"
	"github.com/chainpass/chainpass-api/internal/db"
	"github.com/chainpass/chainpass-api/internal/events"
	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/chainpass/chainpass-api/internal/notify"
	"github.com/chainpass/chainpass-api/internal/ticketing"
	"github.com/chainpass/chainpass-api/internal/wallet"
	"go.uber.org/zap"
)

// ErrSubmissionInProgress is returned when Submit is called while a
// previous submission has not resolved yet.
var ErrSubmissionInProgress = errors.New("a purchase submission is already in progress")

// PurchaseSessionParams contains the dependencies of a purchase session.
// Store and Receipts are optional.
type PurchaseSessionParams struct {
	Contract        chain.TicketContract
	Wallet          wallet.Session
	Notifier        notify.Notifier
	Broadcaster     events.Broadcaster
	Store           db.TicketStore
	Receipts        ReceiptSender
	DefaultReceiver string
}

// PurchaseSession mediates between caller input, the on-chain price lookup,
// and the booking submission. It mirrors one purchase dialog's lifetime:
// an event identifier, a receiver address pre-filled with a default, the
// latest quoted price, and a busy flag guarding submission re-entrancy.
type PurchaseSession struct {
	contract    chain.TicketContract
	wallet      wallet.Session
	notifier    notify.Notifier
	broadcaster events.Broadcaster
	store       db.TicketStore
	receipts    ReceiptSender
	logger      *zap.Logger

	defaultReceiver string

	mu       sync.Mutex
	eventID  string
	receiver string
	price    *big.Int
	busy     bool
	open     bool
	priceSeq uint64
}

// SessionState is a point-in-time copy of the session's visible state.
type SessionState struct {
	EventID      string
	Receiver     string
	PriceMicro   *big.Int
	PriceDisplay float64
	HasPrice     bool
	Busy         bool
	Open         bool
}

// NewPurchaseSession creates a session with fields reset to their defaults.
func NewPurchaseSession(params PurchaseSessionParams) *PurchaseSession {
	return &PurchaseSession{
		contract:        params.Contract,
		wallet:          params.Wallet,
		notifier:        params.Notifier,
		broadcaster:     params.Broadcaster,
		store:           params.Store,
		receipts:        params.Receipts,
		logger:          logger.Log,
		defaultReceiver: params.DefaultReceiver,
		receiver:        params.DefaultReceiver,
		open:            true,
	}
}

// State returns a copy of the current session state.
func (s *PurchaseSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{
		EventID:  s.eventID,
		Receiver: s.receiver,
		HasPrice: s.price != nil,
		Busy:     s.busy,
		Open:     s.open,
	}
	if s.price != nil {
		state.PriceMicro = new(big.Int).Set(s.price)
		state.PriceDisplay = ticketing.DisplayPrice(s.price)
	}
	return state
}

// CanSubmit reports whether the submit action is currently enabled: not
// busy and a price has been quoted.
func (s *PurchaseSession) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && s.price != nil
}

// SetEventID updates the event identifier and re-triggers the price lookup.
func (s *PurchaseSession) SetEventID(ctx context.Context, eventID string) {
	s.mu.Lock()
	s.eventID = eventID
	s.mu.Unlock()

	s.RefreshPrice(ctx)
}

// SetReceiver replaces the receiver address for the payment leg.
func (s *PurchaseSession) SetReceiver(receiver string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = receiver
}

// SetWallet swaps the wallet session and re-triggers the price lookup, the
// same way a wallet connection change does.
func (s *PurchaseSession) SetWallet(ctx context.Context, session wallet.Session) {
	s.mu.Lock()
	s.wallet = session
	s.mu.Unlock()

	s.RefreshPrice(ctx)
}

// RefreshPrice fetches the ticket price for the current event identifier.
// With no identifier or no connected wallet the quote is simply cleared.
// Any fetch failure clears the quote and emits an error notification; there
// is no retry, the next state change re-triggers the lookup. A request
// sequence counter makes the latest request win, so a slow stale response
// can never overwrite a newer quote.
func (s *PurchaseSession) RefreshPrice(ctx context.Context) {
	s.mu.Lock()
	raw := s.eventID
	connected := s.wallet.Connected()

	if raw == "" || !connected {
		s.price = nil
		s.priceSeq++
		s.mu.Unlock()
		return
	}

	eventID, err := ticketing.ParseEventID(raw)
	if err != nil {
		// No lookup was attempted; submit validation owns the
		// invalid-identifier message, so clear the quote silently.
		s.price = nil
		s.priceSeq++
		s.mu.Unlock()
		s.logger.Debug("Skipping price lookup for unparseable event ID", zap.Error(err))
		return
	}

	s.priceSeq++
	seq := s.priceSeq
	s.mu.Unlock()

	price, err := s.contract.GetTicketPrice(ctx, eventID)

	s.mu.Lock()
	if seq != s.priceSeq {
		// A newer lookup superseded this one; drop the result.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.price = nil
		s.mu.Unlock()
		s.logger.Error("Ticket price lookup failed",
			zap.Uint64("event_id", eventID),
			zap.Error(err))
		s.notifier.Error(ctx, fmt.Sprintf("Failed to fetch ticket price: %v", err))
		return
	}
	s.price = price
	s.mu.Unlock()

	s.logger.Debug("Ticket price updated",
		zap.Uint64("event_id", eventID),
		zap.String("price_micro", price.String()))
}

// Submit validates the purchase preconditions in order and, when they hold,
// submits the combined payment and booking call. On success the session
// resets its fields, closes, and broadcasts exactly one tickets-changed
// signal. On failure the session stays open with its input preserved.
func (s *PurchaseSession) Submit(ctx context.Context) (*chain.BookingResult, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}

	input := ticketing.PurchaseInput{
		WalletConnected: s.wallet.Connected(),
		EventID:         s.eventID,
		Receiver:        s.receiver,
		Price:           s.price,
	}
	if err := ticketing.ValidatePurchase(input); err != nil {
		s.mu.Unlock()
		s.notifyValidation(ctx, err)
		return nil, err
	}

	eventID, err := ticketing.ParseEventID(s.eventID)
	if err != nil {
		s.mu.Unlock()
		s.notifyValidation(ctx, err)
		return nil, err
	}

	payment, err := ticketing.NewPaymentInstruction(s.wallet.Address(), s.receiver, s.price)
	if err != nil {
		s.mu.Unlock()
		s.notifyValidation(ctx, err)
		return nil, err
	}

	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	result, err := s.contract.BookTicket(ctx, eventID, payment)
	if err != nil {
		s.logger.Error("Ticket booking failed",
			zap.Uint64("event_id", eventID),
			zap.Error(err))
		s.notifier.Error(ctx, fmt.Sprintf("Ticket purchase failed: %v", err))
		return nil, err
	}

	s.recordPurchase(ctx, eventID, payment, result)

	s.mu.Lock()
	s.eventID = ""
	s.receiver = s.defaultReceiver
	s.price = nil
	s.priceSeq++
	s.open = false
	s.mu.Unlock()

	s.logger.Info("Ticket booked",
		zap.Uint64("event_id", eventID),
		zap.String("tx_hash", result.TxHash),
		zap.String("amount_micro", result.AmountPaid.String()))

	s.notifier.Success(ctx, fmt.Sprintf("Ticket for event %d booked in transaction %s", eventID, result.TxHash))

	if err := s.broadcaster.BroadcastTicketsChanged(ctx); err != nil {
		// The purchase already landed on chain; a lost refresh signal only
		// delays the next list reload.
		s.logger.Warn("Failed to broadcast tickets-changed signal", zap.Error(err))
	}

	return result, nil
}

// Reopen resets the session to its initial state for another purchase.
func (s *PurchaseSession) Reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventID = ""
	s.receiver = s.defaultReceiver
	s.price = nil
	s.priceSeq++
	s.busy = false
	s.open = true
}

// recordPurchase persists the ticket and sends the receipt email, both
// best-effort: the chain already holds the authoritative record.
func (s *PurchaseSession) recordPurchase(ctx context.Context, eventID uint64, payment ticketing.PaymentInstruction, result *chain.BookingResult) {
	if s.store != nil {
		_, err := s.store.CreateTicket(ctx, db.CreateTicketParams{
			EventID:         eventID,
			OwnerAddress:    payment.Sender.Hex(),
			ReceiverAddress: payment.Receiver.Hex(),
			AmountMicro:     result.AmountPaid,
			TxHash:          result.TxHash,
			BlockNumber:     result.BlockNumber,
		})
		if err != nil {
			s.logger.Warn("Failed to record purchased ticket",
				zap.Uint64("event_id", eventID),
				zap.String("tx_hash", result.TxHash),
				zap.Error(err))
		}
	}

	if s.receipts != nil {
		err := s.receipts.SendPurchaseReceipt(ctx, PurchaseReceipt{
			EventID:     eventID,
			AmountMicro: result.AmountPaid,
			TxHash:      result.TxHash,
		})
		if err != nil {
			s.logger.Warn("Failed to send purchase receipt",
				zap.Uint64("event_id", eventID),
				zap.Error(err))
		}
	}
}

// notifyValidation maps a precondition failure to its user-facing message.
// The missing-wallet case is a warning; everything else is an error.
func (s *PurchaseSession) notifyValidation(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ticketing.ErrWalletNotConnected):
		s.notifier.Warning(ctx, "Please connect your wallet first")
	case errors.Is(err, ticketing.ErrMissingEventID):
		s.notifier.Error(ctx, "Please enter an Event ID")
	case errors.Is(err, ticketing.ErrMissingReceiver):
		s.notifier.Error(ctx, "Please enter a receiver address")
	case errors.Is(err, ticketing.ErrPriceUnavailable), errors.Is(err, ticketing.ErrInvalidPrice):
		s.notifier.Error(ctx, "Ticket price is not available yet")
	default:
		s.notifier.Error(ctx, err.Error())
	}
}
