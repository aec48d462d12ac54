package ticketing

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MicroUnitsPerToken is the number of base (micro) units in one whole token
// of the network currency. Ticket prices are quoted on chain in micro units.
const MicroUnitsPerToken = 1_000_000

// Validation sentinels, checked in order before a purchase is submitted.
// ErrWalletNotConnected is warning-class; the rest are errors.
var (
	ErrWalletNotConnected = errors.New("wallet is not connected")
	ErrMissingEventID     = errors.New("event ID is required")
	ErrMissingReceiver    = errors.New("receiver address is required")
	ErrInvalidReceiver    = errors.New("receiver address is not a valid address")
	ErrPriceUnavailable   = errors.New("ticket price is not available")
	ErrInvalidPrice       = errors.New("ticket price must be positive")
)

// PaymentInstruction describes the payment leg of a booking: who pays,
// who receives, and how much, in micro units.
type PaymentInstruction struct {
	Sender   common.Address
	Receiver common.Address
	Amount   *big.Int
}

// ParseEventID parses a user-entered event identifier. Identifiers are
// positive decimal integers.
func ParseEventID(raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrMissingEventID
	}

	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid event ID %q: %w", trimmed, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid event ID %q: must be positive", trimmed)
	}

	return id, nil
}

// IsAddressValid reports whether s is a syntactically valid account address.
func IsAddressValid(s string) bool {
	return common.IsHexAddress(s)
}

// DisplayPrice converts a micro-unit price to whole tokens for display.
func DisplayPrice(micro *big.Int) float64 {
	if micro == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(micro),
		big.NewFloat(MicroUnitsPerToken),
	).Float64()
	return f
}

// PurchaseInput carries everything the precondition checks need.
type PurchaseInput struct {
	WalletConnected bool
	EventID         string
	Receiver        string
	Price           *big.Int
}

// ValidatePurchase applies the purchase preconditions in order and returns
// the first violation: wallet connected, event identifier present and
// well-formed, receiver present and well-formed, price available and
// positive. A nil return means the purchase may be submitted.
func ValidatePurchase(in PurchaseInput) error {
	if !in.WalletConnected {
		return ErrWalletNotConnected
	}
	if _, err := ParseEventID(in.EventID); err != nil {
		return err
	}
	if strings.TrimSpace(in.Receiver) == "" {
		return ErrMissingReceiver
	}
	if !IsAddressValid(in.Receiver) {
		return ErrInvalidReceiver
	}
	if in.Price == nil {
		return ErrPriceUnavailable
	}
	if in.Price.Sign() <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// NewPaymentInstruction builds the payment leg for a validated purchase.
// The amount is the quoted price, already in the network's smallest unit.
func NewPaymentInstruction(sender common.Address, receiver string, price *big.Int) (PaymentInstruction, error) {
	if !IsAddressValid(receiver) {
		return PaymentInstruction{}, ErrInvalidReceiver
	}
	if price == nil {
		return PaymentInstruction{}, ErrPriceUnavailable
	}
	if price.Sign() <= 0 {
		return PaymentInstruction{}, ErrInvalidPrice
	}

	return PaymentInstruction{
		Sender:   sender,
		Receiver: common.HexToAddress(receiver),
		Amount:   new(big.Int).Set(price),
	}, nil
}

// IsWarning reports whether a validation failure should surface as a
// warning rather than an error. Only the missing-wallet case qualifies.
func IsWarning(err error) bool {
	return errors.Is(err, ErrWalletNotConnected)
}
