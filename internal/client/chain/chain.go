package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/chainpass/chainpass-api/internal/ticketing"
	"github.com/chainpass/chainpass-api/internal/wallet"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// ticketContractABI covers the two entry points this service uses. The
// booking call is payable: the payment leg rides along as the transaction
// value, so payment and registration land atomically or not at all.
const ticketContractABI = `[
	{"name":"getTicketPrice","type":"function","stateMutability":"view","inputs":[{"name":"eventId","type":"uint64"}],"outputs":[{"name":"price","type":"uint256"}]},
	{"name":"bookTicket","type":"function","stateMutability":"payable","inputs":[{"name":"eventId","type":"uint64"},{"name":"receiver","type":"address"}],"outputs":[]}
]`

// fallbackBookingGasLimit is used when gas estimation fails; booking writes
// a ticket record on chain, so plain-transfer gas is not enough.
const fallbackBookingGasLimit = 200_000

// TicketContract is the remote ticket-sales contract: one read, one write.
// The on-chain encoding is opaque to callers.
type TicketContract interface {
	GetTicketPrice(ctx context.Context, eventID uint64) (*big.Int, error)
	BookTicket(ctx context.Context, eventID uint64, payment ticketing.PaymentInstruction) (*BookingResult, error)
}

// BookingResult describes a mined booking transaction.
type BookingResult struct {
	EventID     uint64
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	AmountPaid  *big.Int
}

// Client talks to the ticket contract over an RPC connection, signing
// write calls with the configured wallet session.
type Client struct {
	eth      *ethclient.Client
	contract common.Address
	chainID  *big.Int
	session  wallet.Session
	abi      abi.ABI
	logger   *zap.Logger
}

// NewClient dials the RPC endpoint and binds the ticket contract address.
func NewClient(rpcURL, contractAddress string, chainID int64, session wallet.Session) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid ticket contract address: %s", contractAddress)
	}

	parsedABI, err := abi.JSON(strings.NewReader(ticketContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ticket contract ABI: %w", err)
	}

	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	logger.Info("Connected to chain RPC",
		zap.String("contract", contractAddress),
		zap.Int64("chain_id", chainID),
	)

	return &Client{
		eth:      eth,
		contract: common.HexToAddress(contractAddress),
		chainID:  big.NewInt(chainID),
		session:  session,
		abi:      parsedABI,
		logger:   logger.Log,
	}, nil
}

// GetTicketPrice reads the ticket price for an event, in micro units.
func (c *Client) GetTicketPrice(ctx context.Context, eventID uint64) (*big.Int, error) {
	data, err := c.abi.Pack("getTicketPrice", eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to encode price call: %w", err)
	}

	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("price call failed: %w", err)
	}

	values, err := c.abi.Unpack("getTicketPrice", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode price result: %w", err)
	}

	price, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected price result type %T", values[0])
	}

	c.logger.Debug("Fetched ticket price",
		zap.Uint64("event_id", eventID),
		zap.String("price_micro", price.String()),
	)

	return price, nil
}

// BookTicket submits the combined payment and booking call and waits for it
// to be mined. A reverted receipt is a booking failure.
func (c *Client) BookTicket(ctx context.Context, eventID uint64, payment ticketing.PaymentInstruction) (*BookingResult, error) {
	if !c.session.Connected() {
		return nil, fmt.Errorf("wallet is not connected")
	}

	data, err := c.abi.Pack("bookTicket", eventID, payment.Receiver)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking call: %w", err)
	}

	from := c.session.Address()

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &c.contract,
		Value: payment.Amount,
		Data:  data,
	})
	if err != nil {
		c.logger.Warn("Gas estimation failed, using fallback limit",
			zap.Uint64("event_id", eventID),
			zap.Error(err),
		)
		gasLimit = fallbackBookingGasLimit
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Value:    payment.Amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.session.SignTx(tx, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign booking transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to submit booking transaction: %w", err)
	}

	c.logger.Info("Booking transaction submitted",
		zap.Uint64("event_id", eventID),
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("amount_micro", payment.Amount.String()),
	)

	receipt, err := bind.WaitMined(ctx, c.eth, signed)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for booking transaction: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("booking transaction %s reverted", signed.Hash().Hex())
	}

	return &BookingResult{
		EventID:     eventID,
		TxHash:      signed.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		AmountPaid:  new(big.Int).Set(payment.Amount),
	}, nil
}

// Close closes the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
	c.logger.Info("Closed chain RPC connection")
}
