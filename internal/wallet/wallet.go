package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Session is an already-authenticated account connection: it exposes the
// account address and a transaction-signing capability. A disconnected
// session reports Connected() == false and refuses to sign.
type Session interface {
	Connected() bool
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// LocalSession signs with a private key held in memory.
type LocalSession struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalSession builds a session from a hex-encoded private key, with or
// without the 0x prefix.
func NewLocalSession(hexKey string) (*LocalSession, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("wallet private key is empty")
	}

	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet private key: %w", err)
	}

	return &LocalSession{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Connected always reports true for a local session.
func (s *LocalSession) Connected() bool {
	return true
}

// Address returns the account address derived from the session key.
func (s *LocalSession) Address() common.Address {
	return s.address
}

// SignTx signs the transaction with the latest signer for the chain.
func (s *LocalSession) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// disconnected is the null session used when no wallet is configured.
type disconnected struct{}

// Disconnected returns a session with no account behind it. Price lookups
// and purchases against it fail their wallet precondition.
func Disconnected() Session {
	return disconnected{}
}

func (disconnected) Connected() bool {
	return false
}

func (disconnected) Address() common.Address {
	return common.Address{}
}

func (disconnected) SignTx(*types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, fmt.Errorf("wallet is not connected")
}
