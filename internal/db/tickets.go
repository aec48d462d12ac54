package db

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Ticket is a completed purchase as recorded locally. The chain is the
// source of truth; this table only feeds the ticket list.
type Ticket struct {
	ID              uuid.UUID
	EventID         uint64
	OwnerAddress    string
	ReceiverAddress string
	AmountMicro     *big.Int
	TxHash          string
	BlockNumber     uint64
	CreatedAt       time.Time
}

// CreateTicketParams contains parameters for recording a purchase.
type CreateTicketParams struct {
	EventID         uint64
	OwnerAddress    string
	ReceiverAddress string
	AmountMicro     *big.Int
	TxHash          string
	BlockNumber     uint64
}

// TicketStore persists and lists purchased tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*Ticket, error)
	ListTicketsByOwner(ctx context.Context, ownerAddress string, limit, offset int32) ([]Ticket, error)
	GetTicketByTxHash(ctx context.Context, txHash string) (*Ticket, error)
}

// Store is the pgx-backed TicketStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const ticketsSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	id UUID PRIMARY KEY,
	event_id BIGINT NOT NULL,
	owner_address TEXT NOT NULL,
	receiver_address TEXT NOT NULL,
	amount_micro NUMERIC(78, 0) NOT NULL,
	tx_hash TEXT NOT NULL UNIQUE,
	block_number BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tickets_owner_idx ON tickets (owner_address, created_at DESC);
`

// EnsureSchema creates the tickets table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ticketsSchema); err != nil {
		return errors.Wrap(err, "failed to ensure tickets schema")
	}
	return nil
}

// CreateTicket records a completed purchase.
func (s *Store) CreateTicket(ctx context.Context, params CreateTicketParams) (*Ticket, error) {
	if params.AmountMicro == nil {
		return nil, errors.New("ticket amount is required")
	}

	ticket := Ticket{
		ID:              uuid.New(),
		EventID:         params.EventID,
		OwnerAddress:    params.OwnerAddress,
		ReceiverAddress: params.ReceiverAddress,
		AmountMicro:     new(big.Int).Set(params.AmountMicro),
		TxHash:          params.TxHash,
		BlockNumber:     params.BlockNumber,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO tickets (id, event_id, owner_address, receiver_address, amount_micro, tx_hash, block_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		ticket.ID,
		int64(ticket.EventID),
		ticket.OwnerAddress,
		ticket.ReceiverAddress,
		ticket.AmountMicro.String(),
		ticket.TxHash,
		int64(ticket.BlockNumber),
	)
	if err := row.Scan(&ticket.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to insert ticket")
	}

	return &ticket, nil
}

// ListTicketsByOwner returns an owner's tickets, newest first.
func (s *Store) ListTicketsByOwner(ctx context.Context, ownerAddress string, limit, offset int32) ([]Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, owner_address, receiver_address, amount_micro::text, tx_hash, block_number, created_at
		FROM tickets
		WHERE owner_address = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		ownerAddress, limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tickets")
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ticket rows")
	}

	return tickets, nil
}

// GetTicketByTxHash looks a ticket up by its booking transaction hash.
func (s *Store) GetTicketByTxHash(ctx context.Context, txHash string) (*Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, event_id, owner_address, receiver_address, amount_micro::text, tx_hash, block_number, created_at
		FROM tickets
		WHERE tx_hash = $1`,
		txHash,
	)
	return scanTicket(row)
}

func scanTicket(row pgx.Row) (*Ticket, error) {
	var (
		ticket      Ticket
		eventID     int64
		amountText  string
		blockNumber int64
	)

	err := row.Scan(
		&ticket.ID,
		&eventID,
		&ticket.OwnerAddress,
		&ticket.ReceiverAddress,
		&amountText,
		&ticket.TxHash,
		&blockNumber,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan ticket")
	}

	amount, ok := new(big.Int).SetString(amountText, 10)
	if !ok {
		return nil, errors.Errorf("invalid stored ticket amount %q", amountText)
	}

	ticket.EventID = uint64(eventID)
	ticket.AmountMicro = amount
	ticket.BlockNumber = uint64(blockNumber)
	return &ticket, nil
}
