package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the chainpass API. Values are
// read from the environment; main loads a .env file first in local setups.
type Config struct {
	Stage string
	Port  string

	// Database
	DatabaseURL string

	// Chain access
	ChainRPCURL           string
	ChainID               int64
	TicketContractAddress string

	// Wallet session. An empty private key means no wallet is connected and
	// purchase submission is disabled.
	WalletPrivateKey string

	// DefaultReceiverAddress pre-fills the receiver of the payment leg; the
	// caller may replace it per purchase.
	DefaultReceiverAddress string

	// Optional integrations
	RefreshQueueURL  string // SQS queue for the tickets-changed broadcast
	NotifyWebhookURL string // frontend notification relay
	ResendAPIKey     string
	ReceiptFromEmail string
	ReceiptFromName  string
	BuyerEmail       string
}

// Load reads configuration from the environment and validates the values
// the service cannot run without.
func Load() (*Config, error) {
	cfg := &Config{
		Stage:                  getEnvWithDefault("STAGE", "dev"),
		Port:                   getEnvWithDefault("PORT", "8000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		ChainRPCURL:            os.Getenv("CHAIN_RPC_URL"),
		TicketContractAddress:  os.Getenv("TICKET_CONTRACT_ADDRESS"),
		WalletPrivateKey:       os.Getenv("WALLET_PRIVATE_KEY"),
		DefaultReceiverAddress: os.Getenv("DEFAULT_RECEIVER_ADDRESS"),
		RefreshQueueURL:        os.Getenv("REFRESH_QUEUE_URL"),
		NotifyWebhookURL:       os.Getenv("NOTIFY_WEBHOOK_URL"),
		ResendAPIKey:           os.Getenv("RESEND_API_KEY"),
		ReceiptFromEmail:       getEnvWithDefault("RECEIPT_FROM_EMAIL", "tickets@chainpass.io"),
		ReceiptFromName:        getEnvWithDefault("RECEIPT_FROM_NAME", "ChainPass Tickets"),
		BuyerEmail:             os.Getenv("BUYER_EMAIL"),
	}

	chainID, err := strconv.ParseInt(getEnvWithDefault("CHAIN_ID", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAIN_ID: %w", err)
	}
	cfg.ChainID = chainID

	if cfg.ChainRPCURL == "" {
		return nil, fmt.Errorf("CHAIN_RPC_URL environment variable is required")
	}
	if cfg.TicketContractAddress == "" {
		return nil, fmt.Errorf("TICKET_CONTRACT_ADDRESS environment variable is required")
	}

	return cfg, nil
}

// getEnvWithDefault returns environment variable value or default
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
