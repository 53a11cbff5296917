// internal/onboarding/store/wallet.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"driver-onboarding/internal/common/logger"
)

// WalletStore provisions payout wallets in PostgreSQL. Every submitted
// driver gets exactly one wallet with a zero opening balance; re-running the
// insert is a no-op.
type WalletStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewWalletStore creates a wallet store on an open database handle.
func NewWalletStore(db *sql.DB, log logger.Logger) *WalletStore {
	return &WalletStore{db: db, logger: log}
}

// InitWallet creates the applicant's wallet if it does not exist yet.
func (s *WalletStore) InitWallet(ctx context.Context, applicantID, currency string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO driver_wallets (applicant_id, currency, balance, created_at)
		 VALUES ($1, $2, 0, NOW())
		 ON CONFLICT (applicant_id) DO NOTHING`,
		applicantID, currency,
	)
	if err != nil {
		return fmt.Errorf("init wallet: %w", err)
	}

	s.logger.Info("Wallet initialized", map[string]interface{}{
		"applicantId": applicantID,
		"currency":    currency,
	})
	return nil
}
