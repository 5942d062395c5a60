package leagueadapters

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
)

var _ leagueservice.GemWallet = (*GemWallet)(nil)

// GemWallet appends to the gem ledger. A repeated key is ignored.
type GemWallet struct {
	db bun.IDB
}

func NewGemWallet(db bun.IDB) *GemWallet {
	return &GemWallet{db: db}
}

func (w *GemWallet) CreditGems(ctx context.Context, userID string, amount int, idempotencyKey string) error {
	if amount <= 0 {
		return fmt.Errorf("gem credit must be positive, got %d", amount)
	}
	entry := &GemLedgerEntry{UserID: userID, Amount: amount, IdempotencyKey: idempotencyKey}
	if _, err := w.db.NewInsert().Model(entry).On("CONFLICT (idempotency_key) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("failed to credit gems: %w", err)
	}
	return nil
}

// Balance sums the user's ledger.
func (w *GemWallet) Balance(ctx context.Context, userID string) (int, error) {
	var total int
	err := w.db.NewSelect().
		Model((*GemLedgerEntry)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to read gem balance: %w", err)
	}
	return total, nil
}
