package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
	txcontext "proofregistry/pkg/platform/tx"
)

// PostgresLedger inserts transfers into fee_transfers. When the context
// carries a registry transaction the insert joins it, so a rolled back
// submission leaves no transfer behind.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Transfer(ctx context.Context, t models.FeeTransfer) error {
	const query = `
		INSERT INTO fee_transfers (proof_id, amount, from_principal, to_principal, block_height)
		VALUES ($1::numeric, $2::numeric, $3, $4, $5::numeric)`
	args := []any{
		strconv.FormatUint(t.ProofID, 10),
		strconv.FormatUint(t.Amount, 10),
		t.From.String(),
		t.To.String(),
		strconv.FormatUint(t.Height, 10),
	}
	if _, err := txcontext.ExecutorFrom(ctx, l.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fee transfer: %w", err)
	}
	return nil
}

// Transfers lists recorded transfers in insertion order.
func (l *PostgresLedger) Transfers(ctx context.Context) ([]models.FeeTransfer, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT proof_id::text, amount::text, from_principal, to_principal, block_height::text
		FROM fee_transfers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fee transfers: %w", err)
	}
	defer rows.Close()

	var out []models.FeeTransfer
	for rows.Next() {
		var (
			proofID, amount, height string
			from, to                string
			t                       models.FeeTransfer
		)
		if err := rows.Scan(&proofID, &amount, &from, &to, &height); err != nil {
			return nil, fmt.Errorf("scan fee transfer: %w", err)
		}
		if t.ProofID, err = strconv.ParseUint(proofID, 10, 64); err != nil {
			return nil, err
		}
		if t.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, err
		}
		if t.Height, err = strconv.ParseUint(height, 10, 64); err != nil {
			return nil, err
		}
		t.From = domain.Principal(from)
		t.To = domain.Principal(to)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fee transfers: %w", err)
	}
	return out, nil
}
