package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// Ensure TxRunner implements warehouse.TxRunner.
var _ warehouse.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con los
// cuatro almacenes del motor atados a la misma tx. El Rollback diferido hace
// que cualquier error del callback descarte juntos material, libro, reservas
// y auditoría.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	materials := NewMaterialRepository(tx)
	moves := NewStockMoveRepository(tx)
	reservations := NewReservationRepository(tx)
	audits := NewAuditLogRepository(tx)

	if err := fn(materials, moves, reservations, audits); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
