package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/race-insight-platform/pkg/contracts/events"
)

// PostgresRepo persiste o log append-only de movimentação de mercado.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertChange grava uma observação no log. O log nunca é atualizado em
// cima; a deduplicação acontece na leitura do board.
func (r *PostgresRepo) InsertChange(ctx context.Context, e events.OddsChange) error {
	const q = `
		INSERT INTO market_movement_changes
		  (race_id, horse_id, horse_name, course, off_time,
		   direction, change_pct, initial_price, current_price, recorded_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.RaceID, e.HorseID, e.HorseName, e.Course, e.OffTime,
		e.Direction, e.ChangePct, e.InitialPrice, e.CurrentPrice, e.RecordedAt,
	)
	return err
}
