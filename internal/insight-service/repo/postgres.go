package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
)

// Postgres implementa Store sobre o banco da plataforma.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// nullToZero trata score ausente como 0 (runner nunca é descartado).
func nullToZero(v sql.NullFloat64) float64 {
	if v.Valid {
		return v.Float64
	}
	return 0
}

func scanEntries(rows *sql.Rows) ([]RaceEntry, error) {
	var out []RaceEntry
	for rows.Next() {
		var e RaceEntry
		var lr, rf, gbm, xgb, mlp, ens sql.NullFloat64
		if err := rows.Scan(&e.RaceID, &e.HorseID, &e.HorseName, &e.Course, &e.OffTime,
			&e.Trainer, &e.DistanceFurlongs, &lr, &rf, &gbm, &xgb, &mlp, &ens); err != nil {
			return nil, err
		}
		e.LR, e.RF, e.GBM = nullToZero(lr), nullToZero(rf), nullToZero(gbm)
		e.XGB, e.MLP, e.Ensemble = nullToZero(xgb), nullToZero(mlp), nullToZero(ens)
		out = append(out, e)
	}
	return out, rows.Err()
}

const entryColumns = `race_id, horse_id, horse_name, course, off_time, trainer, distance_furlongs,
		  lr_prob, rf_prob, gbm_prob, xgb_prob, mlp_prob, ensemble_prob`

func (p *Postgres) RaceEntries(ctx context.Context, raceID string) ([]RaceEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM race_entries
		WHERE race_id = $1
		ORDER BY horse_name`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (p *Postgres) EntriesForDay(ctx context.Context, day time.Time) ([]RaceEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM race_entries
		WHERE race_date = $1::date
		ORDER BY course, off_time, horse_name`, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (p *Postgres) MovementsForDay(ctx context.Context, day time.Time) ([]movers.Change, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := p.db.QueryContext(ctx, `
		SELECT race_id, horse_id, horse_name, course, off_time,
		       direction, change_pct, initial_price, current_price, recorded_at
		FROM market_movement_changes
		WHERE recorded_at >= $1 AND recorded_at < $2
		ORDER BY recorded_at`, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []movers.Change
	for rows.Next() {
		var c movers.Change
		if err := rows.Scan(&c.RaceID, &c.HorseID, &c.HorseName, &c.Course, &c.OffTime,
			&c.Direction, &c.ChangePct, &c.InitialPrice, &c.CurrentPrice, &c.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateBet(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, race_id, horse_id, horse_name, course, off_time,
		                  bet_amount, odds, potential_return, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'pending')`,
		id, b.UserID, b.RaceID, b.HorseID, b.HorseName, b.Course, b.OffTime,
		b.BetAmount, b.Odds, b.PotentialReturn,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetBet(ctx context.Context, betID string) (*Bet, error) {
	var b Bet
	var settled sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, race_id, horse_id, horse_name, course, off_time,
		       bet_amount, odds, potential_return, status, created_at, settled_at
		FROM bets WHERE id = $1`, betID).
		Scan(&b.ID, &b.UserID, &b.RaceID, &b.HorseID, &b.HorseName, &b.Course, &b.OffTime,
			&b.BetAmount, &b.Odds, &b.PotentialReturn, &b.Status, &b.CreatedAt, &settled)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if settled.Valid {
		b.SettledAt = &settled.Time
	}
	return &b, nil
}

func (p *Postgres) ListBets(ctx context.Context, userID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, race_id, horse_id, horse_name, course, off_time,
		       bet_amount, odds, potential_return, status, created_at, settled_at
		FROM bets WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		var settled sql.NullTime
		if err := rows.Scan(&b.ID, &b.UserID, &b.RaceID, &b.HorseID, &b.HorseName, &b.Course, &b.OffTime,
			&b.BetAmount, &b.Odds, &b.PotentialReturn, &b.Status, &b.CreatedAt, &settled); err != nil {
			return nil, err
		}
		if settled.Valid {
			b.SettledAt = &settled.Time
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteBet(ctx context.Context, betID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id = $1`, betID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateBankroll devolve o bankroll do usuário, criando com o saldo
// inicial configurado na primeira consulta.
func (p *Postgres) GetOrCreateBankroll(ctx context.Context, userID string, starting float64) (Bankroll, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Bankroll{}, err
	}
	defer tx.Rollback()

	var br Bankroll
	br.UserID = userID
	err = tx.QueryRowContext(ctx, `SELECT id, current_amount FROM bankrolls WHERE user_id=$1`, userID).
		Scan(&br.ID, &br.CurrentAmount)
	if err == sql.ErrNoRows {
		br.ID = uuid.NewString()
		br.CurrentAmount = starting
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO bankrolls(id, user_id, current_amount, version) VALUES($1,$2,$3,1)`,
			br.ID, userID, starting); err != nil {
			return Bankroll{}, err
		}
	} else if err != nil {
		return Bankroll{}, err
	}

	if err = tx.Commit(); err != nil {
		return Bankroll{}, err
	}
	return br, nil
}

// AdjustBankroll aplica um delta ao saldo com lock pessimista na linha.
// Débito que estoure o saldo falha com ErrInsufficientFunds; toda mudança
// gera registro no ledger.
func (p *Postgres) AdjustBankroll(ctx context.Context, userID string, delta float64, reason string) (float64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id string
	var balance float64
	err = tx.QueryRowContext(ctx,
		`SELECT id, current_amount FROM bankrolls WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&id, &balance)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bankrolls SET current_amount=$1, version=version+1 WHERE id=$2`, newBalance, id); err != nil {
		return 0, err
	}

	op := "CREDIT"
	if delta < 0 {
		op = "DEBIT"
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO bankroll_ledger(bankroll_id, operation_type, amount, description) VALUES($1,$2,$3,$4)`,
		id, op, delta, reason); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (p *Postgres) AddShortlist(ctx context.Context, e *ShortlistEntry) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO shortlist (id, user_id, horse_id, horse_name, race_id, course, race_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, horse_id, race_id) DO NOTHING`,
		id, e.UserID, e.HorseID, e.HorseName, e.RaceID, e.Course, e.RaceTime,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) RemoveShortlist(ctx context.Context, userID, entryID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM shortlist WHERE id=$1 AND user_id=$2`, entryID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListShortlist(ctx context.Context, userID string) ([]ShortlistEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, horse_id, horse_name, race_id, course, race_time, created_at
		FROM shortlist WHERE user_id=$1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShortlistEntry
	for rows.Next() {
		var e ShortlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.HorseID, &e.HorseName, &e.RaceID,
			&e.Course, &e.RaceTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) CourseRecords(ctx context.Context, courses []string) ([]CourseRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT horse_id, horse_name, course, runs, wins
		FROM course_results
		WHERE course = ANY($1)
		ORDER BY course, horse_name`, pq.Array(courses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CourseRecord
	for rows.Next() {
		var r CourseRecord
		if err := rows.Scan(&r.HorseID, &r.HorseName, &r.Course, &r.Runs, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
