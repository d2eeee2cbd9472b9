// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/courtside/internal/platform/database/schema"
	"github.com/taibuivan/courtside/internal/platform/dberr"
)

// PostgresJournal persists sagas in the reconcile.saga table.
type PostgresJournal struct {
	db *pgxpool.Pool
}

func NewPostgresJournal(db *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (journal *PostgresJournal) Record(ctx context.Context, saga *Saga) error {
	t := schema.ReconcileSaga
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s;
	`,
		t.Table, strings.Join(t.Columns(), ", "),
		t.ID,
		t.State, t.State,
		t.FailedAt, t.FailedAt,
		t.ExternalID, t.ExternalID,
		t.ProfileID, t.ProfileID,
		t.ErrorCode, t.ErrorCode,
		t.ErrorMessage, t.ErrorMessage,
		t.UpdatedAt, t.UpdatedAt,
	)

	_, err := journal.db.Exec(ctx, query,
		saga.ID, string(saga.Kind), string(saga.State), string(saga.FailedAt),
		saga.Identification, saga.Email, saga.ExternalID, saga.ProfileID,
		saga.ErrorCode, saga.ErrorMessage, saga.RequestID, saga.CreatedAt, saga.UpdatedAt,
	)
	return dberr.Wrap(err, "Saga")
}

func (journal *PostgresJournal) Get(ctx context.Context, id uuid.UUID) (*Saga, error) {
	t := schema.ReconcileSaga
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1;`,
		strings.Join(t.Columns(), ", "), t.Table, t.ID)

	saga, err := scanSaga(journal.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Saga")
	}
	return saga, nil
}

func (journal *PostgresJournal) Orphans(ctx context.Context) ([]*Saga, error) {
	t := schema.ReconcileSaga
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = ANY($2)
		ORDER BY %s DESC;
	`,
		strings.Join(t.Columns(), ", "), t.Table,
		t.State, t.FailedAt,
		t.UpdatedAt,
	)

	orphanStates := []string{string(StatePersonCreated), string(StateIdentityResolved)}
	rows, err := journal.db.Query(ctx, query, string(StateFailed), orphanStates)
	if err != nil {
		return nil, dberr.Wrap(err, "Saga")
	}
	defer rows.Close()

	orphans := make([]*Saga, 0)
	for rows.Next() {
		saga, err := scanSaga(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Saga")
		}
		orphans = append(orphans, saga)
	}
	return orphans, dberr.Wrap(rows.Err(), "Saga")
}

func scanSaga(row pgx.Row) (*Saga, error) {
	var saga Saga
	var kind, state, failedAt string
	err := row.Scan(
		&saga.ID, &kind, &state, &failedAt,
		&saga.Identification, &saga.Email, &saga.ExternalID, &saga.ProfileID,
		&saga.ErrorCode, &saga.ErrorMessage, &saga.RequestID, &saga.CreatedAt, &saga.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	saga.Kind = Kind(kind)
	saga.State = State(state)
	saga.FailedAt = State(failedAt)
	return &saga, nil
}
