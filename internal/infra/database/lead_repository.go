package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

const leadsSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	phone          TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	model_interest TEXT NOT NULL,
	source         TEXT NOT NULL,
	status         TEXT NOT NULL,
	advisor_id     TEXT NOT NULL,
	advisor_name   TEXT NOT NULL,
	author_id      TEXT NOT NULL DEFAULT '',
	history        JSONB NOT NULL,
	version        BIGINT NOT NULL DEFAULT 1,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS leads_created_at_idx ON leads (created_at DESC);
`

const leadColumns = `id, name, phone, email, model_interest, source, status,
	advisor_id, advisor_name, author_id, history, version, created_at`

// invalid_text_representation: a malformed uuid can never match a row
const pqInvalidText = "22P02"

type PostgresLeadRepository struct {
	DB *sql.DB
}

func NewPostgresLeadRepository(db *sql.DB) *PostgresLeadRepository {
	return &PostgresLeadRepository{DB: db}
}

// Migrate creates the leads table when missing.
func (r *PostgresLeadRepository) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, leadsSchema)
	return err
}

func (r *PostgresLeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *PostgresLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	history, err := json.Marshal(lead.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12)
	`
	_, err = r.DB.ExecContext(ctx, query,
		id,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.ModelInterest,
		lead.Source,
		lead.Status,
		lead.AdvisorID,
		lead.AdvisorName,
		lead.AuthorID,
		history,
		createdAt,
	)
	if err != nil {
		return err
	}

	lead.ID = id
	lead.CreatedAt = createdAt
	lead.Version = 1
	return nil
}

func (r *PostgresLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *PostgresLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *PostgresLeadRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	history, err := json.Marshal(patch.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET status = $1, history = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`, patch.Status, history, id, expectedVersion)
	if isInvalidText(err) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return entity.ErrLeadNotFound
	}
	return entity.ErrVersionConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead    entity.Lead
		history []byte
	)
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.ModelInterest,
		&lead.Source,
		&lead.Status,
		&lead.AdvisorID,
		&lead.AdvisorName,
		&lead.AuthorID,
		&history,
		&lead.Version,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &lead.History); err != nil {
		return nil, fmt.Errorf("decode history of lead %s: %w", lead.ID, err)
	}
	return &lead, nil
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidText
}
