// Package repository persists wizard sessions, document metadata and the
// client-state key-value rows in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sellerdesk/onboard/internal/database"
	"github.com/sellerdesk/onboard/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SessionRepository handles wizard session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository.
// Returns error if pool is nil.
func NewSessionRepository(pool *pgxpool.Pool) (*SessionRepository, error) {
	if pool == nil {
		return nil, errors.New("database pool is required")
	}
	return &SessionRepository{pool: pool}, nil
}

// SessionRow is a persisted wizard session.
type SessionRow struct {
	ID              string
	CurrentStep     int
	SubmissionState string
	SellerID        string
	Form            model.FormState
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DocumentRow is a persisted document slot, content included.
type DocumentRow struct {
	SessionID   string
	Slot        model.DocumentSlot
	Filename    string
	ContentType string
	SizeBytes   int64
	CapturedAt  time.Time
	Content     []byte
}

// UpsertSession writes a session snapshot, replacing any previous row.
func (r *SessionRepository) UpsertSession(ctx context.Context, row SessionRow) error {
	form, err := json.Marshal(row.Form)
	if err != nil {
		return fmt.Errorf("encode form state: %w", err)
	}

	query, args, err := database.QB.
		Insert("wizard_sessions").
		Columns("id", "current_step", "submission_state", "seller_id", "form", "created_at", "updated_at").
		Values(row.ID, row.CurrentStep, row.SubmissionState, row.SellerID, form, row.CreatedAt, row.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			submission_state = EXCLUDED.submission_state,
			seller_id = EXCLUDED.seller_id,
			form = EXCLUDED.form,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession loads a session snapshot by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*SessionRow, error) {
	query, args, err := database.QB.
		Select("id", "current_step", "submission_state", "seller_id", "form", "created_at", "updated_at").
		From("wizard_sessions").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	var (
		row  SessionRow
		form []byte
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&row.ID,
		&row.CurrentStep,
		&row.SubmissionState,
		&row.SellerID,
		&form,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	if err := json.Unmarshal(form, &row.Form); err != nil {
		return nil, fmt.Errorf("decode form state: %w", err)
	}
	return &row, nil
}

// SaveDocument writes a document slot, replacing any previous content.
func (r *SessionRepository) SaveDocument(ctx context.Context, doc DocumentRow) error {
	query, args, err := database.QB.
		Insert("wizard_documents").
		Columns("session_id", "slot", "filename", "content_type", "size_bytes", "captured_at", "content").
		Values(doc.SessionID, string(doc.Slot), doc.Filename, doc.ContentType, doc.SizeBytes, doc.CapturedAt, doc.Content).
		Suffix(`ON CONFLICT (session_id, slot) DO UPDATE SET
			filename = EXCLUDED.filename,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			captured_at = EXCLUDED.captured_at,
			content = EXCLUDED.content`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build document upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document slot.
func (r *SessionRepository) DeleteDocument(ctx context.Context, sessionID string, slot model.DocumentSlot) error {
	query, args, err := database.QB.
		Delete("wizard_documents").
		Where("session_id = ? AND slot = ?", sessionID, string(slot)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build document delete: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// GetDocuments loads all document slots of a session.
func (r *SessionRepository) GetDocuments(ctx context.Context, sessionID string) ([]DocumentRow, error) {
	query, args, err := database.QB.
		Select("session_id", "slot", "filename", "content_type", "size_bytes", "captured_at", "content").
		From("wizard_documents").
		Where("session_id = ?", sessionID).
		OrderBy("slot").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build documents query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var (
			doc  DocumentRow
			slot string
		)
		if err := rows.Scan(&doc.SessionID, &slot, &doc.Filename, &doc.ContentType, &doc.SizeBytes, &doc.CapturedAt, &doc.Content); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Slot = model.DocumentSlot(slot)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}
