package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/advert-optimiser/internal/types"
)

const advertColumns = `id, job_title, department, grade, closing_date, record, source_url,
	        content_hash, created_at, updated_at`

// SaveAdvert publishes a record. Publishing the same record twice returns the existing row.
func (db *DB) SaveAdvert(ctx context.Context, input *AdvertCreateInput) (*Advert, error) {
	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var sourceURL *string
	if input.SourceURL != "" {
		sourceURL = &input.SourceURL
	}

	r := input.Record
	row := db.pool.QueryRow(ctx,
		`INSERT INTO adverts (job_title, department, grade, closing_date, record, source_url, content_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (content_hash) DO UPDATE SET
		     source_url = COALESCE($6, adverts.source_url),
		     updated_at = NOW()
		 RETURNING `+advertColumns,
		r.Get(types.FieldJobTitle), r.Get(types.FieldDepartment), r.Get(types.FieldGrade),
		parseClosingDate(r.Get(types.FieldClosingDate)), recordJSON, sourceURL,
		HashContent(string(recordJSON)),
	)

	a, err := scanAdvert(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save advert: %w", err)
	}
	return a, nil
}

// GetAdvertByID retrieves a published advert, nil when it does not exist
func (db *DB) GetAdvertByID(ctx context.Context, id uuid.UUID) (*Advert, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+advertColumns+` FROM adverts WHERE id = $1`, id)

	a, err := scanAdvert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get advert: %w", err)
	}
	return a, nil
}

// ListAdverts lists published adverts, newest first, with the total count
func (db *DB) ListAdverts(ctx context.Context, opts ListAdvertsOptions) ([]Advert, int, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if opts.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIndex))
		args = append(args, opts.Department)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := db.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM adverts %s", whereClause), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count adverts: %w", err)
	}

	limit, offset := clampPage(opts.Limit, opts.Offset)
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM adverts %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		advertColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list adverts: %w", err)
	}
	defer rows.Close()

	var adverts []Advert
	for rows.Next() {
		a, err := scanAdvert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan advert: %w", err)
		}
		adverts = append(adverts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list adverts: %w", err)
	}

	return adverts, total, nil
}

// DeleteAdvert removes a published advert, reporting whether it existed
func (db *DB) DeleteAdvert(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM adverts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete advert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// clampPage applies the default and maximum page size
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanAdvert(row pgx.Row) (*Advert, error) {
	var a Advert
	var recordJSON []byte

	err := row.Scan(&a.ID, &a.JobTitle, &a.Department, &a.Grade, &a.ClosingDate,
		&recordJSON, &a.SourceURL, &a.ContentHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record, err := types.ParseRecord(recordJSON)
	if err != nil {
		return nil, fmt.Errorf("stored record is invalid: %w", err)
	}
	a.Record = record
	return &a, nil
}
