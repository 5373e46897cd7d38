package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDocumentNotFound is returned when a collection has no document with the given id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentExists is returned when a document id is already taken.
	ErrDocumentExists = errors.New("document already exists")
)

// Document is a schemaless record in a collection.
type Document struct {
	ID         string
	Collection string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Equal restricts a listing to documents whose field equals the value.
type Equal struct {
	Field string
	Value any
}

// DocumentQuery captures listing parameters.
type DocumentQuery struct {
	Filters     []Equal
	Limit       int
	Offset      int
	NewestFirst bool
}

// DocumentList is one page of a listing plus the total number of matches.
type DocumentList struct {
	Total     int
	Documents []Document
}

// DocumentStore is the document database of the backend.
type DocumentStore interface {
	Create(ctx context.Context, collection, id string, data map[string]any) (*Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, query DocumentQuery) (*DocumentList, error)
	Update(ctx context.Context, collection, id string, patch map[string]any) (*Document, error)
	Delete(ctx context.Context, collection, id string) error
}

type documentRepository struct {
	pool       *pgxpool.Pool
	databaseID string
}

// NewDocumentRepository returns a Postgres-backed document store; documents live in a
// JSONB column namespaced by database id.
func NewDocumentRepository(pool *pgxpool.Pool, databaseID string) DocumentStore {
	return &documentRepository{pool: pool, databaseID: databaseID}
}

func (r *documentRepository) Create(ctx context.Context, collection, id string, data map[string]any) (*Document, error) {
	const query = `
        INSERT INTO documents (database_id, collection_id, id, data)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	doc := &Document{ID: id, Collection: collection, Data: data}
	if err := r.pool.QueryRow(ctx, query, r.databaseID, collection, id, raw).Scan(&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDocumentExists
		}
		return nil, err
	}
	return doc, nil
}

func (r *documentRepository) Get(ctx context.Context, collection, id string) (*Document, error) {
	const query = `
        SELECT id, data, created_at, updated_at
        FROM documents WHERE database_id=$1 AND collection_id=$2 AND id=$3`

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, r.databaseID, collection, id), collection)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

func (r *documentRepository) List(ctx context.Context, collection string, q DocumentQuery) (*DocumentList, error) {
	clauses := []string{"database_id=$1", "collection_id=$2"}
	args := []any{r.databaseID, collection}

	for _, filter := range q.Filters {
		args = append(args, filter.Field)
		field := len(args)
		args = append(args, fmt.Sprint(filter.Value))
		clauses = append(clauses, fmt.Sprintf("data->>$%d::text = $%d", field, len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents WHERE "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	order := "ASC"
	if q.NewestFirst {
		order = "DESC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM documents
             WHERE %s ORDER BY created_at %s, id %s LIMIT %d OFFSET %d`,
		where, order, order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &DocumentList{Total: total, Documents: []Document{}}
	for rows.Next() {
		doc, err := scanDocument(rows, collection)
		if err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, *doc)
	}
	return result, rows.Err()
}

func (r *documentRepository) Update(ctx context.Context, collection, id string, patch map[string]any) (*Document, error) {
	const query = `
        UPDATE documents SET data = data || $4::jsonb, updated_at=NOW()
        WHERE database_id=$1 AND collection_id=$2 AND id=$3
        RETURNING id, data, created_at, updated_at`

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, r.databaseID, collection, id, raw), collection)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

func (r *documentRepository) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE database_id=$1 AND collection_id=$2 AND id=$3`

	cmd, err := r.pool.Exec(ctx, query, r.databaseID, collection, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row, collection string) (*Document, error) {
	var (
		doc Document
		raw []byte
	)
	if err := row.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	doc.Collection = collection
	return &doc, nil
}
