// Package store persists canonical sanctioned entities in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sanctionwatch/internal/entity/models"
	dErrors "sanctionwatch/pkg/domain-errors"
	txcontext "sanctionwatch/pkg/platform/tx"
)

const defaultBatchSize = 1000

// PostgresStore implements entity persistence over database/sql. Write
// operations join a transaction carried in context so the sync pipeline can
// make delete-then-insert replacement atomic.
type PostgresStore struct {
	db        *sql.DB
	batchSize int
}

// NewPostgres constructs a PostgreSQL-backed entity store. batchSize bounds
// multi-row insert statements; values <= 0 fall back to the default.
func NewPostgres(db *sql.DB, batchSize int) *PostgresStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &PostgresStore{db: db, batchSize: batchSize}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// DeleteBySource removes every row for one watchlist. Runs inside the
// caller's transaction when one is present in context.
func (s *PostgresStore) DeleteBySource(ctx context.Context, source models.ListSource) (int64, error) {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM sanctioned_entities WHERE list_source = $1`, string(source))
	if err != nil {
		return 0, fmt.Errorf("delete %s entities: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s entities: rows affected: %w", source, err)
	}
	return n, nil
}

const insertColumns = 15

// InsertBatch bulk-inserts entities in multi-row statements, assigning
// surrogate IDs to rows that lack one. Joins the caller's transaction when
// present in context.
func (s *PostgresStore) InsertBatch(ctx context.Context, entities []models.SanctionedEntity) error {
	exec := s.execer(ctx)
	now := time.Now().UTC()

	for start := 0; start < len(entities); start += s.batchSize {
		end := min(start+s.batchSize, len(entities))
		batch := entities[start:end]

		placeholders := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*insertColumns)

		for i, e := range batch {
			base := i * insertColumns
			marks := make([]string, insertColumns)
			for j := range marks {
				marks[j] = fmt.Sprintf("$%d", base+j+1)
			}
			placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")

			id := e.ID
			if id == uuid.Nil {
				id = uuid.New()
			}

			addresses, err := marshalAddresses(e.Addresses)
			if err != nil {
				return fmt.Errorf("marshal addresses for %s/%s: %w", e.ListSource, e.ReferenceNumber, err)
			}

			args = append(args,
				id,
				string(e.ListSource),
				string(e.EntityType),
				e.Name,
				e.ReferenceNumber,
				nullStringArray(e.Aliases),
				addresses,
				nullTimePtr(e.DateOfBirth),
				nullString(e.PlaceOfBirth),
				nullString(e.Nationality),
				nullString(e.Reason),
				nullString(e.AdditionalInfo),
				e.DateAdded,
				now,
				now,
			)
		}

		query := `
			INSERT INTO sanctioned_entities (
				id, list_source, entity_type, name, reference_number,
				aliases, addresses, date_of_birth, place_of_birth, nationality,
				reason, additional_info, date_added, created_at, updated_at
			) VALUES ` + strings.Join(placeholders, ", ")

		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert entity batch: %w", err)
		}
	}
	return nil
}

const selectColumns = `
	id, list_source, entity_type, name, reference_number,
	aliases, addresses, date_of_birth, place_of_birth, nationality,
	reason, additional_info, date_added, created_at, updated_at`

// FindByID fetches one entity, returning a not_found domain error when the
// row does not exist.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SanctionedEntity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+selectColumns+` FROM sanctioned_entities WHERE id = $1`, id)

	entity, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find entity by id: %w", err)
	}
	return entity, nil
}

// Search returns one page of entities matching the filters plus the total
// match count. Results are ordered by name.
func (s *PostgresStore) Search(ctx context.Context, f models.SearchFilters) ([]models.SanctionedEntity, int, error) {
	where, args := buildSearchWhere(f)

	var total int
	countQuery := `SELECT count(id) FROM sanctioned_entities` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search matches: %w", err)
	}

	offset := (f.Page - 1) * f.PageSize
	dataQuery := fmt.Sprintf(
		`SELECT%s FROM sanctioned_entities%s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		selectColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search entities: %w", err)
	}
	defer rows.Close()

	results := make([]models.SanctionedEntity, 0, f.PageSize)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search rows: %w", err)
	}
	return results, total, nil
}

// Stats aggregates per-source and per-type counts plus the freshest
// updated_at per source.
func (s *PostgresStore) Stats(ctx context.Context) (*models.SourceStats, error) {
	stats := &models.SourceStats{
		CountsBySource:      make(map[models.ListSource]int, len(models.ListSources)),
		CountsByType:        make(map[models.EntityType]int, len(models.EntityTypes)),
		LastUpdatedBySource: make(map[models.ListSource]*time.Time, len(models.ListSources)),
	}
	for _, src := range models.ListSources {
		stats.CountsBySource[src] = 0
		stats.LastUpdatedBySource[src] = nil
	}
	for _, et := range models.EntityTypes {
		stats.CountsByType[et] = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT list_source, count(id), max(updated_at)
		FROM sanctioned_entities
		GROUP BY list_source`)
	if err != nil {
		return nil, fmt.Errorf("aggregate source stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			source  string
			count   int
			updated sql.NullTime
		)
		if err := rows.Scan(&source, &count, &updated); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		stats.CountsBySource[models.ListSource(source)] = count
		if updated.Valid {
			t := updated.Time
			stats.LastUpdatedBySource[models.ListSource(source)] = &t
		}
		stats.TotalRecords += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source stats: %w", err)
	}

	typeRows, err := s.db.QueryContext(ctx, `
		SELECT entity_type, count(id)
		FROM sanctioned_entities
		GROUP BY entity_type`)
	if err != nil {
		return nil, fmt.Errorf("aggregate type stats: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var (
			entityType string
			count      int
		)
		if err := typeRows.Scan(&entityType, &count); err != nil {
			return nil, fmt.Errorf("scan type stats: %w", err)
		}
		stats.CountsByType[models.EntityType(entityType)] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type stats: %w", err)
	}

	return stats, nil
}

func buildSearchWhere(f models.SearchFilters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func() int { return len(args) + 1 }

	if f.Name != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", next()))
		args = append(args, "%"+f.Name+"%")
	}
	if len(f.ListSources) > 0 {
		conds = append(conds, fmt.Sprintf("list_source = ANY($%d)", next()))
		args = append(args, pq.Array(sourceStrings(f.ListSources)))
	}
	if len(f.EntityTypes) > 0 {
		conds = append(conds, fmt.Sprintf("entity_type = ANY($%d)", next()))
		args = append(args, pq.Array(typeStrings(f.EntityTypes)))
	}
	if len(f.Nationalities) > 0 {
		conds = append(conds, fmt.Sprintf("nationality = ANY($%d)", next()))
		args = append(args, pq.Array(f.Nationalities))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*models.SanctionedEntity, error) {
	var (
		e         models.SanctionedEntity
		source    string
		eType     string
		aliases   pq.StringArray
		addresses []byte
		dob       sql.NullTime
		pob       sql.NullString
		nat       sql.NullString
		reason    sql.NullString
		info      sql.NullString
	)
	err := row.Scan(
		&e.ID, &source, &eType, &e.Name, &e.ReferenceNumber,
		&aliases, &addresses, &dob, &pob, &nat,
		&reason, &info, &e.DateAdded, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.ListSource = models.ListSource(source)
	e.EntityType = models.EntityType(eType)
	e.Aliases = []string(aliases)
	if len(addresses) > 0 {
		if err := json.Unmarshal(addresses, &e.Addresses); err != nil {
			return nil, fmt.Errorf("unmarshal addresses: %w", err)
		}
	}
	if dob.Valid {
		t := dob.Time
		e.DateOfBirth = &t
	}
	e.PlaceOfBirth = pob.String
	e.Nationality = nat.String
	e.Reason = reason.String
	e.AdditionalInfo = info.String
	return &e, nil
}

func marshalAddresses(addrs []models.Address) (any, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	return json.Marshal(addrs)
}

func nullStringArray(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return pq.Array(values)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func sourceStrings(sources []models.ListSource) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}

func typeStrings(types []models.EntityType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
