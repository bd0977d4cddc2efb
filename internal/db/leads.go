package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/dedup"
	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/store"
	"github.com/jonathan/leadgen/internal/types"
)

// leadsLockKey is the advisory lock serializing the check+insert of a batch.
const leadsLockKey int64 = 0x6c65616473 // "leads"

const uniqueViolation = "23505"

const leadColumns = `id, name, address, city, country, niche, phone, email, website, source,
	scraped_at, name_hash, address_hash, email_hash, phone_hash, created_at, updated_at`

// InsertMany inserts candidates in order inside one transaction, skipping any
// that match a stored lead. A unique violation counts as a duplicate; other
// per-row failures are logged and skipped.
func (db *DB) InsertMany(ctx context.Context, candidates []types.Candidate) (types.InsertResult, error) {
	if len(candidates) == 0 {
		return types.InsertResult{}, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, leadsLockKey); err != nil {
		return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "failed to acquire lock", Cause: err}
	}

	result := types.InsertResult{TotalProcessed: len(candidates)}
	for _, c := range candidates {
		identity := dedup.IdentityOf(c)

		duplicate, err := isDuplicate(ctx, tx, identity)
		if err != nil {
			return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "failed to check duplicate", Cause: err}
		}
		if duplicate {
			result.DuplicatesFound++
			continue
		}

		inserted, err := insertLead(ctx, tx, c, identity)
		switch {
		case err != nil:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				result.DuplicatesFound++
				continue
			}
			if ctx.Err() != nil {
				return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "context done", Cause: ctx.Err()}
			}
			zap.L().Warn("skipping lead that failed to insert",
				zap.String("name", c.Name), zap.String("source", c.Source), zap.Error(err))
		case inserted:
			result.SuccessfullyInserted++
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO dedup_log (operation_type, total_leads, duplicates_found, duplicates_removed, final_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		types.OperationInsertWithDedup, result.TotalProcessed,
		result.DuplicatesFound, result.DuplicatesFound, result.SuccessfullyInserted,
	)
	if err != nil {
		return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "failed to write dedup log", Cause: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.InsertResult{}, &store.StoreError{Op: "insert", Message: "failed to commit", Cause: err}
	}

	observability.LeadsProcessed.WithLabelValues("inserted").Add(float64(result.SuccessfullyInserted))
	observability.LeadsProcessed.WithLabelValues("duplicate").Add(float64(result.DuplicatesFound))

	return result, nil
}

func isDuplicate(ctx context.Context, tx pgx.Tx, id dedup.Identity) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM leads
			WHERE (($1::text <> '' OR $2::text <> '') AND name_hash = $1 AND address_hash = $2)
			   OR ($3::text <> '' AND $4::text <> '' AND email_hash = $3 AND phone_hash = $4)
			   OR ($3::text <> '' AND email_hash = $3)
		)`,
		id.NameHash, id.AddressHash, id.EmailHash, id.PhoneHash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return exists, nil
}

// insertLead writes one row inside a savepoint so a failed row does not abort
// the batch transaction.
func insertLead(ctx context.Context, tx pgx.Tx, c types.Candidate, id dedup.Identity) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create savepoint: %w", err)
	}

	tag, err := sp.Exec(ctx,
		`INSERT INTO leads (name, address, city, country, niche, phone, email, website, source,
		                    scraped_at, name_hash, address_hash, email_hash, phone_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.Name, c.Address, c.City, c.Country, c.Niche, c.Phone, c.Email, c.Website, c.Source,
		c.ScrapedAt, id.NameHash, id.AddressHash, id.EmailHash, id.PhoneHash,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		return false, fmt.Errorf("failed to insert lead: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Query returns leads matching filters, newest first. A limit <= 0 returns all.
func (db *DB) Query(ctx context.Context, filters store.Filters, limit int) ([]types.Lead, error) {
	where, args := filterClause(filters)
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1` + where

	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &store.StoreError{Op: "query", Message: "failed to query leads", Cause: err}
	}
	defer rows.Close()

	leads := []types.Lead{}
	for rows.Next() {
		var l types.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.Country, &l.Niche,
			&l.Phone, &l.Email, &l.Website, &l.Source, &l.ScrapedAt,
			&l.NameHash, &l.AddressHash, &l.EmailHash, &l.PhoneHash,
			&l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, &store.StoreError{Op: "query", Message: "failed to scan lead", Cause: err}
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.StoreError{Op: "query", Message: "failed to read leads", Cause: err}
	}
	return leads, nil
}

// filterClause builds the AND conditions for filters. City, country and niche
// match as literal case-insensitive substrings.
func filterClause(filters store.Filters) (string, []any) {
	var clause strings.Builder
	args := []any{}
	argNum := 1

	for _, f := range []struct{ column, value string }{
		{"city", filters.City},
		{"country", filters.Country},
		{"niche", filters.Niche},
	} {
		if f.value == "" {
			continue
		}
		clause.WriteString(fmt.Sprintf(` AND %s ILIKE $%d ESCAPE '\'`, f.column, argNum))
		args = append(args, "%"+escapeLike(f.value)+"%")
		argNum++
	}
	if filters.Source != "" {
		clause.WriteString(fmt.Sprintf(" AND source = $%d", argNum))
		args = append(args, filters.Source)
	}

	return clause.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in v match literally.
func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

// Stats returns aggregate counts over the leads table.
func (db *DB) Stats(ctx context.Context) (*types.Stats, error) {
	stats := &types.Stats{LeadsBySource: make(map[string]int)}

	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '7 days')
		 FROM leads`,
	).Scan(&stats.TotalLeads, &stats.RecentLeads)
	if err != nil {
		return nil, &store.StoreError{Op: "stats", Message: "failed to count leads", Cause: err}
	}

	bySource, err := db.buckets(ctx, `SELECT source, COUNT(*) FROM leads GROUP BY source`)
	if err != nil {
		return nil, err
	}
	for _, b := range bySource {
		stats.LeadsBySource[b.Key] = b.Count
	}

	stats.LeadsByCity, err = db.buckets(ctx,
		`SELECT city, COUNT(*) AS n FROM leads GROUP BY city ORDER BY n DESC, city LIMIT 10`)
	if err != nil {
		return nil, err
	}
	stats.LeadsByNiche, err = db.buckets(ctx,
		`SELECT niche, COUNT(*) AS n FROM leads GROUP BY niche ORDER BY n DESC, niche LIMIT 10`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (db *DB) buckets(ctx context.Context, query string) ([]types.Bucket, error) {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, &store.StoreError{Op: "stats", Message: "failed to aggregate leads", Cause: err}
	}
	defer rows.Close()

	buckets := []types.Bucket{}
	for rows.Next() {
		var b types.Bucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, &store.StoreError{Op: "stats", Message: "failed to scan aggregate", Cause: err}
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.StoreError{Op: "stats", Message: "failed to read aggregate", Cause: err}
	}
	return buckets, nil
}

// CleanupDuplicates removes all but the oldest row of every (name, address)
// group and every non-empty (email, phone) group.
func (db *DB) CleanupDuplicates(ctx context.Context) (types.CleanupResult, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, leadsLockKey); err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to acquire lock", Cause: err}
	}

	var result types.CleanupResult
	err = tx.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM (
		      SELECT 1 FROM leads GROUP BY name_hash, address_hash HAVING COUNT(*) > 1) g) +
		   (SELECT COUNT(*) FROM (
		      SELECT 1 FROM leads WHERE email_hash <> '' AND phone_hash <> ''
		      GROUP BY email_hash, phone_hash HAVING COUNT(*) > 1) g)`,
	).Scan(&result.DuplicatesFound)
	if err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to count duplicate groups", Cause: err}
	}

	byNameAddress, err := tx.Exec(ctx,
		`DELETE FROM leads l
		 USING (SELECT name_hash, address_hash, MIN(id) AS keep_id
		        FROM leads GROUP BY name_hash, address_hash HAVING COUNT(*) > 1) d
		 WHERE l.name_hash = d.name_hash AND l.address_hash = d.address_hash AND l.id <> d.keep_id`)
	if err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to remove name/address duplicates", Cause: err}
	}

	byEmailPhone, err := tx.Exec(ctx,
		`DELETE FROM leads l
		 USING (SELECT email_hash, phone_hash, MIN(id) AS keep_id
		        FROM leads WHERE email_hash <> '' AND phone_hash <> ''
		        GROUP BY email_hash, phone_hash HAVING COUNT(*) > 1) d
		 WHERE l.email_hash = d.email_hash AND l.phone_hash = d.phone_hash AND l.id <> d.keep_id`)
	if err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to remove email/phone duplicates", Cause: err}
	}

	result.DuplicatesRemoved = int(byNameAddress.RowsAffected() + byEmailPhone.RowsAffected())

	_, err = tx.Exec(ctx,
		`INSERT INTO dedup_log (operation_type, total_leads, duplicates_found, duplicates_removed, final_count)
		 VALUES ($1, 0, $2, $3, 0)`,
		types.OperationCleanupDuplicates, result.DuplicatesFound, result.DuplicatesRemoved,
	)
	if err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to write dedup log", Cause: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.CleanupResult{}, &store.StoreError{Op: "cleanup", Message: "failed to commit", Cause: err}
	}

	observability.LeadsProcessed.WithLabelValues("removed").Add(float64(result.DuplicatesRemoved))
	return result, nil
}

// DedupLog returns dedup log entries newest first. A limit <= 0 returns all.
func (db *DB) DedupLog(ctx context.Context, limit int) ([]types.DedupLogEntry, error) {
	query := `SELECT id, operation_type, total_leads, duplicates_found, duplicates_removed, final_count, created_at
	          FROM dedup_log ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &store.StoreError{Op: "dedup-log", Message: "failed to query dedup log", Cause: err}
	}
	defer rows.Close()

	entries := []types.DedupLogEntry{}
	for rows.Next() {
		var e types.DedupLogEntry
		if err := rows.Scan(&e.ID, &e.Operation, &e.TotalProcessed, &e.DuplicatesFound,
			&e.DuplicatesRemoved, &e.FinalCount, &e.CreatedAt); err != nil {
			return nil, &store.StoreError{Op: "dedup-log", Message: "failed to scan entry", Cause: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.StoreError{Op: "dedup-log", Message: "failed to read dedup log", Cause: err}
	}
	return entries, nil
}
