package database

import (
	"context"
	"errors"
	"fmt"

	"netinfo/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	blockInsertBatchSize = 500
)

// EnsureBlockSchema creates the blocks relation if absent and applies the
// Postgres-side schema AutoMigrate cannot express: the containment index,
// the full-text index, and the uniqueness constraint the incremental upsert
// relies on.
func EnsureBlockSchema() error {
	if DB == nil {
		return errors.New("database not initialised")
	}

	if err := DB.AutoMigrate(&domain.Block{}); err != nil {
		return fmt.Errorf("block schema: %w", err)
	}

	// The upsert's conflict target; portable SQL, applied everywhere.
	uniqueIdx := `CREATE UNIQUE INDEX IF NOT EXISTS uq_blocks_inetnum_source ON blocks (inetnum, source)`
	if err := DB.Exec(uniqueIdx).Error; err != nil {
		return fmt.Errorf("block schema: %w", err)
	}
	return execPostgresIndexes()
}

// ResetBlockSchema drops and recreates the blocks relation for a
// full-refresh run. The recreated table carries no uniqueness constraint:
// full-refresh inserts duplicates by design (one range can decompose into
// several CIDRs and source objects are not deduplicated).
func ResetBlockSchema() error {
	if DB == nil {
		return errors.New("database not initialised")
	}

	if err := DB.Migrator().DropTable(&domain.Block{}); err != nil {
		return fmt.Errorf("block schema: drop: %w", err)
	}
	if err := DB.AutoMigrate(&domain.Block{}); err != nil {
		return fmt.Errorf("block schema: %w", err)
	}
	return execPostgresIndexes()
}

// execPostgresIndexes applies the containment and full-text indexes. Both
// are Postgres-specific; on other dialects (the SQLite test databases) they
// are skipped.
func execPostgresIndexes() error {
	if DB.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_blocks_inetnum_gist ON blocks USING gist (inetnum inet_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_description_fts ON blocks USING gin (to_tsvector('english', description))`,
	}
	for _, stmt := range stmts {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("block schema: %w", err)
		}
	}
	return nil
}

// InsertBlocks writes records without any identity check. Used by
// full-refresh runs against a freshly recreated table.
func InsertBlocks(blocks []domain.Block) error {
	if DB == nil {
		return errors.New("database not initialised")
	}
	if len(blocks) == 0 {
		return nil
	}
	return DB.CreateInBatches(&blocks, blockInsertBatchSize).Error
}

// UpsertBlocks writes records keyed on (inetnum, source); on conflict every
// mutable column is overwritten with the incoming value, the identity
// columns never.
func UpsertBlocks(blocks []domain.Block) error {
	if DB == nil {
		return errors.New("database not initialised")
	}
	blocks = dedupeBlocks(blocks)
	if len(blocks) == 0 {
		return nil
	}

	return DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inetnum"}, {Name: "source"}},
		DoUpdates: clause.Assignments(map[string]any{
			"netname":       gorm.Expr("EXCLUDED.netname"),
			"description":   gorm.Expr("EXCLUDED.description"),
			"country":       gorm.Expr("EXCLUDED.country"),
			"maintained_by": gorm.Expr("EXCLUDED.maintained_by"),
			"created":       gorm.Expr("EXCLUDED.created"),
			"last_modified": gorm.Expr("EXCLUDED.last_modified"),
			"status":        gorm.Expr("EXCLUDED.status"),
			"import_date":   gorm.Expr("EXCLUDED.import_date"),
		}),
	}).CreateInBatches(&blocks, blockInsertBatchSize).Error
}

// dedupeBlocks keeps the last record per (inetnum, source), preserving first
// occurrence order. Dumps do repeat an identity within one registry (an
// inetnum object plus a route object for the same prefix), and Postgres
// rejects a multi-row ON CONFLICT DO UPDATE that touches the same target row
// twice.
func dedupeBlocks(blocks []domain.Block) []domain.Block {
	type identity struct {
		inetnum string
		source  string
	}

	index := make(map[identity]int, len(blocks))
	deduped := make([]domain.Block, 0, len(blocks))
	for _, block := range blocks {
		key := identity{block.Inetnum, block.Source}
		if at, seen := index[key]; seen {
			deduped[at] = block
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, block)
	}
	return deduped
}

// LookupIP returns every stored block containing the given address, most
// specific prefix first.
func LookupIP(ctx context.Context, ip string, limit int) ([]domain.Block, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	var blocks []domain.Block
	err := DB.WithContext(ctx).
		Where("inetnum >> ?", ip).
		Order("inetnum DESC").
		Limit(limit).
		Find(&blocks).Error
	return blocks, err
}

// SearchNetname finds blocks by network name, either exactly or by
// case-insensitive substring.
func SearchNetname(ctx context.Context, netname string, exact bool, limit int) ([]domain.Block, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB.WithContext(ctx)
	if exact {
		db = db.Where("netname = ?", netname)
	} else {
		db = db.Where("LOWER(netname) LIKE LOWER(?)", "%"+netname+"%")
	}

	var blocks []domain.Block
	err := db.Order("last_modified DESC").Limit(limit).Find(&blocks).Error
	return blocks, err
}

// SearchDescription runs a ranked full-text search over the description
// column.
func SearchDescription(ctx context.Context, searchText string, limit int) ([]domain.Block, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	var blocks []domain.Block
	err := DB.WithContext(ctx).
		Where("to_tsvector('english', description) @@ plainto_tsquery('english', ?)", searchText).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(to_tsvector('english', description), plainto_tsquery('english', ?)) DESC",
			Vars:               []any{searchText},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&blocks).Error
	return blocks, err
}

// SearchCountry finds blocks by country-code prefix, optionally narrowed by
// a netname substring.
func SearchCountry(ctx context.Context, countryCode, netnameFilter string, limit int) ([]domain.Block, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB.WithContext(ctx).Where("LOWER(country) LIKE LOWER(?)", countryCode+"%")
	if netnameFilter != "" {
		db = db.Where("LOWER(netname) LIKE LOWER(?)", "%"+netnameFilter+"%")
	}

	var blocks []domain.Block
	err := db.Order("last_modified DESC").Limit(limit).Find(&blocks).Error
	return blocks, err
}

// BlockStats returns the total row count and the per-registry breakdown.
func BlockStats(ctx context.Context) (int64, map[string]int64, error) {
	if DB == nil {
		return 0, nil, errors.New("database not initialised")
	}

	db := DB.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.Block{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []struct {
		Source string
		Count  int64
	}
	err := db.Model(&domain.Block{}).
		Select("source, COUNT(*) as count").
		Group("source").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	bySource := make(map[string]int64, len(rows))
	for _, row := range rows {
		bySource[row.Source] = row.Count
	}
	return total, bySource, nil
}
