package database

import (
	"fmt"

	"gorm.io/gorm"
)

// ExecuteQuery runs a raw SQL statement with named parameters and returns the
// result rows as generic maps, column names untouched.
func ExecuteQuery(db *gorm.DB, query string, params map[string]any) ([]map[string]any, error) {
	rows := []map[string]any{}

	tx := db.Raw(query, params)
	if params == nil {
		tx = db.Raw(query)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return rows, nil
}

// BulkInsert inserts rows into a table in batches.
func BulkInsert(db *gorm.DB, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	if err := db.Table(table).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("bulk insert into %s failed: %w", table, err)
	}

	return nil
}
