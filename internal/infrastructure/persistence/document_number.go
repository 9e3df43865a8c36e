package persistence

import (
	"fmt"

	"gorm.io/gorm"
)

// documentCounter is one allocation row per document-number prefix. The
// upsert in generateDocumentNumber locks the row, so concurrent allocations
// under the same prefix serialize and every caller sees a distinct value.
type documentCounter struct {
	Prefix string `gorm:"type:varchar(20);primary_key"`
	Value  int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (documentCounter) TableName() string {
	return "document_counters"
}

// generateDocumentNumber allocates the next number under the prefix from its
// counter row, e.g. PO-2026-00042. Numbers are strictly monotonic per prefix;
// allocations roll back with the surrounding transaction, so gaps can appear
// but duplicates cannot.
func generateDocumentNumber(db *gorm.DB, prefix string) (string, error) {
	var next int64
	err := db.Raw(
		`INSERT INTO document_counters (prefix, value) VALUES (?, 1)
		 ON CONFLICT (prefix) DO UPDATE SET value = document_counters.value + 1
		 RETURNING value`, prefix).Scan(&next).Error
	if err != nil {
		return "", fmt.Errorf("allocating %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}
