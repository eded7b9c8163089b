package testhelpers

import (
	"fmt"
	"strings"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

// CleanupDB empties every public table except the migration bookkeeping and
// resets the sequences.
func CleanupDB(db *gorm.DB) {
	var tables []string

	err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'").
		Scan(&tables).Error
	g.Expect(err).NotTo(g.HaveOccurred())

	if len(tables) == 0 {
		return
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}

	err = db.Exec("TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE").Error
	g.Expect(err).NotTo(g.HaveOccurred(), "failed to truncate: "+strings.Join(tables, ", "))
}
