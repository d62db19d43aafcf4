package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/salesbookhq/salesbook_backend/utils"
	"gorm.io/gorm"
)

// Migration is one schema/data transformation step. Steps are registered in a
// strictly ascending version order and each runs at most once, inside its own
// transaction, with the version recorded in the same transaction. A step either
// fully commits or leaves the schema at the prior version.
type Migration struct {
	Version     int
	Description string
	Run         func(tx *gorm.DB) error
}

type SchemaMigration struct {
	Version     int       `gorm:"primaryKey" json:"version"`
	Description string    `gorm:"size:255;not null" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// RunMigrations brings the database up to the latest registered schema version.
// Re-running against an already-migrated database is a no-op.
func RunMigrations(db *gorm.DB) error {
	return ApplyMigrations(db, migrationList())
}

// ApplyMigrations validates the recorded version history against the step list
// and applies every pending step in order. A recorded history that is not a
// gap-free prefix of the registered list means some other (newer or corrupted)
// build touched the schema; applying further steps against an assumed shape is
// unsafe, so this fails with utils.ErrorMigrationOutOfOrder instead.
func ApplyMigrations(db *gorm.DB, steps []Migration) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at DATETIME NOT NULL
	);`).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i := 1; i < len(steps); i++ {
		if steps[i].Version <= steps[i-1].Version {
			return fmt.Errorf("%w: registered step %d follows %d", utils.ErrorMigrationOutOfOrder, steps[i].Version, steps[i-1].Version)
		}
	}

	var applied []SchemaMigration
	if err := db.Order("version ASC").Find(&applied).Error; err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	if len(applied) > len(steps) {
		return fmt.Errorf("%w: database has %d recorded versions but only %d are registered", utils.ErrorMigrationOutOfOrder, len(applied), len(steps))
	}
	for i, record := range applied {
		if record.Version != steps[i].Version {
			return fmt.Errorf("%w: recorded version %d at position %d, expected %d", utils.ErrorMigrationOutOfOrder, record.Version, i+1, steps[i].Version)
		}
	}

	pending := steps[len(applied):]
	for _, step := range pending {
		if err := applyStep(db, step); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.Version, step.Description, err)
		}
	}
	if len(pending) > 0 {
		if err := foreignKeyCheck(db); err != nil {
			return err
		}
	}
	return nil
}

func applyStep(db *gorm.DB, step Migration) error {
	// Table rebuilds (copy -> drop -> rename) would fire implicit cascading
	// deletes on DROP TABLE while foreign keys are enforced, so each step runs
	// with foreign keys off and the whole sequence is verified with
	// foreign_key_check afterwards. PRAGMA foreign_keys cannot change inside a
	// transaction, hence the toggle on the pooled connection around it; the
	// store runs with a single open connection, so the pragma and the
	// transaction share one connection.
	if err := db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		return err
	}
	defer db.Exec("PRAGMA foreign_keys = ON")

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() { _ = tx.Rollback().Error }()

	if err := step.Run(tx); err != nil {
		return err
	}
	record := SchemaMigration{
		Version:     step.Version,
		Description: step.Description,
		AppliedAt:   time.Now().UTC(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}
	return tx.Commit().Error
}

type foreignKeyViolation struct {
	Table  string `gorm:"column:table"`
	Rowid  int64  `gorm:"column:rowid"`
	Parent string `gorm:"column:parent"`
	Fkid   int64  `gorm:"column:fkid"`
}

func foreignKeyCheck(db *gorm.DB) error {
	var violations []foreignKeyViolation
	if err := db.Raw("PRAGMA foreign_key_check").Scan(&violations).Error; err != nil {
		return fmt.Errorf("foreign_key_check: %w", err)
	}
	if len(violations) > 0 {
		v := violations[0]
		return fmt.Errorf("foreign key violation after migration: table %s rowid %d references missing row in %s (%d total)",
			v.Table, v.Rowid, v.Parent, len(violations))
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 for a fresh store.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version *int
	if err := db.Model(&SchemaMigration{}).Select("MAX(version)").Scan(&version).Error; err != nil {
		return 0, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// sqlStep wraps a DDL/DML script as a migration body. The script is split on
// statement-terminating semicolons at line ends; none of the registered scripts
// embed semicolons inside literals.
func sqlStep(script string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, stmt := range splitStatements(script) {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	}
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
