package relhost

import (
	"database/sql"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"modernc.org/sqlite/vtab"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("relhost: %q: %w", name, ErrIdentifierInvalid)
	}
	return nil
}

// RegisterVTable installs desc as the indexed-flavor module moduleName on
// db. Registration affects new connections only.
func RegisterVTable(db *sql.DB, moduleName string, desc *IndexedTableDescriptor) error {
	if err := validateIdent(moduleName); err != nil {
		return err
	}
	logrus.WithField("module", moduleName).Debug("relhost: register")
	d := desc.desc
	return vtab.RegisterModule(db, moduleName, &indexedModule{desc: &d, rows: desc.rows})
}

// RegisterCachedVTable installs desc as the cached-flavor module
// moduleName on db. Every connection created against this module shares
// the same underlying row cache.
func RegisterCachedVTable[Row any](db *sql.DB, moduleName string, desc *CachedTableDescriptor[Row]) error {
	if err := validateIdent(moduleName); err != nil {
		return err
	}
	logrus.WithField("module", moduleName).Debug("relhost: register")
	return vtab.RegisterModule(db, moduleName, &cachedModule[Row]{desc: desc.inner})
}

// RegisterGeneratorVTable installs desc as the generator-flavor module
// moduleName on db.
func RegisterGeneratorVTable[Row any](db *sql.DB, moduleName string, desc *GeneratorTableDescriptor[Row]) error {
	if err := validateIdent(moduleName); err != nil {
		return err
	}
	logrus.WithField("module", moduleName).Debug("relhost: register")
	return vtab.RegisterModule(db, moduleName, &generatorModule[Row]{desc: desc.inner})
}

// CreateVTable issues the one CREATE VIRTUAL TABLE statement that makes a
// registered module queryable under tableName. It reports whether the
// statement executed (false with a nil error is never returned; error is
// nil iff created is true).
func CreateVTable(db *sql.DB, tableName, moduleName string) (created bool, err error) {
	if err := validateIdent(tableName); err != nil {
		return false, err
	}
	if err := validateIdent(moduleName); err != nil {
		return false, err
	}
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE %s USING %s", tableName, moduleName)
	if _, err := db.Exec(stmt); err != nil {
		return false, fmt.Errorf("relhost: create virtual table %s: %w", tableName, err)
	}
	return true, nil
}
