package output

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/vmelnikov/addrlink/internal/pipeline"
)

// KeyColumn is the column added to the input table to carry the
// resolved key of each address.
const KeyColumn = "key_street_house"

// PostgresWorker writes records to an output table and writes the
// resolved keys back into the input table.
type PostgresWorker struct {
	DB          *sqlx.DB
	OutputTable string
	InputTable  string // key write-back target; empty disables write-back
	// IDColumn selects write-back by identity value; when empty the
	// write-back matches on the trimmed, upper-cased address text.
	IDColumn      string
	AddressColumn string
	Logger        *logrus.Logger
}

// Save creates the output table when needed, inserts the records and
// updates the key column of the input table.
func (w *PostgresWorker) Save(records []pipeline.Record) error {
	logger := w.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := w.createOutputTable(); err != nil {
		return err
	}

	tx, err := w.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := fmt.Sprintf(
		`INSERT INTO %s (raw_address, street_name, street_type, house, flat, key, id_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pq.QuoteIdentifier(w.OutputTable)) // #nosec G201 -- identifier quoted
	for _, rec := range records {
		var flat any
		if rec.Address.Flat != nil {
			flat = *rec.Address.Flat
		}
		var id any
		if rec.ID != "" {
			id = rec.ID
		}
		if _, err := tx.Exec(insert,
			rec.Raw,
			rec.Address.Street.Name,
			rec.Address.Street.Type.Short(),
			rec.Address.House,
			flat,
			rec.Key,
			id,
		); err != nil {
			return fmt.Errorf("failed to insert result for %q: %w", rec.Raw, err)
		}
	}

	updated, err := w.writeBackKeys(tx, records)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"output_table": w.OutputTable,
		"inserted":     len(records),
		"keys_updated": updated,
	}).Info("Results written to database")
	return nil
}

func (w *PostgresWorker) createOutputTable() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id SERIAL PRIMARY KEY,
		raw_address TEXT,
		street_name TEXT,
		street_type TEXT,
		house TEXT,
		flat INTEGER,
		key INTEGER,
		id_value TEXT
	)`, pq.QuoteIdentifier(w.OutputTable)) // #nosec G201 -- identifier quoted
	if _, err := w.DB.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create output table %s: %w", w.OutputTable, err)
	}
	return nil
}

// writeBackKeys updates the key column on the input table, creating
// the column first when it does not exist yet.
func (w *PostgresWorker) writeBackKeys(tx *sqlx.Tx, records []pipeline.Record) (int, error) {
	if w.InputTable == "" {
		return 0, nil
	}

	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s INTEGER",
		pq.QuoteIdentifier(w.InputTable), pq.QuoteIdentifier(KeyColumn)) // #nosec G201 -- identifiers quoted
	if _, err := tx.Exec(alter); err != nil {
		return 0, fmt.Errorf("failed to add key column to %s: %w", w.InputTable, err)
	}

	var update string
	byID := w.IDColumn != ""
	if byID {
		update = fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s::text = $2",
			pq.QuoteIdentifier(w.InputTable),
			pq.QuoteIdentifier(KeyColumn),
			pq.QuoteIdentifier(w.IDColumn)) // #nosec G201 -- identifiers quoted
	} else {
		update = fmt.Sprintf("UPDATE %s SET %s = $1 WHERE TRIM(BOTH FROM UPPER(%s)) = TRIM(BOTH FROM UPPER($2))",
			pq.QuoteIdentifier(w.InputTable),
			pq.QuoteIdentifier(KeyColumn),
			pq.QuoteIdentifier(w.AddressColumn)) // #nosec G201 -- identifiers quoted
	}

	updated := 0
	for _, rec := range records {
		arg := rec.Raw
		if byID {
			if rec.ID == "" {
				continue
			}
			arg = rec.ID
		}
		res, err := tx.Exec(update, rec.Key, arg)
		if err != nil {
			return updated, fmt.Errorf("failed to update key for %q: %w", rec.Raw, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += int(n)
		}
	}
	return updated, nil
}
