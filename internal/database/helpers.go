package database

import "database/sql"

// requireRow turns a zero-row exec result into the caller's not-found
// sentinel. Card updates and deletes address one row by primary key, so
// zero rows affected means the card is already gone (possibly swept).
func requireRow(result sql.Result, err, missing error) error {
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}

	return nil
}
