package repository

import "gorm.io/gorm"

// conn returns the open transaction when there is one, otherwise the base handle.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
