// Package dbtest opens throwaway sqlite databases for repository and pipeline tests.
package dbtest

import (
	accountDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/account"
	hostelDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/hostel"
	invoiceDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/invoice"
	registrationDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/registration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory sqlite database with every table migrated. A single
// connection keeps the memory database alive and shared.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&accountDatamodel.Account{},
		&registrationDatamodel.TempRegistration{},
		&invoiceDatamodel.Invoice{},
		&hostelDatamodel.Hostel{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
