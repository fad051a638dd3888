// Package mock provides test doubles for the integration suite.
package mock

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cashbook/cashbook/internal/integration/persistence/model"
)

// NewDB opens a fresh in-memory database with the schema migrated. Every
// scenario gets its own database so state cannot leak between scenarios.
func NewDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.UserModel{}, &model.UserDataModel{}); err != nil {
		return nil, err
	}
	return db, nil
}
