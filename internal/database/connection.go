package database

import (
	"errors"

	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/search"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect открывает Postgres по DSN
func Connect(dsn string, index search.Indexer) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return NewDatabase(db, index)
}

func (d *Database) Migrate() error {
	return d.db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Message{},
		&models.Notification{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
