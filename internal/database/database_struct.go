package database

import (
	"context"

	"github.com/thereayou/microblog/internal/search"
	"gorm.io/gorm"
)

type Database struct {
	db    *gorm.DB
	index search.Indexer
}

// NewDatabase оборачивает открытое соединение и подключает зеркалирование в поисковый индекс
func NewDatabase(db *gorm.DB, index search.Indexer) (*Database, error) {
	if err := search.RegisterCallbacks(db, index); err != nil {
		return nil, err
	}
	return &Database{db: db, index: index}, nil
}

// DB отдаёт gorm-соединение для служебных нужд (миграции, закрытие)
func (d *Database) DB() *gorm.DB {
	return d.db
}

// transaction открывает транзакцию; изменения в поисковом индексе уходят после коммита
func (d *Database) transaction(ctx context.Context, fc func(tx *gorm.DB) error) error {
	return search.Transaction(ctx, d.db, d.index, fc)
}
