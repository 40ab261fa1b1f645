package search

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"gorm.io/gorm"
)

// change отложенная операция над индексом. Документ снимается в момент записи
type change struct {
	index  string
	id     string
	doc    map[string]any
	remove bool
}

type pending struct {
	mu      sync.Mutex
	changes []change
}

func (p *pending) add(c change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
}

type pendingKey struct{}

func pendingFrom(ctx context.Context) (*pending, bool) {
	p, ok := ctx.Value(pendingKey{}).(*pending)
	return p, ok
}

// RegisterCallbacks подключает зеркалирование моделей Searchable в индекс
// после создания, обновления и удаления записей.
// Хуки стоят после коммита собственной транзакции gorm, поэтому откаченная
// запись в индекс не попадает. Внутри внешней транзакции изменения либо
// копятся до коммита (Transaction), либо пропускаются: их догонит reindex.
// Ошибки индекса только логируются и не откатывают запись в БД.
func RegisterCallbacks(db *gorm.DB, idx Indexer) error {
	if idx == nil {
		return nil
	}

	mirror := func(remove bool) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			forEachSearchable(tx, func(ctx context.Context, m Searchable) {
				c := change{index: m.SearchIndex(), id: m.SearchID(), remove: remove}
				if !remove {
					c.doc = m.SearchDocument()
				}

				if p, ok := pendingFrom(ctx); ok {
					p.add(c)
					return
				}
				if inTransaction(tx) {
					slog.Debug("search index skipped inside transaction", "index", c.index, "id", c.id)
					return
				}
				apply(ctx, idx, c)
			})
		}
	}

	const after = "gorm:commit_or_rollback_transaction"
	if err := db.Callback().Create().After(after).Register("search:add", mirror(false)); err != nil {
		return err
	}
	if err := db.Callback().Update().After(after).Register("search:update", mirror(false)); err != nil {
		return err
	}
	return db.Callback().Delete().After(after).Register("search:remove", mirror(true))
}

// Transaction выполняет fc в транзакции и отправляет изменения Searchable-моделей
// в idx только после успешного коммита
func Transaction(ctx context.Context, db *gorm.DB, idx Indexer, fc func(tx *gorm.DB) error) error {
	p := &pending{}
	if err := db.WithContext(context.WithValue(ctx, pendingKey{}, p)).Transaction(fc); err != nil {
		return err
	}

	if idx == nil {
		return nil
	}
	p.mu.Lock()
	changes := p.changes
	p.mu.Unlock()
	for _, c := range changes {
		apply(ctx, idx, c)
	}
	return nil
}

func apply(ctx context.Context, idx Indexer, c change) {
	if c.remove {
		if err := idx.Remove(ctx, c.index, c.id); err != nil {
			slog.Warn("search index remove failed", "index", c.index, "id", c.id, "error", err)
		}
		return
	}
	if err := idx.Add(ctx, c.index, c.id, c.doc); err != nil {
		slog.Warn("search index add failed", "index", c.index, "id", c.id, "error", err)
	}
}

// inTransaction соединение statement всё ещё внешняя транзакция, исход которой неизвестен
func inTransaction(tx *gorm.DB) bool {
	committer, ok := tx.Statement.ConnPool.(gorm.TxCommitter)
	return ok && committer != nil && !reflect.ValueOf(committer).IsNil()
}

func forEachSearchable(tx *gorm.DB, fn func(context.Context, Searchable)) {
	if tx.Error != nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return
	}

	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if m, ok := searchable(rv.Index(i)); ok {
				fn(ctx, m)
			}
		}
	case reflect.Struct:
		if m, ok := searchable(rv); ok {
			fn(ctx, m)
		}
	}
}

func searchable(v reflect.Value) (Searchable, bool) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		if m, ok := v.Interface().(Searchable); ok {
			return m, !isZeroID(m)
		}
		v = v.Elem()
	}
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Searchable); ok {
			return m, !isZeroID(m)
		}
	}
	return nil, false
}

// Удаление по условию (Delete(&Post{}, "id = ?", id)) не несёт идентификатора в модели
func isZeroID(m Searchable) bool {
	id := m.SearchID()
	return id == "" || id == "00000000-0000-0000-0000-000000000000"
}
