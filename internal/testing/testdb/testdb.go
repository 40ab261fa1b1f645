// Package testdb provides in-memory SQLite databases for tests.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.New(t, nil)
//	    user := testdb.CreateUser(t, db, "susan")
//	}
package testdb

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/search"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password пароль всех пользователей, созданных CreateUser
const Password = "cat-password"

var counter int64

// New открывает отдельную in-memory базу на тест и накатывает схему.
// Соединение одно: иначе каждое новое соединение видело бы свою пустую базу.
// Внешние ключи включены, как в Postgres.
func New(t *testing.T, index search.Indexer) *database.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, atomic.AddInt64(&counter, 1))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := database.NewDatabase(gdb, index)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser создаёт пользователя с паролем Password и адресом <username>@example.com
func CreateUser(t *testing.T, db *database.Database, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.SaveUser(context.Background(), user))
	return user
}

// CreatePost создаёт пост с заданным временем публикации
func CreatePost(t *testing.T, db *database.Database, author *models.User, body string, at time.Time) *models.Post {
	t.Helper()

	post := &models.Post{Body: body, UserID: author.ID, Timestamp: at.UTC()}
	require.NoError(t, db.SavePost(context.Background(), post))
	return post
}
