package mysql

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/query"
)

// dryRunDB 只生成SQL不执行，不需要真实数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "root:root@tcp(127.0.0.1:3306)/bookhub?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestRepository_WindowQuery(t *testing.T) {
	db := dryRunDB(t)
	r := NewBookRepository(db).(*repository[*book.Book, BookModel])

	q, err := r.scope(db, book.Filter{Keywords: "golang"}.Predicates())
	require.NoError(t, err)

	stmt := r.ordered(q).Offset(20).Limit(10).Find(&[]BookModel{}).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "FROM `books`")
	assert.Contains(t, sql, "LOWER(books.name) LIKE ?")
	assert.Contains(t, sql, "books.created_at DESC")
	assert.Contains(t, sql, "books.id")
	assert.Contains(t, stmt.Vars, "%golang%")
}

func TestRepository_ScopeWithoutFilter(t *testing.T) {
	db := dryRunDB(t)
	r := NewBookRepository(db).(*repository[*book.Book, BookModel])

	q, err := r.scope(db, nil)
	require.NoError(t, err)

	sql := q.Find(&[]BookModel{}).Statement.SQL.String()
	assert.NotContains(t, sql, "WHERE")
}

func TestRepository_ScopeUnknownField(t *testing.T) {
	db := dryRunDB(t)
	r := NewCommentRepository(db).(*repository[*comment.Comment, CommentModel])

	_, err := r.Count(context.Background(), query.New().Eq("content", "x").Build())
	require.Error(t, err)
}

func TestRepository_IDColumnAlwaysMapped(t *testing.T) {
	db := dryRunDB(t)
	r := NewCommentRepository(db).(*repository[*comment.Comment, CommentModel])

	id := uuid.New()
	q, err := r.scope(db, []query.Predicate{{Field: "id", Op: query.OpEq, Value: id}})
	require.NoError(t, err)

	stmt := q.Find(&[]CommentModel{}).Statement
	assert.Contains(t, stmt.SQL.String(), "comments.id = ?")
	assert.Contains(t, stmt.Vars, id.String())

	// 共享的列映射不应被newRepository改写
	_, ok := bookColumns["id"]
	assert.False(t, ok)
}

func TestCountBy(t *testing.T) {
	c := countBy("votes", "book_id", func(b *book.Book, n int64) { b.VoteCount = n })
	assert.Equal(t, "SELECT book_id AS id, COUNT(*) AS n FROM votes WHERE book_id IN ? GROUP BY book_id", c.sql)

	b := &book.Book{}
	c.set(b, 3)
	assert.Equal(t, int64(3), b.VoteCount)
}

func TestTxManager_ReusesOuterTransaction(t *testing.T) {
	tx := dryRunDB(t)
	ctx := context.WithValue(context.Background(), txKey{}, tx)

	m := NewTxManager(dryRunDB(t))
	var inner *gorm.DB
	err := m.Transaction(ctx, func(ctx context.Context) error {
		inner = getDB(ctx, nil)
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, tx, inner)
}
