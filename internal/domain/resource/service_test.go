package resource_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	"github.com/xiebiao/bookhub/internal/domain/resource/resourcetest"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/paging"
)

// label 无归属者、按name做业务主键的资源
type label struct {
	ID   uuid.UUID
	Name string
}

func (l *label) GetID() uuid.UUID   { return l.ID }
func (l *label) SetID(id uuid.UUID) { l.ID = id }

func (l *label) NaturalKey() []query.Predicate {
	if l.Name == "" {
		return nil
	}
	return query.New().Eq("name", l.Name).Build()
}

func (l *label) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return apperrors.ErrValidation.WithMessage("名称不能为空")
	}
	return nil
}

type labelFilter struct{ Name string }

func (f labelFilter) Predicates() []query.Predicate {
	return query.New().ILike("name", f.Name).Build()
}

// note 有归属者的资源
type note struct {
	ID      uuid.UUID
	Account uuid.UUID
	Content string
}

func (n *note) GetID() uuid.UUID        { return n.ID }
func (n *note) SetID(id uuid.UUID)      { n.ID = id }
func (n *note) OwnerID() uuid.UUID      { return n.Account }
func (n *note) SetOwnerID(id uuid.UUID) { n.Account = id }

func newLabelService(t *testing.T) (*resource.Service[*label, labelFilter], *resourcetest.Repo[*label]) {
	t.Helper()
	repo := resourcetest.New(
		func(l *label, field string) []string {
			if field == "name" {
				return []string{l.Name}
			}
			return nil
		},
		func(l *label) *label { c := *l; return &c },
	)
	repo.Unique = func(l *label) string { return strings.ToLower(l.Name) }
	svc := resource.NewService[*label, labelFilter](
		resource.Config{Name: "label", Family: "LABEL", Mode: resource.ModeUpsert},
		repo, &resourcetest.Tx{},
	)
	return svc, repo
}

func newNoteService(t *testing.T, mode resource.SaveMode) (*resource.Service[*note, query.None], *resourcetest.Repo[*note]) {
	t.Helper()
	repo := resourcetest.New(
		func(n *note, field string) []string {
			if field == "accountId" {
				return []string{n.Account.String()}
			}
			return nil
		},
		func(n *note) *note { c := *n; return &c },
	)
	svc := resource.NewService[*note, query.None](
		resource.Config{Name: "note", Family: "NOTE", Mode: mode},
		repo, &resourcetest.Tx{},
	)
	return svc, repo
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLabelService(t)
	repo.Seed(&label{Name: "Smith Co"}, &label{Name: "Jones"}, &label{Name: "blacksmith"})

	t.Run("空过滤条件返回全部", func(t *testing.T) {
		page, err := svc.List(ctx, labelFilter{}, paging.Request{Index: 0, Size: 10})
		require.NoError(t, err)
		assert.Len(t, page.Rows, 3)
		assert.EqualValues(t, 3, page.TotalRowCount)
		assert.EqualValues(t, 1, page.TotalPageCount)
	})

	t.Run("忽略大小写的子串匹配", func(t *testing.T) {
		page, err := svc.List(ctx, labelFilter{Name: "smith"}, paging.Request{Index: 0, Size: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.TotalRowCount)
	})

	t.Run("分页窗口", func(t *testing.T) {
		page, err := svc.List(ctx, labelFilter{}, paging.Request{Index: 1, Size: 2})
		require.NoError(t, err)
		assert.Len(t, page.Rows, 1)
		assert.EqualValues(t, 2, page.TotalPageCount)

		page, err = svc.List(ctx, labelFilter{}, paging.Request{Index: 5, Size: 2})
		require.NoError(t, err)
		assert.Empty(t, page.Rows)
		assert.NotNil(t, page.Rows)
	})

	t.Run("空结果为0页", func(t *testing.T) {
		page, err := svc.List(ctx, labelFilter{Name: "nobody"}, paging.Request{Index: 0, Size: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 0, page.TotalRowCount)
		assert.EqualValues(t, 0, page.TotalPageCount)
	})

	t.Run("非法分页参数", func(t *testing.T) {
		_, err := svc.List(ctx, labelFilter{}, paging.Request{Index: -1, Size: 10})
		assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
	})

	t.Run("页码过大导致偏移量溢出", func(t *testing.T) {
		before := len(repo.Ops())
		_, err := svc.List(ctx, labelFilter{}, paging.Normalize(math.MaxInt64/100+1, 100, 100))
		assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
		assert.Len(t, repo.Ops(), before, "校验失败时不访问仓储")
	})

	t.Run("超出最后一页返回空", func(t *testing.T) {
		page, err := svc.List(ctx, labelFilter{}, paging.Request{Index: math.MaxInt / 100, Size: 100})
		require.NoError(t, err)
		assert.Empty(t, page.Rows)
		assert.EqualValues(t, 3, page.TotalRowCount)
	})
}

func TestService_List_CountAndWindowShareTx(t *testing.T) {
	svc, repo := newLabelService(t)
	repo.Seed(&label{Name: "a"})

	_, err := svc.List(context.Background(), labelFilter{}, paging.Request{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Count@tx", "FetchWindow@tx"}, repo.Ops())
}

func TestService_Get(t *testing.T) {
	svc, repo := newLabelService(t)
	seeded := &label{Name: "Go"}
	repo.Seed(seeded)

	got, err := svc.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound.In("LABEL")))
}

func TestService_Require(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLabelService(t)
	seeded := &label{Name: "Go"}
	repo.Seed(seeded)

	require.NoError(t, svc.Require(ctx, seeded.ID))
	assert.True(t, errors.Is(svc.Require(ctx, uuid.New()), apperrors.ErrNotFound.In("LABEL")))

	repo.FailWith = errors.New("connection reset")
	appErr := apperrors.GetAppError(svc.Require(ctx, seeded.ID))
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
}

func TestService_Save_Upsert(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLabelService(t)

	first, err := svc.Save(ctx, nil, &label{Name: "Go"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	t.Run("按业务主键匹配已有记录", func(t *testing.T) {
		again, err := svc.Save(ctx, nil, &label{Name: "Go"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("指定ID但不存在时以该ID插入", func(t *testing.T) {
		id := uuid.New()
		saved, err := svc.Save(ctx, nil, &label{ID: id, Name: "Rust"})
		require.NoError(t, err)
		assert.Equal(t, id, saved.ID)
		assert.Equal(t, 2, repo.Len())
	})

	t.Run("指定ID时原地更新", func(t *testing.T) {
		_, err := svc.Save(ctx, nil, &label{ID: first.ID, Name: "Golang"})
		require.NoError(t, err)
		got, err := svc.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Golang", got.Name)
	})

	t.Run("校验失败不落库", func(t *testing.T) {
		before := len(repo.Ops())
		_, err := svc.Save(ctx, nil, &label{Name: "  "})
		assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
		assert.Len(t, repo.Ops(), before)
	})

	t.Run("唯一索引冲突", func(t *testing.T) {
		_, err := svc.Save(ctx, nil, &label{ID: uuid.New(), Name: "RUST"})
		assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists.In("LABEL")))
	})
}

func TestService_Save_InsertOnly(t *testing.T) {
	ctx := context.Background()
	repo := resourcetest.New(
		func(l *label, field string) []string { return []string{l.Name} },
		func(l *label) *label { c := *l; return &c },
	)
	svc := resource.NewService[*label, labelFilter](
		resource.Config{Name: "account", Family: "ACCOUNT", Mode: resource.ModeInsertOnly},
		repo, &resourcetest.Tx{},
	)

	original, err := svc.Save(ctx, nil, &label{Name: "alice"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, nil, &label{Name: "alice"})
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
	assert.Equal(t, "ACCOUNT", apperrors.GetAppError(err).Family)

	_, err = svc.Save(ctx, nil, &label{ID: original.ID, Name: "bob"})
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "ID已存在也视为重复")

	rows := repo.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Name, "原记录保持不变")
}

func TestService_Save_NonIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newNoteService(t, resource.ModeNonIdempotentUpsert)
	p := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}

	a, err := svc.Save(ctx, p, &note{Content: "same"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, p, &note{Content: "same"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, repo.Len())

	_, err = svc.Save(ctx, p, &note{ID: a.ID, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len(), "带ID时原地更新")
}

func TestService_Save_Owner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNoteService(t, resource.ModeNonIdempotentUpsert)
	alice := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	bob := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	mod := &auth.Principal{ID: uuid.New(), Role: auth.RoleModerator}

	t.Run("自动填充归属者", func(t *testing.T) {
		saved, err := svc.Save(ctx, alice, &note{Content: "hi"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, saved.Account)
	})

	t.Run("显式归属者不被覆盖", func(t *testing.T) {
		explicit := uuid.New()
		saved, err := svc.Save(ctx, alice, &note{Account: explicit, Content: "hi"})
		require.NoError(t, err)
		assert.Equal(t, explicit, saved.Account)
	})

	t.Run("未登录且无归属者", func(t *testing.T) {
		_, err := svc.Save(ctx, nil, &note{Content: "hi"})
		assert.True(t, errors.Is(err, apperrors.ErrNotAuthenticated.In("NOTE")))
	})

	t.Run("修改他人记录被拒绝", func(t *testing.T) {
		own, err := svc.Save(ctx, alice, &note{Content: "mine"})
		require.NoError(t, err)

		_, err = svc.Save(ctx, bob, &note{ID: own.ID, Content: "hijack"})
		assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized))

		got, err := svc.Get(ctx, own.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Content)
	})

	t.Run("管理员修改时保留原归属者", func(t *testing.T) {
		own, err := svc.Save(ctx, alice, &note{Content: "mine"})
		require.NoError(t, err)

		saved, err := svc.Save(ctx, mod, &note{ID: own.ID, Content: "moderated"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, saved.Account)
	})
}

func TestService_Delete_Owned(t *testing.T) {
	ctx := context.Background()
	svc, repo := newNoteService(t, resource.ModeNonIdempotentUpsert)
	alice := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	bob := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	mod := &auth.Principal{ID: uuid.New(), Role: auth.RoleModerator}

	existing := &note{Account: alice.ID, Content: "x"}
	repo.Seed(existing)

	tests := []struct {
		name      string
		principal *auth.Principal
		id        uuid.UUID
		want      *apperrors.AppError
	}{
		{"未登录删除不存在的记录", nil, uuid.New(), apperrors.ErrNotAuthenticated},
		{"未登录删除已有记录", nil, existing.ID, apperrors.ErrNotAuthenticated},
		{"已登录删除不存在的记录", bob, uuid.New(), apperrors.ErrNotFound},
		{"删除他人记录", bob, existing.ID, apperrors.ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Delete(ctx, tt.principal, tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.want.Kind(), apperrors.Kind(err))
			assert.Equal(t, "NOTE", apperrors.GetAppError(err).Family)
		})
	}
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, svc.Delete(ctx, alice, existing.ID))
	assert.Equal(t, 0, repo.Len())

	other := &note{Account: alice.ID, Content: "y"}
	repo.Seed(other)
	require.NoError(t, svc.Delete(ctx, mod, other.ID), "管理员可删除任意记录")
	assert.Equal(t, 0, repo.Len())
}

func TestService_Delete_Unowned(t *testing.T) {
	svc, repo := newLabelService(t)
	l := &label{Name: "Go"}
	repo.Seed(l)

	assert.NoError(t, svc.Delete(context.Background(), nil, uuid.New()), "不存在的ID视为成功")
	assert.NoError(t, svc.Delete(context.Background(), nil, l.ID))
	assert.Equal(t, 0, repo.Len())
}

func TestService_StorageFailureIsOpaque(t *testing.T) {
	svc, repo := newLabelService(t)
	repo.FailWith = errors.New("dial tcp 127.0.0.1:3306: connection refused")

	_, err := svc.List(context.Background(), labelFilter{}, paging.Request{Index: 0, Size: 10})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
	assert.NotContains(t, appErr.Message, "connection refused")
}

func TestService_FindOne(t *testing.T) {
	svc, repo := newLabelService(t)
	repo.Seed(&label{Name: "Go"})

	got, err := svc.FindOne(context.Background(), labelFilter{Name: "go"})
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)

	_, err = svc.FindOne(context.Background(), labelFilter{Name: "zig"})
	assert.Equal(t, apperrors.KindNotFound, apperrors.Kind(err))

	_, err = svc.FindOne(context.Background(), labelFilter{})
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
}
