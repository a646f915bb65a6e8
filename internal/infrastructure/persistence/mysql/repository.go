package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
)

// mapping 一种资源的表映射
// 各资源只声明列、转换函数和统计项，CRUD逻辑由repository统一实现
type mapping[E resource.Entity, M any] struct {
	table    string
	columns  map[string]column
	preloads []string
	counts   []countSpec[E]

	toModel  func(E) *M
	toEntity func(*M) E
	// stamp 写库后把时间戳回填到实体
	stamp func(E, *M)
	// afterWrite 插入/更新后维护映射表
	afterWrite func(tx *gorm.DB, e E) error
	// beforeDelete 删除前清理映射表
	beforeDelete func(tx *gorm.DB, id string) error
}

// countSpec 列表/详情里附带的统计数
// sql必须输出id和n两列，并且只有一个IN ?参数
type countSpec[E any] struct {
	sql string
	set func(E, int64)
}

// countBy 统计table中col等于实体ID的行数
func countBy[E any](table, col string, set func(E, int64)) countSpec[E] {
	return countSpec[E]{
		sql: fmt.Sprintf("SELECT %s AS id, COUNT(*) AS n FROM %s WHERE %s IN ? GROUP BY %s", col, table, col, col),
		set: set,
	}
}

type countRow struct {
	ID string
	N  int64
}

// repository 基于GORM的通用仓储，实现resource.Repository
type repository[E resource.Entity, M any] struct {
	db *gorm.DB
	m  mapping[E, M]
}

func newRepository[E resource.Entity, M any](db *gorm.DB, m mapping[E, M]) *repository[E, M] {
	cols := make(map[string]column, len(m.columns)+1)
	for k, v := range m.columns {
		cols[k] = v
	}
	cols["id"] = column{expr: m.table + ".id"}
	m.columns = cols
	return &repository[E, M]{db: db, m: m}
}

// scope 带过滤条件的基础查询
func (r *repository[E, M]) scope(db *gorm.DB, preds []query.Predicate) (*gorm.DB, error) {
	cond, args, err := buildCondition(preds, r.m.columns)
	if err != nil {
		return nil, err
	}
	q := db.Model(new(M))
	if cond != "" {
		q = q.Where(cond, args...)
	}
	return q, nil
}

// ordered 列表统一按创建时间倒序，时间相同按ID保证翻页稳定
func (r *repository[E, M]) ordered(q *gorm.DB) *gorm.DB {
	return q.Order(r.m.table + ".created_at DESC").Order(r.m.table + ".id")
}

func (r *repository[E, M]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range r.m.preloads {
		q = q.Preload(p)
	}
	return q
}

func (r *repository[E, M]) Count(ctx context.Context, preds []query.Predicate) (int64, error) {
	q, err := r.scope(getDB(ctx, r.db), preds)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计%s失败: %w", r.m.table, err)
	}
	return total, nil
}

func (r *repository[E, M]) FetchWindow(ctx context.Context, preds []query.Predicate, offset, limit int) ([]E, error) {
	db := getDB(ctx, r.db)
	q, err := r.scope(db, preds)
	if err != nil {
		return nil, err
	}

	var models []*M
	if err := r.withPreloads(r.ordered(q)).Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("查询%s失败: %w", r.m.table, err)
	}

	rows := make([]E, 0, len(models))
	for _, m := range models {
		rows = append(rows, r.m.toEntity(m))
	}
	if err := r.fillCounts(db, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository[E, M]) FetchByID(ctx context.Context, id uuid.UUID) (E, error) {
	return r.FindOne(ctx, []query.Predicate{{Field: "id", Op: query.OpEq, Value: id}})
}

func (r *repository[E, M]) FindOne(ctx context.Context, preds []query.Predicate) (E, error) {
	var zero E
	db := getDB(ctx, r.db)
	q, err := r.scope(db, preds)
	if err != nil {
		return zero, err
	}

	var m M
	if err := r.withPreloads(r.ordered(q)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, resource.ErrRowNotFound
		}
		return zero, fmt.Errorf("查询%s失败: %w", r.m.table, err)
	}

	e := r.m.toEntity(&m)
	if err := r.fillCounts(db, []E{e}); err != nil {
		return zero, err
	}
	return e, nil
}

func (r *repository[E, M]) Insert(ctx context.Context, e E) error {
	db := getDB(ctx, r.db)
	m := r.m.toModel(e)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		if isDuplicateError(err) {
			return resource.ErrDuplicateKey
		}
		return fmt.Errorf("写入%s失败: %w", r.m.table, err)
	}
	return r.finishWrite(db, e, m)
}

func (r *repository[E, M]) Update(ctx context.Context, e E) error {
	db := getDB(ctx, r.db)
	m := r.m.toModel(e)
	// Select("*")让零值字段也参与更新，created_at保持原值
	res := db.Model(m).Select("*").Omit("created_at", clause.Associations).Updates(m)
	if res.Error != nil {
		if isDuplicateError(res.Error) {
			return resource.ErrDuplicateKey
		}
		return fmt.Errorf("更新%s失败: %w", r.m.table, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := db.Model(new(M)).Where(r.m.table+".id = ?", e.GetID().String()).Take(new(M)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return resource.ErrRowNotFound
			}
			return fmt.Errorf("查询%s失败: %w", r.m.table, err)
		}
	}
	return r.finishWrite(db, e, m)
}

func (r *repository[E, M]) finishWrite(db *gorm.DB, e E, m *M) error {
	if r.m.stamp != nil {
		r.m.stamp(e, m)
	}
	if r.m.afterWrite != nil {
		if err := r.m.afterWrite(db, e); err != nil {
			return fmt.Errorf("更新%s关联失败: %w", r.m.table, err)
		}
	}
	return nil
}

// DeleteByID 行不存在时不报错
func (r *repository[E, M]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.db)
	if r.m.beforeDelete != nil {
		if err := r.m.beforeDelete(db, id.String()); err != nil {
			return fmt.Errorf("清理%s关联失败: %w", r.m.table, err)
		}
	}
	if err := db.Where(r.m.table+".id = ?", id.String()).Delete(new(M)).Error; err != nil {
		return fmt.Errorf("删除%s失败: %w", r.m.table, err)
	}
	return nil
}

// fillCounts 按统计项批量查询，一项一条SQL
func (r *repository[E, M]) fillCounts(db *gorm.DB, rows []E) error {
	if len(r.m.counts) == 0 || len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	byID := make(map[string]E, len(rows))
	for i, e := range rows {
		ids[i] = e.GetID().String()
		byID[ids[i]] = e
	}
	for _, c := range r.m.counts {
		var counts []countRow
		if err := db.Raw(c.sql, ids).Scan(&counts).Error; err != nil {
			return fmt.Errorf("统计%s关联数失败: %w", r.m.table, err)
		}
		for _, cr := range counts {
			if e, ok := byID[cr.ID]; ok {
				c.set(e, cr.N)
			}
		}
	}
	return nil
}

// replaceLinks 覆盖写多对多映射表
func replaceLinks(tx *gorm.DB, table, ownerCol, refCol, ownerID string, refIDs []string) error {
	if err := tx.Exec("DELETE FROM "+table+" WHERE "+ownerCol+" = ?", ownerID).Error; err != nil {
		return err
	}
	if len(refIDs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(refIDs))
	seen := make(map[string]bool, len(refIDs))
	for _, id := range refIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, map[string]interface{}{ownerCol: ownerID, refCol: id})
	}
	return tx.Table(table).Create(rows).Error
}

// unlink 删除映射表中指向某行的记录
func unlink(table, col string) func(tx *gorm.DB, id string) error {
	return func(tx *gorm.DB, id string) error {
		return tx.Exec("DELETE FROM "+table+" WHERE "+col+" = ?", id).Error
	}
}
