package mysql

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
)

// column 逻辑字段到SQL的映射
// wrap非空时表示关联字段:expr在子查询里比较,整个条件用wrap包起来
//
//	"issuer.name" → books.issuer_id IN (SELECT i.id FROM issuers i WHERE LOWER(i.name) LIKE ?)
type column struct {
	expr string
	wrap string
}

// buildCondition 把过滤条件翻译成WHERE子句
// 没有条件时返回空字符串,调用方据此不加WHERE
func buildCondition(preds []query.Predicate, cols map[string]column) (string, []interface{}, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(preds))
	var args []interface{}
	for _, p := range preds {
		sql, a, err := predicateSQL(p, cols)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args, nil
}

func predicateSQL(p query.Predicate, cols map[string]column) (string, []interface{}, error) {
	if p.Op == query.OpAny {
		parts := make([]string, 0, len(p.Any))
		var args []interface{}
		for _, sub := range p.Any {
			sql, a, err := predicateSQL(sub, cols)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			args = append(args, a...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil
	}

	col, ok := cols[p.Field]
	if !ok {
		return "", nil, fmt.Errorf("mysql: unknown filter field %q", p.Field)
	}

	var (
		sql  string
		args []interface{}
	)
	switch p.Op {
	case query.OpEq:
		sql = col.expr + " = ?"
		args = []interface{}{sqlValue(p.Value)}
	case query.OpILike:
		sql = "LOWER(" + col.expr + ") LIKE ?"
		args = []interface{}{"%" + escapeLike(strings.ToLower(fmt.Sprint(p.Value))) + "%"}
	case query.OpNotNull:
		sql = col.expr + " IS NOT NULL"
	default:
		return "", nil, fmt.Errorf("mysql: unsupported operator %s", p.Op)
	}

	if col.wrap != "" {
		sql = fmt.Sprintf(col.wrap, sql)
	}
	return sql, args, nil
}

// escapeLike 转义LIKE通配符,用户输入按字面匹配
// MySQL默认转义符为反斜杠
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func sqlValue(v interface{}) interface{} {
	switch id := v.(type) {
	case uuid.UUID:
		return id.String()
	case *uuid.UUID:
		if id == nil {
			return nil
		}
		return id.String()
	default:
		return v
	}
}
