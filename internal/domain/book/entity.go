package book

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/tag"
)

// Family 错误业务域
const Family = "BOOK"

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. (Name, Edition)是业务主键
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. Issuer/Authors/Tags可以只带ID引用已有记录,也可以带完整字段,保存时按业务主键解析或创建
// 4. 计数字段读取时统计,不落库
type Book struct {
	ID        uuid.UUID
	Name      string
	Edition   int
	Price     int64 // 价格(单位:分)
	Issuer    *issuer.Issuer
	Authors   []*author.Author
	Tags      []*tag.Tag
	ImageIDs  []uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorCount    int64
	CommentCount   int64
	VoteCount      int64
	FavouriteCount int64
}

func (b *Book) GetID() uuid.UUID   { return b.ID }
func (b *Book) SetID(id uuid.UUID) { b.ID = id }

// IssuerID 出版社ID,未设置时返回uuid.Nil
func (b *Book) IssuerID() uuid.UUID {
	if b.Issuer == nil {
		return uuid.Nil
	}
	return b.Issuer.ID
}

// AuthorIDs 作者ID列表
func (b *Book) AuthorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Authors))
	for _, a := range b.Authors {
		ids = append(ids, a.ID)
	}
	return ids
}

// TagIDs 标签ID列表
func (b *Book) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Tags))
	for _, t := range b.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// NaturalKey 按(书名, 版次)匹配
func (b *Book) NaturalKey() []query.Predicate {
	if b.Name == "" || b.Edition < 1 {
		return nil
	}
	return query.New().
		Eq("name", b.Name).
		Eq("edition", b.Edition).
		Build()
}

// Validate 保存前校验
// 业务规则:
// - 书名不能为空
// - 版次从1开始
// - 价格不能为负数
// - 必须有出版社(此时嵌套引用已解析,出版社ID已确定)
func (b *Book) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return ErrNameRequired
	}
	if b.Edition < 1 {
		return ErrInvalidEdition
	}
	if b.Price < 0 {
		return ErrInvalidPrice
	}
	if b.IssuerID() == uuid.Nil {
		return ErrIssuerRequired
	}
	return nil
}

// Filter 图书列表过滤条件
// Keywords在书名、出版社名、作者名、标签名上做OR匹配
type Filter struct {
	Keywords string
}

func (f Filter) Predicates() []query.Predicate {
	return query.New().
		AnyILike(f.Keywords, "name", "issuer.name", "authors.firstName", "authors.lastName", "tags.name").
		Build()
}
