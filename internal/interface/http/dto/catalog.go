package dto

import (
	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	"github.com/xiebiao/bookhub/pkg/paging"
)

// =========================================
// 作者
// =========================================

// AuthorRequest 保存作者
// 带ID时按ID更新，不带ID时按(名, 姓)匹配已有作者
type AuthorRequest struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	FirstName string     `json:"firstName" binding:"required,max=100" example:"Alan"`
	LastName  string     `json:"lastName" binding:"required,max=100" example:"Donovan"`
	Gender    string     `json:"gender" binding:"omitempty,gender" example:"M"`
}

func (r AuthorRequest) ToEntity() *author.Author {
	a := &author.Author{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Gender:    author.Gender(r.Gender),
	}
	if r.ID != nil {
		a.ID = *r.ID
	}
	return a
}

// AuthorListQuery 作者列表查询
type AuthorListQuery struct {
	PageQuery
	Name string `form:"name" binding:"omitempty,max=100" example:"Alan"`
}

// AuthorResponse 作者详情
type AuthorResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName" example:"Alan"`
	LastName       string    `json:"lastName" example:"Donovan"`
	Gender         string    `json:"gender" example:"M"`
	BookCount      int64     `json:"bookCount"`
	CommentCount   int64     `json:"commentCount"`
	VoteCount      int64     `json:"voteCount"`
	FavouriteCount int64     `json:"favouriteCount"`
	CreatedAt      string    `json:"createdAt" example:"2024-01-15 10:30:00"`
}

// AuthorPage 作者分页结果
type AuthorPage = paging.Page[*AuthorResponse]

func FromAuthor(a *author.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:             a.ID,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Gender:         string(a.Gender),
		BookCount:      a.BookCount,
		CommentCount:   a.CommentCount,
		VoteCount:      a.VoteCount,
		FavouriteCount: a.FavouriteCount,
		CreatedAt:      FormatTime(a.CreatedAt),
	}
}

// =========================================
// 出版社
// =========================================

type IssuerRequest struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Name    string     `json:"name" binding:"required,max=100" example:"人民邮电出版社"`
	Website *string    `json:"website,omitempty" binding:"omitempty,url,max=500" example:"https://www.ptpress.com.cn"`
}

func (r IssuerRequest) ToEntity() *issuer.Issuer {
	i := &issuer.Issuer{Name: r.Name, Website: r.Website}
	if r.ID != nil {
		i.ID = *r.ID
	}
	return i
}

type IssuerListQuery struct {
	PageQuery
	Name string `form:"name" binding:"omitempty,max=100"`
}

type IssuerResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Website        *string   `json:"website,omitempty"`
	BookCount      int64     `json:"bookCount"`
	CommentCount   int64     `json:"commentCount"`
	VoteCount      int64     `json:"voteCount"`
	FavouriteCount int64     `json:"favouriteCount"`
	CreatedAt      string    `json:"createdAt"`
}

type IssuerPage = paging.Page[*IssuerResponse]

func FromIssuer(i *issuer.Issuer) *IssuerResponse {
	return &IssuerResponse{
		ID:             i.ID,
		Name:           i.Name,
		Website:        i.Website,
		BookCount:      i.BookCount,
		CommentCount:   i.CommentCount,
		VoteCount:      i.VoteCount,
		FavouriteCount: i.FavouriteCount,
		CreatedAt:      FormatTime(i.CreatedAt),
	}
}

// =========================================
// 标签
// =========================================

type TagRequest struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name" binding:"required,max=50" example:"编程"`
}

func (r TagRequest) ToEntity() *tag.Tag {
	t := &tag.Tag{Name: r.Name}
	if r.ID != nil {
		t.ID = *r.ID
	}
	return t
}

type TagListQuery struct {
	PageQuery
	Name string `form:"name" binding:"omitempty,max=50"`
}

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BookCount int64     `json:"bookCount"`
	CreatedAt string    `json:"createdAt"`
}

type TagPage = paging.Page[*TagResponse]

func FromTag(t *tag.Tag) *TagResponse {
	return &TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		BookCount: t.BookCount,
		CreatedAt: FormatTime(t.CreatedAt),
	}
}

// =========================================
// 图书
// =========================================

// BookIssuerInput 图书的出版社
// 只带id时引用已有出版社，带name时按名称upsert
type BookIssuerInput struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Name    string     `json:"name,omitempty"`
	Website *string    `json:"website,omitempty"`
}

// BookAuthorInput 图书的作者，规则同出版社
type BookAuthorInput struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Gender    string     `json:"gender,omitempty"`
}

// BookTagInput 图书的标签，规则同出版社
type BookTagInput struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
}

// BookRequest 保存图书
// validator tag说明:
// - price单位为分
// - issuer必填，authors/tags/images可为空
type BookRequest struct {
	ID      *uuid.UUID        `json:"id,omitempty"`
	Name    string            `json:"name" binding:"required,max=200" example:"Go语言实战"`
	Edition int               `json:"edition" binding:"required,min=1" example:"1"`
	Price   int64             `json:"price" binding:"min=0,max=99999999" example:"5900"`
	Issuer  *BookIssuerInput  `json:"issuer" binding:"required"`
	Authors []BookAuthorInput `json:"authors"`
	Tags    []BookTagInput    `json:"tags"`
	Images  []Ref             `json:"images" binding:"dive"`
}

func (r BookRequest) ToEntity() *book.Book {
	b := &book.Book{
		Name:     r.Name,
		Edition:  r.Edition,
		Price:    r.Price,
		ImageIDs: refIDs(r.Images),
	}
	if r.ID != nil {
		b.ID = *r.ID
	}
	if r.Issuer != nil {
		b.Issuer = IssuerRequest{ID: r.Issuer.ID, Name: r.Issuer.Name, Website: r.Issuer.Website}.ToEntity()
	}
	for _, a := range r.Authors {
		b.Authors = append(b.Authors, AuthorRequest{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Gender: a.Gender}.ToEntity())
	}
	for _, t := range r.Tags {
		b.Tags = append(b.Tags, TagRequest{ID: t.ID, Name: t.Name}.ToEntity())
	}
	return b
}

// BookListQuery 图书列表查询
// keywords同时匹配书名、出版社、作者、标签
type BookListQuery struct {
	PageQuery
	Keywords string `form:"keywords" binding:"omitempty,max=100" example:"Go"`
}

type IssuerBrief struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AuthorBrief struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

type TagBrief struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookResponse 图书详情
type BookResponse struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name" example:"Go语言实战"`
	Edition        int           `json:"edition" example:"1"`
	Price          int64         `json:"price" example:"5900"` // 价格(分)
	Issuer         *IssuerBrief  `json:"issuer,omitempty"`
	Authors        []AuthorBrief `json:"authors"`
	Tags           []TagBrief    `json:"tags"`
	Images         []Ref         `json:"images"`
	AuthorCount    int64         `json:"authorCount"`
	CommentCount   int64         `json:"commentCount"`
	VoteCount      int64         `json:"voteCount"`
	FavouriteCount int64         `json:"favouriteCount"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

type BookPage = paging.Page[*BookResponse]

func FromBook(b *book.Book) *BookResponse {
	resp := &BookResponse{
		ID:             b.ID,
		Name:           b.Name,
		Edition:        b.Edition,
		Price:          b.Price,
		Authors:        make([]AuthorBrief, 0, len(b.Authors)),
		Tags:           make([]TagBrief, 0, len(b.Tags)),
		Images:         toRefs(b.ImageIDs),
		AuthorCount:    b.AuthorCount,
		CommentCount:   b.CommentCount,
		VoteCount:      b.VoteCount,
		FavouriteCount: b.FavouriteCount,
		CreatedAt:      FormatTime(b.CreatedAt),
		UpdatedAt:      FormatTime(b.UpdatedAt),
	}
	if b.Issuer != nil {
		resp.Issuer = &IssuerBrief{ID: b.Issuer.ID, Name: b.Issuer.Name}
	}
	for _, a := range b.Authors {
		resp.Authors = append(resp.Authors, AuthorBrief{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName})
	}
	for _, t := range b.Tags {
		resp.Tags = append(resp.Tags, TagBrief{ID: t.ID, Name: t.Name})
	}
	return resp
}
