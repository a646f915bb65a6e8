package dto

import (
	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/favourite"
	"github.com/xiebiao/bookhub/internal/domain/vote"
	"github.com/xiebiao/bookhub/pkg/paging"
)

// =========================================
// 评论
// =========================================

// CommentRequest 发表或修改评论
// 不带ID时总是新增一条评论；归属者取当前登录账号
type CommentRequest struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	Content  string     `json:"content" binding:"required,max=2000" example:"写得很好"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	BookID   *uuid.UUID `json:"bookId,omitempty"`
	AuthorID *uuid.UUID `json:"authorId,omitempty"`
	IssuerID *uuid.UUID `json:"issuerId,omitempty"`
	Images   []Ref      `json:"images" binding:"dive"`
}

func (r CommentRequest) ToEntity() *comment.Comment {
	c := &comment.Comment{
		Content:  r.Content,
		ParentID: r.ParentID,
		BookID:   r.BookID,
		AuthorID: r.AuthorID,
		IssuerID: r.IssuerID,
		ImageIDs: refIDs(r.Images),
	}
	if r.ID != nil {
		c.ID = *r.ID
	}
	return c
}

// CommentListQuery 评论列表查询，各ID精确匹配
type CommentListQuery struct {
	PageQuery
	ParentID string `form:"parentId"`
	BookID   string `form:"bookId"`
	AuthorID string `form:"authorId"`
	IssuerID string `form:"issuerId"`
}

// Filter 解析查询参数中的ID
func (q CommentListQuery) Filter() (f comment.Filter, err error) {
	if f.ParentID, err = ParseOptionalID("parentId", q.ParentID); err != nil {
		return f, err
	}
	if f.BookID, err = ParseOptionalID("bookId", q.BookID); err != nil {
		return f, err
	}
	if f.AuthorID, err = ParseOptionalID("authorId", q.AuthorID); err != nil {
		return f, err
	}
	f.IssuerID, err = ParseOptionalID("issuerId", q.IssuerID)
	return f, err
}

type CommentResponse struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"accountId"`
	Content      string     `json:"content"`
	ParentID     *uuid.UUID `json:"parentId,omitempty"`
	BookID       *uuid.UUID `json:"bookId,omitempty"`
	AuthorID     *uuid.UUID `json:"authorId,omitempty"`
	IssuerID     *uuid.UUID `json:"issuerId,omitempty"`
	Images       []Ref      `json:"images"`
	CommentCount int64      `json:"commentCount"` // 回复数
	VoteCount    int64      `json:"voteCount"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

type CommentPage = paging.Page[*CommentResponse]

func FromComment(c *comment.Comment) *CommentResponse {
	return &CommentResponse{
		ID:           c.ID,
		AccountID:    c.AccountID,
		Content:      c.Content,
		ParentID:     c.ParentID,
		BookID:       c.BookID,
		AuthorID:     c.AuthorID,
		IssuerID:     c.IssuerID,
		Images:       toRefs(c.ImageIDs),
		CommentCount: c.ReplyCount,
		VoteCount:    c.VoteCount,
		CreatedAt:    FormatTime(c.CreatedAt),
		UpdatedAt:    FormatTime(c.UpdatedAt),
	}
}

// =========================================
// 投票
// =========================================

// VoteRequest 投票，必须且只能指定一个对象
type VoteRequest struct {
	IssuerID  *uuid.UUID `json:"issuerId,omitempty"`
	BookID    *uuid.UUID `json:"bookId,omitempty"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	CommentID *uuid.UUID `json:"commentId,omitempty"`
}

func (r VoteRequest) ToEntity() *vote.Vote {
	return &vote.Vote{
		IssuerID:  r.IssuerID,
		BookID:    r.BookID,
		AuthorID:  r.AuthorID,
		CommentID: r.CommentID,
	}
}

// VoteListQuery 我的投票列表
type VoteListQuery struct {
	PageQuery
	Type string `form:"type" binding:"required,votetype" example:"BOOK"`
}

// VoteStateQuery 查询当前账号对某个对象的投票
type VoteStateQuery struct {
	IssuerID  string `form:"issuerId"`
	BookID    string `form:"bookId"`
	AuthorID  string `form:"authorId"`
	CommentID string `form:"commentId"`
}

func (q VoteStateQuery) Filter() (f vote.Filter, err error) {
	if f.IssuerID, err = ParseOptionalID("issuerId", q.IssuerID); err != nil {
		return f, err
	}
	if f.BookID, err = ParseOptionalID("bookId", q.BookID); err != nil {
		return f, err
	}
	if f.AuthorID, err = ParseOptionalID("authorId", q.AuthorID); err != nil {
		return f, err
	}
	f.CommentID, err = ParseOptionalID("commentId", q.CommentID)
	return f, err
}

type VoteResponse struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"accountId"`
	Type      string     `json:"type" example:"BOOK"`
	IssuerID  *uuid.UUID `json:"issuerId,omitempty"`
	BookID    *uuid.UUID `json:"bookId,omitempty"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	CommentID *uuid.UUID `json:"commentId,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

type VotePage = paging.Page[*VoteResponse]

func FromVote(v *vote.Vote) *VoteResponse {
	t, _, _ := v.Target()
	return &VoteResponse{
		ID:        v.ID,
		AccountID: v.AccountID,
		Type:      string(t),
		IssuerID:  v.IssuerID,
		BookID:    v.BookID,
		AuthorID:  v.AuthorID,
		CommentID: v.CommentID,
		CreatedAt: FormatTime(v.CreatedAt),
	}
}

// =========================================
// 收藏
// =========================================

type FavouriteRequest struct {
	IssuerID *uuid.UUID `json:"issuerId,omitempty"`
	BookID   *uuid.UUID `json:"bookId,omitempty"`
	AuthorID *uuid.UUID `json:"authorId,omitempty"`
}

func (r FavouriteRequest) ToEntity() *favourite.Favourite {
	return &favourite.Favourite{
		IssuerID: r.IssuerID,
		BookID:   r.BookID,
		AuthorID: r.AuthorID,
	}
}

type FavouriteListQuery struct {
	PageQuery
	Type string `form:"type" binding:"required,favtype" example:"BOOK"`
}

type FavouriteStateQuery struct {
	IssuerID string `form:"issuerId"`
	BookID   string `form:"bookId"`
	AuthorID string `form:"authorId"`
}

func (q FavouriteStateQuery) Filter() (f favourite.Filter, err error) {
	if f.IssuerID, err = ParseOptionalID("issuerId", q.IssuerID); err != nil {
		return f, err
	}
	if f.BookID, err = ParseOptionalID("bookId", q.BookID); err != nil {
		return f, err
	}
	f.AuthorID, err = ParseOptionalID("authorId", q.AuthorID)
	return f, err
}

type FavouriteResponse struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"accountId"`
	Type      string     `json:"type" example:"BOOK"`
	IssuerID  *uuid.UUID `json:"issuerId,omitempty"`
	BookID    *uuid.UUID `json:"bookId,omitempty"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

type FavouritePage = paging.Page[*FavouriteResponse]

func FromFavourite(f *favourite.Favourite) *FavouriteResponse {
	t, _, _ := f.Target()
	return &FavouriteResponse{
		ID:        f.ID,
		AccountID: f.AccountID,
		Type:      string(t),
		IssuerID:  f.IssuerID,
		BookID:    f.BookID,
		AuthorID:  f.AuthorID,
		CreatedAt: FormatTime(f.CreatedAt),
	}
}
