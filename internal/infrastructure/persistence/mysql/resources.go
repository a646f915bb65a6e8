package mysql

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/favourite"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	"github.com/xiebiao/bookhub/internal/domain/vote"
)

// 映射表
const (
	bookAuthorTable   = "book_author_mapping"
	bookTagTable      = "book_tag_mapping"
	bookImageTable    = "book_image_mapping"
	commentImageTable = "comment_image_mapping"
)

// =========================================
// 账号
// =========================================

func NewAccountRepository(db *gorm.DB) account.Repository {
	return newRepository(db, mapping[*account.Account, AccountModel]{
		table: "accounts",
		columns: map[string]column{
			"username": {expr: "accounts.username"},
		},
		toModel: func(a *account.Account) *AccountModel {
			return &AccountModel{
				ID:        a.ID.String(),
				Username:  a.Username,
				Password:  a.Password,
				Role:      string(a.Role),
				CreatedAt: a.CreatedAt,
				UpdatedAt: a.UpdatedAt,
			}
		},
		toEntity: func(m *AccountModel) *account.Account {
			return &account.Account{
				ID:        parseID(m.ID),
				Username:  m.Username,
				Password:  m.Password,
				Role:      auth.Role(m.Role),
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			}
		},
		stamp: func(a *account.Account, m *AccountModel) {
			a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
	})
}

// =========================================
// 作者
// =========================================

func NewAuthorRepository(db *gorm.DB) author.Repository {
	return newRepository(db, mapping[*author.Author, AuthorModel]{
		table: "authors",
		columns: map[string]column{
			"firstName": {expr: "authors.first_name"},
			"lastName":  {expr: "authors.last_name"},
		},
		counts: []countSpec[*author.Author]{
			countBy(bookAuthorTable, "author_id", func(a *author.Author, n int64) { a.BookCount = n }),
			countBy("comments", "author_id", func(a *author.Author, n int64) { a.CommentCount = n }),
			countBy("votes", "author_id", func(a *author.Author, n int64) { a.VoteCount = n }),
			countBy("favourites", "author_id", func(a *author.Author, n int64) { a.FavouriteCount = n }),
		},
		toModel:  toAuthorModel,
		toEntity: toAuthorEntity,
		stamp: func(a *author.Author, m *AuthorModel) {
			a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
		beforeDelete: unlink(bookAuthorTable, "author_id"),
	})
}

func toAuthorModel(a *author.Author) *AuthorModel {
	return &AuthorModel{
		ID:        a.ID.String(),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Gender:    string(a.Gender),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAuthorEntity(m *AuthorModel) *author.Author {
	return &author.Author{
		ID:        parseID(m.ID),
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Gender:    author.Gender(m.Gender),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// =========================================
// 出版社
// =========================================

func NewIssuerRepository(db *gorm.DB) issuer.Repository {
	return newRepository(db, mapping[*issuer.Issuer, IssuerModel]{
		table: "issuers",
		columns: map[string]column{
			"name": {expr: "issuers.name"},
		},
		counts: []countSpec[*issuer.Issuer]{
			countBy("books", "issuer_id", func(i *issuer.Issuer, n int64) { i.BookCount = n }),
			countBy("comments", "issuer_id", func(i *issuer.Issuer, n int64) { i.CommentCount = n }),
			countBy("votes", "issuer_id", func(i *issuer.Issuer, n int64) { i.VoteCount = n }),
			countBy("favourites", "issuer_id", func(i *issuer.Issuer, n int64) { i.FavouriteCount = n }),
		},
		toModel:  toIssuerModel,
		toEntity: toIssuerEntity,
		stamp: func(i *issuer.Issuer, m *IssuerModel) {
			i.CreatedAt, i.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
	})
}

func toIssuerModel(i *issuer.Issuer) *IssuerModel {
	return &IssuerModel{
		ID:        i.ID.String(),
		Name:      i.Name,
		Website:   i.Website,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toIssuerEntity(m *IssuerModel) *issuer.Issuer {
	return &issuer.Issuer{
		ID:        parseID(m.ID),
		Name:      m.Name,
		Website:   m.Website,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// =========================================
// 标签
// =========================================

func NewTagRepository(db *gorm.DB) tag.Repository {
	return newRepository(db, mapping[*tag.Tag, TagModel]{
		table: "tags",
		columns: map[string]column{
			"name": {expr: "tags.name"},
		},
		counts: []countSpec[*tag.Tag]{
			countBy(bookTagTable, "tag_id", func(t *tag.Tag, n int64) { t.BookCount = n }),
		},
		toModel:  toTagModel,
		toEntity: toTagEntity,
		stamp: func(t *tag.Tag, m *TagModel) {
			t.CreatedAt, t.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
		beforeDelete: unlink(bookTagTable, "tag_id"),
	})
}

func toTagModel(t *tag.Tag) *TagModel {
	return &TagModel{
		ID:        t.ID.String(),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTagEntity(m *TagModel) *tag.Tag {
	return &tag.Tag{
		ID:        parseID(m.ID),
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// =========================================
// 图书
// =========================================

// bookColumns 关键字搜索会跨出版社/作者/标签，用子查询避免JOIN后行数膨胀影响分页
var bookColumns = map[string]column{
	"name":    {expr: "books.name"},
	"edition": {expr: "books.edition"},
	"issuer.name": {
		expr: "i.name",
		wrap: "books.issuer_id IN (SELECT i.id FROM issuers i WHERE %s)",
	},
	"authors.firstName": {
		expr: "a.first_name",
		wrap: "books.id IN (SELECT ba.book_id FROM " + bookAuthorTable + " ba JOIN authors a ON a.id = ba.author_id WHERE %s)",
	},
	"authors.lastName": {
		expr: "a.last_name",
		wrap: "books.id IN (SELECT ba.book_id FROM " + bookAuthorTable + " ba JOIN authors a ON a.id = ba.author_id WHERE %s)",
	},
	"tags.name": {
		expr: "t.name",
		wrap: "books.id IN (SELECT bt.book_id FROM " + bookTagTable + " bt JOIN tags t ON t.id = bt.tag_id WHERE %s)",
	},
}

func NewBookRepository(db *gorm.DB) book.Repository {
	return newRepository(db, mapping[*book.Book, BookModel]{
		table:    "books",
		columns:  bookColumns,
		preloads: []string{"Issuer", "Authors", "Tags", "Images"},
		counts: []countSpec[*book.Book]{
			countBy(bookAuthorTable, "book_id", func(b *book.Book, n int64) { b.AuthorCount = n }),
			countBy("comments", "book_id", func(b *book.Book, n int64) { b.CommentCount = n }),
			countBy("votes", "book_id", func(b *book.Book, n int64) { b.VoteCount = n }),
			countBy("favourites", "book_id", func(b *book.Book, n int64) { b.FavouriteCount = n }),
		},
		toModel: func(b *book.Book) *BookModel {
			return &BookModel{
				ID:        b.ID.String(),
				Name:      b.Name,
				Edition:   b.Edition,
				Price:     b.Price,
				IssuerID:  b.IssuerID().String(),
				CreatedAt: b.CreatedAt,
				UpdatedAt: b.UpdatedAt,
			}
		},
		toEntity: toBookEntity,
		stamp: func(b *book.Book, m *BookModel) {
			b.CreatedAt, b.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
		afterWrite: func(tx *gorm.DB, b *book.Book) error {
			id := b.ID.String()
			if err := replaceLinks(tx, bookAuthorTable, "book_id", "author_id", id, idStrings(b.AuthorIDs())); err != nil {
				return err
			}
			if err := replaceLinks(tx, bookTagTable, "book_id", "tag_id", id, idStrings(b.TagIDs())); err != nil {
				return err
			}
			return replaceLinks(tx, bookImageTable, "book_id", "image_id", id, idStrings(b.ImageIDs))
		},
		beforeDelete: func(tx *gorm.DB, id string) error {
			for _, table := range []string{bookAuthorTable, bookTagTable, bookImageTable} {
				if err := unlink(table, "book_id")(tx, id); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func toBookEntity(m *BookModel) *book.Book {
	b := &book.Book{
		ID:        parseID(m.ID),
		Name:      m.Name,
		Edition:   m.Edition,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Issuer != nil {
		b.Issuer = toIssuerEntity(m.Issuer)
	} else if m.IssuerID != "" {
		b.Issuer = &issuer.Issuer{ID: parseID(m.IssuerID)}
	}
	for i := range m.Authors {
		b.Authors = append(b.Authors, toAuthorEntity(&m.Authors[i]))
	}
	for i := range m.Tags {
		b.Tags = append(b.Tags, toTagEntity(&m.Tags[i]))
	}
	b.ImageIDs = imageIDs(m.Images)
	return b
}

func imageIDs(images []ImageModel) []uuid.UUID {
	if len(images) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(images))
	for i, img := range images {
		ids[i] = parseID(img.ID)
	}
	return ids
}

// =========================================
// 评论
// =========================================

func NewCommentRepository(db *gorm.DB) comment.Repository {
	return newRepository(db, mapping[*comment.Comment, CommentModel]{
		table: "comments",
		columns: map[string]column{
			"accountId": {expr: "comments.account_id"},
			"parentId":  {expr: "comments.parent_id"},
			"bookId":    {expr: "comments.book_id"},
			"authorId":  {expr: "comments.author_id"},
			"issuerId":  {expr: "comments.issuer_id"},
		},
		preloads: []string{"Images"},
		counts: []countSpec[*comment.Comment]{
			countBy("comments", "parent_id", func(c *comment.Comment, n int64) { c.ReplyCount = n }),
			countBy("votes", "comment_id", func(c *comment.Comment, n int64) { c.VoteCount = n }),
		},
		toModel: func(c *comment.Comment) *CommentModel {
			return &CommentModel{
				ID:        c.ID.String(),
				AccountID: c.AccountID.String(),
				Content:   c.Content,
				ParentID:  idPtr(c.ParentID),
				BookID:    idPtr(c.BookID),
				AuthorID:  idPtr(c.AuthorID),
				IssuerID:  idPtr(c.IssuerID),
				CreatedAt: c.CreatedAt,
				UpdatedAt: c.UpdatedAt,
			}
		},
		toEntity: func(m *CommentModel) *comment.Comment {
			return &comment.Comment{
				ID:        parseID(m.ID),
				AccountID: parseID(m.AccountID),
				Content:   m.Content,
				ParentID:  parseIDPtr(m.ParentID),
				BookID:    parseIDPtr(m.BookID),
				AuthorID:  parseIDPtr(m.AuthorID),
				IssuerID:  parseIDPtr(m.IssuerID),
				ImageIDs:  imageIDs(m.Images),
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			}
		},
		stamp: func(c *comment.Comment, m *CommentModel) {
			c.CreatedAt, c.UpdatedAt = m.CreatedAt, m.UpdatedAt
		},
		afterWrite: func(tx *gorm.DB, c *comment.Comment) error {
			return replaceLinks(tx, commentImageTable, "comment_id", "image_id", c.ID.String(), idStrings(c.ImageIDs))
		},
		beforeDelete: unlink(commentImageTable, "comment_id"),
	})
}

// =========================================
// 投票 / 收藏
// =========================================

// targetColumns 投票/收藏的目标列
func targetColumns(table string, fields ...string) map[string]column {
	cols := map[string]column{"accountId": {expr: table + ".account_id"}}
	for _, f := range fields {
		cols[f+"Id"] = column{expr: table + "." + f + "_id"}
	}
	return cols
}

func NewVoteRepository(db *gorm.DB) vote.Repository {
	return newRepository(db, mapping[*vote.Vote, VoteModel]{
		table:   "votes",
		columns: targetColumns("votes", "issuer", "book", "author", "comment"),
		toModel: func(v *vote.Vote) *VoteModel {
			return &VoteModel{
				ID:        v.ID.String(),
				AccountID: v.AccountID.String(),
				IssuerID:  idPtr(v.IssuerID),
				BookID:    idPtr(v.BookID),
				AuthorID:  idPtr(v.AuthorID),
				CommentID: idPtr(v.CommentID),
				CreatedAt: v.CreatedAt,
			}
		},
		toEntity: func(m *VoteModel) *vote.Vote {
			return &vote.Vote{
				ID:        parseID(m.ID),
				AccountID: parseID(m.AccountID),
				IssuerID:  parseIDPtr(m.IssuerID),
				BookID:    parseIDPtr(m.BookID),
				AuthorID:  parseIDPtr(m.AuthorID),
				CommentID: parseIDPtr(m.CommentID),
				CreatedAt: m.CreatedAt,
			}
		},
		stamp: func(v *vote.Vote, m *VoteModel) { v.CreatedAt = m.CreatedAt },
	})
}

func NewFavouriteRepository(db *gorm.DB) favourite.Repository {
	return newRepository(db, mapping[*favourite.Favourite, FavouriteModel]{
		table:   "favourites",
		columns: targetColumns("favourites", "issuer", "book", "author"),
		toModel: func(f *favourite.Favourite) *FavouriteModel {
			return &FavouriteModel{
				ID:        f.ID.String(),
				AccountID: f.AccountID.String(),
				IssuerID:  idPtr(f.IssuerID),
				BookID:    idPtr(f.BookID),
				AuthorID:  idPtr(f.AuthorID),
				CreatedAt: f.CreatedAt,
			}
		},
		toEntity: func(m *FavouriteModel) *favourite.Favourite {
			return &favourite.Favourite{
				ID:        parseID(m.ID),
				AccountID: parseID(m.AccountID),
				IssuerID:  parseIDPtr(m.IssuerID),
				BookID:    parseIDPtr(m.BookID),
				AuthorID:  parseIDPtr(m.AuthorID),
				CreatedAt: m.CreatedAt,
			}
		},
		stamp: func(f *favourite.Favourite, m *FavouriteModel) { f.CreatedAt = m.CreatedAt },
	})
}

// =========================================
// 图片
// =========================================

func NewImageRepository(db *gorm.DB) image.Repository {
	return newRepository(db, mapping[*image.Image, ImageModel]{
		table: "images",
		columns: map[string]column{
			"accountId": {expr: "images.account_id"},
		},
		toModel: func(i *image.Image) *ImageModel {
			return &ImageModel{
				ID:          i.ID.String(),
				AccountID:   i.AccountID.String(),
				Extension:   i.Extension,
				ContentType: i.ContentType,
				Size:        i.Size,
				CreatedAt:   i.CreatedAt,
			}
		},
		toEntity: func(m *ImageModel) *image.Image {
			return &image.Image{
				ID:          parseID(m.ID),
				AccountID:   parseID(m.AccountID),
				Extension:   m.Extension,
				ContentType: m.ContentType,
				Size:        m.Size,
				CreatedAt:   m.CreatedAt,
			}
		},
		stamp: func(i *image.Image, m *ImageModel) { i.CreatedAt = m.CreatedAt },
		beforeDelete: func(tx *gorm.DB, id string) error {
			if err := unlink(bookImageTable, "image_id")(tx, id); err != nil {
				return err
			}
			return unlink(commentImageTable, "image_id")(tx, id)
		},
	})
}
