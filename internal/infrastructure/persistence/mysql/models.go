package mysql

import "time"

// 数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain下的实体不依赖GORM，仓储负责两者之间的转换
// 3. 主键统一为UUID字符串char(36)，由应用层生成

// AccountModel 账号
type AccountModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	Username  string    `gorm:"uniqueIndex;size:32;not null;comment:用户名"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role      string    `gorm:"size:16;not null;default:USER;comment:角色(USER/MODERATOR)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// AuthorModel 作者，姓+名唯一
type AuthorModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	FirstName string    `gorm:"uniqueIndex:uk_author_name;size:100;not null;comment:名"`
	LastName  string    `gorm:"uniqueIndex:uk_author_name;size:100;not null;comment:姓"`
	Gender    string    `gorm:"type:char(1);not null;default:U;comment:性别(M/F/U)"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

// IssuerModel 出版社
type IssuerModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	Name      string    `gorm:"uniqueIndex;size:200;not null;comment:名称"`
	Website   *string   `gorm:"size:500;comment:官网"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (IssuerModel) TableName() string {
	return "issuers"
}

// TagModel 标签
type TagModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:名称"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (TagModel) TableName() string {
	return "tags"
}

// ImageModel 图片元数据，文件本体在BlobStore里
type ImageModel struct {
	ID          string    `gorm:"primaryKey;type:char(36)"`
	AccountID   string    `gorm:"index;type:char(36);not null;comment:上传者"`
	Extension   string    `gorm:"size:16;not null;comment:扩展名"`
	ContentType string    `gorm:"size:100;comment:MIME类型"`
	Size        int64     `gorm:"not null;default:0;comment:字节数"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间"`
}

func (ImageModel) TableName() string {
	return "images"
}

// BookModel 图书
// 教学要点:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 书名+版次唯一
// 3. 作者/标签/图片通过映射表多对多关联
type BookModel struct {
	ID        string        `gorm:"primaryKey;type:char(36)"`
	Name      string        `gorm:"uniqueIndex:uk_book;size:200;not null;comment:书名"`
	Edition   int           `gorm:"uniqueIndex:uk_book;not null;default:1;comment:版次"`
	Price     int64         `gorm:"not null;default:0;comment:价格(分)"`
	IssuerID  string        `gorm:"index;type:char(36);not null;comment:出版社ID"`
	Issuer    *IssuerModel  `gorm:"foreignKey:IssuerID"`
	Authors   []AuthorModel `gorm:"many2many:book_author_mapping;joinForeignKey:BookID;joinReferences:AuthorID"`
	Tags      []TagModel    `gorm:"many2many:book_tag_mapping;joinForeignKey:BookID;joinReferences:TagID"`
	Images    []ImageModel  `gorm:"many2many:book_image_mapping;joinForeignKey:BookID;joinReferences:ImageID"`
	CreatedAt time.Time     `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time     `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// CommentModel 评论
// BookID/AuthorID/IssuerID至多一个有值，ParentID可与其并存，由领域层校验
type CommentModel struct {
	ID        string       `gorm:"primaryKey;type:char(36)"`
	AccountID string       `gorm:"index;type:char(36);not null;comment:评论者"`
	Content   string       `gorm:"type:text;not null;comment:内容"`
	ParentID  *string      `gorm:"index;type:char(36);comment:回复的评论"`
	BookID    *string      `gorm:"index;type:char(36)"`
	AuthorID  *string      `gorm:"index;type:char(36)"`
	IssuerID  *string      `gorm:"index;type:char(36)"`
	Images    []ImageModel `gorm:"many2many:comment_image_mapping;joinForeignKey:CommentID;joinReferences:ImageID"`
	CreatedAt time.Time    `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time    `gorm:"comment:更新时间"`
}

func (CommentModel) TableName() string {
	return "comments"
}

// VoteModel 投票
// 每个(账号,目标)组合唯一；NULL不参与唯一性比较，所以四个索引互不干扰
type VoteModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	AccountID string    `gorm:"type:char(36);not null;uniqueIndex:uk_vote_issuer;uniqueIndex:uk_vote_book;uniqueIndex:uk_vote_author;uniqueIndex:uk_vote_comment"`
	IssuerID  *string   `gorm:"type:char(36);uniqueIndex:uk_vote_issuer"`
	BookID    *string   `gorm:"type:char(36);uniqueIndex:uk_vote_book"`
	AuthorID  *string   `gorm:"type:char(36);uniqueIndex:uk_vote_author"`
	CommentID *string   `gorm:"type:char(36);uniqueIndex:uk_vote_comment"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

func (VoteModel) TableName() string {
	return "votes"
}

// FavouriteModel 收藏
type FavouriteModel struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	AccountID string    `gorm:"type:char(36);not null;uniqueIndex:uk_fav_issuer;uniqueIndex:uk_fav_book;uniqueIndex:uk_fav_author"`
	IssuerID  *string   `gorm:"type:char(36);uniqueIndex:uk_fav_issuer"`
	BookID    *string   `gorm:"type:char(36);uniqueIndex:uk_fav_book"`
	AuthorID  *string   `gorm:"type:char(36);uniqueIndex:uk_fav_author"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

func (FavouriteModel) TableName() string {
	return "favourites"
}
