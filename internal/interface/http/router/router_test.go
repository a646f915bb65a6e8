package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appaccount "github.com/xiebiao/bookhub/internal/application/account"
	appimage "github.com/xiebiao/bookhub/internal/application/image"
	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/favourite"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	"github.com/xiebiao/bookhub/internal/domain/resource/resourcetest"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	"github.com/xiebiao/bookhub/internal/domain/vote"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/infrastructure/storage"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ========================================
// 测试夹具：内存仓储组装的完整路由
// ========================================

type fakeSessions struct {
	revoked map[string]bool
}

func (f *fakeSessions) SaveSession(context.Context, uuid.UUID, map[string]interface{}, time.Duration) error {
	return nil
}

func (f *fakeSessions) DeleteSession(context.Context, uuid.UUID) error { return nil }

func (f *fakeSessions) Revoke(_ context.Context, token string, _ time.Duration) error {
	f.revoked[token] = true
	return nil
}

func (f *fakeSessions) IsRevoked(_ context.Context, token string) bool {
	return f.revoked[token]
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func idField(id *uuid.UUID) []string {
	if id == nil {
		return nil
	}
	return []string{id.String()}
}

func memRepo[E resource.Entity](lookup func(E, string) []string) *resourcetest.Repo[E] {
	if lookup == nil {
		lookup = func(E, string) []string { return nil }
	}
	return resourcetest.New(lookup, nil)
}

type testApp struct {
	engine   *gin.Engine
	jwt      *jwt.Manager
	sessions *fakeSessions
	books    *resourcetest.Repo[*book.Book]
	authors  *resourcetest.Repo[*author.Author]
	comments *resourcetest.Repo[*comment.Comment]
	votes    *resourcetest.Repo[*vote.Vote]
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test", MaxPageSize: 50},
		Auth:   config.AuthConfig{BcryptCost: bcrypt.MinCost, Moderators: []string{"admin"}},
		CORS: config.CORSConfig{
			Enabled:      true,
			AllowOrigins: []string{"https://bookhub.example"},
			AllowMethods: []string{"GET", "PUT", "DELETE"},
			AllowHeaders: []string{"Authorization"},
		},
	}
	tx := &resourcetest.Tx{}
	mgr := jwt.NewManager("router-test", time.Hour, 24*time.Hour)
	sessions := &fakeSessions{revoked: map[string]bool{}}

	accounts := account.NewService(memRepo(func(a *account.Account, _ string) []string {
		return []string{a.Username}
	}), tx)
	authorRepo := memRepo[*author.Author](nil)
	authors := author.NewService(authorRepo, tx)
	issuers := issuer.NewService(memRepo[*issuer.Issuer](nil), tx)
	tags := tag.NewService(memRepo(func(g *tag.Tag, field string) []string {
		if field == "name" {
			return []string{g.Name}
		}
		return nil
	}), tx)
	bookRepo := memRepo[*book.Book](nil)
	books := book.NewService(bookRepo, tx, issuers, authors, tags)

	commentRepo := memRepo[*comment.Comment](nil)
	comments := comment.NewService(commentRepo, tx, books, authors, issuers)
	voteRepo := memRepo(func(v *vote.Vote, field string) []string {
		switch field {
		case "accountId":
			return []string{v.AccountID.String()}
		case "issuerId":
			return idField(v.IssuerID)
		case "bookId":
			return idField(v.BookID)
		case "authorId":
			return idField(v.AuthorID)
		case "commentId":
			return idField(v.CommentID)
		}
		return nil
	})
	images := image.NewService(memRepo[*image.Image](nil), tx)
	blobs := storage.NewLocalStoreOn(afero.NewMemMapFs())
	notifier := interaction.NewNotifier(nil)

	h := &Handlers{
		Account: handler.NewAccountHandler(
			appaccount.NewRegisterUseCase(accounts, cfg),
			appaccount.NewLoginUseCase(accounts, mgr, sessions, 24*time.Hour),
			appaccount.NewLogoutUseCase(sessions, mgr),
			appaccount.NewRefreshUseCase(accounts, mgr),
		),
		Author:    handler.NewAuthorHandler(authors, cfg),
		Issuer:    handler.NewIssuerHandler(issuers, cfg),
		Tag:       handler.NewTagHandler(tags, cfg),
		Book:      handler.NewBookHandler(books, cfg),
		Comment:   handler.NewCommentHandler(comments, notifier, cfg),
		Vote:      handler.NewVoteHandler(vote.NewService(voteRepo, tx, issuers, books, authors, comments), notifier, cfg),
		Favourite: handler.NewFavouriteHandler(favourite.NewService(memRepo[*favourite.Favourite](nil), tx, issuers, books, authors), notifier, cfg),
		Image: handler.NewImageHandler(
			appimage.NewUploadUseCase(images, blobs, 1<<20),
			appimage.NewGetUseCase(images, blobs),
		),
	}

	return &testApp{
		engine:   New(cfg, h, middleware.NewAuthMiddleware(mgr, sessions)),
		jwt:      mgr,
		sessions: sessions,
		books:    bookRepo,
		authors:  authorRepo,
		comments: commentRepo,
		votes:    voteRepo,
	}
}

// seedBook 预置一本图书，返回其ID
func (a *testApp) seedBook() uuid.UUID {
	b := &book.Book{Name: "Go in Action", Edition: 1}
	a.books.Seed(b)
	return b.ID
}

func (a *testApp) token(t *testing.T, id uuid.UUID, role auth.Role) string {
	t.Helper()
	pair, err := a.jwt.GenerateToken(id.String(), "tester", string(role))
	require.NoError(t, err)
	return pair.AccessToken
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Family  string          `json:"family"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// ========================================
// 路由与权限
// ========================================

func TestPing(t *testing.T) {
	app := newTestApp(t)
	w, env := app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCatalogWrite_RequiresModerator(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"name": "编程"}

	tests := []struct {
		name   string
		token  string
		status int
		kind   string
	}{
		{"未登录", "", http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"普通用户", app.token(t, uuid.New(), auth.RoleUser), http.StatusForbidden, "NOT_AUTHORIZED"},
		{"管理员", app.token(t, uuid.New(), auth.RoleModerator), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := app.do(t, http.MethodPut, "/api/v1/tags", tt.token, body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, env.Kind)
		})
	}

	// 读接口公开
	w, env := app.do(t, http.MethodGet, "/api/v1/tags?index=0&size=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Rows []struct {
			Name string `json:"name"`
		} `json:"rows"`
		TotalRowCount  int64 `json:"totalRowCount"`
		TotalPageCount int64 `json:"totalPageCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "编程", page.Rows[0].Name)
	assert.EqualValues(t, 1, page.TotalPageCount)
}

func TestCatalogGet_BadID(t *testing.T) {
	app := newTestApp(t)
	w, env := app.do(t, http.MethodGet, "/api/v1/authors/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTHOR", env.Family)

	w, env = app.do(t, http.MethodGet, "/api/v1/authors/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Kind)
}

func TestCommentDelete_Ownership(t *testing.T) {
	app := newTestApp(t)
	owner := uuid.New()
	c := &comment.Comment{AccountID: owner, Content: "写得很好", BookID: ptr(uuid.New())}
	app.comments.Seed(c)
	path := "/api/v1/comments/" + app.comments.Rows()[0].ID.String()

	// 未登录时即使记录不存在也先返回NOT_AUTHENTICATED
	w, env := app.do(t, http.MethodDelete, "/api/v1/comments/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "COMMENT", env.Family)

	w, _ = app.do(t, http.MethodDelete, path, app.token(t, uuid.New(), auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, app.comments.Len())

	w, _ = app.do(t, http.MethodDelete, path, app.token(t, owner, auth.RoleUser), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.comments.Len())
}

func TestCommentSave_FillsOwner(t *testing.T) {
	app := newTestApp(t)
	me := uuid.New()
	bookID := app.seedBook()

	w, env := app.do(t, http.MethodPut, "/api/v1/comments", app.token(t, me, auth.RoleUser), map[string]interface{}{
		"content": "  值得一读  ",
		"bookId":  bookID,
	})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var saved struct {
		AccountID uuid.UUID `json:"accountId"`
		Content   string    `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Equal(t, me, saved.AccountID)
	assert.Equal(t, "值得一读", saved.Content)
}

func TestVotes(t *testing.T) {
	app := newTestApp(t)
	me := uuid.New()
	token := app.token(t, me, auth.RoleUser)
	bookID := app.seedBook()
	statePath := "/api/v1/votes/state?bookId=" + bookID.String()

	t.Run("列表需要登录", func(t *testing.T) {
		w, _ := app.do(t, http.MethodGet, "/api/v1/votes?type=BOOK", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("未登录查询状态返回null", func(t *testing.T) {
		w, env := app.do(t, http.MethodGet, statePath, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, env.Data)
	})

	t.Run("状态查询必须指定对象", func(t *testing.T) {
		w, env := app.do(t, http.MethodGet, "/api/v1/votes/state", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "VOTE", env.Family)
	})

	t.Run("重复投票只保留一条", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w, env := app.do(t, http.MethodPut, "/api/v1/votes", token, map[string]interface{}{"bookId": bookID})
			require.Equal(t, http.StatusOK, w.Code, env.Message)
		}
		assert.Equal(t, 1, app.votes.Len())

		w, env := app.do(t, http.MethodGet, statePath, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var state struct {
			Type   string    `json:"type"`
			BookID uuid.UUID `json:"bookId"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &state))
		assert.Equal(t, "BOOK", state.Type)
		assert.Equal(t, bookID, state.BookID)

		// 其他账号看不到我的投票
		w, env = app.do(t, http.MethodGet, statePath, app.token(t, uuid.New(), auth.RoleUser), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, env.Data)
	})

	t.Run("非法类型", func(t *testing.T) {
		w, _ := app.do(t, http.MethodGet, "/api/v1/votes?type=SHELF", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("投票对象不存在", func(t *testing.T) {
		before := app.votes.Len()
		w, env := app.do(t, http.MethodPut, "/api/v1/votes", token, map[string]interface{}{"bookId": uuid.New()})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "BOOK", env.Family)
		assert.Equal(t, before, app.votes.Len())
	})
}

func TestCommentSave_UnknownTarget(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, uuid.New(), auth.RoleUser)

	w, env := app.do(t, http.MethodPut, "/api/v1/comments", token, map[string]interface{}{
		"content":  "查无此人",
		"authorId": uuid.New(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "AUTHOR", env.Family)
	assert.Equal(t, 0, app.comments.Len())

	// 对象都存在时同时挂在两个对象上也不允许
	a := &author.Author{FirstName: "Rob", LastName: "Pike"}
	app.authors.Seed(a)
	w, env = app.do(t, http.MethodPut, "/api/v1/comments", token, map[string]interface{}{
		"content":  "两个对象",
		"bookId":   app.seedBook(),
		"authorId": a.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION", env.Kind)
	assert.Equal(t, 0, app.comments.Len())
}

func TestRevokedToken(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, uuid.New(), auth.RoleUser)

	w, _ := app.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, app.sessions.revoked[token])

	w, env := app.do(t, http.MethodPut, "/api/v1/votes", token, map[string]interface{}{"bookId": uuid.New()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Kind)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	creds := map[string]string{"username": "alice", "password": "password123"}

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = app.do(t, http.MethodPost, "/api/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Role         string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "USER", login.Role)

	// 登录后的Token可以发表评论
	a := &author.Author{FirstName: "Rob", LastName: "Pike"}
	app.authors.Seed(a)
	w, env = app.do(t, http.MethodPut, "/api/v1/comments", login.AccessToken, map[string]interface{}{
		"content":  "第一条评论",
		"authorId": a.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code, env.Message)

	// Refresh Token不能当Access Token用
	w, _ = app.do(t, http.MethodPut, "/api/v1/comments", login.RefreshToken, map[string]interface{}{
		"content":  "第二条评论",
		"authorId": a.ID,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
}

func TestImages(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(handler.UploadField, "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	upload := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/images", bytes.NewReader(buf.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, upload("").Code)

	w := upload(app.token(t, uuid.New(), auth.RoleUser))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.IDs, 1)

	// 读取图片无需登录
	req := httptest.NewRequest(http.MethodGet, "/api/v1/images/"+resp.IDs[0], nil)
	got := httptest.NewRecorder()
	app.engine.ServeHTTP(got, req)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "png-bytes", got.Body.String())
}

func TestCORS(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tags", nil)
	req.Header.Set("Origin", "https://bookhub.example")
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://bookhub.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
