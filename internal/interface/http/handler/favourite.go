package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/domain/favourite"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/response"
)

// FavouriteHandler 收藏HTTP处理器
// 与投票相同，列表和状态查询都只针对当前登录账号
type FavouriteHandler struct {
	crud[*favourite.Favourite, favourite.Filter, *dto.FavouriteResponse]
	notifier *interaction.Notifier
}

func NewFavouriteHandler(favourites *favourite.Service, notifier *interaction.Notifier, cfg *config.Config) *FavouriteHandler {
	return &FavouriteHandler{
		crud:     newCRUD(favourites, dto.FromFavourite, cfg.Server.MaxPageSize),
		notifier: notifier,
	}
}

// List 我的收藏
// @Summary      我的收藏列表
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        type query string true "对象类型" Enums(ISSUER, BOOK, AUTHOR)
// @Success      200 {object} response.Response{data=dto.FavouritePage}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/favourites [get]
func (h *FavouriteHandler) List(c *gin.Context) {
	var q dto.FavouriteListQuery
	if !bindQuery(c, &q) {
		return
	}
	t, err := favourite.ParseType(q.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Error(c, apperrors.ErrNotAuthenticated.In(favourite.Family))
		return
	}
	h.list(c, favourite.Filter{AccountID: &p.ID, Type: t}, q.PageQuery)
}

// State 当前账号对某个对象的收藏
// @Summary      收藏状态
// @Description  未收藏或未登录时data为null
// @Tags         收藏
// @Produce      json
// @Param        issuerId query string false "出版社ID"
// @Param        bookId query string false "图书ID"
// @Param        authorId query string false "作者ID"
// @Success      200 {object} response.Response{data=dto.FavouriteResponse}
// @Router       /api/v1/favourites/state [get]
func (h *FavouriteHandler) State(c *gin.Context) {
	var q dto.FavouriteStateQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		response.Error(c, err)
		return
	}
	if !filter.HasTarget() {
		response.Error(c, favourite.ErrTargetRequired)
		return
	}
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Success(c, nil)
		return
	}
	filter.AccountID = &p.ID

	v, err := h.svc.FindOne(c.Request.Context(), filter)
	if errors.Is(err, apperrors.ErrNotFound) {
		response.Success(c, nil)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromFavourite(v))
}

// Save 收藏
// @Summary      收藏
// @Description  同一账号对同一对象重复收藏不会新增记录
// @Tags         收藏
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.FavouriteRequest true "收藏对象，只能指定一个"
// @Success      200 {object} response.Response{data=dto.FavouriteResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      422 {object} response.Response "必须且只能指定一个对象"
// @Router       /api/v1/favourites [put]
func (h *FavouriteHandler) Save(c *gin.Context) {
	var req dto.FavouriteRequest
	if !bindJSON(c, &req) {
		return
	}
	saved, ok := h.save(c, req.ToEntity())
	if !ok {
		return
	}
	t, id, _ := saved.Target()
	h.notifier.Saved(c.Request.Context(), "favourite", saved.ID, saved.AccountID, string(t), &id)
}

// Delete 取消收藏
// @Summary      取消收藏
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "收藏ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "收藏不存在"
// @Router       /api/v1/favourites/{id} [delete]
func (h *FavouriteHandler) Delete(c *gin.Context) {
	if id, ok := h.delete(c); ok {
		h.notifier.Deleted(c.Request.Context(), "favourite", id, middleware.GetPrincipal(c).ID)
	}
}
