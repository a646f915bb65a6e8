package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	appimage "github.com/xiebiao/bookhub/internal/application/image"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/response"
)

// UploadField 上传表单中的文件字段名
const UploadField = "files"

// ImageHandler 图片上传与读取
type ImageHandler struct {
	uploadUseCase *appimage.UploadUseCase
	getUseCase    *appimage.GetUseCase
}

func NewImageHandler(uploadUseCase *appimage.UploadUseCase, getUseCase *appimage.GetUseCase) *ImageHandler {
	return &ImageHandler{uploadUseCase: uploadUseCase, getUseCase: getUseCase}
}

// Upload 批量上传图片
// @Summary      上传图片
// @Description  一次上传多个文件，每个文件都必须带扩展名；任一文件失败时整体回滚
// @Tags         图片
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files formData file true "图片文件，可多个"
// @Success      200 {object} response.Response{data=dto.UploadResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      422 {object} response.Response "文件缺少扩展名或过大"
// @Router       /api/v1/images [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, apperrors.ErrBindError.In(image.Family).WithMessage("参数错误: 需要multipart/form-data"))
		return
	}

	headers := form.File[UploadField]
	files := make([]appimage.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, appimage.File{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        opener(fh),
		})
	}

	ids, err := h.uploadUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c), files)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := &dto.UploadResponse{IDs: make([]string, len(ids))}
	for i, id := range ids {
		resp.IDs[i] = id.String()
	}
	response.Success(c, resp)
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

// Get 读取图片内容
// @Summary      读取图片
// @Tags         图片
// @Produce      octet-stream
// @Param        id path string true "图片ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.Response "图片不存在"
// @Router       /api/v1/images/{id} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	id, ok := pathID(c, image.Family)
	if !ok {
		return
	}
	img, rc, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// 图片内容按ID寻址，写入后不再变化
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, img.Size, contentType, rc, map[string]string{
		"Content-Disposition": "inline; filename=\"" + img.BlobKey() + "\"",
	})
}
