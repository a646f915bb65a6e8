package dto

// RegisterRequest HTTP注册请求
// 长度与领域层规则一致：用户名3-32，密码6-64
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32" example:"alice"`
	Password string `json:"password" binding:"required,min=6,max=64" example:"password123"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RefreshRequest 刷新Access Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse 新的Access Token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UploadResponse 上传成功的图片ID，顺序与上传文件一致
type UploadResponse struct {
	IDs []string `json:"ids"`
}
