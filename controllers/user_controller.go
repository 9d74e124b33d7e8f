package controllers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"tradecal/middleware"
	"tradecal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// 头像上传限制
const maxAvatarSize = 2 << 20 // 2MB

// CaptchaVerifier 图形验证码服务接口
type CaptchaVerifier interface {
	VerifyCaptcha(id, value string) bool
}

// UserDB 用户数据库接口
type UserDB interface {
	// 根据邮箱获取用户
	GetUserByEmail(email string) (*models.User, error)
	// 根据ID获取用户
	GetUserByID(id int64) (*models.User, error)
	// 创建用户
	CreateUser(user *models.User) error
	// 更新用户
	UpdateUser(user *models.User) error
	// 检查邮箱是否存在
	EmailExists(email string) (bool, error)
	// 更新头像
	UpdateProfileImage(userID int64, imagePath string) error
}

// UserController 用户控制器
type UserController struct {
	db        UserDB
	jwt       *middleware.JWTMiddleware
	captcha   CaptchaVerifier
	uploadDir string
}

// NewUserController 创建用户控制器
func NewUserController(db UserDB, jwtMiddleware *middleware.JWTMiddleware, captcha CaptchaVerifier, uploadDir string) *UserController {
	return &UserController{
		db:        db,
		jwt:       jwtMiddleware,
		captcha:   captcha,
		uploadDir: uploadDir,
	}
}

// RegisterRoutesWithRateLimit 注册路由（包含限流）
func (uc *UserController) RegisterRoutesWithRateLimit(router *gin.Engine, rl *middleware.RateLimiter) {
	// 公开路由（不需要登录，但需要限流）
	public := router.Group("/api/user")
	{
		public.POST("/register", rl.RegisterLimit(), uc.Register)
		public.POST("/login", rl.LoginLimit(), uc.Login)
	}

	// 需要登录的路由
	authorized := router.Group("/api/user")
	authorized.Use(uc.jwt.JWTAuth())
	{
		authorized.GET("/info", uc.GetUserInfo)
		authorized.PUT("/password", uc.ChangePassword)
		authorized.POST("/avatar", uc.UploadAvatar)
	}
}

// ==================== 注册 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Nickname     string `json:"nickname" binding:"required,min=2,max=50"`
	Password     string `json:"password" binding:"required,min=6,max=32"`
	CaptchaID    string `json:"captcha_id" binding:"required"`
	CaptchaValue string `json:"captcha_value" binding:"required"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 邮箱+密码注册，需要图形验证码
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/user/register [post]
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	// 验证图形验证码
	if !uc.captcha.VerifyCaptcha(req.CaptchaID, req.CaptchaValue) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "图形验证码错误或已过期",
		})
		return
	}

	// 检查邮箱是否已存在
	exists, err := uc.db.EmailExists(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "系统错误",
		})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "该邮箱已被注册",
		})
		return
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "密码加密失败",
		})
		return
	}

	// 创建用户
	now := time.Now()
	hash := string(hashedPassword)
	user := &models.User{
		Email:        &req.Email,
		Nickname:     req.Nickname,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.db.CreateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "注册失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "注册成功",
		"data": gin.H{
			"id":       user.ID,
			"email":    req.Email,
			"nickname": user.Nickname,
		},
	})
}

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	CaptchaID    string `json:"captcha_id" binding:"required"`
	CaptchaValue string `json:"captcha_value" binding:"required"`
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱+密码登录，需要图形验证码，成功返回JWT
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/user/login [post]
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	// 验证图形验证码
	if !uc.captcha.VerifyCaptcha(req.CaptchaID, req.CaptchaValue) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "图形验证码错误或已过期",
		})
		return
	}

	// 根据邮箱获取用户
	user, err := uc.db.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "邮箱或密码错误",
		})
		return
	}

	// 纯OAuth账号没有本地密码
	if user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "该账号仅支持第三方登录",
		})
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "邮箱或密码错误",
		})
		return
	}

	// 生成JWT token
	token, err := uc.jwt.GenerateToken(user.ID, req.Email, user.Nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "生成token失败",
		})
		return
	}

	// 返回用户信息和token
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "登录成功",
		"data": gin.H{
			"token": token,
			"user":  user,
		},
	})
}

// ==================== 获取用户信息 ====================

// GetUserInfo 获取用户信息（需要登录）
// @Summary 获取用户信息
// @Description 获取当前登录用户的信息，需要JWT认证
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/user/info [get]
func (uc *UserController) GetUserInfo(c *gin.Context) {
	// 从JWT中获取用户ID
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	// 从数据库获取最新的用户信息
	user, err := uc.db.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "用户不存在",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取成功",
		"data":    user,
	})
}

// ==================== 修改密码 ====================

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=32"`
}

// ChangePassword 修改密码（需要登录）
// @Summary 修改密码
// @Description 修改当前登录用户的密码，需要JWT认证
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ChangePasswordRequest true "密码信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/user/password [put]
func (uc *UserController) ChangePassword(c *gin.Context) {
	// 从JWT中获取用户ID
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	// 获取用户信息
	user, err := uc.db.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "用户不存在",
		})
		return
	}

	// 纯OAuth账号不能走密码修改
	if user.PasswordHash == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "该账号仅支持第三方登录",
		})
		return
	}

	// 验证旧密码
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.OldPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "原密码错误",
		})
		return
	}

	// 检查新密码是否与旧密码相同
	if req.OldPassword == req.NewPassword {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "新密码不能与原密码相同",
		})
		return
	}

	// 加密新密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "密码加密失败",
		})
		return
	}

	// 更新密码
	hash := string(hashedPassword)
	user.PasswordHash = &hash
	user.UpdatedAt = time.Now()

	if err := uc.db.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "修改密码失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "密码修改成功，请重新登录",
	})
}

// ==================== 头像上传 ====================

// UploadAvatar 上传头像（需要登录）
// @Summary 上传头像
// @Description 上传当前登录用户的头像图片（≤2MB，png/jpg/jpeg/gif/webp）
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param avatar formData file true "头像文件"
// @Success 200 {object} map[string]interface{}
// @Router /api/user/avatar [post]
func (uc *UserController) UploadAvatar(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少avatar文件",
		})
		return
	}

	if file.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "文件不能超过2MB",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "不支持的图片格式",
		})
		return
	}

	// 随机文件名，避免路径注入和覆盖
	name, err := generateRandomCode(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "系统错误",
		})
		return
	}
	filename := name + ext

	if err := c.SaveUploadedFile(file, filepath.Join(uc.uploadDir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "保存文件失败",
		})
		return
	}

	imagePath := "/uploads/" + filename
	if err := uc.db.UpdateProfileImage(userID, imagePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "更新头像失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "头像上传成功",
		"data": gin.H{
			"profile_image": imagePath,
		},
	})
}
