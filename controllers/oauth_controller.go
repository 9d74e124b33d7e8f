package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"tradecal/config"
	"tradecal/middleware"
	"tradecal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthUserDB OAuth用户解析接口
type OAuthUserDB interface {
	// OAuth登录后按provider标识查找、按邮箱合并或新建用户
	FindOrCreateOAuthUser(provider, providerID, email string) (*models.User, error)
}

// OAuthController Google OAuth控制器
type OAuthController struct {
	db          OAuthUserDB
	jwt         *middleware.JWTMiddleware
	oauth       *oauth2.Config
	frontendURL string
}

// googleUserInfo Google userinfo接口响应
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewOAuthController 创建OAuth控制器
// 未配置client id/secret时oauth为nil，相关路由返回503
func NewOAuthController(db OAuthUserDB, jwtMiddleware *middleware.JWTMiddleware, cfg *config.Config) *OAuthController {
	var oc *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oc = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthCallbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
		log.Println("Google OAuth configured")
	}

	return &OAuthController{
		db:          db,
		jwt:         jwtMiddleware,
		oauth:       oc,
		frontendURL: cfg.FrontendURL,
	}
}

// RegisterRoutes 注册路由
func (oc *OAuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth/google")
	{
		auth.GET("", oc.GoogleLogin)
		auth.GET("/callback", oc.GoogleCallback)
	}
}

// GoogleLogin 跳转Google授权页
// @Summary Google登录跳转
// @Description 生成state并重定向到Google授权页
// @Tags OAuth
// @Success 307
// @Router /auth/google [get]
func (oc *OAuthController) GoogleLogin(c *gin.Context) {
	if oc.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": "Google OAuth未配置",
		})
		return
	}

	// 随机state写入cookie，回调时校验防CSRF
	state, err := generateRandomCode(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "系统错误",
		})
		return
	}

	c.SetCookie("oauth_state", state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, oc.oauth.AuthCodeURL(state))
}

// GoogleCallback Google授权回调
// @Summary Google登录回调
// @Description 校验state，换取token，解析用户并按邮箱合并账号，签发JWT后跳回前端
// @Tags OAuth
// @Success 307
// @Router /auth/google/callback [get]
func (oc *OAuthController) GoogleCallback(c *gin.Context) {
	if oc.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": "Google OAuth未配置",
		})
		return
	}

	// 校验state
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "state校验失败",
		})
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少授权码",
		})
		return
	}

	// 换取access token
	token, err := oc.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("ERROR: OAuth code exchange failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "授权失败",
		})
		return
	}

	// 获取Google用户信息
	client := oc.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		log.Printf("ERROR: Failed to fetch Google userinfo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": "获取用户信息失败",
		})
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		log.Printf("ERROR: Failed to decode Google userinfo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": "解析用户信息失败",
		})
		return
	}

	if info.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Google账号未提供邮箱",
		})
		return
	}

	// 查找或创建用户（按邮箱合并已有账号）
	user, err := oc.db.FindOrCreateOAuthUser("google", info.ID, info.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "登录失败",
		})
		return
	}

	nickname := user.Nickname
	if nickname == "" {
		nickname = info.Name
	}

	// 签发JWT
	jwtToken, err := oc.jwt.GenerateToken(user.ID, info.Email, nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "生成token失败",
		})
		return
	}

	// 带token跳回前端
	c.Redirect(http.StatusTemporaryRedirect, oc.frontendURL+"?token="+url.QueryEscape(jwtToken))
}
