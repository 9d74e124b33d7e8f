package main

import (
	"log"
	"os"
	"time"

	"tradecal/config"
	"tradecal/controllers"
	"tradecal/database"
	"tradecal/middleware"
	"tradecal/services"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"

	_ "tradecal/docs" // Swagger docs
)

// @title           Trading Calendar Journal API
// @version         1.0
// @description     Personal trading journal with per-day notes, trade entries and calendar P/L aggregation

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:4000
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()
	log.Println("Configuration loaded")

	// 2. 初始化SQLite数据库（全局单例，建表幂等）
	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("FATAL: Failed to open SQLite database: %v", err)
	}
	defer database.CloseDB()

	// 3. 准备头像上传目录
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create upload dir: %v", err)
	}

	// 4. 创建JWT中间件实例（全局单例）
	jwtMiddleware := middleware.NewJWTMiddleware(cfg.JWTSecret, cfg.JWTExpireDuration)
	log.Println("JWT middleware initialized")

	// 5. 创建限流中间件（进程内滑动窗口）
	rateLimiter := middleware.NewRateLimiter()
	log.Println("Rate limiter initialized")

	// 6. 创建Gin路由
	router := gin.Default()

	// 7. 应用全局中间件
	router.Use(middleware.CORS())
	router.Use(rateLimiter.GlobalLimit()) // 全局限流

	// 8. 创建服务层
	userService := services.NewUserService(database.GetDB())
	tradeService := services.NewTradeService(database.GetDB())
	entryService := services.NewEntryService(database.GetDB())
	captchaService := services.NewCaptchaService()
	log.Println("Services initialized")

	// 9. 创建控制器
	userController := controllers.NewUserController(userService, jwtMiddleware, captchaService, cfg.UploadDir)
	oauthController := controllers.NewOAuthController(userService, jwtMiddleware, cfg)
	tradeController := controllers.NewTradeController(tradeService, jwtMiddleware)
	entryController := controllers.NewEntryController(entryService, jwtMiddleware)
	captchaController := controllers.NewCaptchaController(captchaService)
	log.Println("Controllers initialized")

	// 10. 注册路由（包含限流）
	userController.RegisterRoutesWithRateLimit(router, rateLimiter)
	oauthController.RegisterRoutes(router)
	tradeController.RegisterRoutes(router)
	entryController.RegisterRoutes(router)
	captchaController.RegisterRoutes(router)

	// 11. 头像静态文件
	router.Static("/uploads", cfg.UploadDir)

	// 12. Swagger文档（仅开发环境）
	if os.Getenv("GIN_MODE") != "release" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Println("Swagger documentation available at: http://localhost:4000/swagger/index.html")
	}

	// 13. 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 14. 启动服务器
	addr := ":" + cfg.ServerPort
	log.Printf("API Server starting on %s", addr)
	log.Printf("Calendar API: GET /api/trades?year=2024&month=3")
	log.Printf("Entries API:  GET /api/entries/month?year=2024&month=3")
	if err := router.Run(addr); err != nil {
		log.Fatalf("FATAL: Failed to start API server: %v", err)
	}
}
