package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	// 数据库配置（SQLite文件路径）
	DBPath string

	// 服务器配置
	ServerPort string

	// JWT配置
	JWTSecret         []byte
	JWTExpireDuration time.Duration

	// Google OAuth配置
	GoogleClientID     string
	GoogleClientSecret string
	OAuthCallbackURL   string
	FrontendURL        string

	// 头像上传目录
	UploadDir string
}

// LoadConfig 加载配置
func LoadConfig() *Config {
	loadEnvFile()

	// 加载JWT过期时间（默认24小时）
	expireHours := getEnvAsInt("JWT_EXPIRE_HOURS", 24)

	cfg := &Config{
		// 数据库配置
		DBPath: getEnv("DB_PATH", "trades.db"),

		// 服务器配置
		ServerPort: getEnv("SERVER_PORT", "4000"),

		// JWT配置
		JWTSecret:         []byte(getEnv("JWT_SECRET", "your-secret-key-change-in-production")),
		JWTExpireDuration: time.Duration(expireHours) * time.Hour,

		// Google OAuth配置
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthCallbackURL:   getEnv("CALLBACK_URL", "http://localhost:4000/auth/google/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:4000"),

		// 上传目录
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	// 生产环境检查
	if string(cfg.JWTSecret) == "your-secret-key-change-in-production" {
		log.Println("WARNING: Using default JWT secret. Set JWT_SECRET environment variable in production!")
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Println("WARNING: Google OAuth not configured (missing GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET)")
		log.Println("         Email/password login will still work.")
	}

	return cfg
}

// loadEnvFile 加载环境变量文件
// 非生产环境下优先加载 .env.development，否则回退到 .env
func loadEnvFile() {
	envPath := ".env"
	if _, err := os.Stat(".env.development"); err == nil && os.Getenv("GO_ENV") != "production" {
		envPath = ".env.development"
	}

	if err := godotenv.Load(envPath); err != nil {
		log.Println("WARNING: .env file not found, using environment variables or defaults")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}
}

// GetDSN 获取SQLite数据库连接字符串
func (c *Config) GetDSN() string {
	// 开启外键约束，繁忙等待5秒，避免并发写入时的SQLITE_BUSY
	return "file:" + c.DBPath + "?_foreign_keys=on&_busy_timeout=5000"
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 获取环境变量作为整数
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}
