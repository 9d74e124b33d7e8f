package database

import (
	"log"
	"tradecal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB 全局数据库连接
var DB *sqlx.DB

// InitDB 初始化数据库连接并建表
func InitDB(cfg *config.Config) error {
	var err error

	// 连接SQLite数据库
	DB, err = sqlx.Connect("sqlite3", cfg.GetDSN())
	if err != nil {
		return err
	}

	// SQLite为单写者模型，限制连接池规模避免写锁竞争
	DB.SetMaxOpenConns(4)
	DB.SetMaxIdleConns(4)

	// 初始化表结构（幂等）
	if _, err := DB.Exec(Schema); err != nil {
		return err
	}

	log.Printf("Database connected successfully: %s", cfg.DBPath)
	return nil
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// GetDB 获取数据库连接
func GetDB() *sqlx.DB {
	return DB
}
