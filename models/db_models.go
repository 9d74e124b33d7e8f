package models

import (
	"time"
)

// User 用户表
// 本地账号与OAuth账号共用一张表：本地账号必有email+password_hash，
// OAuth账号必有(oauth_provider, oauth_provider_id)，两者可通过邮箱合并
type User struct {
	ID              int64     `json:"id" db:"id"`                           // 主键
	Email           *string   `json:"email" db:"email"`                     // 邮箱（纯OAuth账号可空）
	Nickname        string    `json:"nickname" db:"nickname"`               // 昵称
	PasswordHash    *string   `json:"-" db:"password_hash"`                 // 密码哈希（不返回给前端，纯OAuth账号可空）
	OAuthProvider   *string   `json:"oauth_provider" db:"oauth_provider"`   // OAuth提供商（如google，可空）
	OAuthProviderID *string   `json:"-" db:"oauth_provider_id"`             // OAuth提供商侧的用户ID（可空）
	OAuthEmail      *string   `json:"oauth_email" db:"oauth_email"`         // OAuth侧邮箱（可空）
	ProfileImage    *string   `json:"profile_image" db:"profile_image"`     // 头像路径（可空）
	CreatedAt       time.Time `json:"created_at" db:"created_at"`           // 创建时间
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`           // 更新时间
}

// Trade 日记录表（每个用户每天最多一行）
// 只存当日笔记，日盈亏永远不落库，读取时按条目实时求和
type Trade struct {
	ID        int64     `json:"id" db:"id"`                 // 主键
	UserID    int64     `json:"user_id" db:"user_id"`       // 用户ID
	TradeDate string    `json:"trade_date" db:"trade_date"` // 交易日期（YYYY-MM-DD）
	Notes     string    `json:"notes" db:"notes"`           // 当日笔记（≤4000字符）
	HasTrades int       `json:"has_trades" db:"has_trades"` // 当日是否有交易条目（0/1）
	CreatedAt time.Time `json:"created_at" db:"created_at"` // 创建时间
}

// TradeEntry 交易条目表（每笔交易一行）
type TradeEntry struct {
	ID           int64         `json:"id" db:"id"`                       // 主键
	UserID       int64         `json:"user_id" db:"user_id"`             // 用户ID
	TradeDate    string        `json:"trade_date" db:"trade_date"`       // 交易日期（YYYY-MM-DD）
	Ticker       string        `json:"ticker" db:"ticker"`               // 股票代码（必填）
	Direction    Direction     `json:"direction" db:"direction"`         // 方向（LONG/SHORT，默认LONG）
	EntryPrice   float64       `json:"entry_price" db:"entry_price"`     // 开仓价（默认0）
	ExitPrice    float64       `json:"exit_price" db:"exit_price"`       // 平仓价（默认0）
	Size         float64       `json:"size" db:"size"`                   // 仓位大小（≥0，默认0）
	Pnl          float64       `json:"pnl" db:"pnl"`                     // 盈亏（必填）
	Notes        string        `json:"notes" db:"notes"`                 // 备注
	Tag          *string       `json:"tag" db:"tag"`                     // 标签（可空）
	Confidence   *int          `json:"confidence" db:"confidence"`       // 信心指数（1-5，可空）
	SetupQuality *SetupQuality `json:"setup_quality" db:"setup_quality"` // 形态质量（A/B/C，可空）
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`       // 创建时间
}

// DailySummary 日汇总（月视图聚合查询结果）
// pl = COALESCE(SUM(entry.pnl), 0)，有日记录但无条目的日期pl为0
type DailySummary struct {
	TradeDate string  `json:"trade_date" db:"trade_date"` // 交易日期
	PL        float64 `json:"pl" db:"pl"`                 // 当日盈亏（实时聚合）
	Notes     string  `json:"notes" db:"notes"`           // 当日笔记
}
