package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"
	"tradecal/models"

	"github.com/jmoiron/sqlx"
)

// TradeService 日记录服务（笔记、月视图聚合）
type TradeService struct {
	db *sqlx.DB
}

// NewTradeService 创建日记录服务
func NewTradeService(db *sqlx.DB) *TradeService {
	return &TradeService{db: db}
}

// monthPrefix 构造月份LIKE前缀（零填充两位月份），如 2024-03-%
func monthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d-%%", year, month)
}

// ==================== 当日笔记 ====================

// UpsertDayNotes 保存当日笔记
// 按(user_id, trade_date)唯一键upsert，冲突时只覆盖notes，
// has_trades和已有条目不受影响
func (s *TradeService) UpsertDayNotes(userID int64, tradeDate, notes string) error {
	query := `
		INSERT INTO trades (user_id, trade_date, notes, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, trade_date) DO UPDATE SET notes = excluded.notes
	`
	_, err := s.db.Exec(query, userID, tradeDate, notes, time.Now())
	if err != nil {
		log.Printf("ERROR: Failed to upsert notes for user_id=%d date=%s: %v", userID, tradeDate, err)
	}
	return err
}

// ==================== 聚合查询 ====================

// GetMonthlySummaries 获取月视图日汇总
// 每个有日记录的日期一行（哪怕没有任何条目），pl实时求和：
// pl = COALESCE(SUM(entry.pnl), 0)，不存任何冗余合计
func (s *TradeService) GetMonthlySummaries(userID int64, year, month int) ([]*models.DailySummary, error) {
	var summaries []*models.DailySummary
	query := `
		SELECT t.trade_date, COALESCE(SUM(e.pnl), 0) AS pl, t.notes
		FROM trades t
		LEFT JOIN trade_entries e
		       ON e.user_id = t.user_id AND e.trade_date = t.trade_date
		WHERE t.user_id = ? AND t.trade_date LIKE ?
		GROUP BY t.id
		ORDER BY t.trade_date
	`
	err := s.db.Select(&summaries, query, userID, monthPrefix(year, month))
	if err != nil {
		log.Printf("ERROR: Failed to get monthly summaries for user_id=%d %04d-%02d: %v", userID, year, month, err)
	}
	return summaries, err
}

// GetDaySummary 获取单日汇总
// 没有日记录时返回(nil, nil)，由调用方映射为null（不视为错误）
func (s *TradeService) GetDaySummary(userID int64, tradeDate string) (*models.DailySummary, error) {
	var summary models.DailySummary
	query := `
		SELECT t.trade_date, COALESCE(SUM(e.pnl), 0) AS pl, t.notes
		FROM trades t
		LEFT JOIN trade_entries e
		       ON e.user_id = t.user_id AND e.trade_date = t.trade_date
		WHERE t.user_id = ? AND t.trade_date = ?
		GROUP BY t.id
	`
	err := s.db.Get(&summary, query, userID, tradeDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Printf("ERROR: Failed to get day summary for user_id=%d date=%s: %v", userID, tradeDate, err)
		return nil, err
	}
	return &summary, nil
}

// GetTradeByDate 获取日记录行（内部使用，不做聚合）
func (s *TradeService) GetTradeByDate(userID int64, tradeDate string) (*models.Trade, error) {
	var trade models.Trade
	query := `
		SELECT id, user_id, trade_date, notes, has_trades, created_at
		FROM trades
		WHERE user_id = ? AND trade_date = ?
	`
	err := s.db.Get(&trade, query, userID, tradeDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}
