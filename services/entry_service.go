package services

import (
	"log"
	"time"
	"tradecal/models"

	"github.com/jmoiron/sqlx"
)

// EntryService 交易条目服务
type EntryService struct {
	db *sqlx.DB
}

// NewEntryService 创建交易条目服务
func NewEntryService(db *sqlx.DB) *EntryService {
	return &EntryService{db: db}
}

// CreateEntry 创建交易条目
// 条目插入和父级日记录的ensure在同一个事务里完成，
// 保证条目永远不会脱离日记录存在（聚合查询只从trades行出发）
func (s *EntryService) CreateEntry(entry *models.TradeEntry) error {
	tx, err := s.db.Beginx()
	if err != nil {
		log.Printf("ERROR: Failed to begin transaction for entry create: %v", err)
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	entry.CreatedAt = now

	result, err := tx.Exec(`
		INSERT INTO trade_entries (user_id, trade_date, ticker, direction, entry_price,
		                           exit_price, size, pnl, notes, tag, confidence,
		                           setup_quality, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID,
		entry.TradeDate,
		entry.Ticker,
		entry.Direction,
		entry.EntryPrice,
		entry.ExitPrice,
		entry.Size,
		entry.Pnl,
		entry.Notes,
		entry.Tag,
		entry.Confidence,
		entry.SetupQuality,
		entry.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR: Failed to insert entry for user_id=%d date=%s: %v", entry.UserID, entry.TradeDate, err)
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id

	// 幂等地确保父级日记录存在，后续保存笔记无需单独的创建步骤
	// 冲突时只置has_trades，已有notes不受影响
	_, err = tx.Exec(`
		INSERT INTO trades (user_id, trade_date, has_trades, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, trade_date) DO UPDATE SET has_trades = 1`,
		entry.UserID, entry.TradeDate, now,
	)
	if err != nil {
		log.Printf("ERROR: Failed to ensure trade row for user_id=%d date=%s: %v", entry.UserID, entry.TradeDate, err)
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("ERROR: Failed to commit entry create: %v", err)
		return err
	}

	log.Printf("INFO: Entry created: id=%d user_id=%d date=%s ticker=%s", entry.ID, entry.UserID, entry.TradeDate, entry.Ticker)
	return nil
}

// GetEntriesByDate 获取某用户某日期的所有条目（新建的在前）
func (s *EntryService) GetEntriesByDate(userID int64, tradeDate string) ([]*models.TradeEntry, error) {
	var entries []*models.TradeEntry
	query := `
		SELECT id, user_id, trade_date, ticker, direction, entry_price, exit_price,
		       size, pnl, notes, tag, confidence, setup_quality, created_at
		FROM trade_entries
		WHERE user_id = ? AND trade_date = ?
		ORDER BY created_at DESC, id DESC
	`
	err := s.db.Select(&entries, query, userID, tradeDate)
	if err != nil {
		log.Printf("ERROR: Failed to get entries for user_id=%d date=%s: %v", userID, tradeDate, err)
	}
	return entries, err
}

// GetEntriesByMonth 批量获取整月条目并按日期分组
// 一次LIKE前缀查询代替逐日查询，月视图只打一次数据库
func (s *EntryService) GetEntriesByMonth(userID int64, year, month int) (map[string][]*models.TradeEntry, error) {
	var entries []*models.TradeEntry
	query := `
		SELECT id, user_id, trade_date, ticker, direction, entry_price, exit_price,
		       size, pnl, notes, tag, confidence, setup_quality, created_at
		FROM trade_entries
		WHERE user_id = ? AND trade_date LIKE ?
		ORDER BY trade_date, created_at DESC, id DESC
	`
	err := s.db.Select(&entries, query, userID, monthPrefix(year, month))
	if err != nil {
		log.Printf("ERROR: Failed to get monthly entries for user_id=%d %04d-%02d: %v", userID, year, month, err)
		return nil, err
	}

	grouped := make(map[string][]*models.TradeEntry)
	for _, entry := range entries {
		grouped[entry.TradeDate] = append(grouped[entry.TradeDate], entry)
	}
	return grouped, nil
}

// UpdateEntry 更新交易条目
// WHERE带user_id，防止跨用户改动；id不匹配时影响0行，静默成功
// （调用方不能从成功响应推断条目存在）
func (s *EntryService) UpdateEntry(entry *models.TradeEntry) error {
	query := `
		UPDATE trade_entries
		SET ticker = ?, direction = ?, entry_price = ?, exit_price = ?, size = ?,
		    pnl = ?, notes = ?, tag = ?, confidence = ?, setup_quality = ?
		WHERE id = ? AND user_id = ?
	`
	_, err := s.db.Exec(
		query,
		entry.Ticker,
		entry.Direction,
		entry.EntryPrice,
		entry.ExitPrice,
		entry.Size,
		entry.Pnl,
		entry.Notes,
		entry.Tag,
		entry.Confidence,
		entry.SetupQuality,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		log.Printf("ERROR: Failed to update entry id=%d user_id=%d: %v", entry.ID, entry.UserID, err)
	}
	return err
}

// DeleteEntry 删除交易条目（硬删除）
// 同样按id AND user_id限定，不匹配即0行无操作
func (s *EntryService) DeleteEntry(id, userID int64) error {
	query := `DELETE FROM trade_entries WHERE id = ? AND user_id = ?`
	_, err := s.db.Exec(query, id, userID)
	if err != nil {
		log.Printf("ERROR: Failed to delete entry id=%d user_id=%d: %v", id, userID, err)
	}
	return err
}
