package database

// Schema 数据库表结构
// trades表每个用户每天一行（日记录），trade_entries表每笔交易一行
// 日盈亏不落库，读取时通过SUM(pnl)实时计算
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE,
	nickname TEXT DEFAULT '',
	password_hash TEXT,
	oauth_provider TEXT,
	oauth_provider_id TEXT,
	oauth_email TEXT,
	profile_image TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(oauth_provider, oauth_provider_id)
);

CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	trade_date TEXT NOT NULL,
	notes TEXT DEFAULT '',
	has_trades INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(user_id, trade_date)
);

CREATE TABLE IF NOT EXISTS trade_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	trade_date TEXT NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT CHECK(direction IN ('LONG', 'SHORT')) NOT NULL DEFAULT 'LONG',
	entry_price REAL DEFAULT 0,
	exit_price REAL DEFAULT 0,
	size REAL DEFAULT 0,
	pnl REAL NOT NULL,
	notes TEXT DEFAULT '',
	tag TEXT,
	confidence INTEGER CHECK(confidence BETWEEN 1 AND 5),
	setup_quality TEXT CHECK(setup_quality IN ('A', 'B', 'C')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, trade_date);
CREATE INDEX IF NOT EXISTS idx_entries_user_date ON trade_entries(user_id, trade_date);
CREATE INDEX IF NOT EXISTS idx_entries_ticker ON trade_entries(ticker);
`
