package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	bars INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	open INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	initial_equity REAL NOT NULL,
	final_equity REAL NOT NULL,
	total_return REAL NOT NULL,
	max_drawdown REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	position_id TEXT NOT NULL,
	side TEXT NOT NULL,
	status TEXT NOT NULL,
	entry_index INTEGER NOT NULL,
	entry_time REAL NOT NULL,
	entry_price REAL NOT NULL,
	size REAL NOT NULL,
	take_profit REAL NOT NULL,
	stop_loss REAL NOT NULL,
	expiration_time REAL NOT NULL,
	exit_index INTEGER NOT NULL,
	exit_time REAL NOT NULL,
	exit_price REAL NOT NULL,
	exit_reason TEXT NOT NULL,
	entry_fee REAL NOT NULL,
	exit_fee REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	PRIMARY KEY (run_id, position_id)
);

CREATE TABLE IF NOT EXISTS exposure (
	run_id TEXT NOT NULL,
	timestamp REAL NOT NULL,
	equity REAL NOT NULL,
	realized_pnl_cum REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	long_exposure REAL NOT NULL,
	short_exposure REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_exposure_run ON exposure(run_id, timestamp);
`
