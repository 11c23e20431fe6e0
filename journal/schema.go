package journal

// Decimal columns are stored as TEXT so values round-trip exactly. epoch
// duplicates time as REAL for ordering and range scans.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	pair TEXT NOT NULL,
	side TEXT NOT NULL,
	volume TEXT NOT NULL,
	price TEXT NOT NULL,
	cost TEXT NOT NULL,
	time TEXT NOT NULL,
	epoch REAL NOT NULL,
	saved_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_epoch ON trades(epoch);
CREATE INDEX IF NOT EXISTS idx_trades_pair ON trades(pair);
`
