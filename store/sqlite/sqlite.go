/*
Package sqlite provides a SQLite-backed implementation of ledger.TxStore.

PURPOSE:
  Persists inventory items and sale transactions in a single embedded
  database file. The Store is the one owned handle to that file: it is
  opened at startup, closed at shutdown, and closed again before a restore
  overwrites the file. A restore that fails reopens the untouched file.

KEY TABLES:
  inventory:  stocked batches (id autoincrement, nullable text/real columns)
  sales:      sale transactions with stored total_amount and profit

  Column types follow the desktop schema so existing database files restore
  cleanly: money is REAL, dates are TEXT.

INDEXES:
  - idx_inventory_created_at: newest-first listing
  - idx_inventory_expiry:     expiry window counts
  - idx_sales_sale_date:      daily/monthly/yearly sums

CONCURRENCY:
  One database connection (SetMaxOpenConns(1)) guarded by sync.RWMutex.
  Writers and WithTx take the write lock; Backup takes it too, so no write
  can interleave with the file copy.

WAL MODE:
  Opened with WAL journaling. Backup checkpoints the WAL into the main file
  before copying.

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  l := ledger.New(store)
  if err := l.Initialize(ctx); err != nil { ... }

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
  - backup.go: Backup and restore of the raw file
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/medstock/inventory-engine/ledger"
	"github.com/shopspring/decimal"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// sumScale bounds the digits kept from REAL sums.
const sumScale = 4

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db     *sqlx.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// New opens (or creates) the database at dbPath. The schema is created by
// Initialize, not here. Use MemoryPath for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: dbPath}, nil
}

func open(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection. Later calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Store) closeLocked() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// reopenLocked opens a fresh handle on the same file after closeLocked.
func (s *Store) reopenLocked() error {
	db, err := open(s.path)
	if err != nil {
		return err
	}
	s.db = db
	s.closed = false
	return nil
}

// DB exposes the underlying handle for tests and maintenance.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

const schema = `
	CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_name TEXT NOT NULL,
		batch_no TEXT,
		expiry_date TEXT,
		mrp REAL,
		purchase_price REAL,
		net_price REAL,
		stock_quantity INTEGER DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_created_at
		ON inventory(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_inventory_expiry
		ON inventory(expiry_date);

	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		sale_price REAL NOT NULL,
		total_amount REAL NOT NULL,
		profit REAL NOT NULL,
		sale_date TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sales_sale_date
		ON sales(sale_date);
`

// Initialize creates the schema. Safe to call repeatedly.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

// itemRow is the scan target for inventory. Nullable columns are coalesced
// in SQL so the struct holds plain values.
type itemRow struct {
	ID            int64           `db:"id"`
	ItemName      string          `db:"item_name"`
	BatchNo       string          `db:"batch_no"`
	ExpiryDate    string          `db:"expiry_date"`
	MRP           decimal.Decimal `db:"mrp"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	NetPrice      decimal.Decimal `db:"net_price"`
	StockQuantity int64           `db:"stock_quantity"`
	CreatedAt     string          `db:"created_at"`
}

// moneyColumn reads a REAL column that older files may hold as '' or
// numeric text. Anything that is not a number reads as 0.
func moneyColumn(name string) string {
	return fmt.Sprintf(`
	COALESCE(CASE typeof(%[1]s)
		WHEN 'integer' THEN %[1]s
		WHEN 'real' THEN %[1]s
		WHEN 'text' THEN CAST(NULLIF(TRIM(%[1]s), '') AS REAL)
	END, 0) AS %[1]s`, name)
}

var itemColumns = `
	id,
	COALESCE(item_name, '') AS item_name,
	COALESCE(batch_no, '') AS batch_no,
	COALESCE(expiry_date, '') AS expiry_date,` +
	moneyColumn("mrp") + `,` +
	moneyColumn("purchase_price") + `,` +
	moneyColumn("net_price") + `,
	CAST(COALESCE(stock_quantity, 0) AS INTEGER) AS stock_quantity,
	COALESCE(created_at, '') AS created_at`

func (r itemRow) toItem() ledger.InventoryItem {
	created, _ := ledger.ParseTimestamp(r.CreatedAt)
	return ledger.InventoryItem{
		ID:            ledger.ItemID(r.ID),
		ItemName:      r.ItemName,
		BatchNo:       r.BatchNo,
		ExpiryDate:    r.ExpiryDate,
		MRP:           r.MRP,
		PurchasePrice: r.PurchasePrice,
		NetPrice:      r.NetPrice,
		StockQuantity: r.StockQuantity,
		CreatedAt:     created,
	}
}

// itemParams is the named-parameter source for inserts and updates.
type itemParams struct {
	ID            int64           `db:"id"`
	ItemName      sql.NullString  `db:"item_name"`
	BatchNo       sql.NullString  `db:"batch_no"`
	ExpiryDate    sql.NullString  `db:"expiry_date"`
	MRP           decimal.Decimal `db:"mrp"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	NetPrice      decimal.Decimal `db:"net_price"`
	StockQuantity int64           `db:"stock_quantity"`
	CreatedAt     string          `db:"created_at"`
}

func newItemParams(f ledger.ItemFields) itemParams {
	return itemParams{
		ItemName:      nullString(f.ItemName),
		BatchNo:       nullString(f.BatchNo),
		ExpiryDate:    nullString(f.ExpiryDate),
		MRP:           f.MRP,
		PurchasePrice: f.PurchasePrice,
		NetPrice:      f.NetPrice,
		StockQuantity: f.StockQuantity,
	}
}

type saleRow struct {
	ID          int64           `db:"id"`
	ItemID      int64           `db:"item_id"`
	ItemName    string          `db:"item_name"`
	Quantity    int64           `db:"quantity"`
	SalePrice   decimal.Decimal `db:"sale_price"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Profit      decimal.Decimal `db:"profit"`
	SaleDate    string          `db:"sale_date"`
}

var saleColumns = `
	id,
	COALESCE(item_id, 0) AS item_id,
	item_name,
	quantity,` +
	moneyColumn("sale_price") + `,` +
	moneyColumn("total_amount") + `,` +
	moneyColumn("profit") + `,
	COALESCE(sale_date, '') AS sale_date`

func (r saleRow) toSale() ledger.SaleTransaction {
	saleDate, _ := ledger.ParseTimestamp(r.SaleDate)
	return ledger.SaleTransaction{
		ID:          ledger.SaleID(r.ID),
		ItemID:      ledger.ItemID(r.ItemID),
		ItemName:    r.ItemName,
		Quantity:    r.Quantity,
		SalePrice:   r.SalePrice,
		TotalAmount: r.TotalAmount,
		Profit:      r.Profit,
		SaleDate:    saleDate,
	}
}

// =============================================================================
// QUERIES (shared by Store and txStore)
// =============================================================================

// whereFilter translates an ItemFilter into a WHERE clause. It mirrors
// ItemFilter.Matches.
func whereFilter(f ledger.ItemFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Search != "" {
		like := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		conds = append(conds, `(LOWER(COALESCE(item_name, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(batch_no, '')) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}

	switch f.Status {
	case ledger.StatusExpired:
		conds = append(conds, `expiry_date IS NOT NULL AND expiry_date != '' AND expiry_date < ?`)
		args = append(args, f.Today)
	case ledger.StatusExpiringSoon:
		conds = append(conds, `expiry_date >= ? AND expiry_date <= ?`)
		args = append(args, f.Today, f.Horizon)
	case ledger.StatusOutOfStock:
		conds = append(conds, `CAST(COALESCE(stock_quantity, 0) AS INTEGER) = 0`)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func listItems(ctx context.Context, q sqlx.QueryerContext, f ledger.ItemFilter) ([]ledger.InventoryItem, error) {
	where, args := whereFilter(f)
	query := `SELECT` + itemColumns + ` FROM inventory` + where + ` ORDER BY julianday(created_at) DESC, id DESC`

	var rows []itemRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	items := make([]ledger.InventoryItem, len(rows))
	for i, r := range rows {
		items[i] = r.toItem()
	}
	return items, nil
}

func countItems(ctx context.Context, q sqlx.QueryerContext, f ledger.ItemFilter) (int, error) {
	where, args := whereFilter(f)

	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM inventory`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return n, nil
}

func getItem(ctx context.Context, q sqlx.QueryerContext, id ledger.ItemID) (*ledger.InventoryItem, error) {
	var row itemRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT`+itemColumns+` FROM inventory WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	item := row.toItem()
	return &item, nil
}

const insertItemQuery = `
	INSERT INTO inventory
	(item_name, batch_no, expiry_date, mrp, purchase_price, net_price, stock_quantity, created_at)
	VALUES (:item_name, :batch_no, :expiry_date, :mrp, :purchase_price, :net_price, :stock_quantity, :created_at)
`

func insertItem(ctx context.Context, e sqlx.ExtContext, f ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	params := newItemParams(f)
	params.CreatedAt = ledger.FormatTimestamp(createdAt)

	res, err := sqlx.NamedExecContext(ctx, e, insertItemQuery, params)
	if err != nil {
		return ledger.MutationResult{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return mutationResult(res)
}

func insertItems(ctx context.Context, e sqlx.ExtContext, rows []ledger.ItemFields, createdAt time.Time) (int64, error) {
	for i, f := range rows {
		if _, err := insertItem(ctx, e, f, createdAt); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return int64(len(rows)), nil
}

const updateItemQuery = `
	UPDATE inventory SET
		item_name = :item_name,
		batch_no = :batch_no,
		expiry_date = :expiry_date,
		mrp = :mrp,
		purchase_price = :purchase_price,
		net_price = :net_price,
		stock_quantity = :stock_quantity
	WHERE id = :id
`

func updateItem(ctx context.Context, e sqlx.ExtContext, id ledger.ItemID, f ledger.ItemFields) (ledger.MutationResult, error) {
	params := newItemParams(f)
	params.ID = int64(id)

	res, err := sqlx.NamedExecContext(ctx, e, updateItemQuery, params)
	if err != nil {
		return ledger.MutationResult{}, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	return mutationResult(res)
}

func deleteItem(ctx context.Context, e sqlx.ExecerContext, id ledger.ItemID) (ledger.MutationResult, error) {
	res, err := e.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, int64(id))
	if err != nil {
		return ledger.MutationResult{}, fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return mutationResult(res)
}

func adjustStock(ctx context.Context, e sqlx.ExecerContext, id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	res, err := e.ExecContext(ctx,
		`UPDATE inventory SET stock_quantity = COALESCE(stock_quantity, 0) + ? WHERE id = ?`,
		delta, int64(id),
	)
	if err != nil {
		return ledger.MutationResult{}, fmt.Errorf("failed to adjust stock of item %d: %w", id, err)
	}
	return mutationResult(res)
}

const insertSaleQuery = `
	INSERT INTO sales
	(item_id, item_name, quantity, sale_price, total_amount, profit, sale_date)
	VALUES (:item_id, :item_name, :quantity, :sale_price, :total_amount, :profit, :sale_date)
`

func insertSale(ctx context.Context, e sqlx.ExtContext, sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	row := saleRow{
		ItemID:      int64(sale.ItemID),
		ItemName:    sale.ItemName,
		Quantity:    sale.Quantity,
		SalePrice:   sale.SalePrice,
		TotalAmount: sale.TotalAmount,
		Profit:      sale.Profit,
		SaleDate:    ledger.FormatTimestamp(sale.SaleDate),
	}

	res, err := sqlx.NamedExecContext(ctx, e, insertSaleQuery, row)
	if err != nil {
		return ledger.MutationResult{}, fmt.Errorf("failed to insert sale: %w", err)
	}
	return mutationResult(res)
}

func listSales(ctx context.Context, q sqlx.QueryerContext) ([]ledger.SaleTransaction, error) {
	var rows []saleRow
	query := `SELECT` + saleColumns + ` FROM sales ORDER BY julianday(sale_date) DESC, id DESC`
	if err := sqlx.SelectContext(ctx, q, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]ledger.SaleTransaction, len(rows))
	for i, r := range rows {
		sales[i] = r.toSale()
	}
	return sales, nil
}

func sumSales(ctx context.Context, q sqlx.QueryerContext, from, to time.Time) (ledger.SalesTotals, error) {
	var sums struct {
		Profit  float64 `db:"profit"`
		Revenue float64 `db:"revenue"`
	}

	query := `
		SELECT
			COALESCE(SUM(profit), 0) AS profit,
			COALESCE(SUM(total_amount), 0) AS revenue
		FROM sales
		WHERE julianday(sale_date) >= julianday(?) AND julianday(sale_date) < julianday(?)
	`
	err := sqlx.GetContext(ctx, q, &sums, query,
		ledger.FormatTimestamp(from), ledger.FormatTimestamp(to))
	if err != nil {
		return ledger.SalesTotals{}, fmt.Errorf("failed to sum sales: %w", err)
	}

	return ledger.SalesTotals{
		Profit:  decimal.NewFromFloat(sums.Profit).Round(sumScale),
		Revenue: decimal.NewFromFloat(sums.Revenue).Round(sumScale),
	}, nil
}

func clearAll(ctx context.Context, e sqlx.ExecerContext) error {
	statements := []string{
		`DELETE FROM sales`,
		`DELETE FROM inventory`,
		`DELETE FROM sqlite_sequence WHERE name IN ('inventory', 'sales')`,
	}
	for _, stmt := range statements {
		if _, err := e.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}
	return nil
}

// =============================================================================
// STORE (ledger.Store interface)
// =============================================================================

func (s *Store) ListItems(ctx context.Context, filter ledger.ItemFilter) ([]ledger.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	return listItems(ctx, s.db, filter)
}

func (s *Store) CountItems(ctx context.Context, filter ledger.ItemFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ledger.ErrStoreClosed
	}
	return countItems(ctx, s.db, filter)
}

func (s *Store) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	return getItem(ctx, s.db, id)
}

func (s *Store) InsertItem(ctx context.Context, fields ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.MutationResult{}, ledger.ErrStoreClosed
	}
	return insertItem(ctx, s.db, fields, createdAt)
}

// InsertItems adds multiple items atomically.
func (s *Store) InsertItems(ctx context.Context, rows []ledger.ItemFields, createdAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ledger.ErrStoreClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := insertItems(ctx, tx, rows, createdAt)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateItem(ctx context.Context, id ledger.ItemID, fields ledger.ItemFields) (ledger.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.MutationResult{}, ledger.ErrStoreClosed
	}
	return updateItem(ctx, s.db, id, fields)
}

func (s *Store) DeleteItem(ctx context.Context, id ledger.ItemID) (ledger.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.MutationResult{}, ledger.ErrStoreClosed
	}
	return deleteItem(ctx, s.db, id)
}

func (s *Store) AdjustStock(ctx context.Context, id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.MutationResult{}, ledger.ErrStoreClosed
	}
	return adjustStock(ctx, s.db, id, delta)
}

func (s *Store) InsertSale(ctx context.Context, sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.MutationResult{}, ledger.ErrStoreClosed
	}
	return insertSale(ctx, s.db, sale)
}

func (s *Store) ListSales(ctx context.Context) ([]ledger.SaleTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	return listSales(ctx, s.db)
}

func (s *Store) SumSales(ctx context.Context, from, to time.Time) (ledger.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ledger.SalesTotals{}, ledger.ErrStoreClosed
	}
	return sumSales(ctx, s.db, from, to)
}

// ClearAll deletes every row of both tables and resets their id sequences
// in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.WithTx(ctx, func(tx ledger.Store) error {
		return tx.ClearAll(ctx)
	})
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore runs every call on the open transaction. The parent lock is held
// for its whole lifetime, so it never touches the parent Store.
type txStore struct {
	tx *sqlx.Tx
}

func (ts *txStore) Initialize(ctx context.Context) error {
	_, err := ts.tx.ExecContext(ctx, schema)
	return err
}

func (ts *txStore) ListItems(ctx context.Context, filter ledger.ItemFilter) ([]ledger.InventoryItem, error) {
	return listItems(ctx, ts.tx, filter)
}

func (ts *txStore) CountItems(ctx context.Context, filter ledger.ItemFilter) (int, error) {
	return countItems(ctx, ts.tx, filter)
}

func (ts *txStore) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.InventoryItem, error) {
	return getItem(ctx, ts.tx, id)
}

func (ts *txStore) InsertItem(ctx context.Context, fields ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	return insertItem(ctx, ts.tx, fields, createdAt)
}

func (ts *txStore) InsertItems(ctx context.Context, rows []ledger.ItemFields, createdAt time.Time) (int64, error) {
	return insertItems(ctx, ts.tx, rows, createdAt)
}

func (ts *txStore) UpdateItem(ctx context.Context, id ledger.ItemID, fields ledger.ItemFields) (ledger.MutationResult, error) {
	return updateItem(ctx, ts.tx, id, fields)
}

func (ts *txStore) DeleteItem(ctx context.Context, id ledger.ItemID) (ledger.MutationResult, error) {
	return deleteItem(ctx, ts.tx, id)
}

func (ts *txStore) AdjustStock(ctx context.Context, id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	return adjustStock(ctx, ts.tx, id, delta)
}

func (ts *txStore) InsertSale(ctx context.Context, sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	return insertSale(ctx, ts.tx, sale)
}

func (ts *txStore) ListSales(ctx context.Context) ([]ledger.SaleTransaction, error) {
	return listSales(ctx, ts.tx)
}

func (ts *txStore) SumSales(ctx context.Context, from, to time.Time) (ledger.SalesTotals, error) {
	return sumSales(ctx, ts.tx, from, to)
}

func (ts *txStore) ClearAll(ctx context.Context) error {
	return clearAll(ctx, ts.tx)
}

var (
	_ ledger.TxStore = (*Store)(nil)
	_ ledger.Store   = (*txStore)(nil)
)

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mutationResult(res sql.Result) (ledger.MutationResult, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return ledger.MutationResult{}, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return ledger.MutationResult{}, err
	}
	return ledger.MutationResult{RowsAffected: affected, LastInsertID: lastID}, nil
}
