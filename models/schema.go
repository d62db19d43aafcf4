package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// migrationList is the full schema history of the store, oldest first. The
// early steps carry the legacy shapes (flat daily entries, per-booker target
// columns) so that databases created by old builds migrate forward losslessly;
// a fresh database simply replays the whole history.
//
// Derived-field propagation deliberately has no SQL triggers here: every
// rollup is recomputed by the write operations in this package, inside the
// writing transaction.
func migrationList() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create_order_bookers_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS order_bookers (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				name_urdu TEXT NOT NULL,
				phone TEXT NOT NULL,
				email TEXT,
				join_date DATE NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				monthly_target DECIMAL(20,4) NOT NULL DEFAULT 0,
				territory TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`),
		},
		{
			Version:     2,
			Description: "create_daily_entries_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS daily_entries (
				id TEXT PRIMARY KEY,
				order_booker_id TEXT NOT NULL,
				date DATE NOT NULL,
				sales DECIMAL(20,4) NOT NULL DEFAULT 0,
				returns DECIMAL(20,4) NOT NULL DEFAULT 0,
				net_sales DECIMAL(20,4) NOT NULL DEFAULT 0,
				notes TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (order_booker_id) REFERENCES order_bookers(id) ON DELETE CASCADE
			)`),
		},
		{
			Version:     3,
			Description: "create_monthly_targets_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS monthly_targets (
				id TEXT PRIMARY KEY,
				order_booker_id TEXT NOT NULL,
				year INTEGER NOT NULL,
				month INTEGER NOT NULL,
				target_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				achieved_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				remaining_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				achievement_percentage DECIMAL(20,4) NOT NULL DEFAULT 0,
				days_in_month INTEGER NOT NULL,
				working_days_in_month INTEGER NOT NULL,
				daily_target_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (order_booker_id) REFERENCES order_bookers(id) ON DELETE CASCADE,
				UNIQUE(order_booker_id, year, month)
			)`),
		},
		{
			Version:     4,
			Description: "create_indexes",
			Run: sqlStep(`CREATE INDEX IF NOT EXISTS idx_order_bookers_active ON order_bookers(is_active);
				CREATE INDEX IF NOT EXISTS idx_daily_entries_order_booker ON daily_entries(order_booker_id);
				CREATE INDEX IF NOT EXISTS idx_daily_entries_date ON daily_entries(date);
				CREATE INDEX IF NOT EXISTS idx_daily_entries_order_booker_date ON daily_entries(order_booker_id, date);
				CREATE INDEX IF NOT EXISTS idx_monthly_targets_order_booker ON monthly_targets(order_booker_id);
				CREATE INDEX IF NOT EXISTS idx_monthly_targets_year_month ON monthly_targets(year, month)`),
		},
		{
			Version:     5,
			Description: "remove_territory_and_monthly_target_columns",
			// SQLite cannot drop columns in place at this schema version, so the
			// table is rebuilt: copy into the target shape, drop, rename, re-index.
			Run: sqlStep(`CREATE TABLE order_bookers_new (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				name_urdu TEXT NOT NULL,
				phone TEXT NOT NULL,
				email TEXT,
				join_date DATE NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			INSERT INTO order_bookers_new (id, name, name_urdu, phone, email, join_date, is_active, created_at, updated_at)
				SELECT id, name, name_urdu, phone, email, join_date, is_active, created_at, updated_at FROM order_bookers;
			DROP TABLE order_bookers;
			ALTER TABLE order_bookers_new RENAME TO order_bookers;
			CREATE INDEX IF NOT EXISTS idx_order_bookers_active ON order_bookers(is_active)`),
		},
		{
			Version:     6,
			Description: "add_carton_fields_to_daily_entries",
			Run: sqlStep(`ALTER TABLE daily_entries ADD COLUMN total_carton INTEGER NOT NULL DEFAULT 0;
				ALTER TABLE daily_entries ADD COLUMN return_carton INTEGER NOT NULL DEFAULT 0`),
		},
		{
			Version:     7,
			Description: "create_companies_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS companies (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				address TEXT,
				email TEXT,
				phone TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name)`),
		},
		{
			Version:     8,
			Description: "create_products_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL,
				name TEXT NOT NULL,
				cost_price DECIMAL(20,4) NOT NULL,
				sell_price DECIMAL(20,4) NOT NULL,
				unit_per_carton INTEGER NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_products_company ON products(company_id);
			CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`),
		},
		{
			Version:     9,
			Description: "transform_daily_entries_to_line_items",
			Run:         transformDailyEntriesToLineItems,
		},
		{
			Version:     10,
			Description: "create_orders_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS orders (
				id TEXT PRIMARY KEY,
				order_booker_id TEXT NOT NULL,
				order_date DATE NOT NULL,
				supply_date DATE,
				total_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				total_cost DECIMAL(20,4) NOT NULL DEFAULT 0,
				total_profit DECIMAL(20,4) NOT NULL DEFAULT 0,
				total_cartons DECIMAL(20,4) NOT NULL DEFAULT 0,
				return_cartons DECIMAL(20,4) NOT NULL DEFAULT 0,
				return_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'pending',
				notes TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (order_booker_id) REFERENCES order_bookers(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_orders_order_booker ON orders(order_booker_id);
			CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);
			CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
			CREATE INDEX IF NOT EXISTS idx_orders_supply_date ON orders(supply_date)`),
		},
		{
			Version:     11,
			Description: "create_order_items_table",
			Run: sqlStep(`CREATE TABLE IF NOT EXISTS order_items (
				id TEXT PRIMARY KEY,
				order_id TEXT NOT NULL,
				product_id TEXT NOT NULL,
				quantity INTEGER NOT NULL,
				cost_price DECIMAL(20,4) NOT NULL,
				sell_price DECIMAL(20,4) NOT NULL,
				total_cost DECIMAL(20,4) NOT NULL,
				total_amount DECIMAL(20,4) NOT NULL,
				profit DECIMAL(20,4) NOT NULL,
				cartons DECIMAL(20,4) NOT NULL,
				return_quantity INTEGER NOT NULL DEFAULT 0,
				return_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
				return_cartons DECIMAL(20,4) NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
				FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
			CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`),
		},
		{
			Version:     12,
			Description: "alter_order_items_columns_to_nullable_with_defaults",
			// Derived columns become nullable-with-defaults so that rows can be
			// inserted before the propagation pass fills them in.
			Run: sqlStep(`CREATE TABLE order_items_temp (
				id TEXT PRIMARY KEY,
				order_id TEXT NOT NULL,
				product_id TEXT NOT NULL,
				quantity INTEGER NOT NULL,
				cost_price DECIMAL(20,4) NOT NULL,
				sell_price DECIMAL(20,4) NOT NULL,
				total_cost DECIMAL(20,4) DEFAULT 0,
				total_amount DECIMAL(20,4) DEFAULT 0,
				profit DECIMAL(20,4) DEFAULT 0,
				cartons DECIMAL(20,4) DEFAULT 0,
				return_quantity INTEGER DEFAULT 0,
				return_amount DECIMAL(20,4) DEFAULT 0,
				return_cartons DECIMAL(20,4) DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
				FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
			);
			INSERT INTO order_items_temp
				SELECT id, order_id, product_id, quantity, cost_price, sell_price,
					COALESCE(total_cost, 0), COALESCE(total_amount, 0), COALESCE(profit, 0),
					COALESCE(cartons, 0), COALESCE(return_quantity, 0), COALESCE(return_amount, 0),
					COALESCE(return_cartons, 0), created_at, updated_at
				FROM order_items;
			DROP TABLE order_items;
			ALTER TABLE order_items_temp RENAME TO order_items;
			CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
			CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`),
		},
	}
}

// legacyDailyEntry is the pre-split flat daily entry row, read back from the
// backup table during the header/line-item transformation.
type legacyDailyEntry struct {
	ID            string
	OrderBookerId string
	Date          time.Time
	Sales         decimal.Decimal
	Returns       decimal.Decimal
	NetSales      decimal.Decimal
	Notes         *string
	TotalCarton   int
	ReturnCarton  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	migrationCompanyId = "default-company"
	migrationProductId = "default-product"
)

// transformDailyEntriesToLineItems splits the flat daily_entries table into a
// header table plus daily_entry_items. Legacy rows carry no product reference,
// so a placeholder company/product pair is invented to satisfy the new foreign
// keys, and one synthetic line item is derived from each flat row's carton
// counters. Runs entirely inside the sequencer's transaction.
func transformDailyEntriesToLineItems(tx *gorm.DB) error {
	setup := sqlStep(`CREATE TABLE daily_entries_backup AS SELECT * FROM daily_entries;

		CREATE TABLE daily_entries_new (
			id TEXT PRIMARY KEY,
			order_booker_id TEXT NOT NULL,
			date DATE NOT NULL,
			notes TEXT,
			total_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			total_return_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			net_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (order_booker_id) REFERENCES order_bookers(id) ON DELETE CASCADE
		);

		CREATE TABLE daily_entry_items (
			id TEXT PRIMARY KEY,
			daily_entry_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity_sold INTEGER DEFAULT 0,
			quantity_returned INTEGER DEFAULT 0,
			net_quantity INTEGER DEFAULT 0,
			cost_price_override DECIMAL(20,4),
			sell_price_override DECIMAL(20,4),
			total_cost DECIMAL(20,4) NOT NULL DEFAULT 0,
			total_revenue DECIMAL(20,4) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (daily_entry_id) REFERENCES daily_entries(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		)`)
	if err := setup(tx); err != nil {
		return err
	}

	var legacyCount int64
	if err := tx.Table("daily_entries_backup").Count(&legacyCount).Error; err != nil {
		return err
	}
	if legacyCount > 0 {
		now := time.Now().UTC()
		if err := tx.Exec(`INSERT OR IGNORE INTO companies (id, name, created_at, updated_at) VALUES (?, 'Default Company', ?, ?)`,
			migrationCompanyId, now, now).Error; err != nil {
			return err
		}
		if err := tx.Exec(`INSERT OR IGNORE INTO products (id, company_id, name, cost_price, sell_price, unit_per_carton, created_at, updated_at)
			VALUES (?, ?, 'General Product', 100, 120, 1, ?, ?)`,
			migrationProductId, migrationCompanyId, now, now).Error; err != nil {
			return err
		}
	}

	if err := tx.Exec(`INSERT INTO daily_entries_new (id, order_booker_id, date, notes, total_amount, total_return_amount, net_amount, created_at, updated_at)
		SELECT id, order_booker_id, date, notes, sales, returns, net_sales, created_at, updated_at FROM daily_entries_backup`).Error; err != nil {
		return err
	}

	var legacyRows []legacyDailyEntry
	if err := tx.Table("daily_entries_backup").
		Select("id, order_booker_id, date, sales, returns, net_sales, notes, total_carton, return_carton, created_at, updated_at").
		Scan(&legacyRows).Error; err != nil {
		return err
	}
	for _, row := range legacyRows {
		netQty := row.TotalCarton - row.ReturnCarton
		// Legacy flat rows only tracked cartons, so unit costing falls back to
		// the placeholder product's cost price.
		totalCost := decimal.NewFromInt(int64(netQty)).Mul(decimal.NewFromInt(100))
		if err := tx.Exec(`INSERT INTO daily_entry_items
			(id, daily_entry_id, product_id, quantity_sold, quantity_returned, net_quantity, total_cost, total_revenue, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), row.ID, migrationProductId,
			row.TotalCarton, row.ReturnCarton, netQty,
			totalCost, row.Sales, row.CreatedAt, row.UpdatedAt).Error; err != nil {
			return err
		}
	}

	finish := sqlStep(`DROP TABLE daily_entries;
		ALTER TABLE daily_entries_new RENAME TO daily_entries;
		DROP TABLE daily_entries_backup;
		CREATE INDEX IF NOT EXISTS idx_daily_entries_order_booker ON daily_entries(order_booker_id);
		CREATE INDEX IF NOT EXISTS idx_daily_entries_date ON daily_entries(date);
		CREATE INDEX IF NOT EXISTS idx_daily_entry_items_entry ON daily_entry_items(daily_entry_id);
		CREATE INDEX IF NOT EXISTS idx_daily_entry_items_product ON daily_entry_items(product_id)`)
	return finish(tx)
}
