package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

const (
	kindOneOff     = "oneoff"
	kindTemplate   = "template"
	kindOccurrence = "occurrence"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context) (core.EntrySet, error) {
	var set core.EntrySet

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, description, amount_cents, category, direction,
		       entry_date, frequency, start_date, end_date, template_id,
		       created_at, updated_at
		FROM entries
		ORDER BY entry_date, id`)
	if err != nil {
		return set, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			base                               core.EntryBase
			kind, direction                    string
			entryDate, freq, startDate, endDate sql.NullString
			templateID                         sql.NullString
			createdAt, updatedAt               string
		)
		if err := rows.Scan(&base.ID, &kind, &base.Description, &base.Amount.Cents,
			&base.Category, &direction, &entryDate, &freq, &startDate, &endDate,
			&templateID, &createdAt, &updatedAt); err != nil {
			return set, fmt.Errorf("scan entry: %w", err)
		}
		base.Direction = core.Direction(direction)
		if base.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return set, fmt.Errorf("parse created_at for %s: %w", base.ID, err)
		}
		if base.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return set, fmt.Errorf("parse updated_at for %s: %w", base.ID, err)
		}

		switch kind {
		case kindOneOff:
			d, err := core.ParseDate(entryDate.String)
			if err != nil {
				return set, fmt.Errorf("parse date for one-off %s: %w", base.ID, err)
			}
			set.OneOffs = append(set.OneOffs, core.OneOff{EntryBase: base, Date: d})
		case kindTemplate:
			start, err := core.ParseDate(startDate.String)
			if err != nil {
				return set, fmt.Errorf("parse start date for template %s: %w", base.ID, err)
			}
			t := core.Template{
				EntryBase: base,
				Frequency: core.Frequency(freq.String),
				StartDate: start,
			}
			if endDate.Valid && endDate.String != "" {
				if t.EndDate, err = core.ParseDate(endDate.String); err != nil {
					return set, fmt.Errorf("parse end date for template %s: %w", base.ID, err)
				}
			}
			set.Templates = append(set.Templates, t)
		case kindOccurrence:
			d, err := core.ParseDate(entryDate.String)
			if err != nil {
				return set, fmt.Errorf("parse date for occurrence %s: %w", base.ID, err)
			}
			set.Occurrences = append(set.Occurrences, core.Occurrence{
				EntryBase:  base,
				TemplateID: templateID.String,
				Date:       d,
			})
		default:
			return set, fmt.Errorf("unknown entry kind %q for %s", kind, base.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return set, fmt.Errorf("list entries: %w", err)
	}
	return set, nil
}

func (r *SQLiteRepository) AddOneOff(ctx context.Context, e core.OneOff) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, kind, description, amount_cents, category,
		                     direction, entry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, kindOneOff, e.Description, e.Amount.Cents, e.Category,
		string(e.Direction), e.Date.ISO(),
		e.CreatedAt.Format(time.RFC3339), e.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert one-off: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateOneOff(ctx context.Context, e core.OneOff) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET description = ?, amount_cents = ?, category = ?, direction = ?,
		    entry_date = ?, updated_at = ?
		WHERE id = ? AND kind = ?`,
		e.Description, e.Amount.Cents, e.Category, string(e.Direction),
		e.Date.ISO(), e.UpdatedAt.Format(time.RFC3339), e.ID, kindOneOff)
	if err != nil {
		return fmt.Errorf("update one-off: %w", err)
	}
	return requireRow(res, e.ID)
}

func (r *SQLiteRepository) AddTemplate(ctx context.Context, t core.Template) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, kind, description, amount_cents, category,
		                     direction, frequency, start_date, end_date,
		                     created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, kindTemplate, t.Description, t.Amount.Cents, t.Category,
		string(t.Direction), string(t.Frequency), t.StartDate.ISO(), endDateArg(t),
		t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTemplate(ctx context.Context, t core.Template) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET description = ?, amount_cents = ?, category = ?, direction = ?,
		    frequency = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND kind = ?`,
		t.Description, t.Amount.Cents, t.Category, string(t.Direction),
		string(t.Frequency), t.StartDate.ISO(), endDateArg(t),
		t.UpdatedAt.Format(time.RFC3339), t.ID, kindTemplate)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireRow(res, t.ID)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	// Deleting a template cascades to its materialized occurrences.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE template_id = ? AND kind = ?`, id, kindOccurrence); err != nil {
		return fmt.Errorf("delete occurrences of %s: %w", id, err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) AppendOccurrences(ctx context.Context, occs []core.Occurrence) (int, error) {
	if len(occs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR IGNORE rides the partial unique index on
	// (template_id, entry_date), so replays and racing writers skip
	// rows instead of failing.
	inserted := 0
	for _, o := range occs {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO entries (id, kind, description, amount_cents,
			                               category, direction, entry_date,
			                               template_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, kindOccurrence, o.Description, o.Amount.Cents, o.Category,
			string(o.Direction), o.Date.ISO(), o.TemplateID,
			o.CreatedAt.Format(time.RFC3339), o.UpdatedAt.Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("insert occurrence %s/%s: %w", o.TemplateID, o.Date.ISO(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}

	if inserted > 0 {
		slog.InfoContext(ctx, "Occurrences appended",
			"requested", len(occs),
			"inserted", inserted)
	}
	return inserted, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, limit_cents, created_at, updated_at
		FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			b                    core.Budget
			createdAt, updatedAt string
		)
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit.Cents, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for budget %s: %w", b.ID, err)
		}
		if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at for budget %s: %w", b.ID, err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (r *SQLiteRepository) AddBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, category, limit_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Category, b.Limit.Cents,
		b.CreatedAt.Format(time.RFC3339), b.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET category = ?, limit_cents = ?, updated_at = ? WHERE id = ?`,
		b.Category, b.Limit.Cents, b.UpdatedAt.Format(time.RFC3339), b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res, b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) Settings(ctx context.Context) (core.Settings, error) {
	var auto int
	err := r.db.QueryRowContext(ctx,
		`SELECT auto_generate_recurring FROM settings WHERE id = 1`).Scan(&auto)
	if err != nil {
		return core.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return core.Settings{AutoGenerateRecurring: auto != 0}, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	auto := 0
	if s.AutoGenerateRecurring {
		auto = 1
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE settings SET auto_generate_recurring = ? WHERE id = 1`, auto); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func endDateArg(t core.Template) any {
	if t.EndDate.IsEmpty() {
		return nil
	}
	return t.EndDate.ISO()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
