// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides Repository[T], a generic table accessor
// parameterized by column/value maps.
//
// Column names are checked against the model's parsed GORM schema before any
// SQL is built, and every value is bound as a parameter through clause.Eq, so
// caller-supplied data never becomes part of the statement text.
//
// Error semantics:
//   - Multi-row queries and deletes with empty criteria return ErrEmptyCriteria.
//   - A key that is not a column of T returns an error wrapping ErrUnknownField.
//   - Insert returns *UniqueViolationError when a uniqueness rule is breached.
//   - Everything else (connectivity, missing tables) is the raw gorm error.
//
// Usage:
//
//	communities, _ := repo.NewRepository[domain.Community](db)
//	row, err := communities.FindByID(ctx, int64(-100123))
//	if c, ok := row.Get(); ok {
//	    // use c
//	}
package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Criteria maps column names to the values they must equal. A nil value
// matches SQL NULL.
type Criteria map[string]any

// Values maps column names to the values to write.
type Values map[string]any

// Repository gives row-level access to the table backing T.
type Repository[T any] struct {
	db      *gorm.DB
	table   string
	pk      string
	columns map[string]struct{}
	stamps  []string // auto-managed created_at/updated_at columns
}

// NewRepository parses T's GORM schema and returns a repository for its table.
func NewRepository[T any](db *gorm.DB) (*Repository[T], error) {
	s, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema %T: %w", *new(T), err)
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s: model has no primary key", s.Table)
	}
	r := &Repository[T]{
		db:      db,
		table:   s.Table,
		pk:      s.PrioritizedPrimaryField.DBName,
		columns: make(map[string]struct{}, len(s.DBNames)),
	}
	for _, name := range s.DBNames {
		r.columns[name] = struct{}{}
	}
	for _, f := range s.Fields {
		if f.DBName != "" && (f.AutoCreateTime > 0 || f.AutoUpdateTime > 0) {
			r.stamps = append(r.stamps, f.DBName)
		}
	}
	return r, nil
}

// Table returns the table name.
func (r *Repository[T]) Table() string { return r.table }

// DB returns the handle for table-specific queries in concrete repositories.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

// FindByID returns the row whose primary key equals id.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (Option[T], error) {
	return r.FindOneBy(ctx, Criteria{r.pk: id})
}

// FindBy returns every row matching all criteria.
func (r *Repository[T]) FindBy(ctx context.Context, c Criteria) ([]T, error) {
	where, err := r.where(c)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := r.DB(ctx).Clauses(where).Order(clause.OrderByColumn{Column: clause.Column{Name: r.pk}}).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOneBy returns the first row matching all criteria, or None.
func (r *Repository[T]) FindOneBy(ctx context.Context, c Criteria) (Option[T], error) {
	where, err := r.where(c)
	if err != nil {
		return None[T](), err
	}
	// Limit+Find instead of First: absence is not an error here.
	var rows []T
	if err := r.DB(ctx).Clauses(where).Limit(1).Find(&rows).Error; err != nil {
		return None[T](), err
	}
	if len(rows) == 0 {
		return None[T](), nil
	}
	return Some(rows[0]), nil
}

// DestroyByID deletes the row with primary key id and reports whether
// exactly one row was removed.
func (r *Repository[T]) DestroyByID(ctx context.Context, id any) (bool, error) {
	n, err := r.DestroyBy(ctx, Criteria{r.pk: id})
	return n == 1, err
}

// DestroyBy deletes every row matching all criteria and returns the count.
func (r *Repository[T]) DestroyBy(ctx context.Context, c Criteria) (int64, error) {
	where, err := r.where(c)
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Clauses(where).Delete(new(T))
	return res.RowsAffected, res.Error
}

// Insert writes one row built from v. Columns absent from v take their
// store defaults; timestamp columns are filled when omitted.
func (r *Repository[T]) Insert(ctx context.Context, v Values) error {
	row, err := r.values(v)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, col := range r.stamps {
		if _, ok := row[col]; !ok {
			row[col] = now
		}
	}
	if err := r.DB(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return &UniqueViolationError{Table: r.table, Err: err}
		}
		return err
	}
	return nil
}

// UpdateBy writes v to every row matching all criteria in one statement and
// returns the number of rows changed.
func (r *Repository[T]) UpdateBy(ctx context.Context, c Criteria, v Values) (int64, error) {
	where, err := r.where(c)
	if err != nil {
		return 0, err
	}
	row, err := r.values(v)
	if err != nil {
		return 0, err
	}
	res := r.DB(ctx).Clauses(where).Updates(row)
	if res.Error != nil && isUniqueViolation(res.Error) {
		return 0, &UniqueViolationError{Table: r.table, Err: res.Error}
	}
	return res.RowsAffected, res.Error
}

// Count returns the number of rows matching all criteria; empty criteria
// counts the whole table.
func (r *Repository[T]) Count(ctx context.Context, c Criteria) (int64, error) {
	q := r.DB(ctx)
	if len(c) > 0 {
		where, err := r.where(c)
		if err != nil {
			return 0, err
		}
		q = q.Clauses(where)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// HasColumn reports whether name is a column of T's table.
func (r *Repository[T]) HasColumn(name string) bool {
	_, ok := r.columns[name]
	return ok
}

func (r *Repository[T]) where(c Criteria) (clause.Where, error) {
	if len(c) == 0 {
		return clause.Where{}, ErrEmptyCriteria
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		if !r.HasColumn(k) {
			return clause.Where{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.table, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	exprs := make([]clause.Expression, 0, len(keys))
	for _, k := range keys {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: k}, Value: c[k]})
	}
	return clause.Where{Exprs: exprs}, nil
}

// values copies v after validating its keys; GORM may annotate the map it
// is given, and the caller's map must stay untouched.
func (r *Repository[T]) values(v Values) (map[string]any, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%s: no values", r.table)
	}
	out := make(map[string]any, len(v)+len(r.stamps))
	for k, val := range v {
		if !r.HasColumn(k) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.table, k)
		}
		out[k] = val
	}
	return out, nil
}
