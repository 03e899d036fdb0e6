package repository

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/coursemart/internal/backend"
)

// ErrUnknownColumn возвращается при обращении к колонке, которой нет в схеме таблицы.
var ErrUnknownColumn = errors.New("unknown column")

// columns перечисляет колонки, доступные через хранилище. secret_key шлюза сюда не входит.
var columns = map[backend.Table][]string{
	backend.TableCourses: {
		"id", "title", "description", "instructor_id", "category", "price", "published", "created_at",
	},
	backend.TableEnrollments: {
		"id", "student_id", "course_id", "enrolled_at", "progress", "completed", "payment_reference",
	},
	backend.TablePaymentTransactions: {
		"id", "user_id", "course_id", "transaction_id", "status", "amount", "currency", "created_at",
	},
	backend.TablePaymentGateways: {
		"id", "provider", "public_key", "currency", "active", "created_at",
	},
}

var procedures = map[string]bool{
	backend.ProcActivePaymentGateway: true,
	backend.ProcOrphanedEnrollments:  true,
}

func tableColumns(table backend.Table) ([]string, error) {
	cols, ok := columns[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrUnknownTable, table)
	}
	return cols, nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func buildSelect(table backend.Table, where backend.Predicate, order backend.Order) (string, []any, error) {
	cols, err := tableColumns(table)
	if err != nil {
		return "", nil, err
	}

	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		quoted = append(quoted, quote(c))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoted, ", "), quote(string(table)))

	args := make([]any, 0, len(where))
	if len(where) > 0 {
		conds := make([]string, 0, len(where))
		for _, k := range sortedKeys(where) {
			if !slices.Contains(cols, k) {
				return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, k)
			}
			args = append(args, where[k])
			conds = append(conds, fmt.Sprintf("%s = $%d", quote(k), len(args)))
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	if order.Column != "" {
		if !slices.Contains(cols, order.Column) {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, order.Column)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", quote(order.Column), dir)
	}

	if order.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", order.Limit)
	}

	return b.String(), args, nil
}

func buildInsert(table backend.Table, row backend.Row) (string, []any, error) {
	cols, err := tableColumns(table)
	if err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return "", nil, fmt.Errorf("insert into %s: empty row", table)
	}

	names := make([]string, 0, len(row))
	placeholders := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	for _, k := range sortedKeys(row) {
		if !slices.Contains(cols, k) {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, k)
		}
		args = append(args, row[k])
		names = append(names, quote(k))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(string(table)), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

func buildCall(name string, params map[string]any) (string, []any, error) {
	if !procedures[name] {
		return "", nil, fmt.Errorf("%w: %s", backend.ErrUnknownProcedure, name)
	}

	named := make([]string, 0, len(params))
	args := make([]any, 0, len(params))
	for _, k := range sortedKeys(params) {
		args = append(args, params[k])
		named = append(named, fmt.Sprintf("%s => $%d", quote(k), len(args)))
	}

	return fmt.Sprintf("SELECT * FROM %s(%s)", quote(name), strings.Join(named, ", ")), args, nil
}
