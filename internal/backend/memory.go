package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reference описывает внешний ключ: значение column должно совпадать с id записи таблицы target.
type reference struct {
	column string
	target Table
}

// Memory хранит таблицы в памяти процесса. Ограничения уникальности
// и внешние ключи совпадают с ограничениями схемы PostgreSQL.
type Memory struct {
	mu       sync.Mutex
	tables   map[Table][]Row
	unique   map[Table][][]string
	refs     map[Table][]reference
	failures map[Table]error
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{
		tables: map[Table][]Row{
			TableCourses:             nil,
			TableEnrollments:         nil,
			TablePaymentTransactions: nil,
			TablePaymentGateways:     nil,
		},
		unique: map[Table][][]string{
			TableCourses:             {{"id"}},
			TableEnrollments:         {{"id"}, {"student_id", "course_id"}},
			TablePaymentTransactions: {{"id"}},
			TablePaymentGateways:     {{"id"}, {"provider"}},
		},
		refs: map[Table][]reference{
			TableEnrollments:         {{column: "course_id", target: TableCourses}},
			TablePaymentTransactions: {{column: "course_id", target: TableCourses}},
		},
		failures: make(map[Table]error),
	}
}

// FailInserts заставляет все последующие вставки в таблицу завершаться ошибкой err.
// nil снимает сбой.
func (m *Memory) FailInserts(table Table, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, table)
		return
	}
	m.failures[table] = err
}

// Rows возвращает копию всех записей таблицы.
func (m *Memory) Rows(table Table) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, r.clone())
	}
	return out
}

// FindOne возвращает первую запись, удовлетворяющую условию.
func (m *Memory) FindOne(ctx context.Context, table Table, where Predicate) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	for _, r := range rows {
		if matches(r, where) {
			return r.clone(), nil
		}
	}
	return nil, ErrNoRecord
}

// FindAll возвращает все записи, удовлетворяющие условию, в заданном порядке.
func (m *Memory) FindAll(ctx context.Context, table Table, where Predicate, order Order) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	var res []Row
	for _, r := range rows {
		if matches(r, where) {
			res = append(res, r.clone())
		}
	}

	sortRows(res, order)
	if order.Limit > 0 && len(res) > order.Limit {
		res = res[:order.Limit]
	}
	return res, nil
}

// Insert добавляет запись, проверяя ограничения уникальности. Пустой id заполняется UUID.
func (m *Memory) Insert(ctx context.Context, table Table, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err := m.failures[table]; err != nil {
		return err
	}

	r := row.clone()
	if r.String("id") == "" {
		r["id"] = uuid.NewString()
	}

	for _, ref := range m.refs[table] {
		if !m.exists(ref.target, r[ref.column]) {
			return fmt.Errorf("%w: %s.%s", ErrMissingReference, table, ref.column)
		}
	}

	for _, cols := range m.unique[table] {
		key := make(Predicate, len(cols))
		for _, c := range cols {
			key[c] = r[c]
		}
		for _, existing := range rows {
			if matches(existing, key) {
				return fmt.Errorf("%w: %s (%s)", ErrDuplicate, table, strings.Join(cols, ", "))
			}
		}
	}

	m.tables[table] = append(rows, r)
	return nil
}

// CallRemoteProcedure выполняет одну из процедур хранилища.
func (m *Memory) CallRemoteProcedure(ctx context.Context, name string, params map[string]any) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case ProcActivePaymentGateway:
		return m.activePaymentGateway(), nil
	case ProcOrphanedEnrollments:
		return m.orphanedEnrollments(params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}
}

func (m *Memory) activePaymentGateway() []Row {
	for _, g := range m.tables[TablePaymentGateways] {
		if g.Bool("active") {
			return []Row{{
				"provider":   g["provider"],
				"public_key": g["public_key"],
				"currency":   g["currency"],
			}}
		}
	}
	return nil
}

func (m *Memory) orphanedEnrollments(params map[string]any) ([]Row, error) {
	olderThan, ok := params["older_than"].(time.Time)
	if !ok {
		return nil, fmt.Errorf("%s: older_than must be a time", ProcOrphanedEnrollments)
	}
	limit, _ := params["batch_limit"].(int)

	var res []Row
	for _, e := range m.tables[TableEnrollments] {
		if e.Time("enrolled_at").After(olderThan) {
			continue
		}
		paid := false
		for _, p := range m.tables[TablePaymentTransactions] {
			if p.String("user_id") == e.String("student_id") && p.String("course_id") == e.String("course_id") {
				paid = true
				break
			}
		}
		if !paid {
			res = append(res, e.clone())
		}
	}

	sortRows(res, Order{Column: "enrolled_at"})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *Memory) exists(table Table, id any) bool {
	if id == nil {
		return false
	}
	for _, r := range m.tables[table] {
		if compareValues(r["id"], id) == 0 {
			return true
		}
	}
	return false
}

func matches(r Row, where Predicate) bool {
	for col, want := range where {
		if compareValues(r[col], want) != 0 {
			return false
		}
	}
	return true
}

func sortRows(rows []Row, order Order) {
	if order.Column == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(rows[i][order.Column], rows[j][order.Column])
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return -1
		}
		return av.Compare(bv)
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		if !ok {
			return -1
		}
		return av.Cmp(bv)
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return -1
		}
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case int:
		bv, ok := b.(int)
		if !ok {
			return -1
		}
		return av - bv
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
