// Package backend описывает контракт доступа к внешнему хранилищу данных,
// через который сервисы читают и записывают записи.
package backend

import (
	"context"
	"errors"
)

// Table задаёт имя таблицы хранилища.
type Table string

const (
	TableCourses             Table = "courses"
	TableEnrollments         Table = "enrollments"
	TablePaymentTransactions Table = "payment_transactions"
	TablePaymentGateways     Table = "payment_gateways"
)

// Имена удалённых процедур хранилища.
const (
	ProcActivePaymentGateway = "active_payment_gateway"
	ProcOrphanedEnrollments  = "orphaned_enrollments"
)

var (
	// ErrNoRecord возвращается FindOne, если подходящей записи нет.
	ErrNoRecord = errors.New("record not found")
	// ErrDuplicate возвращается Insert при нарушении ограничения уникальности.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference возвращается Insert, если запись ссылается на несуществующую запись другой таблицы.
	ErrMissingReference = errors.New("referenced record not found")
	// ErrUnknownTable возвращается для таблицы, о которой хранилище не знает.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownProcedure возвращается для неизвестной удалённой процедуры.
	ErrUnknownProcedure = errors.New("unknown procedure")
)

// Row хранит запись таблицы как значения по именам колонок.
type Row map[string]any

// Predicate задаёт условие поиска: равенство значений всех перечисленных колонок.
type Predicate map[string]any

// Order задаёт сортировку и ограничение выборки FindAll.
type Order struct {
	Column string
	Desc   bool
	Limit  int
}

// Client описывает возможности хранилища, которыми пользуются сервисы.
type Client interface {
	FindOne(ctx context.Context, table Table, where Predicate) (Row, error)
	FindAll(ctx context.Context, table Table, where Predicate, order Order) ([]Row, error)
	Insert(ctx context.Context, table Table, row Row) error
	CallRemoteProcedure(ctx context.Context, name string, params map[string]any) ([]Row, error)
}
