package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryWithCourse(t *testing.T, id string) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.Insert(context.Background(), TableCourses, Row{"id": id, "title": "Go"}))
	return m
}

func TestMemory_InsertAndFindOne(t *testing.T) {
	m := newMemoryWithCourse(t, "c1")
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, TableEnrollments, Row{
		"student_id": "s1",
		"course_id":  "c1",
		"progress":   0,
	}))

	row, err := m.FindOne(ctx, TableEnrollments, Predicate{"student_id": "s1", "course_id": "c1"})
	require.NoError(t, err)
	assert.NotEmpty(t, row.String("id"))
	assert.Equal(t, 0, row.Int("progress"))

	_, err = m.FindOne(ctx, TableEnrollments, Predicate{"student_id": "s1", "course_id": "c2"})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestMemory_InsertUniqueViolation(t *testing.T) {
	m := newMemoryWithCourse(t, "c1")
	ctx := context.Background()

	row := Row{"student_id": "s1", "course_id": "c1"}
	require.NoError(t, m.Insert(ctx, TableEnrollments, row))

	err := m.Insert(ctx, TableEnrollments, row)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, m.Rows(TableEnrollments), 1)
}

func TestMemory_ReturnedRowsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, TableCourses, Row{"id": "c1", "title": "Go"}))

	row, err := m.FindOne(ctx, TableCourses, Predicate{"id": "c1"})
	require.NoError(t, err)
	row["title"] = "changed"

	again, err := m.FindOne(ctx, TableCourses, Predicate{"id": "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Go", again.String("title"))
}

func TestMemory_FindAllOrderAndLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Insert(ctx, TableCourses, Row{
			"id":         id,
			"published":  id != "b",
			"created_at": base.Add(time.Duration(i) * time.Hour),
			"price":      decimal.NewFromInt(int64(i)),
		}))
	}

	rows, err := m.FindAll(ctx, TableCourses, Predicate{"published": true}, Order{Column: "created_at", Desc: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].String("id"))
	assert.Equal(t, "a", rows[1].String("id"))

	rows, err = m.FindAll(ctx, TableCourses, nil, Order{Column: "created_at", Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].String("id"))
}

func TestMemory_FailInserts(t *testing.T) {
	m := newMemoryWithCourse(t, "c1")
	ctx := context.Background()
	boom := errors.New("boom")
	payment := Row{"course_id": "c1", "transaction_id": "t1"}

	m.FailInserts(TablePaymentTransactions, boom)
	err := m.Insert(ctx, TablePaymentTransactions, payment)
	assert.ErrorIs(t, err, boom)

	m.FailInserts(TablePaymentTransactions, nil)
	assert.NoError(t, m.Insert(ctx, TablePaymentTransactions, payment))
}

func TestMemory_InsertMissingReference(t *testing.T) {
	m := newMemoryWithCourse(t, "c1")
	ctx := context.Background()

	tests := []struct {
		name  string
		table Table
		row   Row
	}{
		{name: "enrollment for unknown course", table: TableEnrollments, row: Row{"student_id": "s1", "course_id": "c9"}},
		{name: "enrollment without course", table: TableEnrollments, row: Row{"student_id": "s1"}},
		{name: "payment for unknown course", table: TablePaymentTransactions, row: Row{"user_id": "s1", "course_id": "c9", "transaction_id": "t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Insert(ctx, tt.table, tt.row)
			assert.ErrorIs(t, err, ErrMissingReference)
			assert.Empty(t, m.Rows(tt.table))
		})
	}

	assert.NoError(t, m.Insert(ctx, TableEnrollments, Row{"student_id": "s1", "course_id": "c1"}))
}

func TestMemory_UnknownTableAndProcedure(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.FindOne(ctx, Table("users"), nil)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = m.CallRemoteProcedure(ctx, "drop_everything", nil)
	assert.ErrorIs(t, err, ErrUnknownProcedure)
}

func TestMemory_ActivePaymentGateway(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rows, err := m.CallRemoteProcedure(ctx, ProcActivePaymentGateway, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, m.Insert(ctx, TablePaymentGateways, Row{
		"provider": "flutterwave", "public_key": "pk_old", "currency": "NGN", "active": false, "secret_key": "sk_old",
	}))
	require.NoError(t, m.Insert(ctx, TablePaymentGateways, Row{
		"provider": "paystack", "public_key": "pk_test", "currency": "NGN", "active": true, "secret_key": "sk_test",
	}))

	rows, err = m.CallRemoteProcedure(ctx, ProcActivePaymentGateway, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "paystack", rows[0].String("provider"))
	assert.NotContains(t, rows[0], "secret_key")
}

func TestMemory_OrphanedEnrollments(t *testing.T) {
	m := newMemoryWithCourse(t, "c1")
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.Insert(ctx, TableEnrollments, Row{
		"student_id": "s1", "course_id": "c1", "enrolled_at": now.Add(-time.Hour),
	}))
	require.NoError(t, m.Insert(ctx, TableEnrollments, Row{
		"student_id": "s2", "course_id": "c1", "enrolled_at": now.Add(-time.Hour),
	}))
	require.NoError(t, m.Insert(ctx, TableEnrollments, Row{
		"student_id": "s3", "course_id": "c1", "enrolled_at": now,
	}))
	require.NoError(t, m.Insert(ctx, TablePaymentTransactions, Row{
		"user_id": "s2", "course_id": "c1", "transaction_id": "t2",
	}))

	rows, err := m.CallRemoteProcedure(ctx, ProcOrphanedEnrollments, map[string]any{
		"older_than":  now.Add(-time.Minute),
		"batch_limit": 10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s1", rows[0].String("student_id"))

	_, err = m.CallRemoteProcedure(ctx, ProcOrphanedEnrollments, nil)
	assert.Error(t, err)
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Insert(ctx, TableCourses, Row{"id": "c1"})
	assert.ErrorIs(t, err, context.Canceled)
}
