package service

import (
	"github.com/mmeshcher/coursemart/internal/backend"
	"github.com/mmeshcher/coursemart/internal/currency"
	"github.com/mmeshcher/coursemart/internal/model"
)

func courseFromRow(r backend.Row) model.Course {
	return model.Course{
		ID:           r.String("id"),
		Title:        r.String("title"),
		Description:  r.String("description"),
		InstructorID: r.String("instructor_id"),
		Category:     r.String("category"),
		Price:        r.Decimal("price"),
		Published:    r.Bool("published"),
		CreatedAt:    r.Time("created_at"),
	}
}

func enrollmentFromRow(r backend.Row) model.Enrollment {
	return model.Enrollment{
		ID:               r.String("id"),
		StudentID:        r.String("student_id"),
		CourseID:         r.String("course_id"),
		EnrolledAt:       r.Time("enrolled_at"),
		Progress:         r.Int("progress"),
		Completed:        r.Bool("completed"),
		PaymentReference: r.String("payment_reference"),
	}
}

func enrollmentRow(e model.Enrollment) backend.Row {
	return backend.Row{
		"student_id":        e.StudentID,
		"course_id":         e.CourseID,
		"enrolled_at":       e.EnrolledAt,
		"progress":          e.Progress,
		"completed":         e.Completed,
		"payment_reference": e.PaymentReference,
	}
}

func paymentTransactionRow(p model.PaymentTransaction) backend.Row {
	return backend.Row{
		"user_id":        p.UserID,
		"course_id":      p.CourseID,
		"transaction_id": p.TransactionID,
		"status":         string(p.Status),
		"amount":         p.Amount,
		"currency":       string(p.Currency),
		"created_at":     p.CreatedAt,
	}
}

func gatewayFromRow(r backend.Row) (model.PaymentGateway, error) {
	code, err := currency.ParseCode(r.String("currency"))
	if err != nil {
		return model.PaymentGateway{}, err
	}
	return model.PaymentGateway{
		Provider:  r.String("provider"),
		PublicKey: r.String("public_key"),
		Currency:  code,
	}, nil
}
