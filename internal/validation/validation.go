// Package validation содержит функции валидации входных данных.
package validation

import (
	"unicode"

	"github.com/google/uuid"
)

const maxReferenceLen = 100

// IsValidCourseID проверяет, что идентификатор курса является UUID.
func IsValidCourseID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidTransactionReference проверяет ссылку на транзакцию платёжного шлюза:
// латиница, цифры и символы "-", "_", ".", "=" длиной не более 100 символов.
func IsValidTransactionReference(ref string) bool {
	if ref == "" || len(ref) > maxReferenceLen {
		return false
	}

	for _, ch := range ref {
		if ch > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			continue
		}
		switch ch {
		case '-', '_', '.', '=':
			continue
		}
		return false
	}

	return true
}
