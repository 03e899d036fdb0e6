package validation

import (
	"strings"
	"testing"
)

func TestIsValidCourseID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{
			name:  "uuid",
			id:    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			valid: true,
		},
		{
			name:  "uppercase uuid",
			id:    "7C9E6679-7425-40DE-944B-E07FC1F90AE7",
			valid: true,
		},
		{
			name:  "not a uuid",
			id:    "course-1",
			valid: false,
		},
		{
			name:  "empty string",
			id:    "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidCourseID(tt.id)
			if got != tt.valid {
				t.Fatalf("IsValidCourseID(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestIsValidTransactionReference(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		valid bool
	}{
		{
			name:  "gateway reference",
			ref:   "T685312322670591",
			valid: true,
		},
		{
			name:  "with separators",
			ref:   "cm_1710000000-ab.cd=",
			valid: true,
		},
		{
			name:  "contains spaces",
			ref:   "T 123",
			valid: false,
		},
		{
			name:  "non ascii",
			ref:   "Т123",
			valid: false,
		},
		{
			name:  "too long",
			ref:   strings.Repeat("a", 101),
			valid: false,
		},
		{
			name:  "empty string",
			ref:   "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTransactionReference(tt.ref)
			if got != tt.valid {
				t.Fatalf("IsValidTransactionReference(%q) = %v, want %v", tt.ref, got, tt.valid)
			}
		})
	}
}
