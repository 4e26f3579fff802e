package helpers

import (
	"github.com/google/uuid"
)

// NewCode builds an external identifier like REQ-1a2b3c4d from a prefix.
// The short form is what citizens see on receipts and emails; uniqueness is
// still enforced by the database constraint.
func NewCode(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
