package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference returns a human-readable reference like TX-20260101-1A2B3C4D.
func NewReference(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return prefix + "-" + time.Now().UTC().Format("20060102") + "-" + id
}
