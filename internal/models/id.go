package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ThesisIDPrefix  = "TR"
	DefenseIDPrefix = "DR"
)

// NewRequestID builds an id like TR_20250601_100500_1a2b3c4d. The timestamp
// keeps ids human-sortable; the random suffix removes the collision risk of
// second-granularity stamps under rapid submission.
func NewRequestID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", prefix, now.UTC().Format("20060102_150405"), suffix)
}
