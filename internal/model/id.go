package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns "<prefix>-<unix millis>-<suffix>". The suffix is taken from
// a random UUID, so uniqueness is best effort and not checked against
// existing records.
func NewID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
