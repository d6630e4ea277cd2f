package ids

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a time-ordered identifier with a random suffix, optionally prefixed
// (eg. "chat_0190f5c2-...").
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return id.String()
	}
	return prefix + "_" + id.String()
}
