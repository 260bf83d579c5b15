package ratelimit

import (
	"fmt"
	"strings"
)

// KeyForUser builds a limiter key for one user and action.
func KeyForUser(userID uint64, action Action) string {
	name := strings.TrimSpace(string(action))
	if userID == 0 || name == "" {
		return ""
	}
	return fmt.Sprintf("u:%d:a:%s", userID, name)
}
