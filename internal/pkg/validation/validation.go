package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// ParseWineID parses a non-negative wine index as sent in JSON bodies or query strings.
func ParseWineID(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 64)
	return id, err == nil
}

// IsImageContentType accepts the image types browsers send for wine labels.
func IsImageContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	switch ct {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml":
		return true
	}
	return false
}
