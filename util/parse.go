package util

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kib = int64(1024)
	mib = 1024 * kib
	gib = 1024 * mib
)

// ParseSize parses a byte size such as "64MB", "512KB", "2GB" or "1024".
// Units are binary and case-insensitive; a trailing "B" alone means bytes.
func ParseSize(s string) (int64, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := int64(1)
	for _, u := range []struct {
		suffix string
		n      int64
	}{{"GB", gib}, {"MB", mib}, {"KB", kib}, {"B", 1}} {
		if strings.HasSuffix(t, u.suffix) {
			multiplier = u.n
			t = strings.TrimSpace(strings.TrimSuffix(t, u.suffix))
			break
		}
	}

	v, err := strconv.ParseInt(t, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return v * multiplier, nil
}

// FormatSize renders n with the largest unit that divides it exactly.
func FormatSize(n int64) string {
	switch {
	case n != 0 && n%gib == 0:
		return fmt.Sprintf("%dGB", n/gib)
	case n != 0 && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n != 0 && n%kib == 0:
		return fmt.Sprintf("%dKB", n/kib)
	}
	return fmt.Sprintf("%dB", n)
}

// MaskSecret keeps the first visiblePrefix characters of s. Strings no
// longer than the prefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
