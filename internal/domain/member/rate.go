package member

import (
	"errors"
	"strconv"
	"strings"
)

// Shipping rate validation errors carry the user-facing message directly;
// the HTTP layer returns err.Error() to the admin UI unchanged.
var (
	ErrRateMissing    = errors.New("請輸入運費")
	ErrRateNotInteger = errors.New("運費必須為整數")
	ErrRateNegative   = errors.New("運費不能為負數")
)

// ParseRate validates a per-kg shipping rate entered by an admin.
// The rate must be a non-negative integer number of yen.
func ParseRate(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrRateMissing
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrRateNotInteger
	}
	if n < 0 {
		return 0, ErrRateNegative
	}
	return n, nil
}
