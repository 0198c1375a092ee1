package member

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidCode indicates a member code that is not "G" followed by digits
var ErrInvalidCode = errors.New("invalid member code")

// Code is a member code in the form "G" plus a positive number,
// formatted with four-digit zero padding (G0001, G0042, G12345)
type Code string

// ParseCode normalizes raw input into a Code: surrounding whitespace is
// trimmed, lowercase letters are uppercased, and a missing "G" prefix is
// prepended so customers can type either "G0007" or "0007"
func ParseCode(raw string) (Code, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidCode
	}
	if !strings.HasPrefix(s, "G") {
		s = "G" + s
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n <= 0 {
		return "", ErrInvalidCode
	}
	return Code(s), nil
}

// FormatCode renders a code number in canonical G%04d form
func FormatCode(n int) Code {
	return Code(fmt.Sprintf("G%04d", n))
}

// Number returns the numeric part of the code, 0 if malformed
func (c Code) Number() int {
	s := string(c)
	if !strings.HasPrefix(s, "G") {
		return 0
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0
	}
	return n
}

func (c Code) String() string {
	return string(c)
}

// NextCode returns the smallest positive code number not present in
// existing, formatted canonically. Gaps left by removed members are
// reused before the sequence is extended past the current maximum.
func NextCode(existing []Code) Code {
	nums := make([]int, 0, len(existing))
	for _, c := range existing {
		if n := c.Number(); n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)

	next := 1
	for _, n := range nums {
		if n < next {
			continue
		}
		if n == next {
			next++
			continue
		}
		break
	}
	return FormatCode(next)
}
