package member

import "strings"

// DefaultPhonePrefixes are the international dialing prefixes rewritten to
// the domestic "0" form: Japan (origin) and Taiwan (destination line)
var DefaultPhonePrefixes = []string{"+81", "+886"}

// NormalizePhone canonicalizes a phone number for comparison: spaces and
// hyphens are removed and a leading international prefix from prefixes is
// rewritten to "0", so "+886 912-345-678" and "0912345678" compare equal.
// A nil prefixes slice falls back to DefaultPhonePrefixes.
func NormalizePhone(raw string, prefixes []string) string {
	s := strings.ReplaceAll(raw, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	if prefixes == nil {
		prefixes = DefaultPhonePrefixes
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return "0" + s[len(p):]
		}
	}
	return s
}

// VerifyPhone reports whether the password a customer typed matches the
// phone number on file. Both sides are normalized first. An empty stored
// phone never matches.
func VerifyPhone(stored, input string, prefixes []string) bool {
	storedClean := NormalizePhone(stored, prefixes)
	if storedClean == "" {
		return false
	}
	return storedClean == NormalizePhone(input, prefixes)
}
