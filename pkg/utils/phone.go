package utils

import "strings"

var dominicanAreaCodes = map[string]bool{"809": true, "829": true, "849": true}

// NormalizePhone returns a Dominican number in E.164 form (+1XXXXXXXXXX).
func NormalizePhone(s string) (string, bool) {
	d := nonDigit.ReplaceAllString(s, "")
	if len(d) == 11 && strings.HasPrefix(d, "1") {
		d = d[1:]
	}
	if len(d) != 10 || !dominicanAreaCodes[d[:3]] {
		return "", false
	}
	// NANP exchange codes never start with 0 or 1.
	if d[3] == '0' || d[3] == '1' {
		return "", false
	}
	return "+1" + d, true
}

func MaskPhone(e164 string) string {
	if len(e164) < 4 {
		return e164
	}
	return strings.Repeat("*", len(e164)-4) + e164[len(e164)-4:]
}
