package utils

import (
	"regexp"
	"strings"
)

const CedulaLength = 11

type MatchVerdict string

const (
	MatchExact      MatchVerdict = "exact"
	MatchFuzzy      MatchVerdict = "fuzzy"
	MatchMismatch   MatchVerdict = "mismatch"
	MatchUnreadable MatchVerdict = "unreadable"
)

type CedulaMatch struct {
	Verdict   MatchVerdict `json:"verdict"`
	Candidate string       `json:"candidate,omitempty"`
	Distance  int          `json:"distance"`
}

func (m CedulaMatch) Accepted() bool {
	return m.Verdict == MatchExact || m.Verdict == MatchFuzzy
}

var (
	nonDigit = regexp.MustCompile(`\D`)
	// 001-1391820-5, 001 1391820 5, 00113918205
	cedulaPattern = regexp.MustCompile(`\d{3}[\s\-.]?\d{7}[\s\-.]?\d`)
	digitRun      = regexp.MustCompile(`\d{11,}`)
	ocrDigitFixes = strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1", "|", "1", "S", "5", "B", "8")
)

func NormalizeCedula(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// ValidateCedula checks the length and the Luhn check digit of a Dominican cédula.
func ValidateCedula(s string) bool {
	d := NormalizeCedula(s)
	if len(d) != CedulaLength {
		return false
	}
	return cedulaCheckDigit(d[:10]) == int(d[10]-'0')
}

func cedulaCheckDigit(first10 string) int {
	sum := 0
	for i, r := range first10 {
		n := int(r - '0')
		if i%2 == 1 {
			n *= 2
		}
		sum += n/10 + n%10
	}
	return (10 - sum%10) % 10
}

func FormatCedula(s string) string {
	d := NormalizeCedula(s)
	if len(d) != CedulaLength {
		return d
	}
	return d[:3] + "-" + d[3:10] + "-" + d[10:]
}

// MaskCedula keeps the province prefix and the last two digits visible.
func MaskCedula(s string) string {
	d := NormalizeCedula(s)
	if len(d) != CedulaLength {
		return strings.Repeat("*", len(d))
	}
	return d[:3] + "-*****" + d[8:10] + "-" + d[10:]
}

// ExtractCedulaCandidates returns every distinct 11-digit sequence found in OCR text.
func ExtractCedulaCandidates(text string) []string {
	cleaned := fixOCRDigits(text)

	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, m := range cedulaPattern.FindAllString(cleaned, -1) {
		add(NormalizeCedula(m))
	}
	// Long digit runs come from OCR swallowing the separators; slide an 11-wide window over them.
	for _, run := range digitRun.FindAllString(cleaned, -1) {
		for i := 0; i+CedulaLength <= len(run); i++ {
			add(run[i : i+CedulaLength])
		}
	}
	return out
}

// fixOCRDigits folds look-alike letters into digits, but only inside tokens that are
// already mostly digits so words on the card are left alone.
func fixOCRDigits(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		digits := 0
		for _, r := range f {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits*2 >= len(f) {
			fields[i] = ocrDigitFixes.Replace(f)
		}
	}
	return strings.Join(fields, " ")
}

// DigitDistance counts positional differences between two equal-length digit strings.
// Strings of different length are never close, so the longer length is returned.
func DigitDistance(a, b string) int {
	if len(a) != len(b) {
		if len(a) > len(b) {
			return len(a)
		}
		return len(b)
	}
	diff := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff
}

func MatchCedula(declared, ocrText string, maxDistance int) CedulaMatch {
	want := NormalizeCedula(declared)
	candidates := ExtractCedulaCandidates(ocrText)
	if len(candidates) == 0 {
		return CedulaMatch{Verdict: MatchUnreadable, Distance: CedulaLength}
	}

	best := CedulaMatch{Distance: CedulaLength + 1}
	for _, c := range candidates {
		if d := DigitDistance(want, c); d < best.Distance {
			best.Distance = d
			best.Candidate = c
		}
	}

	switch {
	case best.Distance == 0:
		best.Verdict = MatchExact
	case best.Distance <= maxDistance:
		best.Verdict = MatchFuzzy
	default:
		best.Verdict = MatchMismatch
	}
	return best
}
