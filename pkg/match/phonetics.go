package match

import "strings"

// soundexCode computes the four-character American Soundex code of s.
// Non-letter runes are ignored; an input without letters yields "".
func soundexCode(s string) string {
	var letters []rune
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	code := []byte{byte(letters[0])}
	prev := soundexDigit(letters[0])

	for _, r := range letters[1:] {
		d := soundexDigit(r)
		if d == 0 {
			// H and W are transparent: they do not break a run of the
			// same digit. Vowels and Y do.
			if r != 'H' && r != 'W' {
				prev = 0
			}
			continue
		}
		if d != prev {
			code = append(code, '0'+d)
		}
		prev = d
		if len(code) == 4 {
			break
		}
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

func soundexDigit(r rune) byte {
	switch r {
	case 'B', 'F', 'P', 'V':
		return 1
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return 2
	case 'D', 'T':
		return 3
	case 'L':
		return 4
	case 'M', 'N':
		return 5
	case 'R':
		return 6
	}
	return 0
}

// phoneticMatch reports whether two normalized names sound alike. Names
// with equal word counts match when every sorted word pair shares a
// Soundex code; otherwise the codes of the full strings are compared.
func phoneticMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) != len(wordsB) {
		return soundexCode(a) == soundexCode(b)
	}

	codesA := sortedCodes(wordsA)
	codesB := sortedCodes(wordsB)
	for i := range codesA {
		if codesA[i] != codesB[i] {
			return false
		}
	}
	return true
}

func sortedCodes(words []string) []string {
	codes := make([]string, len(words))
	for i, w := range words {
		codes[i] = soundexCode(w)
	}
	// insertion sort, word counts are tiny
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j] < codes[j-1]; j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
	return codes
}
