package imagetypes

import "strings"

// NaturalLess reports whether a sorts before b using natural ordering:
// runs of digits compare numerically, so "img2.jpg" sorts before
// "img10.jpg". Comparison is case-insensitive.
func NaturalLess(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			aNum, aRest := splitLeadingNumber(a)
			bNum, bRest := splitLeadingNumber(b)
			if aNum != bNum {
				return numberLess(aNum, bNum)
			}
			a, b = aRest, bRest
			continue
		}

		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}

	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// splitLeadingNumber returns the leading digit run and the remainder.
func splitLeadingNumber(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// numberLess compares two digit strings numerically without overflow:
// strip leading zeros, then shorter means smaller, equal lengths compare
// lexicographically. Ties on value fall back to the raw strings so that
// "01" and "1" still order deterministically.
func numberLess(a, b string) bool {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}
