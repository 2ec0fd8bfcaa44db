package geofilter

import "strings"

// QString is a string operand that remembers whether CASEI and/or ACCENTI
// wrappers were applied to it. Comparisons between two QStrings fold case
// and accents when either side asks for it.
type QString struct {
	s       string
	icase   bool
	iaccent bool
}

func PlainStr(s string) QString {
	return QString{s: s}
}

func (q QString) String() string { return q.s }

func (q QString) IgnoresCase() bool { return q.icase }

func (q QString) IgnoresAccents() bool { return q.iaccent }

// AndICase returns a copy that compares case-insensitively. Applying it
// twice is superfluous and yields the same value.
func (q QString) AndICase() QString {
	q.icase = true
	return q
}

// AndIAccent returns a copy that compares accent-insensitively.
func (q QString) AndIAccent() QString {
	q.iaccent = true
	return q
}

// folded returns the comparison form of this string under the union of its
// own folding flags and the other operand's.
func (q QString) folded(icase, iaccent bool) string {
	s := q.s
	if iaccent || q.iaccent {
		s = Unaccent(s)
	}
	if icase || q.icase {
		s = strings.ToLower(s)
	}
	return s
}

func (q QString) Equal(o QString) bool {
	return q.folded(o.icase, o.iaccent) == o.folded(q.icase, q.iaccent)
}

func (q QString) Compare(o QString) int {
	return strings.Compare(q.folded(o.icase, o.iaccent), o.folded(q.icase, q.iaccent))
}

// Like matches the input against a CQL2 pattern where '%' matches any run
// of characters, '_' matches exactly one, and '\' escapes the next
// character. Folding flags on either operand apply to both.
func (q QString) Like(pattern QString) bool {
	in := q.folded(pattern.icase, pattern.iaccent)
	pat := pattern.folded(q.icase, q.iaccent)
	return likeMatch([]rune(in), []rune(pat))
}

func likeMatch(in, pat []rune) bool {
	// Iterative matcher with single backtrack point for '%', the usual
	// glob algorithm.
	var (
		i, p       int
		starIdx    = -1
		matchSince int
	)
	for i < len(in) {
		if p < len(pat) {
			switch pat[p] {
			case '%':
				starIdx = p
				matchSince = i
				p++
				continue
			case '\\':
				if p+1 < len(pat) && in[i] == pat[p+1] {
					i++
					p += 2
					continue
				}
			case '_':
				i++
				p++
				continue
			default:
				if in[i] == pat[p] {
					i++
					p++
					continue
				}
			}
		}
		if starIdx >= 0 {
			matchSince++
			i = matchSince
			p = starIdx + 1
			continue
		}
		return false
	}
	for p < len(pat) && pat[p] == '%' {
		p++
	}
	return p == len(pat)
}

// Unaccent strips diacritics from Latin-1 and Latin Extended-A characters.
// Characters outside those ranges pass through untouched.
func Unaccent(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0xC0 || r > 0x17F {
			return r
		}
		if f, ok := accentFold[r]; ok {
			return f
		}
		return r
	}, s)
}

var accentFold = map[rune]rune{
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A', 'Å': 'A',
	'Ç': 'C', 'È': 'E', 'É': 'E', 'Ê': 'E', 'Ë': 'E',
	'Ì': 'I', 'Í': 'I', 'Î': 'I', 'Ï': 'I', 'Ñ': 'N',
	'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O', 'Ø': 'O',
	'Ù': 'U', 'Ú': 'U', 'Û': 'U', 'Ü': 'U', 'Ý': 'Y',
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'ç': 'c', 'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ñ': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ý': 'y', 'ÿ': 'y',
	'Ā': 'A', 'ā': 'a', 'Ă': 'A', 'ă': 'a', 'Ą': 'A', 'ą': 'a',
	'Ć': 'C', 'ć': 'c', 'Č': 'C', 'č': 'c', 'Ď': 'D', 'ď': 'd',
	'Ē': 'E', 'ē': 'e', 'Ė': 'E', 'ė': 'e', 'Ę': 'E', 'ę': 'e', 'Ě': 'E', 'ě': 'e',
	'Ğ': 'G', 'ğ': 'g', 'Ī': 'I', 'ī': 'i', 'İ': 'I', 'ı': 'i',
	'Ł': 'L', 'ł': 'l', 'Ń': 'N', 'ń': 'n', 'Ň': 'N', 'ň': 'n',
	'Ō': 'O', 'ō': 'o', 'Ő': 'O', 'ő': 'o', 'Œ': 'O', 'œ': 'o',
	'Ř': 'R', 'ř': 'r', 'Ś': 'S', 'ś': 's', 'Š': 'S', 'š': 's',
	'Ť': 'T', 'ť': 't', 'Ū': 'U', 'ū': 'u', 'Ů': 'U', 'ů': 'u', 'Ű': 'U', 'ű': 'u',
	'Ź': 'Z', 'ź': 'z', 'Ż': 'Z', 'ż': 'z', 'Ž': 'Z', 'ž': 'z',
}
