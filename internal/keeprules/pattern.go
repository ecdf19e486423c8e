package keeprules

import "strings"

// MatchClassPattern reports whether a dotted-or-slashed class pattern
// (e.g. "com.example.*", "com.example.**", "com.example.Foo") matches
// a class name in the same notation. A single "*" matches any run of
// characters containing no package separator; "**" matches across
// separators, including zero of them. A name may also be a JVM class
// descriptor ("Lcom/example/Foo;"); its leading 'L' and trailing ';'
// are stripped before matching.
func MatchClassPattern(pattern, name string) bool {
	return matchSegment(normalize(pattern), normalize(name))
}

func normalize(s string) string {
	if len(s) >= 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "/", ".")
}

// matchSegment is a small glob matcher supporting '*' (no separator
// crossing) and '**' (crosses separators), implemented by recursive
// backtracking since patterns in keep rules are short.
func matchSegment(pattern, s string) bool {
	return matchFrom(pattern, s)
}

func matchFrom(p, s string) bool {
	for len(p) > 0 {
		switch {
		case p[0] == '*' && len(p) > 1 && p[1] == '*':
			rest := p[2:]
			if rest == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchFrom(rest, s[i:]) {
					return true
				}
			}
			return false
		case p[0] == '*':
			rest := p[1:]
			// '*' matches a run with no '.' in it.
			for i := 0; i <= len(s); i++ {
				if i > 0 && s[i-1] == '.' {
					break
				}
				if matchFrom(rest, s[i:]) {
					return true
				}
			}
			return false
		default:
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p = p[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
