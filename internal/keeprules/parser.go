package keeprules

import (
	"bufio"
	"fmt"
	"strings"
)

// Parse reads keep-rule statements, one per line:
//
//	keep <pattern>
//	keepclassmembers <pattern>
//	dontwarn <pattern>
//
// Blank lines and lines starting with '#' are ignored. An optional
// "class " token before the pattern is accepted and discarded to
// match the external rule language's "keep class com.example.Foo"
// phrasing.
func Parse(text string) ([]Rule, error) {
	var rules []Rule
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("keeprules: line %d: expected a directive and a pattern, got %q", lineNo, line)
		}
		directive := fields[0]
		rest := fields[1:]
		if rest[0] == "class" {
			rest = rest[1:]
		}
		if len(rest) != 1 {
			return nil, fmt.Errorf("keeprules: line %d: expected exactly one class pattern, got %q", lineNo, line)
		}
		pattern := rest[0]

		var kind Kind
		switch directive {
		case "keep":
			kind = KeepClass
		case "keepclassmembers":
			kind = KeepClassMembers
		case "dontwarn":
			kind = DontWarn
		default:
			return nil, fmt.Errorf("keeprules: line %d: unknown directive %q", lineNo, directive)
		}
		rules = append(rules, Rule{Kind: kind, Pattern: pattern})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}
