package gen

import (
	"strings"
	"unicode"
)

// StubName returns the stub type name for a contract set.
// e.g., ["Greeter"] → "greeterProxy", ["Greeter", "Closer"] → "greeterCloserProxy",
// ["URLFetcher"] → "urlFetcherProxy"
func StubName(contracts ...string) string {
	if len(contracts) == 0 {
		return "proxy"
	}
	var b strings.Builder
	b.WriteString(unexport(contracts[0]))
	for _, c := range contracts[1:] {
		b.WriteString(c)
	}
	b.WriteString("Proxy")
	return b.String()
}

// unexport lowercases the leading run of upper-case letters, keeping the
// last one upper-case when it starts the next word.
func unexport(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
