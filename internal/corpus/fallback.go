package corpus

import (
	_ "embed"
	"fmt"
)

//go:embed fallback.json
var fallbackJSON []byte

// Fallback returns the built-in course content used when no snapshot or
// remote source is available.
func Fallback() *Corpus {
	s, err := DecodeSnapshot(fallbackJSON)
	if err != nil {
		panic(fmt.Sprintf("corpus: embedded fallback is invalid: %v", err))
	}
	return New(SourceFallback, s.Documents())
}
