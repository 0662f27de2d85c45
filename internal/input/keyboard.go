package input

import "sort"

var keyIntents = map[string]Kind{
	"ArrowRight": KindNext,
	"ArrowDown":  KindNext,
	" ":          KindNext,
	"Spacebar":   KindNext,
	"ArrowLeft":  KindPrevious,
	"ArrowUp":    KindPrevious,
	"Home":       KindFirst,
	"End":        KindLast,
}

// KeyIntent maps a KeyboardEvent.key value to an intent. consumed is true
// for exactly the keys the deck handles; clients should only suppress the
// browser default for those.
func KeyIntent(key string) (intent Intent, consumed bool) {
	kind, ok := keyIntents[key]
	if !ok {
		return Intent{Kind: KindNone}, false
	}
	return Intent{Kind: kind}, true
}

// ConsumedKeys lists every handled key, sorted.
func ConsumedKeys() []string {
	keys := make([]string, 0, len(keyIntents))
	for k := range keyIntents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
