package utils

import "strings"

func ToPointer[T any](v T) *T {
	return &v
}

// ReplacePlaceholders substitutes every {key} in template with its value.
func ReplacePlaceholders(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// WithSuffix appends the exchange suffix to ticker unless it already ends with
// it, ignoring case. An empty ticker stays empty.
func WithSuffix(ticker, suffix string) string {
	if ticker == "" || suffix == "" || strings.HasSuffix(strings.ToUpper(ticker), strings.ToUpper(suffix)) {
		return ticker
	}
	return ticker + suffix
}
