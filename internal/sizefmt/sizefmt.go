// Package sizefmt formats byte counts as human-readable strings for the
// tree-size and memory-usage reports the REPL prints.
package sizefmt

import "fmt"

const (
	kb = 1 << 10
	mb = 1 << 20
	gb = 1 << 30
)

// Bytes renders n as a fixed-point count in the largest unit (GB, MB, KB,
// or bytes) for which the count is at least 1.
func Bytes(n int64) string {
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
