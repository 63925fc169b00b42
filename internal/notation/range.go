// Package notation parses weighted Hold'em range expressions such as
// "AKs:0.5, QQ, 76o:0.25" into concrete two-card combos.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/dcfr-solver/internal/cards"
)

// Combo is one weighted two-card hand expanded from a range element.
type Combo struct {
	Hand   cards.CardSet
	Weight float32
}

const rankChars = "23456789TJQKA"

func rankValue(b byte) (int, error) {
	for i := 0; i < len(rankChars); i++ {
		if rankChars[i] == b {
			return i, nil
		}
	}
	return 0, fmt.Errorf("notation: unknown rank %q", b)
}

const (
	comboAny = iota
	comboSuited
	comboOffsuit
)

// Parse parses a comma-separated list of range elements into combos. Hands
// duplicated across elements (e.g. "AKs, AKs") are a parse error.
func Parse(s string) ([]Combo, error) {
	var combos []Combo
	seen := make(map[cards.CardSet]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		elementCombos, err := parseElement(tok)
		if err != nil {
			return nil, err
		}
		for _, c := range elementCombos {
			if seen[c.Hand] {
				return nil, fmt.Errorf("notation: hand duplicated by range element %q", tok)
			}
			seen[c.Hand] = true
			combos = append(combos, c)
		}
	}
	if len(combos) == 0 {
		return nil, fmt.Errorf("notation: empty range")
	}
	return combos, nil
}

func parseElement(tok string) ([]Combo, error) {
	if len(tok) < 2 {
		return nil, fmt.Errorf("notation: range element %q too short", tok)
	}
	v0, err := rankValue(tok[0])
	if err != nil {
		return nil, fmt.Errorf("notation: %q: %w", tok, err)
	}
	v1, err := rankValue(tok[1])
	if err != nil {
		return nil, fmt.Errorf("notation: %q: %w", tok, err)
	}
	if v0 < v1 {
		v0, v1 = v1, v0
	}
	pocketPair := v0 == v1

	rest := tok[2:]
	combo := comboAny
	weight := float32(1.0)

	if len(rest) > 0 && (rest[0] == 's' || rest[0] == 'o') {
		if pocketPair {
			return nil, fmt.Errorf("notation: pocket pair %q cannot be suited/offsuit", tok)
		}
		if rest[0] == 's' {
			combo = comboSuited
		} else {
			combo = comboOffsuit
		}
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if rest[0] != ':' {
			return nil, fmt.Errorf("notation: malformed range element %q", tok)
		}
		f, err := strconv.ParseFloat(rest[1:], 32)
		if err != nil {
			return nil, fmt.Errorf("notation: malformed frequency in %q: %w", tok, err)
		}
		if f <= 0 || f > 1 {
			return nil, fmt.Errorf("notation: frequency %v out of (0,1] in %q", f, tok)
		}
		weight = float32(f)
	}

	var out []Combo
	for s0 := cards.Clubs; s0 <= cards.Spades; s0++ {
		for s1 := cards.Clubs; s1 <= cards.Spades; s1++ {
			if pocketPair && s0 <= s1 {
				continue
			}
			if combo == comboOffsuit && s0 == s1 {
				continue
			}
			if combo == comboSuited && s0 != s1 {
				continue
			}
			hand := cards.CardToSet(cards.IDFrom(v0, s0)) | cards.CardToSet(cards.IDFrom(v1, s1))
			out = append(out, Combo{Hand: hand, Weight: weight})
		}
	}
	return out, nil
}
