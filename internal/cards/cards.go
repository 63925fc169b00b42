// Package cards implements the 52-card bitset primitives shared by the
// game-rules providers, the hand evaluator, and the tree builder.
package cards

import (
	"fmt"
	"math/bits"
)

// CardID identifies a single card, 0..51. value = id/4, suit = id%4.
type CardID int

// Suit is one of the four card suits, ordered by the class-representative
// tie-break the tree builder relies on (smallest ordinal wins).
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

const rankChars = "23456789TJQKA"

// Player is one of the two seats in the game.
type Player int

const (
	P0 Player = iota
	P1
)

// Opponent toggles the seat.
func (p Player) Opponent() Player {
	if p == P0 {
		return P1
	}
	return P0
}

func (p Player) String() string {
	if p == P0 {
		return "P0"
	}
	return "P1"
}

// CardSet is a 64-bit bitset over the 52-card deck; bit 4*value+suit is set
// iff the card is present. Only the low 52 bits are ever meaningful.
type CardSet uint64

// CardToSet returns the singleton set containing id.
func CardToSet(id CardID) CardSet {
	return CardSet(1) << uint(id)
}

// SetContains reports whether id is a member of s.
func SetContains(s CardSet, id CardID) bool {
	return s&CardToSet(id) != 0
}

// SetSize returns the popcount of s.
func SetSize(s CardSet) int {
	return bits.OnesCount64(uint64(s))
}

// LowestCard returns the lowest-numbered card present in s.
// The caller must ensure s is non-empty.
func LowestCard(s CardSet) CardID {
	return CardID(bits.TrailingZeros64(uint64(s)))
}

// PopLowest returns the lowest card in s along with s with that card cleared.
func PopLowest(s CardSet) (CardID, CardSet) {
	c := LowestCard(s)
	return c, s &^ CardToSet(c)
}

// IDFrom constructs a CardID from a value (0=Two..12=Ace) and suit.
func IDFrom(value int, suit Suit) CardID {
	return CardID(4*value + int(suit))
}

// ValueOf returns the rank ordinal of id, 0=Two..12=Ace.
func ValueOf(id CardID) int {
	return int(id) / 4
}

// SuitOf returns the suit of id.
func SuitOf(id CardID) Suit {
	return Suit(int(id) % 4)
}

// Disjoint reports whether a and b share no cards.
func Disjoint(a, b CardSet) bool {
	return a&b == 0
}

// FullDeck is the set of all 52 cards.
const FullDeck CardSet = (1 << 52) - 1

// ParseCard parses a two-character card name like "Ah" into a CardID.
func ParseCard(s string) (CardID, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("cards: invalid card %q: want 2 characters", s)
	}
	value, err := parseRank(s[0])
	if err != nil {
		return 0, fmt.Errorf("cards: invalid card %q: %w", s, err)
	}
	suit, err := parseSuit(s[1])
	if err != nil {
		return 0, fmt.Errorf("cards: invalid card %q: %w", s, err)
	}
	return IDFrom(value, suit), nil
}

func parseRank(b byte) (int, error) {
	for i := 0; i < len(rankChars); i++ {
		if rankChars[i] == b {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", b)
}

func parseSuit(b byte) (Suit, error) {
	switch b {
	case 'c':
		return Clubs, nil
	case 'd':
		return Diamonds, nil
	case 'h':
		return Hearts, nil
	case 's':
		return Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", b)
	}
}

// String renders a card as its two-character name.
func (id CardID) String() string {
	return string(rankChars[ValueOf(id)]) + SuitOf(id).String()
}

// ParseCardSet parses a comma-separated list of card names into a CardSet,
// returning an error on duplicates or malformed names.
func ParseCardSet(s string) (CardSet, error) {
	var set CardSet
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			tok := trim(s[start:i])
			if tok != "" {
				id, err := ParseCard(tok)
				if err != nil {
					return 0, err
				}
				if SetContains(set, id) {
					return 0, fmt.Errorf("cards: duplicate card %q", tok)
				}
				set |= CardToSet(id)
			}
			start = i + 1
		}
	}
	return set, nil
}

func trim(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
