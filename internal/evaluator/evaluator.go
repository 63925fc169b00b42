// Package evaluator computes Texas Hold'em five- and seven-card hand
// strength as a totally ordered integer, backed by a precomputed lookup
// table over the combinatorial index space of five-card hands.
package evaluator

import (
	"sort"
	"sync"

	"github.com/lox/dcfr-solver/internal/cards"
)

// HandType classifies a five-card hand. Ascending order is ascending strength.
type HandType int

const (
	HighCard HandType = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRank is a totally ordered strength value: higher means stronger.
// Encoding: (handType+1)<<20 | kicker0<<16 | kicker1<<12 | kicker2<<8 |
// kicker3<<4 | kicker4, kickers being value ordinals (0=Two..12=Ace) in
// descending significance order. Zero is reserved as an invalid sentinel.
type HandRank uint32

// Type extracts the hand type.
func (h HandRank) Type() HandType {
	return HandType(h>>20 - 1)
}

func (h HandRank) String() string {
	return h.Type().String()
}

const numRanks = 13
const deckSize = 52

var (
	chooseTable   [deckSize + 1][6]int
	fiveCardTable []HandRank
	tablesOnce    sync.Once
)

// buildChooseTable fills C[n][k] for 0<=n<=52, 0<=k<=5.
func buildChooseTable() {
	for n := 0; n <= deckSize; n++ {
		chooseTable[n][0] = 1
		for k := 1; k <= 5; k++ {
			if n == 0 {
				chooseTable[n][k] = 0
				continue
			}
			chooseTable[n][k] = chooseTable[n-1][k-1] + chooseTable[n-1][k]
		}
	}
}

// fiveCardIndex computes the combinatorial-number-system index of a sorted
// (ascending) 5-card hand.
func fiveCardIndex(sorted [5]cards.CardID) int {
	idx := 0
	for i, c := range sorted {
		idx += chooseTable[int(c)][i+1]
	}
	return idx
}

func ensureTables() {
	tablesOnce.Do(func() {
		buildChooseTable()
		fiveCardTable = make([]HandRank, chooseTable[deckSize][5])
		var hand [5]cards.CardID
		var build func(start int, depth int)
		build = func(start int, depth int) {
			if depth == 5 {
				fiveCardTable[fiveCardIndex(hand)] = rankFiveCards(hand)
				return
			}
			for c := start; c < deckSize; c++ {
				hand[depth] = cards.CardID(c)
				build(c+1, depth+1)
			}
		}
		build(0, 0)
	})
}

// rankFiveCards computes the HandRank of an arbitrary five-card hand by
// direct inspection; used only to populate the lookup table.
func rankFiveCards(hand [5]cards.CardID) HandRank {
	var values [5]int
	suitMask := [4]uint16{}
	valueCount := [numRanks]int{}
	for i, c := range hand {
		v := cards.ValueOf(c)
		values[i] = v
		valueCount[v]++
		suitMask[cards.SuitOf(c)] |= 1 << uint(v)
	}

	flush := false
	for _, mask := range suitMask {
		if popcount16(mask) == 5 {
			flush = true
			break
		}
	}

	sortedDesc := append([]int(nil), values[:]...)
	sort.Sort(sort.Reverse(sort.IntSlice(sortedDesc)))

	straightHigh, isStraight := straightHighCard(valueCount)

	if isStraight && flush {
		if straightHigh == 12 {
			return packRank(RoyalFlush, [5]int{12, 0, 0, 0, 0})
		}
		return packRank(StraightFlush, [5]int{straightHigh, 0, 0, 0, 0})
	}

	// Group by (count, value) descending.
	type group struct{ count, value int }
	var groups []group
	for v := numRanks - 1; v >= 0; v-- {
		if valueCount[v] > 0 {
			groups = append(groups, group{valueCount[v], v})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})

	kickers := func() [5]int {
		var k [5]int
		i := 0
		for _, g := range groups {
			for c := 0; c < g.count; c++ {
				k[i] = g.value
				i++
			}
		}
		return k
	}

	switch {
	case groups[0].count == 4:
		return packRank(FourOfAKind, kickers())
	case groups[0].count == 3 && groups[1].count == 2:
		return packRank(FullHouse, kickers())
	case flush:
		var k [5]int
		copy(k[:], sortedDesc)
		return packRank(Flush, k)
	case isStraight:
		return packRank(Straight, [5]int{straightHigh, 0, 0, 0, 0})
	case groups[0].count == 3:
		return packRank(ThreeOfAKind, kickers())
	case groups[0].count == 2 && groups[1].count == 2:
		return packRank(TwoPair, kickers())
	case groups[0].count == 2:
		return packRank(OnePair, kickers())
	default:
		var k [5]int
		copy(k[:], sortedDesc)
		return packRank(HighCard, k)
	}
}

func popcount16(x uint16) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// straightHighCard detects a 5-consecutive-value straight (including the
// wheel A-2-3-4-5, which ranks with 5 as the high card) from a value
// histogram of an exactly-5-card hand with no value appearing twice.
func straightHighCard(valueCount [numRanks]int) (int, bool) {
	for v := range valueCount {
		if valueCount[v] > 1 {
			return 0, false
		}
	}
	// Wheel: A,2,3,4,5.
	if valueCount[12] == 1 && valueCount[0] == 1 && valueCount[1] == 1 && valueCount[2] == 1 && valueCount[3] == 1 {
		return 3, true
	}
	minV, maxV := -1, -1
	count := 0
	for v := 0; v < numRanks; v++ {
		if valueCount[v] == 1 {
			if minV < 0 {
				minV = v
			}
			maxV = v
			count++
		}
	}
	if count == 5 && maxV-minV == 4 {
		return maxV, true
	}
	return 0, false
}

func packRank(t HandType, kickers [5]int) HandRank {
	r := uint32(t+1) << 20
	r |= uint32(kickers[0]) << 16
	r |= uint32(kickers[1]) << 12
	r |= uint32(kickers[2]) << 8
	r |= uint32(kickers[3]) << 4
	r |= uint32(kickers[4])
	return HandRank(r)
}

// FiveCardRank returns the strength of an arbitrary (unsorted) five-card hand.
func FiveCardRank(hand [5]cards.CardID) HandRank {
	ensureTables()
	sorted := hand
	sort.Slice(sorted[:], func(i, j int) bool { return sorted[i] < sorted[j] })
	return fiveCardTable[fiveCardIndex(sorted)]
}

// SevenCardRank returns the maximum HandRank over all 21 five-card
// sub-hands of a seven-card hand.
func SevenCardRank(hand [7]cards.CardID) HandRank {
	ensureTables()
	var best HandRank
	var five [5]cards.CardID
	for i := 0; i < 7; i++ {
		for j := i + 1; j < 7; j++ {
			k := 0
			for n := 0; n < 7; n++ {
				if n == i || n == j {
					continue
				}
				five[k] = hand[n]
				k++
			}
			r := FiveCardRank(five)
			if r > best {
				best = r
			}
		}
	}
	return best
}

// BestRank returns the maximum HandRank over all 5-card sub-hands of an
// arbitrary hand of 5 to 7 cards, for combined hole+board evaluation across
// flop/turn/river board sizes.
func BestRank(hand []cards.CardID) HandRank {
	ensureTables()
	var best HandRank
	var five [5]cards.CardID
	var combo func(start, depth int)
	combo = func(start, depth int) {
		if depth == 5 {
			r := FiveCardRank(five)
			if r > best {
				best = r
			}
			return
		}
		for i := start; i < len(hand); i++ {
			five[depth] = hand[i]
			combo(i+1, depth+1)
		}
	}
	combo(0, 0)
	return best
}

// TableSize returns the number of entries in the five-card lookup table,
// for diagnostics and tests; forces lazy construction.
func TableSize() int {
	ensureTables()
	return len(fiveCardTable)
}
