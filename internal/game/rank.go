// internal/game/rank.go
package game

import "sort"

// Category orders hand classes from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"HighCard", "Pair", "TwoPair", "ThreeOfAKind", "Straight",
	"Flush", "FullHouse", "FourOfAKind", "StraightFlush",
}

func (c Category) String() string {
	return categoryNames[c]
}

// HandRank is a fully ordered evaluation of a 5-7 card set. Ranks holds
// the tie-break ranks for the category, strongest first, zero padded.
type HandRank struct {
	Category Category
	Ranks    [5]Rank
}

// Compare returns >0 if h beats o, <0 if o beats h and 0 on an exact
// chop. Categories order first, then the tie-break tuple left to right.
func (h HandRank) Compare(o HandRank) int {
	if h.Category != o.Category {
		return int(h.Category) - int(o.Category)
	}
	for i := 0; i < 5; i++ {
		if h.Ranks[i] != o.Ranks[i] {
			return int(h.Ranks[i]) - int(o.Ranks[i])
		}
	}
	return 0
}

// slot extraction shapes per category, in the greedy strength order.
var (
	quadShape      = []int{4, 1}
	fullHouseShape = []int{3, 2}
	tripleShape    = []int{3, 1, 1}
	twoPairShape   = []int{2, 2, 1}
	pairShape      = []int{2, 1, 1, 1}
	highCardShape  = []int{1, 1, 1, 1, 1}
)

// Evaluate ranks a 5-7 card set (2 hole + board). Ace is high only; the
// wheel (5-4-3-2-A) is deliberately not recognized as a straight.
func Evaluate(cards []Card) HandRank {
	var suits [4][]Rank // ranks held per suit
	var counts [15]int  // occurrences per rank
	var orders []Rank   // deduplicated ranks, for the straight scan

	for _, c := range cards {
		suits[c.Suit] = append(suits[c.Suit], c.Rank)
		if counts[c.Rank] == 0 {
			orders = append(orders, c.Rank)
		}
		counts[c.Rank]++
	}

	for i := range suits {
		sortRanksDesc(suits[i])
	}
	sortRanksDesc(orders)

	for _, suit := range suits {
		if run, ok := scanStraight(suit); ok {
			return HandRank{Category: StraightFlush, Ranks: run}
		}
	}
	if ranks, ok := extract(quadShape, counts); ok {
		return HandRank{Category: FourOfAKind, Ranks: ranks}
	}
	if ranks, ok := extract(fullHouseShape, counts); ok {
		return HandRank{Category: FullHouse, Ranks: ranks}
	}
	for _, suit := range suits {
		if len(suit) >= 5 {
			return HandRank{Category: Flush, Ranks: [5]Rank{suit[0], suit[1], suit[2], suit[3], suit[4]}}
		}
	}
	if run, ok := scanStraight(orders); ok {
		return HandRank{Category: Straight, Ranks: [5]Rank{run[0]}}
	}
	if ranks, ok := extract(tripleShape, counts); ok {
		return HandRank{Category: ThreeOfAKind, Ranks: ranks}
	}
	if ranks, ok := extract(twoPairShape, counts); ok {
		return HandRank{Category: TwoPair, Ranks: ranks}
	}
	if ranks, ok := extract(pairShape, counts); ok {
		return HandRank{Category: Pair, Ranks: ranks}
	}
	ranks, _ := extract(highCardShape, counts)
	return HandRank{Category: HighCard, Ranks: ranks}
}

// scanStraight slides over descending ranks looking for five in a row.
// Duplicates must already be removed from the input.
func scanStraight(ranks []Rank) ([5]Rank, bool) {
	if len(ranks) < 5 {
		return [5]Rank{}, false
	}
	prev := ranks[0]
	count := 1
	idx := 1
	for idx < len(ranks) && count < 5 {
		if prev-1 == ranks[idx] {
			count++
		} else {
			count = 1
		}
		prev = ranks[idx]
		idx++
	}
	if count < 5 {
		return [5]Rank{}, false
	}
	var run [5]Rank
	copy(run[:], ranks[idx-5:idx])
	return run, true
}

// extract greedily pulls the highest rank matching each required group
// size. Consumed ranks are zeroed in the local copy so the same rank
// never fills two tie-break slots.
func extract(shape []int, counts [15]int) ([5]Rank, bool) {
	var out [5]Rank
	for i, need := range shape {
		best := 0
		for rank := 2; rank < len(counts); rank++ {
			if counts[rank] >= need {
				best = rank
			}
		}
		if best == 0 {
			return out, false
		}
		counts[best] = 0
		out[i] = Rank(best)
	}
	return out, true
}

func sortRanksDesc(ranks []Rank) {
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })
}
