package poker

import "fmt"

// Rank is the category of a five card hand, weakest first.
type Rank int

const (
	HighCard Rank = iota
	Pair
	HighPair // a pair of jacks or better
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
	NumHandRanks
)

var rankNames = [NumHandRanks]string{
	"High Card", "Pair", "Jacks or Better", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush",
}

func (r Rank) String() string {
	if r < 0 || r >= NumHandRanks {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// payouts is the 9/6 Jacks or Better table, per unit bet.
var payouts = [NumHandRanks]int{
	HighCard:      0,
	Pair:          0,
	HighPair:      1,
	TwoPair:       2,
	ThreeOfAKind:  3,
	Straight:      5,
	Flush:         6,
	FullHouse:     9,
	FourOfAKind:   20,
	StraightFlush: 40,
	RoyalFlush:    800,
}

// Payout returns the payout of a hand of rank r. It panics on an invalid rank.
func Payout(r Rank) int {
	if r < 0 || r >= NumHandRanks {
		panic(fmt.Sprintf("invalid hand rank %d", int(r)))
	}
	return payouts[r]
}

const jack = 11

// Classify ranks a hand.
func Classify(h Hand) Rank {
	var counts [NumRanks]int
	flush := true
	for _, c := range h {
		if c.Suit != h[0].Suit {
			flush = false
		}
		counts[c.Rank-MinRank]++
	}

	var pairs, trips, quads int
	var highPair bool
	run, straight := 0, false
	for i, n := range counts {
		if n == 1 {
			run++
		} else {
			run = 0
		}
		if run == HandSize {
			straight = true
		}
		switch n {
		case 2:
			pairs++
			if i+MinRank >= jack {
				highPair = true
			}
		case 3:
			trips++
		case 4:
			quads++
		}
	}
	// A 2 3 4 5
	if counts[MaxRank-MinRank] == 1 && counts[0] == 1 && counts[1] == 1 && counts[2] == 1 && counts[3] == 1 {
		straight = true
	}

	switch {
	case flush && straight:
		if counts[10-MinRank] == 1 && counts[MaxRank-MinRank] == 1 {
			return RoyalFlush
		}
		return StraightFlush
	case flush:
		return Flush
	case straight:
		return Straight
	case quads > 0:
		return FourOfAKind
	case trips > 0 && pairs > 0:
		return FullHouse
	case trips > 0:
		return ThreeOfAKind
	case pairs > 1:
		return TwoPair
	case highPair:
		return HighPair
	case pairs > 0:
		return Pair
	}
	return HighCard
}
