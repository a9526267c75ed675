package pokerpg

import (
	"github.com/gorgonia/pokerpg/game/poker"
)

// cardWidth is the width of one encoded card: a suit one-hot followed by a rank one-hot.
const cardWidth = poker.NumSuits + poker.NumRanks

// EncodedHandWidth is the width of the vectors produced by EncodeHand.
const EncodedHandWidth = poker.HandSize * cardWidth

// EncodeHand one-hot encodes each card's suit and rank. Card i occupies
// [i*17, (i+1)*17): the first 4 entries are the suit, the next 13 the rank from 2 to ace.
func EncodeHand(h poker.Hand, prealloc []float32) []float32 {
	if len(prealloc) != EncodedHandWidth {
		prealloc = make([]float32, EncodedHandWidth)
	} else {
		for i := range prealloc {
			prealloc[i] = 0
		}
	}

	for i, c := range h {
		base := i * cardWidth
		prealloc[base+int(c.Suit)] = 1
		prealloc[base+poker.NumSuits+int(c.Rank)-poker.MinRank] = 1
	}
	return prealloc
}
