package pokerpg

import (
	"math/rand/v2"
	"time"

	"github.com/gorgonia/pokerpg/decision"
	"github.com/gorgonia/pokerpg/game/poker"
)

// Game is the rules engine a worker plays against. Implementations are used by a single
// goroutine and must fail Deal while a hand is in progress and Exchange while none is.
type Game interface {
	Deal() (poker.Hand, error)
	Exchange(poker.Discard) (poker.Hand, error)
	HandType(poker.Hand) poker.Rank
	Score(poker.Rank) int
}

// GameFactory creates a Game that draws its randomness from r. It is called once per worker.
type GameFactory func(r *rand.Rand) Game

// HandEncoder translates a hand into the input vector of the policy network. prealloc may be
// reused if it has the right width.
type HandEncoder func(h poker.Hand, prealloc []float32) []float32

// ProgressEncoder receives the training progress every LogStep rounds.
//
// An example ProgressEncoder is the CSV writer in encoding/csvlog.
type ProgressEncoder interface {
	Header(info RunInfo) error
	Encode(p Progress) error
	Flush() error
}

// RunInfo describes a training run. It is written once, before the first progress row.
type RunInfo struct {
	ID      string
	Name    string
	Started time.Time
	Seed    uint64

	Actor              string
	ActorLayers        int
	ActorLearningRate  float32
	ActorOptimizer     string
	Momentum           float32
	EntropyCoefficient float32
	NumWorkers         int
	NumInBatch         int

	Baseline           string
	Critic             string
	CriticLearningRate float32
	CriticOptimizer    string
}

// Progress is a snapshot of the training state, taken in the commit step.
type Progress struct {
	Round int64
	Hands int64

	RunningAverage float64 // mean score over every hand played
	RecentAverage  float64 // mean score since the previous snapshot
	RecentEntropy  float64 // mean policy entropy since the previous snapshot

	WeightNorm         float64
	LayerWeightNorms   []float64
	GradientNorm       float64
	LayerGradientNorms []float64

	Elapsed time.Duration
}

// Sample is a single hand played greedily with the current weights.
type Sample struct {
	Dealt    poker.Hand
	Outputs  []float32
	Action   decision.Action
	Final    poker.Hand
	Rank     poker.Rank
	Score    int
	Baseline float32
}
