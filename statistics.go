package pokerpg

import (
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
)

// Statistics are the monitoring counters of an agent. Workers update them concurrently and
// without further synchronization, so a reading taken mid-round may mix hands from different
// workers, but never a torn value.
type Statistics struct {
	rounds     atomic.Int64
	hands      atomic.Int64
	totalScore atomic.Int64

	recentHands   atomic.Int64
	recentTotal   atomic.Int64
	recentEntropy atomic.Uint32 // float32 bits

	trainingTime atomic.Int64 // nanoseconds
}

func (s *Statistics) record(score int, entropy float32) {
	s.hands.Add(1)
	s.totalScore.Add(int64(score))
	s.recentHands.Add(1)
	s.recentTotal.Add(int64(score))
	addFloat32(&s.recentEntropy, entropy)
}

func addFloat32(a *atomic.Uint32, v float32) {
	for {
		old := a.Load()
		upd := math32.Float32bits(math32.Float32frombits(old) + v)
		if a.CompareAndSwap(old, upd) {
			return
		}
	}
}

// Rounds is the number of committed training rounds.
func (s *Statistics) Rounds() int64 { return s.rounds.Load() }

// Hands is the number of hands played for training.
func (s *Statistics) Hands() int64 { return s.hands.Load() }

// AverageScore is the mean score over every training hand.
func (s *Statistics) AverageScore() float64 {
	n := s.hands.Load()
	if n == 0 {
		return 0
	}
	return float64(s.totalScore.Load()) / float64(n)
}

// TrainingTime is the wall time spent inside Train.
func (s *Statistics) TrainingTime() time.Duration { return time.Duration(s.trainingTime.Load()) }

// takeRecent returns the averages since the previous call and restarts the window.
func (s *Statistics) takeRecent() (avgScore, avgEntropy float64) {
	n := s.recentHands.Swap(0)
	total := s.recentTotal.Swap(0)
	entropy := math32.Float32frombits(s.recentEntropy.Swap(0))
	if n == 0 {
		return 0, 0
	}
	return float64(total) / float64(n), float64(entropy) / float64(n)
}
