package pokerpg

import "math/rand/v2"

// seedSequence expands one root seed into any number of well mixed seeds (splitmix64).
type seedSequence struct {
	state uint64
}

func (s *seedSequence) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// newRand returns a new PCG generator seeded from the next two values of the sequence.
func (s *seedSequence) newRand() *rand.Rand {
	return rand.New(rand.NewPCG(s.next(), s.next()))
}
