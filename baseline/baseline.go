// Package baseline provides the score predictions that are subtracted from observed scores to
// turn them into advantages.
//
// A Group holds what the calculators of one training run share. Each worker gets its own
// Calculator from the group; calculators are not safe for concurrent use, and Sync must only be
// called while no worker is using any of them.
package baseline

import (
	"fmt"
	"math/rand/v2"

	"github.com/gorgonia/pokerpg/neural"
	"github.com/pkg/errors"
)

const (
	// FlatPrediction is the constant returned by the Flat baseline.
	FlatPrediction float32 = 0.1
	// RandomPlayEV is the running average reported before any score has been seen. It is roughly
	// the expected payout of discarding at random.
	RandomPlayEV float32 = 0.33
)

// ErrKindMismatch is returned by Sync when the calculators do not all belong to the same group.
var ErrKindMismatch = errors.New("baseline calculators of different kinds or groups")

// Kind enumerates the baseline calculators.
type Kind int

const (
	Flat Kind = iota
	RunningAverage
	Critic
	MAXKIND
)

func (k Kind) String() string {
	switch k {
	case Flat:
		return "Flat"
	case RunningAverage:
		return "RunningAverage"
	case Critic:
		return "Critic"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the names produced by String.
func ParseKind(s string) (Kind, error) {
	for k := Flat; k < MAXKIND; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return Flat, errors.Errorf("unknown baseline %q", s)
}

// Config configures a baseline. Only Kind is used by Flat and RunningAverage.
type Config struct {
	Kind         Kind
	Topology     neural.Topology
	LearningRate float32
	Optimizer    neural.OptimizerKind
	Momentum     float32
}

// Validate checks the configuration against the width of the encoded hands.
func (c Config) Validate(inputWidth int) error {
	if c.Kind < Flat || c.Kind >= MAXKIND {
		return errors.Errorf("invalid baseline kind %v", c.Kind)
	}
	if c.Kind != Critic {
		return nil
	}
	if err := c.Topology.Validate(); err != nil {
		return errors.WithMessage(err, "critic topology")
	}
	if c.Topology.InputWidth() != inputWidth {
		return errors.Errorf("critic input width %d does not match encoded hand width %d", c.Topology.InputWidth(), inputWidth)
	}
	if c.Topology.OutputWidth() != 1 {
		return errors.Errorf("critic must have a single output, got %d", c.Topology.OutputWidth())
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("critic learning rate must be positive, got %v", c.LearningRate)
	}
	if c.Optimizer < neural.SGD || c.Optimizer >= neural.MAXOPTIMIZER {
		return errors.Errorf("invalid critic optimizer %v", c.Optimizer)
	}
	return nil
}

// Group is the state shared by every calculator of a run: the pooled running average, or the
// critic's value network and its optimizer.
type Group struct {
	conf Config

	total float64
	count int

	net *neural.Net
	opt *neural.Optimizer
}

// NewGroup creates the shared state for conf. It panics if a critic topology is invalid.
func NewGroup(conf Config, r *rand.Rand) *Group {
	g := &Group{conf: conf}
	if conf.Kind == Critic {
		g.net = neural.New(conf.Topology, r)
		g.opt = neural.NewOptimizer(conf.Optimizer, g.net, conf.Momentum)
	}
	return g
}

func (g *Group) Kind() Kind { return g.conf.Kind }

// Net returns the critic network, or nil for the other kinds.
func (g *Group) Net() *neural.Net { return g.net }

// Restore copies the parameters of net into the critic network and resets the optimizer state.
func (g *Group) Restore(net *neural.Net) error {
	if g.conf.Kind != Critic {
		return errors.Errorf("%v baseline has no network", g.conf.Kind)
	}
	if err := neural.CopyParams(g.net, net); err != nil {
		return errors.WithMessage(err, "restoring critic")
	}
	g.opt = neural.NewOptimizer(g.conf.Optimizer, g.net, g.conf.Momentum)
	return nil
}

// Calculator creates a new per-worker calculator.
func (g *Group) Calculator() *Calculator {
	c := &Calculator{group: g}
	if g.conf.Kind == Critic {
		c.ws = neural.NewTrainingWorkspace(g.net)
		c.errs = make([]float32, 1)
	}
	return c
}

// Calculator predicts the score of a hand before it is played, and learns from the score
// actually obtained.
type Calculator struct {
	group *Group

	// scores seen since the last Sync
	pendingTotal float64
	pendingCount int

	// critic
	ws         *neural.TrainingWorkspace
	errs       []float32
	prediction float32
}

func (c *Calculator) Kind() Kind { return c.group.conf.Kind }

// Name is a human readable name for logs.
func (c *Calculator) Name() string {
	switch c.Kind() {
	case Flat:
		return "Flat"
	case RunningAverage:
		return "Running Average"
	case Critic:
		return "Critic Network"
	}
	return c.Kind().String()
}

// Predict returns the expected score of the hand encoded as inputs.
func (c *Calculator) Predict(inputs []float32) float32 {
	switch c.Kind() {
	case Flat:
		return FlatPrediction
	case RunningAverage:
		n := c.group.count + c.pendingCount
		if n == 0 {
			return RandomPlayEV
		}
		return float32((c.group.total + c.pendingTotal) / float64(n))
	case Critic:
		c.prediction = c.ws.FeedForward(inputs)[0]
		return c.prediction
	}
	panic(fmt.Sprintf("unknown baseline %v", c.Kind()))
}

// Train records the score obtained for the hand of the latest Predict call. Critic gradients
// accumulate until the next Sync.
func (c *Calculator) Train(score int) {
	switch c.Kind() {
	case RunningAverage:
		c.pendingTotal += float64(score)
		c.pendingCount++
	case Critic:
		c.errs[0] = c.prediction - float32(score)
		c.ws.Backpropagate(c.errs)
	}
}

// Workspace returns the critic's training workspace, or nil for the other kinds.
func (c *Calculator) Workspace() *neural.TrainingWorkspace { return c.ws }

// Sync merges what every calculator learnt during the round.
//
// Running averages pool their pending scores into the group, so every calculator ends up with the
// same average.
// Critic gradients are summed into the first calculator, averaged over batchSize and applied to
// the shared network. Every calculator must come from the same group.
func Sync(calcs []*Calculator, batchSize int) error {
	if len(calcs) == 0 {
		return nil
	}
	g := calcs[0].group
	for i, c := range calcs {
		if c.group != g {
			return errors.Wrapf(ErrKindMismatch, "calculator %d is %v, expected %v", i, c.Kind(), g.conf.Kind)
		}
	}

	switch g.conf.Kind {
	case RunningAverage:
		for _, c := range calcs {
			g.total += c.pendingTotal
			g.count += c.pendingCount
			c.pendingTotal, c.pendingCount = 0, 0
		}
	case Critic:
		if batchSize < 1 {
			return errors.Errorf("invalid batch size %d", batchSize)
		}
		ws := calcs[0].ws
		for _, c := range calcs[1:] {
			ws.Aggregate(c.ws)
			c.ws.Reset()
		}
		ws.Batch(batchSize)
		g.opt.Step(g.net, ws, g.conf.LearningRate)
		ws.Reset()
	}
	return nil
}
