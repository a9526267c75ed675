package pokerpg

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorgonia/pokerpg/baseline"
	"github.com/gorgonia/pokerpg/decision"
	"github.com/gorgonia/pokerpg/game/poker"
	"github.com/gorgonia/pokerpg/internal/barrier"
	"github.com/gorgonia/pokerpg/neural"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/vecf32"
)

// Agent learns which cards to discard by playing hands against itself and following the policy
// gradient. It is the top level structure and the entry point of the API.
type Agent struct {
	Statistics

	// config
	conf     Config
	id       uuid.UUID
	strategy decision.Strategy
	enc      HandEncoder
	logger   *logrus.Logger

	// state
	net       *neural.Net
	opt       *neural.Optimizer
	baselines *baseline.Group
	workers   []*worker
	calcs     []*baseline.Calculator

	// agent level rng, game and buffers for samples and evaluation. Workers have their own.
	rng     *rand.Rand
	game    Game
	infer   *neural.InferenceWorkspace
	critic  *baseline.Calculator
	input   []float32
	started bool

	// io
	progress ProgressEncoder

	// mu serializes training and evaluation, so the weights are never read while they are
	// being written.
	mu sync.Mutex
}

// NewVideoPoker is the default GameFactory.
func NewVideoPoker(r *rand.Rand) Game { return poker.New(r) }

// New creates an agent with freshly initialized networks.
func New(conf Config) (*Agent, error) {
	conf = conf.withDefaults()
	if err := conf.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid configuration")
	}
	strategy, err := decision.ForOutputWidth(conf.Actor.OutputWidth())
	if err != nil {
		return nil, err
	}

	seeds := &seedSequence{state: conf.Seed}
	a := &Agent{
		conf:     conf,
		id:       uuid.New(),
		strategy: strategy,
		enc:      conf.Encoder,
		logger:   conf.Logger,
		progress: conf.Progress,
	}
	a.net = neural.New(conf.Actor, seeds.newRand())
	a.opt = neural.NewOptimizer(conf.ActorOptimizer, a.net, conf.Momentum)
	a.baselines = baseline.NewGroup(conf.Baseline, seeds.newRand())
	a.rng = seeds.newRand()
	a.game = conf.Games(a.rng)
	a.infer = neural.NewInferenceWorkspace(a.net)
	a.critic = a.baselines.Calculator()

	probe, err := a.game.Deal()
	if err != nil {
		return nil, errors.WithMessage(err, "dealing a probe hand")
	}
	if _, err = a.game.Exchange(poker.Discard{}); err != nil {
		return nil, errors.WithMessage(err, "finishing the probe hand")
	}
	if w := len(a.enc(probe, nil)); w != conf.Actor.InputWidth() {
		return nil, errors.Errorf("encoded hands are %d wide but the actor expects %d inputs", w, conf.Actor.InputWidth())
	}

	a.workers = make([]*worker, conf.NumWorkers)
	a.calcs = make([]*baseline.Calculator, conf.NumWorkers)
	for i := range a.workers {
		r := seeds.newRand()
		a.calcs[i] = a.baselines.Calculator()
		a.workers[i] = newWorker(i, a.net, r, conf.Games(r), a.calcs[i])
	}
	return a, nil
}

// ID identifies the agent in logs and progress headers.
func (a *Agent) ID() uuid.UUID { return a.id }

// Config returns the configuration, with defaults filled in.
func (a *Agent) Config() Config { return a.conf }

// Net returns the policy network.
func (a *Agent) Net() *neural.Net { return a.net }

// Critic returns the value network, or nil if the baseline has none.
func (a *Agent) Critic() *neural.Net { return a.baselines.Net() }

func (a *Agent) Strategy() decision.Strategy { return a.strategy }

func (a *Agent) log() *logrus.Entry {
	return a.logger.WithFields(logrus.Fields{"run": a.id.String(), "name": a.conf.Name})
}

// Train runs training rounds until ctx is done. Cancellation is observed in the commit step, so
// the round in flight always completes and every worker stops at the same round boundary.
//
// Any worker or commit error aborts the run and is returned. Nothing is rolled back: the
// weights keep every update committed before the failure.
func (a *Agent) Train(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.writeHeader(); err != nil {
		return err
	}

	start := time.Now()
	startRound := a.Rounds()
	a.log().WithFields(logrus.Fields{
		"workers": len(a.workers),
		"batch":   a.conf.BatchSize(),
		"round":   startRound,
	}).Info("training started")

	var stop bool
	b := barrier.New(len(a.workers), func() error {
		if err := a.commit(); err != nil {
			return err
		}
		stop = ctx.Err() != nil
		return nil
	})

	var g errgroup.Group
	for _, w := range a.workers {
		g.Go(func() error {
			for {
				if err := w.playRound(a); err != nil {
					a.log().WithField("worker", w.id).Errorf("%+v", err)
					b.Break(err)
					return err
				}
				if err := b.Wait(); err != nil {
					return err
				}
				if stop {
					return nil
				}
			}
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	a.trainingTime.Add(int64(elapsed))
	fields := logrus.Fields{
		"rounds":  a.Rounds() - startRound,
		"elapsed": elapsed,
		"total":   a.TrainingTime(),
		"average": a.AverageScore(),
	}
	if err != nil {
		a.log().WithFields(fields).WithError(err).Error("training aborted")
		return err
	}
	a.log().WithFields(fields).Info("training stopped")
	return nil
}

// commit runs on exactly one goroutine per round, while every worker is blocked on the barrier.
func (a *Agent) commit() error {
	ws := a.workers[0].ws
	for _, w := range a.workers[1:] {
		ws.Aggregate(w.ws)
	}
	ws.Batch(a.conf.BatchSize())
	a.opt.Step(a.net, ws, a.conf.ActorLearningRate)
	if err := baseline.Sync(a.calcs, a.conf.BatchSize()); err != nil {
		return errors.WithMessage(err, "syncing baselines")
	}

	round := a.rounds.Add(1)
	a.log().WithField("round", round).Debug("committed")
	if round%int64(a.conf.LogStep) == 0 {
		a.report(round, ws)
	}
	return nil
}

// report logs a diagnostic hand and a progress row. The gradients in ws are the batch averages
// of the round just committed.
func (a *Agent) report(round int64, ws *neural.TrainingWorkspace) {
	sample, err := a.playSample()
	if err != nil {
		a.log().WithError(err).Warn("unable to play a sample hand")
	} else {
		entry := a.log().WithFields(logrus.Fields{
			"round":    round,
			"dealt":    sample.Dealt.String(),
			"discard":  fmt.Sprintf("%v", sample.Action),
			"final":    sample.Final.String(),
			"rank":     sample.Rank.String(),
			"score":    sample.Score,
			"baseline": sample.Baseline,
		})
		if !validOutputs(sample.Outputs) {
			entry.Warnf("non finite policy outputs %v", sample.Outputs)
		} else {
			entry.Info("sample hand")
		}
	}

	recentAvg, recentEntropy := a.takeRecent()
	p := Progress{
		Round:          round,
		Hands:          a.Hands(),
		RunningAverage: a.AverageScore(),
		RecentAverage:  recentAvg,
		RecentEntropy:  recentEntropy,
		Elapsed:        a.TrainingTime(),
	}
	p.WeightNorm, p.LayerWeightNorms = norms(a.net.LayerWeightNormsSquared())
	p.GradientNorm, p.LayerGradientNorms = norms(ws.LayerGradientNormsSquared())

	a.log().WithFields(logrus.Fields{
		"round":         p.Round,
		"hands":         p.Hands,
		"average":       p.RunningAverage,
		"recentAverage": p.RecentAverage,
		"entropy":       p.RecentEntropy,
		"weightNorm":    p.WeightNorm,
		"gradientNorm":  p.GradientNorm,
	}).Info("progress")

	if a.progress == nil {
		return
	}
	if err := a.progress.Encode(p); err != nil {
		a.log().WithError(err).Error("unable to encode progress")
		return
	}
	if err := a.progress.Flush(); err != nil {
		a.log().WithError(err).Error("unable to flush progress")
	}
}

func (a *Agent) writeHeader() error {
	if a.started || a.progress == nil {
		a.started = true
		return nil
	}
	a.started = true
	if err := a.progress.Header(a.RunInfo()); err != nil {
		return errors.WithMessage(err, "writing progress header")
	}
	return nil
}

// RunInfo describes the agent's configuration.
func (a *Agent) RunInfo() RunInfo {
	info := RunInfo{
		ID:                 a.id.String(),
		Name:               a.conf.Name,
		Started:            time.Now(),
		Seed:               a.conf.Seed,
		Actor:              a.conf.Actor.String(),
		ActorLayers:        len(a.net.Layers()),
		ActorLearningRate:  a.conf.ActorLearningRate,
		ActorOptimizer:     a.conf.ActorOptimizer.String(),
		Momentum:           a.conf.Momentum,
		EntropyCoefficient: a.conf.EntropyCoefficient,
		NumWorkers:         a.conf.NumWorkers,
		NumInBatch:         a.conf.NumInBatch,
		Baseline:           a.conf.Baseline.Kind.String(),
	}
	if a.conf.Baseline.Kind == baseline.Critic {
		info.Critic = a.conf.Baseline.Topology.String()
		info.CriticLearningRate = a.conf.Baseline.LearningRate
		info.CriticOptimizer = a.conf.Baseline.Optimizer.String()
	}
	return info
}

// policyError computes the error fed back into the policy network for having taken action,
// writing into out. scratch holds the entropy term and must be as wide as out.
func (a *Agent) policyError(outputs []float32, action decision.Action, advantage, entropy float32, out, scratch []float32) []float32 {
	out = a.strategy.Error(outputs, action, advantage, out)
	if a.conf.EntropyCoefficient != 0 {
		vecf32.Add(out, a.strategy.EntropyError(outputs, entropy, a.conf.EntropyCoefficient, scratch[:len(out)]))
	}
	return out
}

// Predict returns the policy network's outputs for h. The returned slice is freshly allocated.
func (a *Agent) Predict(h poker.Hand) []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float32(nil), a.predict(h)...)
}

// predict must be called with mu held. The result is owned by the inference workspace.
func (a *Agent) predict(h poker.Hand) []float32 {
	a.input = a.enc(h, a.input)
	return a.infer.FeedForward(a.input)
}

// Decide returns the greedy discard for h.
func (a *Agent) Decide(h poker.Hand) decision.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	action, _ := a.strategy.SelectAction(a.predict(h), a.rng, false)
	return action
}

// playSample plays one greedy hand on the agent level game. It must be called with the
// weights quiescent.
func (a *Agent) playSample() (s Sample, err error) {
	if s.Dealt, err = a.game.Deal(); err != nil {
		return s, err
	}
	a.input = a.enc(s.Dealt, a.input)
	s.Baseline = a.critic.Predict(a.input)
	s.Outputs = append([]float32(nil), a.infer.FeedForward(a.input)...)
	s.Action, _ = a.strategy.SelectAction(s.Outputs, a.rng, false)
	if s.Final, err = a.game.Exchange(poker.Discard(s.Action)); err != nil {
		return s, err
	}
	s.Rank = a.game.HandType(s.Final)
	s.Score = a.game.Score(s.Rank)
	return s, nil
}

// Save writes the policy network, followed by the critic if there is one.
func (a *Agent) Save(filename string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	if err = enc.Encode(a.net); err != nil {
		return errors.Wrap(err, "encoding policy network")
	}
	if critic := a.baselines.Net(); critic != nil {
		if err = enc.Encode(critic); err != nil {
			return errors.Wrap(err, "encoding critic network")
		}
	}
	return nil
}

// Load restores the networks written by Save. The topologies must match the agent's. Optimizer
// state is reset.
func (a *Agent) Load(filename string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	actor := new(neural.Net)
	if err = dec.Decode(actor); err != nil {
		return errors.Wrapf(err, "decoding policy network from %v", filename)
	}
	var critic *neural.Net
	if a.baselines.Kind() == baseline.Critic {
		critic = new(neural.Net)
		if err = dec.Decode(critic); err != nil {
			return errors.Wrapf(err, "decoding critic network from %v", filename)
		}
	}

	if err = neural.CopyParams(a.net, actor); err != nil {
		return errors.WithMessage(err, "restoring policy network")
	}
	a.opt = neural.NewOptimizer(a.conf.ActorOptimizer, a.net, a.conf.Momentum)
	if critic != nil {
		if err = a.baselines.Restore(critic); err != nil {
			return err
		}
	}
	a.log().WithField("file", filename).Info("loaded weights")
	return nil
}

// norms turns per layer squared norms into per layer norms and the global norm.
func norms(squared []float64) (global float64, layers []float64) {
	layers = make([]float64, len(squared))
	var sum float64
	for i, v := range squared {
		layers[i] = math.Sqrt(v)
		sum += v
	}
	return math.Sqrt(sum), layers
}
