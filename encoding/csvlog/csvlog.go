// Package csvlog writes training progress as delimited text: a block of run information, a row of
// column names, then one row per progress report.
package csvlog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gorgonia/pokerpg"
	"github.com/pkg/errors"
)

// Encoder implements pokerpg.ProgressEncoder.
type Encoder struct {
	w      *csv.Writer
	closer io.Closer

	layers int
	record []string
}

// New writes to w. Comma defaults to ','.
func New(w io.Writer) *Encoder {
	return &Encoder{w: csv.NewWriter(w)}
}

// Create creates or truncates filename and writes to it. Close closes the file.
func Create(filename string) (*Encoder, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	enc := New(f)
	enc.closer = f
	return enc, nil
}

// SetComma changes the field delimiter. It must be called before the first write.
func (e *Encoder) SetComma(r rune) { e.w.Comma = r }

// Header writes the run information followed by the column names. The number of per layer
// columns is taken from info.ActorLayers.
func (e *Encoder) Header(info pokerpg.RunInfo) error {
	e.layers = info.ActorLayers
	rows := [][]string{
		{"id", info.ID},
		{"name", info.Name},
		{"started", info.Started.Format(time.RFC3339)},
		{"seed", strconv.FormatUint(info.Seed, 10)},
		{"actor", info.Actor},
		{"actor learning rate", f32(info.ActorLearningRate)},
		{"actor optimizer", info.ActorOptimizer},
		{"momentum", f32(info.Momentum)},
		{"entropy coefficient", f32(info.EntropyCoefficient)},
		{"workers", strconv.Itoa(info.NumWorkers)},
		{"hands per worker", strconv.Itoa(info.NumInBatch)},
		{"baseline", info.Baseline},
	}
	if info.Critic != "" {
		rows = append(rows,
			[]string{"critic", info.Critic},
			[]string{"critic learning rate", f32(info.CriticLearningRate)},
			[]string{"critic optimizer", info.CriticOptimizer},
		)
	}
	rows = append(rows, e.columns())
	return errors.Wrap(e.w.WriteAll(rows), "writing header")
}

func (e *Encoder) columns() []string {
	cols := []string{"round", "hands", "running average", "recent average", "recent entropy", "weight norm"}
	for i := 0; i < e.layers; i++ {
		cols = append(cols, "weight norm "+strconv.Itoa(i))
	}
	cols = append(cols, "gradient norm")
	for i := 0; i < e.layers; i++ {
		cols = append(cols, "gradient norm "+strconv.Itoa(i))
	}
	return append(cols, "elapsed")
}

// Encode writes one progress row. Rows are buffered until Flush.
func (e *Encoder) Encode(p pokerpg.Progress) error {
	if len(p.LayerWeightNorms) != e.layers || len(p.LayerGradientNorms) != e.layers {
		return errors.Errorf("expected %d layers, got %d weight and %d gradient norms", e.layers, len(p.LayerWeightNorms), len(p.LayerGradientNorms))
	}
	r := e.record[:0]
	r = append(r,
		strconv.FormatInt(p.Round, 10),
		strconv.FormatInt(p.Hands, 10),
		f64(p.RunningAverage),
		f64(p.RecentAverage),
		f64(p.RecentEntropy),
		f64(p.WeightNorm),
	)
	for _, v := range p.LayerWeightNorms {
		r = append(r, f64(v))
	}
	r = append(r, f64(p.GradientNorm))
	for _, v := range p.LayerGradientNorms {
		r = append(r, f64(v))
	}
	r = append(r, strconv.FormatFloat(p.Elapsed.Seconds(), 'f', 3, 64))
	e.record = r
	return errors.WithStack(e.w.Write(r))
}

// Flush writes any buffered rows.
func (e *Encoder) Flush() error {
	e.w.Flush()
	return errors.WithStack(e.w.Error())
}

// Close flushes, and closes the file opened by Create.
func (e *Encoder) Close() error {
	if err := e.Flush(); err != nil {
		return err
	}
	if e.closer == nil {
		return nil
	}
	return errors.WithStack(e.closer.Close())
}

func f32(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func f64(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
