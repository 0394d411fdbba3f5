// Package batch generates labelled captcha datasets with a pool of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kyiku/textcaptcha/internal/captcha"
	"github.com/kyiku/textcaptcha/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Item is one manifest line.
type Item struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	URL   string `json:"url"`
	Code  string `json:"code"`
}

// Options controls a batch run.
type Options struct {
	Count   int
	Workers int
	// Seed is the base seed; worker i uses Seed+i. Zero picks one from the clock.
	Seed   int64
	Prefix string
}

// Runner renders Count captchas and stores them in a Sink.
type Runner struct {
	cfg    captcha.Config
	sink   storage.Sink
	opts   Options
	logger *zap.Logger
}

// NewRunner validates cfg and opts. logger may be nil.
func NewRunner(cfg captcha.Config, sink storage.Sink, opts Options, logger *zap.Logger) (*Runner, error) {
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Count {
		opts.Workers = opts.Count
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := captcha.New(cfg, captcha.WithSource(captcha.NewSource(opts.Seed))); err != nil {
		return nil, err
	}

	return &Runner{
		cfg:    cfg,
		sink:   sink,
		opts:   opts,
		logger: logger,
	}, nil
}

// Seed returns the base seed of the run.
func (r *Runner) Seed() int64 {
	return r.opts.Seed
}

// Workers returns the effective number of workers.
func (r *Runner) Workers() int {
	return r.opts.Workers
}

// Run generates and stores the captchas, writing one JSON line per stored
// image to manifest when it is non-nil. It stops at the first failure or when
// ctx is done, and returns the number of images stored.
func (r *Runner) Run(ctx context.Context, manifest io.Writer) (int, error) {
	gens := make([]*captcha.Generator, r.opts.Workers)
	for w := range gens {
		gen, err := captcha.New(r.cfg,
			captcha.WithSource(captcha.NewSource(r.opts.Seed+int64(w))),
			captcha.WithLogger(r.logger),
		)
		if err != nil {
			return 0, err
		}
		gens[w] = gen
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		stored   int
		firstErr error
		wg       sync.WaitGroup
	)

	var enc *jsoniter.Encoder
	if manifest != nil {
		enc = json.NewEncoder(manifest)
	}

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := 0; i < r.opts.Count; i++ {
			select {
			case jobs <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	for w, gen := range gens {
		wg.Add(1)
		go func(worker int, gen *captcha.Generator) {
			defer wg.Done()

			for idx := range jobs {
				if runCtx.Err() != nil {
					return
				}

				item, err := r.produce(runCtx, gen, idx)
				if err != nil {
					fail(fmt.Errorf("captcha %d: %w", idx, err))
					return
				}

				mu.Lock()
				if enc != nil {
					err = enc.Encode(item)
				}
				if err == nil {
					stored++
				}
				mu.Unlock()

				if err != nil {
					fail(fmt.Errorf("failed to write manifest: %w", err))
					return
				}

				r.logger.Debug("captcha stored",
					zap.Int("worker", worker),
					zap.Int("index", idx),
					zap.String("key", item.Key),
				)
			}
		}(w, gen)
	}

	wg.Wait()

	if firstErr != nil {
		return stored, firstErr
	}
	if err := ctx.Err(); err != nil {
		return stored, err
	}

	r.logger.Info("batch finished",
		zap.Int("count", stored),
		zap.Int("workers", r.opts.Workers),
		zap.Int64("seed", r.opts.Seed),
		zap.String("sink", r.sink.Name()),
	)

	return stored, nil
}

func (r *Runner) produce(ctx context.Context, gen *captcha.Generator, idx int) (Item, error) {
	result, err := gen.Generate()
	if err != nil {
		return Item{}, err
	}

	key := storage.ObjectKey(r.opts.Prefix)
	url, err := r.sink.Put(ctx, key, result.Image)
	if err != nil {
		return Item{}, err
	}

	return Item{
		Index: idx,
		Key:   key,
		URL:   url,
		Code:  result.Code,
	}, nil
}
