package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
)

// CycleFunc runs one evaluation as of the given instant.
type CycleFunc func(ctx context.Context, asOf time.Time)

type PipelineConfig struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Cycle    CycleFunc
	Now      func() time.Time
}

// Pipeline runs a cycle immediately on start and then on every tick.
type Pipeline struct {
	config  PipelineConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 || cfg.Timeout >= cfg.Interval {
		cfg.Timeout = cfg.Interval * 4 / 5
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.WithEngine(p.config.Name).Infof("Pipeline started (every %s)", p.config.Interval)
	return nil
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.WithEngine(p.config.Name).Info("Pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	p.runCycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle()
		}
	}
}

// runCycle tags the cycle with a fresh trace id. A panicking cycle is
// logged and the next tick runs as usual.
func (p *Pipeline) runCycle() {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.Timeout)
	defer cancel()

	ctx = logger.WithTraceID(ctx, uuid.New().String())

	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(ctx).WithField("engine", p.config.Name).Errorf("Cycle panicked: %v", r)
		}
	}()

	p.config.Cycle(ctx, p.config.Now().UTC())
}
