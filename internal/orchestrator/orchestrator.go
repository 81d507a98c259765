package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/events"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/metrics"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/predictor"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/source"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

const (
	enginePredictor = "predictor"
	engineAnomaly   = "anomaly"
)

type Options struct {
	Config  *config.Config
	Source  source.DataSource
	Store   events.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Orchestrator owns the two scheduled pipelines and the on-demand entry
// points that share their engines.
type Orchestrator struct {
	config      *config.Config
	source      source.DataSource
	predictor   *predictor.Predictor
	engine      *anomaly.Engine
	metrics     *metrics.Metrics
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	publisher   *events.Publisher
	suppressor  *suppressor
	lookback    time.Duration
	now         func() time.Time
	pipelines   []*Pipeline
	mu          sync.Mutex
	started     bool
}

func New(opts Options) (*Orchestrator, error) {
	cfg := opts.Config

	p, err := predictor.New(cfg.Predictor.ToPredictorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build predictor: %w", err)
	}

	engine, err := anomaly.NewEngine(cfg.Anomaly.ToRuleConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build anomaly engine: %w", err)
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.Get()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	eventBus := events.NewEventBus(cfg.Events.BufferSize)
	eventBus.OnDrop(func(t models.EventType) { m.IncEventsDropped(string(t)) })

	var store events.Store
	if cfg.Events.Persist {
		store = opts.Store
	}
	eventLogger := events.NewEventLogger(store, eventBus.SubscribeAll())

	lookback := cfg.Anomaly.Lookback
	if lookback <= 0 {
		lookback = 15 * time.Minute
	}

	return &Orchestrator{
		config:      cfg,
		source:      opts.Source,
		predictor:   p,
		engine:      engine,
		metrics:     m,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		publisher:   events.NewPublisher(eventBus),
		suppressor:  newSuppressor(lookback),
		lookback:    lookback,
		now:         now,
	}, nil
}

func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return nil
	}
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()

	o.pipelines = []*Pipeline{
		NewPipeline(PipelineConfig{
			Name:     enginePredictor,
			Interval: o.config.Scheduler.PredictionInterval,
			Timeout:  o.config.Scheduler.Timeout,
			Cycle:    o.scheduledPrediction,
			Now:      o.now,
		}),
		NewPipeline(PipelineConfig{
			Name:     engineAnomaly,
			Interval: o.config.Scheduler.AnomalyInterval,
			Timeout:  o.config.Scheduler.Timeout,
			Cycle:    o.scheduledAnomaly,
			Now:      o.now,
		}),
	}
	for _, p := range o.pipelines {
		if err := p.Start(); err != nil {
			return fmt.Errorf("failed to start pipeline: %w", err)
		}
	}

	o.started = true
	return nil
}

func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	logger.Info("Orchestrator stopping")

	for _, p := range o.pipelines {
		p.Stop()
	}
	o.pipelines = nil

	o.eventBus.Close()
	o.eventLogger.Stop()
	o.started = false

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range o.pipelines {
		if !p.IsRunning() {
			return false
		}
	}
	return o.started && len(o.pipelines) > 0
}

func (o *Orchestrator) scheduledPrediction(ctx context.Context, asOf time.Time) {
	if _, err := o.RunPredictionCycle(ctx, asOf); err != nil {
		logger.WithContext(ctx).WithField("engine", enginePredictor).Errorf("Prediction cycle failed: %v", err)
	}
}

func (o *Orchestrator) scheduledAnomaly(ctx context.Context, asOf time.Time) {
	if _, err := o.RunAnomalyCycle(ctx, asOf); err != nil {
		logger.WithContext(ctx).WithField("engine", engineAnomaly).Errorf("Anomaly cycle failed: %v", err)
	}
}

// RunPredictionCycle forecasts the delay of every in-flight shipment
// against the recent delivery history.
func (o *Orchestrator) RunPredictionCycle(ctx context.Context, asOf time.Time) ([]*models.PredictionResult, error) {
	start := time.Now()
	defer func() { o.metrics.ObserveEngine(enginePredictor, time.Since(start)) }()
	pub := o.publisher.WithTraceID(logger.TraceIDFromContext(ctx))

	history, err := o.source.DelayHistory(ctx, o.config.Predictor.HistoryLimit)
	if err != nil {
		pub.EvaluationFailed(enginePredictor, asOf, err)
		return nil, fmt.Errorf("failed to load delay history: %w", err)
	}

	active, err := o.source.ActiveShipments(ctx)
	if err != nil {
		pub.EvaluationFailed(enginePredictor, asOf, err)
		return nil, fmt.Errorf("failed to load active shipments: %w", err)
	}

	results := make([]*models.PredictionResult, 0, len(active))
	alerts := 0
	for i := range active {
		result, err := o.predictor.Predict(predictor.Input{
			History:          history,
			Active:           active[i].ActiveSample(),
			ThresholdMinutes: o.config.Predictor.Threshold(),
			AsOf:             asOf,
		})
		if err != nil {
			pub.EvaluationFailed(enginePredictor, asOf, err)
			return nil, err
		}

		o.metrics.ObservePrediction(result)
		pub.PredictionComputed(result)
		if result.AlertTriggered {
			alerts++
			pub.DelayAlert(result)
		}
		results = append(results, result)
	}

	logger.WithContext(ctx).WithField("engine", enginePredictor).Debugf(
		"Prediction cycle: history=%d active=%d alerts=%d", len(history), len(active), alerts,
	)
	return results, nil
}

// RunAnomalyCycle evaluates the security snapshot covering the lookback
// window. All detections are returned; only ones not already published
// within the lookback are announced.
func (o *Orchestrator) RunAnomalyCycle(ctx context.Context, asOf time.Time) ([]models.AnomalyRecord, error) {
	start := time.Now()
	defer func() { o.metrics.ObserveEngine(engineAnomaly, time.Since(start)) }()
	pub := o.publisher.WithTraceID(logger.TraceIDFromContext(ctx))

	snapshot, err := o.source.SecuritySnapshot(ctx, asOf.Add(-o.lookback))
	if err != nil {
		pub.EvaluationFailed(engineAnomaly, asOf, err)
		return nil, fmt.Errorf("failed to load security snapshot: %w", err)
	}

	records := o.engine.Evaluate(*snapshot, asOf)

	fresh := o.suppressor.filter(records, asOf)
	o.metrics.ObserveAnomalies(fresh)
	for _, r := range fresh {
		pub.AnomalyDetected(r)
	}

	logger.WithContext(ctx).WithField("engine", engineAnomaly).Debugf(
		"Anomaly cycle: logins=%d accesses=%d detections=%d new=%d",
		len(snapshot.Logins), len(snapshot.Accesses), len(records), len(fresh),
	)
	return records, nil
}

// Predict runs the predictor on caller-supplied data.
func (o *Orchestrator) Predict(in predictor.Input) (*models.PredictionResult, error) {
	if in.ThresholdMinutes == nil {
		in.ThresholdMinutes = o.config.Predictor.Threshold()
	}
	return o.predictor.Predict(in)
}

// Evaluate runs the anomaly rules on a caller-supplied snapshot using the
// configured rules, or cfg when it is non-nil.
func (o *Orchestrator) Evaluate(snapshot models.SecuritySnapshot, cfg *anomaly.RuleConfig, asOf time.Time) ([]models.AnomalyRecord, error) {
	engine := o.engine
	if cfg != nil {
		var err error
		engine, err = anomaly.NewEngine(*cfg)
		if err != nil {
			return nil, err
		}
	}
	return engine.Evaluate(snapshot, asOf), nil
}

func (o *Orchestrator) RuleConfig() anomaly.RuleConfig {
	return o.engine.Config()
}

func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	return o.source.HealthCheck(ctx)
}

func (o *Orchestrator) SubscribeEvents(eventType models.EventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
