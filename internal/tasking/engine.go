// Package tasking implements the command lifecycle: submission, the staged
// QUEUED -> ACKED -> CAPTURING progression with probabilistic failures,
// product generation, and the download gate.
package tasking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/satti-simulator/internal/artifact"
	"github.com/signalsfoundry/satti-simulator/internal/config"
	"github.com/signalsfoundry/satti-simulator/internal/imagery"
	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/internal/registry"
	"github.com/signalsfoundry/satti-simulator/model"
	"github.com/signalsfoundry/satti-simulator/timectrl"
)

// Re-export registry sentinels so API callers can depend on tasking.*
// only.
var (
	// ErrSatelliteNotFound indicates the tasked satellite does not exist.
	ErrSatelliteNotFound = registry.ErrSatelliteNotFound
	// ErrGroundStationNotFound indicates the named station does not exist.
	ErrGroundStationNotFound = registry.ErrGroundStationNotFound
	// ErrStationNotOperational indicates the named station cannot receive.
	ErrStationNotOperational = errors.New("ground station is not operational")
	// ErrArtifactMissing indicates a ready command whose file is gone.
	ErrArtifactMissing = errors.New("image file not found")
)

const tracerName = "github.com/signalsfoundry/satti-simulator/internal/tasking"

// Failure checkpoints reported to metrics.
const (
	checkpointPreflight  = "preflight"
	checkpointPreCapture = "pre_capture"
	checkpointCapture    = "post_capture"
	checkpointGeneration = "generation"
)

// MetricsRecorder receives lifecycle counters from the engine.
type MetricsRecorder interface {
	RecordSubmission()
	RecordRerun()
	RecordTransition(state string, terminal bool)
	RecordFailure(checkpoint string)
	ObserveGeneration(productType string, d time.Duration)
}

// EventSink receives every command state transition. Implementations must
// not block for long; the engine calls them inline on the command
// goroutine.
type EventSink interface {
	CommandTransition(ctx context.Context, ev model.CommandEvent)
}

// Engine drives submitted commands through their lifecycle, one goroutine
// per command.
type Engine struct {
	store     *Store
	registry  *registry.Registry
	artifacts *artifact.Store
	generator imagery.Generator
	sampler   *Sampler
	clock     timectrl.Clock
	timing    config.TimingConfig
	log       logging.Logger

	metrics MetricsRecorder
	sinks   []EventSink

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// EngineOption customises Engine construction.
type EngineOption func(*Engine)

// WithMetrics attaches a lifecycle metrics recorder.
func WithMetrics(m MetricsRecorder) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithEventSink registers an additional transition sink.
func WithEventSink(s EventSink) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// NewEngine wires the lifecycle engine.
func NewEngine(
	store *Store,
	reg *registry.Registry,
	artifacts *artifact.Store,
	generator imagery.Generator,
	sampler *Sampler,
	clock timectrl.Clock,
	timing config.TimingConfig,
	log logging.Logger,
	opts ...EngineOption,
) *Engine {
	if log == nil {
		log = logging.Noop()
	}
	if clock == nil {
		clock = timectrl.System()
	}
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:     store,
		registry:  reg,
		artifacts: artifacts,
		generator: generator,
		sampler:   sampler,
		clock:     clock,
		timing:    timing,
		log:       log,
		baseCtx:   ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// SubmitRequest carries a validated uplink request into the engine.
type SubmitRequest struct {
	SatelliteID     string
	GroundStationID string
	MissionName     string
	AOIName         string
	AOICenter       *model.GeoPoint
	AOIBBox         *model.BoundingBox
	WindowOpenUTC   *string
	WindowCloseUTC  *string
	Priority        model.TaskPriority
	Width           int
	Height          int
	CloudPercent    int
	EO              model.EOConstraints
	SAR             model.SARConstraints
	Delivery        model.Delivery
	Generation      model.Generation
	FailProbability float64
}

// Submit registers a new command and starts its lifecycle goroutine. The
// returned command is the QUEUED snapshot.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (model.Command, error) {
	sat, err := e.registry.GetSatellite(req.SatelliteID)
	if err != nil {
		return model.Command{}, err
	}

	var station *model.StationSnapshot
	if req.GroundStationID != "" {
		gs, err := e.registry.GetGroundStation(req.GroundStationID)
		if err != nil {
			return model.Command{}, err
		}
		if gs.Status != model.StationOperational {
			return model.Command{}, ErrStationNotOperational
		}
		station = &model.StationSnapshot{
			ID:       gs.ID,
			Name:     gs.Name,
			Type:     gs.Type,
			Status:   gs.Status,
			Location: gs.Location,
		}
	}

	now := e.clock.Now()
	cmd := model.Command{
		ID:            newCommandID(),
		SatelliteID:   sat.ID,
		SatelliteType: sat.Type,
		Tasking: model.TaskingParameters{
			SatelliteID:     sat.ID,
			MissionName:     req.MissionName,
			AOIName:         req.AOIName,
			Width:           req.Width,
			Height:          req.Height,
			CloudPercent:    req.CloudPercent,
			FailProbability: req.FailProbability,
			Profile: model.RequestProfile{
				GroundStation:  station,
				AOICenter:      req.AOICenter,
				AOIBBox:        req.AOIBBox,
				WindowOpenUTC:  req.WindowOpenUTC,
				WindowCloseUTC: req.WindowCloseUTC,
				Priority:       req.Priority,
				EOConstraints:  req.EO,
				SARConstraints: req.SAR,
				Delivery:       req.Delivery,
				Generation:     req.Generation,
			},
		},
		State:     model.StateQueued,
		Message:   "Queued for next contact window",
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.store.Put(cmd)

	if e.metrics != nil {
		e.metrics.RecordSubmission()
	}
	e.emit(ctx, cmd)
	e.log.Info(ctx, "command accepted",
		logging.String("command_id", cmd.ID),
		logging.String("satellite_id", cmd.SatelliteID),
		logging.String("mission", cmd.Tasking.MissionName),
		logging.String("generation_mode", string(req.Generation.Mode)),
	)

	e.wg.Add(1)
	go e.run(cmd.ID)
	return cmd, nil
}

// Rerun puts a failed command back through the lifecycle with its original
// tasking parameters. Any stale artifact is deleted first.
func (e *Engine) Rerun(ctx context.Context, id string) (model.Command, error) {
	if _, err := e.store.ResetForRerun(id, "Re-run requested by operator"); err != nil {
		return model.Command{}, err
	}
	// The artifact file may survive a failure after a previous success.
	if err := e.artifacts.Remove(id); err != nil {
		e.log.Warn(ctx, "stale artifact removal failed",
			logging.String("command_id", id),
			logging.String("error", err.Error()),
		)
	}

	cmd, err := e.store.Get(id)
	if err != nil {
		return model.Command{}, err
	}

	if e.metrics != nil {
		e.metrics.RecordRerun()
	}
	e.emit(ctx, cmd)
	e.log.Info(ctx, "command rerun accepted", logging.String("command_id", id))

	e.wg.Add(1)
	go e.run(id)
	return cmd, nil
}

// Shutdown stops accepting progress and waits for in-flight command
// goroutines to observe the cancellation.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.cancel()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run drives one command from QUEUED to a terminal state.
func (e *Engine) run(id string) {
	defer e.wg.Done()

	ctx, span := otel.Tracer(tracerName).Start(e.baseCtx, "command.lifecycle",
		trace.WithAttributes(attribute.String("command_id", id)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.fail(ctx, id, checkpointGeneration, fmt.Sprintf("Post-capture pipeline failed: %v", r))
		}
	}()

	cmd, err := e.store.Get(id)
	if err != nil {
		return
	}
	failProb := cmd.Tasking.FailProbability

	sat, err := e.registry.GetSatellite(cmd.SatelliteID)
	if err != nil {
		e.fail(ctx, id, checkpointPreflight, "Satellite not found")
		return
	}
	if sat.Status != model.SatelliteAvailable {
		e.fail(ctx, id, checkpointPreflight, "Satellite is not available")
		return
	}

	// Contact window before the uplink ACK.
	if e.sleep(ctx, e.timing.ContactWindowWait) != nil {
		return
	}
	if !e.transition(ctx, id, model.StateAcked, "Uplink ACK received from satellite") {
		return
	}

	// Command validation and prep on the satellite side.
	if e.sleep(ctx, e.timing.CommandSetup) != nil {
		return
	}
	if e.sampler.Bernoulli(failProb * e.timing.FailSplitPre) {
		e.fail(ctx, id, checkpointPreCapture, "Uplink transmission failed")
		return
	}

	if !e.transition(ctx, id, model.StateCapturing, "Satellite is capturing image") {
		return
	}
	if e.sleep(ctx, e.timing.CaptureDuration) != nil {
		return
	}
	if e.sampler.Bernoulli(failProb * e.timing.FailSplitPost) {
		e.fail(ctx, id, checkpointCapture, "Capture aborted due to onboard condition")
		return
	}

	e.generate(ctx, id, sat)
}

// generate renders the product, writes the artifact, and completes the
// command.
func (e *Engine) generate(ctx context.Context, id string, sat model.Satellite) {
	cmd, err := e.store.Get(id)
	if err != nil {
		return
	}
	tasking := cmd.Tasking

	req := imagery.Request{
		SatelliteType: cmd.SatelliteType,
		Width:         tasking.Width,
		Height:        tasking.Height,
		CloudPercent:  tasking.CloudPercent,
		Generation:    tasking.Profile.Generation,
		Center:        tasking.Profile.AOICenter,
		BBox:          tasking.Profile.AOIBBox,
	}

	start := time.Now()
	data, err := e.generator.Generate(ctx, req)
	if e.metrics != nil {
		e.metrics.ObserveGeneration(string(cmd.SatelliteType), time.Since(start))
	}
	if err != nil {
		e.fail(ctx, id, checkpointGeneration, fmt.Sprintf("Post-capture pipeline failed: %v", err))
		return
	}

	ref, err := e.artifacts.Write(id, data)
	if err != nil {
		e.fail(ctx, id, checkpointGeneration, fmt.Sprintf("Post-capture pipeline failed: %v", err))
		return
	}

	acq, product := synthesizeMetadata(e.sampler, sat, &cmd, e.clock.Now())
	done, err := e.store.Complete(id, ref, acq, product, "Image downlinked and ready")
	if err != nil {
		return
	}

	if e.metrics != nil {
		e.metrics.RecordTransition(string(model.StateDownlinkReady), true)
	}
	e.emit(ctx, done)
	e.log.Info(ctx, "command completed",
		logging.String("command_id", id),
		logging.String("artifact", ref),
		logging.Int("bytes", len(data)),
	)
}

// transition applies a non-terminal state change; it reports false when the
// command record has disappeared.
func (e *Engine) transition(ctx context.Context, id string, state model.CommandState, message string) bool {
	cmd, err := e.store.Transition(id, state, message)
	if err != nil {
		return false
	}
	if e.metrics != nil {
		e.metrics.RecordTransition(string(state), state.Terminal())
	}
	e.emit(ctx, cmd)
	e.log.Debug(ctx, "command transition",
		logging.String("command_id", id),
		logging.String("state", string(state)),
	)
	return true
}

func (e *Engine) fail(ctx context.Context, id, checkpoint, reason string) {
	cmd, err := e.store.Fail(id, reason)
	if err != nil {
		return
	}
	if e.metrics != nil {
		e.metrics.RecordTransition(string(model.StateFailed), true)
		e.metrics.RecordFailure(checkpoint)
	}
	e.emit(ctx, cmd)
	e.log.Warn(ctx, "command failed",
		logging.String("command_id", id),
		logging.String("checkpoint", checkpoint),
		logging.String("reason", reason),
	)
}

func (e *Engine) sleep(ctx context.Context, r config.DelayRange) error {
	return e.clock.Sleep(ctx, e.sampler.Duration(r))
}

func (e *Engine) emit(ctx context.Context, cmd model.Command) {
	if len(e.sinks) == 0 {
		return
	}
	ev := model.CommandEvent{
		CommandID:   cmd.ID,
		SatelliteID: cmd.SatelliteID,
		State:       cmd.State,
		Message:     cmd.Message,
		At:          cmd.UpdatedAt,
	}
	for _, sink := range e.sinks {
		sink.CommandTransition(ctx, ev)
	}
}

func newCommandID() string {
	u := uuid.New()
	return fmt.Sprintf("cmd-%x", u[:6])
}
