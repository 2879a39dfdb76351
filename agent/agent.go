package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nstehr/vimy/vimy-scout/catalog"
	"github.com/nstehr/vimy/vimy-scout/history"
	"github.com/nstehr/vimy/vimy-scout/ipc"
	"github.com/nstehr/vimy/vimy-scout/learn"
	"github.com/nstehr/vimy/vimy-scout/model"
	"github.com/nstehr/vimy/vimy-scout/reward"
	"github.com/nstehr/vimy/vimy-scout/rules"
	"github.com/nstehr/vimy/vimy-scout/state"
)

// Learner is the decision and update half of the action-value table.
type Learner interface {
	Choose(k state.Key, excluded []int) int
	Learn(prev state.Key, action int, reward float64, next state.Key)
}

// TableStore persists the learned table. Load runs once when the agent is
// built, Save once per finished episode.
type TableStore interface {
	Load(t *learn.Table) error
	Save(t *learn.Table) error
}

// Options wires an Agent. Catalog, Table, Encoder and Rules are required.
type Options struct {
	Catalog *catalog.Catalog
	Table   *learn.Table
	Encoder *state.Encoder
	Rules   *rules.Engine
	Reward  reward.Config

	Tables  TableStore    // optional
	History history.Store // optional, must already be initialized

	// Learner replaces Table for Choose and Learn when set. It is meant to
	// wrap Table; persistence always reads Table.
	Learner Learner
	Rand    *rand.Rand
	Now     func() time.Time
}

// Agent plays one session: it owns the table, the per-episode state and the
// phase cycle. Not safe for concurrent use.
type Agent struct {
	Player string

	catalog *catalog.Catalog
	table   *learn.Table
	learner Learner
	encoder *state.Encoder
	rules   *rules.Engine
	shaper  *reward.Shaper
	tables  TableStore
	history history.Store
	rng     *rand.Rand
	now     func() time.Time

	ep      episode
	started bool
}

func New(opts Options) (*Agent, error) {
	if opts.Catalog == nil || opts.Table == nil || opts.Encoder == nil || opts.Rules == nil {
		return nil, errors.New("agent: catalog, table, encoder and rules are required")
	}
	if opts.Table.Actions() != opts.Catalog.Len() {
		return nil, fmt.Errorf("agent: table has %d actions, catalog has %d", opts.Table.Actions(), opts.Catalog.Len())
	}
	a := &Agent{
		catalog: opts.Catalog,
		table:   opts.Table,
		learner: opts.Learner,
		encoder: opts.Encoder,
		rules:   opts.Rules,
		shaper:  reward.NewShaper(opts.Reward),
		tables:  opts.Tables,
		history: opts.History,
		rng:     opts.Rand,
		now:     opts.Now,
	}
	if a.learner == nil {
		a.learner = opts.Table
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.tables != nil {
		if err := a.tables.Load(a.table); err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
		slog.Info("table loaded", "rows", a.table.Len())
	}
	return a, nil
}

// Phase is the phase the next non-final tick will run.
func (a *Agent) Phase() Phase { return a.ep.phase }

// EpisodeID is empty between episodes.
func (a *Agent) EpisodeID() string { return a.ep.id }

// Reward is the reward accumulated so far this episode.
func (a *Agent) Reward() float64 { return a.shaper.Total() }

// Step consumes one observation and returns the command for this tick. The
// only errors come from persisting the table at the end of an episode; the
// returned command is valid either way.
func (a *Agent) Step(obs *model.Observation) (ipc.Command, error) {
	if obs.First || !a.started {
		a.begin(obs)
	}
	a.ep.ticks++
	a.shaper.ObserveScore(obs.Tick, obs.Score)

	if obs.Last {
		return ipc.NoOp(), a.finish()
	}

	f := a.encoder.Encode(obs, a.ep.topLeft)
	phase := a.ep.phase
	a.ep.phase = phase.Next()

	var cmd ipc.Command
	switch phase {
	case Decide:
		cmd = a.decide(obs, f)
	case Execute:
		cmd = a.execute(obs, f)
	case Followup:
		cmd = a.followup(obs)
	}
	slog.Debug("step", "tick", obs.Tick, "phase", phase, "action", a.ep.action, "command", cmd.Function)
	return cmd, nil
}

func (a *Agent) decide(obs *model.Observation, f state.Features) ipc.Command {
	key := f.Key()
	if a.ep.hasPrev {
		a.shaper.ObserveSight(obs)
		a.learner.Learn(a.ep.prev, a.ep.prevAction, a.shaper.TakeStep(), key)
	}

	env := rules.NewEnv(f)
	env.TechLabBuilt = a.ep.techLab
	excluded := a.rules.Excluded(env)

	idx := a.learner.Choose(key, excluded)
	a.ep.prev, a.ep.prevAction, a.ep.hasPrev = key, idx, true
	a.ep.action = a.catalog.At(idx)
	a.ep.decisions++

	return a.selectFor(obs, a.ep.action)
}

// selectFor picks whatever will carry out act on the next tick.
func (a *Agent) selectFor(obs *model.Observation, act catalog.Action) ipc.Command {
	ut := obs.Screen.UnitType
	switch {
	case act.Kind.UsesWorker():
		if p, ok := a.pick(ut.Find(model.SCV)); ok && obs.Available(ipc.FuncSelectPoint) {
			return ipc.SelectPoint(ipc.NotQueued, p)
		}
	case act.Kind == catalog.BuildTechLab, act.Kind == catalog.TrainReaper, act.Kind == catalog.TrainMarine:
		if p, ok := a.pick(ut.Find(model.Barracks)); ok && obs.Available(ipc.FuncSelectPoint) {
			return ipc.SelectPoint(ipc.SelectAllType, p)
		}
	case act.Kind == catalog.Scout:
		if obs.Available(ipc.FuncSelectArmy) {
			return ipc.SelectArmy()
		}
	}
	return ipc.NoOp()
}

func (a *Agent) execute(obs *model.Observation, f state.Features) ipc.Command {
	act := a.ep.action
	switch act.Kind {
	case catalog.BuildSupplyDepot, catalog.BuildBarracks, catalog.BuildEngineeringBay, catalog.BuildTurret:
		return a.build(obs, act.Kind, built(f, act.Kind))

	case catalog.BuildRefinery:
		return a.buildRefinery(obs, f.Refineries)

	case catalog.BuildTechLab:
		if a.ep.techLab || !obs.Available(ipc.FuncBuildTechLab) {
			break
		}
		a.ep.techLab = true
		a.shaper.Milestone(obs.Tick, techLabBonus, "tech lab")
		return ipc.Quick(ipc.FuncBuildTechLab, ipc.Queued)

	case catalog.TrainReaper:
		if !obs.Available(ipc.FuncTrainReaper) {
			break
		}
		a.shaper.Milestone(obs.Tick, reaperBonus, "reaper")
		return ipc.Quick(ipc.FuncTrainReaper, ipc.Queued)

	case catalog.TrainMarine:
		if obs.Available(ipc.FuncTrainMarine) {
			return ipc.Quick(ipc.FuncTrainMarine, ipc.Queued)
		}

	case catalog.Scout:
		if obs.Selected(model.SCV) || !obs.Available(ipc.FuncAttackMinimap) {
			break
		}
		target := mirror(model.Point{X: act.DX, Y: act.DY}, a.encoder.MapSize(), a.ep.topLeft)
		return ipc.At(ipc.FuncAttackMinimap, ipc.NotQueued, target)
	}
	return ipc.NoOp()
}

// build places the next instance of k beside the command center.
func (a *Agent) build(obs *model.Observation, k catalog.Kind, count int) ipc.Command {
	slots := placements[k]
	fn := buildFuncs[k]
	if count < 0 || count >= len(slots) || !a.ep.baseOK || !obs.Available(fn) {
		return ipc.NoOp()
	}
	slot := slots[count]
	target := offset(a.ep.base, slot.DX, slot.DY, a.ep.topLeft)
	a.shaper.Milestone(obs.Tick, slot.Bonus, fmt.Sprintf("%s #%d", k, count+1))
	return ipc.At(fn, ipc.NotQueued, target)
}

func (a *Agent) buildRefinery(obs *model.Observation, count int) ipc.Command {
	if count >= maxRefineries || !obs.Available(ipc.FuncBuildRefinery) {
		return ipc.NoOp()
	}
	geysers := obs.Screen.UnitType.Find(model.VespeneGeyser)
	if count == 0 && len(geysers) > geyserPixels {
		geysers = geysers[:geyserPixels]
	}
	target, ok := model.RoundedCentroid(geysers)
	if !ok {
		return ipc.NoOp()
	}
	if count == 1 {
		a.shaper.Milestone(obs.Tick, refineryBonus, "refinery #2")
	}
	return ipc.At(ipc.FuncBuildRefinery, ipc.NotQueued, target)
}

// followup returns the worker used by a build to harvesting, sending every
// fourth trip to a refinery.
func (a *Agent) followup(obs *model.Observation) ipc.Command {
	switch a.ep.action.Kind {
	case catalog.BuildSupplyDepot, catalog.BuildBarracks, catalog.BuildEngineeringBay, catalog.BuildTurret:
	default:
		return ipc.NoOp()
	}
	if !obs.Available(ipc.FuncHarvestGather) {
		return ipc.NoOp()
	}
	a.ep.gatherTrips++
	resource := model.MineralField
	if a.ep.gatherTrips%gasEveryNthTrip == 0 {
		resource = model.Refinery
	}
	if p, ok := a.pick(obs.Screen.UnitType.Find(resource)); ok {
		return ipc.At(ipc.FuncHarvestGather, ipc.Queued, p)
	}
	return ipc.NoOp()
}

func (a *Agent) pick(pts []model.Point) (model.Point, bool) {
	if len(pts) == 0 {
		return model.Point{}, false
	}
	return pts[a.rng.Intn(len(pts))], true
}

// HandleHello completes the handshake so the environment knows the agent is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Player = hello.Player
	slog.Info("player identified", "player", a.Player, "mapSize", hello.MapSize, "actions", a.catalog.Len())
	if hello.MapSize != 0 && hello.MapSize != a.encoder.MapSize() {
		slog.Warn("map size mismatch", "environment", hello.MapSize, "agent", a.encoder.MapSize())
	}

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Actions: a.catalog.Len()})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleObservation steps the agent and replies with its command. A
// persistence error is returned alongside the reply.
func (a *Agent) HandleObservation(env ipc.Envelope) (*ipc.Envelope, error) {
	var obs model.Observation
	if err := json.Unmarshal(env.Data, &obs); err != nil {
		return nil, fmt.Errorf("unmarshal observation: %w", err)
	}

	cmd, stepErr := a.Step(&obs)
	reply, err := ipc.NewEnvelope(ipc.TypeCommand, cmd)
	if err != nil {
		return nil, err
	}
	return &reply, stepErr
}
