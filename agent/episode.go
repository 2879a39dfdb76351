package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-scout/catalog"
	"github.com/nstehr/vimy/vimy-scout/history"
	"github.com/nstehr/vimy/vimy-scout/model"
	"github.com/nstehr/vimy/vimy-scout/reward"
	"github.com/nstehr/vimy/vimy-scout/state"
)

// episode is everything that lives for exactly one game.
type episode struct {
	id      string
	started time.Time

	ticks     int
	decisions int

	phase      Phase
	prev       state.Key
	prevAction int
	hasPrev    bool
	action     catalog.Action

	topLeft bool
	base    model.Point // command center, screen coordinates
	baseOK  bool

	techLab     bool
	gatherTrips int
}

// begin resets per-episode state and anchors the base from obs.
func (a *Agent) begin(obs *model.Observation) {
	a.ep = episode{
		id:      uuid.NewString(),
		started: a.now(),
		phase:   Decide,
		topLeft: a.encoder.TopLeft(obs),
	}
	a.ep.base, a.ep.baseOK = model.RoundedCentroid(obs.Screen.UnitType.Find(model.CommandCenter))
	a.shaper.Reset()
	a.started = true

	slog.Info("episode started", "episode", a.ep.id, "tick", obs.Tick, "topLeft", a.ep.topLeft,
		"base", fmt.Sprintf("%d,%d", a.ep.base.X, a.ep.base.Y), "baseFound", a.ep.baseOK)
}

// finish runs the terminal update, saves the table and records the episode.
// The next observation starts a fresh episode.
func (a *Agent) finish() error {
	if a.ep.hasPrev {
		a.learner.Learn(a.ep.prev, a.ep.prevAction, a.shaper.Terminal(), state.Terminal)
	}

	var err error
	if a.tables != nil {
		if serr := a.tables.Save(a.table); serr != nil {
			err = fmt.Errorf("save table: %w", serr)
			slog.Error("failed to persist table", "episode", a.ep.id, "error", serr)
		}
	}

	rec := a.summary()
	if a.history != nil {
		if herr := a.history.RecordEpisode(context.Background(), rec); herr != nil {
			slog.Warn("failed to record episode", "episode", rec.ID, "error", herr)
		}
	}
	slog.Info("episode finished",
		"episode", rec.ID,
		"ticks", rec.Ticks,
		"decisions", rec.Decisions,
		"reward", rec.TotalReward,
		"unitKills", rec.UnitKills,
		"structureKills", rec.StructureKills,
		"rows", rec.TableRows,
	)

	a.ep = episode{}
	a.shaper.Reset()
	a.started = false
	return err
}

func (a *Agent) summary() history.Episode {
	t := a.shaper.Tally()
	return history.Episode{
		ID:              a.ep.id,
		StartedAt:       a.ep.started,
		EndedAt:         a.now(),
		Ticks:           a.ep.ticks,
		Decisions:       a.ep.decisions,
		TotalReward:     a.shaper.Total(),
		UnitKills:       t.Count[reward.EventUnitKill],
		StructureKills:  t.Count[reward.EventStructureKill],
		MilestoneReward: t.Amount[reward.EventMilestone],
		ExploreReward:   t.Amount[reward.EventSeeEnemy] + t.Amount[reward.EventVisibility],
		TableRows:       a.table.Len(),
	}
}
