// Package report renders training progress from the episode history.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/logrusorgru/aurora"

	"github.com/nstehr/vimy/vimy-scout/history"
)

// Window is the number of episodes the moving average spans.
const Window = 10

// MovingAverage is the trailing mean of episode rewards over window episodes.
// Early points average over however many episodes exist.
func MovingAverage(episodes []history.Episode, window int) []float64 {
	if window <= 0 {
		window = 1
	}
	out := make([]float64, len(episodes))
	sum := 0.0
	for i, e := range episodes {
		sum += e.TotalReward
		if i >= window {
			sum -= episodes[i-window].TotalReward
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// WriteChart renders an HTML line chart of per-episode reward and its moving
// average.
func WriteChart(w io.Writer, episodes []history.Episode) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Episode reward",
			Subtitle: fmt.Sprintf("%d episodes, %d-episode moving average", len(episodes), Window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	xs := make([]string, len(episodes))
	rewards := make([]opts.LineData, len(episodes))
	avg := MovingAverage(episodes, Window)
	smoothed := make([]opts.LineData, len(episodes))
	for i, e := range episodes {
		xs[i] = strconv.Itoa(i + 1)
		rewards[i] = opts.LineData{Value: e.TotalReward}
		smoothed[i] = opts.LineData{Value: avg[i]}
	}

	line.SetXAxis(xs).
		AddSeries("reward", rewards).
		AddSeries("moving average", smoothed)
	return line.Render(w)
}

// WriteSummary prints one line per episode followed by totals. Rewards above
// the running average are green, those below red.
func WriteSummary(w io.Writer, episodes []history.Episode, colors bool) error {
	au := aurora.NewAurora(colors)
	if len(episodes) == 0 {
		_, err := fmt.Fprintln(w, au.Yellow("no episodes recorded"))
		return err
	}

	avg := MovingAverage(episodes, Window)
	if _, err := fmt.Fprintf(w, "%s\n", au.Bold(fmt.Sprintf("%-4s %-36s %6s %5s %9s %6s %6s %6s",
		"#", "episode", "ticks", "dec", "reward", "units", "struct", "rows"))); err != nil {
		return err
	}

	var total float64
	var units, structures int
	for i, e := range episodes {
		total += e.TotalReward
		units += e.UnitKills
		structures += e.StructureKills

		r := fmt.Sprintf("%9.3f", e.TotalReward)
		var rv aurora.Value = au.Green(r)
		if e.TotalReward < avg[i] {
			rv = au.Red(r)
		}
		if _, err := fmt.Fprintf(w, "%-4d %-36s %6d %5d %s %6d %6d %6d\n",
			i+1, e.ID, e.Ticks, e.Decisions, rv, e.UnitKills, e.StructureKills, e.TableRows); err != nil {
			return err
		}
	}

	last := episodes[len(episodes)-1]
	_, err := fmt.Fprintf(w, "%s episodes=%d mean=%.3f last-%d=%.3f unitKills=%d structureKills=%d rows=%d\n",
		au.Cyan("summary"), len(episodes), total/float64(len(episodes)), Window, avg[len(avg)-1],
		units, structures, last.TableRows)
	return err
}
