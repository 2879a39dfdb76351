// Package catalog enumerates the abstract actions the learner chooses among.
// Indices are fixed at construction and never change for the lifetime of a
// learned table.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies what an abstract action does.
type Kind int

const (
	DoNothing Kind = iota
	BuildSupplyDepot
	BuildBarracks
	BuildEngineeringBay
	BuildTurret
	BuildRefinery
	BuildTechLab
	TrainReaper
	TrainMarine
	Scout
)

var kindNames = map[Kind]string{
	DoNothing:           "donothing",
	BuildSupplyDepot:    "buildsupplydepot",
	BuildBarracks:       "buildbarracks",
	BuildEngineeringBay: "buildengineeringbay",
	BuildTurret:         "buildturret",
	BuildRefinery:       "buildrefinery",
	BuildTechLab:        "buildtechlab",
	TrainReaper:         "buildreaper",
	TrainMarine:         "buildmarine",
	Scout:               "scout",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// UsesWorker reports whether the action pulls an SCV off the economy.
func (k Kind) UsesWorker() bool {
	switch k {
	case BuildSupplyDepot, BuildBarracks, BuildEngineeringBay, BuildTurret, BuildRefinery:
		return true
	}
	return false
}

// Action is either simple (Kind only) or spatial (Kind plus a minimap target).
type Action struct {
	Kind    Kind
	DX, DY  int
	spatial bool
}

// Simple builds a parameterless action.
func Simple(k Kind) Action { return Action{Kind: k} }

// Spatial builds an action targeting minimap offset (dx, dy).
func Spatial(k Kind, dx, dy int) Action {
	return Action{Kind: k, DX: dx, DY: dy, spatial: true}
}

func (a Action) IsSpatial() bool { return a.spatial }

func (a Action) String() string {
	if !a.spatial {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s_%d_%d", a.Kind, a.DX, a.DY)
}

// simpleActions is the fixed prefix of every catalog, in index order.
var simpleActions = []Kind{
	DoNothing,
	BuildSupplyDepot,
	BuildBarracks,
	BuildEngineeringBay,
	BuildTurret,
	BuildRefinery,
	BuildTechLab,
	TrainReaper,
	TrainMarine,
}

// Catalog is the immutable, indexed list of actions.
type Catalog struct {
	actions []Action
	index   map[string]int
	byKind  map[Kind][]int
}

// New builds the catalog for a square minimap of mapSize cells, emitting one
// scout action per cellSize x cellSize quadrant.
func New(mapSize, cellSize int) *Catalog {
	c := &Catalog{
		index:  make(map[string]int),
		byKind: make(map[Kind][]int),
	}
	for _, k := range simpleActions {
		c.add(Simple(k))
	}
	if cellSize > 0 {
		for x := 0; x < mapSize; x++ {
			for y := 0; y < mapSize; y++ {
				if (x+1)%cellSize == 0 && (y+1)%cellSize == 0 {
					c.add(Spatial(Scout, x-cellSize/2, y-cellSize/2))
				}
			}
		}
	}
	return c
}

// Default is the catalog for a 64x64 minimap split into 16 quadrants.
func Default() *Catalog { return New(64, 16) }

func (c *Catalog) add(a Action) {
	i := len(c.actions)
	c.actions = append(c.actions, a)
	c.index[a.String()] = i
	c.byKind[a.Kind] = append(c.byKind[a.Kind], i)
}

// Len is the number of actions.
func (c *Catalog) Len() int { return len(c.actions) }

// At returns the action at index i. It panics on an out-of-range index, the
// same as a slice access.
func (c *Catalog) At(i int) Action { return c.actions[i] }

// Index looks an action up by its String form.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// IndicesOf returns every index whose action has kind k, in ascending order.
func (c *Catalog) IndicesOf(k Kind) []int {
	return append([]int(nil), c.byKind[k]...)
}

// Names lists action names in index order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.actions))
	for i, a := range c.actions {
		out[i] = a.String()
	}
	return out
}
