package data

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/worldgrid/internal/world"
)

// Object kinds accepted in spawn lists.
const (
	KindPlayer  = "player"
	KindMonster = "monster"
	KindNpc     = "npc"
	KindVehicle = "vehicle"
)

// SpawnEntry defines where and how many objects to spawn.
type SpawnEntry struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"` // player, monster, npc, vehicle
	X       int32  `yaml:"x"`
	Y       int32  `yaml:"y"`
	Z       int32  `yaml:"z"`
	Heading uint16 `yaml:"heading"`
	Count   int    `yaml:"count"`
	RandomX int32  `yaml:"randomx"` // spread around X in both directions
	RandomY int32  `yaml:"randomy"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList loads spawn entries from a YAML file.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	for i, s := range f.Spawns {
		switch s.Kind {
		case KindPlayer, KindMonster, KindNpc, KindVehicle:
		default:
			return nil, fmt.Errorf("spawn_list entry %d (%s): unknown kind %q", i, s.Name, s.Kind)
		}
		if s.Count <= 0 {
			f.Spawns[i].Count = 1
		}
	}
	return f.Spawns, nil
}

// IDSource hands out object IDs.
type IDSource func() int32

// Build creates the objects described by one entry. Positions are spread
// uniformly within ±RandomX/±RandomY of the anchor using rng.
func (s SpawnEntry) Build(next IDSource, rng *rand.Rand) []world.Object {
	out := make([]world.Object, 0, s.Count)
	for range s.Count {
		loc := world.Location{X: s.X, Y: s.Y, Z: s.Z, Heading: s.Heading}
		if s.RandomX > 0 {
			loc.X += rng.Int31n(2*s.RandomX+1) - s.RandomX
		}
		if s.RandomY > 0 {
			loc.Y += rng.Int31n(2*s.RandomY+1) - s.RandomY
		}
		id := next()
		switch s.Kind {
		case KindPlayer:
			out = append(out, world.NewPlayer(id, s.Name, loc))
		case KindMonster:
			out = append(out, world.NewMonster(id, s.Name, loc))
		case KindNpc:
			out = append(out, world.NewNpc(id, s.Name, loc))
		case KindVehicle:
			out = append(out, world.NewVehicle(id, s.Name, loc))
		}
	}
	return out
}
