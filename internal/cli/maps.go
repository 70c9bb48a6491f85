package cli

// YAML map and task file loading. A map file describes the static terrain as
// rectangular regions over a default-Road grid, plus the obstacle schedules.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// MapFile is the on-disk scenario description.
type MapFile struct {
	Name    string `yaml:"name"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Regions []struct {
		Terrain string `yaml:"terrain"`
		X1      int    `yaml:"x1"`
		Y1      int    `yaml:"y1"`
		X2      int    `yaml:"x2"`
		Y2      int    `yaml:"y2"`
	} `yaml:"regions"`
	Obstacles []environment.ObstacleSchedule `yaml:"obstacles"`
}

// loadMap resolves a builtin scenario name or loads a YAML map file.
func loadMap(nameOrPath string) (*environment.Environment, string, error) {
	switch strings.ToLower(nameOrPath) {
	case "small":
		return environment.SmallTest(), "small", nil
	case "medium":
		return environment.MediumTest(), "medium", nil
	case "large":
		return environment.LargeTest(), "large", nil
	case "dynamic":
		return environment.DynamicTest(), "dynamic", nil
	case "demo":
		return environment.Demo(), "demo", nil
	}

	env, name, err := loadMapFile(nameOrPath)
	if err != nil {
		return nil, "", err
	}
	return env, name, nil
}

func loadMapFile(path string) (*environment.Environment, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read map file: %w", err)
	}

	var mf MapFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, "", fmt.Errorf("failed to parse map YAML: %w", err)
	}

	env, err := environment.New(mf.Width, mf.Height)
	if err != nil {
		return nil, "", fmt.Errorf("invalid map dimensions: %w", err)
	}
	for _, region := range mf.Regions {
		terrain, err := parseTerrain(region.Terrain)
		if err != nil {
			return nil, "", err
		}
		env.SetTerrainRegion(region.X1, region.Y1, region.X2, region.Y2, terrain)
	}
	for _, schedule := range mf.Obstacles {
		env.InjectObstacle(schedule)
	}

	name := mf.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return env, name, nil
}

// loadTasks reads a YAML delivery task list.
func loadTasks(path string) ([]types.DeliveryTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	var wrapper struct {
		Tasks []types.DeliveryTask `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse task YAML: %w", err)
	}
	if len(wrapper.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s contains no tasks", path)
	}
	return wrapper.Tasks, nil
}

func parseTerrain(name string) (types.Terrain, error) {
	switch strings.ToLower(name) {
	case "road", "":
		return types.Road, nil
	case "grass":
		return types.Grass, nil
	case "water":
		return types.Water, nil
	case "mountain":
		return types.Mountain, nil
	case "building":
		return types.Building, nil
	default:
		return 0, fmt.Errorf("unknown terrain %q", name)
	}
}
