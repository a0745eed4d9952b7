package route

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Mode is a mode of travel.
type Mode string

const (
	Car     Mode = "car"
	Bus     Mode = "bus"
	Bicycle Mode = "bicycle"
	Horse   Mode = "horse"
	Foot    Mode = "foot"
	Tram    Mode = "tram"
	Train   Mode = "train"
)

// Config decides which ways a mode can use and how much it prefers them.
type Config struct {
	// Weights are keyed by highway or railway value. Higher weights are
	// preferred, ways without positive weight are not usable.
	Weights map[string]float64 `yaml:"weights"`
	// Access are the access tags that apply to the mode, from general to
	// specific. The last of these tags present on a way decides.
	Access []string `yaml:"access"`
}

func (c Config) maxWeight() float64 {
	max := 0.0
	for _, w := range c.Weights {
		if w > max {
			max = w
		}
	}
	return max
}

func (c Config) copy() Config {
	weights := make(map[string]float64, len(c.Weights))
	for k, v := range c.Weights {
		weights[k] = v
	}
	return Config{Weights: weights, Access: append([]string(nil), c.Access...)}
}

var defaultModes = map[Mode]Config{
	Car: {
		Weights: map[string]float64{
			"motorway":     10,
			"trunk":        10,
			"primary":      2,
			"secondary":    1.5,
			"tertiary":     1,
			"unclassified": 1,
			"residential":  0.7,
			"track":        0.5,
			"service":      0.5,
		},
		Access: []string{"access", "vehicle", "motor_vehicle", "motorcar"},
	},
	Bus: {
		Weights: map[string]float64{
			"motorway":     10,
			"trunk":        10,
			"primary":      2,
			"secondary":    1.5,
			"tertiary":     1,
			"unclassified": 1,
			"residential":  0.8,
			"track":        0.3,
			"service":      0.9,
		},
		Access: []string{"access", "vehicle", "motor_vehicle", "psv", "bus"},
	},
	Bicycle: {
		Weights: map[string]float64{
			"trunk":        0.05,
			"primary":      0.3,
			"secondary":    0.9,
			"tertiary":     1,
			"unclassified": 1,
			"cycleway":     2,
			"residential":  2.5,
			"track":        1,
			"service":      1,
			"bridleway":    0.8,
			"footway":      0.8,
			"steps":        0.5,
			"path":         1,
		},
		Access: []string{"access", "vehicle", "bicycle"},
	},
	Horse: {
		Weights: map[string]float64{
			"primary":      0.05,
			"secondary":    0.15,
			"tertiary":     0.3,
			"unclassified": 1,
			"residential":  1,
			"track":        1,
			"service":      1,
			"bridleway":    1,
			"footway":      1.2,
			"steps":        1.15,
			"path":         1.2,
		},
		Access: []string{"access", "horse"},
	},
	Foot: {
		Weights: map[string]float64{
			"primary":      0.3,
			"secondary":    0.5,
			"tertiary":     0.8,
			"unclassified": 1,
			"residential":  1,
			"track":        1,
			"service":      1,
			"bridleway":    1,
			"cycleway":     0.8,
			"footway":      2,
			"path":         1.5,
			"steps":        1,
		},
		Access: []string{"access", "foot"},
	},
	Tram: {
		Weights: map[string]float64{
			"tram":       1,
			"light_rail": 1,
		},
		Access: []string{"access"},
	},
	Train: {
		Weights: map[string]float64{
			"rail":         1,
			"light_rail":   1,
			"subway":       1,
			"narrow_gauge": 1,
		},
		Access: []string{"access"},
	},
}

// DefaultConfig returns a copy of the built-in config of mode.
func DefaultConfig(mode Mode) (Config, bool) {
	c, ok := defaultModes[mode]
	if !ok {
		return Config{}, false
	}
	return c.copy(), true
}

// Modes returns all modes with a built-in config, sorted by name.
func Modes() []Mode {
	modes := make([]Mode, 0, len(defaultModes))
	for m := range defaultModes {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

type modesFile struct {
	Modes map[Mode]Config `yaml:"modes"`
}

// ParseModes parses mode configs from YAML:
//
//	modes:
//	  car:
//	    weights: {motorway: 10, residential: 0.7}
//	    access: [access, vehicle, motor_vehicle, motorcar]
func ParseModes(data []byte) (map[Mode]Config, error) {
	f := modesFile{}
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing travel modes")
	}
	for mode, c := range f.Modes {
		if mode == "" {
			return nil, errors.New("travel mode without name")
		}
		if c.maxWeight() <= 0 {
			return nil, errors.Errorf("travel mode '%s' has no positive weight", mode)
		}
	}
	return f.Modes, nil
}

// LoadModes reads mode configs from a YAML file.
func LoadModes(filename string) (map[Mode]Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading travel modes %s", filename)
	}
	return ParseModes(data)
}
