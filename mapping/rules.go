package mapping

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type rulesFile struct {
	Rules Rules `yaml:"polygon_rules"`
}

func (p *Policy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "all", "":
		*p = All
	case "whitelist":
		*p = Whitelist
	case "blacklist":
		*p = Blacklist
	default:
		return errors.Errorf("unknown polygon policy '%s'", s)
	}
	return nil
}

func (p Policy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// ParseRules parses polygon rules from YAML:
//
//	polygon_rules:
//	  - key: building
//	    polygon: all
//	  - key: highway
//	    polygon: whitelist
//	    values: [services, rest_area]
func ParseRules(data []byte) (Rules, error) {
	f := rulesFile{}
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing polygon rules")
	}
	for i, r := range f.Rules {
		if r.Key == "" {
			return nil, errors.Errorf("polygon rule #%d without key", i+1)
		}
		if r.Policy != All && len(r.Values) == 0 {
			return nil, errors.Errorf("polygon rule '%s' with %s policy needs values", r.Key, r.Policy)
		}
	}
	return f.Rules, nil
}

// LoadRules reads polygon rules from a YAML file.
func LoadRules(filename string) (Rules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading polygon rules %s", filename)
	}
	return ParseRules(data)
}
