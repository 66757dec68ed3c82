package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFock reads "3" as a broadcast truncation and "3,0,2" as a per-site
// list.
func ParseFock(s string) (FockSpec, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") {
		v, err := strconv.Atoi(s)
		if err != nil {
			return FockSpec{}, fmt.Errorf("%w: fock %q", ErrInvalidConfig, s)
		}
		return Fock(v), nil
	}

	parts := strings.Split(s, ",")
	list := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return FockSpec{}, fmt.Errorf("%w: fock entry %d %q", ErrInvalidConfig, i, p)
		}
		list[i] = v
	}
	return FockList(list...), nil
}

// ParseParam reads a "name=value" model parameter.
func ParseParam(s string) (string, float64, error) {
	name, val, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("%w: param %q is not name=value", ErrInvalidConfig, s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: param %s: %v", ErrInvalidConfig, name, err)
	}
	return name, v, nil
}

// SetParams parses and stores name=value pairs, overriding existing ones.
func (c *Config) SetParams(pairs []string) error {
	for _, p := range pairs {
		name, v, err := ParseParam(p)
		if err != nil {
			return err
		}
		if c.Params == nil {
			c.Params = make(map[string]float64)
		}
		c.Params[name] = v
	}
	return nil
}
