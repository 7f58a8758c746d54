package environment

import (
	"errors"
	"fmt"
	"strings"
)

// Environment is the deployment stage mailify runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ErrUnknown is returned by Parse for an unrecognised environment name.
var ErrUnknown = errors.New("unknown environment")

// Parse resolves a name or its short alias (dev, stage, prod),
// case-insensitively. An empty name is Development.
func Parse(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "development", "dev":
		return Development, nil
	case "staging", "stage":
		return Staging, nil
	case "production", "prod":
		return Production, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, s)
}

// UnmarshalText lets env and flag parsers decode an Environment directly.
func (e *Environment) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e Environment) String() string { return string(e) }

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsStaging() bool     { return e == Staging }
func (e Environment) IsProduction() bool  { return e == Production }
