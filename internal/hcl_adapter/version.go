package hcl_adapter

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedFormat is the range of package format versions this loader reads.
const SupportedFormat = ">= 1.0.0, < 2.0.0"

var supportedFormat = mustConstraint(SupportedFormat)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(fmt.Sprintf("invalid format constraint %q: %v", c, err))
	}
	return constraint
}

func checkFormatVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid format_version %q: %w", v, err)
	}
	if !supportedFormat.Check(version) {
		return fmt.Errorf("format_version %s is not supported (want %s)", version, SupportedFormat)
	}
	return nil
}
