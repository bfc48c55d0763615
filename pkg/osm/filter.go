package osm

import (
	"slices"

	"github.com/waymerge/waymerge/pkg/errors"
)

// Highway-class groups matching the usual coarse ingestion choices. They can
// be combined or used as drop lists, e.g. to load a city without its
// residential streets.
var (
	// MotorwayClasses covers motorways and their ramps.
	MotorwayClasses = []string{"motorway", "motorway_link"}

	// PrincipalClasses covers the primary road network below motorways.
	PrincipalClasses = []string{
		"primary",
		"secondary",
		"tertiary",
		"trunk",
		"primary_link",
		"secondary_link",
		"tertiary_link",
		"trunk_link",
	}

	// ResidentialClasses covers minor roads inside built-up areas.
	ResidentialClasses = []string{
		"residential",
		"living_street",
		"unclassified",
		"service",
		"pedestrian",
		"busway",
	}
)

// Filter selects ways by their highway tag value.
//
// The zero Filter keeps every way that carries a highway tag. A non-empty
// Keep list restricts loading to exactly those classes. Drop always wins
// over Keep. Ways without a highway tag are never kept.
type Filter struct {
	Keep []string
	Drop []string
}

// Keeps reports whether a way with the given highway class passes the
// filter.
func (f Filter) Keeps(class string) bool {
	if class == "" {
		return false
	}
	if slices.Contains(f.Drop, class) {
		return false
	}
	if len(f.Keep) > 0 {
		return slices.Contains(f.Keep, class)
	}
	return true
}

// Validate checks that every configured class is a plausible highway tag
// value. It returns an INVALID_FILTER error naming the offending entry.
func (f Filter) Validate() error {
	for _, class := range f.Keep {
		if err := errors.ValidateHighwayClass(class); err != nil {
			return err
		}
	}
	for _, class := range f.Drop {
		if err := errors.ValidateHighwayClass(class); err != nil {
			return err
		}
	}
	return nil
}
