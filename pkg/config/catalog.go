package config

import (
	"errors"
	"fmt"
)

// ErrUnknownScenario is returned by Lookup for names not in the catalog
var ErrUnknownScenario = errors.New("unknown scenario")

// Catalog is a keyed table of scenarios plus the cost table used to price them
type Catalog struct {
	Costs     Costs
	order     []string
	scenarios map[string]Scenario
}

// NewCatalog creates an empty catalog with default costs
func NewCatalog() *Catalog {
	return &Catalog{
		Costs:     DefaultCosts(),
		scenarios: make(map[string]Scenario),
	}
}

// Base returns the reference campaign: five stations, ten hours a day and a
// population of 100000 split into ten id buckets.
func Base() Scenario {
	s := Scenario{
		Name:                   "base",
		Stations:               5,
		OperatingHoursPerDay:   10,
		ServiceTimeMeanMinutes: 3,
		BalkProbability:        0.20,
		AttendanceRate:         0.70,
		TargetPopulation:       100000,
		EarlyStop:              true,
	}
	s.ApplyDefaults()
	return s
}

// Builtin returns the catalog of standard what-if scenarios
func Builtin() *Catalog {
	c := NewCatalog()

	variant := func(name string, tweak func(*Scenario)) {
		s := Base().Clone()
		s.Name = name
		tweak(&s)
		c.Add(s)
	}

	c.Add(Base())
	variant("7_stations", func(s *Scenario) { s.Stations = 7 })
	variant("10_stations", func(s *Scenario) { s.Stations = 10 })
	variant("60_attendance", func(s *Scenario) { s.AttendanceRate = 0.60 })
	variant("80_attendance", func(s *Scenario) { s.AttendanceRate = 0.80 })
	variant("95_attendance", func(s *Scenario) { s.AttendanceRate = 0.95 })
	variant("extended_hours", func(s *Scenario) { s.OperatingHoursPerDay = 12 })
	variant("accelerated", func(s *Scenario) {
		s.Stations = 10
		s.OperatingHoursPerDay = 12
		s.ServiceTimeMeanMinutes = 2
	})
	// twelve weeks of five operating days
	variant("12_weeks", func(s *Scenario) { s.Days = 60 })

	return c
}

// Add inserts or replaces a scenario. Defaults are applied to the stored copy.
func (c *Catalog) Add(s Scenario) {
	s = s.Clone()
	s.ApplyDefaults()
	if _, ok := c.scenarios[s.Name]; !ok {
		c.order = append(c.order, s.Name)
	}
	c.scenarios[s.Name] = s
}

// Merge overlays a parsed catalog file: its costs replace the current table
// and its scenarios replace or extend the existing ones.
func (c *Catalog) Merge(file *CatalogFile) {
	if file == nil {
		return
	}
	c.Costs = file.Costs
	for _, s := range file.Scenarios {
		c.Add(s)
	}
}

// Lookup returns a private copy of the named scenario
func (c *Catalog) Lookup(name string) (Scenario, error) {
	s, ok := c.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s.Clone(), nil
}

// Names lists scenario names in insertion order
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of scenarios
func (c *Catalog) Len() int {
	return len(c.order)
}
