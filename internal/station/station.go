// Package station loads the ground-station catalog used to resolve named
// observers into geodetic coordinates.
package station

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/enzeeeh/satellite-project/internal/transform"
)

// Station is one named observer site.
type Station struct {
	Name     string  `yaml:"name" json:"name"`
	LatDeg   float64 `yaml:"latitude_deg" json:"latitude_deg"`
	LonDeg   float64 `yaml:"longitude_deg" json:"longitude_deg"`
	AltM     float64 `yaml:"altitude_m" json:"altitude_m"`
	MinElDeg float64 `yaml:"min_elevation_deg,omitempty" json:"min_elevation_deg,omitempty"`
	Timezone string  `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

// Observer converts the station into a topocentric observer.
func (s Station) Observer() transform.Observer {
	return transform.NewObserver(s.LatDeg, s.LonDeg, s.AltM)
}

// Catalog is a set of stations keyed by lowercase name.
type Catalog struct {
	byName map[string]Station
}

type catalogFile struct {
	Stations []Station `yaml:"stations"`
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading station catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing station catalog: %w", err)
	}

	byName := make(map[string]Station, len(file.Stations))
	for i, s := range file.Stations {
		if s.Name == "" {
			return nil, fmt.Errorf("station %d: missing name", i)
		}
		if s.LatDeg < -90 || s.LatDeg > 90 {
			return nil, fmt.Errorf("station %q: latitude %.4f out of range", s.Name, s.LatDeg)
		}
		if s.LonDeg < -180 || s.LonDeg > 180 {
			return nil, fmt.Errorf("station %q: longitude %.4f out of range", s.Name, s.LonDeg)
		}
		key := strings.ToLower(s.Name)
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("station %q: duplicate name", s.Name)
		}
		byName[key] = s
	}

	return &Catalog{byName: byName}, nil
}

// Lookup finds a station by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Station, bool) {
	s, ok := c.byName[strings.ToLower(name)]
	return s, ok
}

// All returns every station sorted by name.
func (c *Catalog) All() []Station {
	stations := make([]Station, 0, len(c.byName))
	for _, s := range c.byName {
		stations = append(stations, s)
	}
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].Name < stations[j].Name
	})
	return stations
}

// Len returns the number of stations in the catalog.
func (c *Catalog) Len() int {
	return len(c.byName)
}
