// Package directory loads the read-only facility directory.
package directory

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
	"gopkg.in/yaml.v3"
)

//go:embed directory.yaml
var defaultDirectory []byte

type fileFacility struct {
	Name      string  `yaml:"name"`
	Lat       float64 `yaml:"lat"`
	Lng       float64 `yaml:"lng"`
	Emergency string  `yaml:"emergency"`
	BloodBank string  `yaml:"blood_bank"`
}

type fileDirectory struct {
	Regions yaml.Node `yaml:"regions"`
}

// Directory is an immutable FacilityDirectory. Regions and facilities keep
// the order of the source file.
type Directory struct {
	regions  []string
	byRegion map[string][]entities.Facility
	all      []entities.Facility
	version  string
}

var _ repositories.FacilityDirectory = (*Directory)(nil)

// Load reads the directory at path, or the embedded default when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Parse(defaultDirectory)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facility directory: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded directory.
func Default() (*Directory, error) {
	return Parse(defaultDirectory)
}

// Parse decodes a YAML directory document.
func Parse(data []byte) (*Directory, error) {
	var doc fileDirectory
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode facility directory: %w", err)
	}
	if doc.Regions.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("facility directory: regions must be a mapping")
	}

	d := &Directory{byRegion: make(map[string][]entities.Facility)}
	for i := 0; i+1 < len(doc.Regions.Content); i += 2 {
		region := entities.NormalizeRegion(doc.Regions.Content[i].Value)

		var rows []fileFacility
		if err := doc.Regions.Content[i+1].Decode(&rows); err != nil {
			return nil, fmt.Errorf("facility directory: region %q: %w", region, err)
		}

		facilities := make([]entities.Facility, 0, len(rows))
		for _, row := range rows {
			facilities = append(facilities, entities.Facility{
				Name:             strings.TrimSpace(row.Name),
				Region:           region,
				Location:         geo.Point{Latitude: row.Lat, Longitude: row.Lng},
				EmergencyContact: strings.TrimSpace(row.Emergency),
				SecondaryContact: strings.TrimSpace(row.BloodBank),
			})
		}
		if err := d.add(region, facilities); err != nil {
			return nil, err
		}
	}

	return d.seal()
}

// New builds a directory from facilities already grouped by region.
// regions fixes the iteration order.
func New(regions []string, byRegion map[string][]entities.Facility) (*Directory, error) {
	d := &Directory{byRegion: make(map[string][]entities.Facility)}
	for _, r := range regions {
		region := entities.NormalizeRegion(r)
		facilities := make([]entities.Facility, len(byRegion[r]))
		for i, f := range byRegion[r] {
			f.Region = region
			facilities[i] = f
		}
		if err := d.add(region, facilities); err != nil {
			return nil, err
		}
	}
	return d.seal()
}

func (d *Directory) seal() (*Directory, error) {
	if len(d.all) == 0 {
		return nil, fmt.Errorf("facility directory is empty")
	}

	h := sha256.New()
	for _, f := range d.all {
		fmt.Fprintf(h, "%s|%s|%.6f|%.6f|%s|%s\n",
			f.Region, f.Name, f.Location.Latitude, f.Location.Longitude, f.EmergencyContact, f.SecondaryContact)
	}
	d.version = hex.EncodeToString(h.Sum(nil))[:12]
	return d, nil
}

// Version fingerprints the directory contents. Two directories with the
// same facilities in the same order share a version.
func (d *Directory) Version() string {
	return d.version
}

func (d *Directory) add(region string, facilities []entities.Facility) error {
	if region == "" {
		return fmt.Errorf("facility directory: empty region name")
	}
	if _, dup := d.byRegion[region]; dup {
		return fmt.Errorf("facility directory: duplicate region %q", region)
	}
	if len(facilities) == 0 {
		return fmt.Errorf("facility directory: region %q has no facilities", region)
	}

	seen := make(map[string]struct{}, len(facilities))
	for _, f := range facilities {
		if err := validateFacility(f); err != nil {
			return fmt.Errorf("facility directory: region %q: %w", region, err)
		}
		key := strings.ToLower(f.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("facility directory: region %q: duplicate facility %q", region, f.Name)
		}
		seen[key] = struct{}{}
	}

	d.regions = append(d.regions, region)
	d.byRegion[region] = facilities
	d.all = append(d.all, facilities...)
	return nil
}

func validateFacility(f entities.Facility) error {
	switch {
	case f.Name == "":
		return fmt.Errorf("facility without a name")
	case f.Location.Latitude < -90 || f.Location.Latitude > 90:
		return fmt.Errorf("facility %q: latitude %v out of range", f.Name, f.Location.Latitude)
	case f.Location.Longitude < -180 || f.Location.Longitude > 180:
		return fmt.Errorf("facility %q: longitude %v out of range", f.Name, f.Location.Longitude)
	case f.EmergencyContact == "" || f.SecondaryContact == "":
		return fmt.Errorf("facility %q: both contact numbers are required", f.Name)
	}
	return nil
}

// Regions returns region names in directory order
func (d *Directory) Regions() []string {
	out := make([]string, len(d.regions))
	copy(out, d.regions)
	return out
}

// HasRegion reports whether region exists
func (d *Directory) HasRegion(region string) bool {
	_, ok := d.byRegion[entities.NormalizeRegion(region)]
	return ok
}

// InRegion returns a copy of the region's facilities
func (d *Directory) InRegion(region string) []entities.Facility {
	facilities := d.byRegion[entities.NormalizeRegion(region)]
	out := make([]entities.Facility, len(facilities))
	copy(out, facilities)
	return out
}

// All returns a copy of every facility
func (d *Directory) All() []entities.Facility {
	out := make([]entities.Facility, len(d.all))
	copy(out, d.all)
	return out
}

// Count returns the number of facilities
func (d *Directory) Count() int {
	return len(d.all)
}
