// Package track loads race tracks: the map catalogue and the raster surface
// the cars drive on.
package track

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// ErrNoMaps is returned when a catalogue file lists no maps.
var ErrNoMaps = errors.New("track: no maps in catalogue")

// MapInfo is one catalogue line: mapFile;carWidth;carHeight;startX;startY.
type MapInfo struct {
	File      string `csv:"file"`
	CarWidth  int    `csv:"car_width"`
	CarHeight int    `csv:"car_height"`
	StartX    int    `csv:"start_x"`
	StartY    int    `csv:"start_y"`
}

// ParseInfo reads a headerless, ';'-separated catalogue.
func ParseInfo(r io.Reader) ([]MapInfo, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	var maps []MapInfo
	if err := gocsv.UnmarshalCSVWithoutHeaders(reader, &maps); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, ErrNoMaps
		}
		return nil, fmt.Errorf("parsing map catalogue: %w", err)
	}
	if len(maps) == 0 {
		return nil, ErrNoMaps
	}
	for i, m := range maps {
		if m.File == "" {
			return nil, fmt.Errorf("map %d: empty file name", i)
		}
		if m.CarWidth <= 0 || m.CarHeight <= 0 {
			return nil, fmt.Errorf("map %d (%s): car size must be positive, got %dx%d", i, m.File, m.CarWidth, m.CarHeight)
		}
	}
	return maps, nil
}

// LoadInfo reads the catalogue file at path.
func LoadInfo(path string) ([]MapInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map catalogue: %w", err)
	}
	defer f.Close()

	return ParseInfo(f)
}

// Catalog cycles through the maps of a catalogue.
type Catalog struct {
	maps  []MapInfo
	index int
}

// NewCatalog creates a catalogue positioned at start (wrapped into range).
func NewCatalog(maps []MapInfo, start int) (*Catalog, error) {
	if len(maps) == 0 {
		return nil, ErrNoMaps
	}
	c := &Catalog{maps: maps}
	c.index = ((start % len(maps)) + len(maps)) % len(maps)
	return c, nil
}

// Current returns the selected map.
func (c *Catalog) Current() MapInfo {
	return c.maps[c.index]
}

// Index returns the selected map index.
func (c *Catalog) Index() int {
	return c.index
}

// Len returns the number of maps.
func (c *Catalog) Len() int {
	return len(c.maps)
}

// Next advances to the following map, wrapping at the end, and returns it.
func (c *Catalog) Next() MapInfo {
	c.index = (c.index + 1) % len(c.maps)
	return c.maps[c.index]
}

// ResolvePath locates a catalogue map file. Relative names are tried against
// the working directory first, then against baseDir (the catalogue's directory).
func ResolvePath(baseDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(baseDir, name)
}
