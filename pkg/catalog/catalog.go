// Package catalog holds the fixed set of reward records a session samples from.
//
// A catalog is parsed once at startup from the JSON produced by the recipe
// scraper and is immutable afterwards.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/sampler"
)

var (
	// ErrEmptyCatalog is returned when the catalog holds no records.
	ErrEmptyCatalog = errors.New("catalog has no records")

	// ErrInvalidRecord is returned when a record is missing required fields.
	ErrInvalidRecord = errors.New("invalid record")
)

// Ingredient is one input of a record: an asset key and the quantity consumed.
type Ingredient struct {
	Name asset.Key `json:"name" yaml:"name"`
	Nb   float64   `json:"nb" yaml:"nb"`
}

// Record is an alternate recipe: a named product built from ordered ingredients.
type Record struct {
	Name    string       `json:"name" yaml:"name"`
	Product asset.Key    `json:"product" yaml:"product"`
	Input   []Ingredient `json:"input" yaml:"input"`
	Rate    float64      `json:"rate" yaml:"rate"`
}

// Keys returns the asset keys the record references: product first, then
// ingredients in record order.
func (r Record) Keys() []asset.Key {
	keys := make([]asset.Key, 0, len(r.Input)+1)
	keys = append(keys, r.Product)
	for _, in := range r.Input {
		keys = append(keys, in.Name)
	}
	return keys
}

// Clone returns a deep copy so batches never alias catalog memory.
func (r Record) Clone() Record {
	c := r
	c.Input = append([]Ingredient(nil), r.Input...)
	return c
}

// Catalog is an ordered, immutable sequence of records plus the locators of
// the assets they reference.
type Catalog struct {
	records  []Record
	locators map[asset.Key]string
}

type document struct {
	Recipes []Record          `json:"recipes"`
	Assets  map[string]string `json:"assets"`
}

// New builds a catalog from records and explicit locator overrides.
func New(records []Record, locators map[asset.Key]string) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" || r.Product == "" {
			return nil, fmt.Errorf("%w: record %d needs a name and a product", ErrInvalidRecord, i)
		}
		for j, in := range r.Input {
			if in.Name == "" {
				return nil, fmt.Errorf("%w: record %q ingredient %d has no name", ErrInvalidRecord, r.Name, j)
			}
		}
	}

	c := &Catalog{
		records:  make([]Record, len(records)),
		locators: make(map[asset.Key]string, len(locators)),
	}
	for i, r := range records {
		c.records[i] = r.Clone()
	}
	for k, v := range locators {
		c.locators[k] = v
	}
	return c, nil
}

// Parse decodes either a bare array of recipes or an object with "recipes"
// and an optional "assets" locator map.
func Parse(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyCatalog
	}

	var doc document
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Recipes); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	locators := make(map[asset.Key]string, len(doc.Assets))
	for k, v := range doc.Assets {
		locators[asset.Key(k)] = v
	}
	return New(doc.Recipes, locators)
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Record returns a copy of the record at index i.
func (c *Catalog) Record(i int) Record { return c.records[i].Clone() }

// Records returns copies of all records in catalog order.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Keys lists every distinct asset key in first-appearance order.
func (c *Catalog) Keys() []asset.Key {
	seen := make(map[asset.Key]struct{})
	var keys []asset.Key
	for _, r := range c.records {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// Locator implements asset.Resolver. Explicit entries win; otherwise spaces
// become underscores and ".png" is appended.
func (c *Catalog) Locator(key asset.Key) string {
	if loc, ok := c.locators[key]; ok {
		return loc
	}
	return DefaultLocator(key)
}

// DefaultLocator derives the image file name for an item.
func DefaultLocator(key asset.Key) string {
	return strings.ReplaceAll(string(key), " ", "_") + ".png"
}

// CheckBatchSize reports whether batches of k distinct records can be drawn.
func (c *Catalog) CheckBatchSize(k int) error {
	return sampler.Check(c.Len(), k)
}

var _ asset.Resolver = (*Catalog)(nil)
