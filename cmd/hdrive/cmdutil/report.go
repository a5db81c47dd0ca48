package cmdutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/batch"
	"github.com/marmos91/hdrive/pkg/catalog"
)

// placeholder stands in for an asset that did not load.
const placeholder = "-"

// IconReport describes one asset key of a record.
type IconReport struct {
	Key    string `json:"key" yaml:"key"`
	State  string `json:"state" yaml:"state"`
	Media  string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

func (i IconReport) cell() string {
	if i.State != asset.Loaded.String() {
		return placeholder
	}
	if i.Width > 0 {
		return fmt.Sprintf("%dx%d", i.Width, i.Height)
	}
	return i.Media
}

// IngredientReport is one ingredient line.
type IngredientReport struct {
	Nb   float64    `json:"nb" yaml:"nb"`
	Icon IconReport `json:"icon" yaml:"icon"`
}

// RecordReport is one record of a batch.
type RecordReport struct {
	Index   int                `json:"index" yaml:"index"`
	Name    string             `json:"name" yaml:"name"`
	Product IconReport         `json:"product" yaml:"product"`
	Input   []IngredientReport `json:"input" yaml:"input"`
	Rate    float64            `json:"rate" yaml:"rate"`
	Marked  bool               `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// BatchReport renders a batch as a table or structured document.
type BatchReport struct {
	ID         string         `json:"id" yaml:"id"`
	Generation uint64         `json:"generation,omitempty" yaml:"generation,omitempty"`
	Records    []RecordReport `json:"records" yaml:"records"`
}

func iconReport(cache *asset.Cache, key asset.Key) IconReport {
	ir := IconReport{Key: string(key), State: cache.State(key).String()}
	if a, ok := cache.Get(key); ok {
		ir.Media = a.MediaType
		ir.Width = a.Width
		ir.Height = a.Height
	}
	return ir
}

// NewBatchReport reads asset states from cache without loading anything.
// selected is -1 when nothing is selected.
func NewBatchReport(b *batch.Batch, gen uint64, cache *asset.Cache, selected int) *BatchReport {
	r := &BatchReport{ID: b.ID.String(), Generation: gen}
	for i, rec := range b.Records {
		r.Records = append(r.Records, recordReport(i, rec, cache, i == selected))
	}
	return r
}

func recordReport(i int, rec catalog.Record, cache *asset.Cache, marked bool) RecordReport {
	rr := RecordReport{
		Index:   i,
		Name:    rec.Name,
		Product: iconReport(cache, rec.Product),
		Rate:    rec.Rate,
		Marked:  marked,
	}
	for _, in := range rec.Input {
		rr.Input = append(rr.Input, IngredientReport{Nb: in.Nb, Icon: iconReport(cache, in.Name)})
	}
	return rr
}

// Headers implements output.TableRenderer.
func (r *BatchReport) Headers() []string {
	return []string{"#", "Recipe", "Product", "Icon", "Input", "Rate"}
}

// Rows implements output.TableRenderer.
func (r *BatchReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		idx := strconv.Itoa(rec.Index + 1)
		if rec.Marked {
			idx = "*" + idx
		}
		rows = append(rows, []string{
			idx,
			rec.Name,
			rec.Product.Key,
			rec.Product.cell(),
			formatInput(rec.Input),
			formatNumber(rec.Rate) + "/s",
		})
	}
	return rows
}

// Summary is a one-line description used by prompts.
func (rec RecordReport) Summary() string {
	return fmt.Sprintf("%s  <-  %s", rec.Name, formatInput(rec.Input))
}

func formatInput(in []IngredientReport) string {
	parts := make([]string, 0, len(in))
	for _, ing := range in {
		s := formatNumber(ing.Nb) + " x " + ing.Icon.Key
		if ing.Icon.State != asset.Loaded.String() {
			s += " [" + placeholder + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
