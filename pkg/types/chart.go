// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ChartShape identifies the structural template a text blob must satisfy
// to be usable as chart-ready data.
type ChartShape string

const (
	// ShapeCategorical compares numeric values across labeled categories (bar chart).
	ShapeCategorical ChartShape = "bar"

	// ShapeTimeSeries tracks a value across ordered time points (line chart).
	ShapeTimeSeries ChartShape = "line"

	// ShapePartOfWhole splits a whole into percentage parts (pie chart).
	ShapePartOfWhole ChartShape = "pie"
)

// AllChartShapes lists the shapes in their canonical extraction order.
var AllChartShapes = []ChartShape{ShapeCategorical, ShapeTimeSeries, ShapePartOfWhole}

// ExtractionSlot holds the extraction outcome for one chart shape of one topic.
// A slot is mutated only by its own extraction loop and is terminal when
// Valid is true or Attempts reaches the configured ceiling. On exhaustion
// BestText is replaced by the fallback canned value and Valid is forced true:
// a degraded success, not an error.
type ExtractionSlot struct {
	Shape    ChartShape `json:"shape" yaml:"shape"`
	BestText string     `json:"best_text" yaml:"best_text"`
	Valid    bool       `json:"valid" yaml:"valid"`

	// Attempts counts completed search-extract-validate rounds.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Degraded reports that BestText is fallback data rather than extracted
	// data, so downstream consumers know the values are synthetic.
	Degraded bool `json:"degraded" yaml:"degraded"`
}

// ChartDataSet groups the three extraction slots produced for one topic.
type ChartDataSet struct {
	Topic       string           `json:"topic" yaml:"topic"`
	Slots       []ExtractionSlot `json:"slots" yaml:"slots"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
}

// Slot returns the slot for the given shape, or nil if absent.
func (d *ChartDataSet) Slot(shape ChartShape) *ExtractionSlot {
	for i := range d.Slots {
		if d.Slots[i].Shape == shape {
			return &d.Slots[i]
		}
	}
	return nil
}
