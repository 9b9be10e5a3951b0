package v1

import "fmt"

// Dimension is one of the four device attributes popularity is computed over.
type Dimension string

const (
	DimensionModel   Dimension = "model"
	DimensionVersion Dimension = "version"
	DimensionCountry Dimension = "country"
	DimensionCarrier Dimension = "carrier"
)

// Dimensions lists every supported dimension in display order.
var Dimensions = []Dimension{
	DimensionModel,
	DimensionVersion,
	DimensionCountry,
	DimensionCarrier,
}

// dimensionColumns maps each dimension to its device_states column.
var dimensionColumns = map[Dimension]string{
	DimensionModel:   "model",
	DimensionVersion: "version",
	DimensionCountry: "country",
	DimensionCarrier: "carrier",
}

// detailColumns is the pair of breakdowns shown on a dimension's detail page.
var detailColumns = map[Dimension][2]Dimension{
	DimensionModel:   {DimensionVersion, DimensionCountry},
	DimensionCarrier: {DimensionModel, DimensionCountry},
	DimensionVersion: {DimensionModel, DimensionCountry},
	DimensionCountry: {DimensionModel, DimensionCarrier},
}

// ParseDimension converts a public field name into a Dimension.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if _, ok := dimensionColumns[d]; !ok {
		return "", fmt.Errorf("unknown dimension %q", s)
	}
	return d, nil
}

// Valid reports whether d is a supported dimension.
func (d Dimension) Valid() bool {
	_, ok := dimensionColumns[d]
	return ok
}

// Column returns the storage column backing d. Callers must only pass
// valid dimensions; the column name is interpolated into SQL.
func (d Dimension) Column() string {
	return dimensionColumns[d]
}

// Others returns every dimension except d, in display order.
func (d Dimension) Others() []Dimension {
	others := make([]Dimension, 0, len(Dimensions)-1)
	for _, o := range Dimensions {
		if o != d {
			others = append(others, o)
		}
	}
	return others
}

// DetailColumns returns the two breakdowns rendered on d's detail page.
func (d Dimension) DetailColumns() []Dimension {
	cols, ok := detailColumns[d]
	if !ok {
		return nil
	}
	return cols[:]
}

// Filter restricts an aggregation to devices whose Field equals Value.
type Filter struct {
	Field Dimension `json:"field"`
	Value string    `json:"value"`
}
