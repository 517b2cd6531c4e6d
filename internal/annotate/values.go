package annotate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/wikitree/internal/model"
)

// Wikibase property datatypes
const (
	DatatypeItem        = "wikibase-item"
	DatatypeProperty    = "wikibase-property"
	DatatypeString      = "string"
	DatatypeExternalID  = "external-id"
	DatatypeURL         = "url"
	DatatypeMedia       = "commonsMedia"
	DatatypeMonolingual = "monolingualtext"
	DatatypeQuantity    = "quantity"
	DatatypeTime        = "time"
	DatatypeCoordinate  = "globe-coordinate"
)

const (
	gregorianCalendar = "http://www.wikidata.org/entity/Q1985727"
	earthGlobe        = "http://www.wikidata.org/entity/Q2"

	// DefaultCoordinatePrecision applies to coordinates typed by hand
	DefaultCoordinatePrecision = 0.01
)

var numberCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "_", "")

// ParseQuantity reads a plain number such as "491,268" or "-1.5"
func ParseQuantity(text string) (model.QuantityValue, error) {
	amount, err := strconv.ParseFloat(numberCleaner.Replace(strings.TrimSpace(text)), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.QuantityValue{}, fmt.Errorf("not a number: %q", text)
	}
	return model.NewExactQuantity(amount, "1"), nil
}

var dateLayouts = []struct {
	layout    string
	precision int
}{
	{"2006-01-02", model.PrecisionDay},
	{"January 2, 2006", model.PrecisionDay},
	{"January 2 2006", model.PrecisionDay},
	{"2 January 2006", model.PrecisionDay},
	{"Jan 2, 2006", model.PrecisionDay},
	{"2006-01", model.PrecisionMonth},
	{"January 2006", model.PrecisionMonth},
	{"Jan 2006", model.PrecisionMonth},
	{"2006", model.PrecisionYear},
}

// ParseTime reads a date with day, month or year precision and returns it
// in Wikibase notation, e.g. "+1952-03-11T00:00:00Z"
func ParseTime(text string) (model.TimeValue, error) {
	text = strings.TrimSpace(text)
	for _, candidate := range dateLayouts {
		t, err := time.Parse(candidate.layout, text)
		if err != nil {
			continue
		}

		month, day := int(t.Month()), t.Day()
		switch candidate.precision {
		case model.PrecisionYear:
			month, day = 0, 0
		case model.PrecisionMonth:
			day = 0
		}

		return model.TimeValue{
			Time:      fmt.Sprintf("+%04d-%02d-%02dT00:00:00Z", t.Year(), month, day),
			Precision: candidate.precision,
			Calendar:  gregorianCalendar,
		}, nil
	}
	return model.TimeValue{}, fmt.Errorf("not a date: %q", text)
}

// ParseCoordinate reads "latitude,longitude"
func ParseCoordinate(text string) (model.GlobeCoordinateValue, error) {
	latText, lonText, ok := strings.Cut(text, ",")
	if !ok {
		return model.GlobeCoordinateValue{}, fmt.Errorf("not a coordinate: %q", text)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil || lat < -90 || lat > 90 {
		return model.GlobeCoordinateValue{}, fmt.Errorf("bad latitude in %q", text)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil || lon < -180 || lon > 360 {
		return model.GlobeCoordinateValue{}, fmt.Errorf("bad longitude in %q", text)
	}

	return model.GlobeCoordinateValue{
		Latitude:  lat,
		Longitude: lon,
		Precision: DefaultCoordinatePrecision,
		Globe:     earthGlobe,
	}, nil
}
