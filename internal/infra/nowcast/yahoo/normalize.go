package yahoo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	apperrors "github.com/yanqian/rain-nowcast/pkg/errors"
	"github.com/yanqian/rain-nowcast/pkg/util"
)

// Normalizer converts the provider document into a nowcast.ForecastSnapshot.
type Normalizer struct {
	now   util.Clock
	newID func() string
}

// NewNormalizer returns a normalizer stamping snapshots with the current UTC time.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		now: util.NowUTC,
		newID: func() string {
			return "snp_" + uuid.New().String()
		},
	}
}

type document struct {
	Feature []feature `json:"Feature"`
}

type feature struct {
	Property property `json:"Property"`
}

type property struct {
	WeatherList weatherList  `json:"WeatherList"`
	Weather     []conditions `json:"Weather"`
}

type weatherList struct {
	Weather []rainfallEntry `json:"Weather"`
}

type rainfallEntry struct {
	Type     string     `json:"Type"`
	Date     string     `json:"Date"`
	Rainfall flexNumber `json:"Rainfall"`
}

type conditions struct {
	Temperature flexNumber `json:"Temperature"`
	Humidity    flexNumber `json:"Humidity"`
}

// Normalize parses raw. A missing or empty Feature list yields an empty snapshot.
func (n *Normalizer) Normalize(raw []byte) (nowcast.ForecastSnapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nowcast.ForecastSnapshot{}, apperrors.Wrap(nowcast.CodeParse, "nowcast document must be a json object", nil)
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nowcast.ForecastSnapshot{}, apperrors.Wrap(nowcast.CodeParse, "decode nowcast response", err)
	}

	fetchedAt := n.now()
	if len(doc.Feature) == 0 {
		return nowcast.NewSnapshot(n.newID(), nil, fetchedAt, nil, nil), nil
	}
	prop := doc.Feature[0].Property

	series := prop.WeatherList.Weather
	if len(series) > nowcast.MaxPoints {
		series = series[:nowcast.MaxPoints]
	}
	points := make([]nowcast.ForecastPoint, 0, len(series))
	for i, entry := range series {
		intensity, _, err := entry.Rainfall.Float()
		if err != nil {
			return nowcast.ForecastSnapshot{}, apperrors.Wrap(nowcast.CodeParse, fmt.Sprintf("rainfall at index %d", i), err)
		}
		if intensity < 0 {
			return nowcast.ForecastSnapshot{}, apperrors.Wrap(nowcast.CodeParse, fmt.Sprintf("rainfall at index %d is negative", i), nil)
		}
		points = append(points, nowcast.ForecastPoint{
			OffsetMinutes: i * nowcast.StepMinutes,
			Intensity:     intensity,
		})
	}

	var (
		temperature *float64
		humidity    *int
	)
	if len(prop.Weather) > 0 {
		current := prop.Weather[0]
		if v, ok, err := current.Temperature.Float(); ok && err == nil {
			temperature = &v
		}
		if v, ok, err := current.Humidity.Float(); ok && err == nil && v >= 0 {
			pct := int(math.Round(v))
			humidity = &pct
		}
	}

	return nowcast.NewSnapshot(n.newID(), points, fetchedAt, temperature, humidity), nil
}

var errNotNumeric = errors.New("value is not numeric")

// flexNumber accepts numbers and numeric strings; parsing is deferred so that
// optional fields can be dropped instead of failing the whole document.
type flexNumber struct {
	raw json.RawMessage
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	f.raw = append(f.raw[:0], data...)
	return nil
}

// Float reports the value, whether one was present, and a parse error.
func (f flexNumber) Float() (float64, bool, error) {
	raw := bytes.TrimSpace(f.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, true, err
		}
		text = strings.TrimSpace(text)
	} else if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return 0, true, fmt.Errorf("%w: %s", errNotNumeric, text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q", errNotNumeric, text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%w: %q", errNotNumeric, text)
	}
	return v, true, nil
}

var _ nowcast.Normalizer = (*Normalizer)(nil)
