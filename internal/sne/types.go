package sne

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OptFloat is a numeric field that may be absent. The catalog files store
// numbers both as JSON numbers and as numeric strings; both decode here.
// null and "" decode as not Valid.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float returns an OptFloat holding v.
func Float(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *OptFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = OptFloat{}
		return nil
	}

	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = OptFloat{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(b), err)
	}
	*f = OptFloat{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f OptFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Text is a string field that some files store as a bare number, such as a
// photometry source list "1,2" versus a single source 3.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", string(b))
		}
		*t = Text(n.String())
	}
	return nil
}

// Flag is a loosely typed boolean: JSON booleans, non-zero numbers and
// truthy strings ("true", "1", "yes") all mark the flag set.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			*f = Flag(parsed)
		} else {
			*f = Flag(strings.EqualFold(strings.TrimSpace(x), "yes"))
		}
	default:
		return fmt.Errorf("unsupported flag value %s", string(b))
	}
	return nil
}

// Photometry is one brightness measurement of an object.
//
// Two generations of files exist: newer ones carry magnitude/e_magnitude,
// older ones abmag/aberr. Mag and Err read whichever is present.
type Photometry struct {
	Time       OptFloat `json:"time"`
	TimeUnit   string   `json:"timeunit"`
	Band       string   `json:"band"`
	Instrument string   `json:"instrument"`
	Magnitude  OptFloat `json:"magnitude"`
	EMagnitude OptFloat `json:"e_magnitude"`
	ABMag      OptFloat `json:"abmag"`
	ABErr      OptFloat `json:"aberr"`
	UpperLimit Flag     `json:"upperlimit"`
	Source     Text     `json:"source"`
}

// Mag returns the measured magnitude.
func (p Photometry) Mag() OptFloat {
	if p.Magnitude.Valid {
		return p.Magnitude
	}
	return p.ABMag
}

// Err returns the magnitude uncertainty, if recorded.
func (p Photometry) Err() OptFloat {
	if p.EMagnitude.Valid {
		return p.EMagnitude
	}
	return p.ABErr
}

// SourceIDs returns the comma-separated source aliases, numerically sorted
// where they parse as integers.
func (p Photometry) SourceIDs() []string {
	if p.Source == "" {
		return nil
	}
	parts := strings.Split(string(p.Source), ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	sortNumericStrings(ids)
	return ids
}

// Spectrum is flux measured across wavelength at one epoch. Each data row
// is [wavelength, flux] or [wavelength, flux, error].
type Spectrum struct {
	WaveUnit  string       `json:"waveunit"`
	FluxUnit  string       `json:"fluxunit"`
	ErrorUnit string       `json:"errorunit"`
	Time      OptFloat     `json:"time"`
	Data      [][]OptFloat `json:"data"`
}

// Series splits the data rows into wavelength and flux slices, skipping
// rows that lack either value.
func (s Spectrum) Series() (wave, flux []float64) {
	wave = make([]float64, 0, len(s.Data))
	flux = make([]float64, 0, len(s.Data))
	for _, row := range s.Data {
		if len(row) < 2 || !row[0].Valid || !row[1].Valid {
			continue
		}
		wave = append(wave, row[0].Value)
		flux = append(flux, row[1].Value)
	}
	return wave, flux
}

// Source is a bibliographic attribution for an object's data.
type Source struct {
	Name      string `json:"name"`
	Alias     Text   `json:"alias"`
	Secondary Flag   `json:"secondary"`
}

func sortNumericStrings(ids []string) {
	less := func(a, b string) bool {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		switch {
		case aerr == nil && berr == nil:
			return ai < bi
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return a < b
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
}
