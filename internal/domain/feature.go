package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// ParseRawEvent decodes a source message holding one USGS GeoJSON feature.
func ParseRawEvent(raw RawEvent) (EarthquakeRecord, error) {
	return ParseFeature(raw.Value)
}

// ParseFeature decodes a single USGS GeoJSON feature. Absent properties
// degrade to zero values; a missing properties object is an error.
func ParseFeature(data []byte) (EarthquakeRecord, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return EarthquakeRecord{}, fmt.Errorf("parse feature: %w", err)
	}
	rec, err := recordFromFeature(v)
	if err != nil {
		return EarthquakeRecord{}, fmt.Errorf("parse feature: %w", err)
	}
	return rec, nil
}

// ParseFeatureCollection decodes a USGS GeoJSON FeatureCollection, keeping
// feature order.
func ParseFeatureCollection(data []byte) ([]EarthquakeRecord, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	features := v.Get("features")
	if features == nil || features.Type() != fastjson.TypeArray {
		return nil, errors.New("parse feature collection: missing features array")
	}

	items := features.GetArray()
	records := make([]EarthquakeRecord, 0, len(items))
	for i, item := range items {
		rec, err := recordFromFeature(item)
		if err != nil {
			return nil, fmt.Errorf("parse feature collection: feature %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromFeature(v *fastjson.Value) (EarthquakeRecord, error) {
	props := v.Get("properties")
	if props == nil || props.Type() != fastjson.TypeObject {
		return EarthquakeRecord{}, errors.New("missing properties object")
	}

	rec := EarthquakeRecord{
		ID:           string(v.GetStringBytes("id")),
		Magnitude:    props.GetFloat64("mag"),
		Location:     string(props.GetStringBytes("place")),
		TimeInMillis: props.GetInt64("time"),
	}
	if rec.ID == "" {
		rec.ID = recordID(rec)
	}
	return rec, nil
}

// recordID derives a stable key for features that arrive without an id, so
// replaying the same feature produces the same key downstream.
func recordID(rec EarthquakeRecord) string {
	name := fmt.Sprintf("%g|%s|%d", rec.Magnitude, rec.Location, rec.TimeInMillis)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
