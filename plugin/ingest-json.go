package plugin

/*
	JSONSeries

	This plugin allows JSON payloads to be used as the load series.

	Accepts either a bare array of numbers, or an array of objects
	from which a configured key is extracted.
*/

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

type JSONSeriesPlugin struct {
	ValueKey string // dotted path into each object; empty for bare arrays
}

// NewJSONSeriesPlugin returns a decoder for what to search in the JSON
func NewJSONSeriesPlugin(key string) *JSONSeriesPlugin {
	return &JSONSeriesPlugin{ValueKey: key}
}

// Decode extracts the load series from a JSON document.
func (js *JSONSeriesPlugin) Decode(data []byte) ([]float64, error) {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Error("Error unmarshalling json",
			slog.String("search", js.ValueKey),
			slog.Any("error", err))
		return nil, fmt.Errorf("error unmarshalling json series: %v", err)
	}

	series := make([]float64, 0, len(raw))
	for i, entry := range raw {
		v, err := js.extract(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %v", i, err)
		}
		series = append(series, v)
	}
	return series, nil
}

func (js *JSONSeriesPlugin) extract(entry interface{}) (float64, error) {
	if js.ValueKey == "" {
		return toFloat(entry)
	}

	keys := strings.Split(js.ValueKey, ".")
	current := entry

	for _, key := range keys {
		switch v := current.(type) {
		case map[string]interface{}:
			var ok bool
			current, ok = v[key]
			if !ok {
				return 0, fmt.Errorf("key %s not found", key)
			}
		case []interface{}:
			return 0, fmt.Errorf("array indexing not implemented yet")
		default:
			return 0, fmt.Errorf("cannot traverse into type %T at key %s", v, key)
		}
	}
	return toFloat(current)
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("error converting json.Number: %v", err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value not numeric, cannot use %T", v)
	}
}

func (js *JSONSeriesPlugin) Type() string { return "json_series" }
