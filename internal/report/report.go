// Package report writes the aggregated workbook properties as JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"carsensor/internal/workbook"
)

const (
	RefreshKey = "last_data_refresh"

	DefaultPath = "cars.json"
)

// Results maps a car name to the properties extracted from its workbook, plus the
// RefreshKey timestamp.
type Results map[string]any

func NewResults(refreshed time.Time) Results {
	return Results{
		RefreshKey: workbook.ISOFormat(refreshed),
	}
}

// UnsupportedValueError is a value with no JSON representation.
type UnsupportedValueError struct {
	Key   string
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("type %T not serializable (key %q)", e.Value, e.Key)
}

// Marshal encodes results with 4 space indentation and sorted keys. Times are written as
// ISO 8601 strings.
func Marshal(results Results) ([]byte, error) {
	v, err := normalise("", map[string]any(results))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Save writes results to path, replacing any existing file only once the new content is
// complete.
func Save(path string, results Results) error {
	b, err := Marshal(results)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".cars-*.json")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(b); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func normalise(key string, v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64:
		return x, nil

	case float32:
		return normalise(key, float64(x))

	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &UnsupportedValueError{Key: key, Value: x}
		}
		return x, nil

	case time.Time:
		return workbook.ISOFormat(x), nil

	case workbook.Properties:
		return normalise(key, map[string]any(x))

	case map[string]any:
		m := make(map[string]any, len(x))
		for k, value := range x {
			n, err := normalise(k, value)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return m, nil

	case []any:
		l := make([]any, 0, len(x))
		for _, value := range x {
			n, err := normalise(key, value)
			if err != nil {
				return nil, err
			}
			l = append(l, n)
		}
		return l, nil

	default:
		return nil, &UnsupportedValueError{Key: key, Value: x}
	}
}
