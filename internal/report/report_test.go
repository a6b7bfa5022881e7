package report

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carsensor/internal/workbook"
)

func TestMarshal(t *testing.T) {
	expected := `{
    "ioniq": {
        "make": "Hyundai & Co <Korea>"
    },
    "last_data_refresh": "2024-05-01T09:30:00.250000",
    "model3": {
        "battery_kwh": 82.5,
        "fsd": true,
        "make": "Tesla",
        "notes": null,
        "purchased": "2021-03-14T00:00:00",
        "year": 2021
    }
}
`
	results := NewResults(time.Date(2024, time.May, 1, 9, 30, 0, 250000000, time.Local))
	results["model3"] = workbook.Properties{
		"year":        int64(2021),
		"make":        "Tesla",
		"purchased":   time.Date(2021, time.March, 14, 0, 0, 0, 0, time.UTC),
		"battery_kwh": 82.5,
		"fsd":         true,
		"notes":       nil,
	}
	results["ioniq"] = workbook.Properties{
		"make": "Hyundai & Co <Korea>",
	}

	b, err := Marshal(results)
	if err != nil {
		t.Fatalf("Unexpected error returned from Marshal (%v)", err)
	}

	if string(b) != expected {
		t.Errorf("Incorrect JSON\n   expected: %s\n   got:      %s\n", expected, string(b))
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON (%v)", err)
	}
	if decoded[RefreshKey] != "2024-05-01T09:30:00.250000" {
		t.Errorf("Incorrect %s - expected:%v, got:%v", RefreshKey, "2024-05-01T09:30:00.250000", decoded[RefreshKey])
	}
}

func TestMarshalUnsupportedValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"complex", complex(1, 2)},
		{"struct", struct{ A int }{1}},
		{"NaN", math.NaN()},
		{"Inf", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := NewResults(time.Now())
			results["model3"] = workbook.Properties{"bad": tt.value}

			_, err := Marshal(results)

			var unsupported *UnsupportedValueError
			if !errors.As(err, &unsupported) {
				t.Fatalf("Expected UnsupportedValueError, got %v", err)
			}
			if unsupported.Key != "bad" {
				t.Errorf("Incorrect key - expected:%q, got:%q", "bad", unsupported.Key)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cars.json")

	results := NewResults(time.Date(2024, time.May, 1, 9, 30, 0, 0, time.Local))
	results["model3"] = workbook.Properties{"make": "Tesla"}

	if err := Save(path, results); err != nil {
		t.Fatalf("Unexpected error returned from Save (%v)", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unable to read saved file (%v)", err)
	}

	var decoded struct {
		Refreshed string            `json:"last_data_refresh"`
		Model3    map[string]string `json:"model3"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Saved file is not valid JSON (%v)", err)
	}
	if decoded.Refreshed != "2024-05-01T09:30:00" {
		t.Errorf("Incorrect refresh timestamp %q", decoded.Refreshed)
	}
	if decoded.Model3["make"] != "Tesla" {
		t.Errorf("Incorrect model3 properties %v", decoded.Model3)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Unable to list output directory (%v)", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}

func TestSaveUnsupportedValueLeavesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("Unable to write existing file (%v)", err)
	}

	results := NewResults(time.Now())
	results["model3"] = workbook.Properties{"bad": complex(1, 2)}

	if err := Save(path, results); err == nil {
		t.Fatalf("Expected error saving unsupported value")
	}

	b, _ := os.ReadFile(path)
	if string(b) != "{}" {
		t.Errorf("Existing file was modified: %s", b)
	}
}
