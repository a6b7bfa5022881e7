package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carsensor/config"
	"carsensor/internal/properties"
	"carsensor/internal/report"
	"carsensor/internal/workbook"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubRepository struct {
	authErr    error
	files      map[string][]byte
	downloaded []string
}

func (r *stubRepository) Authenticate(ctx context.Context) error {
	return r.authErr
}

func (r *stubRepository) Workbook(ctx context.Context, fileId string) ([]byte, error) {
	r.downloaded = append(r.downloaded, fileId)
	if b, ok := r.files[fileId]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func propertiesWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Properties")
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Properties", cell, &row); err != nil {
			t.Fatalf("Failed to set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func newTestWorker(repo properties.Repository, cars ...config.Car) *Worker {
	service := properties.NewServiceProperties(zap.NewNop(), repo, workbook.DefaultOptions())
	w := NewWorker(zap.NewNop(), service, config.Config{Cars: cars})
	w.now = func() time.Time {
		return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.Local)
	}
	return w
}

func TestProcessAllCars(t *testing.T) {
	repo := &stubRepository{files: map[string][]byte{
		"1111": propertiesWorkbook(t, []any{"Key", "Value"}, []any{"make", "Tesla"}, []any{"year", 2021}),
		"2222": propertiesWorkbook(t, []any{"Key", "Value"}, []any{"make", "Hyundai"}),
	}}

	w := newTestWorker(repo,
		config.Car{Name: "ioniq", FileId: "2222"},
		config.Car{Name: "model3", FileId: "1111"})

	results, err := w.ProcessAllCars(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error returned from ProcessAllCars (%v)", err)
	}

	if results[report.RefreshKey] != "2024-05-01T09:30:00" {
		t.Errorf("Incorrect refresh timestamp %v", results[report.RefreshKey])
	}

	model3, ok := results["model3"].(workbook.Properties)
	if !ok || model3["make"] != "Tesla" || model3["year"] != int64(2021) {
		t.Errorf("Incorrect model3 properties %v", results["model3"])
	}

	ioniq, ok := results["ioniq"].(workbook.Properties)
	if !ok || ioniq["make"] != "Hyundai" {
		t.Errorf("Incorrect ioniq properties %v", results["ioniq"])
	}
}

func TestProcessAllCarsAbortsOnFirstFailure(t *testing.T) {
	repo := &stubRepository{files: map[string][]byte{
		"1111": []byte("not a workbook"),
		"2222": propertiesWorkbook(t, []any{"Key", "Value"}, []any{"make", "Hyundai"}),
	}}

	w := newTestWorker(repo,
		config.Car{Name: "model3", FileId: "1111"},
		config.Car{Name: "ioniq", FileId: "2222"})

	if _, err := w.ProcessAllCars(context.Background()); err == nil {
		t.Fatalf("Expected error for unparseable workbook")
	}

	if len(repo.downloaded) != 1 || repo.downloaded[0] != "1111" {
		t.Errorf("Expected processing to stop after the first file, downloaded %v", repo.downloaded)
	}
}

func TestProcessAllCarsAuthenticationFailure(t *testing.T) {
	repo := &stubRepository{authErr: errors.New("invalid_client")}

	w := newTestWorker(repo, config.Car{Name: "model3", FileId: "1111"})

	if _, err := w.ProcessAllCars(context.Background()); err == nil {
		t.Fatalf("Expected authentication error")
	}
	if len(repo.downloaded) != 0 {
		t.Errorf("Expected no downloads after failed authentication, downloaded %v", repo.downloaded)
	}
}

func TestProcessAllCarsLogging(t *testing.T) {
	repo := &stubRepository{files: map[string][]byte{
		"1111": propertiesWorkbook(t, []any{"Key", "Value"}, []any{"make", "Tesla"}),
	}}

	core, logs := observer.New(zapcore.DebugLevel)
	service := properties.NewServiceProperties(zap.New(core), repo, workbook.DefaultOptions())
	w := NewWorker(zap.New(core), service, config.Config{Cars: []config.Car{
		{Name: "model3", FileId: "1111"},
		{Name: "ioniq", FileId: "2222"},
	}})

	_, err := w.ProcessAllCars(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ioniq (file 2222)") {
		t.Fatalf("Expected error naming the failed car, got %v", err)
	}

	processing := logs.FilterMessage("Processing car file").All()
	if len(processing) != 2 {
		t.Fatalf("Expected 2 processing entries, got %d", len(processing))
	}
	fields := processing[0].ContextMap()
	if fields["name"] != "model3" || fields["fileId"] != "1111" {
		t.Errorf("Incorrect processing fields %v", fields)
	}

	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Errorf("Expected the returned error not to be logged as well, got %d error entries", n)
	}
}

func TestProcessAllCarsReservedName(t *testing.T) {
	w := newTestWorker(&stubRepository{}, config.Car{Name: report.RefreshKey, FileId: "1111"})

	if _, err := w.ProcessAllCars(context.Background()); err == nil {
		t.Fatalf("Expected error for reserved car name")
	}
}

func TestRefresh(t *testing.T) {
	repo := &stubRepository{files: map[string][]byte{
		"1111": propertiesWorkbook(t, []any{"Key", "Value"}, []any{"make", "Tesla"}, []any{"make", "Tesla Inc"}),
	}}
	w := newTestWorker(repo, config.Car{Name: "model3", FileId: "1111"})

	output := filepath.Join(t.TempDir(), "cars.json")
	if err := w.Refresh(context.Background(), output); err != nil {
		t.Fatalf("Unexpected error returned from Refresh (%v)", err)
	}

	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Unable to read output (%v)", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON (%v)", err)
	}

	model3, _ := decoded["model3"].(map[string]any)
	if model3["make"] != "Tesla Inc" {
		t.Errorf("Expected last duplicate value, got %v", model3["make"])
	}
	if decoded[report.RefreshKey] != "2024-05-01T09:30:00" {
		t.Errorf("Incorrect refresh timestamp %v", decoded[report.RefreshKey])
	}
}
