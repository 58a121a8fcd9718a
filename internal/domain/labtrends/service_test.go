package labtrends

import (
	"context"
	"testing"
	"time"

	"petrecord/internal/adapters/storage/memory"
	"petrecord/internal/domain/records"
)

func addPanel(t *testing.T, repo records.Repository, petID string, date time.Time, panel string, values []records.LabValue) {
	t.Helper()
	if err := repo.AddLabResult(context.Background(), records.LabResult{
		ID:             panel + date.Format("20060102"),
		PetID:          petID,
		PanelName:      panel,
		CollectionDate: date,
		Results:        values,
	}); err != nil {
		t.Fatalf("add lab result: %v", err)
	}
}

func TestComputeTrendsEmpty(t *testing.T) {
	svc := NewService(memory.NewRecordsRepo())

	report, err := svc.ComputeTrends(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if report.TotalTests != 0 || report.TotalDataPoints != 0 {
		t.Fatalf("expected empty totals, got %+v", report)
	}
	if report.Trends == nil || len(report.Trends) != 0 {
		t.Fatalf("expected empty (non-nil) trends slice, got %+v", report.Trends)
	}
	if report.DateRange != nil {
		t.Fatalf("expected nil date range, got %+v", report.DateRange)
	}
}

func TestComputeTrendsNormalizesSynonyms(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	// El mismo analito con tres nombres distintos tiene que terminar en
	// una sola serie.
	addPanel(t, repo, petID, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "Chem A", []records.LabValue{
		{Test: "ALT", Value: "60", Unit: "U/L"},
	})
	addPanel(t, repo, petID, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "Chem B", []records.LabValue{
		{Test: "alt (sgpt)", Value: "70", Unit: "U/L"},
	})
	addPanel(t, repo, petID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "Chem C", []records.LabValue{
		{Test: "SGPT", Value: "80", Unit: "U/L"},
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(report.Trends))
	}
	trend := report.Trends[0]
	if trend.Name != "ALT" {
		t.Fatalf("expected canonical name ALT, got %q", trend.Name)
	}
	if len(trend.DataPoints) != 3 {
		t.Fatalf("expected 3 data points, got %d", len(trend.DataPoints))
	}
	// puntos ordenados por fecha ascendente
	for i := 1; i < len(trend.DataPoints); i++ {
		if trend.DataPoints[i].Date.Before(trend.DataPoints[i-1].Date) {
			t.Fatalf("data points not sorted ascending")
		}
	}
	if report.TotalTests != 3 || report.TotalDataPoints != 3 {
		t.Fatalf("unexpected totals: %+v", report)
	}
}

func TestComputeTrendsFlagsInclusiveBoundaries(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	// BUN rango 7-27: los bordes exactos son normales.
	addPanel(t, repo, petID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "BUN", Value: "7", Unit: "mg/dL"},
	})
	addPanel(t, repo, petID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "BUN", Value: "27", Unit: "mg/dL"},
	})
	addPanel(t, repo, petID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "BUN", Value: "6.9", Unit: "mg/dL"},
	})
	addPanel(t, repo, petID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "BUN", Value: "27.1", Unit: "mg/dL"},
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(report.Trends))
	}

	// Dentro del rango (bordes incluidos) el flag queda vacío, que es lo
	// que el front interpreta como "sin anormalidad".
	wantFlags := []string{"", "", "low", "high"}
	points := report.Trends[0].DataPoints
	if len(points) != len(wantFlags) {
		t.Fatalf("expected %d points, got %d", len(wantFlags), len(points))
	}
	for i, want := range wantFlags {
		if points[i].Flag != want {
			t.Fatalf("point %d: expected flag %q, got %q (value %v)", i, want, points[i].Flag, points[i].Value)
		}
	}
	ref := report.Trends[0].ReferenceRange
	if ref == nil || ref.Min != 7 || ref.Max != 27 {
		t.Fatalf("expected reference range {7 27}, got %+v", ref)
	}
}

func TestComputeTrendsSkipsNonNumericValues(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	addPanel(t, repo, petID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "Glucose", Value: "pending", Unit: "mg/dL"},
		{Test: "Glucose", Value: "<80", Unit: "mg/dL"},
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("expected only glucose trend, got %d", len(report.Trends))
	}
	if report.TotalDataPoints != 1 {
		t.Fatalf("expected 1 data point, got %d", report.TotalDataPoints)
	}
	if report.Trends[0].DataPoints[0].Value != 80 {
		t.Fatalf("expected <80 parsed as 80, got %v", report.Trends[0].DataPoints[0].Value)
	}
}

func TestComputeTrendsUnknownAnalyteGoesToOther(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	// Un analito fuera de la tabla no se pierde: pasa con su nombre tal
	// cual a la categoría Other, sin rango y sin flag.
	addPanel(t, repo, petID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "BUN", Value: "15", Unit: "mg/dL"},
		{Test: "Symmetric Whatever Marker", Value: "12", Unit: "ng/mL"},
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Trends) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(report.Trends))
	}

	// Other ordena al final, después de todas las categorías conocidas
	other := report.Trends[1]
	if other.Category != CategoryOther {
		t.Fatalf("expected category %q, got %q", CategoryOther, other.Category)
	}
	if other.Name != "Symmetric Whatever Marker" {
		t.Fatalf("expected name preserved as-is, got %q", other.Name)
	}
	if other.ReferenceRange != nil {
		t.Fatalf("expected nil reference range for unknown analyte, got %+v", other.ReferenceRange)
	}
	if len(other.DataPoints) != 1 || other.DataPoints[0].Flag != "" {
		t.Fatalf("expected 1 unflagged point, got %+v", other.DataPoints)
	}
	if other.Unit != "ng/mL" {
		t.Fatalf("expected reported unit, got %q", other.Unit)
	}
	if report.TotalDataPoints != 2 {
		t.Fatalf("expected 2 data points, got %d", report.TotalDataPoints)
	}
}

func TestComputeTrendsCategoryOrder(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	// Insertamos en orden inverso al de display para verificar el sort.
	addPanel(t, repo, petID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Panel", []records.LabValue{
		{Test: "Albumin", Value: "3.1", Unit: "g/dL"},     // Protein
		{Test: "T4", Value: "2.2", Unit: "µg/dL"},         // Thyroid
		{Test: "WBC", Value: "9.4", Unit: "10³/µL"},       // CBC
		{Test: "ALT", Value: "55", Unit: "U/L"},           // Liver
		{Test: "Creatinine", Value: "1.1", Unit: "mg/dL"}, // Kidney
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	wantOrder := []string{"Kidney", "Liver", "CBC", "Thyroid", "Protein"}
	if len(report.Trends) != len(wantOrder) {
		t.Fatalf("expected %d trends, got %d", len(wantOrder), len(report.Trends))
	}
	for i, want := range wantOrder {
		if report.Trends[i].Category != want {
			t.Fatalf("trend %d: expected category %q, got %q", i, want, report.Trends[i].Category)
		}
	}
}

func TestComputeTrendsUnitFromMostRecent(t *testing.T) {
	repo := memory.NewRecordsRepo()
	svc := NewService(repo)
	petID := "pet-1"

	addPanel(t, repo, petID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "Glucose", Value: "90", Unit: "mg/dL"},
	})
	addPanel(t, repo, petID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Chem", []records.LabValue{
		{Test: "Glucose", Value: "5.1", Unit: "mmol/L"},
	})

	report, err := svc.ComputeTrends(context.Background(), petID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(report.Trends))
	}
	if report.Trends[0].Unit != "mmol/L" {
		t.Fatalf("expected unit of most recent observation, got %q", report.Trends[0].Unit)
	}
}
