package docintel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"petrecord/internal/platform/httpclient"
	"petrecord/internal/ports/extraction"
)

// roundTripFunc permite stubear el upstream sin levantar un servidor.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newStubClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()

	hc := httpclient.NewWithTransport(5*time.Second, fn)
	hc.BaseURL = "http://docintel.test"
	return &Client{
		http:         hc,
		apiKey:       "test-key",
		apiKeyHeader: "x-api-key",
		model:        "doc-model-1",
	}
}

func textResponse(t *testing.T, text string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	if err != nil {
		t.Fatalf("marshal stub response: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(string(body))),
	}
}

const sampleJSON = `{
  "document_type": "CONSULTATION",
  "date_of_service": "2024-03-15",
  "facility_name": "North Vet Clinic",
  "visit_summary": "Annual checkup",
  "vaccinations": [{"vaccine_name": "Rabies", "administration_date": "2024-03-15"}],
  "weight_kg": "32.5"
}`

func TestExtractDocumentParsesBareJSON(t *testing.T) {
	c := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Fatal("missing api key header")
		}
		return textResponse(t, sampleJSON), nil
	})

	res, err := c.ExtractDocument(context.Background(), []byte("pdf-bytes"), "application/pdf", extraction.PetContext{Name: "Rocky"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.DocumentType != "CONSULTATION" {
		t.Fatalf("expected CONSULTATION, got %q", res.DocumentType)
	}
	if len(res.Vaccinations) != 1 || res.Vaccinations[0].VaccineName != "Rabies" {
		t.Fatalf("unexpected vaccinations: %+v", res.Vaccinations)
	}
	// weight llegó como string y tiene que parsear igual
	if res.WeightKg == nil || res.WeightKg.Float64() != 32.5 {
		t.Fatalf("expected weight 32.5, got %v", res.WeightKg)
	}
}

func TestExtractDocumentParsesFencedJSON(t *testing.T) {
	fenced := "Here is the extracted information:\n\n```json\n" + sampleJSON + "\n```\n"
	c := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return textResponse(t, fenced), nil
	})

	res, err := c.ExtractDocument(context.Background(), []byte("x"), "image/jpeg", extraction.PetContext{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	// La forma cercada y la forma desnuda tienen que dar el mismo resultado.
	bare, err := parseResult(sampleJSON)
	if err != nil {
		t.Fatalf("parse bare: %v", err)
	}
	if res.DocumentType != bare.DocumentType || res.DateOfService != bare.DateOfService {
		t.Fatalf("fenced result differs from bare result: %+v vs %+v", res, bare)
	}
	if len(res.Vaccinations) != len(bare.Vaccinations) {
		t.Fatalf("fenced vaccinations differ: %d vs %d", len(res.Vaccinations), len(bare.Vaccinations))
	}
}

func TestExtractDocumentParseFailure(t *testing.T) {
	c := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return textResponse(t, "I could not read this document, it appears to be blank."), nil
	})

	_, err := c.ExtractDocument(context.Background(), []byte("x"), "image/png", extraction.PetContext{})
	if !errors.Is(err, extraction.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestExtractDocumentUpstreamError(t *testing.T) {
	c := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("upstream broke")),
		}, nil
	})

	_, err := c.ExtractDocument(context.Background(), []byte("x"), "application/pdf", extraction.PetContext{})
	if !errors.Is(err, extraction.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestExtractDocumentEmptyResponse(t *testing.T) {
	c := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return textResponse(t, "   "), nil
	})

	_, err := c.ExtractDocument(context.Background(), []byte("x"), "application/pdf", extraction.PetContext{})
	if !errors.Is(err, extraction.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestExtractDocumentNotConfigured(t *testing.T) {
	c := &Client{}

	_, err := c.ExtractDocument(context.Background(), []byte("x"), "application/pdf", extraction.PetContext{})
	if !errors.Is(err, extraction.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestParseResultNormalizesNulls(t *testing.T) {
	res, err := parseResult(`{"document_type": "LAB", "lab_results": null}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Vaccinations == nil || res.Medications == nil || res.Allergies == nil || res.Conditions == nil {
		t.Fatal("expected empty slices instead of nil")
	}
	if res.LabResults != nil {
		t.Fatalf("expected nil lab results, got %+v", res.LabResults)
	}

	// panel presente pero sin valores se descarta
	res, err = parseResult(`{"lab_results": {"panel_name": "Chem", "results": []}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.LabResults != nil {
		t.Fatal("expected empty panel to be dropped")
	}
}
