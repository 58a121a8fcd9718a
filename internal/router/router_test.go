package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petrecord/internal/ports/extraction"
	"petrecord/internal/router"
)

// stubExtractor devuelve siempre el mismo resultado, como si el documento
// subido fuera una ficha de consulta con vacuna, alergia, labs y peso.
type stubExtractor struct{}

func (stubExtractor) ExtractDocument(_ context.Context, _ []byte, _ string, _ extraction.PetContext) (extraction.Result, error) {
	w := extraction.FlexFloat(31.4)
	return extraction.Result{
		DocumentType:  "VET_VISIT",
		DateOfService: "2024-06-10",
		FacilityName:  "Clínica San Martín",
		ProviderName:  "Dr. Paz",
		VisitSummary:  "Control anual, paciente estable.",
		Vaccinations: []extraction.VaccinationEntry{
			{VaccineName: "Rabies", AdministrationDate: "2024-06-10"},
		},
		Allergies: []extraction.AllergyEntry{
			{Allergen: "Chicken", Reaction: "itching", Severity: "mild"},
		},
		LabResults: &extraction.LabPanel{
			PanelName:      "Chemistry",
			CollectionDate: "2024-06-10",
			Results: []extraction.LabValue{
				{Test: "BUN", Value: "35", Unit: "mg/dL"},
				{Test: "ALT", Value: "60", Unit: "U/L"},
			},
		},
		WeightKg: &w,
	}, nil
}

func (stubExtractor) SummarizeTranscript(_ context.Context, _ string, _ extraction.PetContext) (extraction.Result, error) {
	return extraction.Result{}, nil
}

func TestHTTP_EndToEnd_UploadMergeAndShare(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Extractor: stubExtractor{},
		BaseURL:   "https://app.example.com",
	}))
	defer ts.Close()

	ownerID := "owner-1"
	strangerID := "stranger-1"

	// 1) Owner crea mascota
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":    "Rocky",
		"species": "dog",
		"breed":   "Boxer",
		"sex":     "MALE",
	})

	// 2) Otro usuario no puede ver el detalle
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, strangerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for stranger, got %d", st)
		}
	}

	// 3) Upload de documento: extrae y mergea
	{
		st, body := uploadFile(t, ts.URL, ownerID, petID, "visit.pdf", "application/pdf", []byte("%PDF-fake"))
		if st != http.StatusCreated {
			t.Fatalf("expected 201 upload, got %d body=%s", st, string(body))
		}
		var resp struct {
			Document struct {
				ProcessingStatus string `json:"processing_status"`
			} `json:"document"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Document.ProcessingStatus != "completed" {
			t.Fatalf("expected completed document, got %q body=%s", resp.Document.ProcessingStatus, string(body))
		}
	}

	// 4) El detalle refleja lo mergeado
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 pet detail, got %d body=%s", st, string(body))
		}
		var detail struct {
			WeightKg       *float64 `json:"weight_kg"`
			Allergies      []any    `json:"allergies"`
			Vaccinations   []any    `json:"vaccinations"`
			MedicalRecords []any    `json:"medicalRecords"`
			LabResults     []any    `json:"labResults"`
		}
		_ = json.Unmarshal(body, &detail)
		if len(detail.Allergies) != 1 || len(detail.Vaccinations) != 1 {
			t.Fatalf("expected merged allergy and vaccination, body=%s", string(body))
		}
		if len(detail.MedicalRecords) != 1 || len(detail.LabResults) != 1 {
			t.Fatalf("expected merged record and lab panel, body=%s", string(body))
		}
		if detail.WeightKg == nil || *detail.WeightKg != 31.4 {
			t.Fatalf("expected weight cache 31.4, body=%s", string(body))
		}
	}

	// 5) Timeline con record, vacuna y panel
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/timeline", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 timeline, got %d body=%s", st, string(body))
		}
		var events []struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(body, &events)
		if len(events) != 3 {
			t.Fatalf("expected 3 timeline events, got %d body=%s", len(events), string(body))
		}
	}

	// 6) Lab trends agrupados por analito canónico, con flags
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/lab-trends", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 lab trends, got %d body=%s", st, string(body))
		}
		var report struct {
			Trends []struct {
				Name       string `json:"name"`
				DataPoints []struct {
					Flag string `json:"flag"`
				} `json:"dataPoints"`
			} `json:"trends"`
		}
		_ = json.Unmarshal(body, &report)
		if len(report.Trends) != 2 {
			t.Fatalf("expected 2 trends (BUN, ALT), body=%s", string(body))
		}
		// BUN 35 con rango canino 7-27 => high
		var bunFlag string
		for _, tr := range report.Trends {
			if tr.Name == "BUN" && len(tr.DataPoints) == 1 {
				bunFlag = tr.DataPoints[0].Flag
			}
		}
		if bunFlag != "high" {
			t.Fatalf("expected BUN flagged high, body=%s", string(body))
		}
	}

	// 7) Quick share LIMITED: acceso público sin registros médicos
	var tokenID, secret string
	{
		st, body := doReq(t, ts.URL, "POST", "/share/quick-share", ownerID, map[string]any{
			"pet_id":   petID,
			"duration": "24h",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 quick share, got %d body=%s", st, string(body))
		}
		var resp struct {
			Share struct {
				ID string `json:"id"`
			} `json:"share"`
			Token    string `json:"token"`
			ShareURL string `json:"shareUrl"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Share.ID == "" || resp.Token == "" {
			t.Fatalf("quick share missing id/token body=%s", string(body))
		}
		if !strings.Contains(resp.ShareURL, resp.Token) {
			t.Fatalf("share url should embed token, body=%s", string(body))
		}
		tokenID, secret = resp.Share.ID, resp.Token
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/share/access/"+secret, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 shared access, got %d body=%s", st, string(body))
		}
		var view struct {
			Pet struct {
				Name string `json:"name"`
			} `json:"pet"`
			Allergies      []any `json:"allergies"`
			MedicalRecords []any `json:"medicalRecords"`
		}
		_ = json.Unmarshal(body, &view)
		if view.Pet.Name != "Rocky" || len(view.Allergies) != 1 {
			t.Fatalf("shared view incomplete, body=%s", string(body))
		}
		if len(view.MedicalRecords) != 0 {
			t.Fatalf("LIMITED share should not expose medical records, body=%s", string(body))
		}
	}

	// 8) Revoke corta el acceso de inmediato
	{
		st, body := doReq(t, ts.URL, "POST", "/share/"+tokenID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/share/access/"+secret, "", nil)
		if st != http.StatusGone {
			t.Fatalf("expected 410 after revoke, got %d", st)
		}
	}
}

func TestHTTP_UploadWithoutExtractor_QueuesManual(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":    "Luna",
		"species": "cat",
	})

	st, body := uploadFile(t, ts.URL, ownerID, petID, "scan.jpg", "image/jpeg", []byte{0xff, 0xd8})
	if st != http.StatusAccepted {
		t.Fatalf("expected 202 without extractor, got %d body=%s", st, string(body))
	}
	var resp struct {
		Document struct {
			ProcessingStatus string `json:"processing_status"`
		} `json:"document"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Document.ProcessingStatus != "manual" {
		t.Fatalf("expected manual status, got %q", resp.Document.ProcessingStatus)
	}

	// El documento igual quedó listado
	st, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/documents", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list documents, got %d", st)
	}
	var docs []any
	_ = json.Unmarshal(body, &docs)
	if len(docs) != 1 {
		t.Fatalf("expected 1 stored document, got %d", len(docs))
	}
}

func TestHTTP_StatusReportsAIAvailability(t *testing.T) {
	withAI := httptest.NewServer(router.NewRouter(router.Options{Extractor: stubExtractor{}}))
	defer withAI.Close()

	st, body := doReq(t, withAI.URL, "GET", "/status", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"aiEnabled":true`) {
		t.Fatalf("expected aiEnabled true, got %d body=%s", st, string(body))
	}

	withoutAI := httptest.NewServer(router.NewRouter(router.Options{}))
	defer withoutAI.Close()

	st, body = doReq(t, withoutAI.URL, "GET", "/status", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"aiEnabled":false`) {
		t.Fatalf("expected aiEnabled false, got %d body=%s", st, string(body))
	}
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func uploadFile(t *testing.T, baseURL, userID, petID, filename, mimeType string, data []byte) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{mimeType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest("POST", baseURL+"/pets/"+petID+"/upload", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Debug-User-ID", userID)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do upload: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
