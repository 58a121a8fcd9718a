package docintel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"petrecord/internal/ports/extraction"
)

var _ extraction.Extractor = (*Client)(nil)

// resultSchema es el esquema que se le pide al modelo, literal en el
// prompt. Mantenerlo sincronizado con extraction.Result.
const resultSchema = `{
  "document_type": "CONSULTATION | SURGERY | EMERGENCY | VACCINATION | LAB | OTHER",
  "date_of_service": "YYYY-MM-DD or empty string",
  "facility_name": "string",
  "provider_name": "string",
  "visit_summary": "string",
  "chief_complaint": "string",
  "diagnosis": "string",
  "treatment": "string",
  "notes": "string",
  "follow_up": "string",
  "vaccinations": [{"vaccine_name": "", "administration_date": "YYYY-MM-DD", "valid_until": "YYYY-MM-DD", "facility_name": "", "lot_number": ""}],
  "medications": [{"drug_name": "", "dose": "", "frequency": "", "indication": "", "prescribed_by": ""}],
  "allergies": [{"allergen": "", "reaction": "", "severity": ""}],
  "conditions": [{"condition": "", "status": "active | managed | resolved", "diagnosed_date": "YYYY-MM-DD"}],
  "lab_results": {"panel_name": "", "collection_date": "YYYY-MM-DD", "results": [{"test": "", "value": "", "unit": "", "range": "", "flag": ""}], "interpretation": ""},
  "weight_kg": 0.0
}`

// ExtractDocument manda el documento como bloque base64 junto con el
// contexto del paciente y parsea la respuesta al esquema fijo.
func (c *Client) ExtractDocument(ctx context.Context, data []byte, mimeType string, pet extraction.PetContext) (extraction.Result, error) {
	blocks := []contentBlock{
		documentBlock(data, mimeType),
		{Type: "text", Text: extractionPrompt(pet)},
	}

	text, err := c.complete(ctx, blocks)
	if err != nil {
		return extraction.Result{}, err
	}
	return parseResult(text)
}

// SummarizeTranscript convierte la transcripción de una consulta grabada
// al mismo esquema que un documento.
func (c *Client) SummarizeTranscript(ctx context.Context, transcript string, pet extraction.PetContext) (extraction.Result, error) {
	prompt := fmt.Sprintf(
		"This is the transcript of a veterinary visit for %s.\n\nTranscript:\n%s\n\n%s",
		petDescription(pet), transcript, extractionInstructions(),
	)

	text, err := c.complete(ctx, []contentBlock{{Type: "text", Text: prompt}})
	if err != nil {
		return extraction.Result{}, err
	}
	return parseResult(text)
}

func documentBlock(data []byte, mimeType string) contentBlock {
	blockType := "image"
	if strings.EqualFold(mimeType, "application/pdf") {
		blockType = "document"
	}
	return contentBlock{
		Type: blockType,
		Source: &blockSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}
}

func extractionPrompt(pet extraction.PetContext) string {
	return fmt.Sprintf(
		"This is a veterinary medical document for %s.\n\n%s",
		petDescription(pet), extractionInstructions(),
	)
}

func extractionInstructions() string {
	return "Extract the clinical information into JSON with exactly this schema:\n\n" +
		resultSchema +
		"\n\nRules: use empty strings for fields not present in the document, " +
		"empty arrays for entity lists without entries, null for lab_results if " +
		"there are no lab values, and null for weight_kg if no weight is recorded. " +
		"Dates must be YYYY-MM-DD. Respond with the JSON only."
}

func petDescription(pet extraction.PetContext) string {
	parts := []string{}
	if pet.Name != "" {
		parts = append(parts, pet.Name)
	}
	if pet.Breed != "" {
		parts = append(parts, "a "+pet.Breed)
	}
	if pet.Species != "" {
		parts = append(parts, strings.ToLower(pet.Species))
	}
	if len(parts) == 0 {
		return "a pet"
	}
	return strings.Join(parts, ", ")
}

// fencedJSON captura el primer bloque cercado, con o sin etiqueta json.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseResult recupera el JSON en dos etapas: primero asume que la
// respuesta es JSON puro; si no, busca un bloque cercado. Los modelos
// alternan entre ambas formas aunque el prompt pida JSON solo.
func parseResult(text string) (extraction.Result, error) {
	text = strings.TrimSpace(text)

	var res extraction.Result
	if err := json.Unmarshal([]byte(text), &res); err == nil {
		return normalize(res), nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &res); err == nil {
			return normalize(res), nil
		}
	}

	return extraction.Result{}, fmt.Errorf("%w: no valid json in response", extraction.ErrParse)
}

// normalize garantiza que el merge nunca vea slices nil ni panels vacíos.
func normalize(res extraction.Result) extraction.Result {
	if res.Vaccinations == nil {
		res.Vaccinations = []extraction.VaccinationEntry{}
	}
	if res.Medications == nil {
		res.Medications = []extraction.MedicationEntry{}
	}
	if res.Allergies == nil {
		res.Allergies = []extraction.AllergyEntry{}
	}
	if res.Conditions == nil {
		res.Conditions = []extraction.ConditionEntry{}
	}
	if res.LabResults != nil && len(res.LabResults.Results) == 0 {
		res.LabResults = nil
	}
	return res
}
