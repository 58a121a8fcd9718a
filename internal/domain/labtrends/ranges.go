package labtrends

// Categorías clínicas de los analitos. El orden de display es fijo y lo
// define categoryOrder, no el orden alfabético ni el de llegada.
const (
	CategoryKidney       = "Kidney"
	CategoryLiver        = "Liver"
	CategoryMetabolic    = "Metabolic"
	CategoryCBC          = "CBC"
	CategoryThyroid      = "Thyroid"
	CategoryElectrolytes = "Electrolytes"
	CategoryPancreas     = "Pancreas"
	CategoryProtein      = "Protein"
	CategoryOther        = "Other"
)

var categoryOrder = []string{
	CategoryKidney,
	CategoryLiver,
	CategoryMetabolic,
	CategoryCBC,
	CategoryThyroid,
	CategoryElectrolytes,
	CategoryPancreas,
	CategoryProtein,
	CategoryOther,
}

// analyte define un analito canónico con su rango de referencia canino.
// Los rangos son estáticos: sirven para marcar tendencias, no para
// diagnóstico (cada laboratorio publica los suyos junto al resultado).
type analyte struct {
	Name     string
	Category string
	Unit     string
	Low      float64
	High     float64
	Synonyms []string
}

// analytes es la tabla canónica. El orden dentro de cada categoría es el
// orden de display.
var analytes = []analyte{
	// Kidney
	{Name: "BUN", Category: CategoryKidney, Unit: "mg/dL", Low: 7, High: 27,
		Synonyms: []string{"bun", "blood urea nitrogen", "urea nitrogen", "urea"}},
	{Name: "Creatinine", Category: CategoryKidney, Unit: "mg/dL", Low: 0.5, High: 1.8,
		Synonyms: []string{"creatinine", "crea", "creat"}},
	{Name: "SDMA", Category: CategoryKidney, Unit: "µg/dL", Low: 0, High: 14,
		Synonyms: []string{"sdma"}},
	{Name: "Phosphorus", Category: CategoryKidney, Unit: "mg/dL", Low: 2.5, High: 6.8,
		Synonyms: []string{"phosphorus", "phos"}},

	// Liver
	{Name: "ALT", Category: CategoryLiver, Unit: "U/L", Low: 10, High: 125,
		Synonyms: []string{"alt", "alt (sgpt)", "sgpt", "alanine aminotransferase"}},
	{Name: "AST", Category: CategoryLiver, Unit: "U/L", Low: 0, High: 50,
		Synonyms: []string{"ast", "ast (sgot)", "sgot", "aspartate aminotransferase"}},
	{Name: "ALP", Category: CategoryLiver, Unit: "U/L", Low: 23, High: 212,
		Synonyms: []string{"alp", "alkp", "alkaline phosphatase", "alk phos"}},
	{Name: "GGT", Category: CategoryLiver, Unit: "U/L", Low: 0, High: 11,
		Synonyms: []string{"ggt", "gamma-glutamyl transferase", "gamma gt"}},
	{Name: "Total Bilirubin", Category: CategoryLiver, Unit: "mg/dL", Low: 0, High: 0.9,
		Synonyms: []string{"total bilirubin", "tbil", "bilirubin", "bilirubin total"}},

	// Metabolic
	{Name: "Glucose", Category: CategoryMetabolic, Unit: "mg/dL", Low: 74, High: 143,
		Synonyms: []string{"glucose", "glu", "blood glucose"}},
	{Name: "Cholesterol", Category: CategoryMetabolic, Unit: "mg/dL", Low: 110, High: 320,
		Synonyms: []string{"cholesterol", "chol"}},
	{Name: "Triglycerides", Category: CategoryMetabolic, Unit: "mg/dL", Low: 10, High: 150,
		Synonyms: []string{"triglycerides", "trig"}},
	{Name: "Fructosamine", Category: CategoryMetabolic, Unit: "µmol/L", Low: 177, High: 314,
		Synonyms: []string{"fructosamine"}},

	// CBC
	{Name: "WBC", Category: CategoryCBC, Unit: "10³/µL", Low: 5.0, High: 16.8,
		Synonyms: []string{"wbc", "white blood cells", "white blood cell count"}},
	{Name: "RBC", Category: CategoryCBC, Unit: "10⁶/µL", Low: 5.65, High: 8.87,
		Synonyms: []string{"rbc", "red blood cells", "red blood cell count"}},
	{Name: "Hemoglobin", Category: CategoryCBC, Unit: "g/dL", Low: 13.1, High: 20.5,
		Synonyms: []string{"hemoglobin", "hgb", "hb"}},
	{Name: "Hematocrit", Category: CategoryCBC, Unit: "%", Low: 37.3, High: 61.7,
		Synonyms: []string{"hematocrit", "hct", "pcv", "packed cell volume"}},
	{Name: "Platelets", Category: CategoryCBC, Unit: "10³/µL", Low: 148, High: 484,
		Synonyms: []string{"platelets", "plt", "platelet count"}},
	{Name: "Neutrophils", Category: CategoryCBC, Unit: "10³/µL", Low: 2.95, High: 11.64,
		Synonyms: []string{"neutrophils", "neut", "segs", "segmented neutrophils"}},
	{Name: "Lymphocytes", Category: CategoryCBC, Unit: "10³/µL", Low: 1.05, High: 5.1,
		Synonyms: []string{"lymphocytes", "lymph", "lymphs"}},
	{Name: "Monocytes", Category: CategoryCBC, Unit: "10³/µL", Low: 0.16, High: 1.12,
		Synonyms: []string{"monocytes", "mono", "monos"}},
	{Name: "Eosinophils", Category: CategoryCBC, Unit: "10³/µL", Low: 0.06, High: 1.23,
		Synonyms: []string{"eosinophils", "eos"}},
	{Name: "Reticulocytes", Category: CategoryCBC, Unit: "10³/µL", Low: 10, High: 110,
		Synonyms: []string{"reticulocytes", "retic", "retics"}},
	{Name: "MCV", Category: CategoryCBC, Unit: "fL", Low: 61.6, High: 73.5,
		Synonyms: []string{"mcv", "mean corpuscular volume"}},
	{Name: "MCHC", Category: CategoryCBC, Unit: "g/dL", Low: 32, High: 37.9,
		Synonyms: []string{"mchc", "mean corpuscular hemoglobin concentration"}},

	// Thyroid
	{Name: "T4", Category: CategoryThyroid, Unit: "µg/dL", Low: 1.0, High: 4.0,
		Synonyms: []string{"t4", "total t4", "tt4", "thyroxine"}},
	{Name: "Free T4", Category: CategoryThyroid, Unit: "ng/dL", Low: 0.6, High: 3.7,
		Synonyms: []string{"free t4", "ft4"}},
	{Name: "TSH", Category: CategoryThyroid, Unit: "ng/mL", Low: 0.05, High: 0.42,
		Synonyms: []string{"tsh", "thyroid stimulating hormone"}},

	// Electrolytes
	{Name: "Sodium", Category: CategoryElectrolytes, Unit: "mmol/L", Low: 144, High: 160,
		Synonyms: []string{"sodium", "na"}},
	{Name: "Potassium", Category: CategoryElectrolytes, Unit: "mmol/L", Low: 3.5, High: 5.8,
		Synonyms: []string{"potassium", "k"}},
	{Name: "Chloride", Category: CategoryElectrolytes, Unit: "mmol/L", Low: 109, High: 122,
		Synonyms: []string{"chloride", "cl"}},
	{Name: "Calcium", Category: CategoryElectrolytes, Unit: "mg/dL", Low: 7.9, High: 12.0,
		Synonyms: []string{"calcium", "ca"}},
	{Name: "Magnesium", Category: CategoryElectrolytes, Unit: "mg/dL", Low: 1.6, High: 2.5,
		Synonyms: []string{"magnesium", "mg"}},

	// Pancreas
	{Name: "Amylase", Category: CategoryPancreas, Unit: "U/L", Low: 500, High: 1500,
		Synonyms: []string{"amylase", "amyl"}},
	{Name: "Lipase", Category: CategoryPancreas, Unit: "U/L", Low: 200, High: 1800,
		Synonyms: []string{"lipase", "lip"}},

	// Protein
	{Name: "Total Protein", Category: CategoryProtein, Unit: "g/dL", Low: 5.2, High: 8.2,
		Synonyms: []string{"total protein", "tp"}},
	{Name: "Albumin", Category: CategoryProtein, Unit: "g/dL", Low: 2.3, High: 4.0,
		Synonyms: []string{"albumin", "alb"}},
	{Name: "Globulin", Category: CategoryProtein, Unit: "g/dL", Low: 2.5, High: 4.5,
		Synonyms: []string{"globulin", "glob"}},
}

// synonymIndex resuelve nombre normalizado → posición en analytes.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]int {
	idx := make(map[string]int)
	for i, a := range analytes {
		for _, syn := range a.Synonyms {
			idx[syn] = i
		}
	}
	return idx
}
