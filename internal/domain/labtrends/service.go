// Package labtrends agrega los valores de laboratorio históricos de una
// mascota en series por analito canónico, con flags contra rangos de
// referencia caninos estáticos.
package labtrends

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"petrecord/internal/domain/records"
)

type Service struct {
	repo records.Repository
}

func NewService(repo records.Repository) *Service {
	return &Service{repo: repo}
}

type DataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`

	// Flag es "low" o "high"; vacío (omitido) cuando el valor está dentro
	// del rango o el analito no tiene rango conocido.
	Flag      string `json:"flag,omitempty"`
	PanelName string `json:"panelName"`
	Facility  string `json:"facility,omitempty"`
}

// ReferenceRange es el rango de referencia como objeto; el front lo usa
// para dibujar la banda del gráfico, por eso no viaja como texto.
type ReferenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Trend struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Unit           string          `json:"unit"`
	ReferenceRange *ReferenceRange `json:"referenceRange"`
	DataPoints     []DataPoint     `json:"dataPoints"`
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Report struct {
	Trends          []Trend    `json:"trends"`
	TotalTests      int        `json:"totalTests"`
	TotalDataPoints int        `json:"totalDataPoints"`
	DateRange       *DateRange `json:"dateRange"`
}

// observation acopla el punto con la unidad que reportó el laboratorio,
// para que el sort por fecha no los desacople.
type observation struct {
	point DataPoint
	unit  string
}

// series acumula las observaciones de un analito. Los analitos fuera de la
// tabla canónica también generan serie: van a la categoría Other con el
// nombre tal cual vino y sin rango de referencia.
type series struct {
	name      string
	category  string
	tableUnit string
	ref       *ReferenceRange
	order     int
	obs       []observation
}

// ComputeTrends arma el reporte completo a partir de todos los paneles de
// la mascota. Solo se descartan los valores no numéricos.
func (s *Service) ComputeTrends(ctx context.Context, petID string) (Report, error) {
	labs, err := s.repo.ListLabResults(ctx, petID)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Trends:     []Trend{},
		TotalTests: len(labs),
	}

	byKey := make(map[string]*series)
	for _, lab := range labs {
		for _, v := range lab.Results {
			name := strings.TrimSpace(v.Test)
			if name == "" {
				continue
			}
			value, ok := parseValue(v.Value)
			if !ok {
				continue
			}

			sr := s.seriesFor(byKey, name)
			sr.obs = append(sr.obs, observation{
				point: DataPoint{
					Date:      lab.CollectionDate,
					Value:     value,
					Flag:      flagFor(value, sr.ref),
					PanelName: lab.PanelName,
					Facility:  lab.FacilityName,
				},
				unit: strings.TrimSpace(v.Unit),
			})
		}
	}

	if len(byKey) == 0 {
		return report, nil
	}

	ordered := make([]*series, 0, len(byKey))
	for _, sr := range byKey {
		ordered = append(ordered, sr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ci := categoryRank(ordered[i].category)
		cj := categoryRank(ordered[j].category)
		if ci != cj {
			return ci < cj
		}
		// dentro de la categoría, el orden de la tabla (o de aparición
		// para los desconocidos)
		return ordered[i].order < ordered[j].order
	})

	var from, to time.Time
	for _, sr := range ordered {
		obs := sr.obs

		sort.SliceStable(obs, func(i, j int) bool {
			return obs[i].point.Date.Before(obs[j].point.Date)
		})

		// La unidad reportada es la de la observación más reciente; si el
		// laboratorio no la mandó, cae a la de la tabla.
		unit := sr.tableUnit
		for i := len(obs) - 1; i >= 0; i-- {
			if obs[i].unit != "" {
				unit = obs[i].unit
				break
			}
		}

		points := make([]DataPoint, 0, len(obs))
		for _, o := range obs {
			points = append(points, o.point)
		}

		report.Trends = append(report.Trends, Trend{
			Name:           sr.name,
			Category:       sr.category,
			Unit:           unit,
			ReferenceRange: sr.ref,
			DataPoints:     points,
		})
		report.TotalDataPoints += len(points)

		first, last := points[0].Date, points[len(points)-1].Date
		if from.IsZero() || first.Before(from) {
			from = first
		}
		if to.IsZero() || last.After(to) {
			to = last
		}
	}

	report.DateRange = &DateRange{From: from, To: to}
	return report, nil
}

// seriesFor resuelve el nombre contra la tabla canónica y devuelve la serie
// acumuladora, creándola si es la primera vez que aparece.
func (s *Service) seriesFor(byKey map[string]*series, name string) *series {
	if idx, ok := resolveAnalyte(name); ok {
		a := analytes[idx]
		sr, exists := byKey[a.Name]
		if !exists {
			sr = &series{
				name:      a.Name,
				category:  a.Category,
				tableUnit: a.Unit,
				ref:       &ReferenceRange{Min: a.Low, Max: a.High},
				order:     idx,
			}
			byKey[a.Name] = sr
		}
		return sr
	}

	// Desconocido: pasa tal cual, agrupado case-insensitive
	key := "other:" + strings.ToLower(name)
	sr, exists := byKey[key]
	if !exists {
		sr = &series{
			name:     name,
			category: CategoryOther,
			order:    len(analytes) + len(byKey),
		}
		byKey[key] = sr
	}
	return sr
}

func resolveAnalyte(test string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(test))
	if key == "" {
		return 0, false
	}
	if idx, ok := synonymIndex[key]; ok {
		return idx, true
	}
	// "ALT (SGPT)" y variantes: probamos sin el paréntesis
	if i := strings.IndexByte(key, '('); i > 0 {
		if idx, ok := synonymIndex[strings.TrimSpace(key[:i])]; ok {
			return idx, true
		}
	}
	return 0, false
}

// parseValue tolera prefijos de comparación ("<5", ">1000") y separadores
// de miles. Todo lo demás (texto, "positive", rangos) se descarta.
func parseValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "<>=~ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// flagFor marca contra el rango de referencia. Los límites son inclusivos:
// un valor exactamente en el borde queda sin flag, igual que cualquier
// valor dentro del rango o sin rango conocido.
func flagFor(value float64, ref *ReferenceRange) string {
	if ref == nil {
		return ""
	}
	if value < ref.Min {
		return "low"
	}
	if value > ref.Max {
		return "high"
	}
	return ""
}

func categoryRank(category string) int {
	for i, c := range categoryOrder {
		if c == category {
			return i
		}
	}
	return len(categoryOrder)
}
