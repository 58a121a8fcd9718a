package records

import (
	"context"
	"sort"
	"time"
)

// TimelineEvent es una entrada normalizada de la línea de tiempo clínica.
// Data lleva la entidad original; el front decide cómo renderizar cada tipo.
type TimelineEvent struct {
	Type    string    `json:"type"`    // record | vaccination | lab
	Subtype string    `json:"subtype"` // record_type, vaccine o panel
	Date    time.Time `json:"date"`
	Data    any       `json:"data"`
}

// Timeline compone registros médicos, vacunas y laboratorios en una sola
// lista ordenada por fecha descendente. El sort es estable: ante fechas
// iguales se respeta el orden de inserción por tipo.
func (s *Service) Timeline(ctx context.Context, petID string) ([]TimelineEvent, error) {
	recs, err := s.repo.ListMedicalRecords(ctx, petID)
	if err != nil {
		return nil, err
	}
	vaccs, err := s.repo.ListVaccinations(ctx, petID)
	if err != nil {
		return nil, err
	}
	labs, err := s.repo.ListLabResults(ctx, petID)
	if err != nil {
		return nil, err
	}

	events := make([]TimelineEvent, 0, len(recs)+len(vaccs)+len(labs))
	for _, rec := range recs {
		events = append(events, TimelineEvent{
			Type:    "record",
			Subtype: rec.RecordType,
			Date:    rec.DateOfService,
			Data:    rec,
		})
	}
	for _, v := range vaccs {
		events = append(events, TimelineEvent{
			Type:    "vaccination",
			Subtype: v.VaccineName,
			Date:    v.AdministrationDate,
			Data:    v,
		})
	}
	for _, l := range labs {
		events = append(events, TimelineEvent{
			Type:    "lab",
			Subtype: l.PanelName,
			Date:    l.CollectionDate,
			Data:    l,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events, nil
}
