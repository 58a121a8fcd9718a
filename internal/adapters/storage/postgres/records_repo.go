package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"petrecord/internal/domain/records"
)

// RecordsRepo persiste las entidades clínicas hijas. Los valores de un
// panel de laboratorio van como JSON en una columna de texto: conservan
// el orden del documento y el set de analitos queda abierto.
type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) AddAllergy(ctx context.Context, a records.Allergy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO allergies (id, pet_id, allergen, reaction, severity, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.PetID, a.Allergen, a.Reaction, a.Severity, a.CreatedAt)
	return err
}

func (r *RecordsRepo) ListAllergies(ctx context.Context, petID string) ([]records.Allergy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, allergen, reaction, severity, created_at
		FROM allergies
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Allergy, 0)
	for rows.Next() {
		var a records.Allergy
		if err := rows.Scan(&a.ID, &a.PetID, &a.Allergen, &a.Reaction, &a.Severity, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddCondition(ctx context.Context, c records.Condition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conditions (id, pet_id, condition, status, diagnosed_date, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, c.ID, c.PetID, c.Condition, c.Status, toNullDate(c.DiagnosedDate), c.Notes, c.CreatedAt)
	return err
}

func (r *RecordsRepo) ListConditions(ctx context.Context, petID string) ([]records.Condition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, condition, status, diagnosed_date, notes, created_at
		FROM conditions
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Condition, 0)
	for rows.Next() {
		var c records.Condition
		var dd sql.NullTime
		if err := rows.Scan(&c.ID, &c.PetID, &c.Condition, &c.Status, &dd, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		if dd.Valid {
			t := dd.Time
			c.DiagnosedDate = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddMedication(ctx context.Context, m records.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, pet_id, drug_name, dose, frequency, indication, prescribed_by,
			start_date, end_date, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, m.ID, m.PetID, m.DrugName, m.Dose, m.Frequency, m.Indication, m.PrescribedBy,
		toNullDate(m.StartDate), toNullDate(m.EndDate), m.Status, m.CreatedAt)
	return err
}

func (r *RecordsRepo) ListMedications(ctx context.Context, petID string) ([]records.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, drug_name, dose, frequency, indication, prescribed_by,
		       start_date, end_date, status, created_at
		FROM medications
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Medication, 0)
	for rows.Next() {
		var m records.Medication
		var start, end sql.NullTime
		if err := rows.Scan(&m.ID, &m.PetID, &m.DrugName, &m.Dose, &m.Frequency, &m.Indication,
			&m.PrescribedBy, &start, &end, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		if start.Valid {
			t := start.Time
			m.StartDate = &t
		}
		if end.Valid {
			t := end.Time
			m.EndDate = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddVaccination(ctx context.Context, v records.Vaccination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (
			id, pet_id, vaccine_name, administration_date, valid_until,
			facility_name, lot_number, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, v.ID, v.PetID, v.VaccineName, v.AdministrationDate, toNullDate(v.ValidUntil),
		v.FacilityName, v.LotNumber, v.CreatedAt)
	return err
}

func (r *RecordsRepo) ListVaccinations(ctx context.Context, petID string) ([]records.Vaccination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, vaccine_name, administration_date, valid_until,
		       facility_name, lot_number, created_at
		FROM vaccinations
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Vaccination, 0)
	for rows.Next() {
		var v records.Vaccination
		var until sql.NullTime
		if err := rows.Scan(&v.ID, &v.PetID, &v.VaccineName, &v.AdministrationDate, &until,
			&v.FacilityName, &v.LotNumber, &v.CreatedAt); err != nil {
			return nil, err
		}
		if until.Valid {
			t := until.Time
			v.ValidUntil = &t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddMedicalRecord(ctx context.Context, m records.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, pet_id, record_type, date_of_service, facility_name, provider_name,
			visit_summary, chief_complaint, diagnosis, treatment, notes, follow_up, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, m.ID, m.PetID, m.RecordType, m.DateOfService, m.FacilityName, m.ProviderName,
		m.VisitSummary, m.ChiefComplaint, m.Diagnosis, m.Treatment, m.Notes, m.FollowUp, m.CreatedAt)
	return err
}

func (r *RecordsRepo) ListMedicalRecords(ctx context.Context, petID string) ([]records.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, record_type, date_of_service, facility_name, provider_name,
		       visit_summary, chief_complaint, diagnosis, treatment, notes, follow_up, created_at
		FROM medical_records
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.MedicalRecord, 0)
	for rows.Next() {
		var m records.MedicalRecord
		if err := rows.Scan(&m.ID, &m.PetID, &m.RecordType, &m.DateOfService, &m.FacilityName,
			&m.ProviderName, &m.VisitSummary, &m.ChiefComplaint, &m.Diagnosis, &m.Treatment,
			&m.Notes, &m.FollowUp, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddLabResult(ctx context.Context, l records.LabResult) error {
	values, err := json.Marshal(l.Results)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lab_results (
			id, pet_id, panel_name, collection_date, results, interpretation,
			facility_name, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, l.ID, l.PetID, l.PanelName, l.CollectionDate, string(values), l.Interpretation,
		l.FacilityName, l.CreatedAt)
	return err
}

func (r *RecordsRepo) ListLabResults(ctx context.Context, petID string) ([]records.LabResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, panel_name, collection_date, results, interpretation,
		       facility_name, created_at
		FROM lab_results
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.LabResult, 0)
	for rows.Next() {
		var l records.LabResult
		var values string
		if err := rows.Scan(&l.ID, &l.PetID, &l.PanelName, &l.CollectionDate, &values,
			&l.Interpretation, &l.FacilityName, &l.CreatedAt); err != nil {
			return nil, err
		}
		if values != "" {
			if err := json.Unmarshal([]byte(values), &l.Results); err != nil {
				return nil, err
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) AddWeight(ctx context.Context, w records.WeightRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weight_records (id, pet_id, weight_kg, recorded_at, source, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, w.ID, w.PetID, w.WeightKg, w.RecordedAt, w.Source, w.CreatedAt)
	return err
}

func (r *RecordsRepo) ListWeights(ctx context.Context, petID string) ([]records.WeightRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, weight_kg, recorded_at, source, created_at
		FROM weight_records
		WHERE pet_id = $1
		ORDER BY recorded_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.WeightRecord, 0)
	for rows.Next() {
		var w records.WeightRecord
		if err := rows.Scan(&w.ID, &w.PetID, &w.WeightKg, &w.RecordedAt, &w.Source, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
