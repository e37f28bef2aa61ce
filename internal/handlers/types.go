package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/utils/ptr"
)

type Hospital struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"isActive"`
	Schema    string    `json:"schema"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HospitalCreate struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// HospitalPatch carries the fields a PATCH may change. Absent fields are
// left as they are.
type HospitalPatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

func hospitalToAPI(h *model.Hospital) Hospital {
	return Hospital{
		ID:        h.ID,
		Name:      h.Name,
		Slug:      h.Slug,
		Address:   h.Address,
		Phone:     h.Phone,
		Email:     h.Email,
		IsActive:  h.IsActive,
		Schema:    h.SchemaName,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

type Patient struct {
	ID                  uuid.UUID  `json:"id"`
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	Gender              string     `json:"gender,omitempty"`
	BloodType           string     `json:"bloodType,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	Email               string     `json:"email,omitempty"`
	Address             string     `json:"address,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type PatientCreate struct {
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	DateOfBirth         *time.Time `json:"dateOfBirth"`
	Gender              string     `json:"gender"`
	BloodType           string     `json:"bloodType"`
	Phone               string     `json:"phone"`
	Email               string     `json:"email"`
	Address             string     `json:"address"`
}

func (p PatientCreate) toModel() *model.Patient {
	return &model.Patient{
		MedicalRecordNumber: p.MedicalRecordNumber,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth,
		Gender:              p.Gender,
		BloodType:           p.BloodType,
		Phone:               p.Phone,
		Email:               p.Email,
		Address:             p.Address,
	}
}

func patientToAPI(p *model.Patient) Patient {
	return Patient{
		ID:                  p.ID,
		MedicalRecordNumber: p.MedicalRecordNumber,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth,
		Gender:              p.Gender,
		BloodType:           p.BloodType,
		Phone:               p.Phone,
		Email:               p.Email,
		Address:             p.Address,
		CreatedAt:           p.CreatedAt,
	}
}

type Doctor struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Specialization string    `json:"specialization,omitempty"`
	LicenseNumber  string    `json:"licenseNumber"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DoctorCreate creates the staff account and the doctor profile at once.
type DoctorCreate struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"licenseNumber"`
	Phone          string `json:"phone"`
}

func doctorToAPI(d *model.Doctor) Doctor {
	return Doctor{
		ID:             d.ID,
		UserID:         d.UserID,
		Specialization: d.Specialization,
		LicenseNumber:  d.LicenseNumber,
		Phone:          d.Phone,
		CreatedAt:      d.CreatedAt,
	}
}

type MedicalRecord struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patientId"`
	DoctorID  uuid.UUID `json:"doctorId"`
	VisitDate time.Time `json:"visitDate"`
	Diagnosis string    `json:"diagnosis"`
	Symptoms  string    `json:"symptoms,omitempty"`
	Treatment string    `json:"treatment,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

type MedicalRecordCreate struct {
	PatientID uuid.UUID  `json:"patientId"`
	DoctorID  uuid.UUID  `json:"doctorId"`
	VisitDate *time.Time `json:"visitDate"`
	Diagnosis string     `json:"diagnosis"`
	Symptoms  string     `json:"symptoms"`
	Treatment string     `json:"treatment"`
	Notes     string     `json:"notes"`
}

func (m MedicalRecordCreate) toModel() *model.MedicalRecord {
	return &model.MedicalRecord{
		PatientID: m.PatientID,
		DoctorID:  m.DoctorID,
		VisitDate: ptr.Value(m.VisitDate),
		Diagnosis: m.Diagnosis,
		Symptoms:  m.Symptoms,
		Treatment: m.Treatment,
		Notes:     m.Notes,
	}
}

func medicalRecordToAPI(m *model.MedicalRecord) MedicalRecord {
	return MedicalRecord{
		ID:        m.ID,
		PatientID: m.PatientID,
		DoctorID:  m.DoctorID,
		VisitDate: m.VisitDate,
		Diagnosis: m.Diagnosis,
		Symptoms:  m.Symptoms,
		Treatment: m.Treatment,
		Notes:     m.Notes,
	}
}

type PrescriptionItem struct {
	MedicationID uuid.UUID `json:"medicationId"`
	Dosage       string    `json:"dosage,omitempty"`
	Frequency    string    `json:"frequency,omitempty"`
	DurationDays int       `json:"durationDays,omitempty"`
	Quantity     int       `json:"quantity"`
	Instructions string    `json:"instructions,omitempty"`
}

type Prescription struct {
	ID        uuid.UUID          `json:"id"`
	PatientID uuid.UUID          `json:"patientId"`
	DoctorID  uuid.UUID          `json:"doctorId"`
	IssuedAt  time.Time          `json:"issuedAt"`
	Status    string             `json:"status"`
	Notes     string             `json:"notes,omitempty"`
	Items     []PrescriptionItem `json:"items,omitempty"`
}

type PrescriptionCreate struct {
	PatientID uuid.UUID          `json:"patientId"`
	DoctorID  uuid.UUID          `json:"doctorId"`
	Status    string             `json:"status"`
	Notes     string             `json:"notes"`
	Items     []PrescriptionItem `json:"items"`
}

func (p PrescriptionCreate) toModel() *model.Prescription {
	items := make([]model.PrescriptionItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, model.PrescriptionItem{
			MedicationID: item.MedicationID,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}

	return &model.Prescription{
		PatientID: p.PatientID,
		DoctorID:  p.DoctorID,
		Status:    model.PrescriptionStatus(p.Status),
		Notes:     p.Notes,
		Items:     items,
	}
}

func prescriptionToAPI(p *model.Prescription) Prescription {
	items := make([]PrescriptionItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, PrescriptionItem{
			MedicationID: item.MedicationID,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}

	return Prescription{
		ID:        p.ID,
		PatientID: p.PatientID,
		DoctorID:  p.DoctorID,
		IssuedAt:  p.IssuedAt,
		Status:    string(p.Status),
		Notes:     p.Notes,
		Items:     items,
	}
}

type Medication struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Form         string    `json:"form,omitempty"`
	Strength     string    `json:"strength,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
}

func medicationToAPI(m *model.Medication) Medication {
	return Medication{
		ID:           m.ID,
		Name:         m.Name,
		Form:         m.Form,
		Strength:     m.Strength,
		Manufacturer: m.Manufacturer,
	}
}

type AuditLog struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	HospitalID int        `json:"hospitalId"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resourceId,omitempty"`
	RequestID  string     `json:"requestId,omitempty"`
	Details    string     `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func auditLogToAPI(a *model.AuditLog) AuditLog {
	return AuditLog{
		ID:         a.ID,
		UserID:     a.UserID,
		Subject:    a.Subject,
		HospitalID: a.HospitalID,
		Action:     string(a.Action),
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		RequestID:  a.RequestID,
		Details:    a.Details,
		CreatedAt:  a.CreatedAt,
	}
}
