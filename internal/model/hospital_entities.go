package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entities below live in the hospital_<N> schema of their hospital.

var (
	ErrEmptyPatientName   = errors.New("patient first and last name are required")
	ErrEmptyDiagnosis     = errors.New("diagnosis cannot be empty")
	ErrEmptyMedication    = errors.New("medication name cannot be empty")
	ErrEmptyPrescription  = errors.New("prescription needs at least one item")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrMissingPatient     = errors.New("patient is required")
	ErrMissingDoctor      = errors.New("doctor is required")
	ErrInvalidRxStatus    = errors.New("prescription status is not valid")
	ErrEmptyLicenseNumber = errors.New("license number cannot be empty")
)

// User is a hospital staff account. A user with the doctor role owns exactly
// one Doctor profile which is removed together with the account.
type User struct {
	BaseModel
	Identity

	IsActive bool    `gorm:"not null;default:true"`
	Doctor   *Doctor `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string     { return "users" }
func (User) IsSharedModel() bool   { return false }
func (u User) Validate() error     { return u.Identity.Validate() }
func (u User) IsDoctor() bool      { return u.Role == RoleDoctor }

type Doctor struct {
	BaseModel

	UserID         uuid.UUID       `gorm:"type:uuid;not null;unique"`
	Specialization string          `gorm:"type:varchar(255)"`
	LicenseNumber  string          `gorm:"type:varchar(100);not null;unique"`
	Phone          string          `gorm:"type:varchar(50)"`
	MedicalRecords []MedicalRecord `gorm:"foreignKey:DoctorID"`
	Prescriptions  []Prescription  `gorm:"foreignKey:DoctorID"`
}

func (Doctor) TableName() string   { return "doctors" }
func (Doctor) IsSharedModel() bool { return false }

func (d Doctor) Validate() error {
	if d.UserID == uuid.Nil {
		return ErrMissingDoctor
	}

	if strings.TrimSpace(d.LicenseNumber) == "" {
		return ErrEmptyLicenseNumber
	}

	return nil
}

type Patient struct {
	BaseModel

	MedicalRecordNumber string          `gorm:"type:varchar(50);not null;unique"`
	FirstName           string          `gorm:"type:varchar(100);not null"`
	LastName            string          `gorm:"type:varchar(100);not null"`
	DateOfBirth         *time.Time      `gorm:"type:date"`
	Gender              string          `gorm:"type:varchar(20)"`
	BloodType           string          `gorm:"type:varchar(5)"`
	Phone               string          `gorm:"type:varchar(50)"`
	Email               string          `gorm:"type:varchar(255)"`
	Address             string          `gorm:"type:text"`
	MedicalRecords      []MedicalRecord `gorm:"foreignKey:PatientID"`
	Prescriptions       []Prescription  `gorm:"foreignKey:PatientID"`
}

func (Patient) TableName() string   { return "patients" }
func (Patient) IsSharedModel() bool { return false }

func (p Patient) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrEmptyPatientName
	}

	return nil
}

type MedicalRecord struct {
	BaseModel

	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Patient   *Patient  `gorm:"foreignKey:PatientID"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Doctor    *Doctor   `gorm:"foreignKey:DoctorID"`
	VisitDate time.Time `gorm:"not null"`
	Diagnosis string    `gorm:"type:text;not null"`
	Symptoms  string    `gorm:"type:text"`
	Treatment string    `gorm:"type:text"`
	Notes     string    `gorm:"type:text"`
}

func (MedicalRecord) TableName() string   { return "medical_records" }
func (MedicalRecord) IsSharedModel() bool { return false }

func (m MedicalRecord) Validate() error {
	switch {
	case m.PatientID == uuid.Nil:
		return ErrMissingPatient
	case m.DoctorID == uuid.Nil:
		return ErrMissingDoctor
	case strings.TrimSpace(m.Diagnosis) == "":
		return ErrEmptyDiagnosis
	}

	return nil
}

type PrescriptionStatus string

const (
	PrescriptionActive    PrescriptionStatus = "active"
	PrescriptionDispensed PrescriptionStatus = "dispensed"
	PrescriptionCancelled PrescriptionStatus = "cancelled"
)

func (s PrescriptionStatus) Validate() error {
	switch s {
	case PrescriptionActive, PrescriptionDispensed, PrescriptionCancelled:
		return nil
	default:
		return ErrInvalidRxStatus
	}
}

type Prescription struct {
	BaseModel

	PatientID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Patient   *Patient           `gorm:"foreignKey:PatientID"`
	DoctorID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Doctor    *Doctor            `gorm:"foreignKey:DoctorID"`
	IssuedAt  time.Time          `gorm:"not null"`
	Status    PrescriptionStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes     string             `gorm:"type:text"`
	Items     []PrescriptionItem `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
}

func (Prescription) TableName() string   { return "prescriptions" }
func (Prescription) IsSharedModel() bool { return false }

func (p Prescription) Validate() error {
	switch {
	case p.PatientID == uuid.Nil:
		return ErrMissingPatient
	case p.DoctorID == uuid.Nil:
		return ErrMissingDoctor
	case len(p.Items) == 0:
		return ErrEmptyPrescription
	}

	for _, item := range p.Items {
		err := item.Validate()
		if err != nil {
			return err
		}
	}

	return p.Status.Validate()
}

type Medication struct {
	BaseModel

	Name         string             `gorm:"type:varchar(255);not null;unique"`
	Form         string             `gorm:"type:varchar(50)"`
	Strength     string             `gorm:"type:varchar(50)"`
	Manufacturer string             `gorm:"type:varchar(255)"`
	Items        []PrescriptionItem `gorm:"foreignKey:MedicationID"`
}

func (Medication) TableName() string   { return "medications" }
func (Medication) IsSharedModel() bool { return false }

func (m Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyMedication
	}

	return nil
}

type PrescriptionItem struct {
	BaseModel

	PrescriptionID uuid.UUID   `gorm:"type:uuid;not null;index"`
	MedicationID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Medication     *Medication `gorm:"foreignKey:MedicationID"`
	Dosage         string      `gorm:"type:varchar(100)"`
	Frequency      string      `gorm:"type:varchar(100)"`
	DurationDays   int
	Quantity       int    `gorm:"not null"`
	Instructions   string `gorm:"type:text"`
}

func (PrescriptionItem) TableName() string   { return "prescription_items" }
func (PrescriptionItem) IsSharedModel() bool { return false }

func (i PrescriptionItem) Validate() error {
	if i.MedicationID == uuid.Nil {
		return ErrEmptyMedication
	}

	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	return nil
}
