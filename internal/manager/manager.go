package manager

import (
	"errors"

	"github.com/openhms/hms/internal/auditor"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/tenant"
)

type Manager struct {
	Hospitals      *HospitalManager
	Patients       *PatientManager
	Doctors        *DoctorManager
	MedicalRecords *MedicalRecordManager
	Prescriptions  *PrescriptionManager
	Medications    *MedicationManager
	AuditLogs      *AuditLogManager
}

func New(r repo.Repo, catalog *tenant.Catalog) *Manager {
	hmsAuditor := auditor.New(r)

	return &Manager{
		Hospitals:      NewHospitalManager(r, catalog, hmsAuditor),
		Patients:       NewPatientManager(r, hmsAuditor),
		Doctors:        NewDoctorManager(r, hmsAuditor),
		MedicalRecords: NewMedicalRecordManager(r, hmsAuditor),
		Prescriptions:  NewPrescriptionManager(r, hmsAuditor),
		Medications:    NewMedicationManager(r),
		AuditLogs:      NewAuditLogManager(r),
	}
}

// Page is the skip and top of a list request.
type Page struct {
	Skip int
	Top  int
}

func (p Page) query() *repo.Query {
	return repo.NewQuery().SetLimit(p.Top).SetOffset(p.Skip)
}

func whereEq(q *repo.Query, field repo.QueryField, value any) *repo.Query {
	return q.Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(field, value)))
}

// notFoundAs replaces repo.ErrNotFound with the domain error of a lookup and
// leaves other failures as they are.
func notFoundAs(err, notFound error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errs.Wrap(notFound, err)
	}

	return err
}
