package model

import (
	"github.com/bartventer/gorm-multitenancy/v8/pkg/driver"
)

// TenantModels returns the entities created in every hospital schema, in
// dependency order.
func TenantModels() []driver.TenantTabler {
	return []driver.TenantTabler{
		&User{},
		&Doctor{},
		&Patient{},
		&Medication{},
		&MedicalRecord{},
		&Prescription{},
		&PrescriptionItem{},
	}
}

// CentralModels returns the entities of the central public schema.
func CentralModels() []driver.TenantTabler {
	return []driver.TenantTabler{
		&Hospital{},
		&SystemUser{},
		&AuditLog{},
	}
}
