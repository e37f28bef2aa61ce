package mock

// HospitalSchema is the schema tests bind with utils/context.CreateTenantContext.
const HospitalSchema = "hospital_1"
