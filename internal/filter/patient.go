package filter

var patientRegistry = NewRegistry(
	Field{Name: "gender", Type: String},
	Field{Name: "birthday", Type: Date},
	Field{Name: "full_name", Type: String},
	Field{Name: "living_place", Type: String},
	Field{Name: "job_title", Type: String},
	Field{Name: "inhabited_locality", Type: String},
	Field{Name: "bp", Type: Boolean},
	Field{Name: "ischemia", Type: Boolean},
	Field{Name: "dep", Type: Boolean},
)

// Patients is the registry over the exposable patient fields.
func Patients() *Registry {
	return patientRegistry
}
