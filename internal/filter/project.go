package filter

import (
	"github.com/google/uuid"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/models"
)

// ExplorerPatient is the anonymized patient view: classification fields only,
// never free-text identity fields.
type ExplorerPatient struct {
	ID                uuid.UUID `json:"id"`
	Gender            string    `json:"gender"`
	InhabitedLocality string    `json:"inhabited_locality"`
	BP                bool      `json:"bp"`
	Ischemia          bool      `json:"ischemia"`
	Dep               bool      `json:"dep"`
}

// ProjectPatients shapes raw patients for the caller's role. Therapists get
// the full entities, explorers the reduced DTO. Any other role is a
// programming fault and never passes data through.
func ProjectPatients(role string, patients []models.Patient) (any, error) {
	switch role {
	case models.RoleTherapist:
		return patients, nil
	case models.RoleExplorer:
		out := make([]ExplorerPatient, 0, len(patients))
		for _, p := range patients {
			out = append(out, ExplorerPatient{
				ID:                p.ID,
				Gender:            p.Gender,
				InhabitedLocality: p.InhabitedLocality,
				BP:                p.BP,
				Ischemia:          p.Ischemia,
				Dep:               p.Dep,
			})
		}
		return out, nil
	default:
		return nil, apperr.ErrUnexpectedRole
	}
}
