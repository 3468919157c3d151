package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleTherapist = "therapist"
	RoleExplorer  = "explorer"
)

func ValidRole(role string) bool {
	return role == RoleTherapist || role == RoleExplorer
}

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username       string    `gorm:"unique;not null"          json:"username"`
	HashedPassword string    `gorm:"not null"                 json:"-"`
	Role           string    `gorm:"not null"                 json:"role"`
	IsSuperuser    bool      `gorm:"default:false"            json:"is_superuser"`
	IsActive       bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken is one live session. The token value is opaque: all state
// lives in this row, expiry is created_at + expires_in seconds.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	Token     uuid.UUID `gorm:"type:uuid;index;not null" json:"token"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresIn int64     `gorm:"not null"                 json:"expires_in"`
	CreatedAt time.Time `json:"created_at"`
}

func (rt *RefreshToken) ExpiresAt() time.Time {
	return rt.CreatedAt.Add(time.Duration(rt.ExpiresIn) * time.Second)
}

type Patient struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Gender            string    `gorm:"not null"                 json:"gender"`
	Birthday          string    `json:"birthday"`
	FullName          string    `gorm:"not null"                 json:"full_name"`
	LivingPlace       string    `json:"living_place"`
	JobTitle          string    `json:"job_title"`
	InhabitedLocality string    `json:"inhabited_locality"`

	BP       bool `gorm:"column:bp;default:false"  json:"bp"`
	Ischemia bool `gorm:"default:false"            json:"ischemia"`
	Dep      bool `gorm:"default:false"            json:"dep"`

	TherapistID uuid.UUID `gorm:"type:uuid;index;not null" json:"therapist_id"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PatientRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Diagnosis string    `json:"diagnosis"`
	Visit     string    `json:"visit"`
	Treatment string    `json:"treatment"`

	PatientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"patient_id"`
	TherapistID uuid.UUID `gorm:"type:uuid;index;not null" json:"therapist_id"`
}

func (r *PatientRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
