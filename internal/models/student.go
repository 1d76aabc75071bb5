package models

import "time"

const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// Student is one enrolled (or formerly enrolled) student of the center.
type Student struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null;index"`
	EnglishName    string    `json:"english_name"`
	BirthDate      string    `json:"birth_date" gorm:"type:date"`
	SchoolClass    string    `json:"school_class"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	ParentName     string    `json:"parent_name"`
	ParentPhone    string    `json:"parent_phone"`
	EnrollmentDate string    `json:"enrollment_date" gorm:"type:date"`
	Status         string    `json:"status" gorm:"not null;default:'active'"`
	CreatedAt      time.Time `json:"created_at"`
}
