package models

import "time"

const (
	EnrollmentStatusActive = "active"
	EnrollmentStatusEnded  = "ended"
)

// Enrollment links a student to a course with the cadence they are billed at.
type Enrollment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StudentID   uint      `json:"student_id" gorm:"not null;index"`
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	PaymentType Cadence   `json:"payment_type" gorm:"not null"`
	StartDate   string    `json:"start_date" gorm:"type:date"`
	EndDate     string    `json:"end_date" gorm:"type:date"`
	Status      string    `json:"status" gorm:"not null;default:'active'"`
	CreatedAt   time.Time `json:"created_at"`
}
