package models

import "time"

// Cadence is the billing frequency selecting which course price applies.
type Cadence string

const (
	CadenceMonthly    Cadence = "monthly"
	CadenceQuarterly  Cadence = "quarterly"
	CadenceSemiAnnual Cadence = "semi_annual"
)

// Payment lifecycle stages.
const (
	StageDeposit   = "deposit"
	StageRemaining = "remaining"
	StageFull      = "full"
	StageCompleted = "completed"
)

// Payment statuses. StatusOverdue is part of the schema's constraint set but
// no operation ever assigns it; assigning it would need a scheduled job
// comparing due_date against the clock, which this system never had.
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Payment is one billable charge (a fee item) tied to a student and a course.
// Invariant: PaidAmount + RemainingAmount == TotalAmount, 0 <= PaidAmount <= TotalAmount.
type Payment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	StudentID       uint      `json:"student_id" gorm:"not null;index"`
	CourseID        uint      `json:"course_id" gorm:"not null;index"`
	FeeItem         string    `json:"fee_item" gorm:"not null"`
	FeeDate         string    `json:"fee_date" gorm:"not null;type:date"`
	TotalAmount     float64   `json:"total_amount" gorm:"not null;type:decimal(10,2)"`
	DepositAmount   float64   `json:"deposit_amount" gorm:"type:decimal(10,2);default:0"`
	PaidAmount      float64   `json:"paid_amount" gorm:"type:decimal(10,2);default:0"`
	RemainingAmount float64   `json:"remaining_amount" gorm:"type:decimal(10,2);default:0"`
	PaymentType     Cadence   `json:"payment_type" gorm:"not null"`
	PaymentStage    string    `json:"payment_stage" gorm:"not null;default:'deposit'"`
	PaymentDate     string    `json:"payment_date" gorm:"type:date"`
	DueDate         string    `json:"due_date" gorm:"type:date"`
	Status          string    `json:"status" gorm:"not null;default:'pending'"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// PaymentDetail is one actual money movement against a Payment. Rows are
// append-only; the sum of a payment's detail amounts equals its PaidAmount.
type PaymentDetail struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PaymentID     uint      `json:"payment_id" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"not null;type:decimal(10,2)"`
	PaymentStage  string    `json:"payment_stage" gorm:"not null"`
	PaymentDate   string    `json:"payment_date" gorm:"type:date"`
	PaymentMethod string    `json:"payment_method" gorm:"default:'cash'"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
