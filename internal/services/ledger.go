package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/models"
)

// Detail notes tagged onto rows the ledger writes itself.
const (
	noteInitialPayment = "initial payment"
	noteBalancePayment = "balance payment"

	defaultPaymentMethod = "cash"
)

// LedgerService owns the payment lifecycle: charge creation, partial payment
// application, and the referential guards around deletes. Every compound
// write (payment mutation + detail insert) runs in one transaction so the
// sum-of-details == paid_amount invariant cannot be broken halfway.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService { return &LedgerService{db: db} }

// CreatePaymentInput carries the fields of a new charge. TotalAmount is not
// part of it: the ledger prices the charge itself from the course.
type CreatePaymentInput struct {
	StudentID     uint
	CourseID      uint
	FeeItem       string
	FeeDate       string
	Cadence       models.Cadence
	DepositAmount float64
	DueDate       string
	Notes         string
}

// CreatePayment prices the charge, derives stage/status from the deposit and
// persists the payment together with its deposit detail row (if any).
func (s *LedgerService) CreatePayment(in CreatePaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(in.FeeItem) == "" || strings.TrimSpace(in.FeeDate) == "" {
		return nil, ErrMissingFeeFields
	}
	if in.DepositAmount < 0 {
		return nil, ErrInvalidPaymentAmount
	}
	var student models.Student
	if err := s.db.First(&student, in.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	var course models.Course
	if err := s.db.First(&course, in.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	total, err := ResolvePrice(&course, in.Cadence)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.DepositAmount > total {
		return nil, ErrDepositExceedsTotal
	}

	stage := models.StageDeposit
	if in.DepositAmount >= total {
		stage = models.StageFull
	}
	status := models.StatusPending
	if in.DepositAmount > 0 {
		status = models.StatusPartial
	}
	if in.DepositAmount >= total {
		status = models.StatusPaid
	}

	payment := models.Payment{
		StudentID:       in.StudentID,
		CourseID:        in.CourseID,
		FeeItem:         in.FeeItem,
		FeeDate:         in.FeeDate,
		TotalAmount:     total,
		DepositAmount:   in.DepositAmount,
		PaidAmount:      in.DepositAmount,
		RemainingAmount: total - in.DepositAmount,
		PaymentType:     in.Cadence,
		PaymentStage:    stage,
		PaymentDate:     today(),
		DueDate:         in.DueDate,
		Status:          status,
		Notes:           in.Notes,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if in.DepositAmount > 0 {
			detail := models.PaymentDetail{
				PaymentID:     payment.ID,
				Amount:        in.DepositAmount,
				PaymentStage:  stage,
				PaymentDate:   today(),
				PaymentMethod: defaultPaymentMethod,
				Notes:         noteInitialPayment,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ApplyPayment records one received amount against an open charge. The amount
// must be positive and must not exceed the remaining balance; a rejected
// application leaves the payment untouched.
func (s *LedgerService) ApplyPayment(paymentID uint, amount float64, method, notes string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if amount <= 0 || amount > payment.RemainingAmount {
			return ErrInvalidPaymentAmount
		}

		newPaid := payment.PaidAmount + amount
		payment.PaidAmount = newPaid
		payment.RemainingAmount = payment.TotalAmount - newPaid
		if newPaid >= payment.TotalAmount {
			payment.Status = models.StatusPaid
			payment.PaymentStage = models.StageCompleted
		} else {
			payment.Status = models.StatusPartial
			payment.PaymentStage = models.StageRemaining
		}
		updates := map[string]any{
			"paid_amount":      payment.PaidAmount,
			"remaining_amount": payment.RemainingAmount,
			"status":           payment.Status,
			"payment_stage":    payment.PaymentStage,
		}
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error; err != nil {
			return err
		}

		if method == "" {
			method = defaultPaymentMethod
		}
		if notes == "" {
			notes = noteBalancePayment
		}
		detail := models.PaymentDetail{
			PaymentID:     payment.ID,
			Amount:        amount,
			PaymentStage:  models.StageRemaining,
			PaymentDate:   today(),
			PaymentMethod: method,
			Notes:         notes,
		}
		return tx.Create(&detail).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// PaymentRow is a payment enriched with the student and course names for
// list views.
type PaymentRow struct {
	models.Payment `gorm:"embedded"`
	StudentName    string `json:"student_name"`
	CourseName     string `json:"course_name"`
}

// ListPayments returns every payment joined with student/course names, most
// recent payment date first.
func (s *LedgerService) ListPayments() ([]PaymentRow, error) {
	var rows []PaymentRow
	err := s.db.Table("payments").
		Select("payments.*, students.name AS student_name, courses.name AS course_name").
		Joins("JOIN students ON payments.student_id = students.id").
		Joins("JOIN courses ON payments.course_id = courses.id").
		Order("payments.payment_date DESC, payments.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPayment fetches one payment by id.
func (s *LedgerService) GetPayment(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// ListPaymentDetails returns the itemized history of a payment, most recent
// first.
func (s *LedgerService) ListPaymentDetails(paymentID uint) ([]models.PaymentDetail, error) {
	if _, err := s.GetPayment(paymentID); err != nil {
		return nil, err
	}
	var details []models.PaymentDetail
	err := s.db.Where("payment_id = ?", paymentID).
		Order("payment_date DESC, id DESC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

// DeletePayment removes a payment unconditionally. Detail rows are left in
// place; the original system never guarded or cascaded them and reports rely
// on that history staying put.
func (s *LedgerService) DeletePayment(id uint) error {
	res := s.db.Delete(&models.Payment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// DeleteStudent removes a student unless any payment references them.
func (s *LedgerService) DeleteStudent(id uint) error {
	var count int64
	if err := s.db.Model(&models.Payment{}).Where("student_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrStudentHasPayments
	}
	res := s.db.Delete(&models.Student{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// DeleteCourse removes a course unless any payment references it.
func (s *LedgerService) DeleteCourse(id uint) error {
	var count int64
	if err := s.db.Model(&models.Payment{}).Where("course_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCourseHasPayments
	}
	res := s.db.Delete(&models.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}
