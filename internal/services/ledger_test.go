package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Student{}, &models.Course{}, &models.Enrollment{}, &models.Payment{}, &models.PaymentDetail{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedStudentAndCourse(t *testing.T, db *gorm.DB) (models.Student, models.Course) {
	t.Helper()
	student := models.Student{Name: "王小明", Status: models.StudentStatusActive, EnrollmentDate: "2024-01-15"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	course := models.Course{Name: "Math", PriceMonthly: 3000, PriceQuarterly: 8500, PriceSemiAnnual: 16000}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return student, course
}

func createInput(studentID, courseID uint, deposit float64) CreatePaymentInput {
	return CreatePaymentInput{
		StudentID:     studentID,
		CourseID:      courseID,
		FeeItem:       "May tuition",
		FeeDate:       "2024-05-01",
		Cadence:       models.CadenceMonthly,
		DepositAmount: deposit,
		DueDate:       "2024-05-31",
	}
}

// checkInvariants asserts the two ledger invariants for one payment:
// paid + remaining == total, and sum of detail amounts == paid.
func checkInvariants(t *testing.T, db *gorm.DB, paymentID uint) {
	t.Helper()
	var payment models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.PaidAmount+payment.RemainingAmount != payment.TotalAmount {
		t.Fatalf("invariant broken: paid %v + remaining %v != total %v",
			payment.PaidAmount, payment.RemainingAmount, payment.TotalAmount)
	}
	if payment.PaidAmount < 0 || payment.PaidAmount > payment.TotalAmount {
		t.Fatalf("paid amount %v out of [0, %v]", payment.PaidAmount, payment.TotalAmount)
	}
	var sum float64
	if err := db.Model(&models.PaymentDetail{}).Where("payment_id = ?", paymentID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error; err != nil {
		t.Fatalf("sum details: %v", err)
	}
	if sum != payment.PaidAmount {
		t.Fatalf("detail sum %v != paid amount %v", sum, payment.PaidAmount)
	}
}

func TestCreatePaymentNoDeposit(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.Status != models.StatusPending || payment.PaymentStage != models.StageDeposit {
		t.Fatalf("expected pending/deposit got %s/%s", payment.Status, payment.PaymentStage)
	}
	if payment.TotalAmount != 3000 || payment.PaidAmount != 0 || payment.RemainingAmount != 3000 {
		t.Fatalf("unexpected amounts: %+v", payment)
	}
	var detailCount int64
	db.Model(&models.PaymentDetail{}).Where("payment_id = ?", payment.ID).Count(&detailCount)
	if detailCount != 0 {
		t.Fatalf("expected no detail rows for zero deposit, got %d", detailCount)
	}
	checkInvariants(t, db, payment.ID)
}

func TestCreatePaymentFullDeposit(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 3000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.Status != models.StatusPaid || payment.PaymentStage != models.StageFull {
		t.Fatalf("expected paid/full got %s/%s", payment.Status, payment.PaymentStage)
	}
	if payment.RemainingAmount != 0 || payment.PaidAmount != 3000 {
		t.Fatalf("unexpected amounts: %+v", payment)
	}
	var detail models.PaymentDetail
	if err := db.Where("payment_id = ?", payment.ID).First(&detail).Error; err != nil {
		t.Fatalf("expected deposit detail row: %v", err)
	}
	if detail.PaymentStage != models.StageFull {
		t.Fatalf("expected detail stage full got %s", detail.PaymentStage)
	}
	if detail.Notes != noteInitialPayment {
		t.Fatalf("expected initial payment note got %q", detail.Notes)
	}
	checkInvariants(t, db, payment.ID)
}

func TestCreatePaymentPartialDeposit(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.Status != models.StatusPartial || payment.PaymentStage != models.StageDeposit {
		t.Fatalf("expected partial/deposit got %s/%s", payment.Status, payment.PaymentStage)
	}
	if payment.RemainingAmount != 2000 {
		t.Fatalf("expected remaining 2000 got %v", payment.RemainingAmount)
	}
	var detail models.PaymentDetail
	if err := db.Where("payment_id = ?", payment.ID).First(&detail).Error; err != nil {
		t.Fatalf("expected deposit detail row: %v", err)
	}
	if detail.PaymentStage != models.StageDeposit || detail.Amount != 1000 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	checkInvariants(t, db, payment.ID)
}

func TestApplyPaymentCompletesCharge(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.ApplyPayment(payment.ID, 2000, "transfer", "paid in full")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Status != models.StatusPaid || updated.PaymentStage != models.StageCompleted {
		t.Fatalf("expected paid/completed got %s/%s", updated.Status, updated.PaymentStage)
	}
	if updated.PaidAmount != 3000 || updated.RemainingAmount != 0 {
		t.Fatalf("unexpected amounts: %+v", updated)
	}
	var details []models.PaymentDetail
	db.Where("payment_id = ?", payment.ID).Order("id asc").Find(&details)
	if len(details) != 2 {
		t.Fatalf("expected 2 detail rows got %d", len(details))
	}
	last := details[1]
	if last.PaymentStage != models.StageRemaining || last.PaymentMethod != "transfer" || last.Notes != "paid in full" {
		t.Fatalf("unexpected balance detail: %+v", last)
	}
	checkInvariants(t, db, payment.ID)
}

func TestApplyPaymentPartialKeepsChargeOpen(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.ApplyPayment(payment.ID, 500, "", "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Status != models.StatusPartial || updated.PaymentStage != models.StageRemaining {
		t.Fatalf("expected partial/remaining got %s/%s", updated.Status, updated.PaymentStage)
	}
	if updated.RemainingAmount != 1500 {
		t.Fatalf("expected remaining 1500 got %v", updated.RemainingAmount)
	}
	// defaults fill in for omitted method/notes
	var last models.PaymentDetail
	db.Where("payment_id = ?", payment.ID).Order("id desc").First(&last)
	if last.PaymentMethod != defaultPaymentMethod || last.Notes != noteBalancePayment {
		t.Fatalf("expected defaults, got %+v", last)
	}
	checkInvariants(t, db, payment.ID)
}

func TestApplyPaymentOverRemainingRejected(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ApplyPayment(payment.ID, 2500, "", ""); !errors.Is(err, ErrInvalidPaymentAmount) {
		t.Fatalf("expected ErrInvalidPaymentAmount got %v", err)
	}
	if _, err := svc.ApplyPayment(payment.ID, 0, "", ""); !errors.Is(err, ErrInvalidPaymentAmount) {
		t.Fatalf("expected ErrInvalidPaymentAmount for zero got %v", err)
	}
	// the charge is untouched
	var reloaded models.Payment
	if err := db.First(&reloaded, payment.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.PaidAmount != 1000 || reloaded.RemainingAmount != 2000 {
		t.Fatalf("payment mutated by rejected application: %+v", reloaded)
	}
	var detailCount int64
	db.Model(&models.PaymentDetail{}).Where("payment_id = ?", payment.ID).Count(&detailCount)
	if detailCount != 1 {
		t.Fatalf("expected 1 detail row got %d", detailCount)
	}
	checkInvariants(t, db, payment.ID)
}

func TestApplyPaymentUnknownPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(db)
	if _, err := svc.ApplyPayment(99, 100, "", ""); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound got %v", err)
	}
}

func TestCreatePaymentDepositExceedsTotal(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	if _, err := svc.CreatePayment(createInput(student.ID, course.ID, 3500)); !errors.Is(err, ErrDepositExceedsTotal) {
		t.Fatalf("expected ErrDepositExceedsTotal got %v", err)
	}
	// rejected before any persistence
	var paymentCount, detailCount int64
	db.Model(&models.Payment{}).Count(&paymentCount)
	db.Model(&models.PaymentDetail{}).Count(&detailCount)
	if paymentCount != 0 || detailCount != 0 {
		t.Fatalf("expected nothing persisted, got %d payments %d details", paymentCount, detailCount)
	}
}

func TestCreatePaymentMissingFeeFields(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	in := createInput(student.ID, course.ID, 0)
	in.FeeItem = "  "
	if _, err := svc.CreatePayment(in); !errors.Is(err, ErrMissingFeeFields) {
		t.Fatalf("expected ErrMissingFeeFields for blank fee item got %v", err)
	}
	in = createInput(student.ID, course.ID, 0)
	in.FeeDate = ""
	if _, err := svc.CreatePayment(in); !errors.Is(err, ErrMissingFeeFields) {
		t.Fatalf("expected ErrMissingFeeFields for blank fee date got %v", err)
	}
	var paymentCount int64
	db.Model(&models.Payment{}).Count(&paymentCount)
	if paymentCount != 0 {
		t.Fatalf("expected nothing persisted, got %d payments", paymentCount)
	}
}

func TestCreatePaymentInvalidCadence(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	in := createInput(student.ID, course.ID, 0)
	in.Cadence = "weekly"
	if _, err := svc.CreatePayment(in); !errors.Is(err, ErrInvalidCadence) {
		t.Fatalf("expected ErrInvalidCadence got %v", err)
	}
}

func TestCreatePaymentZeroPricedCourse(t *testing.T) {
	db := setupTestDB(t)
	student, _ := seedStudentAndCourse(t, db)
	free := models.Course{Name: "Trial"}
	if err := db.Create(&free).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	svc := NewLedgerService(db)
	if _, err := svc.CreatePayment(createInput(student.ID, free.ID, 0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount got %v", err)
	}
}

func TestCreatePaymentUnknownReferences(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	if _, err := svc.CreatePayment(createInput(99, course.ID, 0)); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound got %v", err)
	}
	if _, err := svc.CreatePayment(createInput(student.ID, 99, 0)); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound got %v", err)
	}
}

func TestDeleteStudentGuardedByPayments(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	if _, err := svc.CreatePayment(createInput(student.ID, course.ID, 0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteStudent(student.ID); !errors.Is(err, ErrStudentHasPayments) {
		t.Fatalf("expected ErrStudentHasPayments got %v", err)
	}

	clean := models.Student{Name: "陳小華"}
	if err := db.Create(&clean).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.DeleteStudent(clean.ID); err != nil {
		t.Fatalf("delete unreferenced student: %v", err)
	}
	if err := svc.DeleteStudent(clean.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound got %v", err)
	}
}

func TestDeleteCourseGuardedByPayments(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	if _, err := svc.CreatePayment(createInput(student.ID, course.ID, 0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteCourse(course.ID); !errors.Is(err, ErrCourseHasPayments) {
		t.Fatalf("expected ErrCourseHasPayments got %v", err)
	}

	clean := models.Course{Name: "English", PriceMonthly: 2500}
	if err := db.Create(&clean).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.DeleteCourse(clean.ID); err != nil {
		t.Fatalf("delete unreferenced course: %v", err)
	}
}

func TestDeletePaymentLeavesDetailHistory(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	payment, err := svc.CreatePayment(createInput(student.ID, course.ID, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeletePayment(payment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeletePayment(payment.ID); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound got %v", err)
	}
	// detail rows are deliberately left behind
	var detailCount int64
	db.Model(&models.PaymentDetail{}).Where("payment_id = ?", payment.ID).Count(&detailCount)
	if detailCount != 1 {
		t.Fatalf("expected orphaned detail row to remain, got %d", detailCount)
	}
}

func TestListPaymentsJoinsAndOrders(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	svc := NewLedgerService(db)

	first, err := svc.CreatePayment(createInput(student.ID, course.ID, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreatePayment(createInput(student.ID, course.ID, 500))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// push the first payment back in time so ordering is by date, not id
	if err := db.Model(&models.Payment{}).Where("id = ?", first.ID).
		Update("payment_date", "2024-01-01").Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	rows, err := svc.ListPayments()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rows))
	}
	if rows[0].ID != second.ID || rows[1].ID != first.ID {
		t.Fatalf("expected most recent first, got order %d, %d", rows[0].ID, rows[1].ID)
	}
	if rows[0].StudentName != "王小明" || rows[0].CourseName != "Math" {
		t.Fatalf("expected joined names, got %q / %q", rows[0].StudentName, rows[0].CourseName)
	}
}

func TestListPaymentDetailsUnknownPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(db)
	if _, err := svc.ListPaymentDetails(42); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound got %v", err)
	}
}
