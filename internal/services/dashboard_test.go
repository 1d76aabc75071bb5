package services

import "testing"

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	student, course := seedStudentAndCourse(t, db)
	ledger := NewLedgerService(db)

	// one open charge with a deposit received today, one fully settled
	if _, err := ledger.CreatePayment(createInput(student.ID, course.ID, 1000)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ledger.CreatePayment(createInput(student.ID, course.ID, 3000)); err != nil {
		t.Fatalf("create: %v", err)
	}

	stats, err := NewDashboardService(db).Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalStudents != 1 {
		t.Fatalf("expected 1 student got %d", stats.TotalStudents)
	}
	if stats.TotalCourses != 1 {
		t.Fatalf("expected 1 course got %d", stats.TotalCourses)
	}
	// both deposits landed this month
	if stats.MonthlyRevenue != 4000 {
		t.Fatalf("expected monthly revenue 4000 got %v", stats.MonthlyRevenue)
	}
	// only the partially paid charge is still open
	if stats.PendingPayments != 1 {
		t.Fatalf("expected 1 pending payment got %d", stats.PendingPayments)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	stats, err := NewDashboardService(db).Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalStudents != 0 || stats.TotalCourses != 0 || stats.MonthlyRevenue != 0 || stats.PendingPayments != 0 {
		t.Fatalf("expected zeroed stats got %+v", stats)
	}
}
