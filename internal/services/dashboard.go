package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/models"
)

// DashboardStats is the shape the back-office landing page renders.
type DashboardStats struct {
	TotalStudents   int64   `json:"total_students"`
	TotalCourses    int64   `json:"total_courses"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	PendingPayments int64   `json:"pending_payments"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService { return &DashboardService{db: db} }

// Stats aggregates the headline numbers: roster and catalog sizes, money
// actually received in the current calendar month, and charges still open.
func (s *DashboardService) Stats() (*DashboardStats, error) {
	var stats DashboardStats
	if err := s.db.Model(&models.Student{}).Count(&stats.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, err
	}
	monthStart := time.Now().Format("2006-01") + "-01"
	err := s.db.Model(&models.PaymentDetail{}).
		Where("payment_date >= ?", monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.MonthlyRevenue).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Payment{}).
		Where("status IN ?", []string{models.StatusPending, models.StatusPartial}).
		Count(&stats.PendingPayments).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
