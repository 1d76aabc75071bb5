package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/models"
	"github.com/diewo77/tutoring-app/internal/services"
)

type EnrollmentHandler struct {
	DB *gorm.DB
}

func NewEnrollmentHandler(db *gorm.DB) *EnrollmentHandler { return &EnrollmentHandler{DB: db} }

type enrollmentReq struct {
	CourseID    uint   `json:"course_id" validate:"required"`
	PaymentType string `json:"payment_type" validate:"required,oneof=monthly quarterly semi_annual"`
	StartDate   string `json:"start_date"`
}

// ListForStudent returns the enrollments of one student, newest first.
func (h *EnrollmentHandler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID := pathID(r)
	var student models.Student
	if err := h.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrStudentNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	var enrollments []models.Enrollment
	if err := h.DB.Where("student_id = ?", studentID).Order("id desc").Find(&enrollments).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_enrollments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, enrollments)
}

// Create enrolls a student in a course at a billing cadence.
func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	studentID := pathID(r)
	var req enrollmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	var student models.Student
	if err := h.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrStudentNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	var course models.Course
	if err := h.DB.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrCourseNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	enrollment := models.Enrollment{
		StudentID:   studentID,
		CourseID:    req.CourseID,
		PaymentType: models.Cadence(req.PaymentType),
		StartDate:   req.StartDate,
		Status:      models.EnrollmentStatusActive,
	}
	if enrollment.StartDate == "" {
		enrollment.StartDate = time.Now().Format("2006-01-02")
	}
	if err := h.DB.Create(&enrollment).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_enrollment", nil)
		return
	}
	httpx.Created(w, enrollment.ID, "enrollment created")
}

// End marks an enrollment as ended as of today.
func (h *EnrollmentHandler) End(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var enrollment models.Enrollment
	if err := h.DB.First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "enrollment not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	enrollment.Status = models.EnrollmentStatusEnded
	enrollment.EndDate = time.Now().Format("2006-01-02")
	if err := h.DB.Save(&enrollment).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_enrollment", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "enrollment ended")
}
