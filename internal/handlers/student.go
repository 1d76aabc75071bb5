package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/models"
	"github.com/diewo77/tutoring-app/internal/services"
)

type StudentHandler struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewStudentHandler(db *gorm.DB, ledger *services.LedgerService) *StudentHandler {
	return &StudentHandler{DB: db, Ledger: ledger}
}

type studentReq struct {
	Name           string `json:"name" validate:"required"`
	EnglishName    string `json:"english_name"`
	BirthDate      string `json:"birth_date"`
	SchoolClass    string `json:"school_class"`
	Phone          string `json:"phone"`
	Email          string `json:"email" validate:"omitempty,email"`
	Address        string `json:"address"`
	ParentName     string `json:"parent_name"`
	ParentPhone    string `json:"parent_phone"`
	EnrollmentDate string `json:"enrollment_date"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	var students []models.Student
	if err := h.DB.Order("name asc").Find(&students).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_students", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, students)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var student models.Student
	if err := h.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrStudentNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	student := models.Student{
		Name:           req.Name,
		EnglishName:    req.EnglishName,
		BirthDate:      req.BirthDate,
		SchoolClass:    req.SchoolClass,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		ParentName:     req.ParentName,
		ParentPhone:    req.ParentPhone,
		EnrollmentDate: req.EnrollmentDate,
		Status:         req.Status,
	}
	if student.EnrollmentDate == "" {
		student.EnrollmentDate = time.Now().Format("2006-01-02")
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if err := h.DB.Create(&student).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_student", nil)
		return
	}
	httpx.Created(w, student.ID, "student created")
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var student models.Student
	if err := h.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrStudentNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	var req studentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	student.Name = req.Name
	student.EnglishName = req.EnglishName
	student.BirthDate = req.BirthDate
	student.SchoolClass = req.SchoolClass
	student.Phone = req.Phone
	student.Email = req.Email
	student.Address = req.Address
	student.ParentName = req.ParentName
	student.ParentPhone = req.ParentPhone
	if req.EnrollmentDate != "" {
		student.EnrollmentDate = req.EnrollmentDate
	}
	if req.Status != "" {
		student.Status = req.Status
	}
	if err := h.DB.Save(&student).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_student", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "student updated")
}

// Delete refuses to remove a student who has payment records; the roster keeps
// them with status inactive instead.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteStudent(pathID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "student deleted")
}

// pathID pulls the {id} route variable; mux guarantees the [0-9]+ pattern.
func pathID(r *http.Request) uint {
	n, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(n)
}
