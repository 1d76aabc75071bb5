package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/models"
	"github.com/diewo77/tutoring-app/internal/services"
)

type CourseHandler struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewCourseHandler(db *gorm.DB, ledger *services.LedgerService) *CourseHandler {
	return &CourseHandler{DB: db, Ledger: ledger}
}

type courseReq struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	PriceMonthly    float64 `json:"price_monthly" validate:"gte=0"`
	PriceQuarterly  float64 `json:"price_quarterly" validate:"gte=0"`
	PriceSemiAnnual float64 `json:"price_semi_annual" validate:"gte=0"`
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	var courses []models.Course
	if err := h.DB.Order("name asc").Find(&courses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_courses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req courseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	course := models.Course{
		Name:            req.Name,
		Description:     req.Description,
		PriceMonthly:    req.PriceMonthly,
		PriceQuarterly:  req.PriceQuarterly,
		PriceSemiAnnual: req.PriceSemiAnnual,
	}
	if err := h.DB.Create(&course).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_course", nil)
		return
	}
	httpx.Created(w, course.ID, "course created")
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var course models.Course
	if err := h.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrCourseNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		return
	}
	var req courseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	course.Name = req.Name
	course.Description = req.Description
	course.PriceMonthly = req.PriceMonthly
	course.PriceQuarterly = req.PriceQuarterly
	course.PriceSemiAnnual = req.PriceSemiAnnual
	if err := h.DB.Save(&course).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_course", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "course updated")
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteCourse(pathID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "course deleted")
}
