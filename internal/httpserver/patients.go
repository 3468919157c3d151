package httpserver

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/filter"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/service"
)

type PatientHandler struct {
	Patients *service.PatientService
}

type patientCreateRequest struct {
	Gender            string `json:"gender"`
	Birthday          string `json:"birthday"`
	FullName          string `json:"full_name"`
	LivingPlace       string `json:"living_place"`
	JobTitle          string `json:"job_title"`
	InhabitedLocality string `json:"inhabited_locality"`
	BP                bool   `json:"bp"`
	Ischemia          bool   `json:"ischemia"`
	Dep               bool   `json:"dep"`
}

func (r patientCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Gender, validation.Required),
		validation.Field(&r.FullName, validation.Required),
		validation.Field(&r.Birthday, validation.Date("2006-01-02")),
	)
}

func (h *PatientHandler) Create(c echo.Context) error {
	var req patientCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user := authmw.UserFromContext(c)
	patient := models.Patient{
		Gender:            req.Gender,
		Birthday:          req.Birthday,
		FullName:          req.FullName,
		LivingPlace:       req.LivingPlace,
		JobTitle:          req.JobTitle,
		InhabitedLocality: req.InhabitedLocality,
		BP:                req.BP,
		Ischemia:          req.Ischemia,
		Dep:               req.Dep,
		TherapistID:       user.ID,
	}

	if err := h.Patients.Create(c.Request().Context(), &patient); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, patient)
}

func (h *PatientHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrPatientNotFound
	}

	patient, err := h.Patients.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

type patientSearchRequest struct {
	Filters    []filter.Rule `json:"filters"`
	Sorting    []filter.Sort `json:"sorting"`
	GlobalRule string        `json:"global_rule"`
	Offset     int           `json:"offset"`
	Limit      int           `json:"limit"`
}

// Search is open to both roles; the response shape depends on the caller's
// role.
func (h *PatientHandler) Search(c echo.Context) error {
	var req patientSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user := authmw.UserFromContext(c)
	result, err := h.Patients.Search(c.Request().Context(), user.Role, service.PatientSearch{
		Filters:    req.Filters,
		Sorting:    req.Sorting,
		GlobalRule: req.GlobalRule,
		Offset:     req.Offset,
		Limit:      req.Limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PatientHandler) ListMine(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	user := authmw.UserFromContext(c)
	patients, err := h.Patients.ListByTherapist(c.Request().Context(), user.ID, offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *PatientHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrPatientNotFound
	}

	var req service.PatientUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user := authmw.UserFromContext(c)
	patient, err := h.Patients.Update(c.Request().Context(), id, user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrPatientNotFound
	}

	user := authmw.UserFromContext(c)
	if err := h.Patients.Delete(c.Request().Context(), id, user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
