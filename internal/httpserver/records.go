package httpserver

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/apperr"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/service"
)

type RecordHandler struct {
	Records *service.RecordService
}

type recordCreateRequest struct {
	PatientID string `json:"patient_id"`
	Diagnosis string `json:"diagnosis"`
	Visit     string `json:"visit"`
	Treatment string `json:"treatment"`
}

func (r recordCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PatientID, validation.Required),
		validation.Field(&r.Visit, validation.Required),
	)
}

func (h *RecordHandler) Create(c echo.Context) error {
	var req recordCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return apperr.ErrPatientNotFound
	}

	user := authmw.UserFromContext(c)
	record := models.PatientRecord{
		Diagnosis:   req.Diagnosis,
		Visit:       req.Visit,
		Treatment:   req.Treatment,
		PatientID:   patientID,
		TherapistID: user.ID,
	}

	if err := h.Records.Create(c.Request().Context(), &record); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, record)
}

func (h *RecordHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrRecordNotFound
	}

	user := authmw.UserFromContext(c)
	record, err := h.Records.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

func (h *RecordHandler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrPatientNotFound
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	user := authmw.UserFromContext(c)
	records, err := h.Records.ListByPatient(c.Request().Context(), patientID, user.ID, offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *RecordHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrRecordNotFound
	}

	var req service.RecordUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user := authmw.UserFromContext(c)
	record, err := h.Records.Update(c.Request().Context(), id, user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

func (h *RecordHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrRecordNotFound
	}

	user := authmw.UserFromContext(c)
	if err := h.Records.Delete(c.Request().Context(), id, user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
