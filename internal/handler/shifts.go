package handler

import (
	"context"
	"net/http"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftsHandler struct {
	svc service.ShiftService
	loc *time.Location
}

// NewShiftsHandler interprets calendar dates in loc.
func NewShiftsHandler(svc service.ShiftService, loc *time.Location) *ShiftsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ShiftsHandler{svc: svc, loc: loc}
}

// Start godoc
// @Summary      Start the caller's shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} dto.ShiftResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/shifts/start [post]
func (h *ShiftsHandler) Start(c *gin.Context) {
	h.callerAction(c, http.StatusCreated, h.svc.StartShift)
}

// End godoc
// @Summary      Close the caller's open shift
// @Description  Computes and stores the final shift report.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/end [patch]
func (h *ShiftsHandler) End(c *gin.Context) {
	h.callerAction(c, http.StatusOK, h.svc.EndShift)
}

// Current godoc
// @Summary      Progress of the caller's open shift
// @Description  Read only; nothing is stored.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/current [get]
func (h *ShiftsHandler) Current(c *gin.Context) {
	h.callerAction(c, http.StatusOK, h.svc.GetCurrentShiftProgress)
}

// Refresh godoc
// @Summary      Store the open shift's current aggregates
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/current/refresh [post]
func (h *ShiftsHandler) Refresh(c *gin.Context) {
	h.callerAction(c, http.StatusOK, h.svc.RefreshShiftProgress)
}

// ByDate godoc
// @Summary      Shift of a cashier on a date
// @Description  Returns the latest shift started that day. cashier_id defaults to the caller.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        cashier_id query string false "Cashier"
// @Param        date       query string true  "YYYY-MM-DD"
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/by-date [get]
func (h *ShiftsHandler) ByDate(c *gin.Context) {
	var q dto.ShiftByDateQuery
	if !bindQuery(c, &q) {
		return
	}
	cashier := optionalUUID(q.CashierID)
	if cashier == nil {
		id, ok := callerID(c)
		if !ok {
			return
		}
		cashier = &id
	}
	date, err := time.ParseInLocation(time.DateOnly, q.Date, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("date must be YYYY-MM-DD"))
		return
	}
	report, err := h.svc.GetShiftByCashierAndDate(c.Request.Context(), *cashier, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftResponse(report))
}

// Get godoc
// @Summary      Get a shift report
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "Shift id"
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/{id} [get]
func (h *ShiftsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.svc.GetShift(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftResponse(report))
}

// List godoc
// @Summary      List shift reports
// @Description  Exactly one of branch_id or cashier_id is required.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id  query string false "Branch"
// @Param        cashier_id query string false "Cashier"
// @Success      200 {object} dto.ListResponse[dto.ShiftResponse]
// @Router       /v1/shifts [get]
func (h *ShiftsHandler) List(c *gin.Context) {
	var q dto.ShiftListQuery
	if !bindQuery(c, &q) {
		return
	}
	var (
		reports []model.ShiftReport
		err     error
	)
	switch {
	case q.BranchID != "" && q.CashierID == "":
		reports, err = h.svc.ListShiftsByBranch(c.Request.Context(), *optionalUUID(q.BranchID))
	case q.CashierID != "" && q.BranchID == "":
		reports, err = h.svc.ListShiftsByCashier(c.Request.Context(), *optionalUUID(q.CashierID))
	default:
		c.JSON(http.StatusUnprocessableEntity, apierror.New("exactly one of branch_id or cashier_id is required"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftList(reports))
}

func (h *ShiftsHandler) callerAction(c *gin.Context, okStatus int, fn func(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error)) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	report, err := fn(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(okStatus, toShiftResponse(report))
}
