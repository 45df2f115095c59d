package handler

import (
	"net/http"
	"strconv"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// CreateOrder godoc
// @Summary      Create an order
// @Description  Reserves stock for every line and stores a COMPLETED order in one transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Order lines"
// @Success      201  {object} dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	order, err := h.svc.CreateOrder(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Refund godoc
// @Summary      Refund an order
// @Description  Moves a COMPLETED order to REFUNDED and restores its stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true  "Order id"
// @Param        body body dto.RefundOrderRequest false "Reason"
// @Success      200  {object} dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders/{id}/refund [post]
func (h *OrdersHandler) Refund(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RefundOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	order, err := h.svc.RefundOrder(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "Order id"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// List godoc
// @Summary      List orders
// @Description  Filters combine with AND. One of branch_id, cashier_id or customer_id is required.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id    query string false "Branch"
// @Param        cashier_id   query string false "Cashier"
// @Param        customer_id  query string false "Customer"
// @Param        payment_type query string false "CASH, CARD or ONLINE"
// @Param        status       query string false "COMPLETED or REFUNDED"
// @Success      200 {object} dto.ListResponse[dto.OrderResponse]
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !bindQuery(c, &q) {
		return
	}

	branchID := optionalUUID(q.BranchID)
	filter := repository.OrderFilter{
		CashierID:  optionalUUID(q.CashierID),
		CustomerID: optionalUUID(q.CustomerID),
	}
	if q.PaymentType != "" {
		pt := model.PaymentType(q.PaymentType)
		filter.PaymentType = &pt
	}
	if q.Status != "" {
		st := model.OrderStatus(q.Status)
		filter.Status = &st
	}

	var (
		orders []model.Order
		err    error
	)
	switch {
	case branchID != nil:
		orders, err = h.svc.ListOrders(c.Request.Context(), *branchID, filter)
	case filter.CustomerID != nil && filter.CashierID == nil && filter.PaymentType == nil && filter.Status == nil:
		orders, err = h.svc.ListByCustomer(c.Request.Context(), *filter.CustomerID)
	case filter.CashierID != nil && filter.CustomerID == nil && filter.PaymentType == nil && filter.Status == nil:
		orders, err = h.svc.ListByCashier(c.Request.Context(), *filter.CashierID)
	default:
		c.JSON(http.StatusUnprocessableEntity, apierror.New("branch_id is required unless filtering by a single cashier_id or customer_id"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderList(orders))
}

// Recent godoc
// @Summary      Latest orders of a branch
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true  "Branch"
// @Param        limit     query int    false "Defaults to 5"
// @Success      200 {object} dto.ListResponse[dto.OrderResponse]
// @Router       /v1/orders/recent [get]
func (h *OrdersHandler) Recent(c *gin.Context) {
	branchID, ok := requiredBranch(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, apierror.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	orders, err := h.svc.ListRecentByBranch(c.Request.Context(), branchID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderList(orders))
}

// Today godoc
// @Summary      Orders of a branch created today
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true "Branch"
// @Success      200 {object} dto.ListResponse[dto.OrderResponse]
// @Router       /v1/orders/today [get]
func (h *OrdersHandler) Today(c *gin.Context) {
	branchID, ok := requiredBranch(c)
	if !ok {
		return
	}
	orders, err := h.svc.ListTodayByBranch(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderList(orders))
}

// Refunds godoc
// @Summary      Refunds of a branch
// @Tags         refunds
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true "Branch"
// @Success      200 {object} dto.ListResponse[dto.RefundResponse]
// @Router       /v1/refunds [get]
func (h *OrdersHandler) Refunds(c *gin.Context) {
	branchID, ok := requiredBranch(c)
	if !ok {
		return
	}
	refunds, err := h.svc.ListRefundsByBranch(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundList(refunds))
}
