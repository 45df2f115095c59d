package handler

import (
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          o.ID.String(),
		BranchID:    o.BranchID.String(),
		CashierID:   o.CashierID.String(),
		Items:       make([]dto.OrderItemResponse, len(o.Items)),
		Discount:    o.Discount,
		Note:        o.Note,
		PaymentType: string(o.PaymentType),
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		CreatedAt:   formatTime(o.CreatedAt),
	}
	if o.CustomerID != nil {
		s := o.CustomerID.String()
		resp.CustomerID = &s
	}
	for i, it := range o.Items {
		item := dto.OrderItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
			item.SKU = it.Product.SKU
		}
		resp.Items[i] = item
	}
	return resp
}

func toOrderList(orders []model.Order) dto.ListResponse[dto.OrderResponse] {
	out := dto.ListResponse[dto.OrderResponse]{Data: make([]dto.OrderResponse, len(orders)), Total: len(orders)}
	for i := range orders {
		out.Data[i] = toOrderResponse(&orders[i])
	}
	return out
}

func toRefundResponse(r *model.Refund) dto.RefundResponse {
	return dto.RefundResponse{
		ID:          r.ID.String(),
		OrderID:     r.OrderID.String(),
		Reason:      r.Reason,
		Amount:      r.Amount,
		CashierID:   r.CashierID.String(),
		BranchID:    r.BranchID.String(),
		PaymentType: string(r.PaymentType),
		CreatedAt:   formatTime(r.CreatedAt),
	}
}

func toRefundList(refunds []model.Refund) dto.ListResponse[dto.RefundResponse] {
	out := dto.ListResponse[dto.RefundResponse]{Data: make([]dto.RefundResponse, len(refunds)), Total: len(refunds)}
	for i := range refunds {
		out.Data[i] = toRefundResponse(&refunds[i])
	}
	return out
}

func toShiftResponse(r *model.ShiftReport) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:                 r.ID.String(),
		CashierID:          r.CashierID.String(),
		BranchID:           r.BranchID.String(),
		ShiftStart:         formatTime(r.ShiftStart),
		Open:               r.Open(),
		TotalSales:         r.TotalSales,
		TotalRefunds:       r.TotalRefunds,
		NetSale:            r.NetSale,
		TotalOrders:        r.TotalOrders,
		PaymentSummaries:   make([]dto.PaymentSummaryResponse, len(r.PaymentSummaries)),
		TopSellingProducts: make([]dto.TopProductResponse, len(r.TopSellingProducts)),
		RecentOrders:       make([]dto.OrderResponse, len(r.RecentOrders)),
		Refunds:            make([]dto.RefundResponse, len(r.Refunds)),
	}
	if r.ShiftEnd != nil {
		s := formatTime(*r.ShiftEnd)
		resp.ShiftEnd = &s
	}
	for i, ps := range r.PaymentSummaries {
		resp.PaymentSummaries[i] = dto.PaymentSummaryResponse{
			PaymentType:      string(ps.PaymentType),
			TotalAmount:      ps.TotalAmount,
			TransactionCount: ps.TransactionCount,
			Percentage:       ps.Percentage,
		}
	}
	for i, p := range r.TopSellingProducts {
		resp.TopSellingProducts[i] = dto.TopProductResponse{
			ProductID:    p.ProductID.String(),
			Name:         p.Name,
			SKU:          p.SKU,
			QuantitySold: p.QuantitySold,
		}
	}
	for i := range r.RecentOrders {
		resp.RecentOrders[i] = toOrderResponse(&r.RecentOrders[i])
	}
	for i := range r.Refunds {
		resp.Refunds[i] = toRefundResponse(&r.Refunds[i])
	}
	return resp
}

func toShiftList(reports []model.ShiftReport) dto.ListResponse[dto.ShiftResponse] {
	out := dto.ListResponse[dto.ShiftResponse]{Data: make([]dto.ShiftResponse, len(reports)), Total: len(reports)}
	for i := range reports {
		out.Data[i] = toShiftResponse(&reports[i])
	}
	return out
}
