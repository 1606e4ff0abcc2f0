package dto

import (
	"time"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func MoneyFromDomain(m money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   m.Amount,
		Currency: m.Currency,
		Display:  m.Decimal(),
	}
}

type BookingSummary struct {
	ID                 string    `json:"id"`
	GroupID            string    `json:"group_id,omitempty"`
	ListingID          string    `json:"listing_id"`
	GuestID            string    `json:"guest_id"`
	StartAt            time.Time `json:"start_at"`
	Hours              []int     `json:"hours"`
	TotalPrice         MoneyDTO  `json:"total_price"`
	ServiceFee         MoneyDTO  `json:"service_fee"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"payment_status"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	RefundAmount       MoneyDTO  `json:"refund_amount"`
	RefundProcessed    bool      `json:"refund_processed"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func BookingFromDomain(b *booking.Booking) BookingSummary {
	return BookingSummary{
		ID:                 string(b.ID),
		GroupID:            b.GroupID,
		ListingID:          string(b.ListingID),
		GuestID:            b.GuestID,
		StartAt:            b.StartAt,
		Hours:              b.Hours,
		TotalPrice:         MoneyFromDomain(b.TotalPrice),
		ServiceFee:         MoneyFromDomain(b.ServiceFee),
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		CancellationReason: b.CancellationReason,
		RefundAmount:       MoneyFromDomain(b.RefundAmount),
		RefundProcessed:    b.RefundProcessed,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

type CancellationQuote struct {
	BookingID        string   `json:"booking_id"`
	CanCancel        bool     `json:"can_cancel"`
	RefundPercentage int      `json:"refund_percentage"`
	RefundAmount     MoneyDTO `json:"refund_amount"`
	CancellationFee  MoneyDTO `json:"cancellation_fee"`
	Reason           string   `json:"reason,omitempty"`
	HoursUntilStart  float64  `json:"hours_until_start"`
}

func QuoteFromResult(bookingID string, r booking.CancellationResult) CancellationQuote {
	return CancellationQuote{
		BookingID:        bookingID,
		CanCancel:        r.CanCancel,
		RefundPercentage: r.RefundPercentage,
		RefundAmount:     MoneyFromDomain(r.RefundAmount),
		CancellationFee:  MoneyFromDomain(r.CancellationFee),
		Reason:           r.Reason,
		HoursUntilStart:  r.HoursUntilStart,
	}
}

type GroupCancellationQuote struct {
	GroupID             string   `json:"group_id"`
	BookingCount        int      `json:"booking_count"`
	CanCancel           bool     `json:"can_cancel"`
	RefundPercentage    int      `json:"refund_percentage"`
	RefundAmount        MoneyDTO `json:"refund_amount"`
	CancellationFee     MoneyDTO `json:"cancellation_fee"`
	TotalOriginalAmount MoneyDTO `json:"total_original_amount"`
	Reason              string   `json:"reason,omitempty"`
	HoursUntilStart     float64  `json:"hours_until_start"`
}

func GroupQuoteFromResult(groupID string, count int, r booking.GroupCancellationResult) GroupCancellationQuote {
	return GroupCancellationQuote{
		GroupID:             groupID,
		BookingCount:        count,
		CanCancel:           r.CanCancel,
		RefundPercentage:    r.RefundPercentage,
		RefundAmount:        MoneyFromDomain(r.RefundAmount),
		CancellationFee:     MoneyFromDomain(r.CancellationFee),
		TotalOriginalAmount: MoneyFromDomain(r.TotalOriginalAmount),
		Reason:              r.Reason,
		HoursUntilStart:     r.HoursUntilStart,
	}
}
