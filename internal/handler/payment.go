package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/order"
)

type SignatureVerifier interface {
	Verify(gatewayOrderId string, gatewayPaymentId string, signature string) bool
}

type VerifyPaymentRequest struct {
	RazorpayOrderId   string `json:"razorpay_order_id"`
	RazorpayPaymentId string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderId           string `json:"order_id"`
}

type VerifyPaymentResponse struct {
	Success bool `json:"success"`
}

type PaymentHandlerInterface interface {
	Verify(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error)
}

type PaymentHandler struct {
	verifier SignatureVerifier
	store    order.Store
}

func NewPaymentHandler(verifier SignatureVerifier, store order.Store) *PaymentHandler {
	return &PaymentHandler{
		verifier,
		store,
	}
}

func (h *PaymentHandler) Verify(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error) {
	if req.OrderId == "" || req.RazorpayOrderId == "" || req.RazorpayPaymentId == "" {
		return VerifyPaymentResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing required fields"))
	}

	if !h.verifier.Verify(req.RazorpayOrderId, req.RazorpayPaymentId, req.RazorpaySignature) {
		return VerifyPaymentResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid signature"))
	}

	err := h.store.ConfirmPayment(ctx, order.PaymentConfirmation{
		OrderId:          req.OrderId,
		GatewayOrderId:   req.RazorpayOrderId,
		GatewayPaymentId: req.RazorpayPaymentId,
	})
	if err != nil {
		return VerifyPaymentResponse{}, err
	}

	return VerifyPaymentResponse{Success: true}, nil
}
