package entity

import "testing"

func TestRequestTransitions(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		ok       bool
	}{
		{RequestStatusPendingAdminReview, RequestStatusAdminApproved, true},
		{RequestStatusPendingAdminReview, RequestStatusAdminRejected, true},
		{RequestStatusPendingAdminReview, RequestStatusAdminHold, true},
		{RequestStatusPendingAdminReview, RequestStatusVendorsSubmitted, false},
		{RequestStatusAdminHold, RequestStatusAdminApproved, true},
		{RequestStatusAdminHold, RequestStatusAdminHold, true}, // re-entrant, notes updated
		{RequestStatusAdminApproved, RequestStatusVendorsSubmitted, true},
		{RequestStatusAdminApproved, RequestStatusPOCreated, false},
		{RequestStatusVendorsSubmitted, RequestStatusVendorsSubmitted, true}, // replace all
		{RequestStatusVendorsSubmitted, RequestStatusPOCreated, true},
		{RequestStatusAdminRejected, RequestStatusAdminApproved, false},
		{RequestStatusPOCreated, RequestStatusVendorsSubmitted, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !IsTerminalRequestStatus(RequestStatusAdminRejected) {
		t.Error("Admin Rejected must be terminal")
	}
	if !IsTerminalRequestStatus(RequestStatusPOCreated) {
		t.Error("PO Created must be terminal")
	}
	if IsTerminalRequestStatus(RequestStatusAdminHold) {
		t.Error("Admin Hold must not be terminal")
	}
	for from := range ValidRequestTransitions {
		if IsTerminalRequestStatus(from) {
			t.Errorf("Terminal status %q must have no outgoing transitions", from)
		}
	}
}

func TestDecisionStatus(t *testing.T) {
	if s, ok := DecisionStatus(AdminDecisionApproved); !ok || s != RequestStatusAdminApproved {
		t.Errorf("Approved -> %q, %v", s, ok)
	}
	if s, ok := DecisionStatus(AdminDecisionRejected); !ok || s != RequestStatusAdminRejected {
		t.Errorf("Rejected -> %q, %v", s, ok)
	}
	if s, ok := DecisionStatus(AdminDecisionHold); !ok || s != RequestStatusAdminHold {
		t.Errorf("Hold -> %q, %v", s, ok)
	}
	if _, ok := DecisionStatus(AdminDecisionPending); ok {
		t.Error("Pending is not a reviewable decision")
	}
	if _, ok := DecisionStatus(AdminDecision("Maybe")); ok {
		t.Error("Unknown decision must not map to a status")
	}
}

func TestLegacyNormalization(t *testing.T) {
	// Legacy strings normalize to the same canonical values as their modern equivalents
	if NormalizePOStatus("On Hold") != POStatusHold {
		t.Error("On Hold should normalize to Hold")
	}
	if NormalizePOStatus(string(POStatusHold)) != POStatusHold {
		t.Error("Hold should stay Hold")
	}
	if NormalizeDeliveryStatus("Not Delivered") != DeliveryStatusNotReceived {
		t.Error("Not Delivered should normalize to Not Received")
	}
	if NormalizeDeliveryStatus("Partially Delivered") != DeliveryStatusPartiallyReceived {
		t.Error("Partially Delivered should normalize to Partially Received")
	}
	if NormalizeDeliveryStatus("Delivered") != DeliveryStatusReceived {
		t.Error("Delivered should normalize to Received Delivery")
	}
	// Unknown values pass through untouched
	if NormalizePOStatus("Weird") != POStatus("Weird") {
		t.Error("Unknown status must pass through")
	}
}

func TestStatusQueryValues(t *testing.T) {
	values := POStatusQueryValues(POStatusHold)
	if len(values) != 2 {
		t.Fatalf("Expected canonical + legacy value for Hold, got %v", values)
	}
	values = POStatusQueryValues(POStatusApproved)
	if len(values) != 1 || values[0] != string(POStatusApproved) {
		t.Errorf("Approved has no legacy synonym, got %v", values)
	}
	delivered := DeliveryStatusQueryValues(DeliveryStatusReceived)
	if len(delivered) != 2 {
		t.Errorf("Expected Received Delivery + Delivered, got %v", delivered)
	}
}

func TestVendorOptionComputeTotals(t *testing.T) {
	opt := VendorOption{
		Items: []VendorOptionItem{
			{UnitPrice: 1000, Quantity: 2},
			{UnitPrice: 20, Quantity: 5},
		},
	}
	opt.ComputeTotals()
	if opt.TotalPrice != 2100 {
		t.Errorf("Expected total 2100, got %v", opt.TotalPrice)
	}
	if opt.Items[0].TotalPrice != 2000 || opt.Items[1].TotalPrice != 100 {
		t.Errorf("Unexpected line totals: %v, %v", opt.Items[0].TotalPrice, opt.Items[1].TotalPrice)
	}
	// Invariant: option total equals the sum of its line totals
	var sum float64
	for _, it := range opt.Items {
		sum += it.TotalPrice
	}
	if sum != opt.TotalPrice {
		t.Errorf("Line totals %v do not sum to option total %v", sum, opt.TotalPrice)
	}
}

func TestIsValidPaymentAndDeliveryStatus(t *testing.T) {
	if !IsValidPaymentStatus(PaymentStatusPartiallyPaid) {
		t.Error("Partially Paid must be valid")
	}
	if IsValidPaymentStatus(PaymentStatus("Refunded")) {
		t.Error("Refunded must be invalid")
	}
	if !IsValidDeliveryStatus(DeliveryStatusReceived) {
		t.Error("Received Delivery must be valid")
	}
	if IsValidDeliveryStatus(DeliveryStatus("Delivered")) {
		t.Error("Legacy wording is not accepted as input")
	}
	if !IsValidPOReview(POStatusHold) {
		t.Error("Hold must be a valid review outcome")
	}
	if IsValidPOReview(POStatusPending) {
		t.Error("Pending is not a review outcome")
	}
}
