package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/testutil"
)

// createTestRequest creates a request as HoD and returns its id and item ids
func createTestRequest(t *testing.T, env *testutil.TestEnv) (requestID string, itemIDs []string) {
	t.Helper()
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests", requestBody(), testutil.HoDToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	requestID = data["id"].(string)
	for _, it := range data["items"].([]interface{}) {
		itemIDs = append(itemIDs, it.(map[string]interface{})["id"].(string))
	}
	if len(itemIDs) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(itemIDs))
	}
	return requestID, itemIDs
}

func approveRequest(t *testing.T, env *testutil.TestEnv, requestID string) {
	t.Helper()
	w := testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Approved", "notes": "go ahead"}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on approve, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRequest(t *testing.T) {
	env := setupAPITest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests", requestBody(), testutil.HoDToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != string(entity.RequestStatusPendingAdminReview) {
		t.Errorf("Expected status %q, got %v", entity.RequestStatusPendingAdminReview, data["status"])
	}
	if data["admin_decision"] != string(entity.AdminDecisionPending) {
		t.Errorf("Expected decision Pending, got %v", data["admin_decision"])
	}
	number := data["request_number"].(string)
	if len(number) < 3 || number[:3] != "PR-" {
		t.Errorf("Expected PR- prefixed request number, got %q", number)
	}
}

func TestCreateRequestRejectsNonHoD(t *testing.T) {
	env := setupAPITest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests", requestBody(), testutil.AdminToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	env := setupAPITest(t)

	body := requestBody()
	body["items"] = []map[string]interface{}{
		{"item_name": "Laptop", "quantity": 0},
	}
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests", body, testutil.HoDToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for zero quantity, got %d", w.Code)
	}
}

func TestAdminReviewTransitions(t *testing.T) {
	env := setupAPITest(t)
	requestID, _ := createTestRequest(t, env)

	// Hold first, then approve out of hold
	w := testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Hold", "notes": "need budget check"}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on hold, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != string(entity.RequestStatusAdminHold) {
		t.Errorf("Expected Admin Hold, got %v", data["status"])
	}

	approveRequest(t, env, requestID)

	// Reviewing an already-approved request is a state conflict
	w = testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Rejected"}, testutil.AdminToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on double review, got %d", w.Code)
	}
}

func TestAdminReviewRejectedIsTerminal(t *testing.T) {
	env := setupAPITest(t)
	requestID, _ := createTestRequest(t, env)

	w := testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Rejected", "notes": "no budget"}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on reject, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Approved"}, testutil.AdminToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 approving a rejected request, got %d", w.Code)
	}

	// Unchanged after the failed attempt
	var req entity.ProcurementRequest
	if err := env.DB.First(&req, "id = ?", requestID).Error; err != nil {
		t.Fatalf("Failed to load request: %v", err)
	}
	if req.Status != entity.RequestStatusAdminRejected {
		t.Errorf("Expected request still rejected, got %q", req.Status)
	}
}

func TestAdminReviewInvalidDecision(t *testing.T) {
	env := setupAPITest(t)
	requestID, _ := createTestRequest(t, env)

	w := testutil.DoRequest(env.Router, "PATCH", "/api/v1/procurement-requests/"+requestID+"/admin-review",
		map[string]interface{}{"decision": "Maybe"}, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown decision, got %d", w.Code)
	}
}

func TestSubmitVendorOptions(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	body := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		body, testutil.LogisticsToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != string(entity.RequestStatusVendorsSubmitted) {
		t.Errorf("Expected Vendors Submitted, got %v", data["status"])
	}
	options := data["vendor_options"].([]interface{})
	if len(options) != 3 {
		t.Fatalf("Expected 3 options, got %d", len(options))
	}
	// Each option total = 2*laptop + 5*mouse
	expected := []float64{2*1000 + 5*20, 2*1100 + 5*25, 2*950 + 5*18}
	for i, raw := range options {
		opt := raw.(map[string]interface{})
		if got := opt["total_price"].(float64); got != expected[i] {
			t.Errorf("Option %d: expected total %v, got %v", i+1, expected[i], got)
		}
	}
}

func TestSubmitVendorOptionsWrongCount(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	body := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	body["options"] = body["options"].([]map[string]interface{})[:2]
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		body, testutil.LogisticsToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for two options, got %d", w.Code)
	}

	var count int64
	env.DB.Model(&entity.VendorOption{}).Where("request_id = ?", requestID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no options persisted, got %d", count)
	}
}

func TestSubmitVendorOptionsMissingItemPricing(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	// Third option prices only the laptop
	body := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	options := body["options"].([]map[string]interface{})
	options[2]["items"] = options[2]["items"].([]map[string]interface{})[:1]

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		body, testutil.LogisticsToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for incomplete pricing, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.VendorOption{}).Where("request_id = ?", requestID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no options persisted after failed submit, got %d", count)
	}
}

func TestSubmitVendorOptionsBeforeApproval(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)

	body := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		body, testutil.LogisticsToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 before approval, got %d", w.Code)
	}
}

func TestResubmitVendorOptionsReplacesAll(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	first := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		first, testutil.LogisticsToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on first submit, got %d", w.Code)
	}

	second := vendorOptionsBody(itemIDs, [3]float64{900, 910, 920}, [3]float64{10, 11, 12})
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		second, testutil.LogisticsToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on resubmit, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.VendorOption{}).Where("request_id = ?", requestID).Count(&count)
	if count != 3 {
		t.Errorf("Expected 3 options after replace, got %d", count)
	}
	var itemCount int64
	env.DB.Model(&entity.VendorOptionItem{}).
		Joins("JOIN vendor_options ON vendor_options.id = vendor_option_items.vendor_option_id").
		Where("vendor_options.request_id = ?", requestID).
		Count(&itemCount)
	if itemCount != 6 {
		t.Errorf("Expected 6 option items after replace, got %d", itemCount)
	}
}

func TestSelectVendorMaterializesPO(t *testing.T) {
	env := setupAPITest(t)
	requestID, itemIDs := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	body := vendorOptionsBody(itemIDs, [3]float64{1000, 1100, 950}, [3]float64{20, 25, 18})
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/vendor-options",
		body, testutil.LogisticsToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on submit, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	options := data["vendor_options"].([]interface{})
	secondOption := options[1].(map[string]interface{})

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/select-vendor",
		map[string]interface{}{"vendor_option_id": secondOption["id"]}, testutil.AdminToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	po := testutil.ParseResponse(w)["data"].(map[string]interface{})

	if po["status"] != string(entity.POStatusApproved) {
		t.Errorf("Expected materialized PO Approved, got %v", po["status"])
	}
	expectedTotal := 2*1100.0 + 5*25.0
	if po["total_amount"].(float64) != expectedTotal {
		t.Errorf("Expected total %v, got %v", expectedTotal, po["total_amount"])
	}
	if po["vendor_name"] != "Vendor Two" {
		t.Errorf("Expected Vendor Two, got %v", po["vendor_name"])
	}
	if po["reviewed_by"] == nil {
		t.Error("Expected reviewer set on materialized PO")
	}

	// Request is now terminal with po_id set
	var req entity.ProcurementRequest
	if err := env.DB.First(&req, "id = ?", requestID).Error; err != nil {
		t.Fatalf("Failed to load request: %v", err)
	}
	if req.Status != entity.RequestStatusPOCreated {
		t.Errorf("Expected PO Created, got %q", req.Status)
	}
	if req.POID == nil || *req.POID != po["id"].(string) {
		t.Error("Expected request.po_id to point at materialized PO")
	}

	// Second selection is impossible
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/select-vendor",
		map[string]interface{}{"vendor_option_id": secondOption["id"]}, testutil.AdminToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on double select, got %d", w.Code)
	}
}

func TestSelectVendorBeforeSubmission(t *testing.T) {
	env := setupAPITest(t)
	requestID, _ := createTestRequest(t, env)
	approveRequest(t, env, requestID)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/procurement-requests/"+requestID+"/select-vendor",
		map[string]interface{}{"vendor_option_id": "missing"}, testutil.AdminToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 selecting before submission, got %d", w.Code)
	}
}

func TestRequestVisibility(t *testing.T) {
	env := setupAPITest(t)
	requestID, _ := createTestRequest(t, env)

	// Author sees it
	w := testutil.DoRequest(env.Router, "GET", "/api/v1/procurement-requests/"+requestID, nil, testutil.HoDToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for author, got %d", w.Code)
	}

	// Another HoD in the same org does not
	otherToken := testutil.GenerateTestToken("user-hod-002", testutil.TestOrgID, entity.RoleHeadOfDepartment)
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/procurement-requests/"+requestID, nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for other author, got %d", w.Code)
	}

	// Logistics cannot see it while pending review
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/procurement-requests/"+requestID, nil, testutil.LogisticsToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for logistics on pending request, got %d", w.Code)
	}

	// Outside the org it does not exist at all
	foreignToken := testutil.GenerateTestToken("user-admin-900", "org-other-0001", entity.RoleAdmin)
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/procurement-requests/"+requestID, nil, foreignToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 outside org, got %d", w.Code)
	}
}

func TestListRequestsScopedToAuthor(t *testing.T) {
	env := setupAPITest(t)
	createTestRequest(t, env)

	otherToken := testutil.GenerateTestToken("user-hod-002", testutil.TestOrgID, entity.RoleHeadOfDepartment)
	w := testutil.DoRequest(env.Router, "GET", "/api/v1/procurement-requests", nil, otherToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 0 {
		t.Errorf("Expected empty list for other author, got %d items", len(items))
	}
}
