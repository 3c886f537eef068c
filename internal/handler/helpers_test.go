package handler

import (
	"testing"

	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/bitfantasy/potrack/internal/testutil"
	"go.uber.org/zap"
)

// setupAPITest wires the full API against a schema-per-test database.
// The dashboard service runs without redis so stats are always computed fresh.
func setupAPITest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db, zap.NewNop())
	requestSvc := service.NewRequestService(repos, db)
	poSvc := service.NewPOService(repos, db)
	dashboardSvc := service.NewDashboardService(repos, nil)
	userSvc := service.NewUserService(repos, db)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	requestHandler := NewRequestHandler(requestSvc)
	api.GET("/procurement-requests", requestHandler.ListRequests)
	api.GET("/procurement-requests/:id", requestHandler.GetRequest)
	api.POST("/procurement-requests", requestHandler.CreateRequest)
	api.PATCH("/procurement-requests/:id/admin-review", requestHandler.AdminReview)
	api.POST("/procurement-requests/:id/vendor-options", requestHandler.SubmitVendorOptions)
	api.POST("/procurement-requests/:id/select-vendor", requestHandler.SelectVendor)

	poHandler := NewPOHandler(poSvc)
	api.GET("/purchase-orders", poHandler.ListPOs)
	api.GET("/purchase-orders/export", poHandler.ExportPOs)
	api.GET("/purchase-orders/:id", poHandler.GetPO)
	api.POST("/purchase-orders", poHandler.CreatePO)
	api.PATCH("/purchase-orders/:id/review", poHandler.ReviewPO)
	api.PATCH("/purchase-orders/:id/payment", poHandler.UpdatePayment)
	api.PATCH("/purchase-orders/:id/delivery", poHandler.UpdateDelivery)
	api.GET("/purchase-orders/:id/payment-history", poHandler.GetPaymentHistory)
	api.GET("/purchase-orders/:id/delivery-history", poHandler.GetDeliveryHistory)

	dashboardHandler := NewDashboardHandler(dashboardSvc)
	api.GET("/dashboard/stats", dashboardHandler.GetStats)

	userHandler := NewUserHandler(userSvc)
	api.GET("/users", userHandler.ListUsers)
	api.PATCH("/users/:id/role", userHandler.ChangeRole)
	api.PATCH("/users/:id/status", userHandler.SetActive)
	api.PATCH("/users/:id/password", userHandler.ResetPassword)

	env := &testutil.TestEnv{DB: db, Router: router, T: t}
	testutil.SeedTestOrg(t, db)
	testutil.SeedTestUser(t, db, "user-hod-001", entity.RoleHeadOfDepartment)
	testutil.SeedTestUser(t, db, "user-admin-001", entity.RoleAdmin)
	testutil.SeedTestUser(t, db, "user-logistics-001", entity.RoleLogistics)
	testutil.SeedTestUser(t, db, "user-finance-001", entity.RoleFinance)
	testutil.SeedTestUser(t, db, "user-stores-001", entity.RoleStores)
	return env
}

// requestBody builds a valid create-request payload
func requestBody() map[string]interface{} {
	return map[string]interface{}{
		"title":          "Office equipment",
		"overall_reason": "replacement hardware",
		"items": []map[string]interface{}{
			{"item_name": "Laptop", "quantity": 2, "justification": "dev machines"},
			{"item_name": "Mouse", "quantity": 5},
		},
	}
}

// vendorOptionsBody builds three options, each pricing both items
func vendorOptionsBody(itemIDs []string, laptopPrices, mousePrices [3]float64) map[string]interface{} {
	options := make([]map[string]interface{}, 0, 3)
	for i := 0; i < 3; i++ {
		options = append(options, map[string]interface{}{
			"vendor_name":  []string{"Vendor One", "Vendor Two", "Vendor Three"}[i],
			"contact_info": "sales@example.com",
			"items": []map[string]interface{}{
				{"request_item_id": itemIDs[0], "unit_price": laptopPrices[i]},
				{"request_item_id": itemIDs[1], "unit_price": mousePrices[i]},
			},
		})
	}
	return map[string]interface{}{"options": options}
}
