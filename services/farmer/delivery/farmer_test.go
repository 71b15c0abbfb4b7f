package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"farmreg/domain"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type stubFarmerUC struct {
	err       error
	links     map[string]string
	page      int
	limit     int
	createdIn *domain.FarmerInput
	deletedID int
}

func (s *stubFarmerUC) CreateFarmerUC(ctx context.Context, input *domain.FarmerInput) (*domain.Farmer, error) {
	s.createdIn = input
	if s.err != nil {
		return nil, s.err
	}
	farmer, _ := input.ToFarmer(domain.DocumentSet[string]{})
	farmer.ID = 1
	return farmer, nil
}

func (s *stubFarmerUC) GetFarmerByIDUC(ctx context.Context, id int) (*domain.Farmer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Farmer{ID: id, FarmerName: "Ravi"}, nil
}

func (s *stubFarmerUC) ListFarmersUC(ctx context.Context, page, limit int) (*[]domain.Farmer, int64, error) {
	s.page, s.limit = page, limit
	return &[]domain.Farmer{}, 0, s.err
}

func (s *stubFarmerUC) UpdateFarmerUC(ctx context.Context, id int, input *domain.FarmerInput) (*domain.Farmer, error) {
	if s.err != nil {
		return nil, s.err
	}
	farmer, _ := input.ToFarmer(domain.DocumentSet[string]{})
	farmer.ID = id
	return farmer, nil
}

func (s *stubFarmerUC) DeleteFarmerUC(ctx context.Context, id int) error {
	s.deletedID = id
	return s.err
}

func (s *stubFarmerUC) DocumentLinksUC(ctx context.Context, id int) (map[string]string, error) {
	return s.links, s.err
}

func (s *stubFarmerUC) ImportCSV(ctx context.Context, records *[]domain.FarmerInput) (*[]string, error) {
	return nil, nil
}

func newTestApp(uc domain.FarmerUseCase) *fiber.App {
	app := fiber.New()
	log := logrus.New()
	log.SetOutput(io.Discard)
	NewFarmerHandler(app, uc, log)
	return app
}

func formFields() map[string]string {
	return map[string]string{
		"farmerName":    "Ravi",
		"relationship":  "S/O Raju",
		"gender":        "MALE",
		"community":     "OBC",
		"aadharNumber":  "123456789012",
		"state":         "Telangana",
		"district":      "Rangareddy",
		"mandal":        "Chevella",
		"village":       "Aloor",
		"panchayath":    "Aloor",
		"dateOfBirth":   "1994-05-20",
		"age":           "30",
		"contactNumber": "9876543210",
		"accountNumber": "1234567890123",
		"ifscCode":      "SBIN0001234",
		"branchName":    "Chevella",
		"address":       "Main Road, Chevella",
		"bankName":      "State Bank",
		"bankCode":      "SBIN",
		"fields":        `[{"surveyNumber":"12A","areaHa":"1.5","yieldEstimate":"2.0","locationX":"17.1","locationY":"78.2"}]`,
	}
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestCreateFarmerReturns201(t *testing.T) {
	uc := &stubFarmerUC{}
	app := newTestApp(uc)

	resp, err := app.Test(multipartRequest(t, "POST", "/farmer/", formFields()), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	farmer, ok := body["farmer"].(map[string]interface{})
	if !ok {
		t.Fatalf("response missing farmer: %v", body)
	}
	if farmer["farmerName"] != "Ravi" {
		t.Errorf("farmerName = %v", farmer["farmerName"])
	}
	if uc.createdIn == nil {
		t.Error("usecase was not invoked")
	}
}

func TestCreateFarmerRejectsBadAadhar(t *testing.T) {
	uc := &stubFarmerUC{}
	app := newTestApp(uc)

	fields := formFields()
	fields["aadharNumber"] = "123"

	resp, err := app.Test(multipartRequest(t, "POST", "/farmer/", fields), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if uc.createdIn != nil {
		t.Error("usecase must not run on validation failure")
	}

	body := decodeBody(t, resp)
	errs, _ := body["errors"].([]interface{})
	found := false
	for _, e := range errs {
		if s, ok := e.(string); ok && strings.Contains(s, "aadharNumber") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected aadharNumber message in %v", errs)
	}
}

func TestGetFarmerNotFound(t *testing.T) {
	uc := &stubFarmerUC{err: fmt.Errorf("%w: id 99999", domain.ErrFarmerNotFound)}
	app := newTestApp(uc)

	req := httptest.NewRequest("GET", "/farmer/99999", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Farmer not found" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestListFarmersPaginationDefaults(t *testing.T) {
	uc := &stubFarmerUC{}
	app := newTestApp(uc)

	resp, err := app.Test(httptest.NewRequest("GET", "/farmer/", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if uc.page != 1 || uc.limit != 10 {
		t.Errorf("defaults = page %d limit %d, want 1/10", uc.page, uc.limit)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/farmer/?page=2&limit=5", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if uc.page != 2 || uc.limit != 5 {
		t.Errorf("params = page %d limit %d, want 2/5", uc.page, uc.limit)
	}
}

func TestDeleteFarmer(t *testing.T) {
	uc := &stubFarmerUC{}
	app := newTestApp(uc)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/farmer/7", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if uc.deletedID != 7 {
		t.Errorf("deleted id = %d, want 7", uc.deletedID)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Farmer deleted successfully" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestDeleteFarmerNotFound(t *testing.T) {
	uc := &stubFarmerUC{err: fmt.Errorf("%w: id 404", domain.ErrFarmerNotFound)}
	app := newTestApp(uc)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/farmer/404", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDocumentLinks(t *testing.T) {
	uc := &stubFarmerUC{links: map[string]string{"profilePic": "https://files.example/profile-pics/1-me.png"}}
	app := newTestApp(uc)

	resp, err := app.Test(httptest.NewRequest("GET", "/farmer/1/documents", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	docs, ok := body["documents"].(map[string]interface{})
	if !ok || docs["profilePic"] == nil {
		t.Errorf("documents = %v", body["documents"])
	}
}

func TestUploadFailureMapsTo502(t *testing.T) {
	uc := &stubFarmerUC{err: &domain.UploadError{Slot: domain.SlotLand, Err: fmt.Errorf("store unavailable")}}
	app := newTestApp(uc)

	resp, err := app.Test(multipartRequest(t, "POST", "/farmer/", formFields()), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestImportRequiresAuth(t *testing.T) {
	uc := &stubFarmerUC{}
	app := newTestApp(uc)

	resp, err := app.Test(multipartRequest(t, "POST", "/farmer/import", map[string]string{}), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}
