package repository

import (
	"context"
	"errors"
	"farmreg/domain"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Farmer{},
		&domain.BankDetails{},
		&domain.Documents{},
		&domain.Field{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleFarmer(name, aadhar string) *domain.Farmer {
	return &domain.Farmer{
		FarmerName:    name,
		Relationship:  "S/O Raju",
		Gender:        "MALE",
		Community:     "OBC",
		AadharNumber:  aadhar,
		State:         "Telangana",
		District:      "Rangareddy",
		Mandal:        "Chevella",
		Village:       "Aloor",
		Panchayath:    "Aloor",
		DateOfBirth:   time.Date(1994, 5, 20, 0, 0, 0, 0, time.UTC),
		Age:           30,
		ContactNumber: "9876543210",
		AccountNumber: "1234567890123",
		BankDetails: domain.BankDetails{
			IfscCode:   "SBIN0001234",
			BranchName: "Chevella",
			Address:    "Main Road, Chevella",
			BankName:   "State Bank",
			BankCode:   "SBIN",
		},
		Fields: []domain.Field{
			{SurveyNumber: "12A", AreaHa: 1.5, YieldEstimate: 2.0, LocationX: 17.1, LocationY: 78.2},
			{SurveyNumber: "12B", AreaHa: 0.5, YieldEstimate: 1.0, LocationX: 17.2, LocationY: 78.3},
		},
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateFarmer(ctx, sampleFarmer("Ravi", "123456789012"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.GetFarmerByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.FarmerName != "Ravi" || got.AadharNumber != "123456789012" {
		t.Errorf("scalars not persisted: %+v", got)
	}
	if got.BankDetails.IfscCode != "SBIN0001234" {
		t.Errorf("bank details not persisted: %+v", got.BankDetails)
	}
	if got.Documents.FarmerID != created.ID {
		t.Errorf("documents row missing: %+v", got.Documents)
	}
	if got.Documents.ProfilePic != nil || got.Documents.Aadhar != nil || got.Documents.Land != nil || got.Documents.Bank != nil {
		t.Errorf("document slots should be absent: %+v", got.Documents)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("fields len = %d, want 2", len(got.Fields))
	}
	if got.Fields[0].SurveyNumber != "12A" || got.Fields[1].SurveyNumber != "12B" {
		t.Errorf("field insertion order lost: %+v", got.Fields)
	}
}

func TestGetFarmerNotFound(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))

	_, err := repo.GetFarmerByID(context.Background(), 99999)
	if !errors.Is(err, domain.ErrFarmerNotFound) {
		t.Errorf("expected ErrFarmerNotFound, got %v", err)
	}
}

func TestListFarmersPagination(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		farmer := sampleFarmer(fmt.Sprintf("Farmer%d", i), fmt.Sprintf("%012d", i))
		if _, err := repo.CreateFarmer(ctx, farmer); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	farmers, total, err := repo.ListFarmers(ctx, 2, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(*farmers) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(*farmers))
	}
	if (*farmers)[0].FarmerName != "Farmer5" {
		t.Errorf("offset wrong, first on page 2 = %s", (*farmers)[0].FarmerName)
	}
}

func TestUpdateFarmerReplacesFields(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateFarmer(ctx, sampleFarmer("Ravi", "123456789012"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replacement := sampleFarmer("Ravi Kumar", "123456789012")
	replacement.Fields = []domain.Field{
		{SurveyNumber: "44C", AreaHa: 3.0, YieldEstimate: 4.0, LocationX: 17.5, LocationY: 78.5},
	}

	updated, err := repo.UpdateFarmer(ctx, created.ID, replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.FarmerName != "Ravi Kumar" {
		t.Errorf("scalar not replaced: %s", updated.FarmerName)
	}
	if len(updated.Fields) != 1 {
		t.Fatalf("fields len after replace = %d, want 1", len(updated.Fields))
	}
	if updated.Fields[0].SurveyNumber != "44C" {
		t.Errorf("field not replaced: %+v", updated.Fields[0])
	}

	var count int64
	if err := repo.(*farmerRepository).db.Model(&domain.Field{}).Count(&count).Error; err != nil {
		t.Fatalf("count fields: %v", err)
	}
	if count != 1 {
		t.Errorf("stale field rows left behind: %d", count)
	}
}

func TestUpdateFarmerPatchesOnlySuppliedDocuments(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))
	ctx := context.Background()

	initial := sampleFarmer("Ravi", "123456789012")
	pic := "profile-pics/111-me.png"
	aadhar := "aadhar/222-card.pdf"
	initial.Documents = domain.Documents{ProfilePic: &pic, Aadhar: &aadhar}

	created, err := repo.CreateFarmer(ctx, initial)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replacement := sampleFarmer("Ravi", "123456789012")
	newPic := "profile-pics/333-new.png"
	replacement.Documents = domain.Documents{ProfilePic: &newPic}

	updated, err := repo.UpdateFarmer(ctx, created.ID, replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Documents.ProfilePic == nil || *updated.Documents.ProfilePic != newPic {
		t.Errorf("profilePic not overwritten: %v", updated.Documents.ProfilePic)
	}
	if updated.Documents.Aadhar == nil || *updated.Documents.Aadhar != aadhar {
		t.Errorf("omitted aadhar slot must keep its path: %v", updated.Documents.Aadhar)
	}
	if updated.Documents.Land != nil {
		t.Errorf("never-supplied slot must stay absent")
	}
}

func TestUpdateFarmerNotFound(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))

	_, err := repo.UpdateFarmer(context.Background(), 404, sampleFarmer("Nobody", "000000000000"))
	if !errors.Is(err, domain.ErrFarmerNotFound) {
		t.Errorf("expected ErrFarmerNotFound, got %v", err)
	}
}

func TestDeleteFarmerCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewFarmerRepository(db)
	ctx := context.Background()

	created, err := repo.CreateFarmer(ctx, sampleFarmer("Ravi", "123456789012"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.DeleteFarmer(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetFarmerByID(ctx, created.ID); !errors.Is(err, domain.ErrFarmerNotFound) {
		t.Errorf("expected ErrFarmerNotFound after delete, got %v", err)
	}

	counts := map[string]interface{}{
		"bank details": &domain.BankDetails{},
		"documents":    &domain.Documents{},
		"fields":       &domain.Field{},
	}
	for name, model := range counts {
		var n int64
		if err := db.Model(model).Where("farmer_id = ?", created.ID).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s rows not cascaded: %d left", name, n)
		}
	}
}

func TestDeleteFarmerNotFound(t *testing.T) {
	repo := NewFarmerRepository(newTestDB(t))

	err := repo.DeleteFarmer(context.Background(), 404)
	if !errors.Is(err, domain.ErrFarmerNotFound) {
		t.Errorf("expected ErrFarmerNotFound, got %v", err)
	}
}
