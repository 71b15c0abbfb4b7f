package repository

import (
	"context"
	"errors"
	"farmreg/domain"
	"fmt"

	"gorm.io/gorm"
)

type farmerRepository struct {
	db *gorm.DB
}

func NewFarmerRepository(database *gorm.DB) domain.FarmerRepo {
	return &farmerRepository{
		db: database,
	}
}

// CreateFarmer inserts the farmer together with its bank details, documents
// and field rows as one transaction. The identity is assigned by the store.
func (fr *farmerRepository) CreateFarmer(ctx context.Context, farmer *domain.Farmer) (*domain.Farmer, error) {
	tx := fr.db.Begin()
	if err := tx.Error; err != nil {
		return nil, &domain.StorageError{Op: "begin", Err: err}
	}

	// Children are inserted explicitly: the bank details and documents rows
	// must exist even when every document slot is empty.
	if err := tx.WithContext(ctx).Omit("BankDetails", "Documents", "Fields").Create(farmer).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "create farmer", Err: err}
	}

	farmer.BankDetails.FarmerID = farmer.ID
	if err := tx.WithContext(ctx).Create(&farmer.BankDetails).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "create bank details", Err: err}
	}

	farmer.Documents.FarmerID = farmer.ID
	if err := tx.WithContext(ctx).Create(&farmer.Documents).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "create documents", Err: err}
	}

	for i := range farmer.Fields {
		farmer.Fields[i].FarmerID = farmer.ID
	}
	if len(farmer.Fields) > 0 {
		if err := tx.WithContext(ctx).Create(&farmer.Fields).Error; err != nil {
			tx.Rollback()
			return nil, &domain.StorageError{Op: "create fields", Err: err}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &domain.StorageError{Op: "commit", Err: err}
	}

	return fr.GetFarmerByID(ctx, farmer.ID)
}

func (fr *farmerRepository) GetFarmerByID(ctx context.Context, id int) (*domain.Farmer, error) {
	var farmer domain.Farmer

	err := fr.db.WithContext(ctx).
		Preload("BankDetails").
		Preload("Documents").
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&farmer).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrFarmerNotFound, id)
		}
		return nil, &domain.StorageError{Op: "get farmer", Err: err}
	}

	return &farmer, nil
}

func (fr *farmerRepository) ListFarmers(ctx context.Context, page, limit int) (*[]domain.Farmer, int64, error) {
	var farmers []domain.Farmer
	var total int64

	if err := fr.db.WithContext(ctx).Model(&domain.Farmer{}).Count(&total).Error; err != nil {
		return nil, 0, &domain.StorageError{Op: "count farmers", Err: err}
	}

	err := fr.db.WithContext(ctx).
		Preload("BankDetails").
		Preload("Documents").
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&farmers).Error
	if err != nil {
		return nil, 0, &domain.StorageError{Op: "list farmers", Err: err}
	}

	return &farmers, total, nil
}

// UpdateFarmer replaces the scalar columns and the bank details wholesale,
// patches only the supplied document paths, and swaps the entire field
// collection (delete all, insert all) in one transaction.
func (fr *farmerRepository) UpdateFarmer(ctx context.Context, id int, farmer *domain.Farmer) (*domain.Farmer, error) {
	var existing domain.Farmer
	err := fr.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrFarmerNotFound, id)
		}
		return nil, &domain.StorageError{Op: "find farmer", Err: err}
	}

	tx := fr.db.Begin()
	if err := tx.Error; err != nil {
		return nil, &domain.StorageError{Op: "begin", Err: err}
	}

	scalars := map[string]interface{}{
		"farmer_name":    farmer.FarmerName,
		"relationship":   farmer.Relationship,
		"gender":         farmer.Gender,
		"community":      farmer.Community,
		"aadhar_number":  farmer.AadharNumber,
		"state":          farmer.State,
		"district":       farmer.District,
		"mandal":         farmer.Mandal,
		"village":        farmer.Village,
		"panchayath":     farmer.Panchayath,
		"date_of_birth":  farmer.DateOfBirth,
		"age":            farmer.Age,
		"contact_number": farmer.ContactNumber,
		"account_number": farmer.AccountNumber,
	}
	if err := tx.WithContext(ctx).Model(&domain.Farmer{}).Where("id = ?", id).Updates(scalars).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "update farmer", Err: err}
	}

	bank := map[string]interface{}{
		"ifsc_code":   farmer.BankDetails.IfscCode,
		"branch_name": farmer.BankDetails.BranchName,
		"address":     farmer.BankDetails.Address,
		"bank_name":   farmer.BankDetails.BankName,
		"bank_code":   farmer.BankDetails.BankCode,
	}
	if err := tx.WithContext(ctx).Model(&domain.BankDetails{}).Where("farmer_id = ?", id).Updates(bank).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "update bank details", Err: err}
	}

	// Only slots a new file was supplied for are overwritten; the rest keep
	// their stored paths.
	docs := map[string]interface{}{}
	if farmer.Documents.ProfilePic != nil {
		docs["profile_pic"] = *farmer.Documents.ProfilePic
	}
	if farmer.Documents.Aadhar != nil {
		docs["aadhar"] = *farmer.Documents.Aadhar
	}
	if farmer.Documents.Land != nil {
		docs["land"] = *farmer.Documents.Land
	}
	if farmer.Documents.Bank != nil {
		docs["bank"] = *farmer.Documents.Bank
	}
	if len(docs) > 0 {
		if err := tx.WithContext(ctx).Model(&domain.Documents{}).Where("farmer_id = ?", id).Updates(docs).Error; err != nil {
			tx.Rollback()
			return nil, &domain.StorageError{Op: "update documents", Err: err}
		}
	}

	if err := tx.WithContext(ctx).Where("farmer_id = ?", id).Delete(&domain.Field{}).Error; err != nil {
		tx.Rollback()
		return nil, &domain.StorageError{Op: "clear fields", Err: err}
	}
	for i := range farmer.Fields {
		farmer.Fields[i].ID = 0
		farmer.Fields[i].FarmerID = id
	}
	if len(farmer.Fields) > 0 {
		if err := tx.WithContext(ctx).Create(&farmer.Fields).Error; err != nil {
			tx.Rollback()
			return nil, &domain.StorageError{Op: "insert fields", Err: err}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &domain.StorageError{Op: "commit", Err: err}
	}

	return fr.GetFarmerByID(ctx, id)
}

// DeleteFarmer removes the farmer and all owned children.
func (fr *farmerRepository) DeleteFarmer(ctx context.Context, id int) error {
	var farmer domain.Farmer
	err := fr.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&farmer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", domain.ErrFarmerNotFound, id)
		}
		return &domain.StorageError{Op: "find farmer", Err: err}
	}

	tx := fr.db.Begin()
	if err := tx.Error; err != nil {
		return &domain.StorageError{Op: "begin", Err: err}
	}

	if err := tx.WithContext(ctx).Where("farmer_id = ?", id).Delete(&domain.Field{}).Error; err != nil {
		tx.Rollback()
		return &domain.StorageError{Op: "delete fields", Err: err}
	}
	if err := tx.WithContext(ctx).Where("farmer_id = ?", id).Delete(&domain.Documents{}).Error; err != nil {
		tx.Rollback()
		return &domain.StorageError{Op: "delete documents", Err: err}
	}
	if err := tx.WithContext(ctx).Where("farmer_id = ?", id).Delete(&domain.BankDetails{}).Error; err != nil {
		tx.Rollback()
		return &domain.StorageError{Op: "delete bank details", Err: err}
	}
	if err := tx.WithContext(ctx).Where("id = ?", id).Delete(&domain.Farmer{}).Error; err != nil {
		tx.Rollback()
		return &domain.StorageError{Op: "delete farmer", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return &domain.StorageError{Op: "commit", Err: err}
	}

	return nil
}
