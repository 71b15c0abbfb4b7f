package domain

import (
	"context"
	"time"
)

type Farmer struct {
	ID            int         `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerName    string      `gorm:"type:varchar(150);not null" json:"farmerName"`
	Relationship  string      `gorm:"type:varchar(100);not null" json:"relationship"`
	Gender        string      `gorm:"type:gender_enum;not null" json:"gender"`
	Community     string      `gorm:"type:community_enum;not null" json:"community"`
	AadharNumber  string      `gorm:"type:varchar(12);not null" json:"aadharNumber"`
	State         string      `gorm:"type:varchar(100);not null" json:"state"`
	District      string      `gorm:"type:varchar(100);not null" json:"district"`
	Mandal        string      `gorm:"type:varchar(100);not null" json:"mandal"`
	Village       string      `gorm:"type:varchar(100);not null" json:"village"`
	Panchayath    string      `gorm:"type:varchar(100);not null" json:"panchayath"`
	DateOfBirth   time.Time   `gorm:"not null" json:"dateOfBirth"`
	Age           int         `gorm:"not null" json:"age"`
	ContactNumber string      `gorm:"type:varchar(10);not null" json:"contactNumber"`
	AccountNumber string      `gorm:"type:varchar(50);not null" json:"accountNumber"`
	BankDetails   BankDetails `gorm:"foreignKey:FarmerID;constraint:OnDelete:CASCADE" json:"bankDetails"`
	Documents     Documents   `gorm:"foreignKey:FarmerID;constraint:OnDelete:CASCADE" json:"documents"`
	Fields        []Field     `gorm:"foreignKey:FarmerID;constraint:OnDelete:CASCADE" json:"fields"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type BankDetails struct {
	ID         int    `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID   int    `gorm:"not null;uniqueIndex" json:"farmer_id"`
	IfscCode   string `gorm:"type:varchar(11);not null" json:"ifscCode"`
	BranchName string `gorm:"type:varchar(150);not null" json:"branchName"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	BankName   string `gorm:"type:varchar(150);not null" json:"bankName"`
	BankCode   string `gorm:"type:varchar(50);not null" json:"bankCode"`
}

// Documents holds one storage path per slot; nil means no file was ever
// supplied for that slot.
type Documents struct {
	ID         int     `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID   int     `gorm:"not null;uniqueIndex" json:"farmer_id"`
	ProfilePic *string `gorm:"type:varchar(255)" json:"profilePic,omitempty"`
	Aadhar     *string `gorm:"type:varchar(255)" json:"aadhar,omitempty"`
	Land       *string `gorm:"type:varchar(255)" json:"land,omitempty"`
	Bank       *string `gorm:"type:varchar(255)" json:"bank,omitempty"`
}

// Field is a single agricultural land parcel owned by a farmer. The
// collection is replaced wholesale on every update.
type Field struct {
	ID            int     `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID      int     `gorm:"not null;index" json:"farmer_id"`
	SurveyNumber  string  `gorm:"type:varchar(50);not null" json:"surveyNumber"`
	AreaHa        float64 `gorm:"not null" json:"areaHa"`
	YieldEstimate float64 `gorm:"not null" json:"yieldEstimate"`
	LocationX     float64 `json:"locationX"`
	LocationY     float64 `json:"locationY"`
}

type FarmerRepo interface {
	CreateFarmer(ctx context.Context, farmer *Farmer) (*Farmer, error)
	GetFarmerByID(ctx context.Context, id int) (*Farmer, error)
	ListFarmers(ctx context.Context, page, limit int) (*[]Farmer, int64, error)
	UpdateFarmer(ctx context.Context, id int, farmer *Farmer) (*Farmer, error)
	DeleteFarmer(ctx context.Context, id int) error
}

type FarmerUseCase interface {
	CreateFarmerUC(ctx context.Context, input *FarmerInput) (*Farmer, error)
	GetFarmerByIDUC(ctx context.Context, id int) (*Farmer, error)
	ListFarmersUC(ctx context.Context, page, limit int) (*[]Farmer, int64, error)
	UpdateFarmerUC(ctx context.Context, id int, input *FarmerInput) (*Farmer, error)
	DeleteFarmerUC(ctx context.Context, id int) error
	DocumentLinksUC(ctx context.Context, id int) (map[string]string, error)
	ImportCSV(ctx context.Context, records *[]FarmerInput) (*[]string, error)
}
