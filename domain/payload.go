package domain

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// FarmerInput is the typed, constraint-checked shape of a registration
// request. Documents still hold the raw multipart file handles here; the
// pipeline swaps them for storage paths before persisting.
type FarmerInput struct {
	FarmerName    string                            `valid:"required~farmerName is required"`
	Relationship  string                            `valid:"required~relationship is required"`
	Gender        string                            `valid:"required~gender is required,in(MALE|FEMALE|OTHER)~gender must be one of MALE/FEMALE/OTHER"`
	Community     string                            `valid:"required~community is required,in(GENERAL|OBC|BC|SC|ST)~community must be one of GENERAL/OBC/BC/SC/ST"`
	AadharNumber  string                            `valid:"required~aadharNumber is required,length(12|12)~aadharNumber must be exactly 12 characters"`
	State         string                            `valid:"required~state is required"`
	District      string                            `valid:"required~district is required"`
	Mandal        string                            `valid:"required~mandal is required"`
	Village       string                            `valid:"required~village is required"`
	Panchayath    string                            `valid:"required~panchayath is required"`
	DateOfBirth   time.Time                         `valid:"-"`
	Age           int                               `valid:"-"`
	ContactNumber string                            `valid:"required~contactNumber is required,length(10|10)~contactNumber must be exactly 10 characters"`
	AccountNumber string                            `valid:"required~accountNumber is required"`
	BankDetails   BankDetailsInput                  `valid:"-"`
	Fields        []FieldInput                      `valid:"-"`
	Documents     DocumentSet[multipart.FileHeader] `valid:"-"`
}

type BankDetailsInput struct {
	IfscCode   string `valid:"required~ifscCode is required,length(11|11)~ifscCode must be exactly 11 characters"`
	BranchName string `valid:"required~branchName is required"`
	Address    string `valid:"required~address is required"`
	BankName   string `valid:"required~bankName is required"`
	BankCode   string `valid:"required~bankCode is required"`
}

// FieldInput is one parcel entry from the JSON-encoded `fields` form value.
type FieldInput struct {
	SurveyNumber  string `json:"surveyNumber"`
	AreaHa        number `json:"areaHa"`
	YieldEstimate number `json:"yieldEstimate"`
	LocationX     number `json:"locationX"`
	LocationY     number `json:"locationY"`
}

// number accepts both a bare JSON number and the numeric-string encoding the
// registration form sends, and rejects everything else.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	*n = number(f)
	return nil
}

const dateOnly = "2006-01-02"

// ParseFarmerInput converts the flat multipart field bag into a FarmerInput,
// collecting every constraint violation as a per-field message. A non-empty
// message list means the request must be rejected as a client error.
func ParseFarmerInput(values url.Values, files DocumentSet[multipart.FileHeader]) (*FarmerInput, []string) {
	var errList []string

	input := &FarmerInput{
		FarmerName:    values.Get("farmerName"),
		Relationship:  values.Get("relationship"),
		Gender:        values.Get("gender"),
		Community:     values.Get("community"),
		AadharNumber:  values.Get("aadharNumber"),
		State:         values.Get("state"),
		District:      values.Get("district"),
		Mandal:        values.Get("mandal"),
		Village:       values.Get("village"),
		Panchayath:    values.Get("panchayath"),
		ContactNumber: values.Get("contactNumber"),
		AccountNumber: values.Get("accountNumber"),
		BankDetails: BankDetailsInput{
			IfscCode:   values.Get("ifscCode"),
			BranchName: values.Get("branchName"),
			Address:    values.Get("address"),
			BankName:   values.Get("bankName"),
			BankCode:   values.Get("bankCode"),
		},
		Documents: files,
	}

	age, err := strconv.Atoi(values.Get("age"))
	if err != nil {
		errList = append(errList, "age must be a number")
	} else if age <= 0 {
		errList = append(errList, "age must be positive")
	}
	input.Age = age

	dob, err := parseDate(values.Get("dateOfBirth"))
	if err != nil {
		errList = append(errList, "dateOfBirth must be a valid date")
	}
	input.DateOfBirth = dob

	if raw := values.Get("fields"); raw == "" {
		errList = append(errList, "fields is required")
	} else if err := json.Unmarshal([]byte(raw), &input.Fields); err != nil {
		errList = append(errList, fmt.Sprintf("fields must be a JSON array of parcels: %v", err))
	}

	if _, err := govalidator.ValidateStruct(input); err != nil {
		for _, msg := range strings.Split(err.Error(), ";") {
			errList = append(errList, strings.TrimSpace(msg))
		}
	}

	errList = append(errList, validateBank(&input.BankDetails)...)
	errList = append(errList, validateFields(input.Fields)...)

	if len(errList) > 0 {
		return nil, errList
	}
	return input, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validateBank(b *BankDetailsInput) []string {
	var errList []string
	if _, err := govalidator.ValidateStruct(b); err != nil {
		for _, msg := range strings.Split(err.Error(), ";") {
			errList = append(errList, strings.TrimSpace(msg))
		}
	}
	return errList
}

func validateFields(fields []FieldInput) []string {
	var errList []string
	for i, f := range fields {
		if strings.TrimSpace(f.SurveyNumber) == "" {
			errList = append(errList, fmt.Sprintf("fields[%d].surveyNumber is required", i))
		}
		if f.AreaHa <= 0 {
			errList = append(errList, fmt.Sprintf("fields[%d].areaHa must be positive", i))
		}
		if f.YieldEstimate <= 0 {
			errList = append(errList, fmt.Sprintf("fields[%d].yieldEstimate must be positive", i))
		}
	}
	return errList
}

// ToFarmer merges the validated scalars with the uploaded document paths
// into the persisted aggregate, re-checking the output shape so what reaches
// the store never drifts from the contract.
func (in *FarmerInput) ToFarmer(paths DocumentSet[string]) (*Farmer, []string) {
	farmer := &Farmer{
		FarmerName:    in.FarmerName,
		Relationship:  in.Relationship,
		Gender:        in.Gender,
		Community:     in.Community,
		AadharNumber:  in.AadharNumber,
		State:         in.State,
		District:      in.District,
		Mandal:        in.Mandal,
		Village:       in.Village,
		Panchayath:    in.Panchayath,
		DateOfBirth:   in.DateOfBirth,
		Age:           in.Age,
		ContactNumber: in.ContactNumber,
		AccountNumber: in.AccountNumber,
		BankDetails: BankDetails{
			IfscCode:   in.BankDetails.IfscCode,
			BranchName: in.BankDetails.BranchName,
			Address:    in.BankDetails.Address,
			BankName:   in.BankDetails.BankName,
			BankCode:   in.BankDetails.BankCode,
		},
		Documents: Documents{
			ProfilePic: paths.ProfilePic,
			Aadhar:     paths.Aadhar,
			Land:       paths.Land,
			Bank:       paths.Bank,
		},
	}
	for _, f := range in.Fields {
		farmer.Fields = append(farmer.Fields, Field{
			SurveyNumber:  f.SurveyNumber,
			AreaHa:        float64(f.AreaHa),
			YieldEstimate: float64(f.YieldEstimate),
			LocationX:     float64(f.LocationX),
			LocationY:     float64(f.LocationY),
		})
	}

	if errList := ValidateFarmerRecord(farmer); len(errList) > 0 {
		return nil, errList
	}
	return farmer, nil
}

// ValidateFarmerRecord checks the output shape of a fully assembled
// aggregate. It mirrors the input constraints with document slots as paths.
func ValidateFarmerRecord(f *Farmer) []string {
	var errList []string

	required := map[string]string{
		"farmerName":    f.FarmerName,
		"relationship":  f.Relationship,
		"state":         f.State,
		"district":      f.District,
		"mandal":        f.Mandal,
		"village":       f.Village,
		"panchayath":    f.Panchayath,
		"accountNumber": f.AccountNumber,
		"branchName":    f.BankDetails.BranchName,
		"address":       f.BankDetails.Address,
		"bankName":      f.BankDetails.BankName,
		"bankCode":      f.BankDetails.BankCode,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			errList = append(errList, fmt.Sprintf("%s is required", name))
		}
	}

	if len(f.AadharNumber) != 12 {
		errList = append(errList, "aadharNumber must be exactly 12 characters")
	}
	if len(f.ContactNumber) != 10 {
		errList = append(errList, "contactNumber must be exactly 10 characters")
	}
	if len(f.BankDetails.IfscCode) != 11 {
		errList = append(errList, "ifscCode must be exactly 11 characters")
	}
	if !govalidator.IsIn(f.Gender, "MALE", "FEMALE", "OTHER") {
		errList = append(errList, "gender must be one of MALE/FEMALE/OTHER")
	}
	if !govalidator.IsIn(f.Community, "GENERAL", "OBC", "BC", "SC", "ST") {
		errList = append(errList, "community must be one of GENERAL/OBC/BC/SC/ST")
	}
	if f.Age <= 0 {
		errList = append(errList, "age must be positive")
	}
	if f.DateOfBirth.IsZero() {
		errList = append(errList, "dateOfBirth must be a valid date")
	}
	for i, parcel := range f.Fields {
		if strings.TrimSpace(parcel.SurveyNumber) == "" {
			errList = append(errList, fmt.Sprintf("fields[%d].surveyNumber is required", i))
		}
		if parcel.AreaHa <= 0 {
			errList = append(errList, fmt.Sprintf("fields[%d].areaHa must be positive", i))
		}
		if parcel.YieldEstimate <= 0 {
			errList = append(errList, fmt.Sprintf("fields[%d].yieldEstimate must be positive", i))
		}
	}

	return errList
}
