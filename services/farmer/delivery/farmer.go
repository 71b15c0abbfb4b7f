package delivery

import (
	"encoding/csv"
	"errors"
	"farmreg/domain"
	"farmreg/middleware"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type farmerHandler struct {
	uc  domain.FarmerUseCase
	log *logrus.Logger
}

func NewFarmerHandler(app *fiber.App, useCase domain.FarmerUseCase, log *logrus.Logger) {
	handler := &farmerHandler{
		uc:  useCase,
		log: log,
	}

	route := app.Group("/farmer")
	route.Post("/", handler.CreateFarmer)
	route.Get("/", handler.ListFarmers)
	route.Post("/import", middleware.AuthRequired, middleware.AdminOnly, handler.UploadAndImport)
	route.Get("/:id", handler.GetFarmerByID)
	route.Get("/:id/documents", handler.DocumentLinks)
	route.Put("/:id", handler.UpdateFarmer)
	route.Delete("/:id", handler.DeleteFarmer)
}

func (fh *farmerHandler) CreateFarmer(c *fiber.Ctx) error {
	input, errList, err := fh.parseMultipart(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}
	if errList != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errList,
		})
	}

	farmer, err := fh.uc.CreateFarmerUC(c.Context(), input)
	if err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"farmer": farmer,
	})
}

func (fh *farmerHandler) ListFarmers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	farmers, total, err := fh.uc.ListFarmersUC(c.Context(), page, limit)
	if err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"farmers": farmers,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (fh *farmerHandler) GetFarmerByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid farmer id",
		})
	}

	farmer, err := fh.uc.GetFarmerByIDUC(c.Context(), id)
	if err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"farmer": farmer,
	})
}

func (fh *farmerHandler) DocumentLinks(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid farmer id",
		})
	}

	links, err := fh.uc.DocumentLinksUC(c.Context(), id)
	if err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"documents": links,
	})
}

func (fh *farmerHandler) UpdateFarmer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid farmer id",
		})
	}

	input, errList, err := fh.parseMultipart(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}
	if errList != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errList,
		})
	}

	farmer, err := fh.uc.UpdateFarmerUC(c.Context(), id, input)
	if err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"farmer": farmer,
	})
}

func (fh *farmerHandler) DeleteFarmer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid farmer id",
		})
	}

	if err := fh.uc.DeleteFarmerUC(c.Context(), id); err != nil {
		return fh.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Farmer deleted successfully",
	})
}

// UploadAndImport ingests a CSV of farmer rows (scalar and bank columns, no
// documents or parcels), validating each row and reporting row errors
// without aborting the whole batch.
func (fh *farmerHandler) UploadAndImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to parse file",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to open file",
		})
	}
	defer file.Close()

	records, rowErrors, err := parseCSVRows(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	importErrors, err := fh.uc.ImportCSV(c.Context(), records)
	if err != nil {
		return fh.writeError(c, err)
	}
	if importErrors != nil {
		rowErrors = append(rowErrors, *importErrors...)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "File processed successfully",
		"imported": len(*records),
		"errors":   rowErrors,
	})
}

// csvColumns is the expected header order for bulk import.
var csvColumns = []string{
	"farmerName", "relationship", "gender", "community", "aadharNumber",
	"state", "district", "mandal", "village", "panchayath",
	"dateOfBirth", "age", "contactNumber", "accountNumber",
	"ifscCode", "branchName", "address", "bankName", "bankCode",
}

func parseCSVRows(file io.Reader) (*[]domain.FarmerInput, []string, error) {
	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV file: %v", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("CSV file has no data rows")
	}

	var records []domain.FarmerInput
	var rowErrors []string

	// First row is the header.
	for i, row := range rows[1:] {
		if len(row) < len(csvColumns) {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: expected %d columns, got %d", i+2, len(csvColumns), len(row)))
			continue
		}

		values := url.Values{}
		for col, name := range csvColumns {
			values.Set(name, row[col])
		}
		values.Set("fields", "[]")

		input, errList := domain.ParseFarmerInput(values, domain.DocumentSet[multipart.FileHeader]{})
		if errList != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, errList))
			continue
		}
		records = append(records, *input)
	}

	return &records, rowErrors, nil
}

// parseMultipart flattens the multipart form into the field bag the schema
// validator consumes, picking at most one file per document slot.
func (fh *farmerHandler) parseMultipart(c *fiber.Ctx) (*domain.FarmerInput, []string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	files := domain.DocumentSet[multipart.FileHeader]{}
	for _, slot := range domain.Slots() {
		if headers := form.File[string(slot)]; len(headers) > 0 {
			files.Set(slot, headers[0])
		}
	}

	input, errList := domain.ParseFarmerInput(url.Values(form.Value), files)
	if errList != nil {
		return nil, errList, nil
	}
	return input, nil, nil
}

// writeError maps the pipeline error taxonomy onto distinct status codes
// instead of a uniform 500.
func (fh *farmerHandler) writeError(c *fiber.Ctx, err error) error {
	var vErr *domain.ValidationError
	var upErr *domain.UploadError

	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	case errors.Is(err, domain.ErrFarmerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Farmer not found",
		})
	case errors.As(err, &upErr):
		fh.log.Errorf("document upload failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Document upload failed",
		})
	default:
		fh.log.Errorf("farmer request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal Server Error",
		})
	}
}
