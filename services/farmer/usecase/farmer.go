package usecase

import (
	"context"
	"farmreg/domain"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const presignExpiry = 15 * time.Minute

type farmerUC struct {
	repo     domain.FarmerRepo
	uploader domain.Uploader
	log      *logrus.Logger
	TimeOut  time.Duration
}

func NewFarmerUseCase(repo domain.FarmerRepo, uploader domain.Uploader, log *logrus.Logger, to time.Duration) domain.FarmerUseCase {
	return &farmerUC{
		repo:     repo,
		uploader: uploader,
		log:      log,
		TimeOut:  to,
	}
}

// CreateFarmerUC runs the write pipeline for a new registration: upload the
// supplied documents, re-validate the merged record, persist the aggregate.
// Any failure aborts the whole request; nothing is retried.
func (fuc *farmerUC) CreateFarmerUC(ctx context.Context, input *domain.FarmerInput) (*domain.Farmer, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	paths, err := fuc.uploadDocuments(ctx, &input.Documents)
	if err != nil {
		return nil, err
	}

	farmer, errList := input.ToFarmer(paths)
	if errList != nil {
		fuc.discardUploads(paths)
		return nil, domain.NewValidationError(errList)
	}

	created, err := fuc.repo.CreateFarmer(ctx, farmer)
	if err != nil {
		fuc.discardUploads(paths)
		return nil, err
	}

	return created, nil
}

// UpdateFarmerUC mirrors the create pipeline: slots without a new file keep
// their stored paths, bank details are replaced wholesale, and the field
// collection is swapped out entirely.
func (fuc *farmerUC) UpdateFarmerUC(ctx context.Context, id int, input *domain.FarmerInput) (*domain.Farmer, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	paths, err := fuc.uploadDocuments(ctx, &input.Documents)
	if err != nil {
		return nil, err
	}

	farmer, errList := input.ToFarmer(paths)
	if errList != nil {
		fuc.discardUploads(paths)
		return nil, domain.NewValidationError(errList)
	}

	updated, err := fuc.repo.UpdateFarmer(ctx, id, farmer)
	if err != nil {
		fuc.discardUploads(paths)
		return nil, err
	}

	return updated, nil
}

func (fuc *farmerUC) GetFarmerByIDUC(ctx context.Context, id int) (*domain.Farmer, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	return fuc.repo.GetFarmerByID(ctx, id)
}

func (fuc *farmerUC) ListFarmersUC(ctx context.Context, page, limit int) (*[]domain.Farmer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	return fuc.repo.ListFarmers(ctx, page, limit)
}

func (fuc *farmerUC) DeleteFarmerUC(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	return fuc.repo.DeleteFarmer(ctx, id)
}

// DocumentLinksUC resolves the stored paths of a farmer's documents into
// short-lived download URLs, one entry per populated slot.
func (fuc *farmerUC) DocumentLinksUC(ctx context.Context, id int) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	farmer, err := fuc.repo.GetFarmerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := domain.DocumentSet[string]{
		ProfilePic: farmer.Documents.ProfilePic,
		Aadhar:     farmer.Documents.Aadhar,
		Land:       farmer.Documents.Land,
		Bank:       farmer.Documents.Bank,
	}

	links := make(map[string]string)
	for _, slot := range domain.Slots() {
		path := stored.Get(slot)
		if path == nil {
			continue
		}
		url, err := fuc.uploader.PresignedURL(ctx, *path, presignExpiry)
		if err != nil {
			return nil, &domain.UploadError{Slot: slot, Err: err}
		}
		links[string(slot)] = url
	}

	return links, nil
}

// ImportCSV persists pre-validated rows one by one, collecting per-row
// failures without aborting the batch.
func (fuc *farmerUC) ImportCSV(ctx context.Context, records *[]domain.FarmerInput) (*[]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fuc.TimeOut)
	defer cancel()

	var rowErrors []string

	for index, record := range *records {
		farmer, errList := record.ToFarmer(domain.DocumentSet[string]{})
		if errList != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", index+1, errList))
			continue
		}
		if _, err := fuc.repo.CreateFarmer(ctx, farmer); err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: could not insert farmer: %v", index+1, err))
		}
	}

	if len(rowErrors) > 0 {
		return &rowErrors, nil
	}

	return nil, nil
}

// uploadDocuments pushes every supplied slot to the blob store concurrently.
// The slots have no ordering dependency; the slowest upload gates the
// database write that follows. If any slot fails, the uploads that already
// landed are discarded and the whole request fails.
func (fuc *farmerUC) uploadDocuments(ctx context.Context, files *domain.DocumentSet[multipart.FileHeader]) (domain.DocumentSet[string], error) {
	var paths domain.DocumentSet[string]

	g, gctx := errgroup.WithContext(ctx)
	for _, slot := range domain.Slots() {
		file := files.Get(slot)
		if file == nil {
			continue
		}
		slot := slot
		g.Go(func() error {
			path, err := fuc.uploader.Upload(gctx, file, slot.Category())
			if err != nil {
				return &domain.UploadError{Slot: slot, Err: err}
			}
			paths.Set(slot, &path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fuc.discardUploads(paths)
		return domain.DocumentSet[string]{}, err
	}

	return paths, nil
}

// discardUploads best-effort deletes blobs that were written during a
// request that later failed. Failures here are only logged; the client
// already gets the original error.
func (fuc *farmerUC) discardUploads(paths domain.DocumentSet[string]) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, slot := range domain.Slots() {
		path := paths.Get(slot)
		if path == nil {
			continue
		}
		if err := fuc.uploader.Remove(ctx, *path); err != nil {
			fuc.log.Warnf("could not discard uploaded %s document %s: %v", slot, *path, err)
		}
	}
}
