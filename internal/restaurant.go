package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gosimple/slug"
)

// RestaurantService drives the listing lifecycle: submission, moderation,
// post-approval edits through the modification store, image mutations and
// deletion. Every externally visible mutation persists before its event
// is emitted.
type RestaurantService struct {
	storage RestaurantStorage
	modify  ModificationStorage
	records ModerationRecorder
	objects ObjectStorage
	events  EventPublisher
}

func NewRestaurantService(
	storage RestaurantStorage,
	modify ModificationStorage,
	records ModerationRecorder,
	objects ObjectStorage,
	events EventPublisher,
) *RestaurantService {
	return &RestaurantService{
		storage: storage,
		modify:  modify,
		records: records,
		objects: objects,
		events:  events,
	}
}

// Restaurant returns a non-deleted restaurant by id.
func (x *RestaurantService) Restaurant(ctx context.Context, restaurantID string) (*dbRestaurant, error) {
	return x.storage.Restaurant(ctx, restaurantID)
}

// RestaurantOwned returns the restaurant only when actor owns it.
func (x *RestaurantService) RestaurantOwned(ctx context.Context, restaurantID string,
	actor Actor) (*dbRestaurant, error) {

	found, err := x.storage.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if found.UserID != actor.ID {
		return nil, ErrUnauthorized
	}
	return found, nil
}

func (x *RestaurantService) RestaurantBySlug(ctx context.Context, restaurantSlug string) (*dbRestaurant, error) {
	return x.storage.RestaurantBySlug(ctx, restaurantSlug)
}

func (x *RestaurantService) ApprovedSlugs(ctx context.Context) ([]string, error) {
	return x.storage.ApprovedSlugs(ctx)
}

// Approved lists approved, non-deleted restaurants. The total count is
// computed only for the first page; later pages return count -1.
func (x *RestaurantService) Approved(ctx context.Context, offset, limit int64) ([]*dbRestaurant, int64, error) {

	count := int64(-1)
	if offset == 0 {
		var err error
		count, err = x.storage.ApprovedCount(ctx)
		if err != nil {
			return nil, 0, err
		}
	}

	restaurants, err := x.storage.Approved(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return restaurants, count, nil
}

func (x *RestaurantService) Pending(ctx context.Context) ([]*dbRestaurant, error) {
	return x.storage.Pending(ctx)
}

func (x *RestaurantService) ByUser(ctx context.Context, actor Actor) ([]*dbRestaurant, error) {
	return x.storage.ByUser(ctx, actor.ID)
}

func (x *RestaurantService) All(ctx context.Context) ([]*dbRestaurant, error) {
	return x.storage.All(ctx)
}

// Create submits a new listing. It starts PENDING and unverified, with no
// images, and stays invisible to the public surface until approved.
func (x *RestaurantService) Create(ctx context.Context, actor Actor, in *RestaurantInput) (string, error) {

	if err := ValidateRestaurantInput(in); err != nil {
		return "", err
	}

	if err := x.checkDuplicate(ctx, in.Name, in.TaxID, ""); err != nil {
		return "", err
	}

	restaurantSlug := slug.Make(in.Name)

	_, err := x.storage.Create(ctx, &dbRestaurant{
		UserID:      actor.ID,
		Name:        in.Name,
		TaxID:       in.TaxID,
		Slug:        restaurantSlug,
		Cuisine:     in.Cuisine,
		Address:     in.Address,
		Location:    in.location(),
		PhoneNumber: in.PhoneNumber,
		Images:      []string{},
		Status:      Status_PENDING,
	})
	if err != nil {
		return "", err
	}

	return restaurantSlug, nil
}

// Decide applies an admin approval or rejection to a PENDING listing.
// Approval flips the status and emits the public projection; rejection
// removes the record entirely. One LISTING moderation record is appended
// regardless of the verdict.
func (x *RestaurantService) Decide(ctx context.Context, actor Actor, restaurantID string,
	decision Decision) error {

	found, err := x.storage.Restaurant(ctx, restaurantID)
	if err != nil {
		return err
	}

	if found.Status == Status_APPROVED {
		return ErrAlreadyApproved
	}

	if decision.Status == Status_APPROVED {
		updated, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{
			Status: ptr(Status_APPROVED),
		})
		if err != nil {
			return err
		}

		x.events.Emit(ctx, SubjectRestaurantApproved, &RestaurantApprovedEvent{
			ID:       updated.ID.Hex(),
			Name:     updated.Name,
			Slug:     updated.Slug,
			TaxID:    updated.TaxID,
			Cuisine:  updated.Cuisine,
			Images:   updated.Images,
			Address:  updated.Address,
			Location: updated.Location,
		})
	} else {
		if err := x.storage.Delete(ctx, restaurantID); err != nil {
			return err
		}
	}

	return x.records.CreateRecord(ctx, &dbModerationRecord{
		AdminID:      actor.ID,
		RestaurantID: restaurantID,
		Status:       decision.Status,
		Type:         RecordType_LISTING,
		Remarks:      decision.Remarks,
	})
}

// Update applies the owner's edit. Protected fields (name, tax id) write
// through directly while the listing is still PENDING; once APPROVED they
// are parked in a modification request for admin review and the primary
// record keeps its current values. The remaining mutable fields always
// write through, and a phone number change resets verification.
func (x *RestaurantService) Update(ctx context.Context, actor Actor, restaurantID string,
	in *RestaurantInput) error {

	if err := ValidateRestaurantInput(in); err != nil {
		return err
	}

	found, err := x.RestaurantOwned(ctx, restaurantID, actor)
	if err != nil {
		return err
	}

	patch := &restaurantPatch{
		Cuisine:     in.Cuisine,
		Address:     ptr(in.Address),
		Location:    in.location(),
		PhoneNumber: ptr(in.PhoneNumber),
	}

	if found.Name != in.Name || found.TaxID != in.TaxID {
		if err := x.checkDuplicate(ctx, in.Name, in.TaxID, restaurantID); err != nil {
			return err
		}

		if found.Status == Status_PENDING {
			patch.Name = ptr(in.Name)
			patch.TaxID = ptr(in.TaxID)
			patch.Slug = ptr(slug.Make(in.Name))
		} else {
			err := x.modify.Upsert(ctx, &dbModificationRequest{
				RestaurantID: restaurantID,
				UserID:       actor.ID,
				Name:         in.Name,
				TaxID:        in.TaxID,
			})
			if err != nil {
				return fmt.Errorf("failed to create modification request: %w", err)
			}
		}
	}

	if found.PhoneNumber != in.PhoneNumber {
		patch.IsVerified = ptr(false)
	}

	updated, err := x.storage.Update(ctx, restaurantID, patch)
	if err != nil {
		return err
	}

	x.events.Emit(ctx, SubjectRestaurantDetailsUpdated, &RestaurantDetailsUpdatedEvent{
		ID:       updated.ID.Hex(),
		Cuisine:  updated.Cuisine,
		Address:  updated.Address,
		Location: updated.Location,
		Version:  updated.Version,
	})

	return nil
}

// DecideModification resolves the pending modification request for a
// restaurant. Approval copies the proposed name/tax id onto the primary
// record. A MODIFY moderation record is appended and the request removed
// whichever way the decision goes.
func (x *RestaurantService) DecideModification(ctx context.Context, actor Actor,
	restaurantID string, decision Decision) error {

	request, err := x.modify.Request(ctx, restaurantID)
	if err != nil {
		return err
	}

	if decision.Status == Status_APPROVED {
		updated, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{
			Name:  ptr(request.Name),
			TaxID: ptr(request.TaxID),
			Slug:  ptr(slug.Make(request.Name)),
		})
		if err != nil {
			return err
		}

		x.events.Emit(ctx, SubjectRestaurantUpdated, &RestaurantUpdatedEvent{
			ID:      updated.ID.Hex(),
			Name:    updated.Name,
			Slug:    updated.Slug,
			TaxID:   updated.TaxID,
			Version: updated.Version,
		})
	}

	err = x.records.CreateRecord(ctx, &dbModerationRecord{
		AdminID:      actor.ID,
		RestaurantID: request.RestaurantID,
		Status:       decision.Status,
		Type:         RecordType_MODIFY,
		Remarks:      decision.Remarks,
	})
	if err != nil {
		return err
	}

	return x.modify.Delete(ctx, restaurantID)
}

// Delete removes a listing. APPROVED listings are soft-deleted so that
// consumers holding references keep resolving them by raw id; PENDING
// listings were never public and are hard-deleted without an event.
func (x *RestaurantService) Delete(ctx context.Context, actor Actor, restaurantID string) error {

	found, err := x.storage.Restaurant(ctx, restaurantID)
	if err != nil {
		return err
	}

	if found.UserID != actor.ID && actor.Role != Role_ADMIN {
		return ErrUnauthorized
	}

	if found.Status == Status_APPROVED {
		updated, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{
			IsDeleted: ptr(true),
		})
		if err != nil {
			return err
		}

		x.events.Emit(ctx, SubjectRestaurantDeleted, &RestaurantDeletedEvent{
			ID:      updated.ID.Hex(),
			Version: updated.Version,
		})
		return nil
	}

	return x.storage.Delete(ctx, restaurantID)
}

// UploadImages appends a batch of images to an APPROVED listing. Uploads
// run concurrently and failures are dropped from the result set; the
// command only fails when no record write can happen at all.
func (x *RestaurantService) UploadImages(ctx context.Context, actor Actor, restaurantID string,
	files []ImageUpload) ([]string, error) {

	found, err := x.RestaurantOwned(ctx, restaurantID, actor)
	if err != nil {
		return nil, err
	}

	if found.Status != Status_APPROVED {
		return nil, ErrNotApproved
	}

	if len(found.Images)+len(files) > maxImages {
		return nil, ErrTooManyImages
	}

	path := fmt.Sprintf("%s/images", restaurantID)
	references := make([]string, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file ImageUpload) {
			defer wg.Done()

			reference, err := x.objects.Upload(ctx, path, file.Name, file.Body)
			if err != nil {
				slog.Warn("image upload failed", "file", file.Name, "err", err)
				return
			}
			references[i] = reference
		}(i, file)
	}
	wg.Wait()

	images := found.Images
	for _, reference := range references {
		if reference != "" {
			images = append(images, reference)
		}
	}

	updated, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{Images: images})
	if err != nil {
		return nil, err
	}

	x.events.Emit(ctx, SubjectRestaurantDetailsUpdated, &RestaurantDetailsUpdatedEvent{
		ID:      updated.ID.Hex(),
		Images:  updated.Images,
		Version: updated.Version,
	})

	return updated.Images, nil
}

// DeleteImages removes the named images from the listing and the object
// store. Removal is allowed in any status.
func (x *RestaurantService) DeleteImages(ctx context.Context, actor Actor, restaurantID string,
	images []string) error {

	found, err := x.RestaurantOwned(ctx, restaurantID, actor)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s/images", restaurantID)
	if err := x.objects.DeleteMany(ctx, path, images); err != nil {
		return err
	}

	removed := make(map[string]bool, len(images))
	for _, image := range images {
		removed[image] = true
	}

	filtered := make([]string, 0, len(found.Images))
	for _, image := range found.Images {
		if !removed[image] {
			filtered = append(filtered, image)
		}
	}

	updated, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{Images: filtered})
	if err != nil {
		return err
	}

	x.events.Emit(ctx, SubjectRestaurantDetailsUpdated, &RestaurantDetailsUpdatedEvent{
		ID:      updated.ID.Hex(),
		Images:  updated.Images,
		Version: updated.Version,
	})

	return nil
}

// UploadCover replaces the cover image. The new reference is persisted
// before the old object is deleted so a failed write never leaves the
// record pointing at a removed asset.
func (x *RestaurantService) UploadCover(ctx context.Context, actor Actor, restaurantID string,
	file ImageUpload) (string, error) {

	found, err := x.RestaurantOwned(ctx, restaurantID, actor)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/cover", restaurantID)
	reference, err := x.objects.Upload(ctx, path, file.Name, file.Body)
	if err != nil {
		return "", err
	}

	if _, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{Cover: ptr(reference)}); err != nil {
		return "", err
	}

	if found.Cover != "" {
		if err := x.objects.DeleteOne(ctx, found.Cover); err != nil {
			return "", err
		}
	}

	return reference, nil
}

// checkDuplicate enforces (name | taxId) uniqueness across the primary
// store and the pending modification requests.
func (x *RestaurantService) checkDuplicate(ctx context.Context, name, taxID, excludeID string) error {

	found, err := x.modify.FindDuplicate(ctx, name, taxID, excludeID)
	if err != nil {
		return err
	}
	if found {
		return ErrDuplicateRestaurant
	}

	found, err = x.storage.FindDuplicate(ctx, name, taxID, excludeID)
	if err != nil {
		return err
	}
	if found {
		return ErrDuplicateRestaurant
	}
	return nil
}
