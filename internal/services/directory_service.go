package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"charity/internal/auth"
	"charity/internal/db"
	"charity/internal/models"
	"charity/internal/store"
	"charity/internal/validator"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type BranchStore interface {
	List(ctx context.Context) ([]models.Branch, error)
	GetByID(ctx context.Context, id int64) (models.Branch, error)
	GetByRegion(ctx context.Context, q store.Getter, region string) (models.Branch, error)
	Create(ctx context.Context, tx store.Getter, input store.BranchInput) (int64, error)
	Update(ctx context.Context, tx store.Execer, id int64, input store.BranchInput) (int64, error)
	UpdateOfficerProfile(ctx context.Context, id int64, input store.OfficerProfile) (int64, error)
	ClearHeadOffice(ctx context.Context, tx store.Execer, keepID int64) error
	SetHeadOffice(ctx context.Context, tx store.Execer, id int64, isHeadOffice bool) (int64, error)
	Delete(ctx context.Context, tx store.Execer, id int64) (int64, error)
}

type ActivityStore interface {
	ListByBranches(ctx context.Context, branchIDs []int64) ([]models.Activity, error)
	ListByBranch(ctx context.Context, branchID int64) ([]models.Activity, error)
	ListAll(ctx context.Context) ([]store.ActivityWithBranch, error)
	GetByID(ctx context.Context, id int64) (models.Activity, error)
	Create(ctx context.Context, branchID int64, input store.ActivityInput) (models.Activity, error)
	Update(ctx context.Context, id int64, input store.ActivityInput) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByBranch(ctx context.Context, tx store.Execer, branchID int64) (int64, error)
}

type ResourceStore interface {
	ListByBranch(ctx context.Context, branchID int64) ([]models.Resource, error)
	GetByID(ctx context.Context, id int64) (models.Resource, error)
	Create(ctx context.Context, branchID int64, input store.ResourceInput) (models.Resource, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByBranch(ctx context.Context, tx store.Execer, branchID int64) (int64, error)
}

type OfficerStore interface {
	GetByID(ctx context.Context, userID int64) (models.User, error)
	Create(ctx context.Context, tx store.Getter, input store.NewUser) (int64, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	ListOfficers(ctx context.Context) ([]store.Officer, error)
	UpdateOfficer(ctx context.Context, tx store.Execer, userID int64, input store.OfficerUpdate) (int64, error)
	DeleteOfficer(ctx context.Context, tx store.Execer, userID int64) (int64, error)
	DetachBranch(ctx context.Context, tx store.Execer, branchID int64) (int64, error)
	ListSummaries(ctx context.Context) ([]store.UserSummary, error)
}

type DonationStore interface {
	Create(ctx context.Context, donorName string, amount int64, message string) (models.Donation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Donation, error)
	ListAll(ctx context.Context) ([]models.Donation, error)
}

type RegionalStore interface {
	CreateDonation(ctx context.Context, branchID int64, input store.RegionalDonationInput) (models.RegionalDonation, error)
	ListDonations(ctx context.Context, branchID int64) ([]models.RegionalDonation, error)
	CreateRequest(ctx context.Context, branchID int64, input store.RegionalRequestInput) (models.RegionalRequest, error)
	GetRequest(ctx context.Context, id int64) (models.RegionalRequest, error)
	ListRequests(ctx context.Context, branchID int64) ([]models.RegionalRequest, error)
	UpdateRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (int64, error)
}

type StoryStore interface {
	ListApproved(ctx context.Context) ([]models.ImpactStory, error)
	ListAll(ctx context.Context) ([]models.ImpactStory, error)
	Create(ctx context.Context, input store.StoryInput) (models.ImpactStory, error)
	Update(ctx context.Context, id int64, input store.StoryInput) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// DirectoryStores groups the persistence dependencies of DirectoryService.
type DirectoryStores struct {
	Branches     BranchStore
	Activities   ActivityStore
	Resources    ResourceStore
	Users        OfficerStore
	Donations    DonationStore
	Regional     RegionalStore
	Stories      StoryStore
	Reports      ReportStore
	Transactions TransactionLister
	Applications ApplicationLister
	Audit        AuditStore
	AuditLog     AuditReader
}

type DirectoryService struct {
	txRunner           db.TxRunner
	stores             DirectoryStores
	logger             logrus.FieldLogger
	maxAttachmentBytes int
}

func NewDirectoryService(txRunner db.TxRunner, stores DirectoryStores, logger logrus.FieldLogger, maxAttachmentBytes int) *DirectoryService {
	return &DirectoryService{
		txRunner:           txRunner,
		stores:             stores,
		logger:             logger,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

func (s *DirectoryService) audit(ctx context.Context, tx store.Execer, actor Actor, action, entityType string, entityID int64, details any) error {
	encoded, _ := json.Marshal(details)
	return s.stores.Audit.Log(ctx, tx, &actor.UserID, action, entityType, strconv.FormatInt(entityID, 10), string(encoded))
}

func (s *DirectoryService) checkAttachment(field string, a models.Attachment) error {
	if a.Size() > s.maxAttachmentBytes {
		return invalid(field, "%s must be at most %d bytes", field, s.maxAttachmentBytes)
	}
	return nil
}

// Branches

type BranchRequest struct {
	Region        string             `json:"region" validate:"required,min=2,max=100"`
	Location      string             `json:"location" validate:"required,max=200"`
	IsHeadOffice  *bool              `json:"is_head_office"`
	OfficerName   *string            `json:"officer_name" validate:"omitempty,max=100"`
	OfficerBio    *string            `json:"officer_bio" validate:"omitempty,max=2000"`
	OfficerPhoto  models.Attachment  `json:"officer_photo"`
	OfficerPhotos models.Attachments `json:"officer_photos"`
}

func (s *DirectoryService) validateBranch(req *BranchRequest) error {
	req.Region = strings.TrimSpace(req.Region)
	req.Location = strings.TrimSpace(req.Location)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return err
	}
	if err := s.checkAttachment("officer_photo", req.OfficerPhoto); err != nil {
		return err
	}
	if req.OfficerPhotos.Largest() > s.maxAttachmentBytes {
		return invalid("officer_photos", "officer_photos must be at most %d bytes each", s.maxAttachmentBytes)
	}
	return nil
}

func (req BranchRequest) input() store.BranchInput {
	return store.BranchInput{
		Region:        req.Region,
		Location:      req.Location,
		OfficerName:   req.OfficerName,
		OfficerBio:    req.OfficerBio,
		OfficerPhoto:  req.OfficerPhoto,
		OfficerPhotos: req.OfficerPhotos,
	}
}

// ListBranches returns every branch with its activities, head office first.
func (s *DirectoryService) ListBranches(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.stores.Branches.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return branches, nil
	}
	ids := make([]int64, len(branches))
	for i, b := range branches {
		ids[i] = b.ID
	}
	activities, err := s.stores.Activities.ListByBranches(ctx, ids)
	if err != nil {
		return nil, err
	}
	byBranch := make(map[int64][]models.Activity, len(branches))
	for _, a := range activities {
		byBranch[a.BranchID] = append(byBranch[a.BranchID], a)
	}
	for i := range branches {
		branches[i].Activities = byBranch[branches[i].ID]
		if branches[i].Activities == nil {
			branches[i].Activities = []models.Activity{}
		}
	}
	return branches, nil
}

func (s *DirectoryService) GetBranch(ctx context.Context, id int64) (models.Branch, error) {
	branch, err := s.stores.Branches.GetByID(ctx, id)
	if err != nil {
		return models.Branch{}, notFound(err)
	}
	if branch.Activities, err = s.stores.Activities.ListByBranch(ctx, id); err != nil {
		return models.Branch{}, err
	}
	if branch.Resources, err = s.stores.Resources.ListByBranch(ctx, id); err != nil {
		return models.Branch{}, err
	}
	return branch, nil
}

func (s *DirectoryService) CreateBranch(ctx context.Context, actor Actor, req BranchRequest) (models.Branch, error) {
	if err := s.validateBranch(&req); err != nil {
		return models.Branch{}, err
	}
	var id int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.stores.Branches.Create(ctx, tx, req.input())
		if err != nil {
			return err
		}
		if req.IsHeadOffice != nil && *req.IsHeadOffice {
			if err := s.makeHeadOffice(ctx, tx, id); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, actor, "create_branch", "branch", id, map[string]string{"region": req.Region})
	})
	if err != nil {
		return models.Branch{}, branchWriteError(err)
	}
	return s.GetBranch(ctx, id)
}

func (s *DirectoryService) UpdateBranch(ctx context.Context, actor Actor, id int64, req BranchRequest) (models.Branch, error) {
	if err := s.validateBranch(&req); err != nil {
		return models.Branch{}, err
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.stores.Branches.Update(ctx, tx, id, req.input())
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		if req.IsHeadOffice != nil {
			if *req.IsHeadOffice {
				err = s.makeHeadOffice(ctx, tx, id)
			} else {
				_, err = s.stores.Branches.SetHeadOffice(ctx, tx, id, false)
			}
			if err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, actor, "update_branch", "branch", id, map[string]any{
			"region":         req.Region,
			"is_head_office": req.IsHeadOffice,
		})
	})
	if err != nil {
		return models.Branch{}, branchWriteError(err)
	}
	return s.GetBranch(ctx, id)
}

// makeHeadOffice leaves id as the only flagged branch. Both statements run in
// the caller's transaction.
func (s *DirectoryService) makeHeadOffice(ctx context.Context, tx store.Execer, id int64) error {
	if err := s.stores.Branches.ClearHeadOffice(ctx, tx, id); err != nil {
		return err
	}
	rows, err := s.stores.Branches.SetHeadOffice(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func branchWriteError(err error) error {
	if db.IsUniqueViolation(err, "branches_region_key") {
		return invalid("region", "a branch for this region already exists")
	}
	if db.IsUniqueViolation(err, "") {
		return ErrConflict
	}
	return err
}

// DeleteBranch removes the branch with its activities and resources and
// detaches its users in one transaction.
func (s *DirectoryService) DeleteBranch(ctx context.Context, actor Actor, id int64) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		activities, err := s.stores.Activities.DeleteByBranch(ctx, tx, id)
		if err != nil {
			return err
		}
		resources, err := s.stores.Resources.DeleteByBranch(ctx, tx, id)
		if err != nil {
			return err
		}
		users, err := s.stores.Users.DetachBranch(ctx, tx, id)
		if err != nil {
			return err
		}
		rows, err := s.stores.Branches.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return s.audit(ctx, tx, actor, "delete_branch", "branch", id, map[string]int64{
			"activities": activities,
			"resources":  resources,
			"users":      users,
		})
	})
}

type OfficerProfileRequest struct {
	OfficerName   *string            `json:"officer_name" validate:"omitempty,max=100"`
	OfficerBio    *string            `json:"officer_bio" validate:"omitempty,max=2000"`
	OfficerPhoto  models.Attachment  `json:"officer_photo"`
	OfficerPhotos models.Attachments `json:"officer_photos"`
}

// UpdateOfficerProfile lets a regional officer edit the public profile of
// their own branch.
func (s *DirectoryService) UpdateOfficerProfile(ctx context.Context, actor Actor, branchID int64, req OfficerProfileRequest) (models.Branch, error) {
	if err := authorizeBranch(ctx, s.stores.Users, actor, &branchID); err != nil {
		return models.Branch{}, err
	}
	if err := fromValidator(validator.Struct(req)); err != nil {
		return models.Branch{}, err
	}
	if err := s.checkAttachment("officer_photo", req.OfficerPhoto); err != nil {
		return models.Branch{}, err
	}
	if req.OfficerPhotos.Largest() > s.maxAttachmentBytes {
		return models.Branch{}, invalid("officer_photos", "officer_photos must be at most %d bytes each", s.maxAttachmentBytes)
	}
	rows, err := s.stores.Branches.UpdateOfficerProfile(ctx, branchID, store.OfficerProfile{
		OfficerName:   req.OfficerName,
		OfficerBio:    req.OfficerBio,
		OfficerPhoto:  req.OfficerPhoto,
		OfficerPhotos: req.OfficerPhotos,
	})
	if err != nil {
		return models.Branch{}, err
	}
	if rows == 0 {
		return models.Branch{}, ErrNotFound
	}
	return s.GetBranch(ctx, branchID)
}

// Officers

type CreateOfficerRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	BranchName   string `json:"branch_name" validate:"required,max=100"`
	IsHeadOffice bool   `json:"is_head_office"`
}

// CreateOfficer registers a regional officer, creating the branch named by
// BranchName when no branch of that region exists yet.
func (s *DirectoryService) CreateOfficer(ctx context.Context, actor Actor, req CreateOfficerRequest) (store.Officer, error) {
	req.Email = validator.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.BranchName = strings.TrimSpace(req.BranchName)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return store.Officer{}, err
	}
	if err := validateCredentials(req.Email, req.Password, req.Name); err != nil {
		return store.Officer{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return store.Officer{}, err
	}
	var officerID, branchID int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		branch, err := s.stores.Branches.GetByRegion(ctx, tx, req.BranchName)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			branchID, err = s.stores.Branches.Create(ctx, tx, store.BranchInput{Region: req.BranchName, Location: req.BranchName})
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			branchID = branch.ID
		}
		if req.IsHeadOffice {
			if err := s.makeHeadOffice(ctx, tx, branchID); err != nil {
				return err
			}
		}
		officerID, err = s.stores.Users.Create(ctx, tx, store.NewUser{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			Role:         models.RoleOfficer,
			BranchID:     &branchID,
		})
		if err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, "create_officer", "user", officerID, map[string]any{
			"email":     req.Email,
			"branch_id": branchID,
		})
	})
	if db.IsUniqueViolation(err, "users_email_key") {
		return store.Officer{}, ErrDuplicateEmail
	}
	if err != nil {
		return store.Officer{}, branchWriteError(err)
	}
	return store.Officer{ID: officerID, Email: req.Email, Name: req.Name, BranchID: &branchID, Region: &req.BranchName}, nil
}

type UpdateOfficerRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required"`
	Password *string `json:"password"`
	BranchID *int64  `json:"branch_id"`
}

func (s *DirectoryService) UpdateOfficer(ctx context.Context, actor Actor, id int64, req UpdateOfficerRequest) error {
	req.Email = validator.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return err
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		return invalid("email", "%v", err)
	}
	if err := validator.ValidateName(req.Name); err != nil {
		return invalid("name", "%v", err)
	}
	update := store.OfficerUpdate{Email: req.Email, Name: req.Name, BranchID: req.BranchID}
	if req.Password != nil && *req.Password != "" {
		if err := validator.ValidatePassword(*req.Password); err != nil {
			return invalid("password", "%v", err)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		update.PasswordHash = &hash
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.stores.Users.UpdateOfficer(ctx, tx, id, update)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return s.audit(ctx, tx, actor, "update_officer", "user", id, map[string]any{
			"email":            req.Email,
			"branch_id":        req.BranchID,
			"password_changed": update.PasswordHash != nil,
		})
	})
	switch {
	case db.IsUniqueViolation(err, ""):
		return ErrDuplicateEmail
	case db.IsForeignKeyViolation(err):
		return invalid("branch_id", "branch does not exist")
	}
	return err
}

// DeleteOfficer removes a regional officer account. Officers with savings
// history are kept and the call fails with ErrConflict.
func (s *DirectoryService) DeleteOfficer(ctx context.Context, actor Actor, id int64) error {
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.stores.Users.DeleteOfficer(ctx, tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return s.audit(ctx, tx, actor, "delete_officer", "user", id, struct{}{})
	})
	if db.IsForeignKeyViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *DirectoryService) ListOfficers(ctx context.Context) ([]store.Officer, error) {
	officers, err := s.stores.Users.ListOfficers(ctx)
	if err != nil {
		return nil, err
	}
	if officers == nil {
		officers = []store.Officer{}
	}
	return officers, nil
}

// Activities and resources

type ActivityRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description" validate:"max=5000"`
	Status      models.ActivityStatus `json:"status"`
}

func (req *ActivityRequest) normalize() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Status == "" {
		req.Status = models.ActivityActive
	}
	if err := fromValidator(validator.Struct(req)); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return invalid("status", "status must be one of: active, paused")
	}
	return nil
}

func (s *DirectoryService) CreateActivity(ctx context.Context, actor Actor, branchID int64, req ActivityRequest) (models.Activity, error) {
	if err := authorizeBranch(ctx, s.stores.Users, actor, &branchID); err != nil {
		return models.Activity{}, err
	}
	if err := req.normalize(); err != nil {
		return models.Activity{}, err
	}
	activity, err := s.stores.Activities.Create(ctx, branchID, store.ActivityInput(req))
	if db.IsForeignKeyViolation(err) {
		return models.Activity{}, ErrNotFound
	}
	return activity, err
}

func (s *DirectoryService) UpdateActivity(ctx context.Context, actor Actor, id int64, req ActivityRequest) (models.Activity, error) {
	activity, err := s.stores.Activities.GetByID(ctx, id)
	if err != nil {
		return models.Activity{}, notFound(err)
	}
	if err := authorizeBranch(ctx, s.stores.Users, actor, &activity.BranchID); err != nil {
		return models.Activity{}, err
	}
	if err := req.normalize(); err != nil {
		return models.Activity{}, err
	}
	rows, err := s.stores.Activities.Update(ctx, id, store.ActivityInput(req))
	if err != nil {
		return models.Activity{}, err
	}
	if rows == 0 {
		return models.Activity{}, ErrNotFound
	}
	activity.Title, activity.Description, activity.Status = req.Title, req.Description, req.Status
	return activity, nil
}

func (s *DirectoryService) DeleteActivity(ctx context.Context, actor Actor, id int64) error {
	activity, err := s.stores.Activities.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := authorizeBranch(ctx, s.stores.Users, actor, &activity.BranchID); err != nil {
		return err
	}
	rows, err := s.stores.Activities.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DirectoryService) ListAllActivities(ctx context.Context) ([]store.ActivityWithBranch, error) {
	return s.stores.Activities.ListAll(ctx)
}

type ResourceRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Type        models.ResourceType `json:"type" validate:"required"`
	Description string              `json:"description" validate:"max=5000"`
	URL         *string             `json:"url" validate:"omitempty,url"`
}

func (s *DirectoryService) CreateResource(ctx context.Context, actor Actor, branchID int64, req ResourceRequest) (models.Resource, error) {
	if err := authorizeBranch(ctx, s.stores.Users, actor, &branchID); err != nil {
		return models.Resource{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return models.Resource{}, err
	}
	if !req.Type.Valid() {
		return models.Resource{}, invalid("type", "type must be one of: document, tool, fund")
	}
	resource, err := s.stores.Resources.Create(ctx, branchID, store.ResourceInput(req))
	if db.IsForeignKeyViolation(err) {
		return models.Resource{}, ErrNotFound
	}
	return resource, err
}

func (s *DirectoryService) DeleteResource(ctx context.Context, actor Actor, id int64) error {
	resource, err := s.stores.Resources.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := authorizeBranch(ctx, s.stores.Users, actor, &resource.BranchID); err != nil {
		return err
	}
	rows, err := s.stores.Resources.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Impact stories

type StoryRequest struct {
	BranchID        *int64            `json:"branch_id"`
	Title           string            `json:"title" validate:"required,max=200"`
	Story           string            `json:"story" validate:"required"`
	BeneficiaryName string            `json:"beneficiary_name" validate:"max=200"`
	Image           models.Attachment `json:"image"`
	IsApproved      *bool             `json:"is_approved"`
}

func (s *DirectoryService) storyInput(req StoryRequest) (store.StoryInput, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return store.StoryInput{}, err
	}
	if err := s.checkAttachment("image", req.Image); err != nil {
		return store.StoryInput{}, err
	}
	approved := true
	if req.IsApproved != nil {
		approved = *req.IsApproved
	}
	return store.StoryInput{
		BranchID:        req.BranchID,
		Title:           req.Title,
		Story:           req.Story,
		BeneficiaryName: req.BeneficiaryName,
		Image:           req.Image,
		IsApproved:      approved,
	}, nil
}

func (s *DirectoryService) ListApprovedStories(ctx context.Context) ([]models.ImpactStory, error) {
	return s.stores.Stories.ListApproved(ctx)
}

func (s *DirectoryService) ListAllStories(ctx context.Context) ([]models.ImpactStory, error) {
	return s.stores.Stories.ListAll(ctx)
}

func (s *DirectoryService) CreateStory(ctx context.Context, req StoryRequest) (models.ImpactStory, error) {
	input, err := s.storyInput(req)
	if err != nil {
		return models.ImpactStory{}, err
	}
	story, err := s.stores.Stories.Create(ctx, input)
	if db.IsForeignKeyViolation(err) {
		return models.ImpactStory{}, invalid("branch_id", "branch does not exist")
	}
	return story, err
}

func (s *DirectoryService) UpdateStory(ctx context.Context, id int64, req StoryRequest) error {
	input, err := s.storyInput(req)
	if err != nil {
		return err
	}
	rows, err := s.stores.Stories.Update(ctx, id, input)
	if db.IsForeignKeyViolation(err) {
		return invalid("branch_id", "branch does not exist")
	}
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DirectoryService) DeleteStory(ctx context.Context, id int64) error {
	rows, err := s.stores.Stories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Donations

type DonationRequest struct {
	DonorName   string `json:"donor_name" validate:"max=200"`
	Amount      int64  `json:"-"`
	Message     string `json:"message" validate:"max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

func (req *DonationRequest) normalize() error {
	req.DonorName = strings.TrimSpace(req.DonorName)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return err
	}
	if req.Amount <= 0 {
		return invalid("amount", "amount must be greater than zero")
	}
	if req.IsAnonymous || req.DonorName == "" {
		req.DonorName = models.AnonymousDonor
	}
	return nil
}

func (s *DirectoryService) Donate(ctx context.Context, req DonationRequest) (models.Donation, error) {
	if err := req.normalize(); err != nil {
		return models.Donation{}, err
	}
	return s.stores.Donations.Create(ctx, req.DonorName, req.Amount, req.Message)
}

func (s *DirectoryService) RecentDonations(ctx context.Context) ([]models.Donation, error) {
	return s.stores.Donations.ListRecent(ctx, 10)
}

// DonateToBranch keeps the donor name in storage; anonymous gifts are masked
// on read.
func (s *DirectoryService) DonateToBranch(ctx context.Context, branchID int64, req DonationRequest) (models.RegionalDonation, error) {
	anonymous := req.IsAnonymous
	if err := req.normalize(); err != nil {
		return models.RegionalDonation{}, err
	}
	donation, err := s.stores.Regional.CreateDonation(ctx, branchID, store.RegionalDonationInput{
		DonorName:   req.DonorName,
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: anonymous,
	})
	if db.IsForeignKeyViolation(err) {
		return models.RegionalDonation{}, ErrNotFound
	}
	if err != nil {
		return models.RegionalDonation{}, err
	}
	return donation.Public(), nil
}

func (s *DirectoryService) BranchDonations(ctx context.Context, branchID int64) ([]models.RegionalDonation, error) {
	donations, err := s.stores.Regional.ListDonations(ctx, branchID)
	if err != nil {
		return nil, err
	}
	for i := range donations {
		donations[i] = donations[i].Public()
	}
	return donations, nil
}

// Regional requests

type RegionalRequestRequest struct {
	RequesterName   string `json:"requester_name" validate:"required,max=200"`
	Contact         string `json:"contact" validate:"required,max=200"`
	NeedDescription string `json:"need_description" validate:"required,max=5000"`
}

func (s *DirectoryService) CreateRequest(ctx context.Context, branchID int64, req RegionalRequestRequest) (models.RegionalRequest, error) {
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.Contact = strings.TrimSpace(req.Contact)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return models.RegionalRequest{}, err
	}
	request, err := s.stores.Regional.CreateRequest(ctx, branchID, store.RegionalRequestInput(req))
	if db.IsForeignKeyViolation(err) {
		return models.RegionalRequest{}, ErrNotFound
	}
	return request, err
}

func (s *DirectoryService) ListRequests(ctx context.Context, actor Actor, branchID int64) ([]models.RegionalRequest, error) {
	if err := authorizeBranch(ctx, s.stores.Users, actor, &branchID); err != nil {
		return nil, err
	}
	return s.stores.Regional.ListRequests(ctx, branchID)
}

func (s *DirectoryService) UpdateRequestStatus(ctx context.Context, actor Actor, id int64, status models.RequestStatus) (models.RegionalRequest, error) {
	if !status.Valid() {
		return models.RegionalRequest{}, invalid("status", "status must be one of: pending, in_progress, fulfilled, declined")
	}
	request, err := s.stores.Regional.GetRequest(ctx, id)
	if err != nil {
		return models.RegionalRequest{}, notFound(err)
	}
	if err := authorizeBranch(ctx, s.stores.Users, actor, request.BranchID); err != nil {
		return models.RegionalRequest{}, err
	}
	rows, err := s.stores.Regional.UpdateRequestStatus(ctx, id, status)
	if err != nil {
		return models.RegionalRequest{}, err
	}
	if rows == 0 {
		return models.RegionalRequest{}, ErrNotFound
	}
	request.Status = status
	return request, nil
}

func validateCredentials(email, password, name string) error {
	if err := validator.ValidateEmail(email); err != nil {
		return invalid("email", "%v", err)
	}
	if err := validator.ValidatePassword(password); err != nil {
		return invalid("password", "%v", err)
	}
	if err := validator.ValidateName(name); err != nil {
		return invalid("name", "%v", err)
	}
	return nil
}
