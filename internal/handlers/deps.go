package handlers

import (
	"context"
	"time"

	"charity/internal/models"
	"charity/internal/services"
	"charity/internal/store"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (services.Session, error)
	Login(ctx context.Context, email, password string) (services.Session, error)
	Me(ctx context.Context, userID int64) (models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req services.ProfileRequest) (models.User, error)
	ForgotPassword(ctx context.Context, email string) (services.ResetTicket, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type LedgerService interface {
	Deposit(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)
	Withdraw(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)
	Collect(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)
	Balance(ctx context.Context, userID int64) (models.Account, error)
	SetAutoPay(ctx context.Context, userID int64, enabled bool) (models.Account, error)
	History(ctx context.Context, userID int64, q services.HistoryQuery) ([]models.Transaction, error)
	Receipt(ctx context.Context, actor services.Actor, transactionID int64) (services.Receipt, error)
	Reconcile(ctx context.Context) ([]store.Reconciliation, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, app models.DonationApplication) (models.DonationApplication, error)
	Get(ctx context.Context, actor services.Actor, id int64) (models.DonationApplication, error)
	ListForBranch(ctx context.Context, actor services.Actor, branchID int64) ([]models.DonationApplication, error)
	SetStatus(ctx context.Context, actor services.Actor, id int64, raw string) (models.DonationApplication, error)
	Forward(ctx context.Context, actor services.Actor, id int64) (models.DonationApplication, error)
	Reply(ctx context.Context, actor services.Actor, id int64, reply string) (models.DonationApplication, error)
}

// DirectoryService covers branches, officers, public content and the
// administrative reports.
type DirectoryService interface {
	ListBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, id int64) (models.Branch, error)
	CreateBranch(ctx context.Context, actor services.Actor, req services.BranchRequest) (models.Branch, error)
	UpdateBranch(ctx context.Context, actor services.Actor, id int64, req services.BranchRequest) (models.Branch, error)
	DeleteBranch(ctx context.Context, actor services.Actor, id int64) error
	UpdateOfficerProfile(ctx context.Context, actor services.Actor, branchID int64, req services.OfficerProfileRequest) (models.Branch, error)

	ListOfficers(ctx context.Context) ([]store.Officer, error)
	CreateOfficer(ctx context.Context, actor services.Actor, req services.CreateOfficerRequest) (store.Officer, error)
	UpdateOfficer(ctx context.Context, actor services.Actor, id int64, req services.UpdateOfficerRequest) error
	DeleteOfficer(ctx context.Context, actor services.Actor, id int64) error

	CreateActivity(ctx context.Context, actor services.Actor, branchID int64, req services.ActivityRequest) (models.Activity, error)
	UpdateActivity(ctx context.Context, actor services.Actor, id int64, req services.ActivityRequest) (models.Activity, error)
	DeleteActivity(ctx context.Context, actor services.Actor, id int64) error
	ListAllActivities(ctx context.Context) ([]store.ActivityWithBranch, error)
	CreateResource(ctx context.Context, actor services.Actor, branchID int64, req services.ResourceRequest) (models.Resource, error)
	DeleteResource(ctx context.Context, actor services.Actor, id int64) error

	ListApprovedStories(ctx context.Context) ([]models.ImpactStory, error)
	ListAllStories(ctx context.Context) ([]models.ImpactStory, error)
	CreateStory(ctx context.Context, req services.StoryRequest) (models.ImpactStory, error)
	UpdateStory(ctx context.Context, id int64, req services.StoryRequest) error
	DeleteStory(ctx context.Context, id int64) error

	Donate(ctx context.Context, req services.DonationRequest) (models.Donation, error)
	RecentDonations(ctx context.Context) ([]models.Donation, error)
	DonateToBranch(ctx context.Context, branchID int64, req services.DonationRequest) (models.RegionalDonation, error)
	BranchDonations(ctx context.Context, branchID int64) ([]models.RegionalDonation, error)
	CreateRequest(ctx context.Context, branchID int64, req services.RegionalRequestRequest) (models.RegionalRequest, error)
	ListRequests(ctx context.Context, actor services.Actor, branchID int64) ([]models.RegionalRequest, error)
	UpdateRequestStatus(ctx context.Context, actor services.Actor, id int64, status models.RequestStatus) (models.RegionalRequest, error)

	Search(ctx context.Context, actor *services.Actor, q string) (services.SearchResults, error)
	Analytics(ctx context.Context, now time.Time) (services.Analytics, error)
	Overview(ctx context.Context) (services.Overview, error)
	AuditLog(ctx context.Context) ([]models.AuditLog, error)
}
