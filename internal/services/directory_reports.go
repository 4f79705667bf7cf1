package services

import (
	"context"
	"strings"
	"time"

	"charity/internal/models"
	"charity/internal/money"
	"charity/internal/store"

	"golang.org/x/sync/errgroup"
)

const (
	searchLimit     = 10
	analyticsMonths = 6
	auditPageSize   = 100
)

type ReportStore interface {
	Totals(ctx context.Context) (store.Totals, error)
	MonthlyDonations(ctx context.Context, since time.Time) ([]store.MonthTotal, error)
	SearchBranches(ctx context.Context, term string, limit int) ([]store.BranchHit, error)
	SearchUsers(ctx context.Context, term string, limit int) ([]store.UserHit, error)
	SearchDonations(ctx context.Context, term string, limit int) ([]models.Donation, error)
}

type TransactionLister interface {
	ListAll(ctx context.Context, limit, offset int) ([]store.TransactionWithUser, error)
}

type ApplicationLister interface {
	ListAll(ctx context.Context) ([]models.DonationApplication, error)
}

type AuditReader interface {
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type SearchResults struct {
	Branches  []store.BranchHit `json:"branches"`
	Users     []store.UserHit   `json:"users"`
	Donations []models.Donation `json:"donations"`
}

// Search matches q case-insensitively as a substring. Users are only
// searched for officers and the master admin.
func (s *DirectoryService) Search(ctx context.Context, actor *Actor, q string) (SearchResults, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResults{}, invalid("q", "search query is required")
	}
	results := SearchResults{Users: []store.UserHit{}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results.Branches, err = s.stores.Reports.SearchBranches(gctx, q, searchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		results.Donations, err = s.stores.Reports.SearchDonations(gctx, q, searchLimit)
		return err
	})
	if actor != nil && actor.IsOfficer() {
		g.Go(func() error {
			var err error
			results.Users, err = s.stores.Reports.SearchUsers(gctx, q, searchLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResults{}, err
	}
	return results, nil
}

type MonthlyDonation struct {
	Month string       `json:"month"`
	Total money.Amount `json:"total"`
}

type Analytics struct {
	TotalUsers             int64             `json:"totalUsers"`
	TotalOfficers          int64             `json:"totalOfficers"`
	TotalBranches          int64             `json:"totalBranches"`
	TotalDonations         money.Amount      `json:"totalDonations"`
	TotalRegionalDonations money.Amount      `json:"totalRegionalDonations"`
	TotalDeposits          money.Amount      `json:"totalDeposits"`
	TotalSavings           money.Amount      `json:"totalSavings"`
	PendingApplications    int64             `json:"pendingApplications"`
	ApprovedApplications   int64             `json:"approvedApplications"`
	RepliedApplications    int64             `json:"repliedApplications"`
	MonthlyDonations       []MonthlyDonation `json:"monthlyDonations"`
}

// Analytics aggregates platform totals. MonthlyDonations always holds the
// last six calendar months in order, with zero for months without gifts.
func (s *DirectoryService) Analytics(ctx context.Context, now time.Time) (Analytics, error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(analyticsMonths - 1), 0)

	var totals store.Totals
	var months []store.MonthTotal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.stores.Reports.Totals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		months, err = s.stores.Reports.MonthlyDonations(gctx, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return Analytics{}, err
	}

	return Analytics{
		TotalUsers:             totals.TotalUsers,
		TotalOfficers:          totals.TotalOfficers,
		TotalBranches:          totals.TotalBranches,
		TotalDonations:         money.Amount(totals.TotalDonations),
		TotalRegionalDonations: money.Amount(totals.TotalRegionalDonations),
		TotalDeposits:          money.Amount(totals.TotalDeposits),
		TotalSavings:           money.Amount(totals.TotalSavings),
		PendingApplications:    totals.PendingApplications,
		ApprovedApplications:   totals.ApprovedApplications,
		RepliedApplications:    totals.RepliedApplications,
		MonthlyDonations:       fillMonths(start, analyticsMonths, months),
	}, nil
}

func fillMonths(start time.Time, n int, rows []store.MonthTotal) []MonthlyDonation {
	byMonth := make(map[string]int64, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Total
	}
	out := make([]MonthlyDonation, n)
	for i := range out {
		month := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyDonation{Month: month, Total: money.Amount(byMonth[month])}
	}
	return out
}

type Overview struct {
	Donations    []models.Donation            `json:"donations"`
	Transactions []store.TransactionWithUser  `json:"transactions"`
	Applications []models.DonationApplication `json:"applications"`
	Users        []store.UserSummary          `json:"users"`
}

func (s *DirectoryService) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Donations, err = s.stores.Donations.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Transactions, err = s.stores.Transactions.ListAll(gctx, 500, 0)
		return err
	})
	g.Go(func() (err error) {
		out.Applications, err = s.stores.Applications.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Users, err = s.stores.Users.ListSummaries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s *DirectoryService) AuditLog(ctx context.Context) ([]models.AuditLog, error) {
	return s.stores.AuditLog.List(ctx, auditPageSize, 0)
}
