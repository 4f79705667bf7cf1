package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"charity/internal/db"
	"charity/internal/models"
	"charity/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const MinApplicationImages = 3

type ApplicationStore interface {
	Create(ctx context.Context, tx store.Getter, app models.DonationApplication) (int64, error)
	GetByID(ctx context.Context, id int64) (models.DonationApplication, error)
	GetForUpdate(ctx context.Context, tx store.Getter, id int64) (models.DonationApplication, error)
	ListByBranch(ctx context.Context, branchID int64) ([]models.DonationApplication, error)
	UpdateStatus(ctx context.Context, tx store.Execer, id int64, status models.ApplicationStatus) (int64, error)
	Reply(ctx context.Context, tx store.Execer, id int64, reply string) (int64, error)
}

type BranchChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type ApplicationService struct {
	txRunner           db.TxRunner
	applications       ApplicationStore
	branches           BranchChecker
	users              UserLookup
	auditStore         AuditStore
	logger             logrus.FieldLogger
	maxAttachmentBytes int
}

func NewApplicationService(txRunner db.TxRunner, applications ApplicationStore, branches BranchChecker, users UserLookup, auditStore AuditStore, logger logrus.FieldLogger, maxAttachmentBytes int) *ApplicationService {
	return &ApplicationService{
		txRunner:           txRunner,
		applications:       applications,
		branches:           branches,
		users:              users,
		auditStore:         auditStore,
		logger:             logger,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// Apply validates and stores a new aid application in the pending state.
// Nothing is written when validation fails.
func (s *ApplicationService) Apply(ctx context.Context, app models.DonationApplication) (models.DonationApplication, error) {
	app.VulnerableName = strings.TrimSpace(app.VulnerableName)
	if app.VulnerableName == "" {
		return models.DonationApplication{}, invalid("vulnerable_name", "vulnerable_name is required")
	}
	if app.BranchID == nil {
		return models.DonationApplication{}, invalid("branch_id", "branch_id is required")
	}
	if app.Images.Count() < MinApplicationImages || app.Images.Count() != len(app.Images) {
		return models.DonationApplication{}, invalid("images", "at least %d images are required", MinApplicationImages)
	}
	if app.RecommendationLetter.IsZero() {
		return models.DonationApplication{}, invalid("recommendation_letter", "a recommendation letter is required")
	}
	if app.Images.Largest() > s.maxAttachmentBytes {
		return models.DonationApplication{}, invalid("images", "each image must be at most %d bytes", s.maxAttachmentBytes)
	}
	if app.RecommendationLetter.Size() > s.maxAttachmentBytes {
		return models.DonationApplication{}, invalid("recommendation_letter", "recommendation letter must be at most %d bytes", s.maxAttachmentBytes)
	}
	exists, err := s.branches.Exists(ctx, *app.BranchID)
	if err != nil {
		return models.DonationApplication{}, err
	}
	if !exists {
		return models.DonationApplication{}, ErrNotFound
	}

	app.Status = models.StatusPending
	app.OfficerReply = nil
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.applications.Create(ctx, tx, app)
		if err != nil {
			return err
		}
		app.ID = id
		details, _ := json.Marshal(map[string]any{
			"branch_id": *app.BranchID,
			"images":    app.Images.Count(),
		})
		return s.auditStore.Log(ctx, tx, nil, "apply", "donation_application", strconv.FormatInt(id, 10), string(details))
	})
	if err != nil {
		return models.DonationApplication{}, err
	}
	now := time.Now()
	app.CreatedAt, app.UpdatedAt = now, now
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, actor Actor, id int64) (models.DonationApplication, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return models.DonationApplication{}, notFound(err)
	}
	if err := s.authorize(ctx, actor, app.BranchID); err != nil {
		return models.DonationApplication{}, err
	}
	return app, nil
}

func (s *ApplicationService) ListForBranch(ctx context.Context, actor Actor, branchID int64) ([]models.DonationApplication, error) {
	if err := s.authorize(ctx, actor, &branchID); err != nil {
		return nil, err
	}
	return s.applications.ListByBranch(ctx, branchID)
}

func (s *ApplicationService) SetStatus(ctx context.Context, actor Actor, id int64, raw string) (models.DonationApplication, error) {
	status, err := models.ParseApplicationStatus(strings.TrimSpace(raw))
	if err != nil || status == models.StatusPending {
		return models.DonationApplication{}, invalid("status", "status must be one of: reviewed, forwarded, replied, approved, rejected")
	}
	return s.transition(ctx, actor, id, models.ActionSetStatus, status, func(tx store.Execer) (int64, error) {
		return s.applications.UpdateStatus(ctx, tx, id, status)
	})
}

func (s *ApplicationService) Forward(ctx context.Context, actor Actor, id int64) (models.DonationApplication, error) {
	return s.transition(ctx, actor, id, models.ActionForward, models.StatusForwarded, func(tx store.Execer) (int64, error) {
		return s.applications.UpdateStatus(ctx, tx, id, models.StatusForwarded)
	})
}

// Reply stores the officer reply and moves the application to replied in a
// single statement.
func (s *ApplicationService) Reply(ctx context.Context, actor Actor, id int64, reply string) (models.DonationApplication, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return models.DonationApplication{}, invalid("reply", "reply is required")
	}
	app, err := s.transition(ctx, actor, id, models.ActionReply, models.StatusReplied, func(tx store.Execer) (int64, error) {
		return s.applications.Reply(ctx, tx, id, reply)
	})
	if err != nil {
		return models.DonationApplication{}, err
	}
	app.OfficerReply = &reply
	return app, nil
}

func (s *ApplicationService) transition(ctx context.Context, actor Actor, id int64, action models.ApplicationAction, to models.ApplicationStatus, write func(tx store.Execer) (int64, error)) (models.DonationApplication, error) {
	var app models.DonationApplication
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.applications.GetForUpdate(ctx, tx, id)
		if err != nil {
			return notFound(err)
		}
		if err := s.authorize(ctx, actor, current.BranchID); err != nil {
			return err
		}
		if !models.CanTransition(action, current.Status, to) {
			return ErrInvalidTransition
		}
		rows, err := write(tx)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		details, _ := json.Marshal(map[string]string{
			"from": string(current.Status),
			"to":   string(to),
		})
		if err := s.auditStore.Log(ctx, tx, &actor.UserID, string(action), "donation_application", strconv.FormatInt(id, 10), string(details)); err != nil {
			return err
		}
		current.Status = to
		current.UpdatedAt = time.Now()
		app = current
		return nil
	})
	if err != nil {
		return models.DonationApplication{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"application_id": id,
		"action":         action,
		"status":         to,
		"actor_id":       actor.UserID,
	}).Info("application status changed")
	return app, nil
}

// authorize lets the master admin through and limits a regional officer to
// the branch they are assigned to.
func (s *ApplicationService) authorize(ctx context.Context, actor Actor, branchID *int64) error {
	return authorizeBranch(ctx, s.users, actor, branchID)
}

func authorizeBranch(ctx context.Context, users UserLookup, actor Actor, branchID *int64) error {
	switch actor.Role {
	case models.RoleMasterAdmin:
		return nil
	case models.RoleOfficer:
	default:
		return ErrForbidden
	}
	user, err := users.GetByID(ctx, actor.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if user.BranchID == nil || branchID == nil || *user.BranchID != *branchID {
		return ErrForbidden
	}
	return nil
}
