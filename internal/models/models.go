package models

import (
	"time"

	"charity/internal/money"
)

type Role string

const (
	RoleUser        Role = "user"
	RoleOfficer     Role = "regional_officer"
	RoleMasterAdmin Role = "master_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOfficer, RoleMasterAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         Role       `db:"role" json:"role"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	Photo        Attachment `db:"photo" json:"photo"`
	BranchID     *int64     `db:"branch_id" json:"branch_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type Account struct {
	UserID    int64        `db:"user_id" json:"user_id"`
	Balance   money.Amount `db:"balance" json:"balance"`
	AutoPay   bool         `db:"auto_pay" json:"auto_pay"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindCollection TransactionKind = "collection"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindCollection:
		return true
	}
	return false
}

// Debit reports whether the kind lowers the balance.
func (k TransactionKind) Debit() bool {
	return k == KindWithdrawal || k == KindCollection
}

type Transaction struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Kind      TransactionKind `db:"kind" json:"kind"`
	Amount    money.Amount    `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Branch struct {
	ID            int64       `db:"id" json:"id"`
	Region        string      `db:"region" json:"region"`
	Location      string      `db:"location" json:"location"`
	IsHeadOffice  bool        `db:"is_head_office" json:"is_head_office"`
	OfficerName   *string     `db:"officer_name" json:"officer_name"`
	OfficerBio    *string     `db:"officer_bio" json:"officer_bio"`
	OfficerPhoto  Attachment  `db:"officer_photo" json:"officer_photo"`
	OfficerPhotos Attachments `db:"officer_photos" json:"officer_photos"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`

	Activities []Activity `db:"-" json:"activities,omitempty"`
	Resources  []Resource `db:"-" json:"resources,omitempty"`
}

type ActivityStatus string

const (
	ActivityActive ActivityStatus = "active"
	ActivityPaused ActivityStatus = "paused"
)

func (s ActivityStatus) Valid() bool {
	return s == ActivityActive || s == ActivityPaused
}

type Activity struct {
	ID          int64          `db:"id" json:"id"`
	BranchID    int64          `db:"branch_id" json:"branch_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Status      ActivityStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceTool     ResourceType = "tool"
	ResourceFund     ResourceType = "fund"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceDocument, ResourceTool, ResourceFund:
		return true
	}
	return false
}

type Resource struct {
	ID          int64        `db:"id" json:"id"`
	BranchID    int64        `db:"branch_id" json:"branch_id"`
	Name        string       `db:"name" json:"name"`
	Type        ResourceType `db:"type" json:"type"`
	Description string       `db:"description" json:"description"`
	URL         *string      `db:"url" json:"url,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

type Donation struct {
	ID        int64        `db:"id" json:"id"`
	DonorName string       `db:"donor_name" json:"donor_name"`
	Amount    money.Amount `db:"amount" json:"amount"`
	Message   string       `db:"message" json:"message"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

const AnonymousDonor = "Anonymous"

type RegionalDonation struct {
	ID          int64        `db:"id" json:"id"`
	BranchID    *int64       `db:"branch_id" json:"branch_id"`
	DonorName   string       `db:"donor_name" json:"donor_name"`
	Amount      money.Amount `db:"amount" json:"amount"`
	Message     string       `db:"message" json:"message"`
	IsAnonymous bool         `db:"is_anonymous" json:"is_anonymous"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Public hides the donor name of anonymous gifts.
func (d RegionalDonation) Public() RegionalDonation {
	if d.IsAnonymous {
		d.DonorName = AnonymousDonor
	}
	return d
}

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "in_progress"
	RequestFulfilled  RequestStatus = "fulfilled"
	RequestDeclined   RequestStatus = "declined"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInProgress, RequestFulfilled, RequestDeclined:
		return true
	}
	return false
}

type RegionalRequest struct {
	ID              int64         `db:"id" json:"id"`
	BranchID        *int64        `db:"branch_id" json:"branch_id"`
	RequesterName   string        `db:"requester_name" json:"requester_name"`
	Contact         string        `db:"contact" json:"contact"`
	NeedDescription string        `db:"need_description" json:"need_description"`
	Status          RequestStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

type DonationApplication struct {
	ID                   int64             `db:"id" json:"id"`
	BranchID             *int64            `db:"branch_id" json:"branch_id"`
	VulnerableName       string            `db:"vulnerable_name" json:"vulnerable_name"`
	Images               Attachments       `db:"images" json:"images"`
	ActivePhone          string            `db:"active_phone" json:"active_phone"`
	AltPhone             string            `db:"alt_phone" json:"alt_phone"`
	GuardianName         string            `db:"guardian_name" json:"guardian_name"`
	Country              string            `db:"country" json:"country"`
	District             string            `db:"district" json:"district"`
	County               string            `db:"county" json:"county"`
	SubCounty            string            `db:"sub_county" json:"sub_county"`
	Parish               string            `db:"parish" json:"parish"`
	Village              string            `db:"village" json:"village"`
	ChairpersonName      string            `db:"chairperson_name" json:"chairperson_name"`
	ChairpersonPhone     string            `db:"chairperson_phone" json:"chairperson_phone"`
	RecommendationLetter Attachment        `db:"recommendation_letter" json:"recommendation_letter"`
	Status               ApplicationStatus `db:"status" json:"status"`
	OfficerReply         *string           `db:"officer_reply" json:"officer_reply"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

type ImpactStory struct {
	ID              int64      `db:"id" json:"id"`
	BranchID        *int64     `db:"branch_id" json:"branch_id"`
	Title           string     `db:"title" json:"title"`
	Story           string     `db:"story" json:"story"`
	BeneficiaryName string     `db:"beneficiary_name" json:"beneficiary_name"`
	Image           Attachment `db:"image" json:"image"`
	IsApproved      bool       `db:"is_approved" json:"is_approved"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	UserID     *int64    `db:"user_id" json:"user_id"`
	UserName   *string   `db:"user_name" json:"user_name"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type PasswordReset struct {
	ID        int64      `db:"id"`
	Email     string     `db:"email"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}
