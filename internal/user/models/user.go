// Package models holds the user aggregate: an email identity with a KYC status.
package models

import (
	"kycore/pkg/ddd"
	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusApproved KYCStatus = "APPROVED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// KYCStatuses is the accepted set of KYC statuses.
var KYCStatuses = domain.NewEnumSet("kyc status", KYCStatusPending, KYCStatusApproved, KYCStatusRejected)

// Props are the persisted fields of a user.
type Props struct {
	Email     domain.Email
	KYCStatus domain.Enum[KYCStatus]
	Metadata  domain.Document
}

type User struct {
	ddd.Aggregate
	props Props
}

// NewUser creates a pending user and raises UserRegistered.
func NewUser(email domain.Email) (*User, error) {
	u, err := Restore(ddd.Identity{}, Props{
		Email:     email,
		KYCStatus: KYCStatuses.MustOf(KYCStatusPending),
	})
	if err != nil {
		return nil, err
	}
	u.AddEvent(NewUserRegistered(u))
	return u, nil
}

// Restore rebuilds a user from its identity and props. With a complete identity
// the user counts as loaded from storage.
func Restore(identity ddd.Identity, props Props) (*User, error) {
	u := &User{props: props}
	if err := u.Init(identity, u.props, u.validate); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) validate() error {
	if u.props.Email.IsZero() {
		return dErrors.New(dErrors.CodeArgumentMissing, "email is required")
	}
	if u.props.KYCStatus.IsZero() {
		return dErrors.New(dErrors.CodeArgumentMissing, "kyc status is required")
	}
	return nil
}

func (u *User) Email() domain.Email       { return u.props.Email }
func (u *User) KYCStatus() KYCStatus      { return u.props.KYCStatus.Get() }
func (u *User) Metadata() domain.Document { return u.props.Metadata }
func (u *User) IsKYCApproved() bool       { return u.KYCStatus() == KYCStatusApproved }

// SetKYCStatus moves the user to status. Entering APPROVED raises KYCApproved;
// setting the current status again changes nothing.
func (u *User) SetKYCStatus(status KYCStatus) error {
	next, err := KYCStatuses.Of(status)
	if err != nil {
		return err
	}
	wasApproved := u.IsKYCApproved()
	ddd.Set(&u.Entity, "kyc_status", &u.props.KYCStatus, next)
	if status == KYCStatusApproved && !wasApproved {
		u.AddEvent(NewKYCApproved(u))
	}
	return nil
}

func (u *User) SetMetadata(doc domain.Document) {
	ddd.Set(&u.Entity, "metadata", &u.props.Metadata, doc)
}
