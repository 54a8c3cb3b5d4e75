package models

import "kycore/pkg/ddd"

const (
	EventUserRegistered ddd.EventKind = "user.registered"
	EventKYCApproved    ddd.EventKind = "user.kyc_approved"
)

type UserRegistered struct {
	ddd.EventBase
	Email string `json:"email"`
}

func NewUserRegistered(u *User) UserRegistered {
	return UserRegistered{EventBase: ddd.NewEventBase(u.ID()), Email: u.Email().String()}
}

func (UserRegistered) Kind() ddd.EventKind { return EventUserRegistered }

type KYCApproved struct {
	ddd.EventBase
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewKYCApproved(u *User) KYCApproved {
	return KYCApproved{
		EventBase: ddd.NewEventBase(u.ID()),
		UserID:    u.ID().String(),
		Email:     u.Email().String(),
	}
}

func (KYCApproved) Kind() ddd.EventKind { return EventKYCApproved }
