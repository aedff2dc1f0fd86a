package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Customer struct {
	ID              gocql.UUID `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Address1        string     `json:"address1,omitempty"`
	Address2        string     `json:"address2,omitempty"`
	PostalCode      string     `json:"postalCode,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	Country         string     `json:"country,omitempty"`
	Password        string     `json:"-"`
	RefreshToken    string     `json:"-"`
	Provider        string     `json:"provider,omitempty"` // local, google, facebook
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

type Admin struct {
	ID           gocql.UUID `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	RefreshToken string     `json:"-"`
}
