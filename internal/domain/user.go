package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeDriver   UserType = "driver"
	UserTypeAdmin    UserType = "admin"
)

func (t UserType) IsValid() bool {
	return t == UserTypeCustomer || t == UserTypeDriver || t == UserTypeAdmin
}

type Identity struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	SignUpDate   time.Time `json:"sign_up_date" db:"sign_up_date"`
}

type CustomerProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type DriverProfile struct {
	VehicleType  string `json:"vehicle_type"`
	Availability bool   `json:"availability"`
}

// User is an identity plus the payload of its variant. Exactly one of
// Customer and Driver is set for those types; admins carry neither.
type User struct {
	Identity
	Type     UserType         `json:"user_type" db:"user_type"`
	Customer *CustomerProfile `json:"customer,omitempty"`
	Driver   *DriverProfile   `json:"driver,omitempty"`
}

func (u *User) IsCustomer() bool { return u.Type == UserTypeCustomer }

func (u *User) IsDriver() bool { return u.Type == UserTypeDriver && u.Driver != nil }

func (u *User) IsAdmin() bool { return u.Type == UserTypeAdmin }

// DriverAvailable is false for non-drivers.
func (u *User) DriverAvailable() bool {
	return u.IsDriver() && u.Driver.Availability
}

type Registration struct {
	Username    string
	Password    string
	Type        UserType
	Customer    *CustomerProfile
	VehicleType string
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return InvalidArgumentf("username is required")
	}
	if !r.Type.IsValid() {
		return InvalidArgumentf("unknown user type %q", r.Type)
	}
	switch r.Type {
	case UserTypeCustomer:
		if r.Customer == nil || strings.TrimSpace(r.Customer.Email) == "" {
			return InvalidArgumentf("customer registration needs an email")
		}
	case UserTypeDriver:
		if strings.TrimSpace(r.VehicleType) == "" {
			return InvalidArgumentf("driver registration needs a vehicle type")
		}
	}
	return nil
}

// NewUser builds the variant described by the registration around a hashed password.
func NewUser(r Registration, passwordHash string) *User {
	u := &User{
		Identity: Identity{
			ID:           uuid.New(),
			Username:     strings.TrimSpace(r.Username),
			PasswordHash: passwordHash,
			SignUpDate:   time.Now(),
		},
		Type: r.Type,
	}
	switch r.Type {
	case UserTypeCustomer:
		profile := *r.Customer
		u.Customer = &profile
	case UserTypeDriver:
		u.Driver = &DriverProfile{VehicleType: strings.TrimSpace(r.VehicleType), Availability: true}
	}
	return u
}
