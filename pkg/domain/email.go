package domain

import (
	"database/sql/driver"
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/email"
)

// EnvProduction is the environment in which email tags are stripped.
const EnvProduction = "production"

var (
	environment atomic.Value
	validate    = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	environment.Store(os.Getenv("APP_ENV"))
}

// SetEnvironment selects the deployment environment used by value object
// normalization. Called once at startup from configuration.
func SetEnvironment(env string) {
	environment.Store(env)
}

// Environment returns the configured deployment environment.
func Environment() string {
	env, _ := environment.Load().(string)
	return env
}

// Email is a syntactically valid, normalized email address.
type Email struct {
	v string
}

// NewEmail normalizes and validates raw. In production "+tag" extensions are
// removed from the local part; elsewhere the address is only lower-cased so that
// several test accounts can share one mailbox.
//
// Errors: returns CodeArgumentInvalid when the address is not a valid email.
func NewEmail(raw string) (Email, error) {
	normalized := email.Normalize(raw, Environment() == EnvProduction)
	if err := validate.Var(normalized, "required,email"); err != nil {
		return Email{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "email is invalid")
	}
	return Email{v: normalized}, nil
}

// RestoreEmail validates a previously normalized address without normalizing it
// again. Stored addresses keep their tag whatever the current environment is.
//
// Errors: returns CodeArgumentInvalid when stored is not a valid email.
func RestoreEmail(stored string) (Email, error) {
	if err := validate.Var(stored, "required,email"); err != nil {
		return Email{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "email is invalid")
	}
	return Email{v: stored}, nil
}

func (e Email) String() string { return e.v }
func (e Email) IsZero() bool   { return e.v == "" }

func (e Email) Equal(other Email) bool {
	return e.v == other.v
}

func (e Email) Value() (driver.Value, error) {
	if e.v == "" {
		return nil, nil
	}
	return e.v, nil
}

func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.v)
}
