// Package store persists users through the generic repository.
package store

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kycore/internal/user/models"
	"kycore/pkg/domain"
	"kycore/pkg/query"
	"kycore/pkg/repository"
)

// UserRow is the users table.
type UserRow struct {
	repository.Columns
	Email     string         `gorm:"column:email;type:varchar(320);not null;uniqueIndex"`
	KYCStatus string         `gorm:"column:kyc_status;type:varchar(50);not null;index"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb;not null"`
}

func (UserRow) TableName() string { return "users" }

// Models lists the rows owned by this package, for migrations.
func Models() []any {
	return []any{&UserRow{}}
}

type mapper struct{}

func (mapper) ToDomainEntity(row UserRow) (*models.User, error) {
	identity, err := row.Identity()
	if err != nil {
		return nil, err
	}
	email, err := domain.RestoreEmail(row.Email)
	if err != nil {
		return nil, err
	}
	status, err := models.KYCStatuses.Parse(row.KYCStatus)
	if err != nil {
		return nil, err
	}
	metadata, err := domain.ParseDocument(row.Metadata)
	if err != nil {
		return nil, err
	}
	return models.Restore(identity, models.Props{
		Email:     email,
		KYCStatus: status,
		Metadata:  metadata,
	})
}

func (mapper) ToOrmEntity(u *models.User) UserRow {
	return UserRow{
		Columns:   repository.ColumnsOf(u),
		Email:     u.Email().String(),
		KYCStatus: string(u.KYCStatus()),
		Metadata:  datatypes.JSON(u.Metadata().Bytes()),
	}
}

// Store is the user repository.
type Store struct {
	*repository.Repository[*models.User, models.Filters, UserRow]
}

func New(db *gorm.DB, opts ...repository.Option) *Store {
	opts = append([]repository.Option{repository.WithName("user")}, opts...)
	return &Store{Repository: repository.New[*models.User, models.Filters, UserRow](db, mapper{}, opts...)}
}

// FindByEmail looks a user up by normalized email.
func (s *Store) FindByEmail(ctx context.Context, email domain.Email) (*models.User, bool, error) {
	return s.FindOne(ctx, models.Filters{Email: query.Value(email)}, repository.FindOneOptions{})
}
