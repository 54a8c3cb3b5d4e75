package repository

import (
	"time"

	"kycore/pkg/ddd"
	"kycore/pkg/domain"
	"kycore/pkg/query"
)

// Row is a storage row. Rows embed Columns and name their table.
type Row interface {
	TableName() string
}

// Columns are the framework-owned columns every table carries. Timestamps are
// written explicitly; gorm must not touch them.
type Columns struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

// ColumnsOf copies identity from entity. The update timestamp moves to now only
// when the entity has changes, so identical writes keep the stored value.
func ColumnsOf(entity ddd.Record) Columns {
	updatedAt := entity.UpdatedAt()
	if entity.Updated() {
		updatedAt = domain.Now()
	}
	return Columns{
		ID:        entity.ID().String(),
		CreatedAt: entity.CreatedAt().Time(),
		UpdatedAt: updatedAt.Time(),
	}
}

// Identity converts the columns back into a complete entity identity.
func (c Columns) Identity() (ddd.Identity, error) {
	id, err := domain.ParseID(c.ID)
	if err != nil {
		return ddd.Identity{}, err
	}
	createdAt, err := domain.NewTimestamp(c.CreatedAt)
	if err != nil {
		return ddd.Identity{}, err
	}
	updatedAt, err := domain.NewTimestamp(c.UpdatedAt)
	if err != nil {
		return ddd.Identity{}, err
	}
	return ddd.Identity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

// Mapper translates between an entity and its row. ToDomainEntity must return a
// fully validated entity; ToOrmEntity must use ColumnsOf for the shared columns.
type Mapper[E ddd.Record, R Row] interface {
	ToDomainEntity(row R) (E, error)
	ToOrmEntity(entity E) R
}

// Filters produces the conditions of a find. Entity filter structs embed
// BaseFilters and append their own fields.
type Filters interface {
	Conditions() query.Conditions
}

// BaseFilters filter on the framework-owned columns.
type BaseFilters struct {
	ID        query.Filter[domain.ID]
	CreatedAt query.Filter[domain.Timestamp]
	UpdatedAt query.Filter[domain.Timestamp]
}

func (f BaseFilters) Conditions() query.Conditions {
	var cs query.Conditions
	cs.Add("id", f.ID)
	cs.Add("created_at", f.CreatedAt)
	cs.Add("updated_at", f.UpdatedAt)
	return cs
}
