//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"kycore/internal/platform/postgres"
	"kycore/internal/user/models"
	"kycore/pkg/domain"
	"kycore/pkg/query"
	"kycore/pkg/repository"
	"kycore/pkg/requestcontext"
	"kycore/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB, Models()...))
	s.store = New(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), UserRow{}.TableName()))
}

func (s *PostgresStoreSuite) register(raw string, meta map[string]any) *models.User {
	email, err := domain.NewEmail(raw)
	s.Require().NoError(err)
	u, err := models.NewUser(email)
	s.Require().NoError(err)
	if meta != nil {
		doc, err := domain.NewDocument(meta)
		s.Require().NoError(err)
		u.SetMetadata(doc)
	}
	saved, err := s.store.Save(context.Background(), u)
	s.Require().NoError(err)
	return saved
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsAUniqueViolation() {
	s.register("dup@example.com", nil)

	email, err := domain.NewEmail("dup@example.com")
	s.Require().NoError(err)
	u, err := models.NewUser(email)
	s.Require().NoError(err)
	_, err = s.store.Save(context.Background(), u)
	s.True(postgres.IsUniqueViolation(err))
}

func (s *PostgresStoreSuite) TestPredicates() {
	ctx := context.Background()
	gold := s.register("gold.member@example.com", map[string]any{"tier": "gold", "score": 90})
	s.register("silver@example.com", map[string]any{"tier": "silver"})
	s.register("plain@example.com", nil)

	s.Run("case-insensitive like", func() {
		found, err := s.store.FindMany(ctx, models.Filters{
			Email: query.Match[domain.Email](query.ILike("GOLD")),
		}, repository.FindOptions{})
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.True(found[0].Equals(gold))
	})

	s.Run("jsonb containment", func() {
		found, err := s.store.FindMany(ctx, models.Filters{
			Metadata: query.Match[domain.Document](query.JSONContains(map[string]any{"tier": "gold"})),
		}, repository.FindOptions{})
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.True(found[0].Equals(gold))
	})

	s.Run("jsonb key", func() {
		n, err := s.store.Count(ctx, models.Filters{
			Metadata: query.Match[domain.Document](query.JSONHasKey("tier")),
		})
		s.Require().NoError(err)
		s.EqualValues(2, n)
	})
}

func (s *PostgresStoreSuite) TestSkipLockedHidesARowLockedByAnotherTask() {
	u := s.register("locked@example.com", nil)
	byID := models.Filters{BaseFilters: repository.BaseFilters{ID: query.Value(u.ID())}}

	locked := make(chan struct{})
	release := make(chan struct{})
	holder := make(chan error, 1)

	go func() {
		holder <- requestcontext.Run(context.Background(), requestcontext.Seed{}, func(ctx context.Context) error {
			return s.store.RunTransaction(ctx, func(ctx context.Context) error {
				if _, err := s.store.FindOneByIDOrThrow(ctx, u.ID(), repository.FindOneOptions{Lock: repository.LockExclusive}); err != nil {
					close(locked)
					return err
				}
				close(locked)
				<-release
				return nil
			})
		})
	}()
	<-locked

	err := requestcontext.Run(context.Background(), requestcontext.Seed{}, func(ctx context.Context) error {
		return s.store.RunTransaction(ctx, func(ctx context.Context) error {
			_, found, err := s.store.FindOne(ctx, byID, repository.FindOneOptions{Lock: repository.LockExclusiveSkipLocked})
			s.False(found)
			return err
		})
	})
	close(release)
	s.Require().NoError(err)
	s.Require().NoError(<-holder)
}
