package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	jwttoken "kycore/internal/jwt_token"
	"kycore/internal/platform/logger"
	"kycore/internal/user/handler/mocks"
	"kycore/internal/user/models"
	"kycore/pkg/ddd"
	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/middleware/auth"
	"kycore/pkg/platform/middleware/request"
	"kycore/pkg/repository"
	"kycore/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	jwt         *jwttoken.Service
	router      http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.jwt = jwttoken.New("test-signing-key", "kycore", "kycore-api")

	log := logger.NewNop()
	r := chi.NewRouter()
	r.Use(request.Scope(log))
	r.Use(auth.Authenticate(s.jwt.Validator(), log))
	New(s.mockService, log).Register(r)
	s.router = r
}

func (s *HandlerSuite) user(status models.KYCStatus) *models.User {
	email, err := domain.NewEmail("jane@example.com")
	s.Require().NoError(err)
	now := domain.Now()
	u, err := models.Restore(
		ddd.Identity{ID: domain.NewID(), CreatedAt: now, UpdatedAt: now},
		models.Props{Email: email, KYCStatus: models.KYCStatuses.MustOf(status)},
	)
	s.Require().NoError(err)
	return u
}

func (s *HandlerSuite) authorize(req *http.Request, id domain.ID) *http.Request {
	token, err := s.jwt.Issue(id, time.Minute)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *HandlerSuite) TestCreateUser() {
	s.Run("created", func() {
		u := s.user(models.KYCStatusPending)
		s.mockService.EXPECT().CreateUser(gomock.Any(), "jane@example.com").Return(u, nil)

		rr := testutil.Serve(s.router, testutil.Request(s.T(), http.MethodPost, "/users", CreateUserRequest{Email: "jane@example.com"}))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		s.NotEmpty(rr.Header().Get(request.HeaderContextID))

		resp := testutil.DecodeResponse[UserResponse](s.T(), rr)
		s.Equal(u.ID().String(), resp.ID)
		s.Equal("PENDING", resp.KYCStatus)
		s.JSONEq(`{}`, string(resp.Metadata))
	})

	s.Run("unknown field", func() {
		rr := testutil.Serve(s.router, testutil.Request(s.T(), http.MethodPost, "/users", `{"email":"a@b.c","role":"admin"}`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("conflict", func() {
		s.mockService.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "email already registered"))

		rr := testutil.Serve(s.router, testutil.Request(s.T(), http.MethodPost, "/users", CreateUserRequest{Email: "jane@example.com"}))
		testutil.AssertError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("internal error hides details", func() {
		s.mockService.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		rr := testutil.Serve(s.router, testutil.Request(s.T(), http.MethodPost, "/users", CreateUserRequest{Email: "jane@example.com"}))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		body := testutil.ErrorBody(s.T(), rr)
		s.Equal("internal_error", body["error"])
		s.Empty(body["error_description"])
	})
}

func (s *HandlerSuite) TestGetUser() {
	caller := domain.NewID()

	s.Run("requires authentication", func() {
		rr := testutil.Serve(s.router, testutil.Request(s.T(), http.MethodGet, "/users/me", nil))
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("rejects an invalid token", func() {
		req := testutil.Request(s.T(), http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := testutil.Serve(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("current user", func() {
		u := s.user(models.KYCStatusApproved)
		s.mockService.EXPECT().GetUser(gomock.Any(), caller).Return(u, nil)

		rr := testutil.Serve(s.router, s.authorize(testutil.Request(s.T(), http.MethodGet, "/users/me", nil), caller))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertField(s.T(), rr, "kyc_status", "APPROVED")
	})

	s.Run("by id", func() {
		u := s.user(models.KYCStatusPending)
		s.mockService.EXPECT().GetUser(gomock.Any(), u.ID()).Return(u, nil)

		rr := testutil.Serve(s.router, s.authorize(testutil.Request(s.T(), http.MethodGet, "/users/"+u.ID().String(), nil), caller))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertField(s.T(), rr, "email", "jane@example.com")
	})

	s.Run("malformed id", func() {
		rr := testutil.Serve(s.router, s.authorize(testutil.Request(s.T(), http.MethodGet, "/users/42", nil), caller))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "argument_invalid")
	})

	s.Run("not found", func() {
		id := domain.NewID()
		s.mockService.EXPECT().GetUser(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

		rr := testutil.Serve(s.router, s.authorize(testutil.Request(s.T(), http.MethodGet, "/users/"+id.String(), nil), caller))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestListUsers() {
	caller := domain.NewID()

	s.Run("filters and paginates", func() {
		page := repository.Page[*models.User]{
			Data:  []*models.User{s.user(models.KYCStatusApproved)},
			Count: 6,
			Page:  2,
			Limit: 5,
		}
		s.mockService.EXPECT().ListUsers(gomock.Any(), gomock.Any(), repository.Pagination{Page: 2, Limit: 5}).Return(page, nil)

		req := testutil.Request(s.T(), http.MethodGet, "/users?kyc_status=APPROVED&page=2&limit=5", nil)
		rr := testutil.Serve(s.router, s.authorize(req, caller))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		resp := testutil.DecodeResponse[ListUsersResponse](s.T(), rr)
		s.EqualValues(6, resp.Count)
		s.Equal(2, resp.Page)
		s.Require().Len(resp.Data, 1)
		s.Equal("APPROVED", resp.Data[0].KYCStatus)
	})

	s.Run("email search is literal", func() {
		s.mockService.EXPECT().ListUsers(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filters models.Filters, _ repository.Pagination) (repository.Page[*models.User], error) {
				s.Equal([]any{`%jane\_doe\%%`}, filters.Email.Predicate().Values())
				return repository.Page[*models.User]{Page: 1, Limit: 20}, nil
			})

		req := testutil.Request(s.T(), http.MethodGet, "/users?email=jane_doe%25", nil)
		rr := testutil.Serve(s.router, s.authorize(req, caller))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("unknown status", func() {
		req := testutil.Request(s.T(), http.MethodGet, "/users?kyc_status=MAYBE", nil)
		rr := testutil.Serve(s.router, s.authorize(req, caller))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "argument_invalid")
	})

	s.Run("limit out of range", func() {
		req := testutil.Request(s.T(), http.MethodGet, "/users?limit=500", nil)
		rr := testutil.Serve(s.router, s.authorize(req, caller))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestChangeKYCStatus() {
	s.Run("own account", func() {
		u := s.user(models.KYCStatusPending)
		s.Require().NoError(u.SetKYCStatus(models.KYCStatusApproved))
		s.mockService.EXPECT().ChangeKYCStatus(gomock.Any(), u.ID(), models.KYCStatusApproved).Return(u, nil)

		req := testutil.Request(s.T(), http.MethodPatch, "/users/"+u.ID().String()+"/kyc-status", ChangeKYCStatusRequest{KYCStatus: "APPROVED"})
		rr := testutil.Serve(s.router, s.authorize(req, u.ID()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertField(s.T(), rr, "kyc_status", "APPROVED")
	})

	s.Run("another user's account is forbidden", func() {
		target := domain.NewID()
		req := testutil.Request(s.T(), http.MethodPatch, "/users/"+target.String()+"/kyc-status", ChangeKYCStatusRequest{KYCStatus: "APPROVED"})
		rr := testutil.Serve(s.router, s.authorize(req, domain.NewID()))
		testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("requires authentication", func() {
		req := testutil.Request(s.T(), http.MethodPatch, "/users/"+domain.NewID().String()+"/kyc-status", ChangeKYCStatusRequest{KYCStatus: "APPROVED"})
		rr := testutil.Serve(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *HandlerSuite) TestUpdateMetadata() {
	s.Run("replaces the document", func() {
		u := s.user(models.KYCStatusPending)
		doc, err := domain.NewDocument(map[string]any{"tier": "gold"})
		s.Require().NoError(err)
		u.SetMetadata(doc)
		s.mockService.EXPECT().UpdateMetadata(gomock.Any(), u.ID(), doc).Return(u, nil)

		req := testutil.Request(s.T(), http.MethodPut, "/users/"+u.ID().String()+"/metadata", `{"tier": "gold"}`)
		rr := testutil.Serve(s.router, s.authorize(req, u.ID()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		resp := testutil.DecodeResponse[UserResponse](s.T(), rr)
		s.JSONEq(`{"tier":"gold"}`, string(resp.Metadata))
	})

	s.Run("rejects a non-object", func() {
		caller := domain.NewID()
		req := testutil.Request(s.T(), http.MethodPut, "/users/"+caller.String()+"/metadata", `[1, 2]`)
		rr := testutil.Serve(s.router, s.authorize(req, caller))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "argument_invalid")
	})

	s.Run("another user's account is forbidden", func() {
		req := testutil.Request(s.T(), http.MethodPut, "/users/"+domain.NewID().String()+"/metadata", `{"tier": "gold"}`)
		rr := testutil.Serve(s.router, s.authorize(req, domain.NewID()))
		testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("malformed id", func() {
		caller := domain.NewID()
		rr := testutil.Serve(s.router, s.authorize(testutil.Request(s.T(), http.MethodPut, "/users/42/metadata", `{}`), caller))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "argument_invalid")
	})
}
