package member

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateMember(ctx context.Context, member models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *RepoMock) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegister(t *testing.T) {
	req := models.DummyMember{
		UID:         uuid.New().String(),
		Email:       "somchai@example.com",
		FirstName:   "Somchai",
		LastName:    "J",
		Tier:        "Member",
		CountryCode: "TH",
	}

	t.Run("новый участник получает статус trial", func(t *testing.T) {
		repoMock := new(RepoMock)
		repoMock.On("GetMemberByEmail", mock.Anything, req.Email).
			Return(nil, repository.ErrNotFound).Once()
		repoMock.On("CreateMember", mock.Anything, mock.MatchedBy(func(m models.Member) bool {
			return m.UID == req.UID && m.Status == models.MemberStatusTrial && m.Tier == models.TierMember
		})).Return(nil).Once()

		service := New(repoMock, newNoopLogger())
		m, err := service.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusTrial, m.Status)
		repoMock.AssertExpectations(t)
	})

	t.Run("повторная регистрация email", func(t *testing.T) {
		repoMock := new(RepoMock)
		repoMock.On("GetMemberByEmail", mock.Anything, req.Email).
			Return(&models.Member{UID: uuid.New().String(), Email: req.Email}, nil).Once()

		service := New(repoMock, newNoopLogger())
		_, err := service.Register(context.Background(), req)

		assert.ErrorIs(t, err, ErrAlreadyExists)
		repoMock.AssertNotCalled(t, "CreateMember", mock.Anything, mock.Anything)
	})

	t.Run("неизвестный уровень членства", func(t *testing.T) {
		bad := req
		bad.Tier = "Platinum"

		service := New(new(RepoMock), newNoopLogger())
		_, err := service.Register(context.Background(), bad)

		assert.ErrorIs(t, err, ErrInvalidTier)
	})

	t.Run("ошибка хранилища при проверке email", func(t *testing.T) {
		repoMock := new(RepoMock)
		repoMock.On("GetMemberByEmail", mock.Anything, req.Email).
			Return(nil, errors.New("connection refused")).Once()

		service := New(repoMock, newNoopLogger())
		_, err := service.Register(context.Background(), req)

		require.Error(t, err)
		repoMock.AssertNotCalled(t, "CreateMember", mock.Anything, mock.Anything)
	})
}
