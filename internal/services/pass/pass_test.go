package pass

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateQRToken(ctx context.Context, token models.QRToken) error {
	return m.Called(ctx, token).Error(0)
}
func (m *RepoMock) GetQRToken(ctx context.Context, jti string) (*models.QRToken, error) {
	args := m.Called(ctx, jti)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QRToken), args.Error(1)
}
func (m *RepoMock) RevokeQRToken(ctx context.Context, jti string) (int, error) {
	args := m.Called(ctx, jti)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestIssue(t *testing.T) {
	memberUID := uuid.New().String()
	ttl := 5 * time.Minute

	repoMock := new(RepoMock)
	repoMock.On("CreateQRToken", mock.Anything, mock.MatchedBy(func(tok models.QRToken) bool {
		return tok.MemberUID == memberUID &&
			tok.JTI != "" &&
			!tok.Revoked &&
			tok.ExpiresAt.Sub(tok.IssuedAt) == ttl
	})).Return(nil).Once()

	service := New(repoMock, ttl, newNoopLogger())
	token, err := service.Issue(context.Background(), memberUID)

	require.NoError(t, err)
	assert.NotEmpty(t, token.JTI)
	assert.WithinDuration(t, time.Now().Add(ttl), token.ExpiresAt, time.Second)
	repoMock.AssertExpectations(t)
}

func TestIssue_UniqueJTI(t *testing.T) {
	memberUID := uuid.New().String()

	repoMock := new(RepoMock)
	repoMock.On("CreateQRToken", mock.Anything, mock.Anything).Return(nil).Twice()

	service := New(repoMock, 5*time.Minute, newNoopLogger())
	first, err := service.Issue(context.Background(), memberUID)
	require.NoError(t, err)
	second, err := service.Issue(context.Background(), memberUID)
	require.NoError(t, err)

	assert.NotEqual(t, first.JTI, second.JTI)
}

func TestRevoke(t *testing.T) {
	memberUID := uuid.New().String()
	otherUID := uuid.New().String()
	jti := uuid.New().String()

	tests := []struct {
		name       string
		callerUID  string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:      "владелец отзывает свой токен",
			callerUID: memberUID,
			setupMocks: func(r *RepoMock) {
				r.On("GetQRToken", mock.Anything, jti).
					Return(&models.QRToken{JTI: jti, MemberUID: memberUID}, nil).Once()
				r.On("RevokeQRToken", mock.Anything, jti).Return(1, nil).Once()
			},
		},
		{
			name:      "чужой токен отозвать нельзя",
			callerUID: otherUID,
			setupMocks: func(r *RepoMock) {
				r.On("GetQRToken", mock.Anything, jti).
					Return(&models.QRToken{JTI: jti, MemberUID: memberUID}, nil).Once()
			},
			wantErr: ErrNotOwner,
		},
		{
			name:      "неизвестный jti",
			callerUID: memberUID,
			setupMocks: func(r *RepoMock) {
				r.On("GetQRToken", mock.Anything, jti).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrTokenNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoMock := new(RepoMock)
			tt.setupMocks(repoMock)

			service := New(repoMock, 5*time.Minute, newNoopLogger())
			err := service.Revoke(context.Background(), tt.callerUID, jti)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repoMock.AssertExpectations(t)
		})
	}
}
