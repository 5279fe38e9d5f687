package billing

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

func (m *RepoMock) GetPlan(ctx context.Context, code string) (*models.Plan, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}
func (m *RepoMock) GetMember(ctx context.Context, memberUID string) (*models.Member, error) {
	args := m.Called(ctx, memberUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}
func (m *RepoMock) GetSubscriptionByMemberUID(ctx context.Context, memberUID string) (*models.Subscription, error) {
	args := m.Called(ctx, memberUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCustomer(ctx context.Context, memberUID, email, name string) (string, error) {
	args := m.Called(ctx, memberUID, email, name)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, customerID string, plan *models.Plan, memberUID, couponCode string) (string, error) {
	args := m.Called(ctx, customerID, plan, memberUID, couponCode)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testPlan = &models.Plan{
	Code:     "member-monthly",
	Name:     "HubPass Member",
	Amount:   99000,
	Currency: "thb",
	Interval: "month",
}

func testMember(uid string) *models.Member {
	return &models.Member{
		UID:       uid,
		Email:     "member@example.com",
		FirstName: "Somchai",
		Status:    models.MemberStatusTrial,
		Tier:      models.TierMember,
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	memberUID := uuid.New().String()

	tests := []struct {
		name       string
		planCode   string
		coupon     string
		setupMocks func(r *RepoMock, c *CacheMock, p *ProviderMock)
		wantURL    string
		wantErr    error
	}{
		{
			name:     "новый клиент биллинга",
			planCode: "member-monthly",
			setupMocks: func(r *RepoMock, c *CacheMock, p *ProviderMock) {
				c.On("Get", "plan:member-monthly", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, "member-monthly").Return(testPlan, nil).Once()
				c.On("Set", "plan:member-monthly", testPlan, 12*time.Hour).Return(nil).Once()
				r.On("GetMember", mock.Anything, memberUID).Return(testMember(memberUID), nil).Once()
				r.On("GetSubscriptionByMemberUID", mock.Anything, memberUID).
					Return(nil, repository.ErrNotFound).Once()
				p.On("CreateCustomer", mock.Anything, memberUID, "member@example.com", "Somchai").
					Return("cus_new", nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, "cus_new", testPlan, memberUID, "").
					Return("https://checkout.example/s/abc", nil).Once()
			},
			wantURL: "https://checkout.example/s/abc",
		},
		{
			name:     "переиспользование существующего клиента",
			planCode: "member-monthly",
			coupon:   "WELCOME10",
			setupMocks: func(r *RepoMock, c *CacheMock, p *ProviderMock) {
				c.On("Get", "plan:member-monthly", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, "member-monthly").Return(testPlan, nil).Once()
				c.On("Set", "plan:member-monthly", testPlan, 12*time.Hour).Return(nil).Once()
				r.On("GetMember", mock.Anything, memberUID).Return(testMember(memberUID), nil).Once()
				r.On("GetSubscriptionByMemberUID", mock.Anything, memberUID).
					Return(&models.Subscription{MemberUID: memberUID, ProviderCustomerID: "cus_existing"}, nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, "cus_existing", testPlan, memberUID, "WELCOME10").
					Return("https://checkout.example/s/def", nil).Once()
			},
			wantURL: "https://checkout.example/s/def",
		},
		{
			name:     "неизвестный план",
			planCode: "no-such-plan",
			setupMocks: func(r *RepoMock, c *CacheMock, _ *ProviderMock) {
				c.On("Get", "plan:no-such-plan", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, "no-such-plan").Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrPlanNotFound,
		},
		{
			name:     "неизвестный участник",
			planCode: "member-monthly",
			setupMocks: func(r *RepoMock, c *CacheMock, _ *ProviderMock) {
				c.On("Get", "plan:member-monthly", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, "member-monthly").Return(testPlan, nil).Once()
				c.On("Set", "plan:member-monthly", testPlan, 12*time.Hour).Return(nil).Once()
				r.On("GetMember", mock.Anything, memberUID).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoMock := new(RepoMock)
			cacheMock := new(CacheMock)
			providerMock := new(ProviderMock)
			tt.setupMocks(repoMock, cacheMock, providerMock)

			service := New(repoMock, cacheMock, providerMock, newNoopLogger())
			url, err := service.CreateCheckoutSession(context.Background(), memberUID, tt.planCode, tt.coupon)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
			repoMock.AssertExpectations(t)
			cacheMock.AssertExpectations(t)
			providerMock.AssertExpectations(t)
		})
	}
}

func TestCreatePortalSession(t *testing.T) {
	memberUID := uuid.New().String()
	otherUID := uuid.New().String()

	t.Run("успешная выдача портала", func(t *testing.T) {
		repoMock := new(RepoMock)
		providerMock := new(ProviderMock)
		repoMock.On("GetSubscriptionByMemberUID", mock.Anything, memberUID).
			Return(&models.Subscription{MemberUID: memberUID, ProviderCustomerID: "cus_1"}, nil).Once()
		providerMock.On("CreatePortalSession", mock.Anything, "cus_1").
			Return("https://portal.example/p/xyz", nil).Once()

		service := New(repoMock, new(CacheMock), providerMock, newNoopLogger())
		url, err := service.CreatePortalSession(context.Background(), memberUID, memberUID)

		require.NoError(t, err)
		assert.Equal(t, "https://portal.example/p/xyz", url)
	})

	t.Run("чужая учётная запись — Forbidden даже при наличии подписки", func(t *testing.T) {
		repoMock := new(RepoMock)
		providerMock := new(ProviderMock)

		service := New(repoMock, new(CacheMock), providerMock, newNoopLogger())
		_, err := service.CreatePortalSession(context.Background(), otherUID, memberUID)

		assert.ErrorIs(t, err, ErrForbidden)
		// Проверка личности идёт до любого чтения хранилища
		repoMock.AssertNotCalled(t, "GetSubscriptionByMemberUID", mock.Anything, mock.Anything)
		providerMock.AssertNotCalled(t, "CreatePortalSession", mock.Anything, mock.Anything)
	})

	t.Run("нет привязки к клиенту биллинга", func(t *testing.T) {
		repoMock := new(RepoMock)
		repoMock.On("GetSubscriptionByMemberUID", mock.Anything, memberUID).
			Return(nil, repository.ErrNotFound).Once()

		service := New(repoMock, new(CacheMock), new(ProviderMock), newNoopLogger())
		_, err := service.CreatePortalSession(context.Background(), memberUID, memberUID)

		assert.ErrorIs(t, err, ErrNoCustomer)
	})
}

func TestListPlans(t *testing.T) {
	catalog := []*models.Plan{testPlan}

	t.Run("промах кеша читает каталог и кеширует его", func(t *testing.T) {
		repoMock := new(RepoMock)
		repoMock.On("ListPlans", mock.Anything).Return(catalog, nil).Once()
		cacheMock := new(CacheMock)
		cacheMock.On("Get", "plans:catalog", mock.Anything).Return(false, nil).Once()
		cacheMock.On("Set", "plans:catalog", catalog, 12*time.Hour).Return(nil).Once()

		service := New(repoMock, cacheMock, new(ProviderMock), newNoopLogger())
		plans, err := service.ListPlans(context.Background())

		require.NoError(t, err)
		assert.Equal(t, catalog, plans)
		repoMock.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("попадание в кеш не трогает хранилище", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", "plans:catalog", mock.Anything).Return(true, nil).Once()

		service := New(repoMock, cacheMock, new(ProviderMock), newNoopLogger())
		_, err := service.ListPlans(context.Background())

		require.NoError(t, err)
		repoMock.AssertNotCalled(t, "ListPlans", mock.Anything)
	})
}
