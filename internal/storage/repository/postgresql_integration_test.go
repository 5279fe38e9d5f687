package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdpk/hubpass/internal/models"
)

func TestStorage_QRTokenValidity(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	memberUID := factory.CreateMember(t, models.MemberStatusActive, models.TierMember)

	tests := []struct {
		name      string
		expiresAt time.Time
		revoked   bool
		wantValid bool
	}{
		{
			name:      "действующий токен",
			expiresAt: time.Now().Add(5 * time.Minute),
			revoked:   false,
			wantValid: true,
		},
		{
			name:      "истёкший токен",
			expiresAt: time.Now().Add(-time.Second),
			revoked:   false,
			wantValid: false,
		},
		{
			name:      "отозванный токен",
			expiresAt: time.Now().Add(5 * time.Minute),
			revoked:   true,
			wantValid: false,
		},
		{
			name:      "токен, истекающий прямо сейчас",
			expiresAt: time.Now(),
			revoked:   false,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jti := factory.CreateQRToken(t, memberUID, tt.expiresAt, tt.revoked)

			valid, err := storage.IsQRTokenValid(context.Background(), jti)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, valid)

			resolved, err := storage.ResolveQRTokenMember(context.Background(), jti)
			if tt.wantValid {
				require.NoError(t, err)
				assert.Equal(t, memberUID, resolved)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}
		})
	}

	t.Run("неизвестный jti", func(t *testing.T) {
		valid, err := storage.IsQRTokenValid(context.Background(), uuid.New().String())
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestStorage_RevokeQRToken(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	memberUID := factory.CreateMember(t, models.MemberStatusActive, models.TierMember)
	jti := factory.CreateQRToken(t, memberUID, time.Now().Add(5*time.Minute), false)

	count, err := storage.RevokeQRToken(context.Background(), jti)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	valid, err := storage.IsQRTokenValid(context.Background(), jti)
	require.NoError(t, err)
	assert.False(t, valid)

	// Строка сохраняется для аудита
	token, err := storage.GetQRToken(context.Background(), jti)
	require.NoError(t, err)
	assert.True(t, token.Revoked)
}

func TestStorage_UpsertSubscription_Idempotent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	memberUID := factory.CreateMember(t, models.MemberStatusTrial, models.TierMember)

	sub := models.Subscription{
		MemberUID:          memberUID,
		Provider:           "stripe",
		ProviderCustomerID: "cus_test123",
		ProviderSubID:      "sub_test123",
		PlanCode:           "member-monthly",
		Status:             models.SubStatusActive,
		Amount:             99000,
		Currency:           "thb",
		CurrentPeriodStart: time.Now().Truncate(time.Second),
		CurrentPeriodEnd:   time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second),
	}

	firstID, err := storage.UpsertSubscription(context.Background(), sub)
	require.NoError(t, err)

	// Повторная доставка того же события приводит к тому же состоянию
	secondID, err := storage.UpsertSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	stored, err := storage.GetSubscriptionByMemberUID(context.Background(), memberUID)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusActive, stored.Status)
	assert.Equal(t, "sub_test123", stored.ProviderSubID)

	var count int
	err = storage.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE member_uid = $1`, memberUID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_CancelSubscriptionByProviderSubID(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	memberUID := factory.CreateMember(t, models.MemberStatusActive, models.TierMember)
	factory.CreateSubscription(t, memberUID, models.SubStatusActive)

	stored, err := storage.GetSubscriptionByMemberUID(context.Background(), memberUID)
	require.NoError(t, err)

	canceledAt := time.Now().Truncate(time.Second)
	count, err := storage.CancelSubscriptionByProviderSubID(context.Background(), stored.ProviderSubID, canceledAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := storage.GetSubscriptionByProviderSubID(context.Background(), stored.ProviderSubID)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusCanceled, updated.Status)
	require.NotNil(t, updated.CanceledAt)
	assert.WithinDuration(t, canceledAt, *updated.CanceledAt, time.Second)

	// Неизвестный provider_sub_id — штатный промах, не ошибка
	count, err = storage.CancelSubscriptionByProviderSubID(context.Background(), "sub_unknown", canceledAt)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_CreateVerification_NullMember(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	partnerUID := uuid.New().String()
	id, err := storage.CreateVerification(context.Background(), models.Verification{
		PartnerUID: partnerUID,
		MemberUID:  nil,
		Method:     models.MethodLookup,
		Result:     models.ResultNotFound,
		VerifiedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	list, err := storage.ListVerifications(context.Background(), partnerUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].MemberUID)
	assert.Equal(t, models.ResultNotFound, list[0].Result)
}
