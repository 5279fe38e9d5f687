package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/services/billing"
)

// MockService реализует интерфейс checkout.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, memberUID, planCode, couponCode string) (string, error) {
	args := m.Called(ctx, memberUID, planCode, couponCode)
	return args.String(0), args.Error(1)
}

const (
	ownUID   = "a0e1b2c3-d4e5-4f60-8192-a3b4c5d6e7f8"
	otherUID = "b1f2c3d4-e5f6-4071-92a3-b4c5d6e7f809"
)

func TestCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		callerUID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное создание сессии",
			body:      `{"member_uid":"` + ownUID + `","plan_code":"member-monthly"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, ownUID, "member-monthly", "").
					Return("https://checkout.stripe.com/c/pay/cs_test_1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"checkout_url":"https://checkout.stripe.com/c/pay/cs_test_1"`,
		},
		{
			name:      "купон передаётся сервису",
			body:      `{"member_uid":"` + ownUID + `","plan_code":"member-monthly","coupon_code":"LAUNCH20"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, ownUID, "member-monthly", "LAUNCH20").
					Return("https://checkout.stripe.com/c/pay/cs_test_2", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"checkout_url"`,
		},
		{
			name:           "checkout чужой учётной записи запрещён",
			body:           `{"member_uid":"` + otherUID + `","plan_code":"member-monthly"}`,
			callerUID:      ownUID,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"access denied"`,
		},
		{
			name:           "отсутствует код плана",
			body:           `{"member_uid":"` + ownUID + `"}`,
			callerUID:      ownUID,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field PlanCode is a required field`,
		},
		{
			name:      "неизвестный план",
			body:      `{"member_uid":"` + ownUID + `","plan_code":"ghost-plan"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, ownUID, "ghost-plan", "").
					Return("", billing.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"plan not found"`,
		},
		{
			name:           "участник не авторизован",
			body:           `{"member_uid":"` + ownUID + `","plan_code":"member-monthly"}`,
			callerUID:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:      "ошибка провайдера биллинга",
			body:      `{"member_uid":"` + ownUID + `","plan_code":"member-monthly"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, ownUID, "member-monthly", "").
					Return("", errors.New("stripe is down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create checkout session"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/billing/checkout", strings.NewReader(tt.body))
			if tt.callerUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.callerUID))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
