package portal

import (
	"context"
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

// MockService реализует интерфейс portal.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreatePortalSession(ctx context.Context, callerUID, memberUID string) (string, error) {
	args := m.Called(ctx, callerUID, memberUID)
	return args.String(0), args.Error(1)
}

const (
	ownUID   = "a0e1b2c3-d4e5-4f60-8192-a3b4c5d6e7f8"
	otherUID = "b1f2c3d4-e5f6-4071-92a3-b4c5d6e7f809"
)

func TestPortalHandler(t *testing.T) {
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
			name:      "успешное создание сессии портала",
			body:      `{"member_uid":"` + ownUID + `"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreatePortalSession", mock.Anything, ownUID, ownUID).
					Return("https://billing.stripe.com/p/session/ps_test_1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"portal_url":"https://billing.stripe.com/p/session/ps_test_1"`,
		},
		{
			name:      "портал чужой учётной записи запрещён",
			body:      `{"member_uid":"` + otherUID + `"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreatePortalSession", mock.Anything, ownUID, otherUID).
					Return("", billing.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"access denied"`,
		},
		{
			name:      "нет привязки к биллингу",
			body:      `{"member_uid":"` + ownUID + `"}`,
			callerUID: ownUID,
			setupMock: func(m *MockService) {
				m.On("CreatePortalSession", mock.Anything, ownUID, ownUID).
					Return("", billing.ErrNoCustomer)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"no billing account for member"`,
		},
		{
			name:           "member_uid не uuid",
			body:           `{"member_uid":"not-a-uuid"}`,
			callerUID:      ownUID,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field MemberUID can contain only uuid`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/billing/portal", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.callerUID))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
