package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validRegistration() types.RegistrationCreate {
	return types.RegistrationCreate{
		Name:        "  Asha Rao ",
		Email:       "  Asha@Example.COM ",
		Phone:       strPtr("   "),
		PickupPoint: "Main Gate",
		DropPoint:   " Tech Park ",
		Message:     strPtr(" Weekdays at 9 "),
	}
}

func TestRegister_Success(t *testing.T) {
	ms := new(mockStore)
	notifier := new(mockNotifier)
	metrics := NewSubmissionMetrics(prometheus.NewRegistry())
	svc := NewRegistrationService(ms, notifier, metrics)

	ms.On("FindRegistrationByEmail", mock.Anything, "asha@example.com").Return(nil, store.ErrNotFound)
	ms.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(reg *types.Registration) bool {
		return reg.Name == "Asha Rao" &&
			reg.Email == "asha@example.com" &&
			reg.Phone == nil &&
			reg.DropPoint == "Tech Park" &&
			reg.Message != nil && *reg.Message == "Weekdays at 9"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Registration).ID = "reg-1"
	}).Return(nil)
	notifier.On("SendWelcomeEmail", mock.Anything, mock.AnythingOfType("*types.Registration")).Return(nil)

	summary, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, &types.RegistrationSummary{ID: "reg-1", Name: "Asha Rao", Email: "asha@example.com"}, summary)
	assert.Equal(t, 1.0, counterValue(t, metrics.registrations.WithLabelValues(OutcomeCreated)))

	ms.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *types.RegistrationCreate)
		message string
	}{
		{"missing name", func(r *types.RegistrationCreate) { r.Name = "" }, MsgRegistrationRequired},
		{"blank email", func(r *types.RegistrationCreate) { r.Email = "   " }, MsgRegistrationRequired},
		{"missing pickup point", func(r *types.RegistrationCreate) { r.PickupPoint = "" }, MsgRegistrationRequired},
		{"missing drop point", func(r *types.RegistrationCreate) { r.DropPoint = "\t" }, MsgRegistrationRequired},
		{"email without at", func(r *types.RegistrationCreate) { r.Email = "asha.example.com" }, MsgRegistrationEmail},
		{"email without dot", func(r *types.RegistrationCreate) { r.Email = "asha@example" }, MsgRegistrationEmail},
		{"email with inner space", func(r *types.RegistrationCreate) { r.Email = "as ha@example.com" }, MsgRegistrationEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(mockStore)
			svc := NewRegistrationService(ms, nil, nil)

			req := validRegistration()
			tt.mutate(&req)

			summary, err := svc.Register(context.Background(), req)
			assert.Nil(t, summary)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ValidationError, appErr.Type)
			assert.Equal(t, tt.message, appErr.Message)
			ms.AssertNotCalled(t, "CreateRegistration", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_PhoneIsOptional(t *testing.T) {
	ms := new(mockStore)
	svc := NewRegistrationService(ms, nil, nil)

	req := validRegistration()
	req.Phone = nil
	req.Message = nil

	ms.On("FindRegistrationByEmail", mock.Anything, "asha@example.com").Return(nil, store.ErrNotFound)
	ms.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(reg *types.Registration) bool {
		return reg.Phone == nil && reg.Message == nil
	})).Return(nil)

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestRegister_DuplicateFromPreCheck(t *testing.T) {
	ms := new(mockStore)
	svc := NewRegistrationService(ms, nil, nil)

	ms.On("FindRegistrationByEmail", mock.Anything, "asha@example.com").
		Return(&types.Registration{ID: "existing"}, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	assert.True(t, apperrors.IsType(err, apperrors.ConflictError))
	assert.EqualError(t, err, "CONFLICT: This email is already registered (matched by pre-check)")
	ms.AssertNotCalled(t, "CreateRegistration", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateFromConstraint(t *testing.T) {
	ms := new(mockStore)
	notifier := new(mockNotifier)
	svc := NewRegistrationService(ms, notifier, nil)

	ms.On("FindRegistrationByEmail", mock.Anything, "asha@example.com").Return(nil, store.ErrNotFound)
	ms.On("CreateRegistration", mock.Anything, mock.Anything).Return(store.ErrConflict)

	_, err := svc.Register(context.Background(), validRegistration())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)
	assert.Equal(t, MsgRegistrationDuplicate, appErr.Message)
	notifier.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything)
}

func TestRegister_StorageFailures(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("pre-check", func(t *testing.T) {
		ms := new(mockStore)
		svc := NewRegistrationService(ms, nil, nil)
		ms.On("FindRegistrationByEmail", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := svc.Register(context.Background(), validRegistration())

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.StorageError, appErr.Type)
		assert.Equal(t, MsgRegistrationFailed, appErr.Message)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("insert", func(t *testing.T) {
		ms := new(mockStore)
		svc := NewRegistrationService(ms, nil, nil)
		ms.On("FindRegistrationByEmail", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)
		ms.On("CreateRegistration", mock.Anything, mock.Anything).Return(cause)

		_, err := svc.Register(context.Background(), validRegistration())

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.StorageError, appErr.Type)
		assert.NotContains(t, appErr.Message, "connection refused")
	})
}

func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	ms := new(mockStore)
	notifier := new(mockNotifier)
	svc := NewRegistrationService(ms, notifier, nil)

	ms.On("FindRegistrationByEmail", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)
	ms.On("CreateRegistration", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SendWelcomeEmail", mock.Anything, mock.Anything).Return(errors.New("resend: 500"))

	summary, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", summary.Email)
	notifier.AssertExpectations(t)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.org"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("@b.co"))
	assert.False(t, IsValidEmail("a@@b.co"))
	assert.False(t, IsValidEmail(""))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "foo@bar.com", NormalizeEmail(" Foo@Bar.COM "))
}
