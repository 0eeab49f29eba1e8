package bridge

import (
	"github.com/mcncl/smtbridge/internal/sdk"
	"github.com/stretchr/testify/mock"
)

// MockSDK implements sdk.SDK for testing
type MockSDK struct {
	mock.Mock

	click      sdk.NotificationClickListener
	customHTML sdk.InAppCustomHTMLListener
}

var _ sdk.SDK = (*MockSDK)(nil)

func (m *MockSDK) TrackAppInstall() error { return m.Called().Error(0) }
func (m *MockSDK) TrackAppUpdate() error { return m.Called().Error(0) }

func (m *MockSDK) TrackAppInstallUpdateBySmartech() error { return m.Called().Error(0) }

func (m *MockSDK) TrackEvent(name string, payload map[string]any) error {
	return m.Called(name, payload).Error(0)
}

func (m *MockSDK) Login(identity string) error { return m.Called(identity).Error(0) }

func (m *MockSDK) LogoutAndClearUserIdentity(clearIdentity bool) error {
	return m.Called(clearIdentity).Error(0)
}

func (m *MockSDK) SetUserIdentity(identity string) error { return m.Called(identity).Error(0) }

func (m *MockSDK) GetUserIdentity() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSDK) ClearUserIdentity() error { return m.Called().Error(0) }

func (m *MockSDK) UpdateUserProfile(profile map[string]any) error {
	return m.Called(profile).Error(0)
}

func (m *MockSDK) OptTracking(opt bool) error { return m.Called(opt).Error(0) }

func (m *MockSDK) HasOptedTracking() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockSDK) OptPushNotification(opt bool) error { return m.Called(opt).Error(0) }

func (m *MockSDK) HasOptedPushNotification() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockSDK) OptInAppMessage(opt bool) error { return m.Called(opt).Error(0) }

func (m *MockSDK) HasOptedInAppMessage() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockSDK) SetUserLocation(loc sdk.Location) error { return m.Called(loc).Error(0) }

func (m *MockSDK) GetAppID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSDK) GetDevicePushToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSDK) GetDeviceUniqueID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSDK) GetSDKVersion() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSDK) SetDevicePushToken(token string) error { return m.Called(token).Error(0) }

func (m *MockSDK) FetchAlreadyGeneratedTokenFromFCM() error { return m.Called().Error(0) }

// Listener registration is recorded rather than mocked so every test can
// construct a Bridge without extra expectations.
func (m *MockSDK) SetNotificationClickListener(l sdk.NotificationClickListener) { m.click = l }
func (m *MockSDK) SetInAppCustomHTMLListener(l sdk.InAppCustomHTMLListener) { m.customHTML = l }
