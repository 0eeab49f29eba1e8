package bridge

import (
	stderrors "errors"
	"testing"

	"github.com/mcncl/smtbridge/internal/config"
	"github.com/mcncl/smtbridge/internal/deeplink"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/logger"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/mcncl/smtbridge/internal/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name    string
	payload *runtimeval.Map
}

type recordingEmitter struct {
	events []recordedEvent
}

func (r *recordingEmitter) Emit(event string, payload *runtimeval.Map) {
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func newTestBridge(t *testing.T, cfg *config.Config) (*Bridge, *MockSDK, *recordingEmitter, *deeplink.Pending) {
	t.Helper()
	logger.ConfigureTestLogging(t)
	mockSDK := &MockSDK{}
	emitter := &recordingEmitter{}
	pending := &deeplink.Pending{}
	b := New(mockSDK, emitter, pending, cfg)
	t.Cleanup(func() { mockSDK.AssertExpectations(t) })
	return b, mockSDK, emitter, pending
}

func TestNew_RegistersListeners(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)

	assert.NotNil(t, mockSDK.click)
	assert.NotNil(t, mockSDK.customHTML)
	assert.Equal(t, "SmartechReactNative", b.Name())
	assert.Equal(t, map[string]any{"SmartechDeeplinkNotification": "SmartechDeeplinkNotification"}, b.Constants())
}

func TestBridge_ConfiguredNames(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ModuleName = "Marketing"
	cfg.Events.DeeplinkNotification = "OnLink"
	b, _, _, _ := newTestBridge(t, cfg)

	assert.Equal(t, "Marketing", b.Name())
	assert.Equal(t, map[string]any{"OnLink": "OnLink"}, b.Constants())
}

func TestBridge_TrackEventConvertsPayload(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)

	payload := runtimeval.NewMap().
		PutString("sku", "A1").
		PutInt("quantity", 2).
		PutOpaque("handler", func() {}).
		PutArray("tags", runtimeval.NewArray().PushString("sale"))

	mockSDK.On("TrackEvent", "purchase", map[string]any{
		"sku":      "A1",
		"quantity": 2.0,
		"tags":     []any{"sale"},
	}).Return(nil).Once()

	require.NoError(t, b.TrackEvent("purchase", payload))
}

func TestBridge_TrackEventNilPayload(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("TrackEvent", "open", map[string]any{}).Return(nil).Once()

	require.NoError(t, b.TrackEvent("open", nil))
}

func TestBridge_SDKErrorsAreWrapped(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	boom := stderrors.New("boom")
	mockSDK.On("TrackAppInstall").Return(boom).Once()

	err := b.TrackAppInstall()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeSDK, appErr.Type)
	assert.Equal(t, "trackAppInstall failed", appErr.Message)
}

func TestBridge_SuccessReturnsNil(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("TrackAppUpdate").Return(nil).Once()
	mockSDK.On("TrackAppInstallUpdateBySmartech").Return(nil).Once()
	mockSDK.On("ClearUserIdentity").Return(nil).Once()
	mockSDK.On("FetchAlreadyGeneratedTokenFromFCM").Return(nil).Once()
	mockSDK.On("SetDevicePushToken", "tok").Return(nil).Once()
	mockSDK.On("LogoutAndClearUserIdentity", true).Return(nil).Once()

	assert.NoError(t, b.TrackAppUpdate())
	assert.NoError(t, b.TrackAppInstallUpdateBySmartech())
	assert.NoError(t, b.ClearUserIdentity())
	assert.NoError(t, b.FetchAlreadyGeneratedTokenFromFCM())
	assert.NoError(t, b.SetDevicePushToken("tok"))
	assert.NoError(t, b.LogoutAndClearUserIdentity(true))
}

func TestBridge_LoginSetsIdentityFirst(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)

	setCall := mockSDK.On("SetUserIdentity", "user@example.com").Return(nil).Once()
	mockSDK.On("Login", "user@example.com").Return(nil).Once().NotBefore(setCall)

	require.NoError(t, b.Login("user@example.com"))
}

func TestBridge_LoginStopsWhenIdentityFails(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("SetUserIdentity", "u").Return(stderrors.New("store failed")).Once()

	err := b.Login("u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	mockSDK.AssertNotCalled(t, "Login", mock.Anything)
}

func TestBridge_SetUserIdentityRejectsEmpty(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)

	err := b.SetUserIdentity("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyIdentity)
	mockSDK.AssertNotCalled(t, "SetUserIdentity", mock.Anything)
}

func TestBridge_UpdateUserProfile(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("UpdateUserProfile", map[string]any{"age": 30.0, "name": "Jo"}).Return(nil).Once()

	profile := runtimeval.NewMap().PutInt("age", 30).PutString("name", "Jo")
	require.NoError(t, b.UpdateUserProfile(profile))
}

func TestBridge_Queries(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("GetUserIdentity").Return("id-1", nil).Once()
	mockSDK.On("HasOptedTracking").Return(true, nil).Once()
	mockSDK.On("HasOptedPushNotification").Return(false, nil).Once()
	mockSDK.On("HasOptedInAppMessage").Return(false, stderrors.New("unavailable")).Once()
	mockSDK.On("GetAppID").Return("app", nil).Once()
	mockSDK.On("GetDevicePushToken").Return("push", nil).Once()
	mockSDK.On("GetDeviceUniqueID").Return("guid", nil).Once()
	mockSDK.On("GetSDKVersion").Return("3.2.0", nil).Once()

	identity, err := b.GetUserIdentity()
	require.NoError(t, err)
	assert.Equal(t, "id-1", identity)

	opted, err := b.HasOptedTracking()
	require.NoError(t, err)
	assert.True(t, opted)

	opted, err = b.HasOptedPushNotification()
	require.NoError(t, err)
	assert.False(t, opted)

	_, err = b.HasOptedInAppMessage()
	assert.Error(t, err)

	id, _ := b.GetAppID()
	assert.Equal(t, "app", id)
	token, _ := b.GetDevicePushToken()
	assert.Equal(t, "push", token)
	guid, _ := b.GetDeviceGUID()
	assert.Equal(t, "guid", guid)
	version, _ := b.GetSDKVersion()
	assert.Equal(t, "3.2.0", version)
}

func TestBridge_OptIns(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("OptTracking", false).Return(nil).Once()
	mockSDK.On("OptPushNotification", true).Return(nil).Once()
	mockSDK.On("OptInAppMessage", false).Return(nil).Once()

	assert.NoError(t, b.OptTracking(false))
	assert.NoError(t, b.OptPushNotification(true))
	assert.NoError(t, b.OptInAppMessage(false))
}

func TestBridge_SetUserLocationUsesProvider(t *testing.T) {
	b, mockSDK, _, _ := newTestBridge(t, nil)
	mockSDK.On("SetUserLocation", sdk.Location{Provider: "Smartech", Latitude: 19.07, Longitude: 72.87}).Return(nil).Once()

	require.NoError(t, b.SetUserLocation(19.07, 72.87))
}

func TestBridge_GetDeepLinkURLTakesPending(t *testing.T) {
	b, _, _, pending := newTestBridge(t, nil)
	require.NoError(t, pending.Set(&deeplink.Intent{Extras: map[string]any{
		deeplink.ExtraDeepLinkPath:  "app://launch",
		deeplink.ExtraCustomPayload: "p",
	}}))

	payload, err := b.GetDeepLinkURL()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"deeplink": "app://launch", "customPayload": "p"}, payload.Interface())

	payload, err = b.GetDeepLinkURL()
	require.NoError(t, err)
	assert.Equal(t, 0, payload.Len(), "launch intent is reported once")
}

func TestBridge_NotificationClickEmits(t *testing.T) {
	_, mockSDK, emitter, _ := newTestBridge(t, nil)

	mockSDK.click(&deeplink.Intent{Extras: map[string]any{deeplink.ExtraDeepLinkPath: "app://clicked"}})

	require.Len(t, emitter.events, 1)
	assert.Equal(t, "SmartechDeeplinkNotification", emitter.events[0].name)
	assert.Equal(t, "app://clicked", emitter.events[0].payload.GetString("deeplink"))
	assert.Equal(t, "", emitter.events[0].payload.GetString("customPayload"))
}

func TestBridge_NotificationClickWithoutDeeplinkEmitsEmpty(t *testing.T) {
	_, mockSDK, emitter, _ := newTestBridge(t, nil)

	mockSDK.click(nil)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, 0, emitter.events[0].payload.Len())
}

func TestBridge_CustomHTMLEmitsConvertedPayload(t *testing.T) {
	_, mockSDK, emitter, _ := newTestBridge(t, nil)

	mockSDK.customHTML(map[string]any{
		"title":  "Offer",
		"count":  3,
		"ratio":  0.5,
		"nested": map[string]any{"ok": true},
		"skip":   make(chan int),
	})

	require.Len(t, emitter.events, 1)
	payload := emitter.events[0].payload
	assert.Equal(t, []string{"count", "nested", "ratio", "title"}, payload.Keys())
	assert.Equal(t, runtimeval.TypeNumber, payload.Type("count"))
	v, _ := payload.Get("count")
	assert.True(t, v.IsInt())
	assert.True(t, payload.GetMap("nested").GetBoolean("ok"))
}

func TestBridge_CustomHTMLNilPayloadIgnored(t *testing.T) {
	_, mockSDK, emitter, _ := newTestBridge(t, nil)

	mockSDK.customHTML(nil)
	assert.Empty(t, emitter.events)
}

func TestBridge_NilEmitterDoesNotPanic(t *testing.T) {
	logger.ConfigureTestLogging(t)
	mockSDK := &MockSDK{}
	b := New(mockSDK, nil, nil, nil)

	assert.NotPanics(t, func() {
		b.OnNotificationClick(&deeplink.Intent{})
	})
}
