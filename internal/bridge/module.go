package bridge

import (
	stderrors "errors"

	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/rs/zerolog"
)

// Responses reported through callbacks.
const (
	IdentitySetMessage   = "Identity is set successfully."
	IdentityEmptyMessage = "Expected one non-empty string argument."
	exceptionPrefix      = "Exception: "
)

// Callback is the runtime's single-shot result callback.
type Callback func(response any)

// Module adapts Bridge to the runtime's calling convention. Methods without a
// callback log failures and return; methods with one report either the
// result or an "Exception: <msg>" string through it. Nothing is returned to
// the caller.
type Module struct {
	bridge *Bridge
	log    zerolog.Logger
}

func NewModule(b *Bridge) *Module {
	return &Module{bridge: b, log: b.log}
}

// Bridge returns the wrapped bridge.
func (m *Module) Bridge() *Bridge {
	return m.bridge
}

func (m *Module) Name() string {
	return m.bridge.Name()
}

func (m *Module) Constants() map[string]any {
	return m.bridge.Constants()
}

func (m *Module) respond(method string, cb Callback, response any) {
	if cb == nil {
		m.log.Info().Str("method", method).Msg("Callback is null.")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("method", method).Interface("panic", r).Msg("Callback panicked")
		}
	}()
	cb(response)
}

func (m *Module) logged(method string, err error) {
	if err != nil {
		m.log.Error().Err(err).Str("method", method).Msg("Bridge call failed")
	}
}

// exception formats err the way the runtime expects failures reported. SDK
// errors report the vendor's own message.
func exception(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Type == errors.ErrorTypeSDK && appErr.Err != nil {
		return exceptionPrefix + appErr.Err.Error()
	}
	return exceptionPrefix + err.Error()
}

func (m *Module) respondString(method string, cb Callback, value string, err error) {
	if err != nil {
		m.logged(method, err)
		m.respond(method, cb, exception(err))
		return
	}
	m.respond(method, cb, value)
}

func (m *Module) respondBool(method string, cb Callback, value bool, err error) {
	if err != nil {
		m.logged(method, err)
		m.respond(method, cb, exception(err))
		return
	}
	m.respond(method, cb, value)
}

// GetDeepLinkURL reports the launch intent payload, empty when there is none.
func (m *Module) GetDeepLinkURL(cb Callback) {
	payload, err := m.bridge.GetDeepLinkURL()
	if err != nil {
		m.log.Warn().Err(err).Msg("Could not read launch intent")
	}
	m.respond("getDeepLinkUrl", cb, payload)
}

func (m *Module) TrackAppInstall() {
	m.logged("trackAppInstall", m.bridge.TrackAppInstall())
}

func (m *Module) TrackAppUpdate() {
	m.logged("trackAppUpdate", m.bridge.TrackAppUpdate())
}

func (m *Module) TrackAppInstallUpdateBySmartech() {
	m.logged("trackAppInstallUpdateBySmartech", m.bridge.TrackAppInstallUpdateBySmartech())
}

func (m *Module) TrackEvent(name string, payload *runtimeval.Map) {
	m.logged("trackEvent", m.bridge.TrackEvent(name, payload))
}

func (m *Module) Login(identity string) {
	m.logged("login", m.bridge.Login(identity))
}

func (m *Module) LogoutAndClearUserIdentity(clearIdentity bool) {
	m.logged("logoutAndClearUserIdentity", m.bridge.LogoutAndClearUserIdentity(clearIdentity))
}

// SetUserIdentity reports IdentitySetMessage, IdentityEmptyMessage for an
// empty identity, or an exception string.
func (m *Module) SetUserIdentity(identity string, cb Callback) {
	err := m.bridge.SetUserIdentity(identity)
	switch {
	case err == nil:
		m.respond("setUserIdentity", cb, IdentitySetMessage)
	case stderrors.Is(err, errors.ErrEmptyIdentity):
		m.respond("setUserIdentity", cb, IdentityEmptyMessage)
	default:
		m.logged("setUserIdentity", err)
		m.respond("setUserIdentity", cb, exception(err))
	}
}

func (m *Module) GetUserIdentity(cb Callback) {
	identity, err := m.bridge.GetUserIdentity()
	m.respondString("getUserIdentity", cb, identity, err)
}

func (m *Module) ClearUserIdentity() {
	m.logged("clearUserIdentity", m.bridge.ClearUserIdentity())
}

func (m *Module) UpdateUserProfile(profile *runtimeval.Map) {
	m.logged("updateUserProfile", m.bridge.UpdateUserProfile(profile))
}

func (m *Module) OptTracking(opt bool) {
	m.logged("optTracking", m.bridge.OptTracking(opt))
}

func (m *Module) HasOptedTracking(cb Callback) {
	opted, err := m.bridge.HasOptedTracking()
	m.respondBool("hasOptedTracking", cb, opted, err)
}

func (m *Module) OptPushNotification(opt bool) {
	m.logged("optPushNotification", m.bridge.OptPushNotification(opt))
}

func (m *Module) HasOptedPushNotification(cb Callback) {
	opted, err := m.bridge.HasOptedPushNotification()
	m.respondBool("hasOptedPushNotification", cb, opted, err)
}

func (m *Module) OptInAppMessage(opt bool) {
	m.logged("optInAppMessage", m.bridge.OptInAppMessage(opt))
}

func (m *Module) HasOptedInAppMessage(cb Callback) {
	opted, err := m.bridge.HasOptedInAppMessage()
	m.respondBool("hasOptedInAppMessage", cb, opted, err)
}

func (m *Module) SetUserLocation(latitude, longitude float64) {
	m.logged("setUserLocation", m.bridge.SetUserLocation(latitude, longitude))
}

func (m *Module) GetAppID(cb Callback) {
	id, err := m.bridge.GetAppID()
	m.respondString("getAppId", cb, id, err)
}

func (m *Module) GetDevicePushToken(cb Callback) {
	token, err := m.bridge.GetDevicePushToken()
	m.respondString("getDevicePushToken", cb, token, err)
}

func (m *Module) GetDeviceGUID(cb Callback) {
	guid, err := m.bridge.GetDeviceGUID()
	m.respondString("getDeviceGuid", cb, guid, err)
}

func (m *Module) GetSDKVersion(cb Callback) {
	version, err := m.bridge.GetSDKVersion()
	m.respondString("getSDKVersion", cb, version, err)
}

func (m *Module) SetDevicePushToken(token string) {
	m.logged("setDevicePushToken", m.bridge.SetDevicePushToken(token))
}

func (m *Module) FetchAlreadyGeneratedTokenFromFCM() {
	m.logged("fetchAlreadyGeneratedTokenFromFCM", m.bridge.FetchAlreadyGeneratedTokenFromFCM())
}
