// Package bridge exposes the vendor SDK to the runtime. Bridge forwards each
// call to exactly one SDK method and returns its error. Module adapts Bridge
// to the runtime's callback convention.
package bridge

import (
	"github.com/mcncl/smtbridge/internal/config"
	"github.com/mcncl/smtbridge/internal/converter"
	"github.com/mcncl/smtbridge/internal/deeplink"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/logger"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/mcncl/smtbridge/internal/sdk"
	"github.com/rs/zerolog"
)

// Bridge forwards runtime calls to the vendor SDK.
type Bridge struct {
	sdk     sdk.SDK
	emitter Emitter
	pending *deeplink.Pending
	cfg     *config.Config
	log     zerolog.Logger
}

// New creates a Bridge and registers it as the SDK's notification click and
// custom HTML listener. A nil cfg uses the defaults and a nil pending slot
// means no launch intent will ever be reported.
func New(s sdk.SDK, emitter Emitter, pending *deeplink.Pending, cfg *config.Config) *Bridge {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if pending == nil {
		pending = &deeplink.Pending{}
	}
	b := &Bridge{
		sdk:     s,
		emitter: emitter,
		pending: pending,
		cfg:     cfg,
		log:     logger.ForModule(cfg.ModuleName),
	}
	s.SetNotificationClickListener(b.OnNotificationClick)
	s.SetInAppCustomHTMLListener(b.OnCustomHTML)
	return b
}

// Name returns the module name the runtime registers the bridge under.
func (b *Bridge) Name() string {
	return b.cfg.ModuleName
}

// Constants returns the values exported to the runtime at registration.
func (b *Bridge) Constants() map[string]any {
	event := b.cfg.Events.DeeplinkNotification
	return map[string]any{event: event}
}

// GetDeepLinkURL returns the payload of the intent that launched the app and
// clears it. Without a pending intent the payload is empty.
func (b *Bridge) GetDeepLinkURL() (*runtimeval.Map, error) {
	return deeplink.Process(b.pending.Take())
}

// OnNotificationClick emits the deep-link event for a clicked notification.
func (b *Bridge) OnNotificationClick(intent *deeplink.Intent) {
	payload, err := deeplink.Process(intent)
	if err != nil {
		b.log.Warn().Err(err).Msg("Could not read notification intent")
	}
	b.log.Debug().Interface("payload", payload.Interface()).Msg("Deeplink payload")
	b.emit(payload)
}

// OnCustomHTML emits the deep-link event carrying a custom HTML in-app
// payload. A nil payload emits nothing.
func (b *Bridge) OnCustomHTML(payload map[string]any) {
	if payload == nil {
		return
	}
	node := converter.DocumentFromNative(payload)
	b.emit(converter.DocumentToRuntimeMap(node.AsObject()))
}

func (b *Bridge) emit(payload *runtimeval.Map) {
	if b.emitter == nil {
		b.log.Warn().Msg("No emitter attached, dropping event")
		return
	}
	b.emitter.Emit(b.cfg.Events.DeeplinkNotification, payload)
}

// hostPayload converts a runtime map for the SDK. Values that cannot cross
// are dropped and logged; the call goes ahead with the rest.
func (b *Bridge) hostPayload(method string, m *runtimeval.Map) map[string]any {
	out, err := converter.RuntimeMapToHost(m)
	if err != nil {
		b.log.Warn().Err(err).Str("method", method).Msg("Dropped unsupported payload values")
	}
	return out.Native()
}

func sdkErr(method string, err error) error {
	if err == nil {
		return nil
	}
	return errors.NewSDKError(method, err)
}

func (b *Bridge) TrackAppInstall() error {
	return sdkErr("trackAppInstall", b.sdk.TrackAppInstall())
}

func (b *Bridge) TrackAppUpdate() error {
	return sdkErr("trackAppUpdate", b.sdk.TrackAppUpdate())
}

func (b *Bridge) TrackAppInstallUpdateBySmartech() error {
	return sdkErr("trackAppInstallUpdateBySmartech", b.sdk.TrackAppInstallUpdateBySmartech())
}

// TrackEvent tracks a custom event with payload.
func (b *Bridge) TrackEvent(name string, payload *runtimeval.Map) error {
	return sdkErr("trackEvent", b.sdk.TrackEvent(name, b.hostPayload("trackEvent", payload)))
}

// Login sets identity on the SDK and then reports the login.
func (b *Bridge) Login(identity string) error {
	if err := b.sdk.SetUserIdentity(identity); err != nil {
		return sdkErr("login", err)
	}
	return sdkErr("login", b.sdk.Login(identity))
}

func (b *Bridge) LogoutAndClearUserIdentity(clearIdentity bool) error {
	return sdkErr("logoutAndClearUserIdentity", b.sdk.LogoutAndClearUserIdentity(clearIdentity))
}

// SetUserIdentity stores identity locally. Empty identities are rejected
// without calling the SDK.
func (b *Bridge) SetUserIdentity(identity string) error {
	if identity == "" {
		return errors.NewInputError("setUserIdentity requires an identity", errors.ErrEmptyIdentity)
	}
	return sdkErr("setUserIdentity", b.sdk.SetUserIdentity(identity))
}

func (b *Bridge) GetUserIdentity() (string, error) {
	identity, err := b.sdk.GetUserIdentity()
	return identity, sdkErr("getUserIdentity", err)
}

func (b *Bridge) ClearUserIdentity() error {
	return sdkErr("clearUserIdentity", b.sdk.ClearUserIdentity())
}

// UpdateUserProfile sends profile attributes to the SDK.
func (b *Bridge) UpdateUserProfile(profile *runtimeval.Map) error {
	return sdkErr("updateUserProfile", b.sdk.UpdateUserProfile(b.hostPayload("updateUserProfile", profile)))
}

func (b *Bridge) OptTracking(opt bool) error {
	return sdkErr("optTracking", b.sdk.OptTracking(opt))
}

func (b *Bridge) HasOptedTracking() (bool, error) {
	opted, err := b.sdk.HasOptedTracking()
	return opted, sdkErr("hasOptedTracking", err)
}

func (b *Bridge) OptPushNotification(opt bool) error {
	return sdkErr("optPushNotification", b.sdk.OptPushNotification(opt))
}

func (b *Bridge) HasOptedPushNotification() (bool, error) {
	opted, err := b.sdk.HasOptedPushNotification()
	return opted, sdkErr("hasOptedPushNotification", err)
}

func (b *Bridge) OptInAppMessage(opt bool) error {
	return sdkErr("optInAppMessage", b.sdk.OptInAppMessage(opt))
}

func (b *Bridge) HasOptedInAppMessage() (bool, error) {
	opted, err := b.sdk.HasOptedInAppMessage()
	return opted, sdkErr("hasOptedInAppMessage", err)
}

// SetUserLocation reports a location under the configured provider name.
func (b *Bridge) SetUserLocation(latitude, longitude float64) error {
	loc := sdk.Location{
		Provider:  b.cfg.Location.Provider,
		Latitude:  latitude,
		Longitude: longitude,
	}
	return sdkErr("setUserLocation", b.sdk.SetUserLocation(loc))
}

func (b *Bridge) GetAppID() (string, error) {
	id, err := b.sdk.GetAppID()
	return id, sdkErr("getAppId", err)
}

func (b *Bridge) GetDevicePushToken() (string, error) {
	token, err := b.sdk.GetDevicePushToken()
	return token, sdkErr("getDevicePushToken", err)
}

func (b *Bridge) GetDeviceGUID() (string, error) {
	guid, err := b.sdk.GetDeviceUniqueID()
	return guid, sdkErr("getDeviceGuid", err)
}

func (b *Bridge) GetSDKVersion() (string, error) {
	version, err := b.sdk.GetSDKVersion()
	return version, sdkErr("getSDKVersion", err)
}

func (b *Bridge) SetDevicePushToken(token string) error {
	return sdkErr("setDevicePushToken", b.sdk.SetDevicePushToken(token))
}

func (b *Bridge) FetchAlreadyGeneratedTokenFromFCM() error {
	return sdkErr("fetchAlreadyGeneratedTokenFromFCM", b.sdk.FetchAlreadyGeneratedTokenFromFCM())
}
