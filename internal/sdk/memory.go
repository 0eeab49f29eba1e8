package sdk

import (
	stderrors "errors"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/mcncl/smtbridge/internal/deeplink"
)

// Version reported by the in-memory SDK.
const Version = "3.2.0-memory"

// ErrNoListener is returned when firing a callback nobody registered for.
var ErrNoListener = stderrors.New("no listener registered")

// Event is a tracked event recorded by Memory.
type Event struct {
	Name    string
	Payload map[string]any
}

// Memory is an in-process SDK that records every call. It backs the CLI and
// tests. Safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	appID     string
	guid      string
	identity  string
	loggedIn  bool
	pushToken string

	optTracking bool
	optPush     bool
	optInApp    bool

	events   []Event
	profiles []map[string]any
	location *Location

	onClick      NotificationClickListener
	onCustomHTML InAppCustomHTMLListener
}

var _ SDK = (*Memory)(nil)

// NewMemory returns an SDK for appID with every opt-in enabled and a fresh
// device GUID.
func NewMemory(appID string) *Memory {
	return &Memory{
		appID:       appID,
		guid:        uuid.NewString(),
		optTracking: true,
		optPush:     true,
		optInApp:    true,
	}
}

func (m *Memory) track(name string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Name: name, Payload: maps.Clone(payload)})
}

func (m *Memory) TrackAppInstall() error {
	m.track("app_install", nil)
	return nil
}

func (m *Memory) TrackAppUpdate() error {
	m.track("app_update", nil)
	return nil
}

func (m *Memory) TrackAppInstallUpdateBySmartech() error {
	m.track("app_install_update", nil)
	return nil
}

func (m *Memory) TrackEvent(name string, payload map[string]any) error {
	m.track(name, payload)
	return nil
}

func (m *Memory) Login(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
	m.loggedIn = true
	return nil
}

func (m *Memory) LogoutAndClearUserIdentity(clearIdentity bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = false
	if clearIdentity {
		m.identity = ""
	}
	return nil
}

func (m *Memory) SetUserIdentity(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
	return nil
}

func (m *Memory) GetUserIdentity() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, nil
}

func (m *Memory) ClearUserIdentity() error {
	return m.SetUserIdentity("")
}

func (m *Memory) UpdateUserProfile(profile map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, maps.Clone(profile))
	return nil
}

func (m *Memory) OptTracking(opt bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optTracking = opt
	return nil
}

func (m *Memory) HasOptedTracking() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optTracking, nil
}

func (m *Memory) OptPushNotification(opt bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optPush = opt
	return nil
}

func (m *Memory) HasOptedPushNotification() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optPush, nil
}

func (m *Memory) OptInAppMessage(opt bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optInApp = opt
	return nil
}

func (m *Memory) HasOptedInAppMessage() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optInApp, nil
}

func (m *Memory) SetUserLocation(loc Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = &loc
	return nil
}

func (m *Memory) GetAppID() (string, error) {
	return m.appID, nil
}

func (m *Memory) GetDevicePushToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushToken, nil
}

func (m *Memory) GetDeviceUniqueID() (string, error) {
	return m.guid, nil
}

func (m *Memory) GetSDKVersion() (string, error) {
	return Version, nil
}

func (m *Memory) SetDevicePushToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushToken = token
	return nil
}

// FetchAlreadyGeneratedTokenFromFCM assigns a generated token when none is set.
func (m *Memory) FetchAlreadyGeneratedTokenFromFCM() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushToken == "" {
		m.pushToken = "fcm-" + uuid.NewString()
	}
	return nil
}

func (m *Memory) SetNotificationClickListener(l NotificationClickListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClick = l
}

func (m *Memory) SetInAppCustomHTMLListener(l InAppCustomHTMLListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCustomHTML = l
}

// Click simulates the user clicking a notification carrying intent.
func (m *Memory) Click(intent *deeplink.Intent) error {
	m.mu.Lock()
	l := m.onClick
	m.mu.Unlock()
	if l == nil {
		return ErrNoListener
	}
	l(intent)
	return nil
}

// CustomHTML simulates a custom HTML in-app message delivering payload.
func (m *Memory) CustomHTML(payload map[string]any) error {
	m.mu.Lock()
	l := m.onCustomHTML
	m.mu.Unlock()
	if l == nil {
		return ErrNoListener
	}
	l(payload)
	return nil
}

// Events returns the tracked events in call order.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Profiles returns the profile updates in call order.
func (m *Memory) Profiles() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any(nil), m.profiles...)
}

// Location returns the last location set, if any.
func (m *Memory) Location() (Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.location == nil {
		return Location{}, false
	}
	return *m.location, true
}

// LoggedIn reports whether Login was called without a later logout.
func (m *Memory) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}
