// Package sdk describes the vendor marketing SDK the bridge forwards to.
package sdk

import "github.com/mcncl/smtbridge/internal/deeplink"

// Location is a user location reported to the SDK.
type Location struct {
	Provider  string
	Latitude  float64
	Longitude float64
}

// NotificationClickListener receives the intent of a clicked notification.
type NotificationClickListener func(intent *deeplink.Intent)

// InAppCustomHTMLListener receives the payload of a custom HTML in-app message.
type InAppCustomHTMLListener func(payload map[string]any)

// SDK is the vendor SDK surface. Every call reports failure explicitly.
type SDK interface {
	TrackAppInstall() error
	TrackAppUpdate() error
	TrackAppInstallUpdateBySmartech() error
	TrackEvent(name string, payload map[string]any) error

	Login(identity string) error
	LogoutAndClearUserIdentity(clearIdentity bool) error
	SetUserIdentity(identity string) error
	GetUserIdentity() (string, error)
	ClearUserIdentity() error
	UpdateUserProfile(profile map[string]any) error

	OptTracking(opt bool) error
	HasOptedTracking() (bool, error)
	OptPushNotification(opt bool) error
	HasOptedPushNotification() (bool, error)
	OptInAppMessage(opt bool) error
	HasOptedInAppMessage() (bool, error)

	SetUserLocation(loc Location) error

	GetAppID() (string, error)
	GetDevicePushToken() (string, error)
	GetDeviceUniqueID() (string, error)
	GetSDKVersion() (string, error)
	SetDevicePushToken(token string) error
	FetchAlreadyGeneratedTokenFromFCM() error

	SetNotificationClickListener(l NotificationClickListener)
	SetInAppCustomHTMLListener(l InAppCustomHTMLListener)
}
