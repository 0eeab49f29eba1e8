package bridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/smtbridge/internal/config"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/samber/lo"
)

// Handler runs one bridge method with positional runtime arguments.
type Handler func(args *runtimeval.Array, cb Callback) error

type method struct {
	name    string
	arity   int
	handler Handler
}

// Dispatcher invokes Module methods by their runtime name. Lookups ignore
// case and separators, so "trackEvent", "TrackEvent" and "track-event" all
// resolve to the same method.
type Dispatcher struct {
	module  *Module
	cfg     *config.Config
	methods map[string]method
}

// NewDispatcher builds the method table for module. Rules in cfg's deny list
// block matching methods.
func NewDispatcher(module *Module, cfg *config.Config) *Dispatcher {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	d := &Dispatcher{
		module:  module,
		cfg:     cfg,
		methods: make(map[string]method),
	}
	d.register()
	return d
}

func (d *Dispatcher) add(name string, arity int, h Handler) {
	d.methods[methodKey(name)] = method{name: name, arity: arity, handler: h}
}

func (d *Dispatcher) register() {
	m := d.module

	d.add("getDeepLinkUrl", 0, func(_ *runtimeval.Array, cb Callback) error {
		m.GetDeepLinkURL(cb)
		return nil
	})
	d.add("trackAppInstall", 0, func(_ *runtimeval.Array, _ Callback) error {
		m.TrackAppInstall()
		return nil
	})
	d.add("trackAppUpdate", 0, func(_ *runtimeval.Array, _ Callback) error {
		m.TrackAppUpdate()
		return nil
	})
	d.add("trackAppInstallUpdateBySmartech", 0, func(_ *runtimeval.Array, _ Callback) error {
		m.TrackAppInstallUpdateBySmartech()
		return nil
	})
	d.add("trackEvent", 2, func(args *runtimeval.Array, _ Callback) error {
		name, err := argString(args, 0, "trackEvent")
		if err != nil {
			return err
		}
		payload, err := argMap(args, 1, "trackEvent")
		if err != nil {
			return err
		}
		m.TrackEvent(name, payload)
		return nil
	})
	d.add("login", 1, func(args *runtimeval.Array, _ Callback) error {
		identity, err := argString(args, 0, "login")
		if err != nil {
			return err
		}
		m.Login(identity)
		return nil
	})
	d.add("logoutAndClearUserIdentity", 1, func(args *runtimeval.Array, _ Callback) error {
		clearIdentity, err := argBool(args, 0, "logoutAndClearUserIdentity")
		if err != nil {
			return err
		}
		m.LogoutAndClearUserIdentity(clearIdentity)
		return nil
	})
	d.add("setUserIdentity", 1, func(args *runtimeval.Array, cb Callback) error {
		identity, err := argString(args, 0, "setUserIdentity")
		if err != nil {
			return err
		}
		m.SetUserIdentity(identity, cb)
		return nil
	})
	d.add("getUserIdentity", 0, func(_ *runtimeval.Array, cb Callback) error {
		m.GetUserIdentity(cb)
		return nil
	})
	d.add("clearUserIdentity", 0, func(_ *runtimeval.Array, _ Callback) error {
		m.ClearUserIdentity()
		return nil
	})
	d.add("updateUserProfile", 1, func(args *runtimeval.Array, _ Callback) error {
		profile, err := argMap(args, 0, "updateUserProfile")
		if err != nil {
			return err
		}
		m.UpdateUserProfile(profile)
		return nil
	})

	d.addOpt("optTracking", m.OptTracking)
	d.addOpt("optPushNotification", m.OptPushNotification)
	d.addOpt("optInAppMessage", m.OptInAppMessage)
	d.addQuery("hasOptedTracking", m.HasOptedTracking)
	d.addQuery("hasOptedPushNotification", m.HasOptedPushNotification)
	d.addQuery("hasOptedInAppMessage", m.HasOptedInAppMessage)

	d.add("setUserLocation", 2, func(args *runtimeval.Array, _ Callback) error {
		latitude, err := argNumber(args, 0, "setUserLocation")
		if err != nil {
			return err
		}
		longitude, err := argNumber(args, 1, "setUserLocation")
		if err != nil {
			return err
		}
		m.SetUserLocation(latitude, longitude)
		return nil
	})

	d.addQuery("getAppId", m.GetAppID)
	d.addQuery("getDevicePushToken", m.GetDevicePushToken)
	d.addQuery("getDeviceGuid", m.GetDeviceGUID)
	d.addQuery("getSDKVersion", m.GetSDKVersion)

	d.add("setDevicePushToken", 1, func(args *runtimeval.Array, _ Callback) error {
		token, err := argString(args, 0, "setDevicePushToken")
		if err != nil {
			return err
		}
		m.SetDevicePushToken(token)
		return nil
	})
	d.add("fetchAlreadyGeneratedTokenFromFCM", 0, func(_ *runtimeval.Array, _ Callback) error {
		m.FetchAlreadyGeneratedTokenFromFCM()
		return nil
	})
}

// methodKey folds separators and case so every spelling of a name, including
// acronyms like "getSDKVersion" and "get-sdk-version", maps to one key.
func methodKey(name string) string {
	return strings.ToLower(strcase.ToLowerCamel(name))
}

func (d *Dispatcher) addOpt(name string, fn func(bool)) {
	d.add(name, 1, func(args *runtimeval.Array, _ Callback) error {
		opt, err := argBool(args, 0, name)
		if err != nil {
			return err
		}
		fn(opt)
		return nil
	})
}

func (d *Dispatcher) addQuery(name string, fn func(Callback)) {
	d.add(name, 0, func(_ *runtimeval.Array, cb Callback) error {
		fn(cb)
		return nil
	})
}

// Methods returns the runtime names of every method, sorted.
func (d *Dispatcher) Methods() []string {
	names := lo.Map(lo.Values(d.methods), func(m method, _ int) string { return m.name })
	sort.Strings(names)
	return names
}

// Resolve returns the runtime name of a method given in any case style.
func (d *Dispatcher) Resolve(name string) (string, bool) {
	m, ok := d.methods[methodKey(name)]
	return m.name, ok
}

// Invoke runs the named method. Errors cover only dispatch itself: unknown or
// disabled methods and arguments of the wrong shape. Failures of the call
// are reported by the Module through logs and cb.
func (d *Dispatcher) Invoke(name string, args *runtimeval.Array, cb Callback) error {
	m, ok := d.methods[methodKey(name)]
	if !ok {
		return errors.NewInputError(fmt.Sprintf("unknown method '%s'", name), errors.ErrUnknownMethod)
	}
	if rule, denied := d.cfg.FindDenyRule(m.name); denied {
		msg := fmt.Sprintf("method '%s' is disabled", m.name)
		if rule.Reason != "" {
			msg += ": " + rule.Reason
		}
		return errors.NewConfigError(msg, errors.ErrMethodDenied)
	}
	if args.Len() > m.arity {
		return errors.NewInputError(
			fmt.Sprintf("%s takes %d argument(s), got %d", m.name, m.arity, args.Len()),
			errors.ErrInvalidArgument,
		)
	}
	return m.handler(args, cb)
}

func argAt(args *runtimeval.Array, i int, methodName string, want runtimeval.Type) (runtimeval.Value, error) {
	if i >= args.Len() {
		return runtimeval.Value{}, errors.NewInputError(
			fmt.Sprintf("%s: missing argument %d, expected %s", methodName, i+1, want),
			errors.ErrInvalidArgument,
		)
	}
	v := args.At(i)
	if v.Type() != want {
		return runtimeval.Value{}, errors.NewInputError(
			fmt.Sprintf("%s: argument %d must be %s, got %s", methodName, i+1, want, v.Type()),
			errors.ErrInvalidArgument,
		)
	}
	return v, nil
}

func argString(args *runtimeval.Array, i int, methodName string) (string, error) {
	v, err := argAt(args, i, methodName, runtimeval.TypeString)
	return v.AsString(), err
}

func argBool(args *runtimeval.Array, i int, methodName string) (bool, error) {
	v, err := argAt(args, i, methodName, runtimeval.TypeBoolean)
	return v.AsBoolean(), err
}

func argNumber(args *runtimeval.Array, i int, methodName string) (float64, error) {
	v, err := argAt(args, i, methodName, runtimeval.TypeNumber)
	return v.AsDouble(), err
}

// argMap reads an optional map argument. A missing or null argument is an
// empty map.
func argMap(args *runtimeval.Array, i int, methodName string) (*runtimeval.Map, error) {
	if i >= args.Len() || args.Type(i) == runtimeval.TypeNull {
		return runtimeval.NewMap(), nil
	}
	v, err := argAt(args, i, methodName, runtimeval.TypeMap)
	return v.AsMap(), err
}
