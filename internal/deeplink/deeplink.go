// Package deeplink turns notification click intents into the payload the
// runtime receives with the deep-link event.
package deeplink

import (
	"fmt"

	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/mitchellh/mapstructure"
)

// Intent extras keys set by the vendor SDK on a notification click.
const (
	ExtraDeepLinkPath  = "clickDeepLinkPath"
	ExtraCustomPayload = "clickCustomPayload"
)

// Payload keys seen by the runtime.
const (
	KeyDeepLink      = "deeplink"
	KeyCustomPayload = "customPayload"
)

// Intent is the host notification intent. Extras holds whatever the platform
// attached; only the click keys are read.
type Intent struct {
	Extras map[string]any
}

type clickExtras struct {
	DeepLinkPath  string `mapstructure:"clickDeepLinkPath"`
	CustomPayload string `mapstructure:"clickCustomPayload"`
}

// Process converts intent into a runtime map. The map is empty unless the
// extras carry a deep-link path, in which case it holds the path under
// "deeplink" and the custom payload, or "", under "customPayload". Extras
// values that are not strings are weakly coerced. The returned map is never
// nil, even alongside an error.
func Process(intent *Intent) (*runtimeval.Map, error) {
	out := runtimeval.NewMap()
	if intent == nil || intent.Extras == nil {
		return out, nil
	}
	if _, ok := intent.Extras[ExtraDeepLinkPath]; !ok {
		return out, nil
	}

	var extras clickExtras
	// Weak typing turns 42 into "42" and true into "1"; a platform bundle
	// would return null for a non-string extra.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &extras,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(intent.Extras); err != nil {
		return out, errors.NewInputError(fmt.Sprintf("could not read %s extras", ExtraDeepLinkPath), err)
	}

	out.PutString(KeyDeepLink, extras.DeepLinkPath)
	out.PutString(KeyCustomPayload, extras.CustomPayload)
	return out, nil
}
