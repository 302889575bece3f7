package config

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/skekre98/prefsync/prefs"
)

// Binder decodes merged settings maps into structs and validates them.
//
// Decoding is weakly typed so values coming from flags and environment
// variables ("true", "3") land in bool and int fields. Struct fields are
// mapped with `config` tags and checked with `validate` tags.
type Binder struct {
	validator *validator.Validate
}

// BindError reports which stage of Bind failed: "decode" or "validate".
type BindError struct {
	Stage string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("settings %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func NewBinder() *Binder {
	return &Binder{
		validator: validator.New(),
	}
}

// Bind decodes source into target, which must be a pointer to a struct, and
// validates the result. target may be partially filled when validation
// fails.
func (b *Binder) Bind(source map[string]any, target any) error {
	if err := b.Decode(source, target); err != nil {
		return err
	}
	return b.Validate(target)
}

// Decode fills target from source without validating.
func (b *Binder) Decode(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToListModeHook(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := decoder.Decode(source); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	return nil
}

// Validate runs the `validate` tags of target.
func (b *Binder) Validate(target any) error {
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}

func stringToListModeHook() mapstructure.DecodeHookFuncType {
	listMode := reflect.TypeOf(prefs.ListMode(""))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != listMode {
			return data, nil
		}
		return prefs.ParseListMode(reflect.ValueOf(data).String())
	}
}
