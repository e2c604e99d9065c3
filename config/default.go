// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/duocast-cli/duocast/color"
	"github.com/duocast-cli/duocast/constant"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Duocast + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlaybackLoadOrder, "remote-first", "Order in which the dual load is attempted.\nAvailable options are: remote-first, local-first.\nBoth sides are always attempted; failures on either side are logged, not raised")
	register(key.PlaybackMirrorInterval, 1, "Interval in seconds between position mirror writes into the non-authoritative side")
	register(key.PlaybackCompletionPercentage, 80, "Percentage required to mark an asset as watched (1-100)")
	register(key.EngineBinary, "mpv", "Binary used for the local playback engine.\nMust speak the mpv JSON-IPC protocol")
	register(key.EngineExtraFlags, []string{}, "Extra command line flags appended when spawning the local engine")
	register(key.RemoteConnectorURL, "", "Base URL of the cloud connector that fronts remote renderer devices.\nExample: https://connector.example.com")
	register(key.RemoteDefaultDevice, "", "Name of the remote device to use when --device is not given.\nWill prompt if not set and more than one device is available")
	register(key.RemoteLoadTimeout, 30, "Seconds to wait for the remote renderer to acknowledge a load")
	register(key.DrmLicenseServer, "", "License server URL used by both the local engine and the remote renderer")
	register(key.DrmImpersonateBrowser, false, "Send license requests with a browser TLS fingerprint.\nNeeded when the license server sits behind an anti-bot CDN")
	register(key.DrmFilterScript, "", "Name of a Lua script in the filters directory that rewrites license requests and responses.\nThe script may define request(req) and response(resp) functions")
	register(key.HistorySaveOnWatch, true, "Save resume positions to the watch history")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.TUIProgressWidth, 40, "Width of the progress bar on the now-playing screen")
	register(key.TUIShowAssetURI, true, "Show the loaded asset URI on the now-playing screen")
	register(key.TUISeekStep, 10, "Seconds to seek on arrow keys")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
