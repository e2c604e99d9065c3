// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 21

// Playback Coordination - these keys govern how the local engine and the remote proxy are kept consistent.
const (
	PlaybackLoadOrder            = "playback.load_order"
	PlaybackMirrorInterval       = "playback.mirror_interval"
	PlaybackCompletionPercentage = "playback.completion_percentage"
)

// Local Playback Engine - these keys maintain the state and configuration of the mpv-backed engine.
const (
	EngineBinary     = "engine.binary"
	EngineExtraFlags = "engine.extra_flags"
)

// Remote Connector - these keys configure the cloud connector that fronts remote renderer devices.
const (
	RemoteConnectorURL  = "remote.connector_url"
	RemoteDefaultDevice = "remote.default_device"
	RemoteLoadTimeout   = "remote.load_timeout"
)

// DRM License Exchange - these keys configure the shared license server plumbing.
const (
	DrmLicenseServer      = "drm.license_server"
	DrmImpersonateBrowser = "drm.impersonate_browser"
	DrmFilterScript       = "drm.filter_script"
)

// History Tracking - these keys configure the persistence of playback resume state.
const (
	HistorySaveOnWatch = "history.save_on_watch"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the now-playing screen's styling and behavior.
const (
	TUIProgressWidth = "tui.progress_width"
	TUIShowAssetURI  = "tui.show_asset_uri"
	TUISeekStep      = "tui.seek_step"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
