// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 15

// Download Engine - these keys govern resource fetching behavior.
const (
	DownloadsPath        = "downloads.path"
	DownloadsConcurrency = "downloads.concurrency"
	DownloadsTimeout     = "downloads.timeout"
	DownloadsUserAgent   = "downloads.user_agent"
)

// External Media Toolbox - these keys configure the delegated ffmpeg/ffprobe processes.
const (
	ToolboxFFmpeg       = "toolbox.ffmpeg"
	ToolboxFFprobe      = "toolbox.ffprobe"
	ToolboxTimeout      = "toolbox.timeout"
	ToolboxProbeTimeout = "toolbox.probe_timeout"
)

// Acquisition History - these keys configure the persistence of completed run records.
const (
	HistorySaveOnDownload = "history.save_on_download"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern application behavior outside the pipeline.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
