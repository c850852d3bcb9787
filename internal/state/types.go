package state

import (
	"encoding/json"
)

// Tree is the canonical in-memory mirror of the remote device's
// reported status. Every section is sparse: a nil pointer or absent map
// key means "not yet known", never "zero". The merge rules in merge.go
// rely on that distinction to guarantee that a partial update can never
// erase previously known values.
//
// Field names and JSON tags follow the device's status report format.
type Tree struct {
	McuParams             McuParams              `json:"mcu_params,omitempty"`
	LocationData          *LocationData          `json:"location_data,omitempty"`
	Pins                  Pins                   `json:"pins,omitempty"`
	Configuration         *Configuration         `json:"configuration,omitempty"`
	InformationalSettings *InformationalSettings `json:"informational_settings,omitempty"`
	UserEnv               UserEnv                `json:"user_env,omitempty"`
	Jobs                  Jobs                   `json:"jobs,omitempty"`
	ProcessInfo           *ProcessInfo           `json:"process_info,omitempty"`
	GpioRegistry          GpioRegistry           `json:"gpio_registry,omitempty"`
	Alerts                Alerts                 `json:"alerts,omitempty"`
}

// McuParams maps firmware parameter names to their reported values.
// A nil value means the device reported the parameter as unset.
type McuParams map[string]*float64

// Pins maps pin numbers to their last reported mode and value.
type Pins map[int]PinState

// UserEnv is the free-form environment variable bag. Values are
// optional; a nil value means the variable exists but has no value.
type UserEnv map[string]*string

// Jobs maps job identifiers (usually file names or task labels) to
// their progress records.
type Jobs map[string]JobProgress

// GpioRegistry maps pin numbers to user-assigned labels.
type GpioRegistry map[int]string

// Alerts maps alert identifiers to alert records.
type Alerts map[string]Alert

// PinState is the reported mode and value of one pin.
type PinState struct {
	Mode  *int     `json:"mode,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

// AxisValues holds one value per axis. Individual axes may be unknown.
type AxisValues struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// LocationData groups the three coordinate systems the device reports:
// commanded position, scaled encoder position, and raw encoder counts.
type LocationData struct {
	Position       *AxisValues `json:"position,omitempty"`
	ScaledEncoders *AxisValues `json:"scaled_encoders,omitempty"`
	RawEncoders    *AxisValues `json:"raw_encoders,omitempty"`
}

// Configuration is the device-side user configuration. The set of names
// is fixed by the device firmware; all fields are optional.
type Configuration struct {
	ArduinoDebugMessages *bool    `json:"arduino_debug_messages,omitempty"`
	AutoSync             *bool    `json:"auto_sync,omitempty"`
	BetaOptIn            *bool    `json:"beta_opt_in,omitempty"`
	DisableFactoryReset  *bool    `json:"disable_factory_reset,omitempty"`
	FirmwareHardware     *string  `json:"firmware_hardware,omitempty"`
	FirmwareInputLog     *bool    `json:"firmware_input_log,omitempty"`
	FirmwareOutputLog    *bool    `json:"firmware_output_log,omitempty"`
	FwAutoUpdate         *bool    `json:"fw_auto_update,omitempty"`
	NetworkNotFoundTimer *int     `json:"network_not_found_timer,omitempty"`
	OsAutoUpdate         *bool    `json:"os_auto_update,omitempty"`
	SafeHeight           *float64 `json:"safe_height,omitempty"`
	SequenceBodyLog      *bool    `json:"sequence_body_log,omitempty"`
	SequenceCompleteLog  *bool    `json:"sequence_complete_log,omitempty"`
	SequenceInitLog      *bool    `json:"sequence_init_log,omitempty"`
	SoilHeight           *float64 `json:"soil_height,omitempty"`
}

// InformationalSettings are producer-only runtime readings. They are
// merged from device reports but never sent by client commands.
type InformationalSettings struct {
	Busy              *bool    `json:"busy,omitempty"`
	Locked            *bool    `json:"locked,omitempty"`
	Commit            *string  `json:"commit,omitempty"`
	ControllerVersion *string  `json:"controller_version,omitempty"`
	FirmwareCommit    *string  `json:"firmware_commit,omitempty"`
	FirmwareVersion   *string  `json:"firmware_version,omitempty"`
	NodeName          *string  `json:"node_name,omitempty"`
	PrivateIP         *string  `json:"private_ip,omitempty"`
	SyncStatus        *string  `json:"sync_status,omitempty"`
	Target            *string  `json:"target,omitempty"`
	Env               *string  `json:"env,omitempty"`
	Uptime            *int64   `json:"uptime,omitempty"`
	MemoryUsage       *float64 `json:"memory_usage,omitempty"`
	DiskUsage         *float64 `json:"disk_usage,omitempty"`
	CPUUsage          *float64 `json:"cpu_usage,omitempty"`
	SocTemp           *float64 `json:"soc_temp,omitempty"`
	WifiLevel         *float64 `json:"wifi_level,omitempty"`
	UpdateAvailable   *bool    `json:"update_available,omitempty"`
	Throttled         *string  `json:"throttled,omitempty"`
}

// JobStatus is the reported state of a long-running device job.
type JobStatus string

// Job status values reported by the device.
const (
	JobWorking  JobStatus = "working"
	JobComplete JobStatus = "complete"
	JobError    JobStatus = "error"
)

// JobProgress is one entry in the jobs table. Unit selects which
// progress field is meaningful: "percent" or "bytes".
type JobProgress struct {
	Unit      string    `json:"unit,omitempty"`
	Status    JobStatus `json:"status,omitempty"`
	Percent   *float64  `json:"percent,omitempty"`
	Bytes     *int64    `json:"bytes,omitempty"`
	Type      *string   `json:"type,omitempty"`
	FileType  *string   `json:"file_type,omitempty"`
	UpdatedAt *int64    `json:"updated_at,omitempty"`
}

// Alert is one entry in the device's alerts table.
type Alert struct {
	ID         *int64 `json:"id,omitempty"`
	CreatedAt  *int64 `json:"created_at,omitempty"`
	ProblemTag string `json:"problem_tag,omitempty"`
	Priority   *int   `json:"priority,omitempty"`
	Slug       string `json:"slug,omitempty"`
	UUID       string `json:"uuid,omitempty"`
}

// ProcessInfo lists installed third-party extensions.
type ProcessInfo struct {
	Farmwares map[string]FarmwareManifest `json:"farmwares,omitempty"`
}

// FarmwareManifest is a tagged variant: devices report either the
// legacy manifest shape or the current one. The discriminant is the
// presence of the farmware_manifest_version field, not structural
// guessing. Exactly one of Legacy and V2 is set.
type FarmwareManifest struct {
	Legacy *LegacyManifest
	V2     *ManifestV2
}

// IsLegacy reports whether the manifest uses the legacy shape.
func (m FarmwareManifest) IsLegacy() bool {
	return m.Legacy != nil
}

// Name returns the package name regardless of manifest shape.
func (m FarmwareManifest) Name() string {
	switch {
	case m.V2 != nil:
		return m.V2.Package
	case m.Legacy != nil:
		return m.Legacy.Name
	default:
		return ""
	}
}

// UnmarshalJSON selects the manifest variant by the discriminant field.
func (m *FarmwareManifest) UnmarshalJSON(data []byte) error {
	var probe struct {
		Version *string `json:"farmware_manifest_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Version != nil {
		var v2 ManifestV2
		if err := json.Unmarshal(data, &v2); err != nil {
			return err
		}
		m.V2 = &v2
		m.Legacy = nil
		return nil
	}

	var legacy LegacyManifest
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	m.Legacy = &legacy
	m.V2 = nil
	return nil
}

// MarshalJSON emits the active variant unchanged.
func (m FarmwareManifest) MarshalJSON() ([]byte, error) {
	switch {
	case m.V2 != nil:
		return json.Marshal(m.V2)
	case m.Legacy != nil:
		return json.Marshal(m.Legacy)
	default:
		return []byte("null"), nil
	}
}

// LegacyManifest is the pre-versioning Farmware manifest shape.
type LegacyManifest struct {
	Name              string           `json:"name"`
	Author            string           `json:"author,omitempty"`
	URL               string           `json:"url,omitempty"`
	Path              string           `json:"path,omitempty"`
	Executable        string           `json:"executable,omitempty"`
	Args              []string         `json:"args,omitempty"`
	Config            []ManifestConfig `json:"config,omitempty"`
	MinOsVersionMajor *int             `json:"min_os_version_major,omitempty"`
}

// ManifestV2 is the current Farmware manifest shape, identified by the
// farmware_manifest_version field.
type ManifestV2 struct {
	ManifestVersion string                    `json:"farmware_manifest_version"`
	Package         string                    `json:"package"`
	PackageVersion  string                    `json:"package_version,omitempty"`
	Description     string                    `json:"description,omitempty"`
	Author          string                    `json:"author,omitempty"`
	Language        string                    `json:"language,omitempty"`
	Executable      string                    `json:"executable,omitempty"`
	Args            string                    `json:"args,omitempty"`
	Zip             string                    `json:"zip,omitempty"`
	ToolsVersion    string                    `json:"farmware_tools_version_requirement,omitempty"`
	Config          map[string]ManifestConfig `json:"config,omitempty"`
}

// ManifestConfig is one configurable input declared by a Farmware.
type ManifestConfig struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}
