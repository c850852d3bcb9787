package state

// merge applies a partial tree to dst, section by section. The rules
// are a structural union: present fields and map entries overwrite,
// absent ones leave dst untouched. Nothing in delta ever resets a known
// value back to unknown, so re-applying the same delta is a no-op after
// the first application.
//
// delta is never retained or aliased; values copied into dst are clones.
func merge(dst, delta *Tree) {
	if delta == nil {
		return
	}

	if delta.McuParams != nil {
		if dst.McuParams == nil {
			dst.McuParams = make(McuParams, len(delta.McuParams))
		}
		for name, value := range delta.McuParams {
			dst.McuParams[name] = clonePtr(value)
		}
	}

	if delta.LocationData != nil {
		if dst.LocationData == nil {
			dst.LocationData = &LocationData{}
		}
		mergeLocationData(dst.LocationData, delta.LocationData)
	}

	if delta.Pins != nil {
		if dst.Pins == nil {
			dst.Pins = make(Pins, len(delta.Pins))
		}
		for pin, incoming := range delta.Pins {
			existing := dst.Pins[pin]
			if incoming.Mode != nil {
				existing.Mode = clonePtr(incoming.Mode)
			}
			if incoming.Value != nil {
				existing.Value = clonePtr(incoming.Value)
			}
			dst.Pins[pin] = existing
		}
	}

	if delta.Configuration != nil {
		if dst.Configuration == nil {
			dst.Configuration = &Configuration{}
		}
		mergeConfiguration(dst.Configuration, delta.Configuration)
	}

	if delta.InformationalSettings != nil {
		if dst.InformationalSettings == nil {
			dst.InformationalSettings = &InformationalSettings{}
		}
		mergeInformational(dst.InformationalSettings, delta.InformationalSettings)
	}

	if delta.UserEnv != nil {
		if dst.UserEnv == nil {
			dst.UserEnv = make(UserEnv, len(delta.UserEnv))
		}
		for name, value := range delta.UserEnv {
			dst.UserEnv[name] = clonePtr(value)
		}
	}

	if delta.Jobs != nil {
		if dst.Jobs == nil {
			dst.Jobs = make(Jobs, len(delta.Jobs))
		}
		for id, incoming := range delta.Jobs {
			existing := dst.Jobs[id]
			mergeJob(&existing, incoming)
			dst.Jobs[id] = existing
		}
	}

	if delta.ProcessInfo != nil {
		if dst.ProcessInfo == nil {
			dst.ProcessInfo = &ProcessInfo{}
		}
		if delta.ProcessInfo.Farmwares != nil {
			if dst.ProcessInfo.Farmwares == nil {
				dst.ProcessInfo.Farmwares = make(map[string]FarmwareManifest, len(delta.ProcessInfo.Farmwares))
			}
			// A manifest is replaced whole: the two variants cannot be
			// merged field-wise across a schema change.
			for name, manifest := range delta.ProcessInfo.Farmwares {
				dst.ProcessInfo.Farmwares[name] = manifest.copy()
			}
		}
	}

	if delta.GpioRegistry != nil {
		if dst.GpioRegistry == nil {
			dst.GpioRegistry = make(GpioRegistry, len(delta.GpioRegistry))
		}
		for pin, label := range delta.GpioRegistry {
			dst.GpioRegistry[pin] = label
		}
	}

	if delta.Alerts != nil {
		if dst.Alerts == nil {
			dst.Alerts = make(Alerts, len(delta.Alerts))
		}
		for id, incoming := range delta.Alerts {
			existing := dst.Alerts[id]
			mergeAlert(&existing, incoming)
			dst.Alerts[id] = existing
		}
	}
}

func mergeAxes(dst *AxisValues, delta *AxisValues) {
	if delta.X != nil {
		dst.X = clonePtr(delta.X)
	}
	if delta.Y != nil {
		dst.Y = clonePtr(delta.Y)
	}
	if delta.Z != nil {
		dst.Z = clonePtr(delta.Z)
	}
}

func mergeLocationData(dst, delta *LocationData) {
	if delta.Position != nil {
		if dst.Position == nil {
			dst.Position = &AxisValues{}
		}
		mergeAxes(dst.Position, delta.Position)
	}
	if delta.ScaledEncoders != nil {
		if dst.ScaledEncoders == nil {
			dst.ScaledEncoders = &AxisValues{}
		}
		mergeAxes(dst.ScaledEncoders, delta.ScaledEncoders)
	}
	if delta.RawEncoders != nil {
		if dst.RawEncoders == nil {
			dst.RawEncoders = &AxisValues{}
		}
		mergeAxes(dst.RawEncoders, delta.RawEncoders)
	}
}

func mergeConfiguration(dst, delta *Configuration) {
	if delta.ArduinoDebugMessages != nil {
		dst.ArduinoDebugMessages = clonePtr(delta.ArduinoDebugMessages)
	}
	if delta.AutoSync != nil {
		dst.AutoSync = clonePtr(delta.AutoSync)
	}
	if delta.BetaOptIn != nil {
		dst.BetaOptIn = clonePtr(delta.BetaOptIn)
	}
	if delta.DisableFactoryReset != nil {
		dst.DisableFactoryReset = clonePtr(delta.DisableFactoryReset)
	}
	if delta.FirmwareHardware != nil {
		dst.FirmwareHardware = clonePtr(delta.FirmwareHardware)
	}
	if delta.FirmwareInputLog != nil {
		dst.FirmwareInputLog = clonePtr(delta.FirmwareInputLog)
	}
	if delta.FirmwareOutputLog != nil {
		dst.FirmwareOutputLog = clonePtr(delta.FirmwareOutputLog)
	}
	if delta.FwAutoUpdate != nil {
		dst.FwAutoUpdate = clonePtr(delta.FwAutoUpdate)
	}
	if delta.NetworkNotFoundTimer != nil {
		dst.NetworkNotFoundTimer = clonePtr(delta.NetworkNotFoundTimer)
	}
	if delta.OsAutoUpdate != nil {
		dst.OsAutoUpdate = clonePtr(delta.OsAutoUpdate)
	}
	if delta.SafeHeight != nil {
		dst.SafeHeight = clonePtr(delta.SafeHeight)
	}
	if delta.SequenceBodyLog != nil {
		dst.SequenceBodyLog = clonePtr(delta.SequenceBodyLog)
	}
	if delta.SequenceCompleteLog != nil {
		dst.SequenceCompleteLog = clonePtr(delta.SequenceCompleteLog)
	}
	if delta.SequenceInitLog != nil {
		dst.SequenceInitLog = clonePtr(delta.SequenceInitLog)
	}
	if delta.SoilHeight != nil {
		dst.SoilHeight = clonePtr(delta.SoilHeight)
	}
}

func mergeInformational(dst, delta *InformationalSettings) {
	if delta.Busy != nil {
		dst.Busy = clonePtr(delta.Busy)
	}
	if delta.Locked != nil {
		dst.Locked = clonePtr(delta.Locked)
	}
	if delta.Commit != nil {
		dst.Commit = clonePtr(delta.Commit)
	}
	if delta.ControllerVersion != nil {
		dst.ControllerVersion = clonePtr(delta.ControllerVersion)
	}
	if delta.FirmwareCommit != nil {
		dst.FirmwareCommit = clonePtr(delta.FirmwareCommit)
	}
	if delta.FirmwareVersion != nil {
		dst.FirmwareVersion = clonePtr(delta.FirmwareVersion)
	}
	if delta.NodeName != nil {
		dst.NodeName = clonePtr(delta.NodeName)
	}
	if delta.PrivateIP != nil {
		dst.PrivateIP = clonePtr(delta.PrivateIP)
	}
	if delta.SyncStatus != nil {
		dst.SyncStatus = clonePtr(delta.SyncStatus)
	}
	if delta.Target != nil {
		dst.Target = clonePtr(delta.Target)
	}
	if delta.Env != nil {
		dst.Env = clonePtr(delta.Env)
	}
	if delta.Uptime != nil {
		dst.Uptime = clonePtr(delta.Uptime)
	}
	if delta.MemoryUsage != nil {
		dst.MemoryUsage = clonePtr(delta.MemoryUsage)
	}
	if delta.DiskUsage != nil {
		dst.DiskUsage = clonePtr(delta.DiskUsage)
	}
	if delta.CPUUsage != nil {
		dst.CPUUsage = clonePtr(delta.CPUUsage)
	}
	if delta.SocTemp != nil {
		dst.SocTemp = clonePtr(delta.SocTemp)
	}
	if delta.WifiLevel != nil {
		dst.WifiLevel = clonePtr(delta.WifiLevel)
	}
	if delta.UpdateAvailable != nil {
		dst.UpdateAvailable = clonePtr(delta.UpdateAvailable)
	}
	if delta.Throttled != nil {
		dst.Throttled = clonePtr(delta.Throttled)
	}
}

func mergeJob(dst *JobProgress, delta JobProgress) {
	if delta.Unit != "" {
		dst.Unit = delta.Unit
	}
	if delta.Status != "" {
		dst.Status = delta.Status
	}
	if delta.Percent != nil {
		dst.Percent = clonePtr(delta.Percent)
	}
	if delta.Bytes != nil {
		dst.Bytes = clonePtr(delta.Bytes)
	}
	if delta.Type != nil {
		dst.Type = clonePtr(delta.Type)
	}
	if delta.FileType != nil {
		dst.FileType = clonePtr(delta.FileType)
	}
	if delta.UpdatedAt != nil {
		dst.UpdatedAt = clonePtr(delta.UpdatedAt)
	}
}

func mergeAlert(dst *Alert, delta Alert) {
	if delta.ID != nil {
		dst.ID = clonePtr(delta.ID)
	}
	if delta.CreatedAt != nil {
		dst.CreatedAt = clonePtr(delta.CreatedAt)
	}
	if delta.ProblemTag != "" {
		dst.ProblemTag = delta.ProblemTag
	}
	if delta.Priority != nil {
		dst.Priority = clonePtr(delta.Priority)
	}
	if delta.Slug != "" {
		dst.Slug = delta.Slug
	}
	if delta.UUID != "" {
		dst.UUID = delta.UUID
	}
}
