package state

// Deep-copy helpers. Snapshots handed to callers must share no memory
// with the store's live tree, so every map and pointer is cloned.

// clonePtr returns a copy of the pointed-to value, or nil.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// clonePtrMap copies a map whose values are pointers.
func clonePtrMap[K comparable, V any](m map[K]*V) map[K]*V {
	if m == nil {
		return nil
	}
	out := make(map[K]*V, len(m))
	for k, v := range m {
		out[k] = clonePtr(v)
	}
	return out
}

// cloneMap copies a map whose values contain no pointers.
func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Copy returns a deep copy of the tree. Copying a nil tree returns nil.
func (t *Tree) Copy() *Tree {
	if t == nil {
		return nil
	}

	out := &Tree{
		McuParams:             clonePtrMap(t.McuParams),
		LocationData:          t.LocationData.copy(),
		Configuration:         clonePtr(t.Configuration).copyPointers(),
		InformationalSettings: clonePtr(t.InformationalSettings).copyPointers(),
		ProcessInfo:           t.ProcessInfo.copy(),
		GpioRegistry:          cloneMap(t.GpioRegistry),
	}

	if t.Pins != nil {
		out.Pins = make(Pins, len(t.Pins))
		for k, v := range t.Pins {
			out.Pins[k] = v.copy()
		}
	}
	if t.UserEnv != nil {
		out.UserEnv = clonePtrMap(t.UserEnv)
	}
	if t.Jobs != nil {
		out.Jobs = make(Jobs, len(t.Jobs))
		for k, v := range t.Jobs {
			out.Jobs[k] = v.copy()
		}
	}
	if t.Alerts != nil {
		out.Alerts = make(Alerts, len(t.Alerts))
		for k, v := range t.Alerts {
			out.Alerts[k] = v.copy()
		}
	}

	return out
}

func (p PinState) copy() PinState {
	return PinState{
		Mode:  clonePtr(p.Mode),
		Value: clonePtr(p.Value),
	}
}

func (a *AxisValues) copy() *AxisValues {
	if a == nil {
		return nil
	}
	return &AxisValues{
		X: clonePtr(a.X),
		Y: clonePtr(a.Y),
		Z: clonePtr(a.Z),
	}
}

func (l *LocationData) copy() *LocationData {
	if l == nil {
		return nil
	}
	return &LocationData{
		Position:       l.Position.copy(),
		ScaledEncoders: l.ScaledEncoders.copy(),
		RawEncoders:    l.RawEncoders.copy(),
	}
}

// copyPointers re-clones the pointer fields of a shallow-copied
// Configuration so the copy shares nothing with the original.
func (c *Configuration) copyPointers() *Configuration {
	if c == nil {
		return nil
	}
	c.ArduinoDebugMessages = clonePtr(c.ArduinoDebugMessages)
	c.AutoSync = clonePtr(c.AutoSync)
	c.BetaOptIn = clonePtr(c.BetaOptIn)
	c.DisableFactoryReset = clonePtr(c.DisableFactoryReset)
	c.FirmwareHardware = clonePtr(c.FirmwareHardware)
	c.FirmwareInputLog = clonePtr(c.FirmwareInputLog)
	c.FirmwareOutputLog = clonePtr(c.FirmwareOutputLog)
	c.FwAutoUpdate = clonePtr(c.FwAutoUpdate)
	c.NetworkNotFoundTimer = clonePtr(c.NetworkNotFoundTimer)
	c.OsAutoUpdate = clonePtr(c.OsAutoUpdate)
	c.SafeHeight = clonePtr(c.SafeHeight)
	c.SequenceBodyLog = clonePtr(c.SequenceBodyLog)
	c.SequenceCompleteLog = clonePtr(c.SequenceCompleteLog)
	c.SequenceInitLog = clonePtr(c.SequenceInitLog)
	c.SoilHeight = clonePtr(c.SoilHeight)
	return c
}

// copyPointers re-clones the pointer fields of a shallow-copied
// InformationalSettings.
func (i *InformationalSettings) copyPointers() *InformationalSettings {
	if i == nil {
		return nil
	}
	i.Busy = clonePtr(i.Busy)
	i.Locked = clonePtr(i.Locked)
	i.Commit = clonePtr(i.Commit)
	i.ControllerVersion = clonePtr(i.ControllerVersion)
	i.FirmwareCommit = clonePtr(i.FirmwareCommit)
	i.FirmwareVersion = clonePtr(i.FirmwareVersion)
	i.NodeName = clonePtr(i.NodeName)
	i.PrivateIP = clonePtr(i.PrivateIP)
	i.SyncStatus = clonePtr(i.SyncStatus)
	i.Target = clonePtr(i.Target)
	i.Env = clonePtr(i.Env)
	i.Uptime = clonePtr(i.Uptime)
	i.MemoryUsage = clonePtr(i.MemoryUsage)
	i.DiskUsage = clonePtr(i.DiskUsage)
	i.CPUUsage = clonePtr(i.CPUUsage)
	i.SocTemp = clonePtr(i.SocTemp)
	i.WifiLevel = clonePtr(i.WifiLevel)
	i.UpdateAvailable = clonePtr(i.UpdateAvailable)
	i.Throttled = clonePtr(i.Throttled)
	return i
}

func (j JobProgress) copy() JobProgress {
	j.Percent = clonePtr(j.Percent)
	j.Bytes = clonePtr(j.Bytes)
	j.Type = clonePtr(j.Type)
	j.FileType = clonePtr(j.FileType)
	j.UpdatedAt = clonePtr(j.UpdatedAt)
	return j
}

func (a Alert) copy() Alert {
	a.ID = clonePtr(a.ID)
	a.CreatedAt = clonePtr(a.CreatedAt)
	a.Priority = clonePtr(a.Priority)
	return a
}

func (p *ProcessInfo) copy() *ProcessInfo {
	if p == nil {
		return nil
	}
	out := &ProcessInfo{}
	if p.Farmwares != nil {
		out.Farmwares = make(map[string]FarmwareManifest, len(p.Farmwares))
		for k, v := range p.Farmwares {
			out.Farmwares[k] = v.copy()
		}
	}
	return out
}

func (m FarmwareManifest) copy() FarmwareManifest {
	out := FarmwareManifest{}
	if m.Legacy != nil {
		legacy := *m.Legacy
		legacy.MinOsVersionMajor = clonePtr(legacy.MinOsVersionMajor)
		if legacy.Args != nil {
			legacy.Args = append([]string(nil), legacy.Args...)
		}
		if legacy.Config != nil {
			legacy.Config = append([]ManifestConfig(nil), legacy.Config...)
		}
		out.Legacy = &legacy
	}
	if m.V2 != nil {
		v2 := *m.V2
		v2.Config = cloneMap(v2.Config)
		out.V2 = &v2
	}
	return out
}
