package health

import "strings"

// CheckKind identifies one diagnostic dimension.
type CheckKind string

const (
	// KindDiskCapacity checks free space on every fixed volume.
	KindDiskCapacity CheckKind = "disk_capacity"
	// KindServiceState checks the run state of monitored services.
	KindServiceState CheckKind = "service_state"
	// KindEventLogVolume counts error events over a trailing window.
	KindEventLogVolume CheckKind = "event_log_volume"
	// KindUptime measures time since last boot.
	KindUptime CheckKind = "uptime"
	// KindPendingUpdates counts pending updates by severity.
	KindPendingUpdates CheckKind = "pending_updates"
	// KindUtilization samples CPU, memory and page-file utilization.
	KindUtilization CheckKind = "utilization"
	// KindNetworkConfig inspects adapter addressing, gateways and DNS.
	KindNetworkConfig CheckKind = "network_config"
)

var allKinds = []CheckKind{
	KindDiskCapacity,
	KindServiceState,
	KindEventLogVolume,
	KindUptime,
	KindPendingUpdates,
	KindUtilization,
	KindNetworkConfig,
}

// AllCheckKinds returns every check kind in declaration order.
func AllCheckKinds() []CheckKind {
	out := make([]CheckKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a member of the closed set.
func (k CheckKind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the kind identifier.
func (k CheckKind) String() string {
	return string(k)
}

// ParseCheckKind validates s as a check kind.
func ParseCheckKind(s string) (CheckKind, error) {
	k := CheckKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &ConfigError{Field: "check", Value: s, Err: ErrUnknownCheckKind}
	}
	return k, nil
}

// Profile selects how deep a run inspects each host.
type Profile string

const (
	// ProfileQuick runs only disk and service checks.
	ProfileQuick Profile = "quick"
	// ProfileStandard adds event log, uptime and utilization checks.
	ProfileStandard Profile = "standard"
	// ProfileComprehensive adds pending updates and network configuration.
	ProfileComprehensive Profile = "comprehensive"
)

// Profile table. Each level extends the previous one, which keeps
// quick ⊆ standard ⊆ comprehensive.
var (
	quickChecks = []CheckKind{
		KindDiskCapacity,
		KindServiceState,
	}
	standardChecks = append(append([]CheckKind{}, quickChecks...),
		KindEventLogVolume,
		KindUptime,
		KindUtilization,
	)
	comprehensiveChecks = append(append([]CheckKind{}, standardChecks...),
		KindPendingUpdates,
		KindNetworkConfig,
	)
)

// Profiles returns the known profiles from shallowest to deepest.
func Profiles() []Profile {
	return []Profile{ProfileQuick, ProfileStandard, ProfileComprehensive}
}

// ParseProfile validates s as a profile name. The empty string selects
// ProfileStandard.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProfileStandard, nil
	case ProfileQuick, ProfileStandard, ProfileComprehensive:
		return p, nil
	default:
		return "", &ConfigError{Field: "profile", Value: s, Err: ErrInvalidProfile}
	}
}

// Valid reports whether p is a known profile.
func (p Profile) Valid() bool {
	switch p {
	case ProfileQuick, ProfileStandard, ProfileComprehensive:
		return true
	default:
		return false
	}
}

// String returns the profile name.
func (p Profile) String() string {
	return string(p)
}

// Checks resolves p to its ordered set of check kinds. The returned slice is
// a copy and may be modified by the caller. An invalid profile resolves to
// nil; profiles are validated before resolution.
func (p Profile) Checks() []CheckKind {
	var src []CheckKind
	switch p {
	case ProfileQuick:
		src = quickChecks
	case ProfileStandard:
		src = standardChecks
	case ProfileComprehensive:
		src = comprehensiveChecks
	default:
		return nil
	}
	out := make([]CheckKind, len(src))
	copy(out, src)
	return out
}

// Includes reports whether p runs checks of kind k.
func (p Profile) Includes(k CheckKind) bool {
	for _, c := range p.Checks() {
		if c == k {
			return true
		}
	}
	return false
}
