// ABOUTME: Parses user-supplied target identifiers and matches them against sessions and devices.
// ABOUTME: A target can be a PID, a process name, a device GUID or ID, a device name, or a session id.

package target

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/777genius/vccli/internal/volume"
)

// Target is a parsed identifier
type Target struct {
	Raw string

	PID    uint32
	HasPID bool

	GUID    uuid.UUID
	HasGUID bool
}

// Parse classifies an identifier. Every target keeps its raw form for name matching.
func Parse(identifier string) Target {
	t := Target{Raw: strings.TrimSpace(identifier)}

	if pid, err := strconv.ParseUint(t.Raw, 10, 32); err == nil {
		t.PID = uint32(pid)
		t.HasPID = true
		return t
	}

	if id, ok := endpointGUID(t.Raw); ok {
		t.GUID = id
		t.HasGUID = true
	}
	return t
}

// IsEmpty reports whether no identifier was given
func (t Target) IsEmpty() bool {
	return t.Raw == ""
}

func (t Target) String() string {
	return t.Raw
}

// endpointGUID extracts the device GUID from a bare GUID, a braced GUID,
// or a full endpoint ID such as "{0.0.0.00000000}.{b3f8fa53-...}".
func endpointGUID(s string) (uuid.UUID, bool) {
	if s == "" {
		return uuid.UUID{}, false
	}
	if idx := strings.LastIndex(s, "}.{"); idx != -1 {
		s = s[idx+2:]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// CompareProcessName compares two process names case-insensitively, ignoring extensions.
func CompareProcessName(l, r string) bool {
	return strings.EqualFold(stripExt(l), stripExt(r))
}

func stripExt(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// MatchSession reports whether s is identified by t
func (t Target) MatchSession(s *volume.Session) bool {
	if t.IsEmpty() {
		return false
	}
	if t.HasPID {
		return s.Info.PID == t.PID
	}
	info := s.Info
	if info.ProcessName != "" && CompareProcessName(info.ProcessName, t.Raw) {
		return true
	}
	if info.DisplayName != "" && strings.EqualFold(info.DisplayName, t.Raw) {
		return true
	}
	return equalNonEmpty(info.SessionIdentifier, t.Raw) || equalNonEmpty(info.InstanceIdentifier, t.Raw)
}

// MatchEndpoint reports whether e is identified by t
func (t Target) MatchEndpoint(e *volume.Endpoint) bool {
	if t.IsEmpty() || t.HasPID {
		return false
	}
	info := e.Info
	if equalNonEmpty(info.ID, t.Raw) {
		return true
	}
	if t.HasGUID {
		if id, ok := endpointGUID(info.ID); ok && id == t.GUID {
			return true
		}
	}
	return equalNonEmpty(info.Name, t.Raw) || equalNonEmpty(info.Description, t.Raw)
}

func equalNonEmpty(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
