// Package backend names every external service and local signal the
// orchestrator talks to, and the role each one plays in a request.
package backend

import (
	"fmt"
	"strings"
)

// ID identifies one backend or detector.
type ID string

const (
	Youdao  ID = "youdao"
	Iciba   ID = "iciba"
	Baidu   ID = "baidu"
	Tencent ID = "tencent"
	Caiyun  ID = "caiyun"
	Google  ID = "google"
	Local   ID = "local"

	Script   ID = "script"
	Lingua   ID = "lingua"
	Whatlang ID = "whatlang"
)

// ISO is the pseudo-backend whose codes are plain ISO 639-1 identifiers.
// Local detectors report ISO codes and are mapped through it.
const ISO ID = "iso"

// Role is the closed set of request kinds.
type Role int

const (
	RoleTranslation Role = iota + 1
	RoleDictionary
	RoleDetector
)

func (r Role) String() string {
	switch r {
	case RoleTranslation:
		return "translation"
	case RoleDictionary:
		return "dictionary"
	case RoleDetector:
		return "detector"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Request tags a backend with the role it is serving.
type Request struct {
	Role Role
	ID   ID
}

// Badge is the display hint a presentation layer attaches to a request.
type Badge struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color,omitempty"`
}

// Badge resolves display hints with a single switch over the role.
func (r Request) Badge() Badge {
	switch r.Role {
	case RoleTranslation:
		return Badge{
			Label: Title(r.ID) + " Translate",
			Icon:  string(r.ID) + "-translate.png",
			Color: translationColors[r.ID],
		}
	case RoleDictionary:
		return Badge{
			Label: Title(r.ID) + " Dictionary",
			Icon:  string(r.ID) + "-dictionary.png",
			Color: translationColors[r.ID],
		}
	case RoleDetector:
		return Badge{
			Label: Title(r.ID) + " Detect",
			Icon:  "detect.png",
		}
	default:
		return Badge{Label: string(r.ID)}
	}
}

var translationColors = map[ID]string{
	Youdao:  "red",
	Iciba:   "orange",
	Baidu:   "#4169E1",
	Tencent: "purple",
	Caiyun:  "green",
	Google:  "blue",
	Local:   "#408080",
}

// Title returns the display name of a backend.
func Title(id ID) string {
	switch id {
	case Youdao:
		return "Youdao"
	case Iciba:
		return "Iciba"
	case Baidu:
		return "Baidu"
	case Tencent:
		return "Tencent"
	case Caiyun:
		return "Caiyun"
	case Google:
		return "Google"
	case Local:
		return "Local"
	case Script:
		return "Script"
	case Lingua:
		return "Lingua"
	case Whatlang:
		return "Whatlang"
	default:
		return string(id)
	}
}

// Parse normalizes a configured backend name.
func Parse(raw string) ID {
	return ID(strings.ToLower(strings.TrimSpace(raw)))
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
