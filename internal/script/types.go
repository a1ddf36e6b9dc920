// Package script defines the lesson script document format and its loading.
package script

// Scene type tags. A document is an ordered list of scenes; the first is
// expected to be a title scene and the last an outro scene.
const (
	TypeTitle     = "title"
	TypeContent   = "content"
	TypeOutro     = "outro"
	TypeWBTitle   = "wb-title"
	TypeWBContent = "wb-content"
	TypeWBOutro   = "wb-outro"
)

// KnownLayouts are the layouts a content scene may declare.
var KnownLayouts = []string{
	"flow-chain",
	"icon-grid",
	"definition-cards",
	"summary-row",
}

// RichVisualTypes are the visual types that count toward a content scene's
// visual richness requirement.
var RichVisualTypes = []string{
	"definition",
	"summary-card",
	"callout",
	"flow-node",
	"icon-card",
	"stat",
	"quote",
	"comparison",
	"step",
	"highlight-box",
}

// EmphasisTypes carry a scene's key message.
var EmphasisTypes = []string{"callout", "highlight-box", "quote"}

// KnownIcons is the icon catalog. Unknown icons render blank.
var KnownIcons = []string{
	"dollar", "chat", "user", "globe", "target", "star",
	"check", "x", "arrow", "lock", "calendar", "film",
	"building", "percent", "heart", "eye", "sparkle",
	"shield", "users", "trending",
}

// Visual is a single on-screen element inside a scene. Beyond the common
// fields, each visual type uses a subset of the type-specific ones.
type Visual struct {
	Type    string `json:"type"`
	Trigger string `json:"trigger,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Color   string `json:"color,omitempty"`

	// Type-specific fields.
	Term       string `json:"term,omitempty"`
	Definition string `json:"definition,omitempty"`
	Label      string `json:"label,omitempty"`
	Value      string `json:"value,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Text       string `json:"text,omitempty"`
	Desc       string `json:"desc,omitempty"`
}

// Scene is one segment of the lesson. Duration comes from the narration's
// synthesized audio when Narration is set, otherwise from DurationSeconds.
type Scene struct {
	Type            string   `json:"type"`
	Title           string   `json:"title,omitempty"`
	Heading         string   `json:"heading,omitempty"`
	Narration       string   `json:"narration,omitempty"`
	Points          []string `json:"points,omitempty"`
	Visuals         []Visual `json:"visuals,omitempty"`
	Layout          string   `json:"layout,omitempty"`
	SectionLabel    string   `json:"sectionLabel,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
}

// IsContent reports whether the scene presents narrated instructional
// material, as opposed to a title or outro scene.
func (s *Scene) IsContent() bool {
	return s.Type == TypeContent || s.Type == TypeWBContent
}

// Name returns the best human label for the scene for diagnostics.
func (s *Scene) Name() string {
	if s.Heading != "" {
		return s.Heading
	}
	if s.Title != "" {
		return s.Title
	}
	return "untitled"
}

// Document is a parsed lesson script. It is immutable once validated.
type Document struct {
	Title   string  `json:"title"`
	VoiceID string  `json:"voice_id,omitempty"`
	Scenes  []Scene `json:"scenes"`
}

// ContentScenes returns the indices of all content scenes in order.
func (d *Document) ContentScenes() []int {
	var idx []int
	for i := range d.Scenes {
		if d.Scenes[i].IsContent() {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsTitleType reports whether t is a valid opening scene type.
func IsTitleType(t string) bool { return t == TypeTitle || t == TypeWBTitle }

// IsOutroType reports whether t is a valid closing scene type.
func IsOutroType(t string) bool { return t == TypeOutro || t == TypeWBOutro }

// ValidLayout reports whether layout is in the known layout set.
func ValidLayout(layout string) bool {
	for _, l := range KnownLayouts {
		if l == layout {
			return true
		}
	}
	return false
}

// RichVisual reports whether t counts as a rich visual type.
func RichVisual(t string) bool {
	for _, r := range RichVisualTypes {
		if r == t {
			return true
		}
	}
	return false
}

// EmphasisVisual reports whether t is an emphasis visual type.
func EmphasisVisual(t string) bool {
	for _, e := range EmphasisTypes {
		if e == t {
			return true
		}
	}
	return false
}

// KnownIcon reports whether name is in the icon catalog.
func KnownIcon(name string) bool {
	for _, i := range KnownIcons {
		if i == name {
			return true
		}
	}
	return false
}
