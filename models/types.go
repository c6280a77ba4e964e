package models

// ID is a NovelAI diffusion model identifier.
type ID string

const (
	V45Full    ID = "nai-diffusion-4-5-full"
	V45Curated ID = "nai-diffusion-4-5-curated"
	V4Full     ID = "nai-diffusion-4-full"
	V4Curated  ID = "nai-diffusion-4-curated"
	V3Anime    ID = "nai-diffusion-3"
	V3Furry    ID = "nai-diffusion-furry-v3"
)

// DefaultModel is used by /draw when no model option is given.
const DefaultModel = V4Full

// All lists the supported models in display order.
var All = []ID{V45Full, V45Curated, V4Full, V4Curated, V3Anime, V3Furry}

var displayNames = map[ID]string{
	V45Full:    "🌟 V4.5 Full",
	V45Curated: "✨ V4.5 Curated",
	V4Full:     "🎯 V4 Full",
	V4Curated:  "📌 V4 Curated",
	V3Anime:    "🎨 V3 Anime",
	V3Furry:    "🐺 V3 Furry",
}

// Samplers accepted by the image API.
var Samplers = []string{
	"k_euler",
	"k_euler_ancestral",
	"k_dpmpp_2s_ancestral",
	"k_dpmpp_2m",
	"k_dpmpp_sde",
	"ddim_v3",
}

// Defaults are the generation parameters used when the user leaves them unset.
type Defaults struct {
	Scale   float64
	Steps   int
	Sampler string
	SMEA    bool
	SMEADyn bool
}

var defaults = map[ID]Defaults{
	V45Full:    {Scale: 5, Steps: 28, Sampler: "k_euler_ancestral"},
	V45Curated: {Scale: 5, Steps: 28, Sampler: "k_euler_ancestral"},
	V4Full:     {Scale: 7, Steps: 28, Sampler: "k_euler_ancestral"},
	V4Curated:  {Scale: 7, Steps: 28, Sampler: "k_euler_ancestral"},
	V3Anime:    {Scale: 5, Steps: 28, Sampler: "k_euler_ancestral", SMEA: true, SMEADyn: true},
	V3Furry:    {Scale: 5, Steps: 28, Sampler: "k_euler_ancestral", SMEA: true, SMEADyn: true},
}

// Known reports whether id is one of the enumerated models.
func Known(id string) bool {
	_, ok := displayNames[ID(id)]
	return ok
}

// DisplayName returns the human readable label, or the raw id when unknown.
func DisplayName(id string) string {
	if name, ok := displayNames[ID(id)]; ok {
		return name
	}
	return id
}

// DefaultsFor returns the model defaults. Unknown ids get the legacy
// defaults, matching FamilyOf.
func DefaultsFor(id string) Defaults {
	if d, ok := defaults[ID(id)]; ok {
		return d
	}
	return defaults[V3Anime]
}

// IsSampler reports whether name is a supported sampler.
func IsSampler(name string) bool {
	for _, s := range Samplers {
		if s == name {
			return true
		}
	}
	return false
}
