package pipeline

import "strings"

var (
	greetings = map[string]bool{"hi": true, "hello": true, "hey": true}
	farewells = map[string]bool{"bye": true, "goodbye": true, "see you": true}
)

// scopeTerms gate which questions reach the model. Matching is by substring,
// so short terms like "ar" also hit words such as "start".
var scopeTerms = []string{
	"ar", "vr", "xr", "unity", "unreal", "openxr", "oculus", "hololens",
	"mixed reality", "shader", "meta quest", "pico", "steamvr",
}

const (
	greetingDetails     = "👋 Hi, how can I help with AR/VR today?"
	farewellDetails     = "👋 Goodbye, happy coding in XR!"
	notSupportedDetails = "❌ Sorry, I can only assist with AR/VR development topics like Unity XR, " +
		"Unreal Engine, OpenXR, Mixed Reality, and shaders."
)

// shortCircuit is an answer decided without calling the model.
type shortCircuit struct {
	outcome string
	title   string
	details string
}

func matchIntent(normalized string) (shortCircuit, bool) {
	switch {
	case greetings[normalized]:
		return shortCircuit{OutcomeGreeting, "Greeting", greetingDetails}, true
	case farewells[normalized]:
		return shortCircuit{OutcomeFarewell, "Farewell", farewellDetails}, true
	case !inScope(normalized):
		return shortCircuit{OutcomeNotSupported, "Not Supported", notSupportedDetails}, true
	}
	return shortCircuit{}, false
}

func inScope(normalized string) bool {
	for _, term := range scopeTerms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}
