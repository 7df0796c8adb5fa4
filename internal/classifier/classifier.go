// Package classifier maps free-text questions to a coarse topic.
package classifier

import "strings"

// Topic is the lower-case topic tag.
type Topic string

// Topics in priority order.
const (
	TopicUnity   Topic = "unity"
	TopicUnreal  Topic = "unreal"
	TopicShader  Topic = "shader"
	TopicGeneral Topic = "general"
)

type rule struct {
	topic Topic
	terms []string
}

// rules are checked in order; the first topic with a matching term wins.
var rules = []rule{
	{TopicUnity, []string{"unity", "xr interaction", "teleport", "c#", "openxr"}},
	{TopicUnreal, []string{"unreal", "ue5", "blueprint", "c++", "multiplayer"}},
	{TopicShader, []string{"shader", "hlsl", "glsl", "shaderlab", "occlusion", "depth"}},
}

// Classify returns the topic for query. It never fails; unknown and empty
// queries are TopicGeneral.
func Classify(query string) Topic {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, term := range r.terms {
			if strings.Contains(q, term) {
				return r.topic
			}
		}
	}
	return TopicGeneral
}

// Context returns the capitalised display tag ("Unity", "Unreal", "Shader",
// "General") for query.
func Context(query string) string {
	return Classify(query).Display()
}

// Display returns the capitalised form of the topic.
func (t Topic) Display() string {
	switch t {
	case TopicUnity:
		return "Unity"
	case TopicUnreal:
		return "Unreal"
	case TopicShader:
		return "Shader"
	default:
		return "General"
	}
}

// Target returns the audience descriptor derived from a display context.
func Target(context string) string {
	return context + " Developer"
}
