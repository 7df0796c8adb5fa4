package classifier

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  Topic
	}{
		{"Unity OpenXR teleport", TopicUnity},
		{"Unreal Blueprint multiplayer", TopicUnreal},
		{"HLSL occlusion shader", TopicShader},
		{"what is AR", TopicGeneral},
		{"", TopicGeneral},
		{"c# and c++", TopicUnity},
		{"UE5 depth buffer", TopicUnreal},
		{"XR Interaction toolkit setup", TopicUnity},
		{"GLSL noise", TopicShader},
	}

	for _, tt := range tests {
		if got := Classify(tt.query); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestContextAndTarget(t *testing.T) {
	t.Parallel()

	if got := Context("unreal replication"); got != "Unreal" {
		t.Fatalf("Context = %q, want Unreal", got)
	}
	if got := Context("hololens spatial anchors"); got != "General" {
		t.Fatalf("Context = %q, want General", got)
	}
	if got := Target("Shader"); got != "Shader Developer" {
		t.Fatalf("Target = %q", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	q := "teleport in unreal with a custom shader"
	first := Classify(q)
	for i := 0; i < 10; i++ {
		if got := Classify(q); got != first {
			t.Fatalf("Classify changed result: %q then %q", first, got)
		}
	}
	if first != TopicUnity {
		t.Fatalf("expected unity to win priority, got %q", first)
	}
}
