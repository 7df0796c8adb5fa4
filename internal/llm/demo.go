package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ashureev/codexr/internal/classifier"
	"github.com/ashureev/codexr/internal/domain"
)

const demoName = "Demo"

// Demo answers from a fixed set of sample answers keyed by topic. It needs no
// network access.
type Demo struct {
	answers map[classifier.Topic]domain.Answer
}

// NewDemo creates the offline demo provider.
func NewDemo() *Demo {
	return &Demo{answers: demoAnswers()}
}

// Name implements Provider.
func (d *Demo) Name() string { return demoName }

// Generate implements Provider. The answer is picked by classifying the raw
// query and returned as JSON, like a real model would.
func (d *Demo) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	topic := classifier.Classify(req.Query)
	answer, ok := d.answers[topic]
	if !ok {
		answer = d.answers[classifier.TopicGeneral]
	}
	answer.Context = topic.Display()
	answer.Target = classifier.Target(answer.Context)

	data, err := json.Marshal(answer.Normalize())
	if err != nil {
		return "", fmt.Errorf("encode demo answer: %w", err)
	}
	return string(data), nil
}

func demoAnswers() map[classifier.Topic]domain.Answer {
	return map[classifier.Topic]domain.Answer{
		classifier.TopicUnity: {
			Difficulty: "medium",
			Subtasks: []domain.Subtask{
				{Title: "Install XR packages", Details: "Bring in the XR tooling through the Package Manager.", Steps: []string{
					"Open Package Manager and install 'XR Interaction Toolkit'.",
					"Enable XR Plug-in Management and select OpenXR for your target.",
				}},
				{Title: "Add a teleportation rig", Details: "Wire the locomotion components into the scene.", Steps: []string{
					"Add an XR Origin (Action-based) to the scene.",
					"Add a Teleportation Area or Anchor and a Teleportation Provider.",
					"Bind the thumbstick or touchpad to the Teleport action.",
				}},
				{Title: "Configure layers and colliders", Details: "Teleport targets need physics to be hit by the ray.", Steps: []string{
					"Put teleport surfaces on a layer included in the interactor mask.",
					"Add colliders to floors and anchors.",
				}},
			},
			Snippet: &domain.Snippet{
				Language: "csharp",
				Filename: "TeleportSetup.cs",
				Code: "using UnityEngine;\nusing UnityEngine.XR.Interaction.Toolkit;\n\n" +
					"public class TeleportSetup : MonoBehaviour\n{\n" +
					"    public TeleportationProvider provider;\n" +
					"    public XRRayInteractor ray;\n\n" +
					"    void Start()\n    {\n" +
					"        if (provider == null) provider = FindObjectOfType<TeleportationProvider>();\n" +
					"        if (ray != null) ray.enableUIInteraction = false;\n" +
					"    }\n}\n",
			},
			BestPractices: []string{
				"Offer teleport and snap turn together for comfort.",
				"Test comfort settings on every target headset.",
			},
			Gotchas: []string{
				"A missing TeleportationProvider reference throws NullReferenceException.",
				"Input actions must be enabled or the teleport ray never fires.",
			},
			Docs: []domain.DocRef{
				{Title: "Unity XR Interaction Toolkit", URL: "https://docs.unity3d.com/Packages/com.unity.xr.interaction.toolkit@latest"},
				{Title: "OpenXR Plugin (Unity)", URL: "https://docs.unity3d.com/Packages/com.unity.xr.openxr@latest"},
			},
		},
		classifier.TopicUnreal: {
			Difficulty: "hard",
			Subtasks: []domain.Subtask{
				{Title: "Enable plugins and modules", Details: "Multiplayer needs an online subsystem and replication.", Steps: []string{
					"Enable an Online Subsystem (EOS or Steam) in project settings.",
					"Create a GameMode that supports multiplayer.",
				}},
				{Title: "Set up player spawning", Details: "Spawn VR pawns on the server.", Steps: []string{
					"Override ChoosePlayerStart and use dedicated PlayerState and Controller classes.",
					"Tune NetCullDistanceSquared for replicated actors.",
				}},
				{Title: "Sessions and travel", Details: "Keep map changes server authoritative.", Steps: []string{
					"Host a listen server and use seamless travel.",
					"Expose Create, Find and Join Session through Blueprints or C++ wrappers.",
				}},
			},
			Snippet: &domain.Snippet{
				Language: "cpp",
				Filename: "VRMultiplayerGameMode.cpp",
				Code: "#include \"VRMultiplayerGameMode.h\"\n#include \"GameFramework/PlayerStart.h\"\n\n" +
					"AActor* AVRMultiplayerGameMode::ChoosePlayerStart_Implementation(AController* Player)\n{\n" +
					"    return Super::ChoosePlayerStart_Implementation(Player);\n}\n",
			},
			BestPractices: []string{
				"Simulate lag and loss with net pktlag and pktloss.",
				"Prefer replicated properties over frequent RPCs.",
			},
			Gotchas: []string{
				"Mismatched engine versions break EOS and Steam subsystems.",
				"Clients cannot open maps directly; travel must start on the server.",
			},
			Docs: []domain.DocRef{
				{Title: "UE5 Networking Overview", URL: "https://docs.unrealengine.com/5.0/en-US/overview-of-networking-in-unreal-engine/"},
				{Title: "Online Subsystem (UE)", URL: "https://docs.unrealengine.com/4.27/en-US/InteractiveExperiences/Online/Subsystems/"},
			},
		},
		classifier.TopicShader: {
			Difficulty: "medium",
			Subtasks: []domain.Subtask{
				{Title: "Choose an occlusion strategy", Details: "Pick what the device can give you.", Steps: []string{
					"Use depth-based occlusion when the device exposes environment depth.",
					"Otherwise fall back to stencil or alpha masks from segmentation.",
				}},
				{Title: "Implement the depth test", Details: "Compare virtual and real depth per fragment.", Steps: []string{
					"Sample the environment depth texture.",
					"Discard fragments that are behind real-world surfaces.",
				}},
			},
			Snippet: &domain.Snippet{
				Language: "hlsl",
				Filename: "AROcclusion.hlsl",
				Code:     "float sceneDepth = SampleDepthTexture(i.uv);\nif (i.viewDepth > sceneDepth) { clip(-1); }\n",
			},
			BestPractices: []string{
				"Profile on device; the editor preview differs a lot.",
				"Expose smoothing and bias as tunables.",
			},
			Gotchas: []string{
				"Depth units and ranges differ per platform; normalise them.",
				"Raw depth is noisy over time; smooth it.",
			},
			Docs: []domain.DocRef{
				{Title: "ARCore Depth", URL: "https://developers.google.com/ar/depth/overview"},
				{Title: "ARKit Scene Depth", URL: "https://developer.apple.com/documentation/arkit/scene_depth"},
			},
		},
		classifier.TopicGeneral: {
			Difficulty: "beginner",
			Subtasks: []domain.Subtask{
				{Title: "Pick an engine and runtime", Details: "Most XR projects start from Unity or Unreal on top of OpenXR.", Steps: []string{
					"Install the engine's OpenXR plugin.",
					"Run a sample scene on the headset before writing code.",
				}},
			},
			BestPractices: []string{"Keep a steady frame rate before adding features."},
			Gotchas:       []string{"Editor play mode does not reflect on-device performance."},
			Docs: []domain.DocRef{
				{Title: "OpenXR Overview", URL: "https://www.khronos.org/openxr/"},
			},
		},
	}
}
