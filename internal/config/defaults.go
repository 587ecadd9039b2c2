package config

const (
	defaultDataDir           = "~/.local/share/ladle/videos"
	defaultLogDir            = "~/.local/share/ladle/logs"
	defaultSceneThreshold    = 0.10
	defaultFrameFormat       = "jpg"
	defaultMinClipSeconds    = 10.0
	defaultCaptionBaseURL    = "https://sonalkum-gama-it.hf.space"
	defaultCaptionTimeout    = 120
	defaultVisionBaseURL     = "https://api.openai.com/v1"
	defaultVisionModel       = "gpt-4o-mini"
	defaultVisionMaxTokens   = 100
	defaultVisionTimeout     = 60
	defaultRetryAttempts     = 3
	defaultRetryBaseSeconds  = 1
	defaultRetryMaxSeconds   = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// DefaultKnowledgeFields lists the record fields emitted when the config does
// not narrow the set. Index, segment, and transcript are always present and
// are not listed here.
var DefaultKnowledgeFields = []string{
	"procedure_description",
	"step_description",
	"food_and_kitchenware_description",
	"environment_sound_description",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Scenes: Scenes{
			Threshold:   defaultSceneThreshold,
			FrameFormat: defaultFrameFormat,
		},
		Audio: Audio{
			MinClipSeconds: defaultMinClipSeconds,
			CaptionBaseURL: defaultCaptionBaseURL,
			CaptionTimeout: defaultCaptionTimeout,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			MaxTokens:      defaultVisionMaxTokens,
			TimeoutSeconds: defaultVisionTimeout,
		},
		Knowledge: Knowledge{
			Fields: append([]string(nil), DefaultKnowledgeFields...),
		},
		Workflow: Workflow{
			RetryAttempts:    defaultRetryAttempts,
			RetryBaseSeconds: defaultRetryBaseSeconds,
			RetryMaxSeconds:  defaultRetryMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
