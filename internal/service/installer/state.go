package installer

// InstallState accumulates the wizard's answers. The env tags drive the
// generated .env file via pkg/env.MarshalEnv.
type InstallState struct {
	OllamaBaseURL   string `env:"MNEMO_OLLAMA_BASE_URL"`
	Model           string `env:"MNEMO_MODEL"`
	EnableCLI       string `env:"MNEMO_ENABLE_CLI"`
	EnableTelegram  string `env:"MNEMO_ENABLE_TELEGRAM"`
	TelegramToken   string `env:"MNEMO_TELEGRAM_TOKEN"`
	TelegramOwnerID string `env:"MNEMO_TELEGRAM_OWNER_ID"`
}

func NewInstallState() *InstallState {
	return &InstallState{}
}

func (s *InstallState) TelegramEnabled() bool {
	return s.EnableTelegram == "true"
}
