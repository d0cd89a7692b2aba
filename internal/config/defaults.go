package config

const (
	defaultBaseURL      = "https://api.siliconflow.cn/"
	defaultModel        = "deepseek-ai/DeepSeek-V3"
	defaultGenerateSize = "512x512"
	defaultTheme        = ThemeLight
	defaultConfigPath   = "~/.config/kouri/api_config.json"
	projectConfigName   = "api_config.json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Model:   defaultModel,
		ImageConfig: ImageConfig{
			GenerateSize: defaultGenerateSize,
		},
		Theme: defaultTheme,
	}
}
