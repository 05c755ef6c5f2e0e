// Package config provides configuration loading for protus.
//
// A single Config is read at process start with cleanenv (after optional
// .env files are loaded with godotenv) and handed to every component:
//
//	cfg, err := config.Load(".env", ".env.local")
//	if err != nil {
//		slog.Error("Failed to load config", "err", err)
//		os.Exit(1)
//	}
package config
