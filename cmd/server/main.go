package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchparty/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	uploadDir = configVar[string]{
		envKey:       "SERVER_UPLOAD_DIR",
		flagKey:      "upload-dir",
		defaultValue: "/var/lib/watchparty/uploads",
	}
	maxUploadMb = configVar[int]{
		envKey:       "SERVER_MAX_UPLOAD_MB",
		flagKey:      "max-upload-mb",
		defaultValue: 512,
	}
	typingTimeoutMs = configVar[int]{
		envKey:       "SERVER_TYPING_TIMEOUT_MS",
		flagKey:      "typing-timeout-ms",
		defaultValue: 1500,
	}
	messageMaxLength = configVar[int]{
		envKey:       "SERVER_MESSAGE_MAX_LENGTH",
		flagKey:      "message-max-length",
		defaultValue: 2000,
	}
	pollOptionsLimit = configVar[int]{
		envKey:       "SERVER_POLL_OPTIONS_LIMIT",
		flagKey:      "poll-options-limit",
		defaultValue: 5,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(uploadDir.flagKey, uploadDir.defaultValue, "Directory for uploaded videos and chat assets")
	pflag.Int(maxUploadMb.flagKey, maxUploadMb.defaultValue, "Maximum upload size in megabytes")
	pflag.Int(typingTimeoutMs.flagKey, typingTimeoutMs.defaultValue, "Typing indicator expiry in milliseconds")
	pflag.Int(messageMaxLength.flagKey, messageMaxLength.defaultValue, "Maximum chat message length in bytes")
	pflag.Int(pollOptionsLimit.flagKey, pollOptionsLimit.defaultValue, "Maximum number of options per poll")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(uploadDir.flagKey, uploadDir.envKey)
	viper.BindEnv(maxUploadMb.flagKey, maxUploadMb.envKey)
	viper.BindEnv(typingTimeoutMs.flagKey, typingTimeoutMs.envKey)
	viper.BindEnv(messageMaxLength.flagKey, messageMaxLength.envKey)
	viper.BindEnv(pollOptionsLimit.flagKey, pollOptionsLimit.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(uploadDir.flagKey, uploadDir.defaultValue)
	viper.SetDefault(maxUploadMb.flagKey, maxUploadMb.defaultValue)
	viper.SetDefault(typingTimeoutMs.flagKey, typingTimeoutMs.defaultValue)
	viper.SetDefault(messageMaxLength.flagKey, messageMaxLength.defaultValue)
	viper.SetDefault(pollOptionsLimit.flagKey, pollOptionsLimit.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		UploadDir:       viper.GetString(uploadDir.flagKey),
		MaxUploadMb:     viper.GetInt(maxUploadMb.flagKey),
		TypingTimeoutMs: viper.GetInt(typingTimeoutMs.flagKey),
		MessageMaxLen:   viper.GetInt(messageMaxLength.flagKey),
		PollOptionsMax:  viper.GetInt(pollOptionsLimit.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
