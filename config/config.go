package config

import (
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Application config structure
type AppConfig struct {
	Name        string `mapstructure:"service_name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,oneof=debug release"`

	// ApiKey is the inference-provider secret. It is deliberately NOT
	// required: the process boots without it so the health endpoint can
	// report the misconfiguration, but all proxying is refused.
	ApiKey string `mapstructure:"api_key"`

	// InferenceHost overrides the remote inference service base URL.
	InferenceHost string `mapstructure:"inference_host" validate:"required,url"`

	// WorkflowSpecPath is the on-disk workflow document served to clients.
	WorkflowSpecPath string `mapstructure:"workflow_spec_path" validate:"required"`
}

func (c *AppConfig) IsDebug() bool {
	return strings.EqualFold(c.Environment, "debug")
}

func (c *AppConfig) HasApiKey() bool {
	return strings.TrimSpace(c.ApiKey) != ""
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env varaibles.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	v.SetDefault("SERVICE_NAME", "fitcoach")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("ENVIRONMENT", "debug")

	v.SetDefault("API_KEY", "")
	v.SetDefault("INFERENCE_HOST", "https://api.roboflow.com")
	v.SetDefault("WORKFLOW_SPEC_PATH", "static/workflows/back-squat.json")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
