package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug                    bool   `envconfig:"debug"`
	Port                     int    `envconfig:"port"`
	Env                      string `envconfig:"env"`
	BaseUrl                  string `envconfig:"base_url"`
	Host                     string `envconfig:"host"`
	PostgresHost             string `envconfig:"postgres_host"`
	PostgresUser             string `envconfig:"postgres_user"`
	PostgresDB               string `envconfig:"postgres_db"`
	PostgresPort             int    `envconfig:"postgres_port"`
	PostgresPassword         string `envconfig:"postgres_password"`
	JWTSecret                string `envconfig:"jwt_secret"`
	OpenAIAPIKey             string `envconfig:"openai_api_key"`
	OpenAIBaseURL            string `envconfig:"openai_base_url"`
	CompletionModel          string `envconfig:"completion_model"`
	TranscriptionModel       string `envconfig:"transcription_model"`
	MailgunApiKey            string `envconfig:"mg_public_api_key"`
	MgDomain                 string `envconfig:"mg_domain"`
	MgEmailFrom              string `envconfig:"email_from"`
	AwsBucket                string `envconfig:"aws_bucket"`
	AwsRegion                string `envconfig:"aws_region"`
	SnapshotDir              string `envconfig:"snapshot_dir"`
	AccessControlAllowOrigin string `envconfig:"access_control_allow_origin"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("carescribe", c)
	if err != nil {
		return nil, err
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "./data/drafts"
	}
	return c, nil
}
