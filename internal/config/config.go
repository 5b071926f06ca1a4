package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultCredentialsFile is picked up from the working directory when no
// other credential source is configured.
const DefaultCredentialsFile = "firebase-key.json"

var ErrMissingEmail = errors.New("email is required: pass it as an argument, --email or ADMIN_EMAIL")

type Config struct {
	// Email is the account that receives (or loses) the admin claim.
	Email string `mapstructure:"email"`

	CredentialsFile string `mapstructure:"credentials_file"`
	// CredentialsJSON is raw service account JSON; used when no file is set.
	CredentialsJSON string `mapstructure:"credentials_json"`
	ProjectID       string `mapstructure:"project_id"`

	// MergeClaims keeps existing custom claims when granting admin.
	// Off by default: Firebase replaces the whole claims object.
	MergeClaims bool `mapstructure:"merge_claims"`

	AuditCollection string `mapstructure:"audit_collection"`
	LogLevel        string `mapstructure:"log_level"`

	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from defaults and environment variables.
// Flags in fs, when given, override both; see flagKeys for the names.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("merge_claims", false)
	v.SetDefault("audit_collection", "")

	_ = v.BindEnv("email", "ADMIN_EMAIL")
	_ = v.BindEnv("credentials_file", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_CREDENTIALS_FILE")
	_ = v.BindEnv("credentials_json", "FIREBASE_SERVICE_ACCOUNT_JSON")
	// FIREBASE_PROJECT_ID または GOOGLE_CLOUD_PROJECT を読む
	_ = v.BindEnv("project_id", "FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	_ = v.BindEnv("merge_claims", "ADMIN_MERGE_CLAIMS")
	_ = v.BindEnv("audit_collection", "ADMIN_AUDIT_COLLECTION")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("allowed_origins", "ALLOWED_ORIGINS")

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			// Flag defaults must not shadow values from the environment.
			if !ok || !f.Changed {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return Config{}, bindErr
		}
	}

	cfg := Config{
		Email:           strings.TrimSpace(v.GetString("email")),
		CredentialsFile: strings.TrimSpace(v.GetString("credentials_file")),
		CredentialsJSON: strings.TrimSpace(v.GetString("credentials_json")),
		ProjectID:       strings.TrimSpace(v.GetString("project_id")),
		MergeClaims:     v.GetBool("merge_claims"),
		AuditCollection: strings.TrimSpace(v.GetString("audit_collection")),
		LogLevel:        strings.TrimSpace(v.GetString("log_level")),
		Port:            strings.TrimSpace(v.GetString("port")),
		AllowedOrigins:  splitList(v.GetStringSlice("allowed_origins")),
	}

	if cfg.CredentialsFile == "" {
		if _, err := os.Stat(DefaultCredentialsFile); err == nil {
			cfg.CredentialsFile = DefaultCredentialsFile
		}
	}

	return cfg, nil
}

// Validate checks the fields the grant workflow cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	return nil
}

var flagKeys = map[string]string{
	"email":           "email",
	"credentials":     "credentials_file",
	"project":         "project_id",
	"merge":           "merge_claims",
	"audit":           "audit_collection",
	"log-level":       "log_level",
	"port":            "port",
	"allowed-origins": "allowed_origins",
}

// splitList accepts both real slices and a single comma separated value,
// which is what an env var like ALLOWED_ORIGINS produces.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
