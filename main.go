// Package main provides the entry point for the lessonforge CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lessonforge/lessonforge/internal/cache"
	"github.com/lessonforge/lessonforge/internal/render"
	"github.com/lessonforge/lessonforge/internal/synth"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	rootCmd = &cobra.Command{
		Use:   "lessonforge",
		Short: "Turn lesson scripts into narrated videos",
		Long: paragraph(
			fmt.Sprintf("\nValidate lesson scripts, synthesize %s narration, and drive the render engine.", keyword("word-synced")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
	}
)

// secrets are environment-only values, never written to the config file.
// A local .env file is honored before the process environment.
type secrets struct {
	APIKey string `env:"ELEVENLABS_API_KEY"`
}

func loadSecrets() (secrets, error) {
	_ = godotenv.Load()
	return env.ParseAs[secrets]()
}

// expandPath resolves a leading ~ in user-supplied paths.
func expandPath(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func scope() *gap.Scope {
	return gap.NewScope(gap.User, "lessonforge")
}

func defaultCacheDir() string {
	dir, err := scope().CacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lessonforge-cache")
	}
	return filepath.Join(dir, "audio")
}

// openCache opens the audio cache per config.
func openCache() (*cache.AudioCache, error) {
	dir := viper.GetString("cache.dir")
	if dir == "" {
		dir = defaultCacheDir()
	}
	return cache.Open(expandPath(dir),
		viper.GetInt64("cache.max_bytes"),
		viper.GetInt("cache.compression"))
}

// newSynthClient builds the synthesis client from config plus secrets.
func newSynthClient() (*synth.Client, error) {
	sec, err := loadSecrets()
	if err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return synth.NewClient(synth.Config{
		APIKey:        sec.APIKey,
		BaseURL:       viper.GetString("synthesis.base_url"),
		ModelID:       viper.GetString("synthesis.model"),
		VoiceSettings: synth.DefaultVoiceSettings(),
		Timeout:       viper.GetDuration("synthesis.timeout"),
	})
}

// newRenderer builds the subprocess renderer from config.
func newRenderer() *render.CommandRenderer {
	return render.NewCommandRenderer(
		expandPath(viper.GetString("renderer.binary")),
		viper.GetDuration("renderer.timeout"),
	)
}

func outputDir() string {
	return expandPath(viper.GetString("output_dir"))
}

func audioWorkDir() string {
	return filepath.Join(outputDir(), "audio")
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))

	viper.SetDefault("fps", 30)
	viper.SetDefault("output_dir", "out")
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_bytes", int64(1<<30))
	viper.SetDefault("cache.compression", 3)
	viper.SetDefault("renderer.binary", "lessonforge-engine")
	viper.SetDefault("renderer.timeout", 10*time.Minute)
	viper.SetDefault("synthesis.base_url", synth.DefaultBaseURL)
	viper.SetDefault("synthesis.model", synth.DefaultModelID)
	viper.SetDefault("synthesis.timeout", 60*time.Second)

	rootCmd.AddCommand(checkCmd, renderCmd, previewCmd, batchCmd, cacheCmd, configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	dirs, err := scope().ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lessonforge")}, dirs...)
	}

	if c := os.Getenv("LESSONFORGE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lessonforge")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lessonforge")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "lessonforge.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
