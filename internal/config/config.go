package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "tabnote"

// Preview renderers.
const (
	RendererGlamour = "glamour"
	RendererHTML    = "html"
)

// Config is the typed view of the resolved settings.
type Config struct {
	DataDir       string
	StorageURL    string
	NotesKey      string
	ActiveKey     string
	ThemeKey      string
	AutosaveDelay time.Duration
	DeleteEmpty   bool
	Renderer      string
	WordWrap      int
	LogLevel      string
	LogFile       string
	Keys          map[string][]string
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, appName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// TABNOTE_STORAGE_URL and friends
	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// FromViper snapshots v into a Config, resolving derived paths.
func FromViper(v *viper.Viper) Config {
	keys := make(map[string][]string)
	for _, o := range GetConfigOptions() {
		if !strings.HasPrefix(o.Key, "keys.") {
			continue
		}
		keys[strings.TrimPrefix(o.Key, "keys.")] = splitList(v, o.Key)
	}
	return Config{
		DataDir:       expandHome(v.GetString("data_dir")),
		StorageURL:    ResolveStorageURL(v),
		NotesKey:      v.GetString("storage.notes_key"),
		ActiveKey:     v.GetString("storage.active_key"),
		ThemeKey:      v.GetString("storage.theme_key"),
		AutosaveDelay: v.GetDuration("editor.autosave_delay"),
		DeleteEmpty:   v.GetBool("editor.delete_empty"),
		Renderer:      strings.ToLower(strings.TrimSpace(v.GetString("preview.renderer"))),
		WordWrap:      v.GetInt("preview.word_wrap"),
		LogLevel:      v.GetString("log.level"),
		LogFile:       ResolveLogPath(v),
		Keys:          keys,
	}
}

// splitList reads a string list; a plain string (env) is split on commas.
func splitList(v *viper.Viper, key string) []string {
	var raw []string
	switch x := v.Get(key).(type) {
	case string:
		raw = strings.Split(x, ",")
	case []string:
		raw = x
	default:
		raw = v.GetStringSlice(key)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/tabnote or ~/.local/share/tabnote
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, appName, "config.toml")
}

func expandHome(dir string) string {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, dir[1:])
		}
	}
	return dir
}

func dataDir(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	return expandHome(dir)
}

// ResolveStorageURL returns storage.url, defaulting to the sqlite file under data_dir.
func ResolveStorageURL(v *viper.Viper) string {
	if u := strings.TrimSpace(v.GetString("storage.url")); u != "" {
		return u
	}
	return "sqlite://" + filepath.Join(dataDir(v), appName+".db")
}

// ResolveLogPath returns log.file, defaulting to data_dir/tabnote.log.
func ResolveLogPath(v *viper.Viper) string {
	if p := strings.TrimSpace(v.GetString("log.file")); p != "" {
		return expandHome(p)
	}
	return filepath.Join(dataDir(v), appName+".log")
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/tabnote.db"},

		{Key: "storage.url", Default: "", Comment: "Storage backend: sqlite://<path> or mem://; empty uses data_dir/tabnote.db"},
		{Key: "storage.notes_key", Default: "notes", Comment: "Key holding the note collection"},
		{Key: "storage.active_key", Default: "lastActiveNote", Comment: "Key holding the last active note id"},
		{Key: "storage.theme_key", Default: "theme", Comment: "Key holding the theme preference"},

		{Key: "editor.autosave_delay", Default: "1s", Comment: "Quiet period after the last keystroke before content is saved"},
		{Key: "editor.delete_empty", Default: false, Comment: "Close a note when the external editor leaves it empty"},

		{Key: "preview.renderer", Default: RendererGlamour, Comment: "Preview pane renderer: glamour or html"},
		{Key: "preview.word_wrap", Default: 80, Comment: "Wrap width for the glamour preview"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn, error"},
		{Key: "log.file", Default: "", Comment: "Log file; empty uses data_dir/tabnote.log"},

		{Key: "keys.new", Default: []string{"ctrl+n"}, Comment: "Create a note"},
		{Key: "keys.close", Default: []string{"ctrl+w"}, Comment: "Close the active note"},
		{Key: "keys.save", Default: []string{"ctrl+s"}, Comment: "Save now"},
		{Key: "keys.rename", Default: []string{"ctrl+r"}, Comment: "Rename the active note"},
		{Key: "keys.preview", Default: []string{"ctrl+p"}, Comment: "Toggle the preview pane"},
		{Key: "keys.theme", Default: []string{"ctrl+t"}, Comment: "Toggle dark/light theme"},
		{Key: "keys.next", Default: []string{"ctrl+pgdown"}, Comment: "Next tab"},
		{Key: "keys.prev", Default: []string{"ctrl+pgup"}, Comment: "Previous tab"},
		{Key: "keys.move_right", Default: []string{"alt+pgdown"}, Comment: "Move tab right"},
		{Key: "keys.move_left", Default: []string{"alt+pgup"}, Comment: "Move tab left"},
		{Key: "keys.copy", Default: []string{"ctrl+y"}, Comment: "Copy the rendered HTML of the active note"},
		{Key: "keys.quit", Default: []string{"ctrl+q", "ctrl+c"}, Comment: "Save pending edits and quit"},
	}
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every problem in v at once.
func Validate(v *viper.Viper) error {
	var errs []error
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if u := strings.TrimSpace(v.GetString("storage.url")); u != "" &&
		!strings.HasPrefix(u, "sqlite://") && !strings.HasPrefix(u, "mem:") {
		errs = append(errs, fmt.Errorf("storage.url %q: unsupported scheme", u))
	}
	seen := map[string]string{}
	for _, k := range []string{"storage.notes_key", "storage.active_key", "storage.theme_key"} {
		name := strings.TrimSpace(v.GetString(k))
		if name == "" {
			errs = append(errs, fmt.Errorf("%s is required", k))
			continue
		}
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%s duplicates %s (%q)", k, prev, name))
		}
		seen[name] = k
	}
	if raw := v.GetString("editor.autosave_delay"); raw != "" {
		if d, err := time.ParseDuration(raw); err != nil {
			errs = append(errs, fmt.Errorf("editor.autosave_delay: %w", err))
		} else if d <= 0 {
			errs = append(errs, errors.New("editor.autosave_delay must be greater than 0"))
		}
	}
	switch r := strings.ToLower(strings.TrimSpace(v.GetString("preview.renderer"))); r {
	case RendererGlamour, RendererHTML:
	default:
		errs = append(errs, fmt.Errorf("preview.renderer must be glamour or html, got %q", r))
	}
	if v.GetInt("preview.word_wrap") < 0 {
		errs = append(errs, errors.New("preview.word_wrap must not be negative"))
	}
	if lvl := strings.ToLower(v.GetString("log.level")); !logLevels[lvl] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", lvl))
	}
	return errors.Join(errs...)
}
