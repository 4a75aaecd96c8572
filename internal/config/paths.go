package config

import (
	"path/filepath"
	"strings"
)

// LogsDir, StaticDir and MediaDir resolve the runtime directories against
// the working directory.
func (c *AppConfig) LogsDir() string { return resolvePath(c.Paths.Logs, defaultLogsDir) }

func (c *AppConfig) StaticDir() string { return resolvePath(c.Paths.Static, defaultStaticDir) }

func (c *AppConfig) MediaDir() string { return resolvePath(c.Paths.Media, defaultMediaDir) }

// SourceDir is where the media migration looks for original files. It
// defaults to the post_images folder of the local media root.
func (c *AppConfig) SourceDir() string {
	if strings.TrimSpace(c.Paths.Source) != "" {
		return resolvePath(c.Paths.Source, "")
	}
	return filepath.Join(c.MediaDir(), "post_images")
}

func resolvePath(raw string, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if abs, err := filepath.Abs(target); err == nil {
		return abs
	}
	return filepath.Clean(target)
}
