package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/embracingthegirlchild/site/internal/config"
)

// Local writes files below the media root served at /media/.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Name() string { return config.BackendLocal }

func (l *Local) Root() string { return l.root }

func (l *Local) Save(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := normalizeKey(obj.Key)
	if key == "" {
		return "", errors.New("empty object key")
	}

	target := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if !obj.Overwrite {
		for exists(target) {
			key = withSuffix(normalizeKey(obj.Key))
			target = filepath.Join(l.root, filepath.FromSlash(key))
		}
	}
	if err := os.WriteFile(target, obj.Data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return key, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
