package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store locates a ripple database on disk.
type Store struct {
	Root   string
	DBPath string
}

// DiscoverStore walks up from startDir to find a .ripple directory.
func DiscoverStore(startDir string) (Store, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Store{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Store{}, err
	}

	for {
		rippleDir := filepath.Join(current, ".ripple")
		info, err := os.Stat(rippleDir)
		if err == nil && info.IsDir() {
			dbPath := filepath.Join(rippleDir, "chat.db")
			if _, err := os.Stat(dbPath); err != nil {
				return Store{}, fmt.Errorf("ripple database not found. Run 'ripple init' first")
			}
			return Store{Root: current, DBPath: dbPath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Store{}, fmt.Errorf("not initialized. Run 'ripple init' first")
		}
		current = parent
	}
}

// InitStore initializes a new ripple store at dir.
func InitStore(dir string, force bool) (Store, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Store{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Store{}, err
	}

	rippleDir := filepath.Join(root, ".ripple")
	dbPath := filepath.Join(rippleDir, "chat.db")

	if info, err := os.Stat(rippleDir); err == nil && info.IsDir() && !force {
		if _, err := os.Stat(dbPath); err == nil {
			return Store{}, fmt.Errorf("already initialized. Use --force to reinitialize")
		}
	}

	if err := os.MkdirAll(rippleDir, 0o755); err != nil {
		return Store{}, err
	}

	return Store{Root: root, DBPath: dbPath}, nil
}
