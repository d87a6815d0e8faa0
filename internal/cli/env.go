package cli

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar names a .env file that takes precedence over --env.
const EnvFileVar = "EASYDICT_ENV_FILE"

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
	// userConfigDir is swapped in tests.
	userConfigDir func() (string, error)
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:         value,
		defaultPath:   defaultPath,
		userConfigDir: os.UserConfigDir,
	}
}

// Load tries, in order: $EASYDICT_ENV_FILE, the --env path, its basename,
// the default path and <user config dir>/easydict/.env. The first file that
// loads wins and overrides the process environment.
//
// A missing default file is not an error, since every setting has an
// environment variable. An explicit --env or $EASYDICT_ENV_FILE that cannot
// be loaded is.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	log.SetOutput(os.Stderr)

	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		if err := godotenv.Overload(custom); err != nil {
			return "", fmt.Errorf("load %s=%s: %w", EnvFileVar, custom, err)
		}
		log.Printf("Loaded environment from %s: %s", EnvFileVar, custom)
		return custom, nil
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	for _, candidate := range l.candidates(requested) {
		err := godotenv.Overload(candidate)
		if err == nil {
			log.Printf("Loaded environment from: %s", candidate)
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("load env file %s: %w", candidate, err)
		}
	}

	if requested != l.defaultPath {
		return "", fmt.Errorf("failed to load env file from %s", requested)
	}
	return "", nil
}

func (l *EnvLoader) candidates(requested string) []string {
	paths := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		paths = append(paths, base)
	}
	if requested != l.defaultPath {
		paths = append(paths, l.defaultPath)
	}
	if l.userConfigDir != nil {
		if dir, err := l.userConfigDir(); err == nil && dir != "" {
			paths = append(paths, filepath.Join(dir, "easydict", ".env"))
		}
	}

	seen := make(map[string]struct{}, len(paths))
	unique := paths[:0]
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		unique = append(unique, path)
	}
	return unique
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
