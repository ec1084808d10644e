package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LegacyApplication is assigned to specs loaded from the flat layout
	// when they do not declare an application themselves.
	LegacyApplication = "legacy"

	legacyServicesDir = "services"
	applicationsDir   = "applications"
)

// Load discovers service spec documents under baseDir and returns them in
// deterministic order: the legacy flat services/ directory first, then
// applications/<app>/services/ with applications in sorted name order and
// files in lexicographic order within each directory. A layout directory that
// does not exist simply contributes nothing.
func Load(baseDir string) ([]*Service, error) {
	legacy, err := loadLegacy(filepath.Join(baseDir, legacyServicesDir))
	if err != nil {
		return nil, err
	}
	perApp, err := loadApplications(filepath.Join(baseDir, applicationsDir))
	if err != nil {
		return nil, err
	}
	return append(legacy, perApp...), nil
}

// loadLegacy reads specs from the flat layout. Specs may declare their own
// application; the rest fall back to "legacy".
func loadLegacy(dir string) ([]*Service, error) {
	paths, err := specFiles(dir)
	if err != nil {
		return nil, err
	}
	var services []*Service
	for _, path := range paths {
		svc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if svc.Application == "" {
			svc.Application = LegacyApplication
		}
		if err := ValidateApplicationName(svc.Application, path); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

// loadApplications reads specs from the per-application layout. The owning
// directory name supplies the application and any explicit application field
// must agree with it.
func loadApplications(dir string) ([]*Service, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read applications directory %s: %w", dir, err)
	}

	var services []*Service
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		appName := entry.Name()
		appDir := filepath.Join(dir, appName)
		if err := ValidateApplicationName(appName, appDir); err != nil {
			return nil, err
		}

		paths, err := specFiles(filepath.Join(appDir, legacyServicesDir))
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			svc, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			if svc.Application == "" {
				svc.Application = appName
			}
			if err := ValidateApplicationName(svc.Application, path); err != nil {
				return nil, err
			}
			if svc.Application != appName {
				return nil, fmt.Errorf("service spec %s has application %q but lives in applications/%s/: application must match the directory name", path, svc.Application, appName)
			}
			services = append(services, svc)
		}
	}
	return services, nil
}

// specFiles lists the YAML documents in dir in lexicographic order. A missing
// directory yields no files.
func specFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read spec directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

func loadFile(path string) (*Service, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", path, err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if generic == nil {
		generic = map[string]any{}
	}
	if err := validateAgainstSchema(path, generic); err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	var svc Service
	if err := decoder.Decode(&svc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}

	if strings.TrimSpace(svc.Name) == "" {
		return nil, fmt.Errorf("service spec %s is missing required field \"name\"", path)
	}
	svc.Source = path
	svc.ApplyDefaults()
	return &svc, nil
}
