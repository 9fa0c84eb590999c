// Package manifest loads the sidecar package.yml a source package may carry
// alongside its source files. The original compiler's PackageParser.cpp
// declares a package's version (🔮) and required native binaries (📻)
// in-language, beside the class/protocol grammar it otherwise parses; this
// repository keeps those in-language declarations where they are (read by
// internal/parser's declaration pass) and adds package.yml only for load
// path and default-namespace configuration those in-language declarations
// don't carry — a supplementary sidecar for run configuration, loaded the
// same way a YAML-fed config file is: read, unmarshal, validate.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RequiredBinary names one native binary (📻 name version) a package
// declares it needs the host toolchain to provide.
type RequiredBinary struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Manifest is the parsed shape of a package.yml sidecar file.
type Manifest struct {
	Name             string            `yaml:"name"`
	Namespace        string            `yaml:"namespace"`
	SearchPaths      []string          `yaml:"searchPaths"`
	RequiredBinaries []RequiredBinary  `yaml:"requiredBinaries"`
	Namespaces       map[string]string `yaml:"namespaces"`
}

// Load reads and parses the package.yml at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing package manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("package manifest %s missing required field: name", path)
	}
	return &m, nil
}

// ResolveBinary reports whether name is declared among m's required
// binaries, and if so, the version the manifest pins it to.
func (m *Manifest) ResolveBinary(name string) (string, bool) {
	for _, rb := range m.RequiredBinaries {
		if rb.Name == name {
			return rb.Version, true
		}
	}
	return "", false
}
