package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// sidecarSuffix names the small metadata file `dvc add`-equivalent
// tooling writes next to a tracked path, recording its checksum the
// way a real `.dvc` stage file's `outs: [{md5: ...}]` entry does.
// Parsing the whole stage-graph format is explicitly out of this
// core's scope (spec §1); this is the minimal slice the CLI needs to
// remember a target's checksum between commands.
const sidecarSuffix = ".dvc"

// Sidecar is the minimal subset of a real .dvc file's content this
// repository's CLI reads and writes.
type Sidecar struct {
	MD5 string `yaml:"md5"`
}

// SidecarPath returns the metadata file path for a tracked path.
func SidecarPath(path string) string {
	return path + sidecarSuffix
}

// ReadSidecar loads the checksum recorded for path, if any.
func ReadSidecar(path string) (string, bool, error) {
	data, err := os.ReadFile(SidecarPath(path))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("config: read sidecar for %s: %w", path, err)
	}
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return "", false, fmt.Errorf("config: parse sidecar for %s: %w", path, err)
	}
	return sc.MD5, true, nil
}

// WriteSidecar records sum as path's checksum.
func WriteSidecar(path, sum string) error {
	data, err := yaml.Marshal(Sidecar{MD5: sum})
	if err != nil {
		return err
	}
	return os.WriteFile(SidecarPath(path), data, 0o644)
}
