// Package version reports the build version of imagelink and compares it
// against minimum version requirements.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags "-X github.com/lucas-albers-lz4/imagelink/pkg/version.Version=v1.2.3 ...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `yaml:"version"`
	Commit    string `yaml:"commit"`
	Date      string `yaml:"date"`
	GoVersion string `yaml:"goVersion"`
	Platform  string `yaml:"platform"`
	Release   bool   `yaml:"release"`
}

// Get returns the build information. When no version was stamped at build
// time, the main module version from the Go build info is used.
func Get() Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:   v,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Release:   IsRelease(v),
	}
}

func (i Info) String() string {
	s := fmt.Sprintf("imagelink %s (commit %s, built %s, %s %s)", i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
	if !i.Release {
		s += " (development build)"
	}
	return s
}

// parseVersionString strips a leading 'v' and any '+' build metadata, so
// "v1.4.2+g0e1f115" becomes "1.4.2".
func parseVersionString(versionStr string) string {
	parsed := strings.TrimSpace(versionStr)
	parsed = strings.TrimPrefix(parsed, "v")
	parsed = strings.Split(parsed, "+")[0]
	return parsed
}

// IsRelease reports whether v is a valid semantic version without a
// pre-release suffix.
func IsRelease(v string) bool {
	sv, err := semver.NewVersion(parseVersionString(v))
	if err != nil {
		return false
	}
	return sv.Prerelease() == ""
}

// CheckMinimum returns an error unless current satisfies ">= minimum".
// Development builds always pass.
func CheckMinimum(current, minimum string) error {
	if current == "dev" {
		return nil
	}
	cur, err := semver.NewVersion(parseVersionString(current))
	if err != nil {
		return fmt.Errorf("cannot parse version %q: %w", current, err)
	}
	constraint, err := semver.NewConstraint(">= " + parseVersionString(minimum))
	if err != nil {
		return fmt.Errorf("cannot parse minimum version %q: %w", minimum, err)
	}
	if !constraint.Check(cur) {
		return fmt.Errorf("imagelink version %s is older than the required %s", cur, minimum)
	}
	return nil
}
