package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstant(t *testing.T) {
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q does not match semver format (x.y.z)", Version)
	}
}

func TestString(t *testing.T) {
	if got, want := String(), "devcmd "+Version; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDetailed(t *testing.T) {
	got := Detailed()
	for _, want := range []string{String(), "commit:", "go:", "os/arch:"} {
		if !strings.Contains(got, want) {
			t.Errorf("Detailed() missing %q:\n%s", want, got)
		}
	}
}
