package compiler

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/mod/semver"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// versionRegex matches lines like "rustc 1.78.0 (9b00956e5 2024-04-29)".
var versionRegex = regexp.MustCompile(`rustc (?P<semver>\S+) \(.*\)`)

// Version is a semantic version reported by the compiler.
type Version struct {
	Major, Minor, Patch int
	Prerelease          string
	Build               string
}

// ParseVersion parses a semantic version such as "1.80.0-nightly".
func ParseVersion(s string) (Version, error) {
	v := "v" + s
	if !semver.IsValid(v) {
		return Version{}, &VersionError{Kind: VersionParseFailed, Text: s}
	}
	// semver accepts "v1" and "v1.2"; rustc always reports all three parts.
	core := strings.TrimSuffix(strings.TrimSuffix(v[1:], semver.Build(v)), semver.Prerelease(v))
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, &VersionError{Kind: VersionParseFailed, Text: s}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &VersionError{Kind: VersionParseFailed, Text: s, Err: err}
		}
		nums[i] = n
	}
	return Version{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: strings.TrimPrefix(semver.Prerelease(v), "-"),
		Build:      strings.TrimPrefix(semver.Build(v), "+"),
	}, nil
}

func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0 or +1 following semver precedence. Build metadata
// is ignored.
func (v Version) Compare(other Version) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// Version runs "rustc --version" and parses the reported version.
func (c *Compiler) Version(ctx context.Context) (Version, error) {
	inv := configuration.Invocation{Program: c.program, Args: []string{"--version"}}
	res, err := c.runner.Run(ctx, inv)
	if err != nil {
		return Version{}, &VersionError{Kind: VersionIO, Err: err}
	}
	if !res.Success() {
		return Version{}, &VersionError{Kind: VersionInvocationNoSuccess, Output: &res}
	}
	if !utf8.Valid(res.Stdout) {
		return Version{}, &VersionError{Kind: VersionReadStdout, Output: &res}
	}
	return parseVersionOutput(string(res.Stdout))
}

func parseVersionOutput(out string) (Version, error) {
	m := versionRegex.FindStringSubmatch(out)
	if m == nil {
		return Version{}, &VersionError{Kind: VersionRegexNoMatch, Text: out}
	}
	return ParseVersion(m[versionRegex.SubexpIndex("semver")])
}
