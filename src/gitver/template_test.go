package gitver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleVersion() *VersionInfo {
	return &VersionInfo{
		Version:    "1.2.3-alpha.1",
		Base:       "1.2.3",
		Major:      "1",
		Minor:      "2",
		Patch:      "3",
		Prerelease: "alpha.1",
		Branch:     "feature/login",
		SHA:        "abc1234",
	}
}

func TestResolveTemplate(t *testing.T) {
	v := sampleVersion()

	tests := []struct {
		tmpl string
		want string
	}{
		{"latest", "latest"},
		{"{version}", "1.2.3-alpha.1"},
		{"{base}", "1.2.3"},
		{"v{major}.{minor}", "v1.2"},
		{"{major}.{minor}.{patch}", "1.2.3"},
		{"{prerelease}", "alpha.1"},
		{"{branch}", "feature-login"}, // slashes sanitized for tag use
		{"{sha}", "abc1234"},
		{"{sha:4}", "abc1"},
		{"{branch}-{sha:7}", "feature-login-abc1234"},
		{"{sha:99}", "abc1234"}, // width beyond the SHA clamps
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemplate(tt.tmpl, v))
		})
	}
}

func TestResolveTemplateEnv(t *testing.T) {
	t.Setenv("DRYDOCK_TEST_CHANNEL", "nightly")

	assert.Equal(t, "nightly", ResolveTemplate("{env:DRYDOCK_TEST_CHANNEL}", sampleVersion()))
	assert.Equal(t, "", ResolveTemplate("{env:DRYDOCK_TEST_UNSET_VAR}", sampleVersion()))
}

func TestResolveTemplateNilVersionPassesThrough(t *testing.T) {
	assert.Equal(t, "{version}", ResolveTemplate("{version}", nil))
	assert.Equal(t, "latest", ResolveTemplate("latest", nil))
}

func TestResolveTagsDropsEmptyResults(t *testing.T) {
	stable := sampleVersion()
	stable.Version = "1.2.3"
	stable.Prerelease = ""

	tags := ResolveTags([]string{"{version}", "{prerelease}", "latest"}, stable)
	assert.Equal(t, []string{"1.2.3", "latest"}, tags)
}

func TestVersionInfoString(t *testing.T) {
	assert.Equal(t, "1.2.3-alpha.1 (abc1234, feature/login)", sampleVersion().String())

	var v *VersionInfo
	assert.Equal(t, "", v.String())
}
