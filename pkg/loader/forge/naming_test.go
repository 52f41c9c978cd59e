package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

func TestVersionNaming(t *testing.T) {
	assert.Equal(t, "1.12.2-14.23.5.2859", ShortVersion("1.12.2", "14.23.5.2859"))
	assert.Equal(t, "1.7.0", NormalizedGameVersion("1.7"))
	assert.Equal(t, "1.12.2", NormalizedGameVersion("1.12.2"))
	assert.Equal(t, "1.7-10.12.0.1024-1.7.0", LongVersion("1.7", "10.12.0.1024"))
}

func TestMajorVersion(t *testing.T) {
	tests := []struct {
		loader  string
		want    int
		wantErr bool
	}{
		{"14.23.5.2859", 14, false},
		{"47.2.0", 47, false},
		{"9.11.1.1345", 9, false},
		{"", 0, true},
		{"beta.1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.loader, func(t *testing.T) {
			got, err := MajorVersion(tt.loader)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallerName(t *testing.T) {
	assert.Equal(t, "forge-1.12.2-14.23.5.2859-installer.jar", InstallerName("1.12.2-14.23.5.2859", 14))
	assert.Equal(t, "forge-1.7.10-10.13.4.1614-universal.jar", InstallerName("1.7.10-10.13.4.1614", 10))
}

func TestCandidateURLs(t *testing.T) {
	urls := CandidateURLs([]string{"https://m1/", "https://m2"}, "1.12.2", "14.23.5.2859", 14)
	require.Len(t, urls, 16)

	assert.Equal(t, []string{
		"https://m1/1.12.2-14.23.5.2859/forge-1.12.2-14.23.5.2859-installer.jar",
		"https://m2/1.12.2-14.23.5.2859/forge-1.12.2-14.23.5.2859-installer.jar",
		"https://m1/1.12.2-14.23.5.2859-1.12.2/forge-1.12.2-14.23.5.2859-1.12.2-installer.jar",
		"https://m2/1.12.2-14.23.5.2859-1.12.2/forge-1.12.2-14.23.5.2859-1.12.2-installer.jar",
		"https://m1/1.12.2-14.23.5.2859/forge-1.12.2-14.23.5.2859-universal.jar",
	}, urls[:5])
	assert.Equal(t, "https://m2/1.12.2-14.23.5.2859-1.12.2/forge-1.12.2-14.23.5.2859-1.12.2-universal.zip", urls[15])

	old := CandidateURLs([]string{"https://m1/"}, "1.7.10", "10.13.4.1614", 10)
	require.Len(t, old, 8)
	assert.Equal(t, "https://m1/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-universal.jar", old[0])
	assert.Equal(t, "https://m1/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-installer.jar", old[2])
	assert.Equal(t, "https://m1/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-client.zip", old[4])
}

func TestClasspathPrefix(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		major int
		want  string
	}{
		{"universal jar", "forge", 10, "forge/forge-1.7.10-10.13.4.1614-universal.jar:"},
		{"built loader jar", "../forge", 14, "../forge/libraries/net/minecraftforge/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614.jar:"},
		{"last built loader jar", "../forge", 38, "../forge/libraries/net/minecraftforge/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614.jar:"},
		{"loader among libraries", "../forge", 39, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classpathPrefix(tt.root, "forge-1.7.10-10.13.4.1614-universal.jar", "1.7.10-10.13.4.1614", tt.major, ":")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoaderJarEntry(t *testing.T) {
	assert.Equal(t,
		"../forge/libraries/net/minecraftforge/forge/1.12.2-14.23.5.2859/forge-1.12.2-14.23.5.2859.jar",
		LoaderJarEntry("../forge", "1.12.2-14.23.5.2859"))
}

func TestPromotions(t *testing.T) {
	p := &Promotions{Promos: map[string]string{
		"1.12.2-latest":      "14.23.5.2860",
		"1.12.2-recommended": "14.23.5.2859",
	}}

	latest, err := p.Latest("1.12.2")
	require.NoError(t, err)
	assert.Equal(t, "14.23.5.2860", latest)

	recommended, err := p.Recommended("1.12.2")
	require.NoError(t, err)
	assert.Equal(t, "14.23.5.2859", recommended)

	_, err = p.Latest("1.6.4")
	assert.ErrorIs(t, err, ckerrors.ErrNoLoaderVersion)
}
