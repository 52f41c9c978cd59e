package forge

import (
	"fmt"
	"strconv"
	"strings"
)

// Installers before this major version are "universal" jars run in place.
const installerMajor = 14

// ShortVersion is "<game>-<loader>", e.g. 1.12.2-14.23.5.2859.
func ShortVersion(game, loader string) string {
	return game + "-" + loader
}

// NormalizedGameVersion pads two-component versions: 1.7 → 1.7.0.
func NormalizedGameVersion(game string) string {
	if strings.Count(game, ".") == 1 {
		return game + ".0"
	}
	return game
}

// LongVersion is "<game>-<loader>-<normalized game>", the naming some old
// maven folders use.
func LongVersion(game, loader string) string {
	return ShortVersion(game, loader) + "-" + NormalizedGameVersion(game)
}

// MajorVersion is the first dotted component of a loader version.
func MajorVersion(loader string) (int, error) {
	head, _, _ := strings.Cut(loader, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid forge version %q: %w", loader, err)
	}
	return major, nil
}

// installerKind is the classifier of the installer artifact for major, and
// the one to try if that is missing.
func installerKind(major int) (primary, flipped string) {
	if major < installerMajor {
		return "universal", "installer"
	}
	return "installer", "universal"
}

// InstallerName is the file name the installer is stored under.
func InstallerName(short string, major int) string {
	kind, _ := installerKind(major)
	return fmt.Sprintf("forge-%s-%s.jar", short, kind)
}

// CandidateURLs lists every installer location to try, in order: each
// artifact naming against every mirror. Legacy client.zip and universal.zip
// come last; they only exist for versions installed as jar mods.
func CandidateURLs(mirrors []string, game, loader string, major int) []string {
	short := ShortVersion(game, loader)
	long := LongVersion(game, loader)
	kind, flipped := installerKind(major)

	names := []string{
		fmt.Sprintf("%[1]s/forge-%[1]s-%[2]s.jar", short, kind),
		fmt.Sprintf("%[1]s/forge-%[1]s-%[2]s.jar", long, kind),
		fmt.Sprintf("%[1]s/forge-%[1]s-%[2]s.jar", short, flipped),
		fmt.Sprintf("%[1]s/forge-%[1]s-%[2]s.jar", long, flipped),
		fmt.Sprintf("%[1]s/forge-%[1]s-client.zip", short),
		fmt.Sprintf("%[1]s/forge-%[1]s-client.zip", long),
		fmt.Sprintf("%[1]s/forge-%[1]s-universal.zip", short),
		fmt.Sprintf("%[1]s/forge-%[1]s-universal.zip", long),
	}

	urls := make([]string, 0, len(names)*len(mirrors))
	for _, name := range names {
		for _, mirror := range mirrors {
			if !strings.HasSuffix(mirror, "/") {
				mirror += "/"
			}
			urls = append(urls, mirror+name)
		}
	}
	return urls
}

// classpathPrefix is the loader's own jar, which precedes the libraries.
// From major 39 on the installer puts it among the libraries instead.
func classpathPrefix(root, installerName, short string, major int, sep string) string {
	switch {
	case major < installerMajor:
		return root + "/" + installerName + sep
	case major < 39:
		return LoaderJarEntry(root, short) + sep
	default:
		return ""
	}
}

// LoaderJarEntry is the classpath entry of the jar the installer program
// produces for 14 ≤ major < 39.
func LoaderJarEntry(root, short string) string {
	return fmt.Sprintf("%s/libraries/net/minecraftforge/forge/%[2]s/forge-%[2]s.jar", root, short)
}
