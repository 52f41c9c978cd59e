package instance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/platform"
)

// DetailsFile is the game version descriptor stored in every instance.
const DetailsFile = "details.json"

// LegacyCutoff is the release time of 1.5.2. Versions released at or before it
// predate library-based loader installs.
var LegacyCutoff = time.Date(2013, time.April, 25, 15, 45, 0, 0, time.UTC)

// VersionDetails is the game version descriptor ("details" document).
type VersionDetails struct {
	AssetIndex             *AssetIndex     `json:"assetIndex,omitempty"`
	Assets                 string          `json:"assets,omitempty"`
	Downloads              *Downloads      `json:"downloads,omitempty"`
	ID                     string          `json:"id"`
	JavaVersion            *JavaVersion    `json:"javaVersion,omitempty"`
	Libraries              []Library       `json:"libraries"`
	Logging                json.RawMessage `json:"logging,omitempty"`
	MainClass              string          `json:"mainClass"`
	MinecraftArguments     string          `json:"minecraftArguments,omitempty"`
	Arguments              *Arguments      `json:"arguments,omitempty"`
	MinimumLauncherVersion int             `json:"minimumLauncherVersion,omitempty"`
	ReleaseTime            string          `json:"releaseTime"`
	Time                   string          `json:"time"`
	Type                   string          `json:"type"`
}

type AssetIndex struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

type Downloads struct {
	Client *Download `json:"client,omitempty"`
	Server *Download `json:"server,omitempty"`
}

type Download struct {
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Arguments holds 1.13+ launch arguments. Entries are strings or rule objects.
type Arguments struct {
	Game []json.RawMessage `json:"game"`
	JVM  []json.RawMessage `json:"jvm"`
}

// Library is one dependency declared by a game or loader descriptor.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	ClientReq *bool             `json:"clientreq,omitempty"`
	ServerReq *bool             `json:"serverreq,omitempty"`
}

type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a downloadable file with its repository-relative path.
type Artifact struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Rule allows or disallows a library per operating system.
type Rule struct {
	Action string  `json:"action"`
	OS     *RuleOS `json:"os,omitempty"`
}

type RuleOS struct {
	Name string `json:"name"`
}

// Allowed evaluates library rules for p. No rules means allowed; otherwise
// the last matching rule wins and nothing matching means disallowed.
func Allowed(rules []Rule, p platform.Platform) bool {
	if len(rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range rules {
		if r.OS != nil && r.OS.Name != p.RuleName() {
			continue
		}
		allowed = r.Action == "allow"
	}
	return allowed
}

// LoadDetails reads details.json from an instance directory.
func LoadDetails(dir string) (*VersionDetails, error) {
	path := filepath.Join(dir, DetailsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ckerrors.Path("read", path, err)
	}

	var details VersionDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, &ckerrors.JSONError{Content: string(data), Err: err}
	}
	return &details, nil
}

// IsLegacy reports whether the version was released at or before 1.5.2.
// An unparsable release time is logged and treated as modern.
func (d *VersionDetails) IsLegacy(logger hclog.Logger) bool {
	released, err := time.Parse(time.RFC3339, d.ReleaseTime)
	if err != nil {
		if logger != nil {
			logger.Warn("⚠️ Could not parse instance release time", "id", d.ID, "releaseTime", d.ReleaseTime, "error", err)
		}
		return false
	}
	return !released.After(LegacyCutoff)
}
