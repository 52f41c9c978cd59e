package forge

import (
	"encoding/json"
	"fmt"

	"github.com/provide-io/craftkit/pkg/archive"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/instance"
)

// Installer archive entries holding the version descriptor, in lookup order.
const (
	versionEntry        = "version.json"
	installProfileEntry = "install_profile.json"
)

// Descriptor is the loader version descriptor, whichever schema it came from.
type Descriptor struct {
	ID                 string             `json:"id"`
	Time               string             `json:"time"`
	ReleaseTime        string             `json:"releaseTime"`
	Type               string             `json:"type"`
	MainClass          string             `json:"mainClass"`
	InheritsFrom       string             `json:"inheritsFrom,omitempty"`
	Logging            json.RawMessage    `json:"logging,omitempty"`
	Arguments          *Arguments         `json:"arguments,omitempty"`
	Libraries          []instance.Library `json:"libraries"`
	MinecraftArguments string             `json:"minecraftArguments,omitempty"`
}

// Arguments are 1.13+ launch arguments. Entries are strings or rule objects.
type Arguments struct {
	Game []json.RawMessage `json:"game"`
	JVM  []json.RawMessage `json:"jvm,omitempty"`
}

// installProfile is the pre-1.13 wrapper around a descriptor.
type installProfile struct {
	Install     json.RawMessage `json:"install"`
	VersionInfo *Descriptor     `json:"versionInfo"`
}

func (d *Descriptor) validate() error {
	if d.ID == "" || d.MainClass == "" || d.Libraries == nil {
		return fmt.Errorf("%w: missing id, mainClass or libraries", ckerrors.ErrDescriptorSchema)
	}
	return nil
}

// ReadDescriptor extracts the descriptor from installer archive bytes:
// version.json (flat) first, then install_profile.json (wrapped under
// versionInfo, or flat if the wrapper does not match).
func ReadDescriptor(installer []byte) (*Descriptor, error) {
	data, err := archive.ReadEntry(installer, versionEntry)
	if err == nil {
		return parseFlat(data)
	}
	if !ckerrors.IsNotFound(err) {
		return nil, err
	}

	data, err = archive.ReadEntry(installer, installProfileEntry)
	if err != nil {
		if ckerrors.IsNotFound(err) {
			return nil, ckerrors.ErrNoInstallDescriptor
		}
		return nil, err
	}

	var profile installProfile
	if json.Unmarshal(data, &profile) == nil && profile.Install != nil && profile.VersionInfo != nil {
		if profile.VersionInfo.validate() == nil {
			return profile.VersionInfo, nil
		}
	}
	return parseFlat(data)
}

func parseFlat(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &ckerrors.JSONError{Content: string(data), Err: fmt.Errorf("%w: %w", ckerrors.ErrDescriptorSchema, err)}
	}
	if err := d.validate(); err != nil {
		return nil, &ckerrors.JSONError{Content: string(data), Err: err}
	}
	return &d, nil
}
