package codec

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	// RuntimeName identifies this adapter to the engine.
	RuntimeName = "Go"

	// FeatureKeepAlive advertises support for serving many invocations per
	// process.
	FeatureKeepAlive = "keepalive"

	modulePath = "e5e"
)

// Metadata describes the runtime to the engine during the startup
// handshake.
type Metadata struct {
	Runtime        string   `json:"runtime"`
	RuntimeVersion string   `json:"runtime_version"`
	LibraryVersion string   `json:"library_version"`
	Features       []string `json:"features"`
}

// NewMetadata computes the metadata of the running binary.
func NewMetadata() Metadata {
	return Metadata{
		Runtime:        RuntimeName,
		RuntimeVersion: strings.TrimPrefix(runtime.Version(), "go"),
		LibraryVersion: libraryVersion(),
		Features:       []string{FeatureKeepAlive},
	}
}

// libraryVersion returns the version of this module as recorded in the
// build info, without any "+build" suffix.
func libraryVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "0.0.0"
	}

	var version string
	if info.Main.Path == modulePath {
		version = info.Main.Version
	} else {
		for _, dep := range info.Deps {
			if dep.Path == modulePath {
				version = dep.Version
				break
			}
		}
	}

	version, _, _ = strings.Cut(strings.TrimPrefix(version, "v"), "+")
	if version == "" || version == "(devel)" {
		return "0.0.0"
	}
	return version
}

// EncodeMetadata serializes m for the startup handshake.
func EncodeMetadata(m Metadata) (string, error) {
	if m.Features == nil {
		m.Features = []string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	return string(b), nil
}
