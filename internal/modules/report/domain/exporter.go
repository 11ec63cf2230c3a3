package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Exporters are out-of-process binaries that turn an episode record into a
// shareable artifact (text debrief, PDF, handoff summary). The host verifies
// each binary against the manifest checksum before every run.

type Capability string

const (
	CapabilityExport  Capability = "export"
	CapabilitySummary Capability = "summary"
)

var (
	ErrExporterDisabled  = errors.New("exporter is disabled")
	ErrChecksumMismatch  = errors.New("exporter checksum mismatch")
	ErrCapabilityMissing = errors.New("exporter capability missing")
	ErrFormatNotFound    = errors.New("export format not found")
	ErrExporterTimeout   = errors.New("exporter timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("exporter name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("exporter version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("exporter binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("exporter sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("exporter capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityExport, CapabilitySummary:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// FormatDescriptor describes one export format an exporter offers.
type FormatDescriptor struct {
	ID          string
	Title       string
	Description string
	Extension   string
	TimeoutMS   int
}

func (d FormatDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("format id is required")
	}
	return nil
}

// ExportRequest carries the episode record (as the snapshot JSON) to the
// exporter, plus enough context to write output next to the data dir.
type ExportRequest struct {
	FormatID    string
	EpisodeJSON string
	DataPath    string
	OutputDir   string
}

func (r ExportRequest) Validate() error {
	if r.FormatID == "" {
		return fmt.Errorf("format id is required")
	}
	if r.EpisodeJSON == "" {
		return fmt.Errorf("episode payload is required")
	}
	if r.DataPath == "" {
		return fmt.Errorf("data path is required")
	}
	return nil
}

type ExportResult struct {
	Content  string
	Path     string
	ExitCode int
	Stderr   string
}
