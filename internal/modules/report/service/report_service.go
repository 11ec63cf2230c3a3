package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codeclock/internal/modules/report/domain"
	"codeclock/internal/modules/report/dto"
	reportout "codeclock/internal/modules/report/port/out"
)

// ReportService verifies exporter manifests and drives exports. Checksums
// are re-verified on every run, not just at install time.
type ReportService struct {
	store    reportout.ManifestStore
	host     reportout.Host
	episodes reportout.EpisodeSource
	dataPath string
}

func NewReportService(store reportout.ManifestStore, host reportout.Host, episodes reportout.EpisodeSource, dataPath string) *ReportService {
	return &ReportService{store: store, host: host, episodes: episodes, dataPath: dataPath}
}

func (s *ReportService) List(ctx context.Context) ([]dto.ExporterInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExporterInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.ExporterInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *ReportService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else if meta, err := s.host.GetMetadata(ctx, m); err != nil {
				result.Error = err.Error()
			} else if meta.Name != m.Name {
				result.Error = fmt.Sprintf("exporter reports name %q, manifest says %q", meta.Name, m.Name)
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ReportService) ListFormats(ctx context.Context, exporterName string) ([]dto.FormatInfo, error) {
	manifest, err := s.getRunnableManifest(ctx, exporterName, domain.CapabilityExport)
	if err != nil {
		return nil, err
	}
	formats, err := s.host.ListFormats(ctx, manifest)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FormatInfo, 0, len(formats))
	for _, format := range formats {
		out = append(out, dto.FormatInfo{
			ID:          format.ID,
			Title:       format.Title,
			Description: format.Description,
			Extension:   format.Extension,
			TimeoutMS:   format.TimeoutMS,
		})
	}
	return out, nil
}

func (s *ReportService) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	manifest, err := s.getRunnableManifest(ctx, input.ExporterName, domain.CapabilityExport)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	episodeJSON, err := s.episodes.ActiveEpisodeJSON(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	req := domain.ExportRequest{
		FormatID:    input.FormatID,
		EpisodeJSON: episodeJSON,
		DataPath:    s.dataPath,
		OutputDir:   input.OutputDir,
	}
	if err := req.Validate(); err != nil {
		return dto.ExportOutput{}, err
	}
	formats, err := s.host.ListFormats(ctx, manifest)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	if _, err := requireFormat(formats, input.FormatID); err != nil {
		return dto.ExportOutput{}, err
	}

	result, err := s.host.Export(ctx, manifest, req)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{
		ExporterName: input.ExporterName,
		FormatID:     input.FormatID,
		Content:      result.Content,
		Path:         result.Path,
		Stderr:       result.Stderr,
		ExitCode:     result.ExitCode,
	}, nil
}

func (s *ReportService) Summarize(ctx context.Context, exporterName string) (dto.SummaryOutput, error) {
	manifest, err := s.getRunnableManifest(ctx, exporterName, domain.CapabilitySummary)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	episodeJSON, err := s.episodes.ActiveEpisodeJSON(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	summary, err := s.host.Summarize(ctx, manifest, episodeJSON)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return dto.SummaryOutput{ExporterName: exporterName, Summary: summary}, nil
}

func (s *ReportService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate exporter name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *ReportService) getRunnableManifest(ctx context.Context, exporterName string, requiredCapability domain.Capability) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	manifest := domain.Manifest{}
	found := false
	for _, item := range manifests {
		if item.Name == exporterName {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("exporter %q not found", exporterName)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrExporterDisabled, exporterName)
	}
	if requiredCapability != "" && !manifest.HasCapability(requiredCapability) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, requiredCapability)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	if s.host != nil {
		if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrExporterTimeout, exporterName)
			}
			return domain.Manifest{}, err
		}
	}
	return manifest, nil
}

func requireFormat(formats []domain.FormatDescriptor, formatID string) (domain.FormatDescriptor, error) {
	for _, format := range formats {
		if err := format.Validate(); err != nil {
			return domain.FormatDescriptor{}, err
		}
		if format.ID == formatID {
			return format, nil
		}
	}
	return domain.FormatDescriptor{}, fmt.Errorf("%w: %s", domain.ErrFormatNotFound, formatID)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read exporter binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
