// Command textreport is the bundled exporter. It renders a plain-text
// debrief and a markdown handoff card from an episode record, and answers
// one-line summaries for the status view.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeclock/internal/modules/report/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type episode struct {
	ID               string     `json:"id"`
	PathwayMode      string     `json:"pathway_mode"`
	PatientWeightKg  *float64   `json:"patient_weight_kg"`
	Phase            string     `json:"phase"`
	CurrentRhythm    string     `json:"current_rhythm"`
	Outcome          string     `json:"outcome"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	ROSCTime         *time.Time `json:"rosc_time"`
	ShockCount       int        `json:"shock_count"`
	EpinephrineCount int        `json:"epinephrine_count"`
	AmiodaroneCount  int        `json:"amiodarone_count"`
	LidocaineCount   int        `json:"lidocaine_count"`
	AirwayStatus     string     `json:"airway_status"`
	CPRRatio         string     `json:"cpr_ratio"`
	Interventions    []struct {
		Timestamp time.Time `json:"timestamp"`
		Kind      string    `json:"kind"`
		Details   string    `json:"details"`
		Value     *float64  `json:"value"`
		Unit      string    `json:"unit"`
	} `json:"interventions"`
}

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{
		Name:         "textreport",
		Version:      "1.0.0",
		Capabilities: []string{"export", "summary"},
	}, nil
}

func (s *server) ListFormats(_ context.Context, _ *rpc.Empty) (*rpc.ListFormatsResponse, error) {
	return &rpc.ListFormatsResponse{Formats: []rpc.FormatDescriptor{
		{ID: "text", Title: "Text debrief", Description: "Full timeline as plain text", Extension: "txt", TimeoutMS: 3000},
		{ID: "handoff", Title: "Handoff card", Description: "SBAR-style markdown card", Extension: "md", TimeoutMS: 3000},
	}}, nil
}

func (s *server) Export(_ context.Context, in *rpc.ExportRequest) (*rpc.ExportResponse, error) {
	ep, err := decode(in.EpisodeJSON)
	if err != nil {
		return &rpc.ExportResponse{Stderr: err.Error(), ExitCode: 1}, nil
	}
	var content, ext string
	switch in.FormatID {
	case "text":
		content, ext = renderText(ep), "txt"
	case "handoff":
		content, ext = renderHandoff(ep), "md"
	default:
		return nil, fmt.Errorf("unknown format: %s", in.FormatID)
	}
	resp := &rpc.ExportResponse{Content: content, ExitCode: 0}
	if in.OutputDir != "" {
		path := filepath.Join(in.OutputDir, fmt.Sprintf("episode-%s.%s", ep.ID, ext))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return &rpc.ExportResponse{Stderr: err.Error(), ExitCode: 1}, nil
		}
		resp.Path = path
	}
	return resp, nil
}

func (s *server) Summarize(_ context.Context, in *rpc.SummarizeRequest) (*rpc.SummarizeResponse, error) {
	ep, err := decode(in.EpisodeJSON)
	if err != nil {
		return nil, err
	}
	return &rpc.SummarizeResponse{Summary: summaryLine(ep)}, nil
}

func decode(payload string) (episode, error) {
	var ep episode
	if err := json.Unmarshal([]byte(payload), &ep); err != nil {
		return episode{}, fmt.Errorf("decode episode: %w", err)
	}
	if ep.ID == "" {
		return episode{}, fmt.Errorf("episode record has no id")
	}
	return ep, nil
}

func renderText(ep episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CODE DEBRIEF  %s\n", ep.ID)
	fmt.Fprintf(&b, "Mode: %s", ep.PathwayMode)
	if ep.PatientWeightKg != nil {
		fmt.Fprintf(&b, "  Weight: %.1f kg", *ep.PatientWeightKg)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Outcome: %s\n", orDash(ep.Outcome))
	fmt.Fprintf(&b, "Duration: %s\n", durationLine(ep))
	fmt.Fprintf(&b, "Shocks: %d  Epinephrine: %d  Amiodarone: %d  Lidocaine: %d\n",
		ep.ShockCount, ep.EpinephrineCount, ep.AmiodaroneCount, ep.LidocaineCount)
	fmt.Fprintf(&b, "Airway: %s  CPR ratio: %s\n\n", orDash(ep.AirwayStatus), orDash(ep.CPRRatio))
	b.WriteString("TIMELINE\n")
	for _, iv := range ep.Interventions {
		fmt.Fprintf(&b, "  [%s] %s", elapsed(ep.StartTime, iv.Timestamp), iv.Kind)
		if iv.Details != "" {
			fmt.Fprintf(&b, " %s", iv.Details)
		}
		if iv.Value != nil {
			fmt.Fprintf(&b, " (%.4g %s)", *iv.Value, iv.Unit)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderHandoff(ep episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Handoff: episode %s\n\n", ep.ID)
	fmt.Fprintf(&b, "- **Situation**: %s arrest, rhythm %s, outcome %s\n",
		ep.PathwayMode, orDash(ep.CurrentRhythm), orDash(ep.Outcome))
	fmt.Fprintf(&b, "- **Background**: code duration %s\n", durationLine(ep))
	fmt.Fprintf(&b, "- **Assessment**: %d shocks, %d epinephrine, %d amiodarone, %d lidocaine, airway %s\n",
		ep.ShockCount, ep.EpinephrineCount, ep.AmiodaroneCount, ep.LidocaineCount, orDash(ep.AirwayStatus))
	if ep.ROSCTime != nil {
		fmt.Fprintf(&b, "- **Recommendation**: post-ROSC care, ROSC at %s\n", elapsed(ep.StartTime, *ep.ROSCTime))
	} else {
		b.WriteString("- **Recommendation**: see full debrief\n")
	}
	return b.String()
}

func summaryLine(ep episode) string {
	parts := []string{fmt.Sprintf("%d shocks", ep.ShockCount), fmt.Sprintf("%d epi", ep.EpinephrineCount)}
	if ep.ROSCTime != nil {
		parts = append([]string{"ROSC at " + elapsed(ep.StartTime, *ep.ROSCTime)}, parts...)
	} else if ep.Outcome != "" {
		parts = append([]string{ep.Outcome}, parts...)
	}
	return strings.Join(parts, ", ")
}

func durationLine(ep episode) string {
	if ep.StartTime == nil {
		return "-"
	}
	end := time.Now()
	if ep.EndTime != nil {
		end = *ep.EndTime
	}
	return end.Sub(*ep.StartTime).Round(time.Second).String()
}

func elapsed(start *time.Time, at time.Time) string {
	if start == nil {
		return "--:--"
	}
	d := at.Sub(*start)
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: rpc.HandshakeConfig,
		Plugins:         rpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
