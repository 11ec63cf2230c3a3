package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeclock/internal/bootstrap"
	arrestdto "codeclock/internal/modules/arrest/dto"
	dysdto "codeclock/internal/modules/dysrhythmia/dto"
	reportdto "codeclock/internal/modules/report/dto"
	"codeclock/internal/platform/clock"
	"codeclock/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string

	root := &cobra.Command{
		Use:           "codeclock",
		Short:         "Resuscitation protocol assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataPath, "data", ".", "data directory")

	root.AddCommand(newTUICmd(&dataPath))
	root.AddCommand(newCodeCmd(&dataPath))
	root.AddCommand(newDysCmd(&dataPath))
	root.AddCommand(newLogCmd(&dataPath))
	root.AddCommand(newReportCmd(&dataPath))
	root.AddCommand(newReferenceCmd(&dataPath))
	return root
}

func loadApp(dataPath string) (*bootstrap.App, error) {
	cfg, err := config.New(dataPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the codeclock terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

// ─── code (arrest) ────────────────────────────────────────────────────────────

func newCodeCmd(dataPath *string) *cobra.Command {
	code := &cobra.Command{Use: "code", Short: "Cardiac arrest episode commands"}

	var weightKg float64

	startCmd := &cobra.Command{
		Use:   "start <adult|pediatric>",
		Short: "Start a code and select the pathway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			var weight *float64
			if cmd.Flags().Changed("weight") {
				weight = &weightKg
			}
			out, err := app.ArrestCLI.Start(context.Background(), args[0], weight)
			if err != nil {
				return err
			}
			printEpisode(cmd, out)
			return nil
		},
	}
	startCmd.Flags().Float64Var(&weightKg, "weight", 0, "patient weight in kg (required for pediatric)")

	code.AddCommand(startCmd)
	code.AddCommand(episodeCmd(dataPath, "status", "Show the active episode", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.Status(context.Background())
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "resume", "Reopen the saved episode after a crash or restart", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.Resume(context.Background())
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "rhythm <vf_pvt|asystole|pea>", "Identify the initial or current rhythm", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.SelectRhythm(context.Background(), args[0])
	}, cobra.ExactArgs(1)))
	code.AddCommand(episodeCmd(dataPath, "check", "Open a rhythm check (pauses compressions)", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.RhythmCheck(context.Background())
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "shock", "Close the rhythm check with a shock", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.CompleteRhythmCheck(context.Background(), "shock", "")
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "no-shock <rhythm>", "Close the rhythm check without a shock", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.CompleteRhythmCheck(context.Background(), "no_shock", args[0])
	}, cobra.ExactArgs(1)))
	code.AddCommand(episodeCmd(dataPath, "resume-cpr", "Close the rhythm check and resume compressions", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.CompleteRhythmCheck(context.Background(), "resume", "")
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "drug <epinephrine|amiodarone|lidocaine>", "Record a drug dose", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.GiveDrug(context.Background(), args[0])
	}, cobra.ExactArgs(1)))
	code.AddCommand(episodeCmd(dataPath, "airway <none|bvm|supraglottic|ett>", "Set the airway status", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.SetAirway(context.Background(), args[0])
	}, cobra.ExactArgs(1)))
	code.AddCommand(episodeCmd(dataPath, "mark <hs_ts|pregnancy|post_rosc> <item>", "Toggle a checklist item", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.MarkChecklist(context.Background(), args[0], args[1])
	}, cobra.ExactArgs(2)))
	code.AddCommand(episodeCmd(dataPath, "note <text>", "Append a free-text note to the log", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.AddNote(context.Background(), strings.Join(args, " "))
	}, cobra.MinimumNArgs(1)))
	code.AddCommand(episodeCmd(dataPath, "etco2 <mmHg>", "Record an end-tidal CO2 reading", func(app *bootstrap.App, args []string) (arrestdto.EpisodeOutput, error) {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return arrestdto.EpisodeOutput{}, fmt.Errorf("invalid etco2 value: %s", args[0])
		}
		return app.ArrestCLI.RecordETCO2(context.Background(), value)
	}, cobra.ExactArgs(1)))
	code.AddCommand(newVitalsCmd(dataPath))
	code.AddCommand(episodeCmd(dataPath, "rosc", "Record return of spontaneous circulation", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.ROSC(context.Background())
	}, cobra.NoArgs))
	code.AddCommand(episodeCmd(dataPath, "terminate", "End resuscitation efforts", func(app *bootstrap.App, _ []string) (arrestdto.EpisodeOutput, error) {
		return app.ArrestCLI.Terminate(context.Background())
	}, cobra.NoArgs))

	code.AddCommand(&cobra.Command{
		Use:   "finish",
		Short: "Archive the terminal episode and clear the active slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ArrestCLI.Finish(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archived %s (%s, %d min) to %s\n",
				out.EpisodeID, out.Outcome, out.DurationMin, out.Path)
			return nil
		},
	})
	code.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard the active episode without archiving",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.ArrestCLI.Reset(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "episode discarded")
			return nil
		},
	})
	code.AddCommand(newMonitorCmd(dataPath))
	return code
}

func episodeCmd(dataPath *string, use, short string, fn func(*bootstrap.App, []string) (arrestdto.EpisodeOutput, error), args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := fn(app, argv)
			if err != nil {
				return err
			}
			printEpisode(cmd, out)
			return nil
		},
	}
}

func newVitalsCmd(dataPath *string) *cobra.Command {
	var spo2, sbp, etco2 float64
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Record post-ROSC vital signs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			input := arrestdto.VitalsInput{}
			if cmd.Flags().Changed("spo2") {
				input.SpO2 = &spo2
			}
			if cmd.Flags().Changed("sbp") {
				input.SystolicBP = &sbp
			}
			if cmd.Flags().Changed("etco2") {
				input.ETCO2 = &etco2
			}
			out, err := app.ArrestCLI.RecordVitals(context.Background(), input)
			if err != nil {
				return err
			}
			printEpisode(cmd, out)
			return nil
		},
	}
	cmd.Flags().Float64Var(&spo2, "spo2", 0, "oxygen saturation in percent")
	cmd.Flags().Float64Var(&sbp, "sbp", 0, "systolic blood pressure in mmHg")
	cmd.Flags().Float64Var(&etco2, "etco2", 0, "end-tidal CO2 in mmHg")
	return cmd
}

// newMonitorCmd polls the episode once per second and reprints the timers
// until interrupted. A lightweight alternative to the full TUI.
func newMonitorCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Follow the active episode's timers in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			print := func(time.Time) {
				out, err := app.ArrestCLI.Status(context.Background())
				if err != nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), err)
					return
				}
				t := out.Timers
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "check %s  epi %s  elapsed %s  cpr %s  %s\n",
					clockFmt(t.CPRCycleRemaining), clockFmt(t.EpiRemaining),
					clockFmt(t.TotalElapsed), clockFmt(t.TotalCPRTime),
					out.Advisory.Message)
			}
			print(time.Now())

			sched := clock.NewScheduler()
			sched.Start(time.Second, print)
			defer sched.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}

// ─── dys (bradycardia / tachycardia) ─────────────────────────────────────────

func newDysCmd(dataPath *string) *cobra.Command {
	dys := &cobra.Command{Use: "dys", Short: "Bradycardia/tachycardia consultation commands"}

	var weightKg float64
	startCmd := &cobra.Command{
		Use:   "start <adult|pediatric>",
		Short: "Start a consultation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			var weight *float64
			if cmd.Flags().Changed("weight") {
				weight = &weightKg
			}
			out, err := app.DysCLI.Start(context.Background(), args[0], weight)
			if err != nil {
				return err
			}
			printDysSession(cmd, out)
			return nil
		},
	}
	startCmd.Flags().Float64Var(&weightKg, "weight", 0, "patient weight in kg (required for pediatric)")
	dys.AddCommand(startCmd)

	dys.AddCommand(dysSessionCmd(dataPath, "status", "Show the active consultation", func(app *bootstrap.App, _ []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.Status(context.Background())
	}, cobra.NoArgs))
	dys.AddCommand(dysSessionCmd(dataPath, "branch <bradycardia|tachycardia>", "Select the symptomatic branch", func(app *bootstrap.App, args []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.SelectBranch(context.Background(), args[0])
	}, cobra.ExactArgs(1)))
	dys.AddCommand(dysSessionCmd(dataPath, "brady <stable|unstable>", "Assess bradycardia stability", func(app *bootstrap.App, args []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.AssessBradycardia(context.Background(), args[0])
	}, cobra.ExactArgs(1)))

	var regular, monomorphic string
	tachyCmd := &cobra.Command{
		Use:   "tachy <stable|unstable> <narrow|wide>",
		Short: "Assess tachycardia stability and QRS width",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.DysCLI.AssessTachycardia(context.Background(), args[0], args[1],
				triState(regular, "regular"), triState(monomorphic, "mono"))
			if err != nil {
				return err
			}
			printDysSession(cmd, out)
			return nil
		},
	}
	tachyCmd.Flags().StringVar(&regular, "rhythm", "", "regular|irregular")
	tachyCmd.Flags().StringVar(&monomorphic, "morphology", "", "mono|poly")
	dys.AddCommand(tachyCmd)

	dys.AddCommand(dysSessionCmd(dataPath, "sinus <sinus|svt>", "Differentiate sinus tachycardia from SVT (pediatric)", func(app *bootstrap.App, args []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.DifferentiateSVT(context.Background(), args[0], dysdto.SinusDifferentiation{})
	}, cobra.ExactArgs(1)))
	dys.AddCommand(dysSessionCmd(dataPath, "treat <key>", "Apply a treatment from the current menu", func(app *bootstrap.App, args []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.Treat(context.Background(), args[0])
	}, cobra.ExactArgs(1)))
	dys.AddCommand(dysSessionCmd(dataPath, "note <text>", "Append a free-text note", func(app *bootstrap.App, args []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.AddNote(context.Background(), strings.Join(args, " "))
	}, cobra.MinimumNArgs(1)))
	dys.AddCommand(dysSessionCmd(dataPath, "resolve", "Close the consultation as resolved", func(app *bootstrap.App, _ []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.Resolve(context.Background())
	}, cobra.NoArgs))
	dys.AddCommand(dysSessionCmd(dataPath, "transfer", "Close the consultation as transferred", func(app *bootstrap.App, _ []string) (dysdto.SessionOutput, error) {
		return app.DysCLI.Transfer(context.Background())
	}, cobra.NoArgs))

	dys.AddCommand(&cobra.Command{
		Use:   "switch-to-arrest",
		Short: "Freeze the consultation and start an arrest episode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.DysCLI.SwitchToArrest(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "consultation frozen, arrest episode %s started (%s)\n",
				out.ArrestEpisodeID, out.Seed.PatientGroup)
			return nil
		},
	})
	dys.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard the active consultation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.DysCLI.Reset(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "consultation discarded")
			return nil
		},
	})
	return dys
}

func dysSessionCmd(dataPath *string, use, short string, fn func(*bootstrap.App, []string) (dysdto.SessionOutput, error), args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := fn(app, argv)
			if err != nil {
				return err
			}
			printDysSession(cmd, out)
			return nil
		},
	}
}

// ─── log ─────────────────────────────────────────────────────────────────────

func newLogCmd(dataPath *string) *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Print the active episode's intervention log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ArrestCLI.Log(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "episode %s\n", out.EpisodeID)
			for _, e := range out.Entries {
				line := fmt.Sprintf("[%s] %s", clockFmt(e.Elapsed), e.Label)
				if e.Details != "" {
					line += "  " + e.Details
				}
				if e.Value != nil {
					line += fmt.Sprintf("  %.4g %s", *e.Value, e.Unit)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List finished episodes from the index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			episodes, err := app.ArrestCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no finished episodes")
				return nil
			}
			for _, e := range episodes {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d min\t%d shocks\t%d epi\tcpr %.0f%%\n",
					e.StartedAt.Format("2006-01-02 15:04"), e.ID, e.PathwayMode, e.Outcome,
					e.DurationMin, e.ShockCount, e.EpinephrineCount, e.CPRFraction*100)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "maximum episodes to list (0 for all)")
	log.AddCommand(historyCmd)
	return log
}

// ─── report ──────────────────────────────────────────────────────────────────

func newReportCmd(dataPath *string) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Episode export commands"}

	report.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured exporters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			exporters, err := app.ReportCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(exporters) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exporters configured")
				return nil
			}
			for _, e := range exporters {
				state := "enabled"
				if !e.Enabled {
					state = "disabled"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tv%s\t%s\t%s\n",
					e.Name, e.Version, state, strings.Join(e.Capabilities, ","))
			}
			return nil
		},
	})

	report.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Verify exporter binaries, checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			results, err := app.ReportCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			for _, r := range results {
				status := "ok"
				if r.Error != "" {
					status = r.Error
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tbinary=%t\tchecksum=%t\tlifecycle=%t\t%s\n",
					r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK, status)
			}
			return nil
		},
	})

	report.AddCommand(&cobra.Command{
		Use:   "formats <exporter>",
		Short: "List an exporter's formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			formats, err := app.ReportCLI.ListFormats(context.Background(), args[0])
			if err != nil {
				return err
			}
			for _, f := range formats {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", f.ID, f.Title, f.Description)
			}
			return nil
		},
	})

	var outputDir string
	exportCmd := &cobra.Command{
		Use:   "export <exporter> <format>",
		Short: "Export the active episode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ReportCLI.Export(context.Background(), reportdto.ExportInput{
				ExporterName: args[0],
				FormatID:     args[1],
				OutputDir:    outputDir,
			})
			if err != nil {
				return err
			}
			if out.Path != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "written to %s\n", out.Path)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&outputDir, "out", "", "write the export to this directory instead of stdout")
	report.AddCommand(exportCmd)

	report.AddCommand(&cobra.Command{
		Use:   "summary <exporter>",
		Short: "One-line summary of the active episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ReportCLI.Summarize(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Summary)
			return nil
		},
	})
	return report
}

// ─── reference ───────────────────────────────────────────────────────────────

func newReferenceCmd(dataPath *string) *cobra.Command {
	reference := &cobra.Command{Use: "reference", Short: "Protocol reference cards"}

	reference.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			cards, err := app.ReferenceCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reference cards (add files under reference/)")
				return nil
			}
			for _, c := range cards {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Kind, c.Title)
			}
			return nil
		},
	})

	var page int
	readCmd := &cobra.Command{
		Use:   "read <card-id>",
		Short: "Print a card (page by page for PDFs)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ReferenceCLI.Read(context.Background(), args[0], page)
			if err != nil {
				return err
			}
			if out.TotalPage > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (page %d/%d)\n\n", out.Title, out.Page, out.TotalPage)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", out.Title)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}
	readCmd.Flags().IntVar(&page, "page", 1, "PDF page to read")
	reference.AddCommand(readCmd)
	return reference
}

// ─── output helpers ──────────────────────────────────────────────────────────

func printEpisode(cmd *cobra.Command, out arrestdto.EpisodeOutput) {
	s := out.Session
	t := out.Timers
	w := cmd.OutOrStdout()

	header := fmt.Sprintf("%s code  phase=%s", s.PathwayMode, s.Phase)
	if s.CurrentRhythm != "" {
		header += fmt.Sprintf("  rhythm=%s", s.CurrentRhythm)
	}
	if s.InRhythmCheck {
		header += "  [rhythm check open]"
	}
	_, _ = fmt.Fprintln(w, header)
	_, _ = fmt.Fprintf(w, "check %s  epi %s  elapsed %s  cpr %s (%.0f%%)\n",
		clockFmt(t.CPRCycleRemaining), clockFmt(t.EpiRemaining),
		clockFmt(t.TotalElapsed), clockFmt(t.TotalCPRTime), t.CPRFraction()*100)
	_, _ = fmt.Fprintf(w, "shocks=%d", s.ShockCount)
	if s.CurrentEnergyJ > 0 {
		_, _ = fmt.Fprintf(w, " (next %.0f J)", s.CurrentEnergyJ)
	}
	_, _ = fmt.Fprintf(w, "  epi=%d  amio=%d  lido=%d  airway=%s\n",
		s.EpinephrineCount, s.AmiodaroneCount, s.LidocaineCount, s.AirwayStatus)
	_, _ = fmt.Fprintf(w, ">> %s", out.Advisory.Message)
	if out.Advisory.SubMessage != "" {
		_, _ = fmt.Fprintf(w, " (%s)", out.Advisory.SubMessage)
	}
	_, _ = fmt.Fprintln(w)
}

func printDysSession(cmd *cobra.Command, out dysdto.SessionOutput) {
	s := out.Session
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "consultation %s  phase=%s", s.ID, s.Phase)
	if s.Outcome != "" {
		_, _ = fmt.Fprintf(w, "  outcome=%s", s.Outcome)
	}
	_, _ = fmt.Fprintln(w)
	if len(out.Treatments) > 0 {
		_, _ = fmt.Fprintln(w, "treatments:")
		for _, opt := range out.Treatments {
			line := fmt.Sprintf("  %-18s %s", opt.Key, opt.Label)
			if opt.Guidance != "" {
				line += "  (" + opt.Guidance + ")"
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

func triState(value, trueWord string) *bool {
	if value == "" {
		return nil
	}
	v := value == trueWord
	return &v
}

func clockFmt(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
