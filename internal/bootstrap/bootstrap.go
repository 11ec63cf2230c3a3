package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	arrestinadapter "codeclock/internal/modules/arrest/adapter/in"
	arrestoutadapter "codeclock/internal/modules/arrest/adapter/out"
	arrestin "codeclock/internal/modules/arrest/port/in"
	arrestservice "codeclock/internal/modules/arrest/service"
	arrestusecase "codeclock/internal/modules/arrest/usecase"
	dysinadapter "codeclock/internal/modules/dysrhythmia/adapter/in"
	dysoutadapter "codeclock/internal/modules/dysrhythmia/adapter/out"
	dysservice "codeclock/internal/modules/dysrhythmia/service"
	dysusecase "codeclock/internal/modules/dysrhythmia/usecase"
	refinadapter "codeclock/internal/modules/reference/adapter/in"
	refoutadapter "codeclock/internal/modules/reference/adapter/out"
	refservice "codeclock/internal/modules/reference/service"
	refusecase "codeclock/internal/modules/reference/usecase"
	reportinadapter "codeclock/internal/modules/report/adapter/in"
	reportoutadapter "codeclock/internal/modules/report/adapter/out"
	reportservice "codeclock/internal/modules/report/service"
	reportusecase "codeclock/internal/modules/report/usecase"
	"codeclock/internal/platform/clock"
	"codeclock/internal/platform/config"
	"codeclock/internal/platform/id"
	uiapp "codeclock/internal/ui/app"
)

type App struct {
	ArrestCLI    arrestinadapter.CLIHandler
	DysCLI       dysinadapter.CLIHandler
	ReferenceCLI refinadapter.CLIHandler
	ReportCLI    reportinadapter.CLIHandler

	arrestUC  arrestin.Usecase
	scheduler *clock.Scheduler
	projector *arrestoutadapter.SQLiteEpisodeProjector
	snapshot  time.Duration
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}
	logger := hclog.New(&hclog.LoggerOptions{Name: "codeclock", Output: os.Stderr, Level: hclog.Warn})

	projector, err := arrestoutadapter.NewSQLiteEpisodeProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new episode projector: %w", err)
	}
	snapshotStore := arrestoutadapter.NewFileSnapshotStore(cfg.DataPath)
	arrestUC := arrestusecase.NewInteractor(
		arrestservice.NewArrestService(clk, ids, cfg.Protocol),
		clk,
		snapshotStore,
		arrestoutadapter.NewVaultEpisodeStore(cfg.DataPath),
		projector,
		logger,
	)

	dysUC := dysusecase.NewInteractor(
		dysservice.NewDysrhythmiaService(clk, ids, cfg.Protocol),
		clk,
		dysoutadapter.NewFileSnapshotStore(cfg.DataPath),
		arrestUC,
		logger,
	)

	refUC := refusecase.NewInteractor(refservice.NewReferenceService(
		refoutadapter.NewDirCardCatalog(cfg.DataPath),
		refoutadapter.NewLocalMarkdownReader(),
		refoutadapter.NewLocalPDFReader(),
	))

	reportUC := reportusecase.NewInteractor(reportservice.NewReportService(
		reportoutadapter.NewFileManifestStore(cfg.DataPath),
		reportoutadapter.NewGRPCHost(),
		reportoutadapter.NewSnapshotEpisodeSource(snapshotStore),
		cfg.DataPath,
	))

	return &App{
		ArrestCLI:    arrestinadapter.NewCLIHandler(arrestUC),
		DysCLI:       dysinadapter.NewCLIHandler(dysUC),
		ReferenceCLI: refinadapter.NewCLIHandler(refUC),
		ReportCLI:    reportinadapter.NewCLIHandler(reportUC),
		arrestUC:     arrestUC,
		scheduler:    clock.NewScheduler(),
		projector:    projector,
		snapshot:     cfg.Protocol.SnapshotInterval(),
	}, nil
}

// StartAutosave refreshes the active snapshot's saved-at stamp periodically
// so a crash loses at most one interval of perceived downtime on resume.
func (a *App) StartAutosave() {
	a.scheduler.Start(a.snapshot, func(time.Time) {
		_ = a.arrestUC.Touch(context.Background())
	})
}

func (a *App) Close() error {
	a.scheduler.Stop()
	return a.projector.Close()
}

func RunTUI(app *App) error {
	app.StartAutosave()
	defer app.scheduler.Stop()
	model := uiapp.NewModel(app.ArrestCLI, app.DysCLI, app.ReferenceCLI, app.ReportCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
