package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/api"
	"github.com/Alexander-D-Karpov/sonicflow/internal/audio"
	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/handlers"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/media"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
	"github.com/Alexander-D-Karpov/sonicflow/internal/search"
	"github.com/Alexander-D-Karpov/sonicflow/internal/services"
	"github.com/Alexander-D-Karpov/sonicflow/internal/storage"
	"github.com/Alexander-D-Karpov/sonicflow/internal/ui/components"
	"github.com/Alexander-D-Karpov/sonicflow/internal/ui/themes"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

const (
	seekStep = 10 * time.Second
	// window size is written once resizing settles
	windowSaveDelay = time.Second
)

// App is the host window: a searchable catalog with the floating player
// drawn over it.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	ctx     context.Context
	cfg     *config.Config
	logger  *zap.Logger

	api         *api.Client
	storage     *storage.Database
	output      *audio.Player
	search      *search.Engine
	bus         *handlers.EventBus
	catalog     *services.CatalogService
	session     *services.Session
	history     *services.PlayHistoryService
	controller  *player.Controller
	images      *media.ImageLoader
	syncManager *storage.SyncManager

	floating         *components.FloatingPlayer
	catalogList      *components.CatalogList
	searchEntry      *widget.Entry
	statusBar        *widget.Label
	loadingIndicator *widget.ProgressBarInfinite
	overlay          *fyne.Container

	lastWindowSize fyne.Size
	saveTimer      *time.Timer
	statusGen      int
	searchGen      int
	closeOnce      sync.Once
}

func NewApp(ctx context.Context, fyneApp fyne.App, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	fyneApp.Settings().SetTheme(themes.NewTheme(cfg.UI.Theme))

	storageDB, err := storage.NewDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	apiClient := api.NewClient(cfg, logger)
	searchEngine := search.NewEngine(cfg, storageDB, logger)
	bus := handlers.NewEventBus(logger)

	window := fyneApp.NewWindow("Sonicflow")
	window.SetPadded(false)
	window.Resize(fyne.NewSize(float32(cfg.UI.WindowWidth), float32(cfg.UI.WindowHeight)))
	window.CenterOnScreen()

	a := &App{
		fyneApp:     fyneApp,
		window:      window,
		ctx:         ctx,
		cfg:         cfg,
		logger:      logger.Named("app"),
		api:         apiClient,
		storage:     storageDB,
		output:      audio.NewPlayer(cfg, fyne.Do, logger),
		search:      searchEngine,
		bus:         bus,
		catalog:     services.NewCatalogService(apiClient, storageDB, searchEngine, bus, logger),
		session:     services.NewSession(player.ParseEndPolicy(cfg.Player.EndPolicy), bus, logger),
		history:     services.NewPlayHistoryService(storageDB, logger),
		images:      media.NewImageLoader(cfg, storageDB, fyne.Do, logger),
	}

	viewport := fyne.NewSize(float32(cfg.UI.WindowWidth), float32(cfg.UI.WindowHeight))
	a.controller = player.NewController(player.OptionsFromConfig(cfg), a.output, viewport,
		a.session.Callbacks(), fyne.Do, logger)

	if apiClient.Configured() {
		interval := time.Duration(cfg.Storage.SyncInterval) * time.Second
		a.syncManager = storage.NewSyncManager(a.catalog.FetchRemote, storageDB, interval, logger)
	}

	a.logger.Debug("application initializing")

	a.setupUI()
	a.setupEventHandlers()
	a.setupKeyboardShortcuts()
	a.startBackgroundTasks()

	a.logger.Debug("application initialized")
	return a, nil
}

func (a *App) setupUI() {
	a.floating = components.NewFloatingPlayer(a.controller, a.images, a.logger)
	a.catalogList = components.NewCatalogList(a.images)

	a.searchEntry = widget.NewEntry()
	a.searchEntry.SetPlaceHolder("Search events, artists, genres, places...")
	a.searchEntry.ActionItem = widget.NewIcon(theme.SearchIcon())

	a.statusBar = widget.NewLabel("Ready")
	a.loadingIndicator = widget.NewProgressBarInfinite()
	a.loadingIndicator.Hide()

	header := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle("Sonicflow", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil,
		a.searchEntry,
	)

	statusContainer := container.NewBorder(
		nil, nil,
		a.statusBar, a.loadingIndicator,
		nil,
	)

	content := container.NewBorder(
		container.NewPadded(header),
		statusContainer,
		nil, nil,
		container.NewVScroll(a.catalogList),
	)

	// the floating player is positioned by hand inside a layout-free overlay
	a.overlay = container.NewWithoutLayout(a.floating)

	a.window.SetContent(container.NewStack(content, a.overlay))
	a.window.SetOnClosed(a.Close)

	go a.monitorWindowResize()
}

// monitorWindowResize polls the canvas size; fyne has no resize callback.
func (a *App) monitorWindowResize() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			fyne.Do(a.handleWindowResize)
		}
	}
}

func (a *App) handleWindowResize() {
	size := a.window.Canvas().Size()
	if size == a.lastWindowSize || size.Width <= 0 || size.Height <= 0 {
		return
	}

	a.logger.Debug("window resized", zap.Any("from", a.lastWindowSize), zap.Any("to", size))
	first := a.lastWindowSize == fyne.Size{}
	a.lastWindowSize = size
	a.controller.Resize(size)

	if first {
		return
	}

	a.cfg.SetWindowSize(int(size.Width), int(size.Height))
	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.saveTimer = time.AfterFunc(windowSaveDelay, a.saveWindowSize)
}

func (a *App) saveWindowSize() {
	if err := a.cfg.Save(); err != nil {
		a.logger.Debug("failed to save window size", zap.Error(err))
	}
}

func (a *App) setupEventHandlers() {
	a.session.OnChange(func(in player.Input) {
		a.controller.Render(in)
		a.catalogList.SetCurrent(in.CurrentTrack)
	})

	a.controller.OnChange(a.floating.Apply)
	a.controller.OnFrame(a.floating.SetFrame)
	a.output.OnBuffer(a.floating.SetBuffered)

	a.catalogList.OnPlay(func(t *types.Track) {
		a.session.Select(t)
	})
	a.catalogList.OnEnqueue(func(t *types.Track) {
		a.session.AddToQueue(t)
		a.updateStatus(fmt.Sprintf("Queued: %s", t.Title))
	})

	a.searchEntry.OnChanged = a.runSearch

	a.history.Attach(a.bus)
	a.bus.Subscribe(handlers.EventTrackChanged, func(data interface{}) {
		t, _ := data.(*types.Track)
		if t == nil {
			return
		}
		plays, err := a.storage.PlayCount(a.ctx, t.ID)
		if err != nil {
			a.logger.Debug("play count unavailable", zap.String("track", t.ID), zap.Error(err))
			plays = 0
		}
		fyne.Do(func() {
			a.updateStatus(fmt.Sprintf("Playing: %s (%s)", t.Title, playsLabel(plays)))
		})
	})

	if a.syncManager != nil {
		a.syncManager.OnComplete(func(remote []*types.Track) {
			catalog := a.catalog.Compose(remote)
			fyne.Do(func() {
				a.applyCatalog(catalog)
				a.updateStatus(fmt.Sprintf("Catalog refreshed: %d events", len(remote)))
			})
		})
		a.syncManager.OnError(func(err error) {
			fyne.Do(func() { a.updateStatus(fmt.Sprintf("Sync error: %v", err)) })
		})
	}

	err := a.cfg.OnPlayerChange(func(cfg *config.Config, ev fsnotify.Event) {
		fyne.Do(func() {
			a.session.SetPolicy(player.ParseEndPolicy(cfg.Player.EndPolicy))
			a.logger.Info("player settings reloaded; view flags apply after restart",
				zap.String("file", ev.Name),
				zap.String("end_policy", cfg.Player.EndPolicy))
		})
	})
	if err != nil {
		a.logger.Warn("config reload disabled", zap.Error(err))
	}
}

func (a *App) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			a.session.PlayPause()
		case fyne.KeyRight:
			a.seekBy(seekStep)
		case fyne.KeyLeft:
			a.seekBy(-seekStep)
		case fyne.KeyEscape:
			if a.session.Current() != nil {
				a.controller.ToggleMinimized()
			}
		}
	})

	a.window.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'f', 'F', '/':
			a.window.Canvas().Focus(a.searchEntry)
		case 'n', 'N':
			a.session.Next()
		case 'p', 'P':
			a.session.Prev()
		case 'q', 'Q':
			a.controller.ToggleQueue()
		}
	})
}

func (a *App) seekBy(delta time.Duration) {
	state := a.controller.State()
	if state.Total <= 0 {
		return
	}
	target := state.Elapsed + delta
	a.controller.Seek(float64(target) / float64(state.Total) * 100)
}

func (a *App) startBackgroundTasks() {
	a.showLoading(true)
	a.updateStatus("Loading catalog...")

	go func() {
		catalog, err := a.catalog.Load(a.ctx)

		var lastSync time.Time
		if err != nil && a.syncManager != nil {
			lastSync = a.syncManager.LastSyncTime(a.ctx)
		}

		fyne.Do(func() {
			a.showLoading(false)
			a.applyCatalog(catalog)

			switch {
			case err != nil && !lastSync.IsZero():
				a.updateStatus(fmt.Sprintf("Offline, events cached %s: %v", lastSync.Format(time.DateTime), err))
			case err != nil:
				a.updateStatus(fmt.Sprintf("Offline: %v", err))
			case a.syncManager == nil:
				a.updateStatus(fmt.Sprintf("%d tracks (offline catalog)", len(catalog)))
			default:
				a.updateStatus(fmt.Sprintf("%d tracks", len(catalog)))
			}
		})
		if errors.Is(err, context.Canceled) {
			return
		}

		if a.syncManager != nil {
			a.syncManager.Start(a.ctx)
		}

		var covers []string
		for _, t := range catalog {
			covers = append(covers, t.Cover)
		}
		a.images.Preload(covers)
	}()
}

// applyCatalog swaps the catalog shown in the list and used for next/prev.
func (a *App) applyCatalog(catalog []*types.Track) {
	a.session.SetCatalog(catalog)
	if strings.TrimSpace(a.searchEntry.Text) == "" {
		a.catalogList.SetTracks(catalog)
	} else {
		a.runSearch(a.searchEntry.Text)
	}
}

func (a *App) runSearch(query string) {
	a.searchGen++
	gen := a.searchGen

	if strings.TrimSpace(query) == "" {
		a.catalogList.SetTracks(a.session.Catalog())
		return
	}

	go func() {
		results, err := a.catalog.Search(a.ctx, query)
		fyne.Do(func() {
			if gen != a.searchGen {
				return
			}
			if err != nil {
				a.updateStatus(fmt.Sprintf("Search failed: %v", err))
				return
			}
			a.catalogList.SetTracks(results)
			a.updateStatus(fmt.Sprintf("%d results for %q", len(results), query))
		})
	}()
}

// updateStatus shows message and falls back to "Ready" after five seconds
// unless a newer message replaced it.
func (a *App) updateStatus(message string) {
	a.statusGen++
	gen := a.statusGen
	a.statusBar.SetText(message)

	time.AfterFunc(5*time.Second, func() {
		fyne.Do(func() {
			if gen == a.statusGen {
				a.statusBar.SetText("Ready")
			}
		})
	})
}

func (a *App) showLoading(show bool) {
	if show {
		a.loadingIndicator.Show()
		a.loadingIndicator.Start()
	} else {
		a.loadingIndicator.Stop()
		a.loadingIndicator.Hide()
	}
}

func (a *App) ShowAndRun() {
	a.logger.Debug("showing main window")
	a.window.ShowAndRun()
}

// Close releases everything in reverse dependency order. It is safe to call
// more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.logger.Debug("shutting down")

		if err := a.cfg.StopWatching(); err != nil {
			a.logger.Debug("stop config watcher", zap.Error(err))
		}
		// a pending resize save runs now instead of after exit
		if a.saveTimer != nil && a.saveTimer.Stop() {
			a.saveWindowSize()
		}

		if a.syncManager != nil {
			a.syncManager.Stop()
		}

		a.controller.Dispose()
		a.bus.Wait()
		a.images.Close()

		if err := a.storage.Close(); err != nil {
			a.logger.Warn("error closing database", zap.Error(err))
		}

		stats := a.api.GetStats()
		a.logger.Debug("shutdown complete", zap.Any("api", stats))
	})
}

func playsLabel(n int) string {
	if n == 1 {
		return "1 play"
	}
	return fmt.Sprintf("%d plays", n)
}
