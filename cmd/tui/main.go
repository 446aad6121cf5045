package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/i18n"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate/memstore"
	templateStore "github.com/MrJamesThe3rd/invoicer/internal/savedtemplate/store"
)

type model struct {
	session       *editor.Session
	renderer      *render.Renderer
	exportService *export.Service
	importService *importer.Service
	templateSvc   *savedtemplate.Service
	verifier      *auth.Verifier
	printer       export.Printer
	downloads     export.DirDownloader
	notices       *view.Notices

	auth          auth.Session
	width, height int

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu      View = 0
	ViewDetails   View = 1
	ViewItems     View = 2
	ViewImages    View = 3
	ViewPreview   View = 4
	ViewExport    View = 5
	ViewTemplates View = 6
	ViewLogin     View = 7
)

func initialModel(ctx context.Context, cfg *config.Config) (model, func(), error) {
	repo, closeRepo, err := templateRepository(ctx, cfg)
	if err != nil {
		return model{}, nil, err
	}

	var sheets []render.Stylesheet
	if cfg.Export.FontCSS != "" {
		sheets = append(sheets, render.NewRemoteStylesheet(cfg.Export.FontCSS))
	}

	renderer, err := render.NewRenderer(sheets...)
	if err != nil {
		closeRepo()
		return model{}, nil, fmt.Errorf("creating renderer: %w", err)
	}

	notices := view.NewNotices()

	expSvc, err := export.NewService(export.Config{
		SettleDelay: cfg.Export.SettleDelay,
		Scale:       cfg.Export.Scale,
	}, notices)
	if err != nil {
		closeRepo()
		return model{}, nil, fmt.Errorf("creating export service: %w", err)
	}

	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)

	sess := auth.Anonymous
	if cfg.Auth.Token != "" {
		if sess, err = verifier.Verify(cfg.Auth.Token); err != nil {
			slog.Warn("INVOICER_TOKEN rejected; starting signed out", "error", err)
		}
	}

	return model{
		session:       editor.NewSession(invoice.Default(time.Now())),
		renderer:      renderer,
		exportService: expSvc,
		importService: importer.NewService(),
		templateSvc:   savedtemplate.NewService(repo),
		verifier:      verifier,
		printer:       export.NewSpoolPrinter(cfg.Export.SpoolDir, cfg.Export.PrintCmd),
		downloads:     export.DirDownloader{Dir: cfg.Export.Dir},
		notices:       notices,
		auth:          sess,
		currentView:   ViewMenu,
	}, closeRepo, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewDetails:
		m.active = view.NewDetailsModel(m.session)
	case ViewItems:
		m.active = view.NewItemsModel(m.session, m.importService)
	case ViewImages:
		m.active = view.NewImagesModel(m.session)
	case ViewPreview:
		m.active = view.NewPreviewModel(m.session, m.width, m.height)
	case ViewExport:
		m.active = view.NewExportModel(m.session, m.renderer, m.exportService, m.printer, m.downloads, m.notices)
	case ViewTemplates:
		m.active = view.NewTemplatesModel(m.session, m.templateSvc, m.auth)
	case ViewLogin:
		m.active = view.NewLoginModel(m.verifier, m.auth)
	default:
		return m, nil
	}

	m.currentView = v

	return m, m.active.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1", "2", "3", "4", "5", "6", "7":
				return m.open(View(msg.Runes[0] - '0'))
			}

			return m, nil
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	case view.LoginRequiredMsg:
		return m.open(ViewLogin)
	case view.SessionChangedMsg:
		m.auth = msg.Session
		if !m.auth.Authenticated() {
			m.currentView = ViewMenu
			m.active = nil

			return m, nil
		}

		return m.open(ViewTemplates)
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView != ViewMenu && m.active != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Padding(1, 1, 0).Render(m.active.Title()),
			m.active.View(),
			lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingLeft(1).Render(m.active.ShortHelp()),
		)
	}

	doc := m.session.Document()

	signedIn := "Not signed in"
	if m.auth.Authenticated() {
		signedIn = "Signed in as " + m.auth.OwnerID.String()
		if m.auth.Email != "" {
			signedIn = "Signed in as " + m.auth.Email
		}
	}

	return lipgloss.NewStyle().Padding(2).Render(
		"Invoicer\n\n" +
			fmt.Sprintf("%s · %s · %s\n", doc.InvoiceNumber, doc.ClientName, i18n.FormatCurrency(doc.Total())) +
			signedIn + "\n\n" +
			"1. Edit Details\n" +
			"2. Line Items\n" +
			"3. Images\n" +
			"4. Preview\n" +
			"5. Export\n" +
			"6. Templates\n" +
			"7. Sign In\n\n" +
			"q. Quit",
	)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	logFile, err := tea.LogToFile("invoicer-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	err = run()

	logFile.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	m, closeRepo, err := initialModel(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return err
	}
	defer closeRepo()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		return err
	}

	return nil
}

func templateRepository(ctx context.Context, cfg *config.Config) (savedtemplate.Repository, func(), error) {
	if cfg.Templates.Store == config.StoreMemory {
		slog.Info("using in-memory template store")
		return memstore.New(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, cfg.ConnectionString()); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return templateStore.New(db), func() { db.Close() }, nil
}
