package ui

import (
	"errors"
	"strings"
	"time"

	"dineright/internal/catalog"
	"dineright/internal/model"
	"dineright/internal/preference"
	"dineright/internal/recommend"
	"dineright/internal/relation"
	"dineright/internal/review"
	"dineright/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// Backend is everything the screens call remotely. *remote.Client
// satisfies it.
type Backend interface {
	session.Authenticator
	catalog.Source
	preference.Saver
	relation.Remote
	relation.Lister
	recommend.Source
	review.Submitter
	ReviewLister
}

// Options configures New.
type Options struct {
	// ConfigDir holds ui_prefs.json; empty disables persistence.
	ConfigDir string
	Logger    zerolog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	backend   Backend
	configDir string
	log       zerolog.Logger

	session   *session.Store
	catalog   *catalog.Index
	relations *relation.Engine
	gateway   *recommend.Gateway

	screen     model.Screen
	prevScreen model.Screen
	mode       model.Mode
	gState     GState

	width  int
	height int

	error          string
	info           string
	showingHelp    bool
	signingUp      bool
	catalogLoading bool

	spinner spinner.Model
	search  textinput.Model

	// Screen models
	authForm    *AuthFormModel
	prefsForm   *PreferencesModel
	restaurants *RestaurantTable
	detail      *RestaurantDetailModel
	reviewForm  *ReviewFormModel
	corner      *CornerModel
	recs        *RecommendationsModel

	keys     KeyMap
	formKeys FormKeyMap
	prefs    UIPreferences
}

// New creates the root model on backend.
func New(backend Backend, opts Options) Model {
	log := opts.Logger.With().Str("component", "ui").Logger()

	store := session.NewStore(backend, opts.Logger)
	index := catalog.New()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = PendingStyle

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, location or cuisine"
	search.CharLimit = 100

	prefs := loadUIPreferences(opts.ConfigDir)
	search.SetValue(prefs.LastSearch)

	m := Model{
		backend:   backend,
		configDir: opts.ConfigDir,
		log:       log,
		session:   store,
		catalog:   index,
		relations: relation.NewEngine(backend, store, opts.Logger),
		gateway:   recommend.NewGateway(backend, index, opts.Logger),
		screen:    model.ScreenLogin,
		mode:      model.ModeInsert,
		gState:    GStateIdle,
		spinner:   sp,
		search:    search,
		keys:      DefaultKeyMap(),
		formKeys:  DefaultFormKeyMap(),
		prefs:     prefs,
	}
	m.authForm = NewAuthFormModel(false, prefs.LastEmail)
	m.resetViews()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) resetViews() {
	m.restaurants = NewRestaurantTable(nil, "No restaurants loaded. Press ctrl+r to retry.")
	m.restaurants.ApplyPrefs(m.prefs.Catalog)
	m.corner = NewCornerModel()
	m.corner.wishlist.ApplyPrefs(m.prefs.Corner)
	m.corner.visited.ApplyPrefs(m.prefs.Corner)
	m.recs = NewRecommendationsModel()
	m.detail = nil
	m.reviewForm = nil
	m.prefsForm = nil

	store, relations := m.session, m.relations
	marker := func(r model.Restaurant) string {
		uid, ok := store.UserID()
		if !ok {
			return ""
		}
		return relationMarker(relations.State(uid, r.ID))
	}
	m.restaurants.SetMarker(marker)
	m.corner.wishlist.SetMarker(marker)
	m.corner.visited.SetMarker(marker)
	m.recs.Table().SetMarker(marker)
}

func (m *Model) setNotice(n model.Notice) {
	if n.Empty() {
		return
	}
	if n.Level == model.NoticeError {
		m.error = n.Text
		m.info = ""
		return
	}
	m.info = n.Text
	m.error = ""
}

// navigate switches to screen through the session gate.
func (m *Model) navigate(screen model.Screen) {
	target := m.session.Gate(screen)
	if target != m.screen {
		m.prevScreen = m.screen
	}
	m.screen = target
	m.gState = GStateIdle

	switch target {
	case model.ScreenLogin, model.ScreenSignup, model.ScreenPreferences:
		m.mode = model.ModeInsert
	default:
		m.mode = model.ModeNav
	}
	if target == model.ScreenLogin && m.authForm == nil {
		m.authForm = NewAuthFormModel(false, m.prefs.LastEmail)
	}
}

func (m *Model) persistPrefs() {
	if err := saveUIPreferences(m.configDir, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("failed to save ui preferences")
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "?" && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}
		if m.showingHelp {
			if msg.String() == "esc" || msg.String() == "?" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitAuthMsg:
		return m.beginAuth(msg)

	case switchAuthMsg:
		signup := m.screen == model.ScreenLogin
		email := ""
		if m.authForm != nil {
			email = m.authForm.Email()
		}
		m.authForm = NewAuthFormModel(signup, email)
		if signup {
			m.navigate(model.ScreenSignup)
		} else {
			m.navigate(model.ScreenLogin)
		}
		m.error = ""
		return m, nil

	case session.ResultMsg:
		return m.finishAuth(msg)

	case catalog.LoadedMsg:
		if msg.Seq != m.session.Seq() || !m.session.IsAuthenticated() {
			m.log.Debug().Uint64("seq", msg.Seq).Msg("dropping catalog from a past session")
			return m, nil
		}
		m.catalogLoading = false
		m.setNotice(m.catalog.Apply(msg))
		m.refreshRows()
		if m.recs.loaded {
			// Recommendations that arrived first resolve against the new catalog.
			m.recs.Set(m.recs.refs, m.gateway.Resolve(m.recs.refs))
		}
		if m.detail != nil {
			if r, err := m.catalog.GetByID(m.detail.ID()); err == nil {
				m.detail.Replace(r)
			}
		}
		return m, nil

	case relation.SyncedMsg:
		m.setNotice(m.relations.ApplySync(msg))
		m.refreshRows()
		return m, nil

	case relation.ResultMsg:
		m.setNotice(m.relations.Resolve(msg))
		m.refreshRows()
		return m, nil

	case savePrefsMsg:
		uid, ok := m.session.UserID()
		if !ok {
			m.navigate(model.ScreenLogin)
			return m, nil
		}
		q, err := preference.Compile(uid, msg.selections)
		if err != nil {
			if m.prefsForm != nil {
				m.prefsForm.SetError(incompleteText(err))
			}
			return m, nil
		}
		m.info = "Saving preferences…"
		m.error = ""
		return m, preference.SaveCmd(m.backend, q)

	case preference.SavedMsg:
		m.setNotice(msg.Notice())
		if msg.Err != nil {
			return m, nil
		}
		m.prefsForm = nil
		m.signingUp = false
		m.navigate(model.ScreenRecommendations)
		return m, m.fetchRecommendations()

	case submitReviewMsg:
		uid, ok := m.session.UserID()
		if !ok {
			m.navigate(model.ScreenLogin)
			return m, nil
		}
		m.info = "Posting review…"
		m.error = ""
		return m, review.SubmitCmd(m.backend, model.NewReview{
			UserID:       uid,
			RestaurantID: msg.restaurantID,
			Rating:       msg.rating,
			Comment:      msg.comment,
		})

	case review.SubmittedMsg:
		if uid, ok := m.session.UserID(); !ok || uid != msg.UserID {
			return m, nil
		}
		m.setNotice(msg.Notice())
		if msg.Err != nil {
			return m, nil
		}
		m.reviewForm = nil
		if m.screen == model.ScreenDetail {
			m.mode = model.ModeNav
		}
		return m, tea.Batch(m.fetchCatalog(), loadReviewsWrittenCmd(m.backend, msg.UserID))

	case recommend.LoadedMsg:
		if uid, ok := m.session.UserID(); ok && uid == msg.UserID {
			m.recs.Set(msg.Refs, m.gateway.Resolve(msg.Refs))
		}
		return m, nil

	case reviewsWrittenMsg:
		if uid, ok := m.session.UserID(); !ok || uid != msg.userID {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to load written reviews")
			m.setNotice(model.ErrorNotice("Could not load your reviews."))
			m.corner.SetReviews(nil)
			return m, nil
		}
		m.corner.SetReviews(msg.reviews)
		return m, nil

	case model.FormCancelledMsg:
		switch {
		case m.reviewForm != nil:
			m.reviewForm = nil
			m.mode = model.ModeNav
		case m.prefsForm != nil:
			m.prefsForm = nil
			m.signingUp = false
			m.navigate(model.ScreenCatalog)
		}
		return m, nil
	}

	if m.mode == model.ModeInsert {
		return m.handleInsertMode(msg)
	}
	return m, nil
}

func incompleteText(err error) string {
	if errors.Is(err, model.ErrIncompleteSelection) {
		if _, detail, ok := strings.Cut(err.Error(), ": "); ok {
			return "Incomplete: " + detail
		}
	}
	return err.Error()
}

func (m Model) busy() bool {
	return m.session.Snapshot().Status == session.Authenticating ||
		m.catalogLoading ||
		(m.recs != nil && m.recs.loading && !m.recs.loaded)
}

func (m Model) beginAuth(msg submitAuthMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var err error
	if msg.signup {
		cmd, err = m.session.BeginSignup(model.Signup{Name: msg.name, Email: msg.creds.Email, Password: msg.creds.Password})
	} else {
		cmd, err = m.session.BeginLogin(msg.creds)
	}
	if errors.Is(err, model.ErrOperationInFlight) {
		m.info = "Still signing in…"
		return m, nil
	}
	if err != nil {
		m.error = err.Error()
		return m, nil
	}

	m.prefs.LastEmail = strings.TrimSpace(msg.creds.Email)
	m.persistPrefs()

	if cmd == nil {
		// Rejected without a request.
		if m.authForm != nil {
			m.authForm.ClearPassword()
		}
		return m, nil
	}
	m.signingUp = msg.signup
	m.error = ""
	m.info = ""
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) finishAuth(msg session.ResultMsg) (tea.Model, tea.Cmd) {
	notice := m.session.Resolve(msg)
	uid, ok := m.session.UserID()
	if !ok {
		if notice.Level == model.NoticeError {
			m.error = ""
			if m.authForm != nil {
				m.authForm.ClearPassword()
			}
		}
		return m, nil
	}

	m.setNotice(notice)
	m.authForm = nil
	m.resetViews()

	cmds := []tea.Cmd{
		m.fetchCatalog(),
		m.relations.SyncCmd(m.backend, uid),
		loadReviewsWrittenCmd(m.backend, uid),
	}
	if m.signingUp {
		m.prefsForm = NewPreferencesModel(nil)
		m.navigate(model.ScreenPreferences)
	} else {
		m.navigate(model.ScreenCatalog)
		cmds = append(cmds, m.fetchRecommendations())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) fetchCatalog() tea.Cmd {
	m.catalogLoading = true
	return tea.Batch(catalog.FetchCmd(m.backend, m.session.Seq()), m.spinner.Tick)
}

func (m *Model) fetchRecommendations() tea.Cmd {
	uid, ok := m.session.UserID()
	if !ok {
		return nil
	}
	m.recs.SetLoading()
	return tea.Batch(m.gateway.FetchCmd(uid), m.spinner.Tick)
}

// refreshRows rebuilds every table from the catalog and the relation engine.
func (m *Model) refreshRows() {
	m.restaurants.SetRows(m.catalog.Search(m.search.Value()))

	uid, ok := m.session.UserID()
	if !ok {
		return
	}
	m.corner.SetMembers(
		m.resolveIDs(m.relations.Members(uid, relation.Wishlist)),
		m.resolveIDs(m.relations.Members(uid, relation.Visited)),
	)
}

func (m *Model) resolveIDs(ids []int64) []model.Restaurant {
	out := make([]model.Restaurant, 0, len(ids))
	for _, id := range ids {
		if r, err := m.catalog.GetByID(id); err == nil {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) logout() {
	if uid, ok := m.session.UserID(); ok {
		m.relations.Forget(uid)
	}
	m.session.Logout()
	m.catalog.Clear()
	m.resetViews()
	m.signingUp = false
	m.catalogLoading = false
	m.authForm = NewAuthFormModel(false, m.prefs.LastEmail)
	m.navigate(model.ScreenLogin)
	m.info = "Logged out"
	m.error = ""
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	screen := m.session.Gate(m.screen)
	showTabs := screen == model.ScreenCatalog ||
		screen == model.ScreenRecommendations ||
		screen == model.ScreenCorner

	contentHeight := m.height - 4
	if showTabs {
		contentHeight -= 2
	}
	if m.error != "" {
		contentHeight--
	}
	if m.info != "" {
		contentHeight--
	}
	contentHeight = max(1, contentHeight)

	var content string
	breadcrumbParts := []string{screen.String()}

	switch screen {
	case model.ScreenLogin, model.ScreenSignup:
		if m.authForm != nil {
			busy := ""
			snap := m.session.Snapshot()
			if snap.Status == session.Authenticating {
				busy = m.spinner.View() + " Signing in…"
			}
			content = m.authForm.View(m.width, contentHeight, snap.LastError, busy)
		}
	case model.ScreenPreferences:
		if m.prefsForm != nil {
			content = m.prefsForm.View(m.width, contentHeight)
		}
	case model.ScreenCatalog:
		content = m.catalogView(contentHeight)
	case model.ScreenDetail:
		if m.detail != nil {
			breadcrumbParts = []string{m.prevScreen.String(), m.detail.Name()}
			if m.reviewForm != nil {
				content = m.reviewForm.View(m.width, contentHeight)
			} else {
				uid, _ := m.session.UserID()
				content = m.detail.View(m.width, contentHeight, m.relations.State(uid, m.detail.ID()))
			}
		}
	case model.ScreenCorner:
		content = m.corner.View(m.width, contentHeight)
	case model.ScreenRecommendations:
		content = m.recs.View(m.width, contentHeight, m.spinner.View())
	}

	parts := []string{renderHeader(breadcrumbParts, m.session.Snapshot(), m.width)}
	if showTabs {
		parts = append(parts, renderTabs(screen, m.width))
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}

	// Fill the available height to anchor the footer at the bottom.
	parts = append(parts,
		lipgloss.NewStyle().Width(m.width).Height(contentHeight).Render(content),
		RenderHelp(screen, m.mode, m.keys, m.formKeys, m.width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) catalogView(height int) string {
	searchLine := m.search.View()
	if m.mode != model.ModeInsert && m.search.Value() == "" {
		searchLine = HelpDescStyle.Render("/ to search")
	}
	if m.catalogLoading && !m.catalog.Loaded() {
		searchLine += "  " + m.spinner.View() + HelpDescStyle.Render(" loading restaurants…")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(searchLine),
		m.restaurants.View(m.width, max(1, height-1)),
	)
}

var tabScreens = []model.Screen{
	model.ScreenCatalog,
	model.ScreenRecommendations,
	model.ScreenCorner,
}

func renderTabs(screen model.Screen, width int) string {
	var tabStrings []string
	for _, s := range tabScreens {
		style := TabStyle
		if s == screen {
			style = ActiveTabStyle
		}
		tabStrings = append(tabStrings, style.Render(s.String()))
	}
	return TabBarStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...))
}

func renderHeader(breadcrumbParts []string, snap session.Session, width int) string {
	title := HeaderStyle.Render("dineright")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(snap.Status.String()) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleInsertMode routes input to the focused form.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.screen {
	case model.ScreenLogin, model.ScreenSignup:
		if m.authForm != nil && isKey {
			form, cmd := m.authForm.Update(keyMsg)
			m.authForm = &form
			return m, cmd
		}
	case model.ScreenPreferences:
		if m.prefsForm != nil && isKey {
			form, cmd := m.prefsForm.Update(keyMsg)
			m.prefsForm = &form
			return m, cmd
		}
	case model.ScreenDetail:
		if m.reviewForm != nil && isKey {
			form, cmd := m.reviewForm.Update(keyMsg)
			m.reviewForm = &form
			return m, cmd
		}
	case model.ScreenCatalog:
		return m.handleSearchInput(msg)
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.search.SetValue("")
			fallthrough
		case "enter":
			m.search.Blur()
			m.mode = model.ModeNav
			m.prefs.LastSearch = m.search.Value()
			m.persistPrefs()
			m.restaurants.SetRows(m.catalog.Search(m.search.Value()))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.restaurants.SetRows(m.catalog.Search(m.search.Value()))
	return m, cmd
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t := m.currentTable(); t != nil {
		if handled := m.handleTableKeys(t, msg); handled {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.logout()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.Preferences):
		var cuisines []string
		if m.catalog.Loaded() {
			cuisines = m.catalog.Cuisines()
		}
		m.prefsForm = NewPreferencesModel(cuisines)
		m.navigate(model.ScreenPreferences)
		return m, nil
	case key.Matches(msg, m.keys.Restaurants):
		m.navigate(model.ScreenCatalog)
		return m, nil
	case key.Matches(msg, m.keys.Recommendations):
		m.navigate(model.ScreenRecommendations)
		if !m.recs.loaded && !m.recs.loading {
			return m, m.fetchRecommendations()
		}
		return m, nil
	case key.Matches(msg, m.keys.Corner):
		m.navigate(model.ScreenCorner)
		return m, nil
	}

	// "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		if t := m.currentTable(); t != nil {
			t.JumpToTop()
		}
		return m, nil
	}
	m.gState = GStateIdle

	switch m.screen {
	case model.ScreenCatalog, model.ScreenRecommendations:
		return m.handleListNav(msg)
	case model.ScreenCorner:
		return m.handleCornerNav(msg)
	case model.ScreenDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m *Model) currentTable() *RestaurantTable {
	switch m.screen {
	case model.ScreenCatalog:
		return m.restaurants
	case model.ScreenRecommendations:
		return m.recs.Table()
	case model.ScreenCorner:
		return m.corner.Table()
	}
	return nil
}

// handleTableKeys applies column commands and reports whether msg was one.
func (m *Model) handleTableKeys(t tableController, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
	case key.Matches(msg, m.keys.SortAsc):
		t.SortActiveColumn(false)
		m.info = "Sorted ascending"
	case key.Matches(msg, m.keys.SortDesc):
		t.SortActiveColumn(true)
		m.info = "Sorted descending"
	case key.Matches(msg, m.keys.HideColumn):
		if t.HideActiveColumn() {
			m.info = "Column hidden"
		} else {
			m.info = "Cannot hide last visible column"
		}
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
	case key.Matches(msg, m.keys.FilterValue):
		if t.FilterBySelectedValue() {
			m.info = "Filter applied from selected value"
		} else {
			m.info = "No filterable value in selected cell"
		}
	case key.Matches(msg, m.keys.ClearFilter):
		if t.ClearFilter() {
			m.info = "Filter cleared"
		}
	default:
		return false
	}
	m.persistTablePrefs(t)
	return true
}

func (m *Model) persistTablePrefs(t tableController) {
	switch m.screen {
	case model.ScreenCatalog:
		m.prefs.Catalog = t.Prefs()
	case model.ScreenCorner:
		m.prefs.Corner = t.Prefs()
	default:
		return
	}
	m.persistPrefs()
}

func (m *Model) refresh() tea.Cmd {
	uid, ok := m.session.UserID()
	if !ok {
		return nil
	}
	switch m.screen {
	case model.ScreenRecommendations:
		return m.fetchRecommendations()
	case model.ScreenCorner:
		return tea.Batch(m.relations.SyncCmd(m.backend, uid), loadReviewsWrittenCmd(m.backend, uid))
	default:
		return m.fetchCatalog()
	}
}

func (m *Model) openDetail(r model.Restaurant) {
	m.detail = NewRestaurantDetailModel(r)
	m.reviewForm = nil
	m.navigate(model.ScreenDetail)
}

func (m Model) handleListNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.currentTable()
	switch {
	case key.Matches(msg, m.keys.Search) && m.screen == model.ScreenCatalog:
		m.mode = model.ModeInsert
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Select):
		if r, ok := t.Selected(); ok {
			m.openDetail(r)
		}
	case key.Matches(msg, m.keys.PrevTab):
		m.navigate(cycleTab(m.screen, -1))
	case key.Matches(msg, m.keys.NextTab):
		m.navigate(cycleTab(m.screen, 1))
	default:
		moveTable(t, m.keys, msg)
	}
	return m, nil
}

func (m Model) handleCornerNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevTab):
		if m.corner.tab == cornerWishlist {
			m.navigate(cycleTab(m.screen, -1))
		} else {
			m.corner.PrevTab()
		}
	case key.Matches(msg, m.keys.NextTab):
		if m.corner.tab == cornerReviews {
			m.navigate(cycleTab(m.screen, 1))
		} else {
			m.corner.NextTab()
		}
	case key.Matches(msg, m.keys.Select):
		if t := m.corner.Table(); t != nil {
			if r, ok := t.Selected(); ok {
				m.openDetail(r)
			}
		} else if rv, ok := m.corner.SelectedReview(); ok {
			if r, err := m.catalog.GetByID(rv.RestaurantID); err == nil {
				m.openDetail(r)
			}
		}
	case key.Matches(msg, m.keys.Down):
		m.corner.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.corner.MoveUp()
	default:
		if t := m.corner.Table(); t != nil {
			moveTable(t, m.keys, msg)
		}
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.navigate(model.ScreenCatalog)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.detail = nil
		back := m.prevScreen
		if back == model.ScreenDetail || !back.Protected() {
			back = model.ScreenCatalog
		}
		m.navigate(back)
		return m, nil
	case key.Matches(msg, m.keys.Wishlist):
		return m.toggle(relation.Wishlist)
	case key.Matches(msg, m.keys.Visited):
		return m.toggle(relation.Visited)
	case key.Matches(msg, m.keys.Review):
		m.reviewForm = NewReviewFormModel(m.detail.ID(), m.detail.Name())
		m.mode = model.ModeInsert
		return m, nil
	}
	return m, nil
}

func (m Model) toggle(kind relation.Kind) (tea.Model, tea.Cmd) {
	uid, ok := m.session.UserID()
	if !ok {
		m.navigate(model.ScreenLogin)
		return m, nil
	}

	var cmd tea.Cmd
	var err error
	if kind == relation.Wishlist {
		cmd, err = m.relations.ToggleWishlist(uid, m.detail.ID())
	} else {
		cmd, err = m.relations.ToggleVisited(uid, m.detail.ID())
	}

	switch {
	case errors.Is(err, model.ErrOperationInFlight):
		m.info = "Still saving, one moment…"
		return m, nil
	case errors.Is(err, model.ErrUnauthenticated):
		m.navigate(model.ScreenLogin)
		return m, nil
	case err != nil:
		m.error = err.Error()
		return m, nil
	}

	m.refreshRows()
	return m, cmd
}

func cycleTab(current model.Screen, delta int) model.Screen {
	for i, s := range tabScreens {
		if s == current {
			return tabScreens[(i+delta+len(tabScreens))%len(tabScreens)]
		}
	}
	return model.ScreenCatalog
}

func moveTable(t *RestaurantTable, keys KeyMap, msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Down):
		t.MoveDown()
	case key.Matches(msg, keys.Up):
		t.MoveUp()
	case key.Matches(msg, keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, keys.HalfPageDown):
		t.HalfPageDown()
	case key.Matches(msg, keys.HalfPageUp):
		t.HalfPageUp()
	}
}
