package monitor

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tum-esm/sensorboard/internal/populate"
	"github.com/tum-esm/sensorboard/internal/state"
)

// Populator re-fills the state store. *populate.Populator satisfies it.
type Populator interface {
	Run(ctx context.Context) populate.Report
}

// Options configures a dashboard Model.
type Options struct {
	// Store is the state container the dashboard renders. Required.
	Store *state.Store
	// Populator is run on start, on 'r' and every Interval. May be nil.
	Populator Populator
	// Sensors lists sensor names in configured display order.
	Sensors []string
	// Interval between automatic re-populations. Zero populates once.
	Interval time.Duration
	// StaleAfter marks sensors without recent activity as warning.
	StaleAfter time.Duration
	// ServerURL is shown in the header.
	ServerURL string
	// History retains measurement values across refreshes for the detail
	// graphs. Nil creates one with DefaultHistorySize.
	History *History
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Model is the Bubble Tea model for the sensor dashboard.
type Model struct {
	sensors   []string // display order
	order     []string // configured order, for SortByDefault
	store     *state.Store
	snapshot  state.Snapshot
	populator Populator
	serverURL string
	history   *History

	ctx         context.Context
	cancel      context.CancelFunc
	updates     <-chan state.Update
	unsubscribe func()

	selected   int
	width      int
	height     int
	lastUpdate time.Time
	lastReport *populate.Report
	refreshing bool
	interval   time.Duration
	staleAfter time.Duration
	quitting   bool
	sortOrder  SortOrder
	viewMode   ViewMode
	showHelp   bool

	spinnerFrame int

	// Detail view viewport for scrollable content
	detailViewport viewport.Model
	viewportReady  bool

	now func() time.Time
}

// stateMsg signals that the store changed.
type stateMsg state.Update

// reportMsg carries the result of a finished populate run.
type reportMsg populate.Report

// tickMsg signals a periodic re-population.
type tickMsg time.Time

// clockTickMsg re-renders relative times and advances the spinner.
type clockTickMsg time.Time

// clockInterval is how often relative times are re-rendered.
const clockInterval = time.Second

// NewModel creates a dashboard model. The returned model subscribes to the
// store; call Close once the program has exited.
func NewModel(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	order := make([]string, len(opts.Sensors))
	copy(order, opts.Sensors)
	sensors := make([]string, len(opts.Sensors))
	copy(sensors, opts.Sensors)

	history := opts.History
	if history == nil {
		history = NewHistory(DefaultHistorySize)
	}

	updates, unsubscribe := opts.Store.Subscribe()

	m := Model{
		sensors:     sensors,
		order:       order,
		store:       opts.Store,
		snapshot:    opts.Store.Snapshot(),
		populator:   opts.Populator,
		serverURL:   opts.ServerURL,
		history:     history,
		ctx:         ctx,
		cancel:      cancel,
		updates:     updates,
		unsubscribe: unsubscribe,
		interval:    opts.Interval,
		staleAfter:  opts.StaleAfter,
		sortOrder:   SortByDefault,
		refreshing:  opts.Populator != nil,
		now:         now,
	}
	m.detailViewport = viewport.New(80, 20)

	for name, st := range m.snapshot.Sensors {
		history.Record(name, st.Measurements)
	}

	return m
}

// Close releases the store subscription and cancels in-flight requests.
func (m Model) Close() {
	m.cancel()
	m.unsubscribe()
}

// Init waits for store updates, starts the clock and runs the first populate.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.waitForUpdateCmd(),
		m.clockTickCmd(),
	}
	if m.populator != nil {
		cmds = append(cmds, m.runPopulateCmd())
	}
	if m.interval > 0 {
		cmds = append(cmds, m.tickCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		if m.viewMode == ViewDetail {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Reserve space for header and footer
		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		m.detailViewport.Width = m.width
		m.detailViewport.Height = viewportHeight
		m.detailViewport.YPosition = headerHeight
		m.viewportReady = true
		m.syncDetail()

	case stateMsg:
		m.refreshSnapshot()
		m.lastUpdate = msg.At
		if msg.Kind == state.KindMeasurements {
			m.history.Record(msg.Sensor, m.SensorState(msg.Sensor).Measurements)
			m.syncDetail()
		}
		return m, m.waitForUpdateCmd()

	case reportMsg:
		report := populate.Report(msg)
		m.lastReport = &report
		m.refreshing = false
		m.refreshSnapshot()

	case tickMsg:
		cmd := m.populateCmd()
		return m, tea.Batch(m.tickCmd(), cmd)

	case clockTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		m.syncDetail()
		return m, m.clockTickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

// refreshSnapshot re-reads the store and re-sorts the list.
func (m *Model) refreshSnapshot() {
	m.snapshot = m.store.Snapshot()
	m.sortSensors()
	m.syncDetail()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// waitForUpdateCmd blocks on the store subscription and delivers one update.
func (m Model) waitForUpdateCmd() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(u)
	}
}

// populateCmd runs a populate cycle in the background. Each request's result
// reaches the view through the store subscription as it lands; the final
// report arrives as reportMsg.
func (m *Model) populateCmd() tea.Cmd {
	if m.populator == nil || m.refreshing {
		return nil
	}
	m.refreshing = true
	return m.runPopulateCmd()
}

func (m Model) runPopulateCmd() tea.Cmd {
	p, ctx := m.populator, m.ctx
	return func() tea.Msg {
		return reportMsg(p.Run(ctx))
	}
}

// SensorState returns the state of the named sensor. Every list item looks
// itself up by its own name.
func (m Model) SensorState(name string) state.SensorState {
	if st, ok := m.snapshot.Sensors[name]; ok {
		return st
	}
	return state.SensorState{Name: name}
}

// Status derives the indicator for the named sensor.
func (m Model) Status(name string) SensorStatus {
	return DeriveStatus(m.SensorState(name), m.now(), m.staleAfter)
}

// StatusCounts tallies derived statuses across all sensors.
func (m Model) StatusCounts() map[SensorStatus]int {
	counts := make(map[SensorStatus]int, 4)
	for _, name := range m.sensors {
		counts[m.Status(name)]++
	}
	return counts
}

// SelectedSensor returns the name of the currently selected sensor.
func (m Model) SelectedSensor() string {
	if m.selected >= 0 && m.selected < len(m.sensors) {
		return m.sensors[m.selected]
	}
	return ""
}

// Refreshing reports whether a populate run is in flight.
func (m Model) Refreshing() bool {
	return m.refreshing
}

// RefreshSpinner returns the current spinner frame.
func (m Model) RefreshSpinner() string {
	return RefreshSpinnerFrames[m.spinnerFrame%len(RefreshSpinnerFrames)]
}

// syncDetail re-renders the detail viewport content when it is visible.
func (m *Model) syncDetail() {
	if m.viewMode == ViewDetail && m.viewportReady {
		m.detailViewport.SetContent(m.renderDetailContent(m.SelectedSensor()))
	}
}

// sortSensors sorts the sensor list based on the current sort order.
// Preserves the selected sensor by updating the selected index after sorting.
func (m *Model) sortSensors() {
	if len(m.sensors) == 0 {
		return
	}

	selectedSensor := m.SelectedSensor()

	switch m.sortOrder {
	case SortByDefault:
		copy(m.sensors, m.order)

	case SortByName:
		sort.Strings(m.sensors)

	case SortByStatus:
		now := m.now()
		sort.SliceStable(m.sensors, func(i, j int) bool {
			si := DeriveStatus(m.SensorState(m.sensors[i]), now, m.staleAfter)
			sj := DeriveStatus(m.SensorState(m.sensors[j]), now, m.staleAfter)
			if si != sj {
				return si.severity() > sj.severity()
			}
			return m.sensors[i] < m.sensors[j]
		})

	case SortByLastData:
		sort.SliceStable(m.sensors, func(i, j int) bool {
			ti, okI := LastMeasurementTime(m.SensorState(m.sensors[i]).Measurements)
			tj, okJ := LastMeasurementTime(m.SensorState(m.sensors[j]).Measurements)
			// Sensors without data go to the end
			if okI != okJ {
				return okI
			}
			if ti != tj {
				return ti > tj
			}
			return m.sensors[i] < m.sensors[j]
		})
	}

	if selectedSensor != "" {
		for i, name := range m.sensors {
			if name == selectedSensor {
				m.selected = i
				break
			}
		}
	}
}
