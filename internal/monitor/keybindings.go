package monitor

import tea "github.com/charmbracelet/bubbletea"

// SortOrder defines how sensors are sorted in the dashboard.
type SortOrder int

const (
	// SortByDefault keeps the configured order.
	SortByDefault SortOrder = iota
	SortByName
	SortByStatus
	SortByLastData
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByStatus:
		return "status"
	case SortByLastData:
		return "last data"
	default:
		return "config"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % 4)
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyCycleSort   = "s"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if m.viewMode == ViewDetail && key == KeyCollapse {
		m.viewMode = ViewList
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		if m.cancel != nil {
			m.cancel()
		}
		return true, tea.Quit

	case KeyRefresh:
		return true, m.populateCmd()

	case KeyCycleSort:
		m.sortOrder = m.sortOrder.Next()
		m.sortSensors()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
			m.syncDetail()
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.sensors)-1 {
			m.selected++
			m.syncDetail()
		}
		return true, nil

	case KeySelectFirst:
		if len(m.sensors) > 0 {
			m.selected = 0
			m.syncDetail()
		}
		return true, nil

	case KeySelectLast:
		if len(m.sensors) > 0 {
			m.selected = len(m.sensors) - 1
			m.syncDetail()
		}
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewList && len(m.sensors) > 0 {
			m.viewMode = ViewDetail
			m.detailViewport.GotoTop()
			m.syncDetail()
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil
	}

	return false, nil
}
