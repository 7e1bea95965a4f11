package schedule

// CellAppointment is one appointment placed in a cell with its display class.
type CellAppointment struct {
	Appointment
	Category Category `json:"category"`
}

type Cell struct {
	Time         string            `json:"time"`
	Stylist      string            `json:"stylist"`
	Appointments []CellAppointment `json:"appointments"`
}

func (c Cell) Empty() bool { return len(c.Appointments) == 0 }

type Row struct {
	Time  string `json:"time"`
	Cells []Cell `json:"cells"`
}

// Grid is the day view: one row per slot, one cell per stylist in roster order.
type Grid struct {
	Date     string   `json:"date"`
	Stylists []string `json:"stylists"`
	Rows     []Row    `json:"rows"`
}

// Project maps the appointments of date onto the slots × stylists grid.
// Matching is exact string equality on date, time and stylist. Within a cell
// appointments keep collection order. Appointments off the axes are dropped.
// The input slice is not modified.
func Project(appts []Appointment, date string, slots, stylists []string) Grid {
	type key struct{ time, stylist string }

	byCell := make(map[key][]CellAppointment)
	for _, a := range appts {
		if a.Date != date {
			continue
		}
		k := key{a.Time, a.Stylist}
		byCell[k] = append(byCell[k], CellAppointment{Appointment: a, Category: a.Status.Category()})
	}

	g := Grid{
		Date:     date,
		Stylists: append([]string(nil), stylists...),
		Rows:     make([]Row, 0, len(slots)),
	}
	for _, t := range slots {
		row := Row{Time: t, Cells: make([]Cell, 0, len(stylists))}
		for _, s := range stylists {
			placed := byCell[key{t, s}]
			if placed == nil {
				placed = []CellAppointment{}
			}
			row.Cells = append(row.Cells, Cell{Time: t, Stylist: s, Appointments: placed})
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func (g Grid) Cell(time, stylist string) (Cell, bool) {
	for _, r := range g.Rows {
		if r.Time != time {
			continue
		}
		for _, c := range r.Cells {
			if c.Stylist == stylist {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// Len is the number of appointments placed in the grid.
func (g Grid) Len() int {
	n := 0
	for _, r := range g.Rows {
		for _, c := range r.Cells {
			n += len(c.Appointments)
		}
	}
	return n
}
