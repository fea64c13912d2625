package models

// Catalog is a read-only snapshot of the scheduling resources supplied by the
// record-management layer. The engine treats it as immutable for the duration
// of a run.
type Catalog struct {
	Halls     []Hall     `json:"halls"`
	Lecturers []Lecturer `json:"lecturers"`
	Batches   []Batch    `json:"batches"`
	Modules   []Module   `json:"modules"`
}

// Module finds a module by id.
func (c *Catalog) Module(id string) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			return &c.Modules[i]
		}
	}
	return nil
}

// Lecturer finds a lecturer by id.
func (c *Catalog) Lecturer(id string) *Lecturer {
	for i := range c.Lecturers {
		if c.Lecturers[i].ID == id {
			return &c.Lecturers[i]
		}
	}
	return nil
}

// Hall finds a hall by id.
func (c *Catalog) Hall(id string) *Hall {
	for i := range c.Halls {
		if c.Halls[i].ID == id {
			return &c.Halls[i]
		}
	}
	return nil
}

// Batch finds a batch by id.
func (c *Catalog) Batch(id string) *Batch {
	for i := range c.Batches {
		if c.Batches[i].ID == id {
			return &c.Batches[i]
		}
	}
	return nil
}

// QualifiedLecturers returns lecturers qualified for the module, in catalog order.
func (c *Catalog) QualifiedLecturers(moduleID string) []Lecturer {
	var result []Lecturer
	for _, lecturer := range c.Lecturers {
		if lecturer.QualifiedFor(moduleID) {
			result = append(result, lecturer)
		}
	}
	return result
}

// LargestHallCapacity returns the capacity of the biggest hall, or 0 when no
// halls exist.
func (c *Catalog) LargestHallCapacity() int {
	largest := 0
	for _, hall := range c.Halls {
		if hall.Capacity > largest {
			largest = hall.Capacity
		}
	}
	return largest
}
