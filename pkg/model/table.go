package model

type Zone string

const (
	ZoneInterior Zone = "interior"
	ZoneTerrace  Zone = "terrace"
)

var Zones = []Zone{ZoneInterior, ZoneTerrace}

func (z Zone) Valid() bool {
	return z == ZoneInterior || z == ZoneTerrace
}

func (z Zone) String() string {
	return string(z)
}

// Table is reference data; capacity and zone never change while a reservation holds it.
type Table struct {
	ID       int  `json:"id" bson:"_id" validate:"required,min=1"`
	Capacity int  `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	Zone     Zone `json:"zone" bson:"zone" validate:"required,oneof=interior terrace"`
}

// TotalCapacity sums the seats of tables.
func TotalCapacity(tables []*Table) int {
	total := 0
	for _, t := range tables {
		total += t.Capacity
	}
	return total
}

// DefaultTables is the floor plan seeded by the migration job.
var DefaultTables = []*Table{
	{ID: 1, Capacity: 2, Zone: ZoneInterior},
	{ID: 2, Capacity: 4, Zone: ZoneInterior},
	{ID: 3, Capacity: 4, Zone: ZoneTerrace},
	{ID: 4, Capacity: 6, Zone: ZoneInterior},
}
