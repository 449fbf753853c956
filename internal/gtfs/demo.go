package gtfs

import (
	"fmt"
	"strings"
)

type demoRoute struct {
	id, shortName, longName string
	trips                   int
	shape                   string
}

// Route R1 owns shape SH1, R2 owns SH2, and both run trips over SH3.
var demoRoutes = []demoRoute{
	{id: "R1", shortName: "1", longName: "Harbour - University", trips: 4, shape: "SH1"},
	{id: "R2", shortName: "2", longName: "Airport Express", trips: 2, shape: "SH2"},
	{id: "R3", shortName: "N", longName: "Night Line", trips: 0},
}

var demoStops = []struct {
	id, name string
	lat, lon float64
}{
	{"S1", "Harbour", 52.3702, 4.8952},
	{"S2", "Central Station", 52.3791, 4.9003},
	{"S3", "Museum Square", 52.3584, 4.8811},
	{"S4", "University", 52.3344, 4.8656},
	{"S5", "Airport", 52.3105, 4.7683},
}

// DemoData returns INSERT statements for a small network. Counts per route:
// R1 has 5 trips (4 on SH1, 1 on SH3) with 3 stop times each, R2 has 3 trips
// (2 on SH2, 1 on SH3), R3 has none.
func DemoData() string {
	var b strings.Builder

	b.WriteString("INSERT INTO agency (agency_id, agency_name, agency_url, agency_timezone) VALUES ('A1', 'Demo Transit', 'https://transit.example', 'Europe/Amsterdam');\n")

	for _, s := range demoStops {
		fmt.Fprintf(&b, "INSERT INTO stops (stop_id, stop_name, stop_lat, stop_lon, wheelchair_boarding) VALUES ('%s', '%s', %.4f, %.4f, 1);\n",
			s.id, s.name, s.lat, s.lon)
	}

	for _, shape := range []string{"SH1", "SH2", "SH3"} {
		fmt.Fprintf(&b, "INSERT INTO shapes (shape_id, shape_name, geometry) VALUES ('%s', 'Shape %s', 'LINESTRING(4.89 52.37, 4.86 52.33)');\n",
			shape, shape)
	}

	for i, r := range demoRoutes {
		fmt.Fprintf(&b, "INSERT INTO routes (route_id, agency_id, route_short_name, route_long_name, route_type, route_color) VALUES ('%s', 'A1', '%s', '%s', 3, '00%d0FF');\n",
			r.id, r.shortName, r.longName, i)
	}

	seq := 0
	for _, r := range demoRoutes {
		if r.trips == 0 {
			continue
		}
		shapes := make([]string, 0, r.trips+1)
		for n := 0; n < r.trips; n++ {
			shapes = append(shapes, r.shape)
		}
		shapes = append(shapes, "SH3")

		for n, shape := range shapes {
			tripID := fmt.Sprintf("%s-T%d", r.id, n+1)
			fmt.Fprintf(&b, "INSERT INTO trips (trip_id, route_id, service_id, trip_headsign, direction_id, shape_id) VALUES ('%s', '%s', 'WEEKDAY', '%s', %d, '%s');\n",
				tripID, r.id, r.longName, n%2, shape)

			for stop := 0; stop < 3; stop++ {
				seq++
				minute := (seq * 7) % 60
				fmt.Fprintf(&b, "INSERT INTO stop_times (trip_id, arrival_time, departure_time, stop_id, stop_sequence) VALUES ('%s', '08:%02d:00', '08:%02d:30', '%s', %d);\n",
					tripID, minute, minute, demoStops[(n+stop)%len(demoStops)].id, stop+1)
			}
		}
	}
	return b.String()
}
