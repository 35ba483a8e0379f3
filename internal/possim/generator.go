package possim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

const defaultOrdersPerDay = 40

// Service-hour bounds for generated orders, in hours from midnight.
const (
	openHour  = 11
	closeHour = 21
)

// staffMember is a simulated employee with a fixed daily shift.
type staffMember struct {
	guid       string
	chosenName string
	firstName  string
	lastName   string
	jobGUID    string
	startHour  int
	endHour    int
}

// generator produces deterministic daily data: the same seed and date
// always yield the same orders and shifts, which keeps attribution
// replays idempotent against the simulator.
type generator struct {
	seed         int64
	ordersPerDay int
	staff        []staffMember
	jobTitles    map[string]string
}

func newGenerator() *generator {
	return &generator{
		seed:         1,
		ordersPerDay: defaultOrdersPerDay,
		staff: []staffMember{
			{guid: "emp-gm", chosenName: "Ana Silva", firstName: "Ana", lastName: "Silva", jobGUID: "job-gm", startHour: 8, endHour: 16},
			{guid: "emp-lead", firstName: "Ben", lastName: "Carter", jobGUID: "job-lead", startHour: 15, endHour: 23},
			{guid: "emp-cook-1", firstName: "Casey", lastName: "Lin", jobGUID: "job-cook", startHour: 9, endHour: 17},
			{guid: "emp-cook-2", firstName: "Dana", jobGUID: "job-cook", startHour: 14, endHour: 22},
			{guid: "emp-server", chosenName: "Lee", jobGUID: "job-server", startHour: 11, endHour: 21},
		},
		jobTitles: map[string]string{
			"job-gm":     "General Manager",
			"job-lead":   "Shift Lead",
			"job-cook":   "Line Cook",
			"job-server": "Server",
		},
	}
}

// dayRand returns a rand source fixed for the given day.
func (g *generator) dayRand(day time.Time) *rand.Rand {
	return rand.New(rand.NewSource(g.seed + day.Unix()))
}

// ordersForRange generates every order between start and end inclusive.
func (g *generator) ordersForRange(start, end time.Time) []map[string]any {
	orders := make([]map[string]any, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		orders = append(orders, g.ordersForDay(day)...)
	}
	return orders
}

func (g *generator) ordersForDay(day time.Time) []map[string]any {
	rnd := g.dayRand(day)
	dateKey := day.Format(model.BusinessDateKey)

	orders := make([]map[string]any, 0, g.ordersPerDay)
	for i := range g.ordersPerDay {
		guid := fmt.Sprintf("order-%s-%03d", dateKey, i)
		opened := day.Add(time.Duration(openHour)*time.Hour +
			time.Duration(rnd.Intn((closeHour-openHour)*60))*time.Minute)

		// Mostly healthy turn times, with occasional outliers that the
		// fetcher is expected to discard.
		turnMinutes := 2 + rnd.Float64()*6
		if rnd.Intn(20) == 0 {
			turnMinutes = 20 + rnd.Float64()*40
		}
		closed := opened.Add(time.Duration(turnMinutes * float64(time.Minute)))

		voided := rnd.Intn(25) == 0
		paymentStatus := "CLOSED"
		if rnd.Intn(25) == 0 {
			paymentStatus = "OPEN"
		}

		amount := 8 + rnd.Float64()*40
		orders = append(orders, map[string]any{
			"guid":          guid,
			"displayNumber": fmt.Sprintf("%d", 100+i),
			"openedDate":    opened.Format(time.RFC3339),
			"closedDate":    closed.Format(time.RFC3339),
			"voided":        voided,
			"guestCount":    1 + rnd.Intn(5),
			"checks": []map[string]any{{
				"guid":          guid + "-check",
				"amount":        amount,
				"taxAmount":     amount * 0.08,
				"paymentStatus": paymentStatus,
				"voided":        false,
				"payments": []map[string]any{{
					"guid":   guid + "-payment",
					"amount": amount * 1.08,
					"type":   "CREDIT",
				}},
			}},
		})
	}
	return orders
}

// timeEntriesForDay generates the day's clock-in records.
func (g *generator) timeEntriesForDay(day time.Time) []map[string]any {
	rnd := g.dayRand(day)
	dateKey := day.Format(model.BusinessDateKey)

	entries := make([]map[string]any, 0, len(g.staff))
	for _, member := range g.staff {
		// Everyone occasionally has a day off.
		if rnd.Intn(10) == 0 {
			continue
		}

		employee := map[string]any{
			"guid":      member.guid,
			"firstName": member.firstName,
			"lastName":  member.lastName,
		}
		if member.chosenName != "" {
			employee["chosenName"] = member.chosenName
		}

		entries = append(entries, map[string]any{
			"guid":              fmt.Sprintf("te-%s-%s", dateKey, member.guid),
			"employeeReference": employee,
			"jobReference": map[string]any{
				"guid":  member.jobGUID,
				"title": g.jobTitles[member.jobGUID],
			},
			"inDate":  day.Add(time.Duration(member.startHour) * time.Hour).Format(time.RFC3339),
			"outDate": day.Add(time.Duration(member.endHour) * time.Hour).Format(time.RFC3339),
			"deleted": false,
		})
	}
	return entries
}

// jobs returns the simulated job catalog.
func (g *generator) jobs() []map[string]any {
	jobs := make([]map[string]any, 0, len(g.jobTitles))
	for guid, title := range g.jobTitles {
		jobs = append(jobs, map[string]any{"guid": guid, "title": title})
	}
	return jobs
}
