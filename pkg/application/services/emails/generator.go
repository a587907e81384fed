package emails

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

var (
	windowStart = time.Date(2022, 11, 28, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	routes      = []string{"33C", "45B", "27A"}
)

const emailTemplate = `Subject: Delivery Delays: Distribution Center {dc} to Wholesaler {wholesaler}  

Date: {date}  

Dear Team,  

We've identified consistent delays in deliveries from Distribution Center {dc} to Wholesaler {wholesaler}, impacting our supply chain performance. Key issues include:  

1. Average Delay: Deliveries are taking {avg_delay} days, exceeding the baseline of {baseline_delay} days.  
2. Impact: Stockouts of {syringe_units} units of syringe_1 and {crimper_units} units of vial crimper_2 have occurred due to mismatched inventory and demand.  
3. Frequency: {delay_pct}% of shipments in the last 8 weeks have been delayed.  

Next Steps:  
- Route Review: Explore alternatives (e.g., Route {route}) to save {days_saved} days per shipment.  
- Process Audit: Review dispatch procedures at Distribution Center {dc} for bottlenecks.  
- Real-Time Tracking: Implement proactive monitoring for faster issue resolution.  

Please share additional insights or concerns to support resolution. I'll follow up within 5 days to align on progress.  

Best regards,  
John Smith  
Supply Chain Optimization Manager`

// Generator produces delivery delay emails from distribution centers to
// wholesalers. The same seed always yields the same emails.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a seeded email generator
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns count emails with distinct dates, ordered by date
func (g *Generator) Generate(count int) []entities.Email {
	span := int64(windowEnd.Sub(windowStart) / time.Second)
	seen := make(map[int64]bool, count)
	out := make([]entities.Email, 0, count)
	for len(out) < count {
		offset := g.rng.Int64N(span + 1)
		if seen[offset] {
			continue
		}
		seen[offset] = true
		date := windowStart.Add(time.Duration(offset) * time.Second)
		out = append(out, entities.Email{Date: date, Content: g.content(date)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (g *Generator) content(date time.Time) string {
	avgDelay := round1(g.uniform(2.5, 5.5))
	baseline := round1(avgDelay - g.uniform(0.5, 1.5))
	dc := g.intBetween(1, 5)
	wholesaler := g.intBetween(1, 30)

	r := strings.NewReplacer(
		"{dc}", strconv.Itoa(dc),
		"{wholesaler}", strconv.Itoa(wholesaler),
		"{date}", date.Format("2006-01-02T15:04:05-07:00"),
		"{avg_delay}", formatTenths(avgDelay),
		"{baseline_delay}", formatTenths(baseline),
		"{syringe_units}", strconv.Itoa(g.intBetween(100, 500)),
		"{crimper_units}", strconv.Itoa(g.intBetween(50, 300)),
		"{delay_pct}", strconv.Itoa(g.intBetween(40, 80)),
		"{route}", routes[g.rng.IntN(len(routes))],
		"{days_saved}", formatTenths(round1(g.uniform(0.5, 2.5))),
	)
	return r.Replace(emailTemplate)
}

// intBetween returns an integer in [lo, hi]
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func formatTenths(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}
