package charging

import (
	"math"
	"sync"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/pricing"
)

// solverStep is the candidate and integration step of the start-time scan.
const solverStep = 15 * 60.0 // 15 min

// StartTimeSolver searches for the charging start time with the lowest
// integrated ToU cost inside an arrival/departure window. Draws for the
// stochastic gating come from one seeded stream so runs are reproducible.
type StartTimeSolver struct {
	cfg Config
	log logger.Logger

	mu  sync.Mutex
	rng *exprand.Rand
}

// NewStartTimeSolver creates a solver. The seed feeds the gating stream;
// the same seed and event order reproduce the same decisions.
func NewStartTimeSolver(cfg Config, seed uint64, log logger.Logger) *StartTimeSolver {
	return &StartTimeSolver{
		cfg: cfg,
		log: log,
		rng: exprand.New(exprand.NewSource(seed)),
	}
}

// ComputeOptimalStartTime returns a start time in [arrivalTime,
// departureTime] that minimizes the integrated, amplified ToU multiplier
// over the charging duration. It returns arrivalTime unchanged when smart
// charging is disabled, the person is not aware, the duration is
// non-positive or the window cannot fit the charge.
func (s *StartTimeSolver) ComputeOptimalStartTime(arrivalTime, departureTime, chargingDuration float64, aware bool) float64 {
	if !s.cfg.EnableSmartCharging || !aware {
		return arrivalTime
	}
	if chargingDuration <= 0 || departureTime <= arrivalTime+chargingDuration {
		s.log.Debugf("no feasible deferral window (arr=%.0f dep=%.0f dur=%.0f)", arrivalTime, departureTime, chargingDuration)
		return arrivalTime
	}

	latestStart := departureTime - chargingDuration
	bestStart, bestCost := s.scanWindow(arrivalTime, latestStart, chargingDuration)

	switch s.cfg.CoincidenceMode {
	case CoincidenceModeDispersion:
		return s.disperse(bestStart, arrivalTime, latestStart)
	default:
		// Coincidence as a block probability: even aware agents ignore the
		// optimum with probability CoincidenceFactor.
		if s.cfg.CoincidenceFactor > 0 {
			s.mu.Lock()
			r := s.rng.Float64()
			s.mu.Unlock()
			if r < s.cfg.CoincidenceFactor {
				s.log.Debugf("aware but blocked by coincidence (r=%.3f < %.2f), keeping arrival %.0f", r, s.cfg.CoincidenceFactor, arrivalTime)
				return arrivalTime
			}
		}
	}

	s.log.Debugf("ToU advisory: arr=%.0f dep=%.0f dur=%.0f -> start=%.0f (cost=%.3f)",
		arrivalTime, departureTime, chargingDuration, bestStart, bestCost)
	return bestStart
}

// scanWindow evaluates candidate starts in fixed steps and returns the
// cheapest one. Exact ties keep the earliest candidate.
func (s *StartTimeSolver) scanWindow(earliest, latest, duration float64) (float64, float64) {
	bestStart := earliest
	bestCost := math.Inf(1)
	for t := earliest; t <= latest+dueEpsilon; t += solverStep {
		cost := s.integratedCost(t, duration)
		if cost+1e-9 < bestCost {
			bestCost = cost
			bestStart = t
		}
	}
	return bestStart, bestCost
}

// integratedCost integrates the amplified multiplier over [start,
// start+duration) in solver steps, truncating the final sub-interval.
func (s *StartTimeSolver) integratedCost(start, duration float64) float64 {
	cost := 0.0
	end := start + duration
	for t := start; t < end-dueEpsilon; t += solverStep {
		m := pricing.HourlyMultiplier(t)
		dt := math.Min(solverStep, end-t)
		cost += math.Pow(m, s.cfg.AlphaScaleTemporal) * dt
	}
	return cost
}

// disperse draws the actual start from a normal centered on the optimum,
// truncated to the feasible window. The coincidence factor scales the
// standard deviation relative to the window length.
func (s *StartTimeSolver) disperse(optimum, earliest, latest float64) float64 {
	if s.cfg.CoincidenceFactor <= 0 || latest <= earliest {
		return optimum
	}
	sigma := s.cfg.CoincidenceFactor * (latest - earliest)
	s.mu.Lock()
	defer s.mu.Unlock()
	dist := distuv.Normal{Mu: optimum, Sigma: sigma, Src: s.rng}
	for i := 0; i < 10; i++ {
		if v := dist.Rand(); v >= earliest && v <= latest {
			return v
		}
	}
	// Rejection failed; fall back to clamping.
	return math.Max(earliest, math.Min(latest, dist.Rand()))
}
