package backtester

import (
	"sort"

	"github.com/atlas-desktop/orb-backtester/internal/rng"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

const (
	defaultSimulations  = 1000
	defaultResampleSeed = 20240315
)

// Resample bootstraps the realized trade list: each simulation draws
// len(trades) trades uniformly with replacement from its own
// deterministic stream and replays them against the starting capital.
// Returns nil for an empty trade list.
func Resample(trades []types.TradeRecord, startingCapital float64, simulations int, seed int64) *types.MonteCarloResult {
	if len(trades) == 0 {
		return nil
	}
	if simulations <= 0 {
		simulations = defaultSimulations
	}
	if seed == 0 {
		seed = defaultResampleSeed
	}

	stream := rng.New(seed)
	n := len(trades)
	outcomes := make([]types.MonteCarloOutcome, simulations)

	for i := range outcomes {
		equity := startingCapital
		peak := equity
		var maxDD float64

		for j := 0; j < n; j++ {
			k := int(stream.Next() * float64(n))
			if k >= n {
				k = n - 1
			}
			equity += trades[k].NetPnL

			if equity > peak {
				peak = equity
			}
			if dd := peak - equity; dd > maxDD {
				maxDD = dd
			}
		}

		outcomes[i] = types.MonteCarloOutcome{
			FinalEquity: equity,
			TotalReturn: (equity - startingCapital) / startingCapital * 100,
			MaxDrawdown: maxDD,
		}
	}

	sort.Slice(outcomes, func(a, b int) bool {
		return outcomes[a].FinalEquity < outcomes[b].FinalEquity
	})

	pick := func(p float64) types.MonteCarloOutcome {
		idx := int(p * float64(simulations))
		if idx >= simulations {
			idx = simulations - 1
		}
		return outcomes[idx]
	}

	return &types.MonteCarloResult{
		Simulations: simulations,
		Worst:       outcomes[0],
		P5:          pick(0.05),
		P25:         pick(0.25),
		Median:      pick(0.50),
		P75:         pick(0.75),
		P95:         pick(0.95),
		Best:        outcomes[simulations-1],
	}
}
