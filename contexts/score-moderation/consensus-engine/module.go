package consensusengine

import (
	"log/slog"

	"scorewatch/contexts/score-moderation/consensus-engine/adapters/memory"
	"scorewatch/contexts/score-moderation/consensus-engine/application/commands"
	"scorewatch/contexts/score-moderation/consensus-engine/application/queries"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"
)

type Module struct {
	Consensus commands.ConsensusUseCase
	Tallies   queries.TallyUseCase
	Store     *memory.Store
}

type Dependencies struct {
	Requests  ports.RequestRepository
	Voters    ports.VoterSource
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	TiePolicy commands.TiePolicy
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Consensus: commands.ConsensusUseCase{
			Requests:  deps.Requests,
			Voters:    deps.Voters,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			TiePolicy: deps.TiePolicy,
			Logger:    deps.Logger,
		},
		Tallies: queries.TallyUseCase{
			Requests: deps.Requests,
			Voters:   deps.Voters,
		},
	}
}

func NewInMemoryModule(tiePolicy commands.TiePolicy, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Requests:  store,
		Voters:    store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		TiePolicy: tiePolicy,
		Logger:    logger,
	})
	module.Store = store
	return module
}
