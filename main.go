package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/agentic-dialogue/agent/agents/orchestrator"
	"github.com/tanpawarit/agentic-dialogue/agent/executor"
	"github.com/tanpawarit/agentic-dialogue/agent/extractor"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
	"github.com/tanpawarit/agentic-dialogue/agent/planner"
	"github.com/tanpawarit/agentic-dialogue/agent/slots"
	"github.com/tanpawarit/agentic-dialogue/agent/tool"
	configx "github.com/tanpawarit/agentic-dialogue/pkg/config"
	_ "github.com/tanpawarit/agentic-dialogue/pkg/logger/autoload"
)

type AppConfig struct {
	UserID         string `envconfig:"USER_ID" default:"local-user"`
	StoreBackend   string `envconfig:"STORE_BACKEND" default:"sqlite"`
	SQLitePath     string `envconfig:"SQLITE_PATH" default:"conversations.db"`
	RestaurantsURL string `envconfig:"RESTAURANTS_API_URL" default:"http://localhost:8000/api/restaurants"`
	ProductsURL    string `envconfig:"PRODUCTS_API_URL" default:"http://localhost:8000/api/products"`
	OutletsRAGURL  string `envconfig:"OUTLETS_RAG_URL" default:"http://localhost:8000/api/outlets"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("")

	store, err := newStore(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize conversation store")
	}

	tools := tool.Registry{
		tool.NameCalculator:       tool.NewCalculator(),
		tool.NameOutletDirectory:  tool.NewOutletDirectory(),
		tool.NameRestaurantSearch: tool.NewRestaurantSearch(appCfg.RestaurantsURL, nil),
		tool.NameProductSearch:    tool.NewProductSearch(appCfg.ProductsURL, nil),
		tool.NameRetrieval:        tool.NewRetrieval(appCfg.ProductsURL, appCfg.OutletsRAGURL, nil),
	}
	for _, info := range tool.Catalog() {
		log.Debug().Str("tool", info.Name).Str("desc", info.Desc).Msg("capability registered")
	}

	svc, err := orchestrator.New(store, extractor.New(), slots.New(), planner.New(), executor.New(tools))
	if err != nil {
		log.Fatal().Err(err).Msg("initialize orchestrator")
	}

	fmt.Println("Type a message, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	conversationID := ""
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		reply, convID, trace, err := svc.HandleTurn(ctx, appCfg.UserID, text, conversationID)
		if err != nil {
			log.Error().Err(err).Msg("handle turn")
			continue
		}
		conversationID = convID

		fmt.Println(reply)
		log.Debug().
			Str("intent", string(trace.Intent)).
			Str("action", string(trace.PlannedAction)).
			Bool("success", trace.ExecutionSuccess).
			Dur("duration", trace.Duration).
			Msg("turn complete")
	}
}

func newStore(ctx context.Context, cfg *AppConfig) (memoryx.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		redisCfg := configx.MustNew[memoryx.RedisConfig]("REDIS")
		return memoryx.NewRedisStore(ctx, *redisCfg)
	case "postgres":
		pgCfg := configx.MustNew[memoryx.PostgresConfig]("POSTGRES")
		return memoryx.NewPostgresStore(ctx, *pgCfg)
	default:
		return memoryx.NewSQLiteStore(cfg.SQLitePath)
	}
}
