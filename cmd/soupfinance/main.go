package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/migration"
	"github.com/soupfinance/soupfinance/internal/observability"
	"github.com/soupfinance/soupfinance/internal/server"
	"github.com/soupfinance/soupfinance/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

// registerSnowflake derives the node ID from the hostname so replicas
// behind the same image do not mint colliding IDs.
func registerSnowflake() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "soupfinance"
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	nodeID := int64(h.Sum32() % 1024)

	return snowflake.NewNode(nodeID)
}
