package main

import (
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/atriumhq/atrium/internal/server"
	"github.com/atriumhq/atrium/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		log.Module,
		fx.Provide(registerSnowflake),
		server.Module,
		fx.Invoke(migrate),
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&orgdomain.Organization{},
		&orgdomain.OrgMember{},
	)
}
