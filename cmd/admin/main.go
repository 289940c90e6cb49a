package main

import (
	"encoding/json"
	"fmt"
	"modflow/backend/internal/config"
	"modflow/backend/internal/logging"
	"modflow/backend/internal/models"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/storage"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, true)

	app := cli.NewApp()
	app.Name = "admin"
	app.Usage = "run moderation actions from the command line"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "dsn",
			Value:   cfg.DatabaseDSN,
			EnvVars: []string{"DATABASE_DSN"},
		},
		&cli.StringFlag{
			Name:     "as",
			Usage:    "user id of the staff account performing the action",
			EnvVars:  []string{"MODFLOW_ACTOR"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Value:   cfg.JWTSecret,
			EnvVars: []string{"JWT_SECRET"},
		},
	}
	app.Commands = []*cli.Command{
		tokenCmd,
		reportsCmd,
		warnCmd,
		logCmd,
		dashboardCmd,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("admin command failed")
		os.Exit(1)
	}
}

// session is what every command needs: the engine and who is calling it.
type session struct {
	db    *gorm.DB
	svc   *moderation.Service
	actor models.Actor
}

func openSession(cctx *cli.Context) (*session, error) {
	db, err := storage.Open(cctx.String("dsn"), logging.Component("gorm"))
	if err != nil {
		return nil, err
	}
	store := storage.NewStorageService(db)

	user, err := store.FindUser(cctx.Context, cctx.String("as"))
	if err != nil {
		storage.Close(db)
		return nil, errors.Wrapf(err, "resolve actor %s", cctx.String("as"))
	}
	return &session{db: db, svc: moderation.NewService(store), actor: user.Actor()}, nil
}

func (s *session) Close() {
	if err := storage.Close(s.db); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
