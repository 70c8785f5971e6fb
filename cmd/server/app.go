package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auth "github.com/groceria/groceria-auth"
	"github.com/groceria/groceria-auth/activitymap"
	"github.com/groceria/groceria-auth/config"
	"github.com/groceria/groceria-auth/mailer"
	"github.com/groceria/groceria-auth/revocation/redisrevocation"
	"github.com/groceria/groceria-auth/store/mongostore"
)

type App struct {
	config      *config.BaseConfig
	logger      *glog.BaseLogger
	bunDB       *bun.DB
	mongo       *mongo.Client
	redis       *redis.Client
	store       auth.CredentialStore
	revocations auth.RevocationCache
	mailer      *mailer.Async
	srv         router.Server[*fiber.App]
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) Close() {
	if a.mailer != nil {
		a.mailer.Wait()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(context.Background())
	}
	if a.bunDB != nil {
		_ = a.bunDB.Close()
	}
}

// WithPersistence opens the credential store. Mongo takes precedence when
// enabled; otherwise the SQL store is migrated and used.
func WithPersistence(ctx context.Context, app *App) error {
	if mcfg := app.config.GetMongo(); mcfg.Enabled {
		client, err := mongo.Connect(options.Client().ApplyURI(mcfg.URI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		app.mongo = client

		store := mongostore.New(client.Database(mcfg.Database), mcfg.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}

		app.store = store
		app.GetLogger("persistence").Info("using mongo credential store", "database", mcfg.Database)
		return nil
	}

	pcfg := app.config.GetPersistence()

	db, err := openSQL(pcfg)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pcfg.GetPingTimeout())
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping %s: %w", pcfg.GetDriver(), err)
	}

	app.bunDB = db

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	app.store = repo.Users()
	app.GetLogger("persistence").Info("using sql credential store", "driver", pcfg.GetDriver())
	return nil
}

func openSQL(pcfg config.Persistence) (*bun.DB, error) {
	switch pcfg.GetDriver() {
	case config.DriverPostgres:
		sqldb, err := sql.Open("pgx", pcfg.GetDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

func WithRevocationCache(ctx context.Context, app *App) error {
	ccfg := app.config.GetCache()
	if !ccfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     ccfg.Address,
		Password: ccfg.Password,
		DB:       ccfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	app.redis = client
	app.revocations = redisrevocation.New(client, ccfg.Prefix)
	return nil
}

func WithMailer(app *App) {
	mcfg := app.config.GetMail()

	var transport auth.Mailer
	if strings.EqualFold(mcfg.Driver, config.MailDriverSMTP) {
		transport = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     mcfg.Host,
			Port:     mcfg.Port,
			Username: mcfg.Username,
			Password: mcfg.Password,
			From:     mcfg.From,
		})
	} else {
		transport = mailer.NewLogMailer(app.GetLogger("mail"))
	}

	app.mailer = mailer.NewAsync(transport,
		mailer.WithSendTimeout(mcfg.GetSendTimeout()),
		mailer.WithAsyncLogger(app.GetLogger("mail")),
	)
}

func WithHTTPServer(app *App) error {
	scfg := app.config.GetServer()

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:          true,
			StrictRouting:         false,
			DisableStartupMessage: true,
			BodyLimit:             scfg.BodyLimit,
		}))
	})

	app.srv = srv
	return nil
}

func WithAccounts(app *App) {
	acfg := app.config.GetAuth()
	logger := app.GetLogger("accounts")

	tokens := auth.NewTokenService(acfg, auth.WithTokenLogger(app.GetLogger("tokens")))

	opts := []auth.AccountsOption{
		auth.WithLogger(logger),
		auth.WithMailer(app.mailer),
		auth.WithRenderer(mailer.NewRenderer()),
		auth.WithActivitySink(activitymap.Sink(app.GetLogger("activity"))),
	}
	if app.revocations != nil {
		opts = append(opts, auth.WithRevocationCache(app.revocations))
	}

	accounts := auth.NewAccounts(app.store, tokens, acfg, opts...)

	responder := auth.NewErrorResponder(app.GetLogger("http"))
	access := auth.NewAccessControl(accounts, tokens, acfg, responder)

	controller := auth.NewAccountsController(accounts, access, acfg,
		auth.WithControllerLogger(logger),
		auth.WithControllerErrorHandler(responder.Handle),
	)

	api := app.srv.Router().Group(app.config.GetServer().GetAPIPrefix())
	auth.RegisterAccountRoutes(api, controller)
}
