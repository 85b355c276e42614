package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/webtwist/internal/captcha"
	"github.com/geocoder89/webtwist/internal/config"
	"github.com/geocoder89/webtwist/internal/db"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/http/handlers"
	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/geocoder89/webtwist/internal/media"
	"github.com/geocoder89/webtwist/internal/notifications"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/geocoder89/webtwist/internal/queue/redisclient"
	"github.com/geocoder89/webtwist/internal/repo/memory"
	"github.com/geocoder89/webtwist/internal/repo/postgres"
)

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
	FindByID(ctx context.Context, id string) (account.Account, error)
	Create(ctx context.Context, email, passwordHash string, role account.Role) (account.Account, error)
}

type stores struct {
	accounts accountStore
	blogs    handlers.BlogsRepo
	about    handlers.AboutRepo
	contacts handlers.ContactsRepo
	checks   map[string]handlers.Check
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	if cfg.UseMemoryStorage() {
		log.Warn("using in-memory storage; data is lost on restart")
		return stores{
			accounts: memory.NewAccountsRepo(),
			blogs:    memory.NewBlogsRepo(),
			about:    memory.NewAboutRepo(),
			contacts: memory.NewContactsRepo(),
			checks:   map[string]handlers.Check{},
			close:    func() {},
		}, nil
	}

	if err := db.Migrate(ctx, cfg.DBURL); err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}

	return stores{
		accounts: postgres.NewAccountsRepo(pool, prom),
		blogs:    postgres.NewBlogsRepo(pool, prom),
		about:    postgres.NewAboutRepo(pool, prom),
		contacts: postgres.NewContactsRepo(pool, prom),
		checks:   map[string]handlers.Check{"postgres": pool.Ping},
		close:    pool.Close,
	}, nil
}

type sideServices struct {
	redis     *redisclient.Client
	captcha   *captcha.Service
	enqueuer  jobs.Enqueuer
	presigner *media.Presigner
	closers   []func() error
}

func (s sideServices) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// openSideServices wires Redis-backed captcha and queueing when REDIS_ADDR is
// set, falling back to in-process equivalents otherwise.
func openSideServices(ctx context.Context, cfg config.Config, log *slog.Logger) (sideServices, error) {
	var side sideServices

	if cfg.RedisEnabled() {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return side, fmt.Errorf("redis ping: %w", err)
		}

		queue := jobs.NewClient(rc.AsynqOpt())

		side.redis = rc
		side.captcha = captcha.NewService(captcha.NewRedisStore(rc.Raw()), captcha.DefaultTTL)
		side.enqueuer = queue
		side.closers = append(side.closers, rc.Close, queue.Close)
	} else {
		log.Warn("REDIS_ADDR not set; captcha answers kept in memory and notifications sent inline")

		notifier := notifications.NewProtectedNotifier(
			notifications.NewLogNotifier(log),
			notifications.ProtectedNotifierConfig{
				OnStateChange: func(from, to string) {
					log.Warn("notifier circuit changed", "from", from, "to", to)
				},
			},
		)
		side.captcha = captcha.NewService(captcha.NewMemoryStore(), captcha.DefaultTTL)
		side.enqueuer = jobs.InlineEnqueuer{Handle: func(ctx context.Context, p jobs.ContactNotificationPayload) error {
			return notifier.SendContactAlert(ctx, p.Alert())
		}}
	}

	if cfg.S3Enabled() {
		p, err := media.NewS3Presigner(ctx, media.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			side.close()
			return sideServices{}, err
		}
		side.presigner = p
	}

	return side, nil
}
