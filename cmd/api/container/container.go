package container

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/softserv/softserv/cmd/api/middleware"
	"github.com/softserv/softserv/cmd/api/service"
	"github.com/softserv/softserv/common/auth"
	"github.com/softserv/softserv/common/bootstrap"
	rediscommon "github.com/softserv/softserv/common/redis"
	"github.com/softserv/softserv/common/repository"
	"github.com/softserv/softserv/common/storage"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components
	Redis      *rediscommon.Client

	Issuer  *auth.Issuer
	Revoker auth.Revoker
	Auth    *middleware.Authenticator

	UserRepo     *repository.UserRepository
	SoftwareRepo *repository.SoftwareRepository
	TagRepo      *repository.TagRepository
	RequestRepo  *repository.RequestRepository

	AccountService   *service.AccountService
	CatalogService   *service.CatalogService
	TagService       *service.TagService
	LifecycleService *service.LifecycleService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)
	components.AddCleanup(redisClient.Close)

	issuer := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	revoker := auth.NewRedisRevoker(redisClient)

	// Logo uploads are optional; without a bucket the catalog runs
	// with the store disabled.
	var store storage.ObjectStore
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := storage.NewS3Store(cfg.ObjectStore, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create object store: %w", err)
		}
		store = s3Store
	}

	userRepo := repository.NewUserRepository(components.DB)
	softwareRepo := repository.NewSoftwareRepository(components.DB)
	tagRepo := repository.NewTagRepository(components.DB)
	requestRepo := repository.NewRequestRepository(components.DB)

	accountService := service.NewAccountService(userRepo, issuer, revoker, components.Logger)
	catalogService := service.NewCatalogService(softwareRepo, requestRepo, store, components.Logger)
	tagService := service.NewTagService(tagRepo, softwareRepo, components.Logger)
	lifecycleService := service.NewLifecycleService(requestRepo, softwareRepo, components.Logger)

	return &Container{
		Components:       components,
		Redis:            redisClient,
		Issuer:           issuer,
		Revoker:          revoker,
		Auth:             middleware.NewAuthenticator(issuer, revoker),
		UserRepo:         userRepo,
		SoftwareRepo:     softwareRepo,
		TagRepo:          tagRepo,
		RequestRepo:      requestRepo,
		AccountService:   accountService,
		CatalogService:   catalogService,
		TagService:       tagService,
		LifecycleService: lifecycleService,
	}, nil
}
