package api

import (
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	marketplaceserver "github.com/Apurer/pet-marketplace/go"
	caremem "github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/memory"
	careobs "github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/observability"
	carepostgres "github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/persistence/postgres"
	careapp "github.com/Apurer/pet-marketplace/internal/domains/caretaking/application"
	careports "github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	catalogmem "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/pet-marketplace/internal/domains/catalog/application"
	catalogports "github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	communitymem "github.com/Apurer/pet-marketplace/internal/domains/community/adapters/memory"
	communityobs "github.com/Apurer/pet-marketplace/internal/domains/community/adapters/observability"
	communitypostgres "github.com/Apurer/pet-marketplace/internal/domains/community/adapters/persistence/postgres"
	communityapp "github.com/Apurer/pet-marketplace/internal/domains/community/application"
	communityports "github.com/Apurer/pet-marketplace/internal/domains/community/ports"
	favmem "github.com/Apurer/pet-marketplace/internal/domains/favorites/adapters/memory"
	favobs "github.com/Apurer/pet-marketplace/internal/domains/favorites/adapters/observability"
	favpostgres "github.com/Apurer/pet-marketplace/internal/domains/favorites/adapters/persistence/postgres"
	favapp "github.com/Apurer/pet-marketplace/internal/domains/favorites/application"
	favports "github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
	salesmem "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/memory"
	salesobs "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/observability"
	salespostgres "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/persistence/postgres"
	salesworkflows "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/pet-marketplace/internal/domains/sales/application"
	salesports "github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	usermem "github.com/Apurer/pet-marketplace/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-marketplace/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/pet-marketplace/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-marketplace/internal/domains/users/application"
	userports "github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	platformobservability "github.com/Apurer/pet-marketplace/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

// Repositories is one storage backend for every domain.
type Repositories struct {
	Tx transaction.Manager

	Users    userports.Repository
	Sessions userports.SessionStore

	Catalog catalogports.Repository

	Orders    salesports.Repository
	PetLedger salesports.PetLedger
	OrderKeys salesports.IdempotencyStore

	CareServices careports.ServiceRepository
	Bookings     careports.BookingRepository
	PetOwners    careports.PetOwnership

	Favorites favports.Repository
	Community communityports.Repository
}

// MemoryRepositories backs every domain with the shared in-process store.
func MemoryRepositories(db *memdb.DB) Repositories {
	care := caremem.NewRepository(db)
	return Repositories{
		Tx:           db,
		Users:        usermem.NewRepository(db),
		Sessions:     usermem.NewSessionStore(db),
		Catalog:      catalogmem.NewRepository(db),
		Orders:       salesmem.NewRepository(db),
		PetLedger:    salesmem.NewPetLedger(db),
		OrderKeys:    salesmem.NewIdempotencyStore(db),
		CareServices: care,
		Bookings:     care,
		PetOwners:    care,
		Favorites:    favmem.NewRepository(db),
		Community:    communitymem.NewRepository(db),
	}
}

// PostgresRepositories backs every domain with GORM adapters over db.
func PostgresRepositories(db *gorm.DB) Repositories {
	care := carepostgres.NewRepository(db)
	return Repositories{
		Tx:           platformpostgres.NewTxManager(db),
		Users:        userpostgres.NewRepository(db),
		Sessions:     userpostgres.NewSessionStore(db),
		Catalog:      catalogpostgres.NewRepository(db),
		Orders:       salespostgres.NewRepository(db),
		PetLedger:    salespostgres.NewPetLedger(db),
		OrderKeys:    salespostgres.NewIdempotencyStore(db),
		CareServices: care,
		Bookings:     care,
		PetOwners:    care,
		Favorites:    favpostgres.NewRepository(db),
		Community:    communitypostgres.NewRepository(db),
	}
}

// ServiceOptions tunes service construction.
type ServiceOptions struct {
	Instruments *platformobservability.Instruments
	Tokens      userports.TokenIssuer
	Hasher      userports.PasswordHasher
	SessionTTL  time.Duration
	Clock       func() time.Time
}

// Services holds every decorated domain service.
type Services struct {
	Users      userports.Service
	Catalog    catalogports.Service
	Sales      salesports.Service
	Checkout   salesports.CheckoutOrchestrator
	Caretaking careports.Service
	Favorites  favports.Service
	Community  communityports.Service
}

// NewServices builds the application services over repos and wraps each one
// with tracing, logging and metrics. Checkout runs inline until replaced.
func NewServices(repos Repositories, opts ServiceOptions) Services {
	inst := opts.Instruments
	logger := serviceLogger(inst)

	users := userobs.New(
		userapp.NewService(repos.Users, repos.Sessions, opts.Tokens, repos.Tx,
			userapp.WithHasher(opts.Hasher),
			userapp.WithSessionTTL(opts.SessionTTL),
			userapp.WithClock(opts.Clock),
		),
		userobs.WithLogger(logger),
		userobs.WithTracer(inst.Tracer("internal.users.application")),
		userobs.WithMeter(inst.Meter("internal.users.application")),
	)
	catalog := catalogobs.New(
		catalogapp.NewService(repos.Catalog, repos.Tx),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(inst.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(inst.Meter("internal.catalog.application")),
	)
	sales := salesobs.New(
		salesapp.NewService(repos.Orders, repos.PetLedger, repos.OrderKeys, repos.Tx),
		salesobs.WithLogger(logger),
		salesobs.WithTracer(inst.Tracer("internal.sales.application")),
		salesobs.WithMeter(inst.Meter("internal.sales.application")),
	)
	caretaking := careobs.New(
		careapp.NewService(repos.CareServices, repos.Bookings, repos.PetOwners, repos.Tx),
		careobs.WithLogger(logger),
		careobs.WithTracer(inst.Tracer("internal.caretaking.application")),
		careobs.WithMeter(inst.Meter("internal.caretaking.application")),
	)
	favorites := favobs.New(
		favapp.NewService(repos.Favorites, repos.Tx),
		favobs.WithLogger(logger),
		favobs.WithTracer(inst.Tracer("internal.favorites.application")),
		favobs.WithMeter(inst.Meter("internal.favorites.application")),
	)
	community := communityobs.New(
		communityapp.NewService(repos.Community, repos.Tx),
		communityobs.WithLogger(logger),
		communityobs.WithTracer(inst.Tracer("internal.community.application")),
		communityobs.WithMeter(inst.Meter("internal.community.application")),
	)
	return Services{
		Users:      users,
		Catalog:    catalog,
		Sales:      sales,
		Checkout:   salesworkflows.NewInlineCheckout(sales),
		Caretaking: caretaking,
		Favorites:  favorites,
		Community:  community,
	}
}

// Handlers maps the services onto the HTTP handler groups.
func Handlers(s Services) marketplaceserver.ApiHandleFunctions {
	return marketplaceserver.ApiHandleFunctions{
		Authenticator: s.Users,
		HealthAPI:     marketplaceserver.HealthAPI{},
		UserAPI:       marketplaceserver.NewUserAPI(s.Users),
		CatalogAPI:    marketplaceserver.NewCatalogAPI(s.Catalog),
		SalesAPI:      marketplaceserver.NewSalesAPI(s.Sales, s.Checkout),
		CaretakingAPI: marketplaceserver.NewCaretakingAPI(s.Caretaking),
		FavoritesAPI:  marketplaceserver.NewFavoritesAPI(s.Favorites),
		CommunityAPI:  marketplaceserver.NewCommunityAPI(s.Community),
	}
}

func serviceLogger(inst *platformobservability.Instruments) *slog.Logger {
	if inst != nil && inst.Logger != nil {
		return inst.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
