package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"retention/dialersync/internal/app/config"
	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/domains/modules/mdlead"
	"retention/dialersync/internal/app/domains/modules/mdprovision"
	"retention/dialersync/internal/app/domains/repo/rpagent"
	"retention/dialersync/internal/app/domains/repo/rpassignment"
	"retention/dialersync/internal/app/domains/repo/rpdialer"
	"retention/dialersync/internal/app/domains/services/svagent"
	"retention/dialersync/internal/app/domains/services/svlead"
	"retention/dialersync/internal/app/domains/services/svprovision"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/infra/leadindex"
	"retention/dialersync/internal/app/infra/mq/lmstfy"
	"retention/dialersync/internal/app/infra/persistence/mysql"
	"retention/dialersync/internal/app/infra/persistence/redis"
	"retention/dialersync/internal/app/pkg/logger"
	"retention/dialersync/internal/app/server/handlers/agent"
	"retention/dialersync/internal/app/server/handlers/lead"
	"retention/dialersync/internal/app/server/handlers/provision"
	"retention/dialersync/internal/app/server/routers"
)

// App 进程内共享的依赖
// DB / Redis / Lmstfy 未配置时为 nil，对应能力自动降级
type App struct {
	Config *config.Config
	Log    logger.Logger

	Dialer *dialer.Client
	Index  leadindex.Index
	DB     *gorm.DB
	Redis  *redis.PubSubClient
	Lmstfy *lmstfy.Client

	LeadService      *svlead.LeadService
	AgentService     *svagent.AgentService
	ProvisionService *svprovision.ProvisionService
}

// InitializeApp 组装全部依赖，返回的 cleanup 负责释放连接；出错时已自行释放
func InitializeApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	app := &App{Config: cfg, Log: log}

	client, err := dialer.NewClient(dialer.Config{
		BaseURL:     cfg.Dialer.BaseURL,
		AgentAPIURL: cfg.Dialer.AgentAPIURL,
		User:        cfg.Dialer.User,
		Pass:        cfg.Dialer.Pass,
		Source:      cfg.Dialer.Source,
		Timeout:     cfg.Dialer.Timeout,
	}, nil)
	if err != nil {
		return nil, nil, err
	}
	app.Dialer = client

	index, err := leadindex.New(cfg.LeadIndex.Driver, cfg.LeadIndex.Path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open lead index failed: %w", err)
	}
	app.Index = index
	closers = append(closers, func() {
		if err := index.Close(); err != nil {
			log.Warnf(ctx, "[Bootstrap] close lead index: %v", err)
		}
	})

	var (
		dialerRepo     rpdialer.DialerRepository
		agentRepo      rpagent.AgentRepository
		assignmentRepo rpassignment.AssignmentRepository
		publisher      mdlead.Publisher
		jobPublisher   svlead.JobPublisher
	)

	if cfg.HasMySQL() {
		db, err := mysql.Open(cfg.MySQL.DSN)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		app.DB = db
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		dialerRepo = rpdialer.NewDialerRepository(db)
		agentRepo = rpagent.NewAgentRepository(db)
		assignmentRepo = rpassignment.NewAssignmentRepository(db)
		log.Infof(ctx, "[Bootstrap] row store enabled")
	} else {
		log.Warnf(ctx, "[Bootstrap] mysql.dsn not set, row store fallback disabled")
	}

	if cfg.HasRedis() {
		rc, err := redis.NewPubSubClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis failed: %w", err)
		}
		app.Redis = rc
		publisher = rc
		closers = append(closers, func() { rc.Close() })
	}

	if cfg.HasLmstfy() {
		app.Lmstfy = lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
		jobPublisher = app.Lmstfy
	}

	syncer := mdlead.NewSynchronizer(client, index, publisher, mdlead.Config{
		CampaignID:    cfg.Dialer.CampaignID,
		ListID:        cfg.Dialer.ListID,
		PhoneCode:     cfg.Dialer.PhoneCode,
		ChannelPrefix: cfg.Redis.Channel,
	}, log)

	engine := mdprovision.NewEngine(client, dialerRepo, mdprovision.Config{
		Mapping: etagent.MappingDefaults{
			CampaignID: cfg.Dialer.CampaignID,
			ListID:     cfg.Dialer.ListID,
		},
		Targets: etagent.TargetDefaults{
			Password:  cfg.Provisioning.DefaultPassword,
			UserLevel: cfg.Provisioning.UserLevel,
			UserGroup: cfg.Provisioning.UserGroup,
		},
	}, log)

	app.LeadService = svlead.NewLeadService(syncer, assignmentRepo, jobPublisher, cfg.Lmstfy.Queue, log)
	app.AgentService = svagent.NewAgentService(client, cfg.Dialer.PhoneCode, log)
	app.ProvisionService = svprovision.NewProvisionService(engine, agentRepo, log)

	return app, cleanup, nil
}

// Engine 构造 HTTP 路由
func (a *App) Engine() *gin.Engine {
	if a.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return routers.SetupRoutes(
		a.Log,
		lead.NewLeadHandler(a.LeadService, a.Log),
		agent.NewAgentHandler(a.AgentService, a.Log),
		provision.NewProvisionHandler(a.ProvisionService, a.Log),
	)
}
