package app

import (
	"context"

	"github.com/propline/entity-notes-engine/internal/dao"
	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/internal/model"
	"github.com/propline/entity-notes-engine/internal/remote"
	"github.com/propline/entity-notes-engine/internal/service"
	"github.com/propline/entity-notes-engine/internal/task"
	"github.com/propline/entity-notes-engine/pkg/debounce"
	"github.com/propline/entity-notes-engine/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，按依赖顺序组装全部组件
type App struct {
	Config *AppConfig
	Logger *zap.Logger

	DB  *gorm.DB
	Dao *dao.Dao

	Repo       domain.NoteRepository
	Remote     *remote.Client
	Scheduler  *debounce.Scheduler
	Notes      service.NoteService
	Aggregator service.AggregatorService

	Tasks *task.Manager
}

// New 按配置组装应用容器
// 组装顺序：日志 → 数据库 → 仓储 → 调度器 → 远端客户端 → 服务 → 任务管理器
func New(cfg *AppConfig) (*App, error) {
	if cfg == nil {
		cfg = Default()
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(err, "init logger failed")
	}

	db, err := dao.NewDBEngine(cfg.GetDaoConfig())
	if err != nil {
		return nil, errors.Wrap(err, "init database failed")
	}
	if cfg.Database.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, errors.Wrap(err, "auto migrate failed")
		}
	}

	d := dao.New(db, dao.WithLogger(log))
	repo := dao.NewNoteRecordRepository(d)

	debounceCfg := cfg.GetDebounceConfig()
	scheduler := debounce.New(&debounceCfg, log)

	// 远端同步关闭时注入 nil，服务进入纯本地模式
	var remoteClient *remote.Client
	var pusher service.RemotePusher
	if cfg.Sync.Enabled && cfg.Sync.BaseURL != "" {
		remoteClient = remote.NewClient(remote.Config{
			BaseURL: cfg.Sync.BaseURL,
			Timeout: cfg.GetSyncTimeout(),
		}, log)
		pusher = remoteClient
	}

	notes := service.NewNoteService(repo, pusher, scheduler, log)
	aggregator := service.NewAggregatorService(repo, log)

	a := &App{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Dao:        d,
		Repo:       repo,
		Remote:     remoteClient,
		Scheduler:  scheduler,
		Notes:      notes,
		Aggregator: aggregator,
		Tasks:      task.NewManager(log),
	}
	return a, nil
}

// StartTasks registers and starts the periodic maintenance tasks. dirs supplies
// the entity directories the orphan prune task resolves against; the caller
// owns them, so registration is deferred to after construction.
// StartTasks 注册并启动周期维护任务。dirs 提供孤儿清理所依赖的实体目录，
// 目录归调用方所有，故注册延后到容器构建之后。
func (a *App) StartTasks(dirs domain.DirectorySet) error {
	if a.Config.App.OrphanPruneEnable {
		t := task.NewOrphanPruneTask(a.Repo, dirs, a.Config.App.OrphanPruneSpec, a.Logger)
		if err := a.Tasks.Add(t); err != nil {
			return errors.Wrap(err, "register orphan prune task failed")
		}
	}
	a.Tasks.Start()
	return nil
}

// Close 按逆序关闭：先冲刷待保存编辑，再停任务，最后断开数据库
func (a *App) Close(ctx context.Context) error {
	var firstErr error

	// 卸载路径：待保存编辑必须落盘，不能丢
	if err := a.Notes.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := a.Tasks.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	_ = a.Logger.Sync()
	return firstErr
}
