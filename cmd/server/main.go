package main

import (
	"fmt"
	"log"
	"os"

	"github.com/titech/leadpro_server/config"
	"github.com/titech/leadpro_server/internal/api"
	"github.com/titech/leadpro_server/internal/api/handler"
	"github.com/titech/leadpro_server/internal/database"
	"github.com/titech/leadpro_server/internal/pkg/gsheets"
	"github.com/titech/leadpro_server/internal/service"
	"github.com/titech/leadpro_server/internal/store"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化关系库并补齐表结构
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := store.EnsureSchema(db); err != nil {
		// 迁移半途失败说明库结构处于不确定状态，必须大声失败
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	sqlStore := store.NewSQLStore(db)
	log.Println("Database connected")

	// 存储模式在这里一次性定死，运行期不切换。
	// 配了表格但连不上就回退本地库，下次启动重新判断。
	var active store.Store = sqlStore
	var sheetStore *store.SheetStore
	if cfg.Sheets.Enabled() {
		ss, err := openSheetStore(&cfg.Sheets)
		if err != nil {
			log.Printf("Warning: Google Sheets unavailable, falling back to local database: %v", err)
		} else {
			sheetStore = ss
			active = ss
			log.Println("Google Sheets connected")
		}
	}
	log.Printf("Storage backend: %s", active.Kind().DisplayName())

	// 初始化 Service
	authService := service.NewAuthService(active, cfg)
	userService := service.NewUserService(active)
	backupService := service.NewBackupService(active, sqlStore, sheetStore)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	backupHandler := handler.NewBackupHandler(backupService)

	// 初始化 Router
	router := api.NewRouter(authHandler, userHandler, backupHandler, cfg)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func openSheetStore(cfg *config.SheetsConfig) (*store.SheetStore, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("读取表格凭证失败: %w", err)
	}

	client, err := gsheets.NewClient(creds, cfg.SpreadsheetID, cfg.Worksheet)
	if err != nil {
		return nil, err
	}

	ss := store.NewSheetStore(client)
	if err := ss.Ensure(); err != nil {
		return nil, err
	}
	return ss, nil
}
