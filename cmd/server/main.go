package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/server"
	"github.com/shaowenchen/yapi-mcp-server/cmd/version"
	"github.com/shaowenchen/yapi-mcp-server/pkg/config"
	"github.com/shaowenchen/yapi-mcp-server/pkg/docs"
	"github.com/shaowenchen/yapi-mcp-server/pkg/metrics"
	yapiModule "github.com/shaowenchen/yapi-mcp-server/pkg/modules/yapi"
)

var (
	cfgFile string
	envFile string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "yapi-mcp-server",
	Short: "YApi MCP Server - query YApi API documentation over MCP",
	Long:  `An MCP server that fetches, lists and searches API definitions stored in YApi and returns them in a structured form.`,
	Run:   runServer,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("host", "0.0.0.0", "Server host")
	rootCmd.PersistentFlags().Int("port", 3000, "Server port")
	rootCmd.PersistentFlags().String("mode", "stdio", "Server mode: stdio or sse")

	// YApi flags
	rootCmd.PersistentFlags().String("base-url", "", "YApi server address (env YAPI_BASE_URL)")
	rootCmd.PersistentFlags().String("token", "", "Default YApi access token (env YAPI_TOKEN)")
	rootCmd.PersistentFlags().Int("timeout", 30, "YApi request timeout in seconds")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "Maximum YApi requests per second, 0 disables the limit")
	rootCmd.PersistentFlags().Bool("enable-metrics", false, "Expose Prometheus metrics in sse mode")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("server.host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("server.mode", rootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("yapi.baseUrl", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("yapi.token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("yapi.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("yapi.rateLimit", rootCmd.PersistentFlags().Lookup("rate-limit"))
	viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("enable-metrics"))

	rootCmd.AddCommand(version.NewCommand())
}

func initConfig() {
	// existing environment variables win over the dotenv file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Could not load env file %s: %v", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("yapi.enabled", true)
	viper.SetDefault("yapi.baseUrl", yapiModule.DefaultBaseURL)
	viper.SetDefault("server.uri", "/mcp")
	viper.SetDefault("metrics.path", "/metrics")

	viper.AutomaticEnv()
	viper.BindEnv("yapi.baseUrl", "YAPI_BASE_URL")
	viper.BindEnv("yapi.token", "YAPI_TOKEN")
	viper.BindEnv("log.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	// Initialize logger
	var err error
	switch viper.GetString("log.level") {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	defer logger.Sync()

	// Last resort: anything that escapes the tool handlers ends the process
	defer func() {
		if r := recover(); r != nil {
			logger.Fatal("Unrecovered panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	// Load configuration
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Fatal("Failed to unmarshal config", zap.Error(err))
	}

	serverMode := cfg.Server.Mode
	if serverMode == "" {
		serverMode = "stdio" // default to stdio mode
	}

	logger.Info("Starting YApi MCP Server",
		zap.String("version", version.BuildVersion),
		zap.String("mode", serverMode),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("yapi_enabled", cfg.YApi.Enabled),
		zap.String("yapi_base_url", cfg.YApi.BaseURL),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
	)

	if cfg.Metrics.Enabled {
		m := metrics.Init(logger)
		metrics.SetBuildInfo(version.BuildVersion, version.GitCommitID, version.BuildDate)
		m.SetModuleEnabled("yapi", cfg.YApi.Enabled)
	}

	var module *yapiModule.Module
	if cfg.YApi.Enabled {
		var err error
		module, err = yapiModule.New(yapiModule.ConfigFrom(cfg.YApi), logger)
		if err != nil {
			logger.Fatal("Failed to create YApi module", zap.Error(err))
		}
	}

	// Create MCP server
	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if module != nil {
		serverOpts = append(serverOpts, server.WithInstructions(module.Instructions()))
	}
	mcpServer := server.NewMCPServer("yapi-mcp-server", version.BuildVersion, serverOpts...)

	var toolCount int

	if module != nil {
		yapiTools := module.GetTools()
		for _, serverTool := range yapiTools {
			mcpServer.AddTool(serverTool.Tool, serverTool.Handler)
			toolCount++
		}
		logger.Info("YApi module enabled", zap.Int("tools", len(yapiTools)))
	}

	if toolCount == 0 {
		logger.Warn("No modules enabled, server will have no tools available")
	} else {
		logger.Info("Server initialized", zap.Int("total_tools", toolCount))
	}

	// Start server based on mode
	switch serverMode {
	case "stdio":
		logger.Info("Starting server in stdio mode")
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal("Stdio server failed", zap.Error(err))
		}
	case "sse":
		mux := http.NewServeMux()
		mux.Handle(cfg.Server.URI, server.NewStreamableHTTPServer(mcpServer))
		mux.HandleFunc("/mcp/docs", docs.NewHandler(&cfg, logger).HandleDocs)
		if cfg.Metrics.Enabled {
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
		}

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           metrics.HTTPMetricsMiddleware(mux, serverMode, cfg.Server.URI, "/mcp/docs", cfg.Metrics.Path),
			ReadHeaderTimeout: 10 * time.Second,
		}

		logger.Info("Starting server in SSE mode",
			zap.String("address", addr),
			zap.String("mcp_endpoint", cfg.Server.URI))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("SSE server failed to start", zap.Error(err))
		}
	default:
		logger.Fatal("Invalid server mode", zap.String("mode", serverMode), zap.Strings("valid_modes", []string{"stdio", "sse"}))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
